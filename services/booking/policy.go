package booking

import (
	"sort"
	"time"

	"roamly/config"
	"roamly/utils"
)

// CancellationPolicy computes the refund owed when a booking is cancelled a
// given distance before its start date. The schedule is configuration, not
// code: buckets come from config.RefundSchedule.
type CancellationPolicy struct {
	buckets []config.RefundBucket
}

// NewCancellationPolicy sorts the configured buckets largest cutoff first.
func NewCancellationPolicy(buckets []config.RefundBucket) *CancellationPolicy {
	sorted := make([]config.RefundBucket, len(buckets))
	copy(sorted, buckets)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].HoursBefore > sorted[j].HoursBefore
	})
	return &CancellationPolicy{buckets: sorted}
}

// RefundPercent returns the refund fraction for a cancellation at now,
// against a booking starting at start.
func (p *CancellationPolicy) RefundPercent(now, start time.Time) float64 {
	hoursUntil := start.Sub(now).Hours()
	for _, b := range p.buckets {
		if hoursUntil >= float64(b.HoursBefore) {
			return b.Percent
		}
	}
	return 0
}

// RefundAmount applies the percentage to what was actually paid, rounded to
// the currency's minor unit.
func (p *CancellationPolicy) RefundAmount(now, start time.Time, paid float64, currency string) float64 {
	return utils.RoundToMinorUnit(paid*p.RefundPercent(now, start), currency)
}
