package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewBookingID builds a globally unique id that sorts by creation time: a
// fixed-width UTC timestamp component followed by a collision-resistant
// random suffix. Generation needs no coordinator round-trip; the storage
// layer's unique index is the final authority on uniqueness.
func NewBookingID(now time.Time) string {
	ts := now.UTC().Format("20060102150405")
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	return fmt.Sprintf("BK%s%09d-%s", ts, now.Nanosecond(), suffix)
}
