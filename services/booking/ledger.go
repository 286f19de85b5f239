package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	bookingRepo "roamly/database/repository/booking"
	"roamly/models"
	"roamly/services/events"
	"roamly/services/notification"
)

// CapacityReleaser is the slice of the availability guard the ledger needs:
// returning held capacity on cancellation or terminal payment failure.
type CapacityReleaser interface {
	Release(ctx context.Context, token models.ReservationToken) error
}

// Ledger owns the Booking lifecycle. All mutations go through its transition
// operations; no other component writes a Booking.
type Ledger interface {
	Create(ctx context.Context, req models.BookingRequest) (*models.Booking, error)
	Get(ctx context.Context, id string) (*models.Booking, error)
	MarkPaymentProcessing(ctx context.Context, id, paymentRef string) (*models.Booking, error)
	RecordPayment(ctx context.Context, outcome models.PaymentOutcome) (*models.Booking, error)
	Cancel(ctx context.Context, id, actor, reason string) (*models.Booking, error)
	Complete(ctx context.Context, id string) (*models.Booking, error)
	MarkNoShow(ctx context.Context, id string) (*models.Booking, error)
	AttachReview(ctx context.Context, id string, review models.Review) (*models.Booking, error)
	AppendCommunication(ctx context.Context, id, sender, message string) (*models.Booking, error)
}

// DefaultLedger implements Ledger.
type DefaultLedger struct {
	Repo        bookingRepo.BookingRepository
	Releaser    CapacityReleaser
	Policy      *CancellationPolicy
	Events      events.Publisher
	Notifier    notification.Service
	Logger      *zap.Logger
	MaxAttempts int // payment capture retry budget before the booking cancels
	Now         func() time.Time

	locks keyedMutex
}

// NewDefaultLedger wires a ledger with its collaborators.
func NewDefaultLedger(repo bookingRepo.BookingRepository, releaser CapacityReleaser, policy *CancellationPolicy, pub events.Publisher, notifier notification.Service, logger *zap.Logger, maxAttempts int) *DefaultLedger {
	return &DefaultLedger{
		Repo:        repo,
		Releaser:    releaser,
		Policy:      policy,
		Events:      pub,
		Notifier:    notifier,
		Logger:      logger,
		MaxAttempts: maxAttempts,
		Now:         time.Now,
	}
}

// Create persists a new booking with status pending and payment pending.
// The generated id is retried once on the unlikely unique-index collision.
func (l *DefaultLedger) Create(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	now := l.Now()
	b := &models.Booking{
		ID:         NewBookingID(now),
		UserID:     req.UserID,
		ServiceID:  req.ServiceID,
		ProviderID: req.ProviderID,
		Details: models.BookingDetails{
			StartDate:       req.StartDate,
			EndDate:         req.EndDate,
			Guests:          req.Guests,
			Contact:         req.Contact,
			SpecialRequests: req.SpecialRequests,
		},
		Pricing: req.Pricing,
		Payment: models.PaymentState{
			Status:  models.PaymentPending,
			Method:  req.PaymentMethod,
			DueDate: req.StartDate,
		},
		Status:        models.StatusPending,
		SlotKey:       req.SlotKey,
		Units:         req.Units,
		ReservationID: req.ReservationID,
		FraudFlag:     req.FraudFlag,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := l.Repo.Insert(ctx, b); err != nil {
		if errors.Is(err, bookingRepo.ErrDuplicateID) {
			b.ID = NewBookingID(l.Now())
			if err := l.Repo.Insert(ctx, b); err != nil {
				return nil, fmt.Errorf("failed to persist booking after id retry: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to persist booking: %w", err)
		}
	}

	l.Events.Publish(ctx, events.Event{
		Type:      events.TypeBookingCreated,
		BookingID: b.ID,
		At:        now,
		Data:      map[string]string{"serviceId": b.ServiceID, "userId": b.UserID},
	})
	return b, nil
}

func (l *DefaultLedger) Get(ctx context.Context, id string) (*models.Booking, error) {
	return l.Repo.GetByID(ctx, id)
}

// MarkPaymentProcessing records the gateway reference once capture has been
// initiated.
func (l *DefaultLedger) MarkPaymentProcessing(ctx context.Context, id, paymentRef string) (*models.Booking, error) {
	unlock := l.locks.lock(id)
	defer unlock()

	b, err := l.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Frozen {
		return nil, ErrFrozen
	}
	if b.Payment.Status == models.PaymentProcessing && b.Payment.TransactionRef == paymentRef {
		return b, nil // replay
	}
	if err := transitionPayment(b, models.PaymentProcessing); err != nil {
		return nil, err
	}
	b.Payment.TransactionRef = paymentRef
	b.UpdatedAt = l.Now()
	if err := l.Repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// RecordPayment applies an asynchronous payment outcome. It is idempotent:
// replaying the same outcome leaves the booking exactly as the first
// application did, without double-releasing capacity or double-transitioning
// state.
func (l *DefaultLedger) RecordPayment(ctx context.Context, outcome models.PaymentOutcome) (*models.Booking, error) {
	unlock := l.locks.lock(outcome.BookingID)
	defer unlock()

	b, err := l.Repo.GetByID(ctx, outcome.BookingID)
	if err != nil {
		return nil, err
	}
	if b.Frozen {
		return nil, ErrFrozen
	}

	switch outcome.Status {
	case models.PaymentCompleted:
		return l.applyPaymentCompleted(ctx, b, outcome)
	case models.PaymentFailed:
		return l.applyPaymentFailed(ctx, b, outcome)
	default:
		return nil, fmt.Errorf("unknown payment outcome status %q for booking %s", outcome.Status, outcome.BookingID)
	}
}

func (l *DefaultLedger) applyPaymentCompleted(ctx context.Context, b *models.Booking, outcome models.PaymentOutcome) (*models.Booking, error) {
	// Replay of an already-applied completion.
	if b.Payment.Status == models.PaymentCompleted && b.Payment.TransactionRef == outcome.PaymentRef {
		return b, nil
	}

	if outcome.PaidAmount > b.Pricing.Total {
		return nil, l.freeze(ctx, b, fmt.Sprintf("paid amount %.2f exceeds total %.2f", outcome.PaidAmount, b.Pricing.Total))
	}

	// The outcome can overtake the processing mark when the webhook beats
	// the post-initiate write; apply the implied step.
	if b.Payment.Status == models.PaymentPending {
		if err := transitionPayment(b, models.PaymentProcessing); err != nil {
			return nil, err
		}
	}
	if err := transitionPayment(b, models.PaymentCompleted); err != nil {
		return nil, err
	}
	b.Payment.TransactionRef = outcome.PaymentRef
	b.Payment.PaidAmount = outcome.PaidAmount

	if err := transitionBooking(b, models.StatusConfirmed); err != nil {
		return nil, err
	}
	b.UpdatedAt = l.Now()
	if err := l.Repo.Update(ctx, b); err != nil {
		return nil, err
	}

	l.Events.Publish(ctx, events.Event{
		Type:      events.TypeBookingConfirmed,
		BookingID: b.ID,
		At:        b.UpdatedAt,
		Data:      map[string]string{"paymentRef": outcome.PaymentRef},
	})
	l.Notifier.Notify(ctx, b.UserID, "booking_confirmed", map[string]string{
		"bookingId": b.ID,
		"startDate": b.Details.StartDate.Format("2006-01-02"),
	})
	return b, nil
}

func (l *DefaultLedger) applyPaymentFailed(ctx context.Context, b *models.Booking, outcome models.PaymentOutcome) (*models.Booking, error) {
	// Replay of an already-applied failure: the earlier application either
	// reopened the capture (pending with attempts counted) or cancelled the
	// booking.
	if b.Payment.TransactionRef == outcome.PaymentRef {
		if b.Payment.Status == models.PaymentPending && b.Payment.Attempts > 0 {
			return b, nil
		}
		if b.Status == models.StatusCancelled {
			return b, nil
		}
	}

	if b.Payment.Status == models.PaymentPending {
		if err := transitionPayment(b, models.PaymentProcessing); err != nil {
			return nil, err
		}
	}
	if err := transitionPayment(b, models.PaymentFailed); err != nil {
		return nil, err
	}
	b.Payment.TransactionRef = outcome.PaymentRef
	b.Payment.Attempts++

	if b.Payment.Attempts >= l.MaxAttempts {
		// Retry budget exhausted: the booking cancels and its capacity goes
		// back to the pool.
		if err := transitionBooking(b, models.StatusCancelled); err != nil {
			return nil, err
		}
		now := l.Now()
		b.Cancellation = &models.CancellationRecord{
			Actor:        "system",
			At:           now,
			Reason:       "payment failed after retry budget",
			RefundAmount: 0,
			RefundStatus: "none",
		}
		b.UpdatedAt = now
		if err := l.Repo.Update(ctx, b); err != nil {
			return nil, err
		}
		l.releaseCapacity(ctx, b)
		l.Events.Publish(ctx, events.Event{
			Type:      events.TypeBookingCancelled,
			BookingID: b.ID,
			At:        now,
			Data:      map[string]string{"reason": "payment_failed"},
		})
		l.Notifier.Notify(ctx, b.UserID, "booking_cancelled", map[string]string{"bookingId": b.ID})
		return b, nil
	}

	// Budget remains: reopen the capture and leave the booking pending for
	// reconciliation.
	if err := transitionPayment(b, models.PaymentPending); err != nil {
		return nil, err
	}
	b.UpdatedAt = l.Now()
	if err := l.Repo.Update(ctx, b); err != nil {
		return nil, err
	}
	l.Events.Publish(ctx, events.Event{
		Type:      events.TypePaymentFailed,
		BookingID: b.ID,
		At:        b.UpdatedAt,
		Data:      map[string]string{"attempts": fmt.Sprint(b.Payment.Attempts)},
	})
	return b, nil
}

// Cancel terminates a pending or confirmed booking, computes the refund from
// the configured schedule, releases held capacity and appends the
// cancellation record.
func (l *DefaultLedger) Cancel(ctx context.Context, id, actor, reason string) (*models.Booking, error) {
	unlock := l.locks.lock(id)
	defer unlock()

	b, err := l.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Frozen {
		return nil, ErrFrozen
	}
	if err := transitionBooking(b, models.StatusCancelled); err != nil {
		return nil, err
	}

	now := l.Now()
	refund := l.Policy.RefundAmount(now, b.Details.StartDate, b.Payment.PaidAmount, b.Pricing.Currency)
	refundStatus := "none"
	if b.Payment.PaidAmount > 0 && refund > 0 {
		b.Payment.RefundAmount = refund
		if refund >= b.Payment.PaidAmount {
			refundStatus = models.PaymentRefunded
		} else {
			refundStatus = models.PaymentPartiallyRefunded
		}
		if err := transitionPayment(b, refundStatus); err != nil {
			return nil, err
		}
	}

	b.Cancellation = &models.CancellationRecord{
		Actor:        actor,
		At:           now,
		Reason:       reason,
		RefundAmount: refund,
		RefundStatus: refundStatus,
	}
	b.UpdatedAt = now
	if err := l.Repo.Update(ctx, b); err != nil {
		return nil, err
	}
	l.releaseCapacity(ctx, b)

	l.Events.Publish(ctx, events.Event{
		Type:      events.TypeBookingCancelled,
		BookingID: b.ID,
		At:        now,
		Data:      map[string]string{"actor": actor, "reason": reason},
	})
	l.Notifier.Notify(ctx, b.UserID, "booking_cancelled", map[string]string{
		"bookingId": b.ID,
		"refund":    fmt.Sprintf("%.2f", refund),
	})
	return b, nil
}

// Complete closes out a confirmed booking once the service end date has
// passed, enabling review attachment.
func (l *DefaultLedger) Complete(ctx context.Context, id string) (*models.Booking, error) {
	unlock := l.locks.lock(id)
	defer unlock()

	b, err := l.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Frozen {
		return nil, ErrFrozen
	}
	if l.Now().Before(b.Details.EndDate) {
		return nil, ErrServiceNotEnded
	}
	if err := transitionBooking(b, models.StatusCompleted); err != nil {
		return nil, err
	}
	b.UpdatedAt = l.Now()
	if err := l.Repo.Update(ctx, b); err != nil {
		return nil, err
	}
	l.Events.Publish(ctx, events.Event{
		Type:      events.TypeBookingCompleted,
		BookingID: b.ID,
		At:        b.UpdatedAt,
	})
	return b, nil
}

// MarkNoShow records that the guest never arrived for a confirmed booking.
func (l *DefaultLedger) MarkNoShow(ctx context.Context, id string) (*models.Booking, error) {
	unlock := l.locks.lock(id)
	defer unlock()

	b, err := l.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Frozen {
		return nil, ErrFrozen
	}
	if err := transitionBooking(b, models.StatusNoShow); err != nil {
		return nil, err
	}
	b.UpdatedAt = l.Now()
	if err := l.Repo.Update(ctx, b); err != nil {
		return nil, err
	}
	l.Events.Publish(ctx, events.Event{
		Type:      events.TypeBookingNoShow,
		BookingID: b.ID,
		At:        b.UpdatedAt,
	})
	return b, nil
}

// AttachReview stores the guest's review; only completed bookings accept one.
func (l *DefaultLedger) AttachReview(ctx context.Context, id string, review models.Review) (*models.Booking, error) {
	unlock := l.locks.lock(id)
	defer unlock()

	b, err := l.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != models.StatusCompleted {
		return nil, ErrReviewNotAllowed
	}
	review.At = l.Now()
	b.Review = &review
	b.UpdatedAt = review.At
	if err := l.Repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// AppendCommunication adds one entry to the booking's append-only message
// log.
func (l *DefaultLedger) AppendCommunication(ctx context.Context, id, sender, message string) (*models.Booking, error) {
	unlock := l.locks.lock(id)
	defer unlock()

	b, err := l.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Communication = append(b.Communication, models.CommunicationEntry{
		At:      l.Now(),
		Sender:  sender,
		Message: message,
	})
	b.UpdatedAt = l.Now()
	if err := l.Repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// releaseCapacity returns the slot units a booking held. Release failures
// are logged and surfaced to the operator channel; the cancellation itself
// stands.
func (l *DefaultLedger) releaseCapacity(ctx context.Context, b *models.Booking) {
	if b.ReservationID == "" {
		return
	}
	token := models.ReservationToken{
		ID:        b.ReservationID,
		ServiceID: b.ServiceID,
		SlotKey:   b.SlotKey,
		Units:     b.Units,
	}
	if err := l.Releaser.Release(ctx, token); err != nil {
		l.Logger.Error("failed to release capacity",
			zap.String("bookingId", b.ID),
			zap.String("slotKey", b.SlotKey),
			zap.Error(err))
		l.Events.Publish(ctx, events.Event{
			Type:      events.TypeInvariantViolation,
			BookingID: b.ID,
			At:        l.Now(),
			Data:      map[string]string{"detail": "capacity release failed: " + err.Error()},
		})
	}
}

// freeze marks the booking untouchable and raises an operator alert. The
// offending record is never silently auto-corrected.
func (l *DefaultLedger) freeze(ctx context.Context, b *models.Booking, detail string) error {
	b.Frozen = true
	b.UpdatedAt = l.Now()
	if err := l.Repo.Update(ctx, b); err != nil {
		l.Logger.Error("failed to persist frozen booking", zap.String("bookingId", b.ID), zap.Error(err))
	}
	l.Logger.Error("booking frozen on invariant violation",
		zap.String("bookingId", b.ID),
		zap.String("detail", detail))
	l.Events.Publish(ctx, events.Event{
		Type:      events.TypeInvariantViolation,
		BookingID: b.ID,
		At:        b.UpdatedAt,
		Data:      map[string]string{"detail": detail},
	})
	return fmt.Errorf("booking %s frozen: %s", b.ID, detail)
}
