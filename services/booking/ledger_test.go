package booking

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"roamly/config"
	bookingRepo "roamly/database/repository/booking"
	"roamly/models"
	"roamly/services/events"
	"roamly/services/notification"
)

var ledgerNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

type fakeReleaser struct {
	mu     sync.Mutex
	tokens []models.ReservationToken
}

func (f *fakeReleaser) Release(_ context.Context, token models.ReservationToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	return nil
}

func (f *fakeReleaser) released() []models.ReservationToken {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ReservationToken(nil), f.tokens...)
}

func newTestLedger(t *testing.T) (*DefaultLedger, *fakeReleaser) {
	t.Helper()
	releaser := &fakeReleaser{}
	ledger := NewDefaultLedger(
		bookingRepo.NewMemoryBookingRepo(),
		releaser,
		NewCancellationPolicy(config.DefaultRefundSchedule()),
		events.Nop{},
		notification.NewDispatcher(zap.NewNop(), &notification.LogSender{Logger: zap.NewNop()}),
		zap.NewNop(),
		2,
	)
	ledger.Now = func() time.Time { return ledgerNow }
	return ledger, releaser
}

func testRequest(start time.Time) models.BookingRequest {
	return models.BookingRequest{
		UserID:        "user-1",
		ServiceID:     "svc-1",
		ProviderID:    "prov-1",
		Units:         2,
		Guests:        models.GuestCount{Adults: 2},
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, 2),
		SlotKey:       start.Format("2006-01-02"),
		PaymentMethod: "card",
		Pricing:       models.PricingBreakdown{BaseAmount: 200, Total: 200, Currency: "USD"},
		ReservationID: "res-1",
	}
}

func createConfirmed(t *testing.T, ledger *DefaultLedger, start time.Time) *models.Booking {
	t.Helper()
	ctx := context.Background()

	b, err := ledger.Create(ctx, testRequest(start))
	require.NoError(t, err)

	_, err = ledger.MarkPaymentProcessing(ctx, b.ID, "pi_1")
	require.NoError(t, err)

	b, err = ledger.RecordPayment(ctx, models.PaymentOutcome{
		PaymentRef: "pi_1",
		BookingID:  b.ID,
		Status:     models.PaymentCompleted,
		PaidAmount: 200,
	})
	require.NoError(t, err)
	return b
}

func TestCreateStartsPending(t *testing.T) {
	ledger, _ := newTestLedger(t)

	b, err := ledger.Create(context.Background(), testRequest(ledgerNow.AddDate(0, 0, 10)))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(b.ID, "BK"))
	assert.Equal(t, models.StatusPending, b.Status)
	assert.Equal(t, models.PaymentPending, b.Payment.Status)
	assert.Equal(t, "card", b.Payment.Method)
	assert.False(t, b.Terminal())
}

func TestBookingIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewBookingID(ledgerNow)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestPaymentCompletionConfirms(t *testing.T) {
	ledger, _ := newTestLedger(t)

	b := createConfirmed(t, ledger, ledgerNow.AddDate(0, 0, 10))
	assert.Equal(t, models.StatusConfirmed, b.Status)
	assert.Equal(t, models.PaymentCompleted, b.Payment.Status)
	assert.Equal(t, 200.0, b.Payment.PaidAmount)
	assert.Equal(t, "pi_1", b.Payment.TransactionRef)
}

func TestPaymentCompletionReplayIsIdempotent(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	b := createConfirmed(t, ledger, ledgerNow.AddDate(0, 0, 10))

	again, err := ledger.RecordPayment(ctx, models.PaymentOutcome{
		PaymentRef: "pi_1",
		BookingID:  b.ID,
		Status:     models.PaymentCompleted,
		PaidAmount: 200,
	})
	require.NoError(t, err)
	assert.Equal(t, b.Status, again.Status)
	assert.Equal(t, b.Payment, again.Payment)
}

func TestPaymentWebhookOvertakesProcessingMark(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	b, err := ledger.Create(ctx, testRequest(ledgerNow.AddDate(0, 0, 10)))
	require.NoError(t, err)

	// Outcome lands before MarkPaymentProcessing was ever written.
	b, err = ledger.RecordPayment(ctx, models.PaymentOutcome{
		PaymentRef: "pi_9",
		BookingID:  b.ID,
		Status:     models.PaymentCompleted,
		PaidAmount: 200,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, b.Status)
	assert.Equal(t, models.PaymentCompleted, b.Payment.Status)
}

func TestOverpaymentFreezesBooking(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	b, err := ledger.Create(ctx, testRequest(ledgerNow.AddDate(0, 0, 10)))
	require.NoError(t, err)

	_, err = ledger.RecordPayment(ctx, models.PaymentOutcome{
		PaymentRef: "pi_1",
		BookingID:  b.ID,
		Status:     models.PaymentCompleted,
		PaidAmount: 250,
	})
	require.Error(t, err)

	got, err := ledger.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.Frozen)

	// A frozen booking accepts no further operations.
	_, err = ledger.Cancel(ctx, b.ID, "user", "changed plans")
	assert.ErrorIs(t, err, ErrFrozen)
	_, err = ledger.RecordPayment(ctx, models.PaymentOutcome{
		PaymentRef: "pi_2", BookingID: b.ID, Status: models.PaymentCompleted, PaidAmount: 200,
	})
	assert.ErrorIs(t, err, ErrFrozen)
}

func TestPaymentFailureReopensWithinBudget(t *testing.T) {
	ledger, releaser := newTestLedger(t)
	ctx := context.Background()

	b, err := ledger.Create(ctx, testRequest(ledgerNow.AddDate(0, 0, 10)))
	require.NoError(t, err)
	_, err = ledger.MarkPaymentProcessing(ctx, b.ID, "pi_1")
	require.NoError(t, err)

	b, err = ledger.RecordPayment(ctx, models.PaymentOutcome{
		PaymentRef: "pi_1", BookingID: b.ID, Status: models.PaymentFailed,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, b.Status)
	assert.Equal(t, models.PaymentPending, b.Payment.Status)
	assert.Equal(t, 1, b.Payment.Attempts)
	assert.Empty(t, releaser.released())

	// Replay of the same failure changes nothing.
	again, err := ledger.RecordPayment(ctx, models.PaymentOutcome{
		PaymentRef: "pi_1", BookingID: b.ID, Status: models.PaymentFailed,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, again.Payment.Attempts)
}

func TestPaymentFailureBudgetExhaustedCancels(t *testing.T) {
	ledger, releaser := newTestLedger(t)
	ctx := context.Background()

	b, err := ledger.Create(ctx, testRequest(ledgerNow.AddDate(0, 0, 10)))
	require.NoError(t, err)

	_, err = ledger.MarkPaymentProcessing(ctx, b.ID, "pi_1")
	require.NoError(t, err)
	_, err = ledger.RecordPayment(ctx, models.PaymentOutcome{
		PaymentRef: "pi_1", BookingID: b.ID, Status: models.PaymentFailed,
	})
	require.NoError(t, err)

	_, err = ledger.MarkPaymentProcessing(ctx, b.ID, "pi_2")
	require.NoError(t, err)
	b, err = ledger.RecordPayment(ctx, models.PaymentOutcome{
		PaymentRef: "pi_2", BookingID: b.ID, Status: models.PaymentFailed,
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusCancelled, b.Status)
	assert.Equal(t, 2, b.Payment.Attempts)
	require.NotNil(t, b.Cancellation)
	assert.Equal(t, "system", b.Cancellation.Actor)

	released := releaser.released()
	require.Len(t, released, 1)
	assert.Equal(t, "res-1", released[0].ID)
	assert.Equal(t, 2, released[0].Units)
}

func TestCancelRefundSchedule(t *testing.T) {
	tests := []struct {
		name         string
		hoursOut     float64
		wantRefund   float64
		wantStatus   string
		wantRecorded string
	}{
		{"full refund a week out", 200, 200, models.PaymentRefunded, models.PaymentRefunded},
		{"half refund inside 72h", 49, 100, models.PaymentPartiallyRefunded, models.PaymentPartiallyRefunded},
		{"quarter refund inside 48h", 25, 50, models.PaymentPartiallyRefunded, models.PaymentPartiallyRefunded},
		{"no refund inside 24h", 5, 0, models.PaymentCompleted, "none"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ledger, releaser := newTestLedger(t)
			ctx := context.Background()

			start := ledgerNow.Add(time.Duration(tc.hoursOut * float64(time.Hour)))
			b := createConfirmed(t, ledger, start)

			b, err := ledger.Cancel(ctx, b.ID, "user-1", "changed plans")
			require.NoError(t, err)

			assert.Equal(t, models.StatusCancelled, b.Status)
			assert.Equal(t, tc.wantStatus, b.Payment.Status)
			require.NotNil(t, b.Cancellation)
			assert.Equal(t, tc.wantRefund, b.Cancellation.RefundAmount)
			assert.Equal(t, tc.wantRecorded, b.Cancellation.RefundStatus)
			assert.Equal(t, "user-1", b.Cancellation.Actor)
			assert.Len(t, releaser.released(), 1)
		})
	}
}

func TestCancelTerminalBookingRejected(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	b := createConfirmed(t, ledger, ledgerNow.AddDate(0, 0, 10))
	_, err := ledger.Cancel(ctx, b.ID, "user-1", "first")
	require.NoError(t, err)

	_, err = ledger.Cancel(ctx, b.ID, "user-1", "second")
	var transErr *InvalidTransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, "booking", transErr.Axis)
	assert.Equal(t, models.StatusCancelled, transErr.From)
}

func TestCompleteRequiresEndedService(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	b := createConfirmed(t, ledger, ledgerNow.AddDate(0, 0, 10))
	_, err := ledger.Complete(ctx, b.ID)
	assert.ErrorIs(t, err, ErrServiceNotEnded)

	past := createConfirmed(t, ledger, ledgerNow.AddDate(0, 0, -5))
	done, err := ledger.Complete(ctx, past.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)
}

func TestCompleteRequiresConfirmed(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	b, err := ledger.Create(ctx, testRequest(ledgerNow.AddDate(0, 0, -5)))
	require.NoError(t, err)

	_, err = ledger.Complete(ctx, b.ID)
	var transErr *InvalidTransitionError
	require.ErrorAs(t, err, &transErr)
}

func TestMarkNoShow(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	b := createConfirmed(t, ledger, ledgerNow.AddDate(0, 0, 10))
	b, err := ledger.MarkNoShow(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNoShow, b.Status)
	assert.True(t, b.Terminal())

	pending, err := ledger.Create(ctx, testRequest(ledgerNow.AddDate(0, 0, 10)))
	require.NoError(t, err)
	_, err = ledger.MarkNoShow(ctx, pending.ID)
	var transErr *InvalidTransitionError
	require.ErrorAs(t, err, &transErr)
}

func TestAttachReviewOnlyAfterCompletion(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	b := createConfirmed(t, ledger, ledgerNow.AddDate(0, 0, -5))
	_, err := ledger.AttachReview(ctx, b.ID, models.Review{Rating: 5})
	assert.ErrorIs(t, err, ErrReviewNotAllowed)

	_, err = ledger.Complete(ctx, b.ID)
	require.NoError(t, err)

	got, err := ledger.AttachReview(ctx, b.ID, models.Review{Rating: 5, Comment: "great stay"})
	require.NoError(t, err)
	require.NotNil(t, got.Review)
	assert.Equal(t, 5, got.Review.Rating)
	assert.Equal(t, ledgerNow, got.Review.At)
}

func TestAppendCommunication(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	b, err := ledger.Create(ctx, testRequest(ledgerNow.AddDate(0, 0, 10)))
	require.NoError(t, err)

	_, err = ledger.AppendCommunication(ctx, b.ID, "user-1", "what time is check-in?")
	require.NoError(t, err)
	got, err := ledger.AppendCommunication(ctx, b.ID, "prov-1", "any time after 2pm")
	require.NoError(t, err)

	require.Len(t, got.Communication, 2)
	assert.Equal(t, "user-1", got.Communication[0].Sender)
	assert.Equal(t, "any time after 2pm", got.Communication[1].Message)
}
