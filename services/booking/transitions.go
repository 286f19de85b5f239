package booking

import "roamly/models"

// bookingTransitions is the lifecycle graph:
// pending → {confirmed, cancelled}; confirmed → {completed, cancelled, no_show}.
var bookingTransitions = map[string][]string{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed: {models.StatusCompleted, models.StatusCancelled, models.StatusNoShow},
}

// paymentTransitions is the independent payment axis:
// pending → processing → {completed, failed}; completed → {refunded,
// partially_refunded}. failed → pending reopens the capture for a retry.
var paymentTransitions = map[string][]string{
	models.PaymentPending:    {models.PaymentProcessing},
	models.PaymentProcessing: {models.PaymentCompleted, models.PaymentFailed},
	models.PaymentCompleted:  {models.PaymentRefunded, models.PaymentPartiallyRefunded},
	models.PaymentFailed:     {models.PaymentPending},
}

func canTransition(graph map[string][]string, from, to string) bool {
	for _, next := range graph[from] {
		if next == to {
			return true
		}
	}
	return false
}

// transitionBooking moves the booking status or fails with
// InvalidTransitionError.
func transitionBooking(b *models.Booking, to string) error {
	if !canTransition(bookingTransitions, b.Status, to) {
		return newTransitionError("booking", b.Status, to)
	}
	b.Status = to
	return nil
}

// transitionPayment moves the payment sub-state or fails with
// InvalidTransitionError.
func transitionPayment(b *models.Booking, to string) error {
	if !canTransition(paymentTransitions, b.Payment.Status, to) {
		return newTransitionError("payment", b.Payment.Status, to)
	}
	b.Payment.Status = to
	return nil
}
