package handlers

import (
	"go.uber.org/zap"

	bookingRepo "roamly/database/repository/booking"
	bookingsvc "roamly/services/booking"
	"roamly/services/checkout"
)

// HandlerBundle aggregates all HTTP handlers for route registration.
type HandlerBundle struct {
	Checkout *CheckoutHandler
	Booking  *BookingHandler
	Webhook  *PaymentWebhookHandler
}

// NewHandlerBundle builds the full handler set from the service layer.
func NewHandlerBundle(coord *checkout.Coordinator, ledger bookingsvc.Ledger, repo bookingRepo.BookingRepository, logger *zap.Logger) *HandlerBundle {
	return &HandlerBundle{
		Checkout: NewCheckoutHandler(coord, logger),
		Booking:  NewBookingHandler(ledger, repo, logger),
		Webhook:  NewPaymentWebhookHandler(ledger, logger),
	}
}
