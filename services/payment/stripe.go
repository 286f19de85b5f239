package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"

	"roamly/utils"
)

// StripeGateway implements Gateway on Stripe PaymentIntents. The webhook
// configured on the Stripe account delivers the outcome asynchronously.
type StripeGateway struct {
	Logger *zap.Logger
}

// NewStripeGateway constructs the production gateway. stripe.Key must be set
// before the first call (done in main from config).
func NewStripeGateway(logger *zap.Logger) *StripeGateway {
	return &StripeGateway{Logger: logger}
}

func (g *StripeGateway) Initiate(ctx context.Context, req InitiateRequest) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(utils.MinorUnits(req.Amount, req.Currency)),
		Currency: stripe.String(req.Currency),
		PaymentMethodTypes: stripe.StringSlice([]string{
			req.Method,
		}),
	}
	params.Context = ctx
	params.AddMetadata("booking_id", req.BookingID)
	params.AddMetadata("user_id", req.UserID)

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe payment intent for booking %s: %w", req.BookingID, err)
	}

	g.Logger.Info("payment initiated",
		zap.String("bookingId", req.BookingID),
		zap.String("paymentRef", intent.ID),
		zap.Float64("amount", req.Amount),
		zap.String("currency", req.Currency))
	return intent.ID, nil
}
