package checkout

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	catalogRepo "roamly/database/repository/catalog"
	"roamly/models"
	"roamly/services/availability"
	bookingsvc "roamly/services/booking"
	"roamly/services/fraud"
	"roamly/services/payment"
	"roamly/services/pricing"
)

// User identifies the requester for fraud screening and contact capture.
type User struct {
	ID      string
	Contact models.ContactInfo
	IP      string
}

// Coordinator orchestrates a checkout: validate cart → reserve capacity →
// price → screen for fraud → persist bookings → hand off payment. The cart
// commits all-or-nothing: any failure before persistence releases every
// reservation already taken for the attempt.
type Coordinator struct {
	Aggregator     *Aggregator
	Catalog        catalogRepo.ServiceRepository
	Guard          availability.Guard
	Pricer         *pricing.Engine
	Fraud          fraud.Gate
	Ledger         bookingsvc.Ledger
	Gateway        payment.Gateway
	Logger         *zap.Logger
	PaymentTimeout time.Duration
	Now            func() time.Time
}

// NewCoordinator wires a coordinator.
func NewCoordinator(agg *Aggregator, catalog catalogRepo.ServiceRepository, guard availability.Guard, pricer *pricing.Engine, gate fraud.Gate, ledger bookingsvc.Ledger, gateway payment.Gateway, logger *zap.Logger, paymentTimeout time.Duration) *Coordinator {
	return &Coordinator{
		Aggregator:     agg,
		Catalog:        catalog,
		Guard:          guard,
		Pricer:         pricer,
		Fraud:          gate,
		Ledger:         ledger,
		Gateway:        gateway,
		Logger:         logger,
		PaymentTimeout: paymentTimeout,
		Now:            time.Now,
	}
}

// Checkout turns the cart into pending bookings and returns immediately;
// payment completion arrives asynchronously through the payment webhook.
func (c *Coordinator) Checkout(ctx context.Context, cart models.Cart, user User, paymentMethod string) (models.BookingConfirmation, error) {
	var confirmation models.BookingConfirmation

	reqs, err := c.Aggregator.ToBookingRequests(ctx, cart)
	if err != nil {
		return confirmation, err
	}

	now := c.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for _, req := range reqs {
		if req.StartDate.Before(today) {
			return confirmation, newCartError(CodeDatesInPast, "service %s starts in the past", req.ServiceID)
		}
	}

	// Reserve capacity for every line before anything is persisted. The
	// guard enforces blackout dates and minimum notice.
	var tokens []models.ReservationToken
	abort := func() {
		for _, t := range tokens {
			if relErr := c.Guard.Release(ctx, t); relErr != nil {
				c.Logger.Error("failed to release reservation on checkout abort",
					zap.String("serviceId", t.ServiceID),
					zap.String("slotKey", t.SlotKey),
					zap.Error(relErr))
			}
		}
	}

	for i := range reqs {
		token, err := c.Guard.Reserve(ctx, reqs[i].ServiceID, reqs[i].SlotKey, reqs[i].Units)
		if err != nil {
			abort()
			return confirmation, err
		}
		tokens = append(tokens, token)
		reqs[i].ReservationID = token.ID
	}

	// Price each line.
	var total float64
	currency := ""
	for i := range reqs {
		svc, err := c.Catalog.GetService(ctx, reqs[i].ServiceID)
		if err != nil {
			abort()
			return confirmation, fmt.Errorf("failed to resolve service %s for pricing: %w", reqs[i].ServiceID, err)
		}
		breakdown, err := c.Pricer.Quote(svc, models.CartLine{
			ServiceID: reqs[i].ServiceID,
			Quantity:  reqs[i].Units,
			Guests:    reqs[i].Guests,
			StartDate: reqs[i].StartDate,
			EndDate:   reqs[i].EndDate,
		}, now)
		if err != nil {
			abort()
			return confirmation, err
		}
		reqs[i].Pricing = breakdown
		total += breakdown.Total
		if currency == "" {
			currency = breakdown.Currency
		}
	}

	// One fraud screen per checkout attempt, on the cart total.
	decision := c.Fraud.Screen(ctx, fraud.ScreenRequest{
		UserID:        user.ID,
		IP:            user.IP,
		Amount:        total,
		Currency:      currency,
		PaymentMethod: paymentMethod,
	})
	switch decision {
	case fraud.Deny:
		abort()
		return confirmation, &FraudDeniedError{UserID: user.ID}
	case fraud.Review:
		for i := range reqs {
			reqs[i].FraudFlag = models.FraudFlagReview
		}
	}

	// Persist bookings. A storage failure partway rolls the attempt back:
	// bookings already created cancel (which releases their capacity) and
	// the untaken tokens release directly.
	var created []*models.Booking
	for i := range reqs {
		reqs[i].Contact = user.Contact
		reqs[i].PaymentMethod = paymentMethod
		b, err := c.Ledger.Create(ctx, reqs[i])
		if err != nil {
			for _, prev := range created {
				if _, cancelErr := c.Ledger.Cancel(ctx, prev.ID, "system", "checkout aborted"); cancelErr != nil {
					c.Logger.Error("failed to cancel booking on checkout abort",
						zap.String("bookingId", prev.ID), zap.Error(cancelErr))
				}
			}
			for _, t := range tokens[len(created):] {
				if relErr := c.Guard.Release(ctx, t); relErr != nil {
					c.Logger.Error("failed to release reservation on checkout abort",
						zap.String("slotKey", t.SlotKey), zap.Error(relErr))
				}
			}
			return confirmation, fmt.Errorf("failed to persist booking: %w", err)
		}
		created = append(created, b)
	}

	// Hand off payment without blocking the caller. Review-flagged bookings
	// wait for secondary verification before any capture.
	for _, b := range created {
		if b.FraudFlag == models.FraudFlagReview {
			c.Logger.Info("payment capture withheld pending fraud review",
				zap.String("bookingId", b.ID))
			continue
		}
		go c.initiatePayment(b, paymentMethod)
	}

	confirmation.Status = models.StatusPending
	for _, b := range created {
		confirmation.BookingIDs = append(confirmation.BookingIDs, b.ID)
	}
	return confirmation, nil
}

// initiatePayment starts capture for one booking on a bounded timeout. A
// gateway failure or timeout leaves the booking pending for later
// reconciliation; it never fails the user-visible request.
func (c *Coordinator) initiatePayment(b *models.Booking, method string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.PaymentTimeout)
	defer cancel()

	ref, err := c.Gateway.Initiate(ctx, payment.InitiateRequest{
		BookingID: b.ID,
		UserID:    b.UserID,
		Amount:    b.Pricing.Total,
		Currency:  b.Pricing.Currency,
		Method:    method,
	})
	if err != nil {
		c.Logger.Warn("payment initiation failed, booking left pending for reconciliation",
			zap.String("bookingId", b.ID), zap.Error(err))
		return
	}
	if _, err := c.Ledger.MarkPaymentProcessing(ctx, b.ID, ref); err != nil {
		c.Logger.Warn("failed to mark payment processing",
			zap.String("bookingId", b.ID),
			zap.String("paymentRef", ref),
			zap.Error(err))
	}
}
