package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	catalogRepo "roamly/database/repository/catalog"
	"roamly/models"
)

// Aggregator converts a cart into booking requests, one per distinct
// (service, date range) group. Identical line items added twice merge into a
// single request instead of producing duplicate reservations.
type Aggregator struct {
	Catalog catalogRepo.ServiceRepository
}

// NewAggregator constructs an aggregator over the catalog.
func NewAggregator(catalog catalogRepo.ServiceRepository) *Aggregator {
	return &Aggregator{Catalog: catalog}
}

type lineGroup struct {
	ServiceID string
	Start     string
	End       string
}

// ToBookingRequests validates and groups the cart. The returned requests
// carry the resolved provider and slot key but no pricing yet; the
// coordinator fills that in.
func (a *Aggregator) ToBookingRequests(ctx context.Context, cart models.Cart) ([]models.BookingRequest, error) {
	if len(cart.Lines) == 0 {
		return nil, newCartError(CodeEmptyCart, "cart for user %s has no lines", cart.UserID)
	}

	grouped := make(map[lineGroup]*models.BookingRequest)
	var order []lineGroup

	for _, line := range cart.Lines {
		if line.EndDate.Before(line.StartDate) {
			return nil, newCartError(CodeBadDateRange, "line for service %s ends before it starts", line.ServiceID)
		}

		svc, err := a.Catalog.GetService(ctx, line.ServiceID)
		if err != nil {
			if errors.Is(err, catalogRepo.ErrNotFound) {
				return nil, newCartError(CodeUnknownService, "service %s does not exist", line.ServiceID)
			}
			return nil, fmt.Errorf("failed to resolve service %s: %w", line.ServiceID, err)
		}
		if !svc.Active {
			return nil, newCartError(CodeInactiveService, "service %s is no longer offered", line.ServiceID)
		}

		key := lineGroup{
			ServiceID: line.ServiceID,
			Start:     line.StartDate.Format(time.RFC3339),
			End:       line.EndDate.Format(time.RFC3339),
		}
		if req, ok := grouped[key]; ok {
			req.Units += unitsFor(line)
			req.Guests.Adults += line.Guests.Adults
			req.Guests.Children += line.Guests.Children
			req.Guests.Infants += line.Guests.Infants
			continue
		}

		grouped[key] = &models.BookingRequest{
			UserID:          cart.UserID,
			ServiceID:       svc.ID,
			ProviderID:      svc.ProviderID,
			Units:           unitsFor(line),
			Guests:          line.Guests,
			StartDate:       line.StartDate,
			EndDate:         line.EndDate,
			SlotKey:         line.StartDate.Format("2006-01-02"),
			SpecialRequests: line.SpecialRequests,
		}
		order = append(order, key)
	}

	out := make([]models.BookingRequest, 0, len(order))
	for _, key := range order {
		out = append(out, *grouped[key])
	}
	return out, nil
}

// unitsFor derives the capacity units a line consumes: the guest count when
// stated, otherwise the explicit quantity, floor one.
func unitsFor(line models.CartLine) int {
	if n := line.Guests.Total(); n > 0 {
		return n
	}
	if line.Quantity > 0 {
		return line.Quantity
	}
	return 1
}
