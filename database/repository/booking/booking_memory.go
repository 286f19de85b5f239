package bookingRepo

import (
	"context"
	"sync"
	"time"

	"roamly/models"
)

// MemoryBookingRepo is an in-memory BookingRepository for tests and local
// development. It enforces the same unique-id constraint as Mongo.
type MemoryBookingRepo struct {
	mu       sync.RWMutex
	bookings map[string]models.Booking
}

// NewMemoryBookingRepo constructs an empty in-memory booking store.
func NewMemoryBookingRepo() *MemoryBookingRepo {
	return &MemoryBookingRepo{bookings: make(map[string]models.Booking)}
}

func (repo *MemoryBookingRepo) Insert(_ context.Context, booking *models.Booking) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.bookings[booking.ID]; ok {
		return ErrDuplicateID
	}
	repo.bookings[booking.ID] = *booking
	return nil
}

func (repo *MemoryBookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	booking, ok := repo.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &booking, nil
}

func (repo *MemoryBookingRepo) Update(_ context.Context, booking *models.Booking) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.bookings[booking.ID]; !ok {
		return ErrNotFound
	}
	repo.bookings[booking.ID] = *booking
	return nil
}

func (repo *MemoryBookingRepo) ListByUser(_ context.Context, userID string) ([]models.Booking, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	var out []models.Booking
	for _, b := range repo.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (repo *MemoryBookingRepo) ListConfirmedEndedBefore(_ context.Context, t time.Time) ([]models.Booking, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	var out []models.Booking
	for _, b := range repo.bookings {
		if b.Status == models.StatusConfirmed && b.Details.EndDate.Before(t) {
			out = append(out, b)
		}
	}
	return out, nil
}
