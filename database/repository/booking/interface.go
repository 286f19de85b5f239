package bookingRepo

import (
	"context"
	"errors"
	"time"

	"roamly/models"
)

// Sentinel errors surfaced by booking repositories.
var (
	ErrNotFound = errors.New("booking not found")
	// ErrDuplicateID means the generated booking id collided with an existing
	// record. The storage layer's unique constraint is the authority on id
	// uniqueness, not the generator.
	ErrDuplicateID = errors.New("booking id already exists")
)

// BookingRepository defines the persistence contract for Booking records.
// Bookings are never deleted, only status-terminated, so the interface
// deliberately has no delete operation.
type BookingRepository interface {
	Insert(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	Update(ctx context.Context, booking *models.Booking) error
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
	// ListConfirmedEndedBefore returns confirmed bookings whose service end
	// date passed before t; the completion sweep closes them out.
	ListConfirmedEndedBefore(ctx context.Context, t time.Time) ([]models.Booking, error)
}
