package availabilityRepo

import (
	"context"
	"errors"

	"roamly/models"
)

// Sentinel errors surfaced by slot repositories.
var (
	// ErrNotFound means no slot document exists for (serviceID, slotKey).
	ErrNotFound = errors.New("availability slot not found")
	// ErrVersionConflict means another writer updated the slot between the
	// read and the conditional write.
	ErrVersionConflict = errors.New("availability slot version conflict")
	// ErrDuplicate means a slot for (serviceID, slotKey) already exists.
	ErrDuplicate = errors.New("availability slot already exists")
)

// SlotRepository is the persistence contract for AvailabilitySlot records.
// The version counter is part of the persisted record so compare-and-swap
// survives process restarts.
type SlotRepository interface {
	Get(ctx context.Context, serviceID, slotKey string) (*models.AvailabilitySlot, error)
	Create(ctx context.Context, slot *models.AvailabilitySlot) error
	// CompareAndSwap adjusts Reserved by delta only if the persisted version
	// still equals version; on success the version counter is incremented.
	// Returns ErrVersionConflict when the version moved.
	CompareAndSwap(ctx context.Context, serviceID, slotKey string, version int64, delta int) error
}
