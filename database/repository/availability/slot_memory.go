package availabilityRepo

import (
	"context"
	"sync"

	"roamly/models"
)

// MemorySlotRepo is an in-memory SlotRepository used by tests and local
// development. It honours the same CAS discipline as the Mongo
// implementation.
type MemorySlotRepo struct {
	mu    sync.Mutex
	slots map[string]*models.AvailabilitySlot
}

// NewMemorySlotRepo constructs an empty in-memory slot store.
func NewMemorySlotRepo() *MemorySlotRepo {
	return &MemorySlotRepo{slots: make(map[string]*models.AvailabilitySlot)}
}

func slotID(serviceID, slotKey string) string {
	return serviceID + "|" + slotKey
}

func (repo *MemorySlotRepo) Get(_ context.Context, serviceID, slotKey string) (*models.AvailabilitySlot, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	slot, ok := repo.slots[slotID(serviceID, slotKey)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *slot
	return &cp, nil
}

func (repo *MemorySlotRepo) Create(_ context.Context, slot *models.AvailabilitySlot) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	key := slotID(slot.ServiceID, slot.SlotKey)
	if _, ok := repo.slots[key]; ok {
		return ErrDuplicate
	}
	cp := *slot
	repo.slots[key] = &cp
	return nil
}

func (repo *MemorySlotRepo) CompareAndSwap(_ context.Context, serviceID, slotKey string, version int64, delta int) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	slot, ok := repo.slots[slotID(serviceID, slotKey)]
	if !ok {
		return ErrNotFound
	}
	if slot.Version != version {
		return ErrVersionConflict
	}
	slot.Reserved += delta
	slot.Version++
	return nil
}
