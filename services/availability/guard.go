package availability

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	availabilityRepo "roamly/database/repository/availability"
	catalogRepo "roamly/database/repository/catalog"
	"roamly/models"
)

// Guard is the sole path through which slot capacity changes. Admission is
// decided with a read-check-write cycle committed by compare-and-swap on the
// slot's persisted version counter; no lock is held between read and write.
type Guard interface {
	Reserve(ctx context.Context, serviceID, slotKey string, units int) (models.ReservationToken, error)
	Release(ctx context.Context, token models.ReservationToken) error
}

// DefaultGuard implements Guard.
type DefaultGuard struct {
	Slots      availabilityRepo.SlotRepository
	Catalog    catalogRepo.ServiceRepository
	Logger     *zap.Logger
	MaxRetries int
	Backoff    time.Duration
	Now        func() time.Time
}

// NewDefaultGuard constructs a guard with the given retry budget.
func NewDefaultGuard(slots availabilityRepo.SlotRepository, catalog catalogRepo.ServiceRepository, logger *zap.Logger, maxRetries int, backoff time.Duration) *DefaultGuard {
	return &DefaultGuard{
		Slots:      slots,
		Catalog:    catalog,
		Logger:     logger,
		MaxRetries: maxRetries,
		Backoff:    backoff,
		Now:        time.Now,
	}
}

// Reserve admits units against the slot, or rejects with a CapacityError.
// A fresh slot is seeded from the service's per-slot capacity on first touch.
func (g *DefaultGuard) Reserve(ctx context.Context, serviceID, slotKey string, units int) (models.ReservationToken, error) {
	var token models.ReservationToken
	if units <= 0 {
		return token, newCapacityError(KindExhausted, "requested %d units", units)
	}

	svc, err := g.Catalog.GetService(ctx, serviceID)
	if err != nil {
		return token, fmt.Errorf("failed to load service %s: %w", serviceID, err)
	}
	if svc.IsBlackedOut(slotKey) {
		return token, newCapacityError(KindBlackout, "date %s is blacked out for service %s", slotKey, serviceID)
	}
	if err := g.checkNotice(svc, slotKey); err != nil {
		return token, err
	}

	for attempt := 0; attempt <= g.MaxRetries; attempt++ {
		if attempt > 0 {
			g.sleep(ctx, attempt)
		}

		slot, err := g.Slots.Get(ctx, serviceID, slotKey)
		if errors.Is(err, availabilityRepo.ErrNotFound) {
			slot = &models.AvailabilitySlot{
				ServiceID: serviceID,
				SlotKey:   slotKey,
				Capacity:  svc.CapacityPerSlot,
			}
			if createErr := g.Slots.Create(ctx, slot); createErr != nil {
				if errors.Is(createErr, availabilityRepo.ErrDuplicate) {
					// Another writer seeded the slot first; re-read it.
					continue
				}
				return token, fmt.Errorf("failed to seed slot %s/%s: %w", serviceID, slotKey, createErr)
			}
		} else if err != nil {
			return token, fmt.Errorf("failed to read slot %s/%s: %w", serviceID, slotKey, err)
		}

		if slot.Reserved+units > slot.Capacity {
			return token, newCapacityError(KindExhausted,
				"slot %s/%s has %d of %d reserved, requested %d",
				serviceID, slotKey, slot.Reserved, slot.Capacity, units)
		}

		err = g.Slots.CompareAndSwap(ctx, serviceID, slotKey, slot.Version, units)
		if errors.Is(err, availabilityRepo.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return token, fmt.Errorf("failed to commit reservation on %s/%s: %w", serviceID, slotKey, err)
		}

		return models.ReservationToken{
			ID:        uuid.New().String(),
			ServiceID: serviceID,
			SlotKey:   slotKey,
			Units:     units,
		}, nil
	}

	g.Logger.Warn("reservation retry budget exhausted",
		zap.String("serviceId", serviceID),
		zap.String("slotKey", slotKey),
		zap.Int("units", units))
	return token, newCapacityError(KindConflict, "slot %s/%s contended beyond %d attempts", serviceID, slotKey, g.MaxRetries)
}

// Release returns held capacity, using the same CAS discipline. Called on
// checkout abort and cancellation.
func (g *DefaultGuard) Release(ctx context.Context, token models.ReservationToken) error {
	for attempt := 0; attempt <= g.MaxRetries; attempt++ {
		if attempt > 0 {
			g.sleep(ctx, attempt)
		}

		slot, err := g.Slots.Get(ctx, token.ServiceID, token.SlotKey)
		if err != nil {
			return fmt.Errorf("failed to read slot %s/%s for release: %w", token.ServiceID, token.SlotKey, err)
		}

		delta := -token.Units
		if slot.Reserved+delta < 0 {
			// Reserved going negative means a double release or a corrupt
			// slot; clamp and report rather than underflow.
			g.Logger.Error("release would underflow reserved count",
				zap.String("serviceId", token.ServiceID),
				zap.String("slotKey", token.SlotKey),
				zap.Int("reserved", slot.Reserved),
				zap.Int("units", token.Units))
			delta = -slot.Reserved
		}
		if delta == 0 {
			return nil
		}

		err = g.Slots.CompareAndSwap(ctx, token.ServiceID, token.SlotKey, slot.Version, delta)
		if errors.Is(err, availabilityRepo.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to commit release on %s/%s: %w", token.ServiceID, token.SlotKey, err)
		}
		return nil
	}
	return newCapacityError(KindConflict, "release of %s/%s contended beyond %d attempts", token.ServiceID, token.SlotKey, g.MaxRetries)
}

func (g *DefaultGuard) checkNotice(svc *models.Service, slotKey string) error {
	if svc.MinBookingNotice <= 0 {
		return nil
	}
	slotDate, err := time.Parse("2006-01-02", slotKey)
	if err != nil {
		return fmt.Errorf("malformed slot key %q: %w", slotKey, err)
	}
	if slotDate.Before(g.Now().Add(svc.MinBookingNotice)) {
		return newCapacityError(KindNotice,
			"slot %s is within the %s booking notice for service %s",
			slotKey, svc.MinBookingNotice, svc.ID)
	}
	return nil
}

// sleep backs off with jitter between CAS attempts so contending writers
// spread out.
func (g *DefaultGuard) sleep(ctx context.Context, attempt int) {
	if g.Backoff <= 0 {
		return
	}
	d := g.Backoff * time.Duration(attempt)
	d += time.Duration(rand.Int63n(int64(g.Backoff)))
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
