package availability

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	availabilityRepo "roamly/database/repository/availability"
	catalogRepo "roamly/database/repository/catalog"
	"roamly/models"
)

const testSlotKey = "2026-07-15"

func testService(capacity int) models.Service {
	return models.Service{
		ID:              "svc-1",
		Active:          true,
		BasePrice:       100,
		Currency:        "USD",
		PriceType:       models.PriceFixed,
		CapacityPerSlot: capacity,
	}
}

func newTestGuard(t *testing.T, svc models.Service) (*DefaultGuard, *availabilityRepo.MemorySlotRepo) {
	t.Helper()
	slots := availabilityRepo.NewMemorySlotRepo()
	catalog := catalogRepo.NewMemoryServiceRepo(svc)
	return NewDefaultGuard(slots, catalog, zap.NewNop(), 10, 0), slots
}

func TestReserveSeedsAndAdmits(t *testing.T) {
	guard, slots := newTestGuard(t, testService(5))

	token, err := guard.Reserve(context.Background(), "svc-1", testSlotKey, 2)
	require.NoError(t, err)
	assert.NotEmpty(t, token.ID)
	assert.Equal(t, "svc-1", token.ServiceID)
	assert.Equal(t, testSlotKey, token.SlotKey)
	assert.Equal(t, 2, token.Units)

	slot, err := slots.Get(context.Background(), "svc-1", testSlotKey)
	require.NoError(t, err)
	assert.Equal(t, 5, slot.Capacity)
	assert.Equal(t, 2, slot.Reserved)
}

func TestReserveRejectsOverCapacity(t *testing.T) {
	guard, _ := newTestGuard(t, testService(3))
	ctx := context.Background()

	_, err := guard.Reserve(ctx, "svc-1", testSlotKey, 2)
	require.NoError(t, err)

	_, err = guard.Reserve(ctx, "svc-1", testSlotKey, 2)
	require.Error(t, err)
	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, KindExhausted, capErr.Kind)
	assert.False(t, capErr.Retryable())

	// The remaining unit is still admittable.
	_, err = guard.Reserve(ctx, "svc-1", testSlotKey, 1)
	assert.NoError(t, err)
}

func TestReserveNeverOversellsUnderContention(t *testing.T) {
	const capacity = 10
	const writers = 50

	guard, slots := newTestGuard(t, testService(capacity))
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := guard.Reserve(ctx, "svc-1", testSlotKey, 1)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	admitted := 0
	for err := range results {
		if err == nil {
			admitted++
			continue
		}
		var capErr *CapacityError
		require.ErrorAs(t, err, &capErr)
	}

	slot, err := slots.Get(ctx, "svc-1", testSlotKey)
	require.NoError(t, err)
	assert.LessOrEqual(t, slot.Reserved, capacity)
	assert.Equal(t, slot.Reserved, admitted)
}

func TestReleaseRestoresCapacity(t *testing.T) {
	guard, slots := newTestGuard(t, testService(2))
	ctx := context.Background()

	token, err := guard.Reserve(ctx, "svc-1", testSlotKey, 2)
	require.NoError(t, err)

	_, err = guard.Reserve(ctx, "svc-1", testSlotKey, 1)
	require.Error(t, err)

	require.NoError(t, guard.Release(ctx, token))

	slot, err := slots.Get(ctx, "svc-1", testSlotKey)
	require.NoError(t, err)
	assert.Equal(t, 0, slot.Reserved)

	_, err = guard.Reserve(ctx, "svc-1", testSlotKey, 2)
	assert.NoError(t, err)
}

func TestReleaseClampsAtZero(t *testing.T) {
	guard, slots := newTestGuard(t, testService(5))
	ctx := context.Background()

	token, err := guard.Reserve(ctx, "svc-1", testSlotKey, 1)
	require.NoError(t, err)

	require.NoError(t, guard.Release(ctx, token))
	// Double release must not drive reserved negative.
	require.NoError(t, guard.Release(ctx, token))

	slot, err := slots.Get(ctx, "svc-1", testSlotKey)
	require.NoError(t, err)
	assert.Equal(t, 0, slot.Reserved)
}

func TestReserveBlackoutDate(t *testing.T) {
	svc := testService(5)
	svc.BlackoutDates = []string{testSlotKey}
	guard, _ := newTestGuard(t, svc)

	_, err := guard.Reserve(context.Background(), "svc-1", testSlotKey, 1)
	require.Error(t, err)
	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, KindBlackout, capErr.Kind)
}

func TestReserveMinBookingNotice(t *testing.T) {
	svc := testService(5)
	svc.MinBookingNotice = 48 * time.Hour
	guard, _ := newTestGuard(t, svc)
	guard.Now = func() time.Time {
		return time.Date(2026, 7, 14, 12, 0, 0, 0, time.UTC)
	}

	_, err := guard.Reserve(context.Background(), "svc-1", testSlotKey, 1)
	require.Error(t, err)
	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, KindNotice, capErr.Kind)

	// Far enough out, the same slot admits.
	guard.Now = func() time.Time {
		return time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)
	}
	_, err = guard.Reserve(context.Background(), "svc-1", testSlotKey, 1)
	assert.NoError(t, err)
}

func TestReserveRejectsNonPositiveUnits(t *testing.T) {
	guard, _ := newTestGuard(t, testService(5))

	for _, units := range []int{0, -1} {
		_, err := guard.Reserve(context.Background(), "svc-1", testSlotKey, units)
		require.Error(t, err)
	}
}
