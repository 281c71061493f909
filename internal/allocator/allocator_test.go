// internal/allocator/allocator_test.go
package allocator

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "membership-workers/internal/common/errors"
	"membership-workers/internal/models"
	"membership-workers/internal/store"
)

func setupAllocator(t *testing.T) *Allocator {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	a := New(store.New(client), "D")
	a.Now = func() time.Time {
		return time.Date(2025, time.April, 10, 12, 0, 0, 0, time.UTC)
	}
	return a
}

func TestAllocateMemberID_SequenceAndFormat(t *testing.T) {
	a := setupAllocator(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		id, err := a.AllocateMemberID(ctx, models.TypeAnnual)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("AM2025%03d", i), id)
	}

	// Other namespaces have independent counters.
	id, err := a.AllocateMemberID(ctx, models.TypeLife)
	require.NoError(t, err)
	assert.Equal(t, "LM2025001", id)

	id, err = a.AllocateMemberID(ctx, models.TypeHonorary)
	require.NoError(t, err)
	assert.Equal(t, "HM2025001", id)
}

func TestAllocateMemberID_Uniqueness(t *testing.T) {
	a := setupAllocator(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id, err := a.AllocateMemberID(ctx, models.TypeAnnual)
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestAllocateMemberID_YearRollover(t *testing.T) {
	a := setupAllocator(t)
	ctx := context.Background()

	id, err := a.AllocateMemberID(ctx, models.TypeAnnual)
	require.NoError(t, err)
	assert.Equal(t, "AM2025001", id)

	id, err = a.AllocateMemberID(ctx, models.TypeAnnual)
	require.NoError(t, err)
	assert.Equal(t, "AM2025002", id)

	// Sequence restarts at 1 in the new year.
	a.Now = func() time.Time {
		return time.Date(2026, time.January, 2, 9, 0, 0, 0, time.UTC)
	}
	id, err = a.AllocateMemberID(ctx, models.TypeAnnual)
	require.NoError(t, err)
	assert.Equal(t, "AM2026001", id)
}

func TestAllocateMemberID_UnknownType(t *testing.T) {
	a := setupAllocator(t)

	_, err := a.AllocateMemberID(context.Background(), "Platinum")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidMembershipType))
}

func TestAllocateReceipt_FlatSequence(t *testing.T) {
	a := setupAllocator(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		receiptNo, err := a.AllocateReceipt(ctx)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("D%05d", i), receiptNo)
	}

	// Year rollover does not reset the receipt sequence.
	a.Now = func() time.Time {
		return time.Date(2026, time.January, 2, 9, 0, 0, 0, time.UTC)
	}
	receiptNo, err := a.AllocateReceipt(ctx)
	require.NoError(t, err)
	assert.Equal(t, "D00004", receiptNo)
}

func TestAllocateReceiptWithRetry_StoreDown(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.MatchExpectationsInOrder(false)

	a := New(store.New(client), "D")

	// Every watch attempt fails at the initial read.
	_, err := a.AllocateReceiptWithRetry(context.Background(), 2)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeAllocationFailed))

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.True(t, stdErr.Retryable)
}
