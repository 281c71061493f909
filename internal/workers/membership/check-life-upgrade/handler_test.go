// internal/workers/membership/check-life-upgrade/handler_test.go
package checklifeupgrade

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "membership-workers/internal/common/errors"
	"membership-workers/internal/common/logger"
	"membership-workers/internal/models"
	"membership-workers/internal/store"
)

func setupHandler(t *testing.T, today time.Time) (*Handler, *store.Store) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	st := store.New(client)
	h := NewHandler(LoadConfig(), st, logger.NewTestLogger(t))
	h.Now = func() time.Time { return today }
	return h, st
}

func TestExecute_EligibilityBoundary(t *testing.T) {
	tests := []struct {
		name     string
		today    string
		eligible bool
	}{
		{"day before anniversary", "2025-01-09", false},
		{"anniversary day", "2025-01-10", true},
		{"after anniversary", "2025-05-01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			today, err := time.Parse("2006-01-02", tt.today)
			require.NoError(t, err)

			h, st := setupHandler(t, today)
			ctx := context.Background()

			require.NoError(t, st.CreateMember(ctx, &models.Member{
				ID:                    "AM2024001",
				CurrentMembershipType: models.TypeAnnual,
				ApplicationStatus:     models.StatusPaid,
				DateOfSubmission:      "2024-01-10",
			}))

			output, err := h.Execute(ctx, &Input{MemberID: "AM2024001"})
			require.NoError(t, err)
			assert.Equal(t, tt.eligible, output.Eligible)
			assert.Equal(t, "2025-01-10", output.EligibleFrom)
		})
	}
}

func TestExecute_AlreadyLifeMember(t *testing.T) {
	h, st := setupHandler(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	require.NoError(t, st.CreateMember(ctx, &models.Member{
		ID:                    "LM2024001",
		CurrentMembershipType: models.TypeLife,
		DateOfSubmission:      "2024-01-10",
	}))

	output, err := h.Execute(ctx, &Input{MemberID: "LM2024001"})
	require.NoError(t, err)
	assert.False(t, output.Eligible)
}

func TestExecute_MissingSubmissionDate(t *testing.T) {
	h, st := setupHandler(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	require.NoError(t, st.CreateMember(ctx, &models.Member{
		ID:                    "AM2024001",
		CurrentMembershipType: models.TypeAnnual,
	}))

	output, err := h.Execute(ctx, &Input{MemberID: "AM2024001"})
	require.NoError(t, err)
	assert.False(t, output.Eligible)
	assert.Empty(t, output.EligibleFrom)
}

func TestExecute_MemberNotFound(t *testing.T) {
	h, _ := setupHandler(t, time.Now())

	_, err := h.Execute(context.Background(), &Input{MemberID: "AM2099999"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeMemberNotFound))
}
