// internal/workers/membership/approve-application/handler_test.go
package approveapplication

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "membership-workers/internal/common/errors"
	"membership-workers/internal/common/logger"
	"membership-workers/internal/models"
	"membership-workers/internal/store"
)

func setupHandler(t *testing.T) (*Handler, *store.Store) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	st := store.New(client)
	return NewHandler(LoadConfig(), st, logger.NewTestLogger(t)), st
}

func TestExecute_Approve(t *testing.T) {
	h, st := setupHandler(t)
	ctx := context.Background()

	require.NoError(t, st.CreateMember(ctx, &models.Member{
		ID:                "AM2025001",
		ApplicationStatus: models.StatusPaid,
	}))

	output, err := h.Execute(ctx, &Input{
		MemberID:   "AM2025001",
		ApprovedBy: "secretary@example.org",
		Decision:   DecisionApprove,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, output.ApplicationStatus)
	assert.NotEmpty(t, output.DateOfApproval)

	got, err := st.GetMember(ctx, "AM2025001")
	require.NoError(t, err)
	assert.Equal(t, "secretary@example.org", got.ApprovedBy)
}

func TestExecute_Reject(t *testing.T) {
	h, st := setupHandler(t)
	ctx := context.Background()

	require.NoError(t, st.CreateMember(ctx, &models.Member{
		ID:                "AM2025001",
		ApplicationStatus: models.StatusSubmitted,
	}))

	output, err := h.Execute(ctx, &Input{
		MemberID:   "AM2025001",
		ApprovedBy: "secretary@example.org",
		Decision:   DecisionReject,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, output.ApplicationStatus)
}

func TestExecute_Errors(t *testing.T) {
	h, st := setupHandler(t)
	ctx := context.Background()

	require.NoError(t, st.CreateMember(ctx, &models.Member{
		ID:                "AM2025001",
		ApplicationStatus: models.StatusPaid,
	}))

	tests := []struct {
		name  string
		input *Input
		code  apperrors.ErrorCode
	}{
		{
			"missing member",
			&Input{MemberID: "AM2099999", ApprovedBy: "secretary@example.org", Decision: DecisionApprove},
			apperrors.ErrCodeMemberNotFound,
		},
		{
			"missing approver",
			&Input{MemberID: "AM2025001", Decision: DecisionApprove},
			apperrors.ErrCodeValidationFailed,
		},
		{
			"unknown decision",
			&Input{MemberID: "AM2025001", ApprovedBy: "secretary@example.org", Decision: "maybe"},
			apperrors.ErrCodeValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Execute(ctx, tt.input)
			assert.True(t, apperrors.HasCode(err, tt.code))
		})
	}
}
