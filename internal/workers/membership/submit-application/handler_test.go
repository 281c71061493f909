// internal/workers/membership/submit-application/handler_test.go
package submitapplication

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"membership-workers/internal/allocator"
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
	alloc := allocator.New(st, "D")
	alloc.Now = func() time.Time {
		return time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC)
	}

	return NewHandler(LoadConfig(), st, alloc, logger.NewTestLogger(t)), st
}

func validFields() map[string]interface{} {
	return map[string]interface{}{
		"memberName": "Asha Nair",
		"email":      "asha.nair@example.org",
		"mobile":     "9876543210",
		"city":       "Kochi",
		"bloodGroup": "O+",
	}
}

func TestExecute_CreatesMember(t *testing.T) {
	h, st := setupHandler(t)
	ctx := context.Background()

	output, err := h.Execute(ctx, &Input{
		UID:            "firebase-uid-1",
		MembershipType: models.TypeAnnual,
		Fields:         validFields(),
	})
	require.NoError(t, err)

	assert.Equal(t, "AM2025001", output.MemberID)
	assert.Equal(t, models.StatusSubmitted, output.ApplicationStatus)
	assert.NotEmpty(t, output.DateOfSubmission)

	got, err := st.GetMember(ctx, output.MemberID)
	require.NoError(t, err)
	assert.Equal(t, "Asha Nair", got.MemberName)
	assert.Equal(t, "asha.nair@example.org", got.Email)
	assert.Equal(t, "Kochi", got.City)

	// Both lookup entries were written.
	id, err := st.LookupByUID(ctx, "firebase-uid-1")
	require.NoError(t, err)
	assert.Equal(t, output.MemberID, id)

	id, err = st.LookupByEmail(ctx, "asha.nair@example.org")
	require.NoError(t, err)
	assert.Equal(t, output.MemberID, id)
}

func TestExecute_LifeMemberNamespace(t *testing.T) {
	h, _ := setupHandler(t)

	output, err := h.Execute(context.Background(), &Input{
		UID:            "firebase-uid-2",
		MembershipType: models.TypeLife,
		Fields:         validFields(),
	})
	require.NoError(t, err)
	assert.Equal(t, "LM2025001", output.MemberID)
}

func TestExecute_DuplicateUID(t *testing.T) {
	h, _ := setupHandler(t)
	ctx := context.Background()

	_, err := h.Execute(ctx, &Input{
		UID:            "firebase-uid-1",
		MembershipType: models.TypeAnnual,
		Fields:         validFields(),
	})
	require.NoError(t, err)

	fields := validFields()
	fields["email"] = "other@example.org"
	_, err = h.Execute(ctx, &Input{
		UID:            "firebase-uid-1",
		MembershipType: models.TypeAnnual,
		Fields:         fields,
	})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDuplicateApplication))
}

func TestExecute_DuplicateEmail(t *testing.T) {
	h, _ := setupHandler(t)
	ctx := context.Background()

	_, err := h.Execute(ctx, &Input{
		UID:            "firebase-uid-1",
		MembershipType: models.TypeAnnual,
		Fields:         validFields(),
	})
	require.NoError(t, err)

	_, err = h.Execute(ctx, &Input{
		UID:            "firebase-uid-2",
		MembershipType: models.TypeAnnual,
		Fields:         validFields(),
	})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDuplicateApplication))
}

func TestExecute_Validation(t *testing.T) {
	h, _ := setupHandler(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(map[string]interface{})
		code   apperrors.ErrorCode
	}{
		{
			"bad email",
			func(f map[string]interface{}) { f["email"] = "not-an-email" },
			apperrors.ErrCodeValidationFailed,
		},
		{
			"short mobile",
			func(f map[string]interface{}) { f["mobile"] = "12345" },
			apperrors.ErrCodeValidationFailed,
		},
		{
			"missing name",
			func(f map[string]interface{}) { delete(f, "memberName") },
			apperrors.ErrCodeValidationFailed,
		},
		{
			"unknown blood group",
			func(f map[string]interface{}) { f["bloodGroup"] = "C+" },
			apperrors.ErrCodeValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := validFields()
			tt.mutate(fields)
			_, err := h.Execute(ctx, &Input{
				UID:            "firebase-uid-9",
				MembershipType: models.TypeAnnual,
				Fields:         fields,
			})
			assert.True(t, apperrors.HasCode(err, tt.code))
		})
	}
}

func TestExecute_UnknownMembershipType(t *testing.T) {
	h, _ := setupHandler(t)

	_, err := h.Execute(context.Background(), &Input{
		UID:            "firebase-uid-1",
		MembershipType: "Platinum",
		Fields:         validFields(),
	})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidMembershipType))
}

func TestExecute_MissingUID(t *testing.T) {
	h, _ := setupHandler(t)

	_, err := h.Execute(context.Background(), &Input{
		MembershipType: models.TypeAnnual,
		Fields:         validFields(),
	})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationFailed))
}
