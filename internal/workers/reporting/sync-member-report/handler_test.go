// internal/workers/reporting/sync-member-report/handler_test.go
package syncmemberreport

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "membership-workers/internal/common/errors"
	"membership-workers/internal/common/logger"
	"membership-workers/internal/models"
	"membership-workers/internal/store"
)

func setupStore(t *testing.T) *store.Store {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return store.New(client)
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestExecute_UpsertsReportRow(t *testing.T) {
	st := setupStore(t)
	db, mock := setupMockDB(t)
	ctx := context.Background()

	require.NoError(t, st.CreateMember(ctx, &models.Member{
		ID:                    "AM2025001",
		MemberName:            "Asha Nair",
		Email:                 "asha.nair@example.org",
		Mobile:                "9876543210",
		City:                  "Kochi",
		MembershipType:        models.TypeAnnual,
		CurrentMembershipType: models.TypeAnnual,
		ApplicationStatus:     models.StatusPaid,
		DateOfSubmission:      "2025-03-14",
		RenewalDueOn:          "2026-03-14",
		Payments: []models.Payment{
			{PaymentMode: models.ModeCash, Amount: 250, ReceiptNo: "T5001", DateOfPayment: "2025-03-14T10:00:00Z"},
		},
	}))

	mock.ExpectExec("INSERT INTO member_report").
		WithArgs(
			"AM2025001", "Asha Nair", "asha.nair@example.org", "9876543210", "Kochi",
			models.TypeAnnual, models.TypeAnnual, models.StatusPaid,
			"2025-03-14", "2026-03-14",
			1, 250, "T5001", "2025-03-14T10:00:00Z",
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	h := NewHandler(LoadConfig(), st, db, logger.NewTestLogger(t))

	output, err := h.Execute(ctx, &Input{MemberID: "AM2025001"})
	require.NoError(t, err)
	assert.True(t, output.Synced)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_NullDatesForLifeMember(t *testing.T) {
	st := setupStore(t)
	db, mock := setupMockDB(t)
	ctx := context.Background()

	require.NoError(t, st.CreateMember(ctx, &models.Member{
		ID:                    "LM2025001",
		MemberName:            "Ravi Menon",
		Email:                 "ravi@example.org",
		Mobile:                "9812345678",
		MembershipType:        models.TypeLife,
		CurrentMembershipType: models.TypeLife,
		ApplicationStatus:     models.StatusPaid,
		DateOfSubmission:      "2025-01-05",
	}))

	mock.ExpectExec("INSERT INTO member_report").
		WithArgs(
			"LM2025001", "Ravi Menon", "ravi@example.org", "9812345678", "",
			models.TypeLife, models.TypeLife, models.StatusPaid,
			"2025-01-05", nil,
			0, 0, "", nil,
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	h := NewHandler(LoadConfig(), st, db, logger.NewTestLogger(t))

	_, err := h.Execute(ctx, &Input{MemberID: "LM2025001"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_InsertFailure(t *testing.T) {
	st := setupStore(t)
	db, mock := setupMockDB(t)
	ctx := context.Background()

	require.NoError(t, st.CreateMember(ctx, &models.Member{
		ID:                "AM2025001",
		MemberName:        "Asha Nair",
		Email:             "asha.nair@example.org",
		Mobile:            "9876543210",
		MembershipType:    models.TypeAnnual,
		ApplicationStatus: models.StatusSubmitted,
	}))

	mock.ExpectExec("INSERT INTO member_report").
		WillReturnError(fmt.Errorf("connection reset"))

	h := NewHandler(LoadConfig(), st, db, logger.NewTestLogger(t))

	_, err := h.Execute(ctx, &Input{MemberID: "AM2025001"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDatabaseInsertFailed))
}

func TestExecute_MemberNotFound(t *testing.T) {
	st := setupStore(t)
	db, _ := setupMockDB(t)

	h := NewHandler(LoadConfig(), st, db, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{MemberID: "AM2099999"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeMemberNotFound))
}
