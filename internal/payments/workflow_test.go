// internal/payments/workflow_test.go
package payments

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

func setupWorkflow(t *testing.T) (*Workflow, *store.Store) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	st := store.New(client)
	alloc := allocator.New(st, "D")

	wf := NewWorkflow(st, alloc, nil, logger.NewTestLogger(t))
	wf.Now = func() time.Time {
		return time.Date(2024, time.June, 1, 11, 30, 0, 0, time.UTC)
	}
	return wf, st
}

func seedMember(t *testing.T, st *store.Store, m *models.Member) {
	t.Helper()
	require.NoError(t, st.CreateMember(context.Background(), m))
}

func TestRecord_CashPayment(t *testing.T) {
	wf, st := setupWorkflow(t)
	ctx := context.Background()

	seedMember(t, st, &models.Member{
		ID:                "AM2024001",
		MembershipType:    models.TypeAnnual,
		ApplicationStatus: models.StatusSubmitted,
	})

	result, err := wf.Record(ctx, &Request{
		MemberID:       "AM2024001",
		MembershipType: models.TypeAnnual,
		PaymentMode:    models.ModeCash,
		Amount:         250,
		Reference:      "T5001",
	})
	require.NoError(t, err)

	// Cash reuses the treasurer's book receipt number.
	assert.Equal(t, "T5001", result.ReceiptNo)
	assert.Equal(t, 250, result.Amount)
	assert.Equal(t, "2025-06-01", result.RenewalDueOn)

	got, err := st.GetMember(ctx, "AM2024001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, got.ApplicationStatus)
	assert.Equal(t, models.TypeAnnual, got.CurrentMembershipType)
	require.Len(t, got.Payments, 1)
	assert.Equal(t, models.StatusPaid, got.Payments[0].ApplicationStatus)
}

func TestRecord_DuplicateReference(t *testing.T) {
	wf, st := setupWorkflow(t)
	ctx := context.Background()

	seedMember(t, st, &models.Member{
		ID:                "AM2024001",
		MembershipType:    models.TypeAnnual,
		ApplicationStatus: models.StatusSubmitted,
	})

	req := &Request{
		MemberID:       "AM2024001",
		MembershipType: models.TypeAnnual,
		PaymentMode:    models.ModeCash,
		Amount:         250,
		Reference:      "T5001",
	}
	_, err := wf.Record(ctx, req)
	require.NoError(t, err)

	_, err = wf.Record(ctx, req)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDuplicatePayment))

	// The duplicate attempt appended nothing.
	got, err := st.GetMember(ctx, "AM2024001")
	require.NoError(t, err)
	assert.Len(t, got.Payments, 1)
}

func TestRecord_BankTransferAllocatesReceipt(t *testing.T) {
	wf, st := setupWorkflow(t)
	ctx := context.Background()

	seedMember(t, st, &models.Member{
		ID:                "AM2024001",
		MembershipType:    models.TypeAnnual,
		ApplicationStatus: models.StatusSubmitted,
	})

	result, err := wf.Record(ctx, &Request{
		MemberID:       "AM2024001",
		MembershipType: models.TypeAnnual,
		PaymentMode:    models.ModeBankTransfer,
		Amount:         250,
		Reference:      "UTR-991122",
		ScreenshotRef:  "uploads/utr-991122.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "D00001", result.ReceiptNo)
}

func TestRecord_BankTransferRequiresScreenshot(t *testing.T) {
	wf, st := setupWorkflow(t)

	seedMember(t, st, &models.Member{
		ID:                "AM2024001",
		MembershipType:    models.TypeAnnual,
		ApplicationStatus: models.StatusSubmitted,
	})

	_, err := wf.Record(context.Background(), &Request{
		MemberID:       "AM2024001",
		MembershipType: models.TypeAnnual,
		PaymentMode:    models.ModeBankTransfer,
		Amount:         250,
		Reference:      "UTR-991122",
	})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationFailed))
}

func TestRecord_GatewayCallback(t *testing.T) {
	wf, st := setupWorkflow(t)
	ctx := context.Background()

	seedMember(t, st, &models.Member{
		ID:                "AM2023007",
		MembershipType:    models.TypeAnnual,
		ApplicationStatus: models.StatusDue,
		RenewalDueOn:      "2024-06-01",
	})

	result, err := wf.Record(ctx, &Request{
		MemberID:       "AM2023007",
		MembershipType: models.TypeAnnual,
		PaymentMode:    models.ModeRazorpay,
		Amount:         250,
		PaymentID:      "pay_NXq2ab",
		OrderID:        "order_NXq1zz",
	})
	require.NoError(t, err)

	// Renewal extends from the previous due date, not from today.
	assert.Equal(t, "2025-06-01", result.RenewalDueOn)
	assert.Equal(t, "D00001", result.ReceiptNo)

	got, err := st.GetMember(ctx, "AM2023007")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, got.ApplicationStatus)
	require.Len(t, got.Payments, 1)
	assert.Equal(t, "pay_NXq2ab", got.Payments[0].PaymentID)
	assert.Equal(t, "order_NXq1zz", got.Payments[0].OrderID)
}

func TestRecord_GatewayCallbackMissingCorrelation(t *testing.T) {
	wf, st := setupWorkflow(t)

	seedMember(t, st, &models.Member{
		ID:                "AM2024001",
		MembershipType:    models.TypeAnnual,
		ApplicationStatus: models.StatusSubmitted,
	})

	tests := []struct {
		name      string
		paymentID string
		orderID   string
	}{
		{"missing both", "", ""},
		{"missing order id", "pay_NXq2ab", ""},
		{"missing payment id", "", "order_NXq1zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wf.Record(context.Background(), &Request{
				MemberID:       "AM2024001",
				MembershipType: models.TypeAnnual,
				PaymentMode:    models.ModeRazorpay,
				Amount:         250,
				PaymentID:      tt.paymentID,
				OrderID:        tt.orderID,
			})
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidGatewayCallback))
		})
	}
}

func TestRecord_GatewayDuplicatePaymentID(t *testing.T) {
	wf, st := setupWorkflow(t)
	ctx := context.Background()

	seedMember(t, st, &models.Member{
		ID:                "AM2024001",
		MembershipType:    models.TypeAnnual,
		ApplicationStatus: models.StatusSubmitted,
	})

	req := &Request{
		MemberID:       "AM2024001",
		MembershipType: models.TypeAnnual,
		PaymentMode:    models.ModeRazorpay,
		Amount:         250,
		PaymentID:      "pay_NXq2ab",
		OrderID:        "order_NXq1zz",
	}
	_, err := wf.Record(ctx, req)
	require.NoError(t, err)

	// Replayed callback for the same gateway payment.
	_, err = wf.Record(ctx, &Request{
		MemberID:       "AM2024001",
		MembershipType: models.TypeAnnual,
		PaymentMode:    models.ModeRazorpay,
		Amount:         250,
		PaymentID:      "pay_NXq2ab",
		OrderID:        "order_NXq1zz",
	})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDuplicatePayment))
}

func TestRecord_LifeUpgradePayment(t *testing.T) {
	wf, st := setupWorkflow(t)
	ctx := context.Background()

	seedMember(t, st, &models.Member{
		ID:                    "AM2023001",
		MembershipType:        models.TypeAnnual,
		CurrentMembershipType: models.TypeAnnual,
		ApplicationStatus:     models.StatusPaid,
		RenewalDueOn:          "2024-08-01",
	})

	result, err := wf.Record(ctx, &Request{
		MemberID:       "AM2023001",
		MembershipType: models.TypeLife,
		PaymentMode:    models.ModeCash,
		Amount:         2500,
		Reference:      "T6100",
	})
	require.NoError(t, err)
	assert.Empty(t, result.RenewalDueOn, "life membership clears the renewal date")

	got, err := st.GetMember(ctx, "AM2023001")
	require.NoError(t, err)
	assert.Equal(t, models.TypeLife, got.CurrentMembershipType)
	assert.Equal(t, models.TypeAnnual, got.MembershipType, "original election is preserved")
}

func TestRecord_MemberNotFound(t *testing.T) {
	wf, _ := setupWorkflow(t)

	_, err := wf.Record(context.Background(), &Request{
		MemberID:       "AM2099999",
		MembershipType: models.TypeAnnual,
		PaymentMode:    models.ModeCash,
		Amount:         250,
		Reference:      "T5001",
	})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeMemberNotFound))
}

func TestRecord_Validation(t *testing.T) {
	wf, _ := setupWorkflow(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *Request
		code apperrors.ErrorCode
	}{
		{
			"missing member id",
			&Request{MembershipType: models.TypeAnnual, PaymentMode: models.ModeCash, Amount: 250, Reference: "T1"},
			apperrors.ErrCodeValidationFailed,
		},
		{
			"unknown membership type",
			&Request{MemberID: "AM2024001", MembershipType: "Platinum", PaymentMode: models.ModeCash, Amount: 250, Reference: "T1"},
			apperrors.ErrCodeInvalidMembershipType,
		},
		{
			"unknown payment mode",
			&Request{MemberID: "AM2024001", MembershipType: models.TypeAnnual, PaymentMode: "UPI", Amount: 250, Reference: "T1"},
			apperrors.ErrCodeValidationFailed,
		},
		{
			"zero amount",
			&Request{MemberID: "AM2024001", MembershipType: models.TypeAnnual, PaymentMode: models.ModeCash, Amount: 0, Reference: "T1"},
			apperrors.ErrCodeValidationFailed,
		},
		{
			"cash without book receipt",
			&Request{MemberID: "AM2024001", MembershipType: models.TypeAnnual, PaymentMode: models.ModeCash, Amount: 250},
			apperrors.ErrCodeValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wf.Record(ctx, tt.req)
			assert.True(t, apperrors.HasCode(err, tt.code))
		})
	}
}
