// internal/payments/workflow.go
package payments

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"membership-workers/internal/allocator"
	"membership-workers/internal/common/alerts"
	"membership-workers/internal/common/errors"
	"membership-workers/internal/common/logger"
	"membership-workers/internal/lifecycle"
	"membership-workers/internal/models"
	"membership-workers/internal/store"
)

// Request carries one payment to record against a member.
type Request struct {
	MemberID       string `json:"memberId"`
	MembershipType string `json:"membershipType"`
	PaymentMode    string `json:"paymentMode"`
	Amount         int    `json:"amount"`

	// Manual modes (Cash / Bank Transfer).
	Reference     string `json:"transactionReference,omitempty"`
	ScreenshotRef string `json:"screenshotRef,omitempty"`

	// Gateway mode (Razorpay).
	PaymentID string `json:"paymentID,omitempty"`
	OrderID   string `json:"orderID,omitempty"`
}

// Result describes a successfully recorded payment.
type Result struct {
	MemberID      string `json:"memberId"`
	ReceiptNo     string `json:"receiptNo"`
	Amount        int    `json:"amount"`
	PaymentMode   string `json:"paymentMode"`
	DateOfPayment string `json:"dateOfPayment"`
	RenewalDueOn  string `json:"renewalDueOn,omitempty"`
}

// Workflow records payments: validate, allocate a receipt number, append the
// payment entry and advance the membership lifecycle in one store transaction.
type Workflow struct {
	store     *store.Store
	allocator *allocator.Allocator
	alerts    *alerts.Notifier
	logger    logger.Logger

	Now func() time.Time
}

// NewWorkflow builds a payment workflow. notifier may be nil when admin
// alerting is disabled.
func NewWorkflow(st *store.Store, alloc *allocator.Allocator, notifier *alerts.Notifier, log logger.Logger) *Workflow {
	return &Workflow{
		store:     st,
		allocator: alloc,
		alerts:    notifier,
		logger:    log,
		Now:       time.Now,
	}
}

// Record processes one payment request end to end. Receipt numbers allocated
// for a request that subsequently fails to persist are burned, never reused.
func (w *Workflow) Record(ctx context.Context, req *Request) (*Result, error) {
	if err := w.validate(req); err != nil {
		return nil, err
	}

	// Gateway callbacks correlate on the Razorpay payment ID.
	if req.PaymentMode == models.ModeRazorpay && req.Reference == "" {
		req.Reference = req.PaymentID
	}

	// Cash receipts reuse the book receipt number entered by the clerk.
	// Everything else draws from the transactional receipt counter.
	receiptNo := req.Reference
	if req.PaymentMode != models.ModeCash {
		var err error
		receiptNo, err = w.allocator.AllocateReceiptWithRetry(ctx, allocator.DefaultRetryAttempts)
		if err != nil {
			return nil, err
		}
	}

	now := w.Now()
	entry := models.Payment{
		PaymentMode:       req.PaymentMode,
		Amount:            req.Amount,
		ReceiptNo:         receiptNo,
		DateOfPayment:     now.Format(time.RFC3339),
		Reference:         req.Reference,
		ScreenshotRef:     req.ScreenshotRef,
		PaymentID:         req.PaymentID,
		OrderID:           req.OrderID,
		ApplicationStatus: models.StatusPaid,
	}

	updated, err := w.store.UpdateMember(ctx, req.MemberID, func(m *models.Member) error {
		if isDuplicate(m, req.PaymentMode, req.Reference) {
			return errors.NewDuplicatePaymentError(req.PaymentMode, req.Reference)
		}
		m.Payments = append(m.Payments, entry)
		lifecycle.ApplyPayment(m, req.MembershipType, now)
		return nil
	})
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.NewMemberNotFoundError(req.MemberID)
		}
		if _, ok := errors.AsStandardError(err); ok {
			return nil, err
		}
		// A receipt number was already drawn for non-cash modes; it is
		// burned, and the sequence gap needs an admin eye.
		if req.PaymentMode != models.ModeCash {
			w.alerts.PersistenceFailure(ctx, req.MemberID, receiptNo, err)
		}
		return nil, errors.NewPersistenceFailedError(err)
	}

	w.logger.Info("payment recorded", map[string]interface{}{
		"memberId":    req.MemberID,
		"receiptNo":   receiptNo,
		"paymentMode": req.PaymentMode,
		"amount":      req.Amount,
	})

	return &Result{
		MemberID:      req.MemberID,
		ReceiptNo:     receiptNo,
		Amount:        req.Amount,
		PaymentMode:   req.PaymentMode,
		DateOfPayment: entry.DateOfPayment,
		RenewalDueOn:  updated.RenewalDueOn,
	}, nil
}

func (w *Workflow) validate(req *Request) error {
	if strings.TrimSpace(req.MemberID) == "" {
		return errors.NewValidationFailedError("memberId is required")
	}
	if !models.IsValidMembershipType(req.MembershipType) {
		return errors.NewInvalidMembershipTypeError(req.MembershipType)
	}
	if !models.IsValidPaymentMode(req.PaymentMode) {
		return errors.NewValidationFailedError(fmt.Sprintf("unknown payment mode %q", req.PaymentMode))
	}
	if req.Amount <= 0 {
		return errors.NewValidationFailedError("amount must be a positive whole-rupee value")
	}

	switch req.PaymentMode {
	case models.ModeRazorpay:
		if strings.TrimSpace(req.PaymentID) == "" || strings.TrimSpace(req.OrderID) == "" {
			return errors.NewInvalidGatewayCallbackError("gateway callback is missing paymentID or orderID")
		}
	case models.ModeCash:
		if strings.TrimSpace(req.Reference) == "" {
			return errors.NewValidationFailedError("cash payments require the book receipt number as transactionReference")
		}
	case models.ModeBankTransfer:
		if strings.TrimSpace(req.Reference) == "" {
			return errors.NewValidationFailedError("bank transfers require a transactionReference")
		}
		if strings.TrimSpace(req.ScreenshotRef) == "" {
			return errors.NewValidationFailedError("bank transfers require a payment screenshot")
		}
	}
	return nil
}

// isDuplicate scans the member's payment history for the same (mode, reference)
// pair. The history is small in practice, so a linear scan inside the member
// transaction is sufficient.
func isDuplicate(m *models.Member, mode, reference string) bool {
	if reference == "" {
		return false
	}
	for _, p := range m.Payments {
		if p.PaymentMode == mode && p.Reference == reference {
			return true
		}
	}
	return false
}
