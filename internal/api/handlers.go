// internal/api/handlers.go
package api

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"membership-workers/internal/allocator"
	"membership-workers/internal/common/errors"
	"membership-workers/internal/common/logger"
	"membership-workers/internal/common/razorpay"
	"membership-workers/internal/models"
	"membership-workers/internal/payments"
	"membership-workers/internal/store"
)

type Handlers struct {
	store     *store.Store
	allocator *allocator.Allocator
	payments  *payments.Workflow
	razorpay  *razorpay.Client
	fees      map[string]int
	logger    logger.Logger
}

func NewHandlers(st *store.Store, alloc *allocator.Allocator, wf *payments.Workflow, rz *razorpay.Client, fees map[string]int, log logger.Logger) *Handlers {
	return &Handlers{
		store:     st,
		allocator: alloc,
		payments:  wf,
		razorpay:  rz,
		fees:      fees,
		logger:    log,
	}
}

type generateMemberIDRequest struct {
	CurrentMembershipType string `json:"currentMembershipType" binding:"required"`
}

// GenerateMemberID allocates the next identifier in the membership-type
// namespace. Admin only; the ID is committed even if the caller abandons the
// form afterwards.
func (h *Handlers) GenerateMemberID(c *gin.Context) {
	var req generateMemberIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	memberID, err := h.allocator.AllocateMemberID(c.Request.Context(), req.CurrentMembershipType)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"memberId": memberID})
}

type createOrderRequest struct {
	MemberID       string `json:"memberId" binding:"required"`
	MembershipType string `json:"membershipType" binding:"required"`
	Amount         int    `json:"amount"` // rupees; defaults to the configured fee
}

// CreateRazorpayOrder opens a gateway order for the membership fee.
func (h *Handlers) CreateRazorpayOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.IsValidMembershipType(req.MembershipType) {
		h.writeError(c, errors.NewInvalidMembershipTypeError(req.MembershipType))
		return
	}

	amount := req.Amount
	if amount <= 0 {
		amount = h.fees[req.MembershipType]
	}
	if amount <= 0 {
		h.writeError(c, errors.NewValidationFailedError("no fee configured for membership type"))
		return
	}

	order, err := h.razorpay.CreateOrder(c.Request.Context(), amount, "INR", req.MemberID)
	if err != nil {
		h.writeError(c, errors.NewGatewayOrderFailedError(err))
		return
	}

	h.logger.Info("gateway order created", map[string]interface{}{
		"memberId": req.MemberID,
		"orderId":  order.ID,
		"amount":   amount,
	})

	c.JSON(http.StatusOK, gin.H{
		"orderId":  order.ID,
		"amount":   amount,
		"currency": order.Currency,
	})
}

type razorpayCallbackRequest struct {
	MemberID       string `json:"memberId" binding:"required"`
	MembershipType string `json:"membershipType" binding:"required"`
	Amount         int    `json:"amount" binding:"required"`
	PaymentID      string `json:"razorpay_payment_id"`
	OrderID        string `json:"razorpay_order_id"`
}

// RazorpayCallback records a successful gateway payment. The correlation pair
// must be present; an incomplete callback is rejected and never retried.
func (h *Handlers) RazorpayCallback(c *gin.Context) {
	var req razorpayCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.payments.Record(c.Request.Context(), &payments.Request{
		MemberID:       req.MemberID,
		MembershipType: req.MembershipType,
		PaymentMode:    models.ModeRazorpay,
		Amount:         req.Amount,
		PaymentID:      req.PaymentID,
		OrderID:        req.OrderID,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"memberId":      result.MemberID,
		"receiptNo":     result.ReceiptNo,
		"amount":        result.Amount,
		"dateOfPayment": result.DateOfPayment,
		"renewalDueOn":  result.RenewalDueOn,
	})
}

type updateWhatsAppGroupsRequest struct {
	MemberID string   `json:"memberId" binding:"required"`
	Groups   []string `json:"whatsAppGroups"`
}

// UpdateWhatsAppGroups records which WhatsApp groups a member has been added
// to. Bookkeeping only; no messaging integration.
func (h *Handlers) UpdateWhatsAppGroups(c *gin.Context) {
	var req updateWhatsAppGroupsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.store.UpdateMember(c.Request.Context(), req.MemberID, func(m *models.Member) error {
		m.WhatsAppGroups = req.Groups
		return nil
	})
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			h.writeError(c, errors.NewMemberNotFoundError(req.MemberID))
			return
		}
		h.writeError(c, errors.NewPersistenceFailedError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"memberId":       updated.ID,
		"whatsAppGroups": updated.WhatsAppGroups,
	})
}

func (h *Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// writeError maps the error taxonomy onto HTTP statuses.
func (h *Handlers) writeError(c *gin.Context, err error) {
	stdErr, ok := errors.AsStandardError(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusInternalServerError
	switch stdErr.Code {
	case errors.ErrCodeValidationFailed,
		errors.ErrCodeInvalidMembershipType,
		errors.ErrCodeInvalidGatewayCallback:
		status = http.StatusBadRequest
	case errors.ErrCodeDuplicatePayment,
		errors.ErrCodeDuplicateApplication:
		status = http.StatusConflict
	case errors.ErrCodeMemberNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeAllocationFailed,
		errors.ErrCodeGatewayOrderFailed:
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"error":   stdErr.Message,
		"code":    string(stdErr.Code),
		"details": stdErr.Details,
	})
}
