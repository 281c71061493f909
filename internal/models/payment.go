// internal/models/payment.go
package models

// Payment modes.
const (
	ModeCash         = "Cash"
	ModeBankTransfer = "Bank Transfer"
	ModeRazorpay     = "Razorpay"
)

// Payment is one immutable entry in a member's payment history.
// Amounts are whole rupees.
type Payment struct {
	PaymentMode   string `json:"paymentMode"`
	Amount        int    `json:"amount"`
	ReceiptNo     string `json:"receiptNo"`
	DateOfPayment string `json:"dateOfPayment"` // RFC 3339

	// Manual-entry correlation (Cash / Bank Transfer).
	Reference     string `json:"transactionReference,omitempty"`
	ScreenshotRef string `json:"screenshotRef,omitempty"`

	// Gateway correlation (Razorpay).
	PaymentID string `json:"paymentID,omitempty"`
	OrderID   string `json:"orderID,omitempty"`

	// Status snapshot at the time the entry was appended.
	ApplicationStatus string `json:"applicationStatus"`
}

// IsValidPaymentMode reports whether m is a known payment mode.
func IsValidPaymentMode(m string) bool {
	switch m {
	case ModeCash, ModeBankTransfer, ModeRazorpay:
		return true
	}
	return false
}
