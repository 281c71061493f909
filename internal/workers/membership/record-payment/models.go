// internal/workers/membership/record-payment/models.go
package recordpayment

type Input struct {
	MemberID       string `json:"memberId"`
	MembershipType string `json:"membershipType"`
	PaymentMode    string `json:"paymentMode"`
	Amount         int    `json:"amount"`

	TransactionReference string `json:"transactionReference,omitempty"`
	ScreenshotRef        string `json:"screenshotRef,omitempty"`

	PaymentID string `json:"paymentID,omitempty"`
	OrderID   string `json:"orderID,omitempty"`
}

type Output struct {
	MemberID      string `json:"memberId"`
	ReceiptNo     string `json:"receiptNo"`
	Amount        int    `json:"amount"`
	PaymentMode   string `json:"paymentMode"`
	DateOfPayment string `json:"dateOfPayment"` // RFC 3339
	RenewalDueOn  string `json:"renewalDueOn,omitempty"`

	// Routes the process to the receipt-email task.
	NotifyEmail bool `json:"notifyEmail"`
}
