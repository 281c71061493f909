// internal/models/form.go
package models

// FormSubmission is the raw application form payload as received from the
// public-facing form. Field presence and formats are checked by the schema
// validator before a Member record is created.
type FormSubmission struct {
	UID            string                 `json:"uid"`
	MembershipType string                 `json:"membershipType"`
	Fields         map[string]interface{} `json:"fields"`
}

// ReceiptConfirmation is returned to the caller after a successful payment
// recording, for display on the confirmation screen.
type ReceiptConfirmation struct {
	MemberID      string `json:"memberId"`
	ReceiptNo     string `json:"receiptNo"`
	Amount        int    `json:"amount"`
	PaymentMode   string `json:"paymentMode"`
	DateOfPayment string `json:"dateOfPayment"`
	EmailSent     bool   `json:"emailSent"`
}
