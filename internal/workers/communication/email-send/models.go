// internal/workers/communication/email-send/models.go
package emailsend

import (
	"time"

	"membership-workers/internal/common/logger"
)

type Input struct {
	From    string `json:"from,omitempty"` // defaults to config
	To      string `json:"to"`
	ReplyTo string `json:"replyTo,omitempty"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	IsHTML  bool   `json:"isHtml"`

	// Receipt correlation, carried through to logs and metadata.
	MemberID  string `json:"memberId,omitempty"`
	ReceiptNo string `json:"receiptNo,omitempty"`
}

type Output struct {
	Success   bool      `json:"success"`
	MessageID string    `json:"messageId,omitempty"`
	Provider  string    `json:"provider,omitempty"` // SES | SMTP
	SentAt    time.Time `json:"sentAt,omitempty"`
}

type ServiceDependencies struct {
	Logger logger.Logger
}
