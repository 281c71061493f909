// internal/workers/communication/email-send/service.go
package emailsend

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"membership-workers/internal/common/errors"
	"membership-workers/internal/common/logger"
)

// SESSender is the slice of the SES API the service uses.
type SESSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

type Service struct {
	config *Config
	ses    SESSender
	logger logger.Logger
}

func NewService(deps ServiceDependencies, config *Config, sesClient SESSender) *Service {
	return &Service{
		config: config,
		ses:    sesClient,
		logger: deps.Logger,
	}
}

// Execute sends one pre-rendered email. SES is the primary transport; SMTP is
// the fallback. Delivery failure never undoes the operation that triggered
// the notification.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.From == "" {
		input.From = s.config.DefaultFrom
	}

	if err := s.validateAddresses(input); err != nil {
		return nil, errors.NewValidationFailedError(err.Error())
	}

	s.logger.Info("sending email", map[string]interface{}{
		"to":        input.To,
		"subject":   input.Subject,
		"memberId":  input.MemberID,
		"receiptNo": input.ReceiptNo,
	})

	if s.config.SESEnabled && s.ses != nil {
		messageID, err := s.sendSES(ctx, input)
		if err == nil {
			return s.sent(input, messageID, "SES"), nil
		}
		s.logger.Warn("SES send failed, trying SMTP fallback", map[string]interface{}{
			"error": err,
			"to":    input.To,
		})
	}

	if s.config.SMTPHost == "" {
		return nil, errors.NewNotificationSendFailedError("email", fmt.Errorf("SES unavailable and no SMTP fallback configured"))
	}

	if err := s.sendSMTP(ctx, input); err != nil {
		return nil, errors.NewNotificationSendFailedError("email", err)
	}
	return s.sent(input, s.generateMessageID(input), "SMTP"), nil
}

func (s *Service) sent(input *Input, messageID, provider string) *Output {
	s.logger.Info("email sent", map[string]interface{}{
		"to":        input.To,
		"messageId": messageID,
		"provider":  provider,
	})
	return &Output{
		Success:   true,
		MessageID: messageID,
		Provider:  provider,
		SentAt:    time.Now().UTC(),
	}
}

func (s *Service) sendSES(ctx context.Context, input *Input) (string, error) {
	body := &types.Body{}
	content := &types.Content{Data: aws.String(input.Body), Charset: aws.String("UTF-8")}
	if input.IsHTML {
		body.Html = content
	} else {
		body.Text = content
	}

	req := &ses.SendEmailInput{
		Source: aws.String(input.From),
		Destination: &types.Destination{
			ToAddresses: []string{input.To},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(input.Subject), Charset: aws.String("UTF-8")},
			Body:    body,
		},
	}
	if input.ReplyTo != "" {
		req.ReplyToAddresses = []string{input.ReplyTo}
	}

	out, err := s.ses.SendEmail(ctx, req)
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}

func (s *Service) validateAddresses(input *Input) error {
	if !isValidEmail(input.To) {
		return fmt.Errorf("invalid 'to' email address: %s", input.To)
	}
	if !isValidEmail(input.From) {
		return fmt.Errorf("invalid 'from' email address: %s", input.From)
	}
	if input.ReplyTo != "" && !isValidEmail(input.ReplyTo) {
		return fmt.Errorf("invalid 'replyTo' email address: %s", input.ReplyTo)
	}
	if strings.TrimSpace(input.Subject) == "" {
		return fmt.Errorf("subject is required")
	}
	if input.Body == "" {
		return fmt.Errorf("body is required")
	}
	return nil
}

func isValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	return strings.Contains(parts[1], ".")
}

func (s *Service) buildMessage(input *Input) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("From: %s\r\n", input.From))
	b.WriteString(fmt.Sprintf("To: %s\r\n", input.To))
	if input.ReplyTo != "" {
		b.WriteString(fmt.Sprintf("Reply-To: %s\r\n", input.ReplyTo))
	}
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", input.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	if input.IsHTML {
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	} else {
		b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(input.Body)

	return b.String()
}

func (s *Service) sendSMTP(ctx context.Context, input *Input) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before sending email: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)
	message := []byte(s.buildMessage(input))

	var auth smtp.Auth
	if s.config.SMTPUsername != "" && s.config.SMTPPassword != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	if s.config.UseTLS {
		return s.sendWithTLS(addr, auth, input.From, []string{input.To}, message)
	}
	return smtp.SendMail(addr, auth, input.From, []string{input.To}, message)
}

func (s *Service) sendWithTLS(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{ServerName: s.config.SMTPHost}
	if err = client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err = client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, rcpt := range to {
		if err = client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}

func (s *Service) generateMessageID(input *Input) string {
	return fmt.Sprintf("<%d.%s@%s>", time.Now().UnixNano(), sanitizeLocalPart(input.To), s.config.SMTPHost)
}

func sanitizeLocalPart(email string) string {
	parts := strings.Split(email, "@")
	local := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, parts[0])
	if len(local) > 10 {
		local = local[:10]
	}
	if local == "" {
		return "user"
	}
	return local
}
