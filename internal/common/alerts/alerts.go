// internal/common/alerts/alerts.go

// Package alerts publishes operational alerts to the admin SNS topic.
package alerts

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"

	"membership-workers/internal/common/logger"
)

// SNSPublisher is the slice of the SNS API the notifier uses.
type SNSPublisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type Notifier struct {
	sns      SNSPublisher
	topicARN string
	logger   logger.Logger
}

func NewNotifier(publisher SNSPublisher, topicARN string, log logger.Logger) *Notifier {
	return &Notifier{
		sns:      publisher,
		topicARN: topicARN,
		logger:   log,
	}
}

// PersistenceFailure alerts the admins that a receipt number was allocated
// but the member write did not commit. The receipt is burned, not reused, so
// the gap in the receipt sequence needs a human eye.
func (n *Notifier) PersistenceFailure(ctx context.Context, memberID, receiptNo string, cause error) {
	if n == nil || n.sns == nil || n.topicARN == "" {
		return
	}

	alertID := uuid.New().String()
	payload, _ := json.Marshal(map[string]interface{}{
		"alertId":   alertID,
		"event":     "persistence_failure",
		"memberId":  memberID,
		"receiptNo": receiptNo,
		"cause":     cause.Error(),
		"at":        time.Now().UTC().Format(time.RFC3339),
	})

	_, err := n.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String("membership: payment persistence failure"),
		Message:  aws.String(string(payload)),
	})
	if err != nil {
		// Alerting is best effort; the caller already has the real error.
		n.logger.Warn("admin alert publish failed", map[string]interface{}{
			"error":     err,
			"alertId":   alertID,
			"memberId":  memberID,
			"receiptNo": receiptNo,
		})
	}
}
