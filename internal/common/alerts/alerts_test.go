// internal/common/alerts/alerts_test.go
package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"membership-workers/internal/common/logger"
)

type fakePublisher struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{}, nil
}

func TestPersistenceFailure(t *testing.T) {
	pub := &fakePublisher{}
	n := NewNotifier(pub, "arn:aws:sns:ap-south-1:123456789012:membership-alerts", logger.NewTestLogger(t))

	n.PersistenceFailure(context.Background(), "AM2025007", "D00042", fmt.Errorf("write aborted"))

	require.Len(t, pub.inputs, 1)
	assert.Equal(t, "arn:aws:sns:ap-south-1:123456789012:membership-alerts", *pub.inputs[0].TopicArn)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(*pub.inputs[0].Message), &payload))
	assert.Equal(t, "persistence_failure", payload["event"])
	assert.Equal(t, "AM2025007", payload["memberId"])
	assert.Equal(t, "D00042", payload["receiptNo"])
	assert.NotEmpty(t, payload["alertId"])
}

func TestPersistenceFailure_NilNotifier(t *testing.T) {
	var n *Notifier

	// Must not panic; alerting is optional.
	n.PersistenceFailure(context.Background(), "AM2025007", "D00042", fmt.Errorf("write aborted"))
}

func TestPersistenceFailure_PublishErrorSwallowed(t *testing.T) {
	pub := &fakePublisher{err: fmt.Errorf("topic gone")}
	n := NewNotifier(pub, "arn:aws:sns:ap-south-1:123456789012:membership-alerts", logger.NewTestLogger(t))

	n.PersistenceFailure(context.Background(), "AM2025007", "D00042", fmt.Errorf("write aborted"))
	assert.Len(t, pub.inputs, 1)
}
