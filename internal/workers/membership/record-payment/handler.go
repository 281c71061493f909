// internal/workers/membership/record-payment/handler.go
package recordpayment

import (
	"context"
	"encoding/json"
	"fmt"

	"membership-workers/internal/common/errors"
	"membership-workers/internal/common/logger"
	"membership-workers/internal/payments"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "record-payment"
)

type Handler struct {
	config   *Config
	workflow *payments.Workflow
	errors   *errors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, wf *payments.Workflow, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		workflow: wf,
		errors:   errors.NewErrorHandler(log),
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errors.HandleJobError(context.Background(), client, job,
			errors.NewValidationFailedError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errors.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := h.workflow.Record(ctx, &payments.Request{
		MemberID:       input.MemberID,
		MembershipType: input.MembershipType,
		PaymentMode:    input.PaymentMode,
		Amount:         input.Amount,
		Reference:      input.TransactionReference,
		ScreenshotRef:  input.ScreenshotRef,
		PaymentID:      input.PaymentID,
		OrderID:        input.OrderID,
	})
	if err != nil {
		return nil, err
	}

	return &Output{
		MemberID:      result.MemberID,
		ReceiptNo:     result.ReceiptNo,
		Amount:        result.Amount,
		PaymentMode:   result.PaymentMode,
		DateOfPayment: result.DateOfPayment,
		RenewalDueOn:  result.RenewalDueOn,
		NotifyEmail:   true,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	} else {
		h.logger.Info("job completed successfully", map[string]interface{}{
			"jobKey": job.Key,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
