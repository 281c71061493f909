// internal/workers/membership/approve-application/handler.go
package approveapplication

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"membership-workers/internal/common/errors"
	"membership-workers/internal/common/logger"
	"membership-workers/internal/lifecycle"
	"membership-workers/internal/models"
	"membership-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "approve-application"
)

type Handler struct {
	config *Config
	store  *store.Store
	errors *errors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, st *store.Store, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		store:  st,
		errors: errors.NewErrorHandler(log),
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
	if strings.TrimSpace(input.MemberID) == "" {
		return nil, errors.NewValidationFailedError("memberId is required")
	}
	if strings.TrimSpace(input.ApprovedBy) == "" {
		return nil, errors.NewValidationFailedError("approvedBy is required")
	}
	if input.Decision != DecisionApprove && input.Decision != DecisionReject {
		return nil, errors.NewValidationFailedError(fmt.Sprintf("unknown decision %q", input.Decision))
	}

	status := models.StatusApproved
	if input.Decision == DecisionReject {
		status = models.StatusRejected
	}
	today := time.Now().UTC().Format(lifecycle.DateLayout)

	updated, err := h.store.UpdateMember(ctx, input.MemberID, func(m *models.Member) error {
		m.ApplicationStatus = status
		m.ApprovedBy = input.ApprovedBy
		m.DateOfApproval = today
		return nil
	})
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.NewMemberNotFoundError(input.MemberID)
		}
		return nil, errors.NewPersistenceFailedError(err)
	}

	h.logger.Info("application decision recorded", map[string]interface{}{
		"memberId": input.MemberID,
		"decision": input.Decision,
	})

	return &Output{
		MemberID:          updated.ID,
		ApplicationStatus: updated.ApplicationStatus,
		DateOfApproval:    updated.DateOfApproval,
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
