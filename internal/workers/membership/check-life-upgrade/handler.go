// internal/workers/membership/check-life-upgrade/handler.go
package checklifeupgrade

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
	TaskType = "check-life-upgrade"
)

type Handler struct {
	config *Config
	store  *store.Store
	errors *errors.ErrorHandler
	logger logger.Logger

	// Now is the clock; tests override it to pin boundary dates.
	Now func() time.Time
}

func NewHandler(config *Config, st *store.Store, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		store:  st,
		errors: errors.NewErrorHandler(log),
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
		Now:    time.Now,
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

	member, err := h.store.GetMember(ctx, input.MemberID)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.NewMemberNotFoundError(input.MemberID)
		}
		return nil, errors.NewPersistenceFailedError(err)
	}

	output := &Output{
		MemberID:         member.ID,
		DateOfSubmission: member.DateOfSubmission,
	}

	// Already a Life member; nothing to upgrade.
	if member.CurrentMembershipType == models.TypeLife {
		return output, nil
	}

	output.Eligible = lifecycle.EligibleForLife(member.DateOfSubmission, h.Now())
	if submitted, ok := lifecycle.ParseDate(member.DateOfSubmission); ok {
		output.EligibleFrom = lifecycle.AddYears(submitted, 1).Format(lifecycle.DateLayout)
	}

	return output, nil
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
