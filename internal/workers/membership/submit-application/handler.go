// internal/workers/membership/submit-application/handler.go
package submitapplication

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"membership-workers/internal/allocator"
	"membership-workers/internal/common/errors"
	"membership-workers/internal/common/logger"
	"membership-workers/internal/common/validation"
	"membership-workers/internal/lifecycle"
	"membership-workers/internal/models"
	"membership-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "submit-application"
)

type Handler struct {
	config    *Config
	store     *store.Store
	allocator *allocator.Allocator
	errors    *errors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, st *store.Store, alloc *allocator.Allocator, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		store:     st,
		allocator: alloc,
		errors:    errors.NewErrorHandler(log),
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
	if strings.TrimSpace(input.UID) == "" {
		return nil, errors.NewValidationFailedError("uid is required")
	}
	if !models.IsValidMembershipType(input.MembershipType) {
		return nil, errors.NewInvalidMembershipTypeError(input.MembershipType)
	}

	result, err := validation.ValidateApplication(input.Fields)
	if err != nil {
		return nil, errors.NewValidationFailedError(fmt.Sprintf("schema evaluation: %v", err))
	}
	if !result.Valid {
		return nil, errors.NewValidationFailedError(result.Summary())
	}

	email, _ := input.Fields["email"].(string)

	// One application per signed-in account and per email address.
	if existing, err := h.store.LookupByUID(ctx, input.UID); err == nil && existing != "" {
		return nil, errors.NewDuplicateApplicationError(input.UID)
	}
	if existing, err := h.store.LookupByEmail(ctx, email); err == nil && existing != "" {
		return nil, errors.NewDuplicateApplicationError(email)
	}

	memberID, err := h.allocator.AllocateMemberID(ctx, input.MembershipType)
	if err != nil {
		return nil, err
	}

	member := &models.Member{
		ID:                memberID,
		MembershipType:    input.MembershipType,
		ApplicationStatus: models.StatusSubmitted,
		DateOfSubmission:  time.Now().UTC().Format(lifecycle.DateLayout),
		Email:             email,
	}
	member.MemberName, _ = input.Fields["memberName"].(string)
	member.Mobile, _ = input.Fields["mobile"].(string)
	member.Address, _ = input.Fields["address"].(string)
	member.City, _ = input.Fields["city"].(string)
	member.Occupation, _ = input.Fields["occupation"].(string)
	member.BloodGroup, _ = input.Fields["bloodGroup"].(string)
	member.EmergencyContact, _ = input.Fields["emergencyContact"].(string)
	member.EmergencyPhone, _ = input.Fields["emergencyPhone"].(string)

	if err := h.store.CreateMember(ctx, member); err != nil {
		return nil, errors.NewPersistenceFailedError(err)
	}
	if err := h.store.PutUIDMapping(ctx, input.UID, memberID); err != nil {
		return nil, errors.NewPersistenceFailedError(err)
	}
	if err := h.store.PutEmailMapping(ctx, email, memberID); err != nil {
		return nil, errors.NewPersistenceFailedError(err)
	}

	h.logger.Info("application recorded", map[string]interface{}{
		"memberId":       memberID,
		"membershipType": input.MembershipType,
	})

	return &Output{
		MemberID:          memberID,
		ApplicationStatus: member.ApplicationStatus,
		DateOfSubmission:  member.DateOfSubmission,
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
