// internal/workers/reporting/index-member-search/handler.go
package indexmembersearch

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"membership-workers/internal/common/errors"
	"membership-workers/internal/common/logger"
	"membership-workers/internal/store"
)

const (
	TaskType = "index-member-search"
)

type Handler struct {
	config *Config
	store  *store.Store
	es     *elasticsearch.Client
	errors *errors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, st *store.Store, es *elasticsearch.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		store:  st,
		es:     es,
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

	member, err := h.store.GetMember(ctx, input.MemberID)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.NewMemberNotFoundError(input.MemberID)
		}
		return nil, errors.NewPersistenceFailedError(err)
	}

	doc := memberDoc{
		MemberID:              member.ID,
		MemberName:            member.MemberName,
		Email:                 member.Email,
		Mobile:                member.Mobile,
		City:                  member.City,
		Occupation:            member.Occupation,
		BloodGroup:            member.BloodGroup,
		MembershipType:        member.MembershipType,
		CurrentMembershipType: member.CurrentMembershipType,
		ApplicationStatus:     member.ApplicationStatus,
		RenewalDueOn:          member.RenewalDueOn,
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.NewSearchIndexFailedError(member.ID, err)
	}

	// Document ID is the member ID, so re-indexing is idempotent.
	req := esapi.IndexRequest{
		Index:      h.config.Index,
		DocumentID: member.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, h.es)
	if err != nil {
		return nil, errors.NewSearchIndexFailedError(member.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return nil, errors.NewSearchIndexFailedError(member.ID,
			fmt.Errorf("index response %s: %s", res.Status(), string(msg)))
	}

	h.logger.Info("member indexed", map[string]interface{}{
		"memberId": member.ID,
		"index":    h.config.Index,
	})

	return &Output{
		MemberID:  member.ID,
		Index:     h.config.Index,
		IndexedAt: time.Now().UTC().Format(time.RFC3339),
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
