// internal/workers/reporting/sync-member-report/handler.go
package syncmemberreport

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"membership-workers/internal/common/errors"
	"membership-workers/internal/common/logger"
	"membership-workers/internal/models"
	"membership-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "sync-member-report"
)

type Handler struct {
	config *Config
	store  *store.Store
	db     *sql.DB
	errors *errors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, st *store.Store, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		store:  st,
		db:     db,
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

	if err := h.upsert(ctx, member); err != nil {
		return nil, errors.NewDatabaseInsertFailedError(err)
	}

	h.logger.Info("member report row synced", map[string]interface{}{
		"memberId": member.ID,
	})

	return &Output{
		MemberID: member.ID,
		Synced:   true,
		SyncedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// upsert projects one member document into the reporting row. Re-running the
// sync for the same member overwrites the row, so the projection stays
// idempotent.
func (h *Handler) upsert(ctx context.Context, m *models.Member) error {
	totalPaid := 0
	lastReceiptNo := ""
	lastPaymentAt := ""
	for _, p := range m.Payments {
		totalPaid += p.Amount
		lastReceiptNo = p.ReceiptNo
		lastPaymentAt = p.DateOfPayment
	}

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO member_report (
			member_id, member_name, email, mobile, city,
			membership_type, current_membership_type, application_status,
			date_of_submission, renewal_due_on,
			payment_count, total_paid, last_receipt_no, last_payment_at,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (member_id) DO UPDATE SET
			member_name = EXCLUDED.member_name,
			email = EXCLUDED.email,
			mobile = EXCLUDED.mobile,
			city = EXCLUDED.city,
			membership_type = EXCLUDED.membership_type,
			current_membership_type = EXCLUDED.current_membership_type,
			application_status = EXCLUDED.application_status,
			date_of_submission = EXCLUDED.date_of_submission,
			renewal_due_on = EXCLUDED.renewal_due_on,
			payment_count = EXCLUDED.payment_count,
			total_paid = EXCLUDED.total_paid,
			last_receipt_no = EXCLUDED.last_receipt_no,
			last_payment_at = EXCLUDED.last_payment_at,
			updated_at = EXCLUDED.updated_at`,
		m.ID,
		m.MemberName,
		m.Email,
		m.Mobile,
		m.City,
		m.MembershipType,
		m.CurrentMembershipType,
		m.ApplicationStatus,
		nullableDate(m.DateOfSubmission),
		nullableDate(m.RenewalDueOn),
		len(m.Payments),
		totalPaid,
		lastReceiptNo,
		nullableDate(lastPaymentAt),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func nullableDate(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
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
