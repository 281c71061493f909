// internal/lifecycle/engine.go
package lifecycle

import (
	"context"
	"time"

	"membership-workers/internal/common/logger"
	"membership-workers/internal/models"
	"membership-workers/internal/store"
)

// Engine derives currentMembershipType, applicationStatus and renewalDueOn
// from payment events and membership-type elections.
type Engine struct {
	store  *store.Store
	logger logger.Logger

	// Now is the clock; tests override it to pin boundary dates.
	Now func() time.Time
}

func NewEngine(st *store.Store, log logger.Logger) *Engine {
	return &Engine{
		store:  st,
		logger: log,
		Now:    time.Now,
	}
}

// ApplyPayment applies the transition rule for a recorded payment of
// membership type membershipType to the member document in place.
//
//   - Life: no renewal is ever due.
//   - Annual: renewal extends one calendar year from the previous due date
//     when that date is valid, otherwise from now.
//   - Honorary: treated like Life for renewal purposes.
//
// The application status always becomes Paid.
func ApplyPayment(m *models.Member, membershipType string, now time.Time) {
	switch membershipType {
	case models.TypeAnnual:
		base := now
		if prev, ok := ParseDate(m.RenewalDueOn); ok {
			base = prev
		}
		m.RenewalDueOn = AddYears(base, 1).Format(DateLayout)
	default:
		// Life and Honorary members never enter Due.
		m.RenewalDueOn = ""
	}

	m.CurrentMembershipType = membershipType
	m.ApplicationStatus = models.StatusPaid
}

// EligibleForLife reports whether a member may upgrade from Annual to Life:
// one full year must have elapsed since the date of submission. Absent or
// invalid submission dates are never eligible.
func EligibleForLife(dateOfSubmission string, today time.Time) bool {
	submitted, ok := ParseDate(dateOfSubmission)
	if !ok {
		return false
	}
	threshold := AddYears(submitted, 1)
	return !truncateToDate(today).Before(truncateToDate(threshold))
}

// DueScanResult summarizes one renewal-due scan run.
type DueScanResult struct {
	Scanned    int `json:"scanned"`
	MarkedDue  int `json:"markedDue"`
	AlreadyDue int `json:"alreadyDue"`
}

// RunDueScan marks every Annual member whose renewal date has passed as Due.
// The scan is a pure, idempotent projection: running it twice in a row
// produces no additional change.
func (e *Engine) RunDueScan(ctx context.Context) (*DueScanResult, error) {
	today := truncateToDate(e.Now())
	result := &DueScanResult{}

	var dueIDs []string
	err := e.store.ForEachMember(ctx, func(m *models.Member) error {
		result.Scanned++

		if m.CurrentMembershipType != models.TypeAnnual {
			return nil
		}
		renewal, ok := ParseDate(m.RenewalDueOn)
		if !ok {
			return nil
		}
		if truncateToDate(renewal).After(today) {
			return nil
		}

		if m.ApplicationStatus == models.StatusDue {
			result.AlreadyDue++
			return nil
		}
		dueIDs = append(dueIDs, m.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, id := range dueIDs {
		_, err := e.store.UpdateMember(ctx, id, func(m *models.Member) error {
			// Re-checked inside the transaction: a renewal payment may have
			// landed between the scan read and this write.
			if m.CurrentMembershipType != models.TypeAnnual || m.ApplicationStatus == models.StatusDue {
				return nil
			}
			renewal, ok := ParseDate(m.RenewalDueOn)
			if !ok || truncateToDate(renewal).After(today) {
				return nil
			}
			m.ApplicationStatus = models.StatusDue
			result.MarkedDue++
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	e.logger.Info("renewal due scan complete", map[string]interface{}{
		"scanned":    result.Scanned,
		"markedDue":  result.MarkedDue,
		"alreadyDue": result.AlreadyDue,
	})

	return result, nil
}
