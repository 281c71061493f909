// internal/allocator/allocator.go
package allocator

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	apperrors "membership-workers/internal/common/errors"
	"membership-workers/internal/models"
	"membership-workers/internal/store"
)

// DefaultRetryAttempts bounds the caller-level retry wrapper used by
// interactive flows. Allocation has no side effect on failure, so
// re-invoking it is always safe.
const DefaultRetryAttempts = 3

// yearCounter is the counter document for year-scoped namespaces. A year
// rollover resets the value; the stored year records which year the value
// belongs to.
type yearCounter struct {
	Value int `json:"value"`
	Year  int `json:"year"`
}

// Instrumentor counts successful allocations per namespace.
type Instrumentor interface {
	RecordIdentifierAllocated(ctx context.Context, namespace string)
}

// Allocator issues unique, monotonically increasing, human-readable
// identifiers. Every allocation is the sole side effect of one atomic store
// transaction: no identifier is ever computed from a stale read.
type Allocator struct {
	store         *store.Store
	receiptPrefix string
	instr         Instrumentor

	// Now is the clock; tests override it to pin year-rollover behavior.
	Now func() time.Time
}

func New(st *store.Store, receiptPrefix string) *Allocator {
	if receiptPrefix == "" {
		receiptPrefix = "D"
	}
	return &Allocator{
		store:         st,
		receiptPrefix: receiptPrefix,
		Now:           time.Now,
	}
}

// WithInstrumentor attaches allocation metrics; nil disables them.
func (a *Allocator) WithInstrumentor(instr Instrumentor) *Allocator {
	a.instr = instr
	return a
}

// AllocateMemberID allocates the next member id in the namespace for the
// given membership type, e.g. AM2025007. The numeric suffix resets to 1 when
// the stored year differs from the current year.
func (a *Allocator) AllocateMemberID(ctx context.Context, membershipType string) (string, error) {
	prefix, ok := models.MemberIDPrefix(membershipType)
	if !ok {
		return "", apperrors.NewInvalidMembershipTypeError(membershipType)
	}

	year := a.Now().Year()
	var id string

	err := a.store.Transact(ctx, store.CounterKey(prefix), func(current []byte) ([]byte, error) {
		c := yearCounter{Value: 0, Year: year}
		if current != nil {
			if err := json.Unmarshal(current, &c); err != nil {
				return nil, fmt.Errorf("decode counter %s: %w", prefix, err)
			}
			if c.Year != year {
				c = yearCounter{Value: 0, Year: year}
			}
		}

		c.Value++
		id = fmt.Sprintf("%s%d%03d", prefix, year, c.Value)
		return json.Marshal(c)
	})
	if err != nil {
		return "", apperrors.NewAllocationFailedError(prefix, err)
	}

	if a.instr != nil {
		a.instr.RecordIdentifierAllocated(ctx, prefix)
	}
	return id, nil
}

// AllocateReceipt allocates the next receipt number, e.g. D00042. The
// receipt namespace is flat and never resets.
func (a *Allocator) AllocateReceipt(ctx context.Context) (string, error) {
	var receiptNo string

	err := a.store.Transact(ctx, store.CounterKey(store.ReceiptCounterNamespace), func(current []byte) ([]byte, error) {
		value := 0
		if current != nil {
			parsed, err := strconv.Atoi(string(current))
			if err != nil {
				return nil, fmt.Errorf("decode receipt counter: %w", err)
			}
			value = parsed
		}

		value++
		receiptNo = fmt.Sprintf("%s%05d", a.receiptPrefix, value)
		return []byte(strconv.Itoa(value)), nil
	})
	if err != nil {
		return "", apperrors.NewAllocationFailedError(store.ReceiptCounterNamespace, err)
	}

	if a.instr != nil {
		a.instr.RecordIdentifierAllocated(ctx, store.ReceiptCounterNamespace)
	}
	return receiptNo, nil
}

// AllocateReceiptWithRetry re-invokes AllocateReceipt up to attempts times.
// Used by interactive flows (gateway callbacks) where a transient commit
// failure should not surface to the user on the first try.
func (a *Allocator) AllocateReceiptWithRetry(ctx context.Context, attempts int) (string, error) {
	if attempts <= 0 {
		attempts = DefaultRetryAttempts
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		receiptNo, err := a.AllocateReceipt(ctx)
		if err == nil {
			return receiptNo, nil
		}
		lastErr = err

		if stdErr, ok := apperrors.AsStandardError(err); ok && !stdErr.Retryable {
			break
		}
	}
	return "", lastErr
}
