// internal/store/store.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"membership-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotFound is returned for point reads of missing documents.
	ErrNotFound = errors.New("document not found")

	// ErrAlreadyExists is returned when creating over an existing document.
	ErrAlreadyExists = errors.New("document already exists")

	// ErrTxRetriesExhausted is returned when an atomic transaction could not
	// commit within the internal retry budget. The transaction had no side
	// effect in that case.
	ErrTxRetriesExhausted = errors.New("transaction retries exhausted")
)

// Store is the member document store: one JSON document per member under
// users/<memberId>, counter documents under counters/<namespace>, and the
// identity lookup tables. All counter mutation goes through Transact.
type Store struct {
	rdb          *redis.Client
	maxTxRetries int
}

func New(rdb *redis.Client) *Store {
	return &Store{
		rdb:          rdb,
		maxTxRetries: 16,
	}
}

// Transact applies fn to the current value at key under optimistic
// concurrency control (WATCH/MULTI). fn receives nil when the key is absent
// and returns the new value to commit. The write is retried internally on
// conflicting concurrent writes until the retry budget is exhausted; a
// failed Transact has no side effect.
func (s *Store) Transact(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error {
	txn := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			current = nil
		} else if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < s.maxTxRetries; i++ {
		err := s.rdb.Watch(ctx, txn, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			// Conflicting concurrent write; retry from a fresh read.
			continue
		}
		return err
	}

	return ErrTxRetriesExhausted
}

// GetMember performs a point read of a member document.
func (s *Store) GetMember(ctx context.Context, memberID string) (*models.Member, error) {
	raw, err := s.rdb.Get(ctx, UserKey(memberID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get member %s: %w", memberID, err)
	}

	var m models.Member
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode member %s: %w", memberID, err)
	}
	return &m, nil
}

// CreateMember writes a new member document, failing if one already exists
// under the same id.
func (s *Store) CreateMember(ctx context.Context, m *models.Member) error {
	return s.Transact(ctx, UserKey(m.ID), func(current []byte) ([]byte, error) {
		if current != nil {
			return nil, ErrAlreadyExists
		}
		return json.Marshal(m)
	})
}

// UpdateMember applies fn to the member document in a single atomic
// transaction, so the payment append and the lifecycle field updates commit
// as one effective unit. Returns the updated member.
func (s *Store) UpdateMember(ctx context.Context, memberID string, fn func(*models.Member) error) (*models.Member, error) {
	var updated *models.Member

	err := s.Transact(ctx, UserKey(memberID), func(current []byte) ([]byte, error) {
		if current == nil {
			return nil, ErrNotFound
		}

		var m models.Member
		if err := json.Unmarshal(current, &m); err != nil {
			return nil, fmt.Errorf("decode member %s: %w", memberID, err)
		}

		if err := fn(&m); err != nil {
			return nil, err
		}

		updated = &m
		return json.Marshal(&m)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// PutUIDMapping records the auth-uid → member-id lookup entry.
func (s *Store) PutUIDMapping(ctx context.Context, uid, memberID string) error {
	return s.rdb.Set(ctx, UIDKey(uid), memberID, 0).Err()
}

// PutEmailMapping records the email → member-id lookup entry.
func (s *Store) PutEmailMapping(ctx context.Context, email, memberID string) error {
	return s.rdb.Set(ctx, EmailKey(email), memberID, 0).Err()
}

// LookupByUID resolves an auth uid to a member id.
func (s *Store) LookupByUID(ctx context.Context, uid string) (string, error) {
	memberID, err := s.rdb.Get(ctx, UIDKey(uid)).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	return memberID, err
}

// LookupByEmail resolves an email address to a member id.
func (s *Store) LookupByEmail(ctx context.Context, email string) (string, error) {
	memberID, err := s.rdb.Get(ctx, EmailKey(email)).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	return memberID, err
}

// ForEachMember iterates every member document. Used by the renewal-due
// scan and the reporting/indexing projections.
func (s *Store) ForEachMember(ctx context.Context, fn func(*models.Member) error) error {
	iter := s.rdb.Scan(ctx, 0, userPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		raw, err := s.rdb.Get(ctx, iter.Val()).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return fmt.Errorf("scan member %s: %w", iter.Val(), err)
		}

		var m models.Member
		if err := json.Unmarshal(raw, &m); err != nil {
			return fmt.Errorf("decode member %s: %w", iter.Val(), err)
		}

		if err := fn(&m); err != nil {
			return err
		}
	}
	return iter.Err()
}
