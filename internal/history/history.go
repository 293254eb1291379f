// Package history implements H: the exclusive owner of CustomerRecord
// storage (spec.md §3.4), backed by Postgres with a Redis read-through
// cache and a per-identity lock serializing the duplicate-check-then-commit
// sequence required by spec.md §5.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/enterprise/fraud-pipeline/internal/customer"
	"github.com/enterprise/fraud-pipeline/internal/decision"
	"github.com/enterprise/fraud-pipeline/internal/queue"
	"github.com/enterprise/fraud-pipeline/internal/repositories"
)

const (
	cacheTTL = 5 * time.Minute
	lockTTL  = 10 * time.Second
)

// Store is H. Commit writes the mutable customer.Record update and the
// append-only DecisionRecord audit row in a single Postgres transaction, so
// an audit entry never exists without the counter change it implies.
type Store struct {
	db           *repositories.Database
	repo         *repositories.CustomerRecordRepository
	decisionRepo *repositories.DecisionRecordRepository
	cache        *queue.CacheClient
}

func NewStore(db *repositories.Database, repo *repositories.CustomerRecordRepository, cache *queue.CacheClient) *Store {
	return &Store{
		db:           db,
		repo:         repo,
		decisionRepo: repositories.NewDecisionRecordRepository(db),
		cache:        cache,
	}
}

func cacheKey(identityKey string) string { return "customer:" + identityKey }

// Lookup implements H's `lookup(identity) → CustomerRecord?` operation,
// read-through the cache.
func (s *Store) Lookup(ctx context.Context, identityKey string) (customer.Summary, error) {
	var cached customer.Record
	if err := s.cache.Get(ctx, cacheKey(identityKey), &cached); err == nil {
		return customer.Summarize(&cached), nil
	}

	rec, err := s.repo.GetByIdentityKey(ctx, identityKey)
	if err != nil {
		if err == repositories.ErrCustomerNotFound {
			return customer.Summary{}, nil
		}
		return customer.Summary{}, fmt.Errorf("history: looking up identity: %w", err)
	}

	_ = s.cache.Set(ctx, cacheKey(identityKey), rec, cacheTTL)
	return customer.Summarize(rec), nil
}

// HasFingerprint implements H's `has_fingerprint` operation.
func (s *Store) HasFingerprint(ctx context.Context, identityKey, fingerprint string) (bool, error) {
	ok, err := s.repo.HasFingerprint(ctx, identityKey, fingerprint)
	if err != nil {
		return false, fmt.Errorf("history: checking fingerprint: %w", err)
	}
	return ok, nil
}

// WithIdentityLock acquires the per-identity lock described in spec.md §5
// for the duration of fn, so the duplicate check performed by the caller
// (PG) and the eventual Commit are serialized per identity.
func (s *Store) WithIdentityLock(ctx context.Context, identityKey string, fn func(ctx context.Context) error) error {
	unlock, err := s.cache.Lock(ctx, identityKey, lockTTL)
	if err != nil {
		return fmt.Errorf("history: acquiring identity lock: %w", err)
	}
	defer unlock()
	return fn(ctx)
}

// Commit implements H's `commit(identity, decision, fingerprint) → ()`
// operation, extended to also append the audit DecisionRecord in the same
// transaction: the customer.Record counters and the DecisionRecord audit
// row are two views of one event and must not diverge. Invalidates the
// read-through cache entry so the next Lookup observes the update.
func (s *Store) Commit(ctx context.Context, documentID, identityKey string, fingerprint string, rec decision.Record) error {
	err := s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.repo.CommitTx(ctx, tx, identityKey, rec.Decision, fingerprint, rec.DecidedAt); err != nil {
			return err
		}
		return s.decisionRepo.CreateTx(ctx, tx, documentID, rec)
	})
	if err != nil {
		return fmt.Errorf("history: committing: %w", err)
	}
	_ = s.cache.Delete(ctx, cacheKey(identityKey))
	return nil
}
