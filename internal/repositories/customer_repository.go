package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/enterprise/fraud-pipeline/internal/customer"
	"github.com/enterprise/fraud-pipeline/internal/verdict"
)

// ErrCustomerNotFound is returned by GetByIdentityKey when no record exists
// for the given identity; callers treat this the same as a fresh identity.
var ErrCustomerNotFound = errors.New("customer record not found")

// CustomerRecordRepository is H's Postgres-backed storage for
// customer.Record, the single mutable resource described in spec.md §3.4.
type CustomerRecordRepository struct {
	db *Database
}

func NewCustomerRecordRepository(db *Database) *CustomerRecordRepository {
	return &CustomerRecordRepository{db: db}
}

// GetByIdentityKey retrieves the record for an identity, or
// ErrCustomerNotFound.
func (r *CustomerRecordRepository) GetByIdentityKey(ctx context.Context, identityKey string) (*customer.Record, error) {
	query := `
		SELECT identity_key, fraud_count, escalate_count, last_decision, last_seen, fingerprints
		FROM customer_records
		WHERE identity_key = $1
	`

	var rec customer.Record
	var lastDecision *string
	var fingerprints []string

	err := r.db.Pool.QueryRow(ctx, query, identityKey).Scan(
		&rec.IdentityKey,
		&rec.FraudCount,
		&rec.EscalateCount,
		&lastDecision,
		&rec.LastSeen,
		pq.Array(&fingerprints),
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	if lastDecision != nil {
		d := verdict.Decision(*lastDecision)
		rec.LastDecision = &d
	}
	rec.Fingerprints = make(map[string]bool, len(fingerprints))
	for _, fp := range fingerprints {
		rec.Fingerprints[fp] = true
	}

	return &rec, nil
}

// HasFingerprint reports whether a fingerprint was already recorded for an
// identity, implementing H's `has_fingerprint` operation.
func (r *CustomerRecordRepository) HasFingerprint(ctx context.Context, identityKey, fingerprint string) (bool, error) {
	query := `
		SELECT 1
		FROM customer_records
		WHERE identity_key = $1 AND $2 = ANY(fingerprints)
	`
	var exists int
	err := r.db.Pool.QueryRow(ctx, query, identityKey, fingerprint).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CommitTx implements H's `commit` operation within a caller-managed
// transaction, so the customer-record update and the
// DecisionRecordRepository's audit insert land atomically; see
// Database.WithTransaction. It atomically increments fraud_count iff
// decision=REJECT, escalate_count iff decision=ESCALATE, appends the
// fingerprint, and updates last_decision/last_seen. The row is created
// lazily on first submission via upsert.
func (r *CustomerRecordRepository) CommitTx(ctx context.Context, tx pgx.Tx, identityKey string, decision verdict.Decision, fingerprint string, at time.Time) error {
	fraudDelta, escalateDelta := 0, 0
	switch decision {
	case verdict.Reject:
		fraudDelta = 1
	case verdict.Escalate:
		escalateDelta = 1
	}

	query := `
		INSERT INTO customer_records (identity_key, fraud_count, escalate_count, last_decision, last_seen, fingerprints)
		VALUES ($1, $2, $3, $4, $5, ARRAY[$6]::text[])
		ON CONFLICT (identity_key) DO UPDATE SET
			fraud_count = customer_records.fraud_count + $2,
			escalate_count = customer_records.escalate_count + $3,
			last_decision = $4,
			last_seen = $5,
			fingerprints = array_append(customer_records.fingerprints, $6)
	`

	_, err := tx.Exec(ctx, query, identityKey, fraudDelta, escalateDelta, string(decision), at, fingerprint)
	return err
}
