package repositories

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/enterprise/fraud-pipeline/internal/decision"
)

// DecisionRecordRepository persists each assembled DecisionRecord for
// audit, grounded on the teacher's audit-log append-only storage shape.
type DecisionRecordRepository struct {
	db *Database
}

func NewDecisionRecordRepository(db *Database) *DecisionRecordRepository {
	return &DecisionRecordRepository{db: db}
}

// CreateTx appends a DecisionRecord within a caller-managed transaction, so
// it lands atomically with CustomerRecordRepository.CommitTx's counter
// update. DecisionRecords are created fresh per request and never mutated,
// per spec.md §3.3.
func (r *DecisionRecordRepository) CreateTx(ctx context.Context, tx pgx.Tx, documentID string, rec decision.Record) error {
	query := `
		INSERT INTO decision_records (
			id, document_id, decision, source, confidence_score,
			fraud_risk_score, risk_level, summary, reasoning,
			key_indicators, actionable_recommendations, customer_class,
			fraud_count_before, escalate_count_before, model_scores, anomalies,
			decided_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	modelScores, err := json.Marshal(rec.MLAnalysis.ModelScores)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, query,
		uuid.New(),
		documentID,
		string(rec.Decision),
		string(rec.Source),
		rec.ConfidenceScore,
		rec.MLAnalysis.FraudRiskScore,
		string(rec.MLAnalysis.RiskLevel),
		rec.Summary,
		rec.Reasoning,
		rec.KeyIndicators,
		rec.ActionableRecommendations,
		string(rec.CustomerContext.Class),
		rec.CustomerContext.FraudCountBefore,
		rec.CustomerContext.EscalateCountBefore,
		modelScores,
		rec.MLAnalysis.Anomalies,
		rec.DecidedAt.UTC(),
	)
	return err
}

// CountByDocumentID retrieves the decision record count for a document
// (diagnostic/replay tooling only; DecisionRecords are never re-read by
// the core decision path itself).
func (r *DecisionRecordRepository) CountByDocumentID(ctx context.Context, documentID string) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM decision_records WHERE document_id = $1`, documentID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
