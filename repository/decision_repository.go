package repository

import (
	"context"
	"fmt"

	"loanreview-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DecisionRepository handles database operations for decision records
type DecisionRepository struct {
	db *pgxpool.Pool
}

// NewDecisionRepository creates a new decision repository
func NewDecisionRepository(db *pgxpool.Pool) *DecisionRepository {
	return &DecisionRepository{db: db}
}

// Create appends a decision record. Records are immutable once created;
// there is intentionally no update method.
func (r *DecisionRepository) Create(ctx context.Context, rec *models.DecisionRecord) error {
	query := `
		INSERT INTO decisions (
			name, age, income, employment_status, credit_score,
			loan_amount, term_months, interest_rate, purpose,
			decision, reason, used_tools, raw_output
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		) RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		rec.Name,
		rec.Age,
		rec.Income,
		rec.EmploymentStatus,
		rec.CreditScore,
		rec.LoanAmount,
		rec.TermMonths,
		rec.InterestRate,
		rec.Purpose,
		rec.Decision,
		rec.Reason,
		rec.UsedTools,
		rec.RawOutput,
	).Scan(&rec.ID, &rec.CreatedAt)

	return err
}

// List retrieves the most recent decision records, newest first.
func (r *DecisionRepository) List(ctx context.Context, limit int) ([]*models.DecisionRecord, error) {
	if limit <= 0 {
		limit = 200
	}

	query := `
		SELECT id, created_at, name, age, income, employment_status,
			credit_score, loan_amount, term_months, interest_rate, purpose,
			decision, reason, used_tools, raw_output
		FROM decisions
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var records []*models.DecisionRecord
	for rows.Next() {
		rec := &models.DecisionRecord{}
		err := rows.Scan(
			&rec.ID,
			&rec.CreatedAt,
			&rec.Name,
			&rec.Age,
			&rec.Income,
			&rec.EmploymentStatus,
			&rec.CreditScore,
			&rec.LoanAmount,
			&rec.TermMonths,
			&rec.InterestRate,
			&rec.Purpose,
			&rec.Decision,
			&rec.Reason,
			&rec.UsedTools,
			&rec.RawOutput,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// AggregateCounts returns decision totals for the KPI endpoint. Historical
// rows may carry legacy flag spellings, so those are counted as flagged.
func (r *DecisionRepository) AggregateCounts(ctx context.Context) (*models.DecisionCounts, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE decision = 'approve'),
			COUNT(*) FILTER (WHERE decision = 'reject'),
			COUNT(*) FILTER (WHERE decision IN ('manual_review', 'flag', 'flagged'))
		FROM decisions`

	counts := &models.DecisionCounts{}
	err := r.db.QueryRow(ctx, query).Scan(
		&counts.Total,
		&counts.Approved,
		&counts.Rejected,
		&counts.Flagged,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate decisions: %w", err)
	}

	return counts, nil
}
