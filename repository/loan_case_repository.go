package repository

import (
	"context"
	"fmt"
	"strings"

	"loanreview-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

const embeddingDims = 768

// LoanCaseRepository handles database operations for the loan_cases
// similarity store (pgvector-backed).
type LoanCaseRepository struct {
	db *pgxpool.Pool
}

// NewLoanCaseRepository creates a new loan case repository
func NewLoanCaseRepository(db *pgxpool.Pool) *LoanCaseRepository {
	return &LoanCaseRepository{db: db}
}

// formatVector formats an embedding vector as a string for pgx
func formatVector(embedding []float64) string {
	if len(embedding) == 0 {
		return "[]"
	}
	var parts []string
	for _, v := range embedding {
		parts = append(parts, fmt.Sprintf("%.6f", v))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// SearchSimilar returns up to k cases ordered by ascending cosine distance
// to the query embedding (most similar first).
func (r *LoanCaseRepository) SearchSimilar(ctx context.Context, embedding []float64, k int) ([]models.LoanCase, error) {
	if len(embedding) != embeddingDims {
		return nil, fmt.Errorf("embedding must be %d dimensions, got %d", embeddingDims, len(embedding))
	}

	vectorStr := formatVector(embedding)

	query := `
		SELECT
			id,
			case_text,
			metadata,
			embedding <=> $1::vector AS distance
		FROM loan_cases
		ORDER BY embedding <=> $1::vector
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, vectorStr, k)
	if err != nil {
		return nil, fmt.Errorf("failed to query loan cases: %w", err)
	}
	defer rows.Close()

	var cases []models.LoanCase
	for rows.Next() {
		var c models.LoanCase
		err := rows.Scan(&c.ID, &c.CaseText, &c.Metadata, &c.Distance)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan case: %w", err)
		}
		cases = append(cases, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating loan cases: %w", err)
	}

	return cases, nil
}

// Insert stores one case with its embedding.
func (r *LoanCaseRepository) Insert(ctx context.Context, c *models.LoanCase, embedding []float64) error {
	if len(embedding) != embeddingDims {
		return fmt.Errorf("embedding must be %d dimensions, got %d", embeddingDims, len(embedding))
	}

	query := `
		INSERT INTO loan_cases (case_text, metadata, embedding)
		VALUES ($1, $2, $3::vector)
		RETURNING id`

	return r.db.QueryRow(ctx, query, c.CaseText, c.Metadata, formatVector(embedding)).Scan(&c.ID)
}

// Count returns the number of indexed cases.
func (r *LoanCaseRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM loan_cases").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count loan cases: %w", err)
	}
	return count, nil
}
