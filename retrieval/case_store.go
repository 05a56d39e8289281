package retrieval

import (
	"context"
	"fmt"

	"loanreview-backend/models"
)

// CaseStore retrieves the most similar historical loan cases for a query.
// Implementations never raise for "no matches"; they return an empty slice.
type CaseStore interface {
	Query(ctx context.Context, text string, k int) ([]models.LoanCase, error)
}

// CaseSearcher is the repository-level vector search needed by PgCaseStore
// (implemented by repository.LoanCaseRepository).
type CaseSearcher interface {
	SearchSimilar(ctx context.Context, embedding []float64, k int) ([]models.LoanCase, error)
}

// PgCaseStore embeds the query text and searches the pgvector-backed
// loan_cases table.
type PgCaseStore struct {
	embedder Embedder
	searcher CaseSearcher
}

// NewPgCaseStore creates a case store over the given embedder and searcher.
func NewPgCaseStore(embedder Embedder, searcher CaseSearcher) *PgCaseStore {
	return &PgCaseStore{embedder: embedder, searcher: searcher}
}

// Query implements CaseStore
func (s *PgCaseStore) Query(ctx context.Context, text string, k int) ([]models.LoanCase, error) {
	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	cases, err := s.searcher.SearchSimilar(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search cases: %w", err)
	}
	return cases, nil
}

// QueryText renders an application as the canonical retrieval query.
// The field order is fixed so identical applications always produce
// identical queries.
func QueryText(app *models.Application) string {
	return fmt.Sprintf("Age %d, income %g, employment %s, credit %d, loan %g, purpose %s",
		app.Age, app.Income, app.EmploymentStatus, app.CreditScore, app.LoanAmount, app.Purpose)
}

// CaseText renders a persisted decision as the text that gets embedded and
// indexed. It mirrors the shape of QueryText so queries land near their
// historical neighbors.
func CaseText(rec *models.DecisionRecord) string {
	return fmt.Sprintf("Name: %s, Age: %d, Income: %g, Employment: %s, Credit: %d, Loan: %g, Term: %d months, Rate: %g%%, Purpose: %s, Decision: %s, Reason: %s",
		rec.Name, rec.Age, rec.Income, rec.EmploymentStatus, rec.CreditScore,
		rec.LoanAmount, rec.TermMonths, rec.InterestRate, rec.Purpose, rec.Decision, rec.Reason)
}
