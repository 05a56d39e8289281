package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"loanreview-backend/models"
	"loanreview-backend/pipeline"
	"loanreview-backend/storage"
)

var (
	ErrInvalidApplication = errors.New("invalid application")
	ErrDecisionConvention = errors.New("pipeline emitted a decision outside the lowercase convention")
)

// DecisionStore persists decision records (implemented by
// repository.DecisionRepository).
type DecisionStore interface {
	Create(ctx context.Context, rec *models.DecisionRecord) error
	List(ctx context.Context, limit int) ([]*models.DecisionRecord, error)
	AggregateCounts(ctx context.Context) (*models.DecisionCounts, error)
}

// DecisionService runs the review pipeline, persists the resulting
// decision record and archives its audit snapshot.
type DecisionService struct {
	pipeline *pipeline.Pipeline
	store    DecisionStore
	archive  storage.Archive
}

// DecisionServiceOption is a functional option for DecisionService
type DecisionServiceOption func(*DecisionService)

// DecisionWithPipeline sets the review pipeline
func DecisionWithPipeline(p *pipeline.Pipeline) DecisionServiceOption {
	return func(s *DecisionService) {
		s.pipeline = p
	}
}

// DecisionWithStore sets the decision store
func DecisionWithStore(store DecisionStore) DecisionServiceOption {
	return func(s *DecisionService) {
		s.store = store
	}
}

// DecisionWithArchive sets the audit archive
func DecisionWithArchive(archive storage.Archive) DecisionServiceOption {
	return func(s *DecisionService) {
		s.archive = archive
	}
}

// NewDecisionService creates a new decision service
func NewDecisionService(opts ...DecisionServiceOption) *DecisionService {
	s := &DecisionService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReviewRequest represents a request to review a loan application
type ReviewRequest struct {
	Application *models.Application
}

// ReviewResult represents the outcome of a persisted review
type ReviewResult struct {
	Record *models.DecisionRecord
}

// Review validates the application, runs the pipeline and persists the
// decision. Degraded runs still produce a decision; only validation
// failures and persistence failures surface as errors.
func (s *DecisionService) Review(ctx context.Context, req ReviewRequest) (*ReviewResult, error) {
	if s.pipeline == nil {
		return nil, errors.New("pipeline not set")
	}
	if req.Application == nil {
		return nil, fmt.Errorf("%w: application is required", ErrInvalidApplication)
	}
	if err := req.Application.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidApplication, err)
	}

	result := s.pipeline.Run(ctx, req.Application)

	// This deployment emits the lowercase convention end to end; anything
	// else indicates a miswired collaborator and cannot be trusted.
	if !result.Decision.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrDecisionConvention, result.Decision)
	}

	rec := buildRecord(req.Application, result)

	if s.store != nil {
		if err := s.store.Create(ctx, rec); err != nil {
			return nil, fmt.Errorf("failed to persist decision: %w", err)
		}
	}

	if s.archive != nil {
		payload, err := json.Marshal(rec)
		if err == nil {
			_, err = s.archive.Store(ctx, rec.ID, payload)
		}
		if err != nil {
			// The DB row is authoritative; a missing archive copy is not
			// a reason to fail the review.
			log.Printf("Warning: Failed to archive decision %s: %v", rec.ID, err)
		}
	}

	return &ReviewResult{Record: rec}, nil
}

// ListDecisions returns the most recent decisions, newest first.
func (s *DecisionService) ListDecisions(ctx context.Context, limit int) ([]*models.DecisionRecord, error) {
	if s.store == nil {
		return nil, errors.New("decision store not set")
	}
	return s.store.List(ctx, limit)
}

// KPIs returns aggregate decision counts.
func (s *DecisionService) KPIs(ctx context.Context) (*models.DecisionCounts, error) {
	if s.store == nil {
		return nil, errors.New("decision store not set")
	}
	return s.store.AggregateCounts(ctx)
}

// buildRecord snapshots one pipeline run into an immutable decision record.
func buildRecord(app *models.Application, result *pipeline.Result) *models.DecisionRecord {
	topCases := result.SimilarCases
	if len(topCases) > 3 {
		topCases = topCases[:3]
	}

	errorStrings := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		errorStrings = append(errorStrings, e.String())
	}

	return &models.DecisionRecord{
		Name:             app.Name,
		Age:              app.Age,
		Income:           app.Income,
		EmploymentStatus: app.EmploymentStatus,
		CreditScore:      app.CreditScore,
		LoanAmount:       app.LoanAmount,
		TermMonths:       app.TermMonths,
		InterestRate:     app.InterestRate,
		Purpose:          app.Purpose,
		Decision:         result.Decision,
		Reason:           result.Reason,
		UsedTools:        models.UsedTools{Tools: result.UsedTools},
		RawOutput: models.RawOutput{
			"baseline":         result.Baseline,
			"kyc":              result.Identity,
			"credit":           result.Credit,
			"similar":          topCases,
			"narrative_source": result.NarrativeSource,
			"errors":           errorStrings,
		},
	}
}
