package pipeline

import (
	"context"
	"fmt"
	"time"

	"loanreview-backend/llm"
	"loanreview-backend/models"
	"loanreview-backend/retrieval"
	"loanreview-backend/tools"
)

const (
	defaultTopK       = 3
	defaultRunTimeout = 30 * time.Second

	timeoutReason = "The automated review did not complete in time. Our team will review your case manually."
)

// Pipeline runs the fixed stage order for one application:
// rules -> signals -> memory -> narrative -> guard.
// Collaborators are optional; a missing collaborator degrades the run
// instead of failing it. Each Run owns its own State, so a single
// Pipeline value is safe for concurrent use.
type Pipeline struct {
	identity   tools.IdentityChecker
	credit     tools.CreditChecker
	caseStore  retrieval.CaseStore
	generator  llm.Generator
	topK       int
	runTimeout time.Duration
}

// Option is a functional option for Pipeline
type Option func(*Pipeline)

// WithIdentityChecker sets the identity check collaborator
func WithIdentityChecker(c tools.IdentityChecker) Option {
	return func(p *Pipeline) {
		p.identity = c
	}
}

// WithCreditChecker sets the credit check collaborator
func WithCreditChecker(c tools.CreditChecker) Option {
	return func(p *Pipeline) {
		p.credit = c
	}
}

// WithCaseStore sets the similarity store collaborator
func WithCaseStore(s retrieval.CaseStore) Option {
	return func(p *Pipeline) {
		p.caseStore = s
	}
}

// WithGenerator sets the text generation collaborator
func WithGenerator(g llm.Generator) Option {
	return func(p *Pipeline) {
		p.generator = g
	}
}

// WithTopK sets how many similar cases to retrieve
func WithTopK(k int) Option {
	return func(p *Pipeline) {
		p.topK = k
	}
}

// WithRunTimeout bounds one full pipeline run
func WithRunTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		p.runTimeout = d
	}
}

// New creates a pipeline
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		topK:       defaultTopK,
		runTimeout: defaultRunTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is the completed outcome of one pipeline run.
type Result struct {
	Decision models.Decision
	Reason   string

	// Sorted for reproducible output.
	UsedTools []string

	// Intermediate state kept for the audit trail.
	Baseline        *Baseline
	Identity        *models.IdentityResult
	Credit          *models.CreditResult
	SimilarCases    []models.LoanCase
	NarrativeSource string
	Errors          []StageError
}

// Run executes all stages for one application and always converges on a
// valid decision. The application must already be validated. If the run's
// overall timeout elapses, the partial state is discarded and the result
// is manual_review with an error entry. A panic inside a stage is re-raised
// on the caller's goroutine, where the HTTP layer's recovery can turn it
// into a 500.
func (p *Pipeline) Run(ctx context.Context, app *models.Application) *Result {
	runCtx, cancel := context.WithTimeout(ctx, p.runTimeout)
	defer cancel()

	done := make(chan *Result, 1)
	panicked := make(chan any, 1)
	go func() {
		// A stage panic must reach the caller's goroutine: recovery
		// middleware on the request goroutine cannot see this one, and
		// an unrecovered panic here would take down the whole process.
		defer func() {
			if r := recover(); r != nil {
				panicked <- r
			}
		}()
		done <- p.runStages(runCtx, app)
	}()

	select {
	case result := <-done:
		return result
	case r := <-panicked:
		panic(r)
	case <-runCtx.Done():
		return &Result{
			Decision:  models.DecisionManualReview,
			Reason:    timeoutReason,
			UsedTools: []string{},
			Errors: []StageError{
				{Stage: "pipeline", Message: fmt.Sprintf("run aborted: %v", runCtx.Err())},
			},
		}
	}
}

// runStages threads one State through the fixed stage order.
func (p *Pipeline) runStages(ctx context.Context, app *models.Application) *Result {
	state := NewState(app)

	// Stage 1: baseline rules. Pure, cannot fail.
	baseline := EvaluateRules(app)
	state.Baseline = &baseline
	state.UsedTools.Add(ToolRules)

	// Stage 2: external signals (identity + credit, independently).
	gatherSignals(ctx, state, p.identity, p.credit)

	// Stage 3: similar historical cases.
	retrieveCases(ctx, state, p.caseStore, p.topK)

	// Stage 4: narrative (sets decision from baseline, builds reason).
	synthesizeNarrative(ctx, state, p.generator)

	// Stage 5: policy guard (downgrade-only override).
	applyGuard(state)

	// Unset is resolved to manual_review by policy.
	if !state.Decision.Valid() {
		state.Decision = models.DecisionManualReview
	}

	return &Result{
		Decision:        state.Decision,
		Reason:          state.Reason,
		UsedTools:       state.UsedTools.Sorted(),
		Baseline:        state.Baseline,
		Identity:        state.Identity,
		Credit:          state.Credit,
		SimilarCases:    state.SimilarCases,
		NarrativeSource: state.NarrativeSource,
		Errors:          state.Errors,
	}
}
