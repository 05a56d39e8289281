package pipeline

import (
	"fmt"
	"sort"

	"loanreview-backend/models"
)

// Tool tags recorded in the audit trail. Each names a data source that
// successfully contributed to the final decision.
const (
	ToolRules       = "rules"
	ToolKYC         = "kyc_tool"
	ToolCredit      = "credit_tool"
	ToolSimilar     = "similar_memory"
	ToolLLM         = "llm_reasoning"
	ToolPolicyGuard = "policy_guard"
)

// ToolSet is a deduplicated, append-only set of tool tags. It renders
// sorted so output is reproducible.
type ToolSet map[string]struct{}

// NewToolSet creates an empty tool set
func NewToolSet() ToolSet {
	return make(ToolSet)
}

// Add records a tool tag. Adding an existing tag is a no-op.
func (t ToolSet) Add(tag string) {
	t[tag] = struct{}{}
}

// Has reports whether a tag was recorded
func (t ToolSet) Has(tag string) bool {
	_, ok := t[tag]
	return ok
}

// Sorted returns all tags in lexical order
func (t ToolSet) Sorted() []string {
	tags := make([]string, 0, len(t))
	for tag := range t {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// StageError records a non-fatal failure inside one stage. Errors never
// halt downstream stages; they surface only in the audit trail.
type StageError struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

func (e StageError) String() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

// State is the single mutable record threaded through all stages of one
// pipeline run. Each run owns its own State; nothing is shared between
// concurrent runs.
type State struct {
	Application *models.Application

	// Set once by the rule engine, never mutated afterward.
	Baseline *Baseline

	// Each signal is independently present or absent.
	Identity *models.IdentityResult
	Credit   *models.CreditResult

	// Most similar first; possibly empty.
	SimilarCases []models.LoanCase

	UsedTools ToolSet

	// Decision starts unset; the narrative stage sets it from the
	// baseline and the policy guard may overwrite it exactly once.
	Decision models.Decision
	Reason   string

	// Which source produced the short reason text ("llm" or "fallback").
	NarrativeSource string

	Errors []StageError
}

// NewState creates the state for one run of the pipeline.
func NewState(app *models.Application) *State {
	return &State{
		Application: app,
		UsedTools:   NewToolSet(),
	}
}

// AddError appends a stage-tagged error. Append-only, never fatal.
func (s *State) AddError(stage string, err error) {
	s.Errors = append(s.Errors, StageError{Stage: stage, Message: err.Error()})
}
