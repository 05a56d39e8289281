package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Decision is the canonical lowercase decision literal emitted by the pipeline.
type Decision string

const (
	DecisionApprove      Decision = "approve"
	DecisionReject       Decision = "reject"
	DecisionManualReview Decision = "manual_review"
)

// Valid reports whether d is one of the three canonical decisions.
func (d Decision) Valid() bool {
	switch d {
	case DecisionApprove, DecisionReject, DecisionManualReview:
		return true
	}
	return false
}

// DisplayDecision is the capitalized convention used by the agent-review
// variant and the simulated bank API.
type DisplayDecision string

const (
	DisplayApprove DisplayDecision = "Approve"
	DisplayReject  DisplayDecision = "Reject"
	DisplayFlag    DisplayDecision = "Flag"
)

// Display converts a canonical decision to its display form.
func (d Decision) Display() DisplayDecision {
	switch d {
	case DecisionApprove:
		return DisplayApprove
	case DecisionReject:
		return DisplayReject
	default:
		return DisplayFlag
	}
}

// Canonical converts a display decision back to the lowercase convention.
// Anything unrecognized maps to manual_review, never to approve.
func (d DisplayDecision) Canonical() Decision {
	switch d {
	case DisplayApprove:
		return DecisionApprove
	case DisplayReject:
		return DecisionReject
	default:
		return DecisionManualReview
	}
}

// UsedTools represents the audit set of data sources that contributed to a
// decision, stored as JSONB ({"tools": [...]}).
type UsedTools struct {
	Tools []string `json:"tools"`
}

// Value implements driver.Valuer for JSONB
func (u UsedTools) Value() (driver.Value, error) {
	return json.Marshal(u)
}

// Scan implements sql.Scanner for JSONB
func (u *UsedTools) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	if len(bytes) == 0 {
		return nil
	}
	return json.Unmarshal(bytes, u)
}

// RawOutput holds the intermediate pipeline state kept for audit.
type RawOutput map[string]interface{}

// Value implements driver.Valuer for JSONB
func (r RawOutput) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements sql.Scanner for JSONB
func (r *RawOutput) Scan(value interface{}) error {
	if value == nil {
		*r = make(RawOutput)
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	if len(bytes) == 0 {
		*r = make(RawOutput)
		return nil
	}
	return json.Unmarshal(bytes, r)
}

// DecisionRecord is the persisted snapshot of one pipeline run.
// It is created once by the orchestrator boundary and never mutated.
type DecisionRecord struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// Application inputs
	Name             string           `json:"name"`
	Age              int              `json:"age"`
	Income           float64          `json:"income"`
	EmploymentStatus EmploymentStatus `json:"employment_status"`
	CreditScore      int              `json:"credit_score"`
	LoanAmount       float64          `json:"loan_amount"`
	TermMonths       int              `json:"term_months"`
	InterestRate     float64          `json:"interest_rate"`
	Purpose          string           `json:"purpose"`

	// Outputs
	Decision Decision `json:"decision"`
	Reason   string   `json:"reason"`

	// Audit trail
	UsedTools UsedTools `json:"used_tools"`
	RawOutput RawOutput `json:"raw_output"`
}

// DecisionCounts aggregates decision outcomes for the KPI endpoint.
type DecisionCounts struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Flagged  int `json:"flagged"`
}
