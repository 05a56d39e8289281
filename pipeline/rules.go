package pipeline

import (
	"loanreview-backend/models"
)

// Baseline is the rule engine's pre-override decision plus the reasons
// that fired, in evaluation order.
type Baseline struct {
	Decision models.Decision `json:"decision"`
	Reasons  []string        `json:"reasons"`
}

// Reason strings produced by the rule engine. Downstream text joins these
// verbatim, so they are constants rather than inline literals.
const (
	ReasonExceedsIncome   = "Requested amount exceeds 10x annual income."
	ReasonVeryLowCredit   = "Very low credit score (<520)."
	ReasonLowCredit       = "Low credit score (520-619). Consider manual review."
	ReasonHighRiskProfile = "High risk profile given employment and requested amount."
)

// EvaluateRules applies the baseline lending guardrails. It is pure and
// deterministic: reasons accumulate independently, then the decision is
// resolved by severity (reject over manual_review over approve). That
// precedence is a hard contract, not an artifact of evaluation order.
//
// An income of zero makes the multiplier checks trivially satisfied for
// any positive amount; that is intentional conservative behavior and no
// division occurs here.
func EvaluateRules(app *models.Application) Baseline {
	var reasons []string
	var veryLowCredit, exceedsIncome, highRisk bool

	if app.LoanAmount > 10*app.Income {
		reasons = append(reasons, ReasonExceedsIncome)
		exceedsIncome = true
	}
	if app.CreditScore < 520 {
		reasons = append(reasons, ReasonVeryLowCredit)
		veryLowCredit = true
	} else if app.CreditScore < 620 {
		reasons = append(reasons, ReasonLowCredit)
	}
	if (app.EmploymentStatus == models.EmploymentStudent || app.EmploymentStatus == models.EmploymentUnemployed) &&
		app.LoanAmount > 0.5*app.Income {
		reasons = append(reasons, ReasonHighRiskProfile)
		highRisk = true
	}

	decision := models.DecisionApprove
	switch {
	case veryLowCredit:
		decision = models.DecisionReject
	case exceedsIncome || highRisk:
		decision = models.DecisionManualReview
	}

	return Baseline{Decision: decision, Reasons: reasons}
}
