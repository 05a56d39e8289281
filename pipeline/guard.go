package pipeline

import (
	"loanreview-backend/models"
)

const guardOverrideReason = "Policy guard adjusted the outcome based on KYC and risk thresholds."

// Guard is the final deterministic override. It only ever acts on an
// approve: the decision is downgraded to manual_review when the identity
// signal is absent or unverified, on a watchlist match, on a credit score
// below 520, or when the amount exceeds 12x income. It never upgrades.
func Guard(decision models.Decision, app *models.Application, identity *models.IdentityResult) models.Decision {
	if decision != models.DecisionApprove {
		return decision
	}
	if identity == nil || !identity.KYCVerified || identity.PEPMatch {
		return models.DecisionManualReview
	}
	if app.CreditScore < 520 || app.LoanAmount > 12*app.Income {
		return models.DecisionManualReview
	}
	return decision
}

// applyGuard runs the policy guard against the current state. On a
// downgrade the reason paragraph is rebuilt (not appended to) and the
// policy_guard tag is recorded.
func applyGuard(state *State) {
	decision := state.Decision
	if !decision.Valid() {
		decision = models.DecisionManualReview
	}

	guarded := Guard(decision, state.Application, state.Identity)
	if guarded != decision {
		state.UsedTools.Add(ToolPolicyGuard)
		var baseReasons []string
		if state.Baseline != nil {
			baseReasons = state.Baseline.Reasons
		}
		state.Reason = formatReasonParagraph(state.Application, guarded, guardOverrideReason, baseReasons)
	}
	state.Decision = guarded
}
