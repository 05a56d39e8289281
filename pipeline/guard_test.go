package pipeline

import (
	"strings"
	"testing"

	"loanreview-backend/models"
)

func TestGuard(t *testing.T) {
	goodApp := &models.Application{
		Name: "John Doe", Age: 35, Income: 80000,
		EmploymentStatus: models.EmploymentEmployed,
		CreditScore:      750, LoanAmount: 20000, TermMonths: 36,
	}
	verified := &models.IdentityResult{CustomerID: "John Doe", KYCVerified: true}
	watchlisted := &models.IdentityResult{CustomerID: "John Doe", KYCVerified: true, PEPMatch: true}
	unverified := &models.IdentityResult{CustomerID: "John Doe", KYCVerified: false}

	tests := []struct {
		name     string
		decision models.Decision
		app      *models.Application
		identity *models.IdentityResult
		want     models.Decision
	}{
		{"clean approve passes", models.DecisionApprove, goodApp, verified, models.DecisionApprove},
		{"missing identity downgrades", models.DecisionApprove, goodApp, nil, models.DecisionManualReview},
		{"unverified identity downgrades", models.DecisionApprove, goodApp, unverified, models.DecisionManualReview},
		{"watchlist match downgrades", models.DecisionApprove, goodApp, watchlisted, models.DecisionManualReview},
		{
			"amount over 12x income downgrades",
			models.DecisionApprove,
			&models.Application{
				Name: "John Doe", Age: 35, Income: 5000,
				EmploymentStatus: models.EmploymentEmployed,
				CreditScore:      750, LoanAmount: 61000, TermMonths: 60,
			},
			verified,
			models.DecisionManualReview,
		},
		// The guard never upgrades, no matter how clean the signals are.
		{"reject stays reject", models.DecisionReject, goodApp, verified, models.DecisionReject},
		{"manual review stays manual review", models.DecisionManualReview, goodApp, verified, models.DecisionManualReview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Guard(tt.decision, tt.app, tt.identity)
			if got != tt.want {
				t.Errorf("Guard(%q) = %q, want %q", tt.decision, got, tt.want)
			}
		})
	}
}

func TestApplyGuardRebuildsReasonOnDowngrade(t *testing.T) {
	app := &models.Application{
		Name: "John Doe", Age: 35, Income: 80000,
		EmploymentStatus: models.EmploymentEmployed,
		CreditScore:      750, LoanAmount: 20000, TermMonths: 36,
	}
	state := NewState(app)
	state.Baseline = &Baseline{Decision: models.DecisionApprove}
	state.Decision = models.DecisionApprove
	state.Reason = "original approval text"
	state.Identity = &models.IdentityResult{CustomerID: "John Doe", KYCVerified: true, PEPMatch: true}

	applyGuard(state)

	if state.Decision != models.DecisionManualReview {
		t.Fatalf("decision = %q, want %q", state.Decision, models.DecisionManualReview)
	}
	if !state.UsedTools.Has(ToolPolicyGuard) {
		t.Error("policy_guard tag was not recorded")
	}
	if strings.Contains(state.Reason, "original approval text") {
		t.Error("reason was appended to instead of rebuilt")
	}
	if !strings.Contains(state.Reason, guardOverrideReason) {
		t.Errorf("reason %q does not explain the override", state.Reason)
	}
	if !strings.Contains(state.Reason, "manual review") {
		t.Errorf("reason %q does not mention the new decision", state.Reason)
	}
}

func TestApplyGuardLeavesCleanApproveAlone(t *testing.T) {
	app := &models.Application{
		Name: "John Doe", Age: 35, Income: 80000,
		EmploymentStatus: models.EmploymentEmployed,
		CreditScore:      750, LoanAmount: 20000, TermMonths: 36,
	}
	state := NewState(app)
	state.Decision = models.DecisionApprove
	state.Reason = "approved for good standing"
	state.Identity = &models.IdentityResult{CustomerID: "John Doe", KYCVerified: true}

	applyGuard(state)

	if state.Decision != models.DecisionApprove {
		t.Fatalf("decision = %q, want approve", state.Decision)
	}
	if state.UsedTools.Has(ToolPolicyGuard) {
		t.Error("policy_guard tag recorded without a downgrade")
	}
	if state.Reason != "approved for good standing" {
		t.Errorf("reason changed without a downgrade: %q", state.Reason)
	}
}
