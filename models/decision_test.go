package models

import "testing"

func TestDecisionConventions(t *testing.T) {
	// Round trips between the lowercase and display conventions.
	pairs := []struct {
		canonical Decision
		display   DisplayDecision
	}{
		{DecisionApprove, DisplayApprove},
		{DecisionReject, DisplayReject},
		{DecisionManualReview, DisplayFlag},
	}
	for _, p := range pairs {
		if got := p.canonical.Display(); got != p.display {
			t.Errorf("%q.Display() = %q, want %q", p.canonical, got, p.display)
		}
		if got := p.display.Canonical(); got != p.canonical {
			t.Errorf("%q.Canonical() = %q, want %q", p.display, got, p.canonical)
		}
	}

	// Anything outside the closed sets resolves to the safe side.
	if got := DisplayDecision("Approved!").Canonical(); got != DecisionManualReview {
		t.Errorf("unknown display decision mapped to %q, want manual_review", got)
	}
	if Decision("Approve").Valid() {
		t.Error("display-convention literal must not validate as canonical")
	}
	if !DecisionApprove.Valid() || !DecisionReject.Valid() || !DecisionManualReview.Valid() {
		t.Error("canonical decisions must validate")
	}
}

func TestUsedToolsScansColumnDefault(t *testing.T) {
	// The decisions.used_tools column default must scan into the Go type.
	var u UsedTools
	if err := u.Scan([]byte(`{"tools": []}`)); err != nil {
		t.Fatalf("Scan(column default) returned %v", err)
	}
	if len(u.Tools) != 0 {
		t.Errorf("tools = %v, want empty", u.Tools)
	}

	u = UsedTools{}
	if err := u.Scan([]byte(`{"tools": ["rules", "kyc_tool"]}`)); err != nil {
		t.Fatalf("Scan returned %v", err)
	}
	if len(u.Tools) != 2 || u.Tools[0] != "rules" {
		t.Errorf("tools = %v, want [rules kyc_tool]", u.Tools)
	}
}
