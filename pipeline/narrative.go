package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"loanreview-backend/llm"
	"loanreview-backend/models"
)

const (
	narrativeSystemPrompt = "You are a senior underwriter. Return one short sentence (no bullets) explaining the decision."

	// Used when no rule fired and no model text is available.
	genericShortReason = "Based on policy and the provided numbers."
)

// synthesizeNarrative finalizes the decision from the baseline and builds
// the human-readable reason. This stage has no authority to change the
// decision; it only supplies prose. When a generator is available the
// first line of its response becomes the short reason; otherwise the rule
// engine's accumulated reasons serve as the deterministic fallback.
func synthesizeNarrative(ctx context.Context, state *State, generator llm.Generator) {
	decision := models.DecisionManualReview
	var baseline Baseline
	if state.Baseline != nil {
		baseline = *state.Baseline
		if baseline.Decision.Valid() {
			decision = baseline.Decision
		}
	}

	shortReason := strings.Join(baseline.Reasons, "; ")
	if shortReason == "" {
		shortReason = genericShortReason
	}
	state.NarrativeSource = "fallback"

	if generator != nil {
		prompt := buildNarrativePrompt(state, baseline)
		resp, err := generator.Generate(ctx, narrativeSystemPrompt, prompt)
		if err != nil {
			state.AddError(ToolLLM, err)
		} else if line := firstLine(resp); line != "" {
			shortReason = line
			state.NarrativeSource = "llm"
			state.UsedTools.Add(ToolLLM)
		}
	}

	state.Decision = decision
	state.Reason = formatReasonParagraph(state.Application, decision, shortReason, baseline.Reasons)
}

// buildNarrativePrompt assembles a bounded prompt from the application,
// baseline and whatever signals and cases the run gathered.
func buildNarrativePrompt(state *State, baseline Baseline) string {
	appJSON, _ := json.Marshal(state.Application)
	identityJSON := []byte("{}")
	if state.Identity != nil {
		identityJSON, _ = json.Marshal(state.Identity)
	}
	creditJSON := []byte("{}")
	if state.Credit != nil {
		creditJSON, _ = json.Marshal(state.Credit)
	}
	baselineJSON, _ := json.Marshal(baseline)

	simBlock := "None"
	if len(state.SimilarCases) > 0 {
		var lines []string
		for _, c := range state.SimilarCases {
			text := c.CaseText
			if len(text) > 220 {
				text = text[:220]
			}
			lines = append(lines, "- "+text)
		}
		simBlock = strings.Join(lines, "\n")
	}

	return fmt.Sprintf(`Application=%s
KYC=%s
Credit=%s
Baseline=%s
SimilarCases:
%s`, appJSON, identityJSON, creditJSON, baselineJSON, simBlock)
}

// firstLine returns the first non-empty trimmed line of text.
func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// formatReasonParagraph builds the user-facing reason paragraph. The
// paragraph is rebuilt from scratch whenever the decision changes, never
// appended to.
func formatReasonParagraph(app *models.Application, decision models.Decision, shortReason string, baseReasons []string) string {
	var parts []string

	opening := fmt.Sprintf("We decided to %s this application.",
		strings.ReplaceAll(string(decision), "_", " "))
	if trimmed := strings.TrimSpace(shortReason); trimmed != "" {
		opening += " " + trimmed
	}
	parts = append(parts, opening)

	var factors []string
	factors = append(factors, fmt.Sprintf("credit score %d", app.CreditScore))
	factors = append(factors, fmt.Sprintf("annual income %g", app.Income))
	factors = append(factors, fmt.Sprintf("requested amount %g", app.LoanAmount))
	if lti, ok := app.LoanToIncome(); ok {
		factors = append(factors, fmt.Sprintf("amount-to-income ratio %g", lti))
	}
	parts = append(parts, "Key factors considered include "+strings.Join(factors, ", ")+".")

	if len(baseReasons) > 0 {
		parts = append(parts, "Rules check notes: "+strings.Join(baseReasons, "; "))
	}

	var next string
	switch decision {
	case models.DecisionApprove:
		next = "You can proceed to sign the agreement and upload any required KYC documents."
	case models.DecisionReject:
		next = "You may reapply after improving your credit profile or adjusting the requested amount."
	default:
		next = "Our team will review your case and may request more documents."
	}

	return strings.Join(parts, " ") + "\nNext step: " + next
}
