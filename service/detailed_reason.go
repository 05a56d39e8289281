package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"loanreview-backend/models"
)

// generateDetailedReason produces the 2-4 sentence customer-facing
// explanation. The model is attempted first under a strict content policy
// (English only, no markup); on any failure a deterministic paragraph is
// assembled from whichever data is present and well-typed.
func (s *ReviewService) generateDetailedReason(
	ctx context.Context,
	decision models.DisplayDecision,
	compliance *models.ComplianceResult,
	customer *models.CustomerProfile,
	similarText string,
	app *models.Application,
) string {
	lti, ltiOK := app.LoanToIncome()
	ltiStr := "N/A"
	if ltiOK {
		ltiStr = fmt.Sprintf("%d%%", int(math.Round(lti*100)))
	}

	shortReason := strings.TrimSpace(compliance.Reason)
	if shortReason == "" {
		shortReason = "Policy-based decision"
	}

	if s.generator != nil {
		system := "You are an underwriting assistant. " +
			"Write 2-4 short sentences in ENGLISH explaining the decision clearly to a customer. " +
			"No markdown, no bullet points, no code fences."

		human := fmt.Sprintf(`Decision: %s
Short reason (from policy): %s

Applicant data: credit_score=%d, income=%g, loan_amount=%g, employment_status=%s, LTI=%s
Customer info: past_defaults=%v, years_with_employer=%v, existing_loans=%v

Similar past cases summary:
%s

Write a concise explanation that ties these factors together and justifies the decision. Avoid numbers if unknown. Keep it friendly but professional.`,
			decision, shortReason,
			app.CreditScore, app.Income, app.LoanAmount, app.EmploymentStatus, ltiStr,
			customer.PastDefaults, customer.YearsWithEmployer, customer.ExistingLoans,
			similarText)

		if text, err := s.generator.Generate(ctx, system, human); err == nil {
			text = stripCodeFences(text)
			if text != "" {
				return truncate(text, maxDetailedReasonChars)
			}
		}
	}

	return fallbackDetailedReason(decision, shortReason, ltiOK, ltiStr, app, customer)
}

// fallbackDetailedReason builds the deterministic template. Each clause is
// included only when its source datum is present; numeric fields coming
// from the customer service may be the string "unknown" and are validated
// before formatting.
func fallbackDetailedReason(
	decision models.DisplayDecision,
	shortReason string,
	ltiOK bool,
	ltiStr string,
	app *models.Application,
	customer *models.CustomerProfile,
) string {
	var parts []string

	switch decision {
	case models.DisplayApprove:
		parts = append(parts, "Your application has been approved.")
	case models.DisplayReject:
		parts = append(parts, "We're unable to approve your application at this time.")
	default:
		parts = append(parts, "Your application needs a brief manual review.")
	}

	if shortReason != "" {
		parts = append(parts, shortReason+".")
	}
	if app.CreditScore > 0 {
		parts = append(parts, fmt.Sprintf("Credit score: %d.", app.CreditScore))
	}
	if ltiOK {
		parts = append(parts, fmt.Sprintf("Loan-to-income ratio: %s.", ltiStr))
	}
	if tenure, ok := asNumber(customer.YearsWithEmployer); ok && tenure >= 0 {
		parts = append(parts, fmt.Sprintf("Employment tenure: %g year(s).", tenure))
	}
	if defaults, ok := asNumber(customer.PastDefaults); ok && defaults >= 0 {
		parts = append(parts, fmt.Sprintf("Past defaults: %g.", defaults))
	}

	return truncate(strings.Join(parts, " "), maxDetailedReasonChars)
}

// asNumber validates that an untyped collaborator value is numeric.
func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// stripCodeFences removes markdown fences that small models sometimes add
// despite instructions.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.Trim(text, "` \n")
		if strings.HasPrefix(strings.ToLower(text), "json") {
			text = strings.TrimSpace(text[4:])
		}
	}
	return text
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
