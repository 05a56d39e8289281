package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"loanreview-backend/llm"
	"loanreview-backend/models"
	"loanreview-backend/retrieval"
)

// Tool tags used by the agent-review variant.
const (
	ToolCheckCompliance = "check_compliance"
	ToolCustomerInfo    = "customer_info"
	ToolSimilarCases    = "similar_cases"
)

const (
	maxDetailedReasonChars = 800

	noSimilarCasesText = "No similar prior cases found."
)

// ComplianceChecker is the external compliance policy service.
type ComplianceChecker interface {
	CheckCompliance(ctx context.Context, app *models.Application) (*models.ComplianceResult, error)
}

// CustomerDirectory is the external customer-info service.
type CustomerDirectory interface {
	CustomerInfo(ctx context.Context, name string) (*models.CustomerProfile, error)
}

// ReviewCard is the agent-review output. Decisions use the display
// convention (Approve/Reject/Flag).
type ReviewCard struct {
	Decision       models.DisplayDecision `json:"decision"`
	Reason         string                 `json:"reason"`
	ReasonDetailed string                 `json:"reason_detailed"`
	UsedTools      []string               `json:"used_tools"`
}

// ReviewService is the agent-review variant: it combines the compliance
// service's decision with customer info, retrieved cases and a language
// model, and always yields a complete card even when every optional
// collaborator fails.
type ReviewService struct {
	compliance ComplianceChecker
	customers  CustomerDirectory
	caseStore  retrieval.CaseStore
	generator  llm.Generator
	topK       int
}

// ReviewServiceOption is a functional option for ReviewService
type ReviewServiceOption func(*ReviewService)

// ReviewWithComplianceChecker sets the compliance service
func ReviewWithComplianceChecker(c ComplianceChecker) ReviewServiceOption {
	return func(s *ReviewService) {
		s.compliance = c
	}
}

// ReviewWithCustomerDirectory sets the customer-info service
func ReviewWithCustomerDirectory(d CustomerDirectory) ReviewServiceOption {
	return func(s *ReviewService) {
		s.customers = d
	}
}

// ReviewWithCaseStore sets the similarity store
func ReviewWithCaseStore(store retrieval.CaseStore) ReviewServiceOption {
	return func(s *ReviewService) {
		s.caseStore = store
	}
}

// ReviewWithGenerator sets the text generation collaborator
func ReviewWithGenerator(g llm.Generator) ReviewServiceOption {
	return func(s *ReviewService) {
		s.generator = g
	}
}

// NewReviewService creates a new review service
func NewReviewService(opts ...ReviewServiceOption) *ReviewService {
	s := &ReviewService{topK: 3}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReviewApplicationRequest represents a request to review an application
type ReviewApplicationRequest struct {
	Application *models.Application
}

// ReviewApplicationResult represents the result of an agent review
type ReviewApplicationResult struct {
	Card ReviewCard
}

// ReviewApplication runs the agent review. The compliance service is the
// one hard dependency: when it is unreachable the card is a Flag with an
// explanatory reason. Every other collaborator failure degrades the card
// without failing the review.
func (s *ReviewService) ReviewApplication(ctx context.Context, req ReviewApplicationRequest) (*ReviewApplicationResult, error) {
	app := req.Application

	compliance, err := s.compliance.CheckCompliance(ctx, app)
	if err != nil {
		return &ReviewApplicationResult{Card: ReviewCard{
			Decision:       models.DisplayFlag,
			Reason:         "Compliance service unavailable",
			ReasonDetailed: "We could not complete automated checks. Please try again or contact support.",
			UsedTools:      []string{ToolCheckCompliance},
		}}, nil
	}

	usedTools := []string{ToolCheckCompliance}

	customer := &models.CustomerProfile{Note: "Customer info unavailable"}
	if s.customers != nil {
		if profile, err := s.customers.CustomerInfo(ctx, app.Name); err == nil {
			customer = profile
			usedTools = append(usedTools, ToolCustomerInfo)
		}
	}

	similarText, hadHits := s.similarCasesBlock(ctx, app)
	if hadHits {
		usedTools = append(usedTools, ToolSimilarCases)
	}

	card := s.decideCard(ctx, app, compliance, customer, similarText, usedTools)
	card.ReasonDetailed = s.generateDetailedReason(ctx, card.Decision, compliance, customer, similarText, app)

	return &ReviewApplicationResult{Card: card}, nil
}

// similarCasesBlock renders the top-k similar cases as a numbered text
// block for prompting, and reports whether any case was found.
func (s *ReviewService) similarCasesBlock(ctx context.Context, app *models.Application) (string, bool) {
	if s.caseStore == nil {
		return noSimilarCasesText, false
	}

	hits, err := s.caseStore.Query(ctx, retrieval.QueryText(app), s.topK)
	if err != nil || len(hits) == 0 {
		return noSimilarCasesText, false
	}

	var lines []string
	for i, hit := range hits {
		lines = append(lines, fmt.Sprintf("%d) %s", i+1, hit.CaseText))
	}
	return strings.Join(lines, "\n"), true
}

// decideCard asks the model for a strict-JSON decision card and normalizes
// whatever comes back. When the model is unavailable or its output is
// unusable the compliance decision stands.
func (s *ReviewService) decideCard(
	ctx context.Context,
	app *models.Application,
	compliance *models.ComplianceResult,
	customer *models.CustomerProfile,
	similarText string,
	usedTools []string,
) ReviewCard {
	complianceCard := map[string]interface{}{
		"decision":   string(compliance.Decision),
		"reason":     compliance.Reason,
		"used_tools": usedTools,
	}

	if s.generator == nil {
		return s.normalizeCard(complianceCard, compliance, usedTools)
	}

	system := "You are a cautious loan officer.\n" +
		"Output ENGLISH ONLY.\n" +
		"Return ONLY a single JSON object. No prose, no markdown.\n" +
		"Keys: decision (must be EXACTLY one of: Approve, Reject, Flag), " +
		"reason (SHORT), used_tools (array of strings)."

	appJSON, _ := json.Marshal(app)
	complianceJSON, _ := json.Marshal(compliance)
	customerJSON, _ := json.Marshal(customer)
	toolsJSON, _ := json.Marshal(usedTools)

	human := fmt.Sprintf(`Decide on this loan using the API results and similar past cases.

Loan application:
%s

Compliance API result:
%s

Customer info API result:
%s

Similar past cases (top-%d):
%s

Respond ONLY with JSON and nothing else.
Use these exact used_tools values that apply: %s`,
		appJSON, complianceJSON, customerJSON, s.topK, similarText, toolsJSON)

	raw, err := s.generator.Generate(ctx, system, human)
	if err != nil {
		return s.normalizeCard(complianceCard, compliance, usedTools)
	}

	parsed, ok := llm.ExtractJSONBlock(raw)
	if !ok {
		return s.normalizeCard(complianceCard, compliance, usedTools)
	}
	return s.normalizeCard(parsed, compliance, usedTools)
}

// normalizeCard re-validates an untrusted card: the decision must land in
// the closed display set (compliance decision as the next candidate, Flag
// as the last resort), the reason is always the compliance reason, and the
// tool list is replaced by our own accumulation when absent or malformed.
func (s *ReviewService) normalizeCard(card map[string]interface{}, compliance *models.ComplianceResult, usedTools []string) ReviewCard {
	rawDecision, _ := card["decision"].(string)
	decision, ok := llm.NormalizeDecision(rawDecision)
	if !ok {
		decision, _ = llm.NormalizeDecision(string(compliance.Decision))
	}

	reason := strings.TrimSpace(compliance.Reason)
	if reason == "" {
		reason = "Decision based on compliance rules"
	}

	tools := toolsFromCard(card["used_tools"])
	if len(tools) == 0 {
		tools = usedTools
	}

	return ReviewCard{Decision: decision, Reason: reason, UsedTools: tools}
}

// toolsFromCard extracts a well-formed string list, or nil.
func toolsFromCard(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var tools []string
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil
		}
		tools = append(tools, s)
	}
	return tools
}
