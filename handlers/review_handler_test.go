package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"loanreview-backend/models"
	"loanreview-backend/service"

	"github.com/gin-gonic/gin"
)

type stubDecisionReviewer struct {
	record  *models.DecisionRecord
	records []*models.DecisionRecord
	counts  *models.DecisionCounts
	err     error
}

func (s *stubDecisionReviewer) Review(_ context.Context, req service.ReviewRequest) (*service.ReviewResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &service.ReviewResult{Record: s.record}, nil
}

func (s *stubDecisionReviewer) ListDecisions(_ context.Context, _ int) ([]*models.DecisionRecord, error) {
	return s.records, s.err
}

func (s *stubDecisionReviewer) KPIs(_ context.Context) (*models.DecisionCounts, error) {
	return s.counts, s.err
}

func newTestRouter(reviewer DecisionReviewer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewReviewHandler(reviewer)
	r.POST("/api/review", h.Review)
	r.GET("/api/kpis", h.KPIs)
	r.GET("/api/decisions", h.ListDecisions)
	return r
}

const validReviewBody = `{
	"name": "John Doe",
	"age": 35,
	"income": 80000,
	"employment_status": "employed",
	"credit_score": 750,
	"loan_amount": 20000,
	"term_months": 36,
	"interest_rate": 7.5,
	"purpose": "home improvement"
}`

func TestReviewEndpoint(t *testing.T) {
	reviewer := &stubDecisionReviewer{record: &models.DecisionRecord{
		Decision:  models.DecisionApprove,
		Reason:    "Based on policy and the provided numbers.",
		UsedTools: models.UsedTools{Tools: []string{"credit_tool", "kyc_tool", "rules"}},
	}}
	router := newTestRouter(reviewer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/review", strings.NewReader(validReviewBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp ReviewResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Decision != models.DecisionApprove {
		t.Errorf("decision = %q, want approve", resp.Decision)
	}
	if len(resp.UsedTools) != 3 {
		t.Errorf("used tools = %v", resp.UsedTools)
	}
}

func TestReviewEndpointRejectsMalformedBody(t *testing.T) {
	router := newTestRouter(&stubDecisionReviewer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/review", strings.NewReader(`{"name": `))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "INVALID_REQUEST") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestReviewEndpointInvalidApplication(t *testing.T) {
	reviewer := &stubDecisionReviewer{
		err: fmt.Errorf("%w: age must be between 18 and 100, got 12", service.ErrInvalidApplication),
	}
	router := newTestRouter(reviewer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/review", strings.NewReader(validReviewBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "INVALID_APPLICATION") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestReviewEndpointInternalFailure(t *testing.T) {
	reviewer := &stubDecisionReviewer{err: errors.New("database down")}
	router := newTestRouter(reviewer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/review", strings.NewReader(validReviewBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "REVIEW_FAILED") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestListDecisionsEndpoint(t *testing.T) {
	router := newTestRouter(&stubDecisionReviewer{})

	// No records yields an empty array, not null.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/decisions", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("body = %s, want []", w.Body.String())
	}

	// A bad limit is rejected before the service is called.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/decisions?limit=abc", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/decisions?limit=-5", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestKPIsEndpoint(t *testing.T) {
	router := newTestRouter(&stubDecisionReviewer{
		counts: &models.DecisionCounts{Total: 10, Approved: 6, Rejected: 2, Flagged: 2},
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/kpis", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var counts models.DecisionCounts
	if err := json.Unmarshal(w.Body.Bytes(), &counts); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if counts.Total != 10 || counts.Flagged != 2 {
		t.Errorf("counts = %+v", counts)
	}
}

type stubAgentReviewer struct {
	card service.ReviewCard
	err  error
}

func (s *stubAgentReviewer) ReviewApplication(_ context.Context, _ service.ReviewApplicationRequest) (*service.ReviewApplicationResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &service.ReviewApplicationResult{Card: s.card}, nil
}

func TestAgentReviewEndpointConvertsConvention(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAgentHandler(&stubAgentReviewer{card: service.ReviewCard{
		Decision:       models.DisplayFlag,
		Reason:         "Mid credit band (600-699) - review",
		ReasonDetailed: "Your application needs a brief manual review.",
		UsedTools:      []string{"check_compliance"},
	}})
	r.POST("/api/agent_review", h.AgentReview)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/agent_review", strings.NewReader(validReviewBody))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp AgentReviewResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	// Display "Flag" crosses the boundary as lowercase manual_review.
	if resp.Decision != models.DecisionManualReview {
		t.Errorf("decision = %q, want manual_review", resp.Decision)
	}
}

func TestAgentReviewEndpointValidatesApplication(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAgentHandler(&stubAgentReviewer{})
	r.POST("/api/agent_review", h.AgentReview)

	body := strings.Replace(validReviewBody, `"age": 35`, `"age": 12`, 1)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/agent_review", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "INVALID_APPLICATION") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestMockToolEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewMockToolHandler()
	r.GET("/api/mock/kyc/:id", h.KYC)
	r.GET("/api/mock/credit/:id", h.Credit)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/mock/kyc/testuser42", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var identity models.IdentityResult
	if err := json.Unmarshal(w.Body.Bytes(), &identity); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if identity.KYCVerified || !identity.PEPMatch {
		t.Errorf("unexpected identity result: %+v", identity)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/mock/credit/John%20Doe", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var credit models.CreditResult
	if err := json.Unmarshal(w.Body.Bytes(), &credit); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if credit.Delinquencies12M != 2 {
		t.Errorf("unexpected credit result: %+v", credit)
	}
}
