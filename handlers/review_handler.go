package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"loanreview-backend/models"
	"loanreview-backend/service"

	"github.com/gin-gonic/gin"
)

// DecisionReviewer is the slice of DecisionService the handler needs.
type DecisionReviewer interface {
	Review(ctx context.Context, req service.ReviewRequest) (*service.ReviewResult, error)
	ListDecisions(ctx context.Context, limit int) ([]*models.DecisionRecord, error)
	KPIs(ctx context.Context) (*models.DecisionCounts, error)
}

// ReviewHandler handles HTTP requests for loan reviews
type ReviewHandler struct {
	decisions DecisionReviewer
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(decisions DecisionReviewer) *ReviewHandler {
	return &ReviewHandler{decisions: decisions}
}

// ReviewRequest represents the request body for a loan review
type ReviewRequest struct {
	Name             string  `json:"name" binding:"required"`
	Age              int     `json:"age" binding:"required"`
	Income           float64 `json:"income"`
	EmploymentStatus string  `json:"employment_status" binding:"required"`
	CreditScore      int     `json:"credit_score" binding:"required"`
	LoanAmount       float64 `json:"loan_amount"`
	TermMonths       int     `json:"term_months" binding:"required"`
	InterestRate     float64 `json:"interest_rate"`
	Purpose          string  `json:"purpose"`
}

// ReviewResponse is the public review result. Decisions use the lowercase
// convention (approve / reject / manual_review).
type ReviewResponse struct {
	Decision  models.Decision `json:"decision"`
	Reason    string          `json:"reason"`
	UsedTools []string        `json:"used_tools"`
}

// Review handles POST /api/review
func (h *ReviewHandler) Review(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	app := &models.Application{
		Name:             req.Name,
		Age:              req.Age,
		Income:           req.Income,
		EmploymentStatus: models.EmploymentStatus(req.EmploymentStatus),
		CreditScore:      req.CreditScore,
		LoanAmount:       req.LoanAmount,
		TermMonths:       req.TermMonths,
		InterestRate:     req.InterestRate,
		Purpose:          req.Purpose,
	}

	result, err := h.decisions.Review(c.Request.Context(), service.ReviewRequest{Application: app})
	if err != nil {
		if errors.Is(err, service.ErrInvalidApplication) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_APPLICATION",
					"message": err.Error(),
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "REVIEW_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, ReviewResponse{
		Decision:  result.Record.Decision,
		Reason:    result.Record.Reason,
		UsedTools: result.Record.UsedTools.Tools,
	})
}

// KPIs handles GET /api/kpis
func (h *ReviewHandler) KPIs(c *gin.Context) {
	counts, err := h.decisions.KPIs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "KPIS_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, counts)
}

// ListDecisions handles GET /api/decisions
func (h *ReviewHandler) ListDecisions(c *gin.Context) {
	limit := 200
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_LIMIT",
					"message": "limit must be a positive integer",
				},
			})
			return
		}
		limit = parsed
	}

	records, err := h.decisions.ListDecisions(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LIST_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	if records == nil {
		records = []*models.DecisionRecord{}
	}
	c.JSON(http.StatusOK, records)
}
