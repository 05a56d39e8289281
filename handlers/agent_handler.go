package handlers

import (
	"context"
	"net/http"

	"loanreview-backend/models"
	"loanreview-backend/service"

	"github.com/gin-gonic/gin"
)

// AgentReviewer is the slice of ReviewService the handler needs.
type AgentReviewer interface {
	ReviewApplication(ctx context.Context, req service.ReviewApplicationRequest) (*service.ReviewApplicationResult, error)
}

// AgentHandler handles HTTP requests for the agent-review variant, which
// consults the external compliance service instead of the in-core rules.
type AgentHandler struct {
	reviewer AgentReviewer
}

// NewAgentHandler creates a new agent handler
func NewAgentHandler(reviewer AgentReviewer) *AgentHandler {
	return &AgentHandler{reviewer: reviewer}
}

// AgentReviewResponse is the public agent-review result. The card's
// display decision is converted to the lowercase convention so one
// deployment never mixes conventions at its boundary.
type AgentReviewResponse struct {
	Decision       models.Decision `json:"decision"`
	Reason         string          `json:"reason"`
	ReasonDetailed string          `json:"reason_detailed"`
	UsedTools      []string        `json:"used_tools"`
}

// AgentReview handles POST /api/agent_review
func (h *AgentHandler) AgentReview(c *gin.Context) {
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
	if err := app.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_APPLICATION",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.reviewer.ReviewApplication(c.Request.Context(), service.ReviewApplicationRequest{Application: app})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "REVIEW_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	card := result.Card
	c.JSON(http.StatusOK, AgentReviewResponse{
		Decision:       card.Decision.Canonical(),
		Reason:         card.Reason,
		ReasonDetailed: card.ReasonDetailed,
		UsedTools:      card.UsedTools,
	})
}
