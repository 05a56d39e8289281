package handlers

import (
	"net/http"

	"loanreview-backend/tools"

	"github.com/gin-gonic/gin"
)

// MockToolHandler exposes the deterministic mock lookups over HTTP so the
// dashboard and integration tests can inspect what the pipeline would see.
type MockToolHandler struct {
	identity tools.MockIdentityChecker
	credit   tools.MockCreditChecker
}

// NewMockToolHandler creates a new mock tool handler
func NewMockToolHandler() *MockToolHandler {
	return &MockToolHandler{}
}

// KYC handles GET /api/mock/kyc/:id
func (h *MockToolHandler) KYC(c *gin.Context) {
	result, err := h.identity.Check(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "KYC_FAILED",
				"message": err.Error(),
			},
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Credit handles GET /api/mock/credit/:id
func (h *MockToolHandler) Credit(c *gin.Context) {
	result, err := h.credit.Check(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CREDIT_FAILED",
				"message": err.Error(),
			},
		})
		return
	}
	c.JSON(http.StatusOK, result)
}
