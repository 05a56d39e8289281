package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"loanreview-backend/models"
)

// CreditChecker performs a credit-bureau style lookup.
type CreditChecker interface {
	Check(ctx context.Context, customerID string) (*models.CreditResult, error)
}

// MockCreditChecker derives a deterministic pseudo credit profile from the
// identity string. Downstream reasoning text and tests rely on these exact
// formulas, so they must not change.
type MockCreditChecker struct{}

// Check implements CreditChecker
func (MockCreditChecker) Check(_ context.Context, customerID string) (*models.CreditResult, error) {
	base := 0
	for _, c := range customerID {
		base += int(c)
	}
	base %= 100

	utilization := 0.2 + float64(base%40)/100.0
	if utilization > 1.0 {
		utilization = 1.0
	}

	return &models.CreditResult{
		CustomerID:       customerID,
		Delinquencies12M: base % 3,
		Utilization:      utilization,
		RecentHardPulls:  base % 2,
	}, nil
}

// HTTPCreditChecker calls a remote credit bureau service. Transient
// failures are retried once, mirroring the identity checker.
type HTTPCreditChecker struct {
	baseURL string
	client  *http.Client
}

// NewHTTPCreditChecker creates a credit checker against baseURL
// (the service exposes GET {baseURL}/credit/{customerID}).
func NewHTTPCreditChecker(baseURL string, timeout time.Duration) *HTTPCreditChecker {
	return &HTTPCreditChecker{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Check implements CreditChecker
func (c *HTTPCreditChecker) Check(ctx context.Context, customerID string) (*models.CreditResult, error) {
	endpoint := c.baseURL + "/credit/" + url.PathEscape(customerID)
	var result models.CreditResult
	if err := getJSONWithRetry(ctx, c.client, endpoint, &result); err != nil {
		return nil, fmt.Errorf("credit check failed: %w", err)
	}
	return &result, nil
}
