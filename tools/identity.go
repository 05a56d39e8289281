package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"loanreview-backend/models"
)

// IdentityChecker performs a KYC-style identity lookup.
type IdentityChecker interface {
	Check(ctx context.Context, customerID string) (*models.IdentityResult, error)
}

// MockIdentityChecker is the deterministic local identity check.
// It flags any identity that case-insensitively starts with "x", "test"
// or "fake"; everything else is verified with no watchlist match.
type MockIdentityChecker struct{}

// Check implements IdentityChecker
func (MockIdentityChecker) Check(_ context.Context, customerID string) (*models.IdentityResult, error) {
	lower := strings.ToLower(customerID)
	flagged := strings.HasPrefix(lower, "x") ||
		strings.HasPrefix(lower, "test") ||
		strings.HasPrefix(lower, "fake")

	return &models.IdentityResult{
		CustomerID:  customerID,
		KYCVerified: !flagged,
		PEPMatch:    flagged,
		DocExpired:  false,
	}, nil
}

// HTTPIdentityChecker calls a remote KYC service. Transient failures are
// retried once; the caller treats any remaining error as an absent signal.
type HTTPIdentityChecker struct {
	baseURL string
	client  *http.Client
}

// NewHTTPIdentityChecker creates an identity checker against baseURL
// (the service exposes GET {baseURL}/kyc/{customerID}).
func NewHTTPIdentityChecker(baseURL string, timeout time.Duration) *HTTPIdentityChecker {
	return &HTTPIdentityChecker{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Check implements IdentityChecker
func (c *HTTPIdentityChecker) Check(ctx context.Context, customerID string) (*models.IdentityResult, error) {
	endpoint := c.baseURL + "/kyc/" + url.PathEscape(customerID)
	var result models.IdentityResult
	if err := getJSONWithRetry(ctx, c.client, endpoint, &result); err != nil {
		return nil, fmt.Errorf("identity check failed: %w", err)
	}
	return &result, nil
}

// getJSONWithRetry performs a GET with a single retry on failure.
func getJSONWithRetry(ctx context.Context, client *http.Client, endpoint string, out interface{}) error {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(500 * time.Millisecond):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("unexpected status: %d", resp.StatusCode)
			continue
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to decode response: %w", err)
			continue
		}
		return nil
	}
	return lastErr
}
