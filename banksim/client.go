package banksim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"loanreview-backend/models"
)

// Client talks to a running bank simulation server (cmd/banksim) or a real
// compliance/customer-info deployment with the same contract.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a bank API client for baseURL with a bounded timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// CheckCompliance submits the application to the compliance policy service.
// Transient failures are retried once.
func (c *Client) CheckCompliance(ctx context.Context, app *models.Application) (*models.ComplianceResult, error) {
	body, err := json.Marshal(app)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal application: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(500 * time.Millisecond):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/check_compliance", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("unexpected status: %d", resp.StatusCode)
			continue
		}

		var result models.ComplianceResult
		err = json.NewDecoder(resp.Body).Decode(&result)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to decode response: %w", err)
			continue
		}
		return &result, nil
	}
	return nil, fmt.Errorf("compliance check failed: %w", lastErr)
}

// CustomerInfo fetches the customer's banking profile. Transient failures
// are retried once.
func (c *Client) CustomerInfo(ctx context.Context, name string) (*models.CustomerProfile, error) {
	endpoint := c.baseURL + "/customer_info/" + url.PathEscape(name)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(500 * time.Millisecond):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("unexpected status: %d", resp.StatusCode)
			continue
		}

		var profile models.CustomerProfile
		err = json.NewDecoder(resp.Body).Decode(&profile)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to decode response: %w", err)
			continue
		}
		return &profile, nil
	}
	return nil, fmt.Errorf("customer info lookup failed: %w", lastErr)
}
