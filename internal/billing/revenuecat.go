package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/decorly/decorly-backend/internal/core"
)

const defaultBaseURL = "https://api.revenuecat.com/v1"

// revenueCatClient implements core.EntitlementSyncer against the RevenueCat
// REST API. The sync is best-effort by contract: callers log failures and
// never let them block a local state change.
type revenueCatClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewRevenueCatClient creates a syncer for the given secret API key.
func NewRevenueCatClient(apiKey string) core.EntitlementSyncer {
	return &revenueCatClient{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
	}
}

type attributeValue struct {
	Value string `json:"value"`
}

// SyncSubscriberAttributes pushes subscriber attributes for the given app
// user to the billing provider.
func (c *revenueCatClient) SyncSubscriberAttributes(ctx context.Context, appUserID string, attributes map[string]string) error {
	if appUserID == "" {
		return fmt.Errorf("appUserID cannot be empty for SyncSubscriberAttributes operation")
	}

	payload := struct {
		Attributes map[string]attributeValue `json:"attributes"`
	}{Attributes: make(map[string]attributeValue, len(attributes))}
	for k, v := range attributes {
		payload.Attributes[k] = attributeValue{Value: v}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode subscriber attributes: %w", err)
	}

	endpoint := fmt.Sprintf("%s/subscribers/%s/attributes", c.baseURL, url.PathEscape(appUserID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build attribute sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("attribute sync request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("billing provider returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return nil
}
