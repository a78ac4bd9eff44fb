// Package geocode resolves opaque place IDs to postal addresses through the
// Places details API, memoized behind a persistent cache.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place/details/json"

// Result is a successfully resolved place.
type Result struct {
	Address string
	Name    string
}

// Client is the external geocoding collaborator.
type Client interface {
	PlaceDetails(ctx context.Context, placeID string) (*Result, error)
}

// StatusError is a non-OK API status. Transient statuses (rate limiting,
// server trouble) are retried; the rest are cached as unresolved.
type StatusError struct {
	Status    string
	Message   string
	Transient bool
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("geocoding status %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("geocoding status %s", e.Status)
}

// HTTPClient calls the Places details endpoint.
type HTTPClient struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
}

// NewHTTPClient creates a Places details client.
func NewHTTPClient(apiKey string) *HTTPClient {
	return &HTTPClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

type detailsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       struct {
		FormattedAddress string `json:"formatted_address"`
		Name             string `json:"name"`
	} `json:"result"`
}

// PlaceDetails resolves one place ID.
func (c *HTTPClient) PlaceDetails(ctx context.Context, placeID string) (*Result, error) {
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocoding request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		// Network failures are worth retrying
		return nil, &StatusError{Status: "UNREACHABLE", Message: err.Error(), Transient: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &StatusError{
			Status:    fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Transient: true,
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Status: fmt.Sprintf("HTTP_%d", resp.StatusCode)}
	}

	var body detailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	switch body.Status {
	case "OK":
		return &Result{
			Address: body.Result.FormattedAddress,
			Name:    body.Result.Name,
		}, nil
	case "OVER_QUERY_LIMIT", "UNKNOWN_ERROR":
		return nil, &StatusError{Status: body.Status, Message: body.ErrorMessage, Transient: true}
	default:
		return nil, &StatusError{Status: body.Status, Message: body.ErrorMessage}
	}
}
