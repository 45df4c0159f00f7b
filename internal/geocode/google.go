package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrNoAPIKey means the client was built without a Google Maps key; callers
// fall back to the coordinate string immediately.
var ErrNoAPIKey = errors.New("geocoder: no API key configured")

// Client implements Geocoder using the Google Maps Geocoding API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Google geocoding client with a bounded request timeout.
func NewClient(apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://maps.googleapis.com/maps/api/geocode/json",
	}
}

// ReverseGeocode converts coordinates to the first formatted address Google
// returns. Any failure, non-OK status, or empty result set is an error; the
// pipeline absorbs it.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	params := url.Values{
		"latlng": {fmt.Sprintf("%f,%f", lat, lng)},
		"key":    {c.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("geocode API error: status %d: %s", resp.StatusCode, body)
	}

	var googleResp response
	if err := json.NewDecoder(resp.Body).Decode(&googleResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if googleResp.Status != "OK" || len(googleResp.Results) == 0 {
		return "", fmt.Errorf("geocode API returned status %q with %d results", googleResp.Status, len(googleResp.Results))
	}

	return googleResp.Results[0].FormattedAddress, nil
}

// Google API response types.

type response struct {
	Status  string   `json:"status"`
	Results []result `json:"results"`
}

type result struct {
	FormattedAddress string `json:"formatted_address"`
}
