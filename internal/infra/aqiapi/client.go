package aqiapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yanqian/aqi-search/internal/domain/aqi"
	"github.com/yanqian/aqi-search/internal/domain/search"
)

const (
	defaultBaseURL = "http://localhost:8080"
	maxBodyBytes   = 1 << 20
)

// Client calls the backend proxy's GET /api/aqi endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a backend client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch issues exactly one request. Failures are returned as
// *search.RemoteError or *search.TransportError.
func (c *Client) Fetch(ctx context.Context, city string) (aqi.Reading, error) {
	endpoint := fmt.Sprintf("%s/api/aqi?%s", c.baseURL, url.Values{"city": {city}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return aqi.Reading{}, &search.TransportError{Err: fmt.Errorf("build aqi request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return aqi.Reading{}, &search.TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return aqi.Reading{}, &search.TransportError{Status: resp.StatusCode, Err: fmt.Errorf("read aqi response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return aqi.Reading{}, search.ClassifyResponse(resp.StatusCode, body)
	}

	var reading aqi.Reading
	if err := json.Unmarshal(body, &reading); err != nil {
		return aqi.Reading{}, &search.TransportError{Status: resp.StatusCode, Err: fmt.Errorf("decode aqi response: %w", err)}
	}
	return reading, nil
}

var _ search.Fetcher = (*Client)(nil)
