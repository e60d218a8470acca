package aqicn

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/aqi-search/internal/domain/aqi"
)

const (
	defaultBaseURL = "https://api.waqi.info/feed"
	maxBodyBytes   = 1 << 20
)

// Client fetches city feeds from the World Air Quality Index project.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient builds an API client.
func NewClient(baseURL, token string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("aqicn api token cannot be empty")
	}
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Fetch retrieves the current feed for a city.
func (c *Client) Fetch(ctx context.Context, city string) (aqi.Feed, error) {
	endpoint := fmt.Sprintf("%s/%s/?token=%s", c.baseURL, url.PathEscape(strings.TrimSpace(city)), url.QueryEscape(c.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return aqi.Feed{}, fmt.Errorf("build aqicn request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return aqi.Feed{}, fmt.Errorf("aqicn request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return aqi.Feed{}, fmt.Errorf("aqicn request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return aqi.Feed{}, fmt.Errorf("read aqicn response: %w", err)
	}
	return decodeFeed(body)
}

type apiResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type feedData struct {
	AQI         json.RawMessage `json:"aqi"`
	City        feedCity        `json:"city"`
	DominentPol string          `json:"dominentpol"`
	IAQI        aqi.Details     `json:"iaqi"`
	Time        feedTime        `json:"time"`
}

type feedCity struct {
	Name string    `json:"name"`
	Geo  []float64 `json:"geo"`
}

type feedTime struct {
	ISO string `json:"iso"`
	S   string `json:"s"`
	TZ  string `json:"tz"`
}

func decodeFeed(body []byte) (aqi.Feed, error) {
	var raw apiResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return aqi.Feed{}, fmt.Errorf("decode aqicn response: %w", err)
	}
	if raw.Status != "ok" {
		msg := errorMessage(raw.Data)
		if strings.EqualFold(msg, "Unknown station") {
			return aqi.Feed{}, fmt.Errorf("aqicn: %w", aqi.ErrUnknownCity)
		}
		return aqi.Feed{}, fmt.Errorf("aqicn api error: status=%q message=%q", raw.Status, msg)
	}

	var data feedData
	if err := json.Unmarshal(raw.Data, &data); err != nil {
		return aqi.Feed{}, fmt.Errorf("decode aqicn feed: %w", err)
	}

	return aqi.Feed{
		Station:           strings.TrimSpace(data.City.Name),
		AQI:               parseIndex(data.AQI),
		Geo:               data.City.Geo,
		Time:              feedTimestamp(data.Time),
		DominantPollutant: strings.TrimSpace(data.DominentPol),
		Details:           data.IAQI,
		Raw:               body,
	}, nil
}

// parseIndex accepts numbers and numeric strings. Stations without a current
// value report "-", which yields nil.
func parseIndex(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return &num
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return nil
	}
	return &v
}

func feedTimestamp(t feedTime) string {
	if iso := strings.TrimSpace(t.ISO); iso != "" {
		return iso
	}
	if s := strings.TrimSpace(t.S); s != "" {
		if ts, err := time.Parse("2006-01-02 15:04:05-07:00", s+strings.TrimSpace(t.TZ)); err == nil {
			return ts.Format(time.RFC3339)
		}
	}
	return ""
}

func errorMessage(data json.RawMessage) string {
	var msg string
	if err := json.Unmarshal(data, &msg); err == nil {
		return strings.TrimSpace(msg)
	}
	return strings.TrimSpace(string(data))
}
