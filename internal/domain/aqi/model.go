package aqi

import (
	"errors"
	"time"
)

// Provenance values reported in Reading.Source.
const (
	SourceCache = "cache"
	SourceLive  = "live"
)

// ErrUnknownCity is returned by upstream clients when the provider has no station for the query.
var ErrUnknownCity = errors.New("unknown city")

// Reading is the payload served by GET /api/aqi and consumed by the clients.
// AQI is a JSON number and may carry a fraction.
// Optional fields are omitted from JSON when absent.
type Reading struct {
	City              string    `json:"city"`
	AQI               *float64  `json:"aqi,omitempty"`
	Category          string    `json:"category,omitempty"`
	Color             string    `json:"color,omitempty"`
	DominantPollutant string    `json:"dominantPollutant,omitempty"`
	Source            string    `json:"source,omitempty"`
	Time              string    `json:"time,omitempty"`
	Geo               []float64 `json:"geo,omitempty"`
	Details           Details   `json:"details,omitempty"`
}

// Feed is the normalized upstream station report.
type Feed struct {
	Station           string
	AQI               *float64
	Geo               []float64
	Time              string
	DominantPollutant string
	Details           Details
	Raw               []byte
}

// LookupRecord is one entry of the lookup history.
type LookupRecord struct {
	ID         string    `json:"id"`
	Query      string    `json:"query"`
	City       string    `json:"city"`
	AQI        *float64  `json:"aqi,omitempty"`
	Category   string    `json:"category,omitempty"`
	Source     string    `json:"source"`
	LookedUpAt time.Time `json:"lookedUpAt"`
}

// Config wires runtime settings for the lookup service.
type Config struct {
	CacheTTL      time.Duration
	RecentLimit   int
	ArchivePrefix string
}

// FloatPtr is a small helper for building readings and pollutant values.
func FloatPtr(v float64) *float64 {
	return &v
}
