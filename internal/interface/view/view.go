package view

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/yanqian/aqi-search/internal/domain/aqi"
	"github.com/yanqian/aqi-search/internal/domain/search"
	"github.com/yanqian/aqi-search/pkg/util"
)

// Display constants.
const (
	Placeholder       = "-"
	DefaultBadgeColor = "#9e9e9e"
	LabelSearch       = "Search"
	LabelSearching    = "Searching..."
	ProvenanceCache   = "Cached result"
	ProvenanceLive    = "Live API call"
	DefaultTimeLayout = "Jan 2, 2006, 3:04:05 PM"
)

// badgeColorPattern admits hex colors, rgb/hsl functions and named colors.
// Anything else could break out of the style attribute.
var badgeColorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3,4}|#[0-9a-fA-F]{6}|#[0-9a-fA-F]{8}|(rgb|rgba|hsl|hsla)\([0-9.,%\s/]+\)|[a-zA-Z]+)$`)

// ValidBadgeColor reports whether color is safe to use as a CSS color value.
func ValidBadgeColor(color string) bool {
	return badgeColorPattern.MatchString(color)
}

// Options controls locale dependent formatting.
type Options struct {
	Location   *time.Location
	TimeLayout string
}

// View lists the sections visible for one state. Nil sections are not rendered.
type View struct {
	Form   Form
	Error  *ErrorBanner
	Result *ResultCard
	Hint   *HintCard
}

// Form is the search input and its submit control.
type Form struct {
	Busy        bool
	SubmitLabel string
	Placeholder string
}

// ErrorBanner carries the failure message.
type ErrorBanner struct {
	Message string
}

// ResultCard is the projection of a successful reading. Empty strings mean the
// line is omitted.
type ResultCard struct {
	City              string
	UpdatedAt         string
	Coordinates       string
	BadgeColor        string
	AQI               string
	Category          string
	Description       string
	DominantPollutant string
	Provenance        string
	Pollutants        []PollutantEntry
}

// PollutantEntry is one line of the pollutant breakdown.
type PollutantEntry struct {
	Code  string
	Value string
}

// HintCard explains how the search works.
type HintCard struct {
	Title string
	Steps []string
}

var howItWorks = HintCard{
	Title: "How it works",
	Steps: []string{
		"Enter a city name and click Search.",
		"The app calls a local backend, which fetches data from the AQICN API.",
		"Results are cached on the backend for faster repeat queries.",
		"The card colors and text follow AQI levels from the Air Quality Index standard.",
	},
}

// Present projects a controller state onto the visible sections.
func Present(state search.State, opts Options) View {
	v := View{Form: Form{SubmitLabel: LabelSearch, Placeholder: "Enter city name, e.g. Pune"}}
	switch state.Kind() {
	case search.KindLoading:
		v.Form.Busy = true
		v.Form.SubmitLabel = LabelSearching
	case search.KindFailed:
		v.Error = &ErrorBanner{Message: state.Message()}
	case search.KindSuccess:
		reading, _ := state.Reading()
		card := presentReading(reading, opts)
		v.Result = &card
	default:
		hint := howItWorks
		hint.Steps = append([]string(nil), howItWorks.Steps...)
		v.Hint = &hint
	}
	return v
}

func presentReading(r aqi.Reading, opts Options) ResultCard {
	card := ResultCard{
		City:        r.City,
		UpdatedAt:   formatTimestamp(r.Time, opts),
		Coordinates: formatCoordinates(r.Geo),
		BadgeColor:  strings.TrimSpace(r.Color),
		AQI:         Placeholder,
		Category:    r.Category,
		Description: aqi.Describe(r.Category),
		Pollutants:  presentDetails(r.Details),
	}
	if !ValidBadgeColor(card.BadgeColor) {
		card.BadgeColor = DefaultBadgeColor
	}
	if r.AQI != nil {
		card.AQI = formatNumber(*r.AQI)
	}
	if r.DominantPollutant != "" {
		card.DominantPollutant = upperCode(r.DominantPollutant)
	}
	if r.Source != "" {
		card.Provenance = ProvenanceLive
		if r.Source == aqi.SourceCache {
			card.Provenance = ProvenanceCache
		}
	}
	return card
}

func presentDetails(details aqi.Details) []PollutantEntry {
	if len(details) == 0 {
		return nil
	}
	out := make([]PollutantEntry, 0, len(details))
	for _, p := range details {
		entry := PollutantEntry{Code: upperCode(p.Code), Value: Placeholder}
		if p.Value != nil {
			entry.Value = formatNumber(*p.Value)
		}
		out = append(out, entry)
	}
	return out
}

// formatTimestamp renders the reading time in the configured zone. Values that
// do not parse are omitted rather than shown raw.
func formatTimestamp(raw string, opts Options) string {
	ts := util.ParseTimestamp(raw)
	if ts.IsZero() {
		return ""
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	layout := opts.TimeLayout
	if layout == "" {
		layout = DefaultTimeLayout
	}
	return ts.In(loc).Format(layout)
}

func formatCoordinates(geo []float64) string {
	if len(geo) == 0 {
		return ""
	}
	parts := make([]string, len(geo))
	for i, v := range geo {
		parts[i] = formatNumber(v)
	}
	return strings.Join(parts, ", ")
}

// upperCode builds a caser per call; cases.Caser is stateful and not safe to share.
func upperCode(code string) string {
	return cases.Upper(language.Und).String(code)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
