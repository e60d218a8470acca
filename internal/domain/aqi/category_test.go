package aqi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDescribeKnownCategories(t *testing.T) {
	cases := map[string]string{
		"Good":                           "Air quality is considered satisfactory, and air pollution poses little or no risk.",
		"Moderate":                       "Air quality is acceptable; however, some pollutants may be a moderate health concern for a very small number of people.",
		"Unhealthy for Sensitive Groups": "Members of sensitive groups may experience health effects. The general public is less likely to be affected.",
		"Unhealthy":                      "Everyone may begin to experience health effects; members of sensitive groups may experience more serious effects.",
		"Very Unhealthy":                 "Health alert: The risk of health effects is increased for everyone.",
		"Hazardous":                      "Health warnings of emergency conditions. The entire population is more likely to be affected.",
	}
	for label, want := range cases {
		require.Equal(t, want, Describe(label), label)
	}
}

func TestDescribeFallsBackForUnknownInput(t *testing.T) {
	for _, label := range []string{"", "good", "GOOD", "Smoky", " Good", "null"} {
		require.Equal(t, UnavailableDescription, Describe(label), label)
	}
}

func TestCategoryForBands(t *testing.T) {
	tests := []struct {
		index int
		label string
		color string
	}{
		{-1, "Good", "#009966"},
		{0, "Good", "#009966"},
		{50, "Good", "#009966"},
		{51, "Moderate", "#ffde33"},
		{100, "Moderate", "#ffde33"},
		{101, "Unhealthy for Sensitive Groups", "#ff9933"},
		{150, "Unhealthy for Sensitive Groups", "#ff9933"},
		{151, "Unhealthy", "#cc0033"},
		{200, "Unhealthy", "#cc0033"},
		{201, "Very Unhealthy", "#660099"},
		{300, "Very Unhealthy", "#660099"},
		{301, "Hazardous", "#7e0023"},
		{999, "Hazardous", "#7e0023"},
	}
	for _, tc := range tests {
		got := CategoryFor(tc.index)
		require.Equal(t, tc.label, got.Label, "index %d", tc.index)
		require.Equal(t, tc.color, got.Color, "index %d", tc.index)
	}
}
