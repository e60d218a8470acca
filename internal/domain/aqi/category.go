package aqi

import "math"

// UnavailableDescription is returned by Describe for unknown categories.
const UnavailableDescription = "Air quality information is unavailable."

// Category is one band of the AQI scale.
type Category struct {
	Label       string
	Ceiling     int
	Color       string
	Description string
}

// categories is ordered by ceiling. New bands are added here only.
var categories = []Category{
	{
		Label:       "Good",
		Ceiling:     50,
		Color:       "#009966",
		Description: "Air quality is considered satisfactory, and air pollution poses little or no risk.",
	},
	{
		Label:       "Moderate",
		Ceiling:     100,
		Color:       "#ffde33",
		Description: "Air quality is acceptable; however, some pollutants may be a moderate health concern for a very small number of people.",
	},
	{
		Label:       "Unhealthy for Sensitive Groups",
		Ceiling:     150,
		Color:       "#ff9933",
		Description: "Members of sensitive groups may experience health effects. The general public is less likely to be affected.",
	},
	{
		Label:       "Unhealthy",
		Ceiling:     200,
		Color:       "#cc0033",
		Description: "Everyone may begin to experience health effects; members of sensitive groups may experience more serious effects.",
	},
	{
		Label:       "Very Unhealthy",
		Ceiling:     300,
		Color:       "#660099",
		Description: "Health alert: The risk of health effects is increased for everyone.",
	},
	{
		Label:       "Hazardous",
		Ceiling:     math.MaxInt,
		Color:       "#7e0023",
		Description: "Health warnings of emergency conditions. The entire population is more likely to be affected.",
	},
}

var categoriesByLabel = indexCategories(categories)

func indexCategories(list []Category) map[string]Category {
	out := make(map[string]Category, len(list))
	for _, c := range list {
		out[c.Label] = c
	}
	return out
}

// Describe maps a category label to its human readable sentence. It never fails.
func Describe(label string) string {
	if c, ok := categoriesByLabel[label]; ok {
		return c.Description
	}
	return UnavailableDescription
}

// CategoryFor returns the band an index value falls in. Fractional indexes are
// banded on their integer part by the caller.
func CategoryFor(index int) Category {
	for _, c := range categories {
		if index <= c.Ceiling {
			return c
		}
	}
	return categories[len(categories)-1]
}
