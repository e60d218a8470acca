package view

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// TextOptions tunes terminal output.
type TextOptions struct {
	// Color paints the AQI badge with 24-bit ANSI colors.
	Color bool
}

// RenderText writes the view for a terminal. Only visible sections are printed.
func RenderText(w io.Writer, v View, opts TextOptions) error {
	bw := bufio.NewWriter(w)
	if v.Form.Busy {
		fmt.Fprintln(bw, v.Form.SubmitLabel)
	}
	if v.Error != nil {
		fmt.Fprintf(bw, "Error: %s\n", v.Error.Message)
	}
	if v.Result != nil {
		renderCard(bw, *v.Result, opts)
	}
	if v.Hint != nil {
		fmt.Fprintln(bw, v.Hint.Title)
		for _, step := range v.Hint.Steps {
			fmt.Fprintf(bw, "  - %s\n", step)
		}
	}
	return bw.Flush()
}

func renderCard(w io.Writer, c ResultCard, opts TextOptions) {
	fmt.Fprintln(w, c.City)
	if c.UpdatedAt != "" {
		fmt.Fprintf(w, "Last updated: %s\n", c.UpdatedAt)
	}
	if c.Coordinates != "" {
		fmt.Fprintf(w, "Coordinates: %s\n", c.Coordinates)
	}
	fmt.Fprintf(w, "AQI: %s\n", badge(c.AQI, c.BadgeColor, opts.Color))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Air Quality")
	if c.Category != "" {
		fmt.Fprintf(w, "  %s\n", c.Category)
	}
	fmt.Fprintf(w, "  %s\n", c.Description)
	if c.DominantPollutant != "" {
		fmt.Fprintf(w, "  Dominant pollutant: %s\n", c.DominantPollutant)
	}
	if c.Provenance != "" {
		fmt.Fprintf(w, "  Data source: %s\n", c.Provenance)
	}

	if len(c.Pollutants) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Pollutant Details")
		for _, p := range c.Pollutants {
			fmt.Fprintf(w, "  %s: %s\n", p.Code, p.Value)
		}
	}
}

func badge(value, color string, enabled bool) string {
	if !enabled {
		return value
	}
	r, g, b, ok := parseColor(color)
	if !ok {
		return value
	}
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm\x1b[97m %s \x1b[0m", r, g, b, value)
}

// parseColor accepts #rgb, #rrggbb and rgb(r, g, b). An alpha channel in
// rgba(...) is ignored.
func parseColor(color string) (uint8, uint8, uint8, bool) {
	color = strings.TrimSpace(color)
	lower := strings.ToLower(color)
	switch {
	case strings.HasPrefix(lower, "rgb(") || strings.HasPrefix(lower, "rgba("):
		return parseRGBFunc(lower)
	case strings.HasPrefix(color, "#"):
		return parseHexColor(color)
	}
	return 0, 0, 0, false
}

func parseRGBFunc(color string) (uint8, uint8, uint8, bool) {
	open := strings.IndexByte(color, '(')
	if !strings.HasSuffix(color, ")") || open < 0 {
		return 0, 0, 0, false
	}
	parts := strings.FieldsFunc(color[open+1:len(color)-1], func(r rune) bool {
		return r == ',' || r == ' ' || r == '/'
	})
	if len(parts) != 3 && len(parts) != 4 {
		return 0, 0, 0, false
	}
	var rgb [3]uint8
	for i := range rgb {
		v, err := strconv.ParseFloat(parts[i], 64)
		if err != nil || v < 0 || v > 255 {
			return 0, 0, 0, false
		}
		rgb[i] = uint8(v)
	}
	return rgb[0], rgb[1], rgb[2], true
}

func parseHexColor(color string) (uint8, uint8, uint8, bool) {
	hex := strings.TrimPrefix(color, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}
