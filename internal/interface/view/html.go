package view

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.New("page.html.tmpl").
	Funcs(template.FuncMap{"badgeStyle": badgeStyle}).
	ParseFS(templateFS, "templates/page.html.tmpl"))

// Page is the data handed to the HTML template.
type Page struct {
	Query string
	View  View
}

// badgeStyle marks a checked color as trusted CSS. html/template would otherwise
// replace functional colors such as rgb(...) with ZgotmplZ.
func badgeStyle(color string) template.CSS {
	if !ValidBadgeColor(color) {
		color = DefaultBadgeColor
	}
	return template.CSS("background-color: " + color)
}

// RenderHTML writes the full search page.
func RenderHTML(w io.Writer, page Page) error {
	return pageTemplate.ExecuteTemplate(w, "page", page)
}
