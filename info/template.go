package info

import (
	"embed"
	"html/template"
)

// UI selects one of the embedded documentation viewers.
type UI string

const (
	UISwagger UI = "swagger"
	UIRedoc   UI = "redoc"
	UIScalar  UI = "scalar"
)

//go:embed assets/*.html
var assets embed.FS

var templates = map[UI]*template.Template{
	UISwagger: template.Must(template.ParseFS(assets, "assets/swagger-ui.html")),
	UIRedoc:   template.Must(template.ParseFS(assets, "assets/redoc.html")),
	UIScalar:  template.Must(template.ParseFS(assets, "assets/scalar.html")),
}

// TemplateData is what the embedded viewers are rendered with.
type TemplateData struct {
	Title   string
	SpecURL string
}

// ParseUI maps a configuration value onto a UI. Unknown values select
// Swagger UI.
func ParseUI(name string) UI {
	switch ui := UI(name); ui {
	case UIRedoc, UIScalar:
		return ui
	default:
		return UISwagger
	}
}
