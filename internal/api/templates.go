package api

import (
	"embed"
	"html/template"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// loadTemplates parses the embedded pages. Embedding keeps the binary
// self-contained; there is no template directory to ship alongside it.
func loadTemplates() *template.Template {
	return template.Must(template.ParseFS(templatesFS, "templates/*.tmpl"))
}
