package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

var previewTmpl = template.Must(template.ParseFS(templateFS, "templates/preview.html"))

// HTML writes the preview page for doc to w
func HTML(w io.Writer, doc *Document) error {
	if err := previewTmpl.Execute(w, doc); err != nil {
		return fmt.Errorf("render preview: %w", err)
	}
	return nil
}
