// Package web holds the embedded HTML templates of the form surface.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses the embedded template set.
func Templates() (*template.Template, error) {
	return template.ParseFS(files, "templates/*.html")
}
