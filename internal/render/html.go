// Package render assembles the HTML page from a rendered table. It consumes
// the table object verbatim; all classification and formatting decisions are
// made upstream.
package render

import (
	_ "embed"
	"html/template"
	"io"
	"strings"

	"github.com/alpinewx/skicast/internal/forecast"
	"github.com/alpinewx/skicast/internal/table"
)

//go:embed page.html.tmpl
var pageTemplate string

var page = template.Must(template.New("page").Funcs(template.FuncMap{
	"statusClass": statusClass,
	"lines": func(s string) []string {
		return strings.Split(s, "\n")
	},
}).Parse(pageTemplate))

// Page writes the full HTML page for a table.
func Page(w io.Writer, tbl *table.Table) error {
	return page.Execute(w, tbl)
}

// statusClass maps a status code to its CSS class.
func statusClass(s forecast.Status) string {
	switch s {
	case forecast.StatusPoor:
		return "status-poor"
	case forecast.StatusCaution:
		return "status-caution"
	default:
		return "status-good"
	}
}
