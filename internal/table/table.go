// Package table renders aggregated forecast results into the weekly table
// consumed by the presentation layer.
package table

import (
	"time"

	"github.com/alpinewx/skicast/internal/forecast"
)

// Cell is one table cell: the display text, a tooltip-style detail string,
// the bucket's status code, and an optional link (header cells only).
type Cell struct {
	Display string          `json:"display"`
	Detail  string          `json:"detail"`
	Status  forecast.Status `json:"status"`
	Link    string          `json:"link,omitempty"`
}

// Column labels one forecast day.
type Column struct {
	Label string `json:"label"`
	Date  string `json:"date"`
}

// Row is one location's rendered forecast: a header cell followed by seven
// day cells.
type Row struct {
	Header Cell                   `json:"header"`
	Days   [forecast.NumDays]Cell `json:"days"`
}

// Table is the complete rendered output for one refresh cycle.
type Table struct {
	GeneratedAt time.Time                `json:"generated_at"`
	Columns     [forecast.NumDays]Column `json:"columns"`
	Rows        []Row                    `json:"rows"`
}
