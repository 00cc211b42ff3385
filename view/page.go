// Package view maps dashboard aggregates to metric tiles, Vega-Lite charts
// and raw tables. Every mapping is a pure function of the loaded data.
package view

import (
	"context"
	"time"

	"github.com/vench/salesdash"
)

// Prompt is shown instead of the dashboard while the filter is incomplete.
const Prompt = "Select at least one region and a date range."

// Selection is the user's current filter input.
type Selection struct {
	Regions []string
	Start   time.Time
	End     time.Time
}

func (s Selection) key() salesdash.FilterKey {
	return salesdash.FilterKey{
		Regions: s.Regions,
		Start:   s.Start,
		End:     s.End,
	}.Normalize()
}

// Complete reports whether the selection can be queried.
func (s Selection) Complete() bool {
	return s.key().Complete()
}

type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Panel places a chart on the page.
type Panel struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Spec  *Chart `json:"spec"`
}

// TablePanel is a raw data view, collapsed until requested.
type TablePanel struct {
	ID    string           `json:"id"`
	Title string           `json:"title"`
	Table *salesdash.Table `json:"table"`
}

// Page is everything the dashboard shows for one selection.
type Page struct {
	Prompt  string        `json:"prompt,omitempty"`
	Metrics []*Metric     `json:"metrics,omitempty"`
	Charts  []*Panel      `json:"charts,omitempty"`
	Tables  []*TablePanel `json:"tables,omitempty"`
}

// Render loads the dashboard for a complete selection and maps it to a page.
// An incomplete selection returns the prompt without touching the loader.
func Render(ctx context.Context, loader salesdash.Loader, sel Selection) (*Page, error) {
	if !sel.Complete() {
		return &Page{Prompt: Prompt}, nil
	}

	d, err := loader.Load(ctx, sel.key())
	if err != nil {
		return nil, err
	}

	return Build(d), nil
}

// Build maps a loaded dashboard to a page.
func Build(d *salesdash.Dashboard) *Page {
	return &Page{
		Metrics: []*Metric{
			{Label: "Total revenue", Value: Currency(d.TotalRevenue)},
			{Label: "Total orders", Value: Count(d.TotalOrders)},
			{Label: "Average order value", Value: CurrencyCents(d.AvgOrderValue)},
		},
		Charts: []*Panel{
			panel("monthly-revenue", MonthlyRevenueChart(d.Monthly)),
			panel("region-revenue", RegionRevenueChart(d.Regions)),
			panel("segment-revenue", SegmentRevenueChart(d.Segments)),
			panel("priority-distribution", PriorityChart(d.Priority)),
			panel("top-nations", TopNationsChart(d.Nations)),
		},
		Tables: []*TablePanel{
			{ID: "raw-region-revenue", Title: "Raw data: revenue by region", Table: salesdash.RegionRevenueTable(d.Regions)},
			{ID: "raw-segment-analysis", Title: "Raw data: market segments", Table: salesdash.SegmentAnalysisTable(d.Segments)},
		},
	}
}

func panel(id string, c *Chart) *Panel {
	return &Panel{ID: id, Title: c.Title, Spec: c}
}
