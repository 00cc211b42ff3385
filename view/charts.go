package view

import (
	"github.com/vench/salesdash"
)

const (
	accentColor = "#29B5E8"

	revenueAxisFormat  = "~s"
	currencyFormat     = "$,.0f"
	currencyCentFormat = "$,.2f"

	trendHeight = 350
	chartHeight = 300
	donutRadius = 50
)

func revenueAxis() *Channel {
	return &Channel{
		Field: "revenue",
		Type:  Quantitative,
		Title: "Revenue ($)",
		Axis:  &Axis{Format: revenueAxisFormat},
	}
}

// MonthlyRevenueChart is an area chart of revenue per month with a gradient fill.
func MonthlyRevenueChart(rows []*salesdash.MonthlyRevenue) *Chart {
	values := make([]map[string]interface{}, 0, len(rows))
	for _, r := range rows {
		values = append(values, map[string]interface{}{
			"month":   r.Month.Format("2006-01-02"),
			"revenue": r.Revenue,
		})
	}

	mark := &Mark{
		Type: "area",
		Line: &MarkLine{Color: accentColor},
		Color: &Gradient{
			Gradient: "linear",
			Stops: []GradientStop{
				{Color: "white", Offset: 0},
				{Color: accentColor, Offset: 1},
			},
			X1: 1, X2: 1, Y1: 1, Y2: 0,
		},
	}

	return newChart("Revenue trend", trendHeight, values, mark, &Encoding{
		X: &Channel{Field: "month", Type: Temporal, Title: "Month"},
		Y: revenueAxis(),
		Tooltip: []Channel{
			{Field: "month", Type: Temporal, Title: "Month"},
			{Field: "revenue", Type: Quantitative, Title: "Revenue", Format: currencyFormat},
		},
	})
}

// RegionRevenueChart is a bar per region, tallest first.
func RegionRevenueChart(rows []*salesdash.RegionRevenue) *Chart {
	values := make([]map[string]interface{}, 0, len(rows))
	for _, r := range rows {
		values = append(values, map[string]interface{}{
			"region":  r.Region,
			"revenue": r.Revenue,
			"orders":  r.Orders,
		})
	}

	return newChart("Revenue by region", chartHeight, values, &Mark{Type: "bar"}, &Encoding{
		X:     &Channel{Field: "region", Type: Nominal, Title: "Region", Sort: "-y"},
		Y:     revenueAxis(),
		Color: &Channel{Field: "region", Type: Nominal, NoLegend: true},
		Tooltip: []Channel{
			{Field: "region", Type: Nominal, Title: "Region"},
			{Field: "revenue", Type: Quantitative, Title: "Revenue", Format: currencyFormat},
			{Field: "orders", Type: Quantitative, Title: "Orders"},
		},
	})
}

// SegmentRevenueChart is a bar per market segment, tallest first.
func SegmentRevenueChart(rows []*salesdash.SegmentRevenue) *Chart {
	values := make([]map[string]interface{}, 0, len(rows))
	for _, r := range rows {
		values = append(values, map[string]interface{}{
			"segment":   r.Segment,
			"revenue":   r.Revenue,
			"orders":    r.Orders,
			"avg_order": r.AvgOrder,
		})
	}

	return newChart("Revenue by market segment", chartHeight, values, &Mark{Type: "bar"}, &Encoding{
		X:     &Channel{Field: "segment", Type: Nominal, Title: "Segment", Sort: "-y"},
		Y:     revenueAxis(),
		Color: &Channel{Field: "segment", Type: Nominal, NoLegend: true},
		Tooltip: []Channel{
			{Field: "segment", Type: Nominal, Title: "Segment"},
			{Field: "revenue", Type: Quantitative, Title: "Revenue", Format: currencyFormat},
			{Field: "orders", Type: Quantitative, Title: "Orders"},
			{Field: "avg_order", Type: Quantitative, Title: "Average order", Format: currencyCentFormat},
		},
	})
}

// PriorityChart is a donut of order counts per priority label.
func PriorityChart(rows []*salesdash.PriorityCount) *Chart {
	values := make([]map[string]interface{}, 0, len(rows))
	for _, r := range rows {
		values = append(values, map[string]interface{}{
			"priority": r.Priority,
			"orders":   r.Orders,
			"revenue":  r.Revenue,
		})
	}

	return newChart("Order priority distribution", chartHeight, values, &Mark{Type: "arc", InnerRadius: donutRadius}, &Encoding{
		Theta: &Channel{Field: "orders", Type: Quantitative},
		Color: &Channel{Field: "priority", Type: Nominal, Title: "Priority"},
		Tooltip: []Channel{
			{Field: "priority", Type: Nominal, Title: "Priority"},
			{Field: "orders", Type: Quantitative, Title: "Orders"},
			{Field: "revenue", Type: Quantitative, Title: "Revenue", Format: currencyFormat},
		},
	})
}

// TopNationsChart ranks nations by revenue as horizontal bars colored by region.
func TopNationsChart(rows []*salesdash.NationRevenue) *Chart {
	values := make([]map[string]interface{}, 0, len(rows))
	for _, r := range rows {
		values = append(values, map[string]interface{}{
			"nation":  r.Nation,
			"region":  r.Region,
			"revenue": r.Revenue,
		})
	}

	return newChart("Top 10 nations by revenue", chartHeight, values, &Mark{Type: "bar"}, &Encoding{
		X:     revenueAxis(),
		Y:     &Channel{Field: "nation", Type: Nominal, Title: "Nation", Sort: "-x"},
		Color: &Channel{Field: "region", Type: Nominal, Title: "Region"},
		Tooltip: []Channel{
			{Field: "nation", Type: Nominal, Title: "Nation"},
			{Field: "region", Type: Nominal, Title: "Region"},
			{Field: "revenue", Type: Quantitative, Title: "Revenue", Format: currencyFormat},
		},
	})
}
