package salesdash

// RegionRevenueTable returns the raw region revenue view.
func RegionRevenueTable(rows []*RegionRevenue) *Table {
	t := &Table{
		Columns: []string{"R_NAME", "REVENUE", "ORDERS"},
		Rows:    make([][]interface{}, 0, len(rows)),
	}

	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{r.Region, r.Revenue, r.Orders})
	}

	return t
}

// SegmentAnalysisTable returns the raw market segment view.
func SegmentAnalysisTable(rows []*SegmentRevenue) *Table {
	t := &Table{
		Columns: []string{"C_MKTSEGMENT", "REVENUE", "ORDERS", "AVG_ORDER"},
		Rows:    make([][]interface{}, 0, len(rows)),
	}

	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{r.Segment, r.Revenue, r.Orders, r.AvgOrder})
	}

	return t
}

// RegionTotals sums revenue and order counts across regions.
func RegionTotals(rows []*RegionRevenue) (revenue float64, orders int64) {
	for _, r := range rows {
		revenue += r.Revenue
		orders += r.Orders
	}

	return revenue, orders
}
