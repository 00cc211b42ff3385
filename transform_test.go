package salesdash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_RegionRevenueTable(t *testing.T) {
	t.Parallel()

	tt := []struct {
		name     string
		input    []*RegionRevenue
		expected *Table
	}{
		{
			name: "empty",
			expected: &Table{
				Columns: []string{"R_NAME", "REVENUE", "ORDERS"},
				Rows:    [][]interface{}{},
			},
		},
		{
			name: "rows keep order",
			input: []*RegionRevenue{
				{Region: "ASIA", Revenue: 100.5, Orders: 2},
				{Region: "AFRICA", Revenue: 50, Orders: 1},
			},
			expected: &Table{
				Columns: []string{"R_NAME", "REVENUE", "ORDERS"},
				Rows: [][]interface{}{
					{"ASIA", 100.5, int64(2)},
					{"AFRICA", float64(50), int64(1)},
				},
			},
		},
	}

	for _, tc := range tt {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.expected, RegionRevenueTable(tc.input))
		})
	}
}

func Test_SegmentAnalysisTable(t *testing.T) {
	t.Parallel()

	table := SegmentAnalysisTable([]*SegmentRevenue{
		{Segment: "BUILDING", Revenue: 300, Orders: 3, AvgOrder: 100},
	})

	require.Equal(t, []string{"C_MKTSEGMENT", "REVENUE", "ORDERS", "AVG_ORDER"}, table.Columns)
	require.Equal(t, [][]interface{}{{"BUILDING", float64(300), int64(3), float64(100)}}, table.Rows)
}

func Test_RegionTotals(t *testing.T) {
	t.Parallel()

	revenue, orders := RegionTotals([]*RegionRevenue{
		{Region: "ASIA", Revenue: 100.5, Orders: 2},
		{Region: "EUROPE", Revenue: 200, Orders: 5},
	})
	require.InDelta(t, 300.5, revenue, 1e-9)
	require.Equal(t, int64(7), orders)

	revenue, orders = RegionTotals(nil)
	require.Zero(t, revenue)
	require.Zero(t, orders)
}
