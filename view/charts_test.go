package view

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vench/salesdash"
)

func encode(t *testing.T, c *Chart) map[string]interface{} {
	t.Helper()

	data, err := json.Marshal(c)
	require.NoError(t, err)

	out := make(map[string]interface{})
	require.NoError(t, json.Unmarshal(data, &out))

	return out
}

func TestMonthlyRevenueChart(t *testing.T) {
	t.Parallel()

	c := MonthlyRevenueChart([]*salesdash.MonthlyRevenue{
		{Month: time.Date(1995, time.January, 1, 0, 0, 0, 0, time.UTC), Revenue: 10},
		{Month: time.Date(1995, time.February, 1, 0, 0, 0, 0, time.UTC), Revenue: 20},
	})

	require.Equal(t, "area", c.Mark.Type)
	require.Equal(t, trendHeight, c.Height)
	require.Equal(t, Temporal, c.Encoding.X.Type)
	require.Equal(t, "~s", c.Encoding.Y.Axis.Format)
	require.Equal(t, []map[string]interface{}{
		{"month": "1995-01-01", "revenue": float64(10)},
		{"month": "1995-02-01", "revenue": float64(20)},
	}, c.Data.Values)

	out := encode(t, c)
	mark := out["mark"].(map[string]interface{})
	require.Equal(t, map[string]interface{}{"color": accentColor}, mark["line"])
	gradient := mark["color"].(map[string]interface{})
	require.Equal(t, "linear", gradient["gradient"])
	require.Equal(t, vegaLiteSchema, out["$schema"])
}

func TestRegionRevenueChart(t *testing.T) {
	t.Parallel()

	c := RegionRevenueChart([]*salesdash.RegionRevenue{{Region: "ASIA", Revenue: 10, Orders: 2}})

	require.Equal(t, "bar", c.Mark.Type)
	require.Equal(t, "-y", c.Encoding.X.Sort)

	out := encode(t, c)
	enc := out["encoding"].(map[string]interface{})
	color := enc["color"].(map[string]interface{})
	legend, ok := color["legend"]
	require.True(t, ok)
	require.Nil(t, legend)

	tooltip := enc["tooltip"].([]interface{})
	require.Len(t, tooltip, 3)
	require.Equal(t, "$,.0f", tooltip[1].(map[string]interface{})["format"])
}

func TestSegmentRevenueChart(t *testing.T) {
	t.Parallel()

	c := SegmentRevenueChart([]*salesdash.SegmentRevenue{{Segment: "BUILDING", Revenue: 10, Orders: 2, AvgOrder: 5}})

	require.Equal(t, "-y", c.Encoding.X.Sort)
	require.Len(t, c.Encoding.Tooltip, 4)
	require.Equal(t, "avg_order", c.Encoding.Tooltip[3].Field)
	require.Equal(t, "$,.2f", c.Encoding.Tooltip[3].Format)
}

func TestPriorityChart(t *testing.T) {
	t.Parallel()

	c := PriorityChart([]*salesdash.PriorityCount{
		{Priority: "1-URGENT", Orders: 3, Revenue: 30},
		{Priority: "2-HIGH", Orders: 1, Revenue: 10},
	})

	require.Equal(t, "arc", c.Mark.Type)
	require.Equal(t, donutRadius, c.Mark.InnerRadius)
	require.Equal(t, "orders", c.Encoding.Theta.Field)
	require.Equal(t, "priority", c.Encoding.Color.Field)
	require.Equal(t, "1-URGENT", c.Data.Values[0]["priority"])

	out := encode(t, c)
	color := out["encoding"].(map[string]interface{})["color"].(map[string]interface{})
	_, ok := color["legend"]
	require.False(t, ok)
}

func TestTopNationsChart(t *testing.T) {
	t.Parallel()

	c := TopNationsChart([]*salesdash.NationRevenue{{Nation: "CHINA", Region: "ASIA", Revenue: 10}})

	require.Equal(t, "revenue", c.Encoding.X.Field)
	require.Equal(t, "nation", c.Encoding.Y.Field)
	require.Equal(t, "-x", c.Encoding.Y.Sort)
	require.Equal(t, "region", c.Encoding.Color.Field)
}
