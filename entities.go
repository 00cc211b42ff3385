package salesdash

import (
	"database/sql"
	"encoding/json"
	"math"
	"sort"
	"strings"
	"time"
)

const dateFormat = "2006-01-02"

// FilterKey identifies one dashboard computation: a region set and a closed date interval.
type FilterKey struct {
	Regions []string
	Start   time.Time
	End     time.Time
}

// Normalize returns a copy with regions trimmed, sorted and deduplicated
// and both dates truncated to the day.
func (k FilterKey) Normalize() FilterKey {
	regions := make([]string, 0, len(k.Regions))
	seen := make(map[string]struct{}, len(k.Regions))
	for _, r := range k.Regions {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		regions = append(regions, r)
	}
	sort.Strings(regions)

	return FilterKey{
		Regions: regions,
		Start:   truncateDay(k.Start),
		End:     truncateDay(k.End),
	}
}

// Complete reports whether the key selects at least one region and both ends of the range.
func (k FilterKey) Complete() bool {
	return len(k.Regions) > 0 && !k.Start.IsZero() && !k.End.IsZero()
}

// String is the cache key of a normalized filter.
func (k FilterKey) String() string {
	return strings.Join(k.Regions, "\x1f") + "|" + k.Start.Format(dateFormat) + "|" + k.End.Format(dateFormat)
}

func truncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Parameters are the filter domains offered to the user.
type Parameters struct {
	Regions []string  `json:"regions"`
	MinDate time.Time `json:"min_date"`
	MaxDate time.Time `json:"max_date"`
}

// NullNumber is a float aggregate that is absent over an empty relation.
type NullNumber struct {
	Float64 float64
	Valid   bool
}

func (n *NullNumber) Scan(value interface{}) error {
	var v sql.NullFloat64
	if err := v.Scan(value); err != nil {
		return err
	}

	n.Float64, n.Valid = v.Float64, v.Valid
	// some engines return nan for avg over zero rows.
	if n.Valid && (math.IsNaN(n.Float64) || math.IsInf(n.Float64, 0)) {
		n.Float64, n.Valid = 0, false
	}

	return nil
}

func (n NullNumber) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// Summary holds the scalar metrics of the base relation.
type Summary struct {
	TotalRevenue  NullNumber `json:"total_revenue"`
	TotalOrders   int64      `json:"total_orders"`
	AvgOrderValue NullNumber `json:"avg_order_value"`
}

type MonthlyRevenue struct {
	Month   time.Time `json:"month"`
	Revenue float64   `json:"revenue"`
}

type RegionRevenue struct {
	Region  string  `json:"region"`
	Revenue float64 `json:"revenue"`
	Orders  int64   `json:"orders"`
}

type SegmentRevenue struct {
	Segment  string  `json:"segment"`
	Revenue  float64 `json:"revenue"`
	Orders   int64   `json:"orders"`
	AvgOrder float64 `json:"avg_order"`
}

type PriorityCount struct {
	Priority string  `json:"priority"`
	Orders   int64   `json:"orders"`
	Revenue  float64 `json:"revenue"`
}

type NationRevenue struct {
	Nation  string  `json:"nation"`
	Region  string  `json:"region"`
	Revenue float64 `json:"revenue"`
}

// Dashboard bundles every aggregate computed for one filter key.
type Dashboard struct {
	Key FilterKey `json:"-"`

	Summary
	Monthly  []*MonthlyRevenue `json:"monthly_revenue"`
	Regions  []*RegionRevenue  `json:"region_revenue"`
	Segments []*SegmentRevenue `json:"segment_analysis"`
	Priority []*PriorityCount  `json:"priority_analysis"`
	Nations  []*NationRevenue  `json:"nation_revenue"`
}

// Table is a raw tabular view.
type Table struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// Schema names the warehouse relations. Values may be qualified paths.
type Schema struct {
	Orders   string
	Customer string
	Nation   string
	Region   string
}

// DefaultSchema uses the TPC-H table names.
func DefaultSchema() Schema {
	return Schema{
		Orders:   "orders",
		Customer: "customer",
		Nation:   "nation",
		Region:   "region",
	}
}
