package salesdash

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	directionAsc  = "ASC"
	directionDesc = "DESC"

	// TopNationsLimit is the size of the nation ranking.
	TopNationsLimit = 10
)

// ReadRepository common read interface over the orders warehouse.
type ReadRepository interface {
	// Regions returns distinct region names in ascending order.
	Regions(ctx context.Context) ([]string, error)
	// DateRange returns the earliest and latest order date.
	DateRange(ctx context.Context) (time.Time, time.Time, error)
	// Summary returns total revenue, order count and average order value.
	Summary(ctx context.Context, key FilterKey) (*Summary, error)
	// MonthlyRevenue returns revenue per month in ascending month order.
	MonthlyRevenue(ctx context.Context, key FilterKey) ([]*MonthlyRevenue, error)
	// RegionRevenue returns revenue and order count per region.
	RegionRevenue(ctx context.Context, key FilterKey) ([]*RegionRevenue, error)
	// SegmentAnalysis returns revenue, order count and average order per market segment.
	SegmentAnalysis(ctx context.Context, key FilterKey) ([]*SegmentRevenue, error)
	// PriorityAnalysis returns order count and revenue per priority label, label ascending.
	PriorityAnalysis(ctx context.Context, key FilterKey) ([]*PriorityCount, error)
	// TopNations returns the nations with the highest revenue, at most limit rows.
	TopNations(ctx context.Context, key FilterKey, limit int) ([]*NationRevenue, error)
}

// SQLRepository sql implementation of ReadRepository.
type SQLRepository struct {
	conn *sql.DB

	dialect Dialect
	schema  Schema
	logger  *zap.Logger
}

type SQLRepositoryOption func(*SQLRepository)

// LoggerSQLRepositoryOption sets the logger, queries are logged at debug level.
func LoggerSQLRepositoryOption(logger *zap.Logger) SQLRepositoryOption {
	return func(r *SQLRepository) {
		r.logger = logger
	}
}

// SchemaSQLRepositoryOption overrides the relation names.
func SchemaSQLRepositoryOption(schema Schema) SQLRepositoryOption {
	return func(r *SQLRepository) {
		r.schema = schema
	}
}

// NewSQLRepository returns new instance of SQLRepository.
func NewSQLRepository(connection *sql.DB, dialect Dialect, opts ...SQLRepositoryOption) *SQLRepository {
	r := &SQLRepository{
		conn:    connection,
		dialect: dialect,
		schema:  DefaultSchema(),
		logger:  zap.NewNop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *SQLRepository) Ping(ctx context.Context) error {
	_, err := r.conn.ExecContext(ctx, `SELECT 1`)
	return err
}

func (r *SQLRepository) Regions(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT DISTINCT r_name FROM %s ORDER BY r_name ASC`, r.schema.Region)

	regions := make([]string, 0)
	err := r.exec(ctx, query, nil, func(rows *sql.Rows) error {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		regions = append(regions, name)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return regions, nil
}

func (r *SQLRepository) DateRange(ctx context.Context) (time.Time, time.Time, error) {
	query := fmt.Sprintf(`SELECT %s AS min_date, %s AS max_date FROM %s`,
		r.dialect.DateString(`min(o_orderdate)`), r.dialect.DateString(`max(o_orderdate)`), r.schema.Orders)

	var minDate, maxDate time.Time
	err := r.exec(ctx, query, nil, func(rows *sql.Rows) error {
		var lo, hi sql.NullString
		if err := rows.Scan(&lo, &hi); err != nil {
			return err
		}

		var err error
		if minDate, err = parseDate(lo); err != nil {
			return err
		}
		maxDate, err = parseDate(hi)
		return err
	})
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	return minDate, maxDate, nil
}

func (r *SQLRepository) Summary(ctx context.Context, key FilterKey) (*Summary, error) {
	q := &queryPlan{
		Select: []string{
			r.sum() + ` AS total_revenue`,
			`count(*) AS total_orders`,
			r.dialect.Float(`avg(o_totalprice)`) + ` AS avg_order_value`,
		},
		Filters: r.baseFilters(key),
	}

	summary := &Summary{}
	err := r.run(ctx, q, func(rows *sql.Rows) error {
		return rows.Scan(&summary.TotalRevenue, &summary.TotalOrders, &summary.AvgOrderValue)
	})
	if err != nil {
		return nil, err
	}

	return summary, nil
}

func (r *SQLRepository) MonthlyRevenue(ctx context.Context, key FilterKey) ([]*MonthlyRevenue, error) {
	month := r.dialect.MonthString(`o_orderdate`)
	q := &queryPlan{
		Select:  []string{month + ` AS month`, r.sum() + ` AS revenue`},
		Filters: r.baseFilters(key),
		Groups:  []string{month},
		SortBy:  []*order{{Expression: `month`, Direction: directionAsc}},
	}

	response := make([]*MonthlyRevenue, 0)
	err := r.run(ctx, q, func(rows *sql.Rows) error {
		var (
			m   sql.NullString
			row MonthlyRevenue
		)
		if err := rows.Scan(&m, &row.Revenue); err != nil {
			return err
		}

		var err error
		if row.Month, err = parseDate(m); err != nil {
			return err
		}
		response = append(response, &row)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return response, nil
}

func (r *SQLRepository) RegionRevenue(ctx context.Context, key FilterKey) ([]*RegionRevenue, error) {
	q := &queryPlan{
		Select:  []string{`r_name AS region`, r.sum() + ` AS revenue`, `count(o_orderkey) AS orders`},
		Filters: r.baseFilters(key),
		Groups:  []string{`r_name`},
		SortBy:  []*order{{Expression: `r_name`, Direction: directionAsc}},
	}

	response := make([]*RegionRevenue, 0)
	err := r.run(ctx, q, func(rows *sql.Rows) error {
		var row RegionRevenue
		if err := rows.Scan(&row.Region, &row.Revenue, &row.Orders); err != nil {
			return err
		}
		response = append(response, &row)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return response, nil
}

func (r *SQLRepository) SegmentAnalysis(ctx context.Context, key FilterKey) ([]*SegmentRevenue, error) {
	q := &queryPlan{
		Select: []string{
			`c_mktsegment AS segment`,
			r.sum() + ` AS revenue`,
			`count(o_orderkey) AS orders`,
			r.dialect.Float(`avg(o_totalprice)`) + ` AS avg_order`,
		},
		Filters: r.baseFilters(key),
		Groups:  []string{`c_mktsegment`},
		SortBy:  []*order{{Expression: `c_mktsegment`, Direction: directionAsc}},
	}

	response := make([]*SegmentRevenue, 0)
	err := r.run(ctx, q, func(rows *sql.Rows) error {
		var row SegmentRevenue
		if err := rows.Scan(&row.Segment, &row.Revenue, &row.Orders, &row.AvgOrder); err != nil {
			return err
		}
		response = append(response, &row)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return response, nil
}

// PriorityAnalysis orders by the label text, so "1-URGENT" sorts before "2-HIGH"
// only because the labels carry a numeric prefix.
func (r *SQLRepository) PriorityAnalysis(ctx context.Context, key FilterKey) ([]*PriorityCount, error) {
	q := &queryPlan{
		Select:  []string{`o_orderpriority AS priority`, `count(o_orderkey) AS orders`, r.sum() + ` AS revenue`},
		Filters: r.baseFilters(key),
		Groups:  []string{`o_orderpriority`},
		SortBy:  []*order{{Expression: `o_orderpriority`, Direction: directionAsc}},
	}

	response := make([]*PriorityCount, 0)
	err := r.run(ctx, q, func(rows *sql.Rows) error {
		var row PriorityCount
		if err := rows.Scan(&row.Priority, &row.Orders, &row.Revenue); err != nil {
			return err
		}
		response = append(response, &row)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return response, nil
}

func (r *SQLRepository) TopNations(ctx context.Context, key FilterKey, limit int) ([]*NationRevenue, error) {
	q := &queryPlan{
		Select:  []string{`n_name AS nation`, `r_name AS region`, r.sum() + ` AS revenue`},
		Filters: r.baseFilters(key),
		Groups:  []string{`n_name`, `r_name`},
		SortBy: []*order{
			{Expression: `revenue`, Direction: directionDesc},
			{Expression: `n_name`, Direction: directionAsc},
		},
		Limit: limit,
	}

	response := make([]*NationRevenue, 0)
	err := r.run(ctx, q, func(rows *sql.Rows) error {
		var row NationRevenue
		if err := rows.Scan(&row.Nation, &row.Region, &row.Revenue); err != nil {
			return err
		}
		response = append(response, &row)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return response, nil
}

func (r *SQLRepository) sum() string {
	return r.dialect.Float(`sum(o_totalprice)`)
}

// baseFilters restricts the joined relation to the key's date interval and regions.
func (r *SQLRepository) baseFilters(key FilterKey) []*filter {
	regions := make([]interface{}, 0, len(key.Regions))
	for _, name := range key.Regions {
		regions = append(regions, name)
	}

	return []*filter{
		{Expression: `o_orderdate`, Condition: CondGreaterOrEq, Values: []interface{}{key.Start.Format(dateFormat)}},
		{Expression: `o_orderdate`, Condition: CondLessOrEq, Values: []interface{}{key.End.Format(dateFormat)}},
		{Expression: `r_name`, Condition: CondIn, Values: regions},
	}
}

func (r *SQLRepository) run(ctx context.Context, q *queryPlan, scan func(*sql.Rows) error) error {
	query := ""
	params := make([]interface{}, 0)

	r.applySelect(q, &query)
	r.applyFrom(&query)
	r.applyWhere(q, &query, &params)
	r.applyGroup(q, &query)
	r.applyOrder(q, &query)
	r.applyLimit(q, &query)

	return r.exec(ctx, r.dialect.Rebind(query), params, scan)
}

func (r *SQLRepository) exec(ctx context.Context, query string, params []interface{}, scan func(*sql.Rows) error) error {
	r.logger.Debug("exec query", zap.String("query", query), zap.Any("params", params))

	rows, err := r.conn.QueryContext(ctx, query, params...)
	if err != nil {
		r.logger.Error("failed to exec query", zap.Error(err), zap.String("query", query))
		return fmt.Errorf("failed to exec query: %w, query: %s, params: %v", err, query, params)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("failed to scan row: %w, query: %s", err, query)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read rows: %w, query: %s", err, query)
	}

	return nil
}

func (r *SQLRepository) applySelect(q *queryPlan, query *string) {
	*query += `SELECT ` + strings.Join(q.Select, `, `)
}

func (r *SQLRepository) applyFrom(query *string) {
	*query += fmt.Sprintf(
		` FROM %s JOIN %s ON o_custkey = c_custkey JOIN %s ON c_nationkey = n_nationkey JOIN %s ON n_regionkey = r_regionkey`,
		r.schema.Orders, r.schema.Customer, r.schema.Nation, r.schema.Region,
	)
}

func (r *SQLRepository) applyWhere(q *queryPlan, query *string, params *[]interface{}) {
	where := make([]string, 0, len(q.Filters))

	for _, f := range q.Filters {
		if len(f.Expression) == 0 {
			continue
		}

		// an empty IN set matches nothing, an empty NOT IN set matches everything.
		if len(f.Values) == 0 {
			if f.Condition == CondIn {
				where = append(where, `1 = 0`)
			}
			continue
		}

		switch f.Condition {
		case CondIn:
			in := strings.TrimRight(strings.Repeat("?,", len(f.Values)), ",")
			where = append(where, fmt.Sprintf(`%s IN (%s)`, f.Expression, in))
			*params = append(*params, f.Values...)

		case CondNotIn:
			in := strings.TrimRight(strings.Repeat("?,", len(f.Values)), ",")
			where = append(where, fmt.Sprintf(`%s NOT IN (%s)`, f.Expression, in))
			*params = append(*params, f.Values...)

		default:
			where = append(where, fmt.Sprintf(`%s %s ?`, f.Expression, f.Condition))
			*params = append(*params, f.Values[0])
		}
	}

	if len(where) > 0 {
		*query += ` WHERE ` + strings.Join(where, ` AND `)
	}
}

func (r *SQLRepository) applyGroup(q *queryPlan, query *string) {
	if len(q.Groups) > 0 {
		*query += ` GROUP BY ` + strings.Join(q.Groups, `, `)
	}
}

func (r *SQLRepository) applyOrder(q *queryPlan, query *string) {
	sortBy := make([]string, 0, len(q.SortBy))
	for _, item := range q.SortBy {
		sortBy = append(sortBy, fmt.Sprintf(`%s %s`, item.Expression, item.Direction))
	}

	if len(sortBy) > 0 {
		*query += ` ORDER BY ` + strings.Join(sortBy, `, `)
	}
}

func (r *SQLRepository) applyLimit(q *queryPlan, query *string) {
	if q.Limit > 0 {
		*query += fmt.Sprintf(` LIMIT %d`, q.Limit)
	}
}

func parseDate(v sql.NullString) (time.Time, error) {
	if !v.Valid || v.String == "" {
		return time.Time{}, nil
	}

	// some drivers hand back a timestamp text, only the date part matters.
	s := v.String
	if len(s) > len(dateFormat) {
		s = s[:len(dateFormat)]
	}

	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q: %w", v.String, err)
	}

	return t, nil
}
