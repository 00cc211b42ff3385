package salesdash

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect covers the SQL differences between supported warehouse engines.
type Dialect interface {
	// Name returns the database/sql driver name.
	Name() string
	// Rebind rewrites '?' placeholders into the engine's style.
	Rebind(query string) string
	// MonthString renders the first day of the month of a date expression as YYYY-MM-DD.
	MonthString(expr string) string
	// DateString renders a date expression as YYYY-MM-DD.
	DateString(expr string) string
	// Float casts a numeric expression to a double.
	Float(expr string) string
}

// DialectByDriver returns the dialect for a database/sql driver name.
func DialectByDriver(driver string) (Dialect, error) {
	switch driver {
	case "clickhouse":
		return ClickHouse{}, nil
	case "postgres":
		return Postgres{}, nil
	case "sqlite3":
		return SQLite{}, nil
	}

	return nil, fmt.Errorf("unsupported driver %q", driver)
}

type ClickHouse struct{}

func (ClickHouse) Name() string { return "clickhouse" }

func (ClickHouse) Rebind(query string) string { return query }

func (ClickHouse) MonthString(expr string) string {
	return fmt.Sprintf("formatDateTime(toStartOfMonth(%s), '%%Y-%%m-%%d')", expr)
}

func (ClickHouse) DateString(expr string) string {
	return fmt.Sprintf("formatDateTime(%s, '%%Y-%%m-%%d')", expr)
}

func (ClickHouse) Float(expr string) string {
	return fmt.Sprintf("toFloat64(%s)", expr)
}

type Postgres struct{}

func (Postgres) Name() string { return "postgres" }

func (Postgres) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			b.WriteByte(query[i])
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}

	return b.String()
}

func (Postgres) MonthString(expr string) string {
	return fmt.Sprintf("to_char(date_trunc('month', %s), 'YYYY-MM-DD')", expr)
}

func (Postgres) DateString(expr string) string {
	return fmt.Sprintf("to_char(%s, 'YYYY-MM-DD')", expr)
}

func (Postgres) Float(expr string) string {
	return fmt.Sprintf("CAST(%s AS DOUBLE PRECISION)", expr)
}

type SQLite struct{}

func (SQLite) Name() string { return "sqlite3" }

func (SQLite) Rebind(query string) string { return query }

func (SQLite) MonthString(expr string) string {
	return fmt.Sprintf("strftime('%%Y-%%m-01', %s)", expr)
}

func (SQLite) DateString(expr string) string {
	return fmt.Sprintf("strftime('%%Y-%%m-%%d', %s)", expr)
}

func (SQLite) Float(expr string) string {
	return fmt.Sprintf("CAST(%s AS REAL)", expr)
}
