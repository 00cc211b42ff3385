// Package tpchtest builds a small deterministic TPC-H shaped dataset
// and loads it into sqlite3, postgres or clickhouse.
package tpchtest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const dateFormat = "2006-01-02"

type Region struct {
	Key  int
	Name string
}

type Nation struct {
	Key       int
	Name      string
	RegionKey int
}

type Customer struct {
	Key       int
	NationKey int
	Segment   string
}

type Order struct {
	Key        int
	CustKey    int
	Date       time.Time
	TotalPrice float64
	Priority   string
}

type Dataset struct {
	Regions   []Region
	Nations   []Nation
	Customers []Customer
	Orders    []Order
}

var (
	regionNames = []string{"AFRICA", "AMERICA", "ASIA", "EUROPE", "MIDDLE EAST"}

	nations = []Nation{
		{0, "ALGERIA", 0}, {1, "ARGENTINA", 1}, {2, "BRAZIL", 1}, {3, "CANADA", 1},
		{4, "EGYPT", 4}, {5, "ETHIOPIA", 0}, {6, "FRANCE", 3}, {7, "GERMANY", 3},
		{8, "INDIA", 2}, {9, "INDONESIA", 2}, {10, "IRAN", 4}, {11, "IRAQ", 4},
		{12, "JAPAN", 2}, {13, "JORDAN", 4}, {14, "KENYA", 0}, {15, "MOROCCO", 0},
		{16, "MOZAMBIQUE", 0}, {17, "PERU", 1}, {18, "CHINA", 2}, {19, "ROMANIA", 3},
		{20, "SAUDI ARABIA", 4}, {21, "VIETNAM", 2}, {22, "RUSSIA", 3}, {23, "UNITED KINGDOM", 3},
		{24, "UNITED STATES", 1},
	}

	segments   = []string{"AUTOMOBILE", "BUILDING", "FURNITURE", "HOUSEHOLD", "MACHINERY"}
	priorities = []string{"1-URGENT", "2-HIGH", "3-MEDIUM", "4-NOT SPECIFIED", "5-LOW"}

	// FirstOrderDate is the earliest order date of the dataset.
	FirstOrderDate = time.Date(1995, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// OrderCount is the number of generated orders.
const OrderCount = 300

// New returns the dataset. Every call yields identical data.
func New() *Dataset {
	d := &Dataset{}

	for i, name := range regionNames {
		d.Regions = append(d.Regions, Region{Key: i, Name: name})
	}
	d.Nations = append(d.Nations, nations...)

	for i := 0; i < 2*len(nations); i++ {
		d.Customers = append(d.Customers, Customer{
			Key:       i + 1,
			NationKey: i % len(nations),
			Segment:   segments[i%len(segments)],
		})
	}

	for i := 0; i < OrderCount; i++ {
		c := d.Customers[(i*7)%len(d.Customers)]
		d.Orders = append(d.Orders, Order{
			Key:        i + 1,
			CustKey:    c.Key,
			Date:       FirstOrderDate.AddDate(0, 0, i*2),
			TotalPrice: float64(1000*(c.NationKey+1)) + float64(i%9)*12.25,
			Priority:   priorities[(i*3)%len(priorities)],
		})
	}

	return d
}

// LastOrderDate is the latest order date of the dataset.
func (d *Dataset) LastOrderDate() time.Time {
	return d.Orders[len(d.Orders)-1].Date
}

// RegionNames returns the region names in key order.
func (d *Dataset) RegionNames() []string {
	names := make([]string, 0, len(d.Regions))
	for _, r := range d.Regions {
		names = append(names, r.Name)
	}
	return names
}

// Seed creates the tables and loads the dataset through db.
// driver is one of sqlite3, postgres, clickhouse.
func (d *Dataset) Seed(ctx context.Context, db *sql.DB, driver string) error {
	for _, stmt := range ddl(driver) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to exec ddl %q: %w", stmt, err)
		}
	}

	date := func(t time.Time) interface{} {
		if driver == "clickhouse" {
			return t
		}
		return t.Format(dateFormat)
	}

	inserts := []struct {
		table   string
		columns []string
		rows    [][]interface{}
	}{
		{table: "region", columns: []string{"r_regionkey", "r_name"}},
		{table: "nation", columns: []string{"n_nationkey", "n_name", "n_regionkey"}},
		{table: "customer", columns: []string{"c_custkey", "c_nationkey", "c_mktsegment"}},
		{table: "orders", columns: []string{"o_orderkey", "o_custkey", "o_orderdate", "o_totalprice", "o_orderpriority"}},
	}
	for _, r := range d.Regions {
		inserts[0].rows = append(inserts[0].rows, []interface{}{r.Key, r.Name})
	}
	for _, n := range d.Nations {
		inserts[1].rows = append(inserts[1].rows, []interface{}{n.Key, n.Name, n.RegionKey})
	}
	for _, c := range d.Customers {
		inserts[2].rows = append(inserts[2].rows, []interface{}{c.Key, c.NationKey, c.Segment})
	}
	for _, o := range d.Orders {
		inserts[3].rows = append(inserts[3].rows, []interface{}{o.Key, o.CustKey, date(o.Date), o.TotalPrice, o.Priority})
	}

	for _, ins := range inserts {
		if err := insert(ctx, db, driver, ins.table, ins.columns, ins.rows); err != nil {
			return err
		}
	}

	return nil
}

func insert(ctx context.Context, db *sql.DB, driver, table string, columns []string, rows [][]interface{}) error {
	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
		if driver == "postgres" {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		}
	}
	query := fmt.Sprintf("INSERT INTO %s(%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	scope, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin insert into `%s`: %w", table, err)
	}

	stmt, err := scope.PrepareContext(ctx, query)
	if err != nil {
		_ = scope.Rollback()
		return fmt.Errorf("failed to prepare insert into `%s`: %w", table, err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err = stmt.ExecContext(ctx, row...); err != nil {
			_ = scope.Rollback()
			return fmt.Errorf("failed to execute insert into `%s`: %w", table, err)
		}
	}

	if err = scope.Commit(); err != nil {
		return fmt.Errorf("failed to commit insert into `%s`: %w", table, err)
	}

	return nil
}

func ddl(driver string) []string {
	switch driver {
	case "clickhouse":
		return []string{
			`DROP TABLE IF EXISTS orders`,
			`DROP TABLE IF EXISTS customer`,
			`DROP TABLE IF EXISTS nation`,
			`DROP TABLE IF EXISTS region`,
			`CREATE TABLE region (r_regionkey Int32, r_name String) ENGINE = MergeTree() ORDER BY (r_regionkey)`,
			`CREATE TABLE nation (n_nationkey Int32, n_name String, n_regionkey Int32) ENGINE = MergeTree() ORDER BY (n_nationkey)`,
			`CREATE TABLE customer (c_custkey Int32, c_nationkey Int32, c_mktsegment String) ENGINE = MergeTree() ORDER BY (c_custkey)`,
			`CREATE TABLE orders (o_orderkey Int32, o_custkey Int32, o_orderdate Date, o_totalprice Float64, o_orderpriority String) ENGINE = MergeTree() ORDER BY (o_orderdate)`,
		}
	case "postgres":
		return []string{
			`DROP TABLE IF EXISTS orders, customer, nation, region`,
			`CREATE TABLE region (r_regionkey INTEGER PRIMARY KEY, r_name VARCHAR(25) NOT NULL)`,
			`CREATE TABLE nation (n_nationkey INTEGER PRIMARY KEY, n_name VARCHAR(25) NOT NULL, n_regionkey INTEGER NOT NULL)`,
			`CREATE TABLE customer (c_custkey INTEGER PRIMARY KEY, c_nationkey INTEGER NOT NULL, c_mktsegment VARCHAR(10) NOT NULL)`,
			`CREATE TABLE orders (o_orderkey INTEGER PRIMARY KEY, o_custkey INTEGER NOT NULL, o_orderdate DATE NOT NULL, o_totalprice NUMERIC(15,2) NOT NULL, o_orderpriority VARCHAR(15) NOT NULL)`,
		}
	default:
		return []string{
			`DROP TABLE IF EXISTS orders`,
			`DROP TABLE IF EXISTS customer`,
			`DROP TABLE IF EXISTS nation`,
			`DROP TABLE IF EXISTS region`,
			`CREATE TABLE region (r_regionkey INTEGER PRIMARY KEY, r_name TEXT NOT NULL)`,
			`CREATE TABLE nation (n_nationkey INTEGER PRIMARY KEY, n_name TEXT NOT NULL, n_regionkey INTEGER NOT NULL)`,
			`CREATE TABLE customer (c_custkey INTEGER PRIMARY KEY, c_nationkey INTEGER NOT NULL, c_mktsegment TEXT NOT NULL)`,
			`CREATE TABLE orders (o_orderkey INTEGER PRIMARY KEY, o_custkey INTEGER NOT NULL, o_orderdate TEXT NOT NULL, o_totalprice REAL NOT NULL, o_orderpriority TEXT NOT NULL)`,
		}
	}
}
