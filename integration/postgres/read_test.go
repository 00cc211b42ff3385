//go:build integration
// +build integration

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/vench/salesdash"
	"github.com/vench/salesdash/internal/tpchtest"
)

var (
	setupPostgresNameDB     = "tpch"
	setupPostgresUserDB     = "tpch"
	setupPostgresPasswordDB = "tpch"

	setupHostDB string
	setupPortDB nat.Port
)

func setupPostgres(ctx context.Context) (testcontainers.Container, error) {
	req := testcontainers.ContainerRequest{
		Image: "postgres:15-alpine",
		Env: map[string]string{
			"POSTGRES_DB":       setupPostgresNameDB,
			"POSTGRES_USER":     setupPostgresUserDB,
			"POSTGRES_PASSWORD": setupPostgresPasswordDB,
		},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2),
	}

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generic container: %w", err)
	}

	setupHostDB, err = pgContainer.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get host: %w", err)
	}

	setupPortDB, err = pgContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return nil, fmt.Errorf("failed to get port: %w", err)
	}

	return pgContainer, nil
}

func TestMain(m *testing.M) {
	ctx := context.Background()
	cont, err := setupPostgres(ctx)
	if err != nil {
		log.Fatalf("failed to setup postgres: %v", err)

		return
	}

	if err = initPostgresDB(ctx); err != nil {
		log.Fatalf("failed to init DB postgres: %v", err)

		return
	}

	exitVal := m.Run()

	cont.Terminate(ctx)

	os.Exit(exitVal)
}

func dataSourceNameDB() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		setupPostgresUserDB, setupPostgresPasswordDB, setupHostDB, setupPortDB.Int(), setupPostgresNameDB)
}

func TestPostgres_Dashboard(t *testing.T) {
	t.Parallel()

	conn, err := sql.Open("postgres", dataSourceNameDB())
	require.NoError(t, err)

	defer func() {
		require.NoError(t, conn.Close())
	}()

	ctx := context.Background()
	repo := salesdash.NewSQLRepository(conn, salesdash.Postgres{})
	require.NoError(t, repo.Ping(ctx))

	dataset := tpchtest.New()

	params, err := salesdash.NewResolver(repo).Parameters(ctx)
	require.NoError(t, err)
	require.Equal(t, dataset.RegionNames(), params.Regions)
	require.Equal(t, tpchtest.FirstOrderDate, params.MinDate)
	require.Equal(t, dataset.LastOrderDate(), params.MaxDate)

	pipeline := salesdash.NewPipeline(repo, salesdash.NewLRUCache(salesdash.LRUCacheConfig{Size: 4}))
	key := salesdash.FilterKey{
		Regions: []string{"EUROPE", "ASIA"},
		Start:   params.MinDate,
		End:     params.MaxDate,
	}
	d, err := pipeline.Load(ctx, key)
	require.NoError(t, err)

	nations := map[int]string{}
	for _, n := range dataset.Nations {
		nations[n.Key] = dataset.Regions[n.RegionKey].Name
	}
	customers := map[int]string{}
	for _, c := range dataset.Customers {
		customers[c.Key] = nations[c.NationKey]
	}

	var (
		revenue float64
		orders  int64
	)
	for _, o := range dataset.Orders {
		if r := customers[o.CustKey]; r == "EUROPE" || r == "ASIA" {
			revenue += o.TotalPrice
			orders++
		}
	}

	require.Equal(t, orders, d.TotalOrders)
	require.InDelta(t, revenue, d.TotalRevenue.Float64, 0.01)
	require.Len(t, d.Regions, 2)
	require.Equal(t, "ASIA", d.Regions[0].Region)
	require.Equal(t, "EUROPE", d.Regions[1].Region)

	for _, n := range d.Nations {
		require.Contains(t, []string{"EUROPE", "ASIA"}, n.Region)
	}

	// cached result for the same selection in another order
	again, err := pipeline.Load(ctx, salesdash.FilterKey{
		Regions: []string{"ASIA", "EUROPE"},
		Start:   params.MinDate,
		End:     params.MaxDate,
	})
	require.NoError(t, err)
	require.Same(t, d, again)
}

func initPostgresDB(ctx context.Context) error {
	db, err := sql.Open("postgres", dataSourceNameDB())
	if err != nil {
		return fmt.Errorf("failed to open DB: %w", err)
	}
	defer db.Close()

	return tpchtest.New().Seed(ctx, db, "postgres")
}
