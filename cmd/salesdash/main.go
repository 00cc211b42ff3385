package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/ClickHouse/clickhouse-go"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/vench/salesdash"
	"github.com/vench/salesdash/internal/telemetry"
	"github.com/vench/salesdash/server"
)

const serviceName = "salesdash"

func main() {
	dotenv := flag.String("env", ".env", "optional env file")
	flag.Parse()

	cfg, err := loadConfig(*dotenv)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err = run(cfg, logger); err != nil {
		logger.Fatal("salesdash stopped", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	zc.Level = lvl

	return zc.Build()
}

func run(cfg *config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTELEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("failed to flush traces", zap.Error(err))
		}
	}()

	dialect, err := salesdash.DialectByDriver(cfg.Driver)
	if err != nil {
		return err
	}

	db, err := sql.Open(dialect.Name(), cfg.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	repository := salesdash.NewSQLRepository(db, dialect,
		salesdash.LoggerSQLRepositoryOption(logger),
		salesdash.SchemaSQLRepositoryOption(cfg.schema()),
	)
	if err = repository.Ping(ctx); err != nil {
		return err
	}
	logger.Info("warehouse connected", zap.String("driver", dialect.Name()))

	cache := salesdash.NewLRUCache(salesdash.LRUCacheConfig{
		Size:       cfg.CacheSize,
		TTL:        cfg.CacheTTL,
		Registerer: prometheus.DefaultRegisterer,
	})
	pipeline := salesdash.NewPipeline(repository, cache, salesdash.LoggerPipelineOption(logger))

	srv, err := server.New(server.Config{
		Parameters: salesdash.NewResolver(repository),
		Loader:     pipeline,
		Pinger:     repository,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Addr)
	}()

	select {
	case err = <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
