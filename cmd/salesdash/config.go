package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/vench/salesdash"
)

type config struct {
	Addr   string `env:"SALESDASH_ADDR" envDefault:":8080"`
	Driver string `env:"SALESDASH_DRIVER" envDefault:"clickhouse"`
	DSN    string `env:"SALESDASH_DSN,required"`

	OrdersTable   string `env:"SALESDASH_ORDERS_TABLE" envDefault:"orders"`
	CustomerTable string `env:"SALESDASH_CUSTOMER_TABLE" envDefault:"customer"`
	NationTable   string `env:"SALESDASH_NATION_TABLE" envDefault:"nation"`
	RegionTable   string `env:"SALESDASH_REGION_TABLE" envDefault:"region"`

	CacheSize int           `env:"SALESDASH_CACHE_SIZE" envDefault:"128"`
	CacheTTL  time.Duration `env:"SALESDASH_CACHE_TTL" envDefault:"0s"`

	LogLevel        string        `env:"SALESDASH_LOG_LEVEL" envDefault:"info"`
	OTELEndpoint    string        `env:"SALESDASH_OTEL_ENDPOINT"`
	ShutdownTimeout time.Duration `env:"SALESDASH_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// loadConfig reads an optional .env file then the process environment.
func loadConfig(dotenv string) (*config, error) {
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", dotenv, err)
	}

	cfg := &config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if _, err := salesdash.DialectByDriver(cfg.Driver); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *config) schema() salesdash.Schema {
	return salesdash.Schema{
		Orders:   c.OrdersTable,
		Customer: c.CustomerTable,
		Nation:   c.NationTable,
		Region:   c.RegionTable,
	}
}
