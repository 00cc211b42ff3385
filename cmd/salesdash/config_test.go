package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SALESDASH_DSN", "tcp://127.0.0.1:9000")

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, "clickhouse", cfg.Driver)
	require.Equal(t, 128, cfg.CacheSize)
	require.Zero(t, cfg.CacheTTL)
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	require.Equal(t, "orders", cfg.schema().Orders)
}

func TestLoadConfigDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"SALESDASH_DRIVER=sqlite3",
		"SALESDASH_DSN=file:tpch.db",
		"SALESDASH_CACHE_TTL=5m",
		"SALESDASH_ORDERS_TABLE=tpch.orders",
	}, "\n")), 0o600))

	// godotenv never overrides variables that are already set.
	t.Setenv("SALESDASH_DRIVER", "")
	os.Unsetenv("SALESDASH_DRIVER")
	t.Setenv("SALESDASH_DSN", "")
	os.Unsetenv("SALESDASH_DSN")
	t.Setenv("SALESDASH_CACHE_TTL", "")
	os.Unsetenv("SALESDASH_CACHE_TTL")
	t.Setenv("SALESDASH_ORDERS_TABLE", "")
	os.Unsetenv("SALESDASH_ORDERS_TABLE")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "sqlite3", cfg.Driver)
	require.Equal(t, "file:tpch.db", cfg.DSN)
	require.Equal(t, 5*time.Minute, cfg.CacheTTL)
	require.Equal(t, "tpch.orders", cfg.schema().Orders)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Setenv("SALESDASH_DSN", "x")
	t.Setenv("SALESDASH_DRIVER", "oracle")

	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)

	t.Setenv("SALESDASH_DRIVER", "postgres")
	t.Setenv("SALESDASH_CACHE_SIZE", "many")

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse env:")
}
