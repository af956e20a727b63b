package db_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/vura/internal/config"
	"github.com/vasiliy-maslov/vura/internal/db"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testConfig(t *testing.T) config.PostgresConfig {
	t.Helper()
	host := os.Getenv("DB_HOST_TEST")
	if host == "" {
		t.Skip("DB_HOST_TEST not set")
	}
	return config.PostgresConfig{
		Host:     host,
		Port:     getenv("DB_PORT_TEST", "5432"),
		User:     getenv("DB_USER_TEST", "postgres"),
		Password: getenv("DB_PASSWORD_TEST", "postgres"),
		DBName:   getenv("DB_NAME_TEST", "vura_test"),
		SSLMode:  getenv("DB_SSLMODE_TEST", "disable"),
		MaxConns: 2,
	}
}

func TestPostgres_Migrate_ReleasesConnections(t *testing.T) {
	cfg := testConfig(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pg, err := db.New(ctx, cfg)
	require.NoError(t, err)

	// Applying twice covers both the fresh and the no-change path.
	require.NoError(t, pg.Migrate(cfg.DBName))
	require.NoError(t, pg.Migrate(cfg.DBName))
	require.Zero(t, pg.Pool.Stat().AcquiredConns(), "migrations must hand every connection back to the pool")

	closed := make(chan struct{})
	go func() {
		pg.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("pool Close did not return")
	}
}
