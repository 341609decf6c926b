package database

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/yourusername/pitwall/internal/config"
)

// SetupTestDB connects to the database named by PITWALL_TEST_DB_* variables and
// applies the schema. The test is skipped when PITWALL_TEST_DB_HOST is unset.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	host := os.Getenv("PITWALL_TEST_DB_HOST")
	if host == "" {
		t.Skip("Integration test - set PITWALL_TEST_DB_HOST to run against PostgreSQL")
	}
	port, err := strconv.Atoi(envOr("PITWALL_TEST_DB_PORT", "5432"))
	if err != nil {
		t.Fatalf("invalid PITWALL_TEST_DB_PORT: %v", err)
	}

	cfg := &config.Config{Database: config.DatabaseConfig{
		Enabled:        true,
		Host:           host,
		Port:           port,
		Name:           envOr("PITWALL_TEST_DB_NAME", "pitwall_test"),
		User:           envOr("PITWALL_TEST_DB_USER", "pitwall"),
		Password:       os.Getenv("PITWALL_TEST_DB_PASSWORD"),
		SSLMode:        "disable",
		MaxConnections: 2,
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := Initialize(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to initialize test database: %v", err)
	}
	return db
}

// TeardownTestDB removes test rows and closes the pool
func TeardownTestDB(t *testing.T, db *DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.pool.Exec(ctx, `TRUNCATE simulation_summary_rows, simulation_runs`); err != nil {
		t.Logf("warning: failed to truncate test tables: %v", err)
	}
	db.Close()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
