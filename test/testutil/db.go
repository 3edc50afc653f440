package testutil

import (
	"database/sql"
	"os"
	"testing"

	"github.com/xxxsen/semsearch/internal/config"
	"github.com/xxxsen/semsearch/internal/db"
)

const TestEmbeddingDim = 8

func OpenTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping postgres test")
	}
	conn, err := db.Open(config.DatabaseConfig{
		Host:     host,
		Port:     5432,
		User:     "semsearch",
		Password: "semsearch_pass",
		DBName:   "semsearch_test",
		SSLMode:  "disable",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(conn, TestEmbeddingDim); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	if _, err := conn.Exec(`TRUNCATE document_chunks RESTART IDENTITY`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return conn, func() {
		_ = conn.Close()
	}
}
