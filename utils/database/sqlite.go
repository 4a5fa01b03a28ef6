package database

import (
	"context"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"
	_ "github.com/mattn/go-sqlite3"
)

// Open connects to the sqlite file at dbPath, creating parent directories as needed.
// Writes are serialized through a single connection.
func Open(ctx context.Context, dbPath string) (*sqlx.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, goerr.Wrap(err, "failed to create database directory", goerr.V("path", dbPath))
		}
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect to database", goerr.V("path", dbPath))
	}
	db.SetMaxOpenConns(1)

	return db, nil
}

// Size returns the on-disk size of the database file in bytes.
func Size(dbPath string) (int64, error) {
	info, err := os.Stat(dbPath)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to stat database file", goerr.V("path", dbPath))
	}
	return info.Size(), nil
}
