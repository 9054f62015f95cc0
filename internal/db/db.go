// Package db provides the SQLite task backend and its migrations.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

type pragma struct {
	stmt     string
	optional bool
}

var pragmas = []pragma{
	{stmt: "PRAGMA foreign_keys=ON"},
	{stmt: "PRAGMA busy_timeout=5000"},
	// WAL is unavailable on some filesystems; the default journal still works.
	{stmt: "PRAGMA journal_mode=WAL", optional: true},
}

// Open opens the task database at path, creating the parent directory and
// bringing the schema up to date. The returned handle uses one connection.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := setup(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	log.Debug().Str("path", path).Msg("task database ready")
	return conn, nil
}

func setup(ctx context.Context, conn *sql.DB) error {
	for _, p := range pragmas {
		if _, err := conn.ExecContext(ctx, p.stmt); err != nil {
			if p.optional {
				log.Warn().Err(err).Str("pragma", p.stmt).Msg("sqlite pragma skipped")
				continue
			}
			return fmt.Errorf("apply %q: %w", p.stmt, err)
		}
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, conn, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
