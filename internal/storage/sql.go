// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var embedMigrations embed.FS

// SQL dialects supported by the SQL medium.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

// snapshotRowID is the single row the snapshot lives in.
const snapshotRowID = 1

// SQL stores the snapshot as a single row in a relational database: an
// embedded SQLite page-store file or a PostgreSQL server.
type SQL struct {
	db      *sql.DB
	dialect string
	name    string
}

// ConnectPostgres opens a PostgreSQL connection pool using the provided DSN,
// verifies it with a ping and applies pending migrations.
func ConnectPostgres(ctx context.Context, dsn string) (*SQL, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("database open: %w", err)
	}
	db.SetMaxOpenConns(5)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}

	if err := Migrate(db, DialectPostgres); err != nil {
		db.Close()
		return nil, err
	}

	slog.Info("database connected", "dialect", DialectPostgres)
	return &SQL{db: db, dialect: DialectPostgres, name: "postgres"}, nil
}

// OpenSQLite opens (creating if needed) the SQLite file at path and applies
// pending migrations.
func OpenSQLite(ctx context.Context, path string) (*SQL, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}

	if err := Migrate(db, DialectSQLite); err != nil {
		db.Close()
		return nil, err
	}

	slog.Info("database connected", "dialect", DialectSQLite, "path", path)
	return &SQL{db: db, dialect: DialectSQLite, name: "sqlite:" + path}, nil
}

// Migrate runs all pending goose migrations from the embedded SQL files.
func Migrate(db *sql.DB, dialect string) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	slog.Debug("database migrations applied", "dialect", dialect)
	return nil
}

func (m *SQL) Name() string { return m.name }

// DB exposes the underlying pool.
func (m *SQL) DB() *sql.DB { return m.db }

// Load reads the snapshot row.
func (m *SQL) Load(ctx context.Context) ([]byte, error) {
	ctx, cancel := withTimeout(ctx, DefaultTimeout)
	defer cancel()

	var body string
	err := m.db.QueryRowContext(ctx,
		m.rebind(`SELECT body FROM store_snapshots WHERE id = ?`), snapshotRowID,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot row: %w", err)
	}
	return []byte(body), nil
}

// Save upserts the snapshot row.
func (m *SQL) Save(ctx context.Context, data []byte) error {
	ctx, cancel := withTimeout(ctx, DefaultTimeout)
	defer cancel()

	_, err := m.db.ExecContext(ctx, m.rebind(`
		INSERT INTO store_snapshots (id, body, size_bytes, saved_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id)
		DO UPDATE SET body = excluded.body, size_bytes = excluded.size_bytes, saved_at = excluded.saved_at`),
		snapshotRowID, string(data), len(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save snapshot row: %w", err)
	}
	return nil
}

func (m *SQL) Close() error { return m.db.Close() }

// rebind rewrites ? placeholders into $N for PostgreSQL.
func (m *SQL) rebind(query string) string {
	if m.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
