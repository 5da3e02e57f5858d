package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Defining possible error
var ErrSchema = errors.New("reference database is inconsistent")

const schemaVersion = "1"

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS reactions (
		reaction_id     TEXT PRIMARY KEY,
		name            TEXT NOT NULL DEFAULT '',
		equation        TEXT NOT NULL,
		lower_bound     REAL NOT NULL DEFAULT -1000,
		upper_bound     REAL NOT NULL DEFAULT 1000,
		reversible      INTEGER NOT NULL DEFAULT 1,
		objective       REAL NOT NULL DEFAULT 0,
		is_transport    INTEGER NOT NULL DEFAULT 0,
		is_unbalanced   INTEGER NOT NULL DEFAULT 0,
		is_undetermined INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS reaction_ec (
		reaction_id TEXT NOT NULL,
		position    INTEGER NOT NULL,
		ec_code     TEXT NOT NULL,
		PRIMARY KEY (reaction_id, position)
	);
	CREATE TABLE IF NOT EXISTS reaction_subsystems (
		reaction_id TEXT NOT NULL,
		position    INTEGER NOT NULL,
		subsystem   TEXT NOT NULL,
		PRIMARY KEY (reaction_id, position)
	);
	CREATE TABLE IF NOT EXISTS genes (
		gene_id TEXT PRIMARY KEY
	);
	CREATE TABLE IF NOT EXISTS reaction_genes (
		reaction_id TEXT NOT NULL,
		gene_id     TEXT NOT NULL,
		PRIMARY KEY (reaction_id, gene_id)
	);
	CREATE TABLE IF NOT EXISTS metabolites (
		met_id  TEXT PRIMARY KEY,
		name    TEXT NOT NULL DEFAULT '',
		formula TEXT NOT NULL DEFAULT '',
		charge  INTEGER NOT NULL DEFAULT 0,
		inchi   TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS metabolite_xrefs (
		met_id   TEXT NOT NULL,
		position INTEGER NOT NULL,
		xref     TEXT NOT NULL,
		PRIMARY KEY (met_id, position)
	);
`

// ReferenceDB is the sqlite file holding the reference reactions, genes and
// metabolites.
type ReferenceDB struct {
	sql  *sql.DB
	Path string
}

func Open(path string) (*ReferenceDB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("reference database path is empty")
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", path, err)
	}

	return &ReferenceDB{sql: conn, Path: path}, nil
}

func (r *ReferenceDB) Close() error {
	return r.sql.Close()
}

// CreateSchema creates missing tables and stamps the schema version.
func (r *ReferenceDB) CreateSchema(ctx context.Context) error {
	if _, err := r.sql.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return r.SetMeta(ctx, "schema_version", schemaVersion)
}

func (r *ReferenceDB) SetMeta(ctx context.Context, key, value string) error {
	_, err := r.sql.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set meta %s: %w", key, err)
	}
	return nil
}

// Meta returns "" for a key that was never set.
func (r *ReferenceDB) Meta(ctx context.Context, key string) (string, error) {
	var value string
	err := r.sql.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read meta %s: %w", key, err)
	}
	return value, nil
}

// CheckSchema fails with ErrSchema unless the file carries the expected
// schema version.
func (r *ReferenceDB) CheckSchema(ctx context.Context) error {
	v, err := r.Meta(ctx, "schema_version")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if v != schemaVersion {
		return fmt.Errorf("%w: schema version %q, want %q (run init-db)", ErrSchema, v, schemaVersion)
	}
	return nil
}
