package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// pragma is a connection setting and the value SQLite reports once applied.
type pragma struct {
	name   string
	value  string
	report string
}

// WAL lets `plantrace runs` read while a batch is saving; the busy timeout
// covers the short write lock SaveRun holds.
var pragmas = []pragma{
	{name: "journal_mode", value: "WAL", report: "wal"},
	{name: "synchronous", value: "NORMAL", report: "1"},
	{name: "busy_timeout", value: "5000", report: "5000"},
	{name: "foreign_keys", value: "ON", report: "1"},
}

// migrations[i] upgrades a database from user_version i to i+1. Each runs in
// its own transaction together with the version bump.
var migrations = []func(tx *sql.Tx) error{
	addDigestIndex, // 1
}

// SchemaVersion is the user_version of a fully migrated database.
var SchemaVersion = len(migrations)

// Store persists batch runs: one row per run plus the metrics, landmark
// positions and failures of its traces.
type Store struct {
	db *sql.DB
}

// Open creates or opens the results database at path, applies the
// connection pragmas, creates missing tables and runs pending migrations.
// Opening an up-to-date database changes nothing.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// One connection: pragmas are per connection and SQLite has one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	for _, step := range []struct {
		what string
		fn   func() error
	}{
		{"apply pragmas", s.applyPragmas},
		{"apply schema", s.applySchema},
		{"migrate", s.migrate},
	} {
		if err := step.fn(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to %s: %w", step.what, err)
		}
	}
	return s, nil
}

// Close closes the database connection. Safe on a zero Store.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) applyPragmas() error {
	for _, p := range pragmas {
		stmt := fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("%q: %w", stmt, err)
		}
	}
	return s.checkPragmas()
}

// checkPragmas reads every pragma back. An in-memory database reports
// journal_mode "memory" and is accepted as is.
func (s *Store) checkPragmas() error {
	for _, p := range pragmas {
		got, err := s.pragma(p.name)
		if err != nil {
			return err
		}
		if p.name == "journal_mode" && got == "memory" {
			continue
		}
		if !strings.EqualFold(got, p.report) {
			return fmt.Errorf("%s = %q, expected %q", p.name, got, p.report)
		}
	}
	return nil
}

func (s *Store) pragma(name string) (string, error) {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return "", fmt.Errorf("query %s: %w", name, err)
	}
	return value, nil
}

// applySchema creates the tables. Every statement is IF NOT EXISTS.
func (s *Store) applySchema() error {
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// migrate runs the migrations above the stored user_version in order.
func (s *Store) migrate() error {
	version, err := s.userVersion()
	if err != nil {
		return err
	}
	if version > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, SchemaVersion)
	}

	for v := version; v < SchemaVersion; v++ {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", v+1, err)
		}
		if err := migrations[v](tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("set user_version %d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", v+1, err)
		}
	}
	return nil
}

func (s *Store) userVersion() (int, error) {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}

// addDigestIndex lets FindByDigest locate a trace parsed in an earlier run.
func addDigestIndex(tx *sql.Tx) error {
	_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_trace_metrics_digest ON trace_metrics(digest)`)
	return err
}
