package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for catalog snapshots.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the exports and metadata tables. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS exports (
  id              INTEGER PRIMARY KEY,
  package         TEXT NOT NULL,
  function        TEXT NOT NULL,
  UNIQUE (package, function)
);

CREATE TABLE IF NOT EXISTS metadata (
  key             TEXT PRIMARY KEY,
  value           TEXT
);

CREATE INDEX IF NOT EXISTS idx_exports_function ON exports(function);
CREATE INDEX IF NOT EXISTS idx_exports_package ON exports(package);
`

// Exports returns every (package, function) row ordered by package, then function.
func (s *Store) Exports() ([]Export, error) {
	rows, err := s.db.Query("SELECT package, function FROM exports ORDER BY package, function")
	if err != nil {
		return nil, fmt.Errorf("query exports: %w", err)
	}
	defer rows.Close()
	var exports []Export
	for rows.Next() {
		var e Export
		if err := rows.Scan(&e.Package, &e.Function); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		exports = append(exports, e)
	}
	return exports, rows.Err()
}

// OwnersOf returns the packages exporting any of the given functions,
// ordered by function, then package.
func (s *Store) OwnersOf(functions ...string) ([]Export, error) {
	if len(functions) == 0 {
		return nil, nil
	}
	args := make([]any, len(functions))
	for i, fn := range functions {
		args[i] = fn
	}
	rows, err := s.db.Query(
		"SELECT package, function FROM exports WHERE function IN ("+placeholderList(len(functions))+") ORDER BY function, package",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query owners: %w", err)
	}
	defer rows.Close()
	var owners []Export
	for rows.Next() {
		var e Export
		if err := rows.Scan(&e.Package, &e.Function); err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		owners = append(owners, e)
	}
	return owners, rows.Err()
}

// CountExports returns the number of stored rows.
func (s *Store) CountExports() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM exports").Scan(&n); err != nil {
		return 0, fmt.Errorf("count exports: %w", err)
	}
	return n, nil
}

// GetMetadata returns the value stored under key, or "" when absent.
func (s *Store) GetMetadata(key string) (string, error) {
	var value sql.NullString
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get metadata %s: %w", key, err)
	}
	return value.String, nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func upsertMetadata(db execer, key, value string) error {
	_, err := db.Exec(
		`INSERT INTO metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set metadata %s: %w", key, err)
	}
	return nil
}
