// Package registry implements the Callsign Registry (C10): a durable
// single-file sqlite store tracking every callsign seen, its sighting
// history, and a TTL'd cache of route lookups, plus the Route Lookup
// Client's (C11) only persistent dependency.
package registry

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/marcoculver/adsb-logger/internal/apperr"
)

//go:embed schema.sql
var schemaFS embed.FS

// Store wraps a single-writer sqlite connection. Sqlite does not
// multithread writes usefully, so the pool is capped at one connection
// -- callers serialize through this handle rather than opening their
// own.
type Store struct {
	db *sqlx.DB
}

// Open connects to (and creates, if missing) the sqlite database at
// path and applies the embedded schema.
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", path))
	if err != nil {
		return nil, apperr.New(apperr.StoreError, fmt.Errorf("open registry %s: %w", path, err))
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read embedded schema: %w", err)
	}
	if _, err := s.db.Exec(string(schema)); err != nil {
		return apperr.New(apperr.StoreError, fmt.Errorf("apply schema: %w", err))
	}
	return nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// storeErr wraps a sql error as a genuine store-corruption apperr, per
// the spec's "registry surfaces only genuine store corruption"
// disposition -- sql.ErrNoRows is not wrapped since callers use it to
// signal a normal not-found rather than corruption.
func storeErr(err error) error {
	if err == nil || err == sql.ErrNoRows {
		return err
	}
	return apperr.New(apperr.StoreError, err)
}
