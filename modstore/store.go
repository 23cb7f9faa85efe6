// Package modstore persists script modules in a SQLite database, so a
// host can serve module sources without a script tree on disk and keep
// them across runs.
package modstore

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/heretique/wrenpp/dist"
	"github.com/heretique/wrenpp/wren"
)

// ErrNotFound indicates the requested module is not in the store.
var ErrNotFound = errors.New("module not found")

// Store is a SQLite-backed module source store.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if needed) a store at the given database path.
// Use ":memory:" for an ephemeral store.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("modstore: opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("modstore: setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS modules (
		name TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("modstore: creating table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores or replaces a module's source.
func (s *Store) Put(name, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`INSERT INTO modules (name, source, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET source = excluded.source, updated_at = excluded.updated_at`,
		name, source, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("modstore: storing %q: %w", name, err)
	}
	return nil
}

// Get fetches a module's source.
func (s *Store) Get(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var source string
	err := s.db.QueryRow(`SELECT source FROM modules WHERE name = ?`, name).Scan(&source)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("modstore: reading %q: %w", name, err)
	}
	return source, nil
}

// Delete removes a module. Deleting an absent module is not an error.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(`DELETE FROM modules WHERE name = ?`, name); err != nil {
		return fmt.Errorf("modstore: deleting %q: %w", name, err)
	}
	return nil
}

// List returns the stored module names in order.
func (s *Store) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(`SELECT name FROM modules ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("modstore: listing modules: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ImportBundle stores every module of a bundle, verifying integrity as
// it goes.
func (s *Store) ImportBundle(b *dist.Bundle) error {
	for _, name := range b.ModuleNames() {
		source, err := b.Source(name)
		if err != nil {
			return fmt.Errorf("modstore: importing bundle: %w", err)
		}
		if err := s.Put(name, source); err != nil {
			return err
		}
	}
	return nil
}

// Loader adapts the store to the VM's module-source hook. A miss maps
// to the VM's not-found sentinel so imports fault cleanly.
func (s *Store) Loader() wren.LoadModuleFn {
	return func(name string) (string, error) {
		source, err := s.Get(name)
		if errors.Is(err, ErrNotFound) {
			return "", wren.ErrModuleNotFound
		}
		return source, err
	}
}
