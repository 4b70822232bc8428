/*
Package sqlite provides a SQLite-backed implementation of cart.Store.

PURPOSE:
  Persists cart sessions so carts survive process restarts. In
  production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  cart_items:      One row per (session_key, item_id), JSON payload,
                   insertion order kept in a position column
  cart_conditions: One row per (session_key, name), JSON payload,
                   sorted order kept in a position column

SNAPSHOT SEMANTICS:
  The engine writes full snapshots. Save* runs delete-then-insert inside
  one transaction so readers never observe a half-written session.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety across carts sharing one store.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers don't block
  the single writer.

USAGE:
  store, err := sqlite.New("./data/carts.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  c, err := cart.New(cart.Options{SessionKey: "user-42", Store: store})

SEE ALSO:
  - cart/store.go: Interface definition
  - cart/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/cart-engine/cart"
)

// Store implements cart.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Cart item snapshots, one row per line item
	CREATE TABLE IF NOT EXISTS cart_items (
		session_key TEXT NOT NULL,
		item_id     TEXT NOT NULL,
		position    INTEGER NOT NULL,
		payload     TEXT NOT NULL,
		PRIMARY KEY (session_key, item_id)
	);

	CREATE INDEX IF NOT EXISTS idx_cart_items_session
		ON cart_items(session_key, position);

	-- Cart-scoped condition snapshots, one row per condition
	CREATE TABLE IF NOT EXISTS cart_conditions (
		session_key TEXT NOT NULL,
		name        TEXT NOT NULL,
		position    INTEGER NOT NULL,
		payload     TEXT NOT NULL,
		PRIMARY KEY (session_key, name)
	);

	CREATE INDEX IF NOT EXISTS idx_cart_conditions_session
		ON cart_conditions(session_key, position);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ITEMS
// =============================================================================

func (s *Store) LoadItems(key string) ([]cart.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT payload FROM cart_items WHERE session_key = ? ORDER BY position`, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	defer rows.Close()

	var items []cart.Item
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var item cart.Item
		if err := json.Unmarshal([]byte(payload), &item); err != nil {
			return nil, fmt.Errorf("failed to decode item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) SaveItems(key string, items []cart.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM cart_items WHERE session_key = ?`, key); err != nil {
		return fmt.Errorf("failed to replace items: %w", err)
	}
	for i, item := range items {
		payload, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to encode item %s: %w", item.ID, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO cart_items (session_key, item_id, position, payload) VALUES (?, ?, ?, ?)`,
			key, item.ID, i, string(payload)); err != nil {
			return fmt.Errorf("failed to save item %s: %w", item.ID, err)
		}
	}

	return tx.Commit()
}

// =============================================================================
// CONDITIONS
// =============================================================================

func (s *Store) LoadConditions(key string) ([]cart.Condition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT payload FROM cart_conditions WHERE session_key = ? ORDER BY position`, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load conditions: %w", err)
	}
	defer rows.Close()

	var conds []cart.Condition
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var cond cart.Condition
		if err := json.Unmarshal([]byte(payload), &cond); err != nil {
			return nil, fmt.Errorf("failed to decode condition: %w", err)
		}
		conds = append(conds, cond)
	}
	return conds, rows.Err()
}

func (s *Store) SaveConditions(key string, conds []cart.Condition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM cart_conditions WHERE session_key = ?`, key); err != nil {
		return fmt.Errorf("failed to replace conditions: %w", err)
	}
	for i, cond := range conds {
		payload, err := json.Marshal(cond)
		if err != nil {
			return fmt.Errorf("failed to encode condition %s: %w", cond.Name, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO cart_conditions (session_key, name, position, payload) VALUES (?, ?, ?, ?)`,
			key, cond.Name, i, string(payload)); err != nil {
			return fmt.Errorf("failed to save condition %s: %w", cond.Name, err)
		}
	}

	return tx.Commit()
}
