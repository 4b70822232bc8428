/*
store.go - Persistence interface for cart sessions

PURPOSE:
  Defines the boundary between the in-memory engine and whatever holds
  cart state between requests. The engine does not know or care about
  the backing medium; it writes full snapshots keyed by session key.

WRITE-THROUGH CONTRACT:
  The cart's in-memory maps are authoritative during a call. After every
  successful mutation the cart saves the complete item set (or condition
  set) for its session key. Loads happen on construction and when a cart
  is re-targeted to another session key.

IMPLEMENTATIONS:
  - cart/store/memory.go: In-memory, for tests and single-process use
  - store/sqlite/sqlite.go: SQLite-backed sessions

SEE ALSO:
  - cart.go: Load/save call sites
*/
package cart

// Store persists cart state per session key. Items and conditions are
// stored as opaque snapshots: the cart always writes the full set in
// iteration order, and loads expect that order back.
type Store interface {
	// LoadItems returns the item snapshot for key, empty when unknown.
	LoadItems(key string) ([]Item, error)

	// SaveItems replaces the item snapshot for key.
	SaveItems(key string, items []Item) error

	// LoadConditions returns the cart-scoped condition snapshot for key.
	LoadConditions(key string) ([]Condition, error)

	// SaveConditions replaces the cart-scoped condition snapshot for key.
	SaveConditions(key string, conds []Condition) error
}
