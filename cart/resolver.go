/*
resolver.go - External model resolution for associated items

PURPOSE:
  Line items may reference an external domain object (a product row, a
  catalog entry) by model type. The engine never performs that lookup
  itself; a Resolver is injected at construction and the cart maintains
  an explicit per-(model, id) cache of what it resolved.

CACHE LIFECYCLE:
  - Rebuilt after loads, single adds, and Associate calls
  - Suppressed during batch adds, rebuilt once when the batch completes
  - Reset on Clear

SEE ALSO:
  - cart.go: rebuildModelCache / ModelFromCache
*/
package cart

// Resolver loads external domain objects for associated line items.
type Resolver interface {
	// Has reports whether the model type exists.
	Has(model string) bool

	// Resolve returns the domain objects for the given ids, keyed by id.
	// Ids with no backing object are simply absent from the result.
	Resolve(model string, ids []string) (map[string]any, error)
}
