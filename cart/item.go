/*
item.go - Line items and per-item price aggregation

PURPOSE:
  An Item identifies one purchasable thing in a cart: id, name, unit
  price, quantity, a free-form attribute bag, zero or more item-scoped
  conditions, and an optional reference to an external domain model.

PRICE AGGREGATION:
  PriceSum                price * quantity, conditions ignored
  PriceWithConditions     unit price folded through the item's conditions
  PriceSumWithConditions  condition-inclusive unit price * quantity

  Item conditions always live in a slice. A single condition is a
  one-element slice; no caller ever branches on shape.

ASSOCIATION:
  An item may carry the type name of an external domain model. Resolving
  and caching the model is the cart's job (see resolver.go); the item
  only exposes the raw (type, id) pair.

SEE ALSO:
  - condition.go: Single-step condition application
  - cart.go: Item lifecycle (add/update/remove)
*/
package cart

import "github.com/shopspring/decimal"

// =============================================================================
// ATTRIBUTES - Opaque per-item/per-condition metadata
// =============================================================================

// Attributes is a free-form metadata bag. The engine never interprets it.
type Attributes map[string]any

// Merge returns a new bag with other's entries layered over a's.
func (a Attributes) Merge(other Attributes) Attributes {
	merged := a.clone()
	if merged == nil {
		merged = Attributes{}
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

func (a Attributes) clone() Attributes {
	if a == nil {
		return nil
	}
	cp := make(Attributes, len(a))
	for k, v := range a {
		cp[k] = v
	}
	return cp
}

// =============================================================================
// ITEM - One priced line in a cart
// =============================================================================

// Item is a line item. ID is unique within a cart; Price is the unit
// price. Items are owned by their cart: accessors hand out copies, and
// all mutation goes through cart methods.
type Item struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	Quantity        decimal.Decimal `json:"quantity"`
	Attributes      Attributes      `json:"attributes,omitempty"`
	Conditions      []*Condition    `json:"conditions,omitempty"`
	AssociatedModel string          `json:"associated_model,omitempty"`
}

// HasConditions reports whether any item-scoped conditions are attached.
func (it *Item) HasConditions() bool {
	return len(it.Conditions) > 0
}

// Reference returns the raw external association as a (model type, id)
// pair. The model type is empty when the item has no association.
func (it *Item) Reference() (model, id string) {
	return it.AssociatedModel, it.ID
}

// PriceSum is price * quantity with no conditions applied.
func (it *Item) PriceSum() decimal.Decimal {
	return it.Price.Mul(it.Quantity)
}

// PriceWithConditions folds the unit price through the item's conditions.
// With no conditions attached it is the unit price unchanged.
func (it *Item) PriceWithConditions() decimal.Decimal {
	if !it.HasConditions() {
		return it.Price
	}
	return ApplyChain(it.Price, it.Conditions)
}

// PriceSumWithConditions is the condition-inclusive unit price times the
// quantity.
func (it *Item) PriceSumWithConditions() decimal.Decimal {
	return it.PriceWithConditions().Mul(it.Quantity)
}

// clone deep-copies the item so callers cannot corrupt cart state.
func (it *Item) clone() *Item {
	cp := *it
	cp.Attributes = it.Attributes.clone()
	if it.Conditions != nil {
		cp.Conditions = make([]*Condition, len(it.Conditions))
		for i, cond := range it.Conditions {
			cp.Conditions[i] = cond.clone()
		}
	}
	return &cp
}
