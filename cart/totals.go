/*
totals.go - Cart-level aggregation

PURPOSE:
  Pure read queries over the ledger. Per-item condition-inclusive sums
  are added up, then cart-scoped conditions run through the same fold:
  "subtotal"-targeted conditions adjust the item sum, "total"-targeted
  conditions chain from the resulting subtotal (never from the raw item
  sum).

SEE ALSO:
  - chain.go: The shared fold
  - format.go: Display formatting for the *Formatted accessors
*/
package cart

import "github.com/shopspring/decimal"

// SubtotalWithoutConditions sums price*quantity over all items, ignoring
// every condition.
func (c *Cart) SubtotalWithoutConditions() decimal.Decimal {
	sum := decimal.Zero
	for _, id := range c.order {
		sum = sum.Add(c.items[id].PriceSum())
	}
	return sum
}

// Subtotal sums each item's condition-inclusive price sum, then folds the
// cart-scoped conditions targeting "subtotal" over that sum.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, id := range c.order {
		sum = sum.Add(c.items[id].PriceSumWithConditions())
	}
	return ApplyChain(sum, filterByTarget(c.conditions, TargetSubtotal))
}

// Total folds the cart-scoped conditions targeting "total" over the
// subtotal. With no such conditions the total equals the subtotal.
func (c *Cart) Total() decimal.Decimal {
	return ApplyChain(c.Subtotal(), filterByTarget(c.conditions, TargetTotal))
}

// TotalQuantity sums the quantity across all items, zero when empty.
func (c *Cart) TotalQuantity() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range c.items {
		sum = sum.Add(item.Quantity)
	}
	return sum
}

// =============================================================================
// FORMATTED ACCESSORS
// =============================================================================

// FormatValue renders v per the cart's formatting configuration.
func (c *Cart) FormatValue(v decimal.Decimal) string {
	return FormatValue(v, c.format)
}

// SubtotalFormatted renders Subtotal per the cart's configuration.
func (c *Cart) SubtotalFormatted() string {
	return c.FormatValue(c.Subtotal())
}

// TotalFormatted renders Total per the cart's configuration.
func (c *Cart) TotalFormatted() string {
	return c.FormatValue(c.Total())
}
