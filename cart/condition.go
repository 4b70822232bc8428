/*
Package cart provides the core cart pricing engine.

PURPOSE:
  This package contains the data model and algorithms for a mutable
  collection of priced line items and the ordered chain of value
  adjustments (discounts, surcharges, taxes) applied to them. It computes
  per-item and aggregate totals from in-memory state supplied by the
  caller.

KEY CONCEPTS IN THIS FILE (condition.go):
  - Condition: A named value adjustment with a type, target scope,
    value expression, and application order
  - Value expressions: strings like "-5%", "+10", "25" interpreted as
    percentage or fixed adjustments
  - Apply: single-step application of a condition to a base value

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Determinism: Apply is a pure computation apart from recording the
     last raw delta for receipt breakdowns
  3. Permissive parsing: sign and percent detection use substring
     presence, not position, so "10%-" still reads as percent+subtract

USAGE:
  cond, err := cart.NewCondition(cart.Condition{
      Name:   "VAT 12.5%",
      Type:   "tax",
      Target: cart.TargetSubtotal,
      Value:  "+12.5%",
  })
  adjusted := cond.Apply(basePrice)

SEE ALSO:
  - chain.go: Folding an ordered set of conditions
  - item.go: Per-item price aggregation
  - cart.go: Cart-scoped condition management
*/
package cart

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TARGET - Which aggregate a condition adjusts
// =============================================================================

// Target names the aggregate a cart-scoped condition adjusts. Conditions
// attached directly to an item do not need a target.
type Target string

const (
	TargetNone     Target = ""
	TargetItem     Target = "item"
	TargetSubtotal Target = "subtotal"
	TargetTotal    Target = "total"
)

// =============================================================================
// CONDITION - Named value adjustment
// =============================================================================

// Condition is a named adjustment (discount, fee, tax) applied to an item
// price, the cart subtotal, or the cart total. Name, Type, and Value are
// required. Order 0 means "unassigned"; the cart assigns max+1 on attach.
//
// Treat a Condition as immutable after construction except for Order.
type Condition struct {
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Target     Target     `json:"target,omitempty"`
	Value      string     `json:"value"`
	Order      int        `json:"order,omitempty"`
	Attributes Attributes `json:"attributes,omitempty"`

	// last raw delta computed by apply, before clamping
	parsedRawValue decimal.Decimal
}

// NewCondition validates the required fields and returns the condition.
func NewCondition(c Condition) (*Condition, error) {
	if err := validateCondition(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func validateCondition(c *Condition) error {
	if c == nil {
		return &InvalidConditionError{Reason: "condition is required"}
	}
	switch {
	case c.Name == "":
		return &InvalidConditionError{Reason: "name is required"}
	case c.Type == "":
		return &InvalidConditionError{Reason: "type is required"}
	case c.Value == "":
		return &InvalidConditionError{Reason: "value is required"}
	}
	return nil
}

// clone returns a copy safe to hand to callers or other carts.
func (c *Condition) clone() *Condition {
	cp := *c
	cp.Attributes = c.Attributes.clone()
	return &cp
}

// =============================================================================
// VALUE APPLICATION
// =============================================================================

var oneHundred = decimal.NewFromInt(100)

// Apply adjusts base by this condition's value expression and returns the
// result. Results below zero clamp to zero; prices and totals never go
// negative. The raw delta (before clamping) is retained and can be read
// back with CalculatedValue.
func (c *Condition) Apply(base decimal.Decimal) decimal.Decimal {
	return c.apply(base, c.Value)
}

// CalculatedValue computes the raw delta this condition produces against
// base, before any clamping. Used for receipts and per-line breakdowns.
func (c *Condition) CalculatedValue(base decimal.Decimal) decimal.Decimal {
	c.apply(base, c.Value)
	return c.parsedRawValue
}

// apply interprets the value expression:
//
//	contains "%"  → percentage of base; "-" subtracts, "+" adds,
//	                no sign defaults to add
//	no "%"        → fixed amount; "-" subtracts, "+" adds,
//	                no sign defaults to add
func (c *Condition) apply(base decimal.Decimal, expr string) decimal.Decimal {
	var result decimal.Decimal

	if isPercentage(expr) {
		switch {
		case isSubtract(expr):
			pct := parseNumber(stripSigns(expr))
			c.parsedRawValue = base.Mul(pct).Div(oneHundred)
			result = base.Sub(c.parsedRawValue)
		case isAdd(expr):
			pct := parseNumber(stripSigns(expr))
			c.parsedRawValue = base.Mul(pct).Div(oneHundred)
			result = base.Add(c.parsedRawValue)
		default:
			// Sign-less percentages coerce the expression with the '%'
			// still attached, so only the leading digits are read. The
			// stripped value would be the consistent choice, but the
			// additive default below is what downstream totals rely on,
			// so the coercion stays as-is.
			pct := leadingNumber(expr)
			c.parsedRawValue = base.Mul(pct).Div(oneHundred)
			result = base.Add(c.parsedRawValue)
		}
	} else {
		switch {
		case isSubtract(expr):
			c.parsedRawValue = parseNumber(stripSigns(expr))
			result = base.Sub(c.parsedRawValue)
		case isAdd(expr):
			c.parsedRawValue = parseNumber(stripSigns(expr))
			result = base.Add(c.parsedRawValue)
		default:
			c.parsedRawValue = parseNumber(expr)
			result = base.Add(c.parsedRawValue)
		}
	}

	if result.IsNegative() {
		return decimal.Zero
	}
	return result
}

// =============================================================================
// EXPRESSION HELPERS
// =============================================================================

func isPercentage(expr string) bool { return strings.Contains(expr, "%") }
func isSubtract(expr string) bool   { return strings.Contains(expr, "-") }
func isAdd(expr string) bool        { return strings.Contains(expr, "+") }

var signStripper = strings.NewReplacer("%", "", "-", "", "+", "")

// stripSigns removes the arithmetic markers (%, -, +) from an expression.
func stripSigns(expr string) string {
	return signStripper.Replace(expr)
}

// parseNumber is forgiving: anything that does not parse counts as zero.
func parseNumber(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// leadingNumber reads the longest numeric prefix of s, the way a loose
// string-to-float coercion would ("12.5% off" → 12.5).
func leadingNumber(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	end := 0
	seenDot := false
	for i, r := range s {
		if r >= '0' && r <= '9' {
			end = i + 1
			continue
		}
		if r == '.' && !seenDot {
			seenDot = true
			end = i + 1
			continue
		}
		break
	}
	return parseNumber(strings.TrimSuffix(s[:end], "."))
}
