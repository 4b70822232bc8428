/*
chain.go - Sequential application of an ordered condition set

PURPOSE:
  One fold rule shared by every aggregation site: item prices, cart
  subtotals, and cart totals all run their conditions through ApplyChain.

CRITICAL INVARIANT:
  Conditions COMPOUND. Each condition's output feeds the next condition's
  input; they are never applied independently to the original base.

  base=100.99, conditions=[-5%, -25]:
    step 1: 100.99 - 5.0495 = 95.9405
    step 2: 95.9405 - 25    = 70.9405   (not 100.99-25 = 75.99)

SEE ALSO:
  - condition.go: Single-step application
  - totals.go: Subtotal/total aggregation using this fold
*/
package cart

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ApplyChain folds base through conds left to right. Each step's output
// is the next step's input. An empty chain returns base unchanged.
func ApplyChain(base decimal.Decimal, conds []*Condition) decimal.Decimal {
	result := base
	for _, cond := range conds {
		result = cond.Apply(result)
	}
	return result
}

// sortByOrder sorts conditions ascending by Order. The sort is stable so
// conditions sharing an order keep their attachment sequence.
func sortByOrder(conds []*Condition) {
	sort.SliceStable(conds, func(i, j int) bool {
		return conds[i].Order < conds[j].Order
	})
}

// maxOrder returns the highest assigned order in the set, 0 when empty.
// Negative orders are legal, so the running max starts from the first
// element rather than a zero floor.
func maxOrder(conds []*Condition) int {
	if len(conds) == 0 {
		return 0
	}
	max := conds[0].Order
	for _, cond := range conds[1:] {
		if cond.Order > max {
			max = cond.Order
		}
	}
	return max
}

// filterByTarget returns the conditions adjusting the given target,
// preserving order.
func filterByTarget(conds []*Condition, target Target) []*Condition {
	var out []*Condition
	for _, cond := range conds {
		if cond.Target == target {
			out = append(out, cond)
		}
	}
	return out
}

// filterByType returns the conditions of the given type, preserving order.
func filterByType(conds []*Condition, condType string) []*Condition {
	var out []*Condition
	for _, cond := range conds {
		if cond.Type == condType {
			out = append(out, cond)
		}
	}
	return out
}
