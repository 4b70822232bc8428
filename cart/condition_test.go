package cart_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cart-engine/cart"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustCondition(t *testing.T, c cart.Condition) *cart.Condition {
	t.Helper()
	cond, err := cart.NewCondition(c)
	require.NoError(t, err)
	return cond
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

func TestNewCondition_RequiredFields(t *testing.T) {
	cases := []struct {
		name string
		cond cart.Condition
	}{
		{"missing name", cart.Condition{Type: "tax", Value: "+10%"}},
		{"missing type", cart.Condition{Name: "VAT", Value: "+10%"}},
		{"missing value", cart.Condition{Name: "VAT", Type: "tax"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := cart.NewCondition(tc.cond)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, cart.ErrInvalidCondition))
		})
	}
}

func TestNewCondition_OrderDefaultsToZero(t *testing.T) {
	cond := mustCondition(t, cart.Condition{Name: "promo", Type: "promo", Value: "-5%"})
	assert.Equal(t, 0, cond.Order, "unassigned order is the 0 sentinel")
}

// =============================================================================
// PERCENTAGE EXPRESSIONS
// =============================================================================

func TestApply_PercentSubtract(t *testing.T) {
	// GIVEN: A -5% condition
	// WHEN: Applied to 100.99
	// THEN: Delta is 5.0495, result 95.9405

	cond := mustCondition(t, cart.Condition{Name: "promo", Type: "promo", Value: "-5%"})

	result := cond.Apply(dec("100.99"))
	assert.Equal(t, "95.9405", result.String())
	assert.Equal(t, "5.0495", cond.CalculatedValue(dec("100.99")).String())
}

func TestApply_PercentAdd(t *testing.T) {
	cond := mustCondition(t, cart.Condition{Name: "VAT", Type: "tax", Value: "+12.5%"})

	result := cond.Apply(dec("200"))
	assert.Equal(t, "225", result.String())
}

func TestApply_BarePercentDefaultsToAdd(t *testing.T) {
	// A sign-less percentage is treated as additive.
	cond := mustCondition(t, cart.Condition{Name: "fee", Type: "fee", Value: "10%"})

	result := cond.Apply(dec("200"))
	assert.Equal(t, "220", result.String())
	assert.Equal(t, "20", cond.CalculatedValue(dec("200")).String())
}

func TestApply_SignDetectionIsSubstringBased(t *testing.T) {
	// "10%-" still reads as percentage+subtract: detection looks for the
	// characters anywhere in the expression, not anchored at the front.
	cond := mustCondition(t, cart.Condition{Name: "odd", Type: "promo", Value: "10%-"})

	result := cond.Apply(dec("200"))
	assert.Equal(t, "180", result.String())
}

// =============================================================================
// FIXED-AMOUNT EXPRESSIONS
// =============================================================================

func TestApply_FixedSubtract(t *testing.T) {
	cond := mustCondition(t, cart.Condition{Name: "coupon", Type: "promo", Value: "-25"})

	result := cond.Apply(dec("95.9405"))
	assert.Equal(t, "70.9405", result.String())
	assert.Equal(t, "25", cond.CalculatedValue(dec("95.9405")).String())
}

func TestApply_FixedAdd(t *testing.T) {
	cond := mustCondition(t, cart.Condition{Name: "shipping", Type: "fee", Value: "+15"})

	result := cond.Apply(dec("100"))
	assert.Equal(t, "115", result.String())
}

func TestApply_BareAmountDefaultsToAdd(t *testing.T) {
	cond := mustCondition(t, cart.Condition{Name: "handling", Type: "fee", Value: "25"})

	result := cond.Apply(dec("100"))
	assert.Equal(t, "125", result.String())
}

// =============================================================================
// CLAMPING
// =============================================================================

func TestApply_NegativeResultClampsToZero(t *testing.T) {
	// GIVEN: A discount bigger than the base
	// WHEN: Applied
	// THEN: The result is 0, but the raw delta is still retrievable

	cond := mustCondition(t, cart.Condition{Name: "mega", Type: "promo", Value: "-200"})

	result := cond.Apply(dec("100"))
	assert.Equal(t, "0", result.String())
	assert.Equal(t, "200", cond.CalculatedValue(dec("100")).String())
}

// =============================================================================
// CHAIN FOLD
// =============================================================================

func TestApplyChain_Compounds(t *testing.T) {
	// GIVEN: Conditions [-5%, -25] on base 100.99
	// WHEN: Folded through the chain
	// THEN: Each step feeds the next: 100.99 → 95.9405 → 70.9405
	//       (not -25 applied to the original 100.99)

	conds := []*cart.Condition{
		mustCondition(t, cart.Condition{Name: "promo", Type: "promo", Value: "-5%"}),
		mustCondition(t, cart.Condition{Name: "coupon", Type: "promo", Value: "-25"}),
	}

	result := cart.ApplyChain(dec("100.99"), conds)
	assert.Equal(t, "70.9405", result.String())
}

func TestApplyChain_EmptyReturnsBase(t *testing.T) {
	result := cart.ApplyChain(dec("42.42"), nil)
	assert.Equal(t, "42.42", result.String())
}
