package cart_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cart-engine/cart"
)

// =============================================================================
// ITEM-LEVEL AGGREGATION
// =============================================================================

func TestItem_PriceSum(t *testing.T) {
	c := newTestCart(t)
	_, err := c.Add(testItem("sku-1")) // 100.99 x 2
	require.NoError(t, err)

	got, _ := c.Get("sku-1")
	assert.Equal(t, "201.98", got.PriceSum().String())
}

func TestItem_PriceSumWithConditions(t *testing.T) {
	// GIVEN: Item priced 100.99, quantity 2, conditions [-5%, -25]
	// WHEN: The condition-inclusive sum is computed
	// THEN: The chain folds the UNIT price (→ 70.9405), then multiplies

	c := newTestCart(t)
	_, err := c.Add(cart.ItemSpec{
		ID: "sku-1", Name: "Sample", Price: dec("100.99"), Quantity: dec("2"),
		Conditions: []*cart.Condition{
			mustCondition(t, cart.Condition{Name: "promo", Type: "promo", Target: cart.TargetItem, Value: "-5%"}),
			mustCondition(t, cart.Condition{Name: "coupon", Type: "promo", Target: cart.TargetItem, Value: "-25"}),
		},
	})
	require.NoError(t, err)

	got, _ := c.Get("sku-1")
	assert.Equal(t, "70.9405", got.PriceWithConditions().String())
	assert.Equal(t, "141.881", got.PriceSumWithConditions().String())
	assert.Equal(t, "201.98", got.PriceSum().String(), "conditionless sum is unaffected")
}

// =============================================================================
// CART-LEVEL AGGREGATION
// =============================================================================

func TestSubtotal_AppliesSubtotalConditions(t *testing.T) {
	// GIVEN: Items summing to 500 and a -10% subtotal condition
	// WHEN: Subtotal is computed
	// THEN: 450

	c := newTestCart(t)
	_, err := c.Add(cart.ItemSpec{ID: "a", Name: "A", Price: dec("200"), Quantity: dec("1")})
	require.NoError(t, err)
	_, err = c.Add(cart.ItemSpec{ID: "b", Name: "B", Price: dec("300"), Quantity: dec("1")})
	require.NoError(t, err)

	assert.Equal(t, "500", c.SubtotalWithoutConditions().String())
	assert.Equal(t, "500", c.Subtotal().String())

	require.NoError(t, c.AddCondition(mustCondition(t, cart.Condition{
		Name: "bulk", Type: "promo", Target: cart.TargetSubtotal, Value: "-10%",
	})))

	assert.Equal(t, "450", c.Subtotal().String())
	assert.Equal(t, "500", c.SubtotalWithoutConditions().String())
}

func TestTotal_ChainsFromSubtotal(t *testing.T) {
	// Total conditions apply to the already-adjusted subtotal, never to
	// the raw item sum.

	c := newTestCart(t)
	_, err := c.Add(cart.ItemSpec{ID: "a", Name: "A", Price: dec("500"), Quantity: dec("1")})
	require.NoError(t, err)

	require.NoError(t, c.AddConditions(
		mustCondition(t, cart.Condition{Name: "bulk", Type: "promo", Target: cart.TargetSubtotal, Value: "-10%"}),
		mustCondition(t, cart.Condition{Name: "VAT", Type: "tax", Target: cart.TargetTotal, Value: "+10%"}),
	))

	assert.Equal(t, "450", c.Subtotal().String())
	assert.Equal(t, "495", c.Total().String(), "10% tax on 450, not on 500")
}

func TestTotal_EqualsSubtotalWithoutTotalConditions(t *testing.T) {
	c := newTestCart(t)
	_, err := c.Add(cart.ItemSpec{ID: "a", Name: "A", Price: dec("123.45"), Quantity: dec("2")})
	require.NoError(t, err)
	require.NoError(t, c.AddCondition(mustCondition(t, cart.Condition{
		Name: "promo", Type: "promo", Target: cart.TargetSubtotal, Value: "-5%",
	})))

	assert.True(t, c.Total().Equal(c.Subtotal()))
}

func TestTotals_ItemConditionsFeedSubtotal(t *testing.T) {
	// Item conditions adjust per-line sums before cart conditions run.

	c := newTestCart(t)
	_, err := c.Add(cart.ItemSpec{
		ID: "a", Name: "A", Price: dec("100"), Quantity: dec("2"),
		Conditions: []*cart.Condition{
			mustCondition(t, cart.Condition{Name: "half", Type: "promo", Target: cart.TargetItem, Value: "-50%"}),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "200", c.SubtotalWithoutConditions().String())
	assert.Equal(t, "100", c.Subtotal().String())
}

func TestTotalQuantity(t *testing.T) {
	c := newTestCart(t)
	assert.Equal(t, "0", c.TotalQuantity().String())

	_, err := c.Add(cart.ItemSpec{ID: "a", Name: "A", Price: dec("1"), Quantity: dec("2")})
	require.NoError(t, err)
	_, err = c.Add(cart.ItemSpec{ID: "b", Name: "B", Price: dec("1"), Quantity: dec("3")})
	require.NoError(t, err)

	assert.Equal(t, "5", c.TotalQuantity().String())
}

func TestTotals_EmptyCartIsZero(t *testing.T) {
	c := newTestCart(t)
	assert.Equal(t, "0", c.Subtotal().String())
	assert.Equal(t, "0", c.Total().String())
}
