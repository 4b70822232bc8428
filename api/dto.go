/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY FIELDS:
  Requests take prices/quantities as JSON numbers; responses render all
  computed money values as strings produced by the decimal type, so
  clients never see binary-float artifacts.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/cart-engine/cart"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// AddItemRequest is the request to add one line item.
type AddItemRequest struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Price           float64            `json:"price"`
	Quantity        float64            `json:"quantity"`
	Attributes      map[string]any     `json:"attributes,omitempty"`
	Conditions      []ConditionRequest `json:"conditions,omitempty"`
	AssociatedModel string             `json:"associated_model,omitempty"`
}

// ConditionRequest describes a condition in requests.
type ConditionRequest struct {
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Target     string         `json:"target,omitempty"`
	Value      string         `json:"value"`
	Order      int            `json:"order,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// QuantityRequest carries a quantity update. Relative updates carry a
// signed expression ("-2", "+3"); absolute updates replace the value.
type QuantityRequest struct {
	Relative *bool   `json:"relative,omitempty"`
	Value    string  `json:"value,omitempty"`
	Absolute float64 `json:"absolute,omitempty"`
}

// UpdateItemRequest patches any subset of an item's fields.
type UpdateItemRequest struct {
	Name       *string             `json:"name,omitempty"`
	Price      *float64            `json:"price,omitempty"`
	Quantity   *QuantityRequest    `json:"quantity,omitempty"`
	Attributes map[string]any      `json:"attributes,omitempty"`
	Conditions *[]ConditionRequest `json:"conditions,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ItemDTO represents a line item in API responses.
type ItemDTO struct {
	ID                     string         `json:"id"`
	Name                   string         `json:"name"`
	Price                  string         `json:"price"`
	Quantity               string         `json:"quantity"`
	Attributes             map[string]any `json:"attributes,omitempty"`
	Conditions             []ConditionDTO `json:"conditions,omitempty"`
	AssociatedModel        string         `json:"associated_model,omitempty"`
	PriceSum               string         `json:"price_sum"`
	PriceWithConditions    string         `json:"price_with_conditions"`
	PriceSumWithConditions string         `json:"price_sum_with_conditions"`
}

// ConditionDTO represents a condition in API responses.
type ConditionDTO struct {
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Target     string         `json:"target,omitempty"`
	Value      string         `json:"value"`
	Order      int            `json:"order"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// TotalsDTO summarizes a cart's aggregates.
type TotalsDTO struct {
	SubtotalWithoutConditions string `json:"subtotal_without_conditions"`
	Subtotal                  string `json:"subtotal"`
	Total                     string `json:"total"`
	TotalQuantity             string `json:"total_quantity"`
	SubtotalFormatted         string `json:"subtotal_formatted"`
	TotalFormatted            string `json:"total_formatted"`
	Count                     int    `json:"count"`
	Empty                     bool   `json:"empty"`
}

// CartDTO is the full cart view: items, cart conditions, and totals.
type CartDTO struct {
	SessionKey string         `json:"session_key"`
	Items      []ItemDTO      `json:"items"`
	Conditions []ConditionDTO `json:"conditions"`
	Totals     TotalsDTO      `json:"totals"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toItemDTO(item *cart.Item) ItemDTO {
	return ItemDTO{
		ID:                     item.ID,
		Name:                   item.Name,
		Price:                  item.Price.String(),
		Quantity:               item.Quantity.String(),
		Attributes:             item.Attributes,
		Conditions:             toConditionDTOs(item.Conditions),
		AssociatedModel:        item.AssociatedModel,
		PriceSum:               item.PriceSum().String(),
		PriceWithConditions:    item.PriceWithConditions().String(),
		PriceSumWithConditions: item.PriceSumWithConditions().String(),
	}
}

func toConditionDTOs(conds []*cart.Condition) []ConditionDTO {
	dtos := make([]ConditionDTO, len(conds))
	for i, cond := range conds {
		dtos[i] = ConditionDTO{
			Name:       cond.Name,
			Type:       cond.Type,
			Target:     string(cond.Target),
			Value:      cond.Value,
			Order:      cond.Order,
			Attributes: cond.Attributes,
		}
	}
	return dtos
}

func fromConditionRequest(req ConditionRequest) (*cart.Condition, error) {
	return cart.NewCondition(cart.Condition{
		Name:       req.Name,
		Type:       req.Type,
		Target:     cart.Target(req.Target),
		Value:      req.Value,
		Order:      req.Order,
		Attributes: cart.Attributes(req.Attributes),
	})
}

func fromAddItemRequest(req AddItemRequest) (cart.ItemSpec, error) {
	conds := make([]*cart.Condition, 0, len(req.Conditions))
	for _, cr := range req.Conditions {
		cond, err := fromConditionRequest(cr)
		if err != nil {
			return cart.ItemSpec{}, err
		}
		conds = append(conds, cond)
	}
	return cart.ItemSpec{
		ID:              req.ID,
		Name:            req.Name,
		Price:           decimal.NewFromFloat(req.Price),
		Quantity:        decimal.NewFromFloat(req.Quantity),
		Attributes:      cart.Attributes(req.Attributes),
		Conditions:      conds,
		AssociatedModel: req.AssociatedModel,
	}, nil
}
