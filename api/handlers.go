/*
handlers.go - HTTP API handlers for the cart engine

PURPOSE:
  Exposes cart instances via REST. Handles HTTP request/response, JSON
  serialization, and delegates all semantics to the cart package.

ENDPOINTS:
  Cart:
    GET    /api/carts/{key}                         Full cart view
    GET    /api/carts/{key}/totals                  Aggregates only

  Items:
    GET    /api/carts/{key}/items                   List items
    POST   /api/carts/{key}/items                   Add item(s); accepts
                                                    one object or an array
    GET    /api/carts/{key}/items/{id}              Get item
    PUT    /api/carts/{key}/items/{id}              Patch item
    DELETE /api/carts/{key}/items/{id}              Remove item
    DELETE /api/carts/{key}/items                   Clear all items

  Conditions:
    GET    /api/carts/{key}/conditions              List cart conditions
    POST   /api/carts/{key}/conditions              Attach condition
    DELETE /api/carts/{key}/conditions/{name}       Detach by name
    DELETE /api/carts/{key}/conditions              Clear all
    POST   /api/carts/{key}/items/{id}/conditions   Attach to item
    DELETE /api/carts/{key}/items/{id}/conditions/{name}
    DELETE /api/carts/{key}/items/{id}/conditions   Clear item conditions

ARCHITECTURE:
  Handler holds the shared Store plus one lazily-built session per key.
  Every key is an independent cart instance; keys never share state.

CONCURRENCY:
  Cart instances are single-writer and require external locking when
  shared. Each session pairs its cart with a mutex, and every handler
  funnels through withCart, which holds that mutex across the whole
  read-modify-write. Requests for different keys run in parallel;
  requests for the same key serialize.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Unknown item or condition
  - 409: Mutation vetoed by a hook
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/warp/cart-engine/cart"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	store    cart.Store
	hooks    cart.Hooks
	resolver cart.Resolver
	format   cart.FormatConfig

	mu       sync.Mutex
	sessions map[string]*session
}

// session pairs a cart with the lock serializing requests for its key.
type session struct {
	mu   sync.Mutex
	cart *cart.Cart
}

// NewHandler creates a handler backed by the given store.
func NewHandler(store cart.Store, format cart.FormatConfig) *Handler {
	return &Handler{
		store:    store,
		format:   format,
		sessions: make(map[string]*session),
	}
}

// WithHooks injects lifecycle hooks into carts built by this handler.
func (h *Handler) WithHooks(hooks cart.Hooks) *Handler {
	h.hooks = hooks
	return h
}

// WithResolver injects an association resolver into carts built by this
// handler.
func (h *Handler) WithResolver(resolver cart.Resolver) *Handler {
	h.resolver = resolver
	return h
}

// sessionFor returns the session bound to the key, building its cart on
// first use.
func (h *Handler) sessionFor(key string) (*session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sess, ok := h.sessions[key]; ok {
		return sess, nil
	}
	c, err := cart.New(cart.Options{
		InstanceName: "api",
		SessionKey:   key,
		Store:        h.store,
		Hooks:        h.hooks,
		Resolver:     h.resolver,
		Format:       h.format,
	})
	if err != nil {
		return nil, err
	}
	sess := &session{cart: c}
	h.sessions[key] = sess
	return sess, nil
}

// withCart runs fn with the key's cart under the session lock. Carts are
// not safe for concurrent use, so every handler goes through here and the
// lock is held for the full read-modify-write.
func (h *Handler) withCart(w http.ResponseWriter, key string, fn func(c *cart.Cart)) {
	sess, err := h.sessionFor(key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to open cart", err)
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	fn(sess.cart)
}

// =============================================================================
// CART HANDLERS
// =============================================================================

// GetCart returns the full cart view.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.withCart(w, chi.URLParam(r, "key"), func(c *cart.Cart) {
		writeJSON(w, http.StatusOK, toCartDTO(c))
	})
}

// GetTotals returns the cart's aggregates.
func (h *Handler) GetTotals(w http.ResponseWriter, r *http.Request) {
	h.withCart(w, chi.URLParam(r, "key"), func(c *cart.Cart) {
		writeJSON(w, http.StatusOK, toTotalsDTO(c))
	})
}

// =============================================================================
// ITEM HANDLERS
// =============================================================================

// ListItems returns all items in insertion order.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	h.withCart(w, chi.URLParam(r, "key"), func(c *cart.Cart) {
		items := c.Items()
		dtos := make([]ItemDTO, len(items))
		for i, item := range items {
			dtos[i] = toItemDTO(item)
		}
		writeJSON(w, http.StatusOK, dtos)
	})
}

// AddItems adds one item (JSON object) or several (JSON array).
func (h *Handler) AddItems(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	h.withCart(w, chi.URLParam(r, "key"), func(c *cart.Cart) {
		if bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
			var reqs []AddItemRequest
			if err := json.Unmarshal(raw, &reqs); err != nil {
				writeError(w, http.StatusBadRequest, "Invalid item list", err)
				return
			}
			specs := make([]cart.ItemSpec, 0, len(reqs))
			for _, req := range reqs {
				spec, err := fromAddItemRequest(req)
				if err != nil {
					writeCartError(w, err)
					return
				}
				specs = append(specs, spec)
			}
			if err := c.AddBatch(specs); err != nil {
				writeCartError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, toCartDTO(c))
			return
		}

		var req AddItemRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid item", err)
			return
		}
		spec, err := fromAddItemRequest(req)
		if err != nil {
			writeCartError(w, err)
			return
		}
		item, err := c.Add(spec)
		if err != nil {
			writeCartError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toItemDTO(item))
	})
}

// GetItem returns a single item.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	h.withCart(w, chi.URLParam(r, "key"), func(c *cart.Cart) {
		item, ok := c.Get(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "Item not found", nil)
			return
		}
		writeJSON(w, http.StatusOK, toItemDTO(item))
	})
}

// UpdateItem patches an item.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	h.withCart(w, chi.URLParam(r, "key"), func(c *cart.Cart) {
		patch := cart.ItemPatch{Name: req.Name, Attributes: cart.Attributes(req.Attributes)}
		if req.Price != nil {
			price := decimal.NewFromFloat(*req.Price)
			patch.Price = &price
		}
		if req.Quantity != nil {
			qc := fromQuantityRequest(*req.Quantity)
			patch.Quantity = &qc
		}
		if req.Conditions != nil {
			conds := make([]*cart.Condition, 0, len(*req.Conditions))
			for _, cr := range *req.Conditions {
				cond, err := fromConditionRequest(cr)
				if err != nil {
					writeCartError(w, err)
					return
				}
				conds = append(conds, cond)
			}
			patch.Conditions = &conds
		}

		id := chi.URLParam(r, "id")
		ok, err := c.Update(id, patch)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to update item", err)
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "Item not found or update rejected", nil)
			return
		}

		item, _ := c.Get(id)
		writeJSON(w, http.StatusOK, toItemDTO(item))
	})
}

// RemoveItem deletes an item.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.withCart(w, chi.URLParam(r, "key"), func(c *cart.Cart) {
		ok, err := c.Remove(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to remove item", err)
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "Item not found or removal rejected", nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// ClearItems empties the cart.
func (h *Handler) ClearItems(w http.ResponseWriter, r *http.Request) {
	h.withCart(w, chi.URLParam(r, "key"), func(c *cart.Cart) {
		ok, err := c.Clear()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to clear cart", err)
			return
		}
		if !ok {
			writeError(w, http.StatusConflict, "Clear rejected", nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// =============================================================================
// CART CONDITION HANDLERS
// =============================================================================

// ListConditions returns the cart-scoped conditions in order.
func (h *Handler) ListConditions(w http.ResponseWriter, r *http.Request) {
	h.withCart(w, chi.URLParam(r, "key"), func(c *cart.Cart) {
		writeJSON(w, http.StatusOK, toConditionDTOs(c.Conditions()))
	})
}

// AddCondition attaches a condition to the cart.
func (h *Handler) AddCondition(w http.ResponseWriter, r *http.Request) {
	var req ConditionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	h.withCart(w, chi.URLParam(r, "key"), func(c *cart.Cart) {
		cond, err := fromConditionRequest(req)
		if err != nil {
			writeCartError(w, err)
			return
		}
		if err := c.AddCondition(cond); err != nil {
			writeCartError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toConditionDTOs(c.Conditions()))
	})
}

// RemoveCondition detaches a cart-scoped condition by name.
func (h *Handler) RemoveCondition(w http.ResponseWriter, r *http.Request) {
	h.withCart(w, chi.URLParam(r, "key"), func(c *cart.Cart) {
		ok, err := c.RemoveCondition(chi.URLParam(r, "name"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to remove condition", err)
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "Condition not found", nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// ClearConditions detaches all cart-scoped conditions.
func (h *Handler) ClearConditions(w http.ResponseWriter, r *http.Request) {
	h.withCart(w, chi.URLParam(r, "key"), func(c *cart.Cart) {
		if err := c.ClearConditions(); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to clear conditions", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// =============================================================================
// ITEM CONDITION HANDLERS
// =============================================================================

// AddItemCondition attaches a condition to one item.
func (h *Handler) AddItemCondition(w http.ResponseWriter, r *http.Request) {
	var req ConditionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	h.withCart(w, chi.URLParam(r, "key"), func(c *cart.Cart) {
		cond, err := fromConditionRequest(req)
		if err != nil {
			writeCartError(w, err)
			return
		}

		id := chi.URLParam(r, "id")
		if err := c.AddItemCondition(id, cond); err != nil {
			writeCartError(w, err)
			return
		}

		item, _ := c.Get(id)
		writeJSON(w, http.StatusCreated, toItemDTO(item))
	})
}

// RemoveItemCondition detaches a named condition from one item.
func (h *Handler) RemoveItemCondition(w http.ResponseWriter, r *http.Request) {
	h.withCart(w, chi.URLParam(r, "key"), func(c *cart.Cart) {
		ok, err := c.RemoveItemCondition(chi.URLParam(r, "id"), chi.URLParam(r, "name"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to remove item condition", err)
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "Item or condition not found", nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// ClearItemConditions detaches all conditions from one item.
func (h *Handler) ClearItemConditions(w http.ResponseWriter, r *http.Request) {
	h.withCart(w, chi.URLParam(r, "key"), func(c *cart.Cart) {
		ok, err := c.ClearItemConditions(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to clear item conditions", err)
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "Item not found", nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func fromQuantityRequest(req QuantityRequest) cart.QuantityChange {
	if req.Relative != nil && !*req.Relative {
		if req.Value != "" {
			if d, err := decimal.NewFromString(req.Value); err == nil {
				return cart.AbsoluteQuantity(d)
			}
		}
		return cart.AbsoluteQuantity(decimal.NewFromFloat(req.Absolute))
	}
	if req.Value != "" {
		return cart.RelativeQuantity(req.Value)
	}
	return cart.RelativeQuantity(decimal.NewFromFloat(req.Absolute).String())
}

func toTotalsDTO(c *cart.Cart) TotalsDTO {
	return TotalsDTO{
		SubtotalWithoutConditions: c.SubtotalWithoutConditions().String(),
		Subtotal:                  c.Subtotal().String(),
		Total:                     c.Total().String(),
		TotalQuantity:             c.TotalQuantity().String(),
		SubtotalFormatted:         c.SubtotalFormatted(),
		TotalFormatted:            c.TotalFormatted(),
		Count:                     c.Count(),
		Empty:                     c.IsEmpty(),
	}
}

func toCartDTO(c *cart.Cart) CartDTO {
	items := c.Items()
	dtos := make([]ItemDTO, len(items))
	for i, item := range items {
		dtos[i] = toItemDTO(item)
	}
	return CartDTO{
		SessionKey: c.SessionKey(),
		Items:      dtos,
		Conditions: toConditionDTOs(c.Conditions()),
		Totals:     toTotalsDTO(c),
	}
}

func writeCartError(w http.ResponseWriter, err error) {
	switch {
	case cart.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid input", err)
	case cart.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Item not found", err)
	case errors.Is(err, cart.ErrVetoed):
		writeError(w, http.StatusConflict, "Mutation rejected", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]string{"error": message}
	if err != nil {
		body["detail"] = err.Error()
	}
	writeJSON(w, status, body)
}
