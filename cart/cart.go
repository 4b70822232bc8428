/*
cart.go - The cart ledger: keyed line items plus cart-scoped conditions

PURPOSE:
  Cart is the per-session store of line items (keyed by item id) and
  cart-scoped conditions (keyed by name, sorted by order). All mutation
  goes through Cart methods; accessors return defensive copies so
  callers cannot corrupt ordering invariants.

MUTATION CONTRACT:
  Every mutation either fully applies or is fully rejected:
  1. Validate input (validation errors abort before any write)
  2. Fire the "before" hook (a false return vetoes, state untouched)
  3. Apply to the in-memory maps
  4. Write through to the Store (a failed write rolls the maps back)
  5. Fire the "after" hook

VETO SIGNALING:
  Update/Remove/Clear return (ok bool, err error): ok=false with a nil
  error means the id was unknown or a hook vetoed. Add returns the
  ErrVetoed sentinel instead, keeping its error path single-valued.

QUANTITY UPDATES:
  Quantity patches are relative by default: "-N" subtracts (dropped
  silently if it would push quantity to zero or below), "+N" and bare
  numbers add. AbsoluteQuantity replaces the value outright.

SESSIONS:
  A Cart binds to one session key. Independent keys share no state even
  on the same Store. Session(key) re-targets a cart and reloads.

CONCURRENCY:
  Single-writer and synchronous. A cart instance must not be shared
  across goroutines without external locking.

SEE ALSO:
  - item.go: Line item model and per-item aggregation
  - condition.go: Condition model and value parsing
  - totals.go: Subtotal/total aggregation
  - hooks.go: Lifecycle events and veto semantics
*/
package cart

import "github.com/shopspring/decimal"

// =============================================================================
// CONSTRUCTION
// =============================================================================

// Options carries the collaborators and configuration for a cart. Store,
// Hooks, and Resolver are all optional; a nil Store keeps the cart purely
// in-memory and a nil Hooks never vetoes.
type Options struct {
	InstanceName string
	SessionKey   string
	Store        Store
	Hooks        Hooks
	Resolver     Resolver
	Format       FormatConfig
}

// Cart is the ledger of one cart instance.
type Cart struct {
	instanceName string
	sessionKey   string
	store        Store
	hooks        Hooks
	resolver     Resolver
	format       FormatConfig

	items      map[string]*Item
	order      []string // item ids in insertion order
	conditions []*Condition

	modelCache    map[string]map[string]any
	currentItemID string
	batch         bool // suppresses model cache rebuilds during AddBatch
}

// New builds a cart bound to opts.SessionKey, loading any persisted state
// for that key from the store.
func New(opts Options) (*Cart, error) {
	if opts.SessionKey == "" {
		return nil, ErrSessionKeyRequired
	}

	hooks := opts.Hooks
	if hooks == nil {
		hooks = NopHooks{}
	}
	instance := opts.InstanceName
	if instance == "" {
		instance = "cart"
	}

	c := &Cart{
		instanceName: instance,
		sessionKey:   opts.SessionKey,
		store:        opts.Store,
		hooks:        hooks,
		resolver:     opts.Resolver,
		format:       opts.Format,
	}
	if err := c.load(); err != nil {
		return nil, err
	}

	c.hooks.Fire(c.instanceName, EventCreated, nil)
	return c, nil
}

// Session re-targets the cart to another session key and reloads state.
func (c *Cart) Session(key string) error {
	if key == "" {
		return ErrSessionKeyRequired
	}
	c.sessionKey = key
	return c.load()
}

// InstanceName returns the cart's instance name.
func (c *Cart) InstanceName() string { return c.instanceName }

// SessionKey returns the session key the cart is bound to.
func (c *Cart) SessionKey() string { return c.sessionKey }

// load replaces in-memory state with the store's snapshot for the
// current session key.
func (c *Cart) load() error {
	c.items = make(map[string]*Item)
	c.order = nil
	c.conditions = nil
	c.resetModelCache()

	if c.store == nil {
		return nil
	}

	items, err := c.store.LoadItems(c.sessionKey)
	if err != nil {
		return err
	}
	for i := range items {
		item := items[i].clone()
		c.items[item.ID] = item
		c.order = append(c.order, item.ID)
	}

	conds, err := c.store.LoadConditions(c.sessionKey)
	if err != nil {
		return err
	}
	for i := range conds {
		c.conditions = append(c.conditions, conds[i].clone())
	}
	sortByOrder(c.conditions)

	c.rebuildModelCache()
	return nil
}

// =============================================================================
// ITEM SPECS AND PATCHES
// =============================================================================

// ItemSpec describes a line item to add. Conditions are always a slice;
// a single condition is a one-element slice.
type ItemSpec struct {
	ID              string
	Name            string
	Price           decimal.Decimal
	Quantity        decimal.Decimal
	Attributes      Attributes
	Conditions      []*Condition
	AssociatedModel string
}

// ItemPatch updates any subset of an item's fields. Nil fields are left
// untouched. Attributes merge into the existing bag; Conditions replace
// the whole set.
type ItemPatch struct {
	Name            *string
	Price           *decimal.Decimal
	Quantity        *QuantityChange
	Attributes      Attributes
	Conditions      *[]*Condition
	AssociatedModel *string
}

// QuantityChange expresses a quantity update. Relative changes carry a
// signed expression ("-2", "+3", "4"); sign detection uses substring
// presence. Absolute changes replace the quantity outright.
type QuantityChange struct {
	relative bool
	expr     string
	absolute decimal.Decimal
}

// RelativeQuantity builds a delta update against the current quantity.
func RelativeQuantity(expr string) QuantityChange {
	return QuantityChange{relative: true, expr: expr}
}

// AbsoluteQuantity builds a wholesale quantity replacement.
func AbsoluteQuantity(quantity decimal.Decimal) QuantityChange {
	return QuantityChange{absolute: quantity}
}

var minQuantity = decimal.New(1, -1) // 0.1

func validateItemSpec(spec ItemSpec) error {
	switch {
	case spec.ID == "":
		return &ValidationError{Field: "id", Reason: "is required"}
	case spec.Name == "":
		return &ValidationError{Field: "name", Reason: "is required"}
	case spec.Price.IsNegative():
		return &ValidationError{Field: "price", Reason: "must not be negative"}
	case spec.Quantity.LessThan(minQuantity):
		return &ValidationError{Field: "quantity", Reason: "must be at least 0.1"}
	}
	for _, cond := range spec.Conditions {
		if err := validateCondition(cond); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// ITEM MUTATIONS
// =============================================================================

// Add inserts a new line item, or, when the id is already in the cart,
// patches the existing item (the quantity is then treated as a relative
// addition). Returns the item as stored, or ErrVetoed if a hook rejected
// the mutation.
func (c *Cart) Add(spec ItemSpec) (*Item, error) {
	if err := validateItemSpec(spec); err != nil {
		return nil, err
	}

	if _, exists := c.items[spec.ID]; exists {
		qc := RelativeQuantity(spec.Quantity.String())
		patch := ItemPatch{
			Name:       &spec.Name,
			Price:      &spec.Price,
			Quantity:   &qc,
			Attributes: spec.Attributes,
			Conditions: &spec.Conditions,
		}
		if spec.AssociatedModel != "" {
			patch.AssociatedModel = &spec.AssociatedModel
		}
		ok, err := c.Update(spec.ID, patch)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrVetoed
		}
	} else {
		item := &Item{
			ID:              spec.ID,
			Name:            spec.Name,
			Price:           spec.Price,
			Quantity:        spec.Quantity,
			Attributes:      spec.Attributes.clone(),
			Conditions:      cloneConditions(spec.Conditions),
			AssociatedModel: spec.AssociatedModel,
		}
		if item.Attributes == nil {
			item.Attributes = Attributes{}
		}

		if !c.hooks.Fire(c.instanceName, EventAdding, item.clone()) {
			return nil, ErrVetoed
		}

		c.items[spec.ID] = item
		c.order = append(c.order, spec.ID)
		if err := c.saveItems(); err != nil {
			delete(c.items, spec.ID)
			c.order = c.order[:len(c.order)-1]
			return nil, err
		}

		c.hooks.Fire(c.instanceName, EventAdded, item.clone())
	}

	c.currentItemID = spec.ID
	return c.items[spec.ID].clone(), nil
}

// AddBatch adds each spec in turn. The model cache rebuild is deferred
// until the whole batch completes instead of running per item.
func (c *Cart) AddBatch(specs []ItemSpec) error {
	c.batch = true
	defer func() { c.batch = false }()

	for _, spec := range specs {
		if _, err := c.Add(spec); err != nil {
			return err
		}
	}

	c.batch = false
	c.resetModelCache()
	c.rebuildModelCache()
	return nil
}

// Update patches the item with the given id. ok is false when the id is
// unknown or the updating hook vetoes; the item is left untouched. A
// store write failure rolls the patch back and returns the error.
func (c *Cart) Update(id string, patch ItemPatch) (ok bool, err error) {
	item, exists := c.items[id]
	if !exists {
		return false, nil
	}
	if !c.hooks.Fire(c.instanceName, EventUpdating, patch) {
		return false, nil
	}

	updated := item.clone()
	applyPatch(updated, patch)

	c.items[id] = updated
	if err := c.saveItems(); err != nil {
		c.items[id] = item
		return false, err
	}

	c.hooks.Fire(c.instanceName, EventUpdated, updated.clone())
	return true, nil
}

func applyPatch(item *Item, patch ItemPatch) {
	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Price != nil {
		item.Price = *patch.Price
	}
	if patch.Quantity != nil {
		applyQuantity(item, *patch.Quantity)
	}
	if patch.Attributes != nil {
		if item.Attributes != nil {
			item.Attributes = item.Attributes.Merge(patch.Attributes)
		} else {
			item.Attributes = patch.Attributes.clone()
		}
	}
	if patch.Conditions != nil {
		item.Conditions = cloneConditions(*patch.Conditions)
	}
	if patch.AssociatedModel != nil {
		item.AssociatedModel = *patch.AssociatedModel
	}
}

func applyQuantity(item *Item, qc QuantityChange) {
	if !qc.relative {
		item.Quantity = qc.absolute
		return
	}
	switch {
	case isSubtract(qc.expr):
		delta := parseNumber(stripSigns(qc.expr))
		// Quantity never crosses zero: a reduction that would land at
		// zero or below is dropped, leaving the quantity unchanged.
		if item.Quantity.Sub(delta).IsPositive() {
			item.Quantity = item.Quantity.Sub(delta)
		}
	case isAdd(qc.expr):
		item.Quantity = item.Quantity.Add(parseNumber(stripSigns(qc.expr)))
	default:
		item.Quantity = item.Quantity.Add(parseNumber(qc.expr))
	}
}

// Remove deletes the item with the given id. ok is false when the id is
// unknown or the removing hook vetoes.
func (c *Cart) Remove(id string) (ok bool, err error) {
	item, exists := c.items[id]
	if !exists {
		return false, nil
	}
	if !c.hooks.Fire(c.instanceName, EventRemoving, id) {
		return false, nil
	}

	delete(c.items, id)
	pos := -1
	for i, oid := range c.order {
		if oid == id {
			pos = i
			break
		}
	}
	c.order = append(c.order[:pos], c.order[pos+1:]...)

	if err := c.saveItems(); err != nil {
		c.items[id] = item
		c.order = append(c.order, "")
		copy(c.order[pos+1:], c.order[pos:])
		c.order[pos] = id
		return false, err
	}

	c.hooks.Fire(c.instanceName, EventRemoved, id)
	return true, nil
}

// Clear empties the item map. Cart-scoped conditions are untouched; use
// ClearConditions for those.
func (c *Cart) Clear() (ok bool, err error) {
	if !c.hooks.Fire(c.instanceName, EventClearing, nil) {
		return false, nil
	}

	prevItems, prevOrder := c.items, c.order
	c.items = make(map[string]*Item)
	c.order = nil
	c.resetModelCache()

	if err := c.saveItems(); err != nil {
		c.items, c.order = prevItems, prevOrder
		return false, err
	}

	c.hooks.Fire(c.instanceName, EventCleared, nil)
	return true, nil
}

// =============================================================================
// ITEM ACCESSORS
// =============================================================================

// Has reports whether an item with the given id is in the cart.
func (c *Cart) Has(id string) bool {
	_, ok := c.items[id]
	return ok
}

// Get returns a copy of the item with the given id.
func (c *Cart) Get(id string) (*Item, bool) {
	item, ok := c.items[id]
	if !ok {
		return nil, false
	}
	return item.clone(), true
}

// Items returns copies of all items in insertion order.
func (c *Cart) Items() []*Item {
	out := make([]*Item, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id].clone())
	}
	return out
}

// Count returns the number of distinct line items.
func (c *Cart) Count() int { return len(c.items) }

// IsEmpty reports whether the cart holds no items.
func (c *Cart) IsEmpty() bool { return len(c.items) == 0 }

// =============================================================================
// CART-SCOPED CONDITIONS
// =============================================================================

// AddCondition attaches a condition to the cart, replacing any existing
// condition with the same name. A condition with order 0 is assigned
// max(existing orders)+1; the set is kept sorted ascending by order.
func (c *Cart) AddCondition(cond *Condition) error {
	if err := validateCondition(cond); err != nil {
		return err
	}

	attached := cond.clone()
	if attached.Order == 0 {
		attached.Order = maxOrder(c.conditions) + 1
	}

	replaced := false
	for i, existing := range c.conditions {
		if existing.Name == attached.Name {
			c.conditions[i] = attached
			replaced = true
			break
		}
	}
	if !replaced {
		c.conditions = append(c.conditions, attached)
	}
	sortByOrder(c.conditions)

	return c.saveConditions()
}

// AddConditions attaches each condition in turn.
func (c *Cart) AddConditions(conds ...*Condition) error {
	for _, cond := range conds {
		if err := c.AddCondition(cond); err != nil {
			return err
		}
	}
	return nil
}

// Conditions returns copies of the cart-scoped conditions in order.
func (c *Cart) Conditions() []*Condition {
	out := make([]*Condition, 0, len(c.conditions))
	for _, cond := range c.conditions {
		out = append(out, cond.clone())
	}
	return out
}

// Condition returns a copy of the named cart-scoped condition, nil when
// no condition carries that name.
func (c *Cart) Condition(name string) *Condition {
	for _, cond := range c.conditions {
		if cond.Name == name {
			return cond.clone()
		}
	}
	return nil
}

// ConditionsByType returns copies of the cart-scoped conditions of the
// given type, order preserved. Item-scoped conditions are not included.
func (c *Cart) ConditionsByType(condType string) []*Condition {
	var out []*Condition
	for _, cond := range filterByType(c.conditions, condType) {
		out = append(out, cond.clone())
	}
	return out
}

// RemoveCondition detaches the named cart-scoped condition. ok is false
// when no condition carries that name.
func (c *Cart) RemoveCondition(name string) (ok bool, err error) {
	for i, cond := range c.conditions {
		if cond.Name == name {
			c.conditions = append(c.conditions[:i], c.conditions[i+1:]...)
			return true, c.saveConditions()
		}
	}
	return false, nil
}

// RemoveConditionsByType detaches every cart-scoped condition of the
// given type.
func (c *Cart) RemoveConditionsByType(condType string) error {
	var kept []*Condition
	for _, cond := range c.conditions {
		if cond.Type != condType {
			kept = append(kept, cond)
		}
	}
	if len(kept) == len(c.conditions) {
		return nil
	}
	c.conditions = kept
	return c.saveConditions()
}

// ClearConditions detaches all cart-scoped conditions.
func (c *Cart) ClearConditions() error {
	c.conditions = nil
	return c.saveConditions()
}

// =============================================================================
// ITEM-SCOPED CONDITIONS
// =============================================================================

// AddItemCondition appends a condition to an existing item's condition
// set and re-saves the item.
func (c *Cart) AddItemCondition(itemID string, cond *Condition) error {
	if err := validateCondition(cond); err != nil {
		return err
	}
	item, exists := c.items[itemID]
	if !exists {
		return ErrItemNotFound
	}

	conds := append(cloneConditions(item.Conditions), cond.clone())
	ok, err := c.Update(itemID, ItemPatch{Conditions: &conds})
	if err != nil {
		return err
	}
	if !ok {
		return ErrVetoed
	}
	return nil
}

// RemoveItemCondition detaches the matching-named condition(s) from an
// item. ok is false when the item or the condition is not found.
func (c *Cart) RemoveItemCondition(itemID, name string) (ok bool, err error) {
	item, exists := c.items[itemID]
	if !exists || !item.HasConditions() {
		return false, nil
	}

	var kept []*Condition
	removed := false
	for _, cond := range item.Conditions {
		if cond.Name == name {
			removed = true
			continue
		}
		kept = append(kept, cond)
	}
	if !removed {
		return false, nil
	}
	return c.Update(itemID, ItemPatch{Conditions: &kept})
}

// ClearItemConditions detaches all conditions from an item.
func (c *Cart) ClearItemConditions(itemID string) (ok bool, err error) {
	if _, exists := c.items[itemID]; !exists {
		return false, nil
	}
	empty := []*Condition{}
	return c.Update(itemID, ItemPatch{Conditions: &empty})
}

func cloneConditions(conds []*Condition) []*Condition {
	if conds == nil {
		return nil
	}
	out := make([]*Condition, len(conds))
	for i, cond := range conds {
		out[i] = cond.clone()
	}
	return out
}

// =============================================================================
// ASSOCIATION AND MODEL CACHE
// =============================================================================

// Associate ties the most recently added item to an external model type.
// The resolver must know the type.
func (c *Cart) Associate(model string) error {
	if c.resolver == nil || !c.resolver.Has(model) {
		return &UnknownAssociationError{Model: model}
	}
	item, exists := c.items[c.currentItemID]
	if !exists {
		return ErrItemNotFound
	}

	item.AssociatedModel = model
	c.resetModelCache()
	return c.saveItems()
}

// ModelFromCache returns the resolved external object cached for the
// given (model type, item id) pair, nil when unresolved.
func (c *Cart) ModelFromCache(model, itemID string) any {
	byID, ok := c.modelCache[model]
	if !ok {
		return nil
	}
	return byID[itemID]
}

// Model returns the resolved external object for an item, following the
// item's own association.
func (c *Cart) Model(itemID string) any {
	item, ok := c.items[itemID]
	if !ok || item.AssociatedModel == "" {
		return nil
	}
	return c.ModelFromCache(item.AssociatedModel, itemID)
}

func (c *Cart) resetModelCache() {
	c.modelCache = make(map[string]map[string]any)
}

// rebuildModelCache resolves all associated items grouped by model type.
// Skipped while a cache is already populated or a batch add is running.
func (c *Cart) rebuildModelCache() {
	if c.resolver == nil || len(c.items) == 0 || len(c.modelCache) > 0 {
		return
	}

	groups := make(map[string][]string)
	for _, id := range c.order {
		if model := c.items[id].AssociatedModel; model != "" {
			groups[model] = append(groups[model], id)
		}
	}

	for model, ids := range groups {
		resolved, err := c.resolver.Resolve(model, ids)
		if err != nil || len(resolved) == 0 {
			continue
		}
		c.modelCache[model] = resolved
	}
}

// =============================================================================
// PERSISTENCE
// =============================================================================

func (c *Cart) saveItems() error {
	var err error
	if c.store != nil {
		err = c.store.SaveItems(c.sessionKey, c.snapshotItems())
	}
	if !c.batch {
		c.rebuildModelCache()
	}
	return err
}

func (c *Cart) saveConditions() error {
	if c.store == nil {
		return nil
	}
	out := make([]Condition, 0, len(c.conditions))
	for _, cond := range c.conditions {
		out = append(out, *cond.clone())
	}
	return c.store.SaveConditions(c.sessionKey, out)
}

func (c *Cart) snapshotItems() []Item {
	out := make([]Item, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.items[id].clone())
	}
	return out
}
