/*
hooks.go - Lifecycle notifications with veto power

PURPOSE:
  Carts announce their mutations so surrounding code (analytics, stock
  checks, audit) can observe or block them. Hooks are injected at cart
  construction; there is no global dispatcher.

EVENTS:
  created                        after a cart instance is built
  adding/added                   around inserting a new item
  updating/updated               around patching an existing item
  removing/removed               around deleting an item
  clearing/cleared               around emptying the item map

VETO CONTRACT:
  The "before" events (adding, updating, removing, clearing) may veto:
  returning false aborts the mutation and the cart is left untouched.
  The matching "after" event fires only when the mutation succeeded.
  Return values of "after" events are ignored.

SEE ALSO:
  - cart.go: Fire sites for every event
*/
package cart

// Event names a cart lifecycle notification.
type Event string

const (
	EventCreated  Event = "created"
	EventAdding   Event = "adding"
	EventAdded    Event = "added"
	EventUpdating Event = "updating"
	EventUpdated  Event = "updated"
	EventRemoving Event = "removing"
	EventRemoved  Event = "removed"
	EventClearing Event = "clearing"
	EventCleared  Event = "cleared"
)

// Hooks observes cart mutations. Fire is synchronous; instance is the
// cart's instance name so one hook implementation can serve several
// carts. For before-events a false return vetoes the mutation.
type Hooks interface {
	Fire(instance string, event Event, payload any) bool
}

// HookFunc adapts a function to the Hooks interface.
type HookFunc func(instance string, event Event, payload any) bool

func (f HookFunc) Fire(instance string, event Event, payload any) bool {
	return f(instance, event, payload)
}

// NopHooks never vetoes. It is the default when no hooks are injected.
type NopHooks struct{}

func (NopHooks) Fire(string, Event, any) bool { return true }
