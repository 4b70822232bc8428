/*
errors.go - Centralized error types for the cart engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers can branch with errors.Is / errors.As.

ERROR CATEGORIES:
  1. Validation errors - Missing or malformed item fields
  2. Condition errors  - Malformed condition arguments
  3. Association errors - Unknown external model types
  4. Lookup errors     - Missing items or session keys

VETOED MUTATIONS ARE NOT ERRORS:
  A lifecycle hook rejecting a mutation is an expected control-flow
  outcome, not a failure. Update/Remove/Clear report it with a false
  boolean; Add reports it with the ErrVetoed sentinel so the error path
  stays single-valued.

SEE ALSO:
  - cart.go: Where these are returned
  - hooks.go: Veto semantics
*/
package cart

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidItem is returned when an item is missing required fields
	// or carries non-numeric price/quantity input.
	ErrInvalidItem = errors.New("invalid cart item")

	// ErrInvalidCondition is returned for malformed condition arguments.
	ErrInvalidCondition = errors.New("invalid condition")

	// ErrUnknownAssociation is returned when associating an item with a
	// model type the resolver does not know.
	ErrUnknownAssociation = errors.New("unknown associated model")

	// ErrItemNotFound is returned when an operation references an item id
	// that is not in the cart.
	ErrItemNotFound = errors.New("item not found")

	// ErrVetoed is returned when a lifecycle hook rejects an add.
	ErrVetoed = errors.New("operation vetoed by hook")

	// ErrSessionKeyRequired is returned when a cart is created or
	// re-targeted without a session key.
	ErrSessionKeyRequired = errors.New("session key is required")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports which item field failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid cart item: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidItem }

// InvalidConditionError reports a malformed condition argument.
type InvalidConditionError struct {
	Reason string
}

func (e *InvalidConditionError) Error() string {
	return fmt.Sprintf("invalid condition: %s", e.Reason)
}

func (e *InvalidConditionError) Unwrap() error { return ErrInvalidCondition }

// UnknownAssociationError reports an association to a model type the
// resolver cannot serve.
type UnknownAssociationError struct {
	Model string
}

func (e *UnknownAssociationError) Error() string {
	return fmt.Sprintf("the supplied model %q does not exist", e.Model)
}

func (e *UnknownAssociationError) Unwrap() error { return ErrUnknownAssociation }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidItem) ||
		errors.Is(err, ErrInvalidCondition) ||
		errors.Is(err, ErrUnknownAssociation)
}

// IsNotFound returns true if the error indicates a missing item.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound)
}
