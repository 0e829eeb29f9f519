package errors

import (
	"fmt"

	"github.com/Mtaasisi/POS-sub062/internal/domain"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when credentials are present but invalid
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrAuthenticationRequired is returned when a write is attempted without an authenticated actor.
// Callers should prompt for a new login rather than retry.
type ErrAuthenticationRequired struct {
	Operation string
}

func (e *ErrAuthenticationRequired) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("authentication required to %s", e.Operation)
	}
	return "authentication required"
}

// ErrConflict is returned when there's a conflict (e.g., idempotency)
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "conflict"
}

// ErrValidation is returned when validation fails
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrInvalidStateTransition is returned when an invalid state transition is attempted
type ErrInvalidStateTransition struct {
	From domain.ShipmentStatus
	To   domain.ShipmentStatus
	Rule domain.TransitionRule
}

func (e *ErrInvalidStateTransition) Error() string {
	switch e.Rule {
	case domain.RuleAlreadyRecorded:
		return fmt.Sprintf("cannot set status %s: status already recorded for this shipment", e.To)
	case domain.RuleUnknownStatus:
		return fmt.Sprintf("cannot set status %s: unknown shipment status", e.To)
	case domain.RuleConcurrentUpdate:
		return fmt.Sprintf("cannot set status %s: shipment status changed from %s while the update was in progress", e.To, e.From)
	case domain.RuleBackwardOrRepeat:
		return fmt.Sprintf("cannot move backward from %s to %s", e.From, e.To)
	default:
		return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
	}
}

// ErrInvalidReference is returned when a carrier, agent, manager, product or
// purchase order id does not resolve (foreign key violation).
type ErrInvalidReference struct {
	Field   string
	Message string
}

func (e *ErrInvalidReference) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid reference: %s does not exist", e.Field)
	}
	return "invalid reference"
}

// ErrDuplicateTrackingNumber is returned when a tracking number is already used by the same carrier
type ErrDuplicateTrackingNumber struct {
	TrackingNumber string
	Attempts       int
}

func (e *ErrDuplicateTrackingNumber) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("could not allocate a unique tracking number after %d attempts (last: %s)", e.Attempts, e.TrackingNumber)
	}
	return fmt.Sprintf("tracking number already in use for this carrier: %s", e.TrackingNumber)
}

// ErrStaleStatus is returned by a conditional status update when the stored status
// no longer matches the expected one.
type ErrStaleStatus struct {
	Expected domain.ShipmentStatus
}

func (e *ErrStaleStatus) Error() string {
	return fmt.Sprintf("shipment status is no longer %s", e.Expected)
}

// ErrPersistenceUnavailable wraps store failures that are not one of the classified cases above
type ErrPersistenceUnavailable struct {
	Op  string
	Err error
}

func (e *ErrPersistenceUnavailable) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *ErrPersistenceUnavailable) Unwrap() error {
	return e.Err
}
