package mintledger

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// Mint rejections, checked in this order
	ErrInvalidQuantity     = errors.New("mintledger: quantity must be at least 1")
	ErrNotYetOpen          = errors.New("mintledger: minting not yet open")
	ErrPaused              = errors.New("mintledger: minting is paused")
	ErrCapacityExceeded    = errors.New("mintledger: max supply exceeded")
	ErrInsufficientPayment = errors.New("mintledger: insufficient payment")

	// Lookup and access errors
	ErrNotFound     = errors.New("mintledger: token not found")
	ErrUnauthorized = errors.New("mintledger: caller is not the owner")

	// Lifecycle errors
	ErrNotDeployed     = errors.New("mintledger: collection not deployed")
	ErrAlreadyDeployed = errors.New("mintledger: collection already deployed")

	// Store errors
	ErrAlreadyExists      = errors.New("mintledger: already exists")
	ErrCollectionNotFound = errors.New("mintledger: collection not found")
	ErrCorruptState       = errors.New("mintledger: stored state is inconsistent")
	ErrAmountOverflow     = errors.New("mintledger: amount overflows 256 bits")
	ErrStoreClosed        = errors.New("mintledger: store is closed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("mintledger: validation failed for %s: %s", e.Field, e.Message)
}

// IsMintRejection returns true if the error is one of the mint precondition
// failures.
func IsMintRejection(err error) bool {
	return errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrNotYetOpen) ||
		errors.Is(err, ErrPaused) ||
		errors.Is(err, ErrCapacityExceeded) ||
		errors.Is(err, ErrInsufficientPayment)
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrCollectionNotFound)
}

// IsValidation returns true if err wraps a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// Labels returned by RejectionReason.
const (
	ReasonInvalidQuantity     = "invalid_quantity"
	ReasonNotYetOpen          = "not_yet_open"
	ReasonPaused              = "paused"
	ReasonCapacityExceeded    = "capacity_exceeded"
	ReasonInsufficientPayment = "insufficient_payment"
	ReasonError               = "error"
)

// RejectionReasons lists every label RejectionReason can return.
func RejectionReasons() []string {
	return []string{
		ReasonInvalidQuantity,
		ReasonNotYetOpen,
		ReasonPaused,
		ReasonCapacityExceeded,
		ReasonInsufficientPayment,
		ReasonError,
	}
}

// RejectionReason returns a short stable label for a mint rejection, or
// ReasonError for anything else. Used as a metric and audit label.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		return ReasonInvalidQuantity
	case errors.Is(err, ErrNotYetOpen):
		return ReasonNotYetOpen
	case errors.Is(err, ErrPaused):
		return ReasonPaused
	case errors.Is(err, ErrCapacityExceeded):
		return ReasonCapacityExceeded
	case errors.Is(err, ErrInsufficientPayment):
		return ReasonInsufficientPayment
	default:
		return ReasonError
	}
}
