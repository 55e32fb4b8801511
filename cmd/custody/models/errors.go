package models

import (
	"errors"
	"fmt"
)

// Domain errors surfaced by the engine. All are recoverable and user-facing;
// none are process-fatal. Handlers map them to HTTP statuses.

// PolicyViolationError reports a business rule violated at the attempted
// operation. Not retryable.
type PolicyViolationError struct {
	Reason string
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("policy violation: %s", e.Reason)
}

// ConflictingAssignmentError reports that a holder already holds another
// asset of the same category. ConflictingSerial names the asset already held
// so the caller can resolve the conflict manually.
type ConflictingAssignmentError struct {
	HolderCode        string
	Category          Category
	ConflictingSerial string
}

func (e *ConflictingAssignmentError) Error() string {
	return fmt.Sprintf("holder %s already holds %s asset %s",
		e.HolderCode, e.Category, e.ConflictingSerial)
}

// RedundantActionError reports a requested transition equal to the current
// state. The caller must not silently retry: the state has already converged,
// and accepting the request would corrupt the alternation invariant.
type RedundantActionError struct {
	Serial string
	Action CustodyAction
}

func (e *RedundantActionError) Error() string {
	return fmt.Sprintf("asset %s is already %s", e.Serial, e.Action.Status())
}

// NotFoundError reports a referenced Asset/Holder key that does not exist
type NotFoundError struct {
	Kind string // "asset" or "holder"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

// DuplicateKeyError reports an attempt to register a key that already
// exists. A permanent integrity conflict, not a transient store failure:
// retrying the same request can never succeed.
type DuplicateKeyError struct {
	Kind string // "asset" or "holder"
	Key  string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Kind, e.Key)
}

// ErrStoreUnavailable wraps entity-store failures. Callers may retry reads
// with backoff; writes must first check whether the prior attempt landed.
var ErrStoreUnavailable = errors.New("entity store unavailable")

// StoreError wraps an underlying store failure so it matches
// ErrStoreUnavailable via errors.Is while preserving the cause.
func StoreError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
