package treasury

import "errors"

var (
	// ErrUnauthorized is returned when the caller may not perform the operation.
	ErrUnauthorized = errors.New("treasury: unauthorized")
	// ErrInvalidInput is returned when an operation argument is malformed.
	ErrInvalidInput = errors.New("treasury: invalid input")
	// ErrInvalidState is returned when the record or treasury is not in the required state.
	ErrInvalidState = errors.New("treasury: invalid state")
	// ErrAlreadyApproved is returned when an account approves the same transfer twice.
	ErrAlreadyApproved = errors.New("treasury: already approved")
	// ErrInsufficientBalance is returned when the pool cannot cover a transfer.
	ErrInsufficientBalance = errors.New("treasury: insufficient balance")
	// ErrNotYetAuthorized is returned when execution is attempted below quorum.
	ErrNotYetAuthorized = errors.New("treasury: not yet authorized")
	// ErrCooldownActive is returned when execution is attempted before the cooldown elapses.
	ErrCooldownActive = errors.New("treasury: cooldown active")
	// ErrTransferNotFound is returned when a transfer id is absent from the pending index.
	ErrTransferNotFound = errors.New("treasury: transfer not found")
	// ErrTreasuryNotFound is returned when no treasury exists for the tenant.
	ErrTreasuryNotFound = errors.New("treasury: not found")
	// ErrNilAggregate is returned when saving a nil aggregate.
	ErrNilAggregate = errors.New("treasury: nil aggregate")
	// ErrVersionConflict is returned when a save races a concurrent update.
	ErrVersionConflict = errors.New("treasury: version conflict")
)
