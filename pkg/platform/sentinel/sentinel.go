package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and ledgers return these
// (optionally wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: record does not exist in the store
//   - ErrConflict: a uniqueness constraint was hit
//   - ErrAlreadyUsed: a single-use value (trait hash, login nonce) was consumed before
//   - ErrInsufficientFunds: a balance or allowance does not cover a transfer
//   - ErrReadOnly: a mutation was attempted inside a read-only view
//   - ErrUnavailable: backing service temporarily unavailable
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrAlreadyUsed       = errors.New("already used")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrReadOnly          = errors.New("read-only view")
	ErrUnavailable       = errors.New("unavailable")
)
