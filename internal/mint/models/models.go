// Package models holds the mint controller's domain types.
package models

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	dErrors "mintgate/pkg/domain-errors"
)

// Settings is the controller's governance state. It exists once initialized.
type Settings struct {
	Owner         common.Address `json:"owner"`
	FeeTo         common.Address `json:"fee_to"`
	Verifier      common.Address `json:"verifier"`
	InitializedAt time.Time      `json:"initialized_at"`
}

// RequireOwner rejects callers other than the owner.
func (s *Settings) RequireOwner(caller common.Address) error {
	if caller != s.Owner {
		return dErrors.New(dErrors.CodeForbidden, "caller is not the owner")
	}
	return nil
}

// CanChangeAddress checks a governance address update: non-zero and different.
func CanChangeAddress(field string, current, next common.Address) error {
	if next == (common.Address{}) {
		return dErrors.Newf(dErrors.CodeValidation, "%s must not be the zero address", field)
	}
	if next == current {
		return dErrors.Newf(dErrors.CodeValidation, "%s unchanged", field)
	}
	return nil
}

// ConsumedHash records the mint that spent a trait hash.
type ConsumedHash struct {
	Hash         []byte
	CollectionID uint64
	TokenID      uint64
	ConsumedAt   time.Time
}

// MintRequest is one mint attempt. Value is the native currency attached to
// the call; nil means none.
type MintRequest struct {
	Caller       common.Address
	CollectionID uint64
	URI          string
	Fee          *big.Int
	TraitHash    []byte
	Signature    []byte
	Value        *big.Int
}

// AttachedValue returns Value, treating nil as zero.
func (r *MintRequest) AttachedValue() *big.Int {
	if r.Value == nil {
		return new(big.Int)
	}
	return r.Value
}

// MintResult describes an issued token.
type MintResult struct {
	CollectionID      uint64         `json:"collection_id"`
	CollectionAddress common.Address `json:"collection_address"`
	TokenID           uint64         `json:"token_id"`
	Owner             common.Address `json:"owner"`
	URI               string         `json:"uri"`
}

// Preflight is the outcome of checking a mint authorization without minting.
type Preflight struct {
	CollectionID uint64         `json:"collection_id"`
	TokenID      uint64         `json:"token_id"`
	Verifier     common.Address `json:"verifier"`
	Valid        bool           `json:"valid"`
}

// TokenView is an issued token as read from its collection.
type TokenView struct {
	CollectionID      uint64         `json:"collection_id"`
	CollectionAddress common.Address `json:"collection_address"`
	TokenID           uint64         `json:"token_id"`
	Owner             common.Address `json:"owner"`
	URI               string         `json:"uri"`
}

// Withdrawal is the result of sweeping controller custody to the owner.
type Withdrawal struct {
	Token  common.Address `json:"token"`
	To     common.Address `json:"to"`
	Amount *big.Int       `json:"amount"`
}
