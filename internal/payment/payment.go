// Package payment keeps fungible balances: ERC-20 style tokens keyed by token
// address, and the native currency under the zero address.
package payment

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"mintgate/pkg/platform/sentinel"
)

// NativeAsset is the asset key for native currency balances.
var NativeAsset = common.Address{}

var (
	// ErrTransferFailed is the explicit failure signal of every transfer.
	ErrTransferFailed = errors.New("transfer failed")
	// ErrInvalidAmount rejects negative amounts.
	ErrInvalidAmount = errors.New("amount must be non-negative")
)

// Store persists balances and allowances. Missing entries read as zero.
type Store interface {
	Balance(ctx context.Context, asset, holder common.Address) (*big.Int, error)
	SetBalance(ctx context.Context, asset, holder common.Address, amount *big.Int) error
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
	SetAllowance(ctx context.Context, token, owner, spender common.Address, amount *big.Int) error
}

// Token is a handle on one fungible asset.
type Token struct {
	store   Store
	address common.Address
}

// Bind returns a handle on the asset at address. NativeAsset binds the native
// currency, which has no allowances.
func Bind(store Store, address common.Address) *Token {
	return &Token{store: store, address: address}
}

// Address returns the asset address.
func (t *Token) Address() common.Address { return t.address }

// BalanceOf returns holder's balance.
func (t *Token) BalanceOf(ctx context.Context, holder common.Address) (*big.Int, error) {
	return t.store.Balance(ctx, t.address, holder)
}

// Transfer moves amount from one holder to another.
func (t *Token) Transfer(ctx context.Context, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if to == (common.Address{}) {
		return fmt.Errorf("%w: transfer to zero address", ErrTransferFailed)
	}
	if amount.Sign() == 0 {
		return nil
	}
	balance, err := t.store.Balance(ctx, t.address, from)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %w", ErrTransferFailed, sentinel.ErrInsufficientFunds)
	}
	if err := t.store.SetBalance(ctx, t.address, from, new(big.Int).Sub(balance, amount)); err != nil {
		return err
	}
	return t.Credit(ctx, to, amount)
}

// TransferFrom moves amount from one holder to another, spending spender's
// allowance. Native currency has no allowances, so TransferFrom fails for it.
func (t *Token) TransferFrom(ctx context.Context, spender, from, to common.Address, amount *big.Int) error {
	if t.address == NativeAsset {
		return fmt.Errorf("%w: native currency has no allowances", ErrTransferFailed)
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	allowance, err := t.store.Allowance(ctx, t.address, from, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: allowance %s below %s", ErrTransferFailed, allowance, amount)
	}
	if err := t.Transfer(ctx, from, to, amount); err != nil {
		return err
	}
	return t.store.SetAllowance(ctx, t.address, from, spender, new(big.Int).Sub(allowance, amount))
}

// Approve sets spender's allowance over owner's balance.
func (t *Token) Approve(ctx context.Context, owner, spender common.Address, amount *big.Int) error {
	if t.address == NativeAsset {
		return fmt.Errorf("%w: native currency has no allowances", ErrTransferFailed)
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if spender == (common.Address{}) {
		return fmt.Errorf("approve zero spender")
	}
	return t.store.SetAllowance(ctx, t.address, owner, spender, new(big.Int).Set(amount))
}

// Allowance returns spender's remaining allowance over owner's balance.
func (t *Token) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return t.store.Allowance(ctx, t.address, owner, spender)
}

// Credit adds amount to holder's balance. Used for incoming transfers and dev
// seeding.
func (t *Token) Credit(ctx context.Context, holder common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	balance, err := t.store.Balance(ctx, t.address, holder)
	if err != nil {
		return err
	}
	return t.store.SetBalance(ctx, t.address, holder, new(big.Int).Add(balance, amount))
}
