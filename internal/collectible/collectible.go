// Package collectible is the issuance ledger: one contract per collection,
// each assigning token ids 1, 2, 3, ... to owners on behalf of a single minter.
package collectible

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"mintgate/pkg/platform/sentinel"
)

var (
	// ErrNotMinter is returned when anyone other than the configured minter mints.
	ErrNotMinter = errors.New("caller is not the minter")
	// ErrNonexistentToken is returned by read accessors for ids never minted.
	ErrNonexistentToken = errors.New("nonexistent token")
)

// Contract is the per-collection issuance record.
type Contract struct {
	Address     common.Address
	Name        string
	Symbol      string
	BaseURI     string
	Minter      common.Address
	TotalSupply uint64
	DeployedAt  time.Time
}

// Token is one issued item.
type Token struct {
	Contract common.Address
	ID       uint64
	Owner    common.Address
	URI      string
	MintedAt time.Time
}

// Store persists contracts and tokens. Lookups return sentinel.ErrNotFound for
// missing records.
type Store interface {
	CreateContract(ctx context.Context, c *Contract) error
	FindContract(ctx context.Context, address common.Address) (*Contract, error)
	UpdateContract(ctx context.Context, c *Contract) error
	InsertToken(ctx context.Context, t *Token) error
	FindToken(ctx context.Context, contract common.Address, id uint64) (*Token, error)
}

// Deploy records a new contract at address. Deploying twice at the same
// address is a conflict.
func Deploy(ctx context.Context, store Store, c *Contract) (*Ledger, error) {
	if c.Address == (common.Address{}) {
		return nil, fmt.Errorf("deploy collectible: zero address")
	}
	if c.Minter == (common.Address{}) {
		return nil, fmt.Errorf("deploy collectible: zero minter")
	}
	c.TotalSupply = 0
	if err := store.CreateContract(ctx, c); err != nil {
		return nil, fmt.Errorf("deploy collectible %s: %w", c.Address.Hex(), err)
	}
	return Bind(store, c.Address), nil
}

// Ledger is a handle on one deployed contract.
type Ledger struct {
	store   Store
	address common.Address
}

// Bind returns a handle on the contract at address without checking it exists.
func Bind(store Store, address common.Address) *Ledger {
	return &Ledger{store: store, address: address}
}

// Address returns the contract address.
func (l *Ledger) Address() common.Address { return l.address }

// Mint issues the next token id to owner. Only the configured minter may mint.
func (l *Ledger) Mint(ctx context.Context, minter, owner common.Address, uri string, at time.Time) (uint64, error) {
	c, err := l.store.FindContract(ctx, l.address)
	if err != nil {
		return 0, err
	}
	if c.Minter != minter {
		return 0, ErrNotMinter
	}
	if owner == (common.Address{}) {
		return 0, fmt.Errorf("mint to zero address")
	}

	id := c.TotalSupply + 1
	if err := l.store.InsertToken(ctx, &Token{
		Contract: l.address,
		ID:       id,
		Owner:    owner,
		URI:      uri,
		MintedAt: at,
	}); err != nil {
		return 0, err
	}
	c.TotalSupply = id
	if err := l.store.UpdateContract(ctx, c); err != nil {
		return 0, err
	}
	return id, nil
}

// TotalSupply is the number of tokens issued so far.
func (l *Ledger) TotalSupply(ctx context.Context) (uint64, error) {
	c, err := l.store.FindContract(ctx, l.address)
	if err != nil {
		return 0, err
	}
	return c.TotalSupply, nil
}

// OwnerOf returns the owner of a minted token.
func (l *Ledger) OwnerOf(ctx context.Context, id uint64) (common.Address, error) {
	t, err := l.token(ctx, id)
	if err != nil {
		return common.Address{}, err
	}
	return t.Owner, nil
}

// TokenURI is baseURI + uri when the contract has a base URI, else uri.
func (l *Ledger) TokenURI(ctx context.Context, id uint64) (string, error) {
	c, err := l.store.FindContract(ctx, l.address)
	if err != nil {
		return "", err
	}
	t, err := l.token(ctx, id)
	if err != nil {
		return "", err
	}
	if c.BaseURI == "" {
		return t.URI, nil
	}
	return c.BaseURI + t.URI, nil
}

func (l *Ledger) token(ctx context.Context, id uint64) (*Token, error) {
	t, err := l.store.FindToken(ctx, l.address, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, ErrNonexistentToken
	}
	return t, err
}
