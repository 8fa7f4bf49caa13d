// Package ports declares the mint controller's boundaries: the transactional
// store it runs against and the host components it calls into (issuance
// contracts, payment tokens, native currency).
package ports

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"mintgate/internal/collectible"
	"mintgate/internal/mint/models"
	"mintgate/internal/payment"
	audit "mintgate/pkg/platform/audit"
)

// Store is the controller's state as seen inside one transaction. Lookups
// return sentinel.ErrNotFound for missing records; ConsumeHash returns
// sentinel.ErrAlreadyUsed for a hash consumed before.
type Store interface {
	collectible.Store
	payment.Store

	Settings(ctx context.Context) (*models.Settings, error)
	SaveSettings(ctx context.Context, s *models.Settings) error

	CountCollections(ctx context.Context) (uint64, error)
	CreateCollection(ctx context.Context, c *models.Collection) error
	FindCollection(ctx context.Context, id uint64) (*models.Collection, error)
	UpdateCollection(ctx context.Context, c *models.Collection) error
	CollectionIDsByArtist(ctx context.Context, artist common.Address) ([]uint64, error)

	IsConsumed(ctx context.Context, hash []byte) (bool, error)
	ConsumeHash(ctx context.Context, rec *models.ConsumedHash) error

	AppendEvent(ctx context.Context, e *audit.Event) error
	ListEvents(ctx context.Context, afterSequence int64, limit int) ([]audit.Event, error)
}

// StoreTx runs fn against a consistent view of the store. Mutating operations
// go through RunInTx, which is globally serialized and all-or-nothing: any
// error from fn discards every write fn made. View gives a read-only snapshot.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error
	View(ctx context.Context, fn func(ctx context.Context, store Store) error) error
}

// Issuer is one collection's issuance contract, called as the controller.
type Issuer interface {
	Mint(ctx context.Context, to common.Address, uri string) (uint64, error)
	TotalSupply(ctx context.Context) (uint64, error)
	OwnerOf(ctx context.Context, tokenID uint64) (common.Address, error)
	TokenURI(ctx context.Context, tokenID uint64) (string, error)
}

// PaymentToken is a fungible token, called as the controller.
type PaymentToken interface {
	TransferFrom(ctx context.Context, from, to common.Address, amount *big.Int) error
	Transfer(ctx context.Context, to common.Address, amount *big.Int) error
	BalanceOf(ctx context.Context, holder common.Address) (*big.Int, error)
}

// Bank moves native currency.
type Bank interface {
	BalanceOf(ctx context.Context, holder common.Address) (*big.Int, error)
	Transfer(ctx context.Context, from, to common.Address, amount *big.Int) error
}

// Host is the runtime the controller executes in. Components are bound to the
// transaction's store so their writes commit or roll back with it.
type Host interface {
	ChainID() *big.Int
	Controller() common.Address
	DeployIssuer(ctx context.Context, store Store, nonce uint64, name, symbol, baseURI string) (common.Address, error)
	Issuer(store Store, address common.Address) Issuer
	PaymentToken(store Store, token common.Address) PaymentToken
	Bank(store Store) Bank
}
