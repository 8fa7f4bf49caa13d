// Package chain is the host runtime the controller runs in: chain id,
// controller identity, and the issuance and payment components bound to a
// transaction's store.
package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"mintgate/internal/collectible"
	"mintgate/internal/mint/ports"
	"mintgate/internal/payment"
	"mintgate/pkg/requestcontext"
)

// Host implements ports.Host.
type Host struct {
	chainID    *big.Int
	controller common.Address
}

// New builds a host. chainID must be positive and controller non-zero.
func New(chainID *big.Int, controller common.Address) (*Host, error) {
	if chainID == nil || chainID.Sign() <= 0 {
		return nil, fmt.Errorf("chain id must be positive")
	}
	if controller == (common.Address{}) {
		return nil, fmt.Errorf("controller address must not be zero")
	}
	return &Host{chainID: new(big.Int).Set(chainID), controller: controller}, nil
}

// ChainID returns a copy of the chain id.
func (h *Host) ChainID() *big.Int { return new(big.Int).Set(h.chainID) }

// Controller returns the controller's own address.
func (h *Host) Controller() common.Address { return h.controller }

// IssuerAddress is where the issuance contract deployed with nonce lives.
func (h *Host) IssuerAddress(nonce uint64) common.Address {
	return crypto.CreateAddress(h.controller, nonce)
}

// DeployIssuer deploys an issuance contract with the controller as sole minter.
func (h *Host) DeployIssuer(ctx context.Context, store ports.Store, nonce uint64, name, symbol, baseURI string) (common.Address, error) {
	address := h.IssuerAddress(nonce)
	_, err := collectible.Deploy(ctx, store, &collectible.Contract{
		Address:    address,
		Name:       name,
		Symbol:     symbol,
		BaseURI:    baseURI,
		Minter:     h.controller,
		DeployedAt: requestcontext.Now(ctx),
	})
	if err != nil {
		return common.Address{}, err
	}
	return address, nil
}

func (h *Host) Issuer(store ports.Store, address common.Address) ports.Issuer {
	return &issuer{ledger: collectible.Bind(store, address), minter: h.controller}
}

func (h *Host) PaymentToken(store ports.Store, token common.Address) ports.PaymentToken {
	return &paymentToken{token: payment.Bind(store, token), spender: h.controller}
}

func (h *Host) Bank(store ports.Store) ports.Bank {
	return &bank{native: payment.Bind(store, payment.NativeAsset)}
}

type issuer struct {
	ledger *collectible.Ledger
	minter common.Address
}

func (i *issuer) Mint(ctx context.Context, to common.Address, uri string) (uint64, error) {
	return i.ledger.Mint(ctx, i.minter, to, uri, requestcontext.Now(ctx))
}

func (i *issuer) TotalSupply(ctx context.Context) (uint64, error) {
	return i.ledger.TotalSupply(ctx)
}

func (i *issuer) OwnerOf(ctx context.Context, tokenID uint64) (common.Address, error) {
	return i.ledger.OwnerOf(ctx, tokenID)
}

func (i *issuer) TokenURI(ctx context.Context, tokenID uint64) (string, error) {
	return i.ledger.TokenURI(ctx, tokenID)
}

// paymentToken calls the token with the controller as msg.sender.
type paymentToken struct {
	token   *payment.Token
	spender common.Address
}

func (p *paymentToken) TransferFrom(ctx context.Context, from, to common.Address, amount *big.Int) error {
	return p.token.TransferFrom(ctx, p.spender, from, to, amount)
}

func (p *paymentToken) Transfer(ctx context.Context, to common.Address, amount *big.Int) error {
	return p.token.Transfer(ctx, p.spender, to, amount)
}

func (p *paymentToken) BalanceOf(ctx context.Context, holder common.Address) (*big.Int, error) {
	return p.token.BalanceOf(ctx, holder)
}

type bank struct {
	native *payment.Token
}

func (b *bank) BalanceOf(ctx context.Context, holder common.Address) (*big.Int, error) {
	return b.native.BalanceOf(ctx, holder)
}

func (b *bank) Transfer(ctx context.Context, from, to common.Address, amount *big.Int) error {
	return b.native.Transfer(ctx, from, to, amount)
}
