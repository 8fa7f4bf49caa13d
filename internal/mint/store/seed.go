package store

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"mintgate/internal/mint/ports"
	"mintgate/internal/payment"
)

// SeedBalance credits Amount of Asset (zero address for native) to Holder.
type SeedBalance struct {
	Asset  common.Address
	Holder common.Address
	Amount *big.Int
}

// SeedBalances credits development balances in a single transaction.
func SeedBalances(ctx context.Context, txr ports.StoreTx, balances []SeedBalance) error {
	if len(balances) == 0 {
		return nil
	}
	return txr.RunInTx(ctx, func(ctx context.Context, store ports.Store) error {
		for _, b := range balances {
			if err := payment.Bind(store, b.Asset).Credit(ctx, b.Holder, b.Amount); err != nil {
				return fmt.Errorf("seed %s for %s: %w", b.Asset.Hex(), b.Holder.Hex(), err)
			}
		}
		return nil
	})
}
