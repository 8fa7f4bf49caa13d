package service

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"mintgate/internal/mint/ports"
	"mintgate/internal/payment"
	dErrors "mintgate/pkg/domain-errors"
)

// Approve sets spender's allowance over caller's balance of token. Callers
// approve the controller before minting into token-fee collections.
func (s *Service) Approve(ctx context.Context, caller, token, spender common.Address, amount *big.Int) (err error) {
	ctx, span := s.startSpan(ctx, "wallet.Approve")
	defer func() { endSpan(span, err) }()

	if err := requireCaller(caller); err != nil {
		return err
	}
	if token == payment.NativeAsset {
		return dErrors.New(dErrors.CodeValidation, "native currency has no allowances")
	}
	if spender == (common.Address{}) {
		return dErrors.New(dErrors.CodeValidation, "spender must not be the zero address")
	}
	if amount == nil || amount.Sign() < 0 {
		return dErrors.New(dErrors.CodeValidation, "amount must be non-negative")
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context, store ports.Store) error {
		if err := payment.Bind(store, token).Approve(ctx, caller, spender, amount); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to approve")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "allowance set",
		"token", token.Hex(),
		"owner", caller.Hex(),
		"spender", spender.Hex(),
		"amount", amount.String(),
	)
	return nil
}

// TokenBalance returns holder's balance of token.
func (s *Service) TokenBalance(ctx context.Context, token, holder common.Address) (*big.Int, error) {
	if token == payment.NativeAsset {
		return nil, dErrors.New(dErrors.CodeValidation, "token address is required")
	}
	return s.balance(ctx, token, holder)
}

// NativeBalance returns holder's native currency balance.
func (s *Service) NativeBalance(ctx context.Context, holder common.Address) (*big.Int, error) {
	return s.balance(ctx, payment.NativeAsset, holder)
}

// Allowance returns spender's remaining allowance over owner's token balance.
func (s *Service) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	var allowance *big.Int
	err := s.tx.View(ctx, func(ctx context.Context, store ports.Store) error {
		var err error
		allowance, err = payment.Bind(store, token).Allowance(ctx, owner, spender)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read allowance")
		}
		return nil
	})
	return allowance, err
}

func (s *Service) balance(ctx context.Context, asset, holder common.Address) (*big.Int, error) {
	var balance *big.Int
	err := s.tx.View(ctx, func(ctx context.Context, store ports.Store) error {
		var err error
		balance, err = payment.Bind(store, asset).BalanceOf(ctx, holder)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read balance")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}
