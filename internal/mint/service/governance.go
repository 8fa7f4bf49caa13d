package service

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel/attribute"

	"mintgate/internal/mint/events"
	"mintgate/internal/mint/models"
	"mintgate/internal/mint/ports"
	"mintgate/internal/payment"
	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/platform/sentinel"
)

// Initialize sets fee recipient and verifier once; the caller becomes owner.
func (s *Service) Initialize(ctx context.Context, caller, feeTo, verifier common.Address) (_ *models.Settings, err error) {
	ctx, span := s.startSpan(ctx, "mint.Initialize")
	defer func() { endSpan(span, err) }()

	if caller == (common.Address{}) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller is required")
	}
	if feeTo == (common.Address{}) || verifier == (common.Address{}) {
		return nil, dErrors.New(dErrors.CodeValidation, "fee recipient and verifier must not be the zero address")
	}

	var settings *models.Settings
	err = s.tx.RunInTx(ctx, func(ctx context.Context, store ports.Store) error {
		_, err := store.Settings(ctx)
		if err == nil {
			return dErrors.New(dErrors.CodeAlreadyInitialized, "controller is already initialized")
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load settings")
		}

		now, _ := unixNow(ctx)
		settings = &models.Settings{Owner: caller, FeeTo: feeTo, Verifier: verifier, InitializedAt: now}
		if err := s.emit(ctx, store, caller, events.Initialized{
			Owner:    events.Address(caller),
			FeeTo:    events.Address(feeTo),
			Verifier: events.Address(verifier),
		}); err != nil {
			return err
		}
		if err := store.SaveSettings(ctx, settings); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save settings")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, "controller_initialized",
		"owner", caller.Hex(),
		"fee_to", feeTo.Hex(),
		"verifier", verifier.Hex(),
	)
	s.incGovernance("initialize")
	return settings, nil
}

// Bootstrap initializes from configuration when the controller has no
// settings yet. It reports whether it initialized.
func (s *Service) Bootstrap(ctx context.Context, owner, feeTo, verifier common.Address) (bool, error) {
	_, err := s.Initialize(ctx, owner, feeTo, verifier)
	if dErrors.HasCode(err, dErrors.CodeAlreadyInitialized) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SetFeeTo changes the fee recipient. Owner only.
func (s *Service) SetFeeTo(ctx context.Context, caller, feeTo common.Address) (_ *models.Settings, err error) {
	ctx, span := s.startSpan(ctx, "mint.SetFeeTo")
	defer func() { endSpan(span, err) }()

	var settings *models.Settings
	var old common.Address
	err = s.tx.RunInTx(ctx, func(ctx context.Context, store ports.Store) error {
		current, err := loadSettings(ctx, store)
		if err != nil {
			return err
		}
		if err := current.RequireOwner(caller); err != nil {
			return err
		}
		if err := models.CanChangeAddress("fee recipient", current.FeeTo, feeTo); err != nil {
			return err
		}
		if err := s.emit(ctx, store, caller, events.FeeToChanged{Old: events.Address(current.FeeTo), New: events.Address(feeTo)}); err != nil {
			return err
		}
		old = current.FeeTo
		current.FeeTo = feeTo
		if err := store.SaveSettings(ctx, current); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save settings")
		}
		settings = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, "fee_to_changed", "old", old.Hex(), "new", feeTo.Hex())
	s.incGovernance("set_fee_to")
	return settings, nil
}

// SetVerifier changes the trust authority. Owner only.
func (s *Service) SetVerifier(ctx context.Context, caller, verifier common.Address) (_ *models.Settings, err error) {
	ctx, span := s.startSpan(ctx, "mint.SetVerifier")
	defer func() { endSpan(span, err) }()

	var settings *models.Settings
	var old common.Address
	err = s.tx.RunInTx(ctx, func(ctx context.Context, store ports.Store) error {
		current, err := loadSettings(ctx, store)
		if err != nil {
			return err
		}
		if err := current.RequireOwner(caller); err != nil {
			return err
		}
		if err := models.CanChangeAddress("verifier", current.Verifier, verifier); err != nil {
			return err
		}
		if err := s.emit(ctx, store, caller, events.VerifierChanged{Old: events.Address(current.Verifier), New: events.Address(verifier)}); err != nil {
			return err
		}
		old = current.Verifier
		current.Verifier = verifier
		if err := store.SaveSettings(ctx, current); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save settings")
		}
		settings = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, "verifier_changed", "old", old.Hex(), "new", verifier.Hex())
	s.incGovernance("set_verifier")
	return settings, nil
}

// Withdraw sweeps the controller's own balance of token (zero address for
// native currency) to the owner. Owner only.
func (s *Service) Withdraw(ctx context.Context, caller, token common.Address) (_ *models.Withdrawal, err error) {
	ctx, span := s.startSpan(ctx, "mint.Withdraw", attribute.String("token", token.Hex()))
	defer func() { endSpan(span, err) }()

	var result *models.Withdrawal
	err = s.tx.RunInTx(ctx, func(ctx context.Context, store ports.Store) error {
		settings, err := loadSettings(ctx, store)
		if err != nil {
			return err
		}
		if err := settings.RequireOwner(caller); err != nil {
			return err
		}

		controller := s.host.Controller()
		var balance *big.Int
		if token == payment.NativeAsset {
			balance, err = s.host.Bank(store).BalanceOf(ctx, controller)
		} else {
			balance, err = s.host.PaymentToken(store, token).BalanceOf(ctx, controller)
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read controller balance")
		}
		if balance.Sign() == 0 {
			return dErrors.New(dErrors.CodeValidation, "nothing to withdraw")
		}

		if token == payment.NativeAsset {
			err = s.host.Bank(store).Transfer(ctx, controller, settings.Owner, balance)
		} else {
			err = s.host.PaymentToken(store, token).Transfer(ctx, settings.Owner, balance)
		}
		if err != nil {
			return transferError(err, "withdrawal failed")
		}
		if err := s.emit(ctx, store, caller, events.NewWithdrawn(token, settings.Owner, balance)); err != nil {
			return err
		}
		result = &models.Withdrawal{Token: token, To: settings.Owner, Amount: balance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, "withdrawn",
		"token", token.Hex(),
		"to", result.To.Hex(),
		"amount", result.Amount.String(),
	)
	s.incGovernance("withdraw")
	return result, nil
}

func transferError(err error, msg string) error {
	if errors.Is(err, payment.ErrTransferFailed) || errors.Is(err, payment.ErrInvalidAmount) {
		return dErrors.Wrap(err, dErrors.CodeTransferFailed, msg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func (s *Service) incGovernance(kind string) {
	if s.metrics != nil {
		s.metrics.IncGovernance(kind)
	}
}
