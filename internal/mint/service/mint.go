package service

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel/attribute"

	"mintgate/internal/mint/events"
	"mintgate/internal/mint/models"
	"mintgate/internal/mint/ports"
	"mintgate/internal/signing"
	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/platform/sentinel"
)

// Mint issues the next token of a collection to the caller once the caller's
// authorization, payment and the collection's window and cap all check out.
// Every step runs in one transaction, so a rejected mint moves no funds and
// consumes no trait hash.
func (s *Service) Mint(ctx context.Context, req models.MintRequest) (_ *models.MintResult, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "mint.Mint",
		attribute.Int64("collection_id", int64(req.CollectionID)),
		attribute.String("caller", req.Caller.Hex()),
	)
	defer func() {
		endSpan(span, err)
		s.observeMint(err, start)
	}()

	if err := validateMintRequest(req.Caller, req.Fee, req.TraitHash); err != nil {
		return nil, err
	}
	value := req.AttachedValue()
	if value.Sign() < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "attached value must be non-negative")
	}

	var result *models.MintResult
	err = s.tx.RunInTx(ctx, func(ctx context.Context, store ports.Store) error {
		settings, err := loadSettings(ctx, store)
		if err != nil {
			return err
		}
		c, err := loadCollection(ctx, store, req.CollectionID)
		if err != nil {
			return err
		}

		consumed, err := store.IsConsumed(ctx, req.TraitHash)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check trait hash")
		}
		if consumed {
			return dErrors.New(dErrors.CodeAlreadyConsumed, "trait hash already used")
		}

		now, unix := unixNow(ctx)
		if !c.InWindow(unix) {
			return dErrors.New(dErrors.CodeWindowClosed, "collection is not minting")
		}

		if err := s.settleFee(ctx, store, c, settings.FeeTo, req.Caller, req.Fee, value); err != nil {
			return err
		}

		issuer := s.host.Issuer(store, c.CollectionAddress)
		supply, err := issuer.TotalSupply(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read total supply")
		}
		candidate := supply + 1
		if candidate > c.MintCap {
			return dErrors.Newf(dErrors.CodeCapExceeded, "collection %d reached its cap of %d", c.ID, c.MintCap)
		}

		params := signing.MintParams{
			ChainID:      s.host.ChainID(),
			CollectionID: c.ID,
			Caller:       req.Caller,
			Fee:          req.Fee,
			TokenID:      candidate,
			TraitHash:    req.TraitHash,
		}
		if !s.verifier.VerifyMint(params, req.Signature, settings.Verifier) {
			return dErrors.New(dErrors.CodeInvalidSignature, "mint authorization is not signed by the verifier")
		}

		if err := store.ConsumeHash(ctx, &models.ConsumedHash{
			Hash:         req.TraitHash,
			CollectionID: c.ID,
			TokenID:      candidate,
			ConsumedAt:   now,
		}); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeAlreadyConsumed, "trait hash already used")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to consume trait hash")
		}

		tokenID, err := issuer.Mint(ctx, req.Caller, req.URI)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "issuance failed")
		}
		if tokenID != candidate {
			return dErrors.Newf(dErrors.CodeInvariantViolation, "issuer returned token %d, expected %d", tokenID, candidate)
		}

		if err := s.emit(ctx, store, req.Caller, events.Minted{
			CollectionID:      c.ID,
			CollectionAddress: events.Address(c.CollectionAddress),
			Caller:            events.Address(req.Caller),
			URI:               req.URI,
			TokenID:           tokenID,
		}); err != nil {
			return err
		}

		result = &models.MintResult{
			CollectionID:      c.ID,
			CollectionAddress: c.CollectionAddress,
			TokenID:           tokenID,
			Owner:             req.Caller,
			URI:               req.URI,
		}
		return nil
	})
	if err != nil {
		s.logger.InfoContext(ctx, "mint rejected",
			"collection_id", req.CollectionID,
			"caller", req.Caller.Hex(),
			"code", dErrors.CodeOf(err),
		)
		return nil, err
	}

	s.logAudit(ctx, "minted",
		"collection_id", result.CollectionID,
		"token_id", result.TokenID,
		"caller", req.Caller.Hex(),
		"fee", req.Fee.String(),
	)
	return result, nil
}

// settleFee collects the mint fee for feeTo. Native fees must be attached in
// exactly the right amount and pass through the controller; token fees are
// pulled from the caller with the controller's allowance. Native value
// attached to a token-fee mint stays with the controller.
func (s *Service) settleFee(ctx context.Context, store ports.Store, c *models.Collection, feeTo, caller common.Address, fee, value *big.Int) error {
	bank := s.host.Bank(store)
	controller := s.host.Controller()

	if c.PaysNative() {
		if value.Cmp(fee) != 0 {
			return dErrors.Newf(dErrors.CodeFeeMismatch, "attached value %s does not equal fee %s", value, fee)
		}
		if err := bank.Transfer(ctx, caller, controller, value); err != nil {
			return transferError(err, "fee payment failed")
		}
		if err := bank.Transfer(ctx, controller, feeTo, value); err != nil {
			return transferError(err, "fee forwarding failed")
		}
		return nil
	}

	if value.Sign() > 0 {
		if err := bank.Transfer(ctx, caller, controller, value); err != nil {
			return transferError(err, "attached value transfer failed")
		}
	}
	if err := s.host.PaymentToken(store, c.PaymentToken).TransferFrom(ctx, caller, feeTo, fee); err != nil {
		return transferError(err, "fee transfer failed")
	}
	return nil
}

// PreflightMint reports the token id the next mint would receive and whether
// signature authorizes it, without changing any state.
func (s *Service) PreflightMint(ctx context.Context, caller common.Address, collectionID uint64, fee *big.Int, traitHash, signature []byte) (_ *models.Preflight, err error) {
	ctx, span := s.startSpan(ctx, "mint.PreflightMint", attribute.Int64("collection_id", int64(collectionID)))
	defer func() { endSpan(span, err) }()

	if err := validateMintRequest(caller, fee, traitHash); err != nil {
		return nil, err
	}

	var result *models.Preflight
	err = s.tx.View(ctx, func(ctx context.Context, store ports.Store) error {
		settings, err := loadSettings(ctx, store)
		if err != nil {
			return err
		}
		c, err := loadCollection(ctx, store, collectionID)
		if err != nil {
			return err
		}
		supply, err := s.host.Issuer(store, c.CollectionAddress).TotalSupply(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read total supply")
		}
		candidate := supply + 1
		result = &models.Preflight{
			CollectionID: c.ID,
			TokenID:      candidate,
			Verifier:     settings.Verifier,
			Valid: s.verifier.VerifyMint(signing.MintParams{
				ChainID:      s.host.ChainID(),
				CollectionID: c.ID,
				Caller:       caller,
				Fee:          fee,
				TokenID:      candidate,
				TraitHash:    traitHash,
			}, signature, settings.Verifier),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func validateMintRequest(caller common.Address, fee *big.Int, traitHash []byte) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if !signing.ValidUint256(fee) {
		return dErrors.New(dErrors.CodeValidation, "fee must be a non-negative uint256")
	}
	if len(traitHash) == 0 {
		return dErrors.New(dErrors.CodeValidation, "trait hash is required")
	}
	return nil
}

func (s *Service) observeMint(err error, start time.Time) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = string(dErrors.CodeOf(err))
	}
	s.metrics.ObserveMint(outcome, start)
}
