package service

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"mintgate/internal/chain"
	"mintgate/internal/mint/models"
	"mintgate/internal/mint/ports"
	"mintgate/internal/payment"
	"mintgate/internal/signing"
	dErrors "mintgate/pkg/domain-errors"
)

// =============================================================================
// Mint Helpers
// =============================================================================

func (s *MintServiceSuite) authorize(collectionID uint64, caller common.Address, fee int64, tokenID uint64, hash []byte) []byte {
	sig, err := s.signer.SignMint(signing.MintParams{
		ChainID:      big.NewInt(1337),
		CollectionID: collectionID,
		Caller:       caller,
		Fee:          big.NewInt(fee),
		TokenID:      tokenID,
		TraitHash:    hash,
	})
	s.Require().NoError(err)
	return sig
}

func (s *MintServiceSuite) request(c *models.Collection, fee int64, tokenID uint64, hash string) models.MintRequest {
	h := []byte(hash)
	return models.MintRequest{
		Caller:       collectorAddr,
		CollectionID: c.ID,
		URI:          hash + ".json",
		Fee:          big.NewInt(fee),
		TraitHash:    h,
		Signature:    s.authorize(c.ID, collectorAddr, fee, tokenID, h),
	}
}

// mintNative mints tokenID of a native-fee collection with a fee of 10.
func (s *MintServiceSuite) mintNative(c *models.Collection, tokenID uint64, hash string) *models.MintResult {
	s.credit(payment.NativeAsset, collectorAddr, 10)
	req := s.request(c, 10, tokenID, hash)
	req.Value = big.NewInt(10)
	result, err := s.service.Mint(at(genesis), req)
	s.Require().NoError(err)
	return result
}

func (s *MintServiceSuite) requireUntouched(c *models.Collection, hash string) {
	s.T().Helper()
	consumed, err := s.service.IsConsumed(context.Background(), []byte(hash))
	s.Require().NoError(err)
	s.False(consumed, "trait hash must not be consumed")

	next, err := s.service.NextTokenID(context.Background(), c.ID)
	s.Require().NoError(err)
	s.Equal(uint64(1), next, "no token must be issued")
}

// =============================================================================
// Mint Tests: Settlement
// =============================================================================

func (s *MintServiceSuite) TestMintNativeFee() {
	s.initialize()
	c := s.openCollection(payment.NativeAsset, 5)
	s.credit(payment.NativeAsset, collectorAddr, 15)

	req := s.request(c, 10, 1, "trait-1")
	req.Value = big.NewInt(10)
	result, err := s.service.Mint(at(genesis), req)
	s.Require().NoError(err)

	s.Equal(uint64(1), result.TokenID)
	s.Equal(c.CollectionAddress, result.CollectionAddress)
	s.Equal(int64(5), s.balance(payment.NativeAsset, collectorAddr))
	s.Equal(int64(10), s.balance(payment.NativeAsset, feeToAddr))
	s.Equal(int64(0), s.balance(payment.NativeAsset, controllerAddr))

	token, err := s.service.Token(context.Background(), c.ID, 1)
	s.Require().NoError(err)
	s.Equal(collectorAddr, token.Owner)
	s.Equal("ipfs://base/trait-1.json", token.URI)

	page, err := s.service.Events(context.Background(), 0, 0)
	s.Require().NoError(err)
	last := page[len(page)-1]
	s.Equal("Minted", last.Name)
	s.Equal(collectorAddr.Hex(), last.Actor)
	s.Equal("collection:1", last.AggregateID)
	s.JSONEq(`{
		"collectionId": 1,
		"collectionAddress": "`+c.CollectionAddress.Hex()+`",
		"caller": "`+collectorAddr.Hex()+`",
		"uri": "trait-1.json",
		"tokenId": 1
	}`, string(last.Payload))
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.Mints.WithLabelValues("ok")))
}

func (s *MintServiceSuite) TestMintNativeFeeMismatch() {
	s.initialize()
	c := s.openCollection(payment.NativeAsset, 5)
	s.credit(payment.NativeAsset, collectorAddr, 100)

	for name, value := range map[string]*big.Int{
		"underpaid":    big.NewInt(9),
		"overpaid":     big.NewInt(11),
		"nothing sent": nil,
	} {
		s.Run(name, func() {
			req := s.request(c, 10, 1, "trait-1")
			req.Value = value
			_, err := s.service.Mint(at(genesis), req)
			s.requireCode(err, dErrors.CodeFeeMismatch)

			s.Equal(int64(100), s.balance(payment.NativeAsset, collectorAddr))
			s.Equal(int64(0), s.balance(payment.NativeAsset, feeToAddr))
			s.requireUntouched(c, "trait-1")
		})
	}
	s.Equal(float64(3), testutil.ToFloat64(s.metrics.Mints.WithLabelValues(string(dErrors.CodeFeeMismatch))))
}

func (s *MintServiceSuite) TestMintNativeInsufficientFunds() {
	s.initialize()
	c := s.openCollection(payment.NativeAsset, 5)
	s.credit(payment.NativeAsset, collectorAddr, 4)

	req := s.request(c, 10, 1, "trait-1")
	req.Value = big.NewInt(10)
	_, err := s.service.Mint(at(genesis), req)
	s.requireCode(err, dErrors.CodeTransferFailed)
	s.Equal(int64(4), s.balance(payment.NativeAsset, collectorAddr))
	s.requireUntouched(c, "trait-1")
}

func (s *MintServiceSuite) TestMintTokenFee() {
	s.initialize()
	c := s.openCollection(usdAddr, 5)
	s.credit(usdAddr, collectorAddr, 100)

	s.Run("fails without an allowance for the controller", func() {
		_, err := s.service.Mint(at(genesis), s.request(c, 25, 1, "trait-1"))
		s.requireCode(err, dErrors.CodeTransferFailed)
		s.Equal(int64(100), s.balance(usdAddr, collectorAddr))
		s.requireUntouched(c, "trait-1")
	})

	s.Run("pulls the fee to the fee recipient once approved", func() {
		s.Require().NoError(s.service.Approve(at(genesis), collectorAddr, usdAddr, controllerAddr, big.NewInt(30)))

		_, err := s.service.Mint(at(genesis), s.request(c, 25, 1, "trait-1"))
		s.Require().NoError(err)
		s.Equal(int64(75), s.balance(usdAddr, collectorAddr))
		s.Equal(int64(25), s.balance(usdAddr, feeToAddr))

		allowance, err := s.service.Allowance(context.Background(), usdAddr, collectorAddr, controllerAddr)
		s.Require().NoError(err)
		s.Equal(int64(5), allowance.Int64())
	})

	s.Run("attached native value stays in controller custody", func() {
		s.Require().NoError(s.service.Approve(at(genesis), collectorAddr, usdAddr, controllerAddr, big.NewInt(25)))
		s.credit(payment.NativeAsset, collectorAddr, 3)

		req := s.request(c, 25, 2, "trait-2")
		req.Value = big.NewInt(3)
		_, err := s.service.Mint(at(genesis), req)
		s.Require().NoError(err)
		s.Equal(int64(3), s.balance(payment.NativeAsset, controllerAddr))

		w, err := s.service.Withdraw(at(genesis), ownerAddr, payment.NativeAsset)
		s.Require().NoError(err)
		s.Equal(int64(3), w.Amount.Int64())
	})
}

// =============================================================================
// Mint Tests: Replay, Cap and Window
// =============================================================================

func (s *MintServiceSuite) TestReplayAcrossCollections() {
	s.initialize()
	first := s.openCollection(payment.NativeAsset, 5)
	second := s.openCollection(payment.NativeAsset, 5)

	s.mintNative(first, 1, "shared-trait")

	s.credit(payment.NativeAsset, collectorAddr, 10)
	req := s.request(second, 10, 1, "shared-trait")
	req.Value = big.NewInt(10)
	_, err := s.service.Mint(at(genesis), req)
	s.requireCode(err, dErrors.CodeAlreadyConsumed)
	s.Equal(int64(10), s.balance(payment.NativeAsset, collectorAddr))

	consumed, err := s.service.IsConsumed(context.Background(), []byte("shared-trait"))
	s.Require().NoError(err)
	s.True(consumed)

	next, err := s.service.NextTokenID(context.Background(), second.ID)
	s.Require().NoError(err)
	s.Equal(uint64(1), next)

	s.Run("the same collection rejects it too", func() {
		req := s.request(first, 10, 2, "shared-trait")
		req.Value = big.NewInt(10)
		_, err := s.service.Mint(at(genesis), req)
		s.requireCode(err, dErrors.CodeAlreadyConsumed)
	})
}

func (s *MintServiceSuite) TestMintCapScenario() {
	s.initialize()
	c := s.openCollection(payment.NativeAsset, 2)

	s.Equal(uint64(1), s.mintNative(c, 1, "trait-1").TokenID)
	s.Equal(uint64(2), s.mintNative(c, 2, "trait-2").TokenID)

	s.credit(payment.NativeAsset, collectorAddr, 10)
	req := s.request(c, 10, 3, "trait-3")
	req.Value = big.NewInt(10)
	_, err := s.service.Mint(at(genesis), req)
	s.requireCode(err, dErrors.CodeCapExceeded)

	consumed, err := s.service.IsConsumed(context.Background(), []byte("trait-3"))
	s.Require().NoError(err)
	s.False(consumed)
	s.Equal(int64(10), s.balance(payment.NativeAsset, collectorAddr))

	s.Run("raising the cap makes the next id mintable", func() {
		_, err := s.service.UpdateMintCap(at(genesis), artistAddr, c.ID, 3)
		s.Require().NoError(err)
		_, err = s.service.Mint(at(genesis), req)
		s.Require().NoError(err)

		next, err := s.service.NextTokenID(context.Background(), c.ID)
		s.Require().NoError(err)
		s.Equal(uint64(4), next)
	})
}

func (s *MintServiceSuite) TestMintWindow() {
	s.initialize()
	start := genesis + 100
	end := genesis + 200
	c := s.scheduledCollection(start, end)

	mintAt := func(now int64, hash string) error {
		_, err := s.service.Mint(at(now), s.request(c, 0, 1, hash))
		return err
	}

	s.Run("before start", func() {
		s.requireCode(mintAt(start-1, "early"), dErrors.CodeWindowClosed)
	})
	s.Run("after end", func() {
		s.requireCode(mintAt(end+1, "late"), dErrors.CodeWindowClosed)
	})
	s.Run("end is inclusive", func() {
		s.Require().NoError(mintAt(end, "on-time"))
	})
}

func (s *MintServiceSuite) TestMintZeroFee() {
	s.initialize()
	c := s.openCollection(payment.NativeAsset, 5)

	result, err := s.service.Mint(at(genesis), s.request(c, 0, 1, "free"))
	s.Require().NoError(err)
	s.Equal(uint64(1), result.TokenID)
}

// =============================================================================
// Mint Tests: Authorization
// =============================================================================

func (s *MintServiceSuite) TestMintSignatureBinding() {
	s.initialize()
	c := s.openCollection(payment.NativeAsset, 5)
	s.openCollection(payment.NativeAsset, 5)
	hash := []byte("trait-1")

	otherKey, err := crypto.GenerateKey()
	s.Require().NoError(err)

	base := signing.MintParams{
		ChainID:      big.NewInt(1337),
		CollectionID: c.ID,
		Caller:       collectorAddr,
		Fee:          big.NewInt(10),
		TokenID:      1,
		TraitHash:    hash,
	}
	cases := map[string]struct {
		signer *signing.Signer
		mutate func(p *signing.MintParams)
	}{
		"fee tampering":          {s.signer, func(p *signing.MintParams) { p.Fee = big.NewInt(1) }},
		"token id substitution":  {s.signer, func(p *signing.MintParams) { p.TokenID = 2 }},
		"hash substitution":      {s.signer, func(p *signing.MintParams) { p.TraitHash = []byte("trait-2") }},
		"cross-collection":       {s.signer, func(p *signing.MintParams) { p.CollectionID = 2 }},
		"cross-chain":            {s.signer, func(p *signing.MintParams) { p.ChainID = big.NewInt(1) }},
		"different caller":       {s.signer, func(p *signing.MintParams) { p.Caller = strangerAddr }},
		"not the verifier's key": {signing.NewSigner(otherKey, signing.PersonalSign), func(*signing.MintParams) {}},
	}

	s.credit(payment.NativeAsset, collectorAddr, 10)
	for name, tc := range cases {
		s.Run(name, func() {
			signed := base
			tc.mutate(&signed)
			sig, err := tc.signer.SignMint(signed)
			s.Require().NoError(err)

			_, err = s.service.Mint(at(genesis), models.MintRequest{
				Caller:       collectorAddr,
				CollectionID: c.ID,
				URI:          "x.json",
				Fee:          big.NewInt(10),
				TraitHash:    hash,
				Signature:    sig,
				Value:        big.NewInt(10),
			})
			s.requireCode(err, dErrors.CodeInvalidSignature)
			s.Equal(int64(10), s.balance(payment.NativeAsset, collectorAddr))
			s.requireUntouched(c, "trait-1")
		})
	}

	s.Run("a garbage signature is rejected the same way", func() {
		req := s.request(c, 10, 1, "trait-1")
		req.Value = big.NewInt(10)
		req.Signature = []byte{0x01, 0x02}
		_, err := s.service.Mint(at(genesis), req)
		s.requireCode(err, dErrors.CodeInvalidSignature)
	})

	s.Run("a rotated verifier invalidates outstanding authorizations", func() {
		_, err := s.service.SetVerifier(at(genesis), ownerAddr, crypto.PubkeyToAddress(otherKey.PublicKey))
		s.Require().NoError(err)

		req := s.request(c, 10, 1, "trait-1")
		req.Value = big.NewInt(10)
		_, err = s.service.Mint(at(genesis), req)
		s.requireCode(err, dErrors.CodeInvalidSignature)
	})
}

func (s *MintServiceSuite) TestMintPreconditions() {
	s.Run("controller must be initialized", func() {
		c := s.openCollection(payment.NativeAsset, 5)
		_, err := s.service.Mint(at(genesis), s.request(c, 0, 1, "trait-1"))
		s.requireCode(err, dErrors.CodeNotInitialized)
	})

	s.initialize()

	s.Run("unknown collection", func() {
		_, err := s.service.Mint(at(genesis), models.MintRequest{
			Caller:       collectorAddr,
			CollectionID: 9,
			Fee:          big.NewInt(0),
			TraitHash:    []byte("trait-1"),
		})
		s.requireCode(err, dErrors.CodeNotFound)
	})
	s.Run("empty trait hash", func() {
		_, err := s.service.Mint(at(genesis), models.MintRequest{Caller: collectorAddr, CollectionID: 1, Fee: big.NewInt(0)})
		s.requireCode(err, dErrors.CodeValidation)
	})
	s.Run("negative fee", func() {
		_, err := s.service.Mint(at(genesis), models.MintRequest{
			Caller:       collectorAddr,
			CollectionID: 1,
			Fee:          big.NewInt(-1),
			TraitHash:    []byte("trait-1"),
		})
		s.requireCode(err, dErrors.CodeValidation)
	})
	s.Run("anonymous caller", func() {
		_, err := s.service.Mint(at(genesis), models.MintRequest{CollectionID: 1, Fee: big.NewInt(0), TraitHash: []byte("t")})
		s.requireCode(err, dErrors.CodeUnauthorized)
	})
}

// skewedHost wraps the real host with an issuer that misreports minted ids.
type skewedHost struct {
	*chain.Host
}

func (h skewedHost) Issuer(store ports.Store, address common.Address) ports.Issuer {
	return skewedIssuer{Issuer: h.Host.Issuer(store, address)}
}

type skewedIssuer struct {
	ports.Issuer
}

func (i skewedIssuer) Mint(ctx context.Context, to common.Address, uri string) (uint64, error) {
	id, err := i.Issuer.Mint(ctx, to, uri)
	return id + 1, err
}

func (s *MintServiceSuite) TestMintIssuerInvariant() {
	s.initialize()
	c := s.openCollection(payment.NativeAsset, 5)
	s.credit(payment.NativeAsset, collectorAddr, 10)
	before := len(s.eventNames())

	svc := New(s.store, skewedHost{Host: s.host})
	req := s.request(c, 10, 1, "trait-1")
	req.Value = big.NewInt(10)
	_, err := svc.Mint(at(genesis), req)
	s.requireCode(err, dErrors.CodeInvariantViolation)

	s.Equal(int64(10), s.balance(payment.NativeAsset, collectorAddr))
	s.Equal(int64(0), s.balance(payment.NativeAsset, feeToAddr))
	s.requireUntouched(c, "trait-1")
	s.Len(s.eventNames(), before)
}

// =============================================================================
// Preflight and View Tests
// =============================================================================

func (s *MintServiceSuite) TestPreflightMint() {
	s.initialize()
	c := s.openCollection(payment.NativeAsset, 5)
	hash := []byte("trait-1")

	s.Run("valid authorization for the next id", func() {
		sig := s.authorize(c.ID, collectorAddr, 10, 1, hash)
		pre, err := s.service.PreflightMint(context.Background(), collectorAddr, c.ID, big.NewInt(10), hash, sig)
		s.Require().NoError(err)
		s.True(pre.Valid)
		s.Equal(uint64(1), pre.TokenID)
		s.Equal(s.verifierAddr, pre.Verifier)
	})

	s.Run("authorization for a later id is not valid yet", func() {
		sig := s.authorize(c.ID, collectorAddr, 10, 2, hash)
		pre, err := s.service.PreflightMint(context.Background(), collectorAddr, c.ID, big.NewInt(10), hash, sig)
		s.Require().NoError(err)
		s.False(pre.Valid)
	})

	s.Run("preflight changes nothing", func() {
		s.requireUntouched(c, "trait-1")
	})
}

func (s *MintServiceSuite) TestTokenViews() {
	s.initialize()
	c := s.openCollection(payment.NativeAsset, 5)
	s.mintNative(c, 1, "trait-1")

	s.Run("unminted token is not found", func() {
		_, err := s.service.Token(context.Background(), c.ID, 2)
		s.requireCode(err, dErrors.CodeNotFound)
	})
	s.Run("token of unknown collection is not found", func() {
		_, err := s.service.Token(context.Background(), 7, 1)
		s.requireCode(err, dErrors.CodeNotFound)
	})
	s.Run("empty hash lookup is rejected", func() {
		_, err := s.service.IsConsumed(context.Background(), nil)
		s.requireCode(err, dErrors.CodeValidation)
	})
}

func (s *MintServiceSuite) TestEventLog() {
	s.initialize()
	c := s.openCollection(payment.NativeAsset, 5)
	s.mintNative(c, 1, "trait-1")
	s.mintNative(c, 2, "trait-2")

	all, err := s.service.Events(context.Background(), 0, 0)
	s.Require().NoError(err)
	s.Require().Len(all, 4)
	for i := 1; i < len(all); i++ {
		s.Greater(all[i].Sequence, all[i-1].Sequence)
	}

	s.Run("pages after a sequence", func() {
		page, err := s.service.Events(context.Background(), all[1].Sequence, 1)
		s.Require().NoError(err)
		s.Require().Len(page, 1)
		s.Equal(all[2].ID, page[0].ID)
	})
	s.Run("negative cursor is rejected", func() {
		_, err := s.service.Events(context.Background(), -1, 10)
		s.requireCode(err, dErrors.CodeValidation)
	})
	s.Run("rejected operations leave no event", func() {
		_, err := s.service.SetFeeTo(at(genesis), strangerAddr, strangerAddr)
		s.requireCode(err, dErrors.CodeForbidden)

		after, err := s.service.Events(context.Background(), 0, 0)
		s.Require().NoError(err)
		s.Len(after, len(all))
	})
}
