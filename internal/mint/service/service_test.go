package service

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"mintgate/internal/chain"
	"mintgate/internal/mint/metrics"
	"mintgate/internal/mint/models"
	"mintgate/internal/mint/store"
	"mintgate/internal/payment"
	"mintgate/internal/signing"
	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/requestcontext"
)

// =============================================================================
// Mint Service Test Suite
// =============================================================================
// The suite runs the service against the in-memory ledger and the real host
// components, so settlement, issuance and the event log are observed exactly
// as a transaction leaves them.

var (
	controllerAddr = common.HexToAddress("0x00000000000000000000000000000000000c0de1")
	ownerAddr      = common.HexToAddress("0x000000000000000000000000000000000000a11c")
	feeToAddr      = common.HexToAddress("0x000000000000000000000000000000000000fee5")
	artistAddr     = common.HexToAddress("0x00000000000000000000000000000000000a7715")
	collectorAddr  = common.HexToAddress("0x00000000000000000000000000000000000c011e")
	strangerAddr   = common.HexToAddress("0x0000000000000000000000000000000000005eed")
	usdAddr        = common.HexToAddress("0x0000000000000000000000000000000000000da1")
)

const genesis int64 = 1_700_000_000

type MintServiceSuite struct {
	suite.Suite
	store        *store.InMemory
	host         *chain.Host
	registry     *prometheus.Registry
	metrics      *metrics.Metrics
	service      *Service
	verifierKey  *ecdsa.PrivateKey
	verifierAddr common.Address
	signer       *signing.Signer
}

func TestMintServiceSuite(t *testing.T) {
	suite.Run(t, new(MintServiceSuite))
}

func (s *MintServiceSuite) SetupTest() {
	key, err := crypto.GenerateKey()
	s.Require().NoError(err)
	s.verifierKey = key
	s.verifierAddr = crypto.PubkeyToAddress(key.PublicKey)
	s.signer = signing.NewSigner(key, signing.PersonalSign)

	s.host, err = chain.New(big.NewInt(1337), controllerAddr)
	s.Require().NoError(err)
	s.store = store.NewInMemory()
	s.registry = prometheus.NewRegistry()
	s.metrics = metrics.New(s.registry)
	s.service = New(s.store, s.host, WithMetrics(s.metrics))
}

// =============================================================================
// Helpers
// =============================================================================

func at(unix int64) context.Context {
	return requestcontext.WithTime(context.Background(), time.Unix(unix, 0))
}

func (s *MintServiceSuite) initialize() {
	_, err := s.service.Initialize(at(genesis), ownerAddr, feeToAddr, s.verifierAddr)
	s.Require().NoError(err)
}

func (s *MintServiceSuite) openCollection(paymentToken common.Address, mintCap uint64) *models.Collection {
	c, err := s.service.CreateCollection(at(genesis), artistAddr, models.CollectionSpec{
		KeyID:        "key-1",
		Name:         "Genesis",
		Symbol:       "GEN",
		BaseURI:      "ipfs://base/",
		PaymentToken: paymentToken,
		MintCap:      mintCap,
	})
	s.Require().NoError(err)
	return c
}

func (s *MintServiceSuite) scheduledCollection(start, end int64) *models.Collection {
	c, err := s.service.CreateCollection(at(genesis), artistAddr, models.CollectionSpec{
		Name:      "Scheduled",
		Symbol:    "SCH",
		MintCap:   10,
		StartTime: start,
		EndTime:   end,
	})
	s.Require().NoError(err)
	return c
}

func (s *MintServiceSuite) credit(asset, holder common.Address, amount int64) {
	err := store.SeedBalances(context.Background(), s.store, []store.SeedBalance{
		{Asset: asset, Holder: holder, Amount: big.NewInt(amount)},
	})
	s.Require().NoError(err)
}

func (s *MintServiceSuite) balance(asset, holder common.Address) int64 {
	var b *big.Int
	var err error
	if asset == payment.NativeAsset {
		b, err = s.service.NativeBalance(context.Background(), holder)
	} else {
		b, err = s.service.TokenBalance(context.Background(), asset, holder)
	}
	s.Require().NoError(err)
	return b.Int64()
}

func (s *MintServiceSuite) eventNames() []string {
	page, err := s.service.Events(context.Background(), 0, 0)
	s.Require().NoError(err)
	names := make([]string, 0, len(page))
	for _, e := range page {
		names = append(names, e.Name)
	}
	return names
}

func (s *MintServiceSuite) requireCode(err error, code dErrors.Code) {
	s.T().Helper()
	s.Require().Error(err)
	s.Equal(code, dErrors.CodeOf(err), err.Error())
}

// =============================================================================
// Governance Tests
// =============================================================================

func (s *MintServiceSuite) TestInitialize() {
	s.Run("caller becomes owner and Initialized is logged", func() {
		settings, err := s.service.Initialize(at(genesis), ownerAddr, feeToAddr, s.verifierAddr)
		s.Require().NoError(err)
		s.Equal(ownerAddr, settings.Owner)
		s.Equal(feeToAddr, settings.FeeTo)
		s.Equal(s.verifierAddr, settings.Verifier)
		s.Equal([]string{"Initialized"}, s.eventNames())
	})

	s.Run("second initialize is rejected", func() {
		_, err := s.service.Initialize(at(genesis), strangerAddr, feeToAddr, s.verifierAddr)
		s.requireCode(err, dErrors.CodeAlreadyInitialized)

		settings, err := s.service.Settings(context.Background())
		s.Require().NoError(err)
		s.Equal(ownerAddr, settings.Owner)
	})
}

func (s *MintServiceSuite) TestInitializeValidation() {
	s.Run("zero fee recipient", func() {
		_, err := s.service.Initialize(at(genesis), ownerAddr, common.Address{}, s.verifierAddr)
		s.requireCode(err, dErrors.CodeValidation)
	})
	s.Run("zero verifier", func() {
		_, err := s.service.Initialize(at(genesis), ownerAddr, feeToAddr, common.Address{})
		s.requireCode(err, dErrors.CodeValidation)
	})
	s.Run("settings read before initialize", func() {
		_, err := s.service.Settings(context.Background())
		s.requireCode(err, dErrors.CodeNotInitialized)
	})
}

func (s *MintServiceSuite) TestBootstrap() {
	done, err := s.service.Bootstrap(at(genesis), ownerAddr, feeToAddr, s.verifierAddr)
	s.Require().NoError(err)
	s.True(done)

	done, err = s.service.Bootstrap(at(genesis), ownerAddr, feeToAddr, s.verifierAddr)
	s.Require().NoError(err)
	s.False(done)
	s.Equal([]string{"Initialized"}, s.eventNames())
}

func (s *MintServiceSuite) TestSetFeeTo() {
	s.initialize()
	newFeeTo := common.HexToAddress("0x000000000000000000000000000000000000fee6")

	s.Run("non-owner is forbidden", func() {
		_, err := s.service.SetFeeTo(at(genesis), strangerAddr, newFeeTo)
		s.requireCode(err, dErrors.CodeForbidden)
	})
	s.Run("zero address is rejected", func() {
		_, err := s.service.SetFeeTo(at(genesis), ownerAddr, common.Address{})
		s.requireCode(err, dErrors.CodeValidation)
	})
	s.Run("unchanged address is rejected", func() {
		_, err := s.service.SetFeeTo(at(genesis), ownerAddr, feeToAddr)
		s.requireCode(err, dErrors.CodeValidation)
	})
	s.Run("owner changes only the fee recipient", func() {
		settings, err := s.service.SetFeeTo(at(genesis), ownerAddr, newFeeTo)
		s.Require().NoError(err)
		s.Equal(newFeeTo, settings.FeeTo)
		s.Equal(s.verifierAddr, settings.Verifier)

		page, err := s.service.Events(context.Background(), 0, 0)
		s.Require().NoError(err)
		last := page[len(page)-1]
		s.Equal("FeeToChanged", last.Name)
		s.JSONEq(`{"oldFeeTo":"`+feeToAddr.Hex()+`","newFeeTo":"`+newFeeTo.Hex()+`"}`, string(last.Payload))
	})
}

func (s *MintServiceSuite) TestSetVerifier() {
	s.initialize()
	newVerifier := common.HexToAddress("0x0000000000000000000000000000000000000b0b")

	s.Run("non-owner is forbidden", func() {
		_, err := s.service.SetVerifier(at(genesis), strangerAddr, newVerifier)
		s.requireCode(err, dErrors.CodeForbidden)
	})
	s.Run("owner changes only the verifier", func() {
		settings, err := s.service.SetVerifier(at(genesis), ownerAddr, newVerifier)
		s.Require().NoError(err)
		s.Equal(newVerifier, settings.Verifier)
		s.Equal(feeToAddr, settings.FeeTo)
		s.Equal([]string{"Initialized", "VerifierChanged"}, s.eventNames())
	})
	s.Run("requires initialization", func() {
		fresh := New(store.NewInMemory(), s.host)
		_, err := fresh.SetVerifier(at(genesis), ownerAddr, newVerifier)
		s.requireCode(err, dErrors.CodeNotInitialized)
	})
}

func (s *MintServiceSuite) TestWithdraw() {
	s.initialize()

	s.Run("non-owner is forbidden", func() {
		_, err := s.service.Withdraw(at(genesis), strangerAddr, payment.NativeAsset)
		s.requireCode(err, dErrors.CodeForbidden)
	})
	s.Run("empty custody is rejected", func() {
		_, err := s.service.Withdraw(at(genesis), ownerAddr, payment.NativeAsset)
		s.requireCode(err, dErrors.CodeValidation)
	})
	s.Run("native custody is swept to the owner", func() {
		s.credit(payment.NativeAsset, controllerAddr, 40)

		w, err := s.service.Withdraw(at(genesis), ownerAddr, payment.NativeAsset)
		s.Require().NoError(err)
		s.Equal(ownerAddr, w.To)
		s.Equal(int64(40), w.Amount.Int64())
		s.Equal(int64(0), s.balance(payment.NativeAsset, controllerAddr))
		s.Equal(int64(40), s.balance(payment.NativeAsset, ownerAddr))
	})
	s.Run("token custody is swept to the owner", func() {
		s.credit(usdAddr, controllerAddr, 7)

		w, err := s.service.Withdraw(at(genesis), ownerAddr, usdAddr)
		s.Require().NoError(err)
		s.Equal(int64(7), w.Amount.Int64())
		s.Equal(int64(7), s.balance(usdAddr, ownerAddr))

		page, err := s.service.Events(context.Background(), 0, 0)
		s.Require().NoError(err)
		last := page[len(page)-1]
		s.Equal("Withdrawn", last.Name)
		s.JSONEq(`{"token":"`+usdAddr.Hex()+`","to":"`+ownerAddr.Hex()+`","amount":"7"}`, string(last.Payload))
	})
	s.Equal(float64(2), testutil.ToFloat64(s.metrics.GovernanceChanges.WithLabelValues("withdraw")))
}

// =============================================================================
// Collection Registry Tests
// =============================================================================

func (s *MintServiceSuite) TestCreateCollection() {
	s.Run("assigns sequential ids and deterministic issuer addresses", func() {
		first := s.openCollection(payment.NativeAsset, 5)
		second := s.openCollection(usdAddr, 5)

		s.Equal(uint64(1), first.ID)
		s.Equal(uint64(2), second.ID)
		s.Equal(s.host.IssuerAddress(1), first.CollectionAddress)
		s.Equal(s.host.IssuerAddress(2), second.CollectionAddress)
		s.Equal(artistAddr, first.Artist)

		count, err := s.service.CollectionCount(context.Background())
		s.Require().NoError(err)
		s.Equal(uint64(2), count)

		ids, err := s.service.CollectionsByArtist(context.Background(), artistAddr)
		s.Require().NoError(err)
		s.Equal([]uint64{1, 2}, ids)
		s.Equal([]string{"CollectionCreated", "CollectionCreated"}, s.eventNames())
		s.Equal(float64(2), testutil.ToFloat64(s.metrics.CollectionsCreated))
	})

	s.Run("artist with no collections lists none", func() {
		ids, err := s.service.CollectionsByArtist(context.Background(), strangerAddr)
		s.Require().NoError(err)
		s.Empty(ids)
	})

	s.Run("unknown collection is not found", func() {
		_, err := s.service.Collection(context.Background(), 99)
		s.requireCode(err, dErrors.CodeNotFound)
	})
}

func (s *MintServiceSuite) TestCreateCollectionValidation() {
	cases := map[string]models.CollectionSpec{
		"zero cap":            {Name: "n", Symbol: "s", MintCap: 0},
		"start in the past":   {Name: "n", Symbol: "s", MintCap: 1, StartTime: genesis - 1},
		"start now":           {Name: "n", Symbol: "s", MintCap: 1, StartTime: genesis},
		"end before start":    {Name: "n", Symbol: "s", MintCap: 1, StartTime: genesis + 10, EndTime: genesis + 5},
		"end equals start":    {Name: "n", Symbol: "s", MintCap: 1, StartTime: genesis + 10, EndTime: genesis + 10},
		"missing name":        {Symbol: "s", MintCap: 1},
		"missing symbol":      {Name: "n", MintCap: 1},
		"negative start time": {Name: "n", Symbol: "s", MintCap: 1, StartTime: -1},
	}
	for name, spec := range cases {
		s.Run(name, func() {
			_, err := s.service.CreateCollection(at(genesis), artistAddr, spec)
			s.requireCode(err, dErrors.CodeValidation)
		})
	}

	count, err := s.service.CollectionCount(context.Background())
	s.Require().NoError(err)
	s.Zero(count)
	s.Empty(s.eventNames())
}

func (s *MintServiceSuite) TestUpdateMintCap() {
	s.initialize()
	c := s.openCollection(payment.NativeAsset, 3)
	s.mintNative(c, 1, "hash-a")

	s.Run("non-artist is forbidden", func() {
		_, err := s.service.UpdateMintCap(at(genesis), strangerAddr, c.ID, 9)
		s.requireCode(err, dErrors.CodeForbidden)
	})
	s.Run("unchanged cap is rejected", func() {
		_, err := s.service.UpdateMintCap(at(genesis), artistAddr, c.ID, 3)
		s.requireCode(err, dErrors.CodeValidation)
	})
	s.Run("cap at current supply is rejected", func() {
		_, err := s.service.UpdateMintCap(at(genesis), artistAddr, c.ID, 1)
		s.requireCode(err, dErrors.CodeValidation)
	})
	s.Run("cap above supply is applied even after the window opened", func() {
		updated, err := s.service.UpdateMintCap(at(genesis+1000), artistAddr, c.ID, 2)
		s.Require().NoError(err)
		s.Equal(uint64(2), updated.MintCap)

		page, err := s.service.Events(context.Background(), 0, 0)
		s.Require().NoError(err)
		last := page[len(page)-1]
		s.Equal("MintCapUpdated", last.Name)
		s.JSONEq(`{"id":1,"oldCap":3,"newCap":2}`, string(last.Payload))
	})
	s.Run("unknown collection", func() {
		_, err := s.service.UpdateMintCap(at(genesis), artistAddr, 42, 10)
		s.requireCode(err, dErrors.CodeNotFound)
	})
}

func (s *MintServiceSuite) TestUpdateWindow() {
	start := genesis + 100
	end := genesis + 200

	s.Run("artist moves both ends before the window opens", func() {
		c := s.scheduledCollection(start, end)

		updated, err := s.service.UpdateStartTime(at(genesis+10), artistAddr, c.ID, start+50)
		s.Require().NoError(err)
		s.Equal(start+50, updated.StartTime)

		updated, err = s.service.UpdateEndTime(at(genesis+10), artistAddr, c.ID, 0)
		s.Require().NoError(err)
		s.Zero(updated.EndTime)
	})

	s.Run("updates are locked once the start time passes", func() {
		c := s.scheduledCollection(start, end)

		_, err := s.service.UpdateStartTime(at(start), artistAddr, c.ID, start+500)
		s.requireCode(err, dErrors.CodeWindowLocked)
		_, err = s.service.UpdateEndTime(at(start+1), artistAddr, c.ID, end+500)
		s.requireCode(err, dErrors.CodeWindowLocked)
	})

	s.Run("unbounded start is open from creation", func() {
		c := s.scheduledCollection(0, end)
		_, err := s.service.UpdateEndTime(at(genesis), artistAddr, c.ID, end+1)
		s.requireCode(err, dErrors.CodeWindowLocked)
	})

	s.Run("start must stay before end", func() {
		c := s.scheduledCollection(start, end)
		_, err := s.service.UpdateStartTime(at(genesis), artistAddr, c.ID, end)
		s.requireCode(err, dErrors.CodeValidation)
		_, err = s.service.UpdateEndTime(at(genesis), artistAddr, c.ID, start)
		s.requireCode(err, dErrors.CodeValidation)
	})

	s.Run("start must stay in the future", func() {
		c := s.scheduledCollection(start, end)
		_, err := s.service.UpdateStartTime(at(genesis+50), artistAddr, c.ID, genesis+50)
		s.requireCode(err, dErrors.CodeValidation)
	})

	s.Run("non-artist is forbidden", func() {
		c := s.scheduledCollection(start, end)
		_, err := s.service.UpdateStartTime(at(genesis), strangerAddr, c.ID, start+1)
		s.requireCode(err, dErrors.CodeForbidden)
	})
}
