package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"mintgate/internal/mint/handler/mocks"
	"mintgate/internal/mint/models"
	dErrors "mintgate/pkg/domain-errors"
	audit "mintgate/pkg/platform/audit"
	"mintgate/pkg/testutil"
)

var (
	owner      = common.HexToAddress("0x000000000000000000000000000000000000a11c")
	feeTo      = common.HexToAddress("0x000000000000000000000000000000000000fee5")
	artist     = common.HexToAddress("0x00000000000000000000000000000000000a7715")
	collector  = common.HexToAddress("0x00000000000000000000000000000000000c011e")
	usd        = common.HexToAddress("0x0000000000000000000000000000000000000da1")
	collection = common.HexToAddress("0x00000000000000000000000000000000000001c1")
)

type MintHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestMintHandlerSuite(t *testing.T) {
	suite.Run(t, new(MintHandlerSuite))
}

func (s *MintHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))

	s.router = chi.NewRouter()
	h.RegisterPublic(s.router)
	h.RegisterProtected(s.router)
}

// Given a request, optionally as an authenticated caller.
func request(method, path, body string, caller common.Address) *http.Request {
	return testutil.AsCaller(testutil.NewJSONRequest(method, path, body), caller)
}

// When the router serves it.
func (s *MintHandlerSuite) do(req *http.Request) *httptest.ResponseRecorder {
	return testutil.DoRequest(s.router, req)
}

// Then the body decodes into v.
func (s *MintHandlerSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *MintHandlerSuite) errorCode(w *httptest.ResponseRecorder) string {
	var body map[string]string
	s.decode(w, &body)
	return body["error"]
}

// =============================================================================
// Governance
// =============================================================================

func (s *MintHandlerSuite) TestInitialize() {
	s.service.EXPECT().Initialize(gomock.Any(), owner, feeTo, owner).
		Return(&models.Settings{Owner: owner, FeeTo: feeTo, Verifier: owner}, nil)

	body := `{"fee_to":"` + feeTo.Hex() + `","verifier":"` + owner.Hex() + `"}`
	w := s.do(request(http.MethodPost, "/governance/initialize", body, owner))
	s.Equal(http.StatusCreated, w.Code)

	var resp SettingsResponse
	s.decode(w, &resp)
	s.Equal(owner.Hex(), resp.Owner)
	s.Equal(feeTo.Hex(), resp.FeeTo)
}

func (s *MintHandlerSuite) TestMutationsRequireCaller() {
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/governance/initialize"},
		{http.MethodPut, "/governance/fee-to"},
		{http.MethodPost, "/governance/withdraw"},
		{http.MethodPost, "/collections"},
		{http.MethodPut, "/collections/1/mint-cap"},
		{http.MethodPost, "/collections/1/mint"},
		{http.MethodPost, "/tokens/" + usd.Hex() + "/approve"},
	} {
		s.Run(tc.method+" "+tc.path, func() {
			w := s.do(request(tc.method, tc.path, `{}`, common.Address{}))
			s.Equal(http.StatusUnauthorized, w.Code)
		})
	}
}

func (s *MintHandlerSuite) TestSetFeeToForbidden() {
	s.service.EXPECT().SetFeeTo(gomock.Any(), collector, feeTo).
		Return(nil, dErrors.New(dErrors.CodeForbidden, "caller is not the owner"))

	w := s.do(request(http.MethodPut, "/governance/fee-to", `{"address":"`+feeTo.Hex()+`"}`, collector))
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal("forbidden", s.errorCode(w))
}

func (s *MintHandlerSuite) TestWithdrawAmountIsDecimalString() {
	huge := new(big.Int).Lsh(big.NewInt(1), 200)
	s.service.EXPECT().Withdraw(gomock.Any(), owner, common.Address{}).
		Return(&models.Withdrawal{Token: common.Address{}, To: owner, Amount: huge}, nil)

	w := s.do(request(http.MethodPost, "/governance/withdraw", `{}`, owner))
	s.Equal(http.StatusOK, w.Code)

	var resp WithdrawalResponse
	s.decode(w, &resp)
	s.Equal(huge.String(), resp.Amount)
}

func (s *MintHandlerSuite) TestSettingsNotInitialized() {
	s.service.EXPECT().Settings(gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeNotInitialized, "controller is not initialized"))

	w := s.do(request(http.MethodGet, "/governance/settings", "", common.Address{}))
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Equal("not_initialized", s.errorCode(w))
}

// =============================================================================
// Collections
// =============================================================================

func (s *MintHandlerSuite) TestCreateCollection() {
	s.service.EXPECT().CreateCollection(gomock.Any(), artist, models.CollectionSpec{
		KeyID: "k-1", Name: "Genesis", Symbol: "GEN", BaseURI: "ipfs://base/",
		PaymentToken: usd, MintCap: 10, StartTime: 100, EndTime: 200,
	}).Return(&models.Collection{
		ID: 1, Artist: artist, CollectionAddress: collection, Name: "Genesis", Symbol: "GEN",
		PaymentToken: usd, MintCap: 10, StartTime: 100, EndTime: 200,
	}, nil)

	body := `{"key_id":"k-1","name":" Genesis ","symbol":"GEN","base_uri":"ipfs://base/",` +
		`"payment_token":"` + usd.Hex() + `","mint_cap":10,"start_time":100,"end_time":200}`
	w := s.do(request(http.MethodPost, "/collections", body, artist))
	s.Equal(http.StatusCreated, w.Code)

	var resp CollectionResponse
	s.decode(w, &resp)
	s.Equal(uint64(1), resp.ID)
	s.Equal(collection.Hex(), resp.CollectionAddress)
}

func (s *MintHandlerSuite) TestCreateCollectionValidation() {
	for name, body := range map[string]string{
		"missing name":   `{"symbol":"S","mint_cap":1}`,
		"missing symbol": `{"name":"N","mint_cap":1}`,
		"bad token":      `{"name":"N","symbol":"S","payment_token":"usd","mint_cap":1}`,
		"negative cap":   `{"name":"N","symbol":"S","mint_cap":-1}`,
	} {
		s.Run(name, func() {
			w := s.do(request(http.MethodPost, "/collections", body, artist))
			s.Equal(http.StatusBadRequest, w.Code)
		})
	}
}

func (s *MintHandlerSuite) TestUpdateWindow() {
	s.Run("start time locked once open", func() {
		s.service.EXPECT().UpdateStartTime(gomock.Any(), artist, uint64(3), int64(500)).
			Return(nil, dErrors.New(dErrors.CodeWindowLocked, "mint window has opened"))
		w := s.do(request(http.MethodPut, "/collections/3/start-time", `{"start_time":500}`, artist))
		s.Equal(http.StatusUnprocessableEntity, w.Code)
		s.Equal("window_locked", s.errorCode(w))
	})

	s.Run("end time", func() {
		s.service.EXPECT().UpdateEndTime(gomock.Any(), artist, uint64(3), int64(900)).
			Return(&models.Collection{ID: 3, Artist: artist, EndTime: 900}, nil)
		w := s.do(request(http.MethodPut, "/collections/3/end-time", `{"end_time":900}`, artist))
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("mint cap", func() {
		s.service.EXPECT().UpdateMintCap(gomock.Any(), artist, uint64(3), uint64(7)).
			Return(&models.Collection{ID: 3, Artist: artist, MintCap: 7}, nil)
		w := s.do(request(http.MethodPut, "/collections/3/mint-cap", `{"mint_cap":7}`, artist))
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("bad id", func() {
		w := s.do(request(http.MethodPut, "/collections/abc/mint-cap", `{"mint_cap":7}`, artist))
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *MintHandlerSuite) TestArtistCollections() {
	s.service.EXPECT().CollectionsByArtist(gomock.Any(), artist).Return([]uint64{1, 4}, nil)

	w := s.do(request(http.MethodGet, "/artists/"+artist.Hex()+"/collections", "", common.Address{}))
	s.Equal(http.StatusOK, w.Code)

	var resp CollectionIDsResponse
	s.decode(w, &resp)
	s.Equal([]uint64{1, 4}, resp.CollectionIDs)
}

// =============================================================================
// Mint
// =============================================================================

func (s *MintHandlerSuite) TestMint() {
	s.service.EXPECT().Mint(gomock.Any(), models.MintRequest{
		Caller:       collector,
		CollectionID: 2,
		URI:          "7.json",
		Fee:          big.NewInt(10),
		TraitHash:    []byte{0xab, 0xcd},
		Signature:    []byte{0x01, 0x02},
		Value:        big.NewInt(10),
	}).Return(&models.MintResult{
		CollectionID: 2, CollectionAddress: collection, TokenID: 1, Owner: collector, URI: "ipfs://base/7.json",
	}, nil)

	body := `{"uri":"7.json","fee":"10","trait_hash":"0xabcd","signature":"0x0102","value":"10"}`
	w := s.do(request(http.MethodPost, "/collections/2/mint", body, collector))
	s.Equal(http.StatusCreated, w.Code)

	var resp TokenResponse
	s.decode(w, &resp)
	s.Equal(uint64(1), resp.TokenID)
	s.Equal(collector.Hex(), resp.Owner)
}

func (s *MintHandlerSuite) TestMintRejections() {
	body := `{"uri":"u","fee":"10","trait_hash":"0xabcd","signature":"0x0102"}`
	for code, status := range map[dErrors.Code]int{
		dErrors.CodeAlreadyConsumed:  http.StatusConflict,
		dErrors.CodeWindowClosed:     http.StatusUnprocessableEntity,
		dErrors.CodeCapExceeded:      http.StatusUnprocessableEntity,
		dErrors.CodeInvalidSignature: http.StatusUnauthorized,
		dErrors.CodeFeeMismatch:      http.StatusPaymentRequired,
		dErrors.CodeTransferFailed:   http.StatusPaymentRequired,
		dErrors.CodeNotFound:         http.StatusNotFound,
	} {
		s.Run(string(code), func() {
			s.service.EXPECT().Mint(gomock.Any(), gomock.Any()).Return(nil, dErrors.New(code, "rejected"))
			w := s.do(request(http.MethodPost, "/collections/2/mint", body, collector))
			s.Equal(status, w.Code)
			s.Equal(string(code), s.errorCode(w))
		})
	}
}

func (s *MintHandlerSuite) TestMintValidation() {
	for name, body := range map[string]string{
		"negative fee":     `{"fee":"-1","trait_hash":"0xab","signature":"0x01"}`,
		"fee over uint256": `{"fee":"` + new(big.Int).Lsh(big.NewInt(1), 256).String() + `","trait_hash":"0xab","signature":"0x01"}`,
		"hex fee":          `{"fee":"0x10","trait_hash":"0xab","signature":"0x01"}`,
		"unprefixed hash":  `{"fee":"1","trait_hash":"abcd","signature":"0x01"}`,
		"missing sig":      `{"fee":"1","trait_hash":"0xab"}`,
	} {
		s.Run(name, func() {
			w := s.do(request(http.MethodPost, "/collections/2/mint", body, collector))
			s.Equal(http.StatusBadRequest, w.Code)
		})
	}
}

func (s *MintHandlerSuite) TestMintMalformedSignature() {
	for name, sig := range map[string]string{
		"odd length":     "0x012",
		"bad characters": "0xzz",
		"unprefixed":     "0102",
	} {
		s.Run(name, func() {
			body := `{"fee":"1","trait_hash":"0xab","signature":"` + sig + `"}`
			w := s.do(request(http.MethodPost, "/collections/2/mint", body, collector))
			s.Equal(http.StatusUnauthorized, w.Code)
			s.Equal(string(dErrors.CodeInvalidSignature), s.errorCode(w))
		})
	}
}

func (s *MintHandlerSuite) TestPreflight() {
	s.service.EXPECT().PreflightMint(gomock.Any(), collector, uint64(2), big.NewInt(0), []byte{0xab}, []byte{0x01}).
		Return(&models.Preflight{CollectionID: 2, TokenID: 5, Verifier: owner, Valid: false}, nil)

	body := `{"caller":"` + collector.Hex() + `","fee":"0","trait_hash":"0xab","signature":"0x01"}`
	w := s.do(request(http.MethodPost, "/collections/2/mint/preflight", body, common.Address{}))
	s.Equal(http.StatusOK, w.Code)

	var resp PreflightResponse
	s.decode(w, &resp)
	s.Equal(uint64(5), resp.TokenID)
	s.False(resp.Valid)
}

// =============================================================================
// Views
// =============================================================================

func (s *MintHandlerSuite) TestTokenViews() {
	s.service.EXPECT().NextTokenID(gomock.Any(), uint64(2)).Return(uint64(4), nil)
	w := s.do(request(http.MethodGet, "/collections/2/next-token-id", "", common.Address{}))
	s.Equal(http.StatusOK, w.Code)
	var next NextTokenIDResponse
	s.decode(w, &next)
	s.Equal(uint64(4), next.NextTokenID)

	s.service.EXPECT().Token(gomock.Any(), uint64(2), uint64(9)).
		Return(nil, dErrors.New(dErrors.CodeNotFound, "token 9 does not exist"))
	w = s.do(request(http.MethodGet, "/collections/2/tokens/9", "", common.Address{}))
	s.Equal(http.StatusNotFound, w.Code)

	s.service.EXPECT().IsConsumed(gomock.Any(), []byte{0xab, 0xcd}).Return(true, nil)
	w = s.do(request(http.MethodGet, "/trait-hashes/0xABCD", "", common.Address{}))
	s.Equal(http.StatusOK, w.Code)
	var hash TraitHashResponse
	s.decode(w, &hash)
	s.Equal("0xabcd", hash.Hash)
	s.True(hash.Consumed)
}

func (s *MintHandlerSuite) TestBalances() {
	s.service.EXPECT().TokenBalance(gomock.Any(), usd, collector).Return(big.NewInt(42), nil)
	w := s.do(request(http.MethodGet, "/tokens/"+usd.Hex()+"/balances/"+collector.Hex(), "", common.Address{}))
	s.Equal(http.StatusOK, w.Code)
	var bal BalanceResponse
	s.decode(w, &bal)
	s.Equal("42", bal.Balance)

	s.service.EXPECT().NativeBalance(gomock.Any(), collector).Return(big.NewInt(7), nil)
	w = s.do(request(http.MethodGet, "/native/balances/"+collector.Hex(), "", common.Address{}))
	s.Equal(http.StatusOK, w.Code)
	s.decode(w, &bal)
	s.Equal("7", bal.Balance)

	w = s.do(request(http.MethodGet, "/native/balances/nobody", "", common.Address{}))
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *MintHandlerSuite) TestApprove() {
	s.service.EXPECT().Approve(gomock.Any(), collector, usd, owner, big.NewInt(100)).Return(nil)

	body := `{"spender":"` + owner.Hex() + `","amount":"100"}`
	w := s.do(request(http.MethodPost, "/tokens/"+usd.Hex()+"/approve", body, collector))
	s.Equal(http.StatusOK, w.Code)

	var resp AllowanceResponse
	s.decode(w, &resp)
	s.Equal("100", resp.Allowance)
}

func (s *MintHandlerSuite) TestEvents() {
	id := uuid.New()
	s.service.EXPECT().Events(gomock.Any(), int64(5), 2).Return([]audit.Event{
		{Sequence: 6, ID: id, Category: audit.CategoryIssuance, Name: "Minted", Payload: json.RawMessage(`{"tokenId":1}`)},
		{Sequence: 9, ID: uuid.New(), Category: audit.CategoryIssuance, Name: "Minted", Payload: json.RawMessage(`{"tokenId":2}`)},
	}, nil)

	w := s.do(request(http.MethodGet, "/events?after=5&limit=2", "", common.Address{}))
	s.Equal(http.StatusOK, w.Code)

	var resp EventsResponse
	s.decode(w, &resp)
	s.Require().Len(resp.Events, 2)
	s.Equal(id.String(), resp.Events[0].ID)
	s.JSONEq(`{"tokenId":1}`, string(resp.Events[0].Payload))
	s.Equal(int64(9), resp.Next)

	w = s.do(request(http.MethodGet, "/events?after=x", "", common.Address{}))
	s.Equal(http.StatusBadRequest, w.Code)
}
