package handler

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"mintgate/internal/mint/models"
	"mintgate/internal/signing"
	dErrors "mintgate/pkg/domain-errors"
)

// Amounts travel as decimal strings so uint256 values survive JSON clients
// that decode numbers as float64.

// InitializeRequest is the body of POST /governance/initialize.
type InitializeRequest struct {
	FeeTo    string `json:"fee_to"`
	Verifier string `json:"verifier"`

	parsedFeeTo    common.Address
	parsedVerifier common.Address
}

func (r *InitializeRequest) Normalize() {
	r.FeeTo = strings.TrimSpace(r.FeeTo)
	r.Verifier = strings.TrimSpace(r.Verifier)
}

func (r *InitializeRequest) Validate() error {
	var err error
	if r.parsedFeeTo, err = parseAddress("fee_to", r.FeeTo); err != nil {
		return err
	}
	if r.parsedVerifier, err = parseAddress("verifier", r.Verifier); err != nil {
		return err
	}
	return nil
}

func (r *InitializeRequest) ParsedFeeTo() common.Address    { return r.parsedFeeTo }
func (r *InitializeRequest) ParsedVerifier() common.Address { return r.parsedVerifier }

// UpdateAddressRequest is the body of PUT /governance/fee-to and
// PUT /governance/verifier.
type UpdateAddressRequest struct {
	Address string `json:"address"`

	parsedAddress common.Address
}

func (r *UpdateAddressRequest) Normalize() {
	r.Address = strings.TrimSpace(r.Address)
}

func (r *UpdateAddressRequest) Validate() error {
	addr, err := parseAddress("address", r.Address)
	if err != nil {
		return err
	}
	r.parsedAddress = addr
	return nil
}

func (r *UpdateAddressRequest) ParsedAddress() common.Address { return r.parsedAddress }

// WithdrawRequest is the body of POST /governance/withdraw. An empty token
// withdraws native currency.
type WithdrawRequest struct {
	Token string `json:"token"`

	parsedToken common.Address
}

func (r *WithdrawRequest) Normalize() {
	r.Token = strings.TrimSpace(r.Token)
}

func (r *WithdrawRequest) Validate() error {
	if r.Token == "" {
		return nil
	}
	token, err := parseAddress("token", r.Token)
	if err != nil {
		return err
	}
	r.parsedToken = token
	return nil
}

func (r *WithdrawRequest) ParsedToken() common.Address { return r.parsedToken }

// CreateCollectionRequest is the body of POST /collections.
type CreateCollectionRequest struct {
	KeyID        string `json:"key_id"`
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	BaseURI      string `json:"base_uri"`
	PaymentToken string `json:"payment_token"`
	MintCap      uint64 `json:"mint_cap"`
	StartTime    int64  `json:"start_time"`
	EndTime      int64  `json:"end_time"`

	parsedPaymentToken common.Address
}

func (r *CreateCollectionRequest) Normalize() {
	r.KeyID = strings.TrimSpace(r.KeyID)
	r.Name = strings.TrimSpace(r.Name)
	r.Symbol = strings.TrimSpace(r.Symbol)
	r.BaseURI = strings.TrimSpace(r.BaseURI)
	r.PaymentToken = strings.TrimSpace(r.PaymentToken)
}

// Validate checks shape only; window rules depend on the request time and
// are enforced by the service.
func (r *CreateCollectionRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.Symbol == "" {
		return dErrors.New(dErrors.CodeValidation, "symbol is required")
	}
	if r.PaymentToken != "" {
		token, err := parseAddress("payment_token", r.PaymentToken)
		if err != nil {
			return err
		}
		r.parsedPaymentToken = token
	}
	return nil
}

func (r *CreateCollectionRequest) Spec() models.CollectionSpec {
	return models.CollectionSpec{
		KeyID:        r.KeyID,
		Name:         r.Name,
		Symbol:       r.Symbol,
		BaseURI:      r.BaseURI,
		PaymentToken: r.parsedPaymentToken,
		MintCap:      r.MintCap,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
	}
}

// UpdateMintCapRequest is the body of PUT /collections/{id}/mint-cap.
type UpdateMintCapRequest struct {
	MintCap uint64 `json:"mint_cap"`
}

func (r *UpdateMintCapRequest) Normalize() {}

func (r *UpdateMintCapRequest) Validate() error {
	if r.MintCap == 0 {
		return dErrors.New(dErrors.CodeValidation, "mint_cap must be positive")
	}
	return nil
}

// UpdateStartTimeRequest is the body of PUT /collections/{id}/start-time.
type UpdateStartTimeRequest struct {
	StartTime int64 `json:"start_time"`
}

func (r *UpdateStartTimeRequest) Normalize() {}

func (r *UpdateStartTimeRequest) Validate() error {
	if r.StartTime < 0 {
		return dErrors.New(dErrors.CodeValidation, "start_time must not be negative")
	}
	return nil
}

// UpdateEndTimeRequest is the body of PUT /collections/{id}/end-time.
type UpdateEndTimeRequest struct {
	EndTime int64 `json:"end_time"`
}

func (r *UpdateEndTimeRequest) Normalize() {}

func (r *UpdateEndTimeRequest) Validate() error {
	if r.EndTime < 0 {
		return dErrors.New(dErrors.CodeValidation, "end_time must not be negative")
	}
	return nil
}

// MintRequest is the body of POST /collections/{id}/mint. Value is the native
// currency attached to the call.
type MintRequest struct {
	URI       string `json:"uri"`
	Fee       string `json:"fee"`
	TraitHash string `json:"trait_hash"`
	Signature string `json:"signature"`
	Value     string `json:"value"`

	parsedFee       *big.Int
	parsedTraitHash []byte
	parsedSignature []byte
	parsedValue     *big.Int
}

func (r *MintRequest) Normalize() {
	r.Fee = strings.TrimSpace(r.Fee)
	r.TraitHash = strings.TrimSpace(r.TraitHash)
	r.Signature = strings.TrimSpace(r.Signature)
	r.Value = strings.TrimSpace(r.Value)
}

func (r *MintRequest) Validate() error {
	var err error
	if r.parsedFee, err = parseAmount("fee", r.Fee); err != nil {
		return err
	}
	if r.parsedTraitHash, err = parseHex("trait_hash", r.TraitHash); err != nil {
		return err
	}
	if r.parsedSignature, err = parseSignature(r.Signature); err != nil {
		return err
	}
	r.parsedValue = new(big.Int)
	if r.Value != "" {
		if r.parsedValue, err = parseAmount("value", r.Value); err != nil {
			return err
		}
	}
	return nil
}

// Model builds the domain request for caller minting into collectionID.
func (r *MintRequest) Model(caller common.Address, collectionID uint64) models.MintRequest {
	return models.MintRequest{
		Caller:       caller,
		CollectionID: collectionID,
		URI:          r.URI,
		Fee:          r.parsedFee,
		TraitHash:    r.parsedTraitHash,
		Signature:    r.parsedSignature,
		Value:        r.parsedValue,
	}
}

// PreflightRequest is the body of POST /collections/{id}/mint/preflight.
type PreflightRequest struct {
	Caller    string `json:"caller"`
	Fee       string `json:"fee"`
	TraitHash string `json:"trait_hash"`
	Signature string `json:"signature"`

	parsedCaller    common.Address
	parsedFee       *big.Int
	parsedTraitHash []byte
	parsedSignature []byte
}

func (r *PreflightRequest) Normalize() {
	r.Caller = strings.TrimSpace(r.Caller)
	r.Fee = strings.TrimSpace(r.Fee)
	r.TraitHash = strings.TrimSpace(r.TraitHash)
	r.Signature = strings.TrimSpace(r.Signature)
}

func (r *PreflightRequest) Validate() error {
	var err error
	if r.parsedCaller, err = parseAddress("caller", r.Caller); err != nil {
		return err
	}
	if r.parsedFee, err = parseAmount("fee", r.Fee); err != nil {
		return err
	}
	if r.parsedTraitHash, err = parseHex("trait_hash", r.TraitHash); err != nil {
		return err
	}
	if r.parsedSignature, err = parseSignature(r.Signature); err != nil {
		return err
	}
	return nil
}

// ApproveRequest is the body of POST /tokens/{address}/approve.
type ApproveRequest struct {
	Spender string `json:"spender"`
	Amount  string `json:"amount"`

	parsedSpender common.Address
	parsedAmount  *big.Int
}

func (r *ApproveRequest) Normalize() {
	r.Spender = strings.TrimSpace(r.Spender)
	r.Amount = strings.TrimSpace(r.Amount)
}

func (r *ApproveRequest) Validate() error {
	var err error
	if r.parsedSpender, err = parseAddress("spender", r.Spender); err != nil {
		return err
	}
	if r.parsedAmount, err = parseAmount("amount", r.Amount); err != nil {
		return err
	}
	return nil
}

func parseAddress(field, raw string) (common.Address, error) {
	if raw == "" {
		return common.Address{}, dErrors.Newf(dErrors.CodeValidation, "%s is required", field)
	}
	if !common.IsHexAddress(raw) {
		return common.Address{}, dErrors.Newf(dErrors.CodeValidation, "%s must be a 20-byte hex address", field)
	}
	return common.HexToAddress(raw), nil
}

func parseAmount(field, raw string) (*big.Int, error) {
	if raw == "" {
		return nil, dErrors.Newf(dErrors.CodeValidation, "%s is required", field)
	}
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok || !signing.ValidUint256(v) {
		return nil, dErrors.Newf(dErrors.CodeValidation, "%s must be a decimal uint256", field)
	}
	return v, nil
}

// parseSignature reports undecodable signatures as invalid_signature, the
// same category the verifier uses for wrong-length or high-s signatures.
func parseSignature(raw string) ([]byte, error) {
	if raw == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "signature is required")
	}
	b, err := hexutil.Decode(raw)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidSignature, "signature must be 0x-prefixed hex")
	}
	return b, nil
}

func parseHex(field, raw string) ([]byte, error) {
	if raw == "" {
		return nil, dErrors.Newf(dErrors.CodeValidation, "%s is required", field)
	}
	b, err := hexutil.Decode(raw)
	if err != nil {
		return nil, dErrors.Newf(dErrors.CodeValidation, "%s must be 0x-prefixed hex", field)
	}
	return b, nil
}
