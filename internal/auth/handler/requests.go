package handler

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	dErrors "mintgate/pkg/domain-errors"
)

// ChallengeRequest is the body of POST /auth/challenge.
type ChallengeRequest struct {
	Address string `json:"address"`

	parsedAddress common.Address
}

func (r *ChallengeRequest) Normalize() {
	r.Address = strings.TrimSpace(r.Address)
}

func (r *ChallengeRequest) Validate() error {
	addr, err := parseAddress(r.Address)
	if err != nil {
		return err
	}
	r.parsedAddress = addr
	return nil
}

func (r *ChallengeRequest) ParsedAddress() common.Address {
	return r.parsedAddress
}

// TokenRequest is the body of POST /auth/token.
type TokenRequest struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`

	parsedAddress   common.Address
	parsedSignature []byte
}

func (r *TokenRequest) Normalize() {
	r.Address = strings.TrimSpace(r.Address)
	r.Signature = strings.TrimSpace(r.Signature)
}

func (r *TokenRequest) Validate() error {
	addr, err := parseAddress(r.Address)
	if err != nil {
		return err
	}
	if r.Signature == "" {
		return dErrors.New(dErrors.CodeValidation, "signature is required")
	}
	sig, err := hexutil.Decode(r.Signature)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "signature must be 0x-prefixed hex")
	}
	r.parsedAddress = addr
	r.parsedSignature = sig
	return nil
}

func (r *TokenRequest) ParsedAddress() common.Address {
	return r.parsedAddress
}

func (r *TokenRequest) ParsedSignature() []byte {
	return r.parsedSignature
}

func parseAddress(raw string) (common.Address, error) {
	if raw == "" {
		return common.Address{}, dErrors.New(dErrors.CodeValidation, "address is required")
	}
	if !common.IsHexAddress(raw) {
		return common.Address{}, dErrors.New(dErrors.CodeValidation, "address must be a 20-byte hex address")
	}
	return common.HexToAddress(raw), nil
}
