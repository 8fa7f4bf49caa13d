package signing

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is r || s || v.
const SignatureLength = crypto.SignatureLength

// Scheme is a signing convention: how a digest is prefixed before signing and
// how a signer is recovered from a signature over the prefixed hash.
type Scheme interface {
	Name() string
	MessageHash(message []byte) []byte
	Recover(hash, sig []byte) (common.Address, error)
	Sign(hash []byte, key *ecdsa.PrivateKey) ([]byte, error)
}

// PersonalSign is EIP-191 version 0x45 ("\x19Ethereum Signed Message:\n" + len),
// what wallets produce for eth_sign/personal_sign.
var PersonalSign Scheme = personalSign{}

type personalSign struct{}

func (personalSign) Name() string { return "eip191-personal-sign" }

func (personalSign) MessageHash(message []byte) []byte {
	return accounts.TextHash(message)
}

// Recover accepts v in {0,1,27,28} and rejects malleable high-s signatures.
func (personalSign) Recover(hash, sig []byte) (common.Address, error) {
	if len(hash) != common.HashLength || len(sig) != SignatureLength {
		return common.Address{}, ErrInvalidSignature
	}
	normalized := make([]byte, SignatureLength)
	copy(normalized, sig)
	v := normalized[crypto.RecoveryIDOffset]
	if v >= 27 {
		v -= 27
	}
	normalized[crypto.RecoveryIDOffset] = v

	r := new(big.Int).SetBytes(normalized[:32])
	s := new(big.Int).SetBytes(normalized[32:64])
	if !crypto.ValidateSignatureValues(v, r, s, true) {
		return common.Address{}, ErrInvalidSignature
	}

	pub, err := crypto.SigToPub(hash, normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Sign produces a wallet-style signature (v in {27,28}).
func (personalSign) Sign(hash []byte, key *ecdsa.PrivateKey) ([]byte, error) {
	sig, err := crypto.Sign(hash, key)
	if err != nil {
		return nil, err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}
