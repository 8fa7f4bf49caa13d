package signing

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
)

// Verifier checks signatures under one scheme. It holds no state and is safe
// for concurrent use.
type Verifier struct {
	scheme Scheme
}

// NewVerifier builds a verifier; a nil scheme means PersonalSign.
func NewVerifier(scheme Scheme) *Verifier {
	if scheme == nil {
		scheme = PersonalSign
	}
	return &Verifier{scheme: scheme}
}

// Scheme returns the configured signing convention.
func (v *Verifier) Scheme() Scheme { return v.scheme }

// RecoverMint returns the address that signed the authorization for p.
func (v *Verifier) RecoverMint(p MintParams, sig []byte) (common.Address, error) {
	digest, err := Digest(p)
	if err != nil {
		return common.Address{}, err
	}
	return v.scheme.Recover(v.scheme.MessageHash(digest.Bytes()), sig)
}

// VerifyMint reports whether sig authorizes p on behalf of expected. Malformed
// input of any kind yields false.
func (v *Verifier) VerifyMint(p MintParams, sig []byte, expected common.Address) bool {
	if expected == (common.Address{}) {
		return false
	}
	signer, err := v.RecoverMint(p, sig)
	if err != nil {
		return false
	}
	return signer == expected
}

// RecoverText returns the address that signed an arbitrary text message, as
// used by wallet login challenges.
func (v *Verifier) RecoverText(message []byte, sig []byte) (common.Address, error) {
	return v.scheme.Recover(v.scheme.MessageHash(message), sig)
}

// Signer produces authorizations with a private key. The trust authority runs
// this off-line; tests use it to mint fixtures.
type Signer struct {
	key    *ecdsa.PrivateKey
	scheme Scheme
}

// NewSigner binds a key to a scheme; a nil scheme means PersonalSign.
func NewSigner(key *ecdsa.PrivateKey, scheme Scheme) *Signer {
	if scheme == nil {
		scheme = PersonalSign
	}
	return &Signer{key: key, scheme: scheme}
}

// SignMint signs the digest of p.
func (s *Signer) SignMint(p MintParams) ([]byte, error) {
	digest, err := Digest(p)
	if err != nil {
		return nil, err
	}
	return s.scheme.Sign(s.scheme.MessageHash(digest.Bytes()), s.key)
}

// SignText signs an arbitrary text message.
func (s *Signer) SignText(message []byte) ([]byte, error) {
	return s.scheme.Sign(s.scheme.MessageHash(message), s.key)
}
