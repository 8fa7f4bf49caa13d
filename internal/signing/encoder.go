// Package signing produces and checks mint authorizations.
//
// A mint authorization binds (chain id, collection id, caller, fee, token id,
// trait hash). The binding is the Ethereum ABI encoding of
//
//	(uint256 chainId, uint256 collectionId, address caller, uint256 fee, uint256 tokenId, bytes traitHash)
//
// hashed with keccak256. Any signer that can call abi.encode (solidity,
// ethers, web3) reproduces the digest byte for byte.
package signing

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

var (
	ErrInvalidChainID   = errors.New("chain id must be a positive uint256")
	ErrInvalidFee       = errors.New("fee must be a non-negative uint256")
	ErrEmptyTraitHash   = errors.New("trait hash is empty")
	ErrInvalidSignature = errors.New("invalid signature")
)

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// MintParams are the fields a mint authorization covers.
type MintParams struct {
	ChainID      *big.Int
	CollectionID uint64
	Caller       common.Address
	Fee          *big.Int
	TokenID      uint64
	TraitHash    []byte
}

var mintArguments = mustArguments("uint256", "uint256", "address", "uint256", "uint256", "bytes")

func mustArguments(types ...string) abi.Arguments {
	args := make(abi.Arguments, 0, len(types))
	for _, t := range types {
		typ, err := abi.NewType(t, "", nil)
		if err != nil {
			panic(fmt.Sprintf("signing: abi type %s: %v", t, err))
		}
		args = append(args, abi.Argument{Type: typ})
	}
	return args
}

// ValidUint256 reports whether v fits an unsigned 256-bit word.
func ValidUint256(v *big.Int) bool {
	return v != nil && v.Sign() >= 0 && v.Cmp(maxUint256) <= 0
}

// Encode returns the canonical ABI encoding of p.
func Encode(p MintParams) ([]byte, error) {
	if !ValidUint256(p.ChainID) || p.ChainID.Sign() == 0 {
		return nil, ErrInvalidChainID
	}
	if !ValidUint256(p.Fee) {
		return nil, ErrInvalidFee
	}
	if len(p.TraitHash) == 0 {
		return nil, ErrEmptyTraitHash
	}
	return mintArguments.Pack(
		p.ChainID,
		new(big.Int).SetUint64(p.CollectionID),
		p.Caller,
		p.Fee,
		new(big.Int).SetUint64(p.TokenID),
		p.TraitHash,
	)
}

// Digest is keccak256 over Encode(p).
func Digest(p MintParams) (common.Hash, error) {
	encoded, err := Encode(p)
	if err != nil {
		return common.Hash{}, err
	}
	return keccak256(encoded), nil
}

func keccak256(data ...[]byte) common.Hash {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var out common.Hash
	h.Sum(out[:0])
	return out
}
