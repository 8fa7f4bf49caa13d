// Package models holds the login challenge types.
package models

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Challenge is a single-use login nonce issued to one address.
type Challenge struct {
	Address   common.Address `json:"address"`
	Nonce     string         `json:"nonce"`
	IssuedAt  time.Time      `json:"issued_at"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// Message is the text the wallet signs with personal_sign.
func (c *Challenge) Message() string {
	return fmt.Sprintf("mintgate wants you to sign in with your Ethereum account:\n%s\n\nNonce: %s\nIssued At: %s",
		c.Address.Hex(), c.Nonce, c.IssuedAt.UTC().Format(time.RFC3339))
}

// IsExpired reports whether the challenge can no longer be redeemed at now.
func (c *Challenge) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// TokenResult is an issued access token.
type TokenResult struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresAt   time.Time      `json:"expires_at"`
	Address     common.Address `json:"address"`
}
