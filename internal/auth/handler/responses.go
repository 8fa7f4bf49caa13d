package handler

import (
	"time"

	"mintgate/internal/auth/models"
)

type ChallengeResponse struct {
	Address   string    `json:"address"`
	Nonce     string    `json:"nonce"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

func toChallengeResponse(c *models.Challenge) ChallengeResponse {
	return ChallengeResponse{
		Address:   c.Address.Hex(),
		Nonce:     c.Nonce,
		Message:   c.Message(),
		ExpiresAt: c.ExpiresAt,
	}
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Address     string `json:"address"`
}

func toTokenResponse(t *models.TokenResult, now time.Time) TokenResponse {
	return TokenResponse{
		AccessToken: t.AccessToken,
		TokenType:   t.TokenType,
		ExpiresIn:   int64(t.ExpiresAt.Sub(now).Seconds()),
		Address:     t.Address.Hex(),
	}
}
