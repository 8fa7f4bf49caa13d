package handler

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"mintgate/internal/mint/models"
	audit "mintgate/pkg/platform/audit"
)

type SettingsResponse struct {
	Owner         string    `json:"owner"`
	FeeTo         string    `json:"fee_to"`
	Verifier      string    `json:"verifier"`
	InitializedAt time.Time `json:"initialized_at"`
}

func toSettingsResponse(s *models.Settings) SettingsResponse {
	return SettingsResponse{
		Owner:         s.Owner.Hex(),
		FeeTo:         s.FeeTo.Hex(),
		Verifier:      s.Verifier.Hex(),
		InitializedAt: s.InitializedAt,
	}
}

type WithdrawalResponse struct {
	Token  string `json:"token"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func toWithdrawalResponse(w *models.Withdrawal) WithdrawalResponse {
	return WithdrawalResponse{
		Token:  w.Token.Hex(),
		To:     w.To.Hex(),
		Amount: w.Amount.String(),
	}
}

type CollectionResponse struct {
	ID                uint64    `json:"id"`
	KeyID             string    `json:"key_id"`
	Artist            string    `json:"artist"`
	CollectionAddress string    `json:"collection_address"`
	Name              string    `json:"name"`
	Symbol            string    `json:"symbol"`
	BaseURI           string    `json:"base_uri"`
	PaymentToken      string    `json:"payment_token"`
	MintCap           uint64    `json:"mint_cap"`
	StartTime         int64     `json:"start_time"`
	EndTime           int64     `json:"end_time"`
	CreatedAt         time.Time `json:"created_at"`
}

func toCollectionResponse(c *models.Collection) CollectionResponse {
	return CollectionResponse{
		ID:                c.ID,
		KeyID:             c.KeyID,
		Artist:            c.Artist.Hex(),
		CollectionAddress: c.CollectionAddress.Hex(),
		Name:              c.Name,
		Symbol:            c.Symbol,
		BaseURI:           c.BaseURI,
		PaymentToken:      c.PaymentToken.Hex(),
		MintCap:           c.MintCap,
		StartTime:         c.StartTime,
		EndTime:           c.EndTime,
		CreatedAt:         c.CreatedAt,
	}
}

type CollectionIDsResponse struct {
	Artist        string   `json:"artist"`
	CollectionIDs []uint64 `json:"collection_ids"`
}

type TokenResponse struct {
	CollectionID      uint64 `json:"collection_id"`
	CollectionAddress string `json:"collection_address"`
	TokenID           uint64 `json:"token_id"`
	Owner             string `json:"owner"`
	URI               string `json:"uri"`
}

func toMintResponse(r *models.MintResult) TokenResponse {
	return TokenResponse{
		CollectionID:      r.CollectionID,
		CollectionAddress: r.CollectionAddress.Hex(),
		TokenID:           r.TokenID,
		Owner:             r.Owner.Hex(),
		URI:               r.URI,
	}
}

func toTokenResponse(t *models.TokenView) TokenResponse {
	return TokenResponse{
		CollectionID:      t.CollectionID,
		CollectionAddress: t.CollectionAddress.Hex(),
		TokenID:           t.TokenID,
		Owner:             t.Owner.Hex(),
		URI:               t.URI,
	}
}

type PreflightResponse struct {
	CollectionID uint64 `json:"collection_id"`
	TokenID      uint64 `json:"token_id"`
	Verifier     string `json:"verifier"`
	Valid        bool   `json:"valid"`
}

func toPreflightResponse(p *models.Preflight) PreflightResponse {
	return PreflightResponse{
		CollectionID: p.CollectionID,
		TokenID:      p.TokenID,
		Verifier:     p.Verifier.Hex(),
		Valid:        p.Valid,
	}
}

type NextTokenIDResponse struct {
	CollectionID uint64 `json:"collection_id"`
	NextTokenID  uint64 `json:"next_token_id"`
}

type TraitHashResponse struct {
	Hash     string `json:"hash"`
	Consumed bool   `json:"consumed"`
}

type BalanceResponse struct {
	Token   string `json:"token"`
	Holder  string `json:"holder"`
	Balance string `json:"balance"`
}

func toBalanceResponse(token, holder common.Address, balance *big.Int) BalanceResponse {
	return BalanceResponse{
		Token:   token.Hex(),
		Holder:  holder.Hex(),
		Balance: balance.String(),
	}
}

type AllowanceResponse struct {
	Token     string `json:"token"`
	Owner     string `json:"owner"`
	Spender   string `json:"spender"`
	Allowance string `json:"allowance"`
}

type EventResponse struct {
	Sequence    int64           `json:"sequence"`
	ID          string          `json:"id"`
	Category    string          `json:"category"`
	Name        string          `json:"name"`
	Actor       string          `json:"actor"`
	AggregateID string          `json:"aggregate_id"`
	Payload     json.RawMessage `json:"payload"`
	Timestamp   time.Time       `json:"timestamp"`
}

type EventsResponse struct {
	Events []EventResponse `json:"events"`
	Next   int64           `json:"next"`
}

// toEventsResponse pages the log; Next is the cursor for the following page.
func toEventsResponse(events []audit.Event, after int64) EventsResponse {
	resp := EventsResponse{Events: make([]EventResponse, 0, len(events)), Next: after}
	for _, e := range events {
		resp.Events = append(resp.Events, EventResponse{
			Sequence:    e.Sequence,
			ID:          e.ID.String(),
			Category:    string(e.Category),
			Name:        e.Name,
			Actor:       e.Actor,
			AggregateID: e.AggregateID,
			Payload:     e.Payload,
			Timestamp:   e.Timestamp,
		})
		resp.Next = e.Sequence
	}
	return resp
}
