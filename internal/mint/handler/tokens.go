package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-chi/chi/v5"

	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/platform/httputil"
	"mintgate/pkg/requestcontext"
)

// HandleMint handles POST /collections/{id}/mint. The token is issued to the
// authenticated caller, who must be the address the authorization names.
func (h *Handler) HandleMint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()
	caller, ok := requireCaller(w, ctx)
	if !ok {
		return
	}
	id, ok := pathUint(w, r, "id")
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[MintRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	result, err := h.service.Mint(ctx, req.Model(caller, id))
	if err != nil {
		h.fail(w, ctx, "mint rejected", err,
			"caller", caller.Hex(),
			"collection_id", id,
			"trait_hash", req.TraitHash,
		)
		return
	}
	h.logger.InfoContext(ctx, "token minted",
		"request_id", requestID,
		"collection_id", id,
		"token_id", result.TokenID,
		"caller", caller.Hex(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, toMintResponse(result))
}

func (h *Handler) HandlePreflight(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathUint(w, r, "id")
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[PreflightRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	p, err := h.service.PreflightMint(ctx, req.parsedCaller, id, req.parsedFee, req.parsedTraitHash, req.parsedSignature)
	if err != nil {
		h.fail(w, ctx, "preflight failed", err, "collection_id", id)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPreflightResponse(p))
}

func (h *Handler) HandleNextTokenID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathUint(w, r, "id")
	if !ok {
		return
	}
	next, err := h.service.NextTokenID(ctx, id)
	if err != nil {
		h.fail(w, ctx, "read next token id failed", err, "collection_id", id)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, NextTokenIDResponse{CollectionID: id, NextTokenID: next})
}

func (h *Handler) HandleGetToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathUint(w, r, "id")
	if !ok {
		return
	}
	tokenID, ok := pathUint(w, r, "tokenId")
	if !ok {
		return
	}
	token, err := h.service.Token(ctx, id, tokenID)
	if err != nil {
		h.fail(w, ctx, "read token failed", err, "collection_id", id, "token_id", tokenID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toTokenResponse(token))
}

func (h *Handler) HandleTraitHash(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	raw := chi.URLParam(r, "hash")
	hash, err := parseHex("hash", raw)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	consumed, err := h.service.IsConsumed(ctx, hash)
	if err != nil {
		h.fail(w, ctx, "read trait hash failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, TraitHashResponse{Hash: hexutil.Encode(hash), Consumed: consumed})
}

// HandleApprove handles POST /tokens/{address}/approve, letting the
// controller or another spender draw on the caller's balance.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := requireCaller(w, ctx)
	if !ok {
		return
	}
	token, ok := pathAddress(w, r, "address")
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ApproveRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.service.Approve(ctx, caller, token, req.parsedSpender, req.parsedAmount); err != nil {
		h.fail(w, ctx, "approve failed", err, "caller", caller.Hex(), "token", token.Hex())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AllowanceResponse{
		Token:     token.Hex(),
		Owner:     caller.Hex(),
		Spender:   req.parsedSpender.Hex(),
		Allowance: req.parsedAmount.String(),
	})
}

func (h *Handler) HandleTokenBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token, ok := pathAddress(w, r, "address")
	if !ok {
		return
	}
	holder, ok := pathAddress(w, r, "holder")
	if !ok {
		return
	}
	balance, err := h.service.TokenBalance(ctx, token, holder)
	if err != nil {
		h.fail(w, ctx, "read token balance failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toBalanceResponse(token, holder, balance))
}

func (h *Handler) HandleAllowance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token, ok := pathAddress(w, r, "address")
	if !ok {
		return
	}
	owner, ok := pathAddress(w, r, "owner")
	if !ok {
		return
	}
	spender, ok := pathAddress(w, r, "spender")
	if !ok {
		return
	}
	allowance, err := h.service.Allowance(ctx, token, owner, spender)
	if err != nil {
		h.fail(w, ctx, "read allowance failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AllowanceResponse{
		Token:     token.Hex(),
		Owner:     owner.Hex(),
		Spender:   spender.Hex(),
		Allowance: allowance.String(),
	})
}

func (h *Handler) HandleNativeBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	holder, ok := pathAddress(w, r, "holder")
	if !ok {
		return
	}
	balance, err := h.service.NativeBalance(ctx, holder)
	if err != nil {
		h.fail(w, ctx, "read native balance failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toBalanceResponse(common.Address{}, holder, balance))
}

// HandleEvents handles GET /events?after=&limit=.
func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	after, err := queryInt(r, "after")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	events, err := h.service.Events(ctx, after, int(limit))
	if err != nil {
		h.fail(w, ctx, "read events failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEventsResponse(events, after))
}

func queryInt(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, dErrors.Newf(dErrors.CodeBadRequest, "%s must be an integer", name)
	}
	return v, nil
}
