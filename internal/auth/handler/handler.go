// Package handler exposes wallet sign-in over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"mintgate/internal/auth/models"
	"mintgate/pkg/platform/httputil"
	authmw "mintgate/pkg/platform/middleware/auth"
	"mintgate/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the sign-in operations.
type Service interface {
	Challenge(ctx context.Context, address common.Address) (*models.Challenge, error)
	Token(ctx context.Context, address common.Address, signature []byte) (*models.TokenResult, error)
	Logout(ctx context.Context, jti string) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the endpoints that issue tokens.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/challenge", h.HandleChallenge)
	r.Post("/auth/token", h.HandleToken)
}

// RegisterProtected mounts endpoints that need a bearer token.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/auth/logout", h.HandleLogout)
}

func (h *Handler) HandleChallenge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ChallengeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	c, err := h.service.Challenge(ctx, req.ParsedAddress())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue challenge",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toChallengeResponse(c))
}

func (h *Handler) HandleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[TokenRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.Token(ctx, req.ParsedAddress(), req.ParsedSignature())
	if err != nil {
		h.logger.WarnContext(ctx, "sign-in rejected",
			"request_id", requestID,
			"address", req.Address,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toTokenResponse(res, requestcontext.Now(ctx)))
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.Logout(ctx, authmw.TokenID(ctx)); err != nil {
		h.logger.ErrorContext(ctx, "logout failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
