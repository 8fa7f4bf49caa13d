// Package handler exposes the mint controller over HTTP. Mutations act as the
// authenticated caller; views are public.
package handler

import (
	"context"
	"log/slog"
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"mintgate/internal/mint/models"
	dErrors "mintgate/pkg/domain-errors"
	audit "mintgate/pkg/platform/audit"
	"mintgate/pkg/platform/httputil"
	"mintgate/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the controller operations served over HTTP.
type Service interface {
	Initialize(ctx context.Context, caller, feeTo, verifier common.Address) (*models.Settings, error)
	SetFeeTo(ctx context.Context, caller, feeTo common.Address) (*models.Settings, error)
	SetVerifier(ctx context.Context, caller, verifier common.Address) (*models.Settings, error)
	Withdraw(ctx context.Context, caller, token common.Address) (*models.Withdrawal, error)
	Settings(ctx context.Context) (*models.Settings, error)

	CreateCollection(ctx context.Context, caller common.Address, spec models.CollectionSpec) (*models.Collection, error)
	UpdateMintCap(ctx context.Context, caller common.Address, id, newCap uint64) (*models.Collection, error)
	UpdateStartTime(ctx context.Context, caller common.Address, id uint64, newStart int64) (*models.Collection, error)
	UpdateEndTime(ctx context.Context, caller common.Address, id uint64, newEnd int64) (*models.Collection, error)
	Collection(ctx context.Context, id uint64) (*models.Collection, error)
	CollectionsByArtist(ctx context.Context, artist common.Address) ([]uint64, error)

	Mint(ctx context.Context, req models.MintRequest) (*models.MintResult, error)
	PreflightMint(ctx context.Context, caller common.Address, collectionID uint64, fee *big.Int, traitHash, signature []byte) (*models.Preflight, error)
	NextTokenID(ctx context.Context, collectionID uint64) (uint64, error)
	Token(ctx context.Context, collectionID, tokenID uint64) (*models.TokenView, error)
	IsConsumed(ctx context.Context, hash []byte) (bool, error)
	Events(ctx context.Context, after int64, limit int) ([]audit.Event, error)

	Approve(ctx context.Context, caller, token, spender common.Address, amount *big.Int) error
	TokenBalance(ctx context.Context, token, holder common.Address) (*big.Int, error)
	NativeBalance(ctx context.Context, holder common.Address) (*big.Int, error)
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
}

// Handler wires controller endpoints to the service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the read-only endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/governance/settings", h.HandleSettings)
	r.Get("/collections/{id}", h.HandleGetCollection)
	r.Get("/artists/{address}/collections", h.HandleArtistCollections)
	r.Post("/collections/{id}/mint/preflight", h.HandlePreflight)
	r.Get("/collections/{id}/next-token-id", h.HandleNextTokenID)
	r.Get("/collections/{id}/tokens/{tokenId}", h.HandleGetToken)
	r.Get("/trait-hashes/{hash}", h.HandleTraitHash)
	r.Get("/tokens/{address}/balances/{holder}", h.HandleTokenBalance)
	r.Get("/tokens/{address}/allowances/{owner}/{spender}", h.HandleAllowance)
	r.Get("/native/balances/{holder}", h.HandleNativeBalance)
	r.Get("/events", h.HandleEvents)
}

// RegisterProtected mounts the endpoints that act as the caller. The router
// must authenticate requests first.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/governance/initialize", h.HandleInitialize)
	r.Put("/governance/fee-to", h.HandleSetFeeTo)
	r.Put("/governance/verifier", h.HandleSetVerifier)
	r.Post("/governance/withdraw", h.HandleWithdraw)
	r.Post("/collections", h.HandleCreateCollection)
	r.Put("/collections/{id}/mint-cap", h.HandleUpdateMintCap)
	r.Put("/collections/{id}/start-time", h.HandleUpdateStartTime)
	r.Put("/collections/{id}/end-time", h.HandleUpdateEndTime)
	r.Post("/collections/{id}/mint", h.HandleMint)
	r.Post("/tokens/{address}/approve", h.HandleApprove)
}

// requireCaller returns the authenticated caller or writes 401.
func requireCaller(w http.ResponseWriter, ctx context.Context) (common.Address, bool) {
	caller := requestcontext.Caller(ctx)
	if caller == (common.Address{}) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return common.Address{}, false
	}
	return caller, true
}

func pathUint(w http.ResponseWriter, r *http.Request, name string) (uint64, bool) {
	v, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeBadRequest, "%s must be an unsigned integer", name))
		return 0, false
	}
	return v, true
}

func pathAddress(w http.ResponseWriter, r *http.Request, name string) (common.Address, bool) {
	addr, err := parseAddress(name, chi.URLParam(r, name))
	if err != nil {
		httputil.WriteError(w, err)
		return common.Address{}, false
	}
	return addr, true
}

// fail logs err at a level matching its code and writes the response.
func (h *Handler) fail(w http.ResponseWriter, ctx context.Context, msg string, err error, attrs ...any) {
	attrs = append(attrs, "request_id", requestcontext.RequestID(ctx), "error", err)
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
