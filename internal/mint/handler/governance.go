package handler

import (
	"net/http"

	"mintgate/pkg/platform/httputil"
	"mintgate/pkg/requestcontext"
)

// HandleInitialize handles POST /governance/initialize. The caller becomes
// the owner.
func (h *Handler) HandleInitialize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := requireCaller(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[InitializeRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	settings, err := h.service.Initialize(ctx, caller, req.ParsedFeeTo(), req.ParsedVerifier())
	if err != nil {
		h.fail(w, ctx, "initialize failed", err, "caller", caller.Hex())
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toSettingsResponse(settings))
}

func (h *Handler) HandleSetFeeTo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := requireCaller(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateAddressRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	settings, err := h.service.SetFeeTo(ctx, caller, req.ParsedAddress())
	if err != nil {
		h.fail(w, ctx, "set fee recipient failed", err, "caller", caller.Hex())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSettingsResponse(settings))
}

func (h *Handler) HandleSetVerifier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := requireCaller(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateAddressRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	settings, err := h.service.SetVerifier(ctx, caller, req.ParsedAddress())
	if err != nil {
		h.fail(w, ctx, "set verifier failed", err, "caller", caller.Hex())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSettingsResponse(settings))
}

func (h *Handler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := requireCaller(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[WithdrawRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	withdrawal, err := h.service.Withdraw(ctx, caller, req.ParsedToken())
	if err != nil {
		h.fail(w, ctx, "withdraw failed", err, "caller", caller.Hex(), "token", req.ParsedToken().Hex())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toWithdrawalResponse(withdrawal))
}

func (h *Handler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	settings, err := h.service.Settings(ctx)
	if err != nil {
		h.fail(w, ctx, "read settings failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSettingsResponse(settings))
}
