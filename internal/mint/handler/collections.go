package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mintgate/internal/mint/models"
	"mintgate/pkg/platform/httputil"
	"mintgate/pkg/requestcontext"
)

// HandleCreateCollection handles POST /collections. The caller becomes the
// collection's artist.
func (h *Handler) HandleCreateCollection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()
	caller, ok := requireCaller(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateCollectionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	c, err := h.service.CreateCollection(ctx, caller, req.Spec())
	if err != nil {
		h.fail(w, ctx, "create collection failed", err, "caller", caller.Hex())
		return
	}
	h.logger.InfoContext(ctx, "collection created",
		"request_id", requestID,
		"collection_id", c.ID,
		"artist", caller.Hex(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, toCollectionResponse(c))
}

func (h *Handler) HandleUpdateMintCap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := requireCaller(w, ctx)
	if !ok {
		return
	}
	id, ok := pathUint(w, r, "id")
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateMintCapRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	h.writeCollection(w, r, "update mint cap failed", func() (*models.Collection, error) {
		return h.service.UpdateMintCap(ctx, caller, id, req.MintCap)
	})
}

func (h *Handler) HandleUpdateStartTime(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := requireCaller(w, ctx)
	if !ok {
		return
	}
	id, ok := pathUint(w, r, "id")
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateStartTimeRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	h.writeCollection(w, r, "update start time failed", func() (*models.Collection, error) {
		return h.service.UpdateStartTime(ctx, caller, id, req.StartTime)
	})
}

func (h *Handler) HandleUpdateEndTime(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := requireCaller(w, ctx)
	if !ok {
		return
	}
	id, ok := pathUint(w, r, "id")
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateEndTimeRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	h.writeCollection(w, r, "update end time failed", func() (*models.Collection, error) {
		return h.service.UpdateEndTime(ctx, caller, id, req.EndTime)
	})
}

func (h *Handler) HandleGetCollection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathUint(w, r, "id")
	if !ok {
		return
	}
	h.writeCollection(w, r, "read collection failed", func() (*models.Collection, error) {
		return h.service.Collection(ctx, id)
	})
}

func (h *Handler) HandleArtistCollections(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	artist, ok := pathAddress(w, r, "address")
	if !ok {
		return
	}
	ids, err := h.service.CollectionsByArtist(ctx, artist)
	if err != nil {
		h.fail(w, ctx, "list artist collections failed", err, "artist", artist.Hex())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CollectionIDsResponse{Artist: artist.Hex(), CollectionIDs: ids})
}

func (h *Handler) writeCollection(w http.ResponseWriter, r *http.Request, msg string, fn func() (*models.Collection, error)) {
	c, err := fn()
	if err != nil {
		h.fail(w, r.Context(), msg, err, "collection_id", chi.URLParam(r, "id"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCollectionResponse(c))
}
