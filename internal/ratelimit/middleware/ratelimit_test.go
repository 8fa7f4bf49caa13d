package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"

	"mintgate/internal/ratelimit/models"
	"mintgate/internal/ratelimit/store/bucket"
	"mintgate/pkg/requestcontext"
	"mintgate/pkg/testutil"
)

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (*models.RateLimitResult, error) {
	return nil, errors.New("redis down")
}

func newMiddleware(store BucketStore, opts ...Option) *Middleware {
	return New(store, slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)
}

func serve(h http.Handler, ip string, caller common.Address) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/challenge", nil)
	ctx := requestcontext.WithClientMetadata(req.Context(), ip, "test")
	if caller != (common.Address{}) {
		ctx = requestcontext.WithCaller(ctx, caller)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req.WithContext(ctx))
	return w
}

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

func TestRateLimitByIP(t *testing.T) {
	testutil.Given(t, "an auth class allowing two requests per minute", func(t *testing.T) {
		m := newMiddleware(bucket.NewInMemoryBucketStore(),
			WithLimit(models.ClassAuth, models.Limit{Requests: 2, Window: time.Minute}))
		h := m.RateLimit(models.ClassAuth)(ok)

		testutil.When(t, "one client spends its budget", func(t *testing.T) {
			assert.Equal(t, http.StatusNoContent, serve(h, "10.0.0.1", common.Address{}).Code)
			w := serve(h, "10.0.0.1", common.Address{})
			assert.Equal(t, http.StatusNoContent, w.Code)
			assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

			testutil.Then(t, "its next request is rejected with Retry-After", func(t *testing.T) {
				w := serve(h, "10.0.0.1", common.Address{})
				assert.Equal(t, http.StatusTooManyRequests, w.Code)
				assert.NotEmpty(t, w.Header().Get("Retry-After"))
			})
			testutil.Then(t, "other clients keep their budget", func(t *testing.T) {
				assert.Equal(t, http.StatusNoContent, serve(h, "10.0.0.2", common.Address{}).Code)
			})
		})
	})
}

func TestRateLimitCaller(t *testing.T) {
	alice := common.HexToAddress("0x000000000000000000000000000000000000a11c")
	bob := common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	m := newMiddleware(bucket.NewInMemoryBucketStore(),
		WithLimit(models.ClassWrite, models.Limit{Requests: 1, Window: time.Minute}))
	h := m.RateLimitCaller(models.ClassWrite)(ok)

	assert.Equal(t, http.StatusNoContent, serve(h, "10.0.0.1", alice).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(h, "10.0.0.9", alice).Code, "budget follows the caller across IPs")
	assert.Equal(t, http.StatusNoContent, serve(h, "10.0.0.1", bob).Code)
}

func TestRateLimitFailsOpen(t *testing.T) {
	h := newMiddleware(failingStore{}).RateLimit(models.ClassAuth)(ok)
	assert.Equal(t, http.StatusNoContent, serve(h, "10.0.0.1", common.Address{}).Code)
}

func TestRateLimitDisabled(t *testing.T) {
	h := newMiddleware(failingStore{}, WithDisabled(true)).RateLimit(models.ClassAuth)(ok)
	assert.Equal(t, http.StatusNoContent, serve(h, "10.0.0.1", common.Address{}).Code)
}
