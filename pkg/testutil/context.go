package testutil

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	authmw "mintgate/pkg/platform/middleware/auth"
	"mintgate/pkg/requestcontext"
)

// AsCaller attaches the wallet the auth middleware would have verified.
// The zero address leaves the request anonymous.
func AsCaller(req *http.Request, caller common.Address) *http.Request {
	if caller == (common.Address{}) {
		return req
	}
	return req.WithContext(requestcontext.WithCaller(req.Context(), caller))
}

// WithAuth attaches both the caller and the id of the token it presented.
func WithAuth(req *http.Request, caller common.Address, jti string) *http.Request {
	req = AsCaller(req, caller)
	if jti == "" {
		return req
	}
	return req.WithContext(authmw.WithTokenID(req.Context(), jti))
}
