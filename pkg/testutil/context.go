package testutil

import (
	"net/http"

	"github.com/trackback-blockchain/plug-blockchain/pkg/domain"
	"github.com/trackback-blockchain/plug-blockchain/pkg/requestcontext"
)

// WithAccount attaches an account principal to the request context.
// This simulates what the auth middleware does for authenticated requests.
func WithAccount(req *http.Request, account domain.AccountID) *http.Request {
	ctx := requestcontext.WithCaller(req.Context(), requestcontext.AccountPrincipal(account))
	return req.WithContext(ctx)
}

// WithRoot attaches the root principal to the request context.
func WithRoot(req *http.Request) *http.Request {
	ctx := requestcontext.WithCaller(req.Context(), requestcontext.RootPrincipal())
	return req.WithContext(ctx)
}

// WithRequestID attaches a request id to the request context.
func WithRequestID(req *http.Request, id string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), id))
}
