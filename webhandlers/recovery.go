package webhandlers

import (
	"context"
	"net/http"
	"runtime/debug"

	"github.com/vitalvas/kiln/web"
)

// RecoveryConfig configures the Recovery middleware behaviour.
type RecoveryConfig struct {
	// LogFunc is an optional callback invoked with the request, the
	// recovered value and the stack trace when a panic occurs.
	LogFunc func(req *web.Request, v any, stack []byte)
}

// RecoveryMiddleware returns a middleware that recovers from panics in the
// downstream chain and substitutes a 500 Internal Server Error response.
//
// The Dispatcher already contains panics at the request boundary; this
// middleware exists for route-scoped recovery, so a panic inside one route
// group can be logged and answered without reaching outer middleware.
func RecoveryMiddleware(cfg RecoveryConfig) web.Middleware {
	logFunc := cfg.LogFunc

	return web.MiddlewareFunc(func(ctx context.Context, req *web.Request, next web.Next) (resp *web.Response, err error) {
		defer func() {
			if v := recover(); v != nil {
				if logFunc != nil {
					logFunc(req, v, debug.Stack())
				}
				resp = web.TextResponse(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
				err = nil
			}
		}()

		return next(ctx, req)
	})
}
