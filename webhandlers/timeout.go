package webhandlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/vitalvas/kiln/web"
)

// ErrInvalidTimeout is returned when TimeoutConfig.Duration is not greater
// than zero.
var ErrInvalidTimeout = errors.New("timeout: duration must be greater than zero")

// TimeoutConfig configures the Timeout middleware behaviour.
type TimeoutConfig struct {
	// Duration is the maximum time allowed for the downstream chain to
	// complete. Must be greater than zero.
	Duration time.Duration

	// Message is the response body returned on timeout. When empty, the
	// standard 503 status text is used.
	Message string
}

// TimeoutMiddleware returns a middleware that bounds downstream execution
// time. It derives a deadline-carrying context, so handlers that honour
// cancellation stop at their next checkpoint; when the deadline passes,
// their error is substituted with 503 Service Unavailable.
//
// It returns ErrInvalidTimeout if Duration is not greater than zero.
func TimeoutMiddleware(cfg TimeoutConfig) (web.Middleware, error) {
	if cfg.Duration <= 0 {
		return nil, ErrInvalidTimeout
	}

	message := cfg.Message
	if message == "" {
		message = http.StatusText(http.StatusServiceUnavailable)
	}
	duration := cfg.Duration

	return web.MiddlewareFunc(func(ctx context.Context, req *web.Request, next web.Next) (*web.Response, error) {
		tctx, cancel := context.WithTimeout(ctx, duration)
		defer cancel()

		resp, err := next(tctx, req)
		if err != nil && errors.Is(err, context.DeadlineExceeded) && tctx.Err() != nil {
			return web.TextResponse(http.StatusServiceUnavailable, message), nil
		}
		return resp, err
	}), nil
}
