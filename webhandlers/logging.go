package webhandlers

import (
	"context"
	"time"

	"github.com/vitalvas/kiln/web"
)

// AccessEntry describes one completed request, delivered to the logging
// sink after the downstream chain has finished.
type AccessEntry struct {
	Method   string
	Path     string
	Status   int
	Duration time.Duration

	// Err is the error that bubbled out of the downstream chain, if any.
	// When Err is non-nil, Status is zero: the status mapping happens
	// later, at the dispatch boundary.
	Err error
}

// LoggingConfig configures the Logging middleware behaviour.
type LoggingConfig struct {
	// LogFunc receives one AccessEntry per request. When nil, the
	// middleware is a pass-through.
	LogFunc func(entry AccessEntry)
}

// LoggingMiddleware returns a middleware that records method, path, status
// and duration for every request flowing through it. Attach it as global
// middleware to also observe requests that resolve to 404 or 405, since
// route resolution runs inside the global chain.
func LoggingMiddleware(cfg LoggingConfig) web.Middleware {
	logFunc := cfg.LogFunc

	return web.MiddlewareFunc(func(ctx context.Context, req *web.Request, next web.Next) (*web.Response, error) {
		start := time.Now()
		resp, err := next(ctx, req)

		if logFunc != nil {
			entry := AccessEntry{
				Method:   req.Method(),
				Path:     req.Path(),
				Duration: time.Since(start),
				Err:      err,
			}
			if err == nil && resp != nil {
				entry.Status = resp.StatusCode()
			}
			logFunc(entry)
		}

		return resp, err
	})
}
