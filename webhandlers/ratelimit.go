package webhandlers

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/vitalvas/kiln/web"
)

// ErrInvalidRateLimit is returned when RateLimitConfig has a non-positive
// request budget or window.
var ErrInvalidRateLimit = errors.New("ratelimit: max requests and window must be positive")

// RateLimitConfig configures the RateLimit middleware behaviour.
type RateLimitConfig struct {
	// MaxRequests is the number of requests allowed per key per window.
	MaxRequests int

	// Window is the duration of the counting window.
	Window time.Duration

	// KeyFunc derives the limiting key from a request. Defaults to
	// ClientKey, which prefers proxy-forwarded addresses.
	KeyFunc func(req *web.Request) string
}

type rateWindow struct {
	count int
	start time.Time
}

// RateLimitMiddleware returns a middleware that limits requests per client
// within a fixed window. Requests over budget are answered with 429 Too
// Many Requests and a Retry-After header per RFC 6585 Section 4.
//
// The counter map is shared across concurrent requests and guarded by a
// mutex; synchronizing its own state is the middleware's responsibility,
// not the chain's.
func RateLimitMiddleware(cfg RateLimitConfig) (web.Middleware, error) {
	if cfg.MaxRequests <= 0 || cfg.Window <= 0 {
		return nil, ErrInvalidRateLimit
	}

	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = ClientKey
	}

	retryAfter := strconv.Itoa(int(cfg.Window / time.Second))

	var (
		mu      sync.Mutex
		windows = make(map[string]*rateWindow)
	)

	return web.MiddlewareFunc(func(ctx context.Context, req *web.Request, next web.Next) (*web.Response, error) {
		key := keyFunc(req)
		now := time.Now()

		mu.Lock()
		w, ok := windows[key]
		if !ok || now.Sub(w.start) > cfg.Window {
			w = &rateWindow{start: now}
			windows[key] = w
		}
		w.count++
		exceeded := w.count > cfg.MaxRequests
		mu.Unlock()

		if exceeded {
			resp, err := web.JSONResponse(http.StatusTooManyRequests, map[string]string{
				"error": "rate limit exceeded",
			})
			if err != nil {
				return nil, err
			}
			resp.SetHeader("Retry-After", retryAfter)
			return resp, nil
		}

		return next(ctx, req)
	}), nil
}

// ClientKey derives a rate-limiting key from the request: X-Forwarded-For,
// then X-Real-IP, then the remote address with the port stripped.
func ClientKey(req *web.Request) string {
	if v := req.HeaderValue("X-Forwarded-For"); v != "" {
		return v
	}
	if v := req.HeaderValue("X-Real-IP"); v != "" {
		return v
	}
	if host, _, err := net.SplitHostPort(req.RemoteAddr()); err == nil {
		return host
	}
	return req.RemoteAddr()
}
