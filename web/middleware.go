package web

import (
	"context"
	"sync/atomic"
)

// Next is the continuation handed to a middleware, representing the
// remainder of the chain including the terminal handler. It must be invoked
// at most once per request; a second invocation fails fast with
// ErrNextCalledTwice instead of silently re-executing downstream effects.
// The at-most-once contract holds across suspension points: a middleware
// that blocks before or after calling the continuation is still only
// permitted one call.
type Next func(ctx context.Context, req *Request) (*Response, error)

// Middleware intercepts handler execution. An implementation may:
//
//  1. Call next once and return its result unchanged (observation).
//  2. Call next, modify the resulting response, and return it
//     (post-processing).
//  3. Return its own response without calling next (short-circuit).
//  4. Fail with an error, which propagates to the nearest recovering
//     middleware or to the Dispatcher.
//
// Middleware instances are process-wide and reused across concurrent
// requests: they must be stateless or internally synchronize any shared
// state they keep. Per-request state belongs in the Request extension map.
type Middleware interface {
	Intercept(ctx context.Context, req *Request, next Next) (*Response, error)
}

// MiddlewareFunc adapts a plain function to the Middleware interface.
type MiddlewareFunc func(ctx context.Context, req *Request, next Next) (*Response, error)

// Intercept calls f.
func (f MiddlewareFunc) Intercept(ctx context.Context, req *Request, next Next) (*Response, error) {
	return f(ctx, req, next)
}

// oneShot wraps a handler as a continuation that can be invoked at most
// once. The guard is an atomic swap so a misbehaving middleware that calls
// the continuation from concurrent goroutines still fails fast rather than
// double-executing the handler.
func oneShot(h Handler) Next {
	var used atomic.Bool
	return func(ctx context.Context, req *Request) (*Response, error) {
		if !used.CompareAndSwap(false, true) {
			return nil, ErrNextCalledTwice
		}
		return h.Handle(ctx, req)
	}
}

// wrap turns one middleware plus its downstream handler into a Handler,
// giving the middleware a fresh one-shot continuation per invocation.
func wrap(m Middleware, downstream Handler) Handler {
	return HandlerFunc(func(ctx context.Context, req *Request) (*Response, error) {
		return m.Intercept(ctx, req, oneShot(downstream))
	})
}

// compose folds the middleware list around the terminal handler, from the
// terminal outward, so the first-registered middleware wraps outermost: it
// runs its pre-logic first and sees the response last. The composed handler
// is built per request, so the one-shot guards start fresh every time.
func compose(middleware []Middleware, terminal Handler) Handler {
	h := terminal
	for i := len(middleware) - 1; i >= 0; i-- {
		h = wrap(middleware[i], h)
	}
	return h
}
