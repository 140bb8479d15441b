package web

import "context"

// Handler is the terminal computation for a matched route. It receives the
// immutable request view and produces a response or fails with an error,
// which the Dispatcher converts to a wire-level response.
//
// Handlers are registered once per route and reused across all matching
// requests, so they must not retain per-request mutable state outside the
// Request. The context carries cancellation from the transport layer:
// blocking work should stop at its next checkpoint when the context is
// done.
type Handler interface {
	Handle(ctx context.Context, req *Request) (*Response, error)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, req *Request) (*Response, error)

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// StaticHandler returns a Handler that always responds with the given
// status, content type and body, for health endpoints and fixed content.
func StaticHandler(status int, contentType string, body []byte) Handler {
	return HandlerFunc(func(_ context.Context, _ *Request) (*Response, error) {
		resp := NewResponse().Status(status)
		if err := resp.SetBody(body); err != nil {
			return nil, err
		}
		if contentType != "" {
			resp.SetHeader("Content-Type", contentType)
		}
		return resp, nil
	})
}
