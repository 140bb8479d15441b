package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
)

// DispatcherConfig configures Dispatcher behaviour.
type DispatcherConfig struct {
	// Production withholds internal error detail from 500-class response
	// bodies. When false, the underlying error text is included to aid
	// development.
	Production bool

	// OnError is an optional callback invoked when a request fails with an
	// error that reached the dispatch boundary unrecovered, after it has
	// been converted to a response. Contract violations such as a
	// continuation invoked twice are reported here as well.
	OnError func(req *Request, err error)

	// OnPanic is an optional callback invoked with the recovered value and
	// stack trace when a handler or middleware panics.
	OnPanic func(req *Request, v any, stack []byte)
}

// Dispatcher is the single entry point consumed by the transport layer:
// per request it resolves the route, injects extracted path parameters,
// executes the composed middleware chain around the matched handler, and
// converts any unrecovered failure into a well-formed response. No error or
// panic leaks past Dispatch: the request boundary is the outermost recovery
// point.
//
// A Dispatcher is safe for concurrent use: the route table is frozen at
// construction and the chain is composed fresh per request.
type Dispatcher struct {
	table      *Table
	production bool
	onError    func(req *Request, err error)
	onPanic    func(req *Request, v any, stack []byte)
}

// NewDispatcher builds a Dispatcher over the given route table and freezes
// it, marking the build-then-freeze initialization boundary. Registration
// on the table fails from this point on.
func NewDispatcher(table *Table, cfg DispatcherConfig) *Dispatcher {
	table.Freeze()
	return &Dispatcher{
		table:      table,
		production: cfg.Production,
		onError:    cfg.OnError,
		onPanic:    cfg.OnPanic,
	}
}

// Dispatch runs one request through the global middleware chain, route
// resolution and the route chain, and always produces a response. Route
// resolution happens inside the global chain, so logging and metrics
// middleware observe 404 and 405 outcomes too. Typed errors that bubble out
// of the chain unrecovered are converted here, the single place deciding
// status mapping for framework-level failures.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) *Response {
	resp, err := d.run(ctx, req)
	if err == nil && resp == nil {
		err = ErrNilResponse
	}
	if err != nil {
		if d.onError != nil {
			d.onError(req, err)
		}
		resp = d.errorResponse(err)
	}
	normalize(resp)
	return resp
}

// run executes the composed chain with panic containment. A fault anywhere
// in the chain is recovered and surfaced as an error so the caller still
// produces a 500-class response.
func (d *Dispatcher) run(ctx context.Context, req *Request) (resp *Response, err error) {
	defer func() {
		if v := recover(); v != nil {
			if d.onPanic != nil {
				d.onPanic(req, v, debug.Stack())
			}
			resp = nil
			err = &Error{
				Code:    http.StatusInternalServerError,
				Message: http.StatusText(http.StatusInternalServerError),
				Cause:   fmt.Errorf("panic: %v", v),
			}
		}
	}()

	return compose(d.table.middleware, HandlerFunc(d.resolve)).Handle(ctx, req)
}

// resolve is the terminal of the global chain: it looks up the route,
// injects the extracted path parameters into the request's extension state,
// and executes the route-scoped chain around the matched handler. A failed
// lookup propagates as a typed error with no parameter injection and no
// route-scoped middleware run.
func (d *Dispatcher) resolve(ctx context.Context, req *Request) (*Response, error) {
	m, err := d.table.Match(req.Method(), req.Path())
	if err != nil {
		return nil, err
	}

	req.setParams(m.Params)
	return compose(m.Route.middleware, m.Route.handler).Handle(ctx, req)
}

// errorResponse converts a typed error into a response per the framework
// error taxonomy. Application Errors keep their specified status and
// client message; everything unrecognized maps to 500 with internal detail
// withheld in production mode.
func (d *Dispatcher) errorResponse(err error) *Response {
	var mna *MethodNotAllowedError
	if errors.As(err, &mna) {
		resp := TextResponse(http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
		// RFC 9110 Section 15.5.6: a 405 response MUST carry Allow.
		resp.SetHeader("Allow", strings.Join(mna.Allow, ", "))
		return resp
	}

	if errors.Is(err, ErrRouteNotFound) {
		return TextResponse(http.StatusNotFound, http.StatusText(http.StatusNotFound))
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return TextResponse(appErr.status(), appErr.statusMessage())
	}

	body := http.StatusText(http.StatusInternalServerError)
	if !d.production {
		body = err.Error()
	}
	return TextResponse(http.StatusInternalServerError, body)
}

// normalize ensures required headers are present before the response is
// handed to the transport: Content-Length for byte bodies per RFC 9110
// Section 8.6, and a default Content-Type when a non-empty body carries
// none.
func normalize(resp *Response) {
	if resp.stream == nil {
		resp.header.Set("Content-Length", strconv.Itoa(len(resp.body)))
	}
	if (len(resp.body) > 0 || resp.stream != nil) && !resp.header.Has("Content-Type") {
		resp.header.Set("Content-Type", "application/octet-stream")
	}
}

// ServeHTTP adapts the Dispatcher to net/http: it builds the immutable
// request view, dispatches with the request's context so transport-level
// cancellation (client disconnect, deadline) propagates through the active
// chain, and writes the resulting response. The body stream is released on
// every exit path.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := FromHTTP(r)
	defer req.Close()

	resp := d.Dispatch(r.Context(), req)
	writeResponse(w, resp)
}

// writeResponse serializes a Response onto a net/http ResponseWriter,
// walking headers in insertion order.
func writeResponse(w http.ResponseWriter, resp *Response) {
	out := w.Header()
	resp.Header().Each(func(key string, values []string) {
		out[key] = values
	})
	w.WriteHeader(resp.StatusCode())

	if resp.stream != nil {
		_, _ = io.Copy(w, resp.stream)
		if c, ok := resp.stream.(io.Closer); ok {
			_ = c.Close()
		}
		return
	}
	_, _ = w.Write(resp.body)
}
