package web

import (
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Request is the immutable per-request view handed to middleware and
// handlers. The request line, headers and query are read-only; the only
// mutable parts are the extension map, which is append/overwrite-only, and
// the body stream, which may be consumed once.
//
// A Request is exclusively owned by the single task handling it and is never
// shared across concurrent requests, so no field requires synchronization.
type Request struct {
	method     string
	path       string
	rawQuery   string
	proto      string
	remoteAddr string
	header     http.Header
	query      url.Values
	body       io.ReadCloser

	// ext carries request-scoped values between middleware and handlers,
	// keyed by type-tagged keys to avoid collisions between unrelated
	// packages (same convention as context.Context keys).
	ext map[any]any

	// params holds path parameters extracted by the matcher. They are
	// injected by the Dispatcher before the route chain runs.
	params map[string]string
}

// NewRequest builds a Request from a method and request target. The query
// string, if present, is stripped from the path before matching and parsed
// separately, per RFC 3986 Section 3.4. Intended for tests and for transport
// layers that do not go through net/http; see FromHTTP for the usual path.
func NewRequest(method, target string, body io.Reader) *Request {
	path, rawQuery, _ := strings.Cut(target, "?")
	query, _ := url.ParseQuery(rawQuery)

	var rc io.ReadCloser
	if body != nil {
		if c, ok := body.(io.ReadCloser); ok {
			rc = c
		} else {
			rc = io.NopCloser(body)
		}
	}

	return &Request{
		method:   method,
		path:     path,
		rawQuery: rawQuery,
		proto:    "HTTP/1.1",
		header:   make(http.Header),
		query:    query,
		body:     rc,
	}
}

// FromHTTP builds the immutable Request view from a net/http request. This
// is the transport-boundary constructor used by Dispatcher.ServeHTTP.
func FromHTTP(r *http.Request) *Request {
	return &Request{
		method:     r.Method,
		path:       r.URL.Path,
		rawQuery:   r.URL.RawQuery,
		proto:      r.Proto,
		remoteAddr: r.RemoteAddr,
		header:     r.Header,
		query:      r.URL.Query(),
		body:       r.Body,
	}
}

// Method returns the HTTP method token per RFC 9110 Section 9.
func (r *Request) Method() string { return r.method }

// Path returns the request path with the query string already stripped.
func (r *Request) Path() string { return r.path }

// Proto returns the protocol version, e.g. "HTTP/1.1".
func (r *Request) Proto() string { return r.proto }

// RemoteAddr returns the network address of the peer, when known.
func (r *Request) RemoteAddr() string { return r.remoteAddr }

// Header returns the request headers. Header keys are case-insensitive per
// RFC 9110 Section 5.1; use the http.Header accessors. The returned map is
// the live view and must not be mutated.
func (r *Request) Header() http.Header { return r.header }

// HeaderValue returns the first value of the named header, or "".
func (r *Request) HeaderValue(name string) string { return r.header.Get(name) }

// Query returns the parsed query parameters. Values are multi-valued per
// key, per RFC 3986 Section 3.4. The returned map must not be mutated.
func (r *Request) Query() url.Values { return r.query }

// QueryValue returns the first query value for the given key, or "".
func (r *Request) QueryValue(key string) string { return r.query.Get(key) }

// Body returns the request body stream. The body is lazily consumable: it
// is read at most once and only when a handler asks for it. May be nil for
// bodyless requests.
func (r *Request) Body() io.ReadCloser { return r.body }

// Close releases the body stream. The transport adapter defers it so the
// stream is released deterministically on every exit path, including
// cancellation. Closing a request with no body is a no-op.
func (r *Request) Close() error {
	if r.body == nil {
		return nil
	}
	return r.body.Close()
}

// Set stores a request-scoped value under the given key. Keys should be
// unexported types defined by the storing package so unrelated middleware
// cannot collide. Entries can be overwritten but never removed.
func (r *Request) Set(key, value any) {
	if r.ext == nil {
		r.ext = make(map[any]any)
	}
	r.ext[key] = value
}

// Value returns the request-scoped value stored under key, and whether one
// is present.
func (r *Request) Value(key any) (any, bool) {
	v, ok := r.ext[key]
	return v, ok
}

// Param returns the path parameter captured under name by the matched
// route, and whether the parameter exists.
func (r *Request) Param(name string) (string, bool) {
	v, ok := r.params[name]
	return v, ok
}

// Params returns a copy of all captured path parameters.
func (r *Request) Params() map[string]string {
	out := make(map[string]string, len(r.params))
	for k, v := range r.params {
		out[k] = v
	}
	return out
}

// setParams injects matcher-extracted path parameters. Called by the
// Dispatcher before the chain runs.
func (r *Request) setParams(params map[string]string) {
	r.params = params
}
