package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/textproto"
)

// Headers is an ordered header collection. Unlike http.Header, it preserves
// insertion order for serialization. Keys are canonicalized and compared
// case-insensitively per RFC 9110 Section 5.1. Set replaces all values for
// a key; Add appends, which is the correct behaviour for multi-value
// headers such as Set-Cookie (RFC 6265 Section 3).
type Headers struct {
	fields []headerField
}

type headerField struct {
	key    string
	values []string
}

// Set replaces all values of the named header. Insertion position is kept
// when the key already exists.
func (h *Headers) Set(key, value string) {
	key = textproto.CanonicalMIMEHeaderKey(key)
	for i := range h.fields {
		if h.fields[i].key == key {
			h.fields[i].values = []string{value}
			return
		}
	}
	h.fields = append(h.fields, headerField{key: key, values: []string{value}})
}

// Add appends a value to the named header, preserving existing values.
func (h *Headers) Add(key, value string) {
	key = textproto.CanonicalMIMEHeaderKey(key)
	for i := range h.fields {
		if h.fields[i].key == key {
			h.fields[i].values = append(h.fields[i].values, value)
			return
		}
	}
	h.fields = append(h.fields, headerField{key: key, values: []string{value}})
}

// Get returns the first value of the named header, or "".
func (h *Headers) Get(key string) string {
	key = textproto.CanonicalMIMEHeaderKey(key)
	for i := range h.fields {
		if h.fields[i].key == key {
			if len(h.fields[i].values) == 0 {
				return ""
			}
			return h.fields[i].values[0]
		}
	}
	return ""
}

// Values returns all values of the named header in insertion order.
func (h *Headers) Values(key string) []string {
	key = textproto.CanonicalMIMEHeaderKey(key)
	for i := range h.fields {
		if h.fields[i].key == key {
			return h.fields[i].values
		}
	}
	return nil
}

// Has reports whether the named header is present.
func (h *Headers) Has(key string) bool {
	key = textproto.CanonicalMIMEHeaderKey(key)
	for i := range h.fields {
		if h.fields[i].key == key {
			return true
		}
	}
	return false
}

// Len returns the number of distinct header keys.
func (h *Headers) Len() int { return len(h.fields) }

// Each calls fn for every header in insertion order.
func (h *Headers) Each(fn func(key string, values []string)) {
	for i := range h.fields {
		fn(h.fields[i].key, h.fields[i].values)
	}
}

// Response is the mutable response builder produced by a terminal handler,
// by a short-circuiting middleware, or synthesized by the Dispatcher from a
// failure. A Response is exclusively owned by the single task handling the
// request.
//
// Headers may be set or added at any time; the body may be finalized exactly
// once. Writing the body after finalization returns ErrResponseAlreadySent.
type Response struct {
	status    int
	header    Headers
	body      []byte
	stream    io.Reader
	finalized bool
}

// NewResponse returns an empty response with status 200 OK and no body.
func NewResponse() *Response {
	return &Response{status: http.StatusOK}
}

// Status sets the response status code and returns the response for
// chaining.
func (r *Response) Status(code int) *Response {
	r.status = code
	return r
}

// StatusCode returns the response status code.
func (r *Response) StatusCode() int { return r.status }

// SetHeader sets the named header, replacing existing values, and returns
// the response for chaining.
func (r *Response) SetHeader(key, value string) *Response {
	r.header.Set(key, value)
	return r
}

// AddHeader appends a value to the named header and returns the response
// for chaining.
func (r *Response) AddHeader(key, value string) *Response {
	r.header.Add(key, value)
	return r
}

// Header returns the ordered response headers for inspection or direct
// manipulation by post-processing middleware.
func (r *Response) Header() *Headers { return &r.header }

// SetBody finalizes the response with the given byte body. A second call,
// or a call after Stream, returns ErrResponseAlreadySent.
func (r *Response) SetBody(body []byte) error {
	if r.finalized {
		return ErrResponseAlreadySent
	}
	r.finalized = true
	r.body = body
	return nil
}

// Stream finalizes the response with a streaming body. Content-Length is
// not set for streamed bodies; the transport falls back to chunked
// encoding per RFC 9112 Section 7.1.
func (r *Response) Stream(body io.Reader) error {
	if r.finalized {
		return ErrResponseAlreadySent
	}
	r.finalized = true
	r.stream = body
	return nil
}

// Text finalizes the response with a text/plain body.
func (r *Response) Text(s string) error {
	if err := r.SetBody([]byte(s)); err != nil {
		return err
	}
	r.header.Set("Content-Type", "text/plain; charset=utf-8")
	return nil
}

// HTML finalizes the response with a text/html body.
func (r *Response) HTML(s string) error {
	if err := r.SetBody([]byte(s)); err != nil {
		return err
	}
	r.header.Set("Content-Type", "text/html; charset=utf-8")
	return nil
}

// JSON finalizes the response with the JSON encoding of v.
func (r *Response) JSON(v any) error {
	if r.finalized {
		return ErrResponseAlreadySent
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := r.SetBody(data); err != nil {
		return err
	}
	r.header.Set("Content-Type", "application/json")
	return nil
}

// Redirect sets a 302 Found redirect to location per RFC 9110
// Section 15.4.3 and finalizes the response with an empty body.
func (r *Response) Redirect(location string) error {
	if err := r.SetBody(nil); err != nil {
		return err
	}
	r.status = http.StatusFound
	r.header.Set("Location", location)
	return nil
}

// Body returns the finalized byte body, or nil for streamed or empty
// responses.
func (r *Response) Body() []byte { return r.body }

// BodyStream returns the streaming body, or nil.
func (r *Response) BodyStream() io.Reader { return r.stream }

// Finalized reports whether the body has been finalized.
func (r *Response) Finalized() bool { return r.finalized }

// TextResponse is a convenience constructor for a finalized text response.
func TextResponse(status int, s string) *Response {
	r := NewResponse().Status(status)
	_ = r.Text(s) // fresh response, cannot be finalized
	return r
}

// JSONResponse is a convenience constructor for a finalized JSON response.
// Encoding failures are returned rather than half-writing a body.
func JSONResponse(status int, v any) (*Response, error) {
	r := NewResponse().Status(status)
	if err := r.JSON(v); err != nil {
		return nil, err
	}
	return r, nil
}

// RedirectResponse is a convenience constructor for a 302 Found redirect.
func RedirectResponse(location string) *Response {
	r := NewResponse()
	_ = r.Redirect(location)
	return r
}
