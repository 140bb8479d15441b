package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrRouteNotFound is returned by Table.Match when no registered route
// matches the request path. Triggers 404 Not Found per RFC 9110
// Section 15.5.5.
var ErrRouteNotFound = errors.New("web: no matching route")

// ErrTableFrozen is returned when registering a route or middleware on a
// table after Freeze has been called. Route tables are build-then-freeze:
// all registration happens at startup, before any request is served.
var ErrTableFrozen = errors.New("web: route table is frozen")

// ErrResponseAlreadySent is returned when a handler or middleware attempts
// to write a response body after it has been finalized. This is a
// framework-contract violation and maps to 500 Internal Server Error.
var ErrResponseAlreadySent = errors.New("web: response body already finalized")

// ErrNextCalledTwice is returned when a middleware invokes its continuation
// more than once. The continuation represents the remainder of the chain and
// must be invoked at most once per request; a second call would re-execute
// downstream effects. This is a framework-contract violation and maps to
// 500 Internal Server Error.
var ErrNextCalledTwice = errors.New("web: middleware continuation invoked more than once")

// ErrNilResponse is returned when a handler or middleware returns neither a
// response nor an error. Maps to 500 Internal Server Error.
var ErrNilResponse = errors.New("web: handler returned neither response nor error")

// MethodNotAllowedError is returned by Table.Match when at least one route
// matches the request path under a different method. The Dispatcher converts
// it to 405 Method Not Allowed and sets the Allow header, which is mandatory
// per RFC 9110 Section 15.5.6.
type MethodNotAllowedError struct {
	// Allow lists the methods registered for the matched path, sorted.
	Allow []string
}

func (e *MethodNotAllowedError) Error() string {
	return fmt.Sprintf("web: method not allowed (allow: %s)", strings.Join(e.Allow, ", "))
}

// InvalidPatternError is returned at registration time when a route pattern
// is malformed. It never occurs during request handling.
type InvalidPatternError struct {
	Pattern string
	Reason  string
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("web: invalid pattern %q: %s", e.Pattern, e.Reason)
}

// DuplicateRouteError is returned at registration time when a new route is
// indistinguishable from an already registered route under the specificity
// ordering, meaning some request could match both without a defined winner.
// Silent ambiguity is a correctness bug, so registration fails fast instead.
type DuplicateRouteError struct {
	Method   string
	Pattern  string
	Existing string
}

func (e *DuplicateRouteError) Error() string {
	return fmt.Sprintf("web: route %s %s is ambiguous with registered route %s %s",
		e.Method, e.Pattern, e.Method, e.Existing)
}

// Error is an application-level failure carrying the HTTP status code that
// should be used in the response and a client-facing message. The Dispatcher
// maps it to Code, defaulting to 500 when Code is zero. Cause holds the
// underlying error for logs and is never sent to the client.
type Error struct {
	Code    int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("web: [%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("web: [%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As
// checks through the wrapper.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Errorf returns an application Error with the given status code and
// formatted client-facing message.
func Errorf(code int, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// statusMessage returns the client-facing message for an Error, falling
// back to the standard status text when the message is empty.
func (e *Error) statusMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.status())
}

// status returns the effective status code, defaulting to 500.
func (e *Error) status() int {
	if e.Code == 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}
