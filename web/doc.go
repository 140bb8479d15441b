// Package web implements the request-dispatch core of the kiln framework:
// route registration and matching, middleware chain execution, and the
// conversion of failures into well-formed responses.
//
// The package implements dispatch semantics based on:
//   - RFC 9110 (HTTP Semantics)
//   - RFC 9112 (HTTP/1.1)
//   - RFC 3986 (URIs)
//
// # Route Table
//
// Routes are registered on a Table at startup and the table is frozen
// before any request is served. Registration is build-then-freeze: after
// Freeze (called implicitly by NewDispatcher), Match is safe to call
// concurrently without locking because the underlying structures are never
// mutated again.
//
//	t := web.NewTable()
//	t.Get("/users/:id", showUser)
//	t.Get("/files/*path", serveFile)
//	d := web.NewDispatcher(t, web.DispatcherConfig{})
//	http.ListenAndServe(":8080", d)
//
// # Patterns
//
// A pattern is a sequence of segments: literals, named parameters (":id",
// matching exactly one non-empty segment, percent-decoded) and a trailing
// wildcard ("*rest", binding the joined remainder). Malformed patterns fail
// registration with InvalidPatternError.
//
// When several routes could match a path, the most specific wins: literal
// segments outrank parameters, which outrank wildcards, compared left to
// right. Two routes indistinguishable under this ordering are rejected at
// registration with DuplicateRouteError, so matching is deterministic for
// any input and never depends on registration order.
//
//	t.Get("/users/new", newUserForm) // wins over /users/:id for /users/new
//	t.Get("/users/:id", showUser)
//
// # Handlers
//
// A Handler receives the immutable request view and returns a response or
// an error:
//
//	func showUser(ctx context.Context, req *web.Request) (*web.Response, error) {
//	    id, _ := req.Param("id")
//	    user, err := store.Find(ctx, id)
//	    if err != nil {
//	        return nil, web.Errorf(http.StatusNotFound, "no such user")
//	    }
//	    return web.JSONResponse(http.StatusOK, user)
//	}
//
// # Middleware
//
// Middleware wraps handler execution. Each unit receives the request and a
// continuation representing the rest of the chain; it may pass through,
// post-process the response, short-circuit with its own response, or fail
// with an error. The continuation is one-shot: a second invocation fails
// fast with ErrNextCalledTwice rather than re-executing the handler.
//
//	logger := web.MiddlewareFunc(func(ctx context.Context, req *web.Request, next web.Next) (*web.Response, error) {
//	    start := time.Now()
//	    resp, err := next(ctx, req)
//	    log.Printf("%s %s %v", req.Method(), req.Path(), time.Since(start))
//	    return resp, err
//	})
//	t.Use(logger)
//
// Global middleware (Table.Use) wraps route-scoped middleware (the variadic
// tail of Handle and friends), which wraps the handler. Middleware
// registered first runs outermost: its pre-logic first, its post-logic
// last. Route resolution itself runs inside the global chain, so global
// middleware observes 404 and 405 outcomes too.
//
// # Request and Response
//
// Request is read-only except for its extension map, a request-scoped store
// keyed by type-tagged keys for passing data between middleware and
// handlers (an authenticated user, a request ID). Path parameters extracted
// by the matcher are injected there before the chain runs.
//
// Response is a builder: status defaults to 200, headers preserve insertion
// order and support multi-value append (Set-Cookie semantics), and the body
// is finalized exactly once; a later write fails with
// ErrResponseAlreadySent.
//
// # Errors
//
// The Dispatcher is the sole converter from typed errors to wire-level
// responses:
//
//   - ErrRouteNotFound: 404
//   - MethodNotAllowedError: 405 with the mandatory Allow header
//   - *Error: the application-specified status, 500 when unset
//   - ErrResponseAlreadySent, ErrNextCalledTwice: 500, reported via OnError
//     as contract violations
//   - anything else, including recovered panics: 500, with internal detail
//     withheld from the body in production mode
//
// Middleware may recover locally by catching an error from its continuation
// and substituting a response; anything not recovered bubbles to the
// Dispatcher. No error or panic leaks to the transport layer: Dispatch
// always returns a valid response.
//
// # Sub-routers
//
// Mount composes a sub-table under a literal prefix. The sub-table's global
// middleware becomes route-scoped middleware on the mounted routes:
//
//	api := web.NewTable()
//	api.Use(requireAuth)
//	api.Get("/users", listUsers)
//	t.Mount("/api/v1", api)
package web
