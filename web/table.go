package web

import (
	"net/http"
	"sort"
	"strings"
)

// Table is the route table: it owns the registered routes and the path
// matcher. Registration happens at startup; Freeze marks the end of
// construction, after which the table is read-only and Match is safe to
// call concurrently from many request-handling goroutines without
// synchronization.
type Table struct {
	routes     []*Route
	middleware []Middleware
	frozen     bool
}

// NewTable returns an empty route table.
func NewTable() *Table {
	return &Table{}
}

// Use appends global middleware, applied to every dispatched request in
// registration order, outermost first. Global middleware wraps route-scoped
// middleware, so it sees every request first and every response last.
func (t *Table) Use(mw ...Middleware) error {
	if t.frozen {
		return ErrTableFrozen
	}
	t.middleware = append(t.middleware, mw...)
	return nil
}

// Handle registers a route for the given method and pattern. Registration
// fails fast with InvalidPatternError when the pattern is malformed, and
// with DuplicateRouteError when the pattern is specificity-ambiguous with
// an existing route for the same method, since silent ambiguity would make
// matching outcome registration-order dependent.
func (t *Table) Handle(method, patternText string, h Handler, mw ...Middleware) error {
	if t.frozen {
		return ErrTableFrozen
	}

	p, err := parsePattern(patternText)
	if err != nil {
		return err
	}

	method = strings.ToUpper(method)
	for _, existing := range t.routes {
		if existing.method == method && existing.pattern.conflicts(p) {
			return &DuplicateRouteError{
				Method:   method,
				Pattern:  patternText,
				Existing: existing.pattern.String(),
			}
		}
	}

	t.routes = append(t.routes, &Route{
		method:     method,
		pattern:    p,
		handler:    h,
		middleware: mw,
	})
	return nil
}

// Get registers a GET route.
func (t *Table) Get(pattern string, h Handler, mw ...Middleware) error {
	return t.Handle(http.MethodGet, pattern, h, mw...)
}

// Post registers a POST route.
func (t *Table) Post(pattern string, h Handler, mw ...Middleware) error {
	return t.Handle(http.MethodPost, pattern, h, mw...)
}

// Put registers a PUT route.
func (t *Table) Put(pattern string, h Handler, mw ...Middleware) error {
	return t.Handle(http.MethodPut, pattern, h, mw...)
}

// Patch registers a PATCH route.
func (t *Table) Patch(pattern string, h Handler, mw ...Middleware) error {
	return t.Handle(http.MethodPatch, pattern, h, mw...)
}

// Delete registers a DELETE route.
func (t *Table) Delete(pattern string, h Handler, mw ...Middleware) error {
	return t.Handle(http.MethodDelete, pattern, h, mw...)
}

// Mount registers every route of sub under the given literal prefix. The
// sub-table's global middleware becomes route-scoped middleware on the
// mounted routes, running before each route's own middleware, so a
// sub-router keeps its cross-cutting behaviour when composed into a larger
// application.
func (t *Table) Mount(prefix string, sub *Table) error {
	if t.frozen {
		return ErrTableFrozen
	}

	pp, err := parsePattern(prefixPattern(prefix))
	if err != nil {
		return err
	}
	for _, seg := range pp.segments {
		if seg.kind != segmentLiteral {
			return &InvalidPatternError{Pattern: prefix, Reason: "mount prefix must be literal"}
		}
	}

	for _, route := range sub.routes {
		scoped := make([]Middleware, 0, len(sub.middleware)+len(route.middleware))
		scoped = append(scoped, sub.middleware...)
		scoped = append(scoped, route.middleware...)

		pattern := strings.TrimSuffix(prefix, "/") + route.pattern.String()
		if err := t.Handle(route.method, pattern, route.handler, scoped...); err != nil {
			return err
		}
	}
	return nil
}

// prefixPattern normalizes a mount prefix for validation. An empty prefix
// mounts at the root.
func prefixPattern(prefix string) string {
	if prefix == "" {
		return "/"
	}
	return prefix
}

// Freeze marks the end of table construction. Further registration fails
// with ErrTableFrozen. Freezing is what makes lock-free concurrent matching
// sound: the underlying structures are never mutated afterwards.
func (t *Table) Freeze() {
	t.frozen = true
}

// Frozen reports whether the table has been frozen.
func (t *Table) Frozen() bool { return t.frozen }

// Routes returns the registered routes, for inspection and startup logs.
func (t *Table) Routes() []*Route {
	out := make([]*Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Match stores the outcome of a successful table lookup.
type Match struct {
	// Route is the matched route.
	Route *Route

	// Params holds the path parameters extracted by the matcher,
	// percent-decoded. Nil when the pattern captures nothing.
	Params map[string]string
}

// Match resolves a method and path to the registered route that should
// handle it. When several routes match the path, the most specific one
// wins: literal segments outrank named parameters, which outrank wildcards,
// compared left to right with the first point of difference deciding.
// Because ambiguous registrations are rejected up front, the outcome is
// deterministic for any input regardless of registration order.
//
// It returns ErrRouteNotFound when nothing matches, and a
// MethodNotAllowedError listing the allowed methods when at least one route
// matches the path under a different method, per RFC 9110 Section 15.5.6.
func (t *Table) Match(method, path string) (*Match, error) {
	segs := splitPath(path)

	var (
		best       *Route
		bestParams map[string]string
		allowed    map[string]struct{}
	)

	for _, route := range t.routes {
		params, ok := route.pattern.match(segs)
		if !ok {
			continue
		}

		if route.method != method {
			if allowed == nil {
				allowed = make(map[string]struct{})
			}
			allowed[route.method] = struct{}{}
			continue
		}

		if best == nil || route.pattern.compareSpecificity(best.pattern) > 0 {
			best = route
			bestParams = params
		}
	}

	if best != nil {
		return &Match{Route: best, Params: bestParams}, nil
	}

	if len(allowed) > 0 {
		allow := make([]string, 0, len(allowed))
		for m := range allowed {
			allow = append(allow, m)
		}
		sort.Strings(allow)
		return nil, &MethodNotAllowedError{Allow: allow}
	}

	return nil, ErrRouteNotFound
}
