package web

// Route binds an HTTP method and a compiled path pattern to a handler,
// optionally with route-scoped middleware. Routes are created through the
// Table registration API and are read-only afterwards.
type Route struct {
	method     string
	pattern    *pattern
	handler    Handler
	middleware []Middleware
}

// Method returns the HTTP method the route matches.
func (r *Route) Method() string { return r.method }

// Pattern returns the route's pattern text as registered.
func (r *Route) Pattern() string { return r.pattern.String() }
