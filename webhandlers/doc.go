// Package webhandlers provides middleware and handlers for the web
// dispatcher.
//
// # Request ID Middleware
//
// RequestIDMiddleware assigns each request a unique identifier (RFC 9562
// UUID by default), stores it on the request for downstream handlers, and
// echoes it in a response header.
//
//	mw := webhandlers.RequestIDMiddleware(webhandlers.RequestIDConfig{
//	    GenerateFunc: webhandlers.GenerateUUIDv7,
//	})
//	table.Use(mw)
//
// # Logging Middleware
//
// LoggingMiddleware records one access entry per request with method, path,
// status, and duration.
//
//	mw := webhandlers.LoggingMiddleware(webhandlers.LoggingConfig{
//	    LogFunc: func(e webhandlers.AccessEntry) {
//	        log.Printf("%s %s %d %s", e.Method, e.Path, e.Status, e.Duration)
//	    },
//	})
//	table.Use(mw)
//
// # Auth Guard Middleware
//
// AuthGuardMiddleware enforces authentication and role-based authorization.
// Unauthenticated requests receive 401 Unauthorized (RFC 9110 section 15.5.2)
// or a redirect; authenticated requests lacking a required role receive
// 403 Forbidden.
//
//	mw := webhandlers.AuthGuardMiddleware(webhandlers.AuthGuardConfig{
//	    RequiredRoles: []string{"admin"},
//	})
//	table.Use(mw)
//
// # Rate Limit Middleware
//
// RateLimitMiddleware enforces a per-client request budget over a fixed
// window, responding with 429 Too Many Requests (RFC 6585) and a Retry-After
// header when exceeded.
//
//	mw, err := webhandlers.RateLimitMiddleware(webhandlers.RateLimitConfig{
//	    MaxRequests: 100,
//	    Window:      time.Minute,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	table.Use(mw)
//
// # Compression Middleware
//
// CompressionMiddleware compresses response bodies with gzip or deflate
// based on the Accept-Encoding request header (RFC 9110 section 12.5.3).
// Responses below a size threshold or with already-compressed content types
// are passed through unchanged.
//
//	mw, err := webhandlers.CompressionMiddleware(webhandlers.CompressionConfig{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	table.Use(mw)
//
// # Static Files Handler
//
// StaticFiles serves files from a directory subtree with path traversal
// containment and Cache-Control headers (RFC 9111).
//
//	h, err := webhandlers.NewStaticFiles(webhandlers.StaticFilesConfig{
//	    Dir:    "./public",
//	    Prefix: "/static/",
//	    MaxAge: time.Hour,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	table.Get("/static/*path", h)
package webhandlers
