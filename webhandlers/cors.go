package webhandlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/vitalvas/kiln/web"
)

// CORSConfig configures the CORS middleware behaviour per the Fetch
// Standard CORS protocol.
type CORSConfig struct {
	// AllowOrigin is the value for Access-Control-Allow-Origin.
	// Defaults to "*" when empty.
	AllowOrigin string

	// AllowMethods lists methods for preflight responses. Defaults to
	// GET, POST, PUT, PATCH, DELETE, OPTIONS.
	AllowMethods []string

	// AllowHeaders lists request headers for preflight responses.
	// Defaults to Content-Type and Authorization.
	AllowHeaders []string
}

// CORSMiddleware returns a middleware that answers preflight OPTIONS
// requests directly, short-circuiting the rest of the chain, and adds the
// Access-Control-Allow-Origin header to every other response. Origin
// semantics follow RFC 6454.
func CORSMiddleware(cfg CORSConfig) web.Middleware {
	origin := cfg.AllowOrigin
	if origin == "" {
		origin = "*"
	}

	methods := cfg.AllowMethods
	if len(methods) == 0 {
		methods = []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		}
	}
	allowMethods := strings.Join(methods, ", ")

	headers := cfg.AllowHeaders
	if len(headers) == 0 {
		headers = []string{"Content-Type", "Authorization"}
	}
	allowHeaders := strings.Join(headers, ", ")

	return web.MiddlewareFunc(func(ctx context.Context, req *web.Request, next web.Next) (*web.Response, error) {
		if req.Method() == http.MethodOptions {
			resp := web.NewResponse().Status(http.StatusNoContent).
				SetHeader("Access-Control-Allow-Origin", origin).
				SetHeader("Access-Control-Allow-Methods", allowMethods).
				SetHeader("Access-Control-Allow-Headers", allowHeaders)
			return resp, nil
		}

		resp, err := next(ctx, req)
		if err != nil {
			return nil, err
		}
		resp.SetHeader("Access-Control-Allow-Origin", origin)
		return resp, nil
	})
}
