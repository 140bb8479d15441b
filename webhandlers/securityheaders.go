package webhandlers

import (
	"context"

	"github.com/vitalvas/kiln/web"
)

// SecurityHeadersConfig configures the SecurityHeaders middleware
// behaviour. Empty fields keep their defaults; set a field to "-" to
// suppress that header entirely.
type SecurityHeadersConfig struct {
	// ContentTypeOptions is the X-Content-Type-Options value.
	// Defaults to "nosniff".
	ContentTypeOptions string

	// FrameOptions is the X-Frame-Options value (RFC 7034).
	// Defaults to "DENY".
	FrameOptions string

	// ReferrerPolicy is the Referrer-Policy value.
	// Defaults to "strict-origin-when-cross-origin".
	ReferrerPolicy string
}

// SecurityHeadersMiddleware returns a middleware that sets conventional
// security response headers on every response passing through it. Existing
// values set by handlers take precedence.
func SecurityHeadersMiddleware(cfg SecurityHeadersConfig) web.Middleware {
	headers := [][2]string{
		{"X-Content-Type-Options", defaultHeader(cfg.ContentTypeOptions, "nosniff")},
		{"X-Frame-Options", defaultHeader(cfg.FrameOptions, "DENY")},
		{"Referrer-Policy", defaultHeader(cfg.ReferrerPolicy, "strict-origin-when-cross-origin")},
	}

	return web.MiddlewareFunc(func(ctx context.Context, req *web.Request, next web.Next) (*web.Response, error) {
		resp, err := next(ctx, req)
		if err != nil {
			return nil, err
		}

		for _, kv := range headers {
			if kv[1] != "" && !resp.Header().Has(kv[0]) {
				resp.SetHeader(kv[0], kv[1])
			}
		}
		return resp, nil
	})
}

func defaultHeader(value, fallback string) string {
	switch value {
	case "":
		return fallback
	case "-":
		return ""
	default:
		return value
	}
}
