package webhandlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/kiln/web"
)

// okNext is a pass-through continuation returning 200 with an empty body,
// shared by middleware tests across this package.
func okNext(_ context.Context, _ *web.Request) (*web.Response, error) {
	return web.NewResponse(), nil
}

func TestRequestIDMiddleware(t *testing.T) {
	t.Run("generates id and sets header", func(t *testing.T) {
		mw := RequestIDMiddleware(RequestIDConfig{})

		req := web.NewRequest(http.MethodGet, "/test", nil)
		var seen string
		resp, err := mw.Intercept(context.Background(), req, func(ctx context.Context, req *web.Request) (*web.Response, error) {
			seen = RequestIDFrom(req)
			return web.NewResponse(), nil
		})
		require.NoError(t, err)

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, resp.Header().Get("X-Request-ID"))

		_, err = uuid.Parse(seen)
		assert.NoError(t, err)
	})

	t.Run("custom header name", func(t *testing.T) {
		mw := RequestIDMiddleware(RequestIDConfig{HeaderName: "X-Trace-ID"})

		req := web.NewRequest(http.MethodGet, "/test", nil)
		resp, err := mw.Intercept(context.Background(), req, okNext)
		require.NoError(t, err)

		assert.NotEmpty(t, resp.Header().Get("X-Trace-ID"))
		assert.Empty(t, resp.Header().Get("X-Request-ID"))
	})

	t.Run("trusts incoming header when enabled", func(t *testing.T) {
		mw := RequestIDMiddleware(RequestIDConfig{TrustIncoming: true})

		req := web.NewRequest(http.MethodGet, "/test", nil)
		req.Header().Set("X-Request-ID", "incoming-id")

		resp, err := mw.Intercept(context.Background(), req, okNext)
		require.NoError(t, err)

		assert.Equal(t, "incoming-id", resp.Header().Get("X-Request-ID"))
	})

	t.Run("ignores incoming header by default", func(t *testing.T) {
		mw := RequestIDMiddleware(RequestIDConfig{})

		req := web.NewRequest(http.MethodGet, "/test", nil)
		req.Header().Set("X-Request-ID", "incoming-id")

		resp, err := mw.Intercept(context.Background(), req, okNext)
		require.NoError(t, err)

		assert.NotEqual(t, "incoming-id", resp.Header().Get("X-Request-ID"))
	})

	t.Run("custom generate func", func(t *testing.T) {
		mw := RequestIDMiddleware(RequestIDConfig{
			GenerateFunc: func(_ *web.Request) string { return "fixed-id" },
		})

		req := web.NewRequest(http.MethodGet, "/test", nil)
		resp, err := mw.Intercept(context.Background(), req, okNext)
		require.NoError(t, err)

		assert.Equal(t, "fixed-id", resp.Header().Get("X-Request-ID"))
	})

	t.Run("propagates downstream error without response", func(t *testing.T) {
		mw := RequestIDMiddleware(RequestIDConfig{})

		req := web.NewRequest(http.MethodGet, "/test", nil)
		resp, err := mw.Intercept(context.Background(), req, func(_ context.Context, _ *web.Request) (*web.Response, error) {
			return nil, web.Errorf(http.StatusTeapot, "teapot")
		})

		assert.Error(t, err)
		assert.Nil(t, resp)
	})
}

func TestRequestIDFrom(t *testing.T) {
	t.Run("empty without middleware", func(t *testing.T) {
		req := web.NewRequest(http.MethodGet, "/test", nil)
		assert.Empty(t, RequestIDFrom(req))
	})
}

func TestGenerateUUIDv7(t *testing.T) {
	first := GenerateUUIDv7(nil)
	second := GenerateUUIDv7(nil)

	require.NotEqual(t, first, second)

	// v7 IDs are time-ordered.
	assert.Less(t, first, second)
}
