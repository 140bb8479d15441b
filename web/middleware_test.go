package web

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// markerMiddleware appends pre/post markers around its continuation call.
func markerMiddleware(tag string, order *[]string) Middleware {
	return MiddlewareFunc(func(ctx context.Context, req *Request, next Next) (*Response, error) {
		*order = append(*order, tag+"-pre")
		resp, err := next(ctx, req)
		*order = append(*order, tag+"-post")
		return resp, err
	})
}

func TestChainOrdering(t *testing.T) {
	var order []string

	terminal := HandlerFunc(func(_ context.Context, _ *Request) (*Response, error) {
		order = append(order, "handler")
		return NewResponse(), nil
	})

	chain := compose([]Middleware{
		markerMiddleware("a", &order),
		markerMiddleware("b", &order),
	}, terminal)

	_, err := chain.Handle(context.Background(), NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"a-pre", "b-pre", "handler", "b-post", "a-post"}, order)
}

func TestChainShortCircuit(t *testing.T) {
	var handlerRan, innerRan bool

	guard := MiddlewareFunc(func(_ context.Context, _ *Request, _ Next) (*Response, error) {
		return TextResponse(http.StatusUnauthorized, "denied"), nil
	})
	inner := MiddlewareFunc(func(ctx context.Context, req *Request, next Next) (*Response, error) {
		innerRan = true
		return next(ctx, req)
	})
	terminal := HandlerFunc(func(_ context.Context, _ *Request) (*Response, error) {
		handlerRan = true
		return NewResponse(), nil
	})

	resp, err := compose([]Middleware{guard, inner}, terminal).
		Handle(context.Background(), NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())
	assert.False(t, innerRan, "inner middleware must not run after short-circuit")
	assert.False(t, handlerRan, "handler must not run after short-circuit")
}

func TestChainPostProcessing(t *testing.T) {
	stamp := MiddlewareFunc(func(ctx context.Context, req *Request, next Next) (*Response, error) {
		resp, err := next(ctx, req)
		if err != nil {
			return nil, err
		}
		resp.SetHeader("X-Stamped", "yes")
		return resp, nil
	})
	terminal := HandlerFunc(func(_ context.Context, _ *Request) (*Response, error) {
		return TextResponse(http.StatusOK, "ok"), nil
	})

	resp, err := compose([]Middleware{stamp}, terminal).
		Handle(context.Background(), NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "yes", resp.Header().Get("X-Stamped"))
}

func TestChainSingleInvokeGuard(t *testing.T) {
	var handlerCalls int

	double := MiddlewareFunc(func(ctx context.Context, req *Request, next Next) (*Response, error) {
		if _, err := next(ctx, req); err != nil {
			return nil, err
		}
		return next(ctx, req)
	})
	terminal := HandlerFunc(func(_ context.Context, _ *Request) (*Response, error) {
		handlerCalls++
		return NewResponse(), nil
	})

	_, err := compose([]Middleware{double}, terminal).
		Handle(context.Background(), NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrNextCalledTwice)
	assert.Equal(t, 1, handlerCalls, "downstream must not execute twice")
}

func TestChainGuardResetsPerRequest(t *testing.T) {
	passthrough := MiddlewareFunc(func(ctx context.Context, req *Request, next Next) (*Response, error) {
		return next(ctx, req)
	})
	chain := compose([]Middleware{passthrough}, nopHandler())

	for i := 0; i < 3; i++ {
		_, err := chain.Handle(context.Background(), NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err, "request %d", i)
	}
}

func TestChainLocalRecovery(t *testing.T) {
	errBoom := errors.New("boom")

	failing := HandlerFunc(func(_ context.Context, _ *Request) (*Response, error) {
		return nil, errBoom
	})
	recoverer := MiddlewareFunc(func(ctx context.Context, req *Request, next Next) (*Response, error) {
		resp, err := next(ctx, req)
		if err != nil {
			return TextResponse(http.StatusBadGateway, "substituted"), nil
		}
		return resp, nil
	})

	resp, err := compose([]Middleware{recoverer}, failing).
		Handle(context.Background(), NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode())
}

func TestChainErrorPropagation(t *testing.T) {
	errBoom := errors.New("boom")
	var postRan bool

	observer := MiddlewareFunc(func(ctx context.Context, req *Request, next Next) (*Response, error) {
		resp, err := next(ctx, req)
		postRan = true
		return resp, err
	})
	failing := HandlerFunc(func(_ context.Context, _ *Request) (*Response, error) {
		return nil, errBoom
	})

	_, err := compose([]Middleware{observer}, failing).
		Handle(context.Background(), NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, errBoom)
	assert.True(t, postRan, "error must pass through outer middleware")
}

func TestChainEmptyMiddleware(t *testing.T) {
	resp, err := compose(nil, HandlerFunc(func(_ context.Context, _ *Request) (*Response, error) {
		return TextResponse(http.StatusOK, "direct"), nil
	})).Handle(context.Background(), NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "direct", string(resp.Body()))
}

func BenchmarkChain(b *testing.B) {
	passthrough := MiddlewareFunc(func(ctx context.Context, req *Request, next Next) (*Response, error) {
		return next(ctx, req)
	})
	mw := []Middleware{passthrough, passthrough, passthrough}
	terminal := nopHandler()
	req := NewRequest(http.MethodGet, "/", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compose(mw, terminal).Handle(context.Background(), req)
	}
}
