package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/kiln/web"
)

func TestNew(t *testing.T) {
	t.Run("nil handler rejected", func(t *testing.T) {
		_, err := New(Config{}, nil)
		assert.ErrorIs(t, err, ErrNilHandler)
	})

	t.Run("defaults applied", func(t *testing.T) {
		srv, err := New(Config{}, http.NotFoundHandler())
		require.NoError(t, err)

		assert.Equal(t, ":8080", srv.Addr())
		assert.Equal(t, defaultReadHeaderTimeout, srv.http.ReadHeaderTimeout)
		assert.Equal(t, defaultIdleTimeout, srv.http.IdleTimeout)
	})

	t.Run("explicit config kept", func(t *testing.T) {
		srv, err := New(Config{
			Addr:        ":9090",
			ReadTimeout: time.Minute,
		}, http.NotFoundHandler())
		require.NoError(t, err)

		assert.Equal(t, ":9090", srv.Addr())
		assert.Equal(t, time.Minute, srv.http.ReadTimeout)
	})
}

func TestServerServe(t *testing.T) {
	t.Run("serves dispatcher and shuts down on cancel", func(t *testing.T) {
		table := web.NewTable()
		require.NoError(t, table.Get("/ping", web.HandlerFunc(func(_ context.Context, _ *web.Request) (*web.Response, error) {
			return web.TextResponse(http.StatusOK, "pong"), nil
		})))

		d := web.NewDispatcher(table, web.DispatcherConfig{})

		srv, err := New(Config{ShutdownTimeout: time.Second}, d)
		require.NoError(t, err)

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- srv.Serve(ctx, ln)
		}()

		resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "pong", string(body))

		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not shut down")
		}
	})

	t.Run("listener closed error surfaces", func(t *testing.T) {
		srv, err := New(Config{}, http.NotFoundHandler())
		require.NoError(t, err)

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		ln.Close()

		err = srv.Serve(context.Background(), ln)
		assert.Error(t, err)
	})

	t.Run("max conns wraps listener", func(t *testing.T) {
		table := web.NewTable()
		require.NoError(t, table.Get("/ping", web.HandlerFunc(func(_ context.Context, _ *web.Request) (*web.Response, error) {
			return web.TextResponse(http.StatusOK, "pong"), nil
		})))

		d := web.NewDispatcher(table, web.DispatcherConfig{})

		srv, err := New(Config{MaxConns: 1, ShutdownTimeout: time.Second}, d)
		require.NoError(t, err)

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := make(chan error, 1)
		go func() {
			done <- srv.Serve(ctx, ln)
		}()

		resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("server did not shut down")
		}
	})
}
