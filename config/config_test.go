package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParse(t *testing.T) {
	t.Run("full config", func(t *testing.T) {
		in := `
server:
  addr: ":9090"
  max_conns: 100
  read_timeout: 15s
  shutdown_timeout: 5s
limits:
  max_requests: 50
  window: 1m
production: true
`
		cfg, err := Parse(strings.NewReader(in))
		require.NoError(t, err)

		assert.Equal(t, ":9090", cfg.Server.Addr)
		assert.Equal(t, 100, cfg.Server.MaxConns)
		assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout.Std())
		assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout.Std())
		assert.Equal(t, 50, cfg.Limits.MaxRequests)
		assert.Equal(t, time.Minute, cfg.Limits.Window.Std())
		assert.True(t, cfg.Production)
	})

	t.Run("empty input yields defaults", func(t *testing.T) {
		cfg, err := Parse(strings.NewReader(""))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("partial config keeps defaults", func(t *testing.T) {
		cfg, err := Parse(strings.NewReader("production: true\n"))
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.Server.Addr)
		assert.True(t, cfg.Production)
	})

	t.Run("unknown keys rejected", func(t *testing.T) {
		_, err := Parse(strings.NewReader("server:\n  adrr: \":9090\"\n"))
		assert.Error(t, err)
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name string
			in   string
		}{
			{"empty addr", "server:\n  addr: \"\"\n"},
			{"negative max conns", "server:\n  max_conns: -1\n"},
			{"negative max requests", "limits:\n  max_requests: -1\n"},
			{"limit without window", "limits:\n  max_requests: 10\n"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := Parse(strings.NewReader(tt.in))
				assert.ErrorIs(t, err, ErrInvalidConfig)
			})
		}
	})
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Duration
	}{
		{"duration string", "read_timeout: 1m30s", 90 * time.Second},
		{"bare seconds", "read_timeout: 45", 45 * time.Second},
		{"fractional seconds", "read_timeout: 0.5", 500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sc ServerConfig
			require.NoError(t, yaml.Unmarshal([]byte(tt.in), &sc))
			assert.Equal(t, tt.want, sc.ReadTimeout.Std())
		})
	}

	t.Run("invalid string", func(t *testing.T) {
		var sc ServerConfig
		assert.Error(t, yaml.Unmarshal([]byte("read_timeout: fast"), &sc))
	})

	t.Run("marshals as string", func(t *testing.T) {
		out, err := yaml.Marshal(map[string]Duration{"window": Duration(time.Minute)})
		require.NoError(t, err)
		assert.Equal(t, "window: 1m0s\n", string(out))
	})
}

func TestLoad(t *testing.T) {
	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":7070\"\n"), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, ":7070", cfg.Server.Addr)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
		assert.Error(t, err)
	})
}
