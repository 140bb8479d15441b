// Package config loads application configuration from a YAML file.
//
// Decoding is strict: unknown keys are rejected, so a typoed field name
// fails at startup instead of silently falling back to a default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by validation failures from Load.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Duration is a time.Duration that decodes from YAML as either a Go
// duration string ("30s", "1m30s") or a bare number of seconds.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	case int:
		*d = Duration(time.Duration(v) * time.Second)
		return nil
	case float64:
		*d = Duration(time.Duration(v * float64(time.Second)))
		return nil
	default:
		return fmt.Errorf("config: cannot parse %q as duration", node.Value)
	}
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Config is the application configuration tree.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Limits LimitsConfig `yaml:"limits"`

	// Production suppresses internal error detail in responses.
	Production bool `yaml:"production"`
}

// ServerConfig covers the listener and HTTP timeouts.
type ServerConfig struct {
	Addr              string   `yaml:"addr"`
	MaxConns          int      `yaml:"max_conns"`
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
	ReadTimeout       Duration `yaml:"read_timeout"`
	WriteTimeout      Duration `yaml:"write_timeout"`
	IdleTimeout       Duration `yaml:"idle_timeout"`
	ShutdownTimeout   Duration `yaml:"shutdown_timeout"`
}

// LimitsConfig covers per-client request limiting.
type LimitsConfig struct {
	MaxRequests int      `yaml:"max_requests"`
	Window      Duration `yaml:"window"`
}

// Default returns the configuration used when no file is provided.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads and validates a configuration file. Values not present in the
// file keep their Default. Unknown keys are an error.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes configuration from a reader; see Load.
func Parse(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr must not be empty", ErrInvalidConfig)
	}
	if c.Server.MaxConns < 0 {
		return fmt.Errorf("%w: server.max_conns must not be negative", ErrInvalidConfig)
	}
	if c.Limits.MaxRequests < 0 {
		return fmt.Errorf("%w: limits.max_requests must not be negative", ErrInvalidConfig)
	}
	if c.Limits.MaxRequests > 0 && c.Limits.Window <= 0 {
		return fmt.Errorf("%w: limits.window must be positive when limiting is enabled", ErrInvalidConfig)
	}
	return nil
}
