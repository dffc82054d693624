// Package config contains the loader and strongly typed model for rpnd.yaml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	envparse "github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/example/rpnd/internal/env"
)

const (
	// DefaultAddr matches the port the service has always listened on.
	DefaultAddr = ":5000"
	// DefaultServerURL is where client commands look for a running service.
	DefaultServerURL = "http://127.0.0.1:5000"
	// EnvPrefix prefixes every environment variable read into Config.
	EnvPrefix = "RPND_"
)

// Config is the full runtime configuration of rpnd.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel,omitempty" env:"LOG_LEVEL"`
	// NoColor disables ANSI colors in log output.
	NoColor bool `yaml:"noColor,omitempty" env:"NO_COLOR"`
	// Server configures the HTTP listener.
	Server ServerConfig `yaml:"server,omitempty" envPrefix:"SERVER_"`
	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics,omitempty" envPrefix:"METRICS_"`
	// Client configures the stack subcommands.
	Client ClientConfig `yaml:"client,omitempty" envPrefix:"CLIENT_"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	// Addr is the host:port to listen on.
	Addr string `yaml:"addr,omitempty" env:"ADDR"`
	// ReadHeaderTimeout bounds reading request headers.
	ReadHeaderTimeout time.Duration `yaml:"readHeaderTimeout,omitempty" env:"READ_HEADER_TIMEOUT"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout,omitempty" env:"SHUTDOWN_TIMEOUT"`
	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `yaml:"maxBodyBytes,omitempty" env:"MAX_BODY_BYTES"`
}

// MetricsConfig toggles the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled,omitempty" env:"ENABLED"`
	Path    string `yaml:"path,omitempty" env:"PATH"`
	// Addr serves metrics on a separate listener. Empty mounts them on the API port.
	Addr string `yaml:"addr,omitempty" env:"ADDR"`
}

// ClientConfig points client commands at a server.
type ClientConfig struct {
	// ServerURL is the base URL of a running rpnd.
	ServerURL string `yaml:"serverURL,omitempty" env:"URL"`
	// Timeout bounds each request.
	Timeout time.Duration `yaml:"timeout,omitempty" env:"TIMEOUT"`
}

// LoadOptions controls which sources Load reads.
type LoadOptions struct {
	// Path is the YAML config file. Empty skips the file.
	Path string
	// PathRequired fails when Path does not exist.
	PathRequired bool
	// EnvFile is a .env file layered under the process environment.
	EnvFile string
	// Vars replaces the process environment when non-nil.
	Vars env.Vars
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Server: ServerConfig{
			Addr:              DefaultAddr,
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			MaxBodyBytes:      1 << 20,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Client: ClientConfig{
			ServerURL: DefaultServerURL,
			Timeout:   10 * time.Second,
		},
	}
}

// Load builds a Config from defaults, the YAML file and RPND_* variables, in
// that order of increasing precedence.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(opts.Path) != "" {
		if err := loadFile(opts.Path, &cfg); err != nil {
			if opts.PathRequired || !errors.Is(err, fs.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	vars := opts.Vars
	if vars == nil {
		loaded, err := env.Load(opts.EnvFile, false)
		if err != nil {
			return Config{}, err
		}
		vars = loaded
	}
	if err := envparse.ParseWithOptions(&cfg, envparse.Options{
		Environment: vars,
		Prefix:      EnvPrefix,
	}); err != nil {
		return Config{}, fmt.Errorf("parse %s* environment: %w", EnvPrefix, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %q: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("parse config %q: %w", path, err)
	}
	return nil
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server.addr must be set")
	}
	if c.Server.ShutdownTimeout < 0 || c.Server.ReadHeaderTimeout < 0 || c.Client.Timeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.maxBodyBytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/', got %q", c.Metrics.Path)
	}
	if c.Metrics.Enabled && c.Metrics.Addr != "" && c.Metrics.Addr == c.Server.Addr {
		return fmt.Errorf("metrics.addr must differ from server.addr %q", c.Server.Addr)
	}
	return nil
}
