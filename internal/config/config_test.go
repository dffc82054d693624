package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/rpnd/internal/env"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rpnd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(LoadOptions{Vars: env.Vars{}})
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, ":5000", cfg.Server.Addr)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
logLevel: warn
server:
  addr: ":7000"
  shutdownTimeout: 3s
metrics:
  enabled: false
`)
	cfg, err := Load(LoadOptions{
		Path: path,
		Vars: env.Vars{
			"RPND_SERVER_ADDR":  ":8000",
			"RPND_CLIENT_URL":   "http://rpn.internal:8000",
			"RPND_METRICS_ADDR": ":9090",
			"UNRELATED":         "x",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.LogLevel)
	require.Equal(t, ":8000", cfg.Server.Addr)
	require.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	require.Equal(t, 5*time.Second, cfg.Server.ReadHeaderTimeout)
	require.False(t, cfg.Metrics.Enabled)
	require.Equal(t, ":9090", cfg.Metrics.Addr)
	require.Equal(t, "http://rpn.internal:8000", cfg.Client.ServerURL)
}

func TestLoad_EnvFile(t *testing.T) {
	dotenv := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("RPND_LOG_LEVEL=debug\nRPND_SERVER_MAX_BODY_BYTES=2048\n"), 0o600))

	cfg, err := Load(LoadOptions{EnvFile: dotenv})
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, int64(2048), cfg.Server.MaxBodyBytes)
}

func TestLoad_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	_, err := Load(LoadOptions{Path: missing, Vars: env.Vars{}})
	require.NoError(t, err)

	_, err = Load(LoadOptions{Path: missing, PathRequired: true, Vars: env.Vars{}})
	require.Error(t, err)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(LoadOptions{Path: writeConfig(t, ""), Vars: env.Vars{}})
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	_, err := Load(LoadOptions{Path: writeConfig(t, "servr:\n  addr: x\n"), Vars: env.Vars{}})
	require.ErrorContains(t, err, "parse config")
}

func TestLoad_BadEnvValue(t *testing.T) {
	_, err := Load(LoadOptions{Vars: env.Vars{"RPND_SERVER_SHUTDOWN_TIMEOUT": "soon"}})
	require.ErrorContains(t, err, "RPND_")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Server.Addr = " "
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Metrics.Path = "metrics"
	require.Error(t, cfg.Validate())

	cfg.Metrics.Enabled = false
	require.NoError(t, cfg.Validate())

	cfg = Default()
	cfg.Metrics.Addr = cfg.Server.Addr
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Server.MaxBodyBytes = 0
	require.Error(t, cfg.Validate())
}
