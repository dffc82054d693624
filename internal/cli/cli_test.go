package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/example/rpnd/internal/api"
	"github.com/example/rpnd/internal/calc"
	"github.com/example/rpnd/internal/logging"
)

func startService(t *testing.T) string {
	t.Helper()
	s, err := api.NewServer(api.Config{}, calc.NewRegistry(), logging.NewLogger(io.Discard, logging.LevelError))
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	opts := &Options{
		ConfigPath: filepath.Join(dir, "rpnd.yaml"),
		EnvFile:    filepath.Join(dir, ".env"),
	}
	cmd := newRootCommand(opts, logging.NewLogger(io.Discard, logging.LevelError))
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--log-level", "error", "--no-color"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestStackCommands(t *testing.T) {
	url := startService(t)

	out, err := run(t, "stack", "create", "--server", url)
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	require.Equal(t, "stack_1", id)

	out, err = run(t, "stack", "push", id, "12", "3", "--server", url)
	require.NoError(t, err)
	require.Equal(t, "[12 3]\n", out)

	out, err = run(t, "stack", "op", id, "/", "--server", url)
	require.NoError(t, err)
	require.Equal(t, "[4]\n", out)

	out, err = run(t, "stack", "push", id, "0.5", "--server", url)
	require.NoError(t, err)
	require.Equal(t, "[4 0.5]\n", out)

	out, err = run(t, "stack", "get", id, "--server", url, "-o", "json")
	require.NoError(t, err)
	var view stackView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Equal(t, stackView{StackID: id, Stack: []float64{4, 0.5}}, view)

	out, err = run(t, "stack", "pop", id, "--server", url)
	require.NoError(t, err)
	require.Equal(t, "0.5\n", out)

	out, err = run(t, "stack", "list", "--server", url, "-o", "yaml")
	require.NoError(t, err)
	var listed map[string][]string
	require.NoError(t, yaml.Unmarshal([]byte(out), &listed))
	require.Equal(t, []string{id}, listed["stacks"])

	out, err = run(t, "stack", "clear", id, "--server", url)
	require.NoError(t, err)
	require.Equal(t, "[]\n", out)

	_, err = run(t, "stack", "delete", id, "--server", url)
	require.NoError(t, err)

	out, err = run(t, "stack", "ls", "--server", url)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestStackCommands_Errors(t *testing.T) {
	url := startService(t)

	_, err := run(t, "stack", "delete", "missing", "--server", url)
	require.ErrorContains(t, err, "Stack not found")

	_, err = run(t, "stack", "create", "--server", url)
	require.NoError(t, err)
	_, err = run(t, "stack", "op", "stack_1", "add", "--server", url)
	require.ErrorContains(t, err, "Not enough operands")

	_, err = run(t, "stack", "push", "stack_1", "abc", "--server", url)
	require.ErrorContains(t, err, `invalid value "abc"`)

	_, err = run(t, "stack", "get", "stack_1", "--server", url, "-o", "xml")
	require.ErrorContains(t, err, "unsupported output format")
}

func TestStackCommands_ServerFromEnv(t *testing.T) {
	url := startService(t)
	t.Setenv("RPND_CLIENT_URL", url)

	out, err := run(t, "stack", "create")
	require.NoError(t, err)
	require.Equal(t, "stack_1\n", out)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "rpnd dev"), out)

	out, err = run(t, "version", "-o", "json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	require.Equal(t, "dev", info["version"])
	require.NotEmpty(t, info["goVersion"])
}

func TestConfigFlagRequiresFile(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "version")
	require.Error(t, err)
}

func TestFormatStack(t *testing.T) {
	require.Equal(t, "[]", formatStack(nil))
	require.Equal(t, "[1 -2.5 1e+21]", formatStack([]float64{1, -2.5, 1e21}))
}

func TestStackCommand_BareShowsHelp(t *testing.T) {
	out, err := run(t, "stack")
	require.NoError(t, err)
	require.Contains(t, out, "Manage stacks on a running rpnd service")
	require.Contains(t, out, "push")

	_, err = run(t, "stack", "bogus")
	require.ErrorContains(t, err, `unknown stack subcommand "bogus"`)
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func httpStatus(url string) int {
	resp, err := http.Get(url)
	if err != nil {
		return 0
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode
}

func TestServeCommand_SeparateMetricsListener(t *testing.T) {
	apiAddr, metricsAddr := freeAddr(t), freeAddr(t)

	dir := t.TempDir()
	opts := &Options{ConfigPath: filepath.Join(dir, "rpnd.yaml"), EnvFile: filepath.Join(dir, ".env")}
	cmd := newRootCommand(opts, logging.NewLogger(io.Discard, logging.LevelError))
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--log-level", "error", "serve", "--addr", apiAddr, "--metrics-addr", metricsAddr})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return httpStatus("http://"+metricsAddr+"/metrics") == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)
	require.Eventually(t, func() bool {
		return httpStatus("http://"+apiAddr+"/healthz") == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)
	require.Equal(t, http.StatusNotFound, httpStatus("http://"+apiAddr+"/metrics"))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestServeCommand_MetricsAddrMatchingServerAddr(t *testing.T) {
	_, err := run(t, "serve", "--addr", "127.0.0.1:5999", "--metrics-addr", "127.0.0.1:5999")
	require.ErrorContains(t, err, "metrics.addr must differ")
}
