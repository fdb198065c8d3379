package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuelfneumann/mdplearn/agent"
	"github.com/samuelfneumann/mdplearn/experiment/tracker"
	"github.com/samuelfneumann/mdplearn/experiment/trackers"
	"github.com/samuelfneumann/mdplearn/internal/logging"
)

// run executes the command line with args, returning its output
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func TestValueIteration(t *testing.T) {
	png := filepath.Join(t.TempDir(), "values.png")
	out, err := run(t, "valueiteration", "--grid", "bridge",
		"--iterations", "20", "--render", png)
	require.NoError(t, err)

	assert.Contains(t, out, "VALUES AFTER 20 ITERATIONS")
	assert.Contains(t, out, "POLICY")
	assert.Contains(t, out, "exit")

	info, err := os.Stat(png)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestValueIterationZeroNoiseBookPolicy(t *testing.T) {
	out, err := run(t, "--noise", "0", "vi", "--grid", "book",
		"--iterations", "50")
	require.NoError(t, err)

	// Without noise, north and east reach the exit equally fast from the
	// start cell, and ties go to the first action
	policy := out[strings.Index(out, "POLICY"):]
	lines := strings.Split(strings.TrimSpace(policy), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "north", strings.Fields(lines[3])[0])
}

func TestValueIterationConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vi.yaml")
	require.NoError(t, os.WriteFile(path,
		[]byte("agent: valueiteration\niterations: 3\ndiscount: 0.5\n"),
		0o644))

	out, err := run(t, "valueiteration", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "VALUES AFTER 3 ITERATIONS")

	out, err = run(t, "valueiteration", "--config", path, "-i", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "VALUES AFTER 7 ITERATIONS")
}

func TestValueIterationInvalid(t *testing.T) {
	_, err := run(t, "valueiteration", "--discount", "2")
	assert.Error(t, err)

	_, err = run(t, "valueiteration", "--grid", "nowhere")
	assert.Error(t, err)

	_, err = run(t, "--log-level", "loud", "valueiteration")
	assert.Error(t, err)
}

func TestQLearn(t *testing.T) {
	dir := t.TempDir()
	returns := filepath.Join(dir, "returns.bin")
	png := filepath.Join(dir, "q.png")

	out, err := run(t, "qlearn", "--episodes", "20", "--max-steps", "100",
		"-a", "epsilon=0.3,alpha=0.5,numTraining=15", "--returns", returns,
		"--render", png)
	require.NoError(t, err)

	assert.Contains(t, out, "Episodes: 20 (15 training, 5 testing)")
	assert.Contains(t, out, "VALUES AFTER 20 EPISODES")

	data, err := tracker.LoadData[float64](returns)
	require.NoError(t, err)
	assert.Len(t, data, 20)

	_, err = os.Stat(png)
	assert.NoError(t, err)
}

func TestQLearnApproximate(t *testing.T) {
	for _, extractor := range []string{"identity", "coordinate", "tilecoding"} {
		out, err := run(t, "qlearn", "--agent", "approximate",
			"--extractor", extractor, "--episodes", "5", "--max-steps", "50")
		require.NoError(t, err, extractor)
		assert.Contains(t, out, "Episodes: 5 (5 training, 0 testing)")
	}
}

func TestQLearnInvalid(t *testing.T) {
	_, err := run(t, "qlearn", "--agent", "approximate", "--extractor",
		"pacman", "--episodes", "1")
	assert.Error(t, err)

	_, err = run(t, "qlearn", "-a", "alpha=3", "--episodes", "1")
	assert.Error(t, err)

	_, err = run(t, "qlearn", "--agent", "valueiteration")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "vi.yaml")
	require.NoError(t, os.WriteFile(path,
		[]byte("agent: valueiteration\niterations: 3\n"), 0o644))
	_, err = run(t, "qlearn", "--config", path, "--episodes", "1")
	assert.ErrorIs(t, err, agent.ErrInvalidConfig)
	assert.ErrorContains(t, err, "do not learn online")
}

// syncBuffer is a bytes.Buffer which may be written from several
// goroutines
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestServeMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := trackers.NewMetrics(reg, "qlearning")
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()

	var logs syncBuffer
	ctx, cancel := context.WithCancel(context.Background())
	shutdown := serveMetrics(ctx, ln, reg,
		logging.NewWriter(&logs, slog.LevelInfo))

	// A connection which never sends a request keeps the server from
	// shutting down before ctx is done
	pending, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer pending.Close()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "mdplearn_episodes_total")

	cancel()
	shutdown()
	assert.Contains(t, logs.String(), "could not shut down metrics server")
	assert.Contains(t, logs.String(), "context canceled")
}

func TestGrids(t *testing.T) {
	out, err := run(t, "grids")
	require.NoError(t, err)
	for _, name := range []string{"book", "bridge", "cliff", "discount",
		"maze"} {
		assert.Contains(t, out, name)
	}
}
