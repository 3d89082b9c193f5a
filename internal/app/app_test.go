package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/promptgrid/internal/component"
	"github.com/vk/promptgrid/internal/graph"
	"github.com/vk/promptgrid/internal/hcl"
	"github.com/vk/promptgrid/internal/registry"
	"github.com/vk/promptgrid/internal/snapshot"
	"github.com/vk/promptgrid/internal/value"
)

type brokenModule struct{}

func (brokenModule) Register(r *registry.Registry) {
	r.Register("broken", &component.Component{Config: component.Config{Title: "Broken"}})
}

func TestNewApp_RegistersCoreModules(t *testing.T) {
	t.Parallel()

	cfg := &Config{GraphPath: "x.hcl", LogLevel: "debug", LogFormat: "text"}
	a := NewApp(io.Discard, cfg, hcl.NewLoader())

	for _, id := range []string{"input", "output", "prompt", "dynamicPrompt", "chatgpt", "chatgpt4", "dalle", "function", "lazyFunction"} {
		_, ok := a.Registry().Lookup(id)
		assert.True(t, ok, "component %q should be registered", id)
	}
}

func TestNewApp_PanicsOnInvalidComponent(t *testing.T) {
	t.Parallel()

	cfg := &Config{GraphPath: "x.hcl"}
	assert.Panics(t, func() {
		NewApp(io.Discard, cfg, hcl.NewLoader(), brokenModule{})
	})
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		format string
		level  string
		check  func(t *testing.T, out string)
	}{
		{format: "json", level: "info", check: func(t *testing.T, out string) {
			var rec map[string]any
			require.NoError(t, json.Unmarshal([]byte(out), &rec))
			assert.Equal(t, "hello", rec["msg"])
		}},
		{format: "text", level: "info", check: func(t *testing.T, out string) {
			assert.Contains(t, out, "msg=hello")
		}},
		{format: "pretty", level: "info", check: func(t *testing.T, out string) {
			assert.Contains(t, out, "hello")
			assert.NotContains(t, out, "msg=")
		}},
		{format: "text", level: "error", check: func(t *testing.T, out string) {
			assert.Empty(t, out)
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.format+"/"+tc.level, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			logger := newLogger(tc.level, tc.format, &buf)
			logger.Info("hello", "k", "v")
			tc.check(t, buf.String())
		})
	}
	assert.True(t, newLogger("bogus", "text", io.Discard).Enabled(context.Background(), slog.LevelInfo))
}

func TestPrintOutputs(t *testing.T) {
	t.Parallel()

	nodes := []graph.Node{
		{ID: "b", Type: "prompt", Data: graph.NodeData{Outputs: value.Record{"prompt": value.StringValue("Say \"hi\"")}}},
		{ID: "a", Type: "input", Data: graph.NodeData{Outputs: value.Record{
			"z": value.NumberValue(42),
			"m": {},
		}}},
	}

	var buf bytes.Buffer
	printOutputs(&buf, nodes)

	assert.Equal(t, "a [input]\n  m = null\n  z = 42\nb [prompt]\n  prompt = \"Say \\\"hi\\\"\"\n", buf.String())
}

func TestRoutes(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	cfg := &Config{GraphPath: "x.hcl", LogFormat: "text"}
	a := NewApp(io.Discard, cfg, hcl.NewLoader())
	_, err := a.Store().AddNode("input", graph.Position{})
	require.NoError(t, err)
	srv := httptest.NewServer(a.routes())
	defer srv.Close()

	// --- Act & Assert ---
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK\n", string(body))

	resp, err = http.Get(srv.URL + "/snapshot")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	snap, err := snapshot.Decode(resp.Body, snapshot.FormatJSON)
	require.NoError(t, err)
	require.Len(t, snap.Nodes, 1)
	assert.Equal(t, "input", snap.Nodes[0].Type)
}

func TestLoadGraph_Snapshot(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	src := NewApp(io.Discard, &Config{GraphPath: "x.hcl"}, hcl.NewLoader())
	_, err := src.Store().AddNode("input", graph.Position{X: 3})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "graph.msgpack")
	require.NoError(t, snapshot.WriteFile(path, snapshot.Capture(src.Store(), snapshot.Viewport{Zoom: 2})))

	dst := NewApp(io.Discard, &Config{GraphPath: path}, hcl.NewLoader())

	// --- Act ---
	err = dst.loadGraph(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 2.0, dst.viewport.Zoom)
	n, ok := dst.Store().Node("0")
	require.True(t, ok)
	assert.Equal(t, 3.0, n.Position.X)
}
