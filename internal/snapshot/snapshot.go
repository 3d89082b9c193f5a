// Package snapshot persists a graph: its nodes with their data, its edges and
// the canvas viewport. Snapshots are written as JSON or, more compactly, as
// msgpack; the format is picked from the file extension.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/promptgrid/internal/graph"
	"github.com/vmihailenco/msgpack/v5"
)

// Format is a snapshot encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// Viewport is the canvas pan and zoom. The engine stores it untouched.
type Viewport struct {
	X    float64 `json:"x" msgpack:"x"`
	Y    float64 `json:"y" msgpack:"y"`
	Zoom float64 `json:"zoom" msgpack:"zoom"`
}

// Snapshot is the persisted form of a graph.
type Snapshot struct {
	Nodes    []graph.Node `json:"nodes" msgpack:"nodes"`
	Edges    []graph.Edge `json:"edges" msgpack:"edges"`
	Viewport Viewport     `json:"viewport" msgpack:"viewport"`
}

// Capture copies the current graph out of store.
func Capture(store *graph.Store, vp Viewport) *Snapshot {
	return &Snapshot{
		Nodes:    store.Nodes(),
		Edges:    store.Edges(),
		Viewport: vp,
	}
}

// Restore replaces the store's graph with the snapshot's. Edges the store
// rejects are reported but do not prevent the rest from loading.
func Restore(store *graph.Store, s *Snapshot) error {
	if err := store.Reset(s.Nodes, s.Edges); err != nil {
		return fmt.Errorf("restoring snapshot: %w", err)
	}
	return nil
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".msgpack", ".mpk":
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("unsupported snapshot extension %q", filepath.Ext(path))
	}
}

// Encode writes s to w.
func Encode(w io.Writer, s *Snapshot, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(s)
	default:
		return fmt.Errorf("unsupported snapshot format %q", f)
	}
}

// Decode reads a snapshot from r.
func Decode(r io.Reader, f Format) (*Snapshot, error) {
	var s Snapshot
	var err error
	switch f {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&s)
	case FormatMsgpack:
		err = msgpack.NewDecoder(r).Decode(&s)
	default:
		return nil, fmt.Errorf("unsupported snapshot format %q", f)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s snapshot: %w", f, err)
	}
	return &s, nil
}

// ReadFile decodes the snapshot stored at path.
func ReadFile(path string) (*Snapshot, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Decode(file, f)
}

// WriteFile encodes s to path, replacing any existing file.
func WriteFile(path string, s *Snapshot) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(file, s, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
