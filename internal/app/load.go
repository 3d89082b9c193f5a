package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vk/promptgrid/internal/builder"
	"github.com/vk/promptgrid/internal/ctxlog"
	"github.com/vk/promptgrid/internal/snapshot"
)

// loadGraph installs the configured graph into the store. Snapshot files are
// restored as-is; anything else goes through the definition loader.
func (a *App) loadGraph(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("path", a.config.GraphPath)

	switch strings.ToLower(filepath.Ext(a.config.GraphPath)) {
	case ".json", ".msgpack", ".mpk":
		logger.Debug("Loading graph snapshot.")
		snap, err := snapshot.ReadFile(a.config.GraphPath)
		if err != nil {
			return fmt.Errorf("failed to read snapshot: %w", err)
		}
		a.viewport = snap.Viewport
		if err := snapshot.Restore(a.store, snap); err != nil {
			// Bad edges are skipped, the rest of the graph is usable.
			logger.Warn("Snapshot restored with errors.", "error", err)
		}
	default:
		logger.Debug("Loading graph definition.")
		model, err := a.loader.Load(ctx, a.config.GraphPath)
		if err != nil {
			return fmt.Errorf("failed to load graph definition: %w", err)
		}
		if err := builder.Build(ctx, model, a.store, a.registry); err != nil {
			return fmt.Errorf("failed to build graph: %w", err)
		}
	}

	logger.Info("Graph loaded.", "nodes", len(a.store.Nodes()), "edges", len(a.store.Edges()))
	return nil
}
