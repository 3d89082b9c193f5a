package app

import (
	"context"
	"fmt"

	"github.com/vk/promptgrid/internal/broadcast"
	"github.com/vk/promptgrid/internal/ctxlog"
	"github.com/vk/promptgrid/internal/evaluator"
	"github.com/vk/promptgrid/internal/snapshot"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Run loads the graph, evaluates it until nothing is pending, fires the
// configured triggers, waits again and reports the result.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ev := evaluator.New(a.store, a.registry,
		evaluator.WithDebounce(a.config.Debounce),
		evaluator.WithAsyncTimeout(a.config.AsyncTimeout),
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ev.Run(gctx) })
	defer func() {
		cancel()
		err = multierr.Append(err, g.Wait())
	}()

	if a.config.BroadcastURL != "" {
		pub, err := broadcast.Dial(ctx, a.config.BroadcastURL, broadcast.Options{})
		if err != nil {
			return fmt.Errorf("failed to start broadcast: %w", err)
		}
		defer pub.Close()
		detach := pub.Attach(a.store)
		defer detach()
	}

	if err := a.loadGraph(ctx); err != nil {
		return err
	}

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx)
		defer func() {
			err = multierr.Append(err, a.closeHealthcheckServer(ctx))
		}()
	} else {
		a.logger.Debug("Health check server disabled.")
	}

	a.logger.Info("🚀 Evaluating graph...")
	if err := ev.Settle(ctx); err != nil {
		return fmt.Errorf("waiting for evaluation: %w", err)
	}

	if len(a.config.Triggers) > 0 {
		for _, id := range a.config.Triggers {
			if err := ev.Trigger(id); err != nil {
				return fmt.Errorf("failed to trigger node: %w", err)
			}
			a.logger.Info("⚡ Node triggered.", "nodeID", id)
		}
		if err := ev.Settle(ctx); err != nil {
			return fmt.Errorf("waiting for triggered evaluation: %w", err)
		}
	}
	a.logger.Info("🏁 Evaluation settled.")

	printOutputs(a.outW, a.store.Nodes())

	if a.config.OutputPath != "" {
		snap := snapshot.Capture(a.store, a.viewport)
		if err := snapshot.WriteFile(a.config.OutputPath, snap); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		a.logger.Info("💾 Snapshot written.", "path", a.config.OutputPath)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
