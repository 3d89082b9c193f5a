package evaluator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vk/promptgrid/internal/component"
	"github.com/vk/promptgrid/internal/ctxlog"
	"github.com/vk/promptgrid/internal/graph"
)

func (e *Evaluator) startAsync(logger *slog.Logger, nodeID string, st *nodeState, fn component.AsyncFunc, in component.Input) {
	if st.cancel != nil {
		logger.Debug("Cancelling superseded async call.", "generation", st.generation)
		st.cancel()
	}
	st.generation++
	gen := st.generation

	ctx, cancel := context.WithCancel(ctxlog.With(e.ctx, "nodeID", nodeID, "generation", gen))
	if e.asyncTimeout > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, e.asyncTimeout)
		parent := cancel
		cancel = func() {
			timeoutCancel()
			parent()
		}
	}
	st.cancel = cancel
	st.inFlight++
	e.addPending(1)
	if err := e.store.SetNodeRunning(nodeID, true); err != nil {
		logger.Error("Failed to mark node running.", "error", err)
	}

	logger.Info("▶️ Starting async evaluation.", "generation", gen)
	go func() {
		out, err := fn(ctx, in)
		e.post(asyncDone{nodeID: nodeID, gen: gen, outputs: out, err: err})
		e.addPending(-1)
	}()
}

func (e *Evaluator) finishAsync(m asyncDone) {
	logger := e.log().With("nodeID", m.nodeID, "generation", m.gen)
	st, ok := e.nodes[m.nodeID]
	if !ok {
		logger.Debug("Dropping async result for removed node.")
		return
	}
	st.inFlight--
	if st.inFlight == 0 {
		if err := e.store.SetNodeRunning(m.nodeID, false); err != nil && !errors.Is(err, graph.ErrNodeNotFound) {
			logger.Error("Failed to clear running flag.", "error", err)
		}
		e.setState(m.nodeID, Idle)
	}

	if m.gen != st.generation {
		logger.Debug("Dropping stale async result.", "current", st.generation)
		return
	}
	if st.cancel != nil {
		st.cancel()
		st.cancel = nil
	}
	if m.err != nil {
		logger.Error("Async evaluation failed, keeping previous outputs.", "error", m.err)
		return
	}

	replace := false
	if node, ok := e.store.Node(m.nodeID); ok {
		if comp, err := e.resolver.Resolve(node.Data.ComponentID); err == nil {
			replace = comp.Config.ReplaceOutputs
		}
	}
	if err := e.store.SetNodeOutputs(m.nodeID, m.outputs, replace); err != nil && !errors.Is(err, graph.ErrNodeNotFound) {
		logger.Error("Failed to write async outputs.", "error", err)
		return
	}
	logger.Info("✅ Finished async evaluation.")
}
