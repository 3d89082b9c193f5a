package evaluator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vk/promptgrid/internal/component"
	"github.com/vk/promptgrid/internal/convert"
	"github.com/vk/promptgrid/internal/ctxlog"
	"github.com/vk/promptgrid/internal/graph"
	"github.com/vk/promptgrid/internal/labels"
	"github.com/vk/promptgrid/internal/value"
)

// Resolver maps a node's component id to its component. *registry.Registry
// satisfies it.
type Resolver interface {
	Resolve(id string) (*component.Component, error)
}

// Evaluator drives evaluation for one graph store.
type Evaluator struct {
	store        *graph.Store
	resolver     Resolver
	debounce     time.Duration
	asyncTimeout time.Duration
	logger       *slog.Logger

	mu      sync.Mutex
	queue   []message
	pending int
	idle    chan struct{}
	states  map[string]State
	signal  chan struct{}

	unsubscribe func()

	// Owned by the loop goroutine.
	nodes map[string]*nodeState
	ctx   context.Context
}

type nodeState struct {
	timer       *time.Timer
	timerSeq    uint64
	manual      bool
	fingerprint string
	generation  uint64
	cancel      context.CancelFunc
	inFlight    int
}

// New creates an evaluator for store and subscribes it to store changes.
// Changes made before Run starts are queued and handled once it does.
func New(store *graph.Store, resolver Resolver, opts ...Option) *Evaluator {
	idle := make(chan struct{})
	close(idle)
	e := &Evaluator{
		store:    store,
		resolver: resolver,
		debounce: DefaultDebounce,
		idle:     idle,
		states:   make(map[string]State),
		signal:   make(chan struct{}, 1),
		nodes:    make(map[string]*nodeState),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.unsubscribe = store.Subscribe(func(ev graph.Event) {
		e.post(storeEvent{ev: ev})
	})
	return e
}

// Run processes the mailbox until ctx is cancelled. Pending timers and
// in-flight async calls are cancelled on exit.
func (e *Evaluator) Run(ctx context.Context) error {
	if e.logger != nil {
		ctx = ctxlog.WithLogger(ctx, e.logger)
	}
	e.ctx = ctx
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Evaluator loop started.", "debounce", e.debounce, "asyncTimeout", e.asyncTimeout)
	defer e.shutdown()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Evaluator loop stopping.")
			return nil
		case <-e.signal:
		}
		for {
			msg, ok := e.pop()
			if !ok {
				break
			}
			e.handle(msg)
			e.addPending(-1)
		}
	}
}

// Trigger requests one evaluation of nodeID regardless of its lazy flag.
func (e *Evaluator) Trigger(nodeID string) error {
	if _, ok := e.store.Node(nodeID); !ok {
		return fmt.Errorf("%w: %s", graph.ErrNodeNotFound, nodeID)
	}
	e.post(trigger{nodeID: nodeID})
	return nil
}

// Settle blocks until there is no queued message, armed debounce timer or
// in-flight async call, or until ctx is done.
func (e *Evaluator) Settle(ctx context.Context) error {
	for {
		e.mu.Lock()
		if e.pending == 0 {
			e.mu.Unlock()
			return nil
		}
		idle := e.idle
		e.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-idle:
		}
	}
}

// State reports the node's current evaluation phase.
func (e *Evaluator) State(nodeID string) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.states[nodeID]
}

func (e *Evaluator) setState(nodeID string, s State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s == Idle {
		delete(e.states, nodeID)
		return
	}
	e.states[nodeID] = s
}

func (e *Evaluator) log() *slog.Logger {
	if e.ctx == nil {
		return slog.Default()
	}
	return ctxlog.FromContext(e.ctx)
}

func (e *Evaluator) state(nodeID string) *nodeState {
	st, ok := e.nodes[nodeID]
	if !ok {
		st = &nodeState{}
		e.nodes[nodeID] = st
	}
	return st
}

func (e *Evaluator) handle(msg message) {
	switch m := msg.(type) {
	case storeEvent:
		e.handleEvent(m.ev)
	case fire:
		st, ok := e.nodes[m.nodeID]
		if !ok || st.timer == nil || st.timerSeq != m.seq {
			return
		}
		st.timer = nil
		e.run(m.nodeID)
	case trigger:
		st := e.state(m.nodeID)
		st.manual = true
		e.stopTimer(st)
		e.run(m.nodeID)
	case asyncDone:
		e.finishAsync(m)
	}
}

func (e *Evaluator) handleEvent(ev graph.Event) {
	switch ev.Kind {
	case graph.NodeAdded:
		e.schedule(ev.NodeID)
	case graph.NodeRemoved:
		e.forget(ev.NodeID)
	case graph.EdgeAdded, graph.EdgeRemoved:
		e.schedule(ev.Edge.Target)
	case graph.NodeChanged:
		if ev.Fields.Has(graph.FieldContents | graph.FieldInputLabels | graph.FieldMeta) {
			e.schedule(ev.NodeID)
		}
		if ev.Fields.Has(graph.FieldOutputs) {
			for _, dep := range e.store.Dependents(ev.NodeID) {
				e.schedule(dep)
			}
		}
	}
}

// schedule (re)arms the node's debounce timer.
func (e *Evaluator) schedule(nodeID string) {
	if _, ok := e.store.Node(nodeID); !ok {
		return
	}
	st := e.state(nodeID)
	if e.debounce <= 0 {
		e.run(nodeID)
		return
	}
	e.stopTimer(st)
	st.timerSeq++
	seq := st.timerSeq
	e.addPending(1)
	st.timer = time.AfterFunc(e.debounce, func() {
		e.post(fire{nodeID: nodeID, seq: seq})
		e.addPending(-1)
	})
}

func (e *Evaluator) stopTimer(st *nodeState) {
	if st.timer == nil {
		return
	}
	if st.timer.Stop() {
		e.addPending(-1)
	}
	st.timer = nil
}

func (e *Evaluator) forget(nodeID string) {
	st, ok := e.nodes[nodeID]
	if !ok {
		return
	}
	e.stopTimer(st)
	if st.cancel != nil {
		st.cancel()
	}
	// In-flight completions still arrive and are dropped because the state is gone.
	delete(e.nodes, nodeID)
	e.setState(nodeID, Idle)
}

func (e *Evaluator) shutdown() {
	e.unsubscribe()
	for id := range e.nodes {
		e.forget(id)
	}
}

// run performs one evaluation cycle for nodeID.
func (e *Evaluator) run(nodeID string) {
	node, ok := e.store.Node(nodeID)
	if !ok {
		return
	}
	logger := e.log().With("nodeID", nodeID, "componentId", node.Data.ComponentID)
	st := e.state(nodeID)

	comp, err := e.resolver.Resolve(node.Data.ComponentID)
	if err != nil {
		logger.Error("Cannot resolve node component.", "error", err)
		return
	}

	e.setState(nodeID, Gathering)
	inputs := e.gather(node)
	var relabelled bool
	node, relabelled = e.applyLabels(logger, node, comp, inputs)
	if relabelled {
		inputs = e.gather(node)
	}

	if node.Data.Lazy && !st.manual {
		logger.Debug("Lazy node waiting for a manual trigger.")
		e.setState(nodeID, Idle)
		return
	}
	force := st.manual
	st.manual = false

	fp := fingerprint(node, inputs)
	if !force && fp == st.fingerprint {
		logger.Debug("Inputs unchanged, skipping evaluation.")
		e.setState(nodeID, Idle)
		return
	}
	st.fingerprint = fp

	inputs, err = coerce(node.Data.InputLabels, inputs)
	if err != nil {
		logger.Warn("Input conversion failed, keeping previous outputs.", "error", err)
		e.setState(nodeID, Blocked)
		e.setState(nodeID, Idle)
		return
	}
	e.setState(nodeID, Ready)

	in := component.Input{Inputs: inputs, Contents: node.Data.Contents.Clone()}
	replace := comp.Config.ReplaceOutputs

	e.setState(nodeID, Running)
	if comp.Func != nil {
		out, err := comp.Func(in)
		if err != nil {
			logger.Warn("Node evaluation failed.", "error", err)
		} else if err := e.store.SetNodeOutputs(nodeID, out, replace); err != nil && !errors.Is(err, graph.ErrNodeNotFound) {
			logger.Error("Failed to write node outputs.", "error", err)
		}
	}
	if comp.AsyncFunc != nil {
		e.startAsync(logger, nodeID, st, comp.AsyncFunc, in)
		return
	}
	e.setState(nodeID, Idle)
}

// applyLabels resolves generated labels, title and description and writes
// the changes to the store. It returns the node as the evaluation should see
// it and whether the input port set changed.
func (e *Evaluator) applyLabels(logger *slog.Logger, node graph.Node, comp *component.Component, inputs value.Record) (graph.Node, bool) {
	in := component.Input{Inputs: inputs, Contents: node.Data.Contents}
	res := labels.Resolve(comp, in, labels.Resolution{
		InputLabels:  node.Data.InputLabels,
		OutputLabels: node.Data.OutputLabels,
		Title:        node.Data.Title,
		Description:  node.Data.Description,
	})
	if res.InputErr != nil {
		logger.Warn("Input labels could not be derived, keeping previous ports.", "error", res.InputErr)
	}
	if res.OutputErr != nil {
		logger.Warn("Output labels could not be derived, keeping previous ports.", "error", res.OutputErr)
	}
	relabelled := false
	if !res.InputLabels.Equal(node.Data.InputLabels) {
		_ = e.store.SetNodeInputLabels(node.ID, res.InputLabels)
		node.Data.InputLabels = res.InputLabels
		relabelled = true
	}
	if !res.OutputLabels.Equal(node.Data.OutputLabels) {
		_ = e.store.SetNodeOutputLabels(node.ID, res.OutputLabels)
		node.Data.OutputLabels = res.OutputLabels
	}
	if res.Title != node.Data.Title || res.Description != node.Data.Description {
		_ = e.store.SetNodeTitle(node.ID, res.Title, res.Description)
		node.Data.Title, node.Data.Description = res.Title, res.Description
	}
	return node, relabelled
}

// gather reads, for every input port, the output value of the node wired
// into it. Unwired ports and absent upstream values are left out.
func (e *Evaluator) gather(node graph.Node) value.Record {
	inputs := value.Record{}
	for _, l := range node.Data.InputLabels {
		edge, ok := e.store.EdgeInto(node.ID, l.Name)
		if !ok {
			continue
		}
		src, ok := e.store.Node(edge.Source)
		if !ok {
			continue
		}
		if v := src.Data.Outputs[edge.SourceHandle]; !v.IsNull() {
			inputs[l.Name] = v
		}
	}
	return inputs
}

func coerce(ports value.Labels, inputs value.Record) (value.Record, error) {
	out := make(value.Record, len(inputs))
	for _, l := range ports {
		v, ok := inputs[l.Name]
		if !ok {
			continue
		}
		cv, err := convert.ToType(v, l.Type)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", l.Name, err)
		}
		out[l.Name] = cv
	}
	return out, nil
}

func fingerprint(node graph.Node, inputs value.Record) string {
	b, err := json.Marshal(struct {
		Contents value.Record `json:"c"`
		Labels   value.Labels `json:"l"`
		Inputs   value.Record `json:"i"`
		Lazy     bool         `json:"z"`
	}{node.Data.Contents, node.Data.InputLabels, inputs, node.Data.Lazy})
	if err != nil {
		return ""
	}
	return string(b)
}
