package evaluator

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/promptgrid/internal/component"
	"github.com/vk/promptgrid/internal/graph"
	"github.com/vk/promptgrid/internal/labels"
	"github.com/vk/promptgrid/internal/registry"
	"github.com/vk/promptgrid/internal/value"
)

// fixture wires a store, a registry of small test components and a running
// evaluator together.
type fixture struct {
	store   *graph.Store
	reg     *registry.Registry
	ev      *Evaluator
	upper   atomic.Int32
	release chan struct{}

	bothSync    atomic.Int32
	bothAsync   atomic.Int32
	bothRelease chan struct{}
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{reg: registry.New(), release: make(chan struct{}), bothRelease: make(chan struct{})}
	f.registerComponents()
	f.store = graph.New(f.reg)
	f.ev = New(f.store, f.reg, append([]Option{WithDebounce(0)}, opts...)...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.ev.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return f
}

func (f *fixture) registerComponents() {
	f.reg.Register("source", &component.Component{
		Config: component.Config{
			OutputLabels:  value.Labels{value.NewLabel("out", value.String)},
			ContentLabels: value.Labels{value.NewLabel("value", value.String, value.Number)},
			Contents:      value.Record{"value": value.StringValue("")},
		},
		Func: func(in component.Input) (value.Record, error) {
			v, err := in.Content("value")
			if err != nil {
				return nil, err
			}
			return value.Record{"out": v}, nil
		},
	})
	f.reg.Register("upper", &component.Component{
		Config: component.Config{
			InputLabels:  value.Labels{value.NewLabel("in", value.String)},
			OutputLabels: value.Labels{value.NewLabel("out", value.String)},
		},
		Func: func(in component.Input) (value.Record, error) {
			f.upper.Add(1)
			s, err := in.InputText("in")
			if err != nil {
				return nil, err
			}
			return value.Record{"out": value.StringValue(strings.ToUpper(s))}, nil
		},
	})
	f.reg.Register("lazyUpper", &component.Component{
		Config: component.Config{
			InputLabels:  value.Labels{value.NewLabel("in", value.String)},
			OutputLabels: value.Labels{value.NewLabel("out", value.String)},
			Lazy:         true,
		},
		Func: func(in component.Input) (value.Record, error) {
			f.upper.Add(1)
			s, err := in.InputText("in")
			if err != nil {
				return nil, err
			}
			return value.Record{"out": value.StringValue(strings.ToUpper(s))}, nil
		},
	})
	f.reg.Register("template", &component.Component{
		Config: component.Config{
			OutputLabels:  value.Labels{value.NewLabel("prompt", value.String)},
			ContentLabels: value.Labels{value.NewLabel("prompt", value.String)},
			Contents:      value.Record{"prompt": value.StringValue("")},
		},
		InputLabelsFunc: labels.FromContent("prompt"),
		Func: func(in component.Input) (value.Record, error) {
			text, err := in.ContentText("prompt")
			if err != nil {
				return nil, err
			}
			vars := map[string]string{}
			for k, v := range in.Inputs {
				vars[k] = v.Str
			}
			return value.Record{"prompt": value.StringValue(labels.Fill(text, vars))}, nil
		},
	})
	f.reg.Register("image", &component.Component{
		Config: component.Config{
			InputLabels:  value.Labels{value.NewLabel("url", value.ImageURL)},
			OutputLabels: value.Labels{value.NewLabel("seen", value.String)},
		},
		Func: func(in component.Input) (value.Record, error) {
			v, err := in.Input("url")
			if err != nil {
				return nil, err
			}
			return value.Record{"seen": value.StringValue(v.Str)}, nil
		},
	})
	f.reg.Register("async", &component.Component{
		Config: component.Config{
			InputLabels:  value.Labels{value.NewLabel("in", value.String)},
			OutputLabels: value.Labels{value.NewLabel("out", value.String)},
		},
		AsyncFunc: func(ctx context.Context, in component.Input) (value.Record, error) {
			s, err := in.InputText("in")
			if err != nil {
				return nil, err
			}
			switch s {
			case "slow":
				<-f.release
			case "hang":
				<-ctx.Done()
				return nil, ctx.Err()
			}
			return value.Record{"out": value.StringValue(s)}, nil
		},
	})
	f.reg.Register("both", &component.Component{
		Config: component.Config{
			InputLabels: value.Labels{value.NewLabel("in", value.String)},
			OutputLabels: value.Labels{
				value.NewLabel("s", value.String),
				value.NewLabel("a", value.String),
			},
		},
		Func: func(in component.Input) (value.Record, error) {
			if _, err := in.InputText("in"); err != nil {
				return nil, err
			}
			f.bothSync.Add(1)
			return value.Record{"s": value.StringValue("sync")}, nil
		},
		AsyncFunc: func(ctx context.Context, in component.Input) (value.Record, error) {
			if _, err := in.InputText("in"); err != nil {
				return nil, err
			}
			f.bothAsync.Add(1)
			select {
			case <-f.bothRelease:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return value.Record{"a": value.StringValue("async")}, nil
		},
	})
	f.reg.Register("split", &component.Component{
		Config: component.Config{
			ContentLabels:  value.Labels{value.NewLabel("keys", value.String)},
			Contents:       value.Record{"keys": value.StringValue("")},
			ReplaceOutputs: true,
		},
		Func: func(in component.Input) (value.Record, error) {
			keys, err := in.ContentText("keys")
			if err != nil {
				return nil, err
			}
			out := value.Record{}
			for _, k := range strings.Fields(keys) {
				out[k] = value.StringValue(k)
			}
			return out, nil
		},
	})
}

func (f *fixture) add(t *testing.T, typeID string, contents value.Record) string {
	t.Helper()
	id, err := f.store.AddNode(typeID, graph.Position{})
	require.NoError(t, err)
	if contents != nil {
		require.NoError(t, f.store.SetNodeContents(id, contents, false))
	}
	return id
}

func (f *fixture) connect(t *testing.T, src, srcHandle, tgt, tgtHandle string) {
	t.Helper()
	_, err := f.store.Connect(graph.Connection{Source: src, SourceHandle: srcHandle, Target: tgt, TargetHandle: tgtHandle})
	require.NoError(t, err)
}

func (f *fixture) settle(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.ev.Settle(ctx))
}

func (f *fixture) output(t *testing.T, id, port string) value.Value {
	t.Helper()
	n, ok := f.store.Node(id)
	require.True(t, ok)
	return n.Data.Outputs[port]
}

func TestEvaluator_PropagatesThroughPromptTemplate(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	f := newFixture(t)
	a := f.add(t, "source", value.Record{"value": value.StringValue("hello")})
	b := f.add(t, "template", value.Record{"prompt": value.StringValue("Say {x}")})

	// --- Act ---
	f.settle(t)
	f.connect(t, a, "out", b, "x")
	f.settle(t)

	// --- Assert ---
	n, _ := f.store.Node(b)
	assert.True(t, n.Data.InputLabels.Equal(value.Labels{value.NewLabel("x", value.String)}))
	assert.Equal(t, value.StringValue("Say hello"), f.output(t, b, "prompt"))
	assert.Equal(t, Idle, f.ev.State(b))
}

func TestEvaluator_UnfilledPlaceholdersStayLiteral(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	b := f.add(t, "template", value.Record{"prompt": value.StringValue("Say {x} to {y}")})
	f.settle(t)

	assert.Equal(t, value.StringValue("Say {x} to {y}"), f.output(t, b, "prompt"))
}

func TestEvaluator_CoercesNumberToString(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	a := f.add(t, "source", value.Record{"value": value.NumberValue(42)})
	b := f.add(t, "upper", nil)
	f.connect(t, a, "out", b, "in")
	f.settle(t)

	assert.Equal(t, value.StringValue("42"), f.output(t, b, "out"))
}

func TestEvaluator_ConversionFailureKeepsOutputs(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	f := newFixture(t)
	a := f.add(t, "source", value.Record{"value": value.StringValue("http://img/a.png")})
	b := f.add(t, "image", nil)
	f.connect(t, a, "out", b, "url")
	f.settle(t)
	require.Equal(t, value.StringValue("http://img/a.png"), f.output(t, b, "seen"))

	// --- Act ---
	require.NoError(t, f.store.SetNodeContents(a, value.Record{"value": value.StringValue("not-a-url")}, false))
	f.settle(t)

	// --- Assert ---
	assert.Equal(t, value.StringValue("http://img/a.png"), f.output(t, b, "seen"))
	assert.Equal(t, Idle, f.ev.State(b))
}

func TestEvaluator_LazyNodeRunsOncePerTrigger(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	f := newFixture(t)
	a := f.add(t, "source", value.Record{"value": value.StringValue("one")})
	b := f.add(t, "lazyUpper", nil)
	f.connect(t, a, "out", b, "in")
	f.settle(t)
	require.Equal(t, int32(0), f.upper.Load())
	require.True(t, f.output(t, b, "out").IsNull())

	// --- Act & Assert ---
	require.NoError(t, f.ev.Trigger(b))
	f.settle(t)
	assert.Equal(t, int32(1), f.upper.Load())
	assert.Equal(t, value.StringValue("ONE"), f.output(t, b, "out"))

	require.NoError(t, f.store.SetNodeContents(a, value.Record{"value": value.StringValue("two")}, false))
	f.settle(t)
	assert.Equal(t, int32(1), f.upper.Load(), "upstream changes must not re-run a lazy node")
	assert.Equal(t, value.StringValue("ONE"), f.output(t, b, "out"))

	require.NoError(t, f.ev.Trigger(b))
	f.settle(t)
	assert.Equal(t, int32(2), f.upper.Load())
	assert.Equal(t, value.StringValue("TWO"), f.output(t, b, "out"))

	assert.ErrorIs(t, f.ev.Trigger("missing"), graph.ErrNodeNotFound)
}

func TestEvaluator_SkipsRedundantTriggers(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	a := f.add(t, "source", value.Record{"value": value.StringValue("x")})
	b := f.add(t, "upper", nil)
	f.connect(t, a, "out", b, "in")
	f.settle(t)
	before := f.upper.Load()

	title := "renamed"
	require.NoError(t, f.store.UpdateNode(b, graph.NodePatch{Title: &title}))
	f.settle(t)

	assert.Equal(t, before, f.upper.Load())
}

func TestEvaluator_DebounceCoalescesBursts(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	f := newFixture(t, WithDebounce(40*time.Millisecond))
	a := f.add(t, "source", value.Record{"value": value.StringValue("a")})
	b := f.add(t, "upper", nil)
	f.connect(t, a, "out", b, "in")
	f.settle(t)
	before := f.upper.Load()

	// --- Act ---
	for _, s := range []string{"b", "c", "d", "e"} {
		require.NoError(t, f.store.SetNodeContents(a, value.Record{"value": value.StringValue(s)}, false))
	}
	f.settle(t)

	// --- Assert ---
	assert.Equal(t, before+1, f.upper.Load())
	assert.Equal(t, value.StringValue("E"), f.output(t, b, "out"))
}

func TestEvaluator_DiscardsStaleAsyncResults(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	f := newFixture(t)
	a := f.add(t, "source", value.Record{"value": value.StringValue("slow")})
	b := f.add(t, "async", nil)
	f.connect(t, a, "out", b, "in")
	require.Eventually(t, func() bool {
		n, _ := f.store.Node(b)
		return n.Running
	}, 2*time.Second, 5*time.Millisecond)

	// --- Act ---
	require.NoError(t, f.store.SetNodeContents(a, value.Record{"value": value.StringValue("fast")}, false))
	require.Eventually(t, func() bool {
		return f.output(t, b, "out").Equal(value.StringValue("fast"))
	}, 2*time.Second, 5*time.Millisecond)
	close(f.release)
	f.settle(t)

	// --- Assert ---
	assert.Equal(t, value.StringValue("fast"), f.output(t, b, "out"))
	n, _ := f.store.Node(b)
	assert.False(t, n.Running)
	assert.Equal(t, Idle, f.ev.State(b))
}

func TestEvaluator_RunsSyncAndAsyncInOneCycle(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	f := newFixture(t)
	a := f.add(t, "source", value.Record{"value": value.StringValue("go")})
	b := f.add(t, "both", nil)
	f.settle(t)
	require.Equal(t, int32(0), f.bothSync.Load())

	// --- Act ---
	f.connect(t, a, "out", b, "in")
	require.Eventually(t, func() bool {
		n, _ := f.store.Node(b)
		return n.Running
	}, 2*time.Second, 5*time.Millisecond)

	// --- Assert ---
	assert.Equal(t, value.StringValue("sync"), f.output(t, b, "s"))
	assert.True(t, f.output(t, b, "a").IsNull())

	close(f.bothRelease)
	f.settle(t)

	n, _ := f.store.Node(b)
	assert.False(t, n.Running)
	assert.True(t, n.Data.Outputs.Equal(value.Record{
		"s": value.StringValue("sync"),
		"a": value.StringValue("async"),
	}))
	assert.Equal(t, int32(1), f.bothSync.Load())
	assert.Equal(t, int32(1), f.bothAsync.Load())
	assert.Equal(t, Idle, f.ev.State(b))
}

func TestEvaluator_AsyncTimeoutKeepsOutputs(t *testing.T) {
	t.Parallel()

	f := newFixture(t, WithAsyncTimeout(20*time.Millisecond))
	a := f.add(t, "source", value.Record{"value": value.StringValue("ok")})
	b := f.add(t, "async", nil)
	f.connect(t, a, "out", b, "in")
	f.settle(t)
	require.Equal(t, value.StringValue("ok"), f.output(t, b, "out"))

	require.NoError(t, f.store.SetNodeContents(a, value.Record{"value": value.StringValue("hang")}, false))
	f.settle(t)

	assert.Equal(t, value.StringValue("ok"), f.output(t, b, "out"))
	n, _ := f.store.Node(b)
	assert.False(t, n.Running)
}

func TestEvaluator_ReplaceOutputs(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	s := f.add(t, "split", value.Record{"keys": value.StringValue("a b")})
	f.settle(t)
	n, _ := f.store.Node(s)
	assert.Len(t, n.Data.Outputs, 2)

	require.NoError(t, f.store.SetNodeContents(s, value.Record{"keys": value.StringValue("c")}, false))
	f.settle(t)
	n, _ = f.store.Node(s)
	assert.True(t, n.Data.Outputs.Equal(value.Record{"c": value.StringValue("c")}))
}

func TestEvaluator_EdgeRemovalReevaluatesTarget(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	a := f.add(t, "source", value.Record{"value": value.StringValue("hello")})
	b := f.add(t, "template", value.Record{"prompt": value.StringValue("Say {x}")})
	f.connect(t, a, "out", b, "x")
	f.settle(t)
	require.Equal(t, value.StringValue("Say hello"), f.output(t, b, "prompt"))

	require.NoError(t, f.store.DeleteNode(a))
	f.settle(t)

	assert.Equal(t, value.StringValue("Say {x}"), f.output(t, b, "prompt"))
}

func TestEvaluator_UnknownComponentIsSkipped(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	require.NoError(t, f.store.InsertNode(graph.Node{ID: "ghost", Type: "ghost"}))
	f.settle(t)

	n, ok := f.store.Node("ghost")
	require.True(t, ok)
	assert.Empty(t, n.Data.Outputs)
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "blocked", Blocked.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "unknown", State(99).String())
}
