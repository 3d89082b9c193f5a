// Package broadcast mirrors graph store changes to a socket.io server so a
// remote canvas can follow evaluation as it happens.
package broadcast

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/promptgrid/internal/ctxlog"
	"github.com/vk/promptgrid/internal/graph"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DialTimeout bounds how long Dial waits for the server to accept.
const DialTimeout = 15 * time.Second

// Options configure the connection.
type Options struct {
	Namespace          string
	InsecureSkipVerify bool
}

// Payload is the body of every emitted event.
type Payload struct {
	NodeID  string      `json:"nodeId,omitempty"`
	Fields  string      `json:"fields,omitempty"`
	Node    *graph.Node `json:"node,omitempty"`
	Running *bool       `json:"running,omitempty"`
	Edge    *graph.Edge `json:"edge,omitempty"`
}

// Publisher emits store events to a socket.io namespace.
type Publisher struct {
	emit  func(event string, payload Payload)
	close func()
}

// Dial connects to the socket.io server at rawURL and waits for the
// connection to be acknowledged.
func Dial(ctx context.Context, rawURL string, o Options) (*Publisher, error) {
	logger := ctxlog.FromContext(ctx).With("url", rawURL)
	logger.Info("Connecting broadcast client...")

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if o.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(o.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Broadcast client connected", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connectChan <- err
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(DialTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", DialTimeout)
	}

	return &Publisher{
		emit: func(event string, payload Payload) {
			io.Emit(event, payload)
		},
		close: func() {
			io.Disconnect()
		},
	}, nil
}

// Attach starts mirroring store events. The returned function detaches.
func (p *Publisher) Attach(store *graph.Store) (detach func()) {
	return store.Subscribe(func(ev graph.Event) {
		p.emit(ev.Kind.String(), BuildPayload(store, ev))
	})
}

// Close disconnects from the server.
func (p *Publisher) Close() {
	if p.close != nil {
		p.close()
	}
}

// BuildPayload describes ev using the store's current state. Node events carry
// a copy of the node; if the node has since been removed only its id is sent.
func BuildPayload(store *graph.Store, ev graph.Event) Payload {
	switch ev.Kind {
	case graph.EdgeAdded, graph.EdgeRemoved:
		e := ev.Edge
		return Payload{NodeID: ev.NodeID, Edge: &e}
	case graph.NodeRemoved:
		return Payload{NodeID: ev.NodeID}
	default:
		p := Payload{NodeID: ev.NodeID, Fields: ev.Fields.String()}
		if n, ok := store.Node(ev.NodeID); ok {
			running := n.Running
			p.Node = &n
			p.Running = &running
		}
		return p
	}
}
