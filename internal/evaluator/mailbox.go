package evaluator

import (
	"github.com/vk/promptgrid/internal/graph"
	"github.com/vk/promptgrid/internal/value"
)

type message interface{ isMessage() }

type storeEvent struct{ ev graph.Event }

type fire struct {
	nodeID string
	seq    uint64
}

type trigger struct{ nodeID string }

type asyncDone struct {
	nodeID  string
	gen     uint64
	outputs value.Record
	err     error
}

func (storeEvent) isMessage() {}
func (fire) isMessage()       {}
func (trigger) isMessage()    {}
func (asyncDone) isMessage()  {}

// post appends msg to the mailbox and wakes the loop. It never blocks, which
// keeps store callbacks made from inside the loop from deadlocking.
func (e *Evaluator) post(msg message) {
	e.mu.Lock()
	e.queue = append(e.queue, msg)
	e.addPendingLocked(1)
	e.mu.Unlock()

	select {
	case e.signal <- struct{}{}:
	default:
	}
}

func (e *Evaluator) pop() (message, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return nil, false
	}
	msg := e.queue[0]
	e.queue[0] = nil
	e.queue = e.queue[1:]
	return msg, true
}

// addPending tracks outstanding work: queued messages, armed timers and
// in-flight async calls. Settle waits for it to reach zero.
func (e *Evaluator) addPending(delta int) {
	e.mu.Lock()
	e.addPendingLocked(delta)
	e.mu.Unlock()
}

func (e *Evaluator) addPendingLocked(delta int) {
	wasIdle := e.pending == 0
	e.pending += delta
	switch {
	case wasIdle && e.pending > 0:
		e.idle = make(chan struct{})
	case !wasIdle && e.pending == 0:
		close(e.idle)
	}
}
