// Package evaluator keeps every node's outputs consistent with its upstream
// dependencies.
//
// An Evaluator subscribes to a graph.Store and runs a single event loop. Store
// changes, debounce firings, manual triggers and async completions are queued
// into an unbounded mailbox and handled one at a time, so evaluation of the
// synchronous path is serialized. For each node the loop gathers the upstream
// values its input ports are wired to, resolves dynamic labels, coerces values
// to the declared port types, runs the component's functions and writes the
// outputs back into the store, which in turn schedules the downstream nodes.
//
// Asynchronous functions run on their own goroutines. Each call is tagged with
// a per-node generation; starting a new call cancels the previous one and late
// completions from older generations are dropped.
package evaluator
