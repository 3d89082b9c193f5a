// Package graph is the in-memory graph store: the authoritative set of nodes
// and edges, their CRUD and connect operations, structural queries and a
// change-event feed that the evaluator subscribes to.
//
// All methods are safe for concurrent use. Readers always receive copies, so
// a returned Node or Edge never changes under the caller. Subscribers are
// called synchronously after the mutation has been committed and the lock
// released, which lets them read the store or mutate it again.
package graph
