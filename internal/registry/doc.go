// Package registry maps node type ids to their components.
//
// Node types are contributed by category modules at startup. Each module adds
// its components through Register; registering the same id twice is a
// programmer error and panics. Once populated, the registry is read-only and
// is validated so that malformed templates are caught before any graph runs.
package registry
