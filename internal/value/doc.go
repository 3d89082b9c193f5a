// Package value defines the data that flows between nodes: the primitive type
// tags, widened union types, concrete tagged values, port labels and the
// per-node records keyed by port name.
package value
