// Package component defines what a node type is: an immutable template of
// ports and default contents, plus the optional functions the evaluator calls
// to compute outputs and to derive labels, titles and descriptions from the
// node's contents.
package component
