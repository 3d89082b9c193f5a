// Package config defines the format-agnostic model of a graph definition and
// the Loader interface that concrete formats implement.
//
// A config.Model names nodes by a user-chosen name rather than a store id and
// refers to ports as "node.port". The builder package turns a Model into a
// populated graph store; the hcl package is the file-backed Loader.
package config
