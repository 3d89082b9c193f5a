package graph

import "errors"

var (
	ErrNodeNotFound      = errors.New("node not found")
	ErrNodeAlreadyExists = errors.New("node already exists")
	ErrEdgeNotFound      = errors.New("edge not found")
	ErrEdgeAlreadyExists = errors.New("edge already exists")
	ErrInvalidEdge       = errors.New("invalid edge")
	ErrCycleDetected     = errors.New("cycle detected")
	ErrUnsupportedChange = errors.New("unsupported change")
)
