package domain

import "errors"

// ErrCycleDetected is returned when a workflow graph contains a cycle and
// therefore has no valid execution order. No node executes in that case.
var ErrCycleDetected = errors.New("cycle detected in workflow")

// ErrMalformedEdge is returned when an edge references a node id that does
// not exist in the graph.
var ErrMalformedEdge = errors.New("edge references unknown node")

// ErrWorkflowNotFound is returned when a workflow id cannot be found in the store.
var ErrWorkflowNotFound = errors.New("workflow not found")

// ErrDocumentNotFound is returned when an uploaded document cannot be found
// by its filename reference.
var ErrDocumentNotFound = errors.New("document not found")
