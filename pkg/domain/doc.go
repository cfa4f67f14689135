// Package domain holds the core value types of the Lattice workflow engine:
// the graph model (nodes, edges, typed node configs), node outputs, and the
// persistence records shared between adapters. It has no dependencies on the
// runtime or on any adapter.
package domain
