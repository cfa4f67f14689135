// Package ports defines the driven-side interfaces of the Lattice engine:
// persistence stores, the vector store behind the knowledge index, and the
// external AI provider surfaces (model generation, embeddings, web search).
// Adapters under internal/adapters and internal/providers implement them;
// the engine and facade only ever depend on these interfaces.
package ports
