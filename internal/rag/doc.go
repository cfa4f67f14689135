// Package rag implements the retrieval pipeline: boundary-aware text
// chunking, document text extraction, and the knowledge index that lazily
// ingests uploaded documents into a vector store and serves top-k context
// snippets for rag nodes.
package rag
