// Package file provides filesystem-backed adapters: workflow, document and
// chat stores as JSON files, and the default vector store behind the
// knowledge index. All writes are atomic (temp file, fsync, rename).
package file
