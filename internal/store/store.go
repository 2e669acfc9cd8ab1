// Package store persists discovery records. A Neo4j graph is the primary
// backend; a one-file-per-record JSON directory is the durable fallback. The
// Gateway guarantees no silent loss: every record ends with a primary id, a
// fallback id, or an explicit loss log.
package store

import (
	"context"
)

// Backend names reported by the gateway.
const (
	BackendPrimary  = "primary"
	BackendFallback = "fallback"
)

// BackendStats summarizes the records a backend holds.
type BackendStats struct {
	TotalRecords  int64
	UniqueItems   int64
	DuplicateRate float64
}

// Backend persists discovery records. Close is safe on a backend that never
// connected.
type Backend interface {
	Store(ctx context.Context, rec *Record) (string, error)
	Stats(ctx context.Context) (BackendStats, error)
	Close(ctx context.Context) error
}
