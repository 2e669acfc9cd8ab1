package store

import (
	"context"
	"fmt"

	"github.com/fotlabs/discovery-engine/internal/logging"
)

// Gateway routes records to the primary backend with automatic fallback.
// Within a single Store call a failed primary write goes straight to the
// fallback; the primary is retried on the next record.
type Gateway struct {
	primary  Backend
	fallback *FallbackStore
}

// NewGateway creates a gateway. A nil primary puts the gateway in
// fallback-only mode for its lifetime.
func NewGateway(primary Backend, fallback *FallbackStore) *Gateway {
	return &Gateway{primary: primary, fallback: fallback}
}

// Mode reports "primary" when a primary backend is attached,
// "fallback-only" otherwise.
func (g *Gateway) Mode() string {
	if g.primary != nil {
		return BackendPrimary
	}
	return "fallback-only"
}

// Store persists one record. Exactly one of three outcomes per record:
// a primary id, a fallback id, or an error after a loss log.
func (g *Gateway) Store(ctx context.Context, rec *Record) (id string, backend string, err error) {
	if g.primary != nil {
		id, err := g.primary.Store(ctx, rec)
		if err == nil {
			recordStored(BackendPrimary)
			return id, BackendPrimary, nil
		}
		recordPrimaryFailure()
		logging.Warn("primary store failed, writing fallback",
			logging.F("error", err.Error()))
	}

	id, ferr := g.fallback.Store(ctx, rec)
	if ferr != nil {
		recordLost()
		logging.Error("record lost: fallback store failed",
			logging.F(
				"sequence", rec.Sequence,
				"validation_score", rec.ValidationScore,
				"vqbit_score", rec.VQbitScore,
				"error", ferr.Error(),
			))
		return "", "", fmt.Errorf("store record: %w", ferr)
	}
	recordStored(BackendFallback)
	return id, BackendFallback, nil
}

// Stats reports backend statistics, preferring the primary when attached.
func (g *Gateway) Stats(ctx context.Context) (BackendStats, error) {
	if g.primary != nil {
		stats, err := g.primary.Stats(ctx)
		if err == nil {
			return stats, nil
		}
		logging.Warn("primary stats failed, using fallback stats",
			logging.F("error", err.Error()))
	}
	return g.fallback.Stats(ctx)
}

// Close closes both backends. Safe when the primary never connected.
func (g *Gateway) Close(ctx context.Context) error {
	var firstErr error
	if g.primary != nil {
		if err := g.primary.Close(ctx); err != nil {
			firstErr = err
		}
	}
	if err := g.fallback.Close(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
