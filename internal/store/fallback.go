package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

// Expected unique sequences for the fallback duplicate tracker.
const (
	fallbackExpectedItems = 1_000_000
	fallbackFPRate        = 0.01
)

// timestampLayout is a filesystem-safe RFC3339Nano rendering with fixed
// nanosecond width, so names sort lexicographically by creation time.
const timestampLayout = "20060102T150405.000000000Z"

// FallbackStore writes one JSON file per record into a directory. File names
// combine a high-resolution timestamp with a short uuid so concurrent writes
// never collide.
type FallbackStore struct {
	dir      string
	compress bool
	encoder  *zstd.Encoder
	decoder  *zstd.Decoder
	tracker  *dedupTracker
}

// NewFallbackStore creates the directory if needed.
func NewFallbackStore(dir string, compress bool) (*FallbackStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create fallback dir: %w", err)
	}
	s := &FallbackStore{
		dir:      dir,
		compress: compress,
		tracker:  newDedupTracker(fallbackExpectedItems, fallbackFPRate),
	}
	if compress {
		encoder, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("create zstd encoder: %w", err)
		}
		s.encoder = encoder
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	s.decoder = decoder
	return s, nil
}

// Store writes rec to its own file and returns the assigned id.
func (s *FallbackStore) Store(ctx context.Context, rec *Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	stored := *rec
	stored.ID = id

	data, err := json.MarshalIndent(&stored, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}

	name := fmt.Sprintf("discovery_%s_%s.json",
		time.Now().UTC().Format(timestampLayout), id[:8])
	if s.compress {
		data = s.encoder.EncodeAll(data, nil)
		name += ".zst"
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}

	if s.tracker.observe(rec.Sequence) {
		recordDuplicate(BackendFallback)
	}
	return id, nil
}

// Stats reports totals from the in-process duplicate tracker.
func (s *FallbackStore) Stats(ctx context.Context) (BackendStats, error) {
	if err := ctx.Err(); err != nil {
		return BackendStats{}, err
	}
	total, unique, rate := s.tracker.snapshot()
	return BackendStats{
		TotalRecords:  total,
		UniqueItems:   unique,
		DuplicateRate: rate,
	}, nil
}

// Close releases the compression codecs.
func (s *FallbackStore) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}
	if s.encoder != nil {
		if err := s.encoder.Close(); err != nil {
			return err
		}
		s.encoder = nil
	}
	if s.decoder != nil {
		s.decoder.Close()
		s.decoder = nil
	}
	return nil
}

// ReadRecord loads a record written by Store, transparently decompressing
// `.zst` files.
func (s *FallbackStore) ReadRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".zst") {
		data, err = s.decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress %s: %w", filepath.Base(path), err)
		}
	}
	rec := &Record{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", filepath.Base(path), err)
	}
	return rec, nil
}
