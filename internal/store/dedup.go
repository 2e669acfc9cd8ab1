package store

import (
	"sync"

	"github.com/axiomhq/hyperloglog"
	"github.com/bits-and-blooms/bloom/v3"
)

// dedupTracker combines a Bloom filter for repeat detection with a
// HyperLogLog sketch for unique-sequence estimation. The Bloom filter may
// flag a truly new sequence as a repeat at the configured false positive
// rate; the HLL estimate is unaffected.
type dedupTracker struct {
	mu         sync.Mutex
	filter     *bloom.BloomFilter
	sketch     *hyperloglog.Sketch
	total      int64
	duplicates int64
}

func newDedupTracker(expectedItems uint, falsePositiveRate float64) *dedupTracker {
	return &dedupTracker{
		filter: bloom.NewWithEstimates(expectedItems, falsePositiveRate),
		sketch: hyperloglog.New(),
	}
}

// observe records one sequence and reports whether it was likely seen before.
func (t *dedupTracker) observe(seq string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := []byte(seq)
	t.total++
	t.sketch.Insert(key)

	if t.filter.Test(key) {
		t.duplicates++
		return true
	}
	t.filter.Add(key)
	return false
}

// snapshot returns totals, the unique estimate and the duplicate rate.
func (t *dedupTracker) snapshot() (total, unique int64, duplicateRate float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	total = t.total
	unique = int64(t.sketch.Estimate())
	if t.total > 0 {
		duplicateRate = float64(t.duplicates) / float64(t.total)
	}
	return total, unique, duplicateRate
}
