// Package stats aggregates discovery totals across cycles and emits
// periodic progress plus the final shutdown report.
package stats

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fotlabs/discovery-engine/internal/logging"
	"github.com/fotlabs/discovery-engine/internal/store"
)

// CycleOutcome is the fold input for one completed cycle.
type CycleOutcome struct {
	Processed      int
	Valid          int
	StoredPrimary  int
	StoredFallback int
	Lost           int
	ScoringTime    time.Duration
	ValidationTime time.Duration
}

// Totals is a snapshot of the running counters. All counters are monotone.
type Totals struct {
	Cycles         int64
	Items          int64
	Valid          int64
	StoredPrimary  int64
	StoredFallback int64
	Lost           int64
	Elapsed        time.Duration
	Rate           float64 // items per second over the whole run
}

// Aggregator folds cycle outcomes into run totals.
type Aggregator struct {
	progressEvery int
	start         time.Time

	mu             sync.Mutex
	cycles         int64
	items          int64
	valid          int64
	storedPrimary  int64
	storedFallback int64
	lost           int64
	scoringTime    time.Duration
	validationTime time.Duration
}

// NewAggregator creates an aggregator that logs progress every
// progressEvery folds.
func NewAggregator(progressEvery int) *Aggregator {
	if progressEvery < 1 {
		progressEvery = 1
	}
	return &Aggregator{
		progressEvery: progressEvery,
		start:         time.Now(),
	}
}

// Fold adds one cycle outcome and logs a progress update every
// progressEvery cycles.
func (a *Aggregator) Fold(o CycleOutcome) {
	a.mu.Lock()
	a.cycles++
	a.items += int64(o.Processed)
	a.valid += int64(o.Valid)
	a.storedPrimary += int64(o.StoredPrimary)
	a.storedFallback += int64(o.StoredFallback)
	a.lost += int64(o.Lost)
	a.scoringTime += o.ScoringTime
	a.validationTime += o.ValidationTime
	totals := a.totalsLocked()
	progress := a.cycles%int64(a.progressEvery) == 0
	a.mu.Unlock()

	publishTotals(totals)

	if progress {
		logging.Info("discovery progress", logging.F(
			"cycles", totals.Cycles,
			"sequences", totals.Items,
			"valid", totals.Valid,
			"stored_primary", totals.StoredPrimary,
			"stored_fallback", totals.StoredFallback,
			"lost", totals.Lost,
			"runtime", totals.Elapsed.Round(time.Second).String(),
			"rate_per_sec", fmt.Sprintf("%.1f", totals.Rate),
		))
	}
}

// SnapshotTotals returns the current totals. Rate and Elapsed are computed
// from wall clock at call time.
func (a *Aggregator) SnapshotTotals() Totals {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totalsLocked()
}

func (a *Aggregator) totalsLocked() Totals {
	elapsed := time.Since(a.start)
	rate := 0.0
	if secs := elapsed.Seconds(); secs > 0 {
		rate = float64(a.items) / secs
	}
	return Totals{
		Cycles:         a.cycles,
		Items:          a.items,
		Valid:          a.valid,
		StoredPrimary:  a.storedPrimary,
		StoredFallback: a.storedFallback,
		Lost:           a.lost,
		Elapsed:        elapsed,
		Rate:           rate,
	}
}

// Report renders the shutdown report. backendStats may be zero when the
// final stats query failed.
func (a *Aggregator) Report(mode string, backendStats store.BackendStats) string {
	t := a.SnapshotTotals()

	var b strings.Builder
	fmt.Fprintf(&b, "discovery shutdown report\n")
	fmt.Fprintf(&b, "  runtime:          %s\n", t.Elapsed.Round(time.Second))
	fmt.Fprintf(&b, "  cycles:           %d\n", t.Cycles)
	fmt.Fprintf(&b, "  sequences:        %d\n", t.Items)
	fmt.Fprintf(&b, "  valid:            %d\n", t.Valid)
	fmt.Fprintf(&b, "  stored primary:   %d\n", t.StoredPrimary)
	fmt.Fprintf(&b, "  stored fallback:  %d\n", t.StoredFallback)
	fmt.Fprintf(&b, "  lost:             %d\n", t.Lost)
	fmt.Fprintf(&b, "  rate:             %.1f seq/sec\n", t.Rate)
	fmt.Fprintf(&b, "  storage mode:     %s\n", mode)
	if backendStats.TotalRecords > 0 {
		fmt.Fprintf(&b, "  backend records:  %d\n", backendStats.TotalRecords)
		fmt.Fprintf(&b, "  unique sequences: %d\n", backendStats.UniqueItems)
		fmt.Fprintf(&b, "  duplicate rate:   %.1f%%", backendStats.DuplicateRate*100)
	} else {
		b.WriteString("  backend records:  unavailable")
	}
	return b.String()
}
