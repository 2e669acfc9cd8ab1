package stats

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fotlabs/discovery-engine/internal/logging"
	"github.com/fotlabs/discovery-engine/internal/store"
)

func TestFoldAccumulates(t *testing.T) {
	a := NewAggregator(5)
	for i := 0; i < 3; i++ {
		a.Fold(CycleOutcome{
			Processed:      10,
			Valid:          8,
			StoredPrimary:  6,
			StoredFallback: 2,
			Lost:           0,
			ScoringTime:    time.Millisecond,
			ValidationTime: time.Millisecond,
		})
	}

	totals := a.SnapshotTotals()
	if totals.Cycles != 3 {
		t.Errorf("Cycles = %d, want 3", totals.Cycles)
	}
	if totals.Items != 30 || totals.Valid != 24 {
		t.Errorf("Items/Valid = %d/%d, want 30/24", totals.Items, totals.Valid)
	}
	if totals.StoredPrimary != 18 || totals.StoredFallback != 6 {
		t.Errorf("stored = %d/%d, want 18/6", totals.StoredPrimary, totals.StoredFallback)
	}
	if totals.Lost != 0 {
		t.Errorf("Lost = %d, want 0", totals.Lost)
	}
}

func TestTotalsMonotone(t *testing.T) {
	a := NewAggregator(100)
	prev := a.SnapshotTotals()
	for i := 0; i < 10; i++ {
		a.Fold(CycleOutcome{Processed: i, Valid: i / 2, Lost: i % 2})
		cur := a.SnapshotTotals()
		if cur.Cycles < prev.Cycles || cur.Items < prev.Items ||
			cur.Valid < prev.Valid || cur.Lost < prev.Lost {
			t.Fatalf("totals decreased: %+v -> %+v", prev, cur)
		}
		if cur.Elapsed < prev.Elapsed {
			t.Fatalf("elapsed decreased: %v -> %v", prev.Elapsed, cur.Elapsed)
		}
		prev = cur
	}
}

func TestRateComputedFromWallClock(t *testing.T) {
	a := NewAggregator(100)
	a.start = time.Now().Add(-10 * time.Second)
	a.Fold(CycleOutcome{Processed: 50})

	totals := a.SnapshotTotals()
	if totals.Rate < 4.5 || totals.Rate > 5.5 {
		t.Errorf("Rate = %v, want near 5 seq/sec", totals.Rate)
	}
}

func TestProgressLoggedEveryK(t *testing.T) {
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	defer logging.SetOutput(os.Stdout)

	a := NewAggregator(5)
	for i := 0; i < 12; i++ {
		a.Fold(CycleOutcome{Processed: 10, Valid: 10})
	}

	count := strings.Count(buf.String(), "discovery progress")
	if count != 2 {
		t.Errorf("got %d progress logs in 12 folds with K=5, want 2", count)
	}
}

func TestReportContainsTotals(t *testing.T) {
	a := NewAggregator(5)
	a.Fold(CycleOutcome{Processed: 10, Valid: 10, StoredFallback: 10})

	report := a.Report("fallback-only", store.BackendStats{
		TotalRecords:  10,
		UniqueItems:   9,
		DuplicateRate: 0.1,
	})
	for _, want := range []string{
		"shutdown report",
		"cycles:           1",
		"sequences:        10",
		"valid:            10",
		"stored fallback:  10",
		"storage mode:     fallback-only",
		"unique sequences: 9",
		"duplicate rate:   10.0%",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestReportWithoutBackendStats(t *testing.T) {
	a := NewAggregator(5)
	report := a.Report("primary", store.BackendStats{})
	if !strings.Contains(report, "backend records:  unavailable") {
		t.Errorf("report missing unavailable marker:\n%s", report)
	}
}
