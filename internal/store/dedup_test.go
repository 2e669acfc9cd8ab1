package store

import (
	"fmt"
	"testing"
)

func TestDedupTrackerFlagsRepeats(t *testing.T) {
	tr := newDedupTracker(1000, 0.01)

	if tr.observe("MKTAYIAKQRQISFVKSHF") {
		t.Error("first observation flagged as duplicate")
	}
	if !tr.observe("MKTAYIAKQRQISFVKSHF") {
		t.Error("repeat observation not flagged")
	}
	if tr.observe("ALFWMIVDEHKRNQSTCYAL") {
		t.Error("distinct sequence flagged as duplicate")
	}
}

func TestDedupTrackerSnapshot(t *testing.T) {
	tr := newDedupTracker(10000, 0.01)
	for i := 0; i < 100; i++ {
		tr.observe(fmt.Sprintf("SEQWITHSUFFIX%04d", i))
	}
	for i := 0; i < 50; i++ {
		tr.observe(fmt.Sprintf("SEQWITHSUFFIX%04d", i))
	}

	total, unique, rate := tr.snapshot()
	if total != 150 {
		t.Errorf("total = %d, want 150", total)
	}
	// HLL is an estimate; allow a few percent either way.
	if unique < 95 || unique > 105 {
		t.Errorf("unique estimate = %d, want near 100", unique)
	}
	want := 50.0 / 150.0
	if rate < want-0.02 || rate > want+0.02 {
		t.Errorf("duplicate rate = %v, want near %v", rate, want)
	}
}

func TestDedupTrackerEmptySnapshot(t *testing.T) {
	total, unique, rate := newDedupTracker(100, 0.01).snapshot()
	if total != 0 || unique != 0 || rate != 0 {
		t.Errorf("empty tracker snapshot = %d/%d/%v", total, unique, rate)
	}
}
