package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fotlabs/discovery-engine/internal/score"
	"github.com/fotlabs/discovery-engine/internal/validate"
)

func testRecord(seq string) *Record {
	return &Record{
		Sequence:        seq,
		ValidationScore: 0.8,
		Assessment:      "VALID: composition 0.800 with quantum context",
		VQbitScore:      0.61,
		EnergyKcalMol:   -312.5,
		VirtueScores:    score.VirtueScores{Justice: 0.1, Honesty: 0.2, Temperance: 0.15, Prudence: 0.05},
		Genetics:        validate.GeneticsVirtues{Fidelity: 0.4, Robustness: 0.5, Efficiency: 0.6, Resilience: 0.7, Parsimony: 0.8},
		Quantum: score.Quantum{
			Coherence:             0.82,
			EntanglementEntropy:   0.31,
			SuperpositionFidelity: 0.9,
			PhaseCorrelation:      3.1,
		},
		States: []score.ResidueState{
			{Index: 0, AminoAcid: "M", Phi: -60, Psi: -45, AmplitudeReal: 0.6, AmplitudeImag: 0.8},
		},
		CreatedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func TestFallbackStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFallbackStore(dir, false)
	if err != nil {
		t.Fatalf("NewFallbackStore: %v", err)
	}
	defer s.Close(context.Background())

	rec := testRecord("MKTAYIAKQRQISFVKSHF")
	id, err := s.Store(context.Background(), rec)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if id == "" {
		t.Fatal("empty id")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d files, want 1", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasPrefix(name, "discovery_") || !strings.HasSuffix(name, ".json") {
		t.Errorf("unexpected file name %q", name)
	}
	if !strings.Contains(name, id[:8]) {
		t.Errorf("file name %q missing id prefix %q", name, id[:8])
	}

	got, err := s.ReadRecord(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if got.ID != id {
		t.Errorf("ID = %q, want %q", got.ID, id)
	}
	if got.Sequence != rec.Sequence ||
		got.ValidationScore != rec.ValidationScore ||
		got.Assessment != rec.Assessment ||
		got.VQbitScore != rec.VQbitScore ||
		got.EnergyKcalMol != rec.EnergyKcalMol ||
		got.VirtueScores != rec.VirtueScores ||
		got.Genetics != rec.Genetics ||
		got.Quantum != rec.Quantum {
		t.Errorf("record did not round-trip: %+v", got)
	}
	if len(got.States) != 1 || got.States[0].AminoAcid != "M" {
		t.Errorf("states did not round-trip: %+v", got.States)
	}
	if !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, rec.CreatedAt)
	}
}

func TestFallbackStoreCompressedRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFallbackStore(dir, true)
	if err != nil {
		t.Fatalf("NewFallbackStore: %v", err)
	}
	defer s.Close(context.Background())

	rec := testRecord("ALFWMIVDEHKRNQSTCYAL")
	id, err := s.Store(context.Background(), rec)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("got %d files, want 1", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasSuffix(name, ".json.zst") {
		t.Errorf("file name %q missing .json.zst suffix", name)
	}

	got, err := s.ReadRecord(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if got.ID != id || got.Sequence != rec.Sequence {
		t.Errorf("compressed record did not round-trip: %+v", got)
	}
}

func TestFallbackStoreUniqueFileNames(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFallbackStore(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close(context.Background())

	for i := 0; i < 50; i++ {
		if _, err := s.Store(context.Background(), testRecord("MKTAYIAKQRQISFVKSHF")); err != nil {
			t.Fatalf("Store %d: %v", i, err)
		}
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 50 {
		t.Fatalf("got %d files, want 50 distinct files", len(entries))
	}
}

func TestFallbackStoreStatsTracksDuplicates(t *testing.T) {
	s, err := NewFallbackStore(t.TempDir(), false)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close(context.Background())

	ctx := context.Background()
	seqs := []string{"MKTAYIAKQRQISFVKSHF", "ALFWMIVDEHKRNQSTCYAL", "MKTAYIAKQRQISFVKSHF"}
	for _, seq := range seqs {
		if _, err := s.Store(ctx, testRecord(seq)); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalRecords != 3 {
		t.Errorf("TotalRecords = %d, want 3", stats.TotalRecords)
	}
	if stats.UniqueItems != 2 {
		t.Errorf("UniqueItems = %d, want 2", stats.UniqueItems)
	}
	want := 1.0 / 3.0
	if diff := stats.DuplicateRate - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("DuplicateRate = %v, want %v", stats.DuplicateRate, want)
	}
}

func TestFallbackStoreCloseSafe(t *testing.T) {
	s, err := NewFallbackStore(t.TempDir(), true)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
