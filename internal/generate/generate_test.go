package generate

import (
	"context"
	"strings"
	"testing"
)

const aminoAcids = "ACDEFGHIKLMNPQRSTVWY"

func TestGenerateLengthRange(t *testing.T) {
	g := New(42, WithLengthRange(15, 100))
	for i := 0; i < 200; i++ {
		seq, err := g.Generate(context.Background())
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if len(seq) < 15 || len(seq) > 100 {
			t.Fatalf("length %d outside [15, 100]", len(seq))
		}
	}
}

func TestGenerateValidResidues(t *testing.T) {
	g := New(7)
	for i := 0; i < 50; i++ {
		seq, err := g.Generate(context.Background())
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		for j := 0; j < len(seq); j++ {
			if !strings.ContainsRune(aminoAcids, rune(seq[j])) {
				t.Fatalf("sequence %q contains invalid residue %c", seq, seq[j])
			}
		}
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	a, err := New(99).Generate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(99).Generate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("same seed produced different sequences: %q vs %q", a, b)
	}
}

func TestGenerateVariesAcrossDraws(t *testing.T) {
	g := New(1)
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		seq, err := g.Generate(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		seen[seq] = true
	}
	if len(seen) < 19 {
		t.Errorf("only %d distinct sequences in 20 draws", len(seen))
	}
}

func TestGenerateCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(1).Generate(ctx); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestGenerateCompositionRoughlyNatural(t *testing.T) {
	g := New(5, WithLengthRange(80, 80))
	var total, leucine, tryptophan int
	for i := 0; i < 500; i++ {
		seq, err := g.Generate(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		total += len(seq)
		leucine += strings.Count(seq, "L")
		tryptophan += strings.Count(seq, "W")
	}
	leuFrac := float64(leucine) / float64(total)
	trpFrac := float64(tryptophan) / float64(total)
	// Leucine is the most common residue (~9.7%), tryptophan the rarest (~1.1%).
	if leuFrac < 0.06 || leuFrac > 0.14 {
		t.Errorf("leucine fraction %v far from natural 0.097", leuFrac)
	}
	if trpFrac > 0.04 {
		t.Errorf("tryptophan fraction %v far above natural 0.011", trpFrac)
	}
	if leuFrac <= trpFrac {
		t.Errorf("leucine (%v) should outnumber tryptophan (%v)", leuFrac, trpFrac)
	}
}
