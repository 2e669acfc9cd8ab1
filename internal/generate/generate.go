// Package generate produces candidate amino-acid sequences with naturally
// weighted residue composition.
package generate

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Natural residue frequencies (UniProt averages, percent).
var residueWeights = []struct {
	aa     byte
	weight float64
}{
	{'A', 8.25}, {'R', 5.53}, {'N', 4.06}, {'D', 5.45}, {'C', 1.37},
	{'Q', 3.93}, {'E', 6.75}, {'G', 7.07}, {'H', 2.27}, {'I', 5.96},
	{'L', 9.66}, {'K', 5.84}, {'M', 2.42}, {'F', 3.86}, {'P', 4.70},
	{'S', 6.56}, {'T', 5.34}, {'W', 1.08}, {'Y', 2.92}, {'V', 6.87},
}

// Common structural motifs injected into a fraction of sequences.
var motifs = []string{
	"GXGXXG", // nucleotide binding loop
	"CXXC",   // zinc finger core
	"RGD",    // integrin binding
	"KDEL",   // ER retention
	"NPXY",   // internalization signal
}

const motifChance = 0.2

// Generator draws sequences from a private random source. Safe for
// concurrent use.
type Generator struct {
	mu        sync.Mutex
	rng       *rand.Rand
	minLength int
	maxLength int
	cum       []float64
	total     float64
}

// Option configures a Generator.
type Option func(*Generator)

// WithLengthRange sets the sequence length range, inclusive.
func WithLengthRange(min, max int) Option {
	return func(g *Generator) {
		g.minLength = min
		g.maxLength = max
	}
}

// New creates a generator. Seed 0 selects a time-based seed.
func New(seed int64, opts ...Option) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &Generator{
		rng:       rand.New(rand.NewSource(seed)),
		minLength: 20,
		maxLength: 80,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.cum = make([]float64, len(residueWeights))
	for i, rw := range residueWeights {
		g.total += rw.weight
		g.cum[i] = g.total
	}
	return g
}

// Generate draws one sequence.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	length := g.minLength + g.rng.Intn(g.maxLength-g.minLength+1)
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		b.WriteByte(g.pickResidue())
	}
	seq := []byte(b.String())

	// Occasionally embed a structural motif, X positions filled randomly.
	if g.rng.Float64() < motifChance {
		motif := motifs[g.rng.Intn(len(motifs))]
		if len(motif) < len(seq) {
			pos := g.rng.Intn(len(seq) - len(motif))
			for i := 0; i < len(motif); i++ {
				if motif[i] == 'X' {
					seq[pos+i] = g.pickResidue()
				} else {
					seq[pos+i] = motif[i]
				}
			}
		}
	}

	return string(seq), nil
}

func (g *Generator) pickResidue() byte {
	r := g.rng.Float64() * g.total
	for i, c := range g.cum {
		if r < c {
			return residueWeights[i].aa
		}
	}
	return residueWeights[len(residueWeights)-1].aa
}
