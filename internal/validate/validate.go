// Package validate gates scored sequences on length and residue composition
// and derives the genetics virtue profile for accepted candidates.
package validate

import (
	"fmt"
	"math"
	"strings"

	"github.com/fotlabs/discovery-engine/internal/score"
)

const (
	// Length gate for candidate sequences, inclusive.
	MinLength = 15
	MaxLength = 100

	hydrophobicResidues = "ALFWMIV"
	chargedResidues     = "DEHKR"
	polarResidues       = "NQSTCY"
)

// GeneticsVirtues is the typed genetics payload of an accepted candidate.
type GeneticsVirtues struct {
	Fidelity   float64 `json:"fidelity"`
	Robustness float64 `json:"robustness"`
	Efficiency float64 `json:"efficiency"`
	Resilience float64 `json:"resilience"`
	Parsimony  float64 `json:"parsimony"`
}

// Assessment is the validation outcome for an accepted candidate.
type Assessment struct {
	Score    float64         `json:"validation_score"`
	Verdict  string          `json:"assessment"`
	Genetics GeneticsVirtues `json:"genetics_virtues"`
}

// Validator applies the quality gate.
type Validator struct {
	minScore float64
}

// New creates a validator accepting candidates at or above minScore.
func New(minScore float64) *Validator {
	return &Validator{minScore: minScore}
}

// Assess evaluates one scored sequence. The bool reports acceptance;
// rejected sequences return a zero Assessment.
func (v *Validator) Assess(seq string, r score.Result) (Assessment, bool) {
	if len(seq) < MinLength || len(seq) > MaxLength {
		return Assessment{}, false
	}

	s := CompositionScore(seq)
	if s < v.minScore {
		return Assessment{}, false
	}

	return Assessment{
		Score:    s,
		Verdict:  fmt.Sprintf("VALID: composition %.3f with quantum context", s),
		Genetics: geneticsVirtues(seq, r),
	}, true
}

// CompositionScore computes the residue composition quality score.
// Base 0.3 with additive bonuses for each fraction inside its natural band.
func CompositionScore(seq string) float64 {
	n := float64(len(seq))
	if n == 0 {
		return 0
	}
	var hydrophobic, charged, polar int
	for i := 0; i < len(seq); i++ {
		c := rune(seq[i])
		switch {
		case strings.ContainsRune(hydrophobicResidues, c):
			hydrophobic++
		case strings.ContainsRune(chargedResidues, c):
			charged++
		case strings.ContainsRune(polarResidues, c):
			polar++
		}
	}

	hf := float64(hydrophobic) / n
	cf := float64(charged) / n
	pf := float64(polar) / n

	s := 0.3
	if hf >= 0.05 && hf <= 0.9 {
		s += 0.25
	}
	if cf >= 0.02 && cf <= 0.6 {
		s += 0.25
	}
	if pf >= 0.02 && pf <= 0.6 {
		s += 0.2
	}
	return s
}

// geneticsVirtues maps the quantum profile of a candidate onto the five
// genetics virtues. Each virtue is clamped to [0, 1].
func geneticsVirtues(seq string, r score.Result) GeneticsVirtues {
	q := r.Quantum
	vs := r.VirtueScores

	// Folding stress and chaperone availability follow coherence;
	// translation capacity follows entanglement entropy.
	stress := 1.0 - q.Coherence
	chaperone := q.Coherence
	capacity := math.Min(q.EntanglementEntropy, 1.0)
	degradation := q.SuperpositionFidelity

	fidelity := vs.Justice * q.SuperpositionFidelity
	robustness := vs.Temperance * (1.0 - stress*0.3)
	efficiency := math.Min(vs.Prudence*(2.0-capacity)*0.7+chaperone*0.3, 1.0)
	resilience := vs.Honesty*0.6 + degradation*0.4

	// Longer sequences carry more regulatory elements.
	regulators := float64(len(seq) / 20)
	parsimony := 1.0 / (1.0 + regulators/5.0)

	return GeneticsVirtues{
		Fidelity:   clamp01(fidelity),
		Robustness: clamp01(robustness),
		Efficiency: clamp01(efficiency),
		Resilience: clamp01(resilience),
		Parsimony:  clamp01(parsimony),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
