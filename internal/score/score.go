// Package score synthesizes per-residue vqbit quantum states for candidate
// sequences and aggregates them into a batch-comparable score.
package score

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"
)

// VirtueScores holds the aggregate virtue projection of a sequence.
type VirtueScores struct {
	Justice    float64 `json:"justice"`
	Honesty    float64 `json:"honesty"`
	Temperance float64 `json:"temperance"`
	Prudence   float64 `json:"prudence"`
}

// Quantum summarizes the quantum analysis of a scored sequence.
type Quantum struct {
	Coherence             float64 `json:"coherence"`
	EntanglementEntropy   float64 `json:"entanglement_entropy"`
	SuperpositionFidelity float64 `json:"superposition_fidelity"`
	PhaseCorrelation      float64 `json:"phase_correlation"`
}

// VirtueProjection is a single virtue component of a residue state.
type VirtueProjection struct {
	Strength float64 `json:"strength"`
	Phase    float64 `json:"phase"`
}

// ResidueProjections holds the virtue projections of one residue.
type ResidueProjections struct {
	Justice    VirtueProjection `json:"justice"`
	Honesty    VirtueProjection `json:"honesty"`
	Temperance VirtueProjection `json:"temperance"`
	Prudence   VirtueProjection `json:"prudence"`
}

// ResidueState is the vqbit state of a single residue.
type ResidueState struct {
	Index                int                `json:"residue_index"`
	AminoAcid            string             `json:"amino_acid"`
	Phi                  float64            `json:"phi"`
	Psi                  float64            `json:"psi"`
	AmplitudeReal        float64            `json:"amplitude_real"`
	AmplitudeImag        float64            `json:"amplitude_imag"`
	Entanglement         float64            `json:"entanglement"`
	Coherence            float64            `json:"coherence"`
	Collapsed            bool               `json:"collapsed"`
	Phase                float64            `json:"phase"`
	Projections          ResidueProjections `json:"virtue_projections"`
	EntanglementWithPrev float64            `json:"entanglement_with_prev"`
}

// Result is the aggregate scoring outcome for one sequence.
type Result struct {
	VQbitScore    float64        `json:"vqbit_score"`
	EnergyKcalMol float64        `json:"energy_kcal_mol"`
	VirtueScores  VirtueScores   `json:"virtue_scores"`
	Quantum       Quantum        `json:"quantum_analysis"`
	States        []ResidueState `json:"vqbit_states,omitempty"`
}

// DefaultResult is the documented fallback used when an individual result is
// missing for a batch index.
func DefaultResult() Result {
	return Result{
		VQbitScore:    0.5,
		EnergyKcalMol: -300.0,
	}
}

// Ramachandran base angles by residue. Unknown residues default to -60/-45.
var phiBase = map[byte]float64{
	'G': -60, 'P': -60, 'A': -60, 'V': -120,
	'L': -120, 'I': -120, 'M': -60, 'F': -120,
	'W': -120, 'Y': -120, 'S': -60, 'T': -60,
	'C': -60, 'N': -60, 'Q': -60, 'H': -60,
	'K': -120, 'R': -120, 'D': -60, 'E': -60,
}

var psiBase = map[byte]float64{
	'G': 180, 'P': 120, 'A': -45, 'V': 120,
	'L': 120, 'I': 120, 'M': -45, 'F': 120,
	'W': 120, 'Y': 120, 'S': -45, 'T': -45,
	'C': -45, 'N': -45, 'Q': -45, 'H': -45,
	'K': 120, 'R': 120, 'D': -45, 'E': -45,
}

// VQbitScorer synthesizes vqbit states from a private random source.
// Safe for concurrent use.
type VQbitScorer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewVQbitScorer creates a scorer. Seed 0 selects a time-based seed.
func NewVQbitScorer(seed int64) *VQbitScorer {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &VQbitScorer{rng: rand.New(rand.NewSource(seed))}
}

// Score synthesizes per-residue states for seq and aggregates them.
func (s *VQbitScorer) Score(ctx context.Context, seq string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if len(seq) == 0 {
		return Result{}, fmt.Errorf("empty sequence")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	states := make([]ResidueState, len(seq))
	var sumEntanglement, sumCoherence, sumPhase float64
	collapsed := 0
	var sumJustice, sumHonesty, sumTemperance, sumPrudence float64

	for i := 0; i < len(seq); i++ {
		st := s.residueState(i, seq[i])
		states[i] = st

		sumEntanglement += st.Entanglement
		sumCoherence += st.Coherence
		sumPhase += st.Phase
		if st.Collapsed {
			collapsed++
		}
		sumJustice += st.Projections.Justice.Strength
		sumHonesty += st.Projections.Honesty.Strength
		sumTemperance += st.Projections.Temperance.Strength
		sumPrudence += st.Projections.Prudence.Strength
	}

	n := float64(len(seq))
	avgEntanglement := sumEntanglement / n
	avgCoherence := sumCoherence / n

	// Energy modifier scales entanglement deviation into +-25 kcal/mol.
	energy := -300.0 + (avgEntanglement-0.5)*50 + s.uniform(-50, 50)

	return Result{
		VQbitScore:    (avgEntanglement + avgCoherence) / 2.0,
		EnergyKcalMol: energy,
		VirtueScores: VirtueScores{
			Justice:    sumJustice/n*s.uniform(0.5, 1.5) - 0.25,
			Honesty:    sumHonesty/n*s.uniform(0.5, 1.5) - 0.25,
			Temperance: sumTemperance/n*s.uniform(0.5, 1.5) - 0.2,
			Prudence:   sumPrudence/n*s.uniform(0.5, 1.5) - 0.2,
		},
		Quantum: Quantum{
			Coherence:             avgCoherence,
			EntanglementEntropy:   -avgEntanglement * math.Log(avgEntanglement+1e-10),
			SuperpositionFidelity: (n - float64(collapsed)) / n,
			PhaseCorrelation:      sumPhase / n,
		},
		States: states,
	}, nil
}

func (s *VQbitScorer) residueState(i int, aa byte) ResidueState {
	phase := s.uniform(0, 2*math.Pi)
	ampReal := math.Cos(phase) * s.uniform(0.5, 1.0)
	ampImag := math.Sin(phase) * s.uniform(0.5, 1.0)
	magnitude := math.Sqrt(ampReal*ampReal + ampImag*ampImag)
	ampReal /= magnitude
	ampImag /= magnitude

	phi, ok := phiBase[aa]
	if !ok {
		phi = -60
	}
	psi, ok := psiBase[aa]
	if !ok {
		psi = -45
	}

	entanglementWithPrev := 0.0
	if i > 0 {
		entanglementWithPrev = s.uniform(0.4, 0.8)
	}

	return ResidueState{
		Index:         i,
		AminoAcid:     string(aa),
		Phi:           phi + s.uniform(-30, 30),
		Psi:           psi + s.uniform(-30, 30),
		AmplitudeReal: ampReal,
		AmplitudeImag: ampImag,
		Entanglement:  s.uniform(0.3, 0.9),
		Coherence:     s.uniform(0.7, 0.95),
		Collapsed:     s.rng.Float64() < 0.15,
		Phase:         phase,
		Projections: ResidueProjections{
			Justice:    VirtueProjection{Strength: s.uniform(0.1, 0.5), Phase: s.uniform(0, 2*math.Pi)},
			Honesty:    VirtueProjection{Strength: s.uniform(0.1, 0.5), Phase: s.uniform(0, 2*math.Pi)},
			Temperance: VirtueProjection{Strength: s.uniform(0.1, 0.4), Phase: s.uniform(0, 2*math.Pi)},
			Prudence:   VirtueProjection{Strength: s.uniform(0.1, 0.4), Phase: s.uniform(0, 2*math.Pi)},
		},
		EntanglementWithPrev: entanglementWithPrev,
	}
}

func (s *VQbitScorer) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}
