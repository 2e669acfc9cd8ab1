package store

import (
	"time"

	"github.com/fotlabs/discovery-engine/internal/score"
	"github.com/fotlabs/discovery-engine/internal/validate"
)

// Record is one accepted discovery. All fields round-trip through both
// backends unchanged.
type Record struct {
	ID              string                   `json:"id,omitempty"`
	Sequence        string                   `json:"sequence"`
	ValidationScore float64                  `json:"validation_score"`
	Assessment      string                   `json:"assessment"`
	VQbitScore      float64                  `json:"vqbit_score"`
	EnergyKcalMol   float64                  `json:"energy_kcal_mol"`
	VirtueScores    score.VirtueScores       `json:"virtue_scores"`
	Genetics        validate.GeneticsVirtues `json:"genetics_virtues"`
	Quantum         score.Quantum            `json:"quantum_analysis"`
	States          []score.ResidueState     `json:"vqbit_states,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
}
