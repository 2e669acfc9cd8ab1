package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/fotlabs/discovery-engine/internal/score"
)

func TestNeo4jCloseNeverConnected(t *testing.T) {
	var s *Neo4jStore
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close on nil store: %v", err)
	}
}

func TestStoreParamsFlattensNestedStructures(t *testing.T) {
	rec := testRecord("MKTAYIAKQRQISFVKSHF")
	params, err := storeParams(rec)
	if err != nil {
		t.Fatalf("storeParams: %v", err)
	}

	if params["sequence"] != rec.Sequence {
		t.Errorf("sequence = %v", params["sequence"])
	}
	if params["validation_score"] != rec.ValidationScore {
		t.Errorf("validation_score = %v", params["validation_score"])
	}
	if id, _ := params["id"].(string); id == "" {
		t.Error("id not assigned")
	}

	// Nested structures are stored as JSON strings and must parse back.
	var virtues score.VirtueScores
	if err := json.Unmarshal([]byte(params["virtue_scores"].(string)), &virtues); err != nil {
		t.Fatalf("virtue_scores not valid JSON: %v", err)
	}
	if virtues != rec.VirtueScores {
		t.Errorf("virtue_scores = %+v, want %+v", virtues, rec.VirtueScores)
	}
	var quantum score.Quantum
	if err := json.Unmarshal([]byte(params["quantum_analysis"].(string)), &quantum); err != nil {
		t.Fatalf("quantum_analysis not valid JSON: %v", err)
	}
	if quantum != rec.Quantum {
		t.Errorf("quantum_analysis = %+v, want %+v", quantum, rec.Quantum)
	}
	var states []score.ResidueState
	if err := json.Unmarshal([]byte(params["vqbit_states"].(string)), &states); err != nil {
		t.Fatalf("vqbit_states not valid JSON: %v", err)
	}
	if len(states) != len(rec.States) {
		t.Errorf("got %d states, want %d", len(states), len(rec.States))
	}
}

func TestStoreParamsDistinctIDs(t *testing.T) {
	rec := testRecord("MKTAYIAKQRQISFVKSHF")
	a, err := storeParams(rec)
	if err != nil {
		t.Fatal(err)
	}
	b, err := storeParams(rec)
	if err != nil {
		t.Fatal(err)
	}
	if a["id"] == b["id"] {
		t.Error("consecutive params share an id")
	}
}
