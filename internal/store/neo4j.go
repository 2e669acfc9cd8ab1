package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const storeCypher = `
MERGE (d:Discovery {sequence: $sequence})
ON CREATE SET
	d.id = $id,
	d.validation_score = $validation_score,
	d.assessment = $assessment,
	d.vqbit_score = $vqbit_score,
	d.energy_kcal_mol = $energy_kcal_mol,
	d.virtue_scores = $virtue_scores,
	d.genetics_virtues = $genetics_virtues,
	d.quantum_analysis = $quantum_analysis,
	d.vqbit_states = $vqbit_states,
	d.created_at = $created_at,
	d.occurrences = 1
ON MATCH SET
	d.last_seen_at = $created_at,
	d.occurrences = d.occurrences + 1
RETURN d.id AS id`

const statsCypher = `
MATCH (d:Discovery)
RETURN coalesce(sum(d.occurrences), 0) AS total, count(d) AS unique`

// Neo4jStore persists records as Discovery nodes, merged on sequence so a
// repeat observation bumps an occurrence counter instead of duplicating the
// node.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewNeo4jStore connects and verifies connectivity. A failed construction
// leaves no open driver behind.
func NewNeo4jStore(ctx context.Context, uri, username, password, database string) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}
	return &Neo4jStore{driver: driver, database: database}, nil
}

// Store merges rec into the graph and returns the node id.
func (s *Neo4jStore) Store(ctx context.Context, rec *Record) (string, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	params, err := storeParams(rec)
	if err != nil {
		return "", err
	}

	idVal, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, storeCypher, params)
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		id, _ := record.Get("id")
		return id, nil
	})
	if err != nil {
		return "", fmt.Errorf("store discovery: %w", err)
	}

	id, ok := idVal.(string)
	if !ok || id == "" {
		return "", fmt.Errorf("store discovery: backend returned no id")
	}
	return id, nil
}

func storeParams(rec *Record) (map[string]any, error) {
	// Nested structures are kept as JSON strings; Neo4j properties are flat.
	virtues, err := json.Marshal(rec.VirtueScores)
	if err != nil {
		return nil, fmt.Errorf("marshal virtue scores: %w", err)
	}
	genetics, err := json.Marshal(rec.Genetics)
	if err != nil {
		return nil, fmt.Errorf("marshal genetics virtues: %w", err)
	}
	quantum, err := json.Marshal(rec.Quantum)
	if err != nil {
		return nil, fmt.Errorf("marshal quantum analysis: %w", err)
	}
	states, err := json.Marshal(rec.States)
	if err != nil {
		return nil, fmt.Errorf("marshal vqbit states: %w", err)
	}

	return map[string]any{
		"id":               uuid.NewString(),
		"sequence":         rec.Sequence,
		"validation_score": rec.ValidationScore,
		"assessment":       rec.Assessment,
		"vqbit_score":      rec.VQbitScore,
		"energy_kcal_mol":  rec.EnergyKcalMol,
		"virtue_scores":    string(virtues),
		"genetics_virtues": string(genetics),
		"quantum_analysis": string(quantum),
		"vqbit_states":     string(states),
		"created_at":       rec.CreatedAt.Format("2006-01-02T15:04:05.000000000Z07:00"),
	}, nil
}

// Stats queries record and distinct sequence counts from the graph.
func (s *Neo4jStore) Stats(ctx context.Context) (BackendStats, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	statsVal, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, statsCypher, nil)
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		totalVal, _ := record.Get("total")
		uniqueVal, _ := record.Get("unique")
		total, _ := totalVal.(int64)
		unique, _ := uniqueVal.(int64)

		stats := BackendStats{TotalRecords: total, UniqueItems: unique}
		if total > 0 {
			stats.DuplicateRate = float64(total-unique) / float64(total)
		}
		return stats, nil
	})
	if err != nil {
		return BackendStats{}, fmt.Errorf("query stats: %w", err)
	}
	return statsVal.(BackendStats), nil
}

// Close shuts the driver down. Safe on a store that never connected.
func (s *Neo4jStore) Close(ctx context.Context) error {
	if s == nil || s.driver == nil {
		return nil
	}
	return s.driver.Close(ctx)
}
