// Package pipeline runs one discovery cycle: draw a batch of candidate
// sequences, score them in parallel, and filter through the validator.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fotlabs/discovery-engine/internal/logging"
	"github.com/fotlabs/discovery-engine/internal/score"
	"github.com/fotlabs/discovery-engine/internal/store"
	"github.com/fotlabs/discovery-engine/internal/validate"
)

// Producer draws candidate sequences.
type Producer interface {
	Generate(ctx context.Context) (string, error)
}

// Scorer scores a single sequence.
type Scorer interface {
	Score(ctx context.Context, seq string) (score.Result, error)
}

// Validator gates a scored sequence.
type Validator interface {
	Assess(seq string, r score.Result) (validate.Assessment, bool)
}

// Cycle is the outcome of one pipeline run.
type Cycle struct {
	Processed      int
	Records        []*store.Record
	ScoringTime    time.Duration
	ValidationTime time.Duration
}

// Pipeline wires a producer, scorer and validator into the cycle flow.
type Pipeline struct {
	producer    Producer
	scorer      Scorer
	validator   Validator
	concurrency int
}

// New creates a pipeline. Concurrency 0 or below selects GOMAXPROCS.
func New(p Producer, s Scorer, v Validator, concurrency int) *Pipeline {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &Pipeline{
		producer:    p,
		scorer:      s,
		validator:   v,
		concurrency: concurrency,
	}
}

// RunCycle draws n sequences, scores them and validates the results.
// A producer failure aborts the cycle. A scoring failure drops only that
// sequence and the cycle continues; result order always matches draw order.
func (p *Pipeline) RunCycle(ctx context.Context, n int) (Cycle, error) {
	seqs := make([]string, n)
	for i := 0; i < n; i++ {
		seq, err := p.producer.Generate(ctx)
		if err != nil {
			return Cycle{}, fmt.Errorf("draw sequence %d of %d: %w", i+1, n, err)
		}
		seqs[i] = seq
	}

	scoringStart := time.Now()
	results := make([]score.Result, len(seqs))
	faulted := make([]bool, len(seqs))
	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, seq := range seqs {
		i, seq := i, seq
		g.Go(func() error {
			r, err := p.scorer.Score(ctx, seq)
			if err != nil {
				recordScoringFault()
				logging.Debug("scoring fault, dropping sequence",
					logging.F("index", i, "error", err.Error()))
				faulted[i] = true
				return nil
			}
			results[i] = r
			return nil
		})
	}
	_ = g.Wait() // workers never return errors
	scoringTime := time.Since(scoringStart)

	validationStart := time.Now()
	var records []*store.Record
	for i, seq := range seqs {
		if faulted[i] {
			continue
		}
		a, ok := p.validator.Assess(seq, results[i])
		if !ok {
			continue
		}
		r := results[i]
		records = append(records, &store.Record{
			Sequence:        seq,
			ValidationScore: a.Score,
			Assessment:      a.Verdict,
			VQbitScore:      r.VQbitScore,
			EnergyKcalMol:   r.EnergyKcalMol,
			VirtueScores:    r.VirtueScores,
			Genetics:        a.Genetics,
			Quantum:         r.Quantum,
			States:          r.States,
			CreatedAt:       time.Now().UTC(),
		})
	}

	return Cycle{
		Processed:      len(seqs),
		Records:        records,
		ScoringTime:    scoringTime,
		ValidationTime: time.Since(validationStart),
	}, nil
}
