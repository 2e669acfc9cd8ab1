// Package engine runs the continuous discovery loop: observe memory, adjust
// the batch size, run one pipeline cycle, persist the records and fold the
// outcome into the aggregator, until drained by a signal or cycle budget.
package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fotlabs/discovery-engine/internal/autoscale"
	"github.com/fotlabs/discovery-engine/internal/logging"
	"github.com/fotlabs/discovery-engine/internal/pipeline"
	"github.com/fotlabs/discovery-engine/internal/stats"
	"github.com/fotlabs/discovery-engine/internal/store"
	"github.com/fotlabs/discovery-engine/internal/sysres"
)

// RunState is the lifecycle state of the engine.
type RunState int32

const (
	StateRunning RunState = iota
	StateDraining
	StateStopped
)

func (s RunState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("unknown(%d)", int32(s))
}

// Config holds the engine loop parameters.
type Config struct {
	InitialBatchSize int
	CyclePause       time.Duration // pause between successful cycles
	ErrorBackoff     time.Duration // fixed backoff after a failed cycle step
	MaxCycles        int           // 0 = run until drained
}

// snapshotFunc is swappable in tests.
type snapshotFunc func() (sysres.Profile, error)

// Engine owns the batch size and drives the cycle loop. One Run per Engine.
type Engine struct {
	cfg      Config
	policy   *autoscale.Policy
	pipe     *pipeline.Pipeline
	gateway  *store.Gateway
	agg      *stats.Aggregator
	snapshot snapshotFunc

	state atomic.Int32
	batch int
}

// New creates an engine in the Running state.
func New(policy *autoscale.Policy, pipe *pipeline.Pipeline, gateway *store.Gateway, agg *stats.Aggregator, cfg Config) *Engine {
	return &Engine{
		cfg:      cfg,
		policy:   policy,
		pipe:     pipe,
		gateway:  gateway,
		agg:      agg,
		snapshot: sysres.Snapshot,
		batch:    cfg.InitialBatchSize,
	}
}

// State returns the current run state.
func (e *Engine) State() RunState {
	return RunState(e.state.Load())
}

// Drain requests a graceful stop. Only the first call transitions
// Running to Draining; later calls report false and change nothing.
func (e *Engine) Drain() bool {
	return e.state.CompareAndSwap(int32(StateRunning), int32(StateDraining))
}

// Run drives cycles until the engine drains, then emits the final report
// and closes the backends. It transitions to Stopped exactly once.
func (e *Engine) Run(ctx context.Context) error {
	logging.Info("discovery loop started", logging.F(
		"batch_size", e.batch,
		"storage_mode", e.gateway.Mode(),
	))

	completed := 0
	for e.State() == StateRunning {
		if e.cfg.MaxCycles > 0 && completed >= e.cfg.MaxCycles {
			e.Drain()
			break
		}
		if err := e.runCycle(ctx); err != nil {
			logging.Error("cycle failed", logging.F("error", err.Error()))
			time.Sleep(e.cfg.ErrorBackoff)
			continue
		}
		completed++
		if e.cfg.CyclePause > 0 {
			time.Sleep(e.cfg.CyclePause)
		}
	}

	e.state.Store(int32(StateStopped))
	logging.Info("discovery loop draining complete", logging.F("state", e.State().String()))

	backendStats, err := e.gateway.Stats(ctx)
	if err != nil {
		logging.Debug("final backend stats unavailable", logging.F("error", err.Error()))
		backendStats = store.BackendStats{}
	}
	logging.Info(e.agg.Report(e.gateway.Mode(), backendStats))

	if err := e.gateway.Close(ctx); err != nil {
		return fmt.Errorf("close backends: %w", err)
	}
	return nil
}

// runCycle executes one observe-decide-process-persist-fold iteration.
// Record-level persistence failures are counted as lost, not returned.
func (e *Engine) runCycle(ctx context.Context) error {
	profile, err := e.snapshot()
	if err != nil {
		// No scaling decision this cycle.
		logging.Debug("resource snapshot failed, keeping batch size",
			logging.F("error", err.Error(), "batch_size", e.batch))
	} else {
		d := e.policy.Decide(profile, e.batch)
		if d.Action != autoscale.ActionHold {
			logging.Info("batch size adjusted", logging.F(
				"action", string(d.Action),
				"from", e.batch,
				"to", d.Target,
				"reason", d.Reason,
			))
			e.batch = d.Target
		}
		autoscale.RecordBatchSize(e.batch)
	}

	cycle, err := e.pipe.RunCycle(ctx, e.batch)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	outcome := stats.CycleOutcome{
		Processed:      cycle.Processed,
		Valid:          len(cycle.Records),
		ScoringTime:    cycle.ScoringTime,
		ValidationTime: cycle.ValidationTime,
	}
	for _, rec := range cycle.Records {
		_, backend, err := e.gateway.Store(ctx, rec)
		switch {
		case err != nil:
			outcome.Lost++
		case backend == store.BackendPrimary:
			outcome.StoredPrimary++
		default:
			outcome.StoredFallback++
		}
	}

	e.agg.Fold(outcome)
	return nil
}
