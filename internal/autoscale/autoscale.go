// Package autoscale computes batch size adjustments from memory pressure.
//
// The policy is pure hysteresis: shrink above the high watermark, grow below
// the low watermark when enough memory is available, hold in between. A
// decision never falls outside [MinPerCycle, MaxPerCycle] and a computed
// target equal to the current size collapses to Hold so stable load produces
// no churn in logs or metrics.
package autoscale

import (
	"fmt"
	"math"

	"github.com/fotlabs/discovery-engine/internal/sysres"
)

// Action describes the direction of a scaling decision.
type Action string

const (
	ActionGrow   Action = "grow"
	ActionShrink Action = "shrink"
	ActionHold   Action = "hold"
)

// Decision is the outcome of one policy evaluation.
type Decision struct {
	Action Action
	Target int
	Reason string
}

// PolicyConfig holds the thresholds and factors for the scaling policy.
type PolicyConfig struct {
	MinPerCycle    int
	MaxPerCycle    int
	HighWater      float64 // used fraction at or above which the batch shrinks
	LowWater       float64 // used fraction below which the batch may grow
	AvailableFloor uint64  // minimum available bytes required to grow
	ShrinkFactor   float64
	GrowFactor     float64
}

// Policy evaluates memory profiles into batch size decisions.
type Policy struct {
	cfg PolicyConfig
}

// NewPolicy creates a policy with the given config.
func NewPolicy(cfg PolicyConfig) *Policy {
	return &Policy{cfg: cfg}
}

// Decide evaluates one memory profile against the current batch size.
// Never blocks, never fails.
func (p *Policy) Decide(profile sysres.Profile, current int) Decision {
	current = p.clamp(current)

	if profile.UsedFraction > p.cfg.HighWater {
		target := int(math.Floor(float64(current) * p.cfg.ShrinkFactor))
		target = p.clamp(target)
		if target == current {
			return Decision{Action: ActionHold, Target: current}
		}
		recordAdjustment("down")
		return Decision{
			Action: ActionShrink,
			Target: target,
			Reason: fmt.Sprintf("memory used %.1f%% above %.1f%% watermark", profile.UsedFraction*100, p.cfg.HighWater*100),
		}
	}

	if profile.UsedFraction < p.cfg.LowWater && profile.AvailableBytes >= p.cfg.AvailableFloor {
		target := int(math.Ceil(float64(current) * p.cfg.GrowFactor))
		target = p.clamp(target)
		if target == current {
			return Decision{Action: ActionHold, Target: current}
		}
		recordAdjustment("up")
		return Decision{
			Action: ActionGrow,
			Target: target,
			Reason: fmt.Sprintf("memory used %.1f%% below %.1f%% watermark with headroom", profile.UsedFraction*100, p.cfg.LowWater*100),
		}
	}

	return Decision{Action: ActionHold, Target: current}
}

func (p *Policy) clamp(v int) int {
	if v < p.cfg.MinPerCycle {
		return p.cfg.MinPerCycle
	}
	if v > p.cfg.MaxPerCycle {
		return p.cfg.MaxPerCycle
	}
	return v
}
