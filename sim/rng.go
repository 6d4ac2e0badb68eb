package sim

import (
	"fmt"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two runs with the same SimulationKey and identical configuration
// MUST produce identical event streams.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemBandwidth is the RNG subsystem for bandwidth fluctuation.
	// Uses the master seed directly so --seed maps one-to-one to a trajectory.
	SubsystemBandwidth = "bandwidth"
)

// validSubsystems is the set of subsystems that draw randomness.
var validSubsystems = map[string]bool{
	SubsystemBandwidth: true,
}

// RandSource is the randomness the bandwidth model draws from.
// *rand.Rand satisfies it; tests substitute scripted sources.
type RandSource interface {
	Intn(n int) int
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic RNG instances per subsystem.
// The bandwidth walk is the only consumer of randomness and is seeded with
// the master seed directly, so --seed maps one-to-one to a trajectory.
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns the seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Panics on unrecognized names.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if !validSubsystems[name] {
		panic(fmt.Sprintf("unknown RNG subsystem %q", name))
	}
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(int64(p.key)))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}
