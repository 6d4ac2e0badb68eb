// Models the available network throughput as a bounded random walk.

package sim

import "fmt"

// BandwidthUpdateIntervalMs is the cadence of bandwidth perturbations.
const BandwidthUpdateIntervalMs int64 = 1000

// BandwidthState holds the current throughput and its bounds, all in kbps.
// CurrentKbps is always within [MinKbps, MaxKbps].
type BandwidthState struct {
	CurrentKbps     int
	MinKbps         int
	MaxKbps         int
	FluctuationKbps int
}

// BandwidthModel produces the available throughput at a given simulation time.
// It is mutated in place by Sample and is meant to be owned by one run at a
// time; back-to-back runs must call Reset in between.
type BandwidthModel struct {
	state BandwidthState
	rng   RandSource
}

// NewBandwidthModel creates a model starting at minKbps.
func NewBandwidthModel(minKbps, maxKbps, fluctuationKbps int, rng RandSource) *BandwidthModel {
	if rng == nil {
		panic("NewBandwidthModel: rng must not be nil")
	}
	return &BandwidthModel{
		state: BandwidthState{
			CurrentKbps:     minKbps,
			MinKbps:         minKbps,
			MaxKbps:         maxKbps,
			FluctuationKbps: fluctuationKbps,
		},
		rng: rng,
	}
}

// Sample returns the throughput at currentTimeMs. On update ticks
// (currentTimeMs mod 1000 == 0) it first applies a delta drawn uniformly from
// [-fluctuation, +fluctuation] and clamps the result to [min, max].
func (b *BandwidthModel) Sample(currentTimeMs int64) int {
	if currentTimeMs%BandwidthUpdateIntervalMs != 0 {
		return b.state.CurrentKbps
	}
	f := b.state.FluctuationKbps
	delta := 0
	if f > 0 {
		delta = b.rng.Intn(2*f+1) - f
	}
	b.state.CurrentKbps = clamp(b.state.CurrentKbps+delta, b.state.MinKbps, b.state.MaxKbps)
	return b.state.CurrentKbps
}

// Current returns the throughput without advancing the walk.
func (b *BandwidthModel) Current() int {
	return b.state.CurrentKbps
}

// State returns a copy of the model state.
func (b *BandwidthModel) State() BandwidthState {
	return b.state
}

// Reset replaces the bounds and restarts the walk at minKbps.
func (b *BandwidthModel) Reset(minKbps, maxKbps, fluctuationKbps int) {
	b.state = BandwidthState{
		CurrentKbps:     minKbps,
		MinKbps:         minKbps,
		MaxKbps:         maxKbps,
		FluctuationKbps: fluctuationKbps,
	}
}

// Reseed swaps the randomness source, e.g. to replay the same trajectory
// for a second policy.
func (b *BandwidthModel) Reseed(rng RandSource) {
	if rng == nil {
		panic("Reseed: rng must not be nil")
	}
	b.rng = rng
}

func (s BandwidthState) String() string {
	return fmt.Sprintf("%d kbps in [%d, %d] ±%d", s.CurrentKbps, s.MinKbps, s.MaxKbps, s.FluctuationKbps)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
