package sim

import (
	"fmt"
	"sort"
)

// BitratePolicy chooses the bitrate of the next chunk.
// Implementations are stateless: the choice depends only on the arguments,
// so an Engine can swap policies without other changes.
type BitratePolicy interface {
	SelectBitrate(bufferLevelMs int64, bandwidthKbps, minBitrate, maxBitrate int) int
	Name() string
}

// Buffer thresholds for BufferBasedAdaptation, in ms of buffered playback.
const (
	CriticalBufferMs int64 = 3000
	LowBufferMs      int64 = 10000
	NormalBufferMs   int64 = 20000
)

// AlwaysBestFit picks the highest rung the bandwidth can carry. It ignores
// the buffer level and keeps no safety margin.
type AlwaysBestFit struct{}

func (p *AlwaysBestFit) SelectBitrate(_ int64, bandwidthKbps, minBitrate, maxBitrate int) int {
	if b, ok := highestFitting(bandwidthKbps, maxBitrate); ok {
		return b
	}
	return minBitrate
}

func (p *AlwaysBestFit) Name() string { return "Always-Best-Fit" }

// BufferBasedAdaptation selects by buffer occupancy first:
//
//	< 3s   → 480 regardless of bandwidth
//	< 10s  → 720
//	< 20s  → 1080
//	>= 20s → highest rung within bandwidth, else maxBitrate
type BufferBasedAdaptation struct{}

func (p *BufferBasedAdaptation) SelectBitrate(bufferLevelMs int64, bandwidthKbps, _, maxBitrate int) int {
	switch {
	case bufferLevelMs < CriticalBufferMs:
		return BitrateSD
	case bufferLevelMs < LowBufferMs:
		return BitrateHD
	case bufferLevelMs < NormalBufferMs:
		return BitrateFullHD
	}
	if b, ok := highestFitting(bandwidthKbps, maxBitrate); ok {
		return b
	}
	return maxBitrate
}

func (p *BufferBasedAdaptation) Name() string { return "Buffer-Based Adaptation" }

// highestFitting scans the ladder from the top for a rung ≤ both limits.
func highestFitting(bandwidthKbps, maxBitrate int) (int, bool) {
	for i := len(BitrateLadder) - 1; i >= 0; i-- {
		b := BitrateLadder[i]
		if b <= bandwidthKbps && b <= maxBitrate {
			return b, true
		}
	}
	return 0, false
}

// Policy names accepted by NewBitratePolicy.
const (
	PolicyAlwaysBestFit = "always-best-fit"
	PolicyBufferBased   = "buffer-based"
)

// validBitratePolicies is the set of recognized policy names.
var validBitratePolicies = map[string]bool{
	PolicyAlwaysBestFit: true,
	PolicyBufferBased:   true,
}

// IsValidBitratePolicy returns true if name is a recognized policy.
func IsValidBitratePolicy(name string) bool {
	return validBitratePolicies[name]
}

// ValidBitratePolicyNames returns the recognized policy names, sorted.
func ValidBitratePolicyNames() []string {
	names := make([]string, 0, len(validBitratePolicies))
	for n := range validBitratePolicies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewBitratePolicy creates a policy by name.
// Panics on unrecognized names; validate with IsValidBitratePolicy first.
func NewBitratePolicy(name string) BitratePolicy {
	switch name {
	case PolicyAlwaysBestFit:
		return &AlwaysBestFit{}
	case PolicyBufferBased:
		return &BufferBasedAdaptation{}
	default:
		panic(fmt.Sprintf("unknown bitrate policy %q; valid policies: %v", name, ValidBitratePolicyNames()))
	}
}
