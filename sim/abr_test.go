package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlwaysBestFit_HighestRungWithinBandwidth(t *testing.T) {
	p := &AlwaysBestFit{}
	tests := []struct {
		name      string
		bandwidth int
		want      int
	}{
		{"plenty", 5000, 2160},
		{"exactly top rung", 2160, 2160},
		{"between rungs", 2000, 1080},
		{"exactly lowest rung", 480, 480},
		{"below every rung falls back to min", 400, 480},
		{"zero bandwidth falls back to min", 0, 480},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Buffer level must not matter
			for _, buf := range []int64{0, 5000, 40000} {
				assert.Equal(t, tt.want, p.SelectBitrate(buf, tt.bandwidth, MinBitrate, MaxBitrate))
			}
		})
	}
}

func TestAlwaysBestFit_RespectsMaxBitrate(t *testing.T) {
	p := &AlwaysBestFit{}
	assert.Equal(t, 1080, p.SelectBitrate(0, 10000, MinBitrate, 1080))
	assert.Equal(t, 999, p.SelectBitrate(0, 10000, 999, 400), "nothing fits under max: fallback is minBitrate")
}

func TestBufferBasedAdaptation_Regimes(t *testing.T) {
	p := &BufferBasedAdaptation{}
	tests := []struct {
		name      string
		buffer    int64
		bandwidth int
		want      int
	}{
		{"empty buffer ignores bandwidth", 0, 100000, 480},
		{"just under critical", 2999, 100000, 480},
		{"critical boundary", 3000, 100, 720},
		{"low", 9999, 100000, 720},
		{"low boundary", 10000, 100, 1080},
		{"normal", 19999, 100000, 1080},
		{"healthy with plenty of bandwidth", 20000, 5000, 2160},
		{"healthy bandwidth-bound", 25000, 1500, 1080},
		{"healthy nothing fits falls back to max", 25000, 300, 2160},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.SelectBitrate(tt.buffer, tt.bandwidth, MinBitrate, MaxBitrate))
		})
	}
}

func TestBufferBasedAdaptation_MonotonicInFixedBands(t *testing.T) {
	// Property: within the fixed-rung bands, more buffer never yields a lower rung
	p := &BufferBasedAdaptation{}
	prev := 0
	for buf := int64(0); buf < NormalBufferMs; buf += 100 {
		got := p.SelectBitrate(buf, 0, MinBitrate, MaxBitrate)
		assert.GreaterOrEqual(t, got, prev, "buffer %d", buf)
		prev = got
	}
}

func TestPolicies_ReturnLadderOrFallback(t *testing.T) {
	// Property: every result is a ladder rung or one of the explicit fallbacks
	allowed := map[int]bool{MinBitrate: true, MaxBitrate: true}
	for _, b := range BitrateLadder {
		allowed[b] = true
	}
	for _, p := range []BitratePolicy{&AlwaysBestFit{}, &BufferBasedAdaptation{}} {
		for buf := int64(0); buf <= 30000; buf += 500 {
			for bw := 0; bw <= 12000; bw += 150 {
				got := p.SelectBitrate(buf, bw, MinBitrate, MaxBitrate)
				assert.True(t, allowed[got], "%s returned %d for buffer=%d bandwidth=%d", p.Name(), got, buf, bw)
			}
		}
	}
}

func TestNewBitratePolicy_ByName(t *testing.T) {
	assert.IsType(t, &AlwaysBestFit{}, NewBitratePolicy(PolicyAlwaysBestFit))
	assert.IsType(t, &BufferBasedAdaptation{}, NewBitratePolicy(PolicyBufferBased))
	assert.Equal(t, "Always-Best-Fit", NewBitratePolicy(PolicyAlwaysBestFit).Name())
	assert.Equal(t, "Buffer-Based Adaptation", NewBitratePolicy(PolicyBufferBased).Name())
	assert.Panics(t, func() { NewBitratePolicy("throughput") })
}

func TestIsValidBitratePolicy(t *testing.T) {
	assert.True(t, IsValidBitratePolicy("always-best-fit"))
	assert.True(t, IsValidBitratePolicy("buffer-based"))
	assert.False(t, IsValidBitratePolicy(""))
	assert.False(t, IsValidBitratePolicy("compare"))
	assert.Equal(t, []string{"always-best-fit", "buffer-based"}, ValidBitratePolicyNames())
}
