package sim

import "fmt"

// BandwidthConfig groups the random-walk bounds, all in kbps.
type BandwidthConfig struct {
	MinKbps         int // must be > 0
	MaxKbps         int // must be >= MinKbps
	FluctuationKbps int // must be >= 0; 0 pins the bandwidth at MinKbps
}

// NewBandwidthConfig creates a BandwidthConfig.
func NewBandwidthConfig(minKbps, maxKbps, fluctuationKbps int) BandwidthConfig {
	return BandwidthConfig{MinKbps: minKbps, MaxKbps: maxKbps, FluctuationKbps: fluctuationKbps}
}

// Validate rejects bounds the random walk cannot honor.
func (c BandwidthConfig) Validate() error {
	if c.MinKbps <= 0 {
		return fmt.Errorf("min bandwidth must be positive, got %d kbps", c.MinKbps)
	}
	if c.MaxKbps < c.MinKbps {
		return fmt.Errorf("max bandwidth %d kbps is below min bandwidth %d kbps", c.MaxKbps, c.MinKbps)
	}
	if c.FluctuationKbps < 0 {
		return fmt.Errorf("fluctuation must be non-negative, got %d kbps", c.FluctuationKbps)
	}
	return nil
}

// StreamConfig groups the per-run engine parameters.
type StreamConfig struct {
	BufferCapacityMs int64 // must hold at least one chunk
	TotalDurationMs  int64 // simulation horizon, must be > 0
	ChunkCount       int   // chunks in the video, must be >= 0
	// StrictDeadline admits a chunk only if its download finishes within the
	// step it was requested in; otherwise the request is retried next step.
	// When false every requested chunk is admitted in the same step.
	StrictDeadline bool
}

// NewStreamConfig creates a StreamConfig with StrictDeadline off.
func NewStreamConfig(bufferCapacityMs, totalDurationMs int64, chunkCount int) StreamConfig {
	return StreamConfig{
		BufferCapacityMs: bufferCapacityMs,
		TotalDurationMs:  totalDurationMs,
		ChunkCount:       chunkCount,
	}
}

// Validate rejects configurations the engine cannot run.
func (c StreamConfig) Validate() error {
	if c.BufferCapacityMs < ChunkDurationMs {
		return fmt.Errorf("buffer capacity must hold at least one %dms chunk, got %dms", ChunkDurationMs, c.BufferCapacityMs)
	}
	if c.TotalDurationMs <= 0 {
		return fmt.Errorf("simulation duration must be positive, got %dms", c.TotalDurationMs)
	}
	if c.ChunkCount < 0 {
		return fmt.Errorf("chunk count must be non-negative, got %d", c.ChunkCount)
	}
	return nil
}

// VideoDurationMs is the playback length of the whole video.
func (c StreamConfig) VideoDurationMs() int64 {
	return int64(c.ChunkCount) * ChunkDurationMs
}
