// Package trace provides decision-trace recording for ABR policy analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// SelectionRecord captures a single bitrate policy decision.
type SelectionRecord struct {
	ChunkID       int
	Clock         int64
	BufferLevelMs int64
	BandwidthKbps int
	BitrateKbps   int
	Admitted      bool // false when the download missed the step deadline
	Policy        string
}
