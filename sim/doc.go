// Package sim provides the fixed-step simulation kernel for adaptive-bitrate
// (ABR) video streaming.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - chunk.go: VideoChunk and the bitrate ladder
//   - bandwidth.go: the bounded random-walk throughput model
//   - abr.go: the BitratePolicy capability and its two variants
//   - engine.go: the 100ms step loop (refresh → request/admit → play → rebuffer → advance)
//
// # Architecture
//
// The Engine owns the clock, the PlaybackBuffer and the statistics for one
// run. The BandwidthModel and the BitratePolicy are injected collaborators and
// outlive the run. Every download, playback and rebuffer is emitted as a
// StreamEvent to an EventSink; reporting lives outside the kernel:
//   - sim/trace/: ABR decision trace recording
//   - sim/export/: Prometheus and Parquet sinks
//
// After a run, Summarize turns the chunk history and the rebuffer totals into
// a Report.
package sim
