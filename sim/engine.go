// sim/engine.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/abr-sim/sim/trace"
)

const (
	// StepMs is the fixed clock advance per step.
	StepMs int64 = 100
	// PlaybackIntervalMs is the cadence at which one chunk is taken off the buffer.
	PlaybackIntervalMs = ChunkDurationMs
	// RebufferPenaltyMs is charged for every step spent stalled.
	RebufferPenaltyMs int64 = 500
)

// Engine is the streaming state machine for one run. It owns the clock, the
// playback buffer and the statistics; the bandwidth model and the policy are
// injected and outlive it.
//
// Each step runs, in order: bandwidth refresh, request/admit, playback,
// rebuffer detection, clock advance.
type Engine struct {
	Clock  int64
	Buffer *PlaybackBuffer
	Stats  *Statistics

	cfg     StreamConfig
	network *BandwidthModel
	policy  BitratePolicy
	sink    EventSink
	trace   *trace.DecisionTrace

	nextChunkID int
	// playingUntil is when the chunk currently on screen finishes.
	playingUntil int64
}

// NewEngine validates the configuration and the bandwidth bounds and returns
// an engine ready to Run. sink may be nil.
func NewEngine(cfg StreamConfig, network *BandwidthModel, policy BitratePolicy, sink EventSink) (*Engine, error) {
	if network == nil {
		return nil, fmt.Errorf("bandwidth model is required")
	}
	if policy == nil {
		return nil, fmt.Errorf("bitrate policy is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid stream config: %w", err)
	}
	st := network.State()
	if err := NewBandwidthConfig(st.MinKbps, st.MaxKbps, st.FluctuationKbps).Validate(); err != nil {
		return nil, fmt.Errorf("invalid bandwidth config: %w", err)
	}
	return &Engine{
		Buffer:      NewPlaybackBuffer(cfg.BufferCapacityMs),
		Stats:       NewStatistics(),
		cfg:         cfg,
		network:     network,
		policy:      policy,
		sink:        sink,
		nextChunkID: 1,
	}, nil
}

// SetTrace attaches a decision trace; nil detaches it.
func (e *Engine) SetTrace(dt *trace.DecisionTrace) {
	e.trace = dt
}

// Policy returns the injected policy.
func (e *Engine) Policy() BitratePolicy {
	return e.policy
}

// Run steps the engine until the clock reaches the configured duration.
// Chunks not requested by then are never produced; their count is recorded
// in Stats.UnrequestedChunks.
func (e *Engine) Run() {
	logrus.Infof("Starting stream: policy=%s capacity=%dms duration=%dms chunks=%d",
		e.policy.Name(), e.cfg.BufferCapacityMs, e.cfg.TotalDurationMs, e.cfg.ChunkCount)
	for e.Clock < e.cfg.TotalDurationMs {
		e.Step()
	}
	e.Stats.UnrequestedChunks = e.pendingChunks()
	logrus.Infof("[t=%07dms] Stream ended: %d downloaded, %d played, %d rebuffers, %d unrequested",
		e.Clock, len(e.Stats.History), e.Stats.ChunksPlayed, e.Stats.RebufferCount, e.Stats.UnrequestedChunks)
}

// Step executes one 100ms step.
func (e *Engine) Step() {
	bandwidth := e.network.Sample(e.Clock)
	e.requestChunk(bandwidth)
	e.playChunk(bandwidth)
	e.detectRebuffer(bandwidth)
	e.Clock += StepMs
}

// NextChunkID returns the id of the next chunk to request.
func (e *Engine) NextChunkID() int {
	return e.nextChunkID
}

func (e *Engine) pendingChunks() int {
	return max(0, e.cfg.ChunkCount-e.nextChunkID+1)
}

func (e *Engine) requestChunk(bandwidth int) {
	if e.pendingChunks() == 0 || !e.Buffer.CanAdmit(ChunkDurationMs) {
		return
	}
	occupancy := e.Buffer.OccupancyMs()
	bitrate := e.policy.SelectBitrate(occupancy, bandwidth, MinBitrate, MaxBitrate)
	chunk := newChunk(e.nextChunkID, bitrate, e.Clock, bandwidth)

	admitted := !e.cfg.StrictDeadline || chunk.ReceivedAtMs <= e.Clock+StepMs
	e.trace.RecordSelection(trace.SelectionRecord{
		ChunkID:       chunk.ID,
		Clock:         e.Clock,
		BufferLevelMs: occupancy,
		BandwidthKbps: bandwidth,
		BitrateKbps:   bitrate,
		Admitted:      admitted,
	})
	if !admitted {
		logrus.Debugf("[t=%07dms] chunk %d missed step deadline (download %dms)", e.Clock, chunk.ID, chunk.DownloadTimeMs())
		return
	}

	e.Buffer.Push(chunk)
	e.Stats.recordDownload(chunk)
	e.emit(StatusDownloaded, chunk, bandwidth)
	e.nextChunkID++
}

func (e *Engine) playChunk(bandwidth int) {
	if e.Clock%PlaybackIntervalMs != 0 {
		return
	}
	chunk := e.Buffer.Pop()
	if chunk == nil {
		return
	}
	chunk.MarkPlayed(e.Clock)
	e.playingUntil = e.Clock + chunk.DurationMs
	e.Stats.recordPlayback(chunk)
	e.emit(StatusPlaying, chunk, bandwidth)
}

// detectRebuffer records a stall when nothing is buffered, nothing is on
// screen, and chunks are still waiting to be requested.
func (e *Engine) detectRebuffer(bandwidth int) {
	if !e.Buffer.Empty() || e.pendingChunks() == 0 || e.Clock < e.playingUntil {
		return
	}
	e.Stats.recordRebuffer(RebufferPenaltyMs)
	e.emit(StatusRebuffering, nil, bandwidth)
}

func (e *Engine) emit(status StreamStatus, chunk *VideoChunk, bandwidth int) {
	ev := StreamEvent{
		TimeMs:        e.Clock,
		Status:        status,
		BufferLevelMs: e.Buffer.OccupancyMs(),
		BandwidthKbps: bandwidth,
	}
	if chunk != nil {
		ev.HasChunk = true
		ev.ChunkID = chunk.ID
		ev.BitrateKbps = chunk.BitrateKbps
		ev.SizeKB = chunk.SizeKB
	}
	if e.sink != nil {
		e.sink.Emit(ev)
	}
}
