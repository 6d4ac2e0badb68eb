package sim

import "github.com/sirupsen/logrus"

// StreamStatus identifies what happened at a step.
type StreamStatus string

const (
	StatusDownloaded  StreamStatus = "DOWNLOADED"
	StatusPlaying     StreamStatus = "PLAYING"
	StatusRebuffering StreamStatus = "REBUFFERING"
)

// StreamEvent is one structured record emitted by the Engine.
// Chunk fields are zero for REBUFFERING events (HasChunk is false).
type StreamEvent struct {
	TimeMs        int64
	Status        StreamStatus
	HasChunk      bool
	ChunkID       int
	BitrateKbps   int
	SizeKB        int
	BufferLevelMs int64
	BandwidthKbps int
}

// EventSink receives the Engine's events in chronological order.
type EventSink interface {
	Emit(ev StreamEvent)
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(ev StreamEvent)

// Emit calls f(ev).
func (f SinkFunc) Emit(ev StreamEvent) { f(ev) }

// EventLog collects events in memory.
type EventLog struct {
	Events []StreamEvent
}

// Emit appends ev.
func (l *EventLog) Emit(ev StreamEvent) {
	l.Events = append(l.Events, ev)
}

// Count returns how many events carry the given status.
func (l *EventLog) Count(status StreamStatus) int {
	n := 0
	for _, ev := range l.Events {
		if ev.Status == status {
			n++
		}
	}
	return n
}

// MultiSink fans one event out to several sinks; nil entries are skipped.
type MultiSink []EventSink

// Emit forwards ev to every sink.
func (m MultiSink) Emit(ev StreamEvent) {
	for _, s := range m {
		if s != nil {
			s.Emit(ev)
		}
	}
}

// LogSink forwards events to logrus at the given level.
type LogSink struct {
	Level logrus.Level
}

// Emit logs ev as a structured entry.
func (s LogSink) Emit(ev StreamEvent) {
	fields := logrus.Fields{
		"time_ms":        ev.TimeMs,
		"status":         ev.Status,
		"buffer_ms":      ev.BufferLevelMs,
		"bandwidth_kbps": ev.BandwidthKbps,
	}
	if ev.HasChunk {
		fields["chunk_id"] = ev.ChunkID
		fields["bitrate_kbps"] = ev.BitrateKbps
		fields["size_kb"] = ev.SizeKB
	}
	logrus.WithFields(fields).Log(s.Level, "stream event")
}
