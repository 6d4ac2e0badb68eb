// Implements the PlaybackBuffer, which holds downloaded chunks waiting to be played.

package sim

import (
	"fmt"
	"strings"
)

// PlaybackBuffer is a FIFO queue of downloaded, not-yet-played chunks.
// Occupancy is the summed playback duration of the queued chunks and never
// exceeds the capacity.
type PlaybackBuffer struct {
	queue       []*VideoChunk
	occupancyMs int64
	capacityMs  int64
}

// NewPlaybackBuffer creates an empty buffer holding at most capacityMs of video.
func NewPlaybackBuffer(capacityMs int64) *PlaybackBuffer {
	return &PlaybackBuffer{capacityMs: capacityMs}
}

// CanAdmit reports whether a chunk of durationMs fits without exceeding capacity.
func (pb *PlaybackBuffer) CanAdmit(durationMs int64) bool {
	return pb.occupancyMs+durationMs <= pb.capacityMs
}

// Push adds a chunk to the back of the buffer. Returns false, leaving the
// buffer untouched, when the chunk does not fit.
func (pb *PlaybackBuffer) Push(c *VideoChunk) bool {
	if !pb.CanAdmit(c.DurationMs) {
		return false
	}
	pb.queue = append(pb.queue, c)
	pb.occupancyMs += c.DurationMs
	return true
}

// Pop removes and returns the head chunk, or nil when empty.
func (pb *PlaybackBuffer) Pop() *VideoChunk {
	if len(pb.queue) == 0 {
		return nil
	}
	c := pb.queue[0]
	pb.queue[0] = nil
	pb.queue = pb.queue[1:]
	pb.occupancyMs -= c.DurationMs
	return c
}

// Peek returns the head chunk without removing it, or nil when empty.
func (pb *PlaybackBuffer) Peek() *VideoChunk {
	if len(pb.queue) == 0 {
		return nil
	}
	return pb.queue[0]
}

// Len returns the number of queued chunks.
func (pb *PlaybackBuffer) Len() int {
	return len(pb.queue)
}

// Empty reports whether no chunk is queued.
func (pb *PlaybackBuffer) Empty() bool {
	return len(pb.queue) == 0
}

// OccupancyMs returns the buffered playback time.
func (pb *PlaybackBuffer) OccupancyMs() int64 {
	return pb.occupancyMs
}

// CapacityMs returns the configured capacity.
func (pb *PlaybackBuffer) CapacityMs() int64 {
	return pb.capacityMs
}

func (pb *PlaybackBuffer) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, c := range pb.queue {
		sb.WriteString(fmt.Sprint(c.ID))
		if i < len(pb.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
