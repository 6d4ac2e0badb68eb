// Defines the VideoChunk struct and the fixed bitrate ladder.

package sim

import "fmt"

const (
	// ChunkDurationMs is the playback duration of every chunk.
	ChunkDurationMs int64 = 2000

	// kbitsPerKB converts kbps × ms into kilobytes (×1/8 for bits→bytes, ×1/1000 for ms→s).
	kbitsPerKB = 8000
)

// Bitrate ladder rungs in kbps.
const (
	BitrateSD     = 480
	BitrateHD     = 720
	BitrateFullHD = 1080
	Bitrate4K     = 2160
)

// BitrateLadder lists the selectable bitrates in ascending order.
var BitrateLadder = []int{BitrateSD, BitrateHD, BitrateFullHD, Bitrate4K}

// MinBitrate and MaxBitrate are the fallbacks passed to every policy invocation.
var (
	MinBitrate = BitrateLadder[0]
	MaxBitrate = BitrateLadder[len(BitrateLadder)-1]
)

// VideoChunk is one fixed-duration unit of video downloaded at a single bitrate.
// All fields are fixed once the chunk is downloaded, except PlayedAtMs which
// is set exactly once by MarkPlayed.
type VideoChunk struct {
	ID            int   // 1-based position in the video
	BitrateKbps   int   // rung chosen by the policy
	SizeKB        int   // BitrateKbps × DurationMs / 8000
	DurationMs    int64 // always ChunkDurationMs
	RequestedAtMs int64
	ReceivedAtMs  int64
	PlayedAtMs    int64 // valid only when Played is true
	Played        bool
	Downloaded    bool
}

// ChunkSizeKB returns the size of a chunk of the given bitrate and duration.
func ChunkSizeKB(bitrateKbps int, durationMs int64) int {
	return int(int64(bitrateKbps) * durationMs / kbitsPerKB)
}

// DownloadTimeMs returns how long sizeKB takes to transfer at bandwidthKbps.
// kbit / kbps = seconds, hence the ×1000 to milliseconds.
func DownloadTimeMs(sizeKB int, bandwidthKbps int) int64 {
	if bandwidthKbps <= 0 {
		panic(fmt.Sprintf("DownloadTimeMs: bandwidth must be positive, got %d", bandwidthKbps))
	}
	return int64(sizeKB) * 8 * 1000 / int64(bandwidthKbps)
}

// newChunk builds a downloaded chunk requested at clock with the given bandwidth.
func newChunk(id int, bitrateKbps int, clock int64, bandwidthKbps int) *VideoChunk {
	size := ChunkSizeKB(bitrateKbps, ChunkDurationMs)
	return &VideoChunk{
		ID:            id,
		BitrateKbps:   bitrateKbps,
		SizeKB:        size,
		DurationMs:    ChunkDurationMs,
		RequestedAtMs: clock,
		ReceivedAtMs:  clock + DownloadTimeMs(size, bandwidthKbps),
		Downloaded:    true,
	}
}

// MarkPlayed records the playback time. Playing a chunk twice is a kernel bug.
func (c *VideoChunk) MarkPlayed(clock int64) {
	if c.Played {
		panic(fmt.Sprintf("chunk %d played twice (first at %d, again at %d)", c.ID, c.PlayedAtMs, clock))
	}
	c.PlayedAtMs = clock
	c.Played = true
}

// DownloadTimeMs returns receivedAt − requestedAt.
func (c *VideoChunk) DownloadTimeMs() int64 {
	return c.ReceivedAtMs - c.RequestedAtMs
}

// QualityTier labels a bitrate for display.
func QualityTier(bitrateKbps int) string {
	switch bitrateKbps {
	case BitrateSD:
		return "SD"
	case BitrateHD:
		return "HD"
	case BitrateFullHD:
		return "Full HD"
	default:
		return "4K"
	}
}

func (c *VideoChunk) String() string {
	return fmt.Sprintf("chunk %d @ %dkbps (%dKB)", c.ID, c.BitrateKbps, c.SizeKB)
}
