package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkSizeKB_BitsToBytes(t *testing.T) {
	tests := []struct {
		bitrate int
		want    int
	}{
		{BitrateSD, 120},
		{BitrateHD, 180},
		{BitrateFullHD, 270},
		{Bitrate4K, 540},
	}
	for _, tt := range tests {
		// size = bitrate × duration / 8000
		assert.Equal(t, tt.want, ChunkSizeKB(tt.bitrate, ChunkDurationMs), "bitrate %d", tt.bitrate)
		assert.Equal(t, tt.bitrate*int(ChunkDurationMs)/8000, ChunkSizeKB(tt.bitrate, ChunkDurationMs))
	}
}

func TestDownloadTimeMs_KbitsOverKbps(t *testing.T) {
	// 540KB = 4320 kbit; at 5000 kbps that is 0.864s
	assert.Equal(t, int64(864), DownloadTimeMs(540, 5000))
	// 120KB = 960 kbit; at 400 kbps that is 2.4s
	assert.Equal(t, int64(2400), DownloadTimeMs(120, 400))
	assert.Panics(t, func() { DownloadTimeMs(120, 0) })
}

func TestNewChunk_FieldsDerivedFromBitrate(t *testing.T) {
	c := newChunk(3, Bitrate4K, 1200, 5000)

	assert.Equal(t, 3, c.ID)
	assert.Equal(t, 540, c.SizeKB)
	assert.Equal(t, ChunkDurationMs, c.DurationMs)
	assert.Equal(t, int64(1200), c.RequestedAtMs)
	assert.Equal(t, int64(1200+864), c.ReceivedAtMs)
	assert.Equal(t, int64(864), c.DownloadTimeMs())
	assert.True(t, c.Downloaded)
	assert.False(t, c.Played)
}

func TestVideoChunk_MarkPlayed_OnlyOnce(t *testing.T) {
	c := newChunk(1, BitrateSD, 0, 1000)

	c.MarkPlayed(2000)
	assert.True(t, c.Played)
	assert.Equal(t, int64(2000), c.PlayedAtMs)

	assert.Panics(t, func() { c.MarkPlayed(4000) })
	assert.Equal(t, int64(2000), c.PlayedAtMs, "first play time must survive")
}

func TestQualityTier_Labels(t *testing.T) {
	assert.Equal(t, "SD", QualityTier(480))
	assert.Equal(t, "HD", QualityTier(720))
	assert.Equal(t, "Full HD", QualityTier(1080))
	assert.Equal(t, "4K", QualityTier(2160))
}
