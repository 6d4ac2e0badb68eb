package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaybackBuffer_FIFOAndOccupancy(t *testing.T) {
	pb := NewPlaybackBuffer(6000)
	c1, c2 := newChunk(1, BitrateSD, 0, 1000), newChunk(2, BitrateHD, 100, 1000)

	assert.True(t, pb.Push(c1))
	assert.True(t, pb.Push(c2))
	assert.Equal(t, 2, pb.Len())
	assert.Equal(t, int64(4000), pb.OccupancyMs())
	assert.Equal(t, "[1 2]", pb.String())
	assert.Same(t, c1, pb.Peek())

	assert.Same(t, c1, pb.Pop())
	assert.Equal(t, int64(2000), pb.OccupancyMs())
	assert.Same(t, c2, pb.Pop())
	assert.True(t, pb.Empty())
	assert.Nil(t, pb.Pop())
	assert.Nil(t, pb.Peek())
}

func TestPlaybackBuffer_RejectsOverCapacity(t *testing.T) {
	// GIVEN a buffer that holds exactly two chunks
	pb := NewPlaybackBuffer(4000)
	assert.True(t, pb.Push(newChunk(1, BitrateSD, 0, 1000)))
	assert.True(t, pb.Push(newChunk(2, BitrateSD, 0, 1000)))

	// WHEN a third is offered
	assert.False(t, pb.CanAdmit(ChunkDurationMs))
	assert.False(t, pb.Push(newChunk(3, BitrateSD, 0, 1000)))

	// THEN it is refused and the buffer is unchanged
	assert.Equal(t, 2, pb.Len())
	assert.Equal(t, int64(4000), pb.OccupancyMs())
	assert.LessOrEqual(t, pb.OccupancyMs(), pb.CapacityMs())
}
