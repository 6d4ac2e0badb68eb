package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/abr-sim/sim"
)

func TestExporter_ObserveEvents(t *testing.T) {
	// GIVEN an exporter and a policy-labelled sink
	e := NewExporter()
	sink := e.ForPolicy("Always-Best-Fit")

	// WHEN a download, a playback and two rebuffers are emitted
	sink.Emit(sim.StreamEvent{TimeMs: 0, Status: sim.StatusDownloaded, HasChunk: true, ChunkID: 1,
		BitrateKbps: 1080, SizeKB: 270, BufferLevelMs: 2000, BandwidthKbps: 2500})
	sink.Emit(sim.StreamEvent{TimeMs: 0, Status: sim.StatusPlaying, HasChunk: true, ChunkID: 1,
		BitrateKbps: 1080, SizeKB: 270, BufferLevelMs: 0, BandwidthKbps: 2500})
	sink.Emit(sim.StreamEvent{TimeMs: 2000, Status: sim.StatusRebuffering, BandwidthKbps: 1800})
	sink.Emit(sim.StreamEvent{TimeMs: 2100, Status: sim.StatusRebuffering, BandwidthKbps: 1700})

	// THEN counters and last-value gauges reflect the stream
	assert.Equal(t, 1.0, testutil.ToFloat64(e.downloadCounter.WithLabelValues("Always-Best-Fit", "Full HD")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.playCounter.WithLabelValues("Always-Best-Fit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(e.rebufferCounter.WithLabelValues("Always-Best-Fit")))
	assert.Equal(t, 1700.0, testutil.ToFloat64(e.bandwidthGauge.WithLabelValues("Always-Best-Fit")))
	assert.Equal(t, 0.0, testutil.ToFloat64(e.bufferGauge.WithLabelValues("Always-Best-Fit")))
}

func TestExporter_WriteTextfile(t *testing.T) {
	e := NewExporter()
	e.ObserveReport(&sim.Report{Policy: "Buffer-Based Adaptation", AvgBitrateKbps: 1200, QualityScore: 55.5, RebufferCount: 1})

	assert.Equal(t, 55.5, testutil.ToFloat64(e.summaryGauge.WithLabelValues("Buffer-Based Adaptation", "quality_score")))

	path := filepath.Join(t.TempDir(), "abr.prom")
	require.NoError(t, e.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `abr_run_summary{metric="avg_bitrate_kbps",policy="Buffer-Based Adaptation"} 1200`)
	assert.Contains(t, string(data), `abr_run_summary{metric="rebuffer_count",policy="Buffer-Based Adaptation"} 1`)
}

func TestExporter_RegistryGathersAllFamilies(t *testing.T) {
	// GIVEN one event of each status
	e := NewExporter()
	sink := e.ForPolicy("Always-Best-Fit")
	sink.Emit(sim.StreamEvent{Status: sim.StatusDownloaded, HasChunk: true, ChunkID: 1, BitrateKbps: 480, BandwidthKbps: 900})
	sink.Emit(sim.StreamEvent{Status: sim.StatusPlaying, HasChunk: true, ChunkID: 1, BitrateKbps: 480, BandwidthKbps: 900})
	sink.Emit(sim.StreamEvent{TimeMs: 100, Status: sim.StatusRebuffering, BandwidthKbps: 900})
	e.ObserveReport(&sim.Report{Policy: "Always-Best-Fit"})

	// WHEN the registry is gathered
	families, err := e.Registry().Gather()
	require.NoError(t, err)

	// THEN every metric family is exposed
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"abr_bandwidth_kbps",
		"abr_buffer_level_ms",
		"abr_chunk_bitrate_kbps",
		"abr_chunks_downloaded_total",
		"abr_chunks_played_total",
		"abr_rebuffers_total",
		"abr_run_summary",
	}, names)
}
