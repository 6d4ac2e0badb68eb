package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/abr-sim/sim"
	"github.com/inference-sim/abr-sim/sim/trace"
)

func baseOptions(policies ...string) RunOptions {
	return RunOptions{
		Bandwidth:  sim.NewBandwidthConfig(500, 3000, 400),
		Stream:     sim.NewStreamConfig(30000, 20000, 10),
		Policies:   policies,
		Seed:       7,
		TraceLevel: trace.TraceLevelNone,
	}
}

func TestPoliciesFor(t *testing.T) {
	got, err := PoliciesFor(PolicyCompare)
	require.NoError(t, err)
	assert.Equal(t, []string{sim.PolicyAlwaysBestFit, sim.PolicyBufferBased}, got)

	got, err = PoliciesFor(sim.PolicyBufferBased)
	require.NoError(t, err)
	assert.Equal(t, []string{sim.PolicyBufferBased}, got)

	_, err = PoliciesFor("bola")
	assert.ErrorContains(t, err, "unknown policy")
}

func TestRunOptions_Validate(t *testing.T) {
	assert.NoError(t, baseOptions(sim.PolicyAlwaysBestFit).Validate())
	assert.Error(t, baseOptions().Validate(), "no policy")

	bad := baseOptions(sim.PolicyAlwaysBestFit)
	bad.Bandwidth.MaxKbps = 100
	assert.ErrorContains(t, bad.Validate(), "invalid bandwidth config")

	bad = baseOptions(sim.PolicyAlwaysBestFit)
	bad.TraceLevel = "verbose"
	assert.ErrorContains(t, bad.Validate(), "trace level")
}

func TestRunStreams_CompareReplaysSameBandwidth(t *testing.T) {
	// GIVEN the same seed run in compare mode and per policy
	var out bytes.Buffer
	compared, err := RunStreams(baseOptions(sim.PolicyAlwaysBestFit, sim.PolicyBufferBased), &out)
	require.NoError(t, err)
	require.Len(t, compared, 2)

	alone, err := RunStreams(baseOptions(sim.PolicyBufferBased), &out)
	require.NoError(t, err)

	// THEN the second compared policy sees exactly the trajectory it sees alone
	assert.Equal(t, alone[0].Report, compared[1].Report)
	assert.Equal(t, "Always-Best-Fit", compared[0].Report.Policy)
	assert.Equal(t, "Buffer-Based Adaptation", compared[1].Report.Policy)
	assert.Empty(t, out.String(), "live table is off")
}

func TestRunStreams_LiveTableAndTrace(t *testing.T) {
	opts := baseOptions(sim.PolicyAlwaysBestFit)
	opts.Live = true
	opts.TraceLevel = trace.TraceLevelDecisions

	var out bytes.Buffer
	results, err := RunStreams(opts, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "--- TEST 1: Always-Best-Fit ---")
	assert.Contains(t, out.String(), "DOWNLOADED")
	require.NotNil(t, results[0].Trace)
	assert.Equal(t, results[0].Report.ChunksDownloaded, results[0].Trace.AdmittedCount)

	var summary bytes.Buffer
	PrintTraceSummary(&summary, results[0].Report.Policy, results[0].Trace)
	assert.Contains(t, summary.String(), "=== Decision Trace - Always-Best-Fit ===")
}

func TestRunStreams_WritesExports(t *testing.T) {
	dir := t.TempDir()
	opts := baseOptions(sim.PolicyAlwaysBestFit, sim.PolicyBufferBased)
	opts.EventsParquet = filepath.Join(dir, "events.parquet")
	opts.MetricsOut = filepath.Join(dir, "abr.prom")

	_, err := RunStreams(opts, &bytes.Buffer{})
	require.NoError(t, err)

	info, err := os.Stat(opts.EventsParquet)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	metrics, err := os.ReadFile(opts.MetricsOut)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `policy="Buffer-Based Adaptation"`)
	assert.Contains(t, string(metrics), "abr_chunks_downloaded_total")
}

func TestTableSink_RebufferRow(t *testing.T) {
	var out bytes.Buffer
	NewTableSink(&out).Emit(sim.StreamEvent{TimeMs: 2300, Status: sim.StatusRebuffering, BandwidthKbps: 800})

	assert.Equal(t, "2300      -           -           -           0              REBUFFERING!   800                 \n", out.String())
}
