// Package export holds reporting sinks that sit outside the simulation kernel:
// a Prometheus exporter and a Parquet event writer.
package export

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/inference-sim/abr-sim/sim"
)

// Exporter collects stream metrics per policy into its own registry.
type Exporter struct {
	registry *prometheus.Registry

	bandwidthGauge   *prometheus.GaugeVec
	bufferGauge      *prometheus.GaugeVec
	bitrateHistogram *prometheus.HistogramVec
	downloadCounter  *prometheus.CounterVec
	playCounter      *prometheus.CounterVec
	rebufferCounter  *prometheus.CounterVec
	summaryGauge     *prometheus.GaugeVec
}

// NewExporter creates an Exporter with a fresh registry.
func NewExporter() *Exporter {
	ladder := make([]float64, 0, len(sim.BitrateLadder))
	for _, b := range sim.BitrateLadder {
		ladder = append(ladder, float64(b))
	}

	e := &Exporter{
		registry: prometheus.NewRegistry(),
		bandwidthGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "abr_bandwidth_kbps",
				Help: "Available bandwidth at the last event in kbps",
			},
			[]string{"policy"},
		),
		bufferGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "abr_buffer_level_ms",
				Help: "Buffered playback time at the last event in ms",
			},
			[]string{"policy"},
		),
		bitrateHistogram: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "abr_chunk_bitrate_kbps",
				Help:    "Bitrate of downloaded chunks in kbps",
				Buckets: ladder,
			},
			[]string{"policy"},
		),
		downloadCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "abr_chunks_downloaded_total",
				Help: "Total number of downloaded chunks",
			},
			[]string{"policy", "quality"},
		),
		playCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "abr_chunks_played_total",
				Help: "Total number of played chunks",
			},
			[]string{"policy"},
		),
		rebufferCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "abr_rebuffers_total",
				Help: "Total number of rebuffer steps",
			},
			[]string{"policy"},
		),
		summaryGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "abr_run_summary",
				Help: "Final run statistics by metric name",
			},
			[]string{"policy", "metric"},
		),
	}

	e.registry.MustRegister(
		e.bandwidthGauge,
		e.bufferGauge,
		e.bitrateHistogram,
		e.downloadCounter,
		e.playCounter,
		e.rebufferCounter,
		e.summaryGauge,
	)

	return e
}

// Registry returns the registry the metrics live in.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// ForPolicy returns an EventSink that labels observations with policy.
func (e *Exporter) ForPolicy(policy string) sim.EventSink {
	return &policySink{exporter: e, policy: policy}
}

type policySink struct {
	exporter *Exporter
	policy   string
}

func (s *policySink) Emit(ev sim.StreamEvent) {
	s.exporter.Observe(s.policy, ev)
}

// Observe records a single stream event.
func (e *Exporter) Observe(policy string, ev sim.StreamEvent) {
	e.bandwidthGauge.WithLabelValues(policy).Set(float64(ev.BandwidthKbps))
	e.bufferGauge.WithLabelValues(policy).Set(float64(ev.BufferLevelMs))

	switch ev.Status {
	case sim.StatusDownloaded:
		e.bitrateHistogram.WithLabelValues(policy).Observe(float64(ev.BitrateKbps))
		e.downloadCounter.WithLabelValues(policy, sim.QualityTier(ev.BitrateKbps)).Inc()
	case sim.StatusPlaying:
		e.playCounter.WithLabelValues(policy).Inc()
	case sim.StatusRebuffering:
		e.rebufferCounter.WithLabelValues(policy).Inc()
	}
}

// ObserveReport records the final statistics of a run.
func (e *Exporter) ObserveReport(r *sim.Report) {
	set := func(metric string, v float64) {
		e.summaryGauge.WithLabelValues(r.Policy, metric).Set(v)
	}
	set("avg_bitrate_kbps", r.AvgBitrateKbps)
	set("min_bitrate_kbps", float64(r.MinBitrateKbps))
	set("max_bitrate_kbps", float64(r.MaxBitrateKbps))
	set("total_data_mb", r.TotalDataMB)
	set("rebuffer_count", float64(r.RebufferCount))
	set("rebuffer_time_ms", float64(r.RebufferTimeMs))
	set("quality_score", r.QualityScore)
}

// WriteTextfile writes all metrics in the text exposition format to path.
func (e *Exporter) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, e.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
