package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/abr-sim/sim"
	"github.com/inference-sim/abr-sim/sim/export"
	"github.com/inference-sim/abr-sim/sim/trace"
)

// PolicyCompare runs every policy back-to-back on the same bandwidth trajectory.
const PolicyCompare = "compare"

// parquetBatchSize is the number of event rows buffered per Parquet flush.
const parquetBatchSize = 256

// RunOptions is the resolved configuration of one CLI invocation.
type RunOptions struct {
	Bandwidth     sim.BandwidthConfig
	Stream        sim.StreamConfig
	Policies      []string
	Seed          int64
	TraceLevel    trace.TraceLevel
	Live          bool   // print the live event table
	EventsParquet string // optional Parquet event log path
	MetricsOut    string // optional Prometheus textfile path
}

// StreamResult is the outcome of one policy run.
type StreamResult struct {
	Report *sim.Report
	Trace  *trace.TraceSummary // nil when tracing is off
}

// PoliciesFor expands a --policy value into policy names.
func PoliciesFor(name string) ([]string, error) {
	if name == PolicyCompare {
		return []string{sim.PolicyAlwaysBestFit, sim.PolicyBufferBased}, nil
	}
	if !sim.IsValidBitratePolicy(name) {
		return nil, fmt.Errorf("unknown policy %q; valid policies: %v or %q", name, sim.ValidBitratePolicyNames(), PolicyCompare)
	}
	return []string{name}, nil
}

// Validate rejects options before any run starts.
func (o RunOptions) Validate() error {
	if err := o.Bandwidth.Validate(); err != nil {
		return fmt.Errorf("invalid bandwidth config: %w", err)
	}
	if err := o.Stream.Validate(); err != nil {
		return fmt.Errorf("invalid stream config: %w", err)
	}
	if len(o.Policies) == 0 {
		return fmt.Errorf("no policy selected")
	}
	for _, p := range o.Policies {
		if !sim.IsValidBitratePolicy(p) {
			return fmt.Errorf("unknown policy %q", p)
		}
	}
	if !trace.IsValidTraceLevel(string(o.TraceLevel)) {
		return fmt.Errorf("unknown trace level %q", o.TraceLevel)
	}
	return nil
}

// RunStreams runs each selected policy in order. Between runs the bandwidth
// model is reset and reseeded from the same key, so every policy sees the
// same trajectory. Live output goes to out.
func RunStreams(opts RunOptions, out io.Writer) ([]StreamResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	key := sim.NewSimulationKey(opts.Seed)
	bw := opts.Bandwidth
	network := sim.NewBandwidthModel(bw.MinKbps, bw.MaxKbps, bw.FluctuationKbps,
		sim.NewPartitionedRNG(key).ForSubsystem(sim.SubsystemBandwidth))

	var exporter *export.Exporter
	if opts.MetricsOut != "" {
		exporter = export.NewExporter()
	}
	var events *export.ParquetEventWriter
	if opts.EventsParquet != "" {
		w, err := export.NewParquetEventWriter(opts.EventsParquet, parquetBatchSize)
		if err != nil {
			return nil, err
		}
		events = w
	}

	results := make([]StreamResult, 0, len(opts.Policies))
	for i, name := range opts.Policies {
		if i > 0 {
			network.Reset(bw.MinKbps, bw.MaxKbps, bw.FluctuationKbps)
			network.Reseed(sim.NewPartitionedRNG(key).ForSubsystem(sim.SubsystemBandwidth))
		}
		policy := sim.NewBitratePolicy(name)

		sinks := sim.MultiSink{}
		if opts.Live {
			table := NewTableSink(out)
			fmt.Fprintf(out, "\n--- TEST %d: %s ---\n\n", i+1, policy.Name())
			table.PrintHeader(policy.Name(), opts.Stream)
			sinks = append(sinks, table)
		}
		if logrus.IsLevelEnabled(logrus.DebugLevel) {
			sinks = append(sinks, sim.LogSink{Level: logrus.DebugLevel})
		}
		if exporter != nil {
			sinks = append(sinks, exporter.ForPolicy(policy.Name()))
		}
		if events != nil {
			events.SetRun(fmt.Sprintf("seed-%d/%s", opts.Seed, name), policy.Name())
			sinks = append(sinks, events)
		}

		engine, err := sim.NewEngine(opts.Stream, network, policy, sinks)
		if err != nil {
			closeEvents(events)
			return nil, err
		}
		var dt *trace.DecisionTrace
		if opts.TraceLevel == trace.TraceLevelDecisions {
			dt = trace.NewDecisionTrace(trace.TraceConfig{Level: opts.TraceLevel, Policy: policy.Name()})
			engine.SetTrace(dt)
		}

		engine.Run()

		result := StreamResult{Report: sim.Summarize(policy.Name(), engine.Stats)}
		if dt != nil {
			result.Trace = trace.Summarize(dt)
		}
		if exporter != nil {
			exporter.ObserveReport(result.Report)
		}
		results = append(results, result)
	}

	if events != nil {
		if err := events.Close(); err != nil {
			return nil, fmt.Errorf("writing event log: %w", err)
		}
		logrus.Infof("Wrote event log to %s", events.FilePath())
	}
	if exporter != nil {
		if err := exporter.WriteTextfile(opts.MetricsOut); err != nil {
			return nil, err
		}
		logrus.Infof("Wrote metrics to %s", opts.MetricsOut)
	}
	return results, nil
}

func closeEvents(w *export.ParquetEventWriter) {
	if w == nil {
		return
	}
	if err := w.Close(); err != nil {
		logrus.Warnf("closing event log: %v", err)
	}
}

// PrintTraceSummary writes the decision trace summary.
func PrintTraceSummary(w io.Writer, policy string, s *trace.TraceSummary) {
	fmt.Fprintf(w, "=== Decision Trace - %s ===\n", policy)
	fmt.Fprintf(w, "Selections: %d (admitted %d, deferred %d)\n", s.TotalSelections, s.AdmittedCount, s.DeferredCount)
	fmt.Fprintf(w, "Bitrate Switches: %d (up %d, down %d)\n", s.Switches, s.UpSwitches, s.DownSwitches)
	for _, rung := range s.Rungs() {
		fmt.Fprintf(w, "  %5d kbps (%s): %d chunks\n", rung, sim.QualityTier(rung), s.RungDistribution[rung])
	}
}
