package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/abr-sim/sim"
	"github.com/inference-sim/abr-sim/sim/trace"
)

var (
	// CLI flags for the network model
	preset         string // Named preset from the presets table
	presetsFile    string // Optional YAML file with extra presets
	minBandwidth   int    // Minimum bandwidth (kbps)
	maxBandwidth   int    // Maximum bandwidth (kbps)
	fluctuation    int    // Max bandwidth change per second (kbps)
	seed           int64  // Seed for bandwidth fluctuation
	bufferCapacity int64  // Buffer capacity (ms)
	duration       int64  // Simulation horizon (ms)
	chunks         int    // Number of 2s chunks in the video
	policyName     string // always-best-fit, buffer-based or compare
	strictDeadline bool   // Admit chunks only if they download within one step
	traceLevel     string // Decision trace level
	eventsParquet  string // Parquet event log path
	metricsOut     string // Prometheus textfile path
	live           bool   // Print the live event table
	jsonOutput     bool   // Print reports as JSON
	logLevel       string // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "abr-sim",
	Short: "Adaptive-bitrate video streaming simulator",
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the streaming simulation",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		opts, err := resolveRunOptions(cmd)
		if err != nil {
			return err
		}

		logrus.Infof("Starting simulation: bandwidth=%d-%dkbps ±%d, capacity=%dms, duration=%dms, chunks=%d, policies=%v",
			opts.Bandwidth.MinKbps, opts.Bandwidth.MaxKbps, opts.Bandwidth.FluctuationKbps,
			opts.Stream.BufferCapacityMs, opts.Stream.TotalDurationMs, opts.Stream.ChunkCount, opts.Policies)
		startTime := time.Now()

		out := cmd.OutOrStdout()
		// stdout carries only the JSON document; the live table moves to stderr
		liveOut := out
		if jsonOutput {
			liveOut = cmd.ErrOrStderr()
		}
		results, err := RunStreams(opts, liveOut)
		if err != nil {
			return err
		}
		if jsonOutput {
			reports := make([]*sim.Report, 0, len(results))
			for _, r := range results {
				reports = append(reports, r.Report)
			}
			if err := sim.WriteReportsJSON(out, reports); err != nil {
				return err
			}
		} else {
			for _, r := range results {
				fmt.Fprintln(out)
				r.Report.Print(out)
				if r.Trace != nil {
					PrintTraceSummary(out, r.Report.Policy, r.Trace)
				}
			}
		}

		logrus.Infof("Simulation complete in %v.", time.Since(startTime))
		return nil
	},
}

// presetsCmd lists the resolved preset table
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the network presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		presets, err := LoadPresets(presetsFile)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-18s%-24s%-12s%-12s%-10s%s\n", "Name", "Bandwidth(kbps)", "Buffer(ms)", "Run(ms)", "Chunks", "Description")
		for _, name := range PresetNames(presets) {
			p := presets[name]
			bw := fmt.Sprintf("%d-%d ±%d", p.MinKbps, p.MaxKbps, p.FluctuationKbps)
			fmt.Fprintf(out, "%-18s%-24s%-12d%-12d%-10d%s\n", name, bw, p.BufferCapacityMs, p.DurationMs, p.Chunks, p.Description)
		}
		return nil
	},
}

// resolveRunOptions starts from the preset (if any) and applies every
// explicitly set flag on top.
func resolveRunOptions(cmd *cobra.Command) (RunOptions, error) {
	p := Preset{
		MinKbps:          minBandwidth,
		MaxKbps:          maxBandwidth,
		FluctuationKbps:  fluctuation,
		BufferCapacityMs: bufferCapacity,
		DurationMs:       duration,
		Chunks:           chunks,
	}
	if preset != "" {
		presets, err := LoadPresets(presetsFile)
		if err != nil {
			return RunOptions{}, err
		}
		named, ok := presets[preset]
		if !ok {
			return RunOptions{}, fmt.Errorf("unknown preset %q; valid presets: %v", preset, PresetNames(presets))
		}
		logrus.Infof("Using preset %q: %s", preset, named.Description)
		p = overrideFromFlags(cmd, named)
	}

	policies, err := PoliciesFor(policyName)
	if err != nil {
		return RunOptions{}, err
	}
	stream := p.StreamConfig()
	stream.StrictDeadline = strictDeadline

	opts := RunOptions{
		Bandwidth:     p.BandwidthConfig(),
		Stream:        stream,
		Policies:      policies,
		Seed:          seed,
		TraceLevel:    trace.TraceLevel(traceLevel),
		Live:          live,
		EventsParquet: eventsParquet,
		MetricsOut:    metricsOut,
	}
	return opts, opts.Validate()
}

func overrideFromFlags(cmd *cobra.Command, p Preset) Preset {
	flags := cmd.Flags()
	if flags.Changed("min-bw") {
		p.MinKbps = minBandwidth
	}
	if flags.Changed("max-bw") {
		p.MaxKbps = maxBandwidth
	}
	if flags.Changed("fluctuation") {
		p.FluctuationKbps = fluctuation
	}
	if flags.Changed("buffer-capacity") {
		p.BufferCapacityMs = bufferCapacity
	}
	if flags.Changed("duration") {
		p.DurationMs = duration
	}
	if flags.Changed("chunks") {
		p.Chunks = chunks
	}
	return p
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&presetsFile, "presets-file", "", "YAML file with additional network presets")

	runCmd.Flags().StringVar(&preset, "preset", "", "Network preset name (list them with the presets command)")
	runCmd.Flags().IntVar(&minBandwidth, "min-bw", 500, "Minimum bandwidth (kbps)")
	runCmd.Flags().IntVar(&maxBandwidth, "max-bw", 5000, "Maximum bandwidth (kbps)")
	runCmd.Flags().IntVar(&fluctuation, "fluctuation", 300, "Max bandwidth change per second (kbps)")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for bandwidth fluctuation")

	runCmd.Flags().Int64Var(&bufferCapacity, "buffer-capacity", 30000, "Playback buffer capacity (ms)")
	runCmd.Flags().Int64Var(&duration, "duration", 60000, "Simulation duration (ms)")
	runCmd.Flags().IntVar(&chunks, "chunks", 30, "Number of 2s chunks in the video")
	runCmd.Flags().StringVar(&policyName, "policy", PolicyCompare, "ABR policy: always-best-fit, buffer-based or compare")
	runCmd.Flags().BoolVar(&strictDeadline, "strict-deadline", false, "Admit a chunk only if its download fits in one 100ms step; rebuffers can only occur in this mode")

	runCmd.Flags().StringVar(&traceLevel, "trace", string(trace.TraceLevelNone), "Decision trace level (none, decisions)")
	runCmd.Flags().StringVar(&eventsParquet, "events-parquet", "", "Write the event stream to this Parquet file")
	runCmd.Flags().StringVar(&metricsOut, "metrics-out", "", "Write Prometheus metrics to this textfile")
	runCmd.Flags().BoolVar(&live, "live", true, "Print the live event table")
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print reports as one JSON array on stdout (live table goes to stderr)")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(presetsCmd)
}
