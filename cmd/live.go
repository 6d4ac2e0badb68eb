package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/inference-sim/abr-sim/sim"
)

// TableSink prints stream events as a fixed-width live table.
type TableSink struct {
	w io.Writer
}

// NewTableSink creates a TableSink writing to w.
func NewTableSink(w io.Writer) *TableSink {
	return &TableSink{w: w}
}

// PrintHeader writes the run banner and the column header.
func (t *TableSink) PrintHeader(policy string, cfg sim.StreamConfig) {
	rule := strings.Repeat("=", 96)
	fmt.Fprintln(t.w, rule)
	fmt.Fprintln(t.w, "VIDEO STREAMING SIMULATION")
	fmt.Fprintf(t.w, "Algorithm: %s\n", policy)
	fmt.Fprintf(t.w, "Buffer Capacity: %d ms | Video Duration: %d seconds\n", cfg.BufferCapacityMs, cfg.VideoDurationMs()/1000)
	fmt.Fprintln(t.w, rule)
	fmt.Fprintf(t.w, "%-10s%-12s%-12s%-12s%-15s%-15s%-20s\n",
		"Time(ms)", "ChunkID", "Bitrate(k)", "Size(KB)", "Buffer(ms)", "Status", "NetworkBW(kbps)")
	fmt.Fprintln(t.w, strings.Repeat("-", 96))
}

// Emit writes one table row.
func (t *TableSink) Emit(ev sim.StreamEvent) {
	id, bitrate, size, status := "-", "-", "-", string(ev.Status)
	if ev.HasChunk {
		id = fmt.Sprint(ev.ChunkID)
		bitrate = fmt.Sprint(ev.BitrateKbps)
		size = fmt.Sprint(ev.SizeKB)
	}
	if ev.Status == sim.StatusRebuffering {
		status += "!"
	}
	fmt.Fprintf(t.w, "%-10d%-12s%-12s%-12s%-15d%-15s%-20d\n",
		ev.TimeMs, id, bitrate, size, ev.BufferLevelMs, status, ev.BandwidthKbps)
}
