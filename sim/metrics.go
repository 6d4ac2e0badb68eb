// Tracks run-wide streaming statistics and turns them into a quality report.

package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Statistics accumulates running totals for one run. It is owned by the
// Engine that created it.
type Statistics struct {
	History           []*VideoChunk // admitted chunks in download order
	RebufferCount     int
	RebufferTimeMs    int64
	TotalKB           int64 // data transferred
	TotalAdmittedMs   int64
	TotalPlayedMs     int64
	ChunksPlayed      int
	UnrequestedChunks int // chunks never requested before the horizon
}

// NewStatistics creates empty statistics.
func NewStatistics() *Statistics {
	return &Statistics{History: make([]*VideoChunk, 0)}
}

func (s *Statistics) recordDownload(c *VideoChunk) {
	s.History = append(s.History, c)
	s.TotalKB += int64(c.SizeKB)
	s.TotalAdmittedMs += c.DurationMs
}

func (s *Statistics) recordPlayback(c *VideoChunk) {
	s.ChunksPlayed++
	s.TotalPlayedMs += c.DurationMs
}

func (s *Statistics) recordRebuffer(penaltyMs int64) {
	s.RebufferCount++
	s.RebufferTimeMs += penaltyMs
}

// ChunkRow is one line of the per-chunk history table.
type ChunkRow struct {
	ChunkID        int    `json:"chunk_id"`
	BitrateKbps    int    `json:"bitrate_kbps"`
	SizeKB         int    `json:"size_kb"`
	DownloadTimeMs int64  `json:"download_time_ms"`
	Quality        string `json:"quality"`
}

// Report is the final statistics record of a run.
type Report struct {
	Policy            string     `json:"policy"`
	NoData            bool       `json:"no_data"`
	AvgBitrateKbps    float64    `json:"avg_bitrate_kbps"`
	MinBitrateKbps    int        `json:"min_bitrate_kbps"`
	MaxBitrateKbps    int        `json:"max_bitrate_kbps"`
	TotalDataMB       float64    `json:"total_data_mb"`
	RebufferCount     int        `json:"rebuffer_count"`
	RebufferTimeMs    int64      `json:"rebuffer_time_ms"`
	QualityScore      float64    `json:"quality_score"`
	ChunksDownloaded  int        `json:"chunks_downloaded"`
	ChunksPlayed      int        `json:"chunks_played"`
	TotalPlayedMs     int64      `json:"total_played_ms"`
	UnrequestedChunks int        `json:"unrequested_chunks"`
	Chunks            []ChunkRow `json:"chunks"`
}

// QualityScore is (meanBitrate / top rung) × 100 − 10 per rebuffer, floored at 0.
func QualityScore(meanBitrateKbps float64, rebufferCount int) float64 {
	score := meanBitrateKbps/float64(MaxBitrate)*100 - 10*float64(rebufferCount)
	return max(0, score)
}

// Summarize computes the report for a finished run. An empty history yields
// a NoData report that still carries the rebuffer totals.
func Summarize(policy string, s *Statistics) *Report {
	r := &Report{
		Policy:            policy,
		RebufferCount:     s.RebufferCount,
		RebufferTimeMs:    s.RebufferTimeMs,
		ChunksDownloaded:  len(s.History),
		ChunksPlayed:      s.ChunksPlayed,
		TotalPlayedMs:     s.TotalPlayedMs,
		UnrequestedChunks: s.UnrequestedChunks,
		Chunks:            make([]ChunkRow, 0, len(s.History)),
	}
	if len(s.History) == 0 {
		r.NoData = true
		return r
	}

	bitrates := make([]int, 0, len(s.History))
	r.MinBitrateKbps = s.History[0].BitrateKbps
	r.MaxBitrateKbps = s.History[0].BitrateKbps
	for _, c := range s.History {
		bitrates = append(bitrates, c.BitrateKbps)
		r.MinBitrateKbps = min(r.MinBitrateKbps, c.BitrateKbps)
		r.MaxBitrateKbps = max(r.MaxBitrateKbps, c.BitrateKbps)
		r.Chunks = append(r.Chunks, ChunkRow{
			ChunkID:        c.ID,
			BitrateKbps:    c.BitrateKbps,
			SizeKB:         c.SizeKB,
			DownloadTimeMs: c.DownloadTimeMs(),
			Quality:        QualityTier(c.BitrateKbps),
		})
	}
	r.AvgBitrateKbps = CalculateMean(bitrates)
	r.TotalDataMB = float64(s.TotalKB) / 1024.0
	r.QualityScore = QualityScore(r.AvgBitrateKbps, r.RebufferCount)
	return r
}

// Print writes the human-readable statistics block.
func (r *Report) Print(w io.Writer) {
	rule := strings.Repeat("=", 75)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "STREAMING STATISTICS - %s\n", r.Policy)
	fmt.Fprintln(w, rule)
	if r.NoData {
		fmt.Fprintln(w, "No streaming data available.")
		fmt.Fprintf(w, "Rebuffers Encountered: %d\n", r.RebufferCount)
		fmt.Fprintf(w, "Total Rebuffer Time: %d ms\n", r.RebufferTimeMs)
		return
	}
	fmt.Fprintf(w, "%-15s%-15s%-15s%-15s%-15s\n", "Chunk ID", "Bitrate(kbps)", "Size(KB)", "Download(ms)", "Quality")
	fmt.Fprintln(w, strings.Repeat("-", 75))
	for _, c := range r.Chunks {
		fmt.Fprintf(w, "%-15d%-15d%-15d%-15d%-15s\n", c.ChunkID, c.BitrateKbps, c.SizeKB, c.DownloadTimeMs, c.Quality)
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "SUMMARY METRICS:")
	fmt.Fprintf(w, "Average Bitrate: %.2f kbps\n", r.AvgBitrateKbps)
	fmt.Fprintf(w, "Min/Max Bitrate: %d / %d kbps\n", r.MinBitrateKbps, r.MaxBitrateKbps)
	fmt.Fprintf(w, "Total Data Transferred: %.2f MB\n", r.TotalDataMB)
	fmt.Fprintf(w, "Rebuffers Encountered: %d\n", r.RebufferCount)
	fmt.Fprintf(w, "Total Rebuffer Time: %d ms\n", r.RebufferTimeMs)
	fmt.Fprintf(w, "Chunks Played: %d (%d ms), Unrequested: %d\n", r.ChunksPlayed, r.TotalPlayedMs, r.UnrequestedChunks)
	fmt.Fprintf(w, "Video Quality Score: %.2f / 100\n", r.QualityScore)
	fmt.Fprintln(w, rule)
}

// WriteReportsJSON writes the reports of one invocation as a single indented
// JSON array, in run order.
func WriteReportsJSON(w io.Writer, reports []*Report) error {
	if reports == nil {
		reports = []*Report{}
	}
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling reports: %w", err)
	}
	if _, err := fmt.Fprintln(w, string(data)); err != nil {
		return fmt.Errorf("writing reports: %w", err)
	}
	return nil
}
