package trace

import "sort"

// TraceSummary aggregates statistics from a DecisionTrace.
type TraceSummary struct {
	TotalSelections  int
	AdmittedCount    int
	DeferredCount    int
	Switches         int         // bitrate changes between consecutive admitted chunks
	UpSwitches       int
	DownSwitches     int
	RungDistribution map[int]int // bitrate → admitted chunks
}

// Summarize computes aggregate statistics from a DecisionTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(dt *DecisionTrace) *TraceSummary {
	summary := &TraceSummary{
		RungDistribution: make(map[int]int),
	}
	if dt == nil {
		return summary
	}

	summary.TotalSelections = len(dt.Selections)
	prev := 0
	for _, s := range dt.Selections {
		if !s.Admitted {
			summary.DeferredCount++
			continue
		}
		summary.AdmittedCount++
		summary.RungDistribution[s.BitrateKbps]++
		if prev != 0 && s.BitrateKbps != prev {
			summary.Switches++
			if s.BitrateKbps > prev {
				summary.UpSwitches++
			} else {
				summary.DownSwitches++
			}
		}
		prev = s.BitrateKbps
	}

	return summary
}

// Rungs returns the bitrates present in the distribution, ascending.
func (s *TraceSummary) Rungs() []int {
	rungs := make([]int, 0, len(s.RungDistribution))
	for r := range s.RungDistribution {
		rungs = append(rungs, r)
	}
	sort.Ints(rungs)
	return rungs
}
