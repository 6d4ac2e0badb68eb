// Package testutil provides shared test infrastructure for the streaming
// simulator: scripted random sources that make bandwidth trajectories exact.
package testutil

import "fmt"

// ScriptedRand returns a fixed sequence of Intn results, then repeats the
// last one. Each value must be in [0, n) for the n it is drawn with.
type ScriptedRand struct {
	Values []int
	Calls  []int // n passed to each Intn call
	next   int
}

// NewScriptedRand creates a ScriptedRand over values.
func NewScriptedRand(values ...int) *ScriptedRand {
	return &ScriptedRand{Values: values}
}

// Intn returns the next scripted value.
func (r *ScriptedRand) Intn(n int) int {
	r.Calls = append(r.Calls, n)
	if len(r.Values) == 0 {
		return 0
	}
	idx := min(r.next, len(r.Values)-1)
	r.next++
	v := r.Values[idx]
	if v < 0 || v >= n {
		panic(fmt.Sprintf("scripted value %d out of range [0, %d)", v, n))
	}
	return v
}

// ExtremeRand always draws the top or the bottom of the range, driving the
// walk by +fluctuation or -fluctuation every update.
type ExtremeRand struct {
	High bool
}

// Intn returns n-1 when High, else 0.
func (r ExtremeRand) Intn(n int) int {
	if r.High {
		return n - 1
	}
	return 0
}
