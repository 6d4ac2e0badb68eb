package cmd

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/abr-sim/sim"
)

//go:embed presets.yaml
var builtinPresetsYAML []byte

// Preset is a named network condition plus the run parameters that go with it.
type Preset struct {
	Description      string `yaml:"description"`
	MinKbps          int    `yaml:"min_kbps"`
	MaxKbps          int    `yaml:"max_kbps"`
	FluctuationKbps  int    `yaml:"fluctuation_kbps"`
	BufferCapacityMs int64  `yaml:"buffer_capacity_ms"`
	DurationMs       int64  `yaml:"duration_ms"`
	Chunks           int    `yaml:"chunks"`
}

// PresetFile represents the full presets YAML structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type PresetFile struct {
	Version string            `yaml:"version"`
	Presets map[string]Preset `yaml:"presets"`
}

// BandwidthConfig returns the preset's bandwidth bounds.
func (p Preset) BandwidthConfig() sim.BandwidthConfig {
	return sim.NewBandwidthConfig(p.MinKbps, p.MaxKbps, p.FluctuationKbps)
}

// StreamConfig returns the preset's engine parameters.
func (p Preset) StreamConfig() sim.StreamConfig {
	return sim.NewStreamConfig(p.BufferCapacityMs, p.DurationMs, p.Chunks)
}

// Validate checks the preset the same way the engine would.
func (p Preset) Validate() error {
	if err := p.BandwidthConfig().Validate(); err != nil {
		return err
	}
	return p.StreamConfig().Validate()
}

// parsePresets decodes a presets document with strict field checking.
func parsePresets(data []byte) (PresetFile, error) {
	var pf PresetFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&pf); err != nil {
		return PresetFile{}, fmt.Errorf("parsing presets YAML: %w", err)
	}
	for name, p := range pf.Presets {
		if err := p.Validate(); err != nil {
			return PresetFile{}, fmt.Errorf("preset %q: %w", name, err)
		}
	}
	return pf, nil
}

// LoadPresets returns the built-in presets, with entries from path (if
// non-empty) added or replacing built-ins of the same name.
func LoadPresets(path string) (map[string]Preset, error) {
	builtin, err := parsePresets(builtinPresetsYAML)
	if err != nil {
		return nil, fmt.Errorf("built-in presets: %w", err)
	}
	presets := builtin.Presets
	if path == "" {
		return presets, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading presets file: %w", err)
	}
	user, err := parsePresets(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for name, p := range user.Presets {
		presets[name] = p
	}
	return presets, nil
}

// PresetNames returns the preset names, sorted.
func PresetNames(presets map[string]Preset) []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
