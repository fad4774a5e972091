// Package presets holds the static registry of named generation parameter
// bundles. The table is embedded at build time and immutable at runtime:
// pure lookup, no write operations, no persistence.
package presets

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var presetsYAML []byte

// Preset is a named bundle of generation parameters plus display metadata.
type Preset struct {
	Name           string   `yaml:"name" json:"name"`
	Prompt         string   `yaml:"prompt" json:"prompt"`
	NegativePrompt string   `yaml:"negative_prompt" json:"negative_prompt"`
	Steps          int      `yaml:"steps" json:"steps"`
	GuidanceScale  float64  `yaml:"guidance_scale" json:"guidance_scale"`
	Width          int      `yaml:"width" json:"width"`
	Height         int      `yaml:"height" json:"height"`
	Note           string   `yaml:"note" json:"note,omitempty"`
	Tags           []string `yaml:"tags" json:"tags,omitempty"`
}

var (
	registry []Preset
	byName   map[string]int
)

func init() {
	var err error
	registry, byName, err = parse(presetsYAML)
	if err != nil {
		// The table is a compile-time asset; failing to parse it is a
		// build defect, not a runtime condition.
		panic(fmt.Sprintf("presets: invalid embedded table: %v", err))
	}
}

func parse(data []byte) ([]Preset, map[string]int, error) {
	var table []Preset
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, nil, err
	}

	index := make(map[string]int, len(table))
	for i, p := range table {
		if p.Name == "" {
			return nil, nil, fmt.Errorf("preset %d has no name", i)
		}
		if _, dup := index[p.Name]; dup {
			return nil, nil, fmt.Errorf("duplicate preset name %q", p.Name)
		}
		index[p.Name] = i
	}
	return table, index, nil
}

// Get returns the preset registered under name. The returned value is a
// copy; callers cannot mutate the registry through it.
func Get(name string) (Preset, bool) {
	i, ok := byName[name]
	if !ok {
		return Preset{}, false
	}
	p := registry[i]
	p.Tags = append([]string(nil), p.Tags...)
	return p, true
}

// Names lists preset names in table order (stable insertion order, not
// sorted), matching the order the UI presents them.
func Names() []string {
	names := make([]string, len(registry))
	for i, p := range registry {
		names[i] = p.Name
	}
	return names
}

// All returns a copy of every preset in table order.
func All() []Preset {
	out := make([]Preset, len(registry))
	for i, p := range registry {
		p.Tags = append([]string(nil), p.Tags...)
		out[i] = p
	}
	return out
}
