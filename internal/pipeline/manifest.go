package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest carries optional per-deployment overrides for the fixed stage
// graph: instruction templates, role limits, and the model to use. The
// graph itself (stage set, dependencies, order) is not overridable.
type Manifest struct {
	// Model overrides the configured model for the whole pipeline.
	Model string `yaml:"model"`
	// Stages maps stage name to its overrides.
	Stages map[string]*StageOverride `yaml:"stages"`
}

// StageOverride adjusts one stage's prompt, limits, or model.
type StageOverride struct {
	// Instructions replaces the stage's task template. The {{.Query}} and
	// {{.FilePath}} placeholders are still substituted.
	Instructions string `yaml:"instructions"`
	// MaxIterations overrides the role's tool-loop budget when positive.
	MaxIterations int `yaml:"max_iterations"`
	// MaxRPM overrides the role's calls-per-minute cap when positive.
	MaxRPM int `yaml:"max_rpm"`
	// Model runs this stage against a different model than the pipeline
	// default.
	Model string `yaml:"model"`
}

// LoadManifest reads stage overrides from a YAML file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return &m, nil
}

// Validate rejects overrides that reference unknown stages or carry
// negative limits.
func (m *Manifest) Validate() error {
	for name, ov := range m.Stages {
		if _, ok := stages[name]; !ok {
			return fmt.Errorf("unknown stage %q", name)
		}
		if ov == nil {
			continue
		}
		if ov.MaxIterations < 0 {
			return fmt.Errorf("stage %s: max_iterations must not be negative", name)
		}
		if ov.MaxRPM < 0 {
			return fmt.Errorf("stage %s: max_rpm must not be negative", name)
		}
	}
	return nil
}

func (m *Manifest) overrideFor(stage string) *StageOverride {
	if m == nil {
		return nil
	}
	return m.Stages[stage]
}

func (m *Manifest) instructionFor(stage string) string {
	if ov := m.overrideFor(stage); ov != nil {
		return ov.Instructions
	}
	return ""
}
