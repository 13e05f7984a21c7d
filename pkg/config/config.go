// Package config loads experiment and game-instance configuration. The
// core only ever reads from an instance; it never writes back.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Experiment groups the instances of one game played under the same
// parameters.
type Experiment struct {
	Name      string     `yaml:"name"`
	Game      string     `yaml:"game"`
	Instances []Instance `yaml:"instances"`
}

// Instance is the per-episode configuration: a prompt plus whatever domain
// parameters the game needs (grid layout, difficulty, target values).
type Instance struct {
	ID     int            `yaml:"id"`
	Prompt string         `yaml:"prompt"`
	Params map[string]any `yaml:"params"`
}

// DecodeParams unmarshals the instance's domain parameters into a
// game-specific struct.
func (i Instance) DecodeParams(out any) error {
	raw, err := yaml.Marshal(i.Params)
	if err != nil {
		return fmt.Errorf("decode params: %w", err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode params: %w", err)
	}
	return nil
}

// Load reads and validates an experiment file.
func Load(path string) (*Experiment, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load experiment: %w", err)
	}
	return Parse(raw)
}

// Parse validates raw yaml against the experiment schema and unmarshals it.
func Parse(raw []byte) (*Experiment, error) {
	if err := validateExperiment(raw); err != nil {
		return nil, fmt.Errorf("experiment config: %w", err)
	}
	var exp Experiment
	if err := yaml.Unmarshal(raw, &exp); err != nil {
		return nil, fmt.Errorf("experiment config: %w", err)
	}
	return &exp, nil
}

// Save writes an experiment file, used by the instance generators.
func Save(path string, exp *Experiment) error {
	raw, err := yaml.Marshal(exp)
	if err != nil {
		return fmt.Errorf("save experiment: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save experiment: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("save experiment: %w", err)
	}
	return nil
}
