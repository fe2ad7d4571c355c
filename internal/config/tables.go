package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTablesYAML []byte

// Tables are the immutable lookup tables handed to the planner and the
// nutrition calculator.
type Tables struct {
	ActivityMultipliers       map[string]float64  `yaml:"activity_multipliers"`
	DefaultActivityMultiplier float64             `yaml:"default_activity_multiplier"`
	Denylists                 map[string][]string `yaml:"denylists"`
	MealAffinity              map[string][]string `yaml:"meal_affinity"`
	AlternativesCount         int                 `yaml:"alternatives_count"`
}

// DefaultTables returns the built-in tables.
func DefaultTables() (Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(defaultTablesYAML, &t); err != nil {
		return Tables{}, fmt.Errorf("failed to parse built-in tables: %w", err)
	}
	return t, t.Validate()
}

// LoadTables returns the built-in tables with the YAML file at path merged
// over them. An empty path returns the defaults.
func LoadTables(path string) (Tables, error) {
	t, err := DefaultTables()
	if err != nil {
		return Tables{}, err
	}
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("failed to read tables file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tables{}, fmt.Errorf("failed to parse tables file %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return Tables{}, fmt.Errorf("invalid tables file %s: %w", path, err)
	}
	return t, nil
}

// Validate rejects tables the planner cannot work with.
func (t Tables) Validate() error {
	if t.DefaultActivityMultiplier <= 0 {
		return fmt.Errorf("default_activity_multiplier must be positive")
	}
	for level, m := range t.ActivityMultipliers {
		if m <= 0 {
			return fmt.Errorf("activity multiplier for %q must be positive", level)
		}
	}
	if t.AlternativesCount < 0 {
		return fmt.Errorf("alternatives_count must not be negative")
	}
	return nil
}
