// Package insight derives action items, a priority label and the optional
// scoring fields from analysis text. All heuristics are driven by Rules.
package insight

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

type Rules struct {
	Sections          []string      `yaml:"sections"`
	Markers           []string      `yaml:"markers"`
	Verbs             []string      `yaml:"verbs"`
	MinItemLength     int           `yaml:"min_item_length"`
	MinVerbLineLength int           `yaml:"min_verb_line_length"`
	MaxItems          int           `yaml:"max_items"`
	Priority          PriorityRules `yaml:"priority"`
}

type PriorityRules struct {
	High []string `yaml:"high"`
	Low  []string `yaml:"low"`
}

// DefaultRules returns the built-in rule table.
func DefaultRules() Rules {
	r, err := ParseRules(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("embedded rules: %v", err))
	}
	return r
}

func ParseRules(data []byte) (Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("parse rules: %w", err)
	}
	if r.MaxItems <= 0 {
		return Rules{}, fmt.Errorf("parse rules: max_items must be positive")
	}
	return r, nil
}

// LoadRules reads a rule table from path, or returns the defaults when path
// is empty.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path is from application config
	if err != nil {
		return Rules{}, fmt.Errorf("read rules: %w", err)
	}
	return ParseRules(data)
}
