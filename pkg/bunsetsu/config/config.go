// Package config loads optional YAML overrides: the composer's attachment
// rule table and the pattern segmenter's lexicon. Compiled-in defaults
// apply when no file is given.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/bunsetsu/pkg/bunsetsu/compose"
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/token"
)

// Rules is the YAML shape of an attachment rule table. Keys are universal
// POS tags and dependency labels; values are "backward", "forward", or
// "both".
type Rules struct {
	POS    map[string]string `yaml:"pos"`
	Labels map[string]string `yaml:"labels"`
}

// LoadRules reads a rule table from a YAML file.
func LoadRules(path string) (*compose.RuleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return r.Table()
}

// Table converts the YAML shape into a rule table.
func (r *Rules) Table() (*compose.RuleTable, error) {
	pos := make(map[token.POS]compose.Direction, len(r.POS))
	for tag, dir := range r.POS {
		d, err := parseDirection(dir)
		if err != nil {
			return nil, fmt.Errorf("config: pos %q: %w", tag, err)
		}
		pos[token.POS(tag)] = d
	}
	labels := make(map[token.Label]compose.Direction, len(r.Labels))
	for tag, dir := range r.Labels {
		d, err := parseDirection(dir)
		if err != nil {
			return nil, fmt.Errorf("config: label %q: %w", tag, err)
		}
		labels[token.Label(tag)] = d
	}
	return compose.NewRuleTable(pos, labels), nil
}

func parseDirection(s string) (compose.Direction, error) {
	switch s {
	case "backward":
		return compose.Backward, nil
	case "forward":
		return compose.Forward, nil
	case "both":
		return compose.Both, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", s)
	}
}

// Lexicon is the YAML shape of the pattern segmenter's particle and
// auxiliary lists.
type Lexicon struct {
	Particles   []string `yaml:"particles"`
	Auxiliaries []string `yaml:"auxiliaries"`
}

// LoadLexicon reads a lexicon from a YAML file.
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, err
	}
	return &lex, nil
}
