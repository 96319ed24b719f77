package compose

import (
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/token"
)

// Direction constrains which way a token is allowed to attach to its head.
type Direction int

const (
	// Backward permits attachment to a preceding head (the token is
	// pulled left).
	Backward Direction = iota
	// Forward permits attachment to a following head (the token is
	// pulled right).
	Forward
	// Both defers to the head index the adapter assigned.
	Both
)

// RuleTable encodes language-specific attachment heuristics. A token merges
// into its head's chunk only when its part of speech or dependency label
// has an entry whose direction matches the head's position. Tokens with no
// matching entry always stand alone: over-segmentation is preferred to an
// incorrect merge.
type RuleTable struct {
	pos   map[token.POS]Direction
	label map[token.Label]Direction
}

// NewRuleTable builds a rule table from explicit entries. Either map may
// be nil.
func NewRuleTable(pos map[token.POS]Direction, label map[token.Label]Direction) *RuleTable {
	rt := &RuleTable{
		pos:   make(map[token.POS]Direction, len(pos)),
		label: make(map[token.Label]Direction, len(label)),
	}
	for k, v := range pos {
		rt.pos[k] = v
	}
	for k, v := range label {
		rt.label[k] = v
	}
	return rt
}

// DefaultRules returns the attachment table for Japanese and the other
// head-final CJK languages the backends support.
//
// Particles and case markers glue onto the content word they follow, as do
// auxiliary verbs and inflectional suffixes. Punctuation follows the head
// the adapter assigned, which points left except for opening brackets and
// quotes. Numeric relations merge in either direction so that a numeral
// and its counter form one chunk.
func DefaultRules() *RuleTable {
	return NewRuleTable(
		map[token.POS]Direction{
			token.Particle:       Backward,
			token.Auxiliary:      Backward,
			token.Punctuation:    Both,
			token.NumberModifier: Backward,
		},
		map[token.Label]Direction{
			token.LabelCase:   Backward,
			token.LabelAux:    Backward,
			token.LabelPunct:  Both,
			token.LabelNum:    Both,
			token.LabelSuffix: Backward,
			token.LabelPrefix: Forward,
		},
	)
}

// Binds reports whether t may merge into an adjacent head lying in the
// given direction (forward means the head follows t). A part-of-speech
// entry takes precedence over a label entry.
func (rt *RuleTable) Binds(t token.Token, forward bool) bool {
	if dir, ok := rt.pos[t.POS]; ok {
		return allows(dir, forward)
	}
	if dir, ok := rt.label[t.Label]; ok {
		return allows(dir, forward)
	}
	return false
}

func allows(dir Direction, forward bool) bool {
	switch dir {
	case Both:
		return true
	case Forward:
		return forward
	default:
		return !forward
	}
}
