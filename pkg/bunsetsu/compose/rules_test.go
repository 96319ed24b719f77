package compose

import (
	"testing"

	"github.com/cognicore/bunsetsu/pkg/bunsetsu/token"
)

func TestDefaultRulesDirections(t *testing.T) {
	rules := DefaultRules()
	cases := []struct {
		name    string
		tok     token.Token
		forward bool
		want    bool
	}{
		{"particle backward", token.Token{POS: token.Particle, Label: token.LabelCase}, false, true},
		{"particle never forward", token.Token{POS: token.Particle, Label: token.LabelCase}, true, false},
		{"aux backward", token.Token{POS: token.Auxiliary, Label: token.LabelAux}, false, true},
		{"punct follows head backward", token.Token{POS: token.Punctuation, Label: token.LabelPunct}, false, true},
		{"punct follows head forward", token.Token{POS: token.Punctuation, Label: token.LabelPunct}, true, true},
		{"counter backward", token.Token{POS: token.NumberModifier, Label: token.LabelSuffix}, false, true},
		{"prefix label forward", token.Token{POS: token.Other, Label: token.LabelPrefix}, true, true},
		{"prefix label not backward", token.Token{POS: token.Other, Label: token.LabelPrefix}, false, false},
		{"numeric either way", token.Token{POS: token.Number, Label: token.LabelNum}, true, true},
		{"plain noun never", token.Token{POS: token.Noun, Label: token.LabelDep}, false, false},
		{"unknown relation never", token.Token{POS: token.Other, Label: token.LabelDep}, true, false},
	}
	for _, tc := range cases {
		if got := rules.Binds(tc.tok, tc.forward); got != tc.want {
			t.Errorf("%s: Binds = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestPOSRuleTakesPrecedenceOverLabel(t *testing.T) {
	rules := NewRuleTable(
		map[token.POS]Direction{token.Particle: Forward},
		map[token.Label]Direction{token.LabelCase: Backward},
	)
	tok := token.Token{POS: token.Particle, Label: token.LabelCase}
	if rules.Binds(tok, false) {
		t.Error("label entry should not apply when a POS entry exists")
	}
	if !rules.Binds(tok, true) {
		t.Error("POS entry should apply")
	}
}

func TestCustomRuleTableIsIndependent(t *testing.T) {
	pos := map[token.POS]Direction{token.Particle: Backward}
	rules := NewRuleTable(pos, nil)
	pos[token.Noun] = Both
	if rules.Binds(token.Token{POS: token.Noun}, true) {
		t.Error("mutating the input map must not affect the table")
	}
}
