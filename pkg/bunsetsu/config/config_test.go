package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/bunsetsu/pkg/bunsetsu/token"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRules(t *testing.T) {
	path := writeFile(t, "rules.yaml", `
pos:
  PARTICLE: backward
  PUNCT: both
labels:
  PREFIX: forward
`)
	rules, err := LoadRules(path)
	if err != nil {
		t.Fatal(err)
	}
	if !rules.Binds(token.Token{POS: token.Particle}, false) {
		t.Error("PARTICLE should bind backward")
	}
	if rules.Binds(token.Token{POS: token.Particle}, true) {
		t.Error("PARTICLE should not bind forward")
	}
	if !rules.Binds(token.Token{POS: token.Punctuation}, true) {
		t.Error("PUNCT should bind both ways")
	}
	if !rules.Binds(token.Token{POS: token.Other, Label: token.LabelPrefix}, true) {
		t.Error("PREFIX label should bind forward")
	}
}

func TestLoadRulesRejectsUnknownDirection(t *testing.T) {
	path := writeFile(t, "rules.yaml", `
pos:
  PARTICLE: sideways
`)
	if _, err := LoadRules(path); err == nil {
		t.Fatal("expected an error for an unknown direction")
	}
}

func TestLoadRulesMissingFile(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoadLexicon(t *testing.T) {
	path := writeFile(t, "lexicon.yaml", `
particles:
  - の
  - を
auxiliaries:
  - です
`)
	lex, err := LoadLexicon(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(lex.Particles) != 2 || lex.Particles[0] != "の" {
		t.Errorf("Particles = %v", lex.Particles)
	}
	if len(lex.Auxiliaries) != 1 || lex.Auxiliaries[0] != "です" {
		t.Errorf("Auxiliaries = %v", lex.Auxiliaries)
	}
}
