// Package pattern implements a self-contained Japanese segmenter that
// needs no external process or service. It splits text into script runs
// and peels known particles and auxiliary verbs off hiragana runs, folding
// leftover okurigana into the preceding kanji run.
//
// The adapter has no syntactic analysis, so it synthesizes the dependency
// model: particles, auxiliaries and closing punctuation head their left
// neighbor, opening punctuation its right neighbor, and everything else
// forms a linear chain to the right with the last token as root.
package pattern

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/cognicore/bunsetsu/pkg/bunsetsu/internalerr"
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/segment"
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/token"
)

// defaultParticles lists common Japanese particles.
// https://en.wikipedia.org/wiki/Japanese_particles
var defaultParticles = []string{
	"か", "かしら", "から", "が", "くらい", "けれども", "こそ", "さ", "さえ",
	"しか", "だけ", "だに", "だの", "て", "で", "でも", "と", "ところが",
	"とも", "な", "など", "なり", "に", "ね", "の", "ので", "のに", "は",
	"ば", "ばかり", "へ", "ほど", "まで", "も", "や", "やら", "よ", "より",
	"わ", "を",
}

// defaultAuxiliaries lists common auxiliary verb forms.
var defaultAuxiliaries = []string{"です", "でしょ", "でし", "ます", "ませ", "まし"}

// Segmenter is the pattern-based backend.
type Segmenter struct {
	particles   map[string]struct{}
	auxiliaries map[string]struct{}
	maxAffix    int
}

// New creates a pattern segmenter with the built-in lexicon.
func New() *Segmenter {
	return NewWithLexicon(defaultParticles, defaultAuxiliaries)
}

// NewWithLexicon creates a pattern segmenter with a caller-supplied
// particle and auxiliary lexicon. Empty slices fall back to the built-in
// lists.
func NewWithLexicon(particles, auxiliaries []string) *Segmenter {
	if len(particles) == 0 {
		particles = defaultParticles
	}
	if len(auxiliaries) == 0 {
		auxiliaries = defaultAuxiliaries
	}
	s := &Segmenter{
		particles:   make(map[string]struct{}, len(particles)),
		auxiliaries: make(map[string]struct{}, len(auxiliaries)),
	}
	for _, p := range particles {
		s.particles[p] = struct{}{}
		if n := len([]rune(p)); n > s.maxAffix {
			s.maxAffix = n
		}
	}
	for _, a := range auxiliaries {
		s.auxiliaries[a] = struct{}{}
		if n := len([]rune(a)); n > s.maxAffix {
			s.maxAffix = n
		}
	}
	return s
}

// Name implements segment.Segmenter.
func (s *Segmenter) Name() string { return "pattern" }

// Segment implements segment.Segmenter. Entity mode is accepted but the
// backend has no entity analysis, so no spans are produced.
func (s *Segmenter) Segment(ctx context.Context, text, language string, mode segment.Mode) (segment.Result, error) {
	if strings.TrimSpace(text) == "" {
		return segment.Result{}, internalerr.ErrEmptyInput
	}
	switch language {
	case "ja":
	case "":
		if !hasJapanese(text) {
			return segment.Result{}, fmt.Errorf("%w: cannot detect language of non-Japanese text", internalerr.ErrLanguageRequired)
		}
		language = "ja"
	default:
		return segment.Result{}, fmt.Errorf("%w: pattern segmenter supports ja only, got %q", internalerr.ErrUnsupportedLanguage, language)
	}
	if err := ctx.Err(); err != nil {
		return segment.Result{}, err
	}

	raws := s.scan(text)
	toks := assign(raws)
	return segment.Result{Tokens: toks, Language: language}, nil
}

type kind int

const (
	kindWord kind = iota // latin or leftover hiragana
	kindHan              // word made of (or ending in) kanji
	kindKata             // katakana word
	kindDigit
	kindParticle
	kindAux
	kindPunct
)

type rawTok struct {
	text  string
	kind  kind
	space bool
}

// scan splits text into script runs and resolves hiragana runs against
// the lexicon.
func (s *Segmenter) scan(text string) []rawTok {
	var raws []rawTok
	runes := []rune(text)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			for i < len(runes) && unicode.IsSpace(runes[i]) {
				i++
			}
			if len(raws) > 0 {
				raws[len(raws)-1].space = true
			}
		case isPunctRune(r):
			raws = append(raws, rawTok{text: string(r), kind: kindPunct})
			i++
		case unicode.IsDigit(r):
			j := i
			for j < len(runes) && unicode.IsDigit(runes[j]) {
				j++
			}
			raws = append(raws, rawTok{text: string(runes[i:j]), kind: kindDigit})
			i = j
		case unicode.Is(unicode.Hiragana, r):
			j := i
			for j < len(runes) && unicode.Is(unicode.Hiragana, runes[j]) {
				j++
			}
			raws = s.resolveHiragana(raws, runes[i:j])
			i = j
		case unicode.Is(unicode.Han, r):
			j := i
			for j < len(runes) && unicode.Is(unicode.Han, runes[j]) {
				j++
			}
			raws = append(raws, rawTok{text: string(runes[i:j]), kind: kindHan})
			i = j
		case isKatakana(r):
			j := i
			for j < len(runes) && isKatakana(runes[j]) {
				j++
			}
			raws = append(raws, rawTok{text: string(runes[i:j]), kind: kindKata})
			i = j
		default:
			j := i
			for j < len(runes) && isResidual(runes[j]) {
				j++
			}
			raws = append(raws, rawTok{text: string(runes[i:j]), kind: kindWord})
			i = j
		}
	}
	return raws
}

// resolveHiragana peels particles and auxiliaries off the end of a
// hiragana run, longest match first. Whatever is left is okurigana and is
// folded into a directly preceding kanji run, or stands alone.
func (s *Segmenter) resolveHiragana(raws []rawTok, run []rune) []rawTok {
	var peeled []rawTok
	rest := run
	for len(rest) > 0 {
		matched := false
		max := s.maxAffix
		if max > len(rest) {
			max = len(rest)
		}
		for n := max; n >= 1; n-- {
			cand := string(rest[len(rest)-n:])
			if _, ok := s.particles[cand]; ok {
				peeled = append(peeled, rawTok{text: cand, kind: kindParticle})
				rest = rest[:len(rest)-n]
				matched = true
				break
			}
			if _, ok := s.auxiliaries[cand]; ok {
				peeled = append(peeled, rawTok{text: cand, kind: kindAux})
				rest = rest[:len(rest)-n]
				matched = true
				break
			}
		}
		if !matched {
			break
		}
	}
	if len(rest) > 0 {
		if n := len(raws); n > 0 && raws[n-1].kind == kindHan && !raws[n-1].space {
			raws[n-1].text += string(rest)
		} else {
			raws = append(raws, rawTok{text: string(rest), kind: kindWord})
		}
	}
	for i := len(peeled) - 1; i >= 0; i-- {
		raws = append(raws, peeled[i])
	}
	return raws
}

// assign maps raw runs to tokens with the synthetic dependency model.
func assign(raws []rawTok) []token.Token {
	toks := make([]token.Token, len(raws))
	for i, rw := range raws {
		t := token.Token{Text: rw.text, TrailingSpace: rw.space}
		switch rw.kind {
		case kindParticle:
			t.POS = token.Particle
			t.Label = token.LabelCase
			t.Head = headLeft(i)
		case kindAux:
			t.POS = token.Auxiliary
			t.Label = token.LabelAux
			t.Head = headLeft(i)
		case kindPunct:
			t.POS = token.Punctuation
			t.Label = token.LabelPunct
			if token.IsOpenPunct(rw.text) {
				t.Head = headRight(i, len(raws))
			} else {
				t.Head = headLeft(i)
			}
		case kindDigit:
			t.POS = token.Number
			t.Label = token.LabelDep
			t.Head = headRight(i, len(raws))
		case kindHan, kindKata:
			t.POS = token.Noun
			t.Label = token.LabelDep
			t.Head = headRight(i, len(raws))
		default:
			t.POS = token.Other
			t.Label = token.LabelDep
			t.Head = headRight(i, len(raws))
		}
		if t.Head == i {
			t.Label = token.LabelRoot
		}
		toks[i] = t
	}
	return toks
}

func headLeft(i int) int {
	if i == 0 {
		return 0
	}
	return i - 1
}

func headRight(i, n int) int {
	if i == n-1 {
		return i
	}
	return i + 1
}

func hasJapanese(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Hiragana, r) || isKatakana(r) || unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// isKatakana includes the prolonged sound mark, which Unicode assigns to
// the Common script even though it only appears inside katakana words.
func isKatakana(r rune) bool {
	return unicode.Is(unicode.Katakana, r) || r == 'ー'
}

func isPunctRune(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func isResidual(r rune) bool {
	return !unicode.IsSpace(r) && !isPunctRune(r) && !unicode.IsDigit(r) &&
		!unicode.Is(unicode.Hiragana, r) && !unicode.Is(unicode.Han, r) && !isKatakana(r)
}
