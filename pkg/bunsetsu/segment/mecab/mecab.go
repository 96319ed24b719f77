// Package mecab adapts the MeCab morphological analyzer
// (https://taku910.github.io/mecab/) as a segmenter backend. MeCab runs as
// a subprocess in ChaSen output mode; the adapter parses its TSV output
// and maps IPAdic part-of-speech names onto the universal tag set.
package mecab

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/cognicore/bunsetsu/pkg/bunsetsu/internalerr"
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/segment"
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/token"
)

// Segmenter runs the mecab binary for each call.
type Segmenter struct {
	// Path overrides the mecab binary location. Empty means look up
	// "mecab" on PATH.
	Path string
}

// New creates a MeCab segmenter.
func New() *Segmenter { return &Segmenter{} }

// Name implements segment.Segmenter.
func (s *Segmenter) Name() string { return "mecab" }

// Segment implements segment.Segmenter. MeCab analyzes Japanese only and
// cannot detect languages, so an explicit language is required. Entity
// mode is accepted but produces no spans.
func (s *Segmenter) Segment(ctx context.Context, text, language string, mode segment.Mode) (segment.Result, error) {
	if strings.TrimSpace(text) == "" {
		return segment.Result{}, internalerr.ErrEmptyInput
	}
	switch language {
	case "ja":
	case "":
		return segment.Result{}, fmt.Errorf("%w: mecab cannot detect languages", internalerr.ErrLanguageRequired)
	default:
		return segment.Result{}, fmt.Errorf("%w: mecab supports ja only, got %q", internalerr.ErrUnsupportedLanguage, language)
	}

	bin := s.Path
	if bin == "" {
		found, err := exec.LookPath("mecab")
		if err != nil {
			return segment.Result{}, fmt.Errorf("%w: mecab binary not found: %v", internalerr.ErrBackendUnavailable, err)
		}
		bin = found
	}

	cmd := exec.CommandContext(ctx, bin, "-Ochasen")
	cmd.Stdin = strings.NewReader(text)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return segment.Result{}, fmt.Errorf("%w: mecab failed: %v: %s", internalerr.ErrBackendUnavailable, err, stderr.String())
	}

	toks, err := tokensFromChasen(text, out.String())
	if err != nil {
		return segment.Result{}, err
	}
	return segment.Result{Tokens: toks, Language: "ja"}, nil
}

// tokensFromChasen parses ChaSen-format output against the source text.
// Each line is "surface\treading\tbase\tpos[-sub...]\t...". Spaces in the
// source are absent from the surface stream and are recovered by seeking.
func tokensFromChasen(source, output string) ([]token.Token, error) {
	src := []rune(source)
	seek := 0

	type raw struct {
		text  string
		pos   string
		sub   string
		space bool
	}
	var raws []raw
	for _, line := range strings.Split(output, "\n") {
		if line == "" || line == "EOS" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 4 {
			return nil, fmt.Errorf("%w: unparseable mecab line %q", internalerr.ErrBackendUnavailable, line)
		}
		surface := fields[0]
		posParts := strings.Split(fields[3], "-")
		pos := posParts[0]
		sub := ""
		if len(posParts) > 1 {
			sub = posParts[1]
		}

		word := []rune(surface)
		for seek < len(src) && len(word) > 0 && src[seek] != word[0] {
			// Skip separators the analyzer dropped, flagging the
			// previous token.
			if len(raws) > 0 {
				raws[len(raws)-1].space = true
			}
			seek++
		}
		seek += len(word)
		raws = append(raws, raw{text: surface, pos: pos, sub: sub})
	}

	toks := make([]token.Token, len(raws))
	for i, rw := range raws {
		pos, label := mapPOS(rw.pos, rw.sub, rw.text)
		t := token.Token{
			Text:          rw.text,
			POS:           pos,
			Label:         label,
			TrailingSpace: rw.space,
		}
		switch {
		case label == token.LabelCase || label == token.LabelAux || label == token.LabelSuffix:
			t.Head = headLeft(i)
		case pos == token.Punctuation:
			if token.IsOpenPunct(rw.text) {
				t.Head = headRight(i, len(raws))
			} else {
				t.Head = headLeft(i)
			}
		case label == token.LabelPrefix:
			t.Head = headRight(i, len(raws))
		default:
			t.Head = headRight(i, len(raws))
		}
		if t.Head == i && t.Label == token.LabelDep {
			t.Label = token.LabelRoot
		}
		toks[i] = t
	}
	return toks, nil
}

// mapPOS converts IPAdic part-of-speech names to the universal sets.
// Unknown names degrade to OTHER/DEP.
func mapPOS(pos, sub, surface string) (token.POS, token.Label) {
	switch pos {
	case "助詞":
		return token.Particle, token.LabelCase
	case "助動詞":
		return token.Auxiliary, token.LabelAux
	case "記号":
		if token.IsPunct(surface) {
			return token.Punctuation, token.LabelPunct
		}
		return token.Other, token.LabelDep
	case "接頭詞":
		return token.Other, token.LabelPrefix
	case "名詞":
		if sub == "数" {
			return token.Number, token.LabelNum
		}
		if sub == "接尾" {
			// Counters and other suffix nouns glue onto whatever
			// precedes them, numerals included.
			return token.NumberModifier, token.LabelSuffix
		}
		if sub == "非自立" {
			return token.Noun, token.LabelSuffix
		}
		return token.Noun, token.LabelDep
	case "動詞":
		if sub == "非自立" {
			return token.Verb, token.LabelSuffix
		}
		return token.Verb, token.LabelDep
	case "形容詞":
		return token.Adjective, token.LabelDep
	default:
		return token.Other, token.LabelDep
	}
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
