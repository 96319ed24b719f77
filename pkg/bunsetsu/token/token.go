// Package token defines the normalized unit produced by every segmenter
// backend. Adapters map their native part-of-speech and dependency
// vocabularies onto the universal sets here, so the composer never sees
// backend-specific types.
package token

import (
	"fmt"
	"unicode"

	"github.com/cognicore/bunsetsu/pkg/bunsetsu/internalerr"
)

// POS is a universal part-of-speech tag.
type POS string

const (
	Noun           POS = "NOUN"
	Verb           POS = "VERB"
	Adjective      POS = "ADJ"
	Particle       POS = "PARTICLE"
	Auxiliary      POS = "AUX"
	Punctuation    POS = "PUNCT"
	Number         POS = "NUMBER"
	NumberModifier POS = "NUMBER_MODIFIER"
	Other          POS = "OTHER"
)

// Label is a universal dependency relation between a token and its head.
type Label string

const (
	LabelRoot     Label = "ROOT"
	LabelCompound Label = "COMPOUND"
	LabelCase     Label = "CASE"
	LabelAux      Label = "AUX"
	LabelPunct    Label = "PUNCT"
	LabelNum      Label = "NUM"
	LabelSuffix   Label = "SUFFIX"
	LabelPrefix   Label = "PREFIX"
	// LabelDep is the degraded relation for anything an adapter cannot map.
	// The composer never merges on it.
	LabelDep Label = "DEP"
)

// Token is an immutable unit of segmented text.
type Token struct {
	Text  string
	POS   POS
	Label Label
	// Head is the index of the token this one depends on, or the token's
	// own index if it is the root.
	Head int
	// TrailingSpace is true when the original text had a separator
	// immediately after this token. Always false for backends with no
	// space information.
	TrailingSpace bool
}

// Span marks a half-open rune-offset range [Start, End) in the source
// sentence, used for recognized entities.
type Span struct {
	Start int
	End   int
}

// Validate checks the adapter contract: non-empty texts and in-range head
// indexes. A violation is an adapter bug, reported as a malformed stream.
func Validate(toks []Token) error {
	for i, t := range toks {
		if t.Text == "" {
			return fmt.Errorf("%w: token %d has empty text", internalerr.ErrMalformedTokenStream, i)
		}
		if t.Head < 0 || t.Head >= len(toks) {
			return fmt.Errorf("%w: token %d head %d out of range [0,%d)",
				internalerr.ErrMalformedTokenStream, i, t.Head, len(toks))
		}
	}
	return nil
}

// Reconstruct concatenates token texts with their trailing-space flags
// applied, reproducing the original sentence.
func Reconstruct(toks []Token) string {
	var out []byte
	for _, t := range toks {
		out = append(out, t.Text...)
		if t.TrailingSpace {
			out = append(out, ' ')
		}
	}
	return string(out)
}

// cjkRanges holds the codepoint ranges treated as CJK for rendering
// purposes (Hangul, Han, Kana, compatibility forms).
var cjkRanges = [][2]rune{
	{4352, 4607}, {11904, 42191}, {43072, 43135}, {44032, 55215},
	{63744, 64255}, {65072, 65103}, {65381, 65500}, {131072, 196607},
}

// HasCJK reports whether s contains any CJK character.
func HasCJK(s string) bool {
	for _, r := range s {
		for _, rng := range cjkRanges {
			if rng[0] <= r && r <= rng[1] {
				return true
			}
		}
	}
	return false
}

// IsPunct reports whether s is a single punctuation mark.
func IsPunct(s string) bool {
	runes := []rune(s)
	return len(runes) == 1 && unicode.IsPunct(runes[0])
}

// IsOpenPunct reports whether s is an opening punctuation mark (an opening
// bracket or initial quote). Open marks attach to the following word,
// everything else attaches to the preceding one.
func IsOpenPunct(s string) bool {
	runes := []rune(s)
	if len(runes) != 1 {
		return false
	}
	return unicode.In(runes[0], unicode.Ps, unicode.Pi)
}
