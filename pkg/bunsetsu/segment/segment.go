// Package segment defines the contract every segmenter backend adapter
// implements. Concrete adapters live in the subpackages pattern, mecab,
// and nlapi.
package segment

import (
	"context"

	"github.com/cognicore/bunsetsu/pkg/bunsetsu/token"
)

// Mode selects the analysis performed by the backend.
type Mode string

const (
	// ModeSyntax requests plain syntax analysis.
	ModeSyntax Mode = "syntax"
	// ModeEntity additionally requests named-entity spans, which the
	// composer merges before any part-of-speech rule runs.
	ModeEntity Mode = "entity"
)

// Result is the normalized output of one backend call.
type Result struct {
	Tokens []token.Token `json:"tokens"`
	// Entities holds recognized entity spans in rune offsets. Empty
	// unless the adapter was called in ModeEntity and the backend
	// supports entity analysis.
	Entities []token.Span `json:"entities,omitempty"`
	// Language is the language the backend processed, after detection.
	Language string `json:"language"`
}

// Segmenter converts raw backend output into an ordered token sequence.
//
// Implementations return internalerr.ErrUnsupportedLanguage when they
// cannot process the requested language, internalerr.ErrLanguageRequired
// when language is empty and the backend cannot detect it,
// internalerr.ErrBackendUnavailable when the underlying service or binary
// cannot be reached, and internalerr.ErrEmptyInput for empty or
// whitespace-only text.
//
// Adapters with no native dependency analysis synthesize a linear chain:
// each token heads its right neighbor and the last token is the root,
// refined by whatever attachment knowledge the adapter does have
// (particles and auxiliaries head their left neighbor, open punctuation
// its right neighbor). This is a documented fallback, not an error.
type Segmenter interface {
	Segment(ctx context.Context, text, language string, mode Mode) (Result, error)

	// Name identifies the backend, e.g. "pattern". Used to salt cache
	// keys so different backends never share entries.
	Name() string
}
