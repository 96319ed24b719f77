// Package compose turns an ordered token sequence into an ordered chunk
// sequence. A chunk is a maximal run of adjacent tokens that must not be
// separated by a line break.
//
// Composition is an iterated reduction over an index-addressed chunk
// array: every token starts as a singleton chunk, entity spans are merged
// first, then tokens are merged into their heads wherever the attachment
// rule table permits, re-scanning until a full pass changes nothing. The
// loop terminates because every merge strictly reduces the chunk count.
package compose

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cognicore/bunsetsu/pkg/bunsetsu/token"
)

// Chunk is a maximal run of adjacent tokens merged by the composer.
type Chunk struct {
	// Text is the exact substring of the original sentence spanned by
	// the member tokens, including any whitespace between them.
	Text string
	// POS is the part of speech of the anchor token, the one the other
	// members attached to.
	POS   token.POS
	Label token.Label
	// AttachesForward records how the chunk was formed: true when it was
	// pulled toward the chunk on its right. Standalone chunks are false.
	AttachesForward bool
	// TrailingSpace is inherited from the last member token.
	TrailingSpace bool
	// Tokens are the member tokens in original order.
	Tokens []token.Token
}

// Reconstruct concatenates chunk texts with trailing-space flags applied,
// reproducing the original sentence.
func Reconstruct(chunks []Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.Text)
		if c.TrailingSpace {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// Composer applies an attachment rule table to token sequences.
type Composer struct {
	rules *RuleTable
}

// New creates a composer. A nil table selects DefaultRules.
func New(rules *RuleTable) *Composer {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Composer{rules: rules}
}

// state is one chunk under construction: a half-open token range, the
// index of its anchor token, and its attachment direction so far.
type state struct {
	start, end int
	anchor     int
	forward    bool
}

// Compose partitions toks into chunks. Entity spans, if any, are merged
// before the generic rules run and take precedence for the tokens they
// cover. When maxLen > 0, chunks longer than maxLen runes are re-split at
// token boundaries in a final pass.
//
// Compose never fails on well-formed input; an out-of-range head index is
// an adapter bug surfaced as internalerr.ErrMalformedTokenStream.
func (c *Composer) Compose(toks []token.Token, entities []token.Span, maxLen int) ([]Chunk, error) {
	if err := token.Validate(toks); err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, nil
	}

	states := make([]state, len(toks))
	for i := range toks {
		states[i] = state{start: i, end: i + 1, anchor: i}
	}

	var covered map[int]bool
	states, covered = mergeEntities(states, toks, entities)

	// Fixed point: each merge removes one chunk, so the loop runs at
	// most len(toks) full passes.
	for changed := true; changed; {
		changed = false
		for i := range toks {
			if covered[i] {
				// Entity grouping takes precedence over the
				// rules for the tokens it covers. Neighbors may
				// still merge into the entity chunk.
				continue
			}
			h := toks[i].Head
			if h == i {
				continue
			}
			ci := chunkOf(states, i)
			ch := chunkOf(states, h)
			if ci == ch {
				continue
			}
			if ci != ch-1 && ci != ch+1 {
				continue
			}
			forward := i < h
			if !c.rules.Binds(toks[i], forward) {
				continue
			}
			states = mergeAdjacent(states, ci, ch, forward)
			changed = true
		}
	}

	chunks := make([]Chunk, 0, len(states))
	for _, st := range states {
		chunks = append(chunks, buildChunk(toks, st))
	}

	if maxLen > 0 {
		chunks = splitLong(chunks, maxLen)
	}
	return chunks, nil
}

// chunkOf returns the index of the chunk containing token i. States are
// contiguous and ordered, so a linear scan is enough for sentence-sized
// input.
func chunkOf(states []state, i int) int {
	for si, st := range states {
		if st.start <= i && i < st.end {
			return si
		}
	}
	// Unreachable: states partition [0, len(toks)).
	panic(fmt.Sprintf("compose: token %d not covered by any chunk", i))
}

// mergeAdjacent merges the chunk at ci into the adjacent chunk at ch,
// keeping ch's anchor. forward is the direction of this merge.
func mergeAdjacent(states []state, ci, ch int, forward bool) []state {
	lo, hi := ci, ch
	if lo > hi {
		lo, hi = hi, lo
	}
	merged := state{
		start:   states[lo].start,
		end:     states[hi].end,
		anchor:  states[ch].anchor,
		forward: forward,
	}
	out := append(states[:lo], append([]state{merged}, states[hi+1:]...)...)
	return out
}

// mergeEntities collapses every chunk overlapping an entity span into a
// single chunk, before any rule-based merging. The returned set marks the
// token indexes covered by a span.
func mergeEntities(states []state, toks []token.Token, entities []token.Span) ([]state, map[int]bool) {
	if len(entities) == 0 {
		return states, nil
	}
	covered := make(map[int]bool)
	offsets := runeOffsets(toks)
	for _, span := range entities {
		if span.End <= span.Start {
			continue
		}
		first, last := -1, -1
		for i := range toks {
			tokStart := offsets[i]
			tokEnd := offsets[i+1]
			if tokStart < span.End && span.Start < tokEnd {
				if first == -1 {
					first = i
				}
				last = i
				covered[i] = true
			}
		}
		if first == -1 {
			continue
		}
		lo := chunkOf(states, first)
		hi := chunkOf(states, last)
		for hi > lo {
			states = mergeAdjacent(states, hi, hi-1, false)
			hi--
		}
		states[lo].anchor = last
	}
	return states, covered
}

// runeOffsets returns len(toks)+1 cumulative rune offsets, counting each
// trailing space as one rune, matching the offsets backends report.
func runeOffsets(toks []token.Token) []int {
	offsets := make([]int, len(toks)+1)
	pos := 0
	for i, t := range toks {
		offsets[i] = pos
		pos += utf8.RuneCountInString(t.Text)
		if t.TrailingSpace {
			pos++
		}
	}
	offsets[len(toks)] = pos
	return offsets
}

func buildChunk(toks []token.Token, st state) Chunk {
	members := toks[st.start:st.end]
	var b strings.Builder
	for i, t := range members {
		b.WriteString(t.Text)
		if t.TrailingSpace && i < len(members)-1 {
			b.WriteByte(' ')
		}
	}
	anchor := toks[st.anchor]
	return Chunk{
		Text:            b.String(),
		POS:             anchor.POS,
		Label:           anchor.Label,
		AttachesForward: st.forward,
		TrailingSpace:   members[len(members)-1].TrailingSpace,
		Tokens:          append([]token.Token(nil), members...),
	}
}

// splitLong re-splits any chunk longer than maxLen runes into sub-chunks
// at token boundaries, bisecting at the boundary nearest the midpoint.
// A single token longer than maxLen cannot be split and is kept whole.
func splitLong(chunks []Chunk, maxLen int) []Chunk {
	var out []Chunk
	for _, c := range chunks {
		parts := bisect(c.Tokens, maxLen)
		if len(parts) == 1 {
			out = append(out, c)
			continue
		}
		for pi, part := range parts {
			sub := buildChunk(part, state{
				start:  0,
				end:    len(part),
				anchor: len(part) - 1,
			})
			// Interior pieces of a split phrase still belong with
			// what follows them.
			sub.AttachesForward = pi < len(parts)-1
			sub.POS = c.POS
			sub.Label = c.Label
			out = append(out, sub)
		}
	}
	return out
}

// bisect recursively splits toks at the token boundary nearest the rune
// midpoint until every part fits in maxLen, or no further split is
// possible.
func bisect(toks []token.Token, maxLen int) [][]token.Token {
	if len(toks) <= 1 || chunkRuneLen(toks) <= maxLen {
		return [][]token.Token{toks}
	}
	offsets := runeOffsets(toks)
	total := offsets[len(toks)]
	best, bestDist := 1, total
	for b := 1; b < len(toks); b++ {
		dist := offsets[b]*2 - total
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist {
			best, bestDist = b, dist
		}
	}
	left := bisect(toks[:best], maxLen)
	right := bisect(toks[best:], maxLen)
	return append(left, right...)
}

// chunkRuneLen measures the rendered chunk text in runes, counting the
// spaces between members but not the trailing one.
func chunkRuneLen(toks []token.Token) int {
	n := 0
	for i, t := range toks {
		n += utf8.RuneCountInString(t.Text)
		if t.TrailingSpace && i < len(toks)-1 {
			n++
		}
	}
	return n
}
