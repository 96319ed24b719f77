// Package bunsetsu organizes CJK sentences into line-break-safe chunks.
//
// Browsers break CJK text at arbitrary characters because the scripts
// carry no spaces. The parser here segments a sentence with a pluggable
// backend, composes the tokens into semantically meaningful chunks, and
// renders them as HTML elements that CSS can keep unbroken.
//
//	p := bunsetsu.New(bunsetsu.Options{Segmenter: pattern.New()})
//	res, err := p.Parse(ctx, bunsetsu.Request{Text: "今日も元気です"})
//	fmt.Println(res.HTML)
//	// <span><span class="chunk">今日も</span><span class="chunk">元気です</span></span>
package bunsetsu

import (
	"context"
	"crypto/rand"
	"regexp"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	xhtml "golang.org/x/net/html"

	"github.com/cognicore/bunsetsu/pkg/bunsetsu/cache"
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/compose"
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/internalerr"
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/render"
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/segment"
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/segment/pattern"
)

// Parser is the facade orchestrating segmentation, caching, composition,
// and rendering. It holds no per-call state and is safe for concurrent
// use when its cache storage is.
type Parser struct {
	seg      segment.Segmenter
	gateway  *cache.Gateway
	composer *compose.Composer

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Options configures a Parser.
type Options struct {
	// Segmenter is the backend adapter. Nil selects the pattern
	// segmenter, which needs no external service.
	Segmenter segment.Segmenter
	// Storage enables memoization of backend calls. Nil disables it.
	Storage cache.Storage
	// Rules overrides the attachment rule table. Nil selects the
	// defaults.
	Rules *compose.RuleTable
}

// New creates a parser with the given dependencies.
func New(opts Options) *Parser {
	seg := opts.Segmenter
	if seg == nil {
		seg = pattern.New()
	}
	return &Parser{
		seg:      seg,
		gateway:  cache.NewGateway(opts.Storage),
		composer: compose.New(opts.Rules),
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
}

// Request holds the per-call inputs.
type Request struct {
	// Text is the sentence to process. Markup is stripped and
	// whitespace normalized before segmentation.
	Text string
	// Language is a language code, e.g. "ja". Empty delegates to
	// backend detection when the backend supports it.
	Language string
	// Mode selects syntax or entity-aware analysis. Empty means syntax.
	Mode segment.Mode
	// Attributes decorate each chunk element in the output. The class
	// attribute defaults to render.DefaultClass.
	Attributes map[string]string
	// DisableCache bypasses cache lookup and storage for this call.
	DisableCache bool
	// MaxChunkLength re-splits any chunk longer than this many runes at
	// token boundaries. Zero means no limit.
	MaxChunkLength int
	// Render tunes HTML serialization.
	Render render.Options
}

// Result is the outcome of one parse: the structured chunk sequence for
// programmatic inspection and the rendered markup for direct use.
type Result struct {
	// ID identifies this parse in logs.
	ID       string
	Chunks   []compose.Chunk
	HTML     string
	Language string
}

// Parse runs the full pipeline: preprocess, segment (through the cache),
// compose, render.
func (p *Parser) Parse(ctx context.Context, req Request) (Result, error) {
	text := Preprocess(req.Text)
	if text == "" {
		return Result{}, internalerr.ErrEmptyInput
	}
	mode := req.Mode
	if mode == "" {
		mode = segment.ModeSyntax
	}

	var (
		segRes segment.Result
		err    error
	)
	if req.DisableCache {
		segRes, err = p.seg.Segment(ctx, text, req.Language, mode)
	} else {
		key := cache.Key(p.seg.Name(), text, req.Language, mode)
		segRes, err = p.gateway.GetOrCompute(ctx, key, func() (segment.Result, error) {
			return p.seg.Segment(ctx, text, req.Language, mode)
		})
	}
	if err != nil {
		return Result{}, err
	}

	chunks, err := p.composer.Compose(segRes.Tokens, segRes.Entities, req.MaxChunkLength)
	if err != nil {
		return Result{}, err
	}

	htmlCode, err := render.HTMLWithOptions(chunks, req.Attributes, req.Render)
	if err != nil {
		return Result{}, err
	}

	return Result{
		ID:       p.newID(),
		Chunks:   chunks,
		HTML:     htmlCode,
		Language: segRes.Language,
	}, nil
}

func (p *Parser) newID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return ulid.MustNew(ulid.Now(), p.entropy).String()
}

var multiSpace = regexp.MustCompile(`\s\s+`)

// Preprocess strips markup from the source, removes line breaks, and
// collapses runs of whitespace. Line breaks are removed rather than
// replaced so that wrapped CJK source does not grow spurious spaces.
func Preprocess(source string) string {
	if strings.ContainsAny(source, "<>") {
		source = stripMarkup(source)
	}
	source = strings.ReplaceAll(source, "\r", "")
	source = strings.ReplaceAll(source, "\n", "")
	source = multiSpace.ReplaceAllString(source, " ")
	return strings.TrimSpace(source)
}

// stripMarkup extracts the text content of an HTML fragment.
func stripMarkup(source string) string {
	doc, err := xhtml.Parse(strings.NewReader(source))
	if err != nil {
		return source
	}
	var b strings.Builder
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return b.String()
}
