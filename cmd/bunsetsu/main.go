// Command bunsetsu chunks a CJK sentence and prints the rendered HTML.
//
//	$ bunsetsu "今日も元気です"
//	<span><span class="chunk">今日も</span><span class="chunk">元気です</span></span>
//
// Text is read from the arguments, or from stdin when none are given.
// Errors are printed to stderr with a non-zero exit status.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/cognicore/bunsetsu/pkg/bunsetsu"
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/cache"
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/cache/lrustore"
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/cache/sqlitestore"
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/compose"
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/config"
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/render"
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/segment"
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/segment/mecab"
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/segment/nlapi"
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/segment/pattern"
)

func main() {
	var (
		segName     = flag.String("segmenter", "pattern", "Segmenter backend: pattern, mecab, or nlapi")
		language    = flag.String("language", "", "Language code, e.g. ja (empty = detect if supported)")
		entity      = flag.Bool("entity", false, "Use entity-aware analysis (nlapi only)")
		class       = flag.String("class", "", "Class attribute for chunk elements")
		attrList    = flag.String("attr", "", "Extra attributes as name=value pairs, comma separated")
		maxLength   = flag.Int("max-length", 0, "Maximum chunk length in runes (0 = unlimited)")
		noCache     = flag.Bool("no-cache", false, "Bypass the segmentation cache")
		cacheDB     = flag.String("cache-db", "", "SQLite cache file (default: in-memory LRU)")
		rulesPath   = flag.String("rules", "", "Attachment rule table YAML file")
		lexiconPath = flag.String("lexicon", "", "Pattern lexicon YAML file")
		wbr         = flag.Bool("wbr", false, "Serialize with WBR tags instead of nested spans")
		inlineStyle = flag.Bool("inline-style", false, "Add display:inline-block as inline style")
		apiKey      = flag.String("api-key", os.Getenv("NLAPI_KEY"), "Cloud Natural Language API key (nlapi only)")
	)
	flag.Parse()

	text := strings.Join(flag.Args(), " ")
	if text == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatal(err)
		}
		text = string(data)
	}

	ctx := context.Background()

	seg, err := buildSegmenter(*segName, *lexiconPath, *apiKey)
	if err != nil {
		log.Fatal(err)
	}

	var rules *compose.RuleTable
	if *rulesPath != "" {
		rules, err = config.LoadRules(*rulesPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	storage, cleanup, err := buildStorage(ctx, *cacheDB)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	parser := bunsetsu.New(bunsetsu.Options{
		Segmenter: seg,
		Storage:   storage,
		Rules:     rules,
	})

	mode := segment.ModeSyntax
	if *entity {
		mode = segment.ModeEntity
	}

	attributes, err := parseAttributes(*attrList, *class)
	if err != nil {
		log.Fatal(err)
	}

	result, err := parser.Parse(ctx, bunsetsu.Request{
		Text:           text,
		Language:       *language,
		Mode:           mode,
		Attributes:     attributes,
		DisableCache:   *noCache,
		MaxChunkLength: *maxLength,
		Render: render.Options{
			UseWBR:      *wbr,
			InlineStyle: *inlineStyle,
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(result.HTML)
}

func buildSegmenter(name, lexiconPath, apiKey string) (segment.Segmenter, error) {
	switch name {
	case "pattern":
		if lexiconPath != "" {
			lex, err := config.LoadLexicon(lexiconPath)
			if err != nil {
				return nil, err
			}
			return pattern.NewWithLexicon(lex.Particles, lex.Auxiliaries), nil
		}
		return pattern.New(), nil
	case "mecab":
		return mecab.New(), nil
	case "nlapi":
		return nlapi.New(apiKey), nil
	default:
		return nil, fmt.Errorf("unknown segmenter %q", name)
	}
}

func buildStorage(ctx context.Context, cacheDB string) (cache.Storage, func(), error) {
	if cacheDB != "" {
		store, err := sqlitestore.Open(ctx, cacheDB)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	}
	store, err := lrustore.New(0)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {}, nil
}

func parseAttributes(attrList, class string) (map[string]string, error) {
	attributes := make(map[string]string)
	if attrList != "" {
		for _, pair := range strings.Split(attrList, ",") {
			name, val, ok := strings.Cut(pair, "=")
			if !ok {
				return nil, fmt.Errorf("malformed attribute %q, want name=value", pair)
			}
			attributes[strings.TrimSpace(name)] = val
		}
	}
	if class != "" {
		attributes["class"] = class
	}
	return attributes, nil
}
