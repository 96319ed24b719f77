package bunsetsu

import (
	"context"
	"errors"
	"testing"

	"github.com/cognicore/bunsetsu/pkg/bunsetsu/cache/memstore"
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/internalerr"
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/render"
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/segment"
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/token"
)

// countingSegmenter records how many times the backend is invoked.
type countingSegmenter struct {
	calls  int
	result segment.Result
	err    error
}

func (c *countingSegmenter) Segment(_ context.Context, _ string, _ string, _ segment.Mode) (segment.Result, error) {
	c.calls++
	return c.result, c.err
}

func (c *countingSegmenter) Name() string { return "counting" }

func chunkTexts(res Result) []string {
	texts := make([]string, len(res.Chunks))
	for i, c := range res.Chunks {
		texts[i] = c.Text
	}
	return texts
}

func TestParseSimpleSentence(t *testing.T) {
	p := New(Options{})
	res, err := p.Parse(context.Background(), Request{Text: "今日も元気です"})
	if err != nil {
		t.Fatal(err)
	}
	got := chunkTexts(res)
	want := []string{"今日も", "元気です"}
	if len(got) != len(want) {
		t.Fatalf("chunks = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("chunks = %v, want %v", got, want)
		}
	}
	wantHTML := `<span><span class="chunk">今日も</span><span class="chunk">元気です</span></span>`
	if res.HTML != wantHTML {
		t.Errorf("HTML = %s, want %s", res.HTML, wantHTML)
	}
	if res.Language != "ja" {
		t.Errorf("Language = %q, want ja", res.Language)
	}
	if res.ID == "" {
		t.Error("result has no ID")
	}
}

func TestParseLongerSentence(t *testing.T) {
	p := New(Options{})
	res, err := p.Parse(context.Background(), Request{
		Text:     "渋谷のカレーを食べに行く。",
		Language: "ja",
	})
	if err != nil {
		t.Fatal(err)
	}
	got := chunkTexts(res)
	want := []string{"渋谷の", "カレーを", "食べに", "行く。"}
	if len(got) != len(want) {
		t.Fatalf("chunks = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("chunks = %v, want %v", got, want)
		}
	}
}

func TestParseUsesCache(t *testing.T) {
	seg := &countingSegmenter{
		result: segment.Result{
			Tokens: []token.Token{
				{Text: "今日", POS: token.Noun, Label: token.LabelDep, Head: 1},
				{Text: "も", POS: token.Particle, Label: token.LabelCase, Head: 0},
			},
			Language: "ja",
		},
	}
	p := New(Options{Segmenter: seg, Storage: memstore.New()})
	req := Request{Text: "今日も", Language: "ja"}

	for i := 0; i < 3; i++ {
		if _, err := p.Parse(context.Background(), req); err != nil {
			t.Fatal(err)
		}
	}
	if seg.calls != 1 {
		t.Errorf("backend called %d times, want 1", seg.calls)
	}
}

func TestParseDisableCache(t *testing.T) {
	seg := &countingSegmenter{
		result: segment.Result{
			Tokens:   []token.Token{{Text: "今日", POS: token.Noun, Label: token.LabelRoot, Head: 0}},
			Language: "ja",
		},
	}
	p := New(Options{Segmenter: seg, Storage: memstore.New()})
	req := Request{Text: "今日", Language: "ja", DisableCache: true}

	for i := 0; i < 2; i++ {
		if _, err := p.Parse(context.Background(), req); err != nil {
			t.Fatal(err)
		}
	}
	if seg.calls != 2 {
		t.Errorf("backend called %d times, want 2 with caching off", seg.calls)
	}
}

func TestParseEmptyInput(t *testing.T) {
	p := New(Options{})
	for _, text := range []string{"", "   ", "\n\t ", "<p></p>"} {
		_, err := p.Parse(context.Background(), Request{Text: text})
		if !errors.Is(err, internalerr.ErrEmptyInput) {
			t.Errorf("Parse(%q): got %v, want ErrEmptyInput", text, err)
		}
	}
}

func TestParseBackendError(t *testing.T) {
	seg := &countingSegmenter{err: internalerr.ErrBackendUnavailable}
	p := New(Options{Segmenter: seg})
	_, err := p.Parse(context.Background(), Request{Text: "今日", Language: "ja"})
	if !errors.Is(err, internalerr.ErrBackendUnavailable) {
		t.Errorf("got %v, want ErrBackendUnavailable", err)
	}
}

func TestParseMaxChunkLength(t *testing.T) {
	p := New(Options{})
	res, err := p.Parse(context.Background(), Request{
		Text:           "渋谷のカレーを食べに行く。",
		Language:       "ja",
		MaxChunkLength: 3,
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range res.Chunks {
		if n := len([]rune(c.Text)); n > 4 {
			t.Errorf("chunk %q is %d runes, want re-split near the limit", c.Text, n)
		}
	}
}

func TestParseWBRMode(t *testing.T) {
	p := New(Options{})
	res, err := p.Parse(context.Background(), Request{
		Text:   "今日も元気です",
		Render: render.Options{UseWBR: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := `<span>今日も<wbr>元気です</span>`
	if res.HTML != want {
		t.Errorf("HTML = %s, want %s", res.HTML, want)
	}
}

func TestParseCustomAttributes(t *testing.T) {
	p := New(Options{})
	res, err := p.Parse(context.Background(), Request{
		Text:       "今日も元気です",
		Attributes: map[string]string{"class": "ww", "data-k": "v"},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := `<span><span class="ww" data-k="v">今日も</span><span class="ww" data-k="v">元気です</span></span>`
	if res.HTML != want {
		t.Errorf("HTML = %s, want %s", res.HTML, want)
	}
}

func TestParseInvalidAttribute(t *testing.T) {
	p := New(Options{})
	_, err := p.Parse(context.Background(), Request{
		Text:       "今日も元気です",
		Attributes: map[string]string{"on click": "x"},
	})
	if !errors.Is(err, internalerr.ErrInvalidAttribute) {
		t.Errorf("got %v, want ErrInvalidAttribute", err)
	}
}

func TestParseIDsAreUnique(t *testing.T) {
	p := New(Options{})
	seen := make(map[string]bool)
	for i := 0; i < 16; i++ {
		res, err := p.Parse(context.Background(), Request{Text: "今日も元気です"})
		if err != nil {
			t.Fatal(err)
		}
		if seen[res.ID] {
			t.Fatalf("duplicate ID %s", res.ID)
		}
		seen[res.ID] = true
	}
}

func TestPreprocess(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"今日も元気です", "今日も元気です"},
		{"  Google Home  ", "Google Home"},
		{"<p>今日も<b>元気</b>です</p>", "今日も元気です"},
		{"今日も\n元気です", "今日も元気です"},
		{"a\r\nb", "ab"},
		{"a \t b", "a b"},
	}
	for _, c := range cases {
		if got := Preprocess(c.in); got != c.want {
			t.Errorf("Preprocess(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseStripsMarkup(t *testing.T) {
	p := New(Options{})
	res, err := p.Parse(context.Background(), Request{Text: "<p>今日も元気です</p>"})
	if err != nil {
		t.Fatal(err)
	}
	got := chunkTexts(res)
	if len(got) != 2 || got[0] != "今日も" {
		t.Errorf("chunks = %v, want markup stripped before segmentation", got)
	}
}
