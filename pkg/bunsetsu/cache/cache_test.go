package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/cognicore/bunsetsu/pkg/bunsetsu/segment"
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/token"
)

type mapStorage struct {
	entries map[string]segment.Result
	sets    int
}

func newMapStorage() *mapStorage {
	return &mapStorage{entries: make(map[string]segment.Result)}
}

func (s *mapStorage) Get(ctx context.Context, key string) (segment.Result, bool, error) {
	val, ok := s.entries[key]
	return val, ok, nil
}

func (s *mapStorage) Set(ctx context.Context, key string, val segment.Result) error {
	s.sets++
	s.entries[key] = val
	return nil
}

func (s *mapStorage) Has(ctx context.Context, key string) (bool, error) {
	_, ok := s.entries[key]
	return ok, nil
}

func TestKeyIsDeterministic(t *testing.T) {
	a := Key("pattern", "今日も元気です", "ja", segment.ModeSyntax)
	b := Key("pattern", "今日も元気です", "ja", segment.ModeSyntax)
	if a != b {
		t.Error("identical inputs must derive identical keys")
	}
}

func TestKeyVariesWithInputs(t *testing.T) {
	base := Key("pattern", "text", "ja", segment.ModeSyntax)
	variants := []string{
		Key("mecab", "text", "ja", segment.ModeSyntax),
		Key("pattern", "other", "ja", segment.ModeSyntax),
		Key("pattern", "text", "ko", segment.ModeSyntax),
		Key("pattern", "text", "ja", segment.ModeEntity),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collides with the base key", i)
		}
	}
}

func TestGetOrComputeInvokesBackendOnce(t *testing.T) {
	storage := newMapStorage()
	gateway := NewGateway(storage)
	key := Key("pattern", "今日も元気です", "ja", segment.ModeSyntax)

	calls := 0
	compute := func() (segment.Result, error) {
		calls++
		return segment.Result{
			Tokens:   []token.Token{{Text: "今日", Head: 0}},
			Language: "ja",
		}, nil
	}

	for i := 0; i < 2; i++ {
		res, err := gateway.GetOrCompute(context.Background(), key, compute)
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Tokens) != 1 || res.Tokens[0].Text != "今日" {
			t.Fatalf("round %d: unexpected result %+v", i, res)
		}
	}
	if calls != 1 {
		t.Errorf("backend invoked %d times, want 1", calls)
	}
	if storage.sets != 1 {
		t.Errorf("storage written %d times, want 1", storage.sets)
	}
}

func TestGetOrComputeComputeError(t *testing.T) {
	gateway := NewGateway(newMapStorage())
	wantErr := errors.New("backend down")
	_, err := gateway.GetOrCompute(context.Background(), "k", func() (segment.Result, error) {
		return segment.Result{}, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("got %v, want compute error surfaced", err)
	}
}

func TestGetOrComputeNilStorage(t *testing.T) {
	gateway := NewGateway(nil)
	calls := 0
	for i := 0; i < 2; i++ {
		_, err := gateway.GetOrCompute(context.Background(), "k", func() (segment.Result, error) {
			calls++
			return segment.Result{}, nil
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	if calls != 2 {
		t.Errorf("nil storage should compute every time, got %d calls", calls)
	}
}
