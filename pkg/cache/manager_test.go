package cache

import (
	"context"
	"io"
	"log"
	"testing"
	"time"
)

func newTestManager() *Manager {
	return NewManager(nil, log.New(io.Discard, "", 0))
}

func TestSetGetRoundTrip(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	type payload struct {
		Answer string   `json:"answer"`
		Docs   []string `json:"docs"`
	}
	in := payload{Answer: "cevap", Docs: []string{"d1", "d2"}}

	key := QueryKey("anonim şirket sermayesi", "ticaret_hukuku")
	m.Set(ctx, key, in, QueryTTL)

	var out payload
	if !m.Get(ctx, key, &out) {
		t.Fatal("expected cache hit")
	}
	if out.Answer != in.Answer || len(out.Docs) != 2 {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestMissOnUnknownKey(t *testing.T) {
	m := newTestManager()
	var out string
	if m.Get(context.Background(), QueryKey("yok", "ticaret_hukuku"), &out) {
		t.Error("expected miss for unknown key")
	}
	if stats := m.CacheStats(); stats.Misses != 1 || stats.Hits != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestKeyDerivationIsStableAndScoped(t *testing.T) {
	a := QueryKey("  TTK m.11 nedir  ", "ticaret_hukuku")
	b := QueryKey("ttk m.11 nedir", "ticaret_hukuku")
	if a != b {
		t.Error("keys must ignore case and surrounding whitespace")
	}
	if a == QueryKey("ttk m.11 nedir", "borclar_hukuku") {
		t.Error("same query in different collections must not share a key")
	}
	if QueryKey("x", "y") == DocumentKey("x") {
		t.Error("prefixes must separate payload classes")
	}
}

func TestInvalidateQueriesKeepsOtherClasses(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	m.Set(ctx, QueryKey("q", "c"), "result", QueryTTL)
	m.Set(ctx, EmbeddingKey("some text"), []float32{0.1}, EmbeddingTTL)

	m.InvalidateQueries(ctx)

	var s string
	if m.Get(ctx, QueryKey("q", "c"), &s) {
		t.Error("query entry survived invalidation")
	}
	var vec []float32
	if !m.Get(ctx, EmbeddingKey("some text"), &vec) {
		t.Error("embedding entry must survive query invalidation")
	}
}

func TestTTLExpiry(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	m.Set(ctx, DocumentKey("d1"), "body", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	var out string
	if m.Get(ctx, DocumentKey("d1"), &out) {
		t.Error("entry should have expired")
	}
}
