package retrieval

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"sync"
	"testing"

	"legal-research-be/pkg/cache"
)

type fakeSearcher struct {
	mu     sync.Mutex
	calls  int
	limits []int
	docs   map[string][]Document
	failOn string
}

func (f *fakeSearcher) SearchSimilar(_ context.Context, collection string, _ []float32, limit int, _ map[string]string) ([]Document, error) {
	f.mu.Lock()
	f.calls++
	f.limits = append(f.limits, limit)
	f.mu.Unlock()

	if collection == f.failOn {
		return nil, errors.New("collection unavailable")
	}
	docs := f.docs[collection]
	if len(docs) > limit {
		docs = docs[:limit]
	}
	return append([]Document(nil), docs...), nil
}

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

func collectionDocs(collection string, n int) []Document {
	docs := make([]Document, n)
	for i := 0; i < n; i++ {
		docs[i] = Document{
			ID:      fmt.Sprintf("%s-%d", collection, i),
			Content: fmt.Sprintf("madde %d", i),
			Score:   1.0 - float64(i)*0.05,
		}
	}
	return docs
}

func discard() *log.Logger { return log.New(io.Discard, "", 0) }

func TestFuseRRFMonotonicity(t *testing.T) {
	// A document ranked first in every list must rank first after fusion.
	a := []Document{{ID: "winner"}, {ID: "x"}, {ID: "y"}}
	b := []Document{{ID: "winner"}, {ID: "y"}}
	c := []Document{{ID: "winner"}, {ID: "z"}, {ID: "x"}}

	fused := FuseRRF(a, b, c)
	if len(fused) == 0 || fused[0].ID != "winner" {
		t.Fatalf("fused = %v, want winner first", fused)
	}
}

func TestFuseRRFSumsContributions(t *testing.T) {
	a := []Document{{ID: "d1"}, {ID: "d2"}}
	b := []Document{{ID: "d2"}, {ID: "d1"}}

	fused := FuseRRF(a, b)
	// Both appear at ranks 1 and 2, so both score 1/61 + 1/62.
	want := 1.0/61 + 1.0/62
	for _, doc := range fused {
		if diff := doc.Score - want; diff > 1e-12 || diff < -1e-12 {
			t.Errorf("%s score = %v, want %v", doc.ID, doc.Score, want)
		}
	}
	// Symmetric ranks tie; first-seen order wins.
	if fused[0].ID != "d1" {
		t.Errorf("tie broken to %s, want d1", fused[0].ID)
	}
}

func TestRerankTruncates(t *testing.T) {
	docs := collectionDocs("c", 8)
	if got := Rerank(docs, 5); len(got) != 5 {
		t.Errorf("len = %d, want 5", len(got))
	}
	if got := Rerank(docs, 0); len(got) != 8 {
		t.Errorf("topN=0 must keep all, got %d", len(got))
	}
}

func TestKeywordProxyWidensLimit(t *testing.T) {
	searcher := &fakeSearcher{docs: map[string][]Document{"ticaret_hukuku": collectionDocs("ticaret_hukuku", 10)}}
	engine := NewEngine(searcher, nil, fakeEmbedder{}, discard())

	if _, err := engine.Search(context.Background(), "tacir", "ticaret_hukuku", StrategyKeyword, 3, nil); err != nil {
		t.Fatal(err)
	}
	if len(searcher.limits) != 1 || searcher.limits[0] != 6 {
		t.Errorf("limits = %v, want one call at limit*2 = 6", searcher.limits)
	}
}

func TestHybridSearchFusesAndReranks(t *testing.T) {
	searcher := &fakeSearcher{docs: map[string][]Document{"ticaret_hukuku": collectionDocs("ticaret_hukuku", 12)}}
	engine := NewEngine(searcher, nil, fakeEmbedder{}, discard())

	docs, err := engine.Search(context.Background(), "tacir", "ticaret_hukuku", StrategyHybrid, 6, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != DefaultRerankTopN {
		t.Errorf("len = %d, want rerank top %d", len(docs), DefaultRerankTopN)
	}
	if !sort.SliceIsSorted(docs, func(i, j int) bool { return docs[i].Score > docs[j].Score }) {
		t.Errorf("results not sorted by fused score: %v", docs)
	}
	if searcher.callCount() != 2 {
		t.Errorf("storage calls = %d, want vector + keyword", searcher.callCount())
	}
}

func TestResearchMergesDedupedAndCapped(t *testing.T) {
	searcher := &fakeSearcher{docs: map[string][]Document{
		"ticaret_hukuku": collectionDocs("ticaret_hukuku", 20),
		"borclar_hukuku": collectionDocs("borclar_hukuku", 20),
		"medeni_hukuk":   collectionDocs("medeni_hukuk", 20),
	}}
	engine := NewEngine(searcher, nil, fakeEmbedder{}, discard())
	engine.RerankTopN = 10 // each collection contributes ten hybrid results
	r := NewResearcher(engine, nil, discard())

	docs, err := r.ResearchAcrossCollections(context.Background(), "sozlesme", []string{"ticaret_hukuku", "borclar_hukuku", "medeni_hukuk"}, 10, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(docs) != MaxCrossCollection {
		t.Errorf("len = %d, want cap %d", len(docs), MaxCrossCollection)
	}
	seen := make(map[string]bool)
	for _, d := range docs {
		if seen[d.ID] {
			t.Errorf("duplicate id %s", d.ID)
		}
		seen[d.ID] = true
		if d.Collection == "" {
			t.Errorf("document %s missing collection tag", d.ID)
		}
	}
	if !sort.SliceIsSorted(docs, func(i, j int) bool {
		if docs[i].Score != docs[j].Score {
			return docs[i].Score > docs[j].Score
		}
		return docs[i].ID < docs[j].ID
	}) {
		t.Error("merged results not deterministically sorted")
	}
}

func TestResearchCacheHitSkipsStorage(t *testing.T) {
	searcher := &fakeSearcher{docs: map[string][]Document{"ticaret_hukuku": collectionDocs("ticaret_hukuku", 10)}}
	engine := NewEngine(searcher, nil, fakeEmbedder{}, discard())
	r := NewResearcher(engine, cache.NewManager(nil, discard()), discard())
	ctx := context.Background()

	first, err := r.ResearchAcrossCollections(ctx, "tacir kimdir", []string{"ticaret_hukuku"}, 5, nil)
	if err != nil {
		t.Fatal(err)
	}
	callsAfterMiss := searcher.callCount()
	if callsAfterMiss == 0 {
		t.Fatal("cache miss must hit storage")
	}

	second, err := r.ResearchAcrossCollections(ctx, "tacir kimdir", []string{"ticaret_hukuku"}, 5, nil)
	if err != nil {
		t.Fatal(err)
	}
	if searcher.callCount() != callsAfterMiss {
		t.Errorf("cache hit touched storage: %d calls, want %d", searcher.callCount(), callsAfterMiss)
	}
	if len(second) != len(first) {
		t.Errorf("cached result differs: %d vs %d docs", len(second), len(first))
	}
}

func TestResearchDropsFailingCollection(t *testing.T) {
	searcher := &fakeSearcher{
		docs:   map[string][]Document{"ticaret_hukuku": collectionDocs("ticaret_hukuku", 4)},
		failOn: "borclar_hukuku",
	}
	engine := NewEngine(searcher, nil, fakeEmbedder{}, discard())
	r := NewResearcher(engine, nil, discard())

	docs, err := r.ResearchAcrossCollections(context.Background(), "faiz", []string{"ticaret_hukuku", "borclar_hukuku"}, 4, nil)
	if err != nil {
		t.Fatalf("fan-out must survive one failing collection: %v", err)
	}
	for _, d := range docs {
		if d.Collection != "ticaret_hukuku" {
			t.Errorf("unexpected document from failed collection: %+v", d)
		}
	}
	if len(docs) == 0 {
		t.Error("surviving collection returned nothing")
	}
}
