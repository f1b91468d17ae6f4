package retrieval

import (
	"context"
)

// Strategy selects how a single-collection search is executed.
type Strategy string

const (
	// StrategyVector embeds the query and runs similarity search.
	StrategyVector Strategy = "vector"
	// StrategyKeyword is lexical recall. See VectorKeywordProxy for the
	// current stand-in implementation.
	StrategyKeyword Strategy = "keyword"
	// StrategyHybrid runs vector and keyword concurrently and fuses the
	// ranked lists with RRF.
	StrategyHybrid Strategy = "hybrid"
)

// Document is one scored retrieval result.
type Document struct {
	ID         string         `json:"id"`
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Score      float64        `json:"score"`
	Collection string         `json:"collection,omitempty"`
}

// VectorSearcher is the similarity-search face of the document store.
// Filters are exact-match conjunctions over metadata.
type VectorSearcher interface {
	SearchSimilar(ctx context.Context, collection string, vector []float32, limit int, filters map[string]string) ([]Document, error)
}

// Embedder turns text into a query vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// KeywordSearcher is the lexical-search seam. A real implementation would be
// BM25 over an inverted index; any implementation must honor the same
// contract as VectorSearcher.
type KeywordSearcher interface {
	SearchKeywords(ctx context.Context, collection, query string, limit int, filters map[string]string) ([]Document, error)
}

// VectorKeywordProxy fakes lexical search by widening a vector search to
// limit*2. This is a recall-oriented substitute, not real keyword matching;
// it exists so hybrid fusion has a second list until a BM25 backend lands.
type VectorKeywordProxy struct {
	Searcher VectorSearcher
	Embedder Embedder
}

func (p *VectorKeywordProxy) SearchKeywords(ctx context.Context, collection, query string, limit int, filters map[string]string) ([]Document, error) {
	vec, err := p.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return p.Searcher.SearchSimilar(ctx, collection, vec, limit*2, filters)
}
