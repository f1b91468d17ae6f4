package retrieval

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"
)

// DefaultRerankTopN bounds how many fused results survive the rerank stage.
const DefaultRerankTopN = 5

// Engine executes single-collection searches under a selectable strategy.
type Engine struct {
	searcher VectorSearcher
	keyword  KeywordSearcher
	embedder Embedder
	logger   *log.Logger

	// RerankTopN overrides DefaultRerankTopN when positive.
	RerankTopN int
}

// NewEngine wires the engine. keyword may be nil; the vector-widening proxy
// is used in that case.
func NewEngine(searcher VectorSearcher, keyword KeywordSearcher, embedder Embedder, logger *log.Logger) *Engine {
	if keyword == nil {
		keyword = &VectorKeywordProxy{Searcher: searcher, Embedder: embedder}
	}
	return &Engine{
		searcher: searcher,
		keyword:  keyword,
		embedder: embedder,
		logger:   logger,
	}
}

// Search runs one strategy against one collection.
func (e *Engine) Search(ctx context.Context, query, collection string, strategy Strategy, limit int, filters map[string]string) ([]Document, error) {
	switch strategy {
	case StrategyVector, "":
		return e.vectorSearch(ctx, query, collection, limit, filters)
	case StrategyKeyword:
		return e.keyword.SearchKeywords(ctx, collection, query, limit, filters)
	case StrategyHybrid:
		return e.hybridSearch(ctx, query, collection, limit, filters)
	default:
		return nil, fmt.Errorf("unknown search strategy: %s", strategy)
	}
}

func (e *Engine) vectorSearch(ctx context.Context, query, collection string, limit int, filters map[string]string) ([]Document, error) {
	vec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return e.searcher.SearchSimilar(ctx, collection, vec, limit, filters)
}

// hybridSearch runs the two constituent strategies concurrently, fuses the
// ranked lists with RRF and keeps the rerank top-N.
func (e *Engine) hybridSearch(ctx context.Context, query, collection string, limit int, filters map[string]string) ([]Document, error) {
	var vectorDocs, keywordDocs []Document

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		docs, err := e.vectorSearch(gctx, query, collection, limit, filters)
		if err != nil {
			return fmt.Errorf("vector strategy: %w", err)
		}
		vectorDocs = docs
		return nil
	})
	g.Go(func() error {
		docs, err := e.keyword.SearchKeywords(gctx, collection, query, limit, filters)
		if err != nil {
			return fmt.Errorf("keyword strategy: %w", err)
		}
		keywordDocs = docs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fused := FuseRRF(vectorDocs, keywordDocs)
	topN := e.RerankTopN
	if topN == 0 {
		topN = DefaultRerankTopN
	}
	reranked := Rerank(fused, topN)

	e.logger.Printf("[INFO] [SEARCH] Hybrid on %s: %d vector + %d keyword -> %d fused -> %d reranked",
		collection, len(vectorDocs), len(keywordDocs), len(fused), len(reranked))
	return reranked, nil
}
