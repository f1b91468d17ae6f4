package service

import (
	"context"
	"encoding/json"
	"log"

	"legal-research-be/internal/repository/contract"
	"legal-research-be/pkg/cache"
	"legal-research-be/pkg/embedding"
	"legal-research-be/pkg/retrieval"
)

// documentSearcher exposes the document repository as the similarity-search
// backend the retrieval engine expects.
type documentSearcher struct {
	repo   contract.DocumentRepository
	logger *log.Logger
}

func NewDocumentSearcher(repo contract.DocumentRepository, logger *log.Logger) retrieval.VectorSearcher {
	return &documentSearcher{repo: repo, logger: logger}
}

func (s *documentSearcher) SearchSimilar(ctx context.Context, collection string, vector []float32, limit int, filters map[string]string) ([]retrieval.Document, error) {
	scored, err := s.repo.SearchSimilarWithScore(ctx, collection, vector, limit, filters)
	if err != nil {
		return nil, err
	}

	docs := make([]retrieval.Document, 0, len(scored))
	for _, sd := range scored {
		m := sd.Document

		var metadata map[string]any
		if len(m.Metadata) > 0 {
			if err := json.Unmarshal(m.Metadata, &metadata); err != nil {
				s.logger.Printf("[WARN] Malformed metadata on document %s: %v", m.Id, err)
				metadata = nil
			}
		}

		docs = append(docs, retrieval.Document{
			ID:         m.Id.String(),
			Content:    m.Content,
			Metadata:   metadata,
			Score:      sd.Similarity,
			Collection: m.Collection,
		})
	}
	return docs, nil
}

// queryEmbedder turns query text into vectors, caching them so repeated
// questions skip the embedding provider entirely.
type queryEmbedder struct {
	provider embedding.EmbeddingProvider
	cache    *cache.Manager
}

func NewQueryEmbedder(provider embedding.EmbeddingProvider, cacheManager *cache.Manager) retrieval.Embedder {
	return &queryEmbedder{provider: provider, cache: cacheManager}
}

func (e *queryEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cache.EmbeddingKey(text)

	var vector []float32
	if e.cache != nil && e.cache.Get(ctx, key, &vector) {
		return vector, nil
	}

	res, err := e.provider.Generate(text, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, err
	}
	vector = res.Embedding.Values

	if e.cache != nil {
		e.cache.Set(ctx, key, vector, cache.EmbeddingTTL)
	}
	return vector, nil
}
