package service

import (
	"bytes"
	"context"
	"io"
	"log"
	"testing"

	"legal-research-be/internal/model"
	"legal-research-be/internal/repository/contract"
	"legal-research-be/pkg/cache"
	"legal-research-be/pkg/embedding"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fakeDocumentRepo struct {
	contract.DocumentRepository
	scored  []*contract.ScoredDocument
	filters map[string]string
}

func (f *fakeDocumentRepo) SearchSimilarWithScore(_ context.Context, _ string, _ []float32, _ int, filters map[string]string) ([]*contract.ScoredDocument, error) {
	f.filters = filters
	return f.scored, nil
}

type fakeEmbeddingProvider struct {
	calls int
}

func (f *fakeEmbeddingProvider) Generate(_ string, _ string) (*embedding.EmbeddingResponse, error) {
	f.calls++
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2, 0.3}},
	}, nil
}

func TestDocumentSearcherMapsStoredDocuments(t *testing.T) {
	id := uuid.New()
	repo := &fakeDocumentRepo{
		scored: []*contract.ScoredDocument{
			{
				Document: &model.LegalDocument{
					Id:         id,
					Collection: "ticaret_hukuku",
					Title:      "TTK Madde 11",
					Content:    "TTK m.11: Ticari işletme tanımı.",
					Metadata:   datatypes.JSON(`{"kaynak":"TTK","madde_no":"11"}`),
				},
				Similarity: 0.87,
			},
		},
	}

	searcher := NewDocumentSearcher(repo, log.New(io.Discard, "", 0))
	docs, err := searcher.SearchSimilar(context.Background(), "ticaret_hukuku", []float32{0.1}, 5, map[string]string{"status": "active"})
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, id.String(), docs[0].ID)
	assert.Equal(t, "ticaret_hukuku", docs[0].Collection)
	assert.Equal(t, 0.87, docs[0].Score)
	assert.Equal(t, "TTK", docs[0].Metadata["kaynak"])
	assert.Equal(t, "11", docs[0].Metadata["madde_no"])
	assert.Equal(t, map[string]string{"status": "active"}, repo.filters)
}

func TestDocumentSearcherToleratesMalformedMetadata(t *testing.T) {
	repo := &fakeDocumentRepo{
		scored: []*contract.ScoredDocument{
			{
				Document: &model.LegalDocument{
					Id:       uuid.New(),
					Content:  "içerik",
					Metadata: datatypes.JSON(`{not-json`),
				},
				Similarity: 0.5,
			},
		},
	}

	var logged bytes.Buffer
	searcher := NewDocumentSearcher(repo, log.New(&logged, "", 0))
	docs, err := searcher.SearchSimilar(context.Background(), "genel", nil, 5, nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Nil(t, docs[0].Metadata)
	assert.Contains(t, logged.String(), "Malformed metadata", "warning goes to the injected logger")
}

func TestQueryEmbedderCachesVectors(t *testing.T) {
	provider := &fakeEmbeddingProvider{}
	cacheManager := cache.NewManager(nil, log.New(io.Discard, "", 0))

	embedder := NewQueryEmbedder(provider, cacheManager)

	first, err := embedder.Embed(context.Background(), "ticari işletme nedir")
	require.NoError(t, err)
	second, err := embedder.Embed(context.Background(), "ticari işletme nedir")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.calls, "second embed should be served from cache")

	_, err = embedder.Embed(context.Background(), "kira sözleşmesi")
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls, "different text misses the cache")
}
