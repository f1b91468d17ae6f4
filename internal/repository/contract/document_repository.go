package contract

import (
	"context"

	"legal-research-be/internal/model"

	"github.com/google/uuid"
)

// ScoredDocument pairs a stored document with its cosine similarity to a
// query vector.
type ScoredDocument struct {
	Document   *model.LegalDocument
	Similarity float64
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *model.LegalDocument) error
	Update(ctx context.Context, doc *model.LegalDocument) error
	FindById(ctx context.Context, id uuid.UUID) (*model.LegalDocument, error)

	// DeprecatePrevious marks older versions of the same provision (same
	// collection and title) as deprecated, returning how many were touched.
	DeprecatePrevious(ctx context.Context, collection, title string, keep uuid.UUID) (int64, error)

	// SearchSimilarWithScore runs cosine-similarity search inside one
	// collection. Filters are exact matches: the "status" key targets the
	// status column, any other key targets a metadata field.
	SearchSimilarWithScore(ctx context.Context, collection string, embedding []float32, limit int, filters map[string]string) ([]*ScoredDocument, error)

	CountByCollection(ctx context.Context) (map[string]int64, error)
}
