package implementation

import (
	"context"
	"errors"

	"legal-research-be/internal/model"
	"legal-research-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DocumentRepositoryImpl struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) contract.DocumentRepository {
	return &DocumentRepositoryImpl{db: db}
}

func (r *DocumentRepositoryImpl) Create(ctx context.Context, doc *model.LegalDocument) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *DocumentRepositoryImpl) Update(ctx context.Context, doc *model.LegalDocument) error {
	return r.db.WithContext(ctx).Save(doc).Error
}

func (r *DocumentRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*model.LegalDocument, error) {
	var m model.LegalDocument
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *DocumentRepositoryImpl) DeprecatePrevious(ctx context.Context, collection, title string, keep uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.LegalDocument{}).
		Where("collection = ? AND title = ? AND id <> ? AND status = ?",
			collection, title, keep, model.DocumentStatusActive).
		Update("status", model.DocumentStatusDeprecated)
	return res.RowsAffected, res.Error
}

// SearchSimilarWithScore computes cosine similarity in the database.
// Cosine distance in pgvector is 1 - cosine_similarity, so
// 1 - (embedding <=> query_vector) is the similarity.
func (r *DocumentRepositoryImpl) SearchSimilarWithScore(ctx context.Context, collection string, embedding []float32, limit int, filters map[string]string) ([]*contract.ScoredDocument, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.LegalDocument
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	// Rows awaiting the embedding consumer have a NULL vector; with DESC
	// ordering their NULL similarity would sort first.
	query := r.db.WithContext(ctx).
		Table("legal_documents").
		Select("legal_documents.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("collection = ?", collection).
		Where("embedding IS NOT NULL").
		Where("deleted_at IS NULL")

	for key, value := range filters {
		if key == "status" {
			query = query.Where("status = ?", value)
		} else {
			query = query.Where("metadata ->> ? = ?", key, value)
		}
	}

	err := query.
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredDocument, len(results))
	for i, res := range results {
		doc := res.LegalDocument
		scored[i] = &contract.ScoredDocument{
			Document:   &doc,
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

func (r *DocumentRepositoryImpl) CountByCollection(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Collection string
		Total      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.LegalDocument{}).
		Select("collection, count(*) as total").
		Group("collection").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Collection] = r.Total
	}
	return counts, nil
}
