package service

import (
	"context"
	"encoding/json"
	"time"

	"legal-research-be/internal/dto"
	"legal-research-be/internal/model"
	"legal-research-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type IDocumentService interface {
	Ingest(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*model.LegalDocument, error)
	CollectionStats(ctx context.Context) (*dto.CollectionStatsResponse, error)
}

type documentService struct {
	docRepo          contract.DocumentRepository
	publisherService IPublisherService
}

func NewDocumentService(
	docRepo contract.DocumentRepository,
	publisherService IPublisherService,
) IDocumentService {
	return &documentService{
		docRepo:          docRepo,
		publisherService: publisherService,
	}
}

// Ingest stores the document immediately and defers embedding to the
// consumer. The row is searchable once the consumer fills its vector.
func (s *documentService) Ingest(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error) {
	metadata := datatypes.JSON("{}")
	if req.Metadata != nil {
		data, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, err
		}
		metadata = datatypes.JSON(data)
	}

	doc := model.LegalDocument{
		Id:         uuid.New(),
		Collection: req.Collection,
		Title:      req.Title,
		Content:    req.Content,
		Metadata:   metadata,
		Status:     model.DocumentStatusActive,
		Version:    1,
		CreatedAt:  time.Now(),
	}
	if err := s.docRepo.Create(ctx, &doc); err != nil {
		return nil, err
	}

	msgPayload := dto.PublishIngestDocumentMessage{
		DocumentId: doc.Id,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		return nil, err
	}

	return &dto.IngestDocumentResponse{
		Id: doc.Id,
	}, nil
}

func (s *documentService) Show(ctx context.Context, id uuid.UUID) (*model.LegalDocument, error) {
	return s.docRepo.FindById(ctx, id)
}

func (s *documentService) CollectionStats(ctx context.Context) (*dto.CollectionStatsResponse, error) {
	counts, err := s.docRepo.CountByCollection(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &dto.CollectionStatsResponse{
		Collections: counts,
		Total:       total,
	}, nil
}
