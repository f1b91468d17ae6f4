package dto

import "github.com/google/uuid"

type IngestDocumentRequest struct {
	Collection string                 `json:"collection" validate:"required"`
	Title      string                 `json:"title" validate:"required"`
	Content    string                 `json:"content" validate:"required"`
	Metadata   map[string]interface{} `json:"metadata"`
}

type IngestDocumentResponse struct {
	Id uuid.UUID `json:"id"`
}

// PublishIngestDocumentMessage is the payload queued for the embedding
// consumer after a document row is created.
type PublishIngestDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}

type CollectionStatsResponse struct {
	Collections map[string]int64 `json:"collections"`
	Total       int64            `json:"total"`
}
