package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DocumentStatusActive marks the current version of a provision; superseded
// versions carry "deprecated" and are excluded from retrieval by default.
const (
	DocumentStatusActive     = "active"
	DocumentStatusDeprecated = "deprecated"
)

type LegalDocument struct {
	Id         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Collection string          `gorm:"type:varchar(64);not null;index"`
	Title      string          `gorm:"type:varchar(255)"`
	Content    string          `gorm:"type:text;not null"`
	Metadata   datatypes.JSON   `gorm:"type:jsonb"`
	Embedding  *pgvector.Vector `gorm:"type:vector(768)"` // NULL until the consumer embeds it; 768 dims per Gemini text-embedding-004
	Status     string          `gorm:"type:varchar(16);not null;default:active;index"`
	Version    int             `gorm:"default:1"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime"`
	DeletedAt  gorm.DeletedAt  `gorm:"index"`
}

func (LegalDocument) TableName() string {
	return "legal_documents"
}
