package model

import (
	"time"

	"gorm.io/datatypes"
)

// CitationNode persists one vertex of the citation graph. CitedBy and Cites
// are JSON arrays of strings.
type CitationNode struct {
	Reference     string         `gorm:"type:varchar(128);primaryKey"`
	CitedBy       datatypes.JSON `gorm:"type:jsonb"`
	Cites         datatypes.JSON `gorm:"type:jsonb"`
	CitationCount int            `gorm:"not null;default:0"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
}

func (CitationNode) TableName() string {
	return "citation_nodes"
}

// DocumentCitation records which references a document cites, as a JSON array.
type DocumentCitation struct {
	DocumentId string         `gorm:"type:varchar(64);primaryKey"`
	References datatypes.JSON `gorm:"type:jsonb"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
}

func (DocumentCitation) TableName() string {
	return "document_citations"
}
