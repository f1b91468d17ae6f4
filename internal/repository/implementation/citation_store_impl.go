package implementation

import (
	"context"
	"encoding/json"
	"fmt"

	"legal-research-be/internal/model"
	"legal-research-be/pkg/citation"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CitationStoreImpl persists the citation graph. It implements the graph's
// Store contract; the graph stays authoritative in memory and treats this
// store as best-effort.
type CitationStoreImpl struct {
	db *gorm.DB
}

func NewCitationStore(db *gorm.DB) citation.Store {
	return &CitationStoreImpl{db: db}
}

func (s *CitationStoreImpl) SaveNode(ctx context.Context, node citation.Node) error {
	citedBy, err := json.Marshal(node.CitedBy)
	if err != nil {
		return fmt.Errorf("encode cited_by: %w", err)
	}
	cites, err := json.Marshal(node.Cites)
	if err != nil {
		return fmt.Errorf("encode cites: %w", err)
	}

	m := model.CitationNode{
		Reference:     node.Reference,
		CitedBy:       citedBy,
		Cites:         cites,
		CitationCount: node.CitationCount,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "reference"}},
			DoUpdates: clause.AssignmentColumns([]string{"cited_by", "cites", "citation_count", "updated_at"}),
		}).
		Create(&m).Error
}

func (s *CitationStoreImpl) SaveDocumentCitations(ctx context.Context, docID string, references []string) error {
	refs, err := json.Marshal(references)
	if err != nil {
		return fmt.Errorf("encode references: %w", err)
	}

	m := model.DocumentCitation{
		DocumentId: docID,
		References: refs,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "document_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"references", "updated_at"}),
		}).
		Create(&m).Error
}

func (s *CitationStoreImpl) LoadNodes(ctx context.Context) ([]citation.Node, map[string][]string, error) {
	var nodeModels []model.CitationNode
	if err := s.db.WithContext(ctx).Find(&nodeModels).Error; err != nil {
		return nil, nil, err
	}

	nodes := make([]citation.Node, 0, len(nodeModels))
	for _, m := range nodeModels {
		node := citation.Node{
			Reference:     m.Reference,
			CitationCount: m.CitationCount,
		}
		if len(m.CitedBy) > 0 {
			if err := json.Unmarshal(m.CitedBy, &node.CitedBy); err != nil {
				return nil, nil, fmt.Errorf("decode cited_by of %s: %w", m.Reference, err)
			}
		}
		if len(m.Cites) > 0 {
			if err := json.Unmarshal(m.Cites, &node.Cites); err != nil {
				return nil, nil, fmt.Errorf("decode cites of %s: %w", m.Reference, err)
			}
		}
		nodes = append(nodes, node)
	}

	var docModels []model.DocumentCitation
	if err := s.db.WithContext(ctx).Find(&docModels).Error; err != nil {
		return nil, nil, err
	}

	docs := make(map[string][]string, len(docModels))
	for _, m := range docModels {
		var refs []string
		if len(m.References) > 0 {
			if err := json.Unmarshal(m.References, &refs); err != nil {
				return nil, nil, fmt.Errorf("decode references of %s: %w", m.DocumentId, err)
			}
		}
		docs[m.DocumentId] = refs
	}

	return nodes, docs, nil
}

func (s *CitationStoreImpl) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&model.CitationNode{}).Error; err != nil {
		return err
	}
	return s.db.WithContext(ctx).Where("1 = 1").Delete(&model.DocumentCitation{}).Error
}
