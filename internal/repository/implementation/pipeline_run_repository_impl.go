package implementation

import (
	"context"
	"errors"

	"legal-research-be/internal/model"
	"legal-research-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PipelineRunRepositoryImpl struct {
	db *gorm.DB
}

func NewPipelineRunRepository(db *gorm.DB) contract.PipelineRunRepository {
	return &PipelineRunRepositoryImpl{db: db}
}

func (r *PipelineRunRepositoryImpl) Create(ctx context.Context, run *model.PipelineRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *PipelineRunRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*model.PipelineRun, error) {
	var m model.PipelineRun
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *PipelineRunRepositoryImpl) FindRecent(ctx context.Context, limit, offset int) ([]*model.PipelineRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []*model.PipelineRun
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&runs).Error
	return runs, err
}
