package contract

import (
	"context"

	"legal-research-be/internal/model"

	"github.com/google/uuid"
)

type PipelineRunRepository interface {
	Create(ctx context.Context, run *model.PipelineRun) error
	FindById(ctx context.Context, id uuid.UUID) (*model.PipelineRun, error)
	FindRecent(ctx context.Context, limit, offset int) ([]*model.PipelineRun, error)
}
