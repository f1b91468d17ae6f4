package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PipelineRun stores the outcome and full trace of one research pipeline
// execution, for debugging and audit surfaces.
type PipelineRun struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Query       string         `gorm:"type:text;not null"`
	Answer      string         `gorm:"type:text"`
	Confidence  float64        `gorm:"not null;default:0"`
	Passed      bool           `gorm:"not null;default:false"`
	ReplanCount int            `gorm:"not null;default:0"`
	Citations   datatypes.JSON `gorm:"type:jsonb"`
	Trace       datatypes.JSON `gorm:"type:jsonb"`
	Errors      datatypes.JSON `gorm:"type:jsonb"`
	DurationMs  int64          `gorm:"not null;default:0"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index"`
}

func (PipelineRun) TableName() string {
	return "pipeline_runs"
}
