package dto

import (
	"time"

	"legal-research-be/pkg/agents"

	"github.com/google/uuid"
)

type ResearchRequest struct {
	Query             string `json:"query" validate:"required,min=3"`
	IncludeDeprecated bool   `json:"include_deprecated"`
}

type ResearchResponse struct {
	RunId        uuid.UUID                  `json:"run_id"`
	Answer       string                     `json:"answer"`
	Citations    []string                   `json:"citations"`
	Confidence   float64                    `json:"confidence"`
	Reasoning    string                     `json:"reasoning,omitempty"`
	Verification *agents.VerificationResult `json:"verification,omitempty"`
	ReplanCount  int                        `json:"replan_count"`
	DurationMs   int64                      `json:"duration_ms"`
	Trace        []agents.HistoryEntry      `json:"trace,omitempty"`
	Errors       []string                   `json:"errors,omitempty"`
}

type PipelineRunResponse struct {
	Id          uuid.UUID `json:"id"`
	Query       string    `json:"query"`
	Answer      string    `json:"answer"`
	Confidence  float64   `json:"confidence"`
	Passed      bool      `json:"passed"`
	ReplanCount int       `json:"replan_count"`
	Citations   []string  `json:"citations"`
	DurationMs  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}
