package service

import (
	"context"
	"encoding/json"
	"time"

	"legal-research-be/internal/dto"
	"legal-research-be/internal/model"
	"legal-research-be/internal/pkg/logger"
	"legal-research-be/internal/repository/contract"
	"legal-research-be/pkg/agents"
	"legal-research-be/pkg/events"
	pktNats "legal-research-be/pkg/nats"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type IResearchService interface {
	Research(ctx context.Context, req *dto.ResearchRequest) (*dto.ResearchResponse, error)
	ShowRun(ctx context.Context, id uuid.UUID) (*dto.PipelineRunResponse, error)
	RecentRuns(ctx context.Context, limit, offset int) ([]*dto.PipelineRunResponse, error)
}

type researchService struct {
	workflow       *agents.Workflow
	runRepo        contract.PipelineRunRepository
	eventPublisher *pktNats.Publisher
	sysLogger      logger.ILogger
}

func NewResearchService(
	workflow *agents.Workflow,
	runRepo contract.PipelineRunRepository,
	eventPublisher *pktNats.Publisher,
	sysLogger logger.ILogger,
) IResearchService {
	return &researchService{
		workflow:       workflow,
		runRepo:        runRepo,
		eventPublisher: eventPublisher,
		sysLogger:      sysLogger,
	}
}

func (s *researchService) Research(ctx context.Context, req *dto.ResearchRequest) (*dto.ResearchResponse, error) {
	started := time.Now()
	result := s.workflow.Run(ctx, req.Query, req.IncludeDeprecated)
	durationMs := time.Since(started).Milliseconds()

	runId := uuid.New()
	passed := result.Verification != nil && result.Verification.Passed

	run := &model.PipelineRun{
		Id:          runId,
		Query:       req.Query,
		Answer:      result.Answer,
		Confidence:  result.Confidence,
		Passed:      passed,
		ReplanCount: result.ReplanCount,
		Citations:   mustJSON(result.Citations),
		Trace:       mustJSON(result.Trace),
		Errors:      mustJSON(result.Errors),
		DurationMs:  durationMs,
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		// The answer is already computed; losing the audit record should not
		// fail the request.
		s.sysLogger.Warn("research", "Failed to persist pipeline run", map[string]interface{}{
			"run_id": runId.String(),
			"error":  err.Error(),
		})
	}

	if s.eventPublisher != nil {
		evt := events.NewResearchCompleted(runId.String(), req.Query, result.Confidence, passed)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.sysLogger.Warn("research", "Failed to publish research.completed event", map[string]interface{}{
				"run_id": runId.String(),
				"error":  err.Error(),
			})
		}
	}

	return &dto.ResearchResponse{
		RunId:        runId,
		Answer:       result.Answer,
		Citations:    result.Citations,
		Confidence:   result.Confidence,
		Reasoning:    result.Reasoning,
		Verification: result.Verification,
		ReplanCount:  result.ReplanCount,
		DurationMs:   durationMs,
		Trace:        result.Trace,
		Errors:       result.Errors,
	}, nil
}

func (s *researchService) ShowRun(ctx context.Context, id uuid.UUID) (*dto.PipelineRunResponse, error) {
	run, err := s.runRepo.FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, nil
	}
	return toPipelineRunResponse(run), nil
}

func (s *researchService) RecentRuns(ctx context.Context, limit, offset int) ([]*dto.PipelineRunResponse, error) {
	runs, err := s.runRepo.FindRecent(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PipelineRunResponse, len(runs))
	for i, run := range runs {
		out[i] = toPipelineRunResponse(run)
	}
	return out, nil
}

func toPipelineRunResponse(run *model.PipelineRun) *dto.PipelineRunResponse {
	var citations []string
	if len(run.Citations) > 0 {
		_ = json.Unmarshal(run.Citations, &citations)
	}
	return &dto.PipelineRunResponse{
		Id:          run.Id,
		Query:       run.Query,
		Answer:      run.Answer,
		Confidence:  run.Confidence,
		Passed:      run.Passed,
		ReplanCount: run.ReplanCount,
		Citations:   citations,
		DurationMs:  run.DurationMs,
		CreatedAt:   run.CreatedAt,
	}
}

// mustJSON encodes values we built ourselves; encoding them cannot fail.
func mustJSON(v interface{}) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(data)
}
