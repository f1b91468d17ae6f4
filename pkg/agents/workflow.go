package agents

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"legal-research-be/pkg/retrieval"
)

// DefaultMaxReplans bounds the audit-failure retry loop.
const DefaultMaxReplans = 2

// Analyst runs only when the result set is worth cross-referencing.
const (
	analystDocThreshold  = 5
	analystWordThreshold = 10
)

const defaultRetrievalLimit = 10

// DocumentResearcher is the retrieval seam the workflow drives. Satisfied by
// *retrieval.Researcher.
type DocumentResearcher interface {
	ResearchAcrossCollections(ctx context.Context, query string, collections []string, limit int, filters map[string]string) ([]retrieval.Document, error)
}

// Workflow is the fixed pipeline:
// route -> plan -> retrieve -> [analyze | skip] -> synthesize -> audit.
// A failed audit loops back to plan, at most MaxReplans times.
type Workflow struct {
	router      *Router
	planner     *Planner
	researcher  DocumentResearcher
	analyst     *Analyst
	synthesizer *Synthesizer
	auditor     *Auditor
	logger      *log.Logger

	MaxReplans int
	// RetrievalLimit overrides the per-collection document limit when positive.
	RetrievalLimit int
}

func NewWorkflow(
	router *Router,
	planner *Planner,
	researcher DocumentResearcher,
	analyst *Analyst,
	synthesizer *Synthesizer,
	auditor *Auditor,
	logger *log.Logger,
) (*Workflow, error) {
	if router == nil || planner == nil || researcher == nil || analyst == nil || synthesizer == nil || auditor == nil {
		return nil, fmt.Errorf("workflow requires all stages wired")
	}
	return &Workflow{
		router:      router,
		planner:     planner,
		researcher:  researcher,
		analyst:     analyst,
		synthesizer: synthesizer,
		auditor:     auditor,
		logger:      logger,
		MaxReplans:  DefaultMaxReplans,
	}, nil
}

// Run executes the pipeline for one query. Stage failures are isolated into
// the state's error list; Run itself always produces a Result.
func (w *Workflow) Run(ctx context.Context, query string, includeDeprecated bool) *Result {
	start := time.Now()
	state := NewPipelineState(query, includeDeprecated)
	w.logger.Printf("[INFO] [WORKFLOW] Starting pipeline for query: %.100s", query)

	w.stage(state, "route", func() error {
		route := w.router.Route(ctx, query)
		state.Domains = route.Domains
		state.SourceTypes = route.SourceTypes
		state.Collections = route.Collections
		state.AddHistory("route", "domains=%v collections=%v", route.Domains, route.Collections)
		return nil
	})

	for {
		w.runAttempt(ctx, state)

		if state.Verification != nil && state.Verification.Passed {
			break
		}
		if state.ReplanCount >= w.MaxReplans {
			state.AddHistory("replan", "giving up after %d replans", state.ReplanCount)
			break
		}
		state.ReplanCount++
		state.AddHistory("replan", "audit failed, replanning (attempt %d of %d)", state.ReplanCount, w.MaxReplans)
		w.logger.Printf("[WARN] [WORKFLOW] Audit failed, replan %d/%d", state.ReplanCount, w.MaxReplans)
	}

	state.Timings["total"] = time.Since(start)
	w.logger.Printf("[INFO] [WORKFLOW] Pipeline finished in %s (%d errors)", state.Timings["total"], len(state.Errors))
	return w.buildResult(state)
}

// runAttempt executes one plan-through-audit pass over the state.
func (w *Workflow) runAttempt(ctx context.Context, state *PipelineState) {
	w.stage(state, "plan", func() error {
		state.Plan = w.planner.Plan(ctx, state.Query, state.Domains, state.Collections, auditFeedback(state.Verification))
		state.AddHistory("plan", "%d steps", len(state.Plan))
		return nil
	})

	w.stage(state, "retrieve", func() error {
		query, collections, limit := w.retrievalTarget(state)
		filters := map[string]string{}
		if !state.IncludeDeprecated {
			filters["status"] = "active"
		}
		docs, err := w.researcher.ResearchAcrossCollections(ctx, query, collections, limit, filters)
		if err != nil {
			return fmt.Errorf("research: %w", err)
		}
		added := state.AppendDocuments(docs)
		state.AddHistory("retrieve", "%d documents (%d new) from %v", len(docs), added, collections)
		return nil
	})

	if w.shouldAnalyze(state) {
		w.stage(state, "analyze", func() error {
			state.Analysis = w.analyst.Analyze(ctx, state.Documents)
			state.AddHistory("analyze", "%d cross-references", len(state.Analysis.CrossReferences))
			return nil
		})
	} else {
		state.AddHistory("analyze", "skipped, simple query")
	}

	w.stage(state, "synthesize", func() error {
		synthesis := w.synthesizer.Synthesize(ctx, state.Query, state.Documents, state.Analysis)
		state.Answer = synthesis.Answer
		state.Citations = synthesis.Citations
		state.Confidence = synthesis.Confidence
		state.Reasoning = synthesis.Reasoning
		state.AddHistory("synthesize", "%d citations, confidence %.2f", len(synthesis.Citations), synthesis.Confidence)
		return nil
	})

	w.stage(state, "audit", func() error {
		state.Verification = w.auditor.Audit(ctx, state.Query, state.Answer, state.Documents)
		state.AddHistory("audit", "passed=%t issues=%d", state.Verification.Passed, len(state.Verification.Issues))
		return nil
	})
}

// retrievalTarget resolves the effective query, collections and limit. The
// plan's first researcher step can narrow all three.
func (w *Workflow) retrievalTarget(state *PipelineState) (string, []string, int) {
	query := state.Query
	collections := state.Collections
	limit := w.RetrievalLimit
	if limit <= 0 {
		limit = defaultRetrievalLimit
	}

	for _, step := range state.Plan {
		if step.Tool != ToolResearcher {
			continue
		}
		if q := step.paramString("query"); q != "" {
			query = q
		}
		if c := step.paramString("collection"); c != "" {
			collections = []string{c}
		}
		limit = step.Limit(limit)
		break
	}
	if len(collections) == 0 {
		collections = AllCollections()
	}
	return query, collections, limit
}

// auditFeedback condenses a failed verdict into planner guidance. Empty on
// the first attempt and after a passed audit.
func auditFeedback(v *VerificationResult) string {
	if v == nil || v.Passed {
		return ""
	}
	var parts []string
	if v.Feedback != "" {
		parts = append(parts, v.Feedback)
	}
	parts = append(parts, v.Issues...)
	if len(parts) == 0 {
		return "Cevap doğrulamadan geçemedi."
	}
	return strings.Join(parts, "; ")
}

func (w *Workflow) shouldAnalyze(state *PipelineState) bool {
	return len(state.Documents) > analystDocThreshold ||
		len(state.Collections) > 1 ||
		len(strings.Fields(state.Query)) > analystWordThreshold
}

func (w *Workflow) stage(state *PipelineState, name string, fn func() error) {
	start := time.Now()
	err := fn()
	state.Timings[name] += time.Since(start)
	if err != nil {
		w.logger.Printf("[ERROR] [WORKFLOW] Stage %s failed: %v", name, err)
		state.AddError(name, err)
	}
}

func (w *Workflow) buildResult(state *PipelineState) *Result {
	return &Result{
		Answer:       state.Answer,
		Citations:    state.Citations,
		Confidence:   state.Confidence,
		Reasoning:    state.Reasoning,
		Verification: state.Verification,
		Documents:    state.Documents,
		Trace:        state.History,
		Errors:       state.Errors,
		Timings:      state.Timings,
		ReplanCount:  state.ReplanCount,
	}
}
