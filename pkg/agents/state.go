package agents

import (
	"fmt"
	"time"

	"legal-research-be/pkg/retrieval"
)

// PipelineState carries everything a single request accumulates while moving
// through the pipeline. Each request owns its state exclusively; nothing here
// is shared across requests.
type PipelineState struct {
	Query             string
	IncludeDeprecated bool

	Domains     []string
	SourceTypes []string
	Collections []string

	Plan      []PlanStep
	Documents []retrieval.Document
	Analysis  *Analysis

	Answer     string
	Citations  []string
	Confidence float64
	Reasoning  string

	Verification *VerificationResult
	ReplanCount  int

	History []HistoryEntry
	Errors  []string
	Timings map[string]time.Duration
}

// HistoryEntry is one append-only log record of a stage outcome.
type HistoryEntry struct {
	Step      int       `json:"step"`
	Action    string    `json:"action"`
	Result    string    `json:"result"`
	Timestamp time.Time `json:"timestamp"`
}

func NewPipelineState(query string, includeDeprecated bool) *PipelineState {
	return &PipelineState{
		Query:             query,
		IncludeDeprecated: includeDeprecated,
		Timings:           make(map[string]time.Duration),
	}
}

// AddHistory appends a stage record. History is append-only; stages never
// rewrite earlier entries, and replan attempts keep numbering where the
// previous attempt stopped.
func (s *PipelineState) AddHistory(action, format string, args ...any) {
	s.History = append(s.History, HistoryEntry{
		Step:      len(s.History) + 1,
		Action:    action,
		Result:    fmt.Sprintf(format, args...),
		Timestamp: time.Now(),
	})
}

// AppendDocuments merges newly retrieved documents into the accumulated list,
// skipping IDs already held. Earlier results survive replan attempts; only the
// count of genuinely new documents is returned.
func (s *PipelineState) AppendDocuments(docs []retrieval.Document) int {
	seen := make(map[string]bool, len(s.Documents))
	for _, d := range s.Documents {
		seen[d.ID] = true
	}
	added := 0
	for _, d := range docs {
		if seen[d.ID] {
			continue
		}
		seen[d.ID] = true
		s.Documents = append(s.Documents, d)
		added++
	}
	return added
}

// AddError records a stage failure without aborting the pipeline.
func (s *PipelineState) AddError(stage string, err error) {
	s.Errors = append(s.Errors, fmt.Sprintf("[%s] %v", stage, err))
}

// VerificationResult is the audit verdict on a drafted answer.
type VerificationResult struct {
	Passed       bool     `json:"passed"`
	Faithfulness float64  `json:"faithfulness_score"`
	Relevance    float64  `json:"relevance_score"`
	Consistency  float64  `json:"consistency_score"`
	Feedback     string   `json:"feedback"`
	Issues       []string `json:"issues"`
}

// Result is what the pipeline hands back to the caller.
type Result struct {
	Answer       string                   `json:"answer"`
	Citations    []string                 `json:"citations"`
	Confidence   float64                  `json:"confidence"`
	Reasoning    string                   `json:"reasoning,omitempty"`
	Verification *VerificationResult      `json:"verification,omitempty"`
	Documents    []retrieval.Document     `json:"documents,omitempty"`
	Trace        []HistoryEntry           `json:"trace,omitempty"`
	Errors       []string                 `json:"errors,omitempty"`
	Timings      map[string]time.Duration `json:"timings,omitempty"`
	ReplanCount  int                      `json:"replan_count"`
}
