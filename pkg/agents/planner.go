package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"legal-research-be/pkg/llm"
)

// PlanStep is one unit of work in an execution plan. Justification is an
// execution trace for humans, never consulted for control flow.
type PlanStep struct {
	Step          int            `json:"step"`
	Action        string         `json:"action"`
	Tool          ToolKind       `json:"tool"`
	Params        map[string]any `json:"params"`
	Justification string         `json:"justification"`
}

// Limit reads the step's retrieval limit, falling back when absent. JSON
// numbers arrive as float64.
func (s PlanStep) Limit(fallback int) int {
	if v, ok := s.Params["limit"].(float64); ok && v > 0 {
		return int(v)
	}
	return fallback
}

func (s PlanStep) paramString(key string) string {
	v, _ := s.Params[key].(string)
	return v
}

// Planner decomposes a query into ordered steps.
type Planner struct {
	llm    llm.Provider
	logger *log.Logger
}

func NewPlanner(provider llm.Provider, logger *log.Logger) *Planner {
	return &Planner{llm: provider, logger: logger}
}

// Queries that only want the literal text of one article skip the model.
var (
	simpleArticlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(TTK|TBK|İİK|IIK|TMK|TKHK|HMK)\s+(?:madde\s+)?(\d+)\b`),
		regexp.MustCompile(`(?i)(TTK|TBK|İİK|IIK|TMK|TKHK|HMK)\s+m\.(\d+)\b`),
	}
	simpleKeywords = []string{"nedir", "ne demek", "metni", "içeriği", "tam metni"}
)

const plannerPrompt = `Sen hukuki sorgular için stratejik planlama yapan bir yapay zeka asistanısın.

Kullanılabilir araçlar:
1. researcher: vektör veritabanında semantik arama. Koleksiyonlar: %COLLECTIONS%
2. web_scout: güncel içtihat ve mahkeme kararları için internet araması
3. analyst: bulunan belgeleri analiz etme ve çapraz referanslama

Plan kuralları:
- Basit sorgular: 1-2 adım
- Orta sorgular: 2-4 adım
- Karmaşık sorgular: 4-7 adım

Sadece JSON formatında yanıt ver:
{"steps": [{"step": 1, "action": "...", "tool": "researcher", "params": {"collection": "...", "query": "..."}, "justification": "..."}], "reasoning": "...", "estimated_complexity": "simple"}

Sorgu: %QUERY%
Hukuk dalı: %DOMAINS%`

const replanPrompt = `

Önceki deneme denetimden geçemedi. Denetçi geri bildirimi:
%FEEDBACK%

Bu eksikleri giderecek farklı bir arama stratejisi kur: başka koleksiyonlar,
daha geniş limitler veya yeniden formüle edilmiş sorgular dene.`

// Plan never fails; every failure path degrades to a single best-effort
// search step. A non-empty feedback marks a replan after a failed audit: the
// fast path is skipped so the model can steer around whatever the first
// attempt missed.
func (p *Planner) Plan(ctx context.Context, query string, domains, collections []string, feedback string) []PlanStep {
	if feedback == "" && p.isSimpleQuery(query) {
		p.logger.Printf("[INFO] [PLANNER] Fast path: single article retrieval")
		return p.simplePlan(query, collections)
	}

	steps, err := p.decompose(ctx, query, domains, collections, feedback)
	if err != nil {
		p.logger.Printf("[WARN] [PLANNER] Decomposition failed: %v. Using fallback plan", err)
		return p.fallbackPlan(query, collections)
	}
	p.logger.Printf("[INFO] [PLANNER] Created plan with %d steps", len(steps))
	return steps
}

// isSimpleQuery detects "give me the text of article N" phrasing: a statute
// article pattern plus a literal-text keyword.
func (p *Planner) isSimpleQuery(query string) bool {
	matched := false
	for _, pattern := range simpleArticlePatterns {
		if pattern.MatchString(query) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	lower := lowerTurkish(query)
	for _, keyword := range simpleKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func (p *Planner) simplePlan(query string, collections []string) []PlanStep {
	return []PlanStep{{
		Step:   1,
		Action: fmt.Sprintf("Retrieve article for: %s", query),
		Tool:   ToolResearcher,
		Params: map[string]any{
			"collection": firstCollection(collections),
			"query":      query,
			"limit":      float64(5),
		},
		Justification: "Direct article retrieval",
	}}
}

func (p *Planner) fallbackPlan(query string, collections []string) []PlanStep {
	return []PlanStep{{
		Step:   1,
		Action: fmt.Sprintf("Search for: %s", query),
		Tool:   ToolResearcher,
		Params: map[string]any{
			"collection": firstCollection(collections),
			"query":      query,
		},
		Justification: "Fallback simple search",
	}}
}

func (p *Planner) decompose(ctx context.Context, query string, domains, collections []string, feedback string) ([]PlanStep, error) {
	prompt := strings.NewReplacer(
		"%QUERY%", query,
		"%DOMAINS%", strings.Join(domains, ", "),
		"%COLLECTIONS%", strings.Join(collections, ", "),
	).Replace(plannerPrompt)
	if feedback != "" {
		prompt += strings.Replace(replanPrompt, "%FEEDBACK%", feedback, 1)
	}

	response, err := p.llm.Generate(ctx, prompt, llm.WithTemperature(0.1))
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Steps []struct {
			Step          int            `json:"step"`
			Action        string         `json:"action"`
			Tool          string         `json:"tool"`
			Params        map[string]any `json:"params"`
			Justification string         `json:"justification"`
		} `json:"steps"`
	}
	if err := json.Unmarshal([]byte(extractJSON(response)), &parsed); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	if len(parsed.Steps) == 0 {
		return nil, fmt.Errorf("empty plan")
	}

	steps := make([]PlanStep, len(parsed.Steps))
	for i, raw := range parsed.Steps {
		step := raw.Step
		if step == 0 {
			step = i + 1
		}
		params := raw.Params
		if params == nil {
			params = map[string]any{"query": query}
		}
		steps[i] = PlanStep{
			Step:          step,
			Action:        raw.Action,
			Tool:          ParseToolKind(raw.Tool),
			Params:        params,
			Justification: raw.Justification,
		}
	}
	return steps, nil
}

func firstCollection(collections []string) string {
	if len(collections) > 0 {
		return collections[0]
	}
	return "ticaret_hukuku"
}
