package agents

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestPlanFastPathSingleArticle(t *testing.T) {
	provider := &fakeLLM{fn: func(string) (string, error) {
		return "", errors.New("must not be called")
	}}
	planner := NewPlanner(provider, discard())

	plan := planner.Plan(context.Background(), "TTK 11. maddesinin tam metni", []string{"ticaret"}, []string{"ticaret_hukuku"}, "")

	if len(plan) != 1 {
		t.Fatalf("plan = %+v, want single step", plan)
	}
	step := plan[0]
	if step.Tool != ToolResearcher {
		t.Errorf("tool = %s, want researcher", step.Tool)
	}
	if got := step.Limit(0); got != 5 {
		t.Errorf("limit = %d, want 5", got)
	}
	if step.Params["collection"] != "ticaret_hukuku" {
		t.Errorf("collection = %v", step.Params["collection"])
	}
	if provider.callCount() != 0 {
		t.Errorf("fast path made %d model calls", provider.callCount())
	}
}

func TestPlanArticlePatternAloneIsNotSimple(t *testing.T) {
	// An article reference without a literal-text keyword still needs the
	// model: the user may want interpretation, not the raw text.
	provider := &fakeLLM{fn: func(string) (string, error) {
		return `{"steps": [{"step": 1, "action": "ara", "tool": "researcher", "params": {"query": "TTK 11 uygulaması"}}]}`, nil
	}}
	planner := NewPlanner(provider, discard())

	planner.Plan(context.Background(), "TTK 11 uygulamasında tacir sayılmanın sonuçları", nil, []string{"ticaret_hukuku"}, "")
	if provider.callCount() != 1 {
		t.Errorf("model calls = %d, want 1", provider.callCount())
	}
}

func TestPlanSlowPathCoercesUnknownTool(t *testing.T) {
	provider := &fakeLLM{fn: func(string) (string, error) {
		return `{"steps": [
			{"step": 1, "action": "madde ara", "tool": "researcher", "params": {"collection": "borclar_hukuku", "query": "TBK 49"}},
			{"action": "karar tara", "tool": "quantum_search", "params": {"query": "tazminat içtihat"}}
		], "reasoning": "iki kaynak", "estimated_complexity": "medium"}`, nil
	}}
	planner := NewPlanner(provider, discard())

	plan := planner.Plan(context.Background(), "haksız fiil tazminatında kusur şartının içtihatlardaki yorumu", []string{"borclar"}, []string{"borclar_hukuku"}, "")

	if len(plan) != 2 {
		t.Fatalf("plan = %+v, want two steps", plan)
	}
	if plan[1].Tool != ToolResearcher {
		t.Errorf("unknown tool coerced to %s, want researcher", plan[1].Tool)
	}
	if plan[1].Step != 2 {
		t.Errorf("missing step number filled as %d, want 2", plan[1].Step)
	}
}

func TestPlanFailureFallsBackToSingleSearch(t *testing.T) {
	provider := &fakeLLM{fn: func(string) (string, error) {
		return "", errors.New("model down")
	}}
	planner := NewPlanner(provider, discard())

	plan := planner.Plan(context.Background(), "şirket birleşmelerinde alacaklıların korunması usulleri nelerdir", nil, []string{"ticaret_hukuku", "borclar_hukuku"}, "")

	if len(plan) != 1 {
		t.Fatalf("plan = %+v, want single fallback step", plan)
	}
	if plan[0].Tool != ToolResearcher || plan[0].Params["collection"] != "ticaret_hukuku" {
		t.Errorf("fallback step = %+v", plan[0])
	}
}

func TestPlanWithFeedbackSkipsFastPathAndCarriesIt(t *testing.T) {
	var seenPrompt string
	provider := &fakeLLM{fn: func(prompt string) (string, error) {
		seenPrompt = prompt
		return `{"steps": [{"step": 1, "action": "geniş ara", "tool": "researcher", "params": {"query": "ticari işletme unsurları", "limit": 10}}]}`, nil
	}}
	planner := NewPlanner(provider, discard())

	// The query alone qualifies for the fast path; the audit feedback must
	// force it to the model anyway.
	plan := planner.Plan(context.Background(), "TTK m.11 nedir?", []string{"ticaret"}, []string{"ticaret_hukuku"}, "kaynak eksik; madde metni doğrulanamadı")

	if provider.callCount() != 1 {
		t.Fatalf("model calls = %d, want 1 despite fast-path query", provider.callCount())
	}
	if !strings.Contains(seenPrompt, "kaynak eksik") || !strings.Contains(seenPrompt, "madde metni doğrulanamadı") {
		t.Errorf("prompt does not carry the audit feedback:\n%s", seenPrompt)
	}
	if len(plan) != 1 || plan[0].Limit(0) != 10 {
		t.Errorf("plan = %+v", plan)
	}
}

func TestParseToolKind(t *testing.T) {
	cases := map[string]ToolKind{
		"researcher": ToolResearcher,
		"web_scout":  ToolWebScout,
		"analyst":    ToolAnalyst,
		"":           ToolResearcher,
		"browser":    ToolResearcher,
	}
	for in, want := range cases {
		if got := ParseToolKind(in); got != want {
			t.Errorf("ParseToolKind(%q) = %s, want %s", in, got, want)
		}
	}
}
