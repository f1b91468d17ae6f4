package agents

import (
	"context"
	"strings"
	"testing"

	"legal-research-be/pkg/citation"
	"legal-research-be/pkg/legal"
	"legal-research-be/pkg/retrieval"
)

// scriptedLLM answers each agent's prompt by its system-prompt marker.
func scriptedLLM(auditResponse string) func(string) (string, error) {
	return func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "denetleyen"):
			return auditResponse, nil
		case strings.Contains(prompt, "sentezleyip"):
			return `{"answer": "TTK m.11 uyarınca ticari işletme tanımlanır.", "citations": ["TTK m.11"], "confidence": 0.9, "reasoning": "tek kaynak"}`, nil
		case strings.Contains(prompt, "hukuk analisti"):
			return `{"analysis": "Belgeler tutarlı.", "relationships": ["TTK m.11 temel tanım"], "insights": ["tek madde yeterli"]}`, nil
		case strings.Contains(prompt, "stratejik planlama"):
			return `{"steps": [{"step": 1, "action": "ara", "tool": "researcher", "params": {"query": "ticari işletme"}}]}`, nil
		default:
			return `{"hukuk_dali": ["ticaret"], "kaynak_tipi": ["kanun"]}`, nil
		}
	}
}

func newTestWorkflow(t *testing.T, llmFn func(string) (string, error), researcher DocumentResearcher) (*Workflow, *citation.Graph) {
	t.Helper()
	provider := &fakeLLM{fn: llmFn}
	parser := legal.NewParser()
	graph := citation.NewGraph(parser, nil, discard())

	w, err := NewWorkflow(
		NewRouter(provider, discard()),
		NewPlanner(provider, discard()),
		researcher,
		NewAnalyst(provider, parser, graph, discard()),
		NewSynthesizer(provider, discard()),
		NewAuditor(provider, parser, discard()),
		discard(),
	)
	if err != nil {
		t.Fatal(err)
	}
	return w, graph
}

func ttkDocs(n int) []retrieval.Document {
	docs := make([]retrieval.Document, n)
	for i := range docs {
		docs[i] = retrieval.Document{
			ID:         "doc-" + string(rune('a'+i)),
			Content:    "TTK m.11 uyarınca ticari işletme esnaf işletmesi boyutunu aşan işletmedir.",
			Score:      0.9,
			Collection: "ticaret_hukuku",
		}
	}
	return docs
}

func TestRunSimpleQuerySkipsAnalyst(t *testing.T) {
	researcher := &fakeResearcher{docs: ttkDocs(2)}
	w, _ := newTestWorkflow(t, scriptedLLM(perfectScores), researcher)

	result := w.Run(context.Background(), "TTK m.11 nedir?", false)

	if result.Verification == nil || !result.Verification.Passed {
		t.Fatalf("verification = %+v, want passed", result.Verification)
	}
	if result.Answer == "" || result.Confidence != 0.9 {
		t.Errorf("answer = %q confidence = %v", result.Answer, result.Confidence)
	}
	if result.ReplanCount != 0 {
		t.Errorf("replans = %d, want 0", result.ReplanCount)
	}
	if researcher.callCount() != 1 {
		t.Errorf("researcher calls = %d, want 1", researcher.callCount())
	}
	if researcher.filters[0]["status"] != "active" {
		t.Errorf("filters = %v, want deprecated documents excluded", researcher.filters[0])
	}

	skipped := false
	for i, entry := range result.Trace {
		if entry.Action == "analyze" && strings.Contains(entry.Result, "skipped") {
			skipped = true
		}
		if entry.Step != i+1 {
			t.Errorf("trace[%d].Step = %d, want %d", i, entry.Step, i+1)
		}
		if entry.Timestamp.IsZero() {
			t.Errorf("trace[%d] has no timestamp", i)
		}
	}
	if !skipped {
		t.Errorf("trace = %v, want analyst skipped", result.Trace)
	}
}

func TestRunComplexQueryFeedsCitationGraph(t *testing.T) {
	researcher := &fakeResearcher{docs: ttkDocs(6)} // above the analyst threshold
	w, graph := newTestWorkflow(t, scriptedLLM(perfectScores), researcher)

	result := w.Run(context.Background(), "ticari işletme devrinde alacaklıların korunması için hangi hükümler birlikte uygulanır acaba", true)

	if result.Verification == nil || !result.Verification.Passed {
		t.Fatalf("verification = %+v", result.Verification)
	}
	if _, ok := researcher.filters[0]["status"]; ok {
		t.Errorf("filters = %v, deprecated versions were requested", researcher.filters[0])
	}
	if _, ok := graph.Node("TTK m.11"); !ok {
		t.Error("analyst did not record citations into the graph")
	}
}

func TestRunBoundedReplanLoop(t *testing.T) {
	failing := `{"faithfulness_score": 0.2, "relevance_score": 0.2, "consistency_score": 0.2, "feedback": "zayıf", "issues": ["kaynak eksik"]}`
	script := scriptedLLM(failing)
	var plannerPrompts []string
	recorded := func(prompt string) (string, error) {
		if strings.Contains(prompt, "stratejik planlama") {
			plannerPrompts = append(plannerPrompts, prompt)
		}
		return script(prompt)
	}
	researcher := &fakeResearcher{docs: ttkDocs(2)}
	w, _ := newTestWorkflow(t, recorded, researcher)

	result := w.Run(context.Background(), "TTK m.11 nedir?", false)

	if result.Verification.Passed {
		t.Fatal("failing scores must not pass")
	}
	if result.ReplanCount != DefaultMaxReplans {
		t.Errorf("replans = %d, want %d", result.ReplanCount, DefaultMaxReplans)
	}
	if researcher.callCount() != DefaultMaxReplans+1 {
		t.Errorf("researcher calls = %d, want %d", researcher.callCount(), DefaultMaxReplans+1)
	}

	// The fast-path query never reaches the model on the first attempt; every
	// replan must, carrying the audit verdict.
	if len(plannerPrompts) != DefaultMaxReplans {
		t.Fatalf("planner model calls = %d, want %d", len(plannerPrompts), DefaultMaxReplans)
	}
	for i, prompt := range plannerPrompts {
		if !strings.Contains(prompt, "zayıf") || !strings.Contains(prompt, "kaynak eksik") {
			t.Errorf("replan prompt %d does not carry audit feedback:\n%s", i+1, prompt)
		}
	}
}

func TestRunReplanAccumulatesDocuments(t *testing.T) {
	failing := `{"faithfulness_score": 0.2, "relevance_score": 0.2, "consistency_score": 0.2, "feedback": "zayıf", "issues": ["kaynak eksik"]}`
	researcher := &fakeResearcher{docsFn: func(call int) []retrieval.Document {
		switch call {
		case 1:
			return ttkDocs(2) // doc-a, doc-b
		case 2:
			return append(ttkDocs(1), retrieval.Document{
				ID:         "doc-x",
				Content:    "TBK m.202 malvarlığı devrinde sorumluluğu düzenler.",
				Score:      0.8,
				Collection: "borclar_hukuku",
			})
		default:
			return nil
		}
	}}
	w, _ := newTestWorkflow(t, scriptedLLM(failing), researcher)

	result := w.Run(context.Background(), "TTK m.11 nedir?", false)

	// 2 from the first attempt, doc-x from the second, nothing lost when the
	// third returns empty.
	if len(result.Documents) != 3 {
		t.Fatalf("documents = %d, want 3 accumulated across attempts", len(result.Documents))
	}
	ids := map[string]bool{}
	for _, d := range result.Documents {
		if ids[d.ID] {
			t.Errorf("duplicate document %s", d.ID)
		}
		ids[d.ID] = true
	}
	if !ids["doc-a"] || !ids["doc-b"] || !ids["doc-x"] {
		t.Errorf("documents = %v, want union of all attempts", ids)
	}
}

func TestRunRetrievalFailureDegradesAnswer(t *testing.T) {
	researcher := &fakeResearcher{err: errStorage}
	w, _ := newTestWorkflow(t, scriptedLLM(perfectScores), researcher)

	result := w.Run(context.Background(), "TTK m.11 nedir?", false)

	if result.Confidence != 0 {
		t.Errorf("confidence = %v, want 0 for degraded answer", result.Confidence)
	}
	if len(result.Errors) == 0 {
		t.Error("retrieval failure must be recorded in the error list")
	}
	if result.Answer == "" {
		t.Error("degraded answer must still explain itself")
	}
}
