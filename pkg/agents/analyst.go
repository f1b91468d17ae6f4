package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"legal-research-be/pkg/citation"
	"legal-research-be/pkg/legal"
	"legal-research-be/pkg/llm"
	"legal-research-be/pkg/retrieval"
)

// Analysis is the analyst's cross-document reading of a result set.
type Analysis struct {
	Summary         string   `json:"analysis"`
	CrossReferences []string `json:"cross_references"`
	Relationships   []string `json:"relationships"`
	Insights        []string `json:"insights"`
}

// Analyst cross-references retrieved documents. As a side effect it feeds the
// citation graph: every reference found is recorded, and references that
// co-occur within one document become cites-edges.
type Analyst struct {
	llm    llm.Provider
	parser *legal.Parser
	graph  *citation.Graph
	logger *log.Logger
}

func NewAnalyst(provider llm.Provider, parser *legal.Parser, graph *citation.Graph, logger *log.Logger) *Analyst {
	return &Analyst{llm: provider, parser: parser, graph: graph, logger: logger}
}

const analystPrompt = `Sen Türk hukuku konusunda uzman bir hukuk analisti yapay zeka asistanısın.
Görevin: bulunan hukuki belgeleri analiz edip aralarındaki ilişkileri belirlemek.

Sadece JSON formatında yanıt ver:
{"analysis": "...", "relationships": ["..."], "insights": ["..."]}

Belgeler:
%DOCUMENTS%`

// Analyze never fails; on any error it returns an empty analysis so the
// synthesizer still runs.
func (a *Analyst) Analyze(ctx context.Context, docs []retrieval.Document) *Analysis {
	if len(docs) == 0 {
		return emptyAnalysis()
	}

	crossRefs := a.trackCitations(ctx, docs)

	response, err := a.llm.Generate(ctx, strings.ReplaceAll(analystPrompt, "%DOCUMENTS%", formatDocuments(docs, 500)), llm.WithTemperature(0.3))
	if err != nil {
		a.logger.Printf("[WARN] [ANALYST] Analysis failed: %v", err)
		result := emptyAnalysis()
		result.CrossReferences = crossRefs
		return result
	}

	var parsed Analysis
	if err := json.Unmarshal([]byte(extractJSON(response)), &parsed); err != nil {
		a.logger.Printf("[WARN] [ANALYST] Unparseable analysis: %v", err)
		result := emptyAnalysis()
		result.CrossReferences = crossRefs
		return result
	}

	parsed.CrossReferences = crossRefs
	a.logger.Printf("[INFO] [ANALYST] Analyzed %d documents, %d cross-references", len(docs), len(crossRefs))
	return &parsed
}

// trackCitations records every document's references in the citation graph
// and links references that appear together in the same document.
func (a *Analyst) trackCitations(ctx context.Context, docs []retrieval.Document) []string {
	var crossRefs []string
	seen := make(map[string]bool)

	for _, doc := range docs {
		refs := a.graph.Record(ctx, doc.ID, doc.Content)
		if len(refs) == 0 {
			continue
		}

		formatted := make([]string, len(refs))
		for i, ref := range refs {
			formatted[i] = legal.Format(ref)
			if !seen[formatted[i]] {
				seen[formatted[i]] = true
				crossRefs = append(crossRefs, formatted[i])
			}
		}
		// The first reference in a document is treated as its subject;
		// the rest are what it points at.
		for _, other := range formatted[1:] {
			if other != formatted[0] {
				a.graph.AddEdge(ctx, formatted[0], other)
			}
		}
	}
	return crossRefs
}

func emptyAnalysis() *Analysis {
	return &Analysis{Summary: "Analiz için yeterli belge bulunamadı."}
}

// formatDocuments renders documents for a model prompt, truncating each body.
func formatDocuments(docs []retrieval.Document, maxContent int) string {
	var b strings.Builder
	for i, doc := range docs {
		fmt.Fprintf(&b, "\n=== Belge %d ===\n", i+1)
		if kaynak, ok := doc.Metadata["kaynak"].(string); ok {
			fmt.Fprintf(&b, "Kaynak: %s\n", kaynak)
		}
		if madde, ok := doc.Metadata["madde_no"]; ok {
			fmt.Fprintf(&b, "Madde: %v\n", madde)
		}
		content := doc.Content
		if runes := []rune(content); maxContent > 0 && len(runes) > maxContent {
			content = string(runes[:maxContent]) + "..."
		}
		fmt.Fprintf(&b, "%s\n(Alakalılık: %.2f)\n", content, doc.Score)
	}
	return b.String()
}
