package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"legal-research-be/pkg/legal"
	"legal-research-be/pkg/llm"
	"legal-research-be/pkg/retrieval"
)

// Score thresholds an answer must clear to pass verification.
const (
	minFaithfulness = 0.70
	minRelevance    = 0.70
	minConsistency  = 0.80
	minMeanScore    = 0.75
)

// Auditor verifies a drafted answer against its sources. Citation
// faithfulness is a hard gate: one unmatched citation fails the answer no
// matter what the model scores say.
type Auditor struct {
	llm    llm.Provider
	parser *legal.Parser
	logger *log.Logger
}

func NewAuditor(provider llm.Provider, parser *legal.Parser, logger *log.Logger) *Auditor {
	return &Auditor{llm: provider, parser: parser, logger: logger}
}

const auditorPrompt = `Sen hukuki yanıtların kalitesini denetleyen uzman bir yapay zeka asistanısın.

Değerlendirme kriterleri:
1. Faithfulness: cevap kaynaklara sadık mı?
2. Relevance: soruyu yanıtlıyor mu?
3. Consistency: çelişki var mı?

Sadece JSON formatında yanıt ver:
{"faithfulness_score": 0.9, "relevance_score": 0.9, "consistency_score": 0.9, "feedback": "...", "issues": []}

Soru: %QUERY%

Cevap:
%ANSWER%

Kaynaklar:
%SOURCES%`

// Audit scores the answer and independently validates its citations.
// A scoring-service failure degrades to an optimistic pass so an outage never
// blocks answers, but a citation mismatch still fails the result.
func (a *Auditor) Audit(ctx context.Context, query, answer string, sources []retrieval.Document) *VerificationResult {
	unmatched := a.unmatchedCitations(answer, sources)

	scores, err := a.score(ctx, query, answer, sources)
	if err != nil {
		a.logger.Printf("[WARN] [AUDITOR] Scoring failed: %v. Passing unverified", err)
		result := &VerificationResult{
			Passed:       true,
			Faithfulness: 0.5,
			Relevance:    0.5,
			Consistency:  0.5,
			Feedback:     fmt.Sprintf("Audit error: %v", err),
			Issues:       []string{"Audit failed"},
		}
		a.applyCitationGate(result, unmatched)
		return result
	}

	mean := (scores.Faithfulness + scores.Relevance + scores.Consistency) / 3
	result := &VerificationResult{
		Passed: scores.Faithfulness >= minFaithfulness &&
			scores.Relevance >= minRelevance &&
			scores.Consistency >= minConsistency &&
			mean >= minMeanScore,
		Faithfulness: scores.Faithfulness,
		Relevance:    scores.Relevance,
		Consistency:  scores.Consistency,
		Feedback:     scores.Feedback,
		Issues:       scores.Issues,
	}
	a.applyCitationGate(result, unmatched)

	verdict := "PASSED"
	if !result.Passed {
		verdict = "FAILED"
	}
	a.logger.Printf("[INFO] [AUDITOR] %s (f=%.2f r=%.2f c=%.2f, %d unmatched citations)",
		verdict, scores.Faithfulness, scores.Relevance, scores.Consistency, len(unmatched))
	return result
}

func (a *Auditor) applyCitationGate(result *VerificationResult, unmatched []string) {
	if len(unmatched) == 0 {
		return
	}
	result.Passed = false
	result.Issues = append(result.Issues,
		fmt.Sprintf("%d citation(s) not found in sources: %s", len(unmatched), strings.Join(unmatched, ", ")))
}

// unmatchedCitations returns every reference cited in the answer that cannot
// be derived from the sources, either from their text or from their metadata.
func (a *Auditor) unmatchedCitations(answer string, sources []retrieval.Document) []string {
	answerRefs := a.parser.Parse(answer)
	if len(answerRefs) == 0 {
		return nil
	}

	known := make(map[string]bool)
	for _, source := range sources {
		for _, ref := range a.parser.Parse(source.Content) {
			known[legal.Format(ref)] = true
		}
		kaynak, _ := source.Metadata["kaynak"].(string)
		madde := source.Metadata["madde_no"]
		if kaynak != "" && madde != nil {
			for _, ref := range a.parser.Parse(fmt.Sprintf("%s m.%v", kaynak, madde)) {
				known[legal.Format(ref)] = true
			}
		}
	}

	var unmatched []string
	seen := make(map[string]bool)
	for _, ref := range answerRefs {
		formatted := legal.Format(ref)
		if !known[formatted] && !seen[formatted] {
			seen[formatted] = true
			unmatched = append(unmatched, formatted)
		}
	}
	return unmatched
}

type auditScores struct {
	Faithfulness float64  `json:"faithfulness_score"`
	Relevance    float64  `json:"relevance_score"`
	Consistency  float64  `json:"consistency_score"`
	Feedback     string   `json:"feedback"`
	Issues       []string `json:"issues"`
}

func (a *Auditor) score(ctx context.Context, query, answer string, sources []retrieval.Document) (*auditScores, error) {
	limited := sources
	if len(limited) > 10 {
		limited = limited[:10]
	}
	prompt := strings.NewReplacer(
		"%QUERY%", query,
		"%ANSWER%", answer,
		"%SOURCES%", formatDocuments(limited, 200),
	).Replace(auditorPrompt)

	response, err := a.llm.Generate(ctx, prompt, llm.WithTemperature(0))
	if err != nil {
		return nil, err
	}

	var parsed auditScores
	if err := json.Unmarshal([]byte(extractJSON(response)), &parsed); err != nil {
		return nil, fmt.Errorf("parse audit scores: %w", err)
	}
	return &parsed, nil
}
