package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"legal-research-be/pkg/llm"
	"legal-research-be/pkg/retrieval"
)

// Synthesis is the drafted answer with its supporting citations.
type Synthesis struct {
	Answer     string   `json:"answer"`
	Citations  []string `json:"citations"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
}

// Synthesizer drafts the final answer from retrieved documents.
type Synthesizer struct {
	llm    llm.Provider
	logger *log.Logger
}

func NewSynthesizer(provider llm.Provider, logger *log.Logger) *Synthesizer {
	return &Synthesizer{llm: provider, logger: logger}
}

const synthesizerPrompt = `Sen Türk hukuku konusunda uzman bir yapay zeka asistanısın.
Görevin: toplanan bilgileri sentezleyip kapsamlı, doğru ve kaynak gösterimli bir cevap vermek.

Kurallar:
1. Sadece verilen kaynaklara dayanarak yanıt ver
2. Her iddiayı kaynakla destekle, örnek: [Kaynak: TTK m.11]
3. Madde metinlerini özgün haliyle alıntıla
4. Çelişkiler varsa belirt

Sadece JSON formatında yanıt ver:
{"answer": "...", "citations": ["TTK m.11"], "confidence": 0.9, "reasoning": "..."}

Kullanıcı sorusu: %QUERY%
%ANALYSIS%
Bulunan bilgiler:
%DOCUMENTS%`

// Synthesize never fails; with no documents or a model failure it returns a
// degraded answer with zero confidence and no citations.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, docs []retrieval.Document, analysis *Analysis) *Synthesis {
	if len(docs) == 0 {
		return emptySynthesis(query)
	}

	analysisBlock := ""
	if analysis != nil && analysis.Summary != "" {
		analysisBlock = fmt.Sprintf("Ön analiz:\n%s\n", analysis.Summary)
	}
	prompt := strings.NewReplacer(
		"%QUERY%", query,
		"%ANALYSIS%", analysisBlock,
		"%DOCUMENTS%", formatDocuments(docs, 0),
	).Replace(synthesizerPrompt)

	response, err := s.llm.Generate(ctx, prompt, llm.WithTemperature(0.2))
	if err != nil {
		s.logger.Printf("[WARN] [SYNTHESIZER] Draft failed: %v", err)
		return emptySynthesis(query)
	}

	var parsed Synthesis
	if err := json.Unmarshal([]byte(extractJSON(response)), &parsed); err != nil || parsed.Answer == "" {
		s.logger.Printf("[WARN] [SYNTHESIZER] Unparseable draft")
		return emptySynthesis(query)
	}

	s.logger.Printf("[INFO] [SYNTHESIZER] Drafted answer with %d citations, confidence %.2f", len(parsed.Citations), parsed.Confidence)
	return &parsed
}

func emptySynthesis(query string) *Synthesis {
	return &Synthesis{
		Answer: fmt.Sprintf(`Maalesef %q ile ilgili veri tabanımızda yeterli bilgi bulamadım.

Öneriler:
- Daha genel bir sorgu deneyin
- Kanun adlarını tam olarak belirtin (TTK, TBK, vb.)
- Madde numarası biliyorsanız belirtin`, query),
		Citations:  []string{},
		Confidence: 0.0,
		Reasoning:  "No documents retrieved",
	}
}
