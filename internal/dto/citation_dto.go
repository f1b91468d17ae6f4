package dto

import "legal-research-be/pkg/citation"

type CitationNodeResponse struct {
	Reference     string   `json:"reference"`
	CitedBy       []string `json:"cited_by"`
	Cites         []string `json:"cites"`
	CitationCount int      `json:"citation_count"`
}

type CitationCyclesResponse struct {
	Cycles [][]string `json:"cycles"`
	Count  int        `json:"count"`
}

type CitationChainResponse struct {
	Start  string     `json:"start"`
	Depth  int        `json:"depth"`
	Chains [][]string `json:"chains"`
}

type MostCitedResponse struct {
	References []citation.Count `json:"references"`
}

type RelatedCitationsResponse struct {
	Reference string           `json:"reference"`
	Related   []citation.Count `json:"related"`
}
