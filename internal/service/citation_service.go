package service

import (
	"context"

	"legal-research-be/internal/dto"
	"legal-research-be/pkg/citation"
)

type ICitationService interface {
	MostCited(ctx context.Context, limit int) (*dto.MostCitedResponse, error)
	Related(ctx context.Context, reference string, limit int) (*dto.RelatedCitationsResponse, error)
	Show(ctx context.Context, reference string) (*dto.CitationNodeResponse, error)
	Stats(ctx context.Context) (*citation.Stats, error)
	Cycles(ctx context.Context) (*dto.CitationCyclesResponse, error)
	Chain(ctx context.Context, start string, depth int) (*dto.CitationChainResponse, error)
}

type citationService struct {
	graph *citation.Graph
}

func NewCitationService(graph *citation.Graph) ICitationService {
	return &citationService{graph: graph}
}

func (s *citationService) MostCited(ctx context.Context, limit int) (*dto.MostCitedResponse, error) {
	if limit <= 0 {
		limit = 10
	}
	return &dto.MostCitedResponse{
		References: s.graph.MostCited(limit),
	}, nil
}

func (s *citationService) Related(ctx context.Context, reference string, limit int) (*dto.RelatedCitationsResponse, error) {
	if limit <= 0 {
		limit = 10
	}
	return &dto.RelatedCitationsResponse{
		Reference: reference,
		Related:   s.graph.RelatedTo(reference, limit),
	}, nil
}

func (s *citationService) Show(ctx context.Context, reference string) (*dto.CitationNodeResponse, error) {
	node, ok := s.graph.Node(reference)
	if !ok {
		return nil, nil
	}
	return &dto.CitationNodeResponse{
		Reference:     node.Reference,
		CitedBy:       node.CitedBy,
		Cites:         node.Cites,
		CitationCount: node.CitationCount,
	}, nil
}

func (s *citationService) Stats(ctx context.Context) (*citation.Stats, error) {
	stats := s.graph.GraphStats()
	return &stats, nil
}

func (s *citationService) Cycles(ctx context.Context) (*dto.CitationCyclesResponse, error) {
	cycles := s.graph.DetectCycles()
	return &dto.CitationCyclesResponse{
		Cycles: cycles,
		Count:  len(cycles),
	}, nil
}

func (s *citationService) Chain(ctx context.Context, start string, depth int) (*dto.CitationChainResponse, error) {
	if depth <= 0 {
		depth = 3
	}
	return &dto.CitationChainResponse{
		Start:  start,
		Depth:  depth,
		Chains: s.graph.Chain(start, depth),
	}, nil
}
