package agents

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"

	"legal-research-be/pkg/llm"
	"legal-research-be/pkg/retrieval"
)

var errStorage = errors.New("storage unavailable")

// fakeLLM answers prompts through fn and counts calls.
type fakeLLM struct {
	mu    sync.Mutex
	calls int
	fn    func(prompt string) (string, error)
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.fn(prompt)
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	if len(history) == 0 {
		return f.Generate(ctx, "", opts...)
	}
	return f.Generate(ctx, history[len(history)-1].Content, opts...)
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeResearcher returns canned documents and records what it was asked.
// docsFn, when set, picks the result per call (1-based) instead of docs.
type fakeResearcher struct {
	mu      sync.Mutex
	calls   int
	queries []string
	filters []map[string]string
	docs    []retrieval.Document
	docsFn  func(call int) []retrieval.Document
	err     error
}

func (f *fakeResearcher) ResearchAcrossCollections(_ context.Context, query string, _ []string, _ int, filters map[string]string) ([]retrieval.Document, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.queries = append(f.queries, query)
	f.filters = append(f.filters, filters)
	f.mu.Unlock()
	if f.docsFn != nil {
		return f.docsFn(call), f.err
	}
	return f.docs, f.err
}

func (f *fakeResearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func discard() *log.Logger { return log.New(io.Discard, "", 0) }
