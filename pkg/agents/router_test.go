package agents

import (
	"context"
	"errors"
	"testing"
)

func TestRouteFastPathSkipsModel(t *testing.T) {
	provider := &fakeLLM{fn: func(string) (string, error) {
		return "", errors.New("must not be called")
	}}
	router := NewRouter(provider, discard())

	res := router.Route(context.Background(), "TTK m.11 nedir?")

	if len(res.Collections) != 1 || res.Collections[0] != "ticaret_hukuku" {
		t.Errorf("collections = %v, want [ticaret_hukuku]", res.Collections)
	}
	if provider.callCount() != 0 {
		t.Errorf("fast path made %d model calls", provider.callCount())
	}
}

func TestRouteFastPathDeduplicates(t *testing.T) {
	router := NewRouter(&fakeLLM{fn: func(string) (string, error) { return "", nil }}, discard())

	res := router.Route(context.Background(), "TTK ve TBK ve yine TTK karşılaştırması")

	if len(res.Collections) != 2 {
		t.Errorf("collections = %v, want two deduplicated entries", res.Collections)
	}
}

func TestRouteFastPathAsciiFallback(t *testing.T) {
	router := NewRouter(&fakeLLM{fn: func(string) (string, error) { return "", nil }}, discard())

	res := router.Route(context.Background(), "IIK haciz hükümleri")
	if len(res.Collections) != 1 || res.Collections[0] != "icra_iflas" {
		t.Errorf("collections = %v, want [icra_iflas]", res.Collections)
	}
}

func TestRouteUnmappedAbbreviationFallsThrough(t *testing.T) {
	// TCK is recognized but has no collection; the slow path runs instead.
	provider := &fakeLLM{fn: func(string) (string, error) {
		return `{"hukuk_dali": ["ticaret"], "kaynak_tipi": ["kanun"]}`, nil
	}}
	router := NewRouter(provider, discard())

	res := router.Route(context.Background(), "TCK dolandırıcılık cezası")
	if provider.callCount() != 1 {
		t.Errorf("model calls = %d, want 1", provider.callCount())
	}
	if len(res.Collections) != 1 || res.Collections[0] != "ticaret_hukuku" {
		t.Errorf("collections = %v", res.Collections)
	}
}

func TestRouteSlowPathDropsUnknownDomains(t *testing.T) {
	provider := &fakeLLM{fn: func(string) (string, error) {
		return `{"hukuk_dali": ["borclar", "uzay hukuku"], "kaynak_tipi": ["kanun"]}`, nil
	}}
	router := NewRouter(provider, discard())

	res := router.Route(context.Background(), "kira sözleşmesi feshi şartları")
	if len(res.Collections) != 1 || res.Collections[0] != "borclar_hukuku" {
		t.Errorf("collections = %v, want [borclar_hukuku]", res.Collections)
	}
}

func TestRouteFailureSearchesEverything(t *testing.T) {
	provider := &fakeLLM{fn: func(string) (string, error) {
		return "", errors.New("model down")
	}}
	router := NewRouter(provider, discard())

	res := router.Route(context.Background(), "kira sözleşmesi feshi şartları")

	if len(res.Collections) != len(AllCollections()) {
		t.Errorf("collections = %v, want full set", res.Collections)
	}
	if len(res.Domains) != 1 || res.Domains[0] != "genel" {
		t.Errorf("domains = %v, want [genel]", res.Domains)
	}
}
