package retrieval

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"legal-research-be/pkg/cache"
)

// MaxCrossCollection caps the merged result list of a multi-collection fan-out.
const MaxCrossCollection = 20

// Cache is the read/write-through seam the researcher needs. Satisfied by
// *cache.Manager.
type Cache interface {
	Get(ctx context.Context, key string, out any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration)
}

// Researcher fans a query out over several collections and merges the
// results. Results are cached per (query, collection set).
type Researcher struct {
	engine *Engine
	cache  Cache
	logger *log.Logger
}

func NewResearcher(engine *Engine, c Cache, logger *log.Logger) *Researcher {
	return &Researcher{engine: engine, cache: c, logger: logger}
}

// ResearchAcrossCollections searches every collection concurrently under the
// hybrid strategy, tags each hit with its collection, merges, re-sorts by
// descending score and truncates to MaxCrossCollection. A collection whose
// search fails is dropped from the merge, not fatal. Cache hits return
// without touching storage.
func (r *Researcher) ResearchAcrossCollections(ctx context.Context, query string, collections []string, limit int, filters map[string]string) ([]Document, error) {
	key := cache.QueryKey(query, strings.Join(collections, ","))
	if r.cache != nil {
		var cached []Document
		if r.cache.Get(ctx, key, &cached) {
			r.logger.Printf("[INFO] [RESEARCH] Cache hit for %q over %d collections", query, len(collections))
			return cached, nil
		}
	}

	var mu sync.Mutex
	var merged []Document

	g, gctx := errgroup.WithContext(ctx)
	for _, collection := range collections {
		g.Go(func() error {
			docs, err := r.engine.Search(gctx, query, collection, StrategyHybrid, limit, filters)
			if err != nil {
				r.logger.Printf("[WARN] [RESEARCH] Search failed on %s: %v. Dropping collection", collection, err)
				return nil
			}
			for i := range docs {
				docs[i].Collection = collection
			}
			mu.Lock()
			merged = append(merged, docs...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Fan-in order is nondeterministic; the sort makes result order
	// reproducible. Score ties fall back to id so reruns agree.
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].ID < merged[j].ID
	})
	if len(merged) > MaxCrossCollection {
		merged = merged[:MaxCrossCollection]
	}

	if r.cache != nil {
		r.cache.Set(ctx, key, merged, cache.QueryTTL)
	}
	r.logger.Printf("[INFO] [RESEARCH] %q -> %d documents from %d collections", query, len(merged), len(collections))
	return merged, nil
}
