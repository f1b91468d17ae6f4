package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"strings"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// TTLs per payload class. Query results go stale fastest because they depend
// on the whole corpus; embeddings are pure functions of their input text.
const (
	QueryTTL     = 1 * time.Hour
	DocumentTTL  = 30 * time.Minute
	EmbeddingTTL = 24 * time.Hour

	keyNamespace = "legalrag"
)

// Stats is a point-in-time snapshot of cache traffic.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
}

// Manager is a two-tier cache: Redis when available, an in-process fallback
// otherwise. Values are stored as JSON in both tiers so reads behave the same
// regardless of which tier answered.
type Manager struct {
	rdb    *redis.Client
	local  *gocache.Cache
	logger *log.Logger

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
}

// NewManager builds a cache manager. rdb may be nil; the manager then serves
// everything from process memory.
func NewManager(rdb *redis.Client, logger *log.Logger) *Manager {
	return &Manager{
		rdb:    rdb,
		local:  gocache.New(QueryTTL, 10*time.Minute),
		logger: logger,
	}
}

// QueryKey derives the cache key for a (query, collection) search result.
func QueryKey(query, collection string) string {
	return makeKey("query", strings.ToLower(strings.TrimSpace(query)), collection)
}

// DocumentKey derives the cache key for a document payload.
func DocumentKey(docID string) string {
	return makeKey("docs", docID)
}

// EmbeddingKey derives the cache key for the embedding of a text.
func EmbeddingKey(text string) string {
	return makeKey("emb", text)
}

func makeKey(prefix string, parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return keyNamespace + ":" + prefix + ":" + hex.EncodeToString(h[:16])
}

// Get loads a cached value into out. Returns false on miss or decode failure.
func (m *Manager) Get(ctx context.Context, key string, out any) bool {
	if m.rdb != nil {
		raw, err := m.rdb.Get(ctx, key).Bytes()
		if err == nil {
			if json.Unmarshal(raw, out) == nil {
				m.hits.Add(1)
				return true
			}
			m.logger.Printf("[WARN] [CACHE] Corrupt entry at %s, dropping", key)
			m.rdb.Del(ctx, key)
		} else if err != redis.Nil {
			m.logger.Printf("[WARN] [CACHE] Redis read failed: %v. Falling back to memory", err)
		}
	}

	if raw, found := m.local.Get(key); found {
		if json.Unmarshal(raw.([]byte), out) == nil {
			m.hits.Add(1)
			return true
		}
	}

	m.misses.Add(1)
	return false
}

// Set stores value under key with the given TTL, in both tiers when Redis is
// up. Failures are logged and swallowed; caching is never load-bearing.
func (m *Manager) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		m.logger.Printf("[WARN] [CACHE] Failed to encode value for %s: %v", key, err)
		return
	}

	if m.rdb != nil {
		if err := m.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
			m.logger.Printf("[WARN] [CACHE] Redis write failed: %v. Keeping memory copy only", err)
		}
	}
	m.local.Set(key, raw, ttl)
	m.sets.Add(1)
}

// Invalidate removes a single key from both tiers.
func (m *Manager) Invalidate(ctx context.Context, key string) {
	if m.rdb != nil {
		if err := m.rdb.Del(ctx, key).Err(); err != nil {
			m.logger.Printf("[WARN] [CACHE] Redis delete failed: %v", err)
		}
	}
	m.local.Delete(key)
}

// InvalidateQueries drops every cached query result. Used after ingest, since
// new documents can change any search result.
func (m *Manager) InvalidateQueries(ctx context.Context) {
	prefix := keyNamespace + ":query:"
	if m.rdb != nil {
		iter := m.rdb.Scan(ctx, 0, prefix+"*", 0).Iterator()
		for iter.Next(ctx) {
			m.rdb.Del(ctx, iter.Val())
		}
		if err := iter.Err(); err != nil {
			m.logger.Printf("[WARN] [CACHE] Query invalidation scan failed: %v", err)
		}
	}
	for key := range m.local.Items() {
		if strings.HasPrefix(key, prefix) {
			m.local.Delete(key)
		}
	}
	m.logger.Printf("[INFO] [CACHE] Query cache invalidated")
}

// CacheStats returns traffic counters since startup.
func (m *Manager) CacheStats() Stats {
	return Stats{
		Hits:   m.hits.Load(),
		Misses: m.misses.Load(),
		Sets:   m.sets.Load(),
	}
}
