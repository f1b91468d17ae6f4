package citation

import (
	"context"
	"log"
	"sort"
	"sync"

	"legal-research-be/pkg/legal"
)

// Node is a read-only snapshot of a citation-graph vertex. The graph owns the
// live nodes; callers only ever see copies.
type Node struct {
	Reference     string
	CitedBy       []string
	Cites         []string
	CitationCount int
}

// Count pairs a reference with how often it was cited.
type Count struct {
	Reference string `json:"reference"`
	Citations int    `json:"citations"`
}

// Stats summarizes the whole graph.
type Stats struct {
	TotalCitations   int     `json:"total_citations"`
	UniqueReferences int     `json:"unique_references"`
	AvgPerReference  float64 `json:"avg_citations_per_ref"`
	MostCited        []Count `json:"most_cited"`
	DocumentsTracked int     `json:"documents_tracked"`
}

// Store persists graph mutations. Implementations are best-effort: the graph
// keeps working from memory when persistence fails.
type Store interface {
	SaveNode(ctx context.Context, node Node) error
	SaveDocumentCitations(ctx context.Context, docID string, references []string) error
	LoadNodes(ctx context.Context) ([]Node, map[string][]string, error)
	Clear(ctx context.Context) error
}

type node struct {
	reference  string
	citedBy    []string
	citedBySet map[string]bool
	cites      []string
	citesSet   map[string]bool
	count      int
}

// Graph tracks who-cites-whom across documents. Safe for concurrent use.
type Graph struct {
	mu           sync.RWMutex
	parser       *legal.Parser
	nodes        map[string]*node
	order        []string            // node keys in insertion order, for tie-breaking
	docCitations map[string][]string // docID -> unique formatted references
	docOrder     []string
	store        Store
	logger       *log.Logger
}

// NewGraph builds a citation graph. store may be nil for memory-only tracking;
// when present, previously persisted nodes are loaded into memory.
func NewGraph(parser *legal.Parser, store Store, logger *log.Logger) *Graph {
	g := &Graph{
		parser:       parser,
		nodes:        make(map[string]*node),
		docCitations: make(map[string][]string),
		store:        store,
		logger:       logger,
	}
	if store != nil {
		g.restore()
	}
	return g
}

func (g *Graph) restore() {
	nodes, docs, err := g.store.LoadNodes(context.Background())
	if err != nil {
		g.logger.Printf("[WARN] Citation graph restore failed: %v. Starting empty.", err)
		return
	}
	for _, n := range nodes {
		ln := g.ensureNodeLocked(n.Reference)
		ln.count = n.CitationCount
		for _, d := range n.CitedBy {
			if !ln.citedBySet[d] {
				ln.citedBySet[d] = true
				ln.citedBy = append(ln.citedBy, d)
			}
		}
		for _, c := range n.Cites {
			if !ln.citesSet[c] {
				ln.citesSet[c] = true
				ln.cites = append(ln.cites, c)
			}
		}
	}
	for doc, refs := range docs {
		g.docCitations[doc] = refs
		g.docOrder = append(g.docOrder, doc)
	}
	g.logger.Printf("[INFO] Citation graph restored: %d references, %d documents", len(nodes), len(docs))
}

// Record parses text and tracks every reference found as cited by docID.
// Every occurrence increments the citation count, including repeats within one
// document; cited_by remains a set.
func (g *Graph) Record(ctx context.Context, docID, text string) []legal.Reference {
	refs := g.parser.Parse(text)
	if len(refs) == 0 {
		return nil
	}

	g.mu.Lock()
	touched := make([]Node, 0, len(refs))
	for _, ref := range refs {
		key := legal.Format(ref)
		n := g.ensureNodeLocked(key)
		n.count++
		if !n.citedBySet[docID] {
			n.citedBySet[docID] = true
			n.citedBy = append(n.citedBy, docID)
		}
		if !containsString(g.docCitations[docID], key) {
			if _, seen := g.docCitations[docID]; !seen {
				g.docOrder = append(g.docOrder, docID)
			}
			g.docCitations[docID] = append(g.docCitations[docID], key)
		}
		touched = append(touched, snapshot(n))
	}
	docRefs := append([]string(nil), g.docCitations[docID]...)
	g.mu.Unlock()

	g.persist(ctx, docID, docRefs, touched)
	return refs
}

// AddEdge records that reference `from` cites reference `to`. Both nodes are
// created if missing.
func (g *Graph) AddEdge(ctx context.Context, from, to string) {
	g.mu.Lock()
	src := g.ensureNodeLocked(from)
	g.ensureNodeLocked(to)
	if !src.citesSet[to] {
		src.citesSet[to] = true
		src.cites = append(src.cites, to)
	}
	snap := snapshot(src)
	g.mu.Unlock()

	g.persist(ctx, "", nil, []Node{snap})
}

func (g *Graph) persist(ctx context.Context, docID string, docRefs []string, nodes []Node) {
	if g.store == nil {
		return
	}
	for _, n := range nodes {
		if err := g.store.SaveNode(ctx, n); err != nil {
			g.logger.Printf("[WARN] Failed to persist citation node %s: %v", n.Reference, err)
			return
		}
	}
	if docID != "" {
		if err := g.store.SaveDocumentCitations(ctx, docID, docRefs); err != nil {
			g.logger.Printf("[WARN] Failed to persist citations of document %s: %v", docID, err)
		}
	}
}

// MostCited returns up to limit references ordered by descending citation
// count; ties keep insertion order.
func (g *Graph) MostCited(limit int) []Count {
	g.mu.RLock()
	defer g.mu.RUnlock()

	keys := append([]string(nil), g.order...)
	sort.SliceStable(keys, func(i, j int) bool {
		return g.nodes[keys[i]].count > g.nodes[keys[j]].count
	})
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	out := make([]Count, len(keys))
	for i, k := range keys {
		out[i] = Count{Reference: k, Citations: g.nodes[k].count}
	}
	return out
}

// RelatedTo unions three relationship classes around reference: co-cited
// (shares a citing document), outgoing (reference cites it) and incoming (it
// cites reference). A reference appearing in several classes counts once per
// appearance; the top limit by that frequency is returned.
func (g *Graph) RelatedTo(reference string, limit int) []Count {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[reference]
	if !ok {
		return nil
	}

	freq := make(map[string]int)
	var seen []string
	add := func(ref string) {
		if ref == reference {
			return
		}
		if _, ok := freq[ref]; !ok {
			seen = append(seen, ref)
		}
		freq[ref]++
	}

	for _, doc := range n.citedBy {
		for _, ref := range g.docCitations[doc] {
			add(ref)
		}
	}
	for _, ref := range n.cites {
		add(ref)
	}
	for _, key := range g.order {
		if g.nodes[key].citesSet[reference] {
			add(key)
		}
	}

	sort.SliceStable(seen, func(i, j int) bool {
		return freq[seen[i]] > freq[seen[j]]
	})
	if limit > 0 && len(seen) > limit {
		seen = seen[:limit]
	}

	out := make([]Count, len(seen))
	for i, ref := range seen {
		out[i] = Count{Reference: ref, Citations: freq[ref]}
	}
	return out
}

// DetectCycles finds circular citation chains over the cites-edges. Each
// reported cycle runs from the first repeated node to its repeat, inclusive.
func (g *Graph) DetectCycles() [][]string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var cycles [][]string
	visited := make(map[string]bool)
	stack := make(map[string]bool)

	var walk func(ref string, path []string) bool
	walk = func(ref string, path []string) bool {
		visited[ref] = true
		stack[ref] = true
		path = append(path, ref)

		if n, ok := g.nodes[ref]; ok {
			for _, next := range n.cites {
				if !visited[next] {
					if walk(next, path) {
						return true
					}
				} else if stack[next] {
					start := indexOf(path, next)
					cycle := append(append([]string(nil), path[start:]...), next)
					cycles = append(cycles, cycle)
					return true
				}
			}
		}

		delete(stack, ref)
		return false
	}

	for _, ref := range g.order {
		if !visited[ref] {
			walk(ref, nil)
		}
	}
	return cycles
}

// Chain runs a bounded depth-first traversal over cites-edges starting at
// start, emitting every path that ends at the depth limit or at a node with no
// outgoing edges. Nodes already on the current path are not revisited, so
// cycles terminate the path instead of looping.
func (g *Graph) Chain(start string, maxDepth int) [][]string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.nodes[start]; !ok {
		return nil
	}

	var chains [][]string
	var walk func(ref string, path []string)
	walk = func(ref string, path []string) {
		path = append(path, ref)

		if len(path) > maxDepth {
			chains = append(chains, append([]string(nil), path...))
			return
		}

		var next []string
		if n, ok := g.nodes[ref]; ok {
			for _, c := range n.cites {
				if !containsString(path, c) {
					next = append(next, c)
				}
			}
		}
		if len(next) == 0 {
			chains = append(chains, append([]string(nil), path...))
			return
		}
		for _, c := range next {
			walk(c, path)
		}
	}

	walk(start, nil)
	return chains
}

// Node returns a snapshot of a single vertex.
func (g *Graph) Node(reference string) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[reference]
	if !ok {
		return Node{}, false
	}
	return snapshot(n), true
}

// GraphStats aggregates citation totals across the graph.
func (g *Graph) GraphStats() Stats {
	g.mu.RLock()
	total := 0
	for _, n := range g.nodes {
		total += n.count
	}
	unique := len(g.nodes)
	docs := len(g.docCitations)
	g.mu.RUnlock()

	stats := Stats{
		TotalCitations:   total,
		UniqueReferences: unique,
		DocumentsTracked: docs,
		MostCited:        g.MostCited(5),
	}
	if unique > 0 {
		stats.AvgPerReference = float64(total) / float64(unique)
	}
	return stats
}

// Clear drops every node, in memory and in the store.
func (g *Graph) Clear(ctx context.Context) {
	g.mu.Lock()
	g.nodes = make(map[string]*node)
	g.order = nil
	g.docCitations = make(map[string][]string)
	g.docOrder = nil
	g.mu.Unlock()

	if g.store != nil {
		if err := g.store.Clear(ctx); err != nil {
			g.logger.Printf("[WARN] Failed to clear persisted citations: %v", err)
		}
	}
}

func (g *Graph) ensureNodeLocked(key string) *node {
	if n, ok := g.nodes[key]; ok {
		return n
	}
	n := &node{
		reference:  key,
		citedBySet: make(map[string]bool),
		citesSet:   make(map[string]bool),
	}
	g.nodes[key] = n
	g.order = append(g.order, key)
	return n
}

func snapshot(n *node) Node {
	return Node{
		Reference:     n.reference,
		CitedBy:       append([]string(nil), n.citedBy...),
		Cites:         append([]string(nil), n.cites...),
		CitationCount: n.count,
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
