package retrieval

import "sort"

// rrfK dampens the contribution of lower ranks. 60 is the value from the
// original RRF paper and works well without tuning.
const rrfK = 60

// FuseRRF merges ranked lists with Reciprocal Rank Fusion. Each list
// contributes 1/(k+rank) per document, ranks starting at 1; contributions for
// the same document id sum across lists. The result is ordered by descending
// fused score, first-seen order breaking ties. Document fields come from the
// first list that contained the id; Score is replaced by the fused score.
func FuseRRF(lists ...[]Document) []Document {
	fused := make(map[string]float64)
	byID := make(map[string]Document)
	var order []string

	for _, list := range lists {
		for i, doc := range list {
			rank := i + 1
			if _, seen := fused[doc.ID]; !seen {
				order = append(order, doc.ID)
				byID[doc.ID] = doc
			}
			fused[doc.ID] += 1.0 / float64(rrfK+rank)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return fused[order[i]] > fused[order[j]]
	})

	out := make([]Document, len(order))
	for i, id := range order {
		doc := byID[id]
		doc.Score = fused[id]
		out[i] = doc
	}
	return out
}

// Rerank truncates to the top-N by score. The list is expected to be sorted
// already; this stage is a placeholder for a cross-encoder reranker.
func Rerank(docs []Document, topN int) []Document {
	if topN <= 0 || len(docs) <= topN {
		return docs
	}
	return docs[:topN]
}
