package gene

import "sort"

// intervalTree provides O(log n + k) overlap queries using a sorted
// slice. Genes are indexed once and never modified after build.
type intervalTree struct {
	entries []treeEntry
	maxEnd  []int64 // maxEnd[i] = max(end) for entries[:i+1]
}

type treeEntry struct {
	start int64
	end   int64
	gene  *Gene
}

func buildIntervalTree(genes []*Gene) *intervalTree {
	if len(genes) == 0 {
		return &intervalTree{}
	}

	entries := make([]treeEntry, len(genes))
	for i, g := range genes {
		entries[i] = treeEntry{start: g.Start, end: g.End, gene: g}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].start < entries[j].start
	})

	// Prefix-max array: maxEnd[i] = max(end) for entries[:i+1].
	maxEnd := make([]int64, len(entries))
	maxEnd[0] = entries[0].end
	for i := 1; i < len(entries); i++ {
		maxEnd[i] = entries[i].end
		if maxEnd[i-1] > maxEnd[i] {
			maxEnd[i] = maxEnd[i-1]
		}
	}

	return &intervalTree{entries: entries, maxEnd: maxEnd}
}

// overlapping returns all genes whose half-open span intersects
// [start, end), in ascending start order.
func (t *intervalTree) overlapping(start, end int64) []*Gene {
	if len(t.entries) == 0 {
		return nil
	}

	var result []*Gene

	// Binary search: candidates must start before the query end, so
	// only entries [0, hi) need scanning.
	hi := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].start >= end
	})

	for i := hi - 1; i >= 0; i-- {
		// Prune: if no entry in [0, i] ends past the query start,
		// nothing earlier can overlap either.
		if t.maxEnd[i] <= start {
			break
		}
		if t.entries[i].end > start {
			result = append(result, t.entries[i].gene)
		}
	}

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result
}
