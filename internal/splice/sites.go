package splice

import "sort"

// SpliceSiteMembership checks each junction of a candidate transcript
// against the exon boundaries of a transcript collection.
//
// The result holds two bits per junction: bit 2i is set when some
// multi-exon structure has an exon end exactly at junction i's donor
// position (the structure's final exon end does not count), and bit
// 2i+1 when some structure has an exon start exactly at the acceptor
// position (the first exon start does not count).
//
// Junction positions are visited in ascending coordinate order with one
// cursor per structure, so the cost stays near-linear in the total exon
// count instead of quadratic over (junction, structure) pairs.
func SpliceSiteMembership(junctions []Junction, structures []Structure) []bool {
	sites := make([]bool, 2*len(junctions))
	if len(junctions) == 0 {
		return sites
	}

	donorIdx := make(map[int64][]int)
	acceptorIdx := make(map[int64][]int)
	for i, j := range junctions {
		donorIdx[j.Donor] = append(donorIdx[j.Donor], i)
		acceptorIdx[j.Acceptor] = append(acceptorIdx[j.Acceptor], i)
	}

	// Donor streams: exon ends, excluding each structure's last exon.
	donors := make([][]int64, 0, len(structures))
	for _, s := range structures {
		if len(s) < 2 {
			continue
		}
		ends := make([]int64, 0, len(s)-1)
		for _, e := range s[:len(s)-1] {
			ends = append(ends, e.End)
		}
		donors = append(donors, ends)
	}
	matchStreams(sortedKeys(donorIdx), donors, func(pos int64) {
		for _, i := range donorIdx[pos] {
			sites[2*i] = true
		}
	})

	// Acceptor streams: exon starts, excluding each structure's first exon.
	acceptors := make([][]int64, 0, len(structures))
	for _, s := range structures {
		if len(s) < 2 {
			continue
		}
		starts := make([]int64, 0, len(s)-1)
		for _, e := range s[1:] {
			starts = append(starts, e.Start)
		}
		acceptors = append(acceptors, starts)
	}
	matchStreams(sortedKeys(acceptorIdx), acceptors, func(pos int64) {
		for _, i := range acceptorIdx[pos] {
			sites[2*i+1] = true
		}
	})

	return sites
}

// matchStreams visits the query positions in order, advancing one
// cursor per stream, and calls found for each position present in at
// least one stream. Streams must be ascending, as must the queries.
func matchStreams(queries []int64, streams [][]int64, found func(pos int64)) {
	cur := make([]int, len(streams))
	for _, pos := range queries {
		for j, stream := range streams {
			for cur[j] < len(stream) && pos > stream[cur[j]] {
				cur[j]++
			}
			if cur[j] < len(stream) && stream[cur[j]] == pos {
				found(pos)
				break
			}
		}
	}
}

func sortedKeys(m map[int64][]int) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
