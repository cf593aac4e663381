package gene

import (
	"sort"
	"strings"
)

// Model provides access to the reference annotation for structure
// classification and ORF discovery.
type Model struct {
	// genes stores genes indexed by chromosome
	genes map[string][]*Gene
	byID  map[string]*Gene
	trees map[string]*intervalTree
}

// NewModel creates a new empty gene model.
func NewModel() *Model {
	return &Model{
		genes: make(map[string][]*Gene),
		byID:  make(map[string]*Gene),
	}
}

// AddGene adds a gene to the model. Index must be called before
// overlap queries once loading is complete.
func (m *Model) AddGene(g *Gene) {
	m.genes[g.Chrom] = append(m.genes[g.Chrom], g)
	m.byID[g.ID] = g
	m.trees = nil
}

// Index builds the per-chromosome interval trees and sorts each
// chromosome's gene list by start position.
func (m *Model) Index() {
	m.trees = make(map[string]*intervalTree, len(m.genes))
	for chrom, genes := range m.genes {
		sort.Slice(genes, func(i, j int) bool { return genes[i].Start < genes[j].Start })
		m.trees[chrom] = buildIntervalTree(genes)
	}
}

// Overlapping returns all genes whose span intersects the half-open
// range [start, end) on the given chromosome.
func (m *Model) Overlapping(chrom string, start, end int64) []*Gene {
	chrom = NormalizeChrom(chrom)
	if tree, ok := m.trees[chrom]; ok {
		return tree.overlapping(start, end)
	}

	var result []*Gene
	for _, g := range m.genes[chrom] {
		if g.End > start && end > g.Start {
			result = append(result, g)
		}
	}
	return result
}

// Gene returns a gene by ID.
func (m *Model) Gene(id string) (*Gene, bool) {
	g, ok := m.byID[id]
	return g, ok
}

// GenesOnChrom returns all genes of a chromosome.
func (m *Model) GenesOnChrom(chrom string) []*Gene {
	return m.genes[NormalizeChrom(chrom)]
}

// Chromosomes returns a sorted list of chromosomes in the model.
func (m *Model) Chromosomes() []string {
	chroms := make([]string, 0, len(m.genes))
	for chrom := range m.genes {
		chroms = append(chroms, chrom)
	}
	sort.Strings(chroms)
	return chroms
}

// GeneCount returns the total number of genes in the model.
func (m *Model) GeneCount() int {
	count := 0
	for _, genes := range m.genes {
		count += len(genes)
	}
	return count
}

// TranscriptCount returns the total number of transcripts in the model.
func (m *Model) TranscriptCount() int {
	count := 0
	for _, genes := range m.genes {
		for _, g := range genes {
			count += len(g.Transcripts)
		}
	}
	return count
}

// NormalizeChrom normalizes chromosome names by removing the "chr"
// prefix, for consistency between annotation sources (GENCODE uses
// "chr1", alignments often use "1").
func NormalizeChrom(chrom string) string {
	if strings.HasPrefix(chrom, "chr") {
		return chrom[3:]
	}
	return chrom
}
