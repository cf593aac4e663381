package duckdb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HerwigLab/IsoTools2/internal/classify"
	"github.com/HerwigLab/IsoTools2/internal/gene"
	"github.com/HerwigLab/IsoTools2/internal/splice"
	"github.com/HerwigLab/IsoTools2/internal/stats"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// --- Classification tests (DuckDB) ---

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
}

func TestWriteAndSearchClassifications(t *testing.T) {
	s := openInMemory(t)

	results := []*classify.Result{
		{
			ReadName: "read1", Chrom: "12", Strand: -1,
			Exons:    splice.Structure{{Start: 100, End: 200}, {Start: 300, End: 450}},
			Category: classify.CategorySpliceMatch,
			GeneID:   "ENSG00000133703", GeneName: "KRAS",
			TranscriptID: "ENST00000311936",
		},
		{
			// Supplementary alignment of read1, dropped on write.
			ReadName: "read1", Chrom: "6", Strand: 1,
			Exons:    splice.Structure{{Start: 10, End: 60}},
			Category: classify.CategoryIntergenic,
		},
		{
			ReadName: "read2", Chrom: "12", Strand: -1,
			Exons:    splice.Structure{{Start: 100, End: 200}, {Start: 350, End: 450}},
			Category: classify.CategoryNovelIsoform,
			GeneID:   "ENSG00000133703", GeneName: "KRAS",
			NovelSites: 2,
		},
		{
			ReadName: "read3", Chrom: "7", Strand: 1,
			Exons:    splice.Structure{{Start: 5000, End: 5100}},
			Category: classify.CategoryIntergenic,
		},
	}
	require.NoError(t, s.WriteClassifications(results))

	kras, err := s.SearchByGene("ENSG00000133703")
	require.NoError(t, err)
	require.Len(t, kras, 2)

	assert.Equal(t, "read1", kras[0].ReadName)
	assert.Equal(t, "12", kras[0].Chrom)
	assert.Equal(t, int8(-1), kras[0].Strand)
	assert.Equal(t, 2, kras[0].ExonCount)
	assert.Equal(t, int64(250), kras[0].Length)
	assert.Equal(t, "splice_match", kras[0].Category)
	assert.Equal(t, "ENST00000311936", kras[0].TranscriptID)

	assert.Equal(t, "read2", kras[1].ReadName)
	assert.Equal(t, "novel_isoform", kras[1].Category)
	assert.Equal(t, 2, kras[1].NovelSites)

	none, err := s.SearchByGene("ENSG00000000000")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCategoryCounts(t *testing.T) {
	s := openInMemory(t)

	results := []*classify.Result{
		{ReadName: "r1", Chrom: "1", Exons: splice.Structure{{Start: 0, End: 50}}, Category: classify.CategorySpliceMatch},
		{ReadName: "r2", Chrom: "1", Exons: splice.Structure{{Start: 0, End: 50}}, Category: classify.CategorySpliceMatch},
		{ReadName: "r3", Chrom: "1", Exons: splice.Structure{{Start: 0, End: 50}}, Category: classify.CategoryNovelIsoform},
		{ReadName: "r4", Chrom: "2", Exons: splice.Structure{{Start: 0, End: 50}}, Category: classify.CategoryIntergenic},
	}
	require.NoError(t, s.WriteClassifications(results))

	counts, err := s.CategoryCounts()
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		"splice_match":  2,
		"novel_isoform": 1,
		"intergenic":    1,
	}, counts)
}

func TestCategoryCountsEmpty(t *testing.T) {
	s := openInMemory(t)

	counts, err := s.CategoryCounts()
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestClearClassifications(t *testing.T) {
	s := openInMemory(t)

	results := []*classify.Result{
		{ReadName: "r1", Chrom: "1", Exons: splice.Structure{{Start: 0, End: 50}},
			Category: classify.CategorySpliceMatch, GeneID: "G1"},
	}
	require.NoError(t, s.WriteClassifications(results))

	rows, err := s.SearchByGene("G1")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.NoError(t, s.ClearClassifications())

	rows, err = s.SearchByGene("G1")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

// --- Event test storage ---

func TestWriteAndQueryEventTests(t *testing.T) {
	s := openInMemory(t)

	records := []*stats.EventTestRecord{
		{
			GeneID: "G1", Chrom: "1",
			EventA: stats.Event{Type: stats.EventExonSkipping, Start: 300, End: 400},
			EventB: stats.Event{Type: stats.EventIntronRetention, Start: 500, End: 600},
			Result: stats.TestResult{PValue: 0.01, Statistic: 9, Log2OR: 3.2, DeltaPSIAB: 0.25, DeltaPSIBA: 0.25},
		},
		{
			GeneID: "G2", Chrom: "2",
			EventA: stats.Event{Type: stats.EventAlt3PrimeSite, Start: 100, End: 150},
			EventB: stats.Event{Type: stats.EventExonSkipping, Start: 700, End: 800},
			Result: stats.TestResult{PValue: 0.6, Statistic: 1.1, Log2OR: 0.1},
		},
		{
			// Duplicate of the first pair, dropped on write.
			GeneID: "G1", Chrom: "1",
			EventA: stats.Event{Type: stats.EventExonSkipping, Start: 300, End: 400},
			EventB: stats.Event{Type: stats.EventIntronRetention, Start: 500, End: 600},
			Result: stats.TestResult{PValue: 0.01, Statistic: 9, Log2OR: 3.2, DeltaPSIAB: 0.25, DeltaPSIBA: 0.25},
		},
	}
	require.NoError(t, s.WriteEventTests(records))

	hits, err := s.SignificantEvents(0.05)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "G1", hits[0].GeneID)
	assert.Equal(t, stats.EventExonSkipping, hits[0].EventA.Type)
	assert.Equal(t, int64(500), hits[0].EventB.Start)
	assert.InDelta(t, 0.01, hits[0].Result.PValue, 1e-12)
	assert.InDelta(t, 3.2, hits[0].Result.Log2OR, 1e-12)
	assert.Equal(t, "G1", hits[0].EventA.GeneID)

	all, err := s.SignificantEvents(1)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "G1", all[0].GeneID)
	assert.Equal(t, "G2", all[1].GeneID)
}

// --- Model cache tests (gob) ---

func testModel() *gene.Model {
	m := gene.NewModel()

	g1 := &gene.Gene{ID: "ENSG00000133703", Name: "KRAS", Chrom: "12", Strand: -1}
	g1.AddTranscript(&gene.Transcript{
		ID: "ENST00000311936", GeneID: g1.ID, Chrom: "12", Strand: -1,
		Exons:   splice.Structure{{Start: 25205246, End: 25209911}, {Start: 25215441, End: 25215560}},
		Biotype: "protein_coding", CDSStart: 25209431, CDSEnd: 25215532,
	})
	m.AddGene(g1)

	g2 := &gene.Gene{ID: "ENSG00000157764", Name: "BRAF", Chrom: "7", Strand: -1}
	g2.AddTranscript(&gene.Transcript{
		ID: "ENST00000288602", GeneID: g2.ID, Chrom: "7", Strand: -1,
		Exons: splice.Structure{{Start: 140719327, End: 140726516}},
	})
	m.AddGene(g2)

	m.Index()
	return m
}

func TestModelCacheWriteAndLoad(t *testing.T) {
	dir := t.TempDir()
	mc := NewModelCache(dir)

	fp := FileFingerprint{Path: "anno.gtf", Size: 1000, ModTime: time.Now()}
	require.NoError(t, mc.Write(testModel(), fp))

	m, err := mc.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"12", "7"}, m.Chromosomes())

	kras, ok := m.Gene("ENSG00000133703")
	require.True(t, ok)
	assert.Equal(t, "KRAS", kras.Name)
	assert.Equal(t, int8(-1), kras.Strand)
	assert.Equal(t, int64(25205246), kras.Start)
	assert.Equal(t, int64(25215560), kras.End)

	require.Len(t, kras.Transcripts, 1)
	tr := kras.Transcripts[0]
	assert.Equal(t, "ENST00000311936", tr.ID)
	assert.Equal(t, "protein_coding", tr.Biotype)
	assert.True(t, tr.IsCoding())
	require.Len(t, tr.Exons, 2)
	assert.Equal(t, int64(25205246), tr.Exons[0].Start)

	// The loaded model is indexed and answers overlap queries.
	hits := m.Overlapping("7", 140720000, 140720100)
	require.Len(t, hits, 1)
	assert.Equal(t, "BRAF", hits[0].Name)
}

func TestModelCacheValidation(t *testing.T) {
	dir := t.TempDir()
	mc := NewModelCache(dir)

	now := time.Now()
	gtf := FileFingerprint{Path: "anno.gtf", Size: 1000, ModTime: now}

	// No cache yet → invalid
	assert.False(t, mc.Valid(gtf))

	require.NoError(t, mc.Write(testModel(), gtf))

	// Same fingerprint → valid
	assert.True(t, mc.Valid(gtf))

	// Different size → stale
	changed := gtf
	changed.Size = 9999
	assert.False(t, mc.Valid(changed))

	// Different modtime → stale
	changed = gtf
	changed.ModTime = now.Add(time.Hour)
	assert.False(t, mc.Valid(changed))
}

func TestModelCacheClear(t *testing.T) {
	dir := t.TempDir()
	mc := NewModelCache(dir)

	fp := FileFingerprint{Path: "anno.gtf", Size: 100, ModTime: time.Now()}
	require.NoError(t, mc.Write(testModel(), fp))
	assert.True(t, mc.Valid(fp))

	mc.Clear()
	assert.False(t, mc.Valid(fp))
}
