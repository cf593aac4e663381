package gene

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/HerwigLab/IsoTools2/internal/splice"
)

func twoExonTranscript(strand int8) *Transcript {
	return &Transcript{
		ID:     "ENST001",
		Chrom:  "1",
		Strand: strand,
		Exons:  splice.Structure{{100, 150}, {300, 350}},
	}
}

func TestTranscriptAccessors(t *testing.T) {
	tr := twoExonTranscript(1)
	assert.Equal(t, int64(100), tr.Start())
	assert.Equal(t, int64(350), tr.End())
	assert.Equal(t, int64(100), tr.Length())
	assert.Equal(t, []splice.Junction{{Donor: 150, Acceptor: 300}}, tr.Junctions())
	assert.False(t, tr.IsCoding())
}

func TestTranscriptPosition(t *testing.T) {
	t.Run("forward strand", func(t *testing.T) {
		tr := twoExonTranscript(1)
		for g, want := range map[int64]int64{100: 0, 149: 49, 300: 50, 349: 99} {
			got, ok := tr.Position(g)
			assert.True(t, ok, "position %d", g)
			assert.Equal(t, want, got, "position %d", g)
		}
		_, ok := tr.Position(200)
		assert.False(t, ok, "intronic position")
		_, ok = tr.Position(350)
		assert.False(t, ok, "half-open exon end")
	})

	t.Run("reverse strand", func(t *testing.T) {
		tr := twoExonTranscript(-1)
		for g, want := range map[int64]int64{349: 0, 300: 49, 149: 50, 100: 99} {
			got, ok := tr.Position(g)
			assert.True(t, ok, "position %d", g)
			assert.Equal(t, want, got, "position %d", g)
		}
	})
}

func TestTranscriptCDSInit(t *testing.T) {
	t.Run("forward strand", func(t *testing.T) {
		tr := twoExonTranscript(1)
		tr.CDSStart, tr.CDSEnd = 120, 340
		assert.True(t, tr.IsCoding())
		init, ok := tr.CDSInit()
		assert.True(t, ok)
		assert.Equal(t, int64(20), init)
	})

	t.Run("reverse strand", func(t *testing.T) {
		tr := twoExonTranscript(-1)
		tr.CDSStart, tr.CDSEnd = 120, 340
		init, ok := tr.CDSInit()
		assert.True(t, ok)
		assert.Equal(t, int64(10), init)
	})

	t.Run("non-coding", func(t *testing.T) {
		tr := twoExonTranscript(1)
		_, ok := tr.CDSInit()
		assert.False(t, ok)
	})

	t.Run("cds boundary off exon", func(t *testing.T) {
		tr := twoExonTranscript(1)
		tr.CDSStart, tr.CDSEnd = 200, 340
		_, ok := tr.CDSInit()
		assert.False(t, ok)
	})
}

func TestGeneAddTranscript(t *testing.T) {
	g := &Gene{ID: "ENSG001", Chrom: "1", Strand: 1}
	g.AddTranscript(twoExonTranscript(1))
	assert.Equal(t, int64(100), g.Start)
	assert.Equal(t, int64(350), g.End)

	wide := &Transcript{Exons: splice.Structure{{50, 60}, {400, 500}}}
	g.AddTranscript(wide)
	assert.Equal(t, int64(50), g.Start)
	assert.Equal(t, int64(500), g.End)

	assert.Len(t, g.Structures(), 2)
	assert.Equal(t, splice.Structure{{100, 150}, {300, 350}}, g.Structures()[0])
}

func TestGeneCodingTranscripts(t *testing.T) {
	g := &Gene{ID: "ENSG001"}
	coding := twoExonTranscript(1)
	coding.CDSStart, coding.CDSEnd = 120, 340
	g.AddTranscript(coding)
	g.AddTranscript(twoExonTranscript(1))

	assert.Len(t, g.CodingTranscripts(), 1)
	assert.Same(t, coding, g.CodingTranscripts()[0])
}

func TestGeneCDSStartsOn(t *testing.T) {
	t.Run("forward strand", func(t *testing.T) {
		g := &Gene{ID: "ENSG001", Chrom: "1", Strand: 1}

		target := twoExonTranscript(1)
		target.CDSStart, target.CDSEnd = 120, 340

		shifted := twoExonTranscript(1)
		shifted.ID = "ENST002"
		shifted.CDSStart, shifted.CDSEnd = 310, 340

		sameInit := twoExonTranscript(1)
		sameInit.ID = "ENST003"
		sameInit.CDSStart, sameInit.CDSEnd = 120, 330

		intronic := &Transcript{
			ID: "ENST004", Chrom: "1", Strand: 1,
			Exons:    splice.Structure{{180, 250}, {300, 350}},
			CDSStart: 200, CDSEnd: 340,
		}

		noncoding := twoExonTranscript(1)
		noncoding.ID = "ENST005"

		for _, tr := range []*Transcript{target, shifted, sameInit, intronic, noncoding} {
			g.AddTranscript(tr)
		}

		starts := g.CDSStartsOn(target)
		assert.Equal(t, map[int64][]string{
			20: {"ENST001", "ENST003"},
			60: {"ENST002"},
		}, starts)
	})

	t.Run("reverse strand", func(t *testing.T) {
		g := &Gene{ID: "ENSG001", Chrom: "1", Strand: -1}

		target := twoExonTranscript(-1)
		other := twoExonTranscript(-1)
		other.ID = "ENST002"
		other.CDSStart, other.CDSEnd = 120, 340

		g.AddTranscript(target)
		g.AddTranscript(other)

		starts := g.CDSStartsOn(target)
		assert.Equal(t, map[int64][]string{10: {"ENST002"}}, starts)
	})

	t.Run("nothing coding", func(t *testing.T) {
		g := &Gene{ID: "ENSG001"}
		target := twoExonTranscript(1)
		g.AddTranscript(target)

		assert.Nil(t, g.CDSStartsOn(target))
	})
}
