package gtf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HerwigLab/IsoTools2/internal/gene"
	"github.com/HerwigLab/IsoTools2/internal/splice"
)

const krasGTF = `##description: Test annotation
chr12	HAVANA	gene	25205246	25250929	.	-	.	gene_id "ENSG00000133703.14"; gene_type "protein_coding"; gene_name "KRAS";
chr12	HAVANA	transcript	25205246	25250929	.	-	.	gene_id "ENSG00000133703.14"; transcript_id "ENST00000311936.8"; gene_name "KRAS"; transcript_name "KRAS-201"; transcript_type "protein_coding";
chr12	HAVANA	exon	25250751	25250929	.	-	.	gene_id "ENSG00000133703.14"; transcript_id "ENST00000311936.8"; exon_number "1";
chr12	HAVANA	exon	25245274	25245395	.	-	.	gene_id "ENSG00000133703.14"; transcript_id "ENST00000311936.8"; exon_number "2";
chr12	HAVANA	CDS	25250751	25250808	.	-	0	gene_id "ENSG00000133703.14"; transcript_id "ENST00000311936.8";
chr12	HAVANA	CDS	25245277	25245395	.	-	2	gene_id "ENSG00000133703.14"; transcript_id "ENST00000311936.8";
chr12	HAVANA	start_codon	25250806	25250808	.	-	0	gene_id "ENSG00000133703.14"; transcript_id "ENST00000311936.8";
chr12	HAVANA	stop_codon	25245274	25245276	.	-	0	gene_id "ENSG00000133703.14"; transcript_id "ENST00000311936.8";
`

func TestParseAttributes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]string
	}{
		{
			name:  "basic attributes",
			input: `gene_id "ENSG00000133703"; transcript_id "ENST00000311936"; gene_name "KRAS";`,
			expected: map[string]string{
				"gene_id":       "ENSG00000133703",
				"transcript_id": "ENST00000311936",
				"gene_name":     "KRAS",
			},
		},
		{
			name:  "with tags",
			input: `gene_id "ENSG00000133703"; tag "Ensembl_canonical"; tag "MANE_Select";`,
			expected: map[string]string{
				"gene_id": "ENSG00000133703",
				"tag":     "MANE_Select", // Last value wins
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseAttributes(tt.input)
			for key, want := range tt.expected {
				assert.Equal(t, want, result[key], "parseAttributes()[%q]", key)
			}
		})
	}
}

func TestStripVersion(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ENST00000311936.8", "ENST00000311936"},
		{"ENSG00000133703.14", "ENSG00000133703"},
		{"ENST00000311936", "ENST00000311936"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, stripVersion(tt.input), "stripVersion(%q)", tt.input)
	}
}

func TestParseStrand(t *testing.T) {
	assert.Equal(t, int8(1), parseStrand("+"))
	assert.Equal(t, int8(-1), parseStrand("-"))
}

func TestLoader_ParseGTF(t *testing.T) {
	loader := &Loader{}
	genes, err := loader.parseGTF(strings.NewReader(krasGTF), "")
	require.NoError(t, err)
	require.Len(t, genes, 1)

	g := genes[0]
	assert.Equal(t, "ENSG00000133703", g.ID)
	assert.Equal(t, "KRAS", g.Name)
	assert.Equal(t, "12", g.Chrom)
	assert.Equal(t, int8(-1), g.Strand)
	assert.Equal(t, int64(25245273), g.Start)
	assert.Equal(t, int64(25250929), g.End)

	require.Len(t, g.Transcripts, 1)
	tr := g.Transcripts[0]
	assert.Equal(t, "ENST00000311936", tr.ID)
	assert.Equal(t, "KRAS-201", tr.Name)
	assert.Equal(t, "protein_coding", tr.Biotype)

	// Coordinates converted to 0-based half-open, exons ascending.
	assert.Equal(t, splice.Structure{{25245273, 25245395}, {25250750, 25250929}}, tr.Exons)

	// CDS span covers CDS, start codon and stop codon features.
	assert.Equal(t, int64(25245273), tr.CDSStart)
	assert.Equal(t, int64(25250808), tr.CDSEnd)
	require.True(t, tr.IsCoding())

	init, ok := tr.CDSInit()
	require.True(t, ok)
	assert.Equal(t, int64(121), init)
}

func TestLoader_NoGeneLine(t *testing.T) {
	gtfContent := `chr1	HAVANA	transcript	1001	2000	.	+	.	gene_id "ENSG01"; transcript_id "ENST01"; gene_name "TEST"; transcript_type "lncRNA";
chr1	HAVANA	exon	1001	1200	.	+	.	gene_id "ENSG01"; transcript_id "ENST01";
chr1	HAVANA	exon	1501	2000	.	+	.	gene_id "ENSG01"; transcript_id "ENST01";
`
	loader := &Loader{}
	genes, err := loader.parseGTF(strings.NewReader(gtfContent), "")
	require.NoError(t, err)
	require.Len(t, genes, 1)

	g := genes[0]
	assert.Equal(t, "ENSG01", g.ID)
	assert.Equal(t, "TEST", g.Name, "gene name taken from transcript attributes")
	require.Len(t, g.Transcripts, 1)
	assert.Equal(t, splice.Structure{{1000, 1200}, {1500, 2000}}, g.Transcripts[0].Exons)
	assert.False(t, g.Transcripts[0].IsCoding())
}

func TestLoader_TranscriptWithoutExonsDropped(t *testing.T) {
	gtfContent := `chr1	HAVANA	gene	1001	2000	.	+	.	gene_id "ENSG01"; gene_name "TEST";
chr1	HAVANA	transcript	1001	2000	.	+	.	gene_id "ENSG01"; transcript_id "ENST01";
`
	loader := &Loader{}
	genes, err := loader.parseGTF(strings.NewReader(gtfContent), "")
	require.NoError(t, err)
	assert.Empty(t, genes)
}

func TestLoader_FilterChromosome(t *testing.T) {
	gtfContent := krasGTF +
		`chr1	HAVANA	transcript	100000	200000	.	+	.	gene_id "ENSG02"; transcript_id "ENST02"; gene_name "OTHER"; transcript_type "protein_coding";
chr1	HAVANA	exon	100000	100100	.	+	.	gene_id "ENSG02"; transcript_id "ENST02";
`
	loader := &Loader{}
	genes, err := loader.parseGTF(strings.NewReader(gtfContent), "chr12")
	require.NoError(t, err)
	require.Len(t, genes, 1)
	assert.Equal(t, "ENSG00000133703", genes[0].ID)
}

func TestLoader_LoadFile(t *testing.T) {
	loader := NewLoader("../../testdata/sample.gtf")
	m := gene.NewModel()
	require.NoError(t, loader.Load(m))

	g, ok := m.Gene("ENSG00000133703")
	require.True(t, ok)
	assert.Equal(t, "KRAS", g.Name)

	overlapping := m.Overlapping("chr12", 25245273, 25245395)
	require.Len(t, overlapping, 1)
	assert.Equal(t, "ENSG00000133703", overlapping[0].ID)
}
