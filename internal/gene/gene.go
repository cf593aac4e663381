package gene

import "github.com/HerwigLab/IsoTools2/internal/splice"

// Gene groups the transcript isoforms annotated under one gene ID.
// Start and End span all transcripts.
type Gene struct {
	ID          string
	Name        string
	Chrom       string
	Strand      int8
	Start       int64
	End         int64
	Transcripts []*Transcript
}

// AddTranscript appends a transcript and widens the gene span to
// cover it.
func (g *Gene) AddTranscript(t *Transcript) {
	if len(g.Transcripts) == 0 || t.Start() < g.Start {
		g.Start = t.Start()
	}
	if len(g.Transcripts) == 0 || t.End() > g.End {
		g.End = t.End()
	}
	g.Transcripts = append(g.Transcripts, t)
}

// Structures returns the exon layout of every transcript, in the order
// the transcripts were added.
func (g *Gene) Structures() []splice.Structure {
	structures := make([]splice.Structure, len(g.Transcripts))
	for i, t := range g.Transcripts {
		structures[i] = t.Exons
	}
	return structures
}

// CodingTranscripts returns the transcripts with an annotated CDS.
func (g *Gene) CodingTranscripts() []*Transcript {
	var coding []*Transcript
	for _, t := range g.Transcripts {
		if t.IsCoding() {
			coding = append(coding, t)
		}
	}
	return coding
}

// CDSStartsOn projects the annotated CDS start of every coding
// transcript of the gene onto the coordinates of transcript t. The
// result maps transcript-relative positions to the ids of the
// transcripts annotated there; starts falling in an intron of t are
// dropped. Nil when nothing projects.
func (g *Gene) CDSStartsOn(t *Transcript) map[int64][]string {
	var starts map[int64][]string
	for _, other := range g.CodingTranscripts() {
		genomic := other.CDSStart
		if other.IsReverseStrand() {
			genomic = other.CDSEnd - 1
		}
		pos, ok := t.Position(genomic)
		if !ok {
			continue
		}
		if starts == nil {
			starts = make(map[int64][]string)
		}
		starts[pos] = append(starts[pos], other.ID)
	}
	return starts
}
