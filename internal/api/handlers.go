package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/HerwigLab/IsoTools2/internal/orf"
	"github.com/HerwigLab/IsoTools2/internal/output"
	"github.com/HerwigLab/IsoTools2/internal/splice"
)

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status      string `json:"status"`
	Genes       int    `json:"genes"`
	Transcripts int    `json:"transcripts"`
}

type geneResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Chrom       string `json:"chrom"`
	Strand      string `json:"strand"`
	Start       int64  `json:"start"`
	End         int64  `json:"end"`
	Transcripts int    `json:"transcripts"`
}

type transcriptResponse struct {
	ID      string     `json:"id"`
	Name    string     `json:"name,omitempty"`
	Biotype string     `json:"biotype,omitempty"`
	Exons   [][2]int64 `json:"exons"`
	Length  int64      `json:"length"`
	Coding  bool       `json:"coding"`
}

type orfsRequest struct {
	Sequence string `json:"sequence"`
}

type orfResponse struct {
	Start        int64   `json:"start"`
	Stop         int64   `json:"stop"`
	Frame        int     `json:"frame"`
	StartCodon   string  `json:"start_codon"`
	StopCodon    string  `json:"stop_codon,omitempty"`
	UpstreamORFs int     `json:"upstream_orfs"`
	KozakScore   float64 `json:"kozak_score"`
	Protein      string  `json:"protein,omitempty"`
}

type orfsResponse struct {
	Count int           `json:"count"`
	ORFs  []orfResponse `json:"orfs"`
}

type classifyRequest struct {
	Chrom string     `json:"chrom"`
	Exons [][2]int64 `json:"exons"`
}

type classifyResponse struct {
	Category         string `json:"category"`
	GeneID           string `json:"gene_id,omitempty"`
	GeneName         string `json:"gene_name,omitempty"`
	TranscriptID     string `json:"transcript_id,omitempty"`
	NovelSpliceSites int    `json:"novel_splice_sites"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Genes:       s.model.GeneCount(),
		Transcripts: s.model.TranscriptCount(),
	})
}

func (s *Server) handleGene(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	g, ok := s.model.Gene(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("gene %q not found", id))
		return
	}

	writeJSON(w, http.StatusOK, geneResponse{
		ID:          g.ID,
		Name:        g.Name,
		Chrom:       g.Chrom,
		Strand:      output.FormatStrand(g.Strand),
		Start:       g.Start,
		End:         g.End,
		Transcripts: len(g.Transcripts),
	})
}

func (s *Server) handleTranscripts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	g, ok := s.model.Gene(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("gene %q not found", id))
		return
	}

	transcripts := make([]transcriptResponse, len(g.Transcripts))
	for i, t := range g.Transcripts {
		transcripts[i] = transcriptResponse{
			ID:      t.ID,
			Name:    t.Name,
			Biotype: t.Biotype,
			Exons:   exonPairs(t.Exons),
			Length:  t.Length(),
			Coding:  t.IsCoding(),
		}
	}
	writeJSON(w, http.StatusOK, transcripts)
}

func (s *Server) handleORFs(w http.ResponseWriter, r *http.Request) {
	var req orfsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Sequence == "" {
		writeError(w, http.StatusBadRequest, "sequence is required")
		return
	}

	seq := strings.ToUpper(req.Sequence)
	orfs := orf.FindORFs(seq, orf.DefaultStartCodons, orf.DefaultStopCodons, nil)

	resp := orfsResponse{Count: len(orfs), ORFs: make([]orfResponse, len(orfs))}
	for i, o := range orfs {
		resp.ORFs[i] = orfResponse{
			Start:        o.Start,
			Stop:         o.Stop,
			Frame:        o.Frame,
			StartCodon:   o.StartCodon,
			StopCodon:    o.StopCodon,
			UpstreamORFs: o.UpstreamORFs,
			KozakScore:   s.pwm.Score(seq, o.Start),
			Protein:      strings.TrimSuffix(orf.TranslateSequence(seq[o.Start:o.Stop]), "*"),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Chrom == "" {
		writeError(w, http.StatusBadRequest, "chrom is required")
		return
	}
	if len(req.Exons) == 0 {
		writeError(w, http.StatusBadRequest, "exons are required")
		return
	}

	exons := make(splice.Structure, len(req.Exons))
	var prevEnd int64
	for i, pair := range req.Exons {
		if pair[0] >= pair[1] || pair[0] < prevEnd {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("exon %d: intervals must be ascending half-open ranges", i))
			return
		}
		exons[i] = splice.Exon{Start: pair[0], End: pair[1]}
		prevEnd = pair[1]
	}

	res := s.classifier.ClassifyStructure(req.Chrom, exons)
	writeJSON(w, http.StatusOK, classifyResponse{
		Category:         res.Category,
		GeneID:           res.GeneID,
		GeneName:         res.GeneName,
		TranscriptID:     res.TranscriptID,
		NovelSpliceSites: res.NovelSites,
	})
}

func exonPairs(exons splice.Structure) [][2]int64 {
	pairs := make([][2]int64, len(exons))
	for i, e := range exons {
		pairs[i] = [2]int64{e.Start, e.End}
	}
	return pairs
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
