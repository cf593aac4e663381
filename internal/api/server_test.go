package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HerwigLab/IsoTools2/internal/classify"
	"github.com/HerwigLab/IsoTools2/internal/gene"
	"github.com/HerwigLab/IsoTools2/internal/splice"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	m := gene.NewModel()
	g := &gene.Gene{ID: "ENSG00000133703", Name: "KRAS", Chrom: "12", Strand: -1}
	g.AddTranscript(&gene.Transcript{
		ID: "ENST00000311936", GeneID: g.ID, Chrom: "12", Strand: -1,
		Exons:   splice.Structure{{Start: 100, End: 200}, {Start: 300, End: 400}, {Start: 500, End: 600}},
		Biotype: "protein_coding", CDSStart: 150, CDSEnd: 550,
	})
	m.AddGene(g)
	m.Index()

	return NewServer(m, classify.NewClassifier(m), nil)
}

func doRequest(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	testServer(t).Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealthz(t *testing.T) {
	rec := doRequest(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	decode(t, rec, &resp)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Genes)
	assert.Equal(t, 1, resp.Transcripts)
}

func TestGetGene(t *testing.T) {
	rec := doRequest(t, http.MethodGet, "/genes/ENSG00000133703", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp geneResponse
	decode(t, rec, &resp)
	assert.Equal(t, "ENSG00000133703", resp.ID)
	assert.Equal(t, "KRAS", resp.Name)
	assert.Equal(t, "12", resp.Chrom)
	assert.Equal(t, "-", resp.Strand)
	assert.Equal(t, int64(100), resp.Start)
	assert.Equal(t, int64(600), resp.End)
	assert.Equal(t, 1, resp.Transcripts)
}

func TestGetGeneNotFound(t *testing.T) {
	rec := doRequest(t, http.MethodGet, "/genes/ENSG00000000000", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp errorResponse
	decode(t, rec, &resp)
	assert.Contains(t, resp.Error, "ENSG00000000000")
}

func TestGetTranscripts(t *testing.T) {
	rec := doRequest(t, http.MethodGet, "/genes/ENSG00000133703/transcripts", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []transcriptResponse
	decode(t, rec, &resp)
	require.Len(t, resp, 1)
	assert.Equal(t, "ENST00000311936", resp[0].ID)
	assert.Equal(t, "protein_coding", resp[0].Biotype)
	assert.Equal(t, [][2]int64{{100, 200}, {300, 400}, {500, 600}}, resp[0].Exons)
	assert.Equal(t, int64(300), resp[0].Length)
	assert.True(t, resp[0].Coding)
}

func TestPostORFs(t *testing.T) {
	rec := doRequest(t, http.MethodPost, "/orfs", `{"sequence": "atgaaatag"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp orfsResponse
	decode(t, rec, &resp)
	require.Equal(t, 1, resp.Count)
	o := resp.ORFs[0]
	assert.Equal(t, int64(0), o.Start)
	assert.Equal(t, int64(9), o.Stop)
	assert.Equal(t, 0, o.Frame)
	assert.Equal(t, "ATG", o.StartCodon)
	assert.Equal(t, "TAG", o.StopCodon)
	assert.Equal(t, "MK", o.Protein)
	assert.InDelta(t, -0.1203, o.KozakScore, 1e-3)
}

func TestPostORFsOpenEnded(t *testing.T) {
	rec := doRequest(t, http.MethodPost, "/orfs", `{"sequence": "ATGAAA"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp orfsResponse
	decode(t, rec, &resp)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, int64(0), resp.ORFs[0].Stop)
	assert.Empty(t, resp.ORFs[0].StopCodon)
	assert.Empty(t, resp.ORFs[0].Protein)
}

func TestPostORFsNoStart(t *testing.T) {
	rec := doRequest(t, http.MethodPost, "/orfs", `{"sequence": "CCCCCCCCC"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp orfsResponse
	decode(t, rec, &resp)
	assert.Equal(t, 0, resp.Count)
	assert.Empty(t, resp.ORFs)
}

func TestPostORFsBadRequest(t *testing.T) {
	rec := doRequest(t, http.MethodPost, "/orfs", `{"sequence": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, http.MethodPost, "/orfs", `{bad json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostClassify(t *testing.T) {
	rec := doRequest(t, http.MethodPost, "/classify",
		`{"chrom": "12", "exons": [[100,200],[300,400],[500,600]]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp classifyResponse
	decode(t, rec, &resp)
	assert.Equal(t, "splice_match", resp.Category)
	assert.Equal(t, "ENSG00000133703", resp.GeneID)
	assert.Equal(t, "KRAS", resp.GeneName)
	assert.Equal(t, "ENST00000311936", resp.TranscriptID)
}

func TestPostClassifyIntergenic(t *testing.T) {
	rec := doRequest(t, http.MethodPost, "/classify",
		`{"chrom": "12", "exons": [[5000,5100]]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp classifyResponse
	decode(t, rec, &resp)
	assert.Equal(t, "intergenic", resp.Category)
	assert.Empty(t, resp.GeneID)
}

func TestPostClassifyValidation(t *testing.T) {
	cases := map[string]string{
		"missing chrom":  `{"exons": [[100,200]]}`,
		"missing exons":  `{"chrom": "12"}`,
		"inverted exon":  `{"chrom": "12", "exons": [[200,100]]}`,
		"unsorted exons": `{"chrom": "12", "exons": [[300,400],[100,200]]}`,
		"bad json":       `{`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := doRequest(t, http.MethodPost, "/classify", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
