package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/HerwigLab/IsoTools2/internal/classify"
)

// ClassificationRow is one persisted read classification. The exon
// structure itself is not stored, only its count and summed length.
type ClassificationRow struct {
	ReadName     string
	Chrom        string
	Strand       int8
	ExonCount    int
	Length       int64
	Category     string
	GeneID       string
	GeneName     string
	TranscriptID string
	NovelSites   int
}

// WriteClassifications batch-inserts classification results into DuckDB
// using the Appender API. A read name appearing more than once (secondary
// or supplementary alignments) is written only the first time.
func (s *Store) WriteClassifications(results []*classify.Result) error {
	if len(results) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(results))
	deduped := make([]*classify.Result, 0, len(results))
	for _, r := range results {
		if !seen[r.ReadName] {
			seen[r.ReadName] = true
			deduped = append(deduped, r)
		}
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "classifications")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range deduped {
		if err := appender.AppendRow(
			r.ReadName, r.Chrom, r.Strand,
			int32(len(r.Exons)), r.Exons.ExonicLength(),
			r.Category, r.GeneID, r.GeneName, r.TranscriptID,
			int32(r.NovelSites),
		); err != nil {
			return fmt.Errorf("append classification: %w", err)
		}
	}

	return appender.Flush()
}

// ClearClassifications removes all stored classifications.
func (s *Store) ClearClassifications() error {
	_, err := s.db.Exec("DELETE FROM classifications")
	return err
}

// CategoryCounts returns the number of stored reads per category.
func (s *Store) CategoryCounts() (map[string]int64, error) {
	rows, err := s.db.Query("SELECT category, COUNT(*) FROM classifications GROUP BY category")
	if err != nil {
		return nil, fmt.Errorf("query category counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var category string
		var n int64
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		counts[category] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category counts: %w", err)
	}
	return counts, nil
}

// SearchByGene returns all stored classifications assigned to a gene.
func (s *Store) SearchByGene(geneID string) ([]ClassificationRow, error) {
	rows, err := s.db.Query(`SELECT
		read_name, chrom, strand, exon_count, length,
		category, gene_id, gene_name, transcript_id, novel_splice_sites
		FROM classifications
		WHERE gene_id=? ORDER BY read_name`, geneID)
	if err != nil {
		return nil, fmt.Errorf("query by gene: %w", err)
	}
	defer rows.Close()

	var results []ClassificationRow
	for rows.Next() {
		var row ClassificationRow
		if err := rows.Scan(
			&row.ReadName, &row.Chrom, &row.Strand, &row.ExonCount, &row.Length,
			&row.Category, &row.GeneID, &row.GeneName, &row.TranscriptID, &row.NovelSites,
		); err != nil {
			return nil, fmt.Errorf("scan classification: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate classifications: %w", err)
	}
	return results, nil
}
