package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/HerwigLab/IsoTools2/internal/stats"
)

// eventTestKey is the composite key for deduplicating event tests
// before writing.
type eventTestKey struct {
	geneID       string
	typeA        stats.EventType
	startA, endA int64
	typeB        stats.EventType
	startB, endB int64
}

// WriteEventTests batch-inserts event coordination tests into DuckDB
// using the Appender API. Duplicate event pairs are written only once.
func (s *Store) WriteEventTests(records []*stats.EventTestRecord) error {
	if len(records) == 0 {
		return nil
	}

	seen := make(map[eventTestKey]bool, len(records))
	deduped := make([]*stats.EventTestRecord, 0, len(records))
	for _, rec := range records {
		k := eventTestKey{
			rec.GeneID,
			rec.EventA.Type, rec.EventA.Start, rec.EventA.End,
			rec.EventB.Type, rec.EventB.Start, rec.EventB.End,
		}
		if !seen[k] {
			seen[k] = true
			deduped = append(deduped, rec)
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
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "event_tests")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, rec := range deduped {
		if err := appender.AppendRow(
			rec.GeneID, rec.Chrom,
			string(rec.EventA.Type), rec.EventA.Start, rec.EventA.End,
			string(rec.EventB.Type), rec.EventB.Start, rec.EventB.End,
			rec.Result.PValue, rec.Result.Statistic, rec.Result.Log2OR,
			rec.Result.DeltaPSIAB, rec.Result.DeltaPSIBA,
		); err != nil {
			return fmt.Errorf("append event test: %w", err)
		}
	}

	return appender.Flush()
}

// SignificantEvents returns the stored event tests with a p-value at or
// below the cutoff, most significant first.
func (s *Store) SignificantEvents(maxP float64) ([]*stats.EventTestRecord, error) {
	rows, err := s.db.Query(`SELECT
		gene_id, chrom, type_a, start_a, end_a, type_b, start_b, end_b,
		p_value, statistic, log2_odds_ratio, dcpsi_ab, dcpsi_ba
		FROM event_tests
		WHERE p_value <= ? ORDER BY p_value, gene_id`, maxP)
	if err != nil {
		return nil, fmt.Errorf("query event tests: %w", err)
	}
	defer rows.Close()

	var records []*stats.EventTestRecord
	for rows.Next() {
		var rec stats.EventTestRecord
		var typeA, typeB string
		if err := rows.Scan(
			&rec.GeneID, &rec.Chrom,
			&typeA, &rec.EventA.Start, &rec.EventA.End,
			&typeB, &rec.EventB.Start, &rec.EventB.End,
			&rec.Result.PValue, &rec.Result.Statistic, &rec.Result.Log2OR,
			&rec.Result.DeltaPSIAB, &rec.Result.DeltaPSIBA,
		); err != nil {
			return nil, fmt.Errorf("scan event test: %w", err)
		}
		rec.EventA.Type = stats.EventType(typeA)
		rec.EventB.Type = stats.EventType(typeB)
		rec.EventA.GeneID, rec.EventA.Chrom = rec.GeneID, rec.Chrom
		rec.EventB.GeneID, rec.EventB.Chrom = rec.GeneID, rec.Chrom
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event tests: %w", err)
	}
	return records, nil
}
