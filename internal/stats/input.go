package stats

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadEvents parses a tab-separated event table. Expected columns:
// gene_id, chrom, type, start, end, primary, alt, where primary and
// alt are comma-separated transcript indexes ("-" or empty for none).
// Lines starting with # and blank lines are skipped.
func ReadEvents(r io.Reader) ([]Event, error) {
	var events []Event
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			return nil, fmt.Errorf("line %d: want 7 tab-separated fields, got %d", lineNo, len(fields))
		}

		start, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse start: %w", lineNo, err)
		}
		end, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse end: %w", lineNo, err)
		}
		primary, err := parseIDList(fields[5])
		if err != nil {
			return nil, fmt.Errorf("line %d: parse primary ids: %w", lineNo, err)
		}
		alt, err := parseIDList(fields[6])
		if err != nil {
			return nil, fmt.Errorf("line %d: parse alt ids: %w", lineNo, err)
		}

		events = append(events, Event{
			Type:    EventType(fields[2]),
			GeneID:  fields[0],
			Chrom:   fields[1],
			Start:   start,
			End:     end,
			Primary: primary,
			Alt:     alt,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return events, nil
}

// ReadCoverage parses one coverage value per line; the line order
// defines the transcript index. Lines starting with # and blank lines
// are skipped.
func ReadCoverage(r io.Reader) (Coverage, error) {
	var cov Coverage
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse coverage: %w", lineNo, err)
		}
		cov = append(cov, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read coverage: %w", err)
	}
	return cov, nil
}

func parseIDList(s string) ([]int, error) {
	if s == "" || s == "-" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int, len(parts))
	for i, p := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}
