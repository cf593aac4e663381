// Package stats implements read quality-control metrics and the
// coordination tests for alternative-splicing events.
package stats

// EventType identifies a class of alternative-splicing event.
type EventType string

const (
	EventExonSkipping      EventType = "ES"
	EventAlt3PrimeSite     EventType = "3AS"
	EventAlt5PrimeSite     EventType = "5AS"
	EventIntronRetention   EventType = "IR"
	EventMutuallyExclusive EventType = "ME"
	EventAltTSS            EventType = "TSS"
	EventAltPAS            EventType = "PAS"
)

// Default thresholds for PassesFilter.
const (
	DefaultMinTotal       = 100.0
	DefaultMinAltFraction = 0.1
)

// Event is one alternative-splicing event: the transcripts supporting
// the primary form and those supporting the alternative form, by
// index into a Coverage vector.
type Event struct {
	Type    EventType
	GeneID  string
	Chrom   string
	Start   int64
	End     int64
	Primary []int
	Alt     []int
}

// Coverage holds the read support per transcript.
type Coverage []float64

// Sum adds up the coverage of the given transcript indices.
func (c Coverage) Sum(ids []int) float64 {
	var total float64
	for _, id := range ids {
		total += c[id]
	}
	return total
}

// PassesFilter reports whether the event carries enough reads to be
// tested: the total coverage must reach minTotal and the rarer of the
// two forms must hold at least minAltFraction of it.
func (e Event) PassesFilter(cov Coverage, minTotal, minAltFraction float64) bool {
	pri := cov.Sum(e.Primary)
	alt := cov.Sum(e.Alt)
	total := pri + alt
	if total < minTotal {
		return false
	}
	return min(pri, alt)/total >= minAltFraction
}
