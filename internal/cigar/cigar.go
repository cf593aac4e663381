// Package cigar parses alignment CIGAR strings into typed operations.
package cigar

import "fmt"

// OpType identifies a CIGAR operation. The numeric values follow the
// standard operation order "MIDNSHP=XB".
type OpType uint8

const (
	Match     OpType = iota // M: alignment match or mismatch
	Insertion               // I: insertion to the reference
	Deletion                // D: deletion from the reference
	Skip                    // N: skipped region (splice junction)
	SoftClip                // S: soft-clipped query bases
	HardClip                // H: hard-clipped query bases
	Padding                 // P: silent deletion from padded reference
	Equal                   // =: sequence match
	Diff                    // X: sequence mismatch
	Back                    // B: move backwards on the reference
)

const opLetters = "MIDNSHP=XB"

// Op is a single CIGAR operation with its length.
type Op struct {
	Type OpType
	Len  int64
}

// String returns the operation letter for the type, or "?" if unknown.
func (t OpType) String() string {
	if int(t) < len(opLetters) {
		return string(opLetters[t])
	}
	return "?"
}

// ConsumesReference reports whether the operation advances the
// reference coordinate.
func (t OpType) ConsumesReference() bool {
	switch t {
	case Match, Deletion, Skip, Equal, Diff:
		return true
	}
	return false
}

// ConsumesQuery reports whether the operation advances the query
// (read) coordinate.
func (t OpType) ConsumesQuery() bool {
	switch t {
	case Match, Insertion, SoftClip, Equal, Diff:
		return true
	}
	return false
}

// TypeFromByte maps an operation letter to its OpType.
func TypeFromByte(b byte) (OpType, bool) {
	switch b {
	case 'M':
		return Match, true
	case 'I':
		return Insertion, true
	case 'D':
		return Deletion, true
	case 'N':
		return Skip, true
	case 'S':
		return SoftClip, true
	case 'H':
		return HardClip, true
	case 'P':
		return Padding, true
	case '=':
		return Equal, true
	case 'X':
		return Diff, true
	case 'B':
		return Back, true
	}
	return 0, false
}

// Scan parses a CIGAR string into its operations.
// The placeholder "*" yields a nil slice. Each operation must be a
// decimal length followed by one of the letters "MIDNSHP=XB".
func Scan(s string) ([]Op, error) {
	if s == "" || s == "*" {
		return nil, nil
	}

	ops := make([]Op, 0, 8)
	var length int64
	haveDigit := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' {
			length = length*10 + int64(c-'0')
			haveDigit = true
			continue
		}
		t, ok := TypeFromByte(c)
		if !ok {
			return nil, fmt.Errorf("invalid cigar %q: unexpected character %q at position %d", s, c, i)
		}
		if !haveDigit {
			return nil, fmt.Errorf("invalid cigar %q: operation %q at position %d has no length", s, c, i)
		}
		ops = append(ops, Op{Type: t, Len: length})
		length = 0
		haveDigit = false
	}

	if haveDigit {
		return nil, fmt.Errorf("invalid cigar %q: trailing length without operation", s)
	}

	return ops, nil
}

// AlignedLength returns the number of reference bases the operations span.
func AlignedLength(ops []Op) int64 {
	var n int64
	for _, op := range ops {
		if op.Type.ConsumesReference() {
			n += op.Len
		}
	}
	return n
}

// QueryLength returns the number of query bases the operations consume.
func QueryLength(ops []Op) int64 {
	var n int64
	for _, op := range ops {
		if op.Type.ConsumesQuery() {
			n += op.Len
		}
	}
	return n
}
