// Package bamin reads long-read transcriptome alignments from BAM or
// SAM files, yielding mapped primary records.
package bamin

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"

	"github.com/HerwigLab/IsoTools2/internal/cigar"
	"github.com/HerwigLab/IsoTools2/internal/gene"
	"github.com/HerwigLab/IsoTools2/internal/splice"
)

// Alignment is one mapped read. Pos is the 0-based leftmost reference
// coordinate; Quals holds raw phred base qualities and may be empty
// when the input carries none.
type Alignment struct {
	Name   string
	Chrom  string
	Strand int8
	Pos    int64
	MapQ   uint8
	Ops    []cigar.Op
	Quals  []byte
}

// Structure decodes the alignment into its exon intervals.
func (a *Alignment) Structure() splice.Structure {
	return splice.FromCigar(a.Ops, a.Pos)
}

// Reader iterates over the mapped primary alignments of a file.
// Read returns io.EOF after the last record.
type Reader interface {
	Read() (*Alignment, error)
	Close() error
}

// Open opens a BAM or SAM alignment file, chosen by suffix.
func Open(path string) (Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open alignment file: %w", err)
	}

	if strings.HasSuffix(path, ".bam") {
		br, err := bam.NewReader(f, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open BAM reader: %w", err)
		}
		return &bamReader{f: f, br: br}, nil
	}

	sr, err := sam.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open SAM reader: %w", err)
	}
	return &samReader{f: f, sr: sr}, nil
}

// NewSAMReader reads SAM text from r, for streams and tests.
func NewSAMReader(r io.Reader) (Reader, error) {
	sr, err := sam.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open SAM reader: %w", err)
	}
	return &samReader{sr: sr}, nil
}

type bamReader struct {
	f  *os.File
	br *bam.Reader
}

func (r *bamReader) Read() (*Alignment, error) {
	for {
		rec, err := r.br.Read()
		if err != nil {
			return nil, err
		}
		if skip(rec) {
			continue
		}
		return convert(rec), nil
	}
}

func (r *bamReader) Close() error {
	err := r.br.Close()
	if cerr := r.f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

type samReader struct {
	f  *os.File
	sr *sam.Reader
}

func (r *samReader) Read() (*Alignment, error) {
	for {
		rec, err := r.sr.Read()
		if err != nil {
			return nil, err
		}
		if skip(rec) {
			continue
		}
		return convert(rec), nil
	}
}

func (r *samReader) Close() error {
	if r.f != nil {
		return r.f.Close()
	}
	return nil
}

// skip reports whether a record is not a mapped primary alignment.
func skip(rec *sam.Record) bool {
	return rec.Flags&sam.Unmapped != 0 ||
		rec.Flags&sam.Secondary != 0 ||
		rec.Flags&sam.Supplementary != 0
}

func convert(rec *sam.Record) *Alignment {
	ops := make([]cigar.Op, 0, len(rec.Cigar))
	for _, co := range rec.Cigar {
		ops = append(ops, cigar.Op{Type: opType(co.Type()), Len: int64(co.Len())})
	}

	strand := int8(1)
	if rec.Flags&sam.Reverse != 0 {
		strand = -1
	}

	var chrom string
	if rec.Ref != nil {
		chrom = gene.NormalizeChrom(rec.Ref.Name())
	}

	return &Alignment{
		Name:   rec.Name,
		Chrom:  chrom,
		Strand: strand,
		Pos:    int64(rec.Pos),
		MapQ:   uint8(rec.MapQ),
		Ops:    ops,
		Quals:  rec.Qual,
	}
}

func opType(t sam.CigarOpType) cigar.OpType {
	switch t {
	case sam.CigarInsertion:
		return cigar.Insertion
	case sam.CigarDeletion:
		return cigar.Deletion
	case sam.CigarSkipped:
		return cigar.Skip
	case sam.CigarSoftClipped:
		return cigar.SoftClip
	case sam.CigarHardClipped:
		return cigar.HardClip
	case sam.CigarPadded:
		return cigar.Padding
	case sam.CigarEqual:
		return cigar.Equal
	case sam.CigarMismatch:
		return cigar.Diff
	case sam.CigarBack:
		return cigar.Back
	default:
		return cigar.Match
	}
}
