package splice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenomicPositions(t *testing.T) {
	exons := Structure{{100, 150}, {300, 350}} // transcript length 100

	t.Run("forward strand", func(t *testing.T) {
		got, err := GenomicPositions([]int64{0, 49, 50, 99, 100}, exons, false)
		require.NoError(t, err)
		want := map[int64]int64{
			0:   100, // first base of the first exon
			49:  149, // last base of the first exon
			50:  300, // first base of the second exon
			99:  349,
			100: 350, // transcript end maps to the exon end boundary
		}
		assert.Equal(t, want, got)
	})

	t.Run("reverse strand", func(t *testing.T) {
		got, err := GenomicPositions([]int64{0, 30, 100}, exons, true)
		require.NoError(t, err)
		want := map[int64]int64{
			0:   350, // transcript start is the right genomic boundary
			30:  320,
			100: 100,
		}
		assert.Equal(t, want, got)
	})

	t.Run("single exon", func(t *testing.T) {
		got, err := GenomicPositions([]int64{0, 50, 100}, Structure{{100, 200}}, false)
		require.NoError(t, err)
		assert.Equal(t, map[int64]int64{0: 100, 50: 150, 100: 200}, got)
	})

	t.Run("duplicate positions collapse", func(t *testing.T) {
		got, err := GenomicPositions([]int64{10, 10, 20}, exons, false)
		require.NoError(t, err)
		assert.Equal(t, map[int64]int64{10: 110, 20: 120}, got)
	})

	t.Run("unsorted input", func(t *testing.T) {
		got, err := GenomicPositions([]int64{99, 0, 50}, exons, false)
		require.NoError(t, err)
		assert.Equal(t, map[int64]int64{0: 100, 50: 300, 99: 349}, got)
	})

	t.Run("position past transcript end", func(t *testing.T) {
		_, err := GenomicPositions([]int64{200}, exons, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "out of range")
	})

	t.Run("no exons", func(t *testing.T) {
		_, err := GenomicPositions([]int64{0}, nil, false)
		assert.Error(t, err)
	})

	t.Run("no positions", func(t *testing.T) {
		got, err := GenomicPositions(nil, exons, false)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
