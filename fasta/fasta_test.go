package fasta_test

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhengxinchang/pgr-go/fasta"
)

const testFastaData = ">seq1\n" + "ACGTA\nCGTAC\nGT\n" + ">seq2 A viral sequence\n" + "ACGT\n" + "ACGT\n"

func TestGet(t *testing.T) {
	fa, err := fasta.New(strings.NewReader(testFastaData))
	require.NoError(t, err)

	tests := []struct {
		seq        string
		start, end uint64
		want       string
	}{
		{"seq1", 1, 2, "C"},
		{"seq1", 1, 6, "CGTAC"},
		{"seq1", 0, 12, "ACGTACGTACGT"},
		{"seq1", 10, 12, "GT"},
		{"seq2", 0, 8, "ACGTACGT"},
		{"seq2", 2, 5, "GTA"},
	}
	for _, tt := range tests {
		got, err := fa.Get(tt.seq, tt.start, tt.end)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestGetErrors(t *testing.T) {
	fa, err := fasta.New(strings.NewReader(testFastaData))
	require.NoError(t, err)

	_, err = fa.Get("seq0", 0, 1)
	assert.Error(t, err)

	_, err = fa.Get("seq1", 10, 13)
	assert.Error(t, err)

	_, err = fa.Get("seq1", 4, 3)
	assert.Error(t, err)
}

func TestLen(t *testing.T) {
	fa, err := fasta.New(strings.NewReader(testFastaData))
	require.NoError(t, err)

	l, err := fa.Len("seq1")
	require.NoError(t, err)
	assert.Equal(t, uint64(12), l)

	l, err = fa.Len("seq2")
	require.NoError(t, err)
	assert.Equal(t, uint64(8), l)

	_, err = fa.Len("seq0")
	assert.Error(t, err)
}

func TestSeqNames(t *testing.T) {
	fa, err := fasta.New(strings.NewReader(testFastaData))
	require.NoError(t, err)

	names := append([]string{}, fa.SeqNames()...)
	sort.Strings(names)
	assert.Equal(t, []string{"seq1", "seq2"}, names)
}

func TestNewRejectsEmptyInput(t *testing.T) {
	_, err := fasta.New(strings.NewReader(""))
	assert.Error(t, err)
}

func TestNewStripsDescriptionFromSeqName(t *testing.T) {
	fa, err := fasta.New(strings.NewReader(testFastaData))
	require.NoError(t, err)
	names := fa.SeqNames()
	for _, n := range names {
		assert.NotContains(t, n, " ")
	}
}
