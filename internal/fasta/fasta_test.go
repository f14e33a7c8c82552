package fasta

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biogo/hts/bgzf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArchive(t *testing.T, path string, records []Record) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)

	w := NewWriter(f)
	for _, rec := range records {
		require.NoError(t, w.WriteRecord(rec))
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
}

func TestWriteReadRoundTrip(t *testing.T) {
	records := []Record{
		{ID: "chr1-1000-INS-120", Seq: strings.Repeat("ACGT", 30)},
		{ID: "chr2-2000-INS-45", Seq: "TTGACCA"},
		{ID: "chr3-3000-INS-980", Seq: strings.Repeat("G", 980)},
	}

	path := filepath.Join(t.TempDir(), "sv_ins.fa.gz")
	writeArchive(t, path, records)

	back, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, records, back)
}

func TestWriterProducesBgzf(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sv_ins.fa.gz")
	writeArchive(t, path, []Record{{ID: "a", Seq: "ACGT"}})

	ok, err := HasEOF(path)
	require.NoError(t, err)
	assert.True(t, ok, "archive must end with the bgzf EOF block")

	// And it must be readable with a real bgzf reader
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r, err := bgzf.NewReader(f, 1)
	require.NoError(t, err)
	defer r.Close()

	records, err := Read(r)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ACGT", records[0].Seq)
}

func TestEmptyArchiveIsValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snv_snv.fa.gz")
	writeArchive(t, path, nil)

	ok, err := HasEOF(path)
	require.NoError(t, err)
	assert.True(t, ok)

	records, err := ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLongSequenceWrapped(t *testing.T) {
	seq := strings.Repeat("A", 150)
	path := filepath.Join(t.TempDir(), "wrap.fa.gz")
	writeArchive(t, path, []Record{{ID: "x", Seq: seq}})

	back, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, seq, back[0].Seq)
}

func TestWriteRecordEmptyID(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "bad.fa.gz"))
	require.NoError(t, err)
	defer f.Close()

	w := NewWriter(f)
	defer w.Close()

	require.Error(t, w.WriteRecord(Record{Seq: "ACGT"}))
}

func TestReadHeaderDescriptionStripped(t *testing.T) {
	records, err := Read(strings.NewReader(">id1 extra description\nACGT\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "id1", records[0].ID)
}

func TestReadSequenceBeforeHeader(t *testing.T) {
	_, err := Read(strings.NewReader("ACGT\n"))
	require.Error(t, err)
}

func TestReadPlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.fa")
	require.NoError(t, os.WriteFile(path, []byte(">a\nAC\nGT\n"), 0644))

	records, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ACGT", records[0].Seq)
}
