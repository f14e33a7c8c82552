// Package fasta reads and writes bgzip-compressed FASTA sequence archives.
//
// Archives are written through bgzf rather than plain gzip: downstream
// indexing tools (samtools faidx and friends) require block compression for
// random access. An archive with zero records is still a valid container,
// carrying only the bgzf EOF block.
package fasta

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/hts/bgzf"
	"github.com/klauspost/compress/gzip"
)

// Record is one FASTA entry.
type Record struct {
	ID  string
	Seq string
}

// Sequence lines are wrapped at 60 columns, the usual FASTA width.
const lineWidth = 60

// Writer writes FASTA records into a bgzf-compressed stream.
type Writer struct {
	bg *bgzf.Writer
}

// NewWriter returns a Writer emitting bgzf blocks to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bg: bgzf.NewWriter(w, 1)}
}

// WriteRecord appends one record. The sequence is written verbatim apart
// from line wrapping.
func (w *Writer) WriteRecord(rec Record) error {
	if rec.ID == "" {
		return fmt.Errorf("fasta record with empty ID")
	}

	var sb strings.Builder
	sb.WriteString(">" + rec.ID + "\n")
	for i := 0; i < len(rec.Seq); i += lineWidth {
		end := i + lineWidth
		if end > len(rec.Seq) {
			end = len(rec.Seq)
		}
		sb.WriteString(rec.Seq[i:end] + "\n")
	}

	if _, err := io.WriteString(w.bg, sb.String()); err != nil {
		return fmt.Errorf("write fasta record %s: %w", rec.ID, err)
	}
	return nil
}

// Close flushes pending blocks and writes the bgzf EOF block. Close must be
// called even when no records were written so the archive is a valid empty
// container.
func (w *Writer) Close() error {
	return w.bg.Close()
}

// Read parses FASTA records from an uncompressed reader. Sequence lines are
// concatenated; order follows the input.
func Read(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	var records []Record
	var cur *Record

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ">") {
			if cur != nil {
				records = append(records, *cur)
			}
			header := strings.TrimPrefix(line, ">")
			// Description after the first whitespace is not part of the ID
			id := strings.Fields(header)
			if len(id) == 0 {
				return nil, fmt.Errorf("fasta header with empty ID")
			}
			cur = &Record{ID: id[0]}
			continue
		}

		if cur == nil {
			return nil, fmt.Errorf("sequence data before first fasta header")
		}
		cur.Seq += line
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read fasta: %w", err)
	}

	if cur != nil {
		records = append(records, *cur)
	}
	return records, nil
}

// ReadFile parses a FASTA file. bgzf and plain gzip are both gzip streams, so
// one decompression path covers compressed archives; uncompressed files are
// read as-is.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fasta: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)

	var reader io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	records, err := Read(reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// HasEOF reports whether the file at path ends with the bgzf EOF block, i.e.
// whether it is a complete bgzf archive.
func HasEOF(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open fasta: %w", err)
	}
	defer f.Close()

	ok, err := bgzf.HasEOF(f)
	if err != nil {
		return false, fmt.Errorf("check bgzf EOF: %w", err)
	}
	return ok, nil
}
