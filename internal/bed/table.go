// Package bed provides tab-delimited variant table reading and writing.
//
// Tables are held fully in memory: the splitter needs two projections of one
// snapshot (sequence entries before the SEQ drop, metadata after), and
// per-haplotype per-type record sets are bounded.
package bed

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Table is an in-memory tab-delimited table. Row order defines record
// identity and is never changed by any Table operation. Values are kept
// verbatim as read.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ParseError reports a malformed table with file and line context.
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("%s: line %d: %s", e.Path, e.Line, e.Message)
}

// Read loads a table from a plain or gzipped file. Gzip is detected from the
// magic bytes, not the file name.
func Read(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open variant table: %w", err)
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

	t, err := ReadFrom(reader)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return t, nil
}

// ReadFrom loads a table from an uncompressed reader. The first line is the
// header; every row must have exactly as many fields as the header.
func ReadFrom(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024) // SEQ values can be megabases long

	lineNum := 0

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		return nil, &ParseError{Line: 0, Message: "no header line found"}
	}
	lineNum++

	header := strings.TrimRight(scanner.Text(), "\r\n")
	if header == "" {
		return nil, &ParseError{Line: lineNum, Message: "empty header line"}
	}

	t := &Table{Columns: strings.Split(header, "\t")}

	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != len(t.Columns) {
			return nil, &ParseError{
				Line:    lineNum,
				Message: fmt.Sprintf("expected %d fields, found %d", len(t.Columns), len(fields)),
			}
		}
		t.Rows = append(t.Rows, fields)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}

	return t, nil
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// ColumnIndex returns the index of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Column returns all values of the named column in row order.
func (t *Table) Column(name string) ([]string, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found", name)
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values, nil
}

// DropColumn removes the named column in place. Remaining columns and all
// rows keep their order. Dropping an absent column is a no-op.
func (t *Table) DropColumn(name string) bool {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return false
	}

	t.Columns = append(t.Columns[:idx], t.Columns[idx+1:]...)
	for i, row := range t.Rows {
		t.Rows[i] = append(row[:idx], row[idx+1:]...)
	}
	return true
}

// WriteTo serializes the table as uncompressed tab-delimited text with a
// header row.
func (t *Table) WriteTo(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(strings.Join(t.Columns, "\t") + "\n"); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if _, err := bw.WriteString(strings.Join(row, "\t") + "\n"); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// WriteGzip serializes the table gzip-compressed to w.
func (t *Table) WriteGzip(w io.Writer) error {
	gz := gzip.NewWriter(w)
	if err := t.WriteTo(gz); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}
