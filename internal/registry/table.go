package registry

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/svbio/svnorm/internal/task"
)

// Required sample-table columns.
const (
	ColName = "NAME"
	ColType = "TYPE"
	ColData = "DATA"
)

// Table is a Registry backed by a tab-delimited sample table. The table needs
// NAME, TYPE, and DATA columns; any other columns are carried along in the
// entry's Fields map. Entries are keyed by (NAME, TYPE).
type Table struct {
	entries map[tableKey]Entry
}

type tableKey struct {
	name string
	typ  string
}

// LoadTable reads a sample table from path. Plain and gzipped tables are both
// accepted.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sample table: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open sample table gzip: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	t, err := parseTable(reader)
	if err != nil {
		return nil, fmt.Errorf("parse sample table %s: %w", path, err)
	}
	return t, nil
}

// NewTableFromReader parses a sample table from an uncompressed reader.
func NewTableFromReader(r io.Reader) (*Table, error) {
	return parseTable(r)
}

func parseTable(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)

	var header []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		header = strings.Split(line, "\t")
		break
	}
	if header == nil {
		return nil, fmt.Errorf("no header line found")
	}

	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[col] = i
	}
	for _, col := range []string{ColName, ColType, ColData} {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("required column %q not found in header", col)
		}
	}

	t := &Table{entries: make(map[tableKey]Entry)}
	lineNum := 1

	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != len(header) {
			return nil, fmt.Errorf("line %d: expected %d fields, found %d", lineNum, len(header), len(fields))
		}

		entry := Entry{
			Name:   fields[colIndex[ColName]],
			Type:   fields[colIndex[ColType]],
			Data:   fields[colIndex[ColData]],
			Fields: make(map[string]string, len(header)),
		}
		for i, col := range header {
			entry.Fields[col] = fields[i]
		}

		key := tableKey{name: entry.Name, typ: entry.Type}
		if _, dup := t.entries[key]; dup {
			return nil, fmt.Errorf("line %d: duplicate entry for source %q type %q", lineNum, entry.Name, entry.Type)
		}
		t.entries[key] = entry
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read sample table: %w", err)
	}

	return t, nil
}

// Len returns the number of registry entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// Lookup implements Registry. The returned entry's Data has the task's
// wildcards expanded.
func (t *Table) Lookup(source, callerType string, tk task.Task) (Entry, error) {
	entry, ok := t.entries[tableKey{name: source, typ: callerType}]
	if !ok {
		return Entry{}, &NotFoundError{Source: source, CallerType: callerType}
	}
	entry.Data = ExpandData(entry.Data, tk)
	return entry, nil
}
