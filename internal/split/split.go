// Package split normalizes one per-haplotype variant table into the
// caller-agnostic pair consumed by downstream merging: a gzip-compressed
// metadata BED without the SEQ column, and a bgzf FASTA archive with one
// record per variant row.
package split

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/svbio/svnorm/internal/bed"
	"github.com/svbio/svnorm/internal/fasta"
	"github.com/svbio/svnorm/internal/pav"
	"github.com/svbio/svnorm/internal/registry"
	"github.com/svbio/svnorm/internal/task"
)

// Variant table columns the splitter depends on.
const (
	ColID  = "ID"
	ColSeq = "SEQ"
)

// DataError reports a malformed variant table with the offending path and
// task for diagnosis.
type DataError struct {
	Path    string
	Task    task.Task
	Message string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("%s: %s (task %s)", e.Path, e.Message, e.Task)
}

// Result summarizes one completed split.
type Result struct {
	InputPath  string
	BedPath    string
	FastaPath  string
	Rows       int
	SeqRecords int
}

// Splitter resolves and splits one task at a time. Invocations share no
// state, so one Splitter may be reused across tasks.
type Splitter struct {
	reg    registry.Registry
	logger *zap.Logger
}

// New creates a splitter using the given registry.
func New(reg registry.Registry) *Splitter {
	return &Splitter{
		reg:    reg,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for progress messages.
func (s *Splitter) SetLogger(l *zap.Logger) {
	s.logger = l
}

// Run resolves the task's input table and writes the two outputs. Either both
// outputs appear under their final paths or neither does: writes go to
// temporary siblings that are renamed only after both succeed.
func (s *Splitter) Run(t task.Task, bedPath, fastaPath string) (*Result, error) {
	inputPath, err := pav.Resolve(s.reg, t)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("resolved input",
		zap.Stringer("task", t),
		zap.String("path", inputPath),
	)

	tbl, err := bed.Read(inputPath)
	if err != nil {
		return nil, fmt.Errorf("read variant table for %s: %w", t, err)
	}

	if err := s.validate(tbl, inputPath, t); err != nil {
		return nil, err
	}

	if err := s.writeOutputs(tbl, t, bedPath, fastaPath); err != nil {
		return nil, err
	}

	res := &Result{
		InputPath: inputPath,
		BedPath:   bedPath,
		FastaPath: fastaPath,
		Rows:      tbl.NumRows(),
	}
	if !t.IsSNV() {
		res.SeqRecords = res.Rows
	}

	s.logger.Info("split complete",
		zap.Stringer("task", t),
		zap.Int("rows", res.Rows),
		zap.Int("seq_records", res.SeqRecords),
	)

	return res, nil
}

// validate checks the table invariants before any output is written. SNV
// tables carry no sequence payload, so only the ID checks apply to them.
func (s *Splitter) validate(tbl *bed.Table, path string, t task.Task) error {
	ids, err := tbl.Column(ColID)
	if err != nil {
		return &DataError{Path: path, Task: t, Message: "required column ID not found"}
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return &DataError{Path: path, Task: t, Message: fmt.Sprintf("duplicate variant ID %q", id)}
		}
		seen[id] = struct{}{}
	}

	if t.IsSNV() {
		return nil
	}

	seqs, err := tbl.Column(ColSeq)
	if err != nil {
		return &DataError{Path: path, Task: t, Message: "required column SEQ not found"}
	}
	for i, seq := range seqs {
		if seq == "" || seq == "." {
			return &DataError{
				Path:    path,
				Task:    t,
				Message: fmt.Sprintf("missing SEQ value for variant %q", ids[i]),
			}
		}
	}

	return nil
}

// writeOutputs writes the FASTA archive and the metadata table. The archive
// is serialized before the SEQ column is dropped; the drop mutates the table
// the metadata write then uses.
func (s *Splitter) writeOutputs(tbl *bed.Table, t task.Task, bedPath, fastaPath string) (err error) {
	for _, p := range []string{bedPath, fastaPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	tmpBed := bedPath + ".tmp"
	tmpFasta := fastaPath + ".tmp"

	defer func() {
		if err != nil {
			os.Remove(tmpBed)
			os.Remove(tmpFasta)
		}
	}()

	if err := s.writeFasta(tbl, t, tmpFasta); err != nil {
		return err
	}

	if !t.IsSNV() {
		tbl.DropColumn(ColSeq)
	}

	if err := s.writeBed(tbl, tmpBed); err != nil {
		return err
	}

	if err := os.Rename(tmpFasta, fastaPath); err != nil {
		return fmt.Errorf("finalize sequence archive: %w", err)
	}
	if err := os.Rename(tmpBed, bedPath); err != nil {
		os.Remove(fastaPath)
		return fmt.Errorf("finalize variant table: %w", err)
	}

	return nil
}

// writeFasta writes one record per table row in row order. For SNV tasks the
// archive is a valid empty container.
func (s *Splitter) writeFasta(tbl *bed.Table, t task.Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create sequence archive: %w", err)
	}

	w := fasta.NewWriter(f)

	if !t.IsSNV() {
		idIdx := tbl.ColumnIndex(ColID)
		seqIdx := tbl.ColumnIndex(ColSeq)

		for _, row := range tbl.Rows {
			if err := w.WriteRecord(fasta.Record{ID: row[idIdx], Seq: row[seqIdx]}); err != nil {
				w.Close()
				f.Close()
				return err
			}
		}
	}

	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close sequence archive: %w", err)
	}
	return f.Close()
}

func (s *Splitter) writeBed(tbl *bed.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create variant table: %w", err)
	}

	if err := tbl.WriteGzip(f); err != nil {
		f.Close()
		return fmt.Errorf("write variant table: %w", err)
	}
	return f.Close()
}
