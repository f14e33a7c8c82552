package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/svbio/svnorm/internal/registry"
	"github.com/svbio/svnorm/internal/split"
	"github.com/svbio/svnorm/internal/task"
)

// taskFlags binds the wildcard context shared by split and resolve.
type taskFlags struct {
	source  string
	sample  string
	vartype string
	svtype  string
}

func (tf *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&tf.source, "source", "", "Callerset source name (required)")
	cmd.Flags().StringVar(&tf.sample, "sample", "", "Composite sample name, e.g. HG00733-h1 (required)")
	cmd.Flags().StringVar(&tf.vartype, "vartype", "", "Variant type: sv, indel, or snv (required)")
	cmd.Flags().StringVar(&tf.svtype, "svtype", "", "SV type: ins, del, inv, snv, ... (required)")
	cmd.MarkFlagRequired("source")
	cmd.MarkFlagRequired("sample")
	cmd.MarkFlagRequired("vartype")
	cmd.MarkFlagRequired("svtype")
}

func (tf *taskFlags) task() task.Task {
	return task.Task{
		Source:  tf.source,
		Sample:  tf.sample,
		VarType: tf.vartype,
		SVType:  tf.svtype,
	}
}

// openRegistry picks the registry backend: an explicit DuckDB database wins
// over a sample table; flags win over config-file values.
func openRegistry(tablePath, dbPath string) (registry.Registry, func() error, error) {
	if tablePath == "" {
		tablePath = viper.GetString("registry.table")
	}
	if dbPath == "" {
		dbPath = viper.GetString("registry.duckdb")
	}

	if dbPath != "" {
		db, err := registry.OpenDuckDB(dbPath)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	}

	if tablePath == "" {
		return nil, nil, fmt.Errorf("no sample registry configured: pass --sample-table or set registry.table")
	}

	tbl, err := registry.LoadTable(tablePath)
	if err != nil {
		return nil, nil, err
	}
	return tbl, func() error { return nil }, nil
}

func newSplitCmd() *cobra.Command {
	var (
		tf        taskFlags
		tablePath string
		dbPath    string
		outDir    string
		outBed    string
		outFasta  string
	)

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split one variant table into metadata and sequence outputs",
		Long: `Resolve the per-haplotype input table for one (source, sample, vartype,
svtype) unit and split it: variant metadata goes to a gzipped BED without the
SEQ column, sequences go to a bgzip FASTA with one record per variant row.
For snv input the FASTA is a valid empty archive.`,
		Example: `  svnorm split --source hgsvc --sample HG00733-h1 --vartype sv --svtype ins \
      --sample-table samples.tsv --out-dir out/HG00733-h1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			logger := newLogger(verbose)
			defer logger.Sync()

			tk := tf.task()

			if outBed == "" {
				outBed = filepath.Join(outDir, fmt.Sprintf("%s_%s.bed.gz", tk.VarType, tk.SVType))
			}
			if outFasta == "" {
				outFasta = filepath.Join(outDir, fmt.Sprintf("%s_%s.fa.gz", tk.VarType, tk.SVType))
			}

			reg, closeReg, err := openRegistry(tablePath, dbPath)
			if err != nil {
				return err
			}
			defer closeReg()

			splitter := split.New(reg)
			splitter.SetLogger(logger)

			res, err := splitter.Run(tk, outBed, outFasta)
			if err != nil {
				return err
			}

			fmt.Printf("%s: %d rows, %d sequence records\n", tk, res.Rows, res.SeqRecords)
			fmt.Printf("  bed:   %s\n", res.BedPath)
			fmt.Printf("  fasta: %s\n", res.FastaPath)
			return nil
		},
	}

	tf.register(cmd)
	cmd.Flags().StringVar(&tablePath, "sample-table", "", "Sample registry table (TSV, may be gzipped)")
	cmd.Flags().StringVar(&dbPath, "registry-db", "", "Sample registry DuckDB database")
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "Output directory")
	cmd.Flags().StringVar(&outBed, "out-bed", "", "Metadata output path (default <out-dir>/<vartype>_<svtype>.bed.gz)")
	cmd.Flags().StringVar(&outFasta, "out-fasta", "", "Sequence output path (default <out-dir>/<vartype>_<svtype>.fa.gz)")

	return cmd
}
