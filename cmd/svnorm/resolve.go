package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/svbio/svnorm/internal/pav"
)

func newResolveCmd() *cobra.Command {
	var (
		tf        taskFlags
		tablePath string
		dbPath    string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the resolved input path for one unit without splitting",
		Example: `  svnorm resolve --source hgsvc --sample HG00733-h1 --vartype sv --svtype ins \
      --sample-table samples.tsv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, closeReg, err := openRegistry(tablePath, dbPath)
			if err != nil {
				return err
			}
			defer closeReg()

			path, err := pav.Resolve(reg, tf.task())
			if err != nil {
				return err
			}

			fmt.Println(path)
			return nil
		},
	}

	tf.register(cmd)
	cmd.Flags().StringVar(&tablePath, "sample-table", "", "Sample registry table (TSV, may be gzipped)")
	cmd.Flags().StringVar(&dbPath, "registry-db", "", "Sample registry DuckDB database")

	return cmd
}
