// Package main provides the svnorm command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "svnorm",
		Short: "Normalize per-haplotype variant caller output for merging",
		Long: `svnorm normalizes per-haplotype structural-variant call tables into the
caller-agnostic form used by downstream merge stages: a variant table without
sequences and a bgzip-compressed FASTA with one record per variant.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initConfig()
		},
	}

	root.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	root.AddCommand(newSplitCmd())
	root.AddCommand(newResolveCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("svnorm version %s (%s) built %s\n", version, commit, date)
		},
	}
}

// initConfig loads ~/.svnorm.yaml if present. A missing config file is fine;
// everything can be given on the command line.
func initConfig() {
	if viper.ConfigFileUsed() != "" {
		return
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}

	viper.SetConfigName(".svnorm")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(home)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Warning: could not read config: %v\n", err)
		}
	}
}

// newLogger builds the CLI logger. Components default to a nop logger, so a
// build failure here only loses log output, not functionality.
func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
