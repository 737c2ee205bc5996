// Package cmd provides CLI command implementations
package cmd

import (
	"fmt"

	"github.com/ChrisMcGann/ProtSum/pkg/config"
	"github.com/ChrisMcGann/ProtSum/pkg/core"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Flags shared by every command
	settingsFile string
	fastaFile    string
	decoyPrefix  string
	encoding     string
	windowLow    float64
	windowHigh   float64
	tableRange   int
	explicitK    float64
)

var rootCmd = &cobra.Command{
	Use:   "protsum",
	Short: "ProtSum - Accession resolution and filtering for ProteinPilot summaries",
	Long: `ProtSum turns per-sample PeptideSummary and ProteinSummary tables into
deduplicated, FDR-truncated and normalized accession reports.

Processing stages:
- Protein grouping with representative selection
- Decoy-based FDR curve fitting and rank truncation
- Peptide filtering (thresholds, confidence rule, accession lists)
- Length-normalized aggregation per accession
- Group-presence filtering across replicate groups`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	config.SetDefaults(viper.GetViper())

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(fdrCmd)
	rootCmd.AddCommand(docsCmd)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&settingsFile, "settings", "", "Settings file (YAML, TOML or JSON)")
	flags.StringVar(&fastaFile, "fasta", "", "FASTA database of protein sequences")
	flags.StringVar(&decoyPrefix, "decoy-prefix", core.DefaultDecoyPrefix, "Accession prefix marking decoy hits")
	flags.StringVar(&encoding, "encoding", "", "Charset of the summary tables (e.g. windows-1252; default UTF-8)")
	flags.Float64Var(&windowLow, "window-low", 0.05, "Lower unused bound of the FDR estimation window")
	flags.Float64Var(&windowHigh, "window-high", 0.10, "Upper (exclusive) unused bound of the FDR estimation window")
	flags.IntVar(&tableRange, "table-range", 1000, "Only decoys ranked within this range are fitted (0 = no limit)")
	flags.Float64Var(&explicitK, "fdr-k", 0, "Explicit target/decoy ratio (0 = estimate from the window)")

	// Bind the parameters to viper
	viper.BindPFlag("fasta", flags.Lookup("fasta"))
	viper.BindPFlag("decoy-prefix", flags.Lookup("decoy-prefix"))
	viper.BindPFlag("input.encoding", flags.Lookup("encoding"))
	viper.BindPFlag("fdr.window-low", flags.Lookup("window-low"))
	viper.BindPFlag("fdr.window-high", flags.Lookup("window-high"))
	viper.BindPFlag("fdr.table-range", flags.Lookup("table-range"))
	viper.BindPFlag("fdr.k", flags.Lookup("fdr-k"))
}

// loadSettings reads the settings file when one is given
func loadSettings(cmd *cobra.Command, args []string) error {
	if settingsFile == "" {
		return nil
	}

	viper.SetConfigFile(settingsFile)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read settings file: %w", err)
	}
	fmt.Printf("Using settings: %s\n", viper.ConfigFileUsed())

	return nil
}
