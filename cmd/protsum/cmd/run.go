package cmd

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/ProtSum/pkg/config"
	"github.com/ChrisMcGann/ProtSum/pkg/filter"
	"github.com/ChrisMcGann/ProtSum/pkg/pipeline"
	"github.com/ChrisMcGann/ProtSum/pkg/writer/sqlite"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Flags for run command
	outputFile        string
	fdrLevel          float64
	confidence        string
	contribution      string
	unused            string
	confidenceTable   string
	contributionTable string
	unusedTable       string
	confidenceDefault bool
	whitelistFile     string
	blacklistFile     string
	excludeFile       string
	maxGroupLack      int
	minGroups         int
	runGroupSep       string
)

var runCmd = &cobra.Command{
	Use:   "run [summary files or directories...]",
	Short: "Run the full pipeline and write an SQLite report",
	Long: `Run grouping, FDR truncation, peptide filtering, aggregation and the
group-presence filter over every summary table found, then write the
accession report to an SQLite database.

Table ids are taken from the file name up to the first underscore, so
"1.2_PeptideSummary.txt" is table "1.2" of run-group "1".

Examples:
  # Process a directory of ProteinPilot exports
  protsum run --fasta uniprot.fasta --out report.db exports/

  # Truncate at 1% FDR and require the default confidence rule
  protsum run --fasta uniprot.fasta --out report.db --fdr 1 --confidence-default exports/

  # Accessions must be seen in at least two run-groups
  protsum run --fasta uniprot.fasta --out report.db --min-groups 2 exports/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPipeline,
}

func init() {
	flags := runCmd.Flags()
	flags.StringVarP(&outputFile, "out", "o", "", "Output database file")
	flags.Float64Var(&fdrLevel, "fdr", 0, "Critical FDR percentage for rank truncation (0 = no truncation)")
	flags.StringVar(&confidence, "confidence", "", "Confidence threshold, e.g. '>=95'")
	flags.StringVar(&contribution, "contribution", "", "Contribution threshold, e.g. 'gt:0'")
	flags.StringVar(&unused, "unused", "", "Unused threshold, e.g. '>=1.3'")
	flags.StringVar(&confidenceTable, "confidence-table", "", "CSV of per-table confidence values (table,value)")
	flags.StringVar(&contributionTable, "contribution-table", "", "CSV of per-table contribution values (table,value)")
	flags.StringVar(&unusedTable, "unused-table", "", "CSV of per-table unused values (table,value)")
	flags.BoolVar(&confidenceDefault, "confidence-default", false, "Keep accessions with one row >= 99 or two rows >= 95 confidence")
	flags.StringVar(&whitelistFile, "whitelist", "", "CSV of accessions to keep")
	flags.StringVar(&blacklistFile, "blacklist", "", "CSV of accessions to drop")
	flags.StringVar(&excludeFile, "exclude", "", "CSV of accessions removed from every peptide row")
	flags.IntVar(&maxGroupLack, "max-group-lack", 0, "Replicates of a run-group allowed to lack an accession")
	flags.IntVar(&minGroups, "min-groups", 0, "Minimum run-groups an accession must be present in")
	flags.StringVar(&runGroupSep, "separator", ".", "Separator between run-group and replicate in table ids")

	// Bind the parameters to viper
	viper.BindPFlag("out", flags.Lookup("out"))
	viper.BindPFlag("fdr.level", flags.Lookup("fdr"))
	viper.BindPFlag("filter.confidence.threshold", flags.Lookup("confidence"))
	viper.BindPFlag("filter.contribution.threshold", flags.Lookup("contribution"))
	viper.BindPFlag("filter.unused.threshold", flags.Lookup("unused"))
	viper.BindPFlag("filter.confidence.table", flags.Lookup("confidence-table"))
	viper.BindPFlag("filter.contribution.table", flags.Lookup("contribution-table"))
	viper.BindPFlag("filter.unused.table", flags.Lookup("unused-table"))
	viper.BindPFlag("filter.confidence-default", flags.Lookup("confidence-default"))
	viper.BindPFlag("filter.whitelist", flags.Lookup("whitelist"))
	viper.BindPFlag("filter.blacklist", flags.Lookup("blacklist"))
	viper.BindPFlag("filter.exclude", flags.Lookup("exclude"))
	viper.BindPFlag("presence.max-group-lack", flags.Lookup("max-group-lack"))
	viper.BindPFlag("presence.min-groups", flags.Lookup("min-groups"))
	viper.BindPFlag("presence.separator", flags.Lookup("separator"))
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	if cfg.Output == "" {
		return fmt.Errorf("no output database given, use --out or 'out' in the settings file")
	}

	opts, err := cfg.PipelineOptions()
	if err != nil {
		return err
	}

	fmt.Printf("Decoy prefix: %s\n", opts.DecoyPrefix)
	fmt.Printf("FDR window: [%g, %g)\n", opts.FDR.Window.Low, opts.FDR.Window.High)
	if opts.FDRLevel > 0 {
		fmt.Printf("FDR truncation: %g%%\n", opts.FDRLevel)
	}
	if opts.Filter.Confidence != nil {
		fmt.Printf("Confidence filter: %s\n", opts.Filter.Confidence)
	}
	if opts.Filter.Contribution != nil {
		fmt.Printf("Contribution filter: %s\n", opts.Filter.Contribution)
	}
	if opts.Filter.Unused != nil {
		fmt.Printf("Unused filter: %s\n", opts.Filter.Unused)
	}
	if opts.Filter.ConfidenceDefault {
		fmt.Printf("Confidence rule: 1 row >= %g or %d rows >= %g\n",
			filter.HighConfidence, filter.MinMediumRows, filter.MediumConfidence)
	}

	in, err := loadInput(args, cfg, true)
	if err != nil {
		return err
	}

	res, err := pipeline.Run(in, opts)
	printWarnings(res)
	if err != nil {
		return err
	}

	for _, c := range res.Cutoffs {
		fmt.Printf("Table %s: truncated at rank %.1f (%g%% FDR), dropped %d peptides and %d proteins\n",
			c.TableID, c.Rank, c.FDR, c.PeptidesDropped, c.HitsDropped)
	}
	if len(res.Removed) > 0 {
		fmt.Printf("Presence filter removed %d accessions\n", len(res.Removed))
	}

	writer, err := sqlite.NewWriter(cfg.Output)
	if err != nil {
		return fmt.Errorf("failed to create output database: %w", err)
	}
	defer writer.Close()
	writer.Description = fmt.Sprintf("%d tables", len(res.Tables))

	if err := writer.WriteResult(res, in.Sequences); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	// Finalize database
	if err := writer.Finalize(); err != nil {
		return fmt.Errorf("failed to finalize database: %w", err)
	}

	fmt.Printf("\nRun complete!\n")
	fmt.Printf("Run id: %s\n", writer.RunID())
	for _, t := range res.Tables {
		fmt.Printf("Table %s: %d accessions\n", t.ID, t.Len())
	}
	if n := len(res.Grouping.Difficult); n > 0 {
		fmt.Printf("Difficult groups: %d (see DifficultCaseTable)\n", n)
	}
	fmt.Printf("Output: %s\n", cfg.Output)

	return nil
}

// printWarnings reports the non-fatal problems of a run on stderr
func printWarnings(res *pipeline.Result) {
	if res == nil {
		return
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", w)
	}
}
