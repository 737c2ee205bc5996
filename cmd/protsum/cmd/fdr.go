package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ChrisMcGann/ProtSum/pkg/config"
	"github.com/ChrisMcGann/ProtSum/pkg/core"
	"github.com/ChrisMcGann/ProtSum/pkg/fdr"
	"github.com/ChrisMcGann/ProtSum/pkg/grouping"
	"github.com/spf13/cobra"
)

var fdrCmd = &cobra.Command{
	Use:   "fdr [summary files or directories...]",
	Short: "Fit and print the decoy FDR model of every table",
	Long: `Fit FDR(n) = a * exp(b * n) to the observed decoy FDR of every
ProteinSummary table and print the fitted parameters, goodness of fit and
the ranks matching 0.1, 0.5, 1 and 2 percent FDR.

Examples:
  protsum fdr --fasta uniprot.fasta exports/

  # Use a fixed target/decoy ratio instead of the estimate
  protsum fdr --fasta uniprot.fasta --fdr-k 1 exports/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFDR,
}

func runFDR(cmd *cobra.Command, args []string) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	opts, err := cfg.PipelineOptions()
	if err != nil {
		return err
	}

	in, err := loadInput(args, cfg, false)
	if err != nil {
		return err
	}

	res, err := grouping.Run(in.Proteins, in.Sequences, grouping.Options{DecoyPrefix: opts.DecoyPrefix})
	if err != nil {
		return fmt.Errorf("protein grouping failed: %w", err)
	}

	fmt.Println()
	for _, id := range res.Tables() {
		hits := res.Rank(id, in.Proteins[id], opts.DecoyPrefix)
		model, err := fdr.Estimate(id, hits, opts.FDR)
		if err != nil {
			var degenerate *core.DegenerateFDRModelError
			if !errors.As(err, &degenerate) {
				return fmt.Errorf("FDR estimation failed: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			continue
		}
		printModel(model)
	}

	return nil
}

func printModel(m *fdr.Model) {
	fmt.Printf("Table %s: %d targets, %d decoys, k = %.3f\n", m.TableID, m.TargetCount, m.DecoyCount, m.K)
	fmt.Printf("  FDR(n) = %.4g * exp(%.4g * n)\n", m.A, m.B)
	fmt.Printf("  R^2 = %.4f, MAE = %.4f, MAPE = %.2f%%\n", m.RSquared, m.MeanAbsError, m.MeanAbsPctError*100)

	parts := make([]string, 0, len(m.Thresholds))
	for _, t := range m.Thresholds {
		parts = append(parts, fmt.Sprintf("%g%% at rank %d", t.FDR, t.Rank))
	}
	fmt.Printf("  Thresholds: %s\n", strings.Join(parts, ", "))
}
