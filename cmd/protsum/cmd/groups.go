package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ChrisMcGann/ProtSum/pkg/config"
	"github.com/ChrisMcGann/ProtSum/pkg/grouping"
	"github.com/spf13/cobra"
)

// Flags for groups command
var showReplacements bool

var groupsCmd = &cobra.Command{
	Use:   "groups [summary files or directories...]",
	Short: "Print protein groups, representatives and difficult cases",
	Long: `Group the ProteinSummary tables and print, per table, the number of groups
and every difficult case (groups where several accessions tied on the
highest unused score).

Examples:
  protsum groups --fasta uniprot.fasta exports/

  # Also print the accession -> representative map of every table
  protsum groups --fasta uniprot.fasta --replacements exports/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGroups,
}

func init() {
	groupsCmd.Flags().BoolVar(&showReplacements, "replacements", false, "Print the replacement map of every table")
}

// groupingOptions derives the grouper options the same way the full run does
func groupingOptions(cfg config.Config) (grouping.Options, error) {
	opts, err := cfg.PipelineOptions()
	if err != nil {
		return grouping.Options{}, err
	}
	return grouping.Options{DecoyPrefix: opts.DecoyPrefix}, nil
}

func runGroups(cmd *cobra.Command, args []string) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}

	opts, err := groupingOptions(cfg)
	if err != nil {
		return err
	}

	in, err := loadInput(args, cfg, false)
	if err != nil {
		return err
	}

	res, err := grouping.Run(in.Proteins, in.Sequences, opts)
	if err != nil {
		return fmt.Errorf("protein grouping failed: %w", err)
	}

	fmt.Printf("\nGrouped %d distinct accessions\n", res.Stats.Len())
	for _, id := range res.Tables() {
		fmt.Printf("Table %s: %d groups\n", id, len(res.TableGroups(id)))
	}

	if difficult := res.DifficultGroups(); len(difficult) > 0 {
		fmt.Printf("\nDifficult cases:\n")
		for _, g := range difficult {
			fmt.Printf("%s\t#%d\tunused %.2f\t%s -> %s\n",
				g.TableID, g.Index, g.Unused, strings.Join(g.Accessions, ";"), g.Representative)
		}
	}

	if !showReplacements {
		return nil
	}

	repl, err := res.Replacements()
	if err != nil {
		return err
	}

	fmt.Printf("\nReplacements:\n")
	for _, id := range res.Tables() {
		m := repl[id]
		accs := make([]string, 0, len(m))
		for acc := range m {
			accs = append(accs, acc)
		}
		sort.Strings(accs)
		for _, acc := range accs {
			fmt.Printf("%s\t%s\t%s\n", id, acc, m[acc])
		}
	}

	return nil
}
