package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// Flags for docs command
var docsDir string

var docsCmd = &cobra.Command{
	Use:    "docs",
	Short:  "Generate Markdown documentation for every command",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(docsDir, 0o755); err != nil {
			return fmt.Errorf("failed to create docs directory: %w", err)
		}
		rootCmd.DisableAutoGenTag = true
		if err := doc.GenMarkdownTree(rootCmd, docsDir); err != nil {
			return fmt.Errorf("failed to generate docs: %w", err)
		}
		fmt.Printf("Docs written to %s\n", docsDir)
		return nil
	},
}

func init() {
	docsCmd.Flags().StringVar(&docsDir, "dir", "docs", "Output directory")
}
