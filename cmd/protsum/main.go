// ProtSum - Accession resolution and filtering for ProteinPilot summaries
package main

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/ProtSum/cmd/protsum/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
