// Package core provides the typed table model shared by every stage of the
// accession pipeline: peptide and protein summary rows, the sequence
// database, naming conventions and error kinds.
package core

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
)

const (
	// DefaultDecoyPrefix marks reversed (decoy) hits in ProteinPilot output
	DefaultDecoyPrefix = "RRRRR"

	// DefaultRunGroupSeparator splits a table id into run-group and replicate
	DefaultRunGroupSeparator = "."

	// tableIDSeparator ends the table id in a summary filename
	tableIDSeparator = "_"
)

// PeptideRow is one identification from a PeptideSummary table.
type PeptideRow struct {
	TableID    string
	Rank       int      // 1-based position within its table as read
	Accessions []string // Ordered, first entry is the primary accession
	Confidence float64
	Score      float64
	Intensity  float64 // 0 when blank

	// Supplementary columns used by the peptide filters
	Contribution float64
	Unused       float64

	Sequence string
}

// ProteinRow is one line of a ProteinSummary table.
type ProteinRow struct {
	TableID    string
	LocalIndex int // 1-based, defines within-table ordering
	Accession  string
	Unused     float64
}

// ValidationError represents an error found during row validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// PrimaryAccession returns the first accession of the row, or "" if it has none.
func (p *PeptideRow) PrimaryAccession() string {
	if len(p.Accessions) == 0 {
		return ""
	}
	return p.Accessions[0]
}

// Validate checks that a peptide row meets all requirements for processing.
func (p *PeptideRow) Validate() error {
	var errs []string

	if p.TableID == "" {
		errs = append(errs, "table id is required")
	}
	if p.Rank <= 0 {
		errs = append(errs, "rank must be positive")
	}
	if len(p.Accessions) == 0 {
		errs = append(errs, "at least one accession is required")
	}
	for i, acc := range p.Accessions {
		if acc == "" {
			errs = append(errs, fmt.Sprintf("accession %d is empty", i))
		}
	}
	if math.IsNaN(p.Confidence) || math.IsNaN(p.Score) || math.IsNaN(p.Intensity) {
		errs = append(errs, "numeric fields must not be NaN")
	}
	if p.Intensity < 0 {
		errs = append(errs, "intensity must be non-negative")
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   fmt.Sprintf("PeptideRow %s#%d", p.TableID, p.Rank),
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// Validate checks that a protein row meets all requirements for processing.
func (p *ProteinRow) Validate() error {
	var errs []string

	if p.TableID == "" {
		errs = append(errs, "table id is required")
	}
	if p.LocalIndex <= 0 {
		errs = append(errs, "local index must be positive")
	}
	if p.Accession == "" {
		errs = append(errs, "accession is required")
	}
	if math.IsNaN(p.Unused) || p.Unused < 0 {
		errs = append(errs, "unused must be a non-negative number")
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   fmt.Sprintf("ProteinRow %s#%d", p.TableID, p.LocalIndex),
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// IsDecoy reports whether accession names a reversed hit.
func IsDecoy(accession, prefix string) bool {
	return prefix != "" && strings.HasPrefix(accession, prefix)
}

// TableIDFromPath derives the table id from a summary filename: the base
// name up to the first underscore ("1.2_PeptideSummary.txt" -> "1.2").
func TableIDFromPath(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, tableIDSeparator); i > 0 {
		return base[:i]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// RunGroup returns the run-group of a table id: everything before the first
// separator, or the whole id when the separator is absent.
func RunGroup(tableID, sep string) string {
	if sep == "" {
		return tableID
	}
	if i := strings.Index(tableID, sep); i >= 0 {
		return tableID[:i]
	}
	return tableID
}
