package core

import (
	"fmt"
	"strings"
)

// MissingSequenceError is returned when a length-dependent computation needs
// an accession that has no entry in the sequence database.
type MissingSequenceError struct {
	Accessions []string
}

func (e *MissingSequenceError) Error() string {
	return fmt.Sprintf("no sequence for accession(s): %s", strings.Join(e.Accessions, ", "))
}

// MissingRepresentativeError is returned when a protein group reaches a
// stage that needs its representative before one was resolved.
type MissingRepresentativeError struct {
	TableID    string
	Accessions []string
}

func (e *MissingRepresentativeError) Error() string {
	return fmt.Sprintf("table %s: no representative for group {%s}", e.TableID, strings.Join(e.Accessions, ", "))
}

// DegenerateFDRModelError reports a table whose FDR curve cannot be fitted.
// It is never fatal: FDR truncation is skipped for that table.
type DegenerateFDRModelError struct {
	TableID string
	Reason  string
}

func (e *DegenerateFDRModelError) Error() string {
	return fmt.Sprintf("table %s: degenerate FDR model: %s", e.TableID, e.Reason)
}
