// Package filter provides peptide-level filters and row transformations
// applied before accession aggregation
package filter

import (
	"github.com/ChrisMcGann/ProtSum/pkg/core"
	"github.com/ChrisMcGann/ProtSum/pkg/grouping"
)

// Confidence levels of the default confidence rule
const (
	HighConfidence   = 99.0
	MediumConfidence = 95.0
	// An accession needs one high or this many medium confidence rows
	MinMediumRows = 2
)

// Config holds peptide filtering configuration
type Config struct {
	Confidence   *Threshold // Row confidence threshold (nil = no filter)
	Contribution *Threshold // Row contribution threshold (nil = no filter)
	Unused       *Threshold // Row unused threshold (nil = no filter)

	// Keep an accession only if one of its rows has confidence >= 99
	// or two of them have confidence >= 95
	ConfidenceDefault bool

	Whitelist core.AccessionSet // Keep only rows whose primary accession is listed (empty = all)
	Blacklist core.AccessionSet // Drop rows whose primary accession is listed
	Exclude   core.AccessionSet // Remove listed accessions from every row
}

// Apply applies all configured filters to peptide rows and returns the
// retained rows in their original order
func (c *Config) Apply(rows []core.PeptideRow) []core.PeptideRow {
	// Remove excluded accessions first so the primary accession is final
	if len(c.Exclude) > 0 {
		rows = c.excludeAccessions(rows)
	}

	rows = c.filterByThresholds(rows)

	if len(c.Whitelist) > 0 || len(c.Blacklist) > 0 {
		rows = c.filterByLists(rows)
	}

	if c.ConfidenceDefault {
		rows = filterByConfidenceDefault(rows)
	}

	return rows
}

// excludeAccessions drops excluded accessions from each row and removes
// rows left without accessions
func (c *Config) excludeAccessions(rows []core.PeptideRow) []core.PeptideRow {
	var filtered []core.PeptideRow
	for _, row := range rows {
		var kept []string
		for _, acc := range row.Accessions {
			if !c.Exclude.Has(acc) {
				kept = append(kept, acc)
			}
		}
		if len(kept) == 0 {
			continue
		}
		row.Accessions = kept
		filtered = append(filtered, row)
	}
	return filtered
}

// filterByThresholds keeps rows passing every numeric threshold
func (c *Config) filterByThresholds(rows []core.PeptideRow) []core.PeptideRow {
	if c.Confidence == nil && c.Contribution == nil && c.Unused == nil {
		return rows
	}

	var filtered []core.PeptideRow
	for _, row := range rows {
		if !c.Confidence.Allows(row.TableID, row.Confidence) {
			continue
		}
		if !c.Contribution.Allows(row.TableID, row.Contribution) {
			continue
		}
		if !c.Unused.Allows(row.TableID, row.Unused) {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

// filterByLists applies the white and black lists to the primary accession
func (c *Config) filterByLists(rows []core.PeptideRow) []core.PeptideRow {
	var filtered []core.PeptideRow
	for _, row := range rows {
		primary := row.PrimaryAccession()
		if len(c.Whitelist) > 0 && !c.Whitelist.Has(primary) {
			continue
		}
		if c.Blacklist.Has(primary) {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

type tableAccession struct {
	table     string
	accession string
}

// filterByConfidenceDefault keeps, per table, the accessions that have at
// least one high confidence row or MinMediumRows medium confidence rows.
// Failing accessions are removed from every row; rows left empty are dropped.
func filterByConfidenceDefault(rows []core.PeptideRow) []core.PeptideRow {
	high := make(map[tableAccession]bool)
	medium := make(map[tableAccession]int)

	for _, row := range rows {
		for _, acc := range row.Accessions {
			key := tableAccession{row.TableID, acc}
			if row.Confidence >= HighConfidence {
				high[key] = true
			}
			if row.Confidence >= MediumConfidence {
				medium[key]++
			}
		}
	}

	var filtered []core.PeptideRow
	for _, row := range rows {
		kept := make([]string, 0, len(row.Accessions))
		for _, acc := range row.Accessions {
			key := tableAccession{row.TableID, acc}
			if high[key] || medium[key] >= MinMediumRows {
				kept = append(kept, acc)
			}
		}
		if len(kept) == 0 {
			continue
		}
		row.Accessions = kept
		filtered = append(filtered, row)
	}
	return filtered
}

// RemoveDecoys drops decoy accessions from each row and removes rows left
// without accessions. Decoys only take part in FDR estimation.
func RemoveDecoys(rows []core.PeptideRow, prefix string) []core.PeptideRow {
	if prefix == "" {
		return rows
	}

	var filtered []core.PeptideRow
	for _, row := range rows {
		kept := make([]string, 0, len(row.Accessions))
		for _, acc := range row.Accessions {
			if !core.IsDecoy(acc, prefix) {
				kept = append(kept, acc)
			}
		}
		if len(kept) == 0 {
			continue
		}
		row.Accessions = kept
		filtered = append(filtered, row)
	}
	return filtered
}

// ApplyReplacements rewrites the accessions of each row to their group
// representatives using the replacement map of the row's table. Accessions
// without a replacement are kept; duplicates created by the rewrite are
// dropped, keeping first-seen order.
func ApplyReplacements(rows []core.PeptideRow, replacements map[string]map[string]string) {
	for i := range rows {
		row := &rows[i]
		repl := replacements[row.TableID]

		seen := make(map[string]bool, len(row.Accessions))
		out := make([]string, 0, len(row.Accessions))
		for _, acc := range row.Accessions {
			if rep, ok := repl[acc]; ok {
				acc = rep
			}
			if seen[acc] {
				continue
			}
			seen[acc] = true
			out = append(out, acc)
		}
		row.Accessions = out
	}
}

// TruncateRank drops every row whose rank is >= cutoff
func TruncateRank(rows []core.PeptideRow, cutoff float64) []core.PeptideRow {
	var kept []core.PeptideRow
	for _, row := range rows {
		if float64(row.Rank) < cutoff {
			kept = append(kept, row)
		}
	}
	return kept
}

// TruncateHits drops every ranked protein hit whose rank is >= cutoff
func TruncateHits(hits []grouping.Hit, cutoff float64) []grouping.Hit {
	var kept []grouping.Hit
	for _, h := range hits {
		if float64(h.Rank) < cutoff {
			kept = append(kept, h)
		}
	}
	return kept
}
