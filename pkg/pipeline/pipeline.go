// Package pipeline runs the accession stages over one in-memory batch in
// their fixed order: grouping, replacement, FDR truncation, peptide
// filtering, aggregation and presence filtering.
package pipeline

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ChrisMcGann/ProtSum/pkg/aggregate"
	"github.com/ChrisMcGann/ProtSum/pkg/core"
	"github.com/ChrisMcGann/ProtSum/pkg/fdr"
	"github.com/ChrisMcGann/ProtSum/pkg/filter"
	"github.com/ChrisMcGann/ProtSum/pkg/grouping"
	"github.com/ChrisMcGann/ProtSum/pkg/presence"
)

// Options configures a run
type Options struct {
	DecoyPrefix string
	FDR         fdr.Options
	FDRLevel    float64 // Critical FDR percentage for truncation (0 = no truncation)
	Filter      filter.Config
	Presence    presence.Config
}

// DefaultOptions returns the defaults used by the CLI
func DefaultOptions() Options {
	return Options{
		DecoyPrefix: core.DefaultDecoyPrefix,
		FDR:         fdr.DefaultOptions(),
		Presence:    presence.DefaultConfig(),
	}
}

// Input is the parsed batch of one run
type Input struct {
	Sequences *core.SequenceDB
	Proteins  map[string][]core.ProteinRow
	Peptides  map[string][]core.PeptideRow
}

// Cutoff records an FDR truncation applied to one table
type Cutoff struct {
	TableID         string
	FDR             float64
	Rank            float64 // Rows with rank >= Rank were dropped
	PeptidesDropped int
	HitsDropped     int
}

// Result holds every output of a run
type Result struct {
	Grouping     *grouping.Result
	Replacements map[string]map[string]string
	Hits         map[string][]grouping.Hit // Ranked protein hits after truncation
	Models       map[string]*fdr.Model
	Cutoffs      []Cutoff
	Peptides     map[string][]core.PeptideRow // Retained peptide rows
	Tables       []*aggregate.Table           // Final aggregates in table order
	Removed      []string                     // Accessions dropped by the presence filter
	Warnings     []error
}

// Table returns the final aggregate of a table
func (r *Result) Table(id string) (*aggregate.Table, bool) {
	for _, t := range r.Tables {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// Run executes every stage. The input rows are not modified. On a fatal
// error the partially filled result is returned with the error so completed
// stages can be inspected.
func Run(in Input, opts Options) (*Result, error) {
	if in.Sequences == nil {
		in.Sequences = core.NewSequenceDB()
	}
	if err := validate(in); err != nil {
		return nil, err
	}

	res := &Result{
		Hits:     make(map[string][]grouping.Hit),
		Models:   make(map[string]*fdr.Model),
		Peptides: make(map[string][]core.PeptideRow),
	}
	tables := tableIDs(in)

	// Protein grouping and replacement maps
	g, err := grouping.Run(in.Proteins, in.Sequences, grouping.Options{DecoyPrefix: opts.DecoyPrefix})
	if err != nil {
		return res, fmt.Errorf("protein grouping failed: %w", err)
	}
	res.Grouping = g

	res.Replacements, err = g.Replacements()
	if err != nil {
		return res, fmt.Errorf("protein grouping failed: %w", err)
	}

	for _, id := range tables {
		rows := copyRows(in.Peptides[id])
		filter.ApplyReplacements(rows, res.Replacements)
		res.Peptides[id] = filter.RemoveDecoys(rows, opts.DecoyPrefix)
	}

	// FDR estimation and truncation
	for _, id := range tables {
		proteins, ok := in.Proteins[id]
		if !ok {
			continue
		}
		hits := g.Rank(id, proteins, opts.DecoyPrefix)

		model, err := fdr.Estimate(id, hits, opts.FDR)
		res.Models[id] = model
		if err != nil {
			var degenerate *core.DegenerateFDRModelError
			if !errors.As(err, &degenerate) {
				return res, fmt.Errorf("FDR estimation failed: %w", err)
			}
			res.Warnings = append(res.Warnings, err)
		}

		if opts.FDRLevel > 0 {
			if cutoff, ok := model.CutoffRank(opts.FDRLevel); ok {
				peptides := filter.TruncateRank(res.Peptides[id], cutoff)
				kept := filter.TruncateHits(hits, cutoff)
				res.Cutoffs = append(res.Cutoffs, Cutoff{
					TableID:         id,
					FDR:             opts.FDRLevel,
					Rank:            cutoff,
					PeptidesDropped: len(res.Peptides[id]) - len(peptides),
					HitsDropped:     len(hits) - len(kept),
				})
				res.Peptides[id] = peptides
				hits = kept
			}
		}
		res.Hits[id] = hits
	}

	// Peptide filters and aggregation
	for _, id := range tables {
		res.Peptides[id] = opts.Filter.Apply(res.Peptides[id])

		table, err := aggregate.Build(id, res.Peptides[id], in.Sequences)
		if err != nil {
			return res, fmt.Errorf("aggregation of table %s failed: %w", id, err)
		}
		res.Tables = append(res.Tables, table)
	}

	// Presence filter
	res.Removed = opts.Presence.Apply(res.Tables)
	for _, t := range res.Tables {
		t.Normalize()
	}

	return res, nil
}

// validate checks every input row, table by table in id order
func validate(in Input) error {
	for _, id := range tableIDs(in) {
		rows := in.Proteins[id]
		for i := range rows {
			if rows[i].TableID != id {
				return fmt.Errorf("protein row %d filed under table %s belongs to %s", rows[i].LocalIndex, id, rows[i].TableID)
			}
			if err := rows[i].Validate(); err != nil {
				return err
			}
		}
	}
	for _, id := range tableIDs(in) {
		rows := in.Peptides[id]
		for i := range rows {
			if rows[i].TableID != id {
				return fmt.Errorf("peptide row %d filed under table %s belongs to %s", rows[i].Rank, id, rows[i].TableID)
			}
			if err := rows[i].Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// tableIDs returns the union of protein and peptide table ids in order
func tableIDs(in Input) []string {
	seen := make(map[string]bool)
	var ids []string
	for id := range in.Proteins {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for id := range in.Peptides {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// copyRows deep-copies rows so later stages can rewrite accessions
func copyRows(rows []core.PeptideRow) []core.PeptideRow {
	out := make([]core.PeptideRow, len(rows))
	for i, row := range rows {
		row.Accessions = append([]string(nil), row.Accessions...)
		out[i] = row
	}
	return out
}
