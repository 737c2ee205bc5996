// Package aggregate sums retained peptide rows per accession and normalizes
// the sums by sequence length and table totals.
package aggregate

import (
	"sort"

	"github.com/ChrisMcGann/ProtSum/pkg/core"
	"gonum.org/v1/gonum/floats"
)

// LengthSource provides protein sequence lengths
type LengthSource interface {
	Length(accession string) (int, error)
}

// Entry is the aggregate of one accession in one table
type Entry struct {
	Accession    string
	Length       int // Protein sequence length
	Count        int
	SeqLenSum    int // Summed peptide lengths
	ScoreSum     float64
	IntensitySum float64

	ScoreNorm          float64 // ScoreSum / Length
	IntensityNorm      float64 // IntensitySum / Length
	ScoreNormRatio     float64 // ScoreNorm / table sum of ScoreNorm
	IntensityNormRatio float64 // IntensityNorm / table sum of IntensityNorm
	CompositeRatio     float64 // Mean of the two ratios
}

// Table holds the aggregates of one table, stored in accession order
type Table struct {
	ID      string
	entries []Entry
	index   map[string]int
}

// Build aggregates the peptide rows of one table. Every accession of a row
// receives the full row values. It fails with a *core.MissingSequenceError
// listing every accession without a usable sequence.
func Build(tableID string, rows []core.PeptideRow, seqs LengthSource) (*Table, error) {
	sums := make(map[string]*Entry)

	for _, row := range rows {
		pepLen := core.ResidueCount(row.Sequence)
		seen := make(map[string]bool, len(row.Accessions))
		for _, acc := range row.Accessions {
			if seen[acc] {
				continue
			}
			seen[acc] = true

			e, ok := sums[acc]
			if !ok {
				e = &Entry{Accession: acc}
				sums[acc] = e
			}
			e.Count++
			e.SeqLenSum += pepLen
			e.ScoreSum += row.Score
			e.IntensitySum += row.Intensity
		}
	}

	t := &Table{ID: tableID, index: make(map[string]int, len(sums))}
	var missing []string
	for _, e := range sums {
		n, err := seqs.Length(e.Accession)
		if err != nil || n == 0 {
			missing = append(missing, e.Accession)
			continue
		}
		e.Length = n
		e.ScoreNorm = e.ScoreSum / float64(n)
		e.IntensityNorm = e.IntensitySum / float64(n)
		t.entries = append(t.entries, *e)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &core.MissingSequenceError{Accessions: missing}
	}

	sort.Slice(t.entries, func(i, j int) bool {
		return t.entries[i].Accession < t.entries[j].Accession
	})
	t.reindex()
	t.Normalize()

	return t, nil
}

// Normalize recomputes the ratio fields from the current entries. A table
// whose norms sum to zero gets zero ratios.
func (t *Table) Normalize() {
	scores := make([]float64, len(t.entries))
	intensities := make([]float64, len(t.entries))
	for i, e := range t.entries {
		scores[i] = e.ScoreNorm
		intensities[i] = e.IntensityNorm
	}
	scoreSum := floats.Sum(scores)
	intensitySum := floats.Sum(intensities)

	for i := range t.entries {
		e := &t.entries[i]
		e.ScoreNormRatio = ratio(e.ScoreNorm, scoreSum)
		e.IntensityNormRatio = ratio(e.IntensityNorm, intensitySum)
		e.CompositeRatio = (e.ScoreNormRatio + e.IntensityNormRatio) / 2
	}
}

func ratio(v, total float64) float64 {
	if total == 0 {
		return 0
	}
	return v / total
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.entries))
	for i, e := range t.entries {
		t.index[e.Accession] = i
	}
}

// Get returns the entry of an accession
func (t *Table) Get(accession string) (Entry, bool) {
	i, ok := t.index[accession]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// Has reports whether the accession is present in the table
func (t *Table) Has(accession string) bool {
	_, ok := t.index[accession]
	return ok
}

// Len returns the number of accessions
func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the entries in accession order
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Accessions returns the accessions in ascending order
func (t *Table) Accessions() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Accession
	}
	return out
}

// Remove deletes accessions from the table; unknown accessions are ignored.
// Ratios are not recomputed, call Normalize afterwards.
func (t *Table) Remove(accessions ...string) int {
	drop := make(map[string]bool, len(accessions))
	for _, acc := range accessions {
		if t.Has(acc) {
			drop[acc] = true
		}
	}
	if len(drop) == 0 {
		return 0
	}

	kept := t.entries[:0]
	for _, e := range t.entries {
		if !drop[e.Accession] {
			kept = append(kept, e)
		}
	}
	t.entries = kept
	t.reindex()

	return len(drop)
}
