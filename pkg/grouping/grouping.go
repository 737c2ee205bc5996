// Package grouping partitions protein summary rows into redundancy groups and
// elects one representative accession per group.
//
// Grouping runs in two phases. Phase one blocks every table and builds the
// global accession statistics; phase two resolves each group by read-only
// lookups into those statistics.
package grouping

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ChrisMcGann/ProtSum/pkg/core"
)

// ErrEmptyGroup is returned when a group without accessions reaches resolution
var ErrEmptyGroup = errors.New("protein group has no accessions")

// LengthSource provides sequence lengths for the length tie-break
type LengthSource interface {
	Length(accession string) (int, error)
}

// Options configures the grouper
type Options struct {
	DecoyPrefix string
}

// Group is one redundancy group of a table
type Group struct {
	TableID        string
	Index          int // 1-based block ordinal within the table
	Unused         float64
	Accessions     []string // ascending, unique
	Representative string
}

// Contains reports whether the accession is a member of the group
func (g *Group) Contains(accession string) bool {
	i := sort.SearchStrings(g.Accessions, accession)
	return i < len(g.Accessions) && g.Accessions[i] == accession
}

// DifficultCase identifies a group whose representative needed a tie-break
type DifficultCase struct {
	TableID    string
	GroupIndex int
}

// Result holds the grouping of one run
type Result struct {
	Groups    []Group
	Stats     *Stats
	Difficult []DifficultCase

	tables  []string
	byTable map[string][]int // table -> indexes into Groups
}

// Run groups the protein rows of every table and resolves representatives.
func Run(tables map[string][]core.ProteinRow, seqs LengthSource, opts Options) (*Result, error) {
	res := &Result{byTable: make(map[string][]int)}

	for id := range tables {
		res.tables = append(res.tables, id)
	}
	sort.Strings(res.tables)

	// Phase 1: blocks and global statistics
	for _, id := range res.tables {
		for _, b := range scanBlocks(tables[id], opts.DecoyPrefix, true, true) {
			if len(b.accessions) == 0 {
				// every accession of the block already belongs to an earlier group
				continue
			}
			accs := make([]string, len(b.accessions))
			copy(accs, b.accessions)
			sort.Strings(accs)

			res.byTable[id] = append(res.byTable[id], len(res.Groups))
			res.Groups = append(res.Groups, Group{
				TableID:    id,
				Index:      b.ordinal,
				Unused:     b.unused,
				Accessions: accs,
			})
		}
	}
	res.Stats = buildStats(res.Groups)

	// Phase 2: representatives
	for i := range res.Groups {
		g := &res.Groups[i]
		rep, difficult, err := res.resolve(g, seqs)
		if err != nil {
			return nil, fmt.Errorf("table %s group %d: %w", g.TableID, g.Index, err)
		}
		g.Representative = rep
		if difficult {
			res.Difficult = append(res.Difficult, DifficultCase{TableID: g.TableID, GroupIndex: g.Index})
		}
	}

	return res, nil
}

// resolve elects the representative of one group
func (r *Result) resolve(g *Group, seqs LengthSource) (string, bool, error) {
	if len(g.Accessions) == 0 {
		return "", false, ErrEmptyGroup
	}

	best := math.Inf(-1)
	for _, acc := range g.Accessions {
		st, _ := r.Stats.Get(acc)
		if st.MaxUnused > best {
			best = st.MaxUnused
		}
	}

	var candidates []AccessionStat
	ambiguous := false
	for _, acc := range g.Accessions {
		st, _ := r.Stats.Get(acc)
		if st.MaxUnused == best {
			candidates = append(candidates, st)
			ambiguous = ambiguous || st.Ambiguous
		}
	}

	if len(candidates) == 1 {
		return candidates[0].Accession, false, nil
	}

	if ambiguous {
		rep := candidates[0]
		for _, c := range candidates[1:] {
			if c.Occurrences > rep.Occurrences {
				rep = c
			}
		}
		return rep.Accession, true, nil
	}

	rep := ""
	longest := -1
	var missing []string
	for _, c := range candidates {
		n, err := seqs.Length(c.Accession)
		if err != nil {
			missing = append(missing, c.Accession)
			continue
		}
		if n > longest {
			longest = n
			rep = c.Accession
		}
	}
	if len(missing) > 0 {
		return "", true, &core.MissingSequenceError{Accessions: missing}
	}

	return rep, true, nil
}

// Tables returns the ids of all grouped tables in ascending order
func (r *Result) Tables() []string {
	out := make([]string, len(r.tables))
	copy(out, r.tables)
	return out
}

// TableGroups returns the groups of one table in block order
func (r *Result) TableGroups(tableID string) []*Group {
	idx := r.byTable[tableID]
	out := make([]*Group, len(idx))
	for i, gi := range idx {
		out[i] = &r.Groups[gi]
	}
	return out
}

// Group returns the group of a table with the given block ordinal
func (r *Result) Group(tableID string, index int) (*Group, bool) {
	for _, gi := range r.byTable[tableID] {
		if r.Groups[gi].Index == index {
			return &r.Groups[gi], true
		}
	}
	return nil, false
}

// DifficultGroups returns the groups recorded as difficult cases
func (r *Result) DifficultGroups() []*Group {
	out := make([]*Group, 0, len(r.Difficult))
	for _, d := range r.Difficult {
		if g, ok := r.Group(d.TableID, d.GroupIndex); ok {
			out = append(out, g)
		}
	}
	return out
}

// Replacements builds, per table, the map from every grouped accession to
// its group's representative (the representative maps to itself).
func (r *Result) Replacements() (map[string]map[string]string, error) {
	out := make(map[string]map[string]string, len(r.tables))

	for _, id := range r.tables {
		m := make(map[string]string)
		for _, g := range r.TableGroups(id) {
			if g.Representative == "" || !g.Contains(g.Representative) {
				return nil, &core.MissingRepresentativeError{TableID: id, Accessions: g.Accessions}
			}
			for _, acc := range g.Accessions {
				m[acc] = g.Representative
			}
		}
		out[id] = m
	}

	return out, nil
}
