// Package presence removes accessions that are not present in enough
// run-groups.
package presence

import (
	"sort"

	"github.com/ChrisMcGann/ProtSum/pkg/aggregate"
	"github.com/ChrisMcGann/ProtSum/pkg/core"
)

// Config holds the presence criterion
type Config struct {
	// An accession missing from more than MaxGroupLack tables of a run-group
	// counts as absent from that run-group
	MaxGroupLack int
	// Accessions present in fewer run-groups are removed everywhere
	MinGroupsWithAccession int
	// Separator between run-group and replicate in a table id
	Separator string
}

// DefaultConfig keeps every accession seen anywhere
func DefaultConfig() Config {
	return Config{
		MaxGroupLack:           0,
		MinGroupsWithAccession: 0,
		Separator:              core.DefaultRunGroupSeparator,
	}
}

// RunGroups maps each run-group to its table ids, both in ascending order
func RunGroups(tables []*aggregate.Table, sep string) map[string][]string {
	groups := make(map[string][]string)
	for _, t := range tables {
		g := core.RunGroup(t.ID, sep)
		groups[g] = append(groups[g], t.ID)
	}
	for g := range groups {
		sort.Strings(groups[g])
	}
	return groups
}

// GroupsWithAccession counts the run-groups in which an accession is
// missing from at most MaxGroupLack tables
func (c Config) GroupsWithAccession(accession string, tables []*aggregate.Table) int {
	lack := make(map[string]int)
	seen := make(map[string]bool)
	for _, t := range tables {
		g := core.RunGroup(t.ID, c.Separator)
		seen[g] = true
		if !t.Has(accession) {
			lack[g]++
		}
	}

	n := 0
	for g := range seen {
		if lack[g] <= c.MaxGroupLack {
			n++
		}
	}
	return n
}

// Apply removes every accession present in fewer than
// MinGroupsWithAccession run-groups from all tables and returns the removed
// accessions in ascending order. Ratios are not renormalized.
func (c Config) Apply(tables []*aggregate.Table) []string {
	all := make(map[string]bool)
	for _, t := range tables {
		for _, acc := range t.Accessions() {
			all[acc] = true
		}
	}

	var removed []string
	for acc := range all {
		if c.GroupsWithAccession(acc, tables) < c.MinGroupsWithAccession {
			removed = append(removed, acc)
		}
	}
	sort.Strings(removed)

	if len(removed) > 0 {
		for _, t := range tables {
			t.Remove(removed...)
		}
	}

	return removed
}
