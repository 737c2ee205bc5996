package grouping

// AccessionStat holds the cross-table statistics of one accession.
type AccessionStat struct {
	Accession   string
	MaxUnused   float64 // Highest unused value of any group containing the accession
	Occurrences int     // Number of groups, over all tables, containing the accession
	Ambiguous   bool    // More than one group reaches MaxUnused

	atMax int
}

// Stats is an immutable arena of accession statistics built before any
// representative is resolved.
type Stats struct {
	entries []AccessionStat
	index   map[string]int
}

// buildStats computes the global statistics over all groups
func buildStats(groups []Group) *Stats {
	st := &Stats{index: make(map[string]int)}

	for _, g := range groups {
		for _, acc := range g.Accessions {
			i, ok := st.index[acc]
			if !ok {
				st.index[acc] = len(st.entries)
				st.entries = append(st.entries, AccessionStat{
					Accession:   acc,
					MaxUnused:   g.Unused,
					Occurrences: 1,
					atMax:       1,
				})
				continue
			}

			e := &st.entries[i]
			e.Occurrences++
			switch {
			case g.Unused > e.MaxUnused:
				e.MaxUnused = g.Unused
				e.atMax = 1
			case g.Unused == e.MaxUnused:
				e.atMax++
			}
		}
	}

	for i := range st.entries {
		st.entries[i].Ambiguous = st.entries[i].atMax > 1
	}

	return st
}

// Get returns the statistics of an accession
func (s *Stats) Get(accession string) (AccessionStat, bool) {
	i, ok := s.index[accession]
	if !ok {
		return AccessionStat{}, false
	}
	return s.entries[i], true
}

// Len returns the number of distinct accessions
func (s *Stats) Len() int {
	return len(s.entries)
}

// All returns the statistics in first-seen order
func (s *Stats) All() []AccessionStat {
	out := make([]AccessionStat, len(s.entries))
	copy(out, s.entries)
	return out
}
