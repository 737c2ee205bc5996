package grouping

import "github.com/ChrisMcGann/ProtSum/pkg/core"

// Hit is one ranked protein group of a table, decoy groups included.
type Hit struct {
	Rank      int // 1-based block ordinal
	Accession string
	Decoy     bool
	Unused    float64
}

// Rank lists every block of a table in rank order, including the decoy
// blocks that grouping ignores. Target blocks that were grouped report their
// resolved representative; the others report their leading accession.
func (r *Result) Rank(tableID string, rows []core.ProteinRow, decoyPrefix string) []Hit {
	blocks := scanBlocks(rows, decoyPrefix, false, false)

	reps := make(map[int]string)
	if r != nil {
		for _, g := range r.TableGroups(tableID) {
			reps[g.Index] = g.Representative
		}
	}

	hits := make([]Hit, 0, len(blocks))
	for _, b := range blocks {
		h := Hit{
			Rank:      b.ordinal,
			Accession: b.leader,
			Decoy:     core.IsDecoy(b.leader, decoyPrefix),
			Unused:    b.unused,
		}
		if rep, ok := reps[b.ordinal]; ok && !h.Decoy && rep != "" {
			h.Accession = rep
		}
		hits = append(hits, h)
	}

	return hits
}
