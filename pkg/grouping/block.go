package grouping

import (
	"sort"

	"github.com/ChrisMcGann/ProtSum/pkg/core"
)

// blockState is the state of the block scanner
type blockState int

const (
	// awaitingBlock: no block is open yet, the next row opens one
	awaitingBlock blockState = iota
	// accumulatingBlock: rows with unused == 0 join the open block
	accumulatingBlock
)

// block is one run of protein rows sharing the unused value of its first row
type block struct {
	ordinal    int // 1-based, counts every block the scanner opened
	unused     float64
	leader     string
	accessions []string
}

// scanner folds ordered protein rows into blocks.
type scanner struct {
	state       blockState
	decoyPrefix string
	stopAtDecoy bool
	dedupe      bool

	seen    map[string]bool
	blocks  []block
	stopped bool
}

func newScanner(decoyPrefix string, stopAtDecoy, dedupe bool) *scanner {
	return &scanner{
		state:       awaitingBlock,
		decoyPrefix: decoyPrefix,
		stopAtDecoy: stopAtDecoy,
		dedupe:      dedupe,
		seen:        make(map[string]bool),
	}
}

// feed consumes one row. It returns false once scanning has stopped.
func (s *scanner) feed(row core.ProteinRow) bool {
	if s.stopped {
		return false
	}
	if s.stopAtDecoy && core.IsDecoy(row.Accession, s.decoyPrefix) {
		s.stopped = true
		return false
	}

	switch s.state {
	case awaitingBlock:
		s.open(row)
		s.state = accumulatingBlock
	case accumulatingBlock:
		if row.Unused != 0 {
			s.open(row)
		}
	}

	cur := &s.blocks[len(s.blocks)-1]
	if s.dedupe {
		if s.seen[row.Accession] {
			return true
		}
		s.seen[row.Accession] = true
	}
	cur.accessions = append(cur.accessions, row.Accession)
	return true
}

func (s *scanner) open(row core.ProteinRow) {
	s.blocks = append(s.blocks, block{
		ordinal: len(s.blocks) + 1,
		unused:  row.Unused,
		leader:  row.Accession,
	})
}

// sortedRows returns a copy of rows ordered by LocalIndex
func sortedRows(rows []core.ProteinRow) []core.ProteinRow {
	out := make([]core.ProteinRow, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LocalIndex < out[j].LocalIndex
	})
	return out
}

// scanBlocks splits one table into blocks
func scanBlocks(rows []core.ProteinRow, decoyPrefix string, stopAtDecoy, dedupe bool) []block {
	s := newScanner(decoyPrefix, stopAtDecoy, dedupe)
	for _, row := range sortedRows(rows) {
		if !s.feed(row) {
			break
		}
	}
	return s.blocks
}
