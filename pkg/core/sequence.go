package core

import "sort"

// Sequence is one protein entry of the sequence database.
type Sequence struct {
	Accession   string
	Description string
	Raw         string
}

// Length returns the number of residues in the sequence.
func (s *Sequence) Length() int {
	return ResidueCount(s.Raw)
}

// Mass returns the neutral monoisotopic mass of the sequence.
func (s *Sequence) Mass() float64 {
	return CalculateNeutralMass(s.Raw)
}

// SequenceDB stores sequences keyed by accession
type SequenceDB struct {
	seqs    map[string]*Sequence
	lengths map[string]int
}

// NewSequenceDB creates an empty sequence database
func NewSequenceDB() *SequenceDB {
	return &SequenceDB{
		seqs:    make(map[string]*Sequence),
		lengths: make(map[string]int),
	}
}

// Add adds or replaces a sequence
func (db *SequenceDB) Add(seq *Sequence) {
	db.seqs[seq.Accession] = seq
	db.lengths[seq.Accession] = seq.Length()
}

// Get returns the sequence for an accession
func (db *SequenceDB) Get(accession string) (*Sequence, bool) {
	seq, ok := db.seqs[accession]
	return seq, ok
}

// Length returns the residue count for an accession, or a
// *MissingSequenceError if the accession is unknown.
func (db *SequenceDB) Length(accession string) (int, error) {
	n, ok := db.lengths[accession]
	if !ok {
		return 0, &MissingSequenceError{Accessions: []string{accession}}
	}
	return n, nil
}

// Len returns the number of sequences
func (db *SequenceDB) Len() int {
	return len(db.seqs)
}

// Accessions returns all accessions in ascending order
func (db *SequenceDB) Accessions() []string {
	out := make([]string, 0, len(db.seqs))
	for acc := range db.seqs {
		out = append(out, acc)
	}
	sort.Strings(out)
	return out
}
