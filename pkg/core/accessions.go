package core

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

// AccessionSet is a set of accession names used for white, black and
// exclusion lists
type AccessionSet map[string]struct{}

// NewAccessionSet creates a set holding the given accessions
func NewAccessionSet(accessions ...string) AccessionSet {
	s := make(AccessionSet, len(accessions))
	for _, acc := range accessions {
		s.Add(acc)
	}
	return s
}

// Add adds an accession; blank names are ignored
func (s AccessionSet) Add(accession string) {
	accession = strings.TrimSpace(accession)
	if accession == "" {
		return
	}
	s[accession] = struct{}{}
}

// Has reports whether the accession is in the set
func (s AccessionSet) Has(accession string) bool {
	_, ok := s[accession]
	return ok
}

// Sorted returns the members in ascending order
func (s AccessionSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for acc := range s {
		out = append(out, acc)
	}
	sort.Strings(out)
	return out
}

// LoadFromCSV loads accessions from the first column of a CSV file.
// A first line equal to "accession" (any case) is treated as a header.
func (s AccessionSet) LoadFromCSV(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		acc := strings.TrimSpace(strings.Split(line, ",")[0])
		if lineNum == 1 && strings.EqualFold(acc, "accession") {
			continue
		}
		s.Add(acc)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading CSV: %w", err)
	}

	return nil
}

// SplitAccessions splits a ProteinPilot accession cell ("P1; P2;P3") into
// its ordered, non-empty parts
func SplitAccessions(cell string) []string {
	var out []string
	for _, part := range strings.Split(cell, ";") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
