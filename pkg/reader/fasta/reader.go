// Package fasta provides a streaming reader for FASTA protein databases
package fasta

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ChrisMcGann/ProtSum/pkg/core"
)

const maxLineLength = 16 * 1024 * 1024

// Reader provides streaming access to FASTA files
type Reader struct {
	scanner    *bufio.Scanner
	lineNum    int
	nextHeader string
	current    *core.Sequence
	err        error
}

// NewReader creates a new FASTA reader
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineLength)
	return &Reader{scanner: scanner}
}

// Next advances to the next sequence. Returns false when no more sequences or error.
func (r *Reader) Next() bool {
	r.current = nil

	seq, err := r.readSequence()
	if err != nil {
		if err != io.EOF {
			r.err = err
		}
		return false
	}

	r.current = seq
	return true
}

// Sequence returns the current sequence
func (r *Reader) Sequence() *core.Sequence {
	return r.current
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// readSequence reads one header and its sequence lines
func (r *Reader) readSequence() (*core.Sequence, error) {
	header := r.nextHeader
	r.nextHeader = ""

	// Find the first header
	for header == "" {
		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		r.lineNum++
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		if !strings.HasPrefix(line, ">") {
			return nil, fmt.Errorf("line %d: sequence data before first header", r.lineNum)
		}
		header = line
	}

	seq, err := parseHeader(header)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
	}

	var raw strings.Builder
	for r.scanner.Scan() {
		r.lineNum++
		line := strings.TrimSpace(r.scanner.Text())
		if strings.HasPrefix(line, ">") {
			r.nextHeader = line
			break
		}
		raw.WriteString(line)
	}
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	seq.Raw = raw.String()
	return seq, nil
}

// parseHeader splits ">accession description" into its parts
func parseHeader(header string) (*core.Sequence, error) {
	header = strings.TrimSpace(strings.TrimPrefix(header, ">"))
	if header == "" {
		return nil, fmt.Errorf("empty FASTA header")
	}

	acc, desc, _ := strings.Cut(header, " ")
	if i := strings.IndexByte(acc, '\t'); i >= 0 {
		acc, desc = acc[:i], acc[i+1:]+" "+desc
	}

	return &core.Sequence{
		Accession:   acc,
		Description: strings.TrimSpace(desc),
	}, nil
}

// LoadDB reads every sequence into a sequence database. Later duplicates
// replace earlier entries.
func LoadDB(r io.Reader) (*core.SequenceDB, error) {
	db := core.NewSequenceDB()
	reader := NewReader(r)
	for reader.Next() {
		db.Add(reader.Sequence())
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("error reading FASTA: %w", err)
	}
	return db, nil
}
