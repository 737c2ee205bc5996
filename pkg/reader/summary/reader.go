// Package summary provides readers for tab-separated PeptideSummary and
// ProteinSummary tables
package summary

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/ProtSum/pkg/core"
	"golang.org/x/net/html/charset"
)

const maxLineLength = 4 * 1024 * 1024

// Columns names the header cells the readers look up
type Columns struct {
	Unused       string `mapstructure:"unused"`
	Accession    string `mapstructure:"accession"`
	Accessions   string `mapstructure:"accessions"`
	Confidence   string `mapstructure:"confidence"`
	Contribution string `mapstructure:"contribution"`
	Score        string `mapstructure:"score"`
	Intensity    string `mapstructure:"intensity"`
	Sequence     string `mapstructure:"sequence"`
}

// DefaultColumns returns the ProteinPilot export column names
func DefaultColumns() Columns {
	return Columns{
		Unused:       "Unused",
		Accession:    "Accession",
		Accessions:   "Accessions",
		Confidence:   "Conf",
		Contribution: "Contrib",
		Score:        "Sc",
		Intensity:    "Intensity",
		Sequence:     "Sequence",
	}
}

// Options configures a summary reader
type Options struct {
	Columns Columns

	// Encoding is a charset label ("windows-1252", "latin1", ...).
	// Empty means UTF-8.
	Encoding string
}

// DefaultOptions returns options for UTF-8 ProteinPilot exports
func DefaultOptions() Options {
	return Options{Columns: DefaultColumns()}
}

// table holds the state shared by both readers
type table struct {
	scanner *bufio.Scanner
	tableID string
	header  map[string]int
	fields  []string
	lineNum int
	rowNum  int
	err     error
}

func newTable(r io.Reader, tableID string, opts Options) (*table, error) {
	if opts.Encoding != "" {
		decoded, err := charset.NewReaderLabel(opts.Encoding, r)
		if err != nil {
			return nil, fmt.Errorf("unsupported encoding %q: %w", opts.Encoding, err)
		}
		r = decoded
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineLength)

	t := &table{scanner: scanner, tableID: tableID}
	if err := t.readHeader(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *table) readHeader() error {
	for t.scanner.Scan() {
		t.lineNum++
		line := strings.TrimRight(t.scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		line = strings.TrimPrefix(line, "\ufeff")

		t.header = make(map[string]int)
		for i, name := range splitLine(line) {
			if _, dup := t.header[name]; !dup {
				t.header[name] = i
			}
		}
		return nil
	}
	if err := t.scanner.Err(); err != nil {
		return fmt.Errorf("error reading header: %w", err)
	}
	return fmt.Errorf("table %s: missing header row", t.tableID)
}

// require returns an error naming the first column absent from the header
func (t *table) require(names ...string) error {
	for _, name := range names {
		if _, ok := t.header[name]; !ok {
			return fmt.Errorf("table %s: missing column %q", t.tableID, name)
		}
	}
	return nil
}

// advance moves to the next non-blank data line
func (t *table) advance() bool {
	t.fields = nil
	if t.err != nil {
		return false
	}

	for t.scanner.Scan() {
		t.lineNum++
		line := strings.TrimRight(t.scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		t.fields = splitLine(line)
		t.rowNum++
		return true
	}

	if err := t.scanner.Err(); err != nil {
		t.err = err
	}
	return false
}

// text returns the trimmed cell for a column, or "" when absent
func (t *table) text(column string) string {
	i, ok := t.header[column]
	if !ok || i >= len(t.fields) {
		return ""
	}
	return t.fields[i]
}

// number parses a numeric cell; blank and missing cells read as 0
func (t *table) number(column string) (float64, error) {
	cell := t.text(column)
	if cell == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid %s value %q", t.lineNum, column, cell)
	}
	return v, nil
}

func splitLine(line string) []string {
	fields := strings.Split(line, "\t")
	for i, f := range fields {
		fields[i] = strings.Trim(strings.TrimSpace(f), `"`)
	}
	return fields
}

// ProteinReader provides streaming access to a ProteinSummary table
type ProteinReader struct {
	t       *table
	columns Columns
	current *core.ProteinRow
}

// NewProteinReader reads the header row and checks the required columns
func NewProteinReader(r io.Reader, tableID string, opts Options) (*ProteinReader, error) {
	t, err := newTable(r, tableID, opts)
	if err != nil {
		return nil, err
	}
	if err := t.require(opts.Columns.Accession, opts.Columns.Unused); err != nil {
		return nil, err
	}
	return &ProteinReader{t: t, columns: opts.Columns}, nil
}

// Next advances to the next row. Returns false when no more rows or error.
func (r *ProteinReader) Next() bool {
	r.current = nil
	if !r.t.advance() {
		return false
	}

	unused, err := r.t.number(r.columns.Unused)
	if err != nil {
		r.t.err = err
		return false
	}

	r.current = &core.ProteinRow{
		TableID:    r.t.tableID,
		LocalIndex: r.t.rowNum,
		Accession:  r.t.text(r.columns.Accession),
		Unused:     unused,
	}
	return true
}

// Row returns the current row
func (r *ProteinReader) Row() *core.ProteinRow {
	return r.current
}

// Err returns any error encountered during reading
func (r *ProteinReader) Err() error {
	return r.t.err
}

// PeptideReader provides streaming access to a PeptideSummary table
type PeptideReader struct {
	t       *table
	columns Columns
	current *core.PeptideRow
}

// NewPeptideReader reads the header row and checks the required columns
func NewPeptideReader(r io.Reader, tableID string, opts Options) (*PeptideReader, error) {
	t, err := newTable(r, tableID, opts)
	if err != nil {
		return nil, err
	}
	if err := t.require(opts.Columns.Accessions); err != nil {
		return nil, err
	}
	return &PeptideReader{t: t, columns: opts.Columns}, nil
}

// Next advances to the next row. Returns false when no more rows or error.
func (r *PeptideReader) Next() bool {
	r.current = nil
	if !r.t.advance() {
		return false
	}

	row := &core.PeptideRow{
		TableID:    r.t.tableID,
		Rank:       r.t.rowNum,
		Accessions: core.SplitAccessions(r.t.text(r.columns.Accessions)),
		Sequence:   r.t.text(r.columns.Sequence),
	}

	numbers := []struct {
		column string
		dst    *float64
	}{
		{r.columns.Confidence, &row.Confidence},
		{r.columns.Score, &row.Score},
		{r.columns.Intensity, &row.Intensity},
		{r.columns.Contribution, &row.Contribution},
		{r.columns.Unused, &row.Unused},
	}
	for _, n := range numbers {
		v, err := r.t.number(n.column)
		if err != nil {
			r.t.err = err
			return false
		}
		*n.dst = v
	}

	r.current = row
	return true
}

// Row returns the current row
func (r *PeptideReader) Row() *core.PeptideRow {
	return r.current
}

// Err returns any error encountered during reading
func (r *PeptideReader) Err() error {
	return r.t.err
}

// ReadProteins reads a whole ProteinSummary table
func ReadProteins(r io.Reader, tableID string, opts Options) ([]core.ProteinRow, error) {
	reader, err := NewProteinReader(r, tableID, opts)
	if err != nil {
		return nil, err
	}

	var rows []core.ProteinRow
	for reader.Next() {
		rows = append(rows, *reader.Row())
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("table %s: %w", tableID, err)
	}
	return rows, nil
}

// ReadPeptides reads a whole PeptideSummary table
func ReadPeptides(r io.Reader, tableID string, opts Options) ([]core.PeptideRow, error) {
	reader, err := NewPeptideReader(r, tableID, opts)
	if err != nil {
		return nil, err
	}

	var rows []core.PeptideRow
	for reader.Next() {
		rows = append(rows, *reader.Row())
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("table %s: %w", tableID, err)
	}
	return rows, nil
}
