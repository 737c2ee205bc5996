package summary

import (
	"strings"
	"testing"

	"github.com/ChrisMcGann/ProtSum/pkg/core"
	"github.com/google/go-cmp/cmp"
)

const proteinTable = "N\tUnused\tTotal\tAccession\tName\n" +
	"1\t12.5\t12.5\tP1\tAlbumin\n" +
	"2\t0\t12.0\tP2\tAlbumin fragment\n" +
	"\n" +
	"3\t\t0\tRRRRRP9\tReversed\r\n"

const peptideTable = "N\tUnused\tContrib\tConf\tSequence\tAccessions\tSc\tIntensity\n" +
	"1\t12.5\t2\t99\tPEPTIDEK\tP1; P2\t14.2\t1000\n" +
	"2\t12.5\t1.5\t95.5\tAAAK\tP1\t9\t\n"

func TestReadProteins(t *testing.T) {
	rows, err := ReadProteins(strings.NewReader(proteinTable), "1.1", DefaultOptions())
	if err != nil {
		t.Fatalf("ReadProteins() error = %v", err)
	}

	want := []core.ProteinRow{
		{TableID: "1.1", LocalIndex: 1, Accession: "P1", Unused: 12.5},
		{TableID: "1.1", LocalIndex: 2, Accession: "P2", Unused: 0},
		{TableID: "1.1", LocalIndex: 3, Accession: "RRRRRP9", Unused: 0},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestReadPeptides(t *testing.T) {
	rows, err := ReadPeptides(strings.NewReader(peptideTable), "1.1", DefaultOptions())
	if err != nil {
		t.Fatalf("ReadPeptides() error = %v", err)
	}

	want := []core.PeptideRow{
		{TableID: "1.1", Rank: 1, Accessions: []string{"P1", "P2"}, Confidence: 99, Score: 14.2,
			Intensity: 1000, Contribution: 2, Unused: 12.5, Sequence: "PEPTIDEK"},
		{TableID: "1.1", Rank: 2, Accessions: []string{"P1"}, Confidence: 95.5, Score: 9,
			Contribution: 1.5, Unused: 12.5, Sequence: "AAAK"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestCustomColumns(t *testing.T) {
	opts := DefaultOptions()
	opts.Columns.Accession = "Protein"
	opts.Columns.Unused = "Score"

	rows, err := ReadProteins(strings.NewReader("Protein\tScore\nQ1\t3\n"), "2", opts)
	if err != nil {
		t.Fatalf("ReadProteins() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Accession != "Q1" || rows[0].Unused != 3 {
		t.Errorf("rows = %+v", rows)
	}
}

func TestEncoding(t *testing.T) {
	// "Protéine" in latin1
	in := "Accession\tUnused\tName\nP1\t1\tProt\xe9ine\n"

	opts := DefaultOptions()
	opts.Encoding = "latin1"
	reader, err := NewProteinReader(strings.NewReader(in), "1", opts)
	if err != nil {
		t.Fatalf("NewProteinReader() error = %v", err)
	}
	if !reader.Next() {
		t.Fatalf("Next() = false, err = %v", reader.Err())
	}
	if got := reader.t.text("Name"); got != "Protéine" {
		t.Errorf("Name = %q, want %q", got, "Protéine")
	}
}

func TestReaderErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		opts Options
	}{
		{"empty input", "", DefaultOptions()},
		{"missing accession column", "N\tUnused\n1\t2\n", DefaultOptions()},
		{"bad number", "Accession\tUnused\nP1\tabc\n", DefaultOptions()},
		{"unknown encoding", "Accession\tUnused\n", Options{Columns: DefaultColumns(), Encoding: "no-such-charset"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadProteins(strings.NewReader(tt.in), "1", tt.opts); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
