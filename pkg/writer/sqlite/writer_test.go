package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/ChrisMcGann/ProtSum/pkg/core"
	"github.com/ChrisMcGann/ProtSum/pkg/pipeline"
)

func testResult(t *testing.T) (*pipeline.Result, *core.SequenceDB) {
	t.Helper()

	seqs := core.NewSequenceDB()
	seqs.Add(&core.Sequence{Accession: "P1", Description: "Albumin", Raw: "MKWVTF"})
	seqs.Add(&core.Sequence{Accession: "P2", Raw: "AAA"})

	in := pipeline.Input{
		Sequences: seqs,
		Proteins: map[string][]core.ProteinRow{
			"1.1": {
				{TableID: "1.1", LocalIndex: 1, Accession: "P1", Unused: 2},
				{TableID: "1.1", LocalIndex: 2, Accession: "P2", Unused: 0},
			},
		},
		Peptides: map[string][]core.PeptideRow{
			"1.1": {
				{TableID: "1.1", Rank: 1, Accessions: []string{"P2", "P1"}, Confidence: 99, Score: 10, Intensity: 100, Sequence: "PEPTIDE"},
			},
		},
	}

	res, err := pipeline.Run(in, pipeline.DefaultOptions())
	if err != nil {
		t.Fatalf("pipeline.Run() error = %v", err)
	}
	return res, seqs
}

func count(t *testing.T, db *sql.DB, query string, args ...interface{}) int {
	t.Helper()
	var n int
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("query %q: %v", query, err)
	}
	return n
}

func TestWriteResult(t *testing.T) {
	res, seqs := testResult(t)
	path := filepath.Join(t.TempDir(), "report.db")

	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	w.Description = "test run"
	if err := w.WriteResult(res, seqs); err != nil {
		t.Fatalf("WriteResult() error = %v", err)
	}
	runID := w.RunID()
	if err := w.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if n := count(t, db, "SELECT COUNT(*) FROM RunTable WHERE RunId = ?", runID); n != 1 {
		t.Errorf("RunTable rows = %d, want 1", n)
	}
	if n := count(t, db, "SELECT COUNT(*) FROM ReplacementTable WHERE Representative = 'P1'"); n != 2 {
		t.Errorf("ReplacementTable rows = %d, want 2", n)
	}

	var acc, desc string
	var length, peptides int
	var mass, ratio float64
	err = db.QueryRow("SELECT Accession, Description, Length, Mass, PeptideCount, CompositeRatio FROM AccessionTable WHERE RunId = ?", runID).
		Scan(&acc, &desc, &length, &mass, &peptides, &ratio)
	if err != nil {
		t.Fatalf("AccessionTable query: %v", err)
	}
	if acc != "P1" || desc != "Albumin" || length != 6 || peptides != 1 || ratio != 1 {
		t.Errorf("AccessionTable row = %s %s %d %d %v", acc, desc, length, peptides, ratio)
	}
	seq, _ := seqs.Get("P1")
	if want := core.RoundFloat(seq.Mass(), massPrecision); mass != want || mass == 0 {
		t.Errorf("Mass = %v, want %v", mass, want)
	}

	// No decoys, so the model is degenerate and its fit columns are NULL
	var valid bool
	var reason string
	var a sql.NullFloat64
	err = db.QueryRow("SELECT Valid, Reason, A FROM FDRModelTable WHERE TableId = '1.1'").Scan(&valid, &reason, &a)
	if err != nil {
		t.Fatalf("FDRModelTable query: %v", err)
	}
	if valid || reason == "" || a.Valid {
		t.Errorf("FDR model row = valid %v, reason %q, a %v", valid, reason, a)
	}
}

func TestRunIDsDiffer(t *testing.T) {
	dir := t.TempDir()
	first, err := NewWriter(filepath.Join(dir, "a.db"))
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	defer first.Close()
	second, err := NewWriter(filepath.Join(dir, "b.db"))
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	defer second.Close()

	if first.RunID() == second.RunID() {
		t.Error("run ids should differ")
	}
}
