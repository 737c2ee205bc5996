package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSequenceDBLength(t *testing.T) {
	db := NewSequenceDB()
	db.Add(&Sequence{Accession: "P1", Raw: "MKT\nAYI*"})

	n, err := db.Length("P1")
	if err != nil {
		t.Fatalf("Length(P1) unexpected error: %v", err)
	}
	if n != 6 {
		t.Errorf("Length(P1) = %d, want 6", n)
	}

	_, err = db.Length("P2")
	var missing *MissingSequenceError
	if !errors.As(err, &missing) {
		t.Fatalf("Length(P2) error = %v, want *MissingSequenceError", err)
	}
	if diff := cmp.Diff([]string{"P2"}, missing.Accessions); diff != "" {
		t.Errorf("missing accessions mismatch (-want +got):\n%s", diff)
	}
}

func TestAccessionSetLoadFromCSV(t *testing.T) {
	in := "Accession,Note\nP1,keep\n\n# comment\nP2\n  P3 ,x\n"

	s := NewAccessionSet()
	if err := s.LoadFromCSV(strings.NewReader(in)); err != nil {
		t.Fatalf("LoadFromCSV() error = %v", err)
	}

	want := []string{"P1", "P2", "P3"}
	if diff := cmp.Diff(want, s.Sorted()); diff != "" {
		t.Errorf("LoadFromCSV mismatch (-want +got):\n%s", diff)
	}
	if s.Has("Accession") {
		t.Error("header line must not be loaded")
	}
}
