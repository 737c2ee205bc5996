package fasta

import (
	"strings"
	"testing"

	"github.com/ChrisMcGann/ProtSum/pkg/core"
	"github.com/google/go-cmp/cmp"
)

func TestReader(t *testing.T) {
	in := `; comment
>sp|P02768|ALBU_HUMAN Serum albumin OS=Homo sapiens
MKWVTFISLL
FLFSSAYS

>RRRRRsp|P02768|ALBU_HUMAN
SYASSFLF
>bare
`

	reader := NewReader(strings.NewReader(in))
	var got []core.Sequence
	for reader.Next() {
		got = append(got, *reader.Sequence())
	}
	if err := reader.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}

	want := []core.Sequence{
		{Accession: "sp|P02768|ALBU_HUMAN", Description: "Serum albumin OS=Homo sapiens", Raw: "MKWVTFISLLFLFSSAYS"},
		{Accession: "RRRRRsp|P02768|ALBU_HUMAN", Raw: "SYASSFLF"},
		{Accession: "bare"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sequences mismatch (-want +got):\n%s", diff)
	}
}

func TestReaderErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"data before header", "MKWV\n>P1\nAAA\n"},
		{"empty header", ">\nAAA\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := NewReader(strings.NewReader(tt.in))
			for reader.Next() {
			}
			if reader.Err() == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadDB(t *testing.T) {
	db, err := LoadDB(strings.NewReader(">P1 first\nAAAA\n>P2\nCC\n>P1 again\nAAAAAA\n"))
	if err != nil {
		t.Fatalf("LoadDB() error = %v", err)
	}
	if db.Len() != 2 {
		t.Errorf("Len() = %d, want 2", db.Len())
	}
	if n, _ := db.Length("P1"); n != 6 {
		t.Errorf("Length(P1) = %d, want 6 (later duplicate wins)", n)
	}
}
