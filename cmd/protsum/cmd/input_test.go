package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ChrisMcGann/ProtSum/pkg/config"
	"github.com/ChrisMcGann/ProtSum/pkg/core"
	"github.com/google/go-cmp/cmp"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindSummaries(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "1.1_ProteinSummary.txt"))
	touch(t, filepath.Join(dir, "1.1_PeptideSummary.txt"))
	touch(t, filepath.Join(dir, "nested", "2.1_PeptideSummary.txt"))
	touch(t, filepath.Join(dir, "notes.txt"))

	found, err := findSummaries([]string{dir})
	if err != nil {
		t.Fatalf("findSummaries() error = %v", err)
	}

	if diff := cmp.Diff([]string{"1.1"}, sortedIDs(found.proteins)); diff != "" {
		t.Errorf("protein tables mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"1.1", "2.1"}, sortedIDs(found.peptides)); diff != "" {
		t.Errorf("peptide tables mismatch (-want +got):\n%s", diff)
	}
}

func TestFindSummariesErrors(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a", "1.1_PeptideSummary.txt"))
	touch(t, filepath.Join(dir, "b", "1.1_PeptideSummary.txt"))

	if _, err := findSummaries([]string{dir}); err == nil {
		t.Error("expected an error for a duplicate table id")
	}
	if _, err := findSummaries([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Error("expected an error for a missing path")
	}
	if _, err := findSummaries([]string{t.TempDir()}); err == nil {
		t.Error("expected an error when no summaries are found")
	}
}

func TestGroupingOptionsDecoyPrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{"empty falls back to default", "", core.DefaultDecoyPrefix},
		{"explicit prefix", "REV_", "REV_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Config{
				DecoyPrefix: tt.prefix,
				FDR:         config.FDRConfig{WindowLow: 0.05, WindowHigh: 0.10},
			}
			opts, err := groupingOptions(cfg)
			if err != nil {
				t.Fatalf("groupingOptions() error = %v", err)
			}
			if opts.DecoyPrefix != tt.want {
				t.Errorf("DecoyPrefix = %q, want %q", opts.DecoyPrefix, tt.want)
			}
		})
	}
}
