package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ChrisMcGann/ProtSum/pkg/core"
	"github.com/ChrisMcGann/ProtSum/pkg/filter"
	"github.com/spf13/viper"
)

func load(t *testing.T, settings string) Config {
	t.Helper()

	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(settings)); err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	c, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return c
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	c := load(t, "")

	if c.DecoyPrefix != core.DefaultDecoyPrefix {
		t.Errorf("DecoyPrefix = %q", c.DecoyPrefix)
	}
	if c.Input.Columns.Confidence != "Conf" || c.Input.Columns.Accessions != "Accessions" {
		t.Errorf("Columns = %+v", c.Input.Columns)
	}

	opts, err := c.PipelineOptions()
	if err != nil {
		t.Fatalf("PipelineOptions() error = %v", err)
	}
	if opts.FDR.Window.Low != 0.05 || opts.FDR.Window.High != 0.10 || opts.FDR.TableRange != 1000 {
		t.Errorf("FDR options = %+v", opts.FDR)
	}
	if opts.FDRLevel != 0 {
		t.Errorf("FDRLevel = %v, want 0", opts.FDRLevel)
	}
	if opts.Filter.Confidence != nil || opts.Filter.Whitelist != nil {
		t.Errorf("filters should be unset: %+v", opts.Filter)
	}
	if opts.Presence.Separator != "." {
		t.Errorf("Separator = %q", opts.Presence.Separator)
	}
}

func TestSettingsFile(t *testing.T) {
	whitelist := writeFile(t, "white.csv", "accession\nP1\nP2\n")
	perTable := writeFile(t, "conf.csv", "table,value\n1.1,90\n")

	c := load(t, `
decoy-prefix: REV_
fdr:
  level: 1
  k: 2.5
filter:
  confidence:
    threshold: ">=95"
  unused:
    threshold: ge
    table: `+perTable+`
  confidence-default: true
  whitelist: `+whitelist+`
presence:
  max-group-lack: 1
  min-groups: 2
input:
  encoding: latin1
  columns:
    score: Score
`)

	opts, err := c.PipelineOptions()
	if err != nil {
		t.Fatalf("PipelineOptions() error = %v", err)
	}

	if opts.DecoyPrefix != "REV_" || opts.FDRLevel != 1 || opts.FDR.K != 2.5 {
		t.Errorf("options = %+v", opts)
	}
	if !opts.Filter.Confidence.Allows("1.1", 95) || opts.Filter.Confidence.Allows("1.1", 94) {
		t.Errorf("confidence threshold = %v", opts.Filter.Confidence)
	}
	if opts.Filter.Unused.Op != filter.GE || opts.Filter.Unused.PerTable["1.1"] != 90 {
		t.Errorf("unused threshold = %v", opts.Filter.Unused)
	}
	if !opts.Filter.Unused.Allows("2.1", 0) {
		t.Error("tables absent from the lookup should pass")
	}
	if !opts.Filter.ConfidenceDefault || !opts.Filter.Whitelist.Has("P2") || len(opts.Filter.Whitelist) != 2 {
		t.Errorf("filter = %+v", opts.Filter)
	}
	if opts.Presence.MaxGroupLack != 1 || opts.Presence.MinGroupsWithAccession != 2 {
		t.Errorf("presence = %+v", opts.Presence)
	}

	ro := c.ReaderOptions()
	if ro.Encoding != "latin1" || ro.Columns.Score != "Score" || ro.Columns.Sequence != "Sequence" {
		t.Errorf("reader options = %+v", ro)
	}
}

func TestPipelineOptionsErrors(t *testing.T) {
	tests := []struct {
		name     string
		settings string
	}{
		{"bad threshold", "filter:\n  confidence:\n    threshold: about 95\n"},
		{"missing list", "filter:\n  blacklist: /no/such/file.csv\n"},
		{"missing table", "filter:\n  unused:\n    threshold: ge\n    table: /no/such/table.csv\n"},
		{"inverted window", "fdr:\n  window-low: 0.2\n  window-high: 0.1\n"},
		{"negative lack", "presence:\n  max-group-lack: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := load(t, tt.settings)
			if _, err := c.PipelineOptions(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
