// Package config is for run settings that are unmarshalled
// from Viper (see: /cmd/protsum/cmd)
package config

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/ProtSum/pkg/core"
	"github.com/ChrisMcGann/ProtSum/pkg/fdr"
	"github.com/ChrisMcGann/ProtSum/pkg/filter"
	"github.com/ChrisMcGann/ProtSum/pkg/pipeline"
	"github.com/ChrisMcGann/ProtSum/pkg/reader/summary"
	"github.com/spf13/viper"
)

// ThresholdConfig is one peptide filter threshold
type ThresholdConfig struct {
	// comparison and value, e.g. ">=95" or "ge:95". With a table file
	// set this may be an operator alone ("ge")
	Expr string `mapstructure:"threshold"`

	// CSV file of per-table values (table,value)
	Table string `mapstructure:"table"`
}

// FDRConfig is settings for the decoy FDR model
type FDRConfig struct {
	// critical FDR percentage for rank truncation, 0 disables it
	Level float64 `mapstructure:"level"`

	// unused score window used to estimate the target/decoy ratio
	WindowLow  float64 `mapstructure:"window-low"`
	WindowHigh float64 `mapstructure:"window-high"`

	// only decoys ranked within this range are fitted
	TableRange int `mapstructure:"table-range"`

	// explicit target/decoy ratio, 0 estimates it
	K float64 `mapstructure:"k"`
}

// FilterConfig is settings for the peptide filters
type FilterConfig struct {
	Confidence   ThresholdConfig `mapstructure:"confidence"`
	Contribution ThresholdConfig `mapstructure:"contribution"`
	Unused       ThresholdConfig `mapstructure:"unused"`

	// keep accessions with one row >= 99 or two rows >= 95 confidence
	ConfidenceDefault bool `mapstructure:"confidence-default"`

	// accession list files
	Whitelist string `mapstructure:"whitelist"`
	Blacklist string `mapstructure:"blacklist"`
	Exclude   string `mapstructure:"exclude"`
}

// PresenceConfig is settings for the group-presence filter
type PresenceConfig struct {
	MaxGroupLack           int    `mapstructure:"max-group-lack"`
	MinGroupsWithAccession int    `mapstructure:"min-groups"`
	Separator              string `mapstructure:"separator"`
}

// InputConfig is settings for reading summary tables
type InputConfig struct {
	Encoding string          `mapstructure:"encoding"`
	Columns  summary.Columns `mapstructure:"columns"`
}

// Config is the root-level settings struct and is a mix
// of settings available in the settings file and those
// available from the command line
type Config struct {
	// FASTA database the accessions resolve against
	Fasta string `mapstructure:"fasta"`
	// SQLite report path
	Output string `mapstructure:"out"`

	DecoyPrefix string `mapstructure:"decoy-prefix"`

	FDR      FDRConfig      `mapstructure:"fdr"`
	Filter   FilterConfig   `mapstructure:"filter"`
	Presence PresenceConfig `mapstructure:"presence"`
	Input    InputConfig    `mapstructure:"input"`
}

// SetDefaults registers the default settings on v
func SetDefaults(v *viper.Viper) {
	fdrDefaults := fdr.DefaultOptions()
	columns := summary.DefaultColumns()

	v.SetDefault("decoy-prefix", core.DefaultDecoyPrefix)
	v.SetDefault("fdr.level", 0.0)
	v.SetDefault("fdr.window-low", fdrDefaults.Window.Low)
	v.SetDefault("fdr.window-high", fdrDefaults.Window.High)
	v.SetDefault("fdr.table-range", fdrDefaults.TableRange)
	v.SetDefault("fdr.k", 0.0)
	v.SetDefault("presence.separator", core.DefaultRunGroupSeparator)
	v.SetDefault("input.columns.unused", columns.Unused)
	v.SetDefault("input.columns.accession", columns.Accession)
	v.SetDefault("input.columns.accessions", columns.Accessions)
	v.SetDefault("input.columns.confidence", columns.Confidence)
	v.SetDefault("input.columns.contribution", columns.Contribution)
	v.SetDefault("input.columns.score", columns.Score)
	v.SetDefault("input.columns.intensity", columns.Intensity)
	v.SetDefault("input.columns.sequence", columns.Sequence)
}

// NewConfig returns a new Config struct populated by
// Viper settings (either from the settings file)
// and/or command line arguments
func NewConfig() (Config, error) {
	return Load(viper.GetViper())
}

// Load decodes the settings held by v
func Load(v *viper.Viper) (Config, error) {
	var c Config

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("unable to decode settings: %w", err)
	}

	return c, nil
}

// ReaderOptions returns the summary reader options
func (c Config) ReaderOptions() summary.Options {
	return summary.Options{
		Columns:  c.Input.Columns,
		Encoding: c.Input.Encoding,
	}
}

// PipelineOptions parses thresholds and loads the list and lookup files
// named in the settings
func (c Config) PipelineOptions() (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()

	if c.DecoyPrefix != "" {
		opts.DecoyPrefix = c.DecoyPrefix
	}

	opts.FDRLevel = c.FDR.Level
	opts.FDR = fdr.Options{
		Window:     fdr.Window{Low: c.FDR.WindowLow, High: c.FDR.WindowHigh},
		TableRange: c.FDR.TableRange,
		K:          c.FDR.K,
	}
	if opts.FDR.Window.High <= opts.FDR.Window.Low {
		return opts, fmt.Errorf("invalid FDR window [%g, %g)", opts.FDR.Window.Low, opts.FDR.Window.High)
	}
	if c.FDR.Level < 0 || c.FDR.K < 0 {
		return opts, fmt.Errorf("FDR level and k must not be negative")
	}

	var err error
	if opts.Filter.Confidence, err = c.Filter.Confidence.threshold("confidence"); err != nil {
		return opts, err
	}
	if opts.Filter.Contribution, err = c.Filter.Contribution.threshold("contribution"); err != nil {
		return opts, err
	}
	if opts.Filter.Unused, err = c.Filter.Unused.threshold("unused"); err != nil {
		return opts, err
	}
	opts.Filter.ConfidenceDefault = c.Filter.ConfidenceDefault

	if opts.Filter.Whitelist, err = loadAccessions(c.Filter.Whitelist); err != nil {
		return opts, fmt.Errorf("failed to load whitelist: %w", err)
	}
	if opts.Filter.Blacklist, err = loadAccessions(c.Filter.Blacklist); err != nil {
		return opts, fmt.Errorf("failed to load blacklist: %w", err)
	}
	if opts.Filter.Exclude, err = loadAccessions(c.Filter.Exclude); err != nil {
		return opts, fmt.Errorf("failed to load exclusion list: %w", err)
	}

	if c.Presence.MaxGroupLack < 0 || c.Presence.MinGroupsWithAccession < 0 {
		return opts, fmt.Errorf("presence limits must not be negative")
	}
	opts.Presence.MaxGroupLack = c.Presence.MaxGroupLack
	opts.Presence.MinGroupsWithAccession = c.Presence.MinGroupsWithAccession
	if c.Presence.Separator != "" {
		opts.Presence.Separator = c.Presence.Separator
	}

	return opts, nil
}

// threshold builds the filter threshold, nil when unset
func (t ThresholdConfig) threshold(name string) (*filter.Threshold, error) {
	if t.Expr == "" && t.Table == "" {
		return nil, nil
	}

	var th *filter.Threshold
	if t.Table == "" {
		parsed, err := filter.ParseThreshold(t.Expr)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return parsed, nil
	}

	if parsed, err := filter.ParseThreshold(t.Expr); err == nil {
		th = parsed
	} else {
		op, err := filter.ParseOperator(t.Expr)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		th = filter.NewTableThreshold(op)
	}

	file, err := os.Open(t.Table)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open table: %w", name, err)
	}
	defer file.Close()

	if err := th.LoadTableCSV(file); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return th, nil
}

// loadAccessions reads an accession list file, nil when path is empty
func loadAccessions(path string) (core.AccessionSet, error) {
	if path == "" {
		return nil, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	set := core.NewAccessionSet()
	if err := set.LoadFromCSV(file); err != nil {
		return nil, err
	}
	return set, nil
}
