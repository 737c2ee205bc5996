package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ChrisMcGann/ProtSum/pkg/config"
	"github.com/ChrisMcGann/ProtSum/pkg/core"
	"github.com/ChrisMcGann/ProtSum/pkg/pipeline"
	"github.com/ChrisMcGann/ProtSum/pkg/reader/fasta"
	"github.com/ChrisMcGann/ProtSum/pkg/reader/summary"
)

const (
	proteinSuffix = "proteinsummary"
	peptideSuffix = "peptidesummary"
)

// summaryFiles maps table ids to summary file paths
type summaryFiles struct {
	proteins map[string]string
	peptides map[string]string
}

// findSummaries collects ProteinSummary and PeptideSummary files from the
// given files and directories
func findSummaries(paths []string) (*summaryFiles, error) {
	found := &summaryFiles{
		proteins: make(map[string]string),
		peptides: make(map[string]string),
	}

	add := func(path string) error {
		name := strings.ToLower(filepath.Base(path))
		var target map[string]string
		switch {
		case strings.Contains(name, proteinSuffix):
			target = found.proteins
		case strings.Contains(name, peptideSuffix):
			target = found.peptides
		default:
			return nil
		}

		id := core.TableIDFromPath(path)
		if prev, ok := target[id]; ok {
			return fmt.Errorf("table %s is named by both %s and %s", id, prev, path)
		}
		target[id] = path
		return nil
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("input does not exist: %s", root)
		}
		if !info.IsDir() {
			if err := add(root); err != nil {
				return nil, err
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			return add(path)
		})
		if err != nil {
			return nil, err
		}
	}

	if len(found.proteins) == 0 && len(found.peptides) == 0 {
		return nil, fmt.Errorf("no ProteinSummary or PeptideSummary files found")
	}

	return found, nil
}

// loadSequences reads the FASTA database; an empty path yields an empty database
func loadSequences(path string) (*core.SequenceDB, error) {
	if path == "" {
		fmt.Fprintf(os.Stderr, "Warning: no FASTA database given, length-based steps will fail\n")
		return core.NewSequenceDB(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open FASTA file: %w", err)
	}
	defer file.Close()

	db, err := fasta.LoadDB(file)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Loaded %d sequences from %s\n", db.Len(), path)

	return db, nil
}

// loadInput reads every summary table and the sequence database
func loadInput(paths []string, cfg config.Config, withPeptides bool) (pipeline.Input, error) {
	in := pipeline.Input{
		Proteins: make(map[string][]core.ProteinRow),
		Peptides: make(map[string][]core.PeptideRow),
	}

	files, err := findSummaries(paths)
	if err != nil {
		return in, err
	}

	in.Sequences, err = loadSequences(cfg.Fasta)
	if err != nil {
		return in, err
	}

	opts := cfg.ReaderOptions()
	for _, id := range sortedIDs(files.proteins) {
		rows, err := readTable(files.proteins[id], func(f *os.File) ([]core.ProteinRow, error) {
			return summary.ReadProteins(f, id, opts)
		})
		if err != nil {
			return in, err
		}
		in.Proteins[id] = rows
		fmt.Printf("Read %d protein rows for table %s\n", len(rows), id)
	}

	if !withPeptides {
		return in, nil
	}

	for _, id := range sortedIDs(files.peptides) {
		rows, err := readTable(files.peptides[id], func(f *os.File) ([]core.PeptideRow, error) {
			return summary.ReadPeptides(f, id, opts)
		})
		if err != nil {
			return in, err
		}
		in.Peptides[id] = rows
		fmt.Printf("Read %d peptide rows for table %s\n", len(rows), id)
	}

	for _, id := range sortedIDs(files.peptides) {
		if _, ok := in.Proteins[id]; !ok {
			fmt.Fprintf(os.Stderr, "Warning: table %s has no ProteinSummary, its accessions are not grouped\n", id)
		}
	}

	return in, nil
}

func readTable[T any](path string, read func(*os.File) ([]T, error)) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	rows, err := read(file)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	return rows, nil
}

func sortedIDs(m map[string]string) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
