// Package sqlite provides SQLite database writing for accession reports
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ChrisMcGann/ProtSum/pkg/aggregate"
	"github.com/ChrisMcGann/ProtSum/pkg/core"
	"github.com/ChrisMcGann/ProtSum/pkg/fdr"
	"github.com/ChrisMcGann/ProtSum/pkg/pipeline"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const (
	// Date format for RunTable (ISO 8601)
	runDateFormat = "2006-01-02 15:04:05"
	// Decimal places of the reported protein mass
	massPrecision = 4
)

// Writer handles writing pipeline results to SQLite database files
type Writer struct {
	// Description is stored with the run summary
	Description string

	db             *sql.DB
	outputPath     string
	runID          string
	accessionStmt  *sql.Stmt
	replaceStmt    *sql.Stmt
	difficultStmt  *sql.Stmt
	modelStmt      *sql.Stmt
	closed         bool
	accessionCount int
}

// NewWriter creates a new SQLite writer. Every writer stamps its rows with
// a fresh run id so several runs can share one database file.
func NewWriter(outputPath string) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:         db,
		outputPath: outputPath,
		runID:      uuid.NewString(),
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.prepareStatements(); err != nil {
		w.closeStatements()
		db.Close()
		return nil, err
	}

	return w, nil
}

// RunID returns the id stamped on every row written by this writer
func (w *Writer) RunID() string {
	return w.runID
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS RunTable (
		RunId TEXT PRIMARY KEY,
		CreationDate TEXT,
		Description TEXT,
		TableCount INTEGER,
		AccessionCount INTEGER,
		RemovedAccessions TEXT
	);

	CREATE TABLE IF NOT EXISTS AccessionTable (
		RunId TEXT REFERENCES RunTable(RunId),
		TableId TEXT,
		Accession TEXT,
		Description TEXT,
		Length INTEGER,
		Mass DOUBLE,
		PeptideCount INTEGER,
		SeqLenSum INTEGER,
		ScoreSum DOUBLE,
		IntensitySum DOUBLE,
		ScoreNorm DOUBLE,
		IntensityNorm DOUBLE,
		ScoreNormRatio DOUBLE,
		IntensityNormRatio DOUBLE,
		CompositeRatio DOUBLE
	);

	CREATE TABLE IF NOT EXISTS ReplacementTable (
		RunId TEXT REFERENCES RunTable(RunId),
		TableId TEXT,
		Accession TEXT,
		Representative TEXT
	);

	CREATE TABLE IF NOT EXISTS DifficultCaseTable (
		RunId TEXT REFERENCES RunTable(RunId),
		TableId TEXT,
		GroupIndex INTEGER,
		Unused DOUBLE,
		Candidates TEXT,
		Representative TEXT
	);

	CREATE TABLE IF NOT EXISTS FDRModelTable (
		RunId TEXT REFERENCES RunTable(RunId),
		TableId TEXT,
		Valid BOOL,
		Reason TEXT,
		TargetCount INTEGER,
		DecoyCount INTEGER,
		K DOUBLE,
		A DOUBLE,
		B DOUBLE,
		RSquared DOUBLE,
		MeanAbsError DOUBLE,
		MeanAbsPctError DOUBLE,
		Threshold01 INTEGER,
		Threshold05 INTEGER,
		Threshold1 INTEGER,
		Threshold2 INTEGER,
		CutoffFDR DOUBLE,
		CutoffRank DOUBLE
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// prepareStatements prepares SQL statements for batch insertion
func (w *Writer) prepareStatements() error {
	var err error

	w.accessionStmt, err = w.db.Prepare(`
		INSERT INTO AccessionTable (
			RunId, TableId, Accession, Description, Length, Mass,
			PeptideCount, SeqLenSum, ScoreSum, IntensitySum,
			ScoreNorm, IntensityNorm, ScoreNormRatio, IntensityNormRatio, CompositeRatio
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare accession statement: %w", err)
	}

	w.replaceStmt, err = w.db.Prepare(`
		INSERT INTO ReplacementTable (RunId, TableId, Accession, Representative)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare replacement statement: %w", err)
	}

	w.difficultStmt, err = w.db.Prepare(`
		INSERT INTO DifficultCaseTable (RunId, TableId, GroupIndex, Unused, Candidates, Representative)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare difficult case statement: %w", err)
	}

	w.modelStmt, err = w.db.Prepare(`
		INSERT INTO FDRModelTable (
			RunId, TableId, Valid, Reason, TargetCount, DecoyCount, K, A, B,
			RSquared, MeanAbsError, MeanAbsPctError,
			Threshold01, Threshold05, Threshold1, Threshold2, CutoffFDR, CutoffRank
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare FDR model statement: %w", err)
	}

	return nil
}

// WriteResult writes the aggregates, replacement maps, difficult cases and
// FDR models of a pipeline run. seqs supplies descriptions and masses and
// may be nil.
func (w *Writer) WriteResult(res *pipeline.Result, seqs *core.SequenceDB) error {
	if res == nil {
		return fmt.Errorf("no result to write")
	}

	for _, t := range res.Tables {
		for _, e := range t.Entries() {
			if err := w.writeAccession(t.ID, e, seqs); err != nil {
				return err
			}
		}
	}

	for _, id := range sortedKeys(res.Replacements) {
		m := res.Replacements[id]
		for _, acc := range sortedKeys(m) {
			if _, err := w.replaceStmt.Exec(w.runID, id, acc, m[acc]); err != nil {
				return fmt.Errorf("failed to insert replacement %s: %w", acc, err)
			}
		}
	}

	if res.Grouping != nil {
		for _, g := range res.Grouping.DifficultGroups() {
			_, err := w.difficultStmt.Exec(
				w.runID,
				g.TableID,
				g.Index,
				g.Unused,
				strings.Join(g.Accessions, ";"),
				g.Representative,
			)
			if err != nil {
				return fmt.Errorf("failed to insert difficult case %s#%d: %w", g.TableID, g.Index, err)
			}
		}
	}

	reasons := make(map[string]string)
	for _, warning := range res.Warnings {
		var degenerate *core.DegenerateFDRModelError
		if errors.As(warning, &degenerate) {
			reasons[degenerate.TableID] = degenerate.Reason
		}
	}
	cutoffs := make(map[string]pipeline.Cutoff)
	for _, c := range res.Cutoffs {
		cutoffs[c.TableID] = c
	}
	for _, id := range sortedKeys(res.Models) {
		if err := w.writeModel(res.Models[id], reasons[id], cutoffs); err != nil {
			return err
		}
	}

	return w.writeRun(res)
}

// writeAccession inserts one aggregate row
func (w *Writer) writeAccession(tableID string, e aggregate.Entry, seqs *core.SequenceDB) error {
	acc := e.Accession
	// Description and mass are optional
	var desc, mass interface{}
	if seqs != nil {
		if seq, ok := seqs.Get(acc); ok {
			desc = seq.Description
			mass = core.RoundFloat(seq.Mass(), massPrecision)
		}
	}

	_, err := w.accessionStmt.Exec(
		w.runID,
		tableID,
		acc,
		desc,
		e.Length,
		mass,
		e.Count,
		e.SeqLenSum,
		e.ScoreSum,
		e.IntensitySum,
		e.ScoreNorm,
		e.IntensityNorm,
		e.ScoreNormRatio,
		e.IntensityNormRatio,
		e.CompositeRatio,
	)
	if err != nil {
		return fmt.Errorf("failed to insert accession %s: %w", acc, err)
	}

	w.accessionCount++
	return nil
}

// writeModel inserts one FDR model; fit values are NULL for invalid models
func (w *Writer) writeModel(m *fdr.Model, reason string, cutoffs map[string]pipeline.Cutoff) error {
	var a, b, r2, mae, mape interface{}
	if m.Valid {
		a, b, r2, mae, mape = m.A, m.B, m.RSquared, m.MeanAbsError, m.MeanAbsPctError
	}

	thresholds := make([]interface{}, len(fdr.DefaultLevels))
	for i, p := range fdr.DefaultLevels {
		if rank, ok := m.Threshold(p); ok {
			thresholds[i] = rank
		}
	}

	var cutoffFDR, cutoffRank interface{}
	if c, ok := cutoffs[m.TableID]; ok {
		cutoffFDR, cutoffRank = c.FDR, c.Rank
	}

	var k interface{}
	if m.K != 0 {
		k = m.K
	}

	args := []interface{}{
		w.runID, m.TableID, m.Valid, reason, m.TargetCount, m.DecoyCount, k, a, b, r2, mae, mape,
	}
	args = append(args, thresholds...)
	args = append(args, cutoffFDR, cutoffRank)

	if _, err := w.modelStmt.Exec(args...); err != nil {
		return fmt.Errorf("failed to insert FDR model for table %s: %w", m.TableID, err)
	}
	return nil
}

// writeRun inserts the run summary row
func (w *Writer) writeRun(res *pipeline.Result) error {
	_, err := w.db.Exec(`
		INSERT INTO RunTable (RunId, CreationDate, Description, TableCount, AccessionCount, RemovedAccessions)
		VALUES (?, ?, ?, ?, ?, ?)
	`, w.runID, time.Now().Format(runDateFormat), w.Description, len(res.Tables), w.accessionCount,
		strings.Join(res.Removed, ";"))
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (w *Writer) closeStatements() {
	for _, stmt := range []*sql.Stmt{w.accessionStmt, w.replaceStmt, w.difficultStmt, w.modelStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
}

// Finalize closes the prepared statements and the database
func (w *Writer) Finalize() error {
	if w.closed {
		return nil
	}
	w.closed = true

	w.closeStatements()

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// Close closes the database connection (alias for Finalize)
func (w *Writer) Close() error {
	return w.Finalize()
}
