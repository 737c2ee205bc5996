// Package fdr estimates false-discovery-rate curves from decoy protein hits.
//
// For each table the observed FDR at every decoy hit is fitted with an
// exponential model FDR(n) = a * exp(b*n) over the rank n. A decaying model
// (b < 0) turns a target FDR percentage into a truncation rank.
package fdr

import (
	"fmt"
	"math"

	"github.com/ChrisMcGann/ProtSum/pkg/core"
	"github.com/ChrisMcGann/ProtSum/pkg/grouping"
	"gonum.org/v1/gonum/stat"
)

// DefaultTableRange is the default rank window of the curve fit
const DefaultTableRange = 1000

// DefaultLevels are the FDR percentages thresholds are precomputed for
var DefaultLevels = []float64{0.1, 0.5, 1.0, 2.0}

// Window is the unused band [Low, High) used to count targets and decoys
type Window struct {
	Low  float64
	High float64
}

// DefaultWindow samples borderline identifications
var DefaultWindow = Window{Low: 0.05, High: 0.10}

// Contains reports whether an unused value lies in the window
func (w Window) Contains(unused float64) bool {
	return unused >= w.Low && unused < w.High
}

// Options configures the estimator
type Options struct {
	Window     Window
	TableRange int     // Only points with rank <= TableRange are fitted (0 = no limit)
	K          float64 // Explicit target/decoy ratio (0 = estimate from the window)
}

// DefaultOptions returns the estimator defaults
func DefaultOptions() Options {
	return Options{
		Window:     DefaultWindow,
		TableRange: DefaultTableRange,
	}
}

// Point is one observed FDR value at a decoy hit
type Point struct {
	Rank     int
	Observed float64 // percent
}

// Threshold is the rank at which the fitted curve reaches an FDR percentage
type Threshold struct {
	FDR  float64
	Rank int
}

// Model is the fitted FDR curve of one table. Derived fields are only
// meaningful when Valid is true.
type Model struct {
	TableID     string
	TargetCount int
	DecoyCount  int
	K           float64
	Points      []Point

	Valid           bool
	A, B            float64
	Thresholds      []Threshold
	RSquared        float64
	MeanAbsError    float64
	MeanAbsPctError float64
}

// Fitted returns the modelled FDR percentage at rank n
func (m *Model) Fitted(n float64) float64 {
	return m.A * math.Exp(m.B*n)
}

// CutoffRank returns n* = ln(p/a)/b, the rank from which rows are dropped
// to reach an FDR of p percent. ok is false for an invalid model.
func (m *Model) CutoffRank(p float64) (float64, bool) {
	if !m.Valid || p <= 0 {
		return 0, false
	}
	return m.rankAt(p), true
}

// Threshold returns the precomputed rank for an FDR percentage
func (m *Model) Threshold(p float64) (int, bool) {
	for _, t := range m.Thresholds {
		if t.FDR == p {
			return t.Rank, true
		}
	}
	return 0, false
}

// Estimate fits the FDR model of one table from its ranked hits. A model is
// always returned; when the fit is undefined it carries Valid == false and
// the error is a *core.DegenerateFDRModelError.
func Estimate(tableID string, hits []grouping.Hit, opts Options) (*Model, error) {
	m := &Model{TableID: tableID}
	degenerate := func(format string, args ...any) (*Model, error) {
		return m, &core.DegenerateFDRModelError{TableID: tableID, Reason: fmt.Sprintf(format, args...)}
	}

	// Target/decoy counts in the confidence window
	for _, h := range hits {
		if !opts.Window.Contains(h.Unused) {
			continue
		}
		if h.Decoy {
			m.DecoyCount++
		} else {
			m.TargetCount++
		}
	}

	switch {
	case opts.K > 0:
		m.K = opts.K
	case m.DecoyCount == 0:
		return degenerate("no decoys with unused in [%g, %g)", opts.Window.Low, opts.Window.High)
	default:
		m.K = float64(m.TargetCount) / float64(m.DecoyCount)
	}
	if m.K == 0 {
		return degenerate("no targets with unused in [%g, %g)", opts.Window.Low, opts.Window.High)
	}

	// Observed FDR series
	decoys := 0
	for _, h := range hits {
		if !h.Decoy {
			continue
		}
		decoys++
		// Divided by the hit's own rank: a table-wide total would make the series grow with n
		m.Points = append(m.Points, Point{
			Rank:     h.Rank,
			Observed: float64(decoys) * 100 * m.K / float64(h.Rank),
		})
	}

	window := m.window(opts.TableRange)
	a, b, reason := fitExponential(window)
	if reason != "" {
		return degenerate("%s", reason)
	}
	m.A, m.B = a, b

	if reason := m.goodnessOfFit(window); reason != "" {
		return degenerate("%s", reason)
	}

	for _, p := range DefaultLevels {
		m.Thresholds = append(m.Thresholds, Threshold{FDR: p, Rank: int(math.Round(m.rankAt(p)))})
	}
	m.Valid = true

	return m, nil
}

func (m *Model) rankAt(p float64) float64 {
	return math.Log(p/m.A) / m.B
}

// window returns the points with rank <= tableRange
func (m *Model) window(tableRange int) []Point {
	if tableRange <= 0 {
		return m.Points
	}
	var out []Point
	for _, p := range m.Points {
		if p.Rank <= tableRange {
			out = append(out, p)
		}
	}
	return out
}

// fitExponential solves ln(FDR) = ln(a) + b*n by ordinary least squares.
// reason is non-empty when the fit is undefined or non-decaying.
func fitExponential(points []Point) (a, b float64, reason string) {
	if len(points) < 2 {
		return 0, 0, fmt.Sprintf("%d point(s) in fit window, need at least 2", len(points))
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	var sumX, sumX2 float64
	for i, p := range points {
		if p.Observed <= 0 {
			return 0, 0, fmt.Sprintf("non-positive observed FDR at rank %d", p.Rank)
		}
		xs[i] = float64(p.Rank)
		ys[i] = math.Log(p.Observed)
		sumX += xs[i]
		sumX2 += xs[i] * xs[i]
	}

	count := float64(len(points))
	if count*sumX2-sumX*sumX == 0 {
		return 0, 0, "singular fit: all points share one rank"
	}

	lnA, b := stat.LinearRegression(xs, ys, nil, false)
	if b >= 0 {
		return 0, 0, fmt.Sprintf("non-decaying model (b = %g)", b)
	}

	return math.Exp(lnA), b, ""
}

// goodnessOfFit fills R², MAE and MAPE over the fit window
func (m *Model) goodnessOfFit(points []Point) string {
	observed := make([]float64, len(points))
	for i, p := range points {
		observed[i] = p.Observed
	}
	mean := stat.Mean(observed, nil)

	var ssRes, ssTot, absErr, pctErr float64
	for _, p := range points {
		fitted := m.Fitted(float64(p.Rank))
		diff := p.Observed - fitted
		ssRes += diff * diff
		ssTot += (p.Observed - mean) * (p.Observed - mean)
		absErr += math.Abs(diff)
		pctErr += math.Abs(diff) / fitted
	}
	if ssTot == 0 {
		return "zero variance in observed FDR"
	}

	n := float64(len(points))
	m.RSquared = 1 - ssRes/ssTot
	m.MeanAbsError = absErr / n
	m.MeanAbsPctError = pctErr / n

	return ""
}
