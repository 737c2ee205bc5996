package filter

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Threshold compares a row value against one number or against a per-table
// lookup. Tables missing from the lookup fall back to the single number, and
// pass when there is none. A threshold without a lookup always uses Value, so
// a plain literal such as Threshold{Op: GE, Value: 95} works.
type Threshold struct {
	Op       Operator
	Value    float64
	PerTable map[string]float64

	hasValue bool
}

// NewThreshold creates a threshold with a single value
func NewThreshold(op Operator, value float64) *Threshold {
	return &Threshold{Op: op, Value: value, hasValue: true}
}

// NewTableThreshold creates a threshold whose values come from a lookup table
func NewTableThreshold(op Operator) *Threshold {
	return &Threshold{Op: op, PerTable: make(map[string]float64)}
}

var thresholdRe = regexp.MustCompile(`^\s*([<>=!]{1,2}|[a-zA-Z]{2})\s*[: ]?\s*([-+0-9.eE]+)\s*$`)

// ParseThreshold parses expressions such as ">=95", "ge 95" or "gt:0.05"
func ParseThreshold(expr string) (*Threshold, error) {
	matches := thresholdRe.FindStringSubmatch(expr)
	if matches == nil {
		return nil, fmt.Errorf("invalid threshold '%s', expected e.g. '>=95' or 'ge:95'", expr)
	}

	op, err := ParseOperator(matches[1])
	if err != nil {
		return nil, err
	}

	value, err := strconv.ParseFloat(matches[2], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid threshold value '%s': %w", matches[2], err)
	}

	return NewThreshold(op, value), nil
}

// LoadTableCSV loads per-table values from a CSV file (format: table,value).
// A non-numeric value on the first line is treated as a header.
func (t *Threshold) LoadTableCSV(r io.Reader) error {
	if t.PerTable == nil {
		t.PerTable = make(map[string]float64)
	}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			return fmt.Errorf("line %d: expected 2 fields (table,value), got %d", lineNum, len(parts))
		}

		table := strings.TrimSpace(parts[0])
		valueStr := strings.TrimSpace(parts[1])

		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			if lineNum == 1 {
				continue // header
			}
			return fmt.Errorf("line %d: invalid value '%s': %w", lineNum, valueStr, err)
		}

		t.PerTable[table] = value
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading CSV: %w", err)
	}

	return nil
}

// Allows reports whether value passes the threshold for a table.
// A nil threshold allows everything.
func (t *Threshold) Allows(tableID string, value float64) bool {
	if t == nil {
		return true
	}
	if limit, ok := t.PerTable[tableID]; ok {
		return t.Op.Compare(value, limit)
	}
	if t.usesValue() {
		return t.Op.Compare(value, t.Value)
	}
	return true
}

func (t *Threshold) usesValue() bool {
	return t.hasValue || t.PerTable == nil
}

func (t *Threshold) String() string {
	if t == nil {
		return "none"
	}
	s := ""
	if t.usesValue() {
		s = fmt.Sprintf("%s %g", t.Op, t.Value)
	}
	if len(t.PerTable) > 0 {
		if s != "" {
			s += ", "
		}
		s += fmt.Sprintf("%s per table (%d tables)", t.Op, len(t.PerTable))
	}
	return s
}
