package filter

import (
	"fmt"
	"strings"
)

// Operator is a numeric comparison used by thresholds
type Operator int

const (
	LT Operator = iota
	LE
	EQ
	GE
	GT
	NE
)

var operatorNames = map[string]Operator{
	"<": LT, "lt": LT,
	"<=": LE, "le": LE,
	"=": EQ, "==": EQ, "eq": EQ,
	">=": GE, "ge": GE,
	">": GT, "gt": GT,
	"!=": NE, "<>": NE, "ne": NE,
}

// ParseOperator parses a symbol ("<=") or mnemonic ("le") operator
func ParseOperator(s string) (Operator, error) {
	op, ok := operatorNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown comparison operator '%s'", s)
	}
	return op, nil
}

// Compare evaluates "a op b"
func (o Operator) Compare(a, b float64) bool {
	switch o {
	case LT:
		return a < b
	case LE:
		return a <= b
	case EQ:
		return a == b
	case GE:
		return a >= b
	case GT:
		return a > b
	case NE:
		return a != b
	}
	return false
}

func (o Operator) String() string {
	switch o {
	case LT:
		return "lt"
	case LE:
		return "le"
	case EQ:
		return "eq"
	case GE:
		return "ge"
	case GT:
		return "gt"
	case NE:
		return "ne"
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}
