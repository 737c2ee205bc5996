package core

import (
	"math"
	"testing"
)

func TestResidueCount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"plain", "PEPTIDE", 7},
		{"lowercase", "peptide", 7},
		{"wrapped lines", "MKT\nAYIAK\r\n", 8},
		{"stop codon and gap", "MK-T*", 3},
		{"ambiguity codes", "MXBZ", 4},
		{"digits are not residues", "A1B2", 2},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResidueCount(tt.raw); got != tt.want {
				t.Errorf("ResidueCount(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCalculateNeutralMass(t *testing.T) {
	tests := []struct {
		name      string
		sequence  string
		wantMass  float64
		tolerance float64
	}{
		{
			name:      "simple tripeptide",
			sequence:  "AAA",
			wantMass:  231.121, // Approximate neutral mass
			tolerance: 0.1,
		},
		{
			name:      "lowercase matches uppercase",
			sequence:  "aaa",
			wantMass:  231.121,
			tolerance: 0.1,
		},
		{
			name:      "ambiguity code adds nothing",
			sequence:  "AAXA",
			wantMass:  231.121,
			tolerance: 0.1,
		},
		{
			name:      "PEPTIDE",
			sequence:  "PEPTIDE",
			wantMass:  799.360,
			tolerance: 0.01,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateNeutralMass(tt.sequence)
			if math.Abs(got-tt.wantMass) > tt.tolerance {
				t.Errorf("CalculateNeutralMass() = %.3f, want %.3f (within %.3f)", got, tt.wantMass, tt.tolerance)
			}
		})
	}
}

func TestRoundFloat(t *testing.T) {
	tests := []struct {
		name      string
		val       float64
		precision int
		want      float64
	}{
		{"round to 2 decimals", 3.14159, 2, 3.14},
		{"round to 4 decimals", 3.14159, 4, 3.1416},
		{"round to 0 decimals", 3.6, 0, 4.0},
		{"round negative", -3.14159, 2, -3.14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundFloat(tt.val, tt.precision)
			if got != tt.want {
				t.Errorf("RoundFloat() = %v, want %v", got, tt.want)
			}
		})
	}
}
