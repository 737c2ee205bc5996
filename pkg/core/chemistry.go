// Residue chemistry used for sequence lengths and masses

package core

import (
	"math"
	"unicode"
)

// Atomic masses (monoisotopic)
const (
	MassH = 1.0078250321
	MassC = 12.0000000000
	MassN = 14.0030740052
	MassO = 15.9949146221
	MassS = 31.9720706900

	// Selenium, for selenocysteine (U)
	MassSe = 79.9165213
)

// AminoAcidComposition stores elemental composition of a residue
type AminoAcidComposition struct {
	C, H, N, O, S, Se int
}

// AminoAcidMasses maps amino acid one-letter codes to elemental composition
var AminoAcidMasses = map[rune]AminoAcidComposition{
	'A': {C: 3, H: 5, N: 1, O: 1},
	'R': {C: 6, H: 12, N: 4, O: 1},
	'N': {C: 4, H: 6, N: 2, O: 2},
	'D': {C: 4, H: 5, N: 1, O: 3},
	'C': {C: 3, H: 5, N: 1, O: 1, S: 1},
	'E': {C: 5, H: 7, N: 1, O: 3},
	'Q': {C: 5, H: 8, N: 2, O: 2},
	'G': {C: 2, H: 3, N: 1, O: 1},
	'H': {C: 6, H: 7, N: 3, O: 1},
	'I': {C: 6, H: 11, N: 1, O: 1},
	'L': {C: 6, H: 11, N: 1, O: 1},
	'K': {C: 6, H: 12, N: 2, O: 1},
	'M': {C: 5, H: 9, N: 1, O: 1, S: 1},
	'F': {C: 9, H: 9, N: 1, O: 1},
	'P': {C: 5, H: 7, N: 1, O: 1},
	'S': {C: 3, H: 5, N: 1, O: 2},
	'T': {C: 4, H: 7, N: 1, O: 2},
	'W': {C: 11, H: 10, N: 2, O: 1},
	'Y': {C: 9, H: 9, N: 1, O: 2},
	'V': {C: 5, H: 9, N: 1, O: 1},
	'U': {C: 3, H: 5, N: 1, O: 1, Se: 1},
	'O': {C: 12, H: 19, N: 3, O: 2},
}

// IsResidue reports whether r counts towards a sequence length.
// Ambiguity codes (B, J, X, Z) are residues; stop codons, gaps,
// digits and whitespace are not.
func IsResidue(r rune) bool {
	return r < unicode.MaxASCII && unicode.IsLetter(r)
}

// ResidueCount returns the number of residue characters in a raw sequence
func ResidueCount(raw string) int {
	n := 0
	for _, r := range raw {
		if IsResidue(r) {
			n++
		}
	}
	return n
}

// CalculateNeutralMass computes the neutral monoisotopic mass of a sequence.
// Residues without a defined composition (ambiguity codes) add no mass.
func CalculateNeutralMass(raw string) float64 {
	comp := AminoAcidComposition{H: 2, O: 1} // Add water

	for _, aa := range raw {
		if aaComp, ok := AminoAcidMasses[unicode.ToUpper(aa)]; ok {
			comp.C += aaComp.C
			comp.H += aaComp.H
			comp.N += aaComp.N
			comp.O += aaComp.O
			comp.S += aaComp.S
			comp.Se += aaComp.Se
		}
	}

	return float64(comp.C)*MassC +
		float64(comp.H)*MassH +
		float64(comp.N)*MassN +
		float64(comp.O)*MassO +
		float64(comp.S)*MassS +
		float64(comp.Se)*MassSe
}

// RoundFloat rounds a float to n decimal places
func RoundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
