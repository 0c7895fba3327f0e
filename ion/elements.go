package ion

import (
	"strings"

	"github.com/teranos/ionclm/errors"
)

// elements is indexed by atomic number.
var elements = []string{
	"",
	"H", "He", "Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar", "K", "Ca",
	"Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr", "Rb", "Sr", "Y", "Zr",
	"Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd", "In", "Sn",
	"Sb", "Te", "I", "Xe", "Cs", "Ba",
}

// symbols maps lowercase element symbols to atomic number.
var symbols = func() map[string]int {
	m := make(map[string]int, len(elements))
	for z, sym := range elements {
		if sym != "" {
			m[strings.ToLower(sym)] = z
		}
	}
	return m
}()

var romanValues = map[rune]int{'i': 1, 'v': 5, 'x': 10, 'l': 50}

// ParseRoman converts a roman numeral (either case) to an integer.
// Only canonical numerals round-trip; "IIII" is rejected.
func ParseRoman(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty ionization stage")
	}
	lower := strings.ToLower(s)
	total := 0
	for i, r := range lower {
		v, ok := romanValues[r]
		if !ok {
			return 0, errors.Newf("invalid roman numeral %q", s)
		}
		if i+1 < len(lower) && romanValues[rune(lower[i+1])] > v {
			total -= v
		} else {
			total += v
		}
	}
	if total <= 0 || strings.ToLower(Roman(total)) != lower {
		return 0, errors.Newf("invalid roman numeral %q", s)
	}
	return total, nil
}

// Roman formats n (1..89) as an uppercase roman numeral.
func Roman(n int) string {
	if n <= 0 || n >= 90 {
		return "?"
	}
	var b strings.Builder
	for _, step := range []struct {
		v int
		s string
	}{{50, "L"}, {40, "XL"}, {10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"}} {
		for n >= step.v {
			b.WriteString(step.s)
			n -= step.v
		}
	}
	return b.String()
}
