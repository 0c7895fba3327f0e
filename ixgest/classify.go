package ixgest

import (
	"math"
	"strconv"
	"strings"

	"github.com/teranos/ionclm/clm"
	"github.com/teranos/ionclm/errors"
	"github.com/teranos/ionclm/ion"
)

// texReplacer maps the TeX spellings used in journal tables onto plain
// sentinels before classification.
var texReplacer = strings.NewReplacer(
	`$<$`, "< ",
	`$>$`, "> ",
	`$\pm$`, " ± ",
	`\pm`, " ± ",
	`+/-`, " ± ",
	`\lesssim`, "< ",
	`\gtrsim`, "> ",
	`\la`, "< ",
	`\ga`, "> ",
	`$`, "",
)

var ellipses = map[string]bool{
	`\ldots`: true, `\dots`: true, "...": true, "…": true, "--": true, "nodata": true,
}

// Words normalizes TeX sentinels in tokens and re-splits on whitespace.
func Words(tokens []string) []string {
	return strings.Fields(texReplacer.Replace(strings.Join(tokens, " ")))
}

// ClassifyTokens turns the value cells of one row into a measurement:
//
//	"<X" or "<" "X"        upper limit X
//	">X" or ">" "X"        lower limit X
//	"X" "S" or "X ± S"     detection X with sigma S
//	"\ldots", "...", ""    ErrNoValue
//	"X"                    ErrMissingSigma
//
// TeX forms ($<$, $>$, $\pm$, \gtrsim, \lesssim) are accepted.
func ClassifyTokens(tokens []string) (clm.Measurement, error) {
	words := Words(tokens)
	if len(words) == 0 || ellipses[words[0]] {
		return clm.Measurement{}, ErrNoValue
	}

	first := words[0]
	if first[0] == '<' || first[0] == '>' {
		flag := clm.UpperLimit
		if first[0] == '>' {
			flag = clm.LowerLimit
		}
		rest := words[1:]
		num := first[1:]
		if num == "" {
			if len(rest) == 0 {
				return clm.Measurement{}, errors.Newf("limit %q has no value", first)
			}
			num, rest = rest[0], rest[1:]
		}
		v, err := parseNumber(num)
		if err != nil {
			return clm.Measurement{}, err
		}
		if err := trailing(rest); err != nil {
			return clm.Measurement{}, err
		}
		return clm.Measurement{LogN: v, Flag: flag}, nil
	}

	v, err := parseNumber(first)
	if err != nil {
		return clm.Measurement{}, err
	}
	rest := words[1:]
	if len(rest) > 0 && rest[0] == "±" {
		rest = rest[1:]
	}
	if len(rest) == 0 || ellipses[rest[0]] {
		return clm.NewDetection(v, 0), ErrMissingSigma
	}
	sigma, err := parseNumber(rest[0])
	if err != nil {
		return clm.Measurement{}, errors.Wrap(err, "uncertainty")
	}
	if sigma < 0 {
		return clm.Measurement{}, errors.Newf("negative uncertainty %g", sigma)
	}
	if err := trailing(rest[1:]); err != nil {
		return clm.Measurement{}, err
	}
	return clm.NewDetection(v, sigma), nil
}

// ParseValueSigma splits "X ± S" (or "X $\pm$ S", "X S") into its numbers.
func ParseValueSigma(cell string) (float64, float64, error) {
	m, err := ClassifyTokens([]string{cell})
	if err != nil {
		return 0, 0, err
	}
	if m.Flag != clm.Detection {
		return 0, 0, errors.Newf("%q is a limit, not a value", cell)
	}
	return m.LogN, m.Sigma, nil
}

// LookupIon resolves a label from row i, turning a lookup failure into a
// *RowParseError that carries the label.
func LookupIon(i int, row []string, label string) (ion.ID, error) {
	id, err := ion.Lookup(label)
	if err != nil {
		return ion.ID{}, RowError(i, row, err, "unknown ion label %q", label)
	}
	return id, nil
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Newf("malformed number %q", s)
	}
	return v, nil
}

func trailing(rest []string) error {
	for _, w := range rest {
		if !ellipses[w] {
			return errors.Newf("unexpected token %q", w)
		}
	}
	return nil
}
