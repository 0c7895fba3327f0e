// Package clm holds censored ion column-density measurements and the
// immutable per-system stores built from them.
//
// A Store maps each ion to exactly one Measurement. Stores are built once
// (FromRows or a Builder) and combined functionally with Merge; nothing in
// this package mutates a Store after Build.
package clm

import (
	"fmt"
	"math"
	"strings"

	"github.com/teranos/ionclm/column"
	"github.com/teranos/ionclm/errors"
)

// Flag says how a reported value participates in arithmetic and display.
// Numeric values follow the literature flag convention.
type Flag int

const (
	// Detection is a measured value; Sigma may still be zero when the
	// source published no uncertainty.
	Detection Flag = 1
	// LowerLimit marks a saturated line: the true column is at or above LogN.
	LowerLimit Flag = 2
	// UpperLimit is a ceiling: the true column is at or below LogN.
	UpperLimit Flag = 3
	// Blend marks an unreliable value (blended or contaminated line).
	Blend Flag = 4
)

var flagNames = map[Flag]string{
	Detection:  "detection",
	LowerLimit: "lower_limit",
	UpperLimit: "upper_limit",
	Blend:      "blend",
}

func (f Flag) String() string {
	if name, ok := flagNames[f]; ok {
		return name
	}
	return fmt.Sprintf("flag(%d)", int(f))
}

// Valid reports whether f is one of the defined flags.
func (f Flag) Valid() bool {
	_, ok := flagNames[f]
	return ok
}

// Symbol returns the prefix used when displaying a value with this flag.
func (f Flag) Symbol() string {
	switch f {
	case LowerLimit:
		return ">"
	case UpperLimit:
		return "<"
	case Blend:
		return "~"
	default:
		return ""
	}
}

// ParseFlag accepts a flag name or its literature number ("1".."4").
func ParseFlag(s string) (Flag, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, name := range flagNames {
		if s == name || s == fmt.Sprint(int(f)) {
			return f, nil
		}
	}
	return 0, errors.Newf("unknown measurement flag %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (f Flag) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, errors.Newf("invalid flag %d", int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Flag) UnmarshalText(b []byte) error {
	parsed, err := ParseFlag(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Measurement is one reported log column density with its reliability flag.
type Measurement struct {
	LogN  float64 `json:"clm" yaml:"clm"`
	Sigma float64 `json:"sig_clm" yaml:"sig_clm"`
	Flag  Flag    `json:"flg_clm" yaml:"flg_clm"`
}

// NewDetection returns a detection with the given uncertainty.
func NewDetection(logN, sigma float64) Measurement {
	return Measurement{LogN: logN, Sigma: sigma, Flag: Detection}
}

// NewLowerLimit returns a saturated (lower limit) value with zero sigma.
func NewLowerLimit(logN float64) Measurement {
	return Measurement{LogN: logN, Flag: LowerLimit}
}

// NewUpperLimit returns a ceiling with zero sigma.
func NewUpperLimit(logN float64) Measurement {
	return Measurement{LogN: logN, Flag: UpperLimit}
}

// NewBlend returns an unreliable value.
func NewBlend(logN, sigma float64) Measurement {
	return Measurement{LogN: logN, Sigma: sigma, Flag: Blend}
}

// Validate checks the flag and that LogN and Sigma are usable numbers.
func (m Measurement) Validate() error {
	if !m.Flag.Valid() {
		return errors.NewDomainError("invalid flag %d", int(m.Flag))
	}
	if math.IsNaN(m.LogN) || math.IsInf(m.LogN, 0) {
		return errors.NewDomainError("log column %g is not finite", m.LogN)
	}
	if math.IsNaN(m.Sigma) || math.IsInf(m.Sigma, 0) || m.Sigma < 0 {
		return errors.NewDomainError("sigma %g must be finite and non-negative", m.Sigma)
	}
	return nil
}

// Value drops the flag.
func (m Measurement) Value() column.Value {
	return column.Value{LogN: m.LogN, Sigma: m.Sigma}
}

// IsLimit reports whether m is an upper or lower limit.
func (m Measurement) IsLimit() bool {
	return m.Flag == UpperLimit || m.Flag == LowerLimit
}

func (m Measurement) String() string {
	if m.Sigma > 0 && !m.IsLimit() {
		return fmt.Sprintf("%s%.2f ± %.2f", m.Flag.Symbol(), m.LogN, m.Sigma)
	}
	return fmt.Sprintf("%s%.2f", m.Flag.Symbol(), m.LogN)
}
