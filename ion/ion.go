// Package ion identifies atomic ions by (atomic number, ionization stage) and
// resolves the labels used in published tables ("Si IV", "SiIV", "si iv").
package ion

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/teranos/ionclm/errors"
)

// ID is an ion: atomic number Z and ionization stage (1 = neutral).
type ID struct {
	Z     int `json:"z" yaml:"z"`
	Stage int `json:"ion" yaml:"ion"`
}

// Label returns the canonical display label, e.g. "Si IV".
func (id ID) Label() string {
	sym := "?"
	if id.Z > 0 && id.Z < len(elements) {
		sym = elements[id.Z]
	}
	return sym + " " + Roman(id.Stage)
}

func (id ID) String() string {
	return id.Label()
}

// Less orders ions by atomic number, then stage.
func (id ID) Less(other ID) bool {
	if id.Z != other.Z {
		return id.Z < other.Z
	}
	return id.Stage < other.Stage
}

// UnknownError reports a label the lookup could not resolve.
type UnknownError struct {
	Label  string
	Reason string
}

func (e *UnknownError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unknown ion %q: %s", e.Label, e.Reason)
	}
	return fmt.Sprintf("unknown ion %q", e.Label)
}

// Is lets errors.Is match ErrUnknownIon.
func (e *UnknownError) Is(target error) bool {
	return target == errors.ErrUnknownIon
}

// Lookup resolves a human-readable ion label to its ID.
//
// Accepted forms: "Si IV", "SiIV", "si iv", "Si  IV", "C II*" (fine-structure
// marker dropped). Fails with *UnknownError.
func Lookup(name string) (ID, error) {
	label := strings.TrimRight(strings.TrimSpace(name), "*")
	fields := strings.Fields(label)

	switch len(fields) {
	case 2:
		return resolve(name, fields[0], fields[1])
	case 1:
		compact := fields[0]
		// Two-letter symbols carry a lowercase second letter ("Si", "Mg").
		if len(compact) > 2 && unicode.IsLower(rune(compact[1])) {
			if _, ok := symbols[strings.ToLower(compact[:2])]; ok {
				if _, err := ParseRoman(compact[2:]); err == nil {
					return resolve(name, compact[:2], compact[2:])
				}
			}
		}
		if len(compact) > 1 {
			return resolve(name, compact[:1], compact[1:])
		}
		return ID{}, &UnknownError{Label: name, Reason: "missing ionization stage"}
	case 0:
		return ID{}, &UnknownError{Label: name, Reason: "empty label"}
	default:
		return ID{}, &UnknownError{Label: name, Reason: "expected element and stage"}
	}
}

func resolve(name, sym, numeral string) (ID, error) {
	z, ok := symbols[strings.ToLower(sym)]
	if !ok {
		return ID{}, &UnknownError{Label: name, Reason: "unknown element " + sym}
	}
	stage, err := ParseRoman(numeral)
	if err != nil {
		return ID{}, &UnknownError{Label: name, Reason: err.Error()}
	}
	if stage > z+1 {
		return ID{}, &UnknownError{Label: name, Reason: fmt.Sprintf("%s has no stage %d", elements[z], stage)}
	}
	return ID{Z: z, Stage: stage}, nil
}

// MustLookup is Lookup for labels known at compile time. It panics on failure.
func MustLookup(name string) ID {
	id, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return id
}

// Symbol returns the element symbol for atomic number z, or "" if unknown.
func Symbol(z int) string {
	if z <= 0 || z >= len(elements) {
		return ""
	}
	return elements[z]
}
