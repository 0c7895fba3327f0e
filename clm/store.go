package clm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/teranos/ionclm/errors"
	"github.com/teranos/ionclm/internal/util"
	"github.com/teranos/ionclm/ion"
)

// Note is caller-visible metadata attached to one ion of a Store.
// Notes never change the value; they record how it was obtained.
type Note uint8

const (
	// NoteUnconstrainedLimit: an upper-limit component was left out of the
	// reported value because a ceiling adds no lower information.
	NoteUnconstrainedLimit Note = 1 << iota
	// NoteErratum: the value was overridden from an errata table.
	NoteErratum
	// NoteCeilingSum: the value is an explicit sum of upper limits.
	NoteCeilingSum
)

// Has reports whether all bits of other are set in n.
func (n Note) Has(other Note) bool {
	return n&other == other && other != 0
}

func (n Note) String() string {
	var parts []string
	if n.Has(NoteUnconstrainedLimit) {
		parts = append(parts, "unconstrained_limit")
	}
	if n.Has(NoteErratum) {
		parts = append(parts, "erratum")
	}
	if n.Has(NoteCeilingSum) {
		parts = append(parts, "ceiling_sum")
	}
	return strings.Join(parts, ",")
}

// Row is one normalized entry ready for a Store.
type Row struct {
	Ion ion.ID
	Measurement
}

// DuplicateIonError reports an ion inserted twice into one store.
type DuplicateIonError struct {
	Ion ion.ID
}

func (e *DuplicateIonError) Error() string {
	return fmt.Sprintf("duplicate ion %s: pre-aggregate repeated lines before inserting", e.Ion.Label())
}

// Is lets errors.Is match ErrDuplicateIon.
func (e *DuplicateIonError) Is(target error) bool {
	return target == errors.ErrDuplicateIon
}

// KeyNotFoundError reports a query for an ion absent from a store.
type KeyNotFoundError struct {
	Ion ion.ID
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("ion %s not in store", e.Ion.Label())
}

// Is lets errors.Is match ErrKeyNotFound.
func (e *KeyNotFoundError) Is(target error) bool {
	return target == errors.ErrKeyNotFound
}

// Store maps ions to one measurement each. The zero value is an empty store.
// A Store is never modified after it is built.
type Store struct {
	order   []ion.ID
	entries map[ion.ID]Measurement
	notes   map[ion.ID]Note
}

// Empty returns a store with no ions.
func Empty() *Store {
	return &Store{}
}

// FromRows builds a store from normalized rows. The same ion twice fails with
// *DuplicateIonError; callers pre-aggregate with a Builder.
func FromRows(rows []Row) (*Store, error) {
	b := NewBuilder()
	for _, row := range rows {
		if err := b.Add(row); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// Get returns the measurement for id, or *KeyNotFoundError.
func (s *Store) Get(id ion.ID) (Measurement, error) {
	if s != nil {
		if m, ok := s.entries[id]; ok {
			return m, nil
		}
	}
	return Measurement{}, &KeyNotFoundError{Ion: id}
}

// Has reports whether id is present.
func (s *Store) Has(id ion.ID) bool {
	if s == nil {
		return false
	}
	_, ok := s.entries[id]
	return ok
}

// Note returns the metadata recorded for id (zero when absent).
func (s *Store) Note(id ion.ID) Note {
	if s == nil {
		return 0
	}
	return s.notes[id]
}

// Ions returns the ions present, in insertion order.
func (s *Store) Ions() []ion.ID {
	if s == nil {
		return nil
	}
	out := make([]ion.ID, len(s.order))
	copy(out, s.order)
	return out
}

// SortedIons returns the ions ordered by atomic number and stage.
func (s *Store) SortedIons() []ion.ID {
	ions := s.Ions()
	sort.Slice(ions, func(i, j int) bool { return ions[i].Less(ions[j]) })
	return ions
}

// Len returns the number of ions.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Rows returns the entries as rows, in insertion order.
func (s *Store) Rows() []Row {
	if s == nil {
		return nil
	}
	rows := make([]Row, 0, len(s.order))
	for _, id := range s.order {
		rows = append(rows, Row{Ion: id, Measurement: s.entries[id]})
	}
	return rows
}

// Equal reports whether two stores hold the same ions, values and notes,
// comparing LogN and Sigma within tol. Order is ignored.
func (s *Store) Equal(other *Store, tol float64) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, id := range s.Ions() {
		a, _ := s.Get(id)
		b, err := other.Get(id)
		if err != nil || a.Flag != b.Flag || s.Note(id) != other.Note(id) {
			return false
		}
		if util.AbsFloat64(a.LogN-b.LogN) > tol || util.AbsFloat64(a.Sigma-b.Sigma) > tol {
			return false
		}
	}
	return true
}
