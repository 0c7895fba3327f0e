package clm

import (
	"github.com/teranos/ionclm/column"
	"github.com/teranos/ionclm/errors"
	"github.com/teranos/ionclm/ion"
)

// Builder populates a store incrementally while a table is normalized.
// Build hands out an independent Store; the builder may keep going afterwards.
type Builder struct {
	order   []ion.ID
	entries map[ion.ID]Measurement
	notes   map[ion.ID]Note
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		entries: make(map[ion.ID]Measurement),
		notes:   make(map[ion.ID]Note),
	}
}

// Add inserts a new ion. Inserting an ion twice fails with *DuplicateIonError.
func (b *Builder) Add(row Row) error {
	if err := row.Validate(); err != nil {
		return errors.Wrapf(err, "ion %s", row.Ion.Label())
	}
	if _, ok := b.entries[row.Ion]; ok {
		return &DuplicateIonError{Ion: row.Ion}
	}
	b.set(row.Ion, row.Measurement, 0)
	return nil
}

// Accumulate adds a velocity component to an ion. The first component
// inserts the ion; later ones sum in linear space with propagated sigma.
// Only detections are additive; anything else fails with ErrDomain.
func (b *Builder) Accumulate(row Row) error {
	if err := row.Validate(); err != nil {
		return errors.Wrapf(err, "ion %s", row.Ion.Label())
	}
	prev, ok := b.entries[row.Ion]
	if !ok {
		b.set(row.Ion, row.Measurement, 0)
		return nil
	}
	if prev.Flag != Detection || row.Flag != Detection {
		return errors.NewDomainError("cannot accumulate %s component into %s %s",
			row.Flag, prev.Flag, row.Ion.Label())
	}
	sum, err := column.Sum([]column.Value{prev.Value(), row.Value()})
	if err != nil {
		return errors.Wrapf(err, "accumulate %s", row.Ion.Label())
	}
	b.entries[row.Ion] = Measurement{LogN: sum.LogN, Sigma: sum.Sigma, Flag: Detection}
	return nil
}

// Annotate ORs note into the metadata of an ion already present.
func (b *Builder) Annotate(id ion.ID, note Note) error {
	if _, ok := b.entries[id]; !ok {
		return &KeyNotFoundError{Ion: id}
	}
	b.notes[id] |= note
	return nil
}

// Has reports whether id has been added.
func (b *Builder) Has(id ion.ID) bool {
	_, ok := b.entries[id]
	return ok
}

// Len returns the number of ions added so far.
func (b *Builder) Len() int {
	return len(b.order)
}

// Build returns a Store holding a copy of the current entries.
func (b *Builder) Build() *Store {
	s := &Store{
		order:   make([]ion.ID, len(b.order)),
		entries: make(map[ion.ID]Measurement, len(b.entries)),
		notes:   make(map[ion.ID]Note, len(b.notes)),
	}
	copy(s.order, b.order)
	for id, m := range b.entries {
		s.entries[id] = m
	}
	for id, n := range b.notes {
		if n != 0 {
			s.notes[id] = n
		}
	}
	return s
}

func (b *Builder) set(id ion.ID, m Measurement, note Note) {
	if _, ok := b.entries[id]; !ok {
		b.order = append(b.order, id)
	}
	b.entries[id] = m
	if note != 0 {
		b.notes[id] |= note
	}
}
