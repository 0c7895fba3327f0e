package clm

import (
	"github.com/teranos/ionclm/errors"
	"github.com/teranos/ionclm/ion"
)

// Patch is one erratum applied after a table has been parsed: a known
// transcription problem or a value the authors give only in the text.
// Nil fields are left as parsed.
type Patch struct {
	Ion    ion.ID
	LogN   *float64
	Sigma  *float64
	Flag   *Flag
	Reason string
}

// Apply returns a new store with the patches applied in order. Every patched
// ion must already be present; a miss fails with *KeyNotFoundError so that a
// stale errata table does not pass silently. Patched ions are noted
// NoteErratum.
func (s *Store) Apply(patches []Patch) (*Store, error) {
	b := NewBuilder()
	for _, row := range s.Rows() {
		b.set(row.Ion, row.Measurement, s.Note(row.Ion))
	}
	for _, p := range patches {
		m, ok := b.entries[p.Ion]
		if !ok {
			return nil, errors.Wrapf(&KeyNotFoundError{Ion: p.Ion}, "erratum %q", p.Reason)
		}
		if p.LogN != nil {
			m.LogN = *p.LogN
		}
		if p.Sigma != nil {
			m.Sigma = *p.Sigma
		}
		if p.Flag != nil {
			m.Flag = *p.Flag
		}
		if err := m.Validate(); err != nil {
			return nil, errors.Wrapf(err, "erratum %q for %s", p.Reason, p.Ion.Label())
		}
		b.set(p.Ion, m, NoteErratum)
	}
	return b.Build(), nil
}
