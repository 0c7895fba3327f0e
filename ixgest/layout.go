package ixgest

import (
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/teranos/ionclm/clm"
	"github.com/teranos/ionclm/errors"
	"github.com/teranos/ionclm/ion"
)

// Repeat policies for an ion that appears on more than one row.
const (
	RepeatReject     = "reject"     // duplicate ion is an error
	RepeatComponents = "components" // rows are velocity components, summed
	RepeatReconcile  = "reconcile"  // rows are alternative lines of one column
	RepeatLast       = "last"       // a later row replaces an earlier one
)

// Layout describes a simple one-ion-per-row table declaratively, so a new
// publication can be ingested from a TOML file instead of code.
//
//	name = "Nes08"
//	citation = "Nestor et al. 2008, MNRAS, 390, 1670"
//	delimiter = "tab"
//	ion_column = 0
//	value_column = 1
//	skip_rows = 2
//
// The value is read from value_column up to the end of the row, or up to
// ion_column when that comes later. value_columns caps the span; with
// sigma_column set the value is the value cell plus the sigma cell, so
// trailing reference or note columns are ignored.
//
//	[default_sigma]
//	"Si II" = 0.05
//
//	[[override]]
//	ion = "O I"
//	clm = 14.47
//	reason = "column from text"
type Layout struct {
	Name         string             `toml:"name"`
	Citation     string             `toml:"citation"`
	Delimiter    Delimiter          `toml:"delimiter"`
	IonColumn    int                `toml:"ion_column"`
	ValueColumn  int                `toml:"value_column"`
	ValueColumns int                `toml:"value_columns"`
	SigmaColumn  *int               `toml:"sigma_column"`
	SkipRows     int                `toml:"skip_rows"`
	SkipPrefixes []string           `toml:"skip_prefixes"`
	Repeat       string             `toml:"repeat"`
	DefaultSigma map[string]float64 `toml:"default_sigma"`
	Overrides    []Override         `toml:"override"`
}

// Override is one erratum in a layout file.
type Override struct {
	Ion    string   `toml:"ion"`
	LogN   *float64 `toml:"clm"`
	Sigma  *float64 `toml:"sig_clm"`
	Flag   string   `toml:"flag"`
	Reason string   `toml:"reason"`
}

// Normalized is the outcome of normalizing one table.
type Normalized struct {
	Store   *clm.Store
	Skipped []Skip
}

// LoadLayout reads a layout from a TOML file.
func LoadLayout(path string) (*Layout, error) {
	var l Layout
	md, err := toml.DecodeFile(path, &l)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode layout %s", path)
	}
	return finishLayout(&l, md)
}

// ParseLayout reads a layout from TOML text.
func ParseLayout(data string) (*Layout, error) {
	var l Layout
	md, err := toml.Decode(data, &l)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode layout")
	}
	return finishLayout(&l, md)
}

func finishLayout(l *Layout, md toml.MetaData) (*Layout, error) {
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.WithHint(
			errors.Newf("layout %q has unknown keys: %s", l.Name, strings.Join(keys, ", ")),
			"check the key names against the layout documentation")
	}
	if l.Delimiter == "" {
		l.Delimiter = DelimWhitespace
	}
	if l.Repeat == "" {
		l.Repeat = RepeatReject
	}
	if l.ValueColumn == 0 && l.IonColumn == 0 {
		l.ValueColumn = 1
	}
	return l, l.Validate()
}

// Validate checks the layout for internal consistency.
func (l *Layout) Validate() error {
	if l.Name == "" {
		return errors.New("layout name is required")
	}
	switch l.Delimiter {
	case DelimTab, DelimAmpersand, DelimWhitespace, DelimShell:
	default:
		return errors.Newf("layout %s: unknown delimiter %q", l.Name, l.Delimiter)
	}
	switch l.Repeat {
	case RepeatReject, RepeatComponents, RepeatReconcile, RepeatLast:
	default:
		return errors.Newf("layout %s: unknown repeat policy %q", l.Name, l.Repeat)
	}
	if l.IonColumn < 0 || l.ValueColumn < 0 || l.SkipRows < 0 {
		return errors.Newf("layout %s: columns and skip_rows must be non-negative", l.Name)
	}
	if l.ValueColumn == l.IonColumn {
		return errors.Newf("layout %s: ion and value columns coincide", l.Name)
	}
	if l.ValueColumns < 0 {
		return errors.Newf("layout %s: value_columns must be non-negative", l.Name)
	}
	if l.ValueColumns > 0 && l.IonColumn > l.ValueColumn && l.IonColumn < l.ValueColumn+l.ValueColumns {
		return errors.Newf("layout %s: ion column %d lies inside the value span", l.Name, l.IonColumn)
	}
	if sc := l.SigmaColumn; sc != nil {
		switch {
		case *sc < 0:
			return errors.Newf("layout %s: sigma_column must be non-negative", l.Name)
		case *sc == l.IonColumn || *sc == l.ValueColumn:
			return errors.Newf("layout %s: sigma column %d is already the ion or value column", l.Name, *sc)
		case l.ValueColumns > 1:
			return errors.Newf("layout %s: sigma_column needs a single value column", l.Name)
		}
	}
	for label, sigma := range l.DefaultSigma {
		if _, err := ion.Lookup(label); err != nil {
			return errors.Wrapf(err, "layout %s: default_sigma", l.Name)
		}
		if sigma < 0 {
			return errors.NewDomainError("layout %s: negative default sigma for %s", l.Name, label)
		}
	}
	_, err := l.patches()
	return err
}

// Split tokenizes text with the layout's delimiter.
func (l *Layout) Split(text string) (Table, error) {
	return SplitLines(text, l.Delimiter)
}

// Rows turns a table into store rows. Blank and comment rows are passed over;
// rows with no value, or matching a skip prefix, are reported in the skip list.
func (l *Layout) Rows(table Table) ([]clm.Row, []Skip, error) {
	var rows []clm.Row
	var skipped []Skip
	for i, raw := range table {
		if i < l.SkipRows || Blank(raw) || Comment(raw) {
			continue
		}
		if prefix, ok := l.skipPrefix(raw); ok {
			skipped = append(skipped, Skip{Index: i, Reason: "skip prefix " + prefix})
			continue
		}
		label := Field(raw, l.IonColumn)
		if label == "" {
			return nil, nil, RowError(i, raw, nil, "missing ion label")
		}
		id, err := LookupIon(i, raw, label)
		if err != nil {
			return nil, nil, err
		}
		if l.ValueColumn >= len(raw) {
			return nil, nil, RowError(i, raw, nil, "no value column %d", l.ValueColumn)
		}
		m, err := ClassifyTokens(l.valueTokens(raw))
		switch {
		case err == nil:
		case errors.Is(err, ErrNoValue):
			skipped = append(skipped, Skip{Index: i, Reason: "no value for " + id.Label()})
			continue
		case errors.Is(err, ErrMissingSigma):
			sigma, ok := l.defaultSigma(id)
			if !ok {
				return nil, nil, RowError(i, raw, err, "no uncertainty for %s", id.Label())
			}
			m.Sigma = sigma
		default:
			return nil, nil, RowError(i, raw, err, "bad value for %s", id.Label())
		}
		rows = append(rows, clm.Row{Ion: id, Measurement: m})
	}
	return rows, skipped, nil
}

// Normalize builds a store from a table, applying the repeat policy and the
// layout's overrides.
func (l *Layout) Normalize(table Table) (*Normalized, error) {
	rows, skipped, err := l.Rows(table)
	if err != nil {
		return nil, err
	}

	var store *clm.Store
	switch l.Repeat {
	case RepeatComponents:
		b := clm.NewBuilder()
		for _, r := range rows {
			if err := b.Accumulate(r); err != nil {
				return nil, errors.Wrapf(err, "layout %s", l.Name)
			}
		}
		store = b.Build()
	case RepeatReconcile:
		store, err = ReconcileRows(rows)
	case RepeatLast:
		store, err = LastRows(rows)
	default:
		store, err = clm.FromRows(rows)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "layout %s", l.Name)
	}

	patches, err := l.patches()
	if err != nil {
		return nil, err
	}
	if len(patches) > 0 {
		if store, err = store.Apply(patches); err != nil {
			return nil, errors.Wrapf(err, "layout %s", l.Name)
		}
	}
	return &Normalized{Store: store, Skipped: skipped}, nil
}

// valueTokens returns the cells of raw that hold the column value.
func (l *Layout) valueTokens(raw []string) []string {
	if l.SigmaColumn != nil {
		tokens := []string{Field(raw, l.ValueColumn)}
		if sigma := Field(raw, *l.SigmaColumn); sigma != "" {
			tokens = append(tokens, sigma)
		}
		return tokens
	}
	end := len(raw)
	if l.IonColumn > l.ValueColumn && l.IonColumn < end {
		end = l.IonColumn
	}
	if l.ValueColumns > 0 && l.ValueColumn+l.ValueColumns < end {
		end = l.ValueColumn + l.ValueColumns
	}
	return raw[l.ValueColumn:end]
}

func (l *Layout) skipPrefix(row []string) (string, bool) {
	joined := strings.TrimSpace(strings.Join(row, " "))
	for _, p := range l.SkipPrefixes {
		if p != "" && strings.HasPrefix(joined, p) {
			return p, true
		}
	}
	return "", false
}

func (l *Layout) defaultSigma(id ion.ID) (float64, bool) {
	for label, sigma := range l.DefaultSigma {
		if other, err := ion.Lookup(label); err == nil && other == id {
			return sigma, true
		}
	}
	return 0, false
}

func (l *Layout) patches() ([]clm.Patch, error) {
	patches := make([]clm.Patch, 0, len(l.Overrides))
	for _, o := range l.Overrides {
		id, err := ion.Lookup(o.Ion)
		if err != nil {
			return nil, errors.Wrapf(err, "layout %s: override", l.Name)
		}
		p := clm.Patch{Ion: id, LogN: o.LogN, Sigma: o.Sigma, Reason: o.Reason}
		if o.Flag != "" {
			f, err := clm.ParseFlag(o.Flag)
			if err != nil {
				return nil, errors.Wrapf(err, "layout %s: override %s", l.Name, o.Ion)
			}
			p.Flag = &f
		}
		if p.Reason == "" {
			return nil, errors.Newf("layout %s: override %s needs a reason", l.Name, o.Ion)
		}
		patches = append(patches, p)
	}
	return patches, nil
}

// ReconcileRows keeps one row per ion, choosing among repeats with
// clm.Reconcile. Ions keep the order of their first row.
func ReconcileRows(rows []clm.Row) (*clm.Store, error) {
	var order []ion.ID
	groups := make(map[ion.ID][]clm.Measurement)
	for _, r := range rows {
		if _, ok := groups[r.Ion]; !ok {
			order = append(order, r.Ion)
		}
		groups[r.Ion] = append(groups[r.Ion], r.Measurement)
	}
	b := clm.NewBuilder()
	for _, id := range order {
		m, err := clm.Reconcile(groups[id]...)
		if err != nil {
			return nil, err
		}
		if err := b.Add(clm.Row{Ion: id, Measurement: m}); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// LastRows keeps the last row of each ion. Ions keep the order of their
// first row.
func LastRows(rows []clm.Row) (*clm.Store, error) {
	var order []ion.ID
	last := make(map[ion.ID]clm.Measurement)
	for _, r := range rows {
		if _, ok := last[r.Ion]; !ok {
			order = append(order, r.Ion)
		}
		last[r.Ion] = r.Measurement
	}
	rows = make([]clm.Row, len(order))
	for i, id := range order {
		rows[i] = clm.Row{Ion: id, Measurement: last[id]}
	}
	return clm.FromRows(rows)
}

// Normalize is the generic adapter: rows of [ion label, value tokens...] in
// a whitespace or shell-split table become a store. Duplicate ions fail.
func Normalize(table Table) (*clm.Store, error) {
	l := &Layout{Name: "generic", Delimiter: DelimShell, IonColumn: 0, ValueColumn: 1, Repeat: RepeatReject}
	n, err := l.Normalize(table)
	if err != nil {
		return nil, err
	}
	return n.Store, nil
}
