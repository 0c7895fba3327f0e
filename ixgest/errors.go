package ixgest

import (
	"fmt"
	"strings"

	"github.com/teranos/ionclm/errors"
)

var (
	// ErrNoValue marks an empty or ellipsis cell: the ion was not measured.
	ErrNoValue = errors.New("no value")

	// ErrMissingSigma marks a bare number with no uncertainty token.
	ErrMissingSigma = errors.New("missing uncertainty")
)

// RowParseError identifies the raw row that could not be normalized.
type RowParseError struct {
	Index  int      // zero-based row index within the table
	Raw    []string // the row's raw tokens
	Reason string
	Err    error // underlying cause, e.g. an unknown ion label
}

func (e *RowParseError) Error() string {
	msg := fmt.Sprintf("row %d [%s]: %s", e.Index, strings.Join(e.Raw, " | "), e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is lets errors.Is match ErrRowParse.
func (e *RowParseError) Is(target error) bool {
	return target == errors.ErrRowParse
}

func (e *RowParseError) Unwrap() error {
	return e.Err
}

// RowError builds a *RowParseError for row index i.
func RowError(i int, row []string, err error, format string, args ...interface{}) error {
	raw := make([]string, len(row))
	copy(raw, row)
	return &RowParseError{Index: i, Raw: raw, Reason: fmt.Sprintf(format, args...), Err: err}
}

// Skip records a data row that was deliberately not turned into a store row.
type Skip struct {
	Index  int
	Reason string
}
