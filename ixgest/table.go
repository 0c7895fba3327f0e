// Package ixgest turns tokenized rows of published column-density tables
// into normalized store rows.
//
// Splitting text into tokens is done once, up front (SplitLines, SplitShell);
// everything after that is a pure function of the tokens. Per-publication
// adapters live in ixgest/lls and all bottom out in ClassifyTokens,
// clm.Builder and the column arithmetic.
package ixgest

import (
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/teranos/ionclm/errors"
)

// Table is a fully materialized sequence of rows of raw tokens.
type Table [][]string

// Delimiter names how a text table is split into tokens.
type Delimiter string

const (
	DelimTab        Delimiter = "tab"
	DelimAmpersand  Delimiter = "&"
	DelimWhitespace Delimiter = "whitespace"
	DelimShell      Delimiter = "shell"
)

// SplitLines splits text into rows. Line endings are normalized and trailing
// newlines dropped; blank lines are kept (as a single empty token) so row
// indexes match source line numbers.
func SplitLines(text string, delim Delimiter) (Table, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return Table{}, nil
	}
	lines := strings.Split(text, "\n")
	table := make(Table, 0, len(lines))
	for i, line := range lines {
		var fields []string
		switch delim {
		case DelimTab:
			fields = strings.Split(line, "\t")
		case DelimAmpersand:
			// LaTeX rows end in "\\"; drop it with the newline.
			fields = strings.Split(strings.TrimSuffix(strings.TrimRight(line, " "), `\\`), "&")
		case DelimWhitespace:
			fields = strings.Fields(line)
			if len(fields) == 0 {
				fields = []string{""}
			}
		case DelimShell:
			var err error
			fields, err = SplitShell(line)
			if err != nil {
				return nil, &RowParseError{Index: i, Raw: []string{line}, Reason: "unbalanced quoting", Err: err}
			}
		default:
			return nil, errors.Newf("unknown delimiter %q", delim)
		}
		table = append(table, fields)
	}
	return table, nil
}

// SplitShell splits one line the way a shell would, so ion labels with
// spaces can be quoted: "Si II" < 12.3
func SplitShell(line string) ([]string, error) {
	if strings.TrimSpace(line) == "" {
		return []string{""}, nil
	}
	words, err := shellquote.Split(line)
	if err != nil {
		return nil, errors.Wrap(err, "split row")
	}
	return words, nil
}

// Blank reports whether every token of row is whitespace.
func Blank(row []string) bool {
	for _, tok := range row {
		if strings.TrimSpace(tok) != "" {
			return false
		}
	}
	return true
}

// Comment reports whether the first token starts a comment ("#" or "%").
func Comment(row []string) bool {
	if len(row) == 0 {
		return false
	}
	first := strings.TrimSpace(row[0])
	return strings.HasPrefix(first, "#") || strings.HasPrefix(first, "%")
}

// Field returns the trimmed token at i, or "" when the row is shorter.
func Field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
