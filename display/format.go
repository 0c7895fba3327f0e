// Package display renders ionclm results for the terminal and for
// machine-readable output.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/teranos/ionclm/errors"
)

// Format is an output format accepted by --format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTOML  Format = "toml"
)

// Formats lists every supported format.
var Formats = []Format{FormatTable, FormatJSON, FormatYAML, FormatTOML}

// ParseFormat validates s as a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	names := make([]string, len(Formats))
	for i, known := range Formats {
		names[i] = string(known)
	}
	return "", errors.Newf("unsupported format: %s (supported: %s)", s, strings.Join(names, ", "))
}

// Marshal encodes v as JSON, YAML or TOML.
func Marshal(format Format, v interface{}) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal JSON")
		}
		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(v)
		return data, errors.Wrap(err, "failed to marshal YAML")
	case FormatTOML:
		data, err := toml.Marshal(v)
		return data, errors.Wrap(err, "failed to marshal TOML")
	}
	return nil, errors.Newf("format %s is not a serialization", format)
}

// Output writes v to w in format.
func Output(w io.Writer, format Format, v interface{}) error {
	data, err := Marshal(format, v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, string(data))
	return err
}
