package display

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/teranos/ionclm/clm"
	"github.com/teranos/ionclm/ion"
	"github.com/teranos/ionclm/ixgest/lls"
	"github.com/teranos/ionclm/storage"
)

func testSystem(t *testing.T) *storage.System {
	t.Helper()
	store, err := clm.FromRows([]clm.Row{
		{Ion: ion.MustLookup("Si IV"), Measurement: clm.NewDetection(13.21, 0.03)},
		{Ion: ion.MustLookup("C II"), Measurement: clm.NewLowerLimit(14.1)},
	})
	require.NoError(t, err)
	return &storage.System{
		Info:      lls.SystemInfo{Name: "PG1634+706_z1.041", Zabs: 1.0414, NHI: 17.23, Ref: "Zon04"},
		Citations: []storage.Citation{{Key: "Zon04", Store: store}},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YAML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table, json, yaml, toml")
}

func TestSystemView(t *testing.T) {
	view := NewSystemView(testSystem(t))
	require.Len(t, view.Citations, 1)
	ions := view.Citations[0].Ions
	require.Len(t, ions, 2)
	assert.Equal(t, "C II", ions[0].Ion, "atomic order")
	assert.Equal(t, clm.LowerLimit, ions[0].Flag)

	data, err := Marshal(FormatJSON, view)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "PG1634+706_z1.041", decoded["name"])
	assert.Contains(t, string(data), `"flg_clm": "lower_limit"`)

	data, err = Marshal(FormatYAML, view)
	require.NoError(t, err)
	var y map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &y))
	assert.Equal(t, "Zon04", y["ref"])

	data, err = Marshal(FormatTOML, view)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[[citations]]")

	_, err = Marshal(FormatTable, view)
	assert.Error(t, err)
}

func TestStoreTable(t *testing.T) {
	data := StoreTable(testSystem(t).Citations[0].Store)
	require.Len(t, data, 3)
	assert.Equal(t, []string{"C II", ">14.100", "", "lower_limit", ""}, data[1])
	assert.Equal(t, []string{"Si IV", "13.210", "0.030", "detection", ""}, data[2])
}

func TestRenderSystem(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSystem(&buf, testSystem(t)))
	out := buf.String()
	assert.Contains(t, out, "PG1634+706_z1.041")
	assert.Contains(t, out, "Si IV")
	assert.Contains(t, out, "Zon04")
}
