package display

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"

	"github.com/teranos/ionclm/clm"
	"github.com/teranos/ionclm/ixgest/lls"
	"github.com/teranos/ionclm/storage"
)

// IonView is one stored column.
type IonView struct {
	Ion   string   `json:"ion" yaml:"ion" toml:"ion"`
	Z     int      `json:"z" yaml:"z" toml:"z"`
	Stage int      `json:"stage" yaml:"stage" toml:"stage"`
	LogN  float64  `json:"clm" yaml:"clm" toml:"clm"`
	Sigma float64  `json:"sig_clm" yaml:"sig_clm" toml:"sig_clm"`
	Flag  clm.Flag `json:"flg_clm" yaml:"flg_clm" toml:"flg_clm"`
	Note  string   `json:"note,omitempty" yaml:"note,omitempty" toml:"note,omitempty"`
}

// CitationView is one publication's columns.
type CitationView struct {
	Key  string    `json:"citation" yaml:"citation" toml:"citation"`
	Ions []IonView `json:"ions" yaml:"ions" toml:"ions"`
}

// SystemView is a system prepared for output.
type SystemView struct {
	lls.SystemInfo `yaml:",inline"`
	Citations      []CitationView `json:"citations" yaml:"citations" toml:"citations"`
}

// NewIonViews lists store's columns in atomic order.
func NewIonViews(store *clm.Store) []IonView {
	out := make([]IonView, 0, store.Len())
	for _, id := range store.SortedIons() {
		m, _ := store.Get(id)
		out = append(out, IonView{
			Ion:   id.Label(),
			Z:     id.Z,
			Stage: id.Stage,
			LogN:  m.LogN,
			Sigma: m.Sigma,
			Flag:  m.Flag,
			Note:  store.Note(id).String(),
		})
	}
	return out
}

// NewSystemView flattens a stored system.
func NewSystemView(s *storage.System) SystemView {
	view := SystemView{SystemInfo: s.Info}
	for _, c := range s.Citations {
		view.Citations = append(view.Citations, CitationView{Key: c.Key, Ions: NewIonViews(c.Store)})
	}
	return view
}

// StoreTable returns pterm table data for store, header first.
func StoreTable(store *clm.Store) pterm.TableData {
	data := pterm.TableData{{"Ion", "log N", "σ", "Flag", "Note"}}
	for _, v := range NewIonViews(store) {
		data = append(data, []string{
			v.Ion,
			fmt.Sprintf("%s%.3f", v.Flag.Symbol(), v.LogN),
			sigma(v),
			v.Flag.String(),
			v.Note,
		})
	}
	return data
}

func sigma(v IonView) string {
	if v.Flag == clm.LowerLimit || v.Flag == clm.UpperLimit {
		return ""
	}
	return fmt.Sprintf("%.3f", v.Sigma)
}

// SystemsTable returns pterm table data listing systems.
func SystemsTable(systems []lls.SystemInfo) pterm.TableData {
	data := pterm.TableData{{"System", "zabs", "log NHI", "Ref"}}
	for _, s := range systems {
		data = append(data, []string{
			s.Name,
			fmt.Sprintf("%.4f", s.Zabs),
			fmt.Sprintf("%.2f", s.NHI),
			s.Ref,
		})
	}
	return data
}

// RenderTable writes data as a boxed table with a header row.
func RenderTable(w io.Writer, data pterm.TableData) error {
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

// RenderSystem writes a system header followed by one table per citation.
func RenderSystem(w io.Writer, s *storage.System) error {
	info := s.Info
	fmt.Fprintf(w, "%s  zabs=%.4f  zem=%.3f  log NHI=%.2f (+%.2f/-%.2f)\n",
		info.Name, info.Zabs, info.Zem, info.NHI, info.SigNHI[0], info.SigNHI[1])
	if info.RA != "" || info.Dec != "" {
		fmt.Fprintf(w, "RA %s  Dec %s\n", info.RA, info.Dec)
	}
	if info.MH != nil {
		fmt.Fprintf(w, "[M/H] = %.2f\n", *info.MH)
	}
	for _, c := range s.Citations {
		fmt.Fprintf(w, "\n%s\n", c.Key)
		if err := RenderTable(w, StoreTable(c.Store)); err != nil {
			return err
		}
	}
	return nil
}
