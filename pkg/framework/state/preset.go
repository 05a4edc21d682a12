package state

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/justyntemme/paramsync/pkg/framework/bridge"
	"github.com/justyntemme/paramsync/pkg/framework/param"
)

// Preset is the JSON form of a saved state. Parameters and fields are keyed
// by name and hold plain values, e.g. {"gain master": -6}.
type Preset struct {
	Name   string             `json:"name,omitempty"`
	Params map[string]float64 `json:"params"`
	Fields map[string]float64 `json:"fields,omitempty"`
}

// NewPreset captures the current values under name.
func NewPreset(name string, b *bridge.Bridge) *Preset {
	table := b.Table()
	p := &Preset{
		Name:   name,
		Params: make(map[string]float64, table.Len()),
	}
	for _, d := range table.All() {
		plain, _ := b.Plain(d.ID)
		p.Params[d.Name] = plain
	}
	if table.FieldCount() > 0 {
		p.Fields = make(map[string]float64, table.FieldCount())
		for _, f := range table.Fields() {
			p.Fields[f.Name] = f.Get()
		}
	}
	return p
}

// Snapshot resolves names against the table. Unknown names are an error so
// a typo in a hand-written preset is not silently ignored.
func (p *Preset) Snapshot(table *param.Table) (Snapshot, error) {
	var s Snapshot
	if p == nil {
		return s, nil
	}

	byName := make(map[string]uint32, table.Len())
	for _, d := range table.All() {
		byName[d.Name] = d.ID
	}
	for _, name := range sortedKeys(p.Params) {
		id, ok := byName[name]
		if !ok {
			return s, fmt.Errorf("%w: unknown parameter %q", ErrInvalidState, name)
		}
		s.Params = append(s.Params, Value{ID: id, Plain: p.Params[name]})
	}

	fieldByName := make(map[string]uint32, table.FieldCount())
	for _, f := range table.Fields() {
		fieldByName[f.Name] = f.ID
	}
	for _, name := range sortedKeys(p.Fields) {
		id, ok := fieldByName[name]
		if !ok {
			return s, fmt.Errorf("%w: unknown field %q", ErrInvalidState, name)
		}
		s.Fields = append(s.Fields, Value{ID: id, Plain: p.Fields[name]})
	}
	return s, nil
}

// Apply restores the preset through the bridge with origin Program.
func (p *Preset) Apply(b *bridge.Bridge) error {
	s, err := p.Snapshot(b.Table())
	if err != nil {
		return err
	}
	Apply(b, s)
	return nil
}

// WritePreset encodes p as indented JSON.
func WritePreset(w io.Writer, p *Preset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

// ReadPreset decodes a preset.
func ReadPreset(r io.Reader) (*Preset, error) {
	var p Preset
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	return &p, nil
}

// LoadPreset reads a preset file.
func LoadPreset(path string) (*Preset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadPreset(f)
}

// SavePreset writes a preset file.
func SavePreset(path string, p *Preset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePreset(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
