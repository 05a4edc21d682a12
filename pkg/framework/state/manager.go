// Package state saves and restores the parameter values of a model.
package state

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/justyntemme/paramsync/pkg/framework/bridge"
	"github.com/justyntemme/paramsync/pkg/framework/param"
)

// Errors returned by Load.
var (
	ErrInvalidState       = errors.New("state: invalid state data")
	ErrUnsupportedVersion = errors.New("state: unsupported state version")
)

const (
	magic = "PSYNC1"

	// Version is the binary layout written by Save.
	Version uint32 = 1

	maxEntries = 1 << 16
	maxCustom  = 1 << 24
)

// Value is one saved (id, plain value) pair.
type Value struct {
	ID    uint32
	Plain float64
}

// Snapshot is the persisted form of a model: parameters in declaration
// order followed by fields.
type Snapshot struct {
	Params []Value
	Fields []Value
}

// Capture reads the published parameter values and the field values.
func Capture(b *bridge.Bridge) Snapshot {
	table := b.Table()
	s := Snapshot{
		Params: make([]Value, 0, table.Len()),
		Fields: make([]Value, 0, table.FieldCount()),
	}
	for _, d := range table.All() {
		plain, _ := b.Plain(d.ID)
		s.Params = append(s.Params, Value{ID: d.ID, Plain: plain})
	}
	for _, f := range table.Fields() {
		s.Fields = append(s.Fields, Value{ID: f.ID, Plain: f.Get()})
	}
	return s
}

// Apply submits every known value to the bridge with origin Program and
// stores field values. Unknown ids are skipped and counted.
func Apply(b *bridge.Bridge, s Snapshot) (skipped int) {
	table := b.Table()
	for _, v := range s.Params {
		if !b.SubmitPlain(v.ID, v.Plain, param.OriginProgram) {
			skipped++
		}
	}
	for _, v := range s.Fields {
		f := table.Field(v.ID)
		if f == nil {
			skipped++
			continue
		}
		f.Set(v.Plain)
	}
	return skipped
}

// CustomStateFunc allows plugins to save additional state beyond parameters
type CustomStateFunc func(w io.Writer) error

// CustomLoadFunc reads back what a CustomStateFunc wrote.
type CustomLoadFunc func(r io.Reader) error

// Manager handles plugin state saving and loading
type Manager struct {
	bridge     *bridge.Bridge
	customSave CustomStateFunc
	customLoad CustomLoadFunc
}

// NewManager creates a new state manager
func NewManager(b *bridge.Bridge) *Manager {
	return &Manager{bridge: b}
}

// SetCustomState sets the functions that save and load plugin specific
// data stored after the parameters.
func (m *Manager) SetCustomState(save CustomStateFunc, load CustomLoadFunc) {
	m.customSave = save
	m.customLoad = load
}

// Save writes the plugin state to a writer
//
//	magic "PSYNC1" | version u32 | nparams u32 | (id u32, plain f64)...
//	| nfields u32 | (id u32, value f64)... | custom length u32 | custom bytes
//
// All integers and floats are little endian.
func (m *Manager) Save(w io.Writer) error {
	s := Capture(m.bridge)

	var buf bytes.Buffer
	buf.WriteString(magic)
	put32(&buf, Version)
	putValues(&buf, s.Params)
	putValues(&buf, s.Fields)

	var custom []byte
	if m.customSave != nil {
		var cb bytes.Buffer
		if err := m.customSave(&cb); err != nil {
			return fmt.Errorf("state: saving custom data: %w", err)
		}
		custom = cb.Bytes()
	}
	put32(&buf, uint32(len(custom)))
	buf.Write(custom)

	_, err := w.Write(buf.Bytes())
	return err
}

// Load reads the plugin state from a reader and applies it. Nothing is
// applied unless the whole payload parses.
func (m *Manager) Load(r io.Reader) error {
	s, custom, err := Decode(r)
	if err != nil {
		return err
	}

	Apply(m.bridge, s)

	if len(custom) > 0 && m.customLoad != nil {
		if err := m.customLoad(bytes.NewReader(custom)); err != nil {
			return fmt.Errorf("state: loading custom data: %w", err)
		}
	}
	return nil
}

// Decode parses a payload written by Save without applying it.
func Decode(r io.Reader) (Snapshot, []byte, error) {
	var s Snapshot

	header := make([]byte, len(magic))
	if _, err := io.ReadFull(r, header); err != nil {
		return s, nil, fmt.Errorf("%w: reading header: %w", ErrInvalidState, err)
	}
	if string(header) != magic {
		return s, nil, fmt.Errorf("%w: bad magic %q", ErrInvalidState, header)
	}

	version, err := read32(r)
	if err != nil {
		return s, nil, err
	}
	if version == 0 || version > Version {
		return s, nil, fmt.Errorf("%w: %d, newest supported is %d", ErrUnsupportedVersion, version, Version)
	}

	if s.Params, err = readValues(r); err != nil {
		return s, nil, err
	}
	if s.Fields, err = readValues(r); err != nil {
		return s, nil, err
	}

	n, err := read32(r)
	if err != nil {
		return s, nil, err
	}
	if n > maxCustom {
		return s, nil, fmt.Errorf("%w: custom data of %d bytes", ErrInvalidState, n)
	}
	var custom []byte
	if n > 0 {
		custom = make([]byte, n)
		if _, err := io.ReadFull(r, custom); err != nil {
			return s, nil, fmt.Errorf("%w: reading custom data: %w", ErrInvalidState, err)
		}
	}
	return s, custom, nil
}

func put32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func putValues(buf *bytes.Buffer, values []Value) {
	put32(buf, uint32(len(values)))
	var b [8]byte
	for _, v := range values {
		put32(buf, v.ID)
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(v.Plain))
		buf.Write(b[:])
	}
}

func read32(r io.Reader) (uint32, error) {
	var v uint32
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	return v, nil
}

func readValues(r io.Reader) ([]Value, error) {
	n, err := read32(r)
	if err != nil {
		return nil, err
	}
	if n > maxEntries {
		return nil, fmt.Errorf("%w: %d entries", ErrInvalidState, n)
	}

	values := make([]Value, n)
	for i := range values {
		if values[i].ID, err = read32(r); err != nil {
			return nil, err
		}
		var bits uint64
		if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidState, err)
		}
		values[i].Plain = math.Float64frombits(bits)
	}
	return values, nil
}
