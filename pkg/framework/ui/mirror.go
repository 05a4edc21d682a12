// Package ui holds the UI thread's view of a parameter model and the glue
// between an external window toolkit and a plugin's frame callback.
package ui

import (
	"github.com/justyntemme/paramsync/pkg/framework/bridge"
	"github.com/justyntemme/paramsync/pkg/framework/param"
)

// ParamState is the UI thread's copy of one parameter.
type ParamState struct {
	desc   *param.Descriptor
	bridge *bridge.Bridge

	normalized    float64
	updatedByHost bool
	text          string
}

// ID returns the parameter id.
func (p *ParamState) ID() uint32 { return p.desc.ID }

// Name returns the display name.
func (p *ParamState) Name() string { return p.desc.Name }

// UnitLabel returns the unit label, e.g. "dB".
func (p *ParamState) UnitLabel() string { return p.desc.UnitLabel }

// Descriptor returns the static description of the parameter.
func (p *ParamState) Descriptor() *param.Descriptor { return p.desc }

// Normalized returns the value last seen by the UI.
func (p *ParamState) Normalized() float64 { return p.normalized }

// Plain returns Normalized mapped through the parameter's curve.
func (p *ParamState) Plain() float64 { return p.desc.ToPlain(p.normalized) }

// UpdatedByHost reports whether the last Poll saw a change that did not
// come from the UI.
func (p *ParamState) UpdatedByHost() bool { return p.updatedByHost }

// Text returns the display text. It is refreshed when the host changes the
// value or the UI edits it, not on every frame.
func (p *ParamState) Text() string { return p.text }

// SetFromNormalized records a UI edit and queues it for the audio thread.
func (p *ParamState) SetFromNormalized(normalized float64) {
	n := param.ClampNormalized(normalized)
	p.normalized = n
	p.refreshText()
	p.bridge.Submit(p.desc.ID, n, param.OriginUI)
}

// SetFromPlain is SetFromNormalized with a plain value.
func (p *ParamState) SetFromPlain(plain float64) {
	p.SetFromNormalized(p.desc.ToNormalized(plain))
}

func (p *ParamState) refreshText() {
	p.text = p.desc.FormatNormalized(p.normalized)
}

// Mirror is owned by the UI thread. It starts from the published values and
// is kept current by draining the audio thread's echo lane once per frame.
type Mirror struct {
	bridge *bridge.Bridge
	table  *param.Table
	params []ParamState
	buf    []param.Snapshot
	polls  uint64
}

// NewMirror creates a mirror holding the currently published values.
func NewMirror(b *bridge.Bridge) *Mirror {
	table := b.Table()
	m := &Mirror{
		bridge: b,
		table:  table,
		params: make([]ParamState, table.Len()),
		buf:    make([]param.Snapshot, 0, table.Len()),
	}
	for i, d := range table.All() {
		m.params[i] = ParamState{desc: d, bridge: b}
	}
	// Echoes queued while no editor was open are already reflected in the
	// published values.
	m.buf = b.Audio.Drain(m.buf[:0])
	m.Resync()
	return m
}

// Resync reloads every parameter from the published values and clears the
// host update flags.
func (m *Mirror) Resync() {
	for i := range m.params {
		p := &m.params[i]
		p.normalized = m.bridge.NormalizedAt(i)
		p.updatedByHost = false
		p.refreshText()
	}
}

// Poll drains the echo lane and returns the number of snapshots applied.
// Snapshots that originated in the UI are skipped since the mirror already
// holds a value at least as new.
func (m *Mirror) Poll() int {
	m.polls++
	for i := range m.params {
		m.params[i].updatedByHost = false
	}

	m.buf = m.bridge.Audio.Drain(m.buf[:0])
	applied := 0
	for _, s := range m.buf {
		if s.Origin == param.OriginUI {
			continue
		}
		index, ok := m.table.Index(s.ID)
		if !ok {
			continue
		}
		p := &m.params[index]
		p.normalized = s.Normalized
		p.updatedByHost = true
		p.refreshText()
		applied++
	}
	return applied
}

// Polls returns how many times Poll ran.
func (m *Mirror) Polls() uint64 {
	return m.polls
}

// Len returns the number of parameters.
func (m *Mirror) Len() int {
	return len(m.params)
}

// Param returns the state for id, or nil.
func (m *Mirror) Param(id uint32) *ParamState {
	if i, ok := m.table.Index(id); ok {
		return &m.params[i]
	}
	return nil
}

// ParamAt returns the state at index in declaration order.
func (m *Mirror) ParamAt(index int) *ParamState {
	if index < 0 || index >= len(m.params) {
		return nil
	}
	return &m.params[index]
}

// Field returns the value of a non-automated field.
func (m *Mirror) Field(id uint32) float64 {
	if f := m.table.Field(id); f != nil {
		return f.Get()
	}
	return 0
}

// SetField stores a non-automated field value.
func (m *Mirror) SetField(id uint32, value float64) {
	if f := m.table.Field(id); f != nil {
		f.Set(value)
	}
}

// Fields returns the non-automated fields in declaration order.
func (m *Mirror) Fields() []*param.Field {
	return m.table.Fields()
}
