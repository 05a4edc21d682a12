// Package model owns the audio-thread side of a plugin's parameters: one
// smoother per parameter, the per-block process views and the draining of
// edits that other threads queued on the bridge.
package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/justyntemme/paramsync/pkg/framework/bridge"
	"github.com/justyntemme/paramsync/pkg/framework/param"
)

// Errors returned while constructing or preparing a model.
var (
	ErrZeroSmoothing     = errors.New("model: smoothing duration is zero for a smoothed parameter")
	ErrInvalidSampleRate = errors.New("model: sample rate must be positive and finite")
)

// Model maps parameter ids to smoother state and produces one process view
// per parameter each block.
//
// ProcessBlock, BeginBlock, FillBlock, Current and Reset belong to the
// audio thread. SetNormalized and SetPlain push onto the lane of their
// origin: Host edits from the one host automation thread, UI edits from the
// UI thread, Program edits from any thread. The getters and field accessors
// only read atomics and are safe from any thread.
type Model struct {
	table  *param.Table
	bridge *bridge.Bridge
	cfg    Config

	sampleRate    float64
	smoothSamples int
	capacity      int

	smoothers []param.Smoother
	paramBuf  [][]float64
	fieldBuf  [][]float64
	views     Views
	pending   []param.Snapshot
}

// New creates a model holding every parameter at its default value.
func New(table *param.Table, opts ...Option) (*Model, error) {
	if table == nil || table.Len() == 0 {
		return nil, param.ErrNoParameters
	}

	cfg := ApplyOptions(opts...)
	m := &Model{
		table:         table,
		bridge:        bridge.New(table),
		cfg:           cfg,
		smoothSamples: cfg.SmoothingSamples,
		smoothers:     make([]param.Smoother, table.Len()),
		pending:       make([]param.Snapshot, 0, 3*table.Len()),
	}

	if m.smoothSamples == 0 && cfg.SmoothingTimeMs <= 0 && m.needsSmoothing() {
		return nil, fmt.Errorf("%w: smoothing time %v ms", ErrZeroSmoothing, cfg.SmoothingTimeMs)
	}

	for i, d := range table.All() {
		m.smoothers[i].SetType(cfg.SmoothingType)
		m.smoothers[i].Reset(d.ProcessValue(d.Default))
	}
	m.allocate(cfg.MaxBlockSize)

	return m, nil
}

// Prepare fixes the sample rate used to turn the smoothing time into
// samples and makes room for blocks of up to maxBlockSize frames. It must
// not run concurrently with ProcessBlock.
func (m *Model) Prepare(sampleRate float64, maxBlockSize int) error {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	samples := m.cfg.SmoothingSamples
	if samples == 0 {
		samples = param.SamplesForTime(sampleRate, m.cfg.SmoothingTimeMs)
	}
	if samples == 0 && m.needsSmoothing() {
		return fmt.Errorf("%w: %v ms at %v Hz", ErrZeroSmoothing, m.cfg.SmoothingTimeMs, sampleRate)
	}

	m.sampleRate = sampleRate
	m.smoothSamples = samples
	if maxBlockSize > m.capacity {
		m.allocate(maxBlockSize)
	}
	return nil
}

// ProcessBlock applies every edit queued before the call, then fills and
// returns the views for a block of frames samples. Edits queued while the
// block is running are picked up by the next call. It is BeginBlock
// followed by FillBlock.
func (m *Model) ProcessBlock(frames int) *Views {
	m.BeginBlock()
	return m.FillBlock(frames)
}

// BeginBlock drains the Host, Program and UI lanes in that order and
// retargets the smoothers. A host block split into several FillBlock calls
// begins once, so an edit arriving mid-block waits for the next one.
func (m *Model) BeginBlock() {
	m.pending = m.bridge.Host.Drain(m.pending[:0])
	m.pending = m.bridge.Program.Drain(m.pending)
	m.pending = m.bridge.UI.Drain(m.pending)
	for i := range m.pending {
		m.apply(&m.pending[i])
	}
}

// FillBlock advances the smoothers by frames samples and returns the views.
// It never drains the bridge.
func (m *Model) FillBlock(frames int) *Views {
	if frames < 0 {
		frames = 0
	}
	if frames > m.capacity {
		// Host broke its max block size promise.
		m.allocate(frames)
	}

	for i := range m.smoothers {
		view := m.paramBuf[i][:frames]
		m.smoothers[i].Fill(view)
		m.views.params[i] = view
	}

	for i, f := range m.table.Fields() {
		v := f.Get()
		view := m.fieldBuf[i][:frames]
		for j := range view {
			view[j] = v
		}
		m.views.fields[i] = view
	}

	m.views.frames = frames
	return &m.views
}

func (m *Model) apply(s *param.Snapshot) {
	index, ok := m.table.Index(s.ID)
	if !ok {
		return
	}
	d := m.table.At(index)

	duration := m.smoothSamples
	if d.Instant || (s.Origin == param.OriginProgram && m.cfg.Restore == RestoreSnap) {
		duration = 0
	}

	m.smoothers[index].SetTarget(d.ProcessValue(s.Plain), duration)
	m.bridge.Publish(index, *s)
	m.bridge.Audio.Push(index, *s)
}

// Reset drops pending ramps and jumps every smoother to its published value.
func (m *Model) Reset() {
	for i, d := range m.table.All() {
		m.smoothers[i].Reset(d.ProcessValue(m.bridge.PlainAt(i)))
	}
}

// Current returns the last value the smoother for id produced, in the
// process domain. Audio thread only.
func (m *Model) Current(id uint32) float64 {
	if i, ok := m.table.Index(id); ok {
		return m.smoothers[i].Current()
	}
	return 0
}

// GetPlain returns the most recent plain value submitted or applied for id.
func (m *Model) GetPlain(id uint32) float64 {
	v, _ := m.bridge.Plain(id)
	return v
}

// GetNormalized returns the most recent normalized value for id.
func (m *Model) GetNormalized(id uint32) float64 {
	v, _ := m.bridge.Normalized(id)
	return v
}

// SetNormalized queues an edit for the next block. It never blocks and
// never fails; out of range values are clamped and unknown ids ignored.
func (m *Model) SetNormalized(id uint32, normalized float64, origin param.Origin) {
	m.bridge.Submit(id, normalized, origin)
}

// SetPlain is SetNormalized with a plain value.
func (m *Model) SetPlain(id uint32, plain float64, origin param.Origin) {
	m.bridge.SubmitPlain(id, plain, origin)
}

// Field returns the value of a non-automated field.
func (m *Model) Field(id uint32) float64 {
	if f := m.table.Field(id); f != nil {
		return f.Get()
	}
	return 0
}

// SetField stores a non-automated field value. It takes effect at the next
// block without smoothing.
func (m *Model) SetField(id uint32, value float64) {
	if f := m.table.Field(id); f != nil {
		f.Set(value)
	}
}

// Table returns the descriptor table.
func (m *Model) Table() *param.Table {
	return m.table
}

// Bridge returns the bridge shared with the UI and the host.
func (m *Model) Bridge() *bridge.Bridge {
	return m.bridge
}

// Config returns the engine settings.
func (m *Model) Config() Config {
	return m.cfg
}

// SampleRate returns the rate passed to Prepare, or 0.
func (m *Model) SampleRate() float64 {
	return m.sampleRate
}

// SmoothingSamples returns the ramp length applied to smoothed edits.
func (m *Model) SmoothingSamples() int {
	return m.smoothSamples
}

func (m *Model) needsSmoothing() bool {
	for _, d := range m.table.All() {
		if !d.Instant {
			return true
		}
	}
	return false
}

func (m *Model) allocate(frames int) {
	m.capacity = frames
	m.paramBuf = make([][]float64, m.table.Len())
	for i := range m.paramBuf {
		m.paramBuf[i] = make([]float64, frames)
	}
	m.fieldBuf = make([][]float64, m.table.FieldCount())
	for i := range m.fieldBuf {
		m.fieldBuf[i] = make([]float64, frames)
	}
	m.views = Views{
		table:  m.table,
		params: make([][]float64, m.table.Len()),
		fields: make([][]float64, m.table.FieldCount()),
	}
}
