// Package plugin binds a parameter model, a DSP callback and an optional
// editor into one instance with a host-facing lifecycle.
package plugin

import (
	"io"

	"github.com/google/uuid"

	"github.com/justyntemme/paramsync/pkg/framework/bus"
	"github.com/justyntemme/paramsync/pkg/framework/param"
	"github.com/justyntemme/paramsync/pkg/framework/process"
	"github.com/justyntemme/paramsync/pkg/framework/ui"
)

// Plugin is what a plugin author implements.
type Plugin interface {
	Info() Info
	// Parameters returns the plugin's descriptor table. It is called once
	// per instance.
	Parameters() (*param.Table, error)
	Buses() *bus.Configuration
	// Initialize is called before the first block and whenever the sample
	// rate or maximum block size changes.
	Initialize(sampleRate float64, maxBlockSize int) error
	// ProcessAudio processes audio buffers - zero allocations allowed!
	ProcessAudio(ctx *process.Context)
}

// Editor is implemented by plugins with a UI.
type Editor interface {
	EditorSize() ui.Size
	Render(m *ui.Mirror, w ui.Widgets)
}

// Stateful is implemented by plugins that persist data beyond their
// parameters and fields. The data is stored after the parameter values in
// the state payload.
type Stateful interface {
	SaveCustomState(w io.Writer) error
	LoadCustomState(r io.Reader) error
}

// Binding is the narrow surface a host binding drives. VST3, CLAP or an
// offline render harness only need these calls.
type Binding interface {
	Initialize(sampleRate float64, maxBlockSize int) error
	SetActive(active bool) error
	Process(input, output [][]float32) error
	SetParameter(id uint32, normalized float64)
	GetNormalized(id uint32) float64
	FormatDisplay(id uint32) string
	ParameterCount() int
	ParameterInfo(index int) (*param.Descriptor, bool)
	OpenUI(parent ui.ParentHandle) error
	CloseUI() error
	SaveState(w io.Writer) error
	LoadState(r io.Reader) error
	SetBypass(bypass bool)
	ClassID() uuid.UUID
	Destroy()
}

// Base provides core functionality for all plugins
type Base struct {
	info       Info
	buses      *bus.Configuration
	sampleRate float64
	maxBlock   int
}

// NewBase creates a new plugin base. A nil bus configuration means stereo.
func NewBase(info Info, buses *bus.Configuration) *Base {
	if buses == nil {
		buses = bus.NewStereoConfiguration()
	}
	return &Base{info: info, buses: buses}
}

// Info implements Plugin.
func (b *Base) Info() Info {
	return b.info
}

// Buses implements Plugin.
func (b *Base) Buses() *bus.Configuration {
	return b.buses
}

// Initialize implements Plugin and records the processing setup.
func (b *Base) Initialize(sampleRate float64, maxBlockSize int) error {
	b.sampleRate = sampleRate
	b.maxBlock = maxBlockSize
	return nil
}

// SampleRate returns the current sample rate
func (b *Base) SampleRate() float64 {
	return b.sampleRate
}

// MaxBlockSize returns the block size passed to Initialize.
func (b *Base) MaxBlockSize() int {
	return b.maxBlock
}
