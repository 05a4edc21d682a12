package plugin

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/justyntemme/paramsync/pkg/framework/bus"
	"github.com/justyntemme/paramsync/pkg/framework/debug"
	"github.com/justyntemme/paramsync/pkg/framework/model"
	"github.com/justyntemme/paramsync/pkg/framework/param"
	"github.com/justyntemme/paramsync/pkg/framework/process"
	"github.com/justyntemme/paramsync/pkg/framework/state"
	"github.com/justyntemme/paramsync/pkg/framework/ui"
)

// Lifecycle errors.
var (
	ErrInvalidTransition = errors.New("plugin: invalid lifecycle transition")
	ErrNoEditor          = errors.New("plugin: plugin has no editor")
	ErrNoToolkit         = errors.New("plugin: no UI toolkit configured")
)

// State is the lifecycle state of an instance.
type State int32

const (
	StateCreated State = iota
	StateInitialized
	StateProcessing
	StateDestroyed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInitialized:
		return "initialized"
	case StateProcessing:
		return "processing"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Option configures an Instance.
type Option func(*Instance)

// WithLogger sets the logger. Instances log through a child logger named
// after the plugin.
func WithLogger(l *debug.Logger) Option {
	return func(i *Instance) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithToolkit sets the window system used by OpenUI.
func WithToolkit(tk ui.Toolkit) Option {
	return func(i *Instance) {
		i.toolkit = tk
	}
}

// WithModelOptions passes engine options to the parameter model.
func WithModelOptions(opts ...model.Option) Option {
	return func(i *Instance) {
		i.modelOpts = append(i.modelOpts, opts...)
	}
}

// Instance is one running plugin. It implements Binding.
//
// Process belongs to the audio thread. SetParameter belongs to the one host
// automation thread. LoadState and LoadPreset may come from any thread; their
// edits are serialized onto a lane of their own. GetNormalized,
// FormatDisplay, SaveState and SetBypass are safe from any thread. OpenUI
// and CloseUI belong to the UI thread and never touch audio state.
type Instance struct {
	plugin    Plugin
	info      Info
	classID   uuid.UUID
	logger    *debug.Logger
	toolkit   ui.Toolkit
	modelOpts []model.Option

	model    *model.Model
	state    *state.Manager
	ctx      *process.Context
	maxBlock int

	// Per-chunk channel headers, sized at Initialize.
	inChunk  [][]float32
	outChunk [][]float32

	lifecycle  atomic.Int32
	uiAttached atomic.Bool
	bypass     atomic.Bool
	processed  atomic.Uint64

	// Blocks dropped for not matching the bus layout, and the shape of the
	// last one. Reported off the audio thread.
	rejected    atomic.Uint64
	reported    atomic.Uint64
	rejectedIn  atomic.Int32
	rejectedOut atomic.Int32
	rejectedLen atomic.Int32

	uiMu    sync.Mutex
	session *ui.Session
}

var _ Binding = (*Instance)(nil)

// NewInstance builds the parameter model for p.
func NewInstance(p Plugin, opts ...Option) (*Instance, error) {
	info := p.Info()
	if err := info.Validate(); err != nil {
		return nil, err
	}

	i := &Instance{
		plugin:  p,
		info:    info,
		classID: info.UID(),
		logger:  debug.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	i.logger = i.logger.WithPrefix(info.Name)

	table, err := p.Parameters()
	if err != nil {
		return nil, fmt.Errorf("plugin %s: parameters: %w", info.ID, err)
	}
	if i.model, err = model.New(table, i.modelOpts...); err != nil {
		return nil, fmt.Errorf("plugin %s: %w", info.ID, err)
	}
	i.state = state.NewManager(i.model.Bridge())
	if sp, ok := p.(Stateful); ok {
		i.state.SetCustomState(sp.SaveCustomState, sp.LoadCustomState)
	}
	i.lifecycle.Store(int32(StateCreated))

	i.logger.Debug("created %s with %d parameters and %d fields",
		i.classID, table.Len(), table.FieldCount())
	return i, nil
}

// State returns the current lifecycle state.
func (i *Instance) State() State {
	return State(i.lifecycle.Load())
}

func (i *Instance) transition(from []State, to State) error {
	cur := i.State()
	for _, f := range from {
		if cur == f {
			if i.lifecycle.CompareAndSwap(int32(f), int32(to)) {
				i.logger.Debug("%s -> %s", f, to)
				return nil
			}
			break
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur, to)
}

// Initialize fixes the sample rate and maximum block size. It is allowed
// while created or initialized, never while processing.
func (i *Instance) Initialize(sampleRate float64, maxBlockSize int) error {
	if s := i.State(); s != StateCreated && s != StateInitialized {
		return fmt.Errorf("%w: initialize while %s", ErrInvalidTransition, s)
	}
	if maxBlockSize <= 0 {
		maxBlockSize = i.model.Config().MaxBlockSize
	}

	if err := i.model.Prepare(sampleRate, maxBlockSize); err != nil {
		return err
	}
	if err := i.plugin.Initialize(sampleRate, maxBlockSize); err != nil {
		return fmt.Errorf("plugin %s: initialize: %w", i.info.ID, err)
	}

	buses := i.plugin.Buses()
	i.maxBlock = maxBlockSize
	i.ctx = process.NewContext(maxBlockSize, i.model.Table().Len())
	i.ctx.SampleRate = sampleRate
	i.inChunk = make([][]float32, buses.InputChannels())
	i.outChunk = make([][]float32, buses.OutputChannels())

	if err := i.transition([]State{StateCreated, StateInitialized}, StateInitialized); err != nil {
		return err
	}
	i.logger.Info("initialized at %.0f Hz, max block %d, smoothing %d samples",
		sampleRate, maxBlockSize, i.model.SmoothingSamples())
	return nil
}

// SetActive starts or stops processing. Requesting the current state is a
// no-op. Deactivating drops pending ramps.
func (i *Instance) SetActive(active bool) error {
	if active {
		if i.State() == StateProcessing {
			return nil
		}
		return i.transition([]State{StateInitialized}, StateProcessing)
	}

	if i.State() == StateInitialized {
		return nil
	}
	if err := i.transition([]State{StateProcessing}, StateInitialized); err != nil {
		return err
	}
	i.model.Reset()
	i.reportRejected()
	return nil
}

// Process runs one host block. Outside the processing state the output is
// silence. Blocks larger than the prepared size are split; edits are drained
// once per host block, so an edit made while a chunk runs waits for the next
// host block. Buffers that do not fit the bus layout give silence and
// bus.ErrChannelMismatch.
func (i *Instance) Process(input, output [][]float32) error {
	frames := 0
	if len(output) > 0 {
		frames = len(output[0])
	}

	if i.State() != StateProcessing {
		clearOutput(output)
		return nil
	}

	if !i.plugin.Buses().Fits(input, output, frames) {
		clearOutput(output)
		i.rejectedIn.Store(int32(len(input)))
		i.rejectedOut.Store(int32(len(output)))
		i.rejectedLen.Store(int32(frames))
		i.rejected.Add(1)
		return bus.ErrChannelMismatch
	}

	i.model.BeginBlock()
	if frames == 0 {
		i.model.FillBlock(0)
		return nil
	}

	bypassed := i.bypass.Load()
	for start := 0; start < frames; start += i.maxBlock {
		end := min(start+i.maxBlock, frames)
		for ch := range i.inChunk {
			i.inChunk[ch] = input[ch][start:end]
		}
		for ch := range i.outChunk {
			i.outChunk[ch] = output[ch][start:end]
		}

		views := i.model.FillBlock(end - start)
		i.ctx.Bind(i.inChunk, i.outChunk, views)
		if bypassed {
			i.ctx.PassThrough()
		} else {
			i.plugin.ProcessAudio(i.ctx)
		}
	}
	i.processed.Add(uint64(frames))
	return nil
}

func clearOutput(output [][]float32) {
	for ch := range output {
		clear(output[ch])
	}
}

// reportRejected logs blocks dropped since the last report.
func (i *Instance) reportRejected() {
	total := i.rejected.Load()
	prev := i.reported.Swap(total)
	if total == prev {
		return
	}
	buses := i.plugin.Buses()
	i.logger.Warn("dropped %d blocks not matching %d in / %d out channels; last had %d in, %d out, %d frames",
		total-prev, buses.InputChannels(), buses.OutputChannels(),
		i.rejectedIn.Load(), i.rejectedOut.Load(), i.rejectedLen.Load())
}

// RejectedBlocks returns the number of blocks dropped for not matching the
// bus layout.
func (i *Instance) RejectedBlocks() uint64 {
	return i.rejected.Load()
}

// SetBypass toggles bypass. A bypassed instance copies input to output but
// keeps draining edits and advancing ramps. It takes effect at the next
// host block.
func (i *Instance) SetBypass(bypass bool) {
	if i.bypass.Swap(bypass) != bypass {
		i.logger.Debug("bypass %t", bypass)
	}
}

// Bypassed reports whether the instance is bypassed.
func (i *Instance) Bypassed() bool {
	return i.bypass.Load()
}

// SetParameter queues a host automation edit. It always succeeds; values
// are clamped and unknown ids ignored. Calls must come from a single thread.
func (i *Instance) SetParameter(id uint32, normalized float64) {
	i.model.SetNormalized(id, normalized, param.OriginHost)
}

// GetNormalized returns the most recent normalized value of id.
func (i *Instance) GetNormalized(id uint32) float64 {
	return i.model.GetNormalized(id)
}

// FormatDisplay returns the display text of id's current value, e.g.
// "-6.0 dB". Unknown ids give an empty string.
func (i *Instance) FormatDisplay(id uint32) string {
	d := i.model.Table().Get(id)
	if d == nil {
		return ""
	}
	return d.Format(i.model.GetPlain(id))
}

// ParameterCount returns the number of host-visible parameters.
func (i *Instance) ParameterCount() int {
	return i.model.Table().Len()
}

// ParameterInfo returns the descriptor at index.
func (i *Instance) ParameterInfo(index int) (*param.Descriptor, bool) {
	d := i.model.Table().At(index)
	return d, d != nil
}

// OpenUI opens the editor under parent. A failure is logged and returned;
// audio processing is unaffected either way. Opening an open editor is a
// no-op.
func (i *Instance) OpenUI(parent ui.ParentHandle) error {
	i.uiMu.Lock()
	defer i.uiMu.Unlock()

	if i.State() == StateDestroyed {
		return fmt.Errorf("%w: open UI while destroyed", ErrInvalidTransition)
	}
	if i.session != nil {
		return nil
	}
	editor, ok := i.plugin.(Editor)
	if !ok {
		return ErrNoEditor
	}
	if i.toolkit == nil {
		return ErrNoToolkit
	}

	opts := ui.WindowOptions{Title: i.info.Name, Size: editor.EditorSize()}
	s, err := ui.Open(i.toolkit, parent, opts, i.model.Bridge(), editor.Render)
	if err != nil {
		i.logger.Warn("editor did not open: %v", err)
		return err
	}
	i.session = s
	i.uiAttached.Store(true)
	i.logger.Debug("editor attached %dx%d", opts.Size.Width, opts.Size.Height)
	return nil
}

// CloseUI closes the editor if one is open.
func (i *Instance) CloseUI() error {
	i.uiMu.Lock()
	defer i.uiMu.Unlock()
	return i.closeUILocked()
}

func (i *Instance) closeUILocked() error {
	if i.session == nil {
		return nil
	}
	s := i.session
	i.session = nil
	i.uiAttached.Store(false)
	i.logger.Debug("editor detached")
	return s.Close()
}

// UIAttached reports whether an editor is open.
func (i *Instance) UIAttached() bool {
	return i.uiAttached.Load()
}

// Session returns the open editor session, or nil.
func (i *Instance) Session() *ui.Session {
	i.uiMu.Lock()
	defer i.uiMu.Unlock()
	return i.session
}

// SaveState writes the current parameter and field values.
func (i *Instance) SaveState(w io.Writer) error {
	return i.state.Save(w)
}

// LoadState restores saved values. They reach the DSP at the next block
// according to the restore policy.
func (i *Instance) LoadState(r io.Reader) error {
	if err := i.state.Load(r); err != nil {
		i.logger.Warn("state restore failed: %v", err)
		return err
	}
	i.logger.Info("state restored (%s)", i.model.Config().Restore)
	return nil
}

// LoadPreset applies a JSON preset like LoadState does.
func (i *Instance) LoadPreset(p *state.Preset) error {
	if err := p.Apply(i.model.Bridge()); err != nil {
		return err
	}
	i.logger.Info("preset %q applied", p.Name)
	return nil
}

// Destroy closes the editor and stops processing for good.
func (i *Instance) Destroy() {
	if err := i.CloseUI(); err != nil {
		i.logger.Warn("closing editor: %v", err)
	}
	prev := State(i.lifecycle.Swap(int32(StateDestroyed)))
	if prev != StateDestroyed {
		i.logger.Debug("%s -> %s", prev, StateDestroyed)
		i.reportRejected()
	}
}

// Info returns the plugin metadata.
func (i *Instance) Info() Info {
	return i.info
}

// ClassID returns the class id hosts register the plugin under.
func (i *Instance) ClassID() uuid.UUID {
	return i.classID
}

// Model returns the parameter model.
func (i *Instance) Model() *model.Model {
	return i.model
}

// ProcessedFrames returns the number of frames processed so far.
func (i *Instance) ProcessedFrames() uint64 {
	return i.processed.Load()
}
