package ui

import "errors"

// ErrWindowClosed is returned when closing a headless window twice.
var ErrWindowClosed = errors.New("ui: window already closed")

// Headless is a toolkit without a display. Frames run when the caller
// ticks a window, which makes editors testable and scriptable.
type Headless struct {
	failOpen error
	windows  []*HeadlessWindow
}

// NewHeadless creates a headless toolkit.
func NewHeadless() *Headless {
	return &Headless{}
}

// FailOpen makes every later Open fail with err. Nil restores normal
// behavior.
func (h *Headless) FailOpen(err error) {
	h.failOpen = err
}

// Open implements Toolkit.
func (h *Headless) Open(parent ParentHandle, opts WindowOptions, frame FrameFunc) (Window, error) {
	if h.failOpen != nil {
		return nil, h.failOpen
	}
	w := &HeadlessWindow{
		parent: parent,
		opts:   opts,
		frame:  frame,
		moves:  make(map[string]float64),
		values: make(map[string]float64),
	}
	h.windows = append(h.windows, w)
	return w, nil
}

// Windows returns every window opened so far.
func (h *Headless) Windows() []*HeadlessWindow {
	return h.windows
}

// Last returns the most recently opened window, or nil.
func (h *Headless) Last() *HeadlessWindow {
	if len(h.windows) == 0 {
		return nil
	}
	return h.windows[len(h.windows)-1]
}

// HeadlessWindow records what the frame callback draws.
type HeadlessWindow struct {
	parent ParentHandle
	opts   WindowOptions
	frame  FrameFunc
	closed bool
	frames int

	labels []string
	moves  map[string]float64
	values map[string]float64
}

// Options returns the options the window was opened with.
func (w *HeadlessWindow) Options() WindowOptions { return w.opts }

// Parent returns the parent handle the window was opened with.
func (w *HeadlessWindow) Parent() ParentHandle { return w.parent }

// Closed reports whether Close was called.
func (w *HeadlessWindow) Closed() bool { return w.closed }

// Frames returns the number of frames run.
func (w *HeadlessWindow) Frames() int { return w.frames }

// Tick runs one frame. It does nothing once the window is closed.
func (w *HeadlessWindow) Tick() {
	if w.closed || w.frame == nil {
		return
	}
	w.labels = w.labels[:0]
	w.frames++
	w.frame(w)
}

// Move makes the slider with label report value during the next frame.
func (w *HeadlessWindow) Move(label string, value float64) {
	w.moves[label] = value
}

// Labels returns the labels drawn during the last frame.
func (w *HeadlessWindow) Labels() []string {
	out := make([]string, len(w.labels))
	copy(out, w.labels)
	return out
}

// SliderValue returns the value a slider was last drawn with.
func (w *HeadlessWindow) SliderValue(label string) (float64, bool) {
	v, ok := w.values[label]
	return v, ok
}

// Label implements Widgets.
func (w *HeadlessWindow) Label(text string) {
	w.labels = append(w.labels, text)
}

// Slider implements Widgets.
func (w *HeadlessWindow) Slider(label string, value float64) (float64, bool) {
	if v, ok := w.moves[label]; ok {
		delete(w.moves, label)
		w.values[label] = v
		return v, true
	}
	w.values[label] = value
	return value, false
}

// Close implements Window.
func (w *HeadlessWindow) Close() error {
	if w.closed {
		return ErrWindowClosed
	}
	w.closed = true
	return nil
}
