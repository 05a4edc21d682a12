package ui

import (
	"errors"
	"fmt"

	"github.com/justyntemme/paramsync/pkg/framework/bridge"
)

// ErrUIOpen wraps any failure reported by a toolkit while opening a window.
var ErrUIOpen = errors.New("ui: failed to open editor")

// ParentHandle is the host's native parent window handle.
type ParentHandle uintptr

// Size is an editor size in logical pixels.
type Size struct {
	Width  int
	Height int
}

// WindowOptions describes the window a toolkit should create.
type WindowOptions struct {
	Title string
	Size  Size
}

// Widgets is the immediate mode surface a toolkit offers the frame callback.
type Widgets interface {
	Label(text string)
	// Slider draws a 0..1 slider and returns the new value and whether the
	// user moved it this frame.
	Slider(label string, value float64) (float64, bool)
}

// FrameFunc is called by the toolkit once per UI frame on the UI thread.
type FrameFunc func(w Widgets)

// Window is an open editor window.
type Window interface {
	Close() error
}

// Toolkit is the external window system.
type Toolkit interface {
	Open(parent ParentHandle, opts WindowOptions, frame FrameFunc) (Window, error)
}

// RenderFunc draws one frame of a plugin editor. It receives the mirror and
// the toolkit widgets and nothing else.
type RenderFunc func(m *Mirror, w Widgets)

// Session is one open editor. Every frame polls the mirror exactly once and
// then renders.
type Session struct {
	mirror *Mirror
	render RenderFunc
	window Window
}

// Open creates a mirror over the bridge and asks the toolkit for a window
// whose frames drive render.
func Open(tk Toolkit, parent ParentHandle, opts WindowOptions, b *bridge.Bridge, render RenderFunc) (*Session, error) {
	if tk == nil {
		return nil, fmt.Errorf("%w: no toolkit", ErrUIOpen)
	}

	s := &Session{
		mirror: NewMirror(b),
		render: render,
	}
	w, err := tk.Open(parent, opts, s.Frame)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUIOpen, err)
	}
	s.window = w
	return s, nil
}

// Frame runs one UI frame.
func (s *Session) Frame(w Widgets) {
	s.mirror.Poll()
	if s.render != nil {
		s.render(s.mirror, w)
	}
}

// Mirror returns the session's mirror.
func (s *Session) Mirror() *Mirror {
	return s.mirror
}

// Close closes the window.
func (s *Session) Close() error {
	if s.window == nil {
		return nil
	}
	w := s.window
	s.window = nil
	return w.Close()
}
