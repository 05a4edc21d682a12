package ui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/paramsync/pkg/framework/param"
)

func renderSliders(m *Mirror, w Widgets) {
	for i := 0; i < m.Len(); i++ {
		p := m.ParamAt(i)
		w.Label(p.Name())
		w.Label(p.Text())
		if v, changed := w.Slider(p.Name(), p.Normalized()); changed {
			p.SetFromNormalized(v)
		}
	}
}

func TestSession(t *testing.T) {
	t.Run("FramePollsThenRenders", func(t *testing.T) {
		m := newTestModel(t)
		tk := NewHeadless()
		opts := WindowOptions{Title: "test", Size: Size{Width: 500, Height: 300}}

		var seen []bool
		s, err := Open(tk, 7, opts, m.Bridge(), func(mirror *Mirror, w Widgets) {
			seen = append(seen, mirror.Param(idMaster).UpdatedByHost())
		})
		require.NoError(t, err)

		win := tk.Last()
		require.NotNil(t, win)
		assert.Equal(t, opts, win.Options())
		assert.Equal(t, ParentHandle(7), win.Parent())

		m.SetPlain(idMaster, -3, param.OriginHost)
		m.ProcessBlock(16)
		win.Tick()
		win.Tick()

		assert.Equal(t, []bool{true, false}, seen)
		assert.Equal(t, uint64(2), s.Mirror().Polls())
		assert.Equal(t, 2, win.Frames())
	})

	t.Run("SliderSubmitsUIEdit", func(t *testing.T) {
		m := newTestModel(t)
		tk := NewHeadless()
		_, err := Open(tk, 0, WindowOptions{}, m.Bridge(), renderSliders)
		require.NoError(t, err)

		win := tk.Last()
		win.Tick()
		assert.Equal(t, []string{"gain master", "0.0 dB", "mix", "50.0 %"}, win.Labels())

		win.Move("mix", 0.75)
		win.Tick()
		assert.Equal(t, "50.0 %", win.Labels()[3])
		win.Tick()
		assert.Equal(t, "75.0 %", win.Labels()[3])

		m.ProcessBlock(16)
		assert.Equal(t, 75.0, m.Current(idMix))

		v, ok := win.SliderValue("mix")
		require.True(t, ok)
		assert.Equal(t, 0.75, v)
	})

	t.Run("OpenFailure", func(t *testing.T) {
		m := newTestModel(t)
		tk := NewHeadless()
		boom := errors.New("no display")
		tk.FailOpen(boom)

		s, err := Open(tk, 0, WindowOptions{}, m.Bridge(), renderSliders)
		assert.Nil(t, s)
		assert.ErrorIs(t, err, ErrUIOpen)
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, tk.Windows())

		_, err = Open(nil, 0, WindowOptions{}, m.Bridge(), renderSliders)
		assert.ErrorIs(t, err, ErrUIOpen)
	})

	t.Run("Close", func(t *testing.T) {
		m := newTestModel(t)
		tk := NewHeadless()
		s, err := Open(tk, 0, WindowOptions{}, m.Bridge(), renderSliders)
		require.NoError(t, err)

		win := tk.Last()
		require.NoError(t, s.Close())
		assert.True(t, win.Closed())
		assert.NoError(t, s.Close())

		win.Tick()
		assert.Zero(t, win.Frames())
		assert.ErrorIs(t, win.Close(), ErrWindowClosed)
	})
}
