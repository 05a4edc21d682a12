package debug

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeChannel(t *testing.T) {
	t.Run("Sine", func(t *testing.T) {
		buf := make([]float32, 4800)
		for i := range buf {
			buf[i] = float32(0.5 * math.Sin(2*math.Pi*float64(i)/48))
		}
		s := AnalyzeChannel(buf)

		assert.InDelta(t, 0.5, s.Peak, 1e-3)
		assert.InDelta(t, 0.5/math.Sqrt2, s.RMS, 1e-3)
		assert.InDelta(t, -6.02, s.PeakDBFS, 0.02)
		assert.True(t, s.Clean())
		assert.False(t, s.Silent())
	})

	t.Run("Silence", func(t *testing.T) {
		s := AnalyzeChannel(make([]float32, 16))
		assert.True(t, s.Silent())
		assert.Zero(t, s.RMS)
	})

	t.Run("Empty", func(t *testing.T) {
		s := AnalyzeChannel(nil)
		assert.Zero(t, s.Samples)
		assert.True(t, s.Silent())
	})

	t.Run("NonFinite", func(t *testing.T) {
		nan := float32(math.NaN())
		inf := float32(math.Inf(1))
		s := AnalyzeChannel([]float32{1, nan, -inf, -1})

		assert.Equal(t, 1, s.NaNs)
		assert.Equal(t, 1, s.Infs)
		assert.Equal(t, 1.0, s.Peak)
		assert.Equal(t, 1.0, s.RMS)
		assert.False(t, s.Clean())
	})
}

func TestAnalyze(t *testing.T) {
	a := Analyze([][]float32{{1, -1}, {0, 0}})
	assert.Len(t, a.Channels, 2)
	assert.True(t, a.Clean())
	assert.Equal(t, "ch0: peak 0.0 dBFS  rms 0.0 dBFS\nch1: peak -inf dBFS  rms -inf dBFS\n", a.String())

	dirty := Analyze([][]float32{{float32(math.NaN())}})
	assert.False(t, dirty.Clean())
	assert.Contains(t, dirty.String(), "nan 1  inf 0")
}
