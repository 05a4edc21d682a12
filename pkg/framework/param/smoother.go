// Package param provides parameter descriptors, response curves and
// per-sample smoothing for real-time plugin parameters.
package param

import (
	"math"
)

// SmoothingType defines different parameter smoothing algorithms.
type SmoothingType int

const (
	// LinearSmoothing uses a constant additive step
	LinearSmoothing SmoothingType = iota
	// LogarithmicSmoothing uses a constant ratio per sample (better for
	// frequency and gain coefficients). Ramps that cross or touch zero fall
	// back to linear steps.
	LogarithmicSmoothing
)

// Smoother moves a value toward a target over a fixed number of samples.
// It is owned by the audio thread and never allocates.
//
// After SetTarget(t, d), exactly d calls to Next land on t and every later
// call returns t again. When no ramp is pending, current == target.
type Smoother struct {
	smoothingType SmoothingType
	current       float64
	target        float64
	remaining     int

	step      float64
	geometric bool
	rising    bool
}

// NewSmoother creates a new parameter smoother at rest on 0.
func NewSmoother(smoothingType SmoothingType) *Smoother {
	return &Smoother{smoothingType: smoothingType}
}

// SetType changes the smoothing algorithm used by the next SetTarget.
func (s *Smoother) SetType(smoothingType SmoothingType) {
	s.smoothingType = smoothingType
}

// Reset jumps to value and cancels any pending ramp.
func (s *Smoother) Reset(value float64) {
	s.current = value
	s.target = value
	s.remaining = 0
	s.step = 0
	s.geometric = false
}

// SetTarget starts a ramp from the current value to target that completes
// after duration calls to Next. A ramp already in progress is replaced and
// the new one starts from wherever the old one had got to.
func (s *Smoother) SetTarget(target float64, duration int) {
	if target == s.current || duration <= 0 {
		s.Reset(target)
		return
	}

	s.target = target
	s.remaining = duration
	s.rising = target > s.current
	s.geometric = s.smoothingType == LogarithmicSmoothing && sameSignNonZero(s.current, target)

	if s.geometric {
		s.step = math.Pow(target/s.current, 1/float64(duration))
	} else {
		s.step = (target - s.current) / float64(duration)
	}
}

// Next advances one sample and returns the new value.
func (s *Smoother) Next() float64 {
	if s.remaining == 0 {
		return s.target
	}

	s.remaining--
	if s.remaining == 0 {
		s.current = s.target
		return s.current
	}

	if s.geometric {
		s.current *= s.step
	} else {
		s.current += s.step
	}

	// Rounding must never carry the ramp past its target.
	if (s.rising && s.current > s.target) || (!s.rising && s.current < s.target) {
		s.current = s.target
	}
	return s.current
}

// Fill writes one value per sample into buf.
func (s *Smoother) Fill(buf []float64) {
	if s.remaining == 0 {
		v := s.target
		for i := range buf {
			buf[i] = v
		}
		return
	}

	for i := range buf {
		buf[i] = s.Next()
	}
}

// Current returns the most recently produced value.
func (s *Smoother) Current() float64 {
	return s.current
}

// Target returns the value the smoother is heading for.
func (s *Smoother) Target() float64 {
	return s.target
}

// Remaining returns the number of steps left in the current ramp.
func (s *Smoother) Remaining() int {
	return s.remaining
}

// IsSmoothing returns true if a ramp is in progress.
func (s *Smoother) IsSmoothing() bool {
	return s.remaining > 0
}

// SamplesForTime converts a smoothing time in milliseconds to a whole number
// of samples. Any positive time yields at least one sample.
func SamplesForTime(sampleRate, timeMs float64) int {
	if sampleRate <= 0 || timeMs <= 0 {
		return 0
	}
	samples := int(math.Round(sampleRate * timeMs / 1000.0))
	if samples < 1 {
		samples = 1
	}
	return samples
}

func sameSignNonZero(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}
