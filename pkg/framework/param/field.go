package param

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Field is a plain value that is part of the model but not exposed to host
// automation. It is read and written through a single atomic word, without
// smoothing, from any thread.
type Field struct {
	ID      uint32
	Name    string
	Min     float64
	Max     float64
	Default float64

	value atomic.Uint64
}

// NewField creates a field holding its default value.
func NewField(id uint32, name string, min, max, def float64) *Field {
	f := &Field{
		ID:      id,
		Name:    name,
		Min:     min,
		Max:     max,
		Default: def,
	}
	f.Reset()
	return f
}

// Get returns the current value.
func (f *Field) Get() float64 {
	return math.Float64frombits(f.value.Load())
}

// Set stores a value clamped to [Min, Max].
func (f *Field) Set(value float64) {
	f.value.Store(math.Float64bits(clamp(value, f.Min, f.Max)))
}

// Reset restores the default value.
func (f *Field) Reset() {
	f.Set(f.Default)
}

func (f *Field) validate() error {
	if !finite(f.Min) || !finite(f.Max) || f.Min > f.Max || !finite(f.Default) {
		return fmt.Errorf("%w: field %q [%v, %v]", ErrNonFiniteRange, f.Name, f.Min, f.Max)
	}
	return nil
}
