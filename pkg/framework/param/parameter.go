package param

import (
	"errors"
	"fmt"
	"math"

	"github.com/justyntemme/paramsync/pkg/dsp/gain"
)

// Errors returned while validating descriptors and tables.
var (
	ErrNoParameters   = errors.New("param: descriptor set is empty")
	ErrNonFiniteRange = errors.New("param: range bounds must be finite with min <= max")
	ErrInvalidCurve   = errors.New("param: curve exponent must be finite and positive")
	ErrDuplicateID    = errors.New("param: duplicate parameter id")
)

// Unit selects how a plain value is presented to the DSP.
type Unit int

const (
	// UnitGeneric passes the plain value through unchanged.
	UnitGeneric Unit = iota
	// UnitDecibels converts the plain dB value to a linear coefficient.
	UnitDecibels
)

// Flags for parameters
const (
	CanAutomate uint32 = 1 << 0
	IsReadOnly  uint32 = 1 << 1
	IsHidden    uint32 = 1 << 4
	IsBypass    uint32 = 1 << 16
)

// Descriptor is the static metadata of one automatable parameter.
// It is immutable once built and shared by pointer between the audio thread,
// the UI thread and the host.
type Descriptor struct {
	ID        uint32
	Name      string
	ShortName string
	Unit      Unit
	UnitLabel string
	Min       float64
	Max       float64
	Default   float64 // plain
	Curve     Curve
	Flags     uint32

	// Instant parameters skip smoothing and jump to new targets.
	Instant bool

	formatFunc func(float64) string
}

// Validate checks the construction-time invariants.
func (d *Descriptor) Validate() error {
	if !finite(d.Min) || !finite(d.Max) || d.Min > d.Max {
		return fmt.Errorf("%w: %q [%v, %v]", ErrNonFiniteRange, d.Name, d.Min, d.Max)
	}
	if !d.Curve.Valid() {
		return fmt.Errorf("%w: %q exponent %v", ErrInvalidCurve, d.Name, d.Curve.Exponent)
	}
	if !finite(d.Default) {
		return fmt.Errorf("%w: %q default %v", ErrNonFiniteRange, d.Name, d.Default)
	}
	return nil
}

// ClampPlain clamps a plain value into [Min, Max].
func (d *Descriptor) ClampPlain(plain float64) float64 {
	return clamp(plain, d.Min, d.Max)
}

// ToPlain converts normalized to plain through the descriptor's curve.
func (d *Descriptor) ToPlain(normalized float64) float64 {
	return d.Curve.ToPlain(normalized, d.Min, d.Max)
}

// ToNormalized converts plain to normalized through the descriptor's curve.
func (d *Descriptor) ToNormalized(plain float64) float64 {
	return d.Curve.ToNormalized(plain, d.Min, d.Max)
}

// DefaultNormalized returns the default value in normalized form.
func (d *Descriptor) DefaultNormalized() float64 {
	return d.ToNormalized(d.Default)
}

// ProcessValue maps a plain value into the domain the DSP multiplies with.
func (d *Descriptor) ProcessValue(plain float64) float64 {
	plain = d.ClampPlain(plain)
	if d.Unit == UnitDecibels {
		return gain.DbToLinear(plain)
	}
	return plain
}

// Format returns the display text for a plain value.
func (d *Descriptor) Format(plain float64) string {
	if d.formatFunc != nil {
		return d.formatFunc(plain)
	}
	return FixedFormatter(d.UnitLabel)(plain)
}

// FormatNormalized returns the display text for a normalized value.
func (d *Descriptor) FormatNormalized(normalized float64) string {
	return d.Format(d.ToPlain(normalized))
}

// Snapshot builds a bridge snapshot for this parameter, clamping the input.
func (d *Descriptor) Snapshot(normalized float64, origin Origin) Snapshot {
	n := ClampNormalized(normalized)
	return Snapshot{
		ID:         d.ID,
		Normalized: n,
		Plain:      d.ToPlain(n),
		Origin:     origin,
	}
}

// PlainSnapshot builds a snapshot that keeps the clamped plain value as
// given instead of recomputing it from the normalized one.
func (d *Descriptor) PlainSnapshot(plain float64, origin Origin) Snapshot {
	p := d.ClampPlain(plain)
	return Snapshot{
		ID:         d.ID,
		Normalized: d.ToNormalized(p),
		Plain:      p,
		Origin:     origin,
	}
}

// CanAutomate reports whether hosts may automate the parameter.
func (d *Descriptor) CanAutomate() bool {
	return d.Flags&CanAutomate != 0
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
