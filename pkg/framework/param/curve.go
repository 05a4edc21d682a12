package param

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/core"
)

// CurveKind selects the shape of a normalized to plain mapping.
type CurveKind int

const (
	// CurveLinear maps normalized values proportionally onto the range.
	CurveLinear CurveKind = iota
	// CurvePower maps normalized values through a power law.
	CurvePower
)

// String returns the curve kind name.
func (k CurveKind) String() string {
	switch k {
	case CurveLinear:
		return "Linear"
	case CurvePower:
		return "Power"
	default:
		return "Unknown"
	}
}

// Curve maps normalized values in [0,1] onto a plain range and back.
// A Curve is a plain value type and carries no state.
type Curve struct {
	Kind     CurveKind
	Exponent float64
}

// Linear returns the identity curve.
func Linear() Curve {
	return Curve{Kind: CurveLinear, Exponent: 1}
}

// Power returns a power-law curve: plain = min + (max-min) * n^exponent.
// Exponents below 1 give more slider travel to the top of the range, which
// is the usual taper for decibel gain controls (Power(0.15) puts the
// midpoint of a -90..3 dB range near -6 dB).
func Power(exponent float64) Curve {
	return Curve{Kind: CurvePower, Exponent: exponent}
}

// Valid reports whether the curve can be evaluated.
func (c Curve) Valid() bool {
	switch c.Kind {
	case CurveLinear:
		return true
	case CurvePower:
		return c.Exponent > 0 && !math.IsInf(c.Exponent, 0) && !math.IsNaN(c.Exponent)
	default:
		return false
	}
}

// ToPlain converts a normalized value to the plain range [min, max].
// Out of range input is clamped first.
func (c Curve) ToPlain(normalized, min, max float64) float64 {
	n := ClampNormalized(normalized)
	if max <= min {
		return min
	}

	if c.Kind == CurvePower && c.Exponent != 1 {
		n = math.Pow(n, c.Exponent)
	}

	plain := min + (max-min)*n
	if plain > max {
		plain = max
	}
	return plain
}

// ToNormalized converts a plain value back to [0,1]. It is the inverse of
// ToPlain up to floating point rounding.
func (c Curve) ToNormalized(plain, min, max float64) float64 {
	if max <= min {
		return 0
	}

	x := (clamp(plain, min, max) - min) / (max - min)
	if c.Kind == CurvePower && c.Exponent != 1 {
		x = math.Pow(x, 1/c.Exponent)
	}
	return ClampNormalized(x)
}

// ClampNormalized clamps a value into [0,1]. NaN maps to 0.
func ClampNormalized(value float64) float64 {
	return clamp(value, 0, 1)
}

// clamp is core.Clamp with NaN mapped to min.
func clamp(value, min, max float64) float64 {
	if math.IsNaN(value) {
		return min
	}
	return core.Clamp(value, min, max)
}
