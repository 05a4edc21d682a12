// Package gain provides decibel conversion and per-sample gain application.
package gain

import (
	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-vecmath"
)

// MinDB is the floor below which a level is treated as silence.
const MinDB = -200.0

// LinearToDb converts a linear amplitude value to decibels.
// Returns MinDB for values <= 0.
func LinearToDb(linear float64) float64 {
	if !(linear > 0) {
		return MinDB
	}
	return max(core.LinearToDB(linear), MinDB)
}

// DbToLinear converts a decibel value to linear amplitude.
// Values <= MinDB return 0. 0 dB maps to exactly 1.
func DbToLinear(db float64) float64 {
	if !(db > MinDB) {
		return 0
	}
	return core.DBToLinear(db)
}

// CombineEnvelopes writes the per-sample product a[i]*b[i] into dst.
// All slices are truncated to the shortest length.
func CombineEnvelopes(dst, a, b []float64) {
	n := minLen(len(dst), len(a), len(b))
	if n == 0 {
		return
	}
	vecmath.MulBlock(dst[:n], a[:n], b[:n])
}

// ScaleEnvelope multiplies dst in place by a per-sample envelope.
func ScaleEnvelope(dst, env []float64) {
	n := len(dst)
	if len(env) < n {
		n = len(env)
	}
	if n == 0 {
		return
	}
	vecmath.MulBlockInPlace(dst[:n], env[:n])
}

// ApplyEnvelope writes src[i]*env[i] into dst.
func ApplyEnvelope(dst, src []float32, env []float64) {
	n := minLen(len(dst), len(src), len(env))
	for i := 0; i < n; i++ {
		dst[i] = src[i] * float32(env[i])
	}
}

func minLen(a, b, c int) int {
	n := a
	if b < n {
		n = b
	}
	if c < n {
		n = c
	}
	return n
}
