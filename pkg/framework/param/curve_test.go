package param

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurveRoundTrip(t *testing.T) {
	curves := []Curve{Linear(), Power(0.15), Power(0.5), Power(2), Power(3)}
	ranges := [][2]float64{{-90, 3}, {0, 1}, {20, 20000}, {-1, 1}}

	for _, c := range curves {
		for _, r := range ranges {
			name := fmt.Sprintf("%s(%v)/%v..%v", c.Kind, c.Exponent, r[0], r[1])
			t.Run(name, func(t *testing.T) {
				for i := 0; i <= 1000; i++ {
					n := float64(i) / 1000
					plain := c.ToPlain(n, r[0], r[1])
					require.GreaterOrEqual(t, plain, r[0])
					require.LessOrEqual(t, plain, r[1])
					require.InDelta(t, n, c.ToNormalized(plain, r[0], r[1]), 1e-5, "n = %v", n)
				}
			})
		}
	}
}

func TestCurveMonotonic(t *testing.T) {
	for _, c := range []Curve{Linear(), Power(0.15), Power(2)} {
		prev := math.Inf(-1)
		for i := 0; i <= 10000; i++ {
			plain := c.ToPlain(float64(i)/10000, -90, 3)
			require.GreaterOrEqual(t, plain, prev, "%s at step %d", c.Kind, i)
			prev = plain
		}
	}
}

func TestCurveEndpoints(t *testing.T) {
	c := Power(0.15)

	assert.Equal(t, 3.0, c.ToPlain(1, -90, 3))
	assert.Equal(t, -90.0, c.ToPlain(0, -90, 3))
	assert.Equal(t, 1.0, c.ToNormalized(3, -90, 3))
	assert.Equal(t, 0.0, c.ToNormalized(-90, -90, 3))

	t.Run("Clamping", func(t *testing.T) {
		assert.Equal(t, 3.0, c.ToPlain(1.5, -90, 3))
		assert.Equal(t, -90.0, c.ToPlain(-0.2, -90, 3))
		assert.Equal(t, -90.0, c.ToPlain(math.NaN(), -90, 3))
		assert.Equal(t, 1.0, c.ToNormalized(12, -90, 3))
		assert.Equal(t, 0.0, c.ToNormalized(-120, -90, 3))
	})

	t.Run("DegenerateRange", func(t *testing.T) {
		assert.Equal(t, 5.0, Linear().ToPlain(0.7, 5, 5))
		assert.Equal(t, 0.0, Linear().ToNormalized(5, 5, 5))
	})

	t.Run("GainTaper", func(t *testing.T) {
		// The midpoint of the slider sits close to -6 dB.
		assert.InDelta(t, -6.3, c.ToPlain(0.5, -90, 3), 0.5)
	})
}

func TestCurveValid(t *testing.T) {
	assert.True(t, Linear().Valid())
	assert.True(t, Power(0.15).Valid())
	assert.False(t, Power(0).Valid())
	assert.False(t, Power(-1).Valid())
	assert.False(t, Power(math.Inf(1)).Valid())
	assert.False(t, Curve{Kind: CurveKind(9)}.Valid())
}

func TestClampNormalized(t *testing.T) {
	assert.Equal(t, 0.0, ClampNormalized(-1))
	assert.Equal(t, 1.0, ClampNormalized(2))
	assert.Equal(t, 0.25, ClampNormalized(0.25))
	assert.Equal(t, 0.0, ClampNormalized(math.NaN()))
}
