package param

import (
	"fmt"
	"math"
	"strconv"
)

// FixedFormatter formats plain values with one decimal followed by the
// unit label, e.g. "-6.0 dB".
func FixedFormatter(label string) func(float64) string {
	if label == "" {
		return func(v float64) string {
			return strconv.FormatFloat(roundTenth(v), 'f', 1, 64)
		}
	}
	return func(v float64) string {
		return fmt.Sprintf("%.1f %s", roundTenth(v), label)
	}
}

// roundTenth rounds to one decimal and folds -0 into 0 so values a rounding
// error below zero do not display as "-0.0".
func roundTenth(v float64) float64 {
	r := math.Round(v*10) / 10
	if r == 0 {
		return 0
	}
	return r
}
