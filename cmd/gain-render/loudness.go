package main

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/measure/loudness"
)

// integratedLoudness returns the gated BS.1770 loudness of a stereo render
// in LUFS, or -Inf when every block falls below the absolute gate.
func integratedLoudness(sampleRate int, left, right []float32) float64 {
	m := loudness.NewMeter(
		loudness.WithSampleRate(float64(sampleRate)),
		loudness.WithChannels(2),
	)
	m.StartIntegration()

	frame := make([]float64, 2)
	for i := range left {
		frame[0] = float64(left[i])
		frame[1] = float64(right[i])
		m.ProcessSample(frame)
	}
	return m.Integrated()
}

func formatLUFS(lufs float64) string {
	if math.IsInf(lufs, -1) {
		return "-inf LUFS"
	}
	return fmt.Sprintf("%.1f LUFS", lufs)
}
