package debug

import (
	"fmt"
	"math"
	"strings"

	"github.com/justyntemme/paramsync/pkg/dsp/gain"
)

// ChannelStats summarizes one rendered channel.
type ChannelStats struct {
	Samples  int
	Peak     float64
	RMS      float64
	PeakDBFS float64
	RMSDBFS  float64
	NaNs     int
	Infs     int
}

// Silent reports whether no finite sample rose above MinDB.
func (s ChannelStats) Silent() bool {
	return s.PeakDBFS <= gain.MinDB
}

// Clean reports whether the channel held only finite samples.
func (s ChannelStats) Clean() bool {
	return s.NaNs == 0 && s.Infs == 0
}

// AnalyzeChannel computes peak and RMS over the finite samples of buf.
// Non-finite samples are counted and left out of both.
func AnalyzeChannel(buf []float32) ChannelStats {
	stats := ChannelStats{Samples: len(buf)}

	var sumSquares float64
	finite := 0
	for _, s := range buf {
		v := float64(s)
		switch {
		case math.IsNaN(v):
			stats.NaNs++
			continue
		case math.IsInf(v, 0):
			stats.Infs++
			continue
		}
		finite++
		if a := math.Abs(v); a > stats.Peak {
			stats.Peak = a
		}
		sumSquares += v * v
	}
	if finite > 0 {
		stats.RMS = math.Sqrt(sumSquares / float64(finite))
	}

	stats.PeakDBFS = gain.LinearToDb(stats.Peak)
	stats.RMSDBFS = gain.LinearToDb(stats.RMS)
	return stats
}

// Analysis holds per-channel statistics of a multichannel buffer.
type Analysis struct {
	Channels []ChannelStats
}

// Analyze computes statistics for every channel.
func Analyze(channels [][]float32) Analysis {
	a := Analysis{Channels: make([]ChannelStats, len(channels))}
	for i, ch := range channels {
		a.Channels[i] = AnalyzeChannel(ch)
	}
	return a
}

// Clean reports whether every channel held only finite samples.
func (a Analysis) Clean() bool {
	for _, ch := range a.Channels {
		if !ch.Clean() {
			return false
		}
	}
	return true
}

// String renders one line per channel.
func (a Analysis) String() string {
	var sb strings.Builder
	for i, ch := range a.Channels {
		fmt.Fprintf(&sb, "ch%d: peak %s  rms %s", i, formatDBFS(ch.PeakDBFS), formatDBFS(ch.RMSDBFS))
		if !ch.Clean() {
			fmt.Fprintf(&sb, "  nan %d  inf %d", ch.NaNs, ch.Infs)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func formatDBFS(db float64) string {
	if db <= gain.MinDB {
		return "-inf dBFS"
	}
	return fmt.Sprintf("%.1f dBFS", db)
}
