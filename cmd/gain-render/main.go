// Command gain-render runs the gain example offline: it feeds a WAV file or
// a generated sine through the plugin while replaying host automation, then
// writes the result and prints a level analysis.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
	"github.com/google/uuid"

	gainplugin "github.com/justyntemme/paramsync/examples/gain"
	"github.com/justyntemme/paramsync/pkg/framework/debug"
	"github.com/justyntemme/paramsync/pkg/framework/model"
	"github.com/justyntemme/paramsync/pkg/framework/plugin"
	"github.com/justyntemme/paramsync/pkg/framework/state"
	"github.com/justyntemme/paramsync/pkg/framework/ui"
)

func main() {
	input := flag.String("input", "", "Input WAV file (default: generated sine)")
	output := flag.String("output", "gain.wav", "Output WAV file path")
	sampleRate := flag.Int("sample-rate", 48000, "Sample rate in Hz for the generated sine")
	duration := flag.Float64("duration", 2.0, "Duration in seconds for the generated sine")
	freq := flag.Float64("freq", 440, "Generated sine frequency in Hz")
	amp := flag.Float64("amp", 0.5, "Generated sine amplitude")
	blockSize := flag.Int("block", 256, "Host block size in frames")
	smoothingMs := flag.Float64("smoothing-ms", 5, "Parameter smoothing time in milliseconds")
	restore := flag.String("restore", "snap", "Restore policy for presets: snap or smooth")
	automation := flag.String("automation", "", "JSON automation script")
	presetPath := flag.String("preset", "", "JSON preset applied before rendering")
	savePreset := flag.String("save-preset", "", "Write the final parameter values as a JSON preset")
	mono := flag.Bool("mono", false, "Render the left channel through the mono plugin and copy it to both outputs")
	bypass := flag.Bool("bypass", false, "Bypass the plugin while still replaying automation")
	uiEvery := flag.Int("ui-every", 0, "Attach a headless editor and run one frame every N blocks (0 = no editor)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error, off")
	flag.Parse()

	level, err := debug.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	logger := debug.New(os.Stderr, "gain-render", debug.DefaultFlags)
	logger.SetLevel(level)

	cfg := renderConfig{
		blockSize:   *blockSize,
		smoothingMs: *smoothingMs,
		uiEvery:     *uiEvery,
		mono:        *mono,
		bypass:      *bypass,
		logger:      logger,
	}
	switch *restore {
	case "snap":
		cfg.restore = model.RestoreSnap
	case "smooth":
		cfg.restore = model.RestoreSmooth
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown restore policy %q\n", *restore)
		os.Exit(2)
	}

	if *input != "" {
		cfg.left, cfg.right, cfg.sampleRate, err = readStereo(*input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", *input, err)
			os.Exit(1)
		}
	} else {
		cfg.sampleRate = *sampleRate
		cfg.left = sine(*sampleRate, *duration, *freq, *amp)
		cfg.right = append([]float32(nil), cfg.left...)
	}

	if *automation != "" {
		if cfg.script, err = loadScript(*automation); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if *presetPath != "" {
		if cfg.preset, err = state.LoadPreset(*presetPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Rendering %d frames at %d Hz in blocks of %d...\n", len(cfg.left), cfg.sampleRate, cfg.blockSize)

	res, err := render(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := writeStereo(*output, cfg.sampleRate, res.left, res.right); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing WAV file: %v\n", err)
		os.Exit(1)
	}
	if *savePreset != "" {
		if err := state.SavePreset(*savePreset, res.preset); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing preset: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Plugin class id: %s\n", res.classID)
	fmt.Print(debug.Analyze([][]float32{res.left, res.right}))
	fmt.Printf("integrated loudness: %s\n", formatLUFS(integratedLoudness(cfg.sampleRate, res.left, res.right)))
	if res.uiFrames > 0 {
		fmt.Printf("Editor ran %d frames\n", res.uiFrames)
	}
	fmt.Printf("Successfully wrote %s (%d frames)\n", *output, len(res.left))
}

type renderConfig struct {
	left, right []float32
	sampleRate  int
	blockSize   int
	smoothingMs float64
	restore     model.RestorePolicy
	script      *Script
	preset      *state.Preset
	uiEvery     int
	mono        bool
	bypass      bool
	logger      *debug.Logger
}

type renderResult struct {
	left, right []float32
	preset      *state.Preset
	uiFrames    int
	classID     uuid.UUID
}

// render drives one gain plugin instance through the Binding interface the
// way a host would: automation lands at block boundaries with host origin.
func render(cfg renderConfig) (*renderResult, error) {
	if cfg.blockSize <= 0 {
		return nil, fmt.Errorf("block size must be positive, got %d", cfg.blockSize)
	}
	if cfg.logger == nil {
		cfg.logger = debug.Discard()
	}

	p := gainplugin.New()
	if cfg.mono {
		p = gainplugin.NewMono()
	}

	tk := ui.NewHeadless()
	inst, err := plugin.NewInstance(p,
		plugin.WithLogger(cfg.logger),
		plugin.WithToolkit(tk),
		plugin.WithModelOptions(
			model.WithSmoothingTime(cfg.smoothingMs),
			model.WithRestorePolicy(cfg.restore),
			model.WithMaxBlockSize(cfg.blockSize),
		))
	if err != nil {
		return nil, err
	}
	defer inst.Destroy()

	var b plugin.Binding = inst
	if err := b.Initialize(float64(cfg.sampleRate), cfg.blockSize); err != nil {
		return nil, err
	}

	events, err := cfg.script.schedule(inst.Model().Table(), float64(cfg.sampleRate))
	if err != nil {
		return nil, err
	}
	if cfg.preset != nil {
		if err := inst.LoadPreset(cfg.preset); err != nil {
			return nil, err
		}
	}

	if cfg.uiEvery > 0 {
		if err := b.OpenUI(0); err != nil {
			return nil, err
		}
	}
	b.SetBypass(cfg.bypass)
	if err := b.SetActive(true); err != nil {
		return nil, err
	}

	frames := len(cfg.left)
	res := &renderResult{
		left:    make([]float32, frames),
		right:   make([]float32, frames),
		classID: b.ClassID(),
	}

	next := 0
	for block, start := 0, 0; start < frames; block, start = block+1, start+cfg.blockSize {
		end := min(start+cfg.blockSize, frames)
		for next < len(events) && events[next].frame < end {
			b.SetParameter(events[next].id, events[next].normalized)
			next++
		}

		in := [][]float32{cfg.left[start:end], cfg.right[start:end]}
		out := [][]float32{res.left[start:end], res.right[start:end]}
		if cfg.mono {
			in, out = in[:1], out[:1]
		}
		if err := b.Process(in, out); err != nil {
			return nil, err
		}

		if cfg.uiEvery > 0 && block%cfg.uiEvery == 0 {
			tk.Last().Tick()
		}
	}

	if err := b.SetActive(false); err != nil {
		return nil, err
	}
	if cfg.mono {
		copy(res.right, res.left)
	}
	if w := tk.Last(); w != nil {
		res.uiFrames = w.Frames()
	}
	res.preset = state.NewPreset("gain-render", inst.Model().Bridge())
	return res, nil
}

func sine(sampleRate int, seconds, freq, amp float64) []float32 {
	frames := int(float64(sampleRate) * seconds)
	if frames < 1 {
		frames = 1
	}
	out := make([]float32, frames)
	for i := range out {
		out[i] = float32(amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return out
}

func readStereo(path string) (left, right []float32, sampleRate int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, nil, 0, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, nil, 0, err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, nil, 0, fmt.Errorf("invalid wav buffer: %s", path)
	}

	numCh := buf.Format.NumChannels
	frames := len(buf.Data) / numCh
	if frames == 0 {
		return nil, nil, 0, fmt.Errorf("empty wav data: %s", path)
	}

	left = make([]float32, frames)
	right = make([]float32, frames)
	for i := 0; i < frames; i++ {
		left[i] = buf.Data[i*numCh]
		if numCh == 1 {
			right[i] = left[i]
		} else {
			right[i] = buf.Data[i*numCh+1]
		}
	}
	return left, right, buf.Format.SampleRate, nil
}

func writeStereo(path string, sampleRate int, left, right []float32) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := wav.NewEncoder(file, sampleRate, 16, 2, 1)

	interleaved := make([]float32, 0, 2*len(left))
	for i := range left {
		interleaved = append(interleaved, left[i], right[i])
	}
	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: 2,
		},
		Data:           interleaved,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		return err
	}
	return encoder.Close()
}
