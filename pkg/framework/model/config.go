package model

import "github.com/justyntemme/paramsync/pkg/framework/param"

// RestorePolicy decides how values restored from saved state reach the DSP.
type RestorePolicy int

const (
	// RestoreSnap applies restored values instantly at the next block.
	RestoreSnap RestorePolicy = iota
	// RestoreSmooth ramps to restored values like any other edit.
	RestoreSmooth
)

// String returns the policy name.
func (p RestorePolicy) String() string {
	switch p {
	case RestoreSnap:
		return "snap"
	case RestoreSmooth:
		return "smooth"
	default:
		return "unknown"
	}
}

// Config holds the engine settings of a parameter model.
type Config struct {
	// SmoothingTimeMs is converted to samples once the sample rate is known.
	SmoothingTimeMs float64
	// SmoothingSamples overrides SmoothingTimeMs when positive.
	SmoothingSamples int
	SmoothingType    param.SmoothingType
	Restore          RestorePolicy
	MaxBlockSize     int
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the settings used when no options are given.
func DefaultConfig() Config {
	return Config{
		SmoothingTimeMs: 5,
		SmoothingType:   param.LinearSmoothing,
		Restore:         RestoreSnap,
		MaxBlockSize:    1024,
	}
}

// WithSmoothingTime sets the smoothing duration in milliseconds. Zero is
// accepted here and rejected later if any parameter needs smoothing.
func WithSmoothingTime(ms float64) Option {
	return func(cfg *Config) {
		if ms >= 0 {
			cfg.SmoothingTimeMs = ms
		}
	}
}

// WithSmoothingSamples fixes the smoothing duration in samples, independent
// of the sample rate.
func WithSmoothingSamples(samples int) Option {
	return func(cfg *Config) {
		if samples > 0 {
			cfg.SmoothingSamples = samples
		}
	}
}

// WithSmoothingType selects the ramp shape used for every parameter.
func WithSmoothingType(t param.SmoothingType) Option {
	return func(cfg *Config) {
		cfg.SmoothingType = t
	}
}

// WithRestorePolicy selects how restored state is applied.
func WithRestorePolicy(p RestorePolicy) Option {
	return func(cfg *Config) {
		cfg.Restore = p
	}
}

// WithMaxBlockSize sets the largest block the host will ask for.
func WithMaxBlockSize(frames int) Option {
	return func(cfg *Config) {
		if frames > 0 {
			cfg.MaxBlockSize = frames
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
