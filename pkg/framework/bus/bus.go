// Package bus describes a plugin's audio channel layout.
package bus

import (
	"errors"
	"fmt"
)

// ErrChannelMismatch is returned when host buffers do not fit the layout.
var ErrChannelMismatch = errors.New("bus: buffers do not match the channel layout")

// Direction represents the bus direction
type Direction int32

const (
	// DirectionInput represents input bus
	DirectionInput Direction = 0
	// DirectionOutput represents output bus
	DirectionOutput Direction = 1
)

// String returns "in" or "out".
func (d Direction) String() string {
	if d == DirectionOutput {
		return "out"
	}
	return "in"
}

// Info contains bus configuration
type Info struct {
	Direction    Direction
	ChannelCount int
	Name         string
}

// Configuration holds one main input and one main output bus.
type Configuration struct {
	Input  Info
	Output Info
}

// NewStereoConfiguration creates a standard stereo I/O configuration
func NewStereoConfiguration() *Configuration {
	return &Configuration{
		Input:  Info{Direction: DirectionInput, ChannelCount: 2, Name: "Stereo In"},
		Output: Info{Direction: DirectionOutput, ChannelCount: 2, Name: "Stereo Out"},
	}
}

// NewMonoConfiguration creates a mono I/O configuration
func NewMonoConfiguration() *Configuration {
	return &Configuration{
		Input:  Info{Direction: DirectionInput, ChannelCount: 1, Name: "Mono In"},
		Output: Info{Direction: DirectionOutput, ChannelCount: 1, Name: "Mono Out"},
	}
}

// InputChannels returns the number of main input channels.
func (c *Configuration) InputChannels() int {
	return c.Input.ChannelCount
}

// OutputChannels returns the number of main output channels.
func (c *Configuration) OutputChannels() int {
	return c.Output.ChannelCount
}

// Fits reports whether the host handed over enough channels, each holding
// at least frames samples. It does not allocate and is safe on the audio
// thread.
func (c *Configuration) Fits(input, output [][]float32, frames int) bool {
	return fits(c.Input, input, frames) && fits(c.Output, output, frames)
}

// Validate is Fits with a descriptive error. It allocates on failure, so
// the audio thread uses Fits instead.
func (c *Configuration) Validate(input, output [][]float32, frames int) error {
	if err := check(c.Input, input, frames); err != nil {
		return err
	}
	return check(c.Output, output, frames)
}

func fits(info Info, buffers [][]float32, frames int) bool {
	if len(buffers) < info.ChannelCount {
		return false
	}
	for ch := 0; ch < info.ChannelCount; ch++ {
		if len(buffers[ch]) < frames {
			return false
		}
	}
	return true
}

func check(info Info, buffers [][]float32, frames int) error {
	if fits(info, buffers, frames) {
		return nil
	}
	if len(buffers) < info.ChannelCount {
		return fmt.Errorf("%w: %s has %d channels, want %d",
			ErrChannelMismatch, info.Name, len(buffers), info.ChannelCount)
	}
	for ch := 0; ch < info.ChannelCount; ch++ {
		if len(buffers[ch]) < frames {
			return fmt.Errorf("%w: %s channel %d has %d samples, want %d",
				ErrChannelMismatch, info.Name, ch, len(buffers[ch]), frames)
		}
	}
	return nil
}
