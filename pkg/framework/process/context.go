// Package process provides the per-block processing context handed to a
// plugin's DSP.
package process

import (
	"github.com/justyntemme/paramsync/pkg/framework/model"
)

// Context provides a clean API for audio processing with zero allocations
type Context struct {
	Input      [][]float32
	Output     [][]float32
	SampleRate float64

	// Pre-allocated per-sample gain envelopes
	envelopes [][]float64

	views *model.Views
}

// NewContext creates a new process context with numEnvelopes scratch gain
// envelopes of maxBlockSize samples.
func NewContext(maxBlockSize, numEnvelopes int) *Context {
	c := &Context{
		envelopes: make([][]float64, numEnvelopes),
	}
	for i := range c.envelopes {
		c.envelopes[i] = make([]float64, maxBlockSize)
	}
	return c
}

// Bind points the context at the buffers and parameter views of one block.
func (c *Context) Bind(input, output [][]float32, views *model.Views) {
	c.Input = input
	c.Output = output
	c.views = views
}

// Param returns the per-sample process values of a parameter for this
// block, or nil for unknown ids.
func (c *Context) Param(id uint32) []float64 {
	if c.views == nil {
		return nil
	}
	return c.views.Param(id)
}

// Field returns the per-sample values of a non-automated field.
func (c *Context) Field(id uint32) []float64 {
	if c.views == nil {
		return nil
	}
	return c.views.Field(id)
}

// Views returns the bound views.
func (c *Context) Views() *model.Views {
	return c.views
}

// NumSamples returns the number of samples to process
func (c *Context) NumSamples() int {
	if c.views != nil {
		return c.views.Frames()
	}
	if len(c.Input) > 0 && len(c.Input[0]) > 0 {
		return len(c.Input[0])
	}
	if len(c.Output) > 0 && len(c.Output[0]) > 0 {
		return len(c.Output[0])
	}
	return 0
}

// NumInputChannels returns the number of input channels
func (c *Context) NumInputChannels() int {
	return len(c.Input)
}

// NumOutputChannels returns the number of output channels
func (c *Context) NumOutputChannels() int {
	return len(c.Output)
}

// Envelope returns scratch envelope i sized to the current block, or nil.
func (c *Context) Envelope(i int) []float64 {
	if i < 0 || i >= len(c.envelopes) {
		return nil
	}
	return c.envelopes[i][:c.clampFrames(len(c.envelopes[i]))]
}

func (c *Context) clampFrames(capacity int) int {
	n := c.NumSamples()
	if n > capacity {
		return capacity
	}
	return n
}

// PassThrough copies input to output (for bypass). Outputs without a
// matching input are silenced.
func (c *Context) PassThrough() {
	for ch, out := range c.Output {
		if ch < len(c.Input) {
			copy(out, c.Input[ch])
		} else {
			clear(out)
		}
	}
}
