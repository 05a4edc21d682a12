package process

// ProcessChannels processes all available channels with the given function
func (c *Context) ProcessChannels(fn func(ch int, input, output []float32)) {
	numChannels := c.NumChannels()
	for ch := 0; ch < numChannels; ch++ {
		fn(ch, c.Input[ch], c.Output[ch])
	}
}

// ProcessStereo processes up to 2 channels (stereo) with the given function
func (c *Context) ProcessStereo(fn func(ch int, input, output []float32)) {
	numChannels := c.NumStereoChannels()
	for ch := 0; ch < numChannels; ch++ {
		fn(ch, c.Input[ch], c.Output[ch])
	}
}

// ProcessMono processes only the first channel
func (c *Context) ProcessMono(fn func(input, output []float32)) {
	if c.NumInputChannels() > 0 && c.NumOutputChannels() > 0 {
		fn(c.Input[0], c.Output[0])
	}
}

// NumChannels returns the minimum of input and output channels
func (c *Context) NumChannels() int {
	numChannels := c.NumInputChannels()
	if c.NumOutputChannels() < numChannels {
		numChannels = c.NumOutputChannels()
	}
	return numChannels
}

// NumStereoChannels returns the number of channels capped at 2
func (c *Context) NumStereoChannels() int {
	numChannels := c.NumChannels()
	if numChannels > 2 {
		return 2
	}
	return numChannels
}
