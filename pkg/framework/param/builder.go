package param

// Builder provides a fluent API for creating parameter descriptors
type Builder struct {
	desc *Descriptor
}

// New creates a new parameter builder
func New(id uint32, name string) *Builder {
	return &Builder{
		desc: &Descriptor{
			ID:        id,
			Name:      name,
			ShortName: name,
			Min:       0,
			Max:       1,
			Default:   0,
			Curve:     Linear(),
			Flags:     CanAutomate,
		},
	}
}

// Gain creates a decibel gain parameter with the usual -90..3 dB range,
// a Power(0.15) taper and a 0 dB default.
func Gain(id uint32, name string) *Builder {
	return New(id, name).
		Range(-90, 3).
		Default(0).
		Decibels().
		Curve(Power(0.15))
}

// ShortName sets the short name
func (b *Builder) ShortName(name string) *Builder {
	b.desc.ShortName = name
	return b
}

// Range sets the min and max values
func (b *Builder) Range(min, max float64) *Builder {
	b.desc.Min = min
	b.desc.Max = max
	return b
}

// Default sets the default value (in plain range, not normalized)
func (b *Builder) Default(value float64) *Builder {
	b.desc.Default = value
	return b
}

// Unit sets the unit label
func (b *Builder) Unit(label string) *Builder {
	b.desc.UnitLabel = label
	return b
}

// Decibels marks the parameter as a dB value. DSP receives linear coefficients.
func (b *Builder) Decibels() *Builder {
	b.desc.Unit = UnitDecibels
	b.desc.UnitLabel = "dB"
	return b
}

// Curve sets the normalized to plain mapping
func (b *Builder) Curve(c Curve) *Builder {
	b.desc.Curve = c
	return b
}

// Instant disables smoothing for the parameter
func (b *Builder) Instant() *Builder {
	b.desc.Instant = true
	return b
}

// ReadOnly marks the parameter as read-only
func (b *Builder) ReadOnly() *Builder {
	b.desc.Flags |= IsReadOnly
	b.desc.Flags &^= CanAutomate
	return b
}

// Hidden marks the parameter as hidden
func (b *Builder) Hidden() *Builder {
	b.desc.Flags |= IsHidden
	return b
}

// Formatter sets custom value formatting
func (b *Builder) Formatter(format func(float64) string) *Builder {
	b.desc.formatFunc = format
	return b
}

// Build returns the configured descriptor. Validation happens when the
// descriptor is added to a Table.
func (b *Builder) Build() *Descriptor {
	d := *b.desc
	d.Default = d.ClampPlain(d.Default)
	return &d
}
