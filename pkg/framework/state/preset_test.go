package state

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/paramsync/pkg/framework/param"
)

func TestPresetRoundTrip(t *testing.T) {
	src := newBridge(t)
	src.SubmitPlain(idMaster, -12, param.OriginUI)
	src.Table().Field(idField).Set(0.5)

	p := NewPreset("quiet", src)
	assert.Equal(t, map[string]float64{"gain master": -12, "mix": 50}, p.Params)
	assert.Equal(t, map[string]float64{"non_parameter_value_test": 0.5}, p.Fields)

	var buf bytes.Buffer
	require.NoError(t, WritePreset(&buf, p))
	assert.Contains(t, buf.String(), `"gain master": -12`)

	got, err := ReadPreset(&buf)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	dst := newBridge(t)
	require.NoError(t, got.Apply(dst))
	plain, _ := dst.Plain(idMaster)
	assert.Equal(t, -12.0, plain)
	assert.Equal(t, 0.5, dst.Table().Field(idField).Get())

	s := dst.Program.Drain(nil)
	require.Len(t, s, 2)
	assert.Equal(t, param.OriginProgram, s[0].Origin)
}

func TestPresetPartial(t *testing.T) {
	p, err := ReadPreset(strings.NewReader(`{"params": {"mix": 250}}`))
	require.NoError(t, err)

	b := newBridge(t)
	require.NoError(t, p.Apply(b))

	mix, _ := b.Plain(idMix)
	assert.Equal(t, 100.0, mix, "clamped to range")
	master, _ := b.Plain(idMaster)
	assert.Equal(t, 0.0, master, "untouched")
}

func TestPresetErrors(t *testing.T) {
	_, err := ReadPreset(strings.NewReader(`{"params": `))
	assert.ErrorIs(t, err, ErrInvalidState)

	b := newBridge(t)
	p := &Preset{Params: map[string]float64{"gain mastr": 1}}
	assert.ErrorIs(t, p.Apply(b), ErrInvalidState)
	assert.False(t, b.Program.Pending())

	p = &Preset{Fields: map[string]float64{"nope": 1}}
	assert.ErrorIs(t, p.Apply(b), ErrInvalidState)

	var nilPreset *Preset
	assert.NoError(t, nilPreset.Apply(b))
}

func TestPresetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.json")
	p := NewPreset("default", newBridge(t))
	require.NoError(t, SavePreset(path, p))

	got, err := LoadPreset(path)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = LoadPreset(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
