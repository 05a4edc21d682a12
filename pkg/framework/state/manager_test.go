package state

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/paramsync/pkg/framework/bridge"
	"github.com/justyntemme/paramsync/pkg/framework/param"
)

const (
	idMaster uint32 = iota + 1
	idMix
	idField
)

func newBridge(t *testing.T) *bridge.Bridge {
	t.Helper()
	table, err := param.NewTable(
		[]*param.Descriptor{
			param.Gain(idMaster, "gain master").Build(),
			param.New(idMix, "mix").Range(0, 100).Default(50).Build(),
		},
		param.NewField(idField, "non_parameter_value_test", 0, 1, 1),
	)
	require.NoError(t, err)
	return bridge.New(table)
}

func TestManagerRoundTrip(t *testing.T) {
	src := newBridge(t)
	src.SubmitPlain(idMaster, -6, param.OriginHost)
	src.SubmitPlain(idMix, 12.5, param.OriginUI)
	src.Table().Field(idField).Set(0.25)

	var buf bytes.Buffer
	require.NoError(t, NewManager(src).Save(&buf))
	assert.Equal(t, magic, buf.String()[:len(magic)])

	dst := newBridge(t)
	require.NoError(t, NewManager(dst).Load(bytes.NewReader(buf.Bytes())))

	plain, _ := dst.Plain(idMaster)
	assert.Equal(t, -6.0, plain)
	plain, _ = dst.Plain(idMix)
	assert.Equal(t, 12.5, plain)
	assert.Equal(t, 0.25, dst.Table().Field(idField).Get())

	restored := dst.Program.Drain(nil)
	require.Len(t, restored, 2)
	for _, s := range restored {
		assert.Equal(t, param.OriginProgram, s.Origin)
	}
	assert.False(t, dst.UI.Pending())
}

func TestManagerDefaultsExact(t *testing.T) {
	src := newBridge(t)
	var buf bytes.Buffer
	require.NoError(t, NewManager(src).Save(&buf))

	s, custom, err := Decode(&buf)
	require.NoError(t, err)
	assert.Empty(t, custom)
	assert.Equal(t, []Value{{idMaster, 0}, {idMix, 50}}, s.Params)
	assert.Equal(t, []Value{{idField, 1}}, s.Fields)
}

func TestManagerCustomState(t *testing.T) {
	src := newBridge(t)
	m := NewManager(src)
	m.SetCustomState(func(w io.Writer) error {
		_, err := w.Write([]byte("extra"))
		return err
	}, nil)

	var buf bytes.Buffer
	require.NoError(t, m.Save(&buf))

	var got []byte
	dst := NewManager(newBridge(t))
	dst.SetCustomState(nil, func(r io.Reader) error {
		var err error
		got, err = io.ReadAll(r)
		return err
	})
	require.NoError(t, dst.Load(bytes.NewReader(buf.Bytes())))
	assert.Equal(t, []byte("extra"), got)

	t.Run("SaveError", func(t *testing.T) {
		boom := errors.New("boom")
		m.SetCustomState(func(io.Writer) error { return boom }, nil)
		assert.ErrorIs(t, m.Save(io.Discard), boom)
	})

	t.Run("LoadError", func(t *testing.T) {
		boom := errors.New("boom")
		dst.SetCustomState(nil, func(io.Reader) error { return boom })
		assert.ErrorIs(t, dst.Load(bytes.NewReader(buf.Bytes())), boom)
	})
}

func TestManagerUnknownIDs(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(magic)
	put32(&buf, Version)
	putValues(&buf, []Value{{ID: 99, Plain: 1}, {ID: idMix, Plain: 80}})
	putValues(&buf, []Value{{ID: 77, Plain: 1}})
	put32(&buf, 0)

	b := newBridge(t)
	require.NoError(t, NewManager(b).Load(&buf))
	plain, _ := b.Plain(idMix)
	assert.Equal(t, 80.0, plain)
}

func TestManagerLoadErrors(t *testing.T) {
	var valid bytes.Buffer
	require.NoError(t, NewManager(newBridge(t)).Save(&valid))
	data := valid.Bytes()

	withVersion := func(v uint32) []byte {
		out := append([]byte(nil), data...)
		binary.LittleEndian.PutUint32(out[len(magic):], v)
		return out
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"Empty", nil, ErrInvalidState},
		{"BadMagic", append([]byte("NOTPSY"), data[len(magic):]...), ErrInvalidState},
		{"Truncated", data[:len(data)-6], ErrInvalidState},
		{"NewerVersion", withVersion(Version + 1), ErrUnsupportedVersion},
		{"ZeroVersion", withVersion(0), ErrUnsupportedVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBridge(t)
			err := NewManager(b).Load(bytes.NewReader(tt.data))
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, b.Program.Pending(), "nothing applied on error")
		})
	}

	t.Run("HugeCount", func(t *testing.T) {
		var buf bytes.Buffer
		buf.WriteString(magic)
		put32(&buf, Version)
		put32(&buf, maxEntries+1)
		_, _, err := Decode(&buf)
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}
