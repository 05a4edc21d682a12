package bridge

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/paramsync/pkg/framework/param"
)

func newTestBridge(t *testing.T) *Bridge {
	t.Helper()
	table, err := param.NewTable([]*param.Descriptor{
		param.Gain(1, "gain master").Build(),
		param.New(2, "mix").Range(0, 100).Default(50).Build(),
	})
	require.NoError(t, err)
	return New(table)
}

func TestBridgeDefaults(t *testing.T) {
	b := newTestBridge(t)

	plain, ok := b.Plain(1)
	require.True(t, ok)
	assert.InDelta(t, 0.0, plain, 1e-9)

	n, ok := b.Normalized(2)
	require.True(t, ok)
	assert.InDelta(t, 0.5, n, 1e-12)

	_, ok = b.Normalized(99)
	assert.False(t, ok)
}

func TestBridgeSubmit(t *testing.T) {
	t.Run("RoutesByOrigin", func(t *testing.T) {
		b := newTestBridge(t)

		require.True(t, b.Submit(1, 0.3, param.OriginUI))
		require.True(t, b.Submit(2, 0.7, param.OriginHost))
		require.True(t, b.Submit(1, 0.9, param.OriginProgram))

		ui := b.UI.Drain(nil)
		require.Len(t, ui, 1)
		assert.Equal(t, param.OriginUI, ui[0].Origin)
		assert.Equal(t, 0.3, ui[0].Normalized)

		host := b.Host.Drain(nil)
		require.Len(t, host, 1)
		assert.Equal(t, param.OriginHost, host[0].Origin)

		program := b.Program.Drain(nil)
		require.Len(t, program, 1)
		assert.Equal(t, param.OriginProgram, program[0].Origin)
		assert.Equal(t, 0.9, program[0].Normalized)

		assert.Empty(t, b.Audio.Drain(nil))
	})

	t.Run("ClampsAndPublishes", func(t *testing.T) {
		b := newTestBridge(t)

		b.Submit(1, 1.5, param.OriginHost)
		n, _ := b.Normalized(1)
		assert.Equal(t, 1.0, n)

		got := b.Host.Drain(nil)
		require.Len(t, got, 1)
		assert.Equal(t, 3.0, got[0].Plain)
	})

	t.Run("Plain", func(t *testing.T) {
		b := newTestBridge(t)

		require.True(t, b.SubmitPlain(2, 25, param.OriginHost))
		plain, _ := b.Plain(2)
		assert.InDelta(t, 25.0, plain, 1e-9)

		require.True(t, b.SubmitPlain(1, 0, param.OriginProgram))
		got := b.Host.Drain(nil)
		require.Len(t, got, 1)
		assert.Equal(t, 25.0, got[0].Plain)

		restored := b.Program.Drain(nil)
		require.Len(t, restored, 1)
		assert.Equal(t, 0.0, restored[0].Plain)

		assert.False(t, b.SubmitPlain(42, 1, param.OriginHost))
	})

	t.Run("UnknownID", func(t *testing.T) {
		b := newTestBridge(t)
		assert.False(t, b.Submit(42, 0.5, param.OriginUI))
		assert.False(t, b.UI.Pending())
	})
}

// Automation and restores run on different host threads. Every lane must
// stay single-producer and every drained snapshot must be one that was
// submitted whole.
func TestBridgeConcurrentProducers(t *testing.T) {
	b := newTestBridge(t)
	mix := b.Table().Get(2)

	const rounds = 2000
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			b.SubmitPlain(2, float64(i%100), param.OriginHost)
		}
	}()
	for r := 0; r < 2; r++ {
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				b.SubmitPlain(2, float64(i%100), param.OriginProgram)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	buf := make([]param.Snapshot, 0, 2)
	check := func() {
		buf = b.Host.Drain(buf[:0])
		buf = b.Program.Drain(buf)
		for _, s := range buf {
			require.Equal(t, s.Plain, float64(int(s.Plain)), "torn snapshot %+v", s)
			require.InDelta(t, mix.ToNormalized(s.Plain), s.Normalized, 1e-12)
		}
	}
	for {
		select {
		case <-done:
			check()
			return
		default:
			check()
		}
	}
}
