package bridge

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/paramsync/pkg/framework/param"
)

func snap(id uint32, v float64) param.Snapshot {
	return param.Snapshot{ID: id, Normalized: v, Plain: v, Origin: param.OriginUI}
}

func TestSlotFillsWholeCacheLines(t *testing.T) {
	size := unsafe.Sizeof(slot{})
	assert.Zero(t, size%cacheLine)
	assert.Less(t, size-unsafe.Sizeof(slotData{}), uintptr(cacheLine+1))
}

func TestLane(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		l := NewLane(4)
		assert.Equal(t, 4, l.Len())
		assert.False(t, l.Pending())
		assert.Empty(t, l.Drain(nil))
	})

	t.Run("PushDrain", func(t *testing.T) {
		l := NewLane(4)
		require.True(t, l.Push(1, snap(11, 0.1)))
		require.True(t, l.Push(3, snap(13, 0.3)))
		assert.True(t, l.Pending())

		got := l.Drain(make([]param.Snapshot, 0, 4))
		require.Len(t, got, 2)
		assert.Equal(t, uint32(11), got[0].ID)
		assert.Equal(t, uint32(13), got[1].ID)

		assert.False(t, l.Pending())
		assert.Empty(t, l.Drain(nil), "entries are consumed once")
	})

	t.Run("OutOfRange", func(t *testing.T) {
		l := NewLane(2)
		assert.False(t, l.Push(2, snap(1, 0)))
		assert.False(t, l.Push(-1, snap(1, 0)))
		assert.Zero(t, l.Pushed())
	})

	t.Run("LastWriterWins", func(t *testing.T) {
		l := NewLane(2)
		for i := 1; i <= 100; i++ {
			l.Push(0, snap(5, float64(i)/100))
		}

		got := l.Drain(nil)
		require.Len(t, got, 1)
		assert.Equal(t, 1.0, got[0].Normalized)
		assert.Equal(t, uint64(100), l.Pushed())
		assert.Equal(t, uint64(99), l.Coalesced())
	})

	t.Run("ManyRounds", func(t *testing.T) {
		// Exercise every rotation of the triple buffer.
		l := NewLane(1)
		buf := make([]param.Snapshot, 0, 1)
		for i := 0; i < 50; i++ {
			l.Push(0, snap(1, float64(i)))
			if i%3 == 0 {
				l.Push(0, snap(1, float64(i)+0.5))
			}
			buf = l.Drain(buf[:0])
			require.Len(t, buf, 1)
			want := float64(i)
			if i%3 == 0 {
				want += 0.5
			}
			require.Equal(t, want, buf[0].Normalized, "round %d", i)
		}
	})

	t.Run("NoAllocations", func(t *testing.T) {
		l := NewLane(8)
		buf := make([]param.Snapshot, 0, 8)
		allocs := testing.AllocsPerRun(100, func() {
			for i := 0; i < 8; i++ {
				l.Push(i, snap(uint32(i), 0.5))
			}
			buf = l.Drain(buf[:0])
		})
		assert.Zero(t, allocs)
	})
}

func TestLaneConcurrent(t *testing.T) {
	const (
		params = 4
		pushes = 20000
	)

	l := NewLane(params)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= pushes; i++ {
			for p := 0; p < params; p++ {
				l.Push(p, param.Snapshot{ID: uint32(p), Normalized: float64(i), Plain: float64(-i)})
			}
		}
	}()

	last := make([]float64, params)
	buf := make([]param.Snapshot, 0, params)
	check := func() {
		buf = l.Drain(buf[:0])
		for _, s := range buf {
			// Cells are never torn and values only move forward.
			require.Equal(t, -s.Normalized, s.Plain)
			require.GreaterOrEqual(t, s.Normalized, last[s.ID])
			last[s.ID] = s.Normalized
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

loop:
	for {
		select {
		case <-done:
			break loop
		default:
			check()
		}
	}
	check()

	for p := 0; p < params; p++ {
		assert.Equal(t, float64(pushes), last[p], "param %d must end on the newest value", p)
	}
}
