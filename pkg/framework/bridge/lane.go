package bridge

import (
	"sync/atomic"
	"unsafe"

	"github.com/justyntemme/paramsync/pkg/framework/param"
)

const (
	indexMask = 0x3
	freshBit  = 0x4

	cacheLine = 64
)

// slotData is a triple buffer holding the latest snapshot for one
// parameter. The producer owns cells[back], the consumer owns cells[front]
// and the third cell is handed over through state, which packs its index
// together with a flag saying whether it holds an unread snapshot.
type slotData struct {
	cells [3]param.Snapshot
	state atomic.Uint32
	back  uint8
	front uint8
}

// slot rounds slotData up to whole cache lines.
type slot struct {
	slotData
	_ [cacheLine - unsafe.Sizeof(slotData{})%cacheLine]byte
}

// Lane is a bounded single-producer single-consumer channel with one slot
// per parameter index. Push never blocks: a newer snapshot for the same
// index replaces an unread older one. Push and Drain are wait-free and do
// not allocate.
type Lane struct {
	slots     []slot
	pending   atomic.Bool
	pushed    atomic.Uint64
	coalesced atomic.Uint64
}

// NewLane creates a lane with room for size parameters.
func NewLane(size int) *Lane {
	l := &Lane{slots: make([]slot, size)}
	for i := range l.slots {
		l.slots[i].back = 0
		l.slots[i].state.Store(1)
		l.slots[i].front = 2
	}
	return l
}

// Len returns the number of slots.
func (l *Lane) Len() int {
	return len(l.slots)
}

// Push publishes a snapshot for the parameter at index. It returns false
// only when the index is out of range. Producer side only.
func (l *Lane) Push(index int, s param.Snapshot) bool {
	if index < 0 || index >= len(l.slots) {
		return false
	}

	sl := &l.slots[index]
	sl.cells[sl.back] = s
	prev := sl.state.Swap(uint32(sl.back) | freshBit)
	sl.back = uint8(prev & indexMask)

	l.pushed.Add(1)
	if prev&freshBit != 0 {
		l.coalesced.Add(1)
	}
	l.pending.Store(true)
	return true
}

// Drain appends every unread snapshot to dst, at most one per parameter,
// and returns the extended slice. Consumer side only. With cap(dst) >= Len
// the call does not allocate.
func (l *Lane) Drain(dst []param.Snapshot) []param.Snapshot {
	if !l.pending.Swap(false) {
		return dst
	}

	for i := range l.slots {
		sl := &l.slots[i]
		if sl.state.Load()&freshBit == 0 {
			continue
		}
		prev := sl.state.Swap(uint32(sl.front))
		sl.front = uint8(prev & indexMask)
		dst = append(dst, sl.cells[sl.front])
	}
	return dst
}

// Pending reports whether a Push happened since the last Drain.
func (l *Lane) Pending() bool {
	return l.pending.Load()
}

// Pushed returns the total number of snapshots pushed.
func (l *Lane) Pushed() uint64 {
	return l.pushed.Load()
}

// Coalesced returns how many unread snapshots were replaced by newer ones.
func (l *Lane) Coalesced() uint64 {
	return l.coalesced.Load()
}
