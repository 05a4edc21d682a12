// Package bridge carries parameter edits between the host, the audio thread
// and the UI thread through fixed-size wait-free lanes.
package bridge

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/justyntemme/paramsync/pkg/framework/param"
)

// Bridge connects the threads that touch a parameter model.
//
//	Host    lane: host automation thread -> audio thread (Host)
//	Program lane: state restore callers  -> audio thread (Program)
//	UI      lane: UI thread              -> audio thread (UI)
//	Audio   lane: audio thread           -> UI thread    (echo of applied edits)
//
// Each lane has exactly one producer and one consumer. Restores may be
// started from more than one thread, so Program pushes are serialized by a
// mutex that the audio thread never takes. The bridge also keeps the most
// recently submitted normalized and plain value of every parameter in
// atomic words so any thread can answer host queries.
type Bridge struct {
	table *param.Table

	Host    *Lane
	Program *Lane
	UI      *Lane
	Audio   *Lane

	programMu sync.Mutex

	published []atomic.Uint64
	plain     []atomic.Uint64
}

// New creates a bridge sized for the table and publishes the defaults.
func New(table *param.Table) *Bridge {
	n := table.Len()
	b := &Bridge{
		table:     table,
		Host:      NewLane(n),
		Program:   NewLane(n),
		UI:        NewLane(n),
		Audio:     NewLane(n),
		published: make([]atomic.Uint64, n),
		plain:     make([]atomic.Uint64, n),
	}
	for i, d := range table.All() {
		b.Publish(i, d.PlainSnapshot(d.Default, param.OriginProgram))
	}
	return b
}

// Table returns the descriptor table the bridge was built for.
func (b *Bridge) Table() *param.Table {
	return b.table
}

// Submit clamps and publishes an edit and queues it for the audio thread on
// the lane matching its origin. Host and UI edits must each come from a
// single thread. Unknown ids are ignored and reported as false.
func (b *Bridge) Submit(id uint32, normalized float64, origin param.Origin) bool {
	index, ok := b.table.Index(id)
	if !ok {
		return false
	}
	return b.push(index, b.table.At(index).Snapshot(normalized, origin))
}

// SubmitPlain is Submit with a plain value. The plain value reaches the
// audio thread unchanged so a stored 0 dB restores as exactly 0 dB.
func (b *Bridge) SubmitPlain(id uint32, plain float64, origin param.Origin) bool {
	index, ok := b.table.Index(id)
	if !ok {
		return false
	}
	return b.push(index, b.table.At(index).PlainSnapshot(plain, origin))
}

func (b *Bridge) push(index int, s param.Snapshot) bool {
	switch s.Origin {
	case param.OriginUI:
		b.Publish(index, s)
		return b.UI.Push(index, s)
	case param.OriginProgram:
		b.programMu.Lock()
		defer b.programMu.Unlock()
		b.Publish(index, s)
		return b.Program.Push(index, s)
	default:
		b.Publish(index, s)
		return b.Host.Push(index, s)
	}
}

// Publish stores the values of s as the current state of the parameter at
// index. The normalized and plain words are stored separately; a reader
// racing a writer may see one updated before the other.
func (b *Bridge) Publish(index int, s param.Snapshot) {
	if index < 0 || index >= len(b.published) {
		return
	}
	b.published[index].Store(math.Float64bits(s.Normalized))
	b.plain[index].Store(math.Float64bits(s.Plain))
}

// Normalized returns the published normalized value for id.
func (b *Bridge) Normalized(id uint32) (float64, bool) {
	index, ok := b.table.Index(id)
	if !ok {
		return 0, false
	}
	return b.NormalizedAt(index), true
}

// NormalizedAt returns the published normalized value at index.
func (b *Bridge) NormalizedAt(index int) float64 {
	if index < 0 || index >= len(b.published) {
		return 0
	}
	return math.Float64frombits(b.published[index].Load())
}

// Plain returns the published plain value for id. Values submitted as
// plain values are returned unchanged.
func (b *Bridge) Plain(id uint32) (float64, bool) {
	index, ok := b.table.Index(id)
	if !ok {
		return 0, false
	}
	return b.PlainAt(index), true
}

// PlainAt returns the published plain value at index.
func (b *Bridge) PlainAt(index int) float64 {
	if index < 0 || index >= len(b.plain) {
		return 0
	}
	return math.Float64frombits(b.plain[index].Load())
}
