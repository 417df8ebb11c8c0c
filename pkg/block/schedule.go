package block

import (
	"container/heap"
	"sync"

	"github.com/StoreStation/blockcore/pkg/coords"
)

// scheduledEntry is one pending tick, ordered by (Tick, Priority, seq) —
// seq breaks ties in submission order so equal-priority entries at the
// same tick drain FIFO.
type scheduledEntry struct {
	Pos      coords.BlockPos
	Tick     int64
	Priority int
	seq      uint64
	index    int // heap.Interface bookkeeping
}

type entryHeap []*scheduledEntry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].Tick != h[j].Tick {
		return h[i].Tick < h[j].Tick
	}
	if h[i].Priority != h[j].Priority {
		return h[i].Priority < h[j].Priority
	}
	return h[i].seq < h[j].seq
}
func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *entryHeap) Push(x any) {
	e := x.(*scheduledEntry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// ScheduledTickQueue is the priority queue of pending scheduled ticks,
// keyed by (tick, priority, seq). Safe for concurrent use; schedule() and
// tick() may be called from different goroutines as long as the world's
// per-chunk lock still serializes the resulting writes.
type ScheduledTickQueue struct {
	mu      sync.Mutex
	heap    entryHeap
	byPos   map[coords.BlockPos]*scheduledEntry
	nextSeq uint64
}

// NewScheduledTickQueue returns an empty queue.
func NewScheduledTickQueue() *ScheduledTickQueue {
	return &ScheduledTickQueue{byPos: make(map[coords.BlockPos]*scheduledEntry)}
}

// Schedule enqueues pos to tick at now+delayTicks with the given priority.
// If an entry already exists for pos, it is replaced only when the new
// tick is earlier (coalescing).
func (q *ScheduledTickQueue) Schedule(pos coords.BlockPos, now int64, delayTicks int, priority int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	tick := now + int64(delayTicks)
	if existing, ok := q.byPos[pos]; ok {
		if tick >= existing.Tick {
			return
		}
		heap.Remove(&q.heap, existing.index)
		delete(q.byPos, pos)
	}

	e := &scheduledEntry{Pos: pos, Tick: tick, Priority: priority, seq: q.nextSeq}
	q.nextSeq++
	heap.Push(&q.heap, e)
	q.byPos[pos] = e
}

// Due pops and returns every entry with Tick <= now, in non-decreasing
// Tick order (ties broken by priority then submission order).
func (q *ScheduledTickQueue) Due(now int64) []coords.BlockPos {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []coords.BlockPos
	for q.heap.Len() > 0 && q.heap[0].Tick <= now {
		e := heap.Pop(&q.heap).(*scheduledEntry)
		delete(q.byPos, e.Pos)
		out = append(out, e.Pos)
	}
	return out
}

// Len reports the number of pending entries.
func (q *ScheduledTickQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.heap.Len()
}
