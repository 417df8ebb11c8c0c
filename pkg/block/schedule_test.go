package block

import (
	"testing"

	"github.com/StoreStation/blockcore/pkg/coords"
)

func TestScheduleCoalescesToEarlierTick(t *testing.T) {
	q := NewScheduledTickQueue()
	pos := coords.BlockPos{X: 5}
	q.Schedule(pos, 0, 20, 0)
	q.Schedule(pos, 0, 5, 0) // earlier: should replace

	due := q.Due(5)
	if len(due) != 1 || due[0] != pos {
		t.Fatalf("expected coalesced entry due at tick 5, got %v", due)
	}
	if q.Len() != 0 {
		t.Fatalf("expected queue empty after draining, got %d", q.Len())
	}
}

func TestScheduleIgnoresLaterDuplicate(t *testing.T) {
	q := NewScheduledTickQueue()
	pos := coords.BlockPos{X: 9}
	q.Schedule(pos, 0, 5, 0)
	q.Schedule(pos, 0, 20, 0) // later: must not replace the earlier entry

	due := q.Due(5)
	if len(due) != 1 {
		t.Fatalf("expected the earlier-scheduled entry to still fire at tick 5, got %v", due)
	}
}

func TestDueDrainsInNonDecreasingTickOrder(t *testing.T) {
	q := NewScheduledTickQueue()
	q.Schedule(coords.BlockPos{X: 1}, 0, 5, 0)
	q.Schedule(coords.BlockPos{X: 2}, 0, 1, 0)
	q.Schedule(coords.BlockPos{X: 3}, 0, 3, 0)

	due := q.Due(100)
	want := []coords.BlockPos{{X: 2}, {X: 3}, {X: 1}}
	if len(due) != len(want) {
		t.Fatalf("got %d entries, want %d", len(due), len(want))
	}
	for i := range want {
		if due[i] != want[i] {
			t.Fatalf("order[%d] = %v, want %v", i, due[i], want[i])
		}
	}
}
