package worldevents

import (
	"testing"

	"github.com/google/uuid"

	"github.com/StoreStation/blockcore/pkg/coords"
)

func TestBusFiresRegisteredListeners(t *testing.T) {
	bus := NewBus()
	var got BlockChanged
	calls := 0
	bus.OnBlockChanged(func(e BlockChanged) {
		got = e
		calls++
	})

	pos := coords.BlockPos{X: 1, Y: 2, Z: 3}
	bus.FireBlockChanged(BlockChanged{Pos: pos, OldState: 1, NewState: 2})

	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
	if got.Pos != pos || got.OldState != 1 || got.NewState != 2 {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestFireBlockBreakStopsAtCancellation(t *testing.T) {
	bus := NewBus()
	var secondCalled bool
	bus.OnBlockBreak(func(e *BlockBreakEvent) { e.Cancel() })
	bus.OnBlockBreak(func(e *BlockBreakEvent) { secondCalled = true })

	e := NewBlockBreakEvent(coords.BlockPos{}, 0, uuid.New())
	out := bus.FireBlockBreak(e)

	if !out.IsCancelled() {
		t.Fatal("expected event to be cancelled")
	}
	if secondCalled {
		t.Fatal("second listener should not run after cancellation")
	}
}

func TestBlockBreakEventDropDefaultsTrue(t *testing.T) {
	e := NewBlockBreakEvent(coords.BlockPos{}, 0, uuid.New())
	if !e.ShouldDrop() {
		t.Fatal("expected ShouldDrop to default true")
	}
	e.SetDrop(false)
	if e.ShouldDrop() {
		t.Fatal("expected ShouldDrop to be false after SetDrop(false)")
	}
}

func TestUnrelatedListenersAreNotInvoked(t *testing.T) {
	bus := NewBus()
	called := false
	bus.OnChunkSent(func(e ChunkSent) { called = true })

	bus.FireBlockChanged(BlockChanged{})

	if called {
		t.Fatal("OnChunkSent listener should not fire for FireBlockChanged")
	}
}
