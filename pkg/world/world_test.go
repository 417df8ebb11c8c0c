package world

import (
	"context"
	"testing"

	"github.com/StoreStation/blockcore/pkg/block"
	"github.com/StoreStation/blockcore/pkg/coords"
	"github.com/StoreStation/blockcore/pkg/registry"
	"github.com/StoreStation/blockcore/pkg/worldevents"
	"github.com/StoreStation/blockcore/pkg/worldgen"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	reg := registry.Builtin()
	table := block.NewTable()
	block.RegisterBuiltins(table, reg)
	gen, err := worldgen.NewPipeline(1, reg)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return New(1, reg, table, gen, t.TempDir())
}

func TestGetBlockStateOnUngeneratedChunkTriggersGeneration(t *testing.T) {
	w := newTestWorld(t)
	pos := coords.BlockPos{X: 5, Y: 64, Z: 5}

	// Should not panic or return an error; a miss generates the chunk.
	_ = w.GetBlockState(pos)
}

func TestSetBlockStateThenGetBlockStateRoundTrips(t *testing.T) {
	w := newTestWorld(t)
	stoneID, _ := w.reg.BlockIDByRegistryName("stone")
	stone := w.reg.BlockByID(stoneID).DefaultState

	pos := coords.BlockPos{X: 10, Y: 70, Z: -3}
	w.SetBlockState(pos, stone, 0)

	if got := w.GetBlockState(pos); got != stone {
		t.Fatalf("expected %d, got %d", stone, got)
	}
}

func TestSetBlockStateMarksChunkDirty(t *testing.T) {
	w := newTestWorld(t)
	stoneID, _ := w.reg.BlockIDByRegistryName("stone")
	stone := w.reg.BlockByID(stoneID).DefaultState

	pos := coords.BlockPos{X: 1, Y: 65, Z: 1}
	w.SetBlockState(pos, stone, 0)

	e, err := w.getOrLoad(context.Background(), pos.ChunkCoord())
	if err != nil {
		t.Fatalf("getOrLoad: %v", err)
	}
	if !e.dirty.Load() {
		t.Fatal("expected chunk to be marked dirty after a write")
	}
}

func TestSetBlockStateFiresBlockChangedWhenRequested(t *testing.T) {
	w := newTestWorld(t)
	stoneID, _ := w.reg.BlockIDByRegistryName("stone")
	stone := w.reg.BlockByID(stoneID).DefaultState

	var got worldevents.BlockChanged
	fired := false
	w.Events().OnBlockChanged(func(e worldevents.BlockChanged) {
		got = e
		fired = true
	})

	pos := coords.BlockPos{X: 2, Y: 66, Z: 2}
	w.SetBlockState(pos, stone, int(NotifyListeners))

	if !fired {
		t.Fatal("expected BlockChanged to fire")
	}
	if got.Pos != pos || got.NewState != stone {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestSetBlockStateNoOpDoesNotFireWithoutForceState(t *testing.T) {
	w := newTestWorld(t)
	pos := coords.BlockPos{X: 3, Y: 67, Z: 3}
	before := w.GetBlockState(pos)

	fired := false
	w.Events().OnBlockChanged(func(worldevents.BlockChanged) { fired = true })

	w.SetBlockState(pos, before, int(NotifyListeners))
	if fired {
		t.Fatal("expected no-op write to skip notification")
	}
}

func TestScheduleBlockTickRunsOnTick(t *testing.T) {
	w := newTestWorld(t)
	buttonID, _ := w.reg.BlockIDByRegistryName("oak_button")
	button := w.reg.BlockByID(buttonID)

	pos := coords.BlockPos{X: 4, Y: 68, Z: 4}
	unpowered := block.StateIDFromProperties(w.reg, button.ID, []registry.PropertyValue{"north", "false"})
	w.SetBlockState(pos, unpowered, 0)

	behavior := w.behav.Lookup(button.ID)
	behavior.NormalUse(w, w.reg, pos)

	state := w.GetBlockState(pos)
	powered, _ := block.PropertyValueOf(w.reg, state, "powered")
	if powered != "true" {
		t.Fatalf("expected powered=true right after press, got %q", powered)
	}

	for i := 0; i < buttonReleaseDelayForTest+1; i++ {
		w.Tick()
	}

	state = w.GetBlockState(pos)
	powered, _ = block.PropertyValueOf(w.reg, state, "powered")
	if powered != "false" {
		t.Fatalf("expected powered=false after the scheduled release tick, got %q", powered)
	}
}

// buttonReleaseDelayForTest mirrors the button's own release delay so the
// test ticks past it without depending on an unexported constant from
// another package.
const buttonReleaseDelayForTest = 20

func TestFlushDirtyPersistsAndClearsDirtyFlag(t *testing.T) {
	w := newTestWorld(t)
	stoneID, _ := w.reg.BlockIDByRegistryName("stone")
	stone := w.reg.BlockByID(stoneID).DefaultState

	pos := coords.BlockPos{X: 6, Y: 69, Z: 6}
	w.SetBlockState(pos, stone, 0)

	if err := w.FlushDirty(context.Background(), 2); err != nil {
		t.Fatalf("FlushDirty: %v", err)
	}

	e, err := w.getOrLoad(context.Background(), pos.ChunkCoord())
	if err != nil {
		t.Fatalf("getOrLoad: %v", err)
	}
	if e.dirty.Load() {
		t.Fatal("expected dirty flag cleared after flush")
	}
}

func TestBiomeAtIsDeterministic(t *testing.T) {
	w := newTestWorld(t)
	pos := coords.BlockPos{X: 20, Y: 64, Z: 20}

	first := w.BiomeAt(pos)
	second := w.BiomeAt(pos)
	if first != second {
		t.Fatalf("BiomeAt not deterministic: %d != %d", first, second)
	}
}

func TestCloseFlushesAndClosesRegions(t *testing.T) {
	w := newTestWorld(t)
	stoneID, _ := w.reg.BlockIDByRegistryName("stone")
	stone := w.reg.BlockByID(stoneID).DefaultState
	w.SetBlockState(coords.BlockPos{X: 0, Y: 64, Z: 0}, stone, 0)

	if err := w.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
