package block

import (
	"testing"

	"github.com/StoreStation/blockcore/pkg/coords"
	"github.com/StoreStation/blockcore/pkg/registry"
)

// fakeWorld is a flat map-backed World stub for behavior/redstone unit tests.
type fakeWorld struct {
	states map[coords.BlockPos]registry.StateID
	air    registry.StateID
	scheduled []coords.BlockPos
}

func newFakeWorld(air registry.StateID) *fakeWorld {
	return &fakeWorld{states: make(map[coords.BlockPos]registry.StateID), air: air}
}

func (w *fakeWorld) GetBlockState(pos coords.BlockPos) registry.StateID {
	if st, ok := w.states[pos]; ok {
		return st
	}
	return w.air
}

func (w *fakeWorld) SetBlockState(pos coords.BlockPos, state registry.StateID, _ int) {
	w.states[pos] = state
}

func (w *fakeWorld) ScheduleBlockTick(pos coords.BlockPos, _ int, _ int) {
	w.scheduled = append(w.scheduled, pos)
}

func TestResolveConnectionSideThenNoneAfterRefacing(t *testing.T) {
	reg := registry.Builtin()
	airID, _ := reg.BlockIDByRegistryName("air")
	air := reg.BlockByID(airID).DefaultState
	stoneID, _ := reg.BlockIDByRegistryName("stone")
	stone := reg.BlockByID(stoneID).DefaultState
	repeaterID, _ := reg.BlockIDByRegistryName("repeater")
	repeater := reg.BlockByID(repeaterID)

	w := newFakeWorld(air)
	table := NewTable()

	wirePos := coords.BlockPos{X: 0, Y: 64, Z: 0}
	w.SetBlockState(wirePos.Offset(coords.Down), stone, 0)

	eastFacingRepeater := StateIDFromProperties(reg, repeater.ID, []registry.PropertyValue{"east", "false"})
	repeaterPos := wirePos.Offset(coords.East)
	w.SetBlockState(repeaterPos, eastFacingRepeater, 0)
	w.SetBlockState(repeaterPos.Offset(coords.Down), stone, 0)

	got := ResolveConnection(reg, table, w, wirePos, coords.East)
	if got != ConnectionSide {
		t.Fatalf("expected Side with an east-facing repeater to the east, got %v", got)
	}

	northFacingRepeater := StateIDFromProperties(reg, repeater.ID, []registry.PropertyValue{"north", "false"})
	w.SetBlockState(repeaterPos, northFacingRepeater, 0)

	got = ResolveConnection(reg, table, w, wirePos, coords.East)
	if got != ConnectionNone {
		t.Fatalf("expected None after re-facing the repeater north, got %v", got)
	}
}
