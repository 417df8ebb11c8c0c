package block

import (
	"testing"

	"github.com/StoreStation/blockcore/pkg/coords"
	"github.com/StoreStation/blockcore/pkg/registry"
)

func TestButtonPressSchedulesReleaseTick(t *testing.T) {
	reg := registry.Builtin()
	airID, _ := reg.BlockIDByRegistryName("air")
	air := reg.BlockByID(airID).DefaultState
	buttonID, _ := reg.BlockIDByRegistryName("oak_button")
	button := reg.BlockByID(buttonID)

	w := newFakeWorld(air)
	table := NewTable()
	RegisterBuiltins(table, reg)

	pos := coords.BlockPos{X: 0, Y: 64, Z: 0}
	unpowered := StateIDFromProperties(reg, button.ID, []registry.PropertyValue{"north", "false"})
	w.SetBlockState(pos, unpowered, 0)

	behavior := table.Lookup(button.ID)
	behavior.NormalUse(w, reg, pos)

	state := w.GetBlockState(pos)
	powered, ok := PropertyValueOf(reg, state, "powered")
	if !ok || powered != "true" {
		t.Fatalf("expected powered=true after press, got %q", powered)
	}
	if len(w.scheduled) != 1 || w.scheduled[0] != pos {
		t.Fatalf("expected a scheduled tick at %v, got %v", pos, w.scheduled)
	}

	behavior.ScheduledTick(w, reg, pos)
	state = w.GetBlockState(pos)
	powered, _ = PropertyValueOf(reg, state, "powered")
	if powered != "false" {
		t.Fatalf("expected powered=false after the release tick, got %q", powered)
	}
}

func TestButtonPressWhileAlreadyPoweredIsANoOp(t *testing.T) {
	reg := registry.Builtin()
	airID, _ := reg.BlockIDByRegistryName("air")
	air := reg.BlockByID(airID).DefaultState
	buttonID, _ := reg.BlockIDByRegistryName("oak_button")
	button := reg.BlockByID(buttonID)

	w := newFakeWorld(air)
	table := NewTable()
	RegisterBuiltins(table, reg)

	pos := coords.BlockPos{X: 0, Y: 64, Z: 0}
	powered := StateIDFromProperties(reg, button.ID, []registry.PropertyValue{"north", "true"})
	w.SetBlockState(pos, powered, 0)

	table.Lookup(button.ID).NormalUse(w, reg, pos)

	if len(w.scheduled) != 0 {
		t.Fatalf("expected no scheduled tick when already powered, got %v", w.scheduled)
	}
}

func TestTrapdoorTogglesOpenWithNoScheduledTick(t *testing.T) {
	reg := registry.Builtin()
	airID, _ := reg.BlockIDByRegistryName("air")
	air := reg.BlockByID(airID).DefaultState
	trapdoorID, _ := reg.BlockIDByRegistryName("oak_trapdoor")
	trapdoor := reg.BlockByID(trapdoorID)

	w := newFakeWorld(air)
	table := NewTable()
	RegisterBuiltins(table, reg)

	pos := coords.BlockPos{X: 1, Y: 64, Z: 1}
	closed := StateIDFromProperties(reg, trapdoor.ID, []registry.PropertyValue{"north", "false"})
	w.SetBlockState(pos, closed, 0)

	table.Lookup(trapdoor.ID).NormalUse(w, reg, pos)

	state := w.GetBlockState(pos)
	open, ok := PropertyValueOf(reg, state, "open")
	if !ok || open != "true" {
		t.Fatalf("expected open=true after use, got %q", open)
	}
	if len(w.scheduled) != 0 {
		t.Fatal("trapdoor should never schedule a tick")
	}
}

func TestLeverEmitsRedstonePower(t *testing.T) {
	reg := registry.Builtin()

	var lever LeverBehavior
	if !lever.EmitsRedstonePower(0) {
		t.Fatal("expected LeverBehavior to always emit redstone power")
	}

	_ = reg // lever block is not in the builtin table; behavior is exercised directly
}

func TestRegisterBuiltinsSkipsMissingBlocks(t *testing.T) {
	empty, err := registry.Build([]registry.BlockDef{{RegistryName: "minecraft:air", StateTemplate: registry.State{Air: true}}}, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	table := NewTable()
	RegisterBuiltins(table, empty) // must not panic against a registry with none of these blocks
}
