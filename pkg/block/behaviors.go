package block

import (
	"github.com/StoreStation/blockcore/pkg/coords"
	"github.com/StoreStation/blockcore/pkg/registry"
)

// buttonTickDelay is the 20-tick self-clock a pressed button schedules
// before it releases, grounded in the original Rust source's
// block/blocks/button.rs on_use.
const buttonTickDelay = 20

// ButtonBehavior implements a wooden/stone button: right-clicking toggles
// powered=false -> true and schedules a tick that flips it back.
type ButtonBehavior struct{ Default }

func (ButtonBehavior) NormalUse(w World, reg *registry.Registry, pos coords.BlockPos) {
	press(w, reg, pos)
}

func (ButtonBehavior) UseWithItem(w World, reg *registry.Registry, pos coords.BlockPos, _ int32) UseResult {
	press(w, reg, pos)
	return Consume
}

func press(w World, reg *registry.Registry, pos coords.BlockPos) {
	state := w.GetBlockState(pos)
	powered, ok := PropertyValueOf(reg, state, "powered")
	if !ok || powered == "true" {
		return
	}
	w.SetBlockState(pos, WithProperty(reg, state, "powered", "true"), 0)
	w.ScheduleBlockTick(pos, buttonTickDelay, 0)
}

func (ButtonBehavior) ScheduledTick(w World, reg *registry.Registry, pos coords.BlockPos) {
	state := w.GetBlockState(pos)
	if powered, ok := PropertyValueOf(reg, state, "powered"); ok && powered == "true" {
		w.SetBlockState(pos, WithProperty(reg, state, "powered", "false"), 0)
	}
}

// TrapdoorBehavior implements an openable trapdoor: right-clicking
// toggles the open property with no scheduled follow-up.
type TrapdoorBehavior struct{ Default }

func (TrapdoorBehavior) NormalUse(w World, reg *registry.Registry, pos coords.BlockPos) {
	state := w.GetBlockState(pos)
	open, ok := PropertyValueOf(reg, state, "open")
	if !ok {
		return
	}
	next := registry.PropertyValue("true")
	if open == "true" {
		next = "false"
	}
	w.SetBlockState(pos, WithProperty(reg, state, "open", next), 0)
}

// LeverBehavior implements a lever: right-clicking toggles powered with
// no scheduled follow-up (unlike the self-clocking button).
type LeverBehavior struct{ Default }

func (LeverBehavior) NormalUse(w World, reg *registry.Registry, pos coords.BlockPos) {
	state := w.GetBlockState(pos)
	powered, ok := PropertyValueOf(reg, state, "powered")
	if !ok {
		return
	}
	next := registry.PropertyValue("true")
	if powered == "true" {
		next = "false"
	}
	w.SetBlockState(pos, WithProperty(reg, state, "powered", next), 0)
}

func (LeverBehavior) EmitsRedstonePower(state registry.StateID) bool { return true }

// RepeaterBehavior's emits-power and connects-to semantics are handled
// directly by pkg/block/redstone.go's connectsTo (facing-equality); no
// scheduled-tick delay locking is modeled here.
type RepeaterBehavior struct{ Default }

func (RepeaterBehavior) EmitsRedstonePower(state registry.StateID) bool { return true }

// ObserverBehavior emits a pulse toward its facing direction; the pulse
// itself is driven by neighbor-update notification, out of scope here.
type ObserverBehavior struct{ Default }

func (ObserverBehavior) EmitsRedstonePower(state registry.StateID) bool { return true }

// RedstoneWireBehavior reports its own power level via its "power"
// property rather than a fixed emission.
type RedstoneWireBehavior struct{ Default }

func (RedstoneWireBehavior) EmitsRedstonePower(state registry.StateID) bool { return true }

// RegisterBuiltins wires the concrete behaviors above to the block IDs
// reg assigns them, for every block RegisterBuiltins finds by name. Safe
// to call against a registry that lacks some of these blocks (e.g. a
// narrow test registry); missing names are simply skipped.
func RegisterBuiltins(t *Table, reg *registry.Registry) {
	register := func(name string, b Behavior) {
		if id, ok := reg.BlockIDByRegistryName(name); ok {
			t.Register(id, b)
		}
	}
	register("oak_button", ButtonBehavior{})
	register("stone_button", ButtonBehavior{})
	register("oak_trapdoor", TrapdoorBehavior{})
	register("lever", LeverBehavior{})
	register("repeater", RepeaterBehavior{})
	register("observer", ObserverBehavior{})
	register("redstone_wire", RedstoneWireBehavior{})
	register("end_portal", EndPortalBehavior{})
	register("tnt", ExplodeBehavior{})
}
