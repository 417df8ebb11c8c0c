package block

import (
	"github.com/StoreStation/blockcore/pkg/coords"
	"github.com/StoreStation/blockcore/pkg/registry"
)

// World is the subset of the world façade a block behavior needs. Defined
// here, implemented by pkg/world, so pkg/block never imports its caller:
// the cyclic reference is resolved by an interface, not a pointer back up
// the stack.
type World interface {
	GetBlockState(pos coords.BlockPos) registry.StateID
	SetBlockState(pos coords.BlockPos, state registry.StateID, flags int)
	ScheduleBlockTick(pos coords.BlockPos, delayTicks int, priority int)
}

// UseResult is the outcome of a right-click-with-item interaction.
type UseResult int

const (
	Continue UseResult = iota
	Consume
)

// Entity is the minimal entity-collision payload.
type Entity struct {
	ID coords.BlockPos // placeholder identity; a full entity system is out of scope
}

// Behavior is the optional, stateless per-block hook set. Every hook
// defaults to a no-op; concrete blocks embed Default and override the
// hooks they need. This is a table of function pointers keyed by block
// ID, implemented here as an interface plus embeddable no-op struct
// rather than the original's trait objects.
type Behavior interface {
	CanPlaceOnSide(w World, pos coords.BlockPos, face coords.Direction) bool
	OnPlace(w World, reg *registry.Registry, block *registry.Block, face coords.Direction, pos coords.BlockPos) registry.StateID
	NormalUse(w World, reg *registry.Registry, pos coords.BlockPos)
	UseWithItem(w World, reg *registry.Registry, pos coords.BlockPos, itemID int32) UseResult
	OnEntityCollision(w World, reg *registry.Registry, pos coords.BlockPos, ent Entity)
	EmitsRedstonePower(state registry.StateID) bool
	WeakRedstonePower(reg *registry.Registry, state registry.StateID, w World, pos coords.BlockPos, dir coords.Direction) uint8
	StrongRedstonePower(reg *registry.Registry, state registry.StateID, w World, pos coords.BlockPos, dir coords.Direction) uint8
	ScheduledTick(w World, reg *registry.Registry, pos coords.BlockPos)
	OnStateReplaced(w World, reg *registry.Registry, pos coords.BlockPos, oldState, newState registry.StateID)
	Explode(w World, reg *registry.Registry, pos coords.BlockPos)
}

// Default implements every Behavior hook as a no-op, or the conservative
// default otherwise: place always allowed, no redstone. Concrete behaviors
// embed Default and override what they need.
type Default struct{}

func (Default) CanPlaceOnSide(World, coords.BlockPos, coords.Direction) bool { return true }
func (Default) OnPlace(_ World, _ *registry.Registry, block *registry.Block, _ coords.Direction, _ coords.BlockPos) registry.StateID {
	return block.DefaultState
}
func (Default) NormalUse(World, *registry.Registry, coords.BlockPos)                     {}
func (Default) UseWithItem(World, *registry.Registry, coords.BlockPos, int32) UseResult { return Continue }
func (Default) OnEntityCollision(World, *registry.Registry, coords.BlockPos, Entity)     {}
func (Default) EmitsRedstonePower(registry.StateID) bool                                { return false }
func (Default) WeakRedstonePower(*registry.Registry, registry.StateID, World, coords.BlockPos, coords.Direction) uint8 {
	return 0
}
func (Default) StrongRedstonePower(*registry.Registry, registry.StateID, World, coords.BlockPos, coords.Direction) uint8 {
	return 0
}
func (Default) ScheduledTick(World, *registry.Registry, coords.BlockPos)                          {}
func (Default) OnStateReplaced(World, *registry.Registry, coords.BlockPos, registry.StateID, registry.StateID) {}
func (Default) Explode(World, *registry.Registry, coords.BlockPos)                                {}

// Table is the process-wide, write-once dispatch table from BlockID to its
// Behavior: a global registry, no per-lookup allocation. Blocks with no
// registered behavior dispatch to Default.
type Table struct {
	byBlockID map[registry.BlockID]Behavior
}

// NewTable builds an empty table; register each block's behavior with Register.
func NewTable() *Table {
	return &Table{byBlockID: make(map[registry.BlockID]Behavior)}
}

// Register associates a behavior with a block ID. Intended to be called
// once per block at startup, before any world task runs.
func (t *Table) Register(id registry.BlockID, b Behavior) {
	t.byBlockID[id] = b
}

var defaultBehavior = Default{}

// Lookup returns the registered behavior for id, or Default if none.
func (t *Table) Lookup(id registry.BlockID) Behavior {
	if b, ok := t.byBlockID[id]; ok {
		return b
	}
	return defaultBehavior
}
