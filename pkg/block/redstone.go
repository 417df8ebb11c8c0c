package block

import (
	"github.com/StoreStation/blockcore/pkg/coords"
	"github.com/StoreStation/blockcore/pkg/registry"
)

// ConnectionType is a redstone-wire cell's connection state toward one
// horizontal neighbor.
type ConnectionType int

const (
	ConnectionNone ConnectionType = iota
	ConnectionSide
	ConnectionUp
)

// isTopSolid reports whether the topmost collision shape of state covers
// the full top face, via the registry's side-solid check (C1).
func isTopSolid(reg *registry.Registry, state registry.StateID) bool {
	return registry.IsSideSolid(reg.CollisionShapes(state), coords.Up)
}

// hasSupport reports whether state has any collision shape at all — a
// redstone wire needs ground to sit on, regardless of which face it
// presents (original_source's can_run_on_top/is_solid, distinct from the
// full-face is_side_solid check).
func hasSupport(reg *registry.Registry, state registry.StateID) bool {
	return len(reg.CollisionShapes(state)) > 0
}

// connectsTo reports whether the block at nbrState is willing to carry a
// redstone connection in the direction dir away from the wire.
func connectsTo(reg *registry.Registry, t *Table, nbrState registry.StateID, dir coords.Direction) bool {
	id := reg.BlockIDByStateID(nbrState)
	name := reg.BlockByID(id).RegistryName
	switch stripNamespace(name) {
	case "redstone_wire":
		return true
	case "repeater":
		facing, _ := PropertyValueOf(reg, nbrState, "facing")
		return registry.PropertyValue(dir.String()) == facing || registry.PropertyValue(dir.Opposite().String()) == facing
	case "observer":
		facing, _ := PropertyValueOf(reg, nbrState, "facing")
		return registry.PropertyValue(dir.String()) == facing
	default:
		return t.Lookup(id).EmitsRedstonePower(nbrState)
	}
}

func stripNamespace(name string) string {
	for i := 0; i < len(name); i++ {
		if name[i] == ':' {
			return name[i+1:]
		}
	}
	return name
}

// ResolveConnection determines the north/east/south/west connection type a
// redstone-wire cell at pos presents toward dir.
func ResolveConnection(reg *registry.Registry, t *Table, w World, pos coords.BlockPos, dir coords.Direction) ConnectionType {
	above := w.GetBlockState(pos.Offset(coords.Up))
	aboveSolid := isTopSolid(reg, above)

	nbrPos := pos.Offset(dir)
	nbrState := w.GetBlockState(nbrPos)
	nbrID := reg.BlockIDByStateID(nbrState)
	nbrName := stripNamespace(reg.BlockByID(nbrID).RegistryName)

	if !aboveSolid && nbrName == "oak_trapdoor" {
		open, _ := PropertyValueOf(reg, nbrState, "open")
		if isTopSolid(reg, nbrState) || open == "false" {
			return ConnectionUp
		}
	}

	// A repeater or observer only carries the circuit through its facing
	// axis; facing away from dir blocks the connection outright, regardless
	// of what's beneath it.
	switch nbrName {
	case "repeater", "observer":
		if connectsTo(reg, t, nbrState, dir) {
			return ConnectionSide
		}
		return ConnectionNone
	}

	if connectsTo(reg, t, nbrState, dir) {
		return ConnectionSide
	}

	below := w.GetBlockState(nbrPos.Offset(coords.Down))
	if hasSupport(reg, below) {
		return ConnectionSide
	}
	return ConnectionNone
}
