package block

import (
	"testing"

	"github.com/StoreStation/blockcore/pkg/coords"
	"github.com/StoreStation/blockcore/pkg/registry"
)

func TestExplodeBehaviorClearsToAir(t *testing.T) {
	reg := registry.Builtin()
	airID, _ := reg.BlockIDByRegistryName("air")
	air := reg.BlockByID(airID).DefaultState
	tntID, _ := reg.BlockIDByRegistryName("tnt")
	tnt := reg.BlockByID(tntID)

	w := newFakeWorld(air)
	pos := coords.BlockPos{X: 0, Y: 64, Z: 0}
	w.SetBlockState(pos, tnt.DefaultState, 0)

	var behavior ExplodeBehavior
	behavior.Explode(w, reg, pos)

	if got := w.GetBlockState(pos); got != air {
		t.Fatalf("expected air after Explode, got %d", got)
	}
}

func TestEndPortalBehaviorOnEntityCollisionDoesNotPanic(t *testing.T) {
	reg := registry.Builtin()
	airID, _ := reg.BlockIDByRegistryName("air")
	air := reg.BlockByID(airID).DefaultState
	w := newFakeWorld(air)

	var behavior EndPortalBehavior
	behavior.OnEntityCollision(w, reg, coords.BlockPos{}, Entity{})
}
