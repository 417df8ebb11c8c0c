package block

import (
	"github.com/StoreStation/blockcore/pkg/coords"
	"github.com/StoreStation/blockcore/pkg/registry"
)

// EndPortalBehavior exercises OnEntityCollision without a dimension
// concept to travel between: the original's on_entity_collision resolves
// the paired Overworld/TheEnd world and calls try_use_portal on it, which
// needs a multi-dimension server out of scope here (player/session
// carve-out). The hook fires so the table entry is not dead code, but
// actual dimension travel belongs to the collaborator layer.
type EndPortalBehavior struct{ Default }

func (EndPortalBehavior) OnEntityCollision(World, *registry.Registry, coords.BlockPos, Entity) {
}

// ExplodeBehavior is the minimal reaction a TNT-like block has to
// detonation: it clears itself to air. Blast radius, entity damage and
// neighbor propagation are out of scope.
type ExplodeBehavior struct{ Default }

func (ExplodeBehavior) Explode(w World, reg *registry.Registry, pos coords.BlockPos) {
	airID, ok := reg.BlockIDByRegistryName("air")
	if !ok {
		return
	}
	w.SetBlockState(pos, reg.BlockByID(airID).DefaultState, 0)
}
