package world

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/StoreStation/blockcore/pkg/coords"
	"github.com/StoreStation/blockcore/pkg/registry"
)

func TestRaytraceHitsPlacedBlockFromAbove(t *testing.T) {
	w := newTestWorld(t)
	stoneID, _ := w.reg.BlockIDByRegistryName("stone")
	stone := w.reg.BlockByID(stoneID).DefaultState
	target := coords.BlockPos{X: 0, Y: 64, Z: 0}
	w.SetBlockState(target, stone, 0)

	isStone := func(pos coords.BlockPos, state registry.StateID) bool {
		return state == stone
	}

	hit, face, ok := w.Raytrace(mgl64.Vec3{0.5, 70, 0.5}, mgl64.Vec3{0.5, 60, 0.5}, isStone)
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit != target {
		t.Fatalf("hit = %+v, want %+v", hit, target)
	}
	if face != coords.Up {
		t.Fatalf("face = %v, want up", face)
	}
}

func TestRaytraceMissesWhenPredicateNeverAccepts(t *testing.T) {
	w := newTestWorld(t)
	never := func(coords.BlockPos, registry.StateID) bool { return false }

	_, _, ok := w.Raytrace(mgl64.Vec3{0.5, 70, 0.5}, mgl64.Vec3{0.5, 60, 0.5}, never)
	if ok {
		t.Fatal("expected no hit")
	}
}

func TestRaytraceDegenerateSegmentMisses(t *testing.T) {
	w := newTestWorld(t)
	always := func(coords.BlockPos, registry.StateID) bool { return true }

	_, _, ok := w.Raytrace(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1, 1, 1}, always)
	if ok {
		t.Fatal("expected a zero-length segment to report no hit")
	}
}
