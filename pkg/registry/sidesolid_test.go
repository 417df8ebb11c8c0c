package registry

import (
	"testing"

	"github.com/StoreStation/blockcore/pkg/coords"
)

func TestIsSideSolidFullCube(t *testing.T) {
	shapes := []Shape{{Min: [3]float64{0, 0, 0}, Max: [3]float64{1, 1, 1}}}
	for _, face := range []coords.Direction{coords.Down, coords.Up, coords.North, coords.South, coords.West, coords.East} {
		if !IsSideSolid(shapes, face) {
			t.Errorf("full cube should be solid on %s", face)
		}
	}
}

func TestIsSideSolidThinFloorOnlyBottomAndTop(t *testing.T) {
	// A trapdoor-shaped slab flush with the bottom, not reaching the top.
	shapes := []Shape{{Min: [3]float64{0, 0, 0}, Max: [3]float64{1, 0.1875, 1}}}
	if !IsSideSolid(shapes, coords.Down) {
		t.Error("thin floor should be solid on the bottom face")
	}
	if IsSideSolid(shapes, coords.Up) {
		t.Error("thin floor should not be solid on the top face")
	}
}

func TestIsSideSolidNoUnionCoverage(t *testing.T) {
	// Two half-slabs that jointly cover the top face but neither alone does.
	shapes := []Shape{
		{Min: [3]float64{0, 0.5, 0}, Max: [3]float64{0.5, 1, 1}},
		{Min: [3]float64{0.5, 0.5, 0}, Max: [3]float64{1, 1, 1}},
	}
	if IsSideSolid(shapes, coords.Up) {
		t.Error("union coverage across multiple shapes must not be reported solid")
	}
}
