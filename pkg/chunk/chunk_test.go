package chunk

import (
	"testing"

	"github.com/StoreStation/blockcore/pkg/coords"
	"github.com/StoreStation/blockcore/pkg/registry"
)

func testRegistry() *registry.Registry { return registry.Builtin() }

func TestNewEmptyAllAir(t *testing.T) {
	reg := testRegistry()
	airID, _ := reg.BlockIDByRegistryName("air")
	air := reg.BlockByID(airID).DefaultState
	c := NewEmpty(coords.ChunkCoord{X: 0, Z: 0}, air, 0)
	if c.GetBlock(RelBlockCoord{X: 5, Y: 100, Z: 5}) != air {
		t.Fatal("expected air throughout a freshly created chunk")
	}
}

func TestSetBlockRecomputesHeightmap(t *testing.T) {
	reg := testRegistry()
	airID, _ := reg.BlockIDByRegistryName("air")
	air := reg.BlockByID(airID).DefaultState
	stoneID, _ := reg.BlockIDByRegistryName("stone")
	stone := reg.BlockByID(stoneID).DefaultState

	c := NewEmpty(coords.ChunkCoord{}, air, 0)
	if h := c.Heightmaps.GetMotionBlocking(3, 4); h != 0 {
		t.Fatalf("empty chunk motion_blocking = %d, want 0", h)
	}

	c.SetBlock(reg, RelBlockCoord{X: 3, Y: 70, Z: 4}, stone)
	if h := c.Heightmaps.GetMotionBlocking(3, 4); h != 71 {
		t.Fatalf("motion_blocking after placing stone at y=70 = %d, want 71", h)
	}

	c.SetBlock(reg, RelBlockCoord{X: 3, Y: 70, Z: 4}, air)
	if h := c.Heightmaps.GetMotionBlocking(3, 4); h != 0 {
		t.Fatalf("motion_blocking after removing the stone = %d, want 0", h)
	}
}

func TestEachSubchunkAsDenseCoversAll24(t *testing.T) {
	reg := testRegistry()
	airID, _ := reg.BlockIDByRegistryName("air")
	air := reg.BlockByID(airID).DefaultState
	c := NewEmpty(coords.ChunkCoord{}, air, 0)

	count := 0
	c.EachSubchunkAsDense(func(index int, dense []registry.StateID) {
		count++
		if len(dense) != DenseSize {
			t.Fatalf("subchunk %d: len = %d, want %d", index, len(dense), DenseSize)
		}
	})
	if count != coords.SubchunksCount {
		t.Fatalf("visited %d subchunks, want %d", count, coords.SubchunksCount)
	}
}
