package region

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/StoreStation/blockcore/pkg/chunk"
	"github.com/StoreStation/blockcore/pkg/coords"
	"github.com/StoreStation/blockcore/pkg/registry"
)

func TestRegionRoundTrip(t *testing.T) {
	reg := registry.Builtin()
	airID, _ := reg.BlockIDByRegistryName("air")
	air := reg.BlockByID(airID).DefaultState
	stoneID, _ := reg.BlockIDByRegistryName("stone")
	stone := reg.BlockByID(stoneID).DefaultState

	c := chunk.NewEmpty(coords.ChunkCoord{X: 5, Z: 7}, air, 0)
	c.SetBlock(reg, chunk.RelBlockCoord{X: 3, Y: 70, Z: 4}, stone)

	dir := t.TempDir()
	path := filepath.Join(dir, "r.5.7.mcr")

	r, err := Open(path, CompressionZlib)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := r.Write(c, CompressionZlib, time.Unix(1000, 0)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r2, err := Open(path, CompressionZlib)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer r2.Close()

	got, err := r2.Read(coords.ChunkCoord{X: 5, Z: 7})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got.Coord != c.Coord {
		t.Fatalf("coord mismatch: got %v want %v", got.Coord, c.Coord)
	}
	if got.Heightmaps.GetMotionBlocking(3, 4) != c.Heightmaps.GetMotionBlocking(3, 4) {
		t.Fatal("heightmap mismatch after round trip")
	}
	if got.GetBlock(chunk.RelBlockCoord{X: 3, Y: 70, Z: 4}) != stone {
		t.Fatal("block content mismatch after round trip")
	}
}

func TestReadChunkNotExist(t *testing.T) {
	dir := t.TempDir()
	r, err := Open(filepath.Join(dir, "r.0.0.mcr"), CompressionZlib)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	_, err = r.Read(coords.ChunkCoord{X: 1, Z: 1})
	if !IsKind(err, KindChunkNotExist) {
		t.Fatalf("expected KindChunkNotExist, got %v", err)
	}
}

func TestFreeMapFirstFitReusesSmallestAdequateRun(t *testing.T) {
	m := newFreeMap()
	a := m.allocate(2)
	b := m.allocate(3)
	m.markFree(a, 2)
	c := m.allocate(2)
	if c != a {
		t.Fatalf("expected reuse of freed run at %d, got %d", a, c)
	}
	_ = b
}
