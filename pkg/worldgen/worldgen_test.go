package worldgen

import (
	"testing"

	"github.com/StoreStation/blockcore/pkg/coords"
	"github.com/StoreStation/blockcore/pkg/registry"
)

func TestGenerateProducesFullStatusChunk(t *testing.T) {
	reg := registry.Builtin()
	p, err := NewPipeline(42, reg)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	c := p.Generate(coords.ChunkCoord{X: 0, Z: 0})
	if c.Status != registry.StatusFull {
		t.Fatalf("expected StatusFull, got %v", c.Status)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	reg := registry.Builtin()
	p, err := NewPipeline(7, reg)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	coord := coords.ChunkCoord{X: 3, Z: -2}
	first := p.Generate(coord)
	second := p.Generate(coord)

	for y := coords.WorldMinY; y < coords.WorldMaxY; y++ {
		relY, local := (y-coords.WorldMinY)/coords.ChunkWidth, (y-coords.WorldMinY)%coords.ChunkWidth
		a := first.Subchunks[relY].Get(5, local, 5)
		b := second.Subchunks[relY].Get(5, local, 5)
		if a != b {
			t.Fatalf("generation not deterministic at y=%d: %d != %d", y, a, b)
		}
	}
}

func TestGenerateFillsHeightmaps(t *testing.T) {
	reg := registry.Builtin()
	p, err := NewPipeline(1, reg)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	c := p.Generate(coords.ChunkCoord{X: 0, Z: 0})
	h := c.Heightmaps.GetWorldSurface(0, 0)
	if h == 0 {
		t.Fatal("expected a non-zero world-surface heightmap entry after generation")
	}
}

func TestNewPipelineRejectsBiomelessRegistry(t *testing.T) {
	empty, err := registry.Build([]registry.BlockDef{{RegistryName: "minecraft:air", StateTemplate: registry.State{Air: true}}}, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := NewPipeline(0, empty); err == nil {
		t.Fatal("expected NewPipeline to fail against a registry with no biomes")
	}
}
