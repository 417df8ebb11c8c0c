package region

import (
	"github.com/StoreStation/blockcore/pkg/chunk"
	"github.com/StoreStation/blockcore/pkg/coords"
	"github.com/StoreStation/blockcore/pkg/registry"
)

// nbtSubChunk is the on-disk shape of one sub-chunk: uniform sub-chunks
// serialize without a Dense array at all, matching vanilla's palette
// compaction for single-entry palettes. State IDs are stored as signed
// int32 — NBT has no unsigned integral tag.
type nbtSubChunk struct {
	Y       int8    `nbt:"Y"`
	Uniform bool    `nbt:"Uniform"`
	Value   int32   `nbt:"Value"`
	Dense   []int32 `nbt:"Dense,omitempty"`
}

// nbtChunk is the root NBT compound persisted in a region sector, modeled
// after the vanilla per-chunk NBT document: top-level heightmaps and an
// ordered list of sub-chunk sections.
type nbtChunk struct {
	XPos           int32         `nbt:"xPos"`
	ZPos           int32         `nbt:"zPos"`
	Status         int8          `nbt:"Status"`
	MotionBlocking []int64       `nbt:"MotionBlocking"`
	WorldSurface   []int64       `nbt:"WorldSurface"`
	Biomes         []int32       `nbt:"Biomes"`
	Sections       []nbtSubChunk `nbt:"Sections"`
}

const heightmapLongs = 37

// encodeChunk converts an in-memory Chunk into its NBT transfer form.
func encodeChunk(c *chunk.Chunk) nbtChunk {
	out := nbtChunk{
		XPos:           c.Coord.X,
		ZPos:           c.Coord.Z,
		Status:         int8(c.Status),
		MotionBlocking: make([]int64, heightmapLongs),
		WorldSurface:   make([]int64, heightmapLongs),
		Sections:       make([]nbtSubChunk, coords.SubchunksCount),
	}
	copy(out.MotionBlocking, c.Heightmaps.MotionBlocking[:])
	copy(out.WorldSurface, c.Heightmaps.WorldSurface[:])

	out.Biomes = make([]int32, len(c.Biomes))
	for i, b := range c.Biomes {
		out.Biomes[i] = int32(b)
	}

	c.EachSubchunkRaw(func(index int, uniform bool, value registry.StateID, dense []registry.StateID) {
		sc := nbtSubChunk{Y: int8(coords.WorldMinY/coords.ChunkWidth + index), Uniform: uniform, Value: int32(value)}
		if !uniform {
			sc.Dense = make([]int32, len(dense))
			for i, v := range dense {
				sc.Dense[i] = int32(v)
			}
		}
		out.Sections[index] = sc
	})
	return out
}

// decodeChunk rebuilds a Chunk from its NBT transfer form.
func decodeChunk(n nbtChunk) *chunk.Chunk {
	c := &chunk.Chunk{
		Coord:  coords.ChunkCoord{X: n.XPos, Z: n.ZPos},
		Status: registry.ChunkStatus(uint8(n.Status)),
	}
	copy(c.Heightmaps.MotionBlocking[:], n.MotionBlocking)
	copy(c.Heightmaps.WorldSurface[:], n.WorldSurface)

	c.Biomes = make([]int, len(n.Biomes))
	for i, b := range n.Biomes {
		c.Biomes[i] = int(b)
	}

	for i, sc := range n.Sections {
		if sc.Uniform {
			c.Subchunks[i] = chunk.NewUniformSubChunk(registry.StateID(sc.Value))
		} else {
			dense := make([]registry.StateID, len(sc.Dense))
			for i, v := range sc.Dense {
				dense[i] = registry.StateID(v)
			}
			c.Subchunks[i] = chunk.NewDenseSubChunk(dense)
		}
	}
	return c
}
