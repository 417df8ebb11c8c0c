package chunk

import (
	"github.com/StoreStation/blockcore/pkg/coords"
	"github.com/StoreStation/blockcore/pkg/registry"
)

// RelBlockCoord is a block position relative to its chunk: x,z in
// [0,16), y in [0, coords.WorldHeight).
type RelBlockCoord struct {
	X, Y, Z int
}

// RelBiomeCoord is a biome-cell position relative to its chunk, at
// quarter resolution: x,z in [0,4), y in [0, coords.SubchunksCount*4).
type RelBiomeCoord struct {
	X, Y, Z int
}

const biomesPerSubchunk = 4 // 16 blocks / 4-block biome cell
const biomeGridHeight = coords.SubchunksCount * biomesPerSubchunk

// Chunk is a realized 16x16xWorldHeight column of blocks: 24 sub-chunks,
// two heightmaps, a biome grid at quarter resolution and the chunk's
// generation status.
type Chunk struct {
	Coord      coords.ChunkCoord
	Subchunks  [coords.SubchunksCount]*SubChunk
	Heightmaps Heightmaps
	Biomes     []int // len coords.SubchunksCount*4 per column, 4x4 columns -> 4*4*biomeGridHeight
	Status     registry.ChunkStatus
	Dirty      bool
}

// NewEmpty returns a freshly created chunk: uniform air throughout,
// defaultBiome everywhere, not yet generated.
func NewEmpty(c coords.ChunkCoord, air registry.StateID, defaultBiome int) *Chunk {
	ch := &Chunk{Coord: c, Status: registry.StatusEmpty}
	for i := range ch.Subchunks {
		ch.Subchunks[i] = NewUniformSubChunk(air)
	}
	ch.Biomes = make([]int, 4*4*biomeGridHeight)
	for i := range ch.Biomes {
		ch.Biomes[i] = defaultBiome
	}
	return ch
}

func subchunkIndex(y int) (sub int, local int) {
	return y / coords.ChunkWidth, y % coords.ChunkWidth
}

// GetBlock returns the state ID at the chunk-relative position. Never
// fails for in-range coordinates.
func (c *Chunk) GetBlock(pos RelBlockCoord) registry.StateID {
	sub, local := subchunkIndex(pos.Y)
	return c.Subchunks[sub].Get(pos.X, local, pos.Z)
}

// SetBlock writes new at pos, returns the prior state, and keeps both
// heightmaps consistent with the write: recomputation runs here on every
// write that could change the column's top solid/motion-blocking block.
func (c *Chunk) SetBlock(reg *registry.Registry, pos RelBlockCoord, new registry.StateID) registry.StateID {
	sub, local := subchunkIndex(pos.Y)
	prior := c.Subchunks[sub].Set(pos.X, local, pos.Z, new)
	if prior != new {
		c.Dirty = true
		c.recomputeColumn(reg, pos.X, pos.Z)
	}
	return prior
}

// RecomputeHeightmaps rebuilds both heightmaps for every column. Used by
// the generation pipeline after bulk-populating sub-chunks directly
// (bypassing SetBlock's per-write recomputation for performance).
func (c *Chunk) RecomputeHeightmaps(reg *registry.Registry) {
	for z := 0; z < coords.ChunkWidth; z++ {
		for x := 0; x < coords.ChunkWidth; x++ {
			c.recomputeColumn(reg, x, z)
		}
	}
}

func (c *Chunk) recomputeColumn(reg *registry.Registry, x, z int) {
	motionTop := 0
	surfaceTop := 0
	foundMotion, foundSurface := false, false
	for y := coords.WorldHeight - 1; y >= 0; y-- {
		if foundMotion && foundSurface {
			break
		}
		st := reg.State(c.GetBlock(RelBlockCoord{X: x, Y: y, Z: z}))
		if !foundMotion && isMotionBlocking(st) {
			motionTop = y + 1
			foundMotion = true
		}
		if !foundSurface && isWorldSurface(st) {
			surfaceTop = y + 1
			foundSurface = true
		}
	}
	c.Heightmaps.SetMotionBlocking(x, z, motionTop)
	c.Heightmaps.SetWorldSurface(x, z, surfaceTop)
}

func isMotionBlocking(st *registry.State) bool {
	return !st.Air && !st.Replaceable
}

func isWorldSurface(st *registry.State) bool {
	return !st.Air
}

// GetBiome returns the biome index stored at the given chunk-relative
// biome-cell coordinate.
func (c *Chunk) GetBiome(pos RelBiomeCoord) int {
	idx := (pos.Y*4+pos.Z)*4 + pos.X
	return c.Biomes[idx]
}

// SetBiome stores the biome index at the given chunk-relative biome-cell
// coordinate.
func (c *Chunk) SetBiome(pos RelBiomeCoord, biome int) {
	idx := (pos.Y*4+pos.Z)*4 + pos.X
	c.Biomes[idx] = biome
}

// EachSubchunkRaw yields each sub-chunk's storage form directly: whether it
// is uniform, its single value if so, and its dense buffer otherwise (nil
// when uniform). Used by the region codec, which serializes uniform
// sub-chunks without a dense array.
func (c *Chunk) EachSubchunkRaw(yield func(index int, uniform bool, value registry.StateID, dense []registry.StateID)) {
	for i, sc := range c.Subchunks {
		yield(i, sc.IsUniform(), sc.UniformValue(), sc.rawDense())
	}
}

// EachSubchunkAsDense yields all 24 sub-chunks as dense 4096-state
// buffers, for the chunk-send path. A single scratch buffer is reused
// across uniform sub-chunks so a fully-uniform chunk (freshly generated
// flat terrain, or an unloaded void chunk) costs one allocation total.
func (c *Chunk) EachSubchunkAsDense(yield func(index int, dense []registry.StateID)) {
	scratch := make([]registry.StateID, DenseSize)
	for i, sc := range c.Subchunks {
		yield(i, sc.AsDense(scratch))
	}
}
