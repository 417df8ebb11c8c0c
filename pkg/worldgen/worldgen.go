// Package worldgen is the generation-pipeline glue: it assigns biomes to
// a freshly created chunk via pkg/biome's multi-noise search tree, then
// populates a deterministic terrain surface from seeded Perlin noise.
// Cave carving, villages and structures are out of scope here; this
// produces a playable, deterministic overworld-shaped surface.
package worldgen

import (
	"github.com/aquilax/go-perlin"
	"github.com/pkg/errors"

	"github.com/StoreStation/blockcore/pkg/biome"
	"github.com/StoreStation/blockcore/pkg/chunk"
	"github.com/StoreStation/blockcore/pkg/coords"
	"github.com/StoreStation/blockcore/pkg/registry"
)

const (
	perlinAlpha = 2.
	perlinBeta  = 2.
	perlinN     = int32(3)

	terrainScale  = 0.01
	climateScale  = 0.0025
	baseSeaLevel  = 0 // world Y of the generated surface at neutral noise
	heightSpread  = 48
)

// Pipeline is one seeded, registry-bound generator. Built once per world
// and shared read-only across generation tasks: every Perlin instance and
// the biome tree are immutable after NewPipeline returns.
type Pipeline struct {
	reg  *registry.Registry
	tree *biome.Tree

	terrain         *perlin.Perlin
	temperature     *perlin.Perlin
	humidity        *perlin.Perlin
	continentalness *perlin.Perlin
	erosion         *perlin.Perlin
	weirdness       *perlin.Perlin

	air, stone, dirt, grass registry.StateID
	defaultBiome            int
}

// NewPipeline builds a Pipeline for seed against reg. reg must already
// contain at least one biome (biome.Build fails otherwise) and the "air"
// block; "stone", "dirt" and "grass_block" are used when present and
// otherwise fall back to stone/air so a minimal test registry still
// generates something.
func NewPipeline(seed int64, reg *registry.Registry) (*Pipeline, error) {
	tree, err := biome.Build(reg)
	if err != nil {
		return nil, errors.Wrap(err, "worldgen: build biome tree")
	}

	p := &Pipeline{
		reg:             reg,
		tree:            tree,
		terrain:         perlin.NewPerlin(perlinAlpha, perlinBeta, perlinN, seed),
		temperature:     perlin.NewPerlin(perlinAlpha, perlinBeta, perlinN, seed+1),
		humidity:        perlin.NewPerlin(perlinAlpha, perlinBeta, perlinN, seed+2),
		continentalness: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinN, seed+3),
		erosion:         perlin.NewPerlin(perlinAlpha, perlinBeta, perlinN, seed+4),
		weirdness:       perlin.NewPerlin(perlinAlpha, perlinBeta, perlinN, seed+5),
	}

	p.air = stateOrDefault(reg, "air", 0)
	p.stone = stateOrDefault(reg, "stone", p.air)
	p.dirt = stateOrDefault(reg, "dirt", p.stone)
	p.grass = stateOrDefault(reg, "grass_block", p.dirt)
	return p, nil
}

// DefaultBiome is the biome ID assigned to a chunk's grid before
// assignBiomes overwrites it, and the façade's fallback when a biome
// lookup's owning chunk cannot be loaded.
func (p *Pipeline) DefaultBiome() int { return p.defaultBiome }

func stateOrDefault(reg *registry.Registry, name string, fallback registry.StateID) registry.StateID {
	id, ok := reg.BlockIDByRegistryName(name)
	if !ok {
		return fallback
	}
	return reg.BlockByID(id).DefaultState
}

// Generate produces a fully-populated chunk at coord: status Full, biome
// grid assigned from the multi-noise tree, and a seeded terrain surface.
func (p *Pipeline) Generate(coord coords.ChunkCoord) *chunk.Chunk {
	c := chunk.NewEmpty(coord, p.air, p.defaultBiome)
	cache := biome.NewCache()
	p.assignBiomes(c, coord, cache)
	p.populateSurface(c, coord)
	c.Status = registry.StatusFull
	return c
}

// assignBiomes samples the multi-noise tree at every quarter-resolution
// biome cell in the chunk's column and vertical range.
func (p *Pipeline) assignBiomes(c *chunk.Chunk, coord coords.ChunkCoord, cache *biome.Cache) {
	const cellsPerAxis = 4 // 16 blocks / 4-block biome cell
	const verticalCells = coords.SubchunksCount * cellsPerAxis

	baseX := coord.X * cellsPerAxis
	baseZ := coord.Z * cellsPerAxis

	for by := 0; by < verticalCells; by++ {
		for bz := 0; bz < cellsPerAxis; bz++ {
			for bx := 0; bx < cellsPerAxis; bx++ {
				wx := float64(baseX + int32(bx))
				wz := float64(baseZ + int32(bz))
				wy := float64(by)

				var point [7]float64
				point[0] = p.temperature.Noise2D(wx*climateScale, wz*climateScale)
				point[1] = p.humidity.Noise2D(wx*climateScale, wz*climateScale)
				point[2] = p.continentalness.Noise2D(wx*climateScale*0.5, wz*climateScale*0.5)
				point[3] = p.erosion.Noise2D(wx*climateScale*2, wz*climateScale*2)
				point[4] = wy/verticalCells*2 - 1 // depth: -1 (bottom) .. 1 (top)
				point[5] = p.weirdness.Noise3D(wx*climateScale, wy*climateScale, wz*climateScale)
				point[6] = 0 // offset axis is a per-biome bias, not sampled

				leaf := cache.Query(p.tree, point)
				c.SetBiome(chunk.RelBiomeCoord{X: bx, Y: by, Z: bz}, leaf.Biome)
			}
		}
	}
}

// populateSurface fills each column with stone up to a noise-derived
// height, then a dirt/grass cap, air above.
func (p *Pipeline) populateSurface(c *chunk.Chunk, coord coords.ChunkCoord) {
	baseX := int(coord.X) * coords.ChunkWidth
	baseZ := int(coord.Z) * coords.ChunkWidth

	for z := 0; z < coords.ChunkWidth; z++ {
		for x := 0; x < coords.ChunkWidth; x++ {
			wx := float64(baseX + x)
			wz := float64(baseZ + z)
			n := p.terrain.Noise2D(wx*terrainScale, wz*terrainScale)
			surfaceY := baseSeaLevel + int(n*heightSpread)

			for y := coords.WorldMinY; y < coords.WorldMaxY; y++ {
				relY := y - coords.WorldMinY
				sub, local := relY/coords.ChunkWidth, relY%coords.ChunkWidth
				switch {
				case y > surfaceY:
					// leave air, the chunk's initial uniform state
				case y == surfaceY:
					c.Subchunks[sub].Set(x, local, z, p.grass)
				case y >= surfaceY-3:
					c.Subchunks[sub].Set(x, local, z, p.dirt)
				default:
					c.Subchunks[sub].Set(x, local, z, p.stone)
				}
			}
		}
	}
	c.RecomputeHeightmaps(p.reg)
}
