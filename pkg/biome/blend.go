package biome

import "github.com/StoreStation/blockcore/pkg/coords"

// biomeAt is the subset of chunk.Chunk a blend needs, kept narrow so this
// package never imports pkg/chunk directly (pkg/chunk already imports
// pkg/registry, and pkg/biome must stay a leaf alongside it).
type biomeAt interface {
	GetBiomeAt(x, y, z int32) int
}

// Blend selects the biome a block position renders as by scoring the 8
// corners of the surrounding quarter cell and picking the minimal-score one.
// seed is the world seed; bottomBiomeY/topBiomeY bound the chunk's
// biome-grid Y range (inclusive) that the chosen coordinate is clamped into.
func Blend(c biomeAt, seed uint64, pos coords.BlockPos, bottomBiomeY, topBiomeY int32) int {
	offX := pos.X - 2
	offY := pos.Y - 2
	offZ := pos.Z - 2

	baseX := floorDiv4(offX)
	baseY := floorDiv4(offY)
	baseZ := floorDiv4(offZ)

	qx := float64(floorMod4(offX)) / 4.0
	qy := float64(floorMod4(offY)) / 4.0
	qz := float64(floorMod4(offZ)) / 4.0

	bestScore := 0.0
	bestX, bestY, bestZ := baseX, baseY, baseZ
	haveBest := false

	for p := 0; p < 8; p++ {
		shiftX := p&1 != 0
		shiftY := p&2 != 0
		shiftZ := p&4 != 0

		cx, cy, cz := baseX, baseY, baseZ
		xq, yq, zq := qx, qy, qz
		if shiftX {
			cx++
			xq -= 1
		}
		if shiftY {
			cy++
			yq -= 1
		}
		if shiftZ {
			cz++
			zq -= 1
		}

		ox, oy, oz := coords.SeedOffsets(seed, int64(cx), int64(cy), int64(cz))
		dx, dy, dz := xq+ox, yq+oy, zq+oz
		score := dx*dx + dy*dy + dz*dz

		if !haveBest || score < bestScore {
			haveBest = true
			bestScore = score
			bestX, bestY, bestZ = cx, cy, cz
		}
	}

	if bestY < bottomBiomeY {
		bestY = bottomBiomeY
	}
	if bestY > topBiomeY {
		bestY = topBiomeY
	}

	return c.GetBiomeAt(bestX, bestY, bestZ)
}

func floorDiv4(v int32) int32 {
	if v >= 0 {
		return v >> 2
	}
	return -((-v + 3) >> 2)
}

func floorMod4(v int32) int32 {
	m := v % 4
	if m < 0 {
		m += 4
	}
	return m
}
