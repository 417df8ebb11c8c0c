package chunk

import "github.com/StoreStation/blockcore/pkg/coords"

const (
	heightmapBits   = 9 // ceil(log2(WorldHeight+1)) = ceil(log2(385))
	heightmapSize   = coords.ChunkWidth * coords.ChunkWidth
	entriesPerLong  = 64 / heightmapBits
	heightmapLongs  = (heightmapSize + entriesPerLong - 1) / entriesPerLong
	heightmapMask   = (1 << heightmapBits) - 1
)

// Heightmaps holds the two bit-packed per-column height maps a chunk
// carries, in the standard NBT long-array layout: 9-bit values, no entry
// crossing a 64-bit word boundary.
type Heightmaps struct {
	MotionBlocking [heightmapLongs]int64
	WorldSurface   [heightmapLongs]int64
}

func columnIndex(x, z int) int { return z*coords.ChunkWidth + x }

func getPacked(arr *[heightmapLongs]int64, idx int) int {
	longIdx := idx / entriesPerLong
	bitOff := (idx % entriesPerLong) * heightmapBits
	return int((arr[longIdx] >> uint(bitOff)) & heightmapMask)
}

func setPacked(arr *[heightmapLongs]int64, idx int, value int) {
	longIdx := idx / entriesPerLong
	bitOff := uint((idx % entriesPerLong) * heightmapBits)
	cleared := arr[longIdx] &^ (int64(heightmapMask) << bitOff)
	arr[longIdx] = cleared | (int64(value&heightmapMask) << bitOff)
}

// GetMotionBlocking returns the stored motion-blocking height for column
// (x,z), as an offset from the bottom of the generated volume (0..WorldHeight).
func (h *Heightmaps) GetMotionBlocking(x, z int) int {
	return getPacked(&h.MotionBlocking, columnIndex(x, z))
}

// SetMotionBlocking stores the motion-blocking height for column (x,z).
func (h *Heightmaps) SetMotionBlocking(x, z, height int) {
	setPacked(&h.MotionBlocking, columnIndex(x, z), height)
}

// GetWorldSurface returns the stored world-surface height for column (x,z).
func (h *Heightmaps) GetWorldSurface(x, z int) int {
	return getPacked(&h.WorldSurface, columnIndex(x, z))
}

// SetWorldSurface stores the world-surface height for column (x,z).
func (h *Heightmaps) SetWorldSurface(x, z, height int) {
	setPacked(&h.WorldSurface, columnIndex(x, z), height)
}
