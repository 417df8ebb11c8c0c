package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/StoreStation/blockcore/pkg/coords"
	"github.com/StoreStation/blockcore/pkg/registry"
)

// RaytracePredicate reports whether the block at pos should stop the ray.
type RaytracePredicate func(pos coords.BlockPos, state registry.StateID) bool

// Raytrace walks the segment from start to end one voxel boundary at a time
// (Amanatides-Woo fast voxel traversal) and returns the first block predicate
// accepts, along with the face the ray entered it through. ok is false if
// predicate never accepts before end is reached.
func (w *World) Raytrace(start, end mgl64.Vec3, predicate RaytracePredicate) (hit coords.BlockPos, face coords.Direction, ok bool) {
	dir := end.Sub(start)
	if dir.X() == 0 && dir.Y() == 0 && dir.Z() == 0 {
		return coords.BlockPos{}, coords.Down, false
	}

	x, y, z := int32(math.Floor(start.X())), int32(math.Floor(start.Y())), int32(math.Floor(start.Z()))
	stepX, tMaxX, tDeltaX := axisStep(start.X(), dir.X())
	stepY, tMaxY, tDeltaY := axisStep(start.Y(), dir.Y())
	stepZ, tMaxZ, tDeltaZ := axisStep(start.Z(), dir.Z())

	enterFace := coords.Down // the starting cell has no entry face of its own
	for {
		pos := coords.BlockPos{X: x, Y: y, Z: z}
		if predicate(pos, w.GetBlockState(pos)) {
			return pos, enterFace, true
		}

		var travelled float64
		switch {
		case tMaxX < tMaxY && tMaxX < tMaxZ:
			travelled = tMaxX
			x += stepX
			tMaxX += tDeltaX
			if stepX > 0 {
				enterFace = coords.West
			} else {
				enterFace = coords.East
			}
		case tMaxY < tMaxZ:
			travelled = tMaxY
			y += stepY
			tMaxY += tDeltaY
			if stepY > 0 {
				enterFace = coords.Down
			} else {
				enterFace = coords.Up
			}
		default:
			travelled = tMaxZ
			z += stepZ
			tMaxZ += tDeltaZ
			if stepZ > 0 {
				enterFace = coords.North
			} else {
				enterFace = coords.South
			}
		}
		if travelled > 1 {
			return coords.BlockPos{}, coords.Down, false
		}
	}
}

// axisStep returns the unit step direction, the ray parameter t (in units of
// the full start-to-end vector) at which the ray first crosses a voxel
// boundary on this axis, and the parametric step between successive
// boundaries.
func axisStep(origin, delta float64) (step int32, tMax, tDelta float64) {
	switch {
	case delta > 0:
		step = 1
		tDelta = 1 / delta
		tMax = (math.Floor(origin) + 1 - origin) * tDelta
	case delta < 0:
		step = -1
		tDelta = 1 / -delta
		tMax = (origin - math.Floor(origin)) * tDelta
	default:
		step = 0
		tDelta = math.Inf(1)
		tMax = math.Inf(1)
	}
	return
}
