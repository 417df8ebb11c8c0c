package registry

import "github.com/StoreStation/blockcore/pkg/coords"

// axisOf maps a face direction to the axis index (0=x,1=y,2=z) its
// boundary check applies to, and whether the solid boundary is the shape's
// min (face points in the negative direction) or max (positive direction).
func axisOf(face coords.Direction) (axis int, checkMax bool) {
	switch face {
	case coords.Down:
		return 1, false
	case coords.Up:
		return 1, true
	case coords.North:
		return 2, false
	case coords.South:
		return 2, true
	case coords.West:
		return 0, false
	case coords.East:
		return 0, true
	default:
		return 0, false
	}
}

const epsilon = 1e-6

// IsSideSolid reports whether the given shapes present a fully solid face
// on the requested side. This is a simplified, single-shape check, not
// general rectangle-union coverage: it returns true iff any one shape
// alone reaches the face plane and spans both other axes across the whole
// unit square. A composite face built from several shapes that only
// jointly cover the square is reported non-solid.
func IsSideSolid(shapes []Shape, face coords.Direction) bool {
	axis, checkMax := axisOf(face)
	other1, other2 := otherAxes(axis)
	for _, s := range shapes {
		var reachesFace bool
		if checkMax {
			reachesFace = s.Max[axis] >= 1-epsilon
		} else {
			reachesFace = s.Min[axis] <= epsilon
		}
		if !reachesFace {
			continue
		}
		if s.Min[other1] <= epsilon && s.Max[other1] >= 1-epsilon &&
			s.Min[other2] <= epsilon && s.Max[other2] >= 1-epsilon {
			return true
		}
	}
	return false
}

func otherAxes(axis int) (int, int) {
	switch axis {
	case 0:
		return 1, 2
	case 1:
		return 0, 2
	default:
		return 0, 1
	}
}
