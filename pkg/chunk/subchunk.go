// Package chunk implements the in-memory layout of one chunk column: the
// sub-chunk palette compression (uniform/dense), heightmaps, and the
// block get/set operations the world façade and region codec share.
package chunk

import "github.com/StoreStation/blockcore/pkg/registry"

// DenseSize is the number of cells in a fully-dense sub-chunk (16^3).
const DenseSize = 16 * 16 * 16

// SubChunk is a 16x16x16 volume of block states, either a single uniform
// state ID or a dense per-cell buffer. Writing a value equal to the
// uniform value leaves it uniform; writing a different value promotes it
// to dense; a dense sub-chunk that becomes all-one-value after a write
// collapses back to uniform.
type SubChunk struct {
	uniform bool
	value   registry.StateID
	dense   []registry.StateID // len DenseSize when !uniform, nil otherwise
}

// NewUniformSubChunk returns a sub-chunk entirely filled with v.
func NewUniformSubChunk(v registry.StateID) *SubChunk {
	return &SubChunk{uniform: true, value: v}
}

// NewDenseSubChunk returns a sub-chunk backed directly by dense, which must
// have length DenseSize. Used by the region codec when loading a
// previously-promoted sub-chunk back from disk.
func NewDenseSubChunk(dense []registry.StateID) *SubChunk {
	return &SubChunk{dense: dense}
}

// denseIndex is the normative yzx linearization: index = (y mod 16)*256 +
// z*16 + x, matching the network sub-chunk packet's wire order.
func denseIndex(x, y, z int) int {
	return (y&0xF)*256 + z*16 + x
}

// Get returns the state ID at local coordinates x,z in [0,16), y in
// [0,16).
func (s *SubChunk) Get(x, y, z int) registry.StateID {
	if s.uniform {
		return s.value
	}
	return s.dense[denseIndex(x, y, z)]
}

// Set writes new at the local position and returns the prior value,
// applying the uniform/dense promotion-collapse rule.
func (s *SubChunk) Set(x, y, z int, new registry.StateID) registry.StateID {
	if s.uniform {
		if new == s.value {
			return s.value
		}
		prior := s.value
		s.promote()
		s.dense[denseIndex(x, y, z)] = new
		return prior
	}

	idx := denseIndex(x, y, z)
	prior := s.dense[idx]
	if prior == new {
		return prior
	}
	s.dense[idx] = new
	if s.allEqual(new) {
		s.collapse(new)
	}
	return prior
}

// IsUniform reports whether the sub-chunk is currently collapsed.
func (s *SubChunk) IsUniform() bool { return s.uniform }

// UniformValue returns the sub-chunk's single value. Only meaningful when
// IsUniform is true.
func (s *SubChunk) UniformValue() registry.StateID { return s.value }

func (s *SubChunk) promote() {
	s.dense = make([]registry.StateID, DenseSize)
	for i := range s.dense {
		s.dense[i] = s.value
	}
	s.uniform = false
}

func (s *SubChunk) allEqual(v registry.StateID) bool {
	for _, cell := range s.dense {
		if cell != v {
			return false
		}
	}
	return true
}

func (s *SubChunk) collapse(v registry.StateID) {
	s.uniform = true
	s.value = v
	s.dense = nil
}

// rawDense returns the sub-chunk's internal dense buffer, or nil if uniform.
func (s *SubChunk) rawDense() []registry.StateID { return s.dense }

// AsDense returns a view of the sub-chunk's 4096 states in yzx order. If
// the sub-chunk is already dense, it returns the internal buffer directly
// (read-only for the caller); if uniform, it fills the caller-supplied
// scratch buffer instead of allocating, so a long-lived scratch buffer can
// be reused across many uniform sub-chunks (the chunk-send path's common
// case — most sub-chunks of an unmodified generated chunk are uniform
// air or uniform stone).
func (s *SubChunk) AsDense(scratch []registry.StateID) []registry.StateID {
	if !s.uniform {
		return s.dense
	}
	for i := range scratch {
		scratch[i] = s.value
	}
	return scratch
}
