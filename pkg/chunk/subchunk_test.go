package chunk

import (
	"testing"

	"github.com/StoreStation/blockcore/pkg/registry"
)

func TestDenseIndexBijection(t *testing.T) {
	seen := make(map[int]bool, DenseSize)
	for y := 0; y < 16; y++ {
		for z := 0; z < 16; z++ {
			for x := 0; x < 16; x++ {
				idx := denseIndex(x, y, z)
				if idx < 0 || idx >= DenseSize {
					t.Fatalf("index out of range: %d", idx)
				}
				if seen[idx] {
					t.Fatalf("duplicate index %d for (%d,%d,%d)", idx, x, y, z)
				}
				seen[idx] = true
			}
		}
	}
	if len(seen) != DenseSize {
		t.Fatalf("covered %d indices, want %d", len(seen), DenseSize)
	}
}

func TestSubChunkUniformNoOpSet(t *testing.T) {
	s := NewUniformSubChunk(0)
	got := s.Set(1, 2, 3, s.Get(1, 2, 3))
	if got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
	if !s.IsUniform() {
		t.Fatal("set(pos, get(pos)) must leave the sub-chunk uniform")
	}
}

func TestSubChunkPromoteAndCollapse(t *testing.T) {
	s := NewUniformSubChunk(0)
	prior := s.Set(0, 0, 0, 1)
	if prior != 0 {
		t.Fatalf("prior = %d, want 0", prior)
	}
	if s.IsUniform() {
		t.Fatal("expected promotion to dense after differing write")
	}
	if s.Get(0, 0, 0) != 1 {
		t.Fatal("expected the written value back")
	}
	if s.Get(1, 0, 0) != 0 {
		t.Fatal("expected the rest of the sub-chunk unchanged")
	}

	// Collapse: overwrite every cell with the same value.
	for y := 0; y < 16; y++ {
		for z := 0; z < 16; z++ {
			for x := 0; x < 16; x++ {
				s.Set(x, y, z, registry.StateID(1))
			}
		}
	}
	if !s.IsUniform() {
		t.Fatal("expected collapse back to uniform after a fully-uniform dense write")
	}
	if s.UniformValue() != 1 {
		t.Fatalf("uniform value = %d, want 1", s.UniformValue())
	}
}

func TestSubChunkAsDenseReusesScratchForUniform(t *testing.T) {
	s := NewUniformSubChunk(7)
	scratch := make([]registry.StateID, DenseSize)
	out := s.AsDense(scratch)
	for i, v := range out {
		if v != 7 {
			t.Fatalf("scratch[%d] = %d, want 7", i, v)
		}
	}
}
