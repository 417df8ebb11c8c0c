package chunk

import "testing"

func TestHeightmapPackRoundTrip(t *testing.T) {
	var h Heightmaps
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			v := (x*16 + z) % 385
			h.SetMotionBlocking(x, z, v)
			h.SetWorldSurface(x, z, 384-v)
		}
	}
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			want := (x*16 + z) % 385
			if got := h.GetMotionBlocking(x, z); got != want {
				t.Fatalf("motion_blocking(%d,%d) = %d, want %d", x, z, got, want)
			}
			if got := h.GetWorldSurface(x, z); got != 384-want {
				t.Fatalf("world_surface(%d,%d) = %d, want %d", x, z, got, 384-want)
			}
		}
	}
}

func TestHeightmapLongArrayLength(t *testing.T) {
	// 37 matches the standard long-array NBT form for 256 9-bit entries,
	// 7 per 64-bit word.
	if heightmapLongs != 37 {
		t.Fatalf("heightmapLongs = %d, want 37", heightmapLongs)
	}
}

func TestHeightmapNoEntryCrossesWordBoundary(t *testing.T) {
	var h Heightmaps
	h.SetMotionBlocking(15, 15, 0x1FF) // last column, all bits set
	// Setting the last entry must not disturb the first entry of the same word.
	if getPacked(&h.MotionBlocking, 0) != 0 {
		t.Fatal("unrelated entry disturbed by a write to a different entry")
	}
}
