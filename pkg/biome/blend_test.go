package biome

import (
	"testing"

	"github.com/StoreStation/blockcore/pkg/coords"
)

type recordingGrid struct {
	calls []coords.BiomeCoord
}

func (g *recordingGrid) GetBiomeAt(x, y, z int32) int {
	g.calls = append(g.calls, coords.BiomeCoord{X: x, Y: y, Z: z})
	return int(x*1000 + y*10 + z)
}

func TestBlendIsPureFunctionOfSeedPosAndGrid(t *testing.T) {
	g := &recordingGrid{}
	pos := coords.BlockPos{X: 37, Y: 70, Z: -12}

	first := Blend(g, 42, pos, -16, 24)
	callsAfterFirst := len(g.calls)
	if callsAfterFirst == 0 {
		t.Fatal("expected Blend to query the grid")
	}

	second := Blend(g, 42, pos, -16, 24)
	if second != first {
		t.Fatalf("Blend is not deterministic: %d != %d", first, second)
	}
}

func TestBlendClampsToBiomeYRange(t *testing.T) {
	g := &recordingGrid{}
	pos := coords.BlockPos{X: 0, Y: 1000, Z: 0}

	Blend(g, 1, pos, -4, 4)
	if len(g.calls) != 1 {
		t.Fatalf("expected exactly one grid lookup, got %d", len(g.calls))
	}
	if y := g.calls[0].Y; y < -4 || y > 4 {
		t.Fatalf("queried biome Y = %d, want within [-4,4]", y)
	}
}

func TestFloorDivAndModMatchMathFloor(t *testing.T) {
	cases := []struct{ v, wantDiv, wantMod int32 }{
		{0, 0, 0},
		{3, 0, 3},
		{4, 1, 0},
		{-1, -1, 3},
		{-4, -1, 0},
		{-5, -2, 3},
	}
	for _, c := range cases {
		if got := floorDiv4(c.v); got != c.wantDiv {
			t.Fatalf("floorDiv4(%d) = %d, want %d", c.v, got, c.wantDiv)
		}
		if got := floorMod4(c.v); got != c.wantMod {
			t.Fatalf("floorMod4(%d) = %d, want %d", c.v, got, c.wantMod)
		}
	}
}
