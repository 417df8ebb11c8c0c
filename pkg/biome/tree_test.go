package biome

import (
	"testing"

	"github.com/StoreStation/blockcore/pkg/registry"
)

func testBiomes() []registry.Biome {
	return []registry.Biome{
		{Tag: "plains", Noise: registry.NoiseHypercube{
			TemperatureLo: -1, TemperatureHi: 0,
			HumidityLo: -1, HumidityHi: 1,
			ContinentalnessLo: -1, ContinentalnessHi: 1,
			ErosionLo: -1, ErosionHi: 1,
			DepthLo: -1, DepthHi: 1,
			WeirdnessLo: -1, WeirdnessHi: 1,
			Offset: 0,
		}},
		{Tag: "desert", Noise: registry.NoiseHypercube{
			TemperatureLo: 0, TemperatureHi: 1,
			HumidityLo: -1, HumidityHi: 1,
			ContinentalnessLo: -1, ContinentalnessHi: 1,
			ErosionLo: -1, ErosionHi: 1,
			DepthLo: -1, DepthHi: 1,
			WeirdnessLo: -1, WeirdnessHi: 1,
			Offset: 0,
		}},
		{Tag: "ocean", Noise: registry.NoiseHypercube{
			TemperatureLo: -1, TemperatureHi: 1,
			HumidityLo: -1, HumidityHi: 1,
			ContinentalnessLo: -3, ContinentalnessHi: -2,
			ErosionLo: -1, ErosionHi: 1,
			DepthLo: -1, DepthHi: 1,
			WeirdnessLo: -1, WeirdnessHi: 1,
			Offset: 0,
		}},
	}
}

func testBlockDefs() []registry.BlockDef {
	return []registry.BlockDef{{RegistryName: "minecraft:air", StateTemplate: registry.State{Air: true}}}
}

func testRegistryWithBiomes(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.Build(testBlockDefs(), testBiomes(), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return reg
}

func TestBuildRejectsEmptyLeafSet(t *testing.T) {
	reg, err := registry.Build(testBlockDefs(), nil, nil)
	if err != nil {
		t.Fatalf("registry.Build: %v", err)
	}
	if _, err := Build(reg); err == nil {
		t.Fatal("expected an error building a tree from zero biomes")
	}
}

func TestQueryMonotonicityAcrossLeaves(t *testing.T) {
	reg := testRegistryWithBiomes(t)
	tree, err := Build(reg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	samples := []struct {
		point [dims]float64
		want  string
	}{
		{[dims]float64{-0.5, 0, 0, 0, 0, 0, 0}, "plains"},
		{[dims]float64{0.5, 0, 0, 0, 0, 0, 0}, "desert"},
		{[dims]float64{0, 0, -2.5, 0, 0, 0, 0}, "ocean"},
	}
	for _, s := range samples {
		leaf := tree.Query(s.point)
		got := reg.Biomes()[leaf.Biome].Tag
		if got != s.want {
			t.Fatalf("Query(%v) = %s, want %s", s.point, got, s.want)
		}
	}
}

func TestCacheAgreesWithFreshQuery(t *testing.T) {
	reg := testRegistryWithBiomes(t)
	tree, err := Build(reg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	points := [][dims]float64{
		{-0.5, 0, 0, 0, 0, 0, 0},
		{-0.5, 0, 0.01, 0, 0, 0, 0},
		{0.5, 0, 0, 0, 0, 0, 0},
		{0, 0, -2.5, 0, 0, 0, 0},
		{-0.9, 0, 0, 0, 0, 0, 0},
	}

	c := NewCache()
	for _, p := range points {
		want := tree.Query(p)
		got := c.Query(tree, p)
		if got.Biome != want.Biome {
			t.Fatalf("cache.Query(%v) = biome %d, want %d", p, got.Biome, want.Biome)
		}
	}
}
