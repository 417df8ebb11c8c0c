package registry

import "strconv"

// Builtin returns a small, hand-authored registry covering the blocks the
// behavior engine's tests and the demo server exercise: a redstone-wired
// set (oak_button, redstone_wire, a repeater) plus enough neighbors
// (stone, dirt, grass_block, air, a trapdoor, an observer) to drive the
// redstone connection resolver and a minimal worldgen pipeline, and four
// climate biomes spanning the noise space so biome.Build has a non-empty
// tree to search. Production deployments load the real table from
// blocks.json/shapes.json/biomes.json via LoadBlocksJSON/LoadShapesJSON;
// this stands in for "assumed already loaded" registries in tests.
func Builtin() *Registry {
	fullCube := Shape{Min: [3]float64{0, 0, 0}, Max: [3]float64{1, 1, 1}}
	thinFloor := Shape{Min: [3]float64{0, 0, 0}, Max: [3]float64{1, 0.1875, 1}}
	shapes := []Shape{fullCube, thinFloor}
	const (
		shapeFullCube = ShapeID(0)
		shapeThin     = ShapeID(1)
	)

	boolValues := []PropertyValue{"false", "true"}
	facingValues := []PropertyValue{"north", "south", "west", "east"}
	connValues := []PropertyValue{"none", "side", "up"}
	powerValues := make([]PropertyValue, 16)
	for i := range powerValues {
		powerValues[i] = PropertyValue(strconv.Itoa(i))
	}

	blocks := []BlockDef{
		{
			RegistryName: "minecraft:air",
			StateTemplate: State{Air: true, Replaceable: true},
		},
		{
			RegistryName:  "minecraft:stone",
			Hardness:      1.5,
			BlastRes:      6.0,
			StateTemplate: State{Shapes: []ShapeID{shapeFullCube}, HasOpacity: true, Opacity: 15},
		},
		{
			RegistryName:  "minecraft:dirt",
			Hardness:      0.5,
			BlastRes:      0.5,
			StateTemplate: State{Shapes: []ShapeID{shapeFullCube}, HasOpacity: true, Opacity: 15},
		},
		{
			RegistryName:  "minecraft:grass_block",
			Hardness:      0.6,
			BlastRes:      0.6,
			StateTemplate: State{Shapes: []ShapeID{shapeFullCube}, HasOpacity: true, Opacity: 15},
		},
		{
			RegistryName: "minecraft:oak_button",
			Hardness:     0.5,
			Properties: []Property{
				{Name: "facing", Values: facingValues},
				{Name: "powered", Values: boolValues},
			},
			DefaultValues: []PropertyValue{"north", "false"},
			StateTemplate: State{Burnable: true, Shapes: []ShapeID{shapeThin}},
		},
		{
			RegistryName: "minecraft:oak_trapdoor",
			Hardness:     3.0,
			Properties: []Property{
				{Name: "facing", Values: facingValues},
				{Name: "open", Values: boolValues},
			},
			DefaultValues: []PropertyValue{"north", "false"},
			StateTemplate: State{Burnable: true, Shapes: []ShapeID{shapeThin}},
		},
		{
			RegistryName: "minecraft:repeater",
			Hardness:     0,
			Properties: []Property{
				{Name: "facing", Values: facingValues},
				{Name: "powered", Values: boolValues},
			},
			DefaultValues: []PropertyValue{"north", "false"},
			StateTemplate: State{Shapes: []ShapeID{shapeThin}},
		},
		{
			RegistryName: "minecraft:observer",
			Hardness:     3.5,
			Properties: []Property{
				{Name: "facing", Values: facingValues},
				{Name: "powered", Values: boolValues},
			},
			DefaultValues: []PropertyValue{"north", "false"},
			StateTemplate: State{Shapes: []ShapeID{shapeFullCube}, HasOpacity: true, Opacity: 15},
		},
		{
			RegistryName: "minecraft:redstone_wire",
			Hardness:     0,
			Properties: []Property{
				{Name: "power", Values: powerValues},
				{Name: "north", Values: connValues},
				{Name: "east", Values: connValues},
				{Name: "south", Values: connValues},
				{Name: "west", Values: connValues},
			},
			DefaultValues: []PropertyValue{"0", "none", "none", "none", "none"},
			StateTemplate: State{Shapes: nil},
		},
		{
			RegistryName:  "minecraft:end_portal",
			Hardness:      -1,
			StateTemplate: State{Shapes: nil},
		},
		{
			RegistryName:  "minecraft:tnt",
			Hardness:      0,
			BlastRes:      0,
			StateTemplate: State{Burnable: true, Shapes: []ShapeID{shapeFullCube}, HasOpacity: true, Opacity: 15},
		},
	}

	// biomes are four boxes in the 6-axis climate hypercube (plus the
	// degenerate offset 7th axis) whose union's bounding box is [-1,1]^6.
	// They do not partition it: some boxes overlap (plains and taiga) and
	// some samples fall in no box; the search tree resolves every sample
	// to the nearest box either way.
	biomes := []Biome{
		{
			Tag: "plains",
			Noise: NoiseHypercube{
				TemperatureLo: -1, TemperatureHi: 1,
				HumidityLo: -1, HumidityHi: 1,
				ContinentalnessLo: 0, ContinentalnessHi: 1,
				ErosionLo: 0, ErosionHi: 1,
				DepthLo: -1, DepthHi: 1,
				WeirdnessLo: -1, WeirdnessHi: 1,
			},
		},
		{
			Tag: "desert",
			Noise: NoiseHypercube{
				TemperatureLo: 0, TemperatureHi: 1,
				HumidityLo: -1, HumidityHi: 0,
				ContinentalnessLo: 0, ContinentalnessHi: 1,
				ErosionLo: -1, ErosionHi: 0,
				DepthLo: -1, DepthHi: 1,
				WeirdnessLo: -1, WeirdnessHi: 1,
			},
		},
		{
			Tag: "taiga",
			Noise: NoiseHypercube{
				TemperatureLo: -1, TemperatureHi: 0,
				HumidityLo: 0, HumidityHi: 1,
				ContinentalnessLo: 0, ContinentalnessHi: 1,
				ErosionLo: -1, ErosionHi: 1,
				DepthLo: -1, DepthHi: 1,
				WeirdnessLo: -1, WeirdnessHi: 1,
			},
		},
		{
			Tag: "ocean",
			Noise: NoiseHypercube{
				TemperatureLo: -1, TemperatureHi: 1,
				HumidityLo: -1, HumidityHi: 1,
				ContinentalnessLo: -1, ContinentalnessHi: 0,
				ErosionLo: -1, ErosionHi: 1,
				DepthLo: -1, DepthHi: 1,
				WeirdnessLo: -1, WeirdnessHi: 1,
			},
		},
	}

	r, err := Build(blocks, biomes, shapes)
	if err != nil {
		panic(err)
	}
	return r
}
