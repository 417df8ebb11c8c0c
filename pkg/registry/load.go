package registry

import (
	"encoding/json"
	"fmt"
	"io"
)

// jsonBlock mirrors one entry of blocks.json. Real asset data
// carries per-state overrides; this core's loader applies StateTemplate
// fields uniformly and lets a handful of per-block booleans (Air,
// Burnable, ...) stand in for the common case, which is sufficient for
// every block this core's behavior table actually dispatches on.
type jsonBlock struct {
	Name           string            `json:"name"`
	ItemID         int32             `json:"item_id"`
	Hardness       float32           `json:"hardness"`
	BlastRes       float32           `json:"blast_resistance"`
	TranslationKey string            `json:"translation_key"`
	Properties     []jsonProperty    `json:"properties"`
	DefaultValues  []string          `json:"default_state"`
	LootTable      string            `json:"loot_table"`
	Air            bool              `json:"air"`
	Burnable       bool              `json:"burnable"`
	Replaceable    bool              `json:"replaceable"`
	ToolRequired   bool              `json:"tool_required"`
	Luminance      uint8             `json:"luminance"`
	HasOpacity     bool              `json:"has_opacity"`
	Opacity        uint8             `json:"opacity"`
	Shapes         []uint16          `json:"shapes"`
	BlockEntity    string            `json:"block_entity"`
}

type jsonProperty struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type jsonShape struct {
	Min [3]float64 `json:"min"`
	Max [3]float64 `json:"max"`
}

type jsonBiome struct {
	Tag    string  `json:"tag"`
	Temp   [2]float64 `json:"temperature"`
	Humid  [2]float64 `json:"humidity"`
	Cont   [2]float64 `json:"continentalness"`
	Eros   [2]float64 `json:"erosion"`
	Depth  [2]float64 `json:"depth"`
	Weird  [2]float64 `json:"weirdness"`
	Offset float64    `json:"offset"`
}

// LoadBlocksJSON parses a blocks.json document into BlockDefs suitable for
// Build. Names are expected in "minecraft:<id>" form.
func LoadBlocksJSON(r io.Reader) ([]BlockDef, error) {
	var raw []jsonBlock
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("registry: decode blocks.json: %w", err)
	}
	defs := make([]BlockDef, len(raw))
	for i, jb := range raw {
		props := make([]Property, len(jb.Properties))
		for pi, jp := range jb.Properties {
			vals := make([]PropertyValue, len(jp.Values))
			for vi, v := range jp.Values {
				vals[vi] = PropertyValue(v)
			}
			props[pi] = Property{Name: jp.Name, Values: vals}
		}
		shapes := make([]ShapeID, len(jb.Shapes))
		for si, s := range jb.Shapes {
			shapes[si] = ShapeID(s)
		}
		var defaults []PropertyValue
		for _, v := range jb.DefaultValues {
			defaults = append(defaults, PropertyValue(v))
		}
		defs[i] = BlockDef{
			RegistryName:   jb.Name,
			ItemID:         jb.ItemID,
			Hardness:       jb.Hardness,
			BlastRes:       jb.BlastRes,
			TranslationKey: jb.TranslationKey,
			Properties:     props,
			DefaultValues:  defaults,
			LootTable:      jb.LootTable,
			StateTemplate: State{
				Air:             jb.Air,
				Burnable:        jb.Burnable,
				Replaceable:     jb.Replaceable,
				ToolRequired:    jb.ToolRequired,
				Luminance:       jb.Luminance,
				Hardness:        jb.Hardness,
				HasOpacity:      jb.HasOpacity,
				Opacity:         jb.Opacity,
				Shapes:          shapes,
				BlockEntityType: jb.BlockEntity,
			},
		}
	}
	return defs, nil
}

// LoadShapesJSON parses the global shape table.
func LoadShapesJSON(r io.Reader) ([]Shape, error) {
	var raw []jsonShape
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("registry: decode shapes.json: %w", err)
	}
	out := make([]Shape, len(raw))
	for i, s := range raw {
		out[i] = Shape{Min: s.Min, Max: s.Max}
	}
	return out, nil
}

// LoadMultiNoiseJSON parses multi_noise.json, the overworld biome table
// consumed by the KD-search tree builder (pkg/biome).
func LoadMultiNoiseJSON(r io.Reader) ([]Biome, error) {
	var raw []jsonBiome
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("registry: decode multi_noise.json: %w", err)
	}
	out := make([]Biome, len(raw))
	for i, b := range raw {
		out[i] = Biome{
			Tag: b.Tag,
			Noise: NoiseHypercube{
				TemperatureLo: b.Temp[0], TemperatureHi: b.Temp[1],
				HumidityLo: b.Humid[0], HumidityHi: b.Humid[1],
				ContinentalnessLo: b.Cont[0], ContinentalnessHi: b.Cont[1],
				ErosionLo: b.Eros[0], ErosionHi: b.Eros[1],
				DepthLo: b.Depth[0], DepthHi: b.Depth[1],
				WeirdnessLo: b.Weird[0], WeirdnessHi: b.Weird[1],
				Offset: b.Offset,
			},
		}
	}
	return out, nil
}

// ChunkStatus is a generation-pipeline stage a chunk has reached, loaded
// from chunk_status.json's ordered name list. This tracks finer-grained
// stages than a simple generated/ungenerated flag so the pipeline
// (pkg/worldgen) can resume partially-generated chunks.
type ChunkStatus uint8

const (
	StatusEmpty ChunkStatus = iota
	StatusStructureStarts
	StatusStructureReferences
	StatusBiomes
	StatusNoise
	StatusSurface
	StatusCarvers
	StatusFeatures
	StatusLight
	StatusSpawn
	StatusFull
)

// LoadChunkStatusJSON parses the ordered stage-name list from
// chunk_status.json and returns a name->ChunkStatus lookup, preserving
// file order (so a differently-ordered pipeline config still round-trips).
func LoadChunkStatusJSON(r io.Reader) (map[string]ChunkStatus, error) {
	var names []string
	if err := json.NewDecoder(r).Decode(&names); err != nil {
		return nil, fmt.Errorf("registry: decode chunk_status.json: %w", err)
	}
	out := make(map[string]ChunkStatus, len(names))
	for i, n := range names {
		out[n] = ChunkStatus(i)
	}
	return out, nil
}
