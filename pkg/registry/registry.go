package registry

import (
	"fmt"
	"strings"
)

// Registry is the frozen, process-lifetime set of lookup tables. Build it
// once at startup; every field is read-only thereafter and safe to share
// across goroutines without locking.
type Registry struct {
	blocks []Block // indexed by BlockID
	biomes []Biome
	shapes []Shape

	byRegistryName  map[string]BlockID
	blockByState    []BlockID // indexed by StateID
	stateIndexByID  []uint16  // indexed by StateID
	biomeByTag      map[string]int
}

// Build freezes a Registry from the given block, biome and shape
// definitions. Block.States/FirstState/DefaultState are computed here from
// each BlockDef's property list: state IDs are assigned contiguously per
// block in property-enumeration order (stable, mixed-radix: the last
// property in the list varies fastest).
func Build(blockDefs []BlockDef, biomes []Biome, shapes []Shape) (*Registry, error) {
	if len(blockDefs) == 0 {
		return nil, fmt.Errorf("registry: no blocks")
	}

	r := &Registry{
		shapes:         shapes,
		biomes:         biomes,
		byRegistryName: make(map[string]BlockID, len(blockDefs)),
		biomeByTag:     make(map[string]int, len(biomes)),
	}

	var nextState StateID
	r.blocks = make([]Block, len(blockDefs))
	for i, def := range blockDefs {
		id := BlockID(i)
		combos := enumerateCombinations(def.Properties)
		if len(combos) == 0 {
			combos = [][]PropertyValue{nil}
		}
		first := nextState
		states := make([]State, len(combos))
		for ci, combo := range combos {
			sid := first + StateID(ci)
			st := def.StateTemplate
			st.ID = sid
			st.Values = combo
			states[ci] = st
		}
		nextState += StateID(len(combos))

		defaultIdx := 0
		if def.DefaultValues != nil {
			for ci, combo := range combos {
				if valuesEqual(combo, def.DefaultValues) {
					defaultIdx = ci
					break
				}
			}
		}

		r.blocks[id] = Block{
			ID:             id,
			RegistryName:   def.RegistryName,
			ItemID:         def.ItemID,
			Hardness:       def.Hardness,
			BlastRes:       def.BlastRes,
			TranslationKey: def.TranslationKey,
			Properties:     def.Properties,
			FirstState:     first,
			States:         states,
			DefaultState:   first + StateID(defaultIdx),
			LootTable:      def.LootTable,
		}
		r.byRegistryName[stripNamespace(def.RegistryName)] = id
	}

	r.blockByState = make([]BlockID, nextState)
	r.stateIndexByID = make([]uint16, nextState)
	for _, b := range r.blocks {
		for i, st := range b.States {
			r.blockByState[st.ID] = b.ID
			r.stateIndexByID[st.ID] = uint16(i)
		}
	}

	for i, bi := range biomes {
		r.biomeByTag[bi.Tag] = i
	}

	return r, nil
}

// BlockDef is the input shape used to build a Block; the derived,
// contiguous State list is computed by Build, not supplied directly.
type BlockDef struct {
	RegistryName   string
	ItemID         int32
	Hardness       float32
	BlastRes       float32
	TranslationKey string
	Properties     []Property
	// StateTemplate supplies the non-property-derived fields shared by
	// every state of this block (air, burnable, shapes, ...). Real asset
	// data varies these per-state; this core treats them as per-block for
	// brevity where the asset loader does not override them (see
	// LoadBlocksJSON).
	StateTemplate State
	DefaultValues []PropertyValue
	LootTable     string
}

func stripNamespace(name string) string {
	if idx := strings.IndexByte(name, ':'); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

func valuesEqual(a, b []PropertyValue) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// enumerateCombinations returns every assignment of values to props, in
// mixed-radix order where the last property varies fastest. This ordering
// is the one properties_of/state_id_from_properties rely on.
func enumerateCombinations(props []Property) [][]PropertyValue {
	if len(props) == 0 {
		return nil
	}
	total := 1
	for _, p := range props {
		total *= len(p.Values)
	}
	out := make([][]PropertyValue, total)
	for i := 0; i < total; i++ {
		rem := i
		combo := make([]PropertyValue, len(props))
		for pi := len(props) - 1; pi >= 0; pi-- {
			n := len(props[pi].Values)
			combo[pi] = props[pi].Values[rem%n]
			rem /= n
		}
		out[i] = combo
	}
	return out
}

// BlockByID returns the block definition for id.
func (r *Registry) BlockByID(id BlockID) *Block {
	if int(id) >= len(r.blocks) {
		return nil
	}
	return &r.blocks[id]
}

// BlockIDByRegistryName looks up a block by name, stripping an implicit
// "minecraft:" namespace prefix.
func (r *Registry) BlockIDByRegistryName(name string) (BlockID, bool) {
	id, ok := r.byRegistryName[stripNamespace(name)]
	return id, ok
}

// BlockIDByStateID resolves a state ID to its owning block.
func (r *Registry) BlockIDByStateID(s StateID) BlockID {
	return r.blockByState[s]
}

// StateIndexByStateID returns s's index within its block's States list.
func (r *Registry) StateIndexByStateID(s StateID) uint16 {
	return r.stateIndexByID[s]
}

// State resolves a state ID to its full State record.
func (r *Registry) State(s StateID) *State {
	b := r.BlockByID(r.BlockIDByStateID(s))
	return &b.States[r.StateIndexByStateID(s)]
}

// CollisionShapes returns the shapes a state occupies as a newly allocated
// copy on every call; it does not return a view into the Shape table, so
// changes to the returned slice do not reach the registry.
func (r *Registry) CollisionShapes(s StateID) []Shape {
	st := r.State(s)
	out := make([]Shape, len(st.Shapes))
	for i, sid := range st.Shapes {
		out[i] = r.shapes[sid]
	}
	return out
}

// Biomes returns the frozen biome table, in registration order.
func (r *Registry) Biomes() []Biome { return r.biomes }

// BiomeByTag returns the index of the biome tagged tag, if loaded.
func (r *Registry) BiomeByTag(tag string) (int, bool) {
	i, ok := r.biomeByTag[tag]
	return i, ok
}
