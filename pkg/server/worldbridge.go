package server

import (
	"bytes"
	"encoding/binary"
	"sync"

	"github.com/StoreStation/blockcore/pkg/coords"
	"github.com/StoreStation/blockcore/pkg/registry"
	"github.com/StoreStation/blockcore/pkg/world"
	"github.com/StoreStation/blockcore/pkg/worldevents"
)

const (
	chunkSectionSize  = 16 * 16 * 16
	legacyChunkHeight = 256
	sectionsPerChunk  = legacyChunkHeight / 16
)

// vanillaByName maps the registry names the server's registry actually
// carries to their classic numeric block ID. redstone_wire is sent as 55
// without its directional connection properties, end_portal as 120 (the
// ID IsInstantBreak lists for the end portal frame), and observer, which
// has no 1.8 counterpart, as 190; property-level
// detail the real simulation tracks server-side (a button's powered bit,
// a repeater's facing) does not survive the round trip to the wire.
var vanillaByName = map[string]uint16{
	"minecraft:air":           0,
	"minecraft:stone":         1,
	"minecraft:grass_block":   2,
	"minecraft:dirt":          3,
	"minecraft:tnt":           46,
	"minecraft:redstone_wire": 55,
	"minecraft:oak_trapdoor":  96,
	"minecraft:repeater":      93,
	"minecraft:end_portal":    120,
	"minecraft:oak_button":    143,
	"minecraft:observer":      190,
}

var nameByVanillaID = func() map[uint16]string {
	m := make(map[uint16]string, len(vanillaByName))
	for name, id := range vanillaByName {
		m[id] = name
	}
	return m
}()

func stateToVanilla(reg *registry.Registry, state registry.StateID) uint16 {
	id := reg.BlockIDByStateID(state)
	if name := reg.BlockByID(id).RegistryName; vanillaByName[name] != 0 || name == "minecraft:air" {
		return vanillaByName[name] << 4
	}
	return 1 << 4 // stone: a safe solid fallback for any block without a wire mapping
}

func vanillaToState(reg *registry.Registry, vanilla uint16) registry.StateID {
	name, ok := nameByVanillaID[vanilla>>4]
	if !ok {
		name = "minecraft:stone"
	}
	id, ok := reg.BlockIDByRegistryName(name)
	if !ok {
		id, _ = reg.BlockIDByRegistryName("minecraft:air")
	}
	return reg.BlockByID(id).DefaultState
}

// WorldBridge adapts the registry-driven world façade (pkg/world) to the
// flat blockID<<4|metadata shape the 1.8 wire protocol expects: one numeric
// ID per state, 256-block-tall chunk columns, one biome byte per column.
// It is the server's only point of contact with pkg/world, so every block
// read, write and chunk fetch the protocol layer performs runs through the
// same cache, region storage and generation pipeline cmd/server ticks.
type WorldBridge struct {
	core *world.World
	reg  *registry.Registry

	mu   sync.Mutex
	mods map[coords.BlockPos]uint16
}

// newWorldBridge wraps an already-constructed façade. The façade and its
// tick/flush loop are owned by the caller (cmd/server); the bridge only
// translates reads and writes and tracks them for late-joining players.
func newWorldBridge(core *world.World, reg *registry.Registry) *WorldBridge {
	b := &WorldBridge{core: core, reg: reg, mods: make(map[coords.BlockPos]uint16)}
	core.Events().OnBlockChanged(func(e worldevents.BlockChanged) {
		b.mu.Lock()
		b.mods[e.Pos] = stateToVanilla(reg, e.NewState)
		b.mu.Unlock()
	})
	return b
}

// GetBlock returns the classic blockID<<4|metadata state at (x, y, z).
func (b *WorldBridge) GetBlock(x, y, z int32) uint16 {
	if y < 0 || y >= legacyChunkHeight {
		return 0
	}
	return stateToVanilla(b.reg, b.core.GetBlockState(coords.BlockPos{X: x, Y: y, Z: z}))
}

// SetBlock writes the classic blockID<<4|metadata state at (x, y, z)
// through to the façade and notifies its event bus.
func (b *WorldBridge) SetBlock(x, y, z int32, state uint16) {
	if y < 0 || y >= legacyChunkHeight {
		return
	}
	pos := coords.BlockPos{X: x, Y: y, Z: z}
	b.core.SetBlockState(pos, vanillaToState(b.reg, state), int(world.NotifyListeners))
}

// GetChunkData renders the 0-255 slice of the façade's column at (cx, cz)
// into the 1.8 Chunk Data packet payload.
func (b *WorldBridge) GetChunkData(cx, cz int32) ([]byte, uint16) {
	var sections [sectionsPerChunk][chunkSectionSize]uint16
	var biomes [256]byte

	for lz := int32(0); lz < 16; lz++ {
		for lx := int32(0); lx < 16; lx++ {
			wx, wz := cx*16+lx, cz*16+lz
			biomes[lz*16+lx] = byte(b.core.BiomeAt(coords.BlockPos{X: wx, Y: 64, Z: wz}))
			for y := int32(0); y < legacyChunkHeight; y++ {
				state := b.core.GetBlockState(coords.BlockPos{X: wx, Y: y, Z: wz})
				sec, ly := y>>4, y&0xF
				sections[sec][(ly*16+lz)*16+lx] = stateToVanilla(b.reg, state)
			}
		}
	}
	return serializeSections(&sections, biomes)
}

// GetModifications returns a copy of every block changed since the bridge
// was created, translated to wire form, for resyncing a newly joined
// player against blocks edited before they connected.
func (b *WorldBridge) GetModifications() map[coords.BlockPos]uint16 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[coords.BlockPos]uint16, len(b.mods))
	for pos, state := range b.mods {
		out[pos] = state
	}
	return out
}

// SurfaceHeight returns the façade's surface height at (x, z), clamped to
// the legacy protocol's 0-255 column.
func (b *WorldBridge) SurfaceHeight(x, z int32) int32 {
	h := b.core.SurfaceHeight(x, z)
	switch {
	case h < 0:
		return 0
	case h > legacyChunkHeight-1:
		return legacyChunkHeight - 1
	default:
		return h
	}
}

// serializeSections packs section arrays into the 1.8 Chunk Data packet
// payload: block IDs, then block light, then sky light per active section,
// followed by the biome array. Light is not simulated; every loaded cell
// reports full brightness.
func serializeSections(sections *[sectionsPerChunk][chunkSectionSize]uint16, biomes [256]byte) ([]byte, uint16) {
	var primaryBitMask uint16
	var buf bytes.Buffer

	for s := 0; s < sectionsPerChunk; s++ {
		for _, v := range sections[s] {
			if v != 0 {
				primaryBitMask |= 1 << uint(s)
				break
			}
		}
	}

	for s := 0; s < sectionsPerChunk; s++ {
		if primaryBitMask&(1<<uint(s)) == 0 {
			continue
		}
		for _, v := range sections[s] {
			binary.Write(&buf, binary.LittleEndian, v)
		}
	}

	fullLight := make([]byte, 2048)
	for i := range fullLight {
		fullLight[i] = 0xFF
	}
	for s := 0; s < sectionsPerChunk; s++ {
		if primaryBitMask&(1<<uint(s)) == 0 {
			continue
		}
		buf.Write(fullLight)
	}
	for s := 0; s < sectionsPerChunk; s++ {
		if primaryBitMask&(1<<uint(s)) == 0 {
			continue
		}
		buf.Write(fullLight)
	}

	buf.Write(biomes[:])
	return buf.Bytes(), primaryBitMask
}
