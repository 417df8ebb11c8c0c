// Package world implements the world façade: it
// owns the chunk cache, resolves block lookups to a loaded chunk or
// triggers a region-file load or generation on miss, drives the
// scheduled-tick queue, and fires the façade-to-collaborator event
// contract defined in pkg/worldevents.
package world

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/StoreStation/blockcore/pkg/biome"
	"github.com/StoreStation/blockcore/pkg/block"
	"github.com/StoreStation/blockcore/pkg/chunk"
	"github.com/StoreStation/blockcore/pkg/coords"
	"github.com/StoreStation/blockcore/pkg/region"
	"github.com/StoreStation/blockcore/pkg/registry"
	"github.com/StoreStation/blockcore/pkg/worldevents"
	"github.com/StoreStation/blockcore/pkg/worldgen"
)

// Flags controls the side effects a SetBlockState call performs.
type Flags int

const (
	// NotifyNeighbors recomputes neighbor-dependent state (redstone
	// connections and the like) after the write commits.
	NotifyNeighbors Flags = 1 << iota
	// NotifyListeners fires BlockChanged/BlockDestroyed on the event bus.
	NotifyListeners
	// SkipDrops suppresses BlockDestroyed even when the write clears a
	// non-air state to air.
	SkipDrops
	// ForceState writes even when the new state equals the prior one,
	// bypassing the no-op short circuit (used by region load replay).
	ForceState
)

// defaultChunkCacheSize is the number of chunks the LRU cache retains
// before evicting the least recently touched one.
const defaultChunkCacheSize = 1024

// entry is one cached, possibly-dirty chunk. Mutations are serialized by
// mu; readers may proceed concurrently with each other.
type entry struct {
	mu    sync.RWMutex
	chunk *chunk.Chunk
	dirty atomic.Bool
}

// World is the C7 façade: registries, behavior table, biome/terrain
// pipeline and region storage are immutable references shared read-only;
// the chunk cache and scheduled-tick queue are the façade's own mutable
// state.
type World struct {
	Seed int64

	reg    *registry.Registry
	behav  *block.Table
	gen    *worldgen.Pipeline
	ticks  *block.ScheduledTickQueue
	events *worldevents.Bus
	log    *logrus.Entry

	regions *regionStore
	cache   *lru.Cache // coords.ChunkCoord -> *entry
	loads   singleflight.Group
	now     atomic.Int64

	airState registry.StateID
}

// Option configures New.
type Option func(*World)

// WithCacheSize overrides the default chunk-cache capacity.
func WithCacheSize(n int) Option {
	return func(w *World) {
		cache, err := newEvictingCache(n, w)
		if err == nil {
			w.cache = cache
		}
	}
}

// WithLogger overrides the structured logger used for background-task and
// load-failure diagnostics.
func WithLogger(log *logrus.Entry) Option {
	return func(w *World) { w.log = log }
}

func newEvictingCache(size int, w *World) (*lru.Cache, error) {
	return lru.NewWithEvict(size, func(key, value interface{}) {
		w.evict(key.(coords.ChunkCoord), value.(*entry))
	})
}

// New opens (or creates) a world backed by region files under dir, using
// reg for block/biome lookups, behav for block-interaction dispatch and
// gen to generate chunks that have not been written yet.
func New(seed int64, reg *registry.Registry, behav *block.Table, gen *worldgen.Pipeline, dir string, opts ...Option) *World {
	airID, _ := reg.BlockIDByRegistryName("air")
	w := &World{
		Seed:     seed,
		reg:      reg,
		behav:    behav,
		gen:      gen,
		ticks:    block.NewScheduledTickQueue(),
		events:   worldevents.NewBus(),
		log:      logrus.NewEntry(logrus.StandardLogger()),
		regions:  newRegionStore(dir, region.CompressionZlib),
		airState: reg.BlockByID(airID).DefaultState,
	}
	cache, _ := newEvictingCache(defaultChunkCacheSize, w)
	w.cache = cache
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Events returns the façade's publish point, for protocol/plugin
// collaborators to subscribe to.
func (w *World) Events() *worldevents.Bus { return w.events }

// evict runs on the calling goroutine inside the LRU's own eviction path;
// it flushes a dirty chunk synchronously so an evicted chunk is never
// silently dropped. Flush-on-evict is the backstop between background
// flush sweeps.
func (w *World) evict(coord coords.ChunkCoord, e *entry) {
	if !e.dirty.Load() {
		return
	}
	if err := w.persist(coord, e); err != nil {
		w.log.WithFields(logrus.Fields{"chunk_x": coord.X, "chunk_z": coord.Z, "err": err}).
			Warn("failed to persist evicted chunk")
	}
}

func (w *World) persist(coord coords.ChunkCoord, e *entry) error {
	rc, _ := coord.RegionOf()
	r, err := w.regions.get(rc)
	if err != nil {
		return err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := r.Write(e.chunk, region.CompressionZlib, time.Now()); err != nil {
		return err
	}
	e.dirty.Store(false)
	return nil
}

// loadKey derives a short, collision-resistant singleflight key from a
// chunk coordinate via xxhash, so concurrent loads of the same coordinate
// coalesce into a single region read/generate.
func loadKey(coord coords.ChunkCoord) string {
	var buf [8]byte
	binary.BigEndian.PutUint32(buf[0:4], uint32(coord.X))
	binary.BigEndian.PutUint32(buf[4:8], uint32(coord.Z))
	h := xxhash.Sum64(buf[:])
	var out [8]byte
	binary.BigEndian.PutUint64(out[:], h)
	return string(out[:])
}

// getOrLoad resolves coord to its cached entry, loading from region
// storage or generating on miss. Concurrent callers for the same
// coordinate share one underlying load via singleflight.
func (w *World) getOrLoad(ctx context.Context, coord coords.ChunkCoord) (*entry, error) {
	if v, ok := w.cache.Get(coord); ok {
		return v.(*entry), nil
	}

	v, err, _ := w.loads.Do(loadKey(coord), func() (interface{}, error) {
		if v, ok := w.cache.Get(coord); ok {
			return v, nil
		}
		select {
		case <-ctx.Done():
			return nil, ErrCancelled
		default:
		}
		c, err := w.loadOrGenerate(coord)
		if err != nil {
			return nil, err
		}
		e := &entry{chunk: c}
		w.cache.Add(coord, e)
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*entry), nil
}

// loadOrGenerate recovers a missing or not-yet-generated chunk by
// invoking the generator; InvalidHeader/RegionInvalid are fatal for the
// region; Compression/ParseError refuse the chunk but keep the region in
// service for its other, healthy chunks.
func (w *World) loadOrGenerate(coord coords.ChunkCoord) (*chunk.Chunk, error) {
	rc, _ := coord.RegionOf()
	r, err := w.regions.get(rc)
	if err != nil {
		return nil, err
	}

	c, err := r.Read(coord)
	switch {
	case err == nil:
		if c.Status != registry.StatusFull {
			return w.gen.Generate(coord), nil
		}
		return c, nil
	case region.IsKind(err, region.KindChunkNotExist):
		return w.gen.Generate(coord), nil
	case region.IsKind(err, region.KindCompression), region.IsKind(err, region.KindParseError):
		w.log.WithFields(logrus.Fields{"chunk_x": coord.X, "chunk_z": coord.Z, "err": err}).
			Warn("chunk refused: corrupt payload")
		return nil, err
	default:
		return nil, err
	}
}

func relBlockCoord(pos coords.BlockPos) chunk.RelBlockCoord {
	x, _, z := pos.Relative()
	return chunk.RelBlockCoord{X: int(x), Y: int(pos.Y - coords.WorldMinY), Z: int(z)}
}

// GetBlockState resolves pos's chunk (loading or generating on miss via a
// background context) and returns the current state ID, substituting air
// if the chunk could not be loaded.
func (w *World) GetBlockState(pos coords.BlockPos) registry.StateID {
	e, err := w.getOrLoad(context.Background(), pos.ChunkCoord())
	if err != nil {
		return w.airState
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.chunk.GetBlock(relBlockCoord(pos))
}

// GetBlock is an alias for GetBlockState kept for callers that think in
// terms of "the block at pos" rather than its encoded state.
func (w *World) GetBlock(pos coords.BlockPos) registry.StateID { return w.GetBlockState(pos) }

// SetBlockState writes state at pos, marks the owning chunk dirty, and
// fires the configured notifications.
func (w *World) SetBlockState(pos coords.BlockPos, state registry.StateID, flags int) {
	e, err := w.getOrLoad(context.Background(), pos.ChunkCoord())
	if err != nil {
		w.log.WithFields(logrus.Fields{"pos": pos, "err": err}).Warn("set_block_state on unloadable chunk")
		return
	}

	e.mu.Lock()
	old := e.chunk.SetBlock(w.reg, relBlockCoord(pos), state)
	e.mu.Unlock()

	if old == state && Flags(flags)&ForceState == 0 {
		return
	}
	e.dirty.Store(true)

	if Flags(flags)&NotifyListeners != 0 {
		w.events.FireBlockChanged(worldevents.BlockChanged{Pos: pos, OldState: old, NewState: state})
		if state == w.airState && old != w.airState && Flags(flags)&SkipDrops == 0 {
			w.events.FireBlockDestroyed(worldevents.BlockDestroyed{Pos: pos, State: old})
		}
	}

	behavior := w.behav.Lookup(w.reg.BlockIDByStateID(old))
	behavior.OnStateReplaced(w, w.reg, pos, old, state)
}

// ScheduleBlockTick forwards to the scheduled-tick queue (C6), stamping
// the request with the façade's current tick counter.
func (w *World) ScheduleBlockTick(pos coords.BlockPos, delayTicks int, priority int) {
	w.ticks.Schedule(pos, w.now.Load(), delayTicks, priority)
}

// Tick advances the world's tick counter and drains every scheduled
// entry due by the new tick, invoking each block's ScheduledTick hook.
func (w *World) Tick() {
	now := w.now.Add(1)
	block.RunScheduledTicks(w.ticks, w.behav, w.reg, w, now)
}

// FlushDirty persists every dirty cached chunk through a bounded worker
// pool, honoring ctx cancellation between chunks.
func (w *World) FlushDirty(ctx context.Context, workers int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, key := range w.cache.Keys() {
		coord := key.(coords.ChunkCoord)
		v, ok := w.cache.Peek(coord)
		if !ok {
			continue
		}
		e := v.(*entry)
		if !e.dirty.Load() {
			continue
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return ErrCancelled
			default:
			}
			return w.persist(coord, e)
		})
	}
	return g.Wait()
}

// bottomBiomeY and topBiomeY are the world's biome-cell Y bounds (block Y
// at quarter resolution), used to clamp Blend's chosen corner.
const (
	bottomBiomeY = coords.WorldMinY >> 2
	topBiomeY    = coords.WorldMaxY>>2 - 1
)

// biomeGrid adapts World to biome.Blend's narrow grid interface. A query
// near a chunk edge may resolve to a neighboring chunk's biome cell; that
// neighbor is loaded (or generated) like any other chunk access, so a
// blend at a chunk boundary can trigger a load one chunk further out than
// the position itself requires.
type biomeGrid struct{ w *World }

func (g biomeGrid) GetBiomeAt(x, y, z int32) int {
	chunkX, chunkZ := x>>2, z>>2
	relX, relZ := int(x-chunkX*4), int(z-chunkZ*4)
	relY := int(y - bottomBiomeY)

	e, err := g.w.getOrLoad(context.Background(), coords.ChunkCoord{X: chunkX, Z: chunkZ})
	if err != nil {
		return g.w.gen.DefaultBiome()
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.chunk.GetBiome(chunk.RelBiomeCoord{X: relX, Y: relY, Z: relZ})
}

// BiomeAt resolves the rendered biome at pos via the quarter-cell blend,
// using the world seed as the blend's deterministic salt source.
func (w *World) BiomeAt(pos coords.BlockPos) int {
	return biome.Blend(biomeGrid{w}, uint64(w.Seed), pos, bottomBiomeY, topBiomeY)
}

// SurfaceHeight returns the world-Y of the first non-air block below the
// build limit in the column at (x, z), loading or generating that column's
// chunk on miss. Equivalent to one query against the chunk's world-surface
// heightmap, translated out of chunk-relative Y.
func (w *World) SurfaceHeight(x, z int32) int32 {
	coord := coords.ChunkCoord{X: x >> 4, Z: z >> 4}
	e, err := w.getOrLoad(context.Background(), coord)
	if err != nil {
		return 0
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	relX, relZ := int(x&0xF), int(z&0xF)
	return int32(e.chunk.Heightmaps.GetWorldSurface(relX, relZ)) + coords.WorldMinY
}

// Close flushes every dirty chunk and releases open region file handles.
func (w *World) Close(ctx context.Context) error {
	if err := w.FlushDirty(ctx, 4); err != nil {
		return errors.Wrap(err, "world: close flush")
	}
	return w.regions.closeAll()
}
