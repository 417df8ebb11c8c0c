// Package worldevents is the event contract the world façade (pkg/world)
// publishes to its collaborators: the protocol layer observes the
// non-cancellable (chunk_sent, block_changed, block_destroyed) triple, the
// plugin bus observes cancellable events such as BlockBreakEvent and
// BlockPlaceEvent which may rewrite the façade's outcome before it commits.
package worldevents

import (
	"github.com/google/uuid"

	"github.com/StoreStation/blockcore/pkg/coords"
	"github.com/StoreStation/blockcore/pkg/registry"
)

// ChunkSent fires after the façade hands a chunk's dense sub-chunk buffers
// to the protocol layer for wire serialization.
type ChunkSent struct {
	Coord coords.ChunkCoord
}

// BlockChanged fires after SetBlockState commits, once per call, carrying
// both the prior and new state so listeners can diff without a re-read.
type BlockChanged struct {
	Pos      coords.BlockPos
	OldState registry.StateID
	NewState registry.StateID
}

// BlockDestroyed fires when a block write replaces a non-air state with
// air as a result of a break rather than a generic set (SkipDrops unset).
type BlockDestroyed struct {
	Pos   coords.BlockPos
	State registry.StateID
}

// Cancellable is embedded by plugin-bus events: listeners may veto the
// action the façade was about to take.
type Cancellable struct {
	cancelled bool
}

// Cancel vetoes the event. The façade checks IsCancelled after dispatch.
func (c *Cancellable) Cancel() { c.cancelled = true }

// IsCancelled reports whether any listener cancelled the event.
func (c *Cancellable) IsCancelled() bool { return c.cancelled }

// BlockBreakEvent is fired before a break-originated SetBlockState commits.
// A listener may cancel it to refuse the break entirely, or call SetDrop
// to suppress the normal item drop while still allowing the break.
type BlockBreakEvent struct {
	Cancellable
	Pos      coords.BlockPos
	State    registry.StateID
	PlayerID uuid.UUID
	drop     bool
}

// NewBlockBreakEvent returns a BlockBreakEvent with drops enabled, the
// façade's default before any listener runs.
func NewBlockBreakEvent(pos coords.BlockPos, state registry.StateID, player uuid.UUID) *BlockBreakEvent {
	return &BlockBreakEvent{Pos: pos, State: state, PlayerID: player, drop: true}
}

// SetDrop overrides whether the break drops its normal item(s).
func (e *BlockBreakEvent) SetDrop(drop bool) { e.drop = drop }

// ShouldDrop reports whether the break should drop its normal item(s).
func (e *BlockBreakEvent) ShouldDrop() bool { return e.drop }

// BlockPlaceEvent is fired before a place-originated SetBlockState
// commits. A listener may cancel it to refuse the placement, or rewrite
// State to place a different block than the one requested.
type BlockPlaceEvent struct {
	Cancellable
	Pos      coords.BlockPos
	State    registry.StateID
	PlayerID uuid.UUID
}

// Listener is a subscriber to one event type, identified by the type
// parameter at registration time.
type Listener[E any] func(e E)

// Bus is the façade's process-wide publish point. Listeners are
// registered once at startup (plugins, the protocol layer) and never
// removed; dispatch runs listeners in registration order on the calling
// goroutine, so a cancelling listener can veto before later listeners or
// the façade's own commit observe the event.
type Bus struct {
	chunkSent       []Listener[ChunkSent]
	blockChanged    []Listener[BlockChanged]
	blockDestroyed  []Listener[BlockDestroyed]
	blockBreak      []Listener[*BlockBreakEvent]
	blockPlace      []Listener[*BlockPlaceEvent]
}

// NewBus returns an empty event bus.
func NewBus() *Bus { return &Bus{} }

func (b *Bus) OnChunkSent(l Listener[ChunkSent])           { b.chunkSent = append(b.chunkSent, l) }
func (b *Bus) OnBlockChanged(l Listener[BlockChanged])     { b.blockChanged = append(b.blockChanged, l) }
func (b *Bus) OnBlockDestroyed(l Listener[BlockDestroyed]) { b.blockDestroyed = append(b.blockDestroyed, l) }
func (b *Bus) OnBlockBreak(l Listener[*BlockBreakEvent])   { b.blockBreak = append(b.blockBreak, l) }
func (b *Bus) OnBlockPlace(l Listener[*BlockPlaceEvent])   { b.blockPlace = append(b.blockPlace, l) }

func (b *Bus) FireChunkSent(e ChunkSent) {
	for _, l := range b.chunkSent {
		l(e)
	}
}

func (b *Bus) FireBlockChanged(e BlockChanged) {
	for _, l := range b.blockChanged {
		l(e)
	}
}

func (b *Bus) FireBlockDestroyed(e BlockDestroyed) {
	for _, l := range b.blockDestroyed {
		l(e)
	}
}

// FireBlockBreak dispatches e to every listener, stopping early once e is
// cancelled so later listeners do not see a veto they could not undo
// anyway, and returns e for the caller to inspect.
func (b *Bus) FireBlockBreak(e *BlockBreakEvent) *BlockBreakEvent {
	for _, l := range b.blockBreak {
		l(e)
		if e.IsCancelled() {
			break
		}
	}
	return e
}

func (b *Bus) FireBlockPlace(e *BlockPlaceEvent) *BlockPlaceEvent {
	for _, l := range b.blockPlace {
		l(e)
		if e.IsCancelled() {
			break
		}
	}
	return e
}
