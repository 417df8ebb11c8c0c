package block

import "github.com/StoreStation/blockcore/pkg/registry"

// RunScheduledTicks drains every entry due at now: it looks up the current
// block and invokes its ScheduledTick hook, leaving the write-back (if any)
// to the behavior's own call to w.SetBlockState.
func RunScheduledTicks(q *ScheduledTickQueue, t *Table, reg *registry.Registry, w World, now int64) {
	for _, pos := range q.Due(now) {
		state := w.GetBlockState(pos)
		id := reg.BlockIDByStateID(state)
		behavior := t.Lookup(id)
		behavior.ScheduledTick(w, reg, pos)
	}
}
