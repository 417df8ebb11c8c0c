// Package block implements the block-behavior engine: the property
// accessors state IDs are derived from, the per-block behavior dispatch
// table, the scheduled-tick priority queue, and redstone connection
// resolution.
package block

import "github.com/StoreStation/blockcore/pkg/registry"

// NamedValue is one (property name, value) pair, as returned by PropertiesOf.
type NamedValue struct {
	Name  string
	Value registry.PropertyValue
}

// PropertiesOf decodes a state ID back into its named property assignment,
// in the block's declared property order.
func PropertiesOf(reg *registry.Registry, state registry.StateID) []NamedValue {
	b := reg.BlockByID(reg.BlockIDByStateID(state))
	st := reg.State(state)
	out := make([]NamedValue, len(b.Properties))
	for i, p := range b.Properties {
		out[i] = NamedValue{Name: p.Name, Value: st.Values[i]}
	}
	return out
}

// StateIDFromProperties resolves the state ID for blockID carrying exactly
// the given property assignment. Order of values must match
// blockID.Properties; a property omitted from values keeps the zero index
// (its first declared value). Returns the block's default state if no
// state matches (should not happen for a complete assignment).
func StateIDFromProperties(reg *registry.Registry, id registry.BlockID, values []registry.PropertyValue) registry.StateID {
	b := reg.BlockByID(id)
	if len(values) < len(b.Properties) {
		padded := make([]registry.PropertyValue, len(b.Properties))
		copy(padded, values)
		for i := len(values); i < len(b.Properties); i++ {
			padded[i] = b.Properties[i].Values[0]
		}
		values = padded
	}
	for i, st := range b.States {
		if valuesMatch(st.Values, values) {
			return b.FirstState + registry.StateID(i)
		}
	}
	return b.DefaultState
}

func valuesMatch(have, want []registry.PropertyValue) bool {
	if len(have) != len(want) {
		return false
	}
	for i := range have {
		if have[i] != want[i] {
			return false
		}
	}
	return true
}

// WithProperty returns the state ID identical to state except that
// property name is set to value. Used by behaviors that flip a single
// property (e.g. a button's "powered").
func WithProperty(reg *registry.Registry, state registry.StateID, name string, value registry.PropertyValue) registry.StateID {
	id := reg.BlockIDByStateID(state)
	b := reg.BlockByID(id)
	current := PropertiesOf(reg, state)
	values := make([]registry.PropertyValue, len(current))
	for i, nv := range current {
		if nv.Name == name {
			values[i] = value
		} else {
			values[i] = nv.Value
		}
	}
	return StateIDFromProperties(reg, b.ID, values)
}

// PropertyValueOf returns the value of the named property in state, and
// whether the block declares that property at all.
func PropertyValueOf(reg *registry.Registry, state registry.StateID, name string) (registry.PropertyValue, bool) {
	for _, nv := range PropertiesOf(reg, state) {
		if nv.Name == name {
			return nv.Value, true
		}
	}
	return "", false
}
