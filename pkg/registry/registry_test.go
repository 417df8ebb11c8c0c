package registry

import "testing"

func TestBuiltinContiguousStates(t *testing.T) {
	r := Builtin()
	for _, b := range r.blocks {
		for i, st := range b.States {
			if st.ID != b.FirstState+StateID(i) {
				t.Fatalf("block %s: state %d not contiguous (got %d, want %d)", b.RegistryName, i, st.ID, b.FirstState+StateID(i))
			}
			if r.BlockIDByStateID(st.ID) != b.ID {
				t.Fatalf("block %s: BlockIDByStateID(%d) = %d, want %d", b.RegistryName, st.ID, r.BlockIDByStateID(st.ID), b.ID)
			}
			if r.StateIndexByStateID(st.ID) != uint16(i) {
				t.Fatalf("block %s: StateIndexByStateID(%d) = %d, want %d", b.RegistryName, st.ID, r.StateIndexByStateID(st.ID), i)
			}
		}
	}
}

func TestBlockIDByRegistryNameStripsNamespace(t *testing.T) {
	r := Builtin()
	id1, ok := r.BlockIDByRegistryName("minecraft:oak_button")
	if !ok {
		t.Fatal("expected minecraft:oak_button to resolve")
	}
	id2, ok := r.BlockIDByRegistryName("oak_button")
	if !ok || id2 != id1 {
		t.Fatal("expected bare name to resolve to the same block")
	}
}

func TestDefaultStateResolved(t *testing.T) {
	r := Builtin()
	id, _ := r.BlockIDByRegistryName("oak_button")
	b := r.BlockByID(id)
	def := r.State(b.DefaultState)
	if def.Values[1] != "false" {
		t.Fatalf("oak_button default powered = %v, want false", def.Values[1])
	}
}

func TestEveryBlockHasNonEmptyStates(t *testing.T) {
	r := Builtin()
	for _, b := range r.blocks {
		if len(b.States) == 0 {
			t.Fatalf("block %s has no states", b.RegistryName)
		}
	}
}
