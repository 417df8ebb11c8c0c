package block

import (
	"testing"

	"github.com/StoreStation/blockcore/pkg/registry"
)

func TestPropertiesOfAndStateIDFromPropertiesRoundTrip(t *testing.T) {
	reg := registry.Builtin()
	buttonID, _ := reg.BlockIDByRegistryName("oak_button")
	button := reg.BlockByID(buttonID)

	for _, st := range button.States {
		values := PropertiesOf(reg, st.ID)
		want := make([]registry.PropertyValue, len(values))
		for i, nv := range values {
			want[i] = nv.Value
		}
		got := StateIDFromProperties(reg, buttonID, want)
		if got != st.ID {
			t.Fatalf("round trip for state %d produced %d", st.ID, got)
		}
	}
}

func TestWithPropertyFlipsPowered(t *testing.T) {
	reg := registry.Builtin()
	buttonID, _ := reg.BlockIDByRegistryName("oak_button")
	button := reg.BlockByID(buttonID)

	flipped := WithProperty(reg, button.DefaultState, "powered", "true")
	v, ok := PropertyValueOf(reg, flipped, "powered")
	if !ok || v != "true" {
		t.Fatalf("expected powered=true after flip, got %q (ok=%v)", v, ok)
	}

	back := WithProperty(reg, flipped, "powered", "false")
	if back != button.DefaultState {
		t.Fatalf("flipping back should return to the default state, got %d want %d", back, button.DefaultState)
	}
}
