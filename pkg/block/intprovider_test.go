package block

import (
	"math/rand"
	"testing"
)

func TestConstantIntProvider(t *testing.T) {
	c := Constant(7)
	r := rand.New(rand.NewSource(1))
	if c.Min() != 7 || c.Max() != 7 || c.Get(r) != 7 {
		t.Fatalf("expected Constant(7) to always report 7")
	}
}

func TestUniformIntProviderStaysInRange(t *testing.T) {
	u := Uniform{MinInclusive: 2, MaxInclusive: 5}
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		v := u.Get(r)
		if v < 2 || v > 5 {
			t.Fatalf("Uniform.Get returned %d, want [2,5]", v)
		}
	}
}

func TestUniformIntProviderDegenerateRange(t *testing.T) {
	u := Uniform{MinInclusive: 4, MaxInclusive: 4}
	r := rand.New(rand.NewSource(1))
	if v := u.Get(r); v != 4 {
		t.Fatalf("expected degenerate range to always return 4, got %d", v)
	}
}
