package block

import "math/rand"

// IntProvider is a ranged integer source for behaviors that need one
// (loot counts, drop chances) without scattering ad hoc rand.Intn calls
// through the behavior table, grounded in the original Rust source's
// math/int_provider.rs IntProvider/NormalIntProvider sum type.
type IntProvider interface {
	Min() int32
	Max() int32
	Get(r *rand.Rand) int32
}

// Constant always returns the same value.
type Constant int32

func (c Constant) Min() int32              { return int32(c) }
func (c Constant) Max() int32              { return int32(c) }
func (c Constant) Get(*rand.Rand) int32 { return int32(c) }

// Uniform returns an integer in [MinInclusive, MaxInclusive], grounded in
// UniformIntProvider's min_inclusive/max_inclusive.
type Uniform struct {
	MinInclusive, MaxInclusive int32
}

func (u Uniform) Min() int32 { return u.MinInclusive }
func (u Uniform) Max() int32 { return u.MaxInclusive }

func (u Uniform) Get(r *rand.Rand) int32 {
	if u.MaxInclusive <= u.MinInclusive {
		return u.MinInclusive
	}
	span := int64(u.MaxInclusive) - int64(u.MinInclusive) + 1
	return u.MinInclusive + int32(r.Int63n(span))
}
