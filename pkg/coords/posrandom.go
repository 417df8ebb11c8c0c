package coords

// These constants drive both the quarter-cell biome blend (pkg/biome) and
// world-gen's positional hashing (pkg/worldgen). They are load-bearing for
// world determinism and must never be refactored or replaced with a
// different PRNG.
const (
	mixMultiplier uint64 = 6364136223846793005
	mixIncrement  uint64 = 1442695040888963407
	scaleModulus  uint64 = 1024
	scaleFactor   float64 = 0.9
)

// Mix advances the 64-bit PRNG state s by one step, salted with salt. All
// arithmetic wraps, matching the source's wrapping multiply-add.
func Mix(s uint64, salt uint64) uint64 {
	return s*mixMultiplier + mixIncrement + salt
}

// Scale maps a mixed PRNG state to a small signed offset in
// [-0.45, 0.45), used to jitter the quarter-cell coordinates before scoring.
func Scale(m uint64) float64 {
	floorMod := (m >> 24) % scaleModulus
	return (float64(floorMod)/float64(scaleModulus) - 0.5) * scaleFactor
}

// SeedOffsets runs the normative seven-salt sequence from a starting state
// and returns the three jittered offsets (ox, oy, oz) used by the
// quarter-cell biome blend. The sequence is: mix the six coordinates in
// (x,y,z,x,y,z) order on top of the seed, then alternately scale and
// re-mix against the seed three times.
func SeedOffsets(seed uint64, x, y, z int64) (ox, oy, oz float64) {
	s := Mix(seed, uint64(x))
	s = Mix(s, uint64(y))
	s = Mix(s, uint64(z))
	s = Mix(s, uint64(x))
	s = Mix(s, uint64(y))
	s = Mix(s, uint64(z))

	ox = Scale(s)
	s = Mix(s, seed)
	oy = Scale(s)
	s = Mix(s, seed)
	oz = Scale(s)
	return ox, oy, oz
}
