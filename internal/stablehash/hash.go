// Package stablehash is the sole randomness source for everything that must
// be reproducible from its inputs: narration template picks, rift target
// selection, tie-break winners, and beat text variation. Genuinely random
// paths (timeout fallback choices, room codes) use math/rand and never feed
// these seeds.
package stablehash

import "hash/fnv"

// Sum32 returns the FNV-1a 32-bit hash of the seed string.
func Sum32(seed string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(seed))
	return h.Sum32()
}

// Roll maps a seed to a value in [0, 1).
func Roll(seed string) float64 {
	return (float64(Sum32(seed)%10000) + 0.5) / 10000
}

// Pick returns a stable index in [0, n) for the seed. n must be positive.
func Pick(n int, seed string) int {
	return int(Sum32(seed) % uint32(n))
}

// PickString returns a stable element of options for the seed.
func PickString(options []string, seed string) string {
	if len(options) == 0 {
		return ""
	}
	return options[Pick(len(options), seed)]
}
