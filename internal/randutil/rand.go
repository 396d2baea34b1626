// Package randutil holds the seedable randomness used by the game engines.
// Engines never reach for a global source; they are handed a *rand.Rand so
// deals and CPU choices replay exactly from a seed.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// Both PCG seeds are derived from the one value so callers only carry a
// single seed around.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// NewTimeSeeded returns a generator seeded from the wall clock along with the
// seed used, so it can be logged and replayed.
func NewTimeSeeded() (*rand.Rand, int64) {
	seed := time.Now().UnixNano()
	return New(seed), seed
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// Shuffled returns a shuffled copy of items; the input is not modified.
func Shuffled[T any](rng *rand.Rand, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Sample returns a random element of items. ok is false when items is empty.
func Sample[T any](rng *rand.Rand, items []T) (item T, ok bool) {
	if len(items) == 0 {
		return item, false
	}
	return items[rng.IntN(len(items))], true
}

// Range returns the integers [0, n) shuffled.
func Range(rng *rand.Rand, n int) []int {
	return rng.Perm(n)
}

// Pop removes up to n items from the end of pile and returns them in pile
// order along with the shortened pile. The top of a pile is its last element.
func Pop[T any](pile []T, n int) (taken []T, rest []T) {
	if n > len(pile) {
		n = len(pile)
	}
	if n <= 0 {
		return nil, pile
	}
	split := len(pile) - n
	taken = make([]T, n)
	copy(taken, pile[split:])
	return taken, pile[:split]
}
