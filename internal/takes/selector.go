// Package takes draws the anonymized take list shown during a blind round.
//
// Selection is seeded from the (work id, shuffle generation) pair so that
// revisiting a work without reshuffling reproduces the exact same ordered
// list, while bumping the generation yields a fresh deterministic draw.
package takes

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// Seed derives the PRNG seed for a work at a given shuffle generation.
// FNV-1a over "workID:generation"; stable across processes for this
// implementation (no cross-language reproducibility is promised).
func Seed(workID string, generation uint64) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s:%d", workID, generation)
	return int64(h.Sum64())
}

// ForWork returns a PRNG seeded for the given work and generation.
func ForWork(workID string, generation uint64) *rand.Rand {
	return rand.New(rand.NewSource(Seed(workID, generation)))
}

// Pick draws up to count distinct ids from ids, uniformly at random and in
// uniformly random order, without replacement. If len(ids) <= count the whole
// set is returned shuffled. An empty input yields an empty (non-nil) slice;
// callers decide whether that means "insufficient".
func Pick(ids []string, count int, rng *rand.Rand) []string {
	pool := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			pool = append(pool, id)
		}
	}
	if count < 0 {
		count = 0
	}
	n := count
	if n > len(pool) {
		n = len(pool)
	}

	// Partial Fisher-Yates: after i swaps, pool[:i] is a uniform ordered
	// sample of size i.
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n:n]
}

// PickForWork is the common path: seed from (workID, generation), then draw.
func PickForWork(workID string, ids []string, count int, generation uint64) []string {
	return Pick(ids, count, ForWork(workID, generation))
}
