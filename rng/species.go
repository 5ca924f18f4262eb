package rng

import "github.com/pthm-cable/protosoup/layout"

// SpeciesID computes the 16-bit genome-mixing hash described in §4.2.
// The canonical implementation lives on layout.Genome (the Data-Layout
// Authority owns the genome's bit format); this is the hash-primitives
// package's documented entry point to the same function, so callers
// working purely in terms of PRNG/hash concerns don't need to reach
// into layout directly.
func SpeciesID(g layout.Genome) uint16 {
	return g.SpeciesID()
}
