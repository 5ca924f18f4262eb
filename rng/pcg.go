// Package rng implements the PRNG and hash primitives shared by every
// kernel dispatch: a splittable PCG-RXS-M-XS-32 hash used to derive a
// deterministic, per-voxel, per-tick, per-dispatch stream with no
// persistent state (§4.2 of the spec). Because the stream is recomputed
// from (voxel index, tick count, grid size, dispatch salt) rather than
// carried across calls, two kernels in the same tick — or the same
// kernel on two different runs — never observe each other's advances,
// which is what makes the whole engine's concurrency model safe without
// atomics (§5, §9).
package rng

// DispatchSalt distinguishes the PRNG stream of each kernel at the same
// voxel and tick (§4.2/§4.4).
type DispatchSalt uint32

const (
	SaltTemperature DispatchSalt = 0
	SaltIntent      DispatchSalt = 1
	SaltResolve     DispatchSalt = 2
	SaltCommands    DispatchSalt = 3
	SaltStats       DispatchSalt = 4
)

const (
	mulA uint32 = 0x9E3779B9
	mulB uint32 = 0x85EBCA6B
)

// Hash is PCG-RXS-M-XS-32: state-advance x <- x*747796405 + 2891336453,
// output ((x >> ((x>>28)+4)) ^ x) * 277803737, then (out>>22) ^ out. All
// arithmetic is 32-bit wrapping, which Go's uint32 gives us for free.
func Hash(x uint32) uint32 {
	x = x*747796405 + 2891336453
	word := ((x >> ((x >> 28) + 4)) ^ x) * 277803737
	return (word >> 22) ^ word
}

// Seed derives the PRNG seed for one (voxel, tick, dispatch) triple per
// §4.2's seeding rule. The grid_size term keeps test grids and
// production grids from colliding in coordinate space; the dispatch
// salt keeps sibling kernels in the same tick independent.
func Seed(voxelIndex, tickCount, gridSize uint32, salt DispatchSalt) uint32 {
	return Hash(voxelIndex ^ (tickCount * mulA) ^ (gridSize * mulB) ^ uint32(salt))
}

// Stream is a deterministic, stateless-in-the-caller PRNG stream rooted
// at a single seed. Calling Next repeatedly re-hashes the running state,
// giving the same fixed-advance-count semantics intent declaration and
// resolve-and-execute depend on (§4.5.3's "exactly 5 PRNG advances").
type Stream struct {
	state uint32
}

// NewStream starts a stream at the given seed.
func NewStream(seed uint32) Stream {
	return Stream{state: seed}
}

// Next advances the stream by one hash and returns the new raw value.
func (s *Stream) Next() uint32 {
	s.state = Hash(s.state)
	return s.state
}

// NextBounded returns a uniform value in [0, bound) by advancing the
// stream once. bound == 0 always returns 0.
func (s *Stream) NextBounded(bound uint32) uint32 {
	v := s.Next()
	if bound == 0 {
		return 0
	}
	return v % bound
}
