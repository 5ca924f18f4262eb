// Package buffers is the Buffer Fabric: it owns every buffer the tick
// pipeline reads and writes — the double-buffered voxel grid, the
// double-buffered temperature field, the intent scratch buffer, the
// command and params staging areas — and the parity bookkeeping that tells every dispatch which half of each
// double buffer is "this tick's read" versus "this tick's write" (§4.3).
// The package also defines StatsSlots, the stats readback staging ring,
// which stats.Reducer instantiates for itself.
//
// There is no real GPU underneath this port: the fabric's buffers are
// plain Go slices, and "allocation" is just sizing them. What the
// fabric keeps faithfully from the original design is the shape of the
// problem — fixed-size buffers sized once at a capability tier, parity
// flip instead of in-place mutation, and a tiered step-down-and-retry
// allocation strategy — because that shape is what the scheduler and
// kernels are written against.
package buffers

import "fmt"

// Fabric owns every per-tick buffer for one simulation instance.
type Fabric struct {
	Tier     Tier
	GridSize int

	// Voxels holds both halves of the double-buffered voxel grid, each
	// a flat array of 8 little-endian words per voxel (§4.1). Voxels[p]
	// is the buffer currently playing the role parity p names.
	Voxels [2][]uint32

	// Temperatures holds both halves of the double-buffered scalar
	// temperature field, one float32 per voxel.
	Temperatures [2][]float32

	// Intents is single-buffered scratch: cleared and rewritten every
	// tick by the intent-declaration dispatch, consumed the same tick
	// by resolve-and-execute (§4.5.3/§4.5.4). One word per voxel.
	Intents []uint32

	// Commands is the wire-format command buffer uploaded by the host
	// once per tick (§4.1's 64-byte command record format).
	Commands []byte

	// Params is the uniform parameter block, serialized the same way
	// it would cross a GPU uniform-buffer boundary.
	Params []byte

	// Bricks is non-nil only in sparse mode; it maps brick coordinates
	// to pool slots for both the current and next voxel buffers.
	Bricks *BrickTable

	parity int // 0 or 1; parity selects the *read* half.
}

// maxResidentBricks bounds the sparse tier's backing pool to a working
// set far smaller than its 256^3 logical extent: 4096 bricks is
// 4096*8^3 = 2,097,152 voxel slots, about 12.5% of a dense 256^3 grid,
// which is what makes the sparse tier's footprint (~144MB across both
// voxel and temperature parity halves) fit under the same 256MB budget
// that made it selectable over dense-high in the first place. Bricks
// touched past this cap fail to allocate (buffers.Unallocated) and the
// kernels that requested them fall back to treating the coordinate as
// permanently Empty, per spec's pool-exhaustion handling.
const maxResidentBricks = 4096

// NewFabric allocates every buffer for gridSize^3 voxels at the given
// tier. Sparse mode instead allocates a BrickTable plus a voxel/
// temperature pool sized to the table's resident capacity — not the
// full dense grid — so every kernel must indirect through Bricks to
// reach storage, the same as the real GPU-side bucket table.
func NewFabric(tier Tier, gridSize int) (*Fabric, error) {
	if gridSize <= 0 {
		return nil, fmt.Errorf("buffers: grid size must be positive, got %d", gridSize)
	}
	n := gridSize * gridSize * gridSize

	f := &Fabric{
		Tier:     tier,
		GridSize: gridSize,
		Commands: make([]byte, 0, 4+64*64),
		Params:   make([]byte, 0, 128),
	}

	voxelSlots := n
	if tier == TierSparse {
		bricksPerAxis := (gridSize + BrickSize - 1) / BrickSize
		addressable := uint32(bricksPerAxis * bricksPerAxis * bricksPerAxis)
		resident := addressable
		if resident > maxResidentBricks {
			resident = maxResidentBricks
		}
		f.Bricks = NewBrickTable(resident)
		voxelSlots = int(resident) * BrickSize * BrickSize * BrickSize
	}

	f.Intents = make([]uint32, voxelSlots)
	for p := 0; p < 2; p++ {
		f.Voxels[p] = make([]uint32, voxelSlots*8)
		f.Temperatures[p] = make([]float32, voxelSlots)
	}
	return f, nil
}

// resolveSlot maps a logical grid index (from Index3D/Coords3D) to its
// physical offset into the Voxels/Temperatures/Intents pools. Dense
// tiers store one slot per logical index directly, so resolution is the
// identity. The sparse tier indirects through Bricks (§4.3): a write
// resolution allocates the containing brick on its first touch; a read
// resolution only looks it up, reporting ok=false for a brick that has
// never been written (the caller's cue to treat the coordinate as an
// ordinary Empty voxel / ambient temperature / NoAction intent) or one
// that can't be allocated because the resident pool is already full.
func (f *Fabric) resolveSlot(idx int, allocate bool) (slot int, ok bool) {
	if f.Bricks == nil {
		return idx, true
	}
	x, y, z := f.Coords3D(idx)
	coord := VoxelToBrick(int32(x), int32(y), int32(z))
	var brickSlot uint32
	if allocate {
		brickSlot = f.Bricks.Allocate(coord)
	} else {
		brickSlot = f.Bricks.Lookup(coord)
	}
	if brickSlot == Unallocated {
		return 0, false
	}
	lx, ly, lz := x%BrickSize, y%BrickSize, z%BrickSize
	local := (lz*BrickSize+ly)*BrickSize + lx
	return int(brickSlot)*BrickSize*BrickSize*BrickSize + local, true
}

// ReadSlot resolves a logical grid index to its storage slot for a
// read, without allocating. ok is false exactly when sparse mode has
// never written this index's containing brick.
func (f *Fabric) ReadSlot(idx int) (slot int, ok bool) {
	return f.resolveSlot(idx, false)
}

// WriteSlot resolves a logical grid index to its storage slot for a
// write, allocating the containing brick in sparse mode on first touch.
// ok is false only when the resident brick pool is already at capacity
// and idx's brick was never allocated.
func (f *Fabric) WriteSlot(idx int) (slot int, ok bool) {
	return f.resolveSlot(idx, true)
}

// StartTiered tries to allocate a fabric at the tier SelectTier picks
// for limits, stepping down the capability ladder on failure until one
// succeeds or the ladder is exhausted (§7b). With plain Go slices,
// allocation only fails on an invalid grid size, but the fallback walk
// is preserved since real allocation on a GPU backend can fail for
// budget reasons the logical grid size doesn't capture.
func StartTiered(limits DeviceLimits) (*Fabric, error) {
	tier := SelectTier(limits)
	for {
		f, err := NewFabric(tier, tier.GridSize())
		if err == nil {
			return f, nil
		}
		next, ok := tier.NextLower()
		if !ok {
			return nil, fmt.Errorf("buffers: allocation failed at every tier, last error: %w", err)
		}
		tier = next
	}
}

// Parity returns the current parity (0 or 1): the index of the buffer
// half every dispatch this tick should read from.
func (f *Fabric) Parity() int {
	return f.parity
}

// WriteParity returns the buffer half this tick's writes land in —
// always the other half from Parity().
func (f *Fabric) WriteParity() int {
	return 1 - f.parity
}

// Flip swaps read and write roles for the next tick (§4.4's end-of-tick
// parity flip).
func (f *Fabric) Flip() {
	f.parity = 1 - f.parity
}

// CurrentReadVoxels returns the voxel word buffer dispatches should read
// from this tick, per §4.3/§6's host-facing readback contract.
func (f *Fabric) CurrentReadVoxels() []uint32 {
	return f.Voxels[f.parity]
}

// CurrentWriteVoxels returns the voxel word buffer dispatches should
// write to this tick.
func (f *Fabric) CurrentWriteVoxels() []uint32 {
	return f.Voxels[f.WriteParity()]
}

// CurrentReadTemperatures returns the temperature buffer dispatches
// should read from this tick.
func (f *Fabric) CurrentReadTemperatures() []float32 {
	return f.Temperatures[f.parity]
}

// CurrentWriteTemperatures returns the temperature buffer dispatches
// should write to this tick.
func (f *Fabric) CurrentWriteTemperatures() []float32 {
	return f.Temperatures[f.WriteParity()]
}

// VoxelCount returns the total number of voxel slots in the grid.
func (f *Fabric) VoxelCount() int {
	return f.GridSize * f.GridSize * f.GridSize
}

// VoxelWords returns the 8-word record for voxel index i out of buf.
func VoxelWords(buf []uint32, index int) [8]uint32 {
	var w [8]uint32
	copy(w[:], buf[index*8:index*8+8])
	return w
}

// SetVoxelWords writes the 8-word record for voxel index i into buf.
func SetVoxelWords(buf []uint32, index int, w [8]uint32) {
	copy(buf[index*8:index*8+8], w[:])
}

// Index3D converts a 3D voxel coordinate to its flat buffer index using
// row-major layout, matching the indexing scheme of the corpus's
// dense-grid reference helper.
func (f *Fabric) Index3D(x, y, z int) int {
	return (z*f.GridSize+y)*f.GridSize + x
}

// InBounds reports whether a 3D coordinate lies within the grid.
func (f *Fabric) InBounds(x, y, z int) bool {
	n := f.GridSize
	return x >= 0 && x < n && y >= 0 && y < n && z >= 0 && z < n
}

// Coords3D converts a flat voxel index back to its (x, y, z) coordinate,
// the inverse of Index3D.
func (f *Fabric) Coords3D(index int) (x, y, z int) {
	n := f.GridSize
	x = index % n
	y = (index / n) % n
	z = index / (n * n)
	return
}

// ActiveVoxelIndices returns the flat indices kernels should iterate this
// tick. Dense tiers return nil, meaning "iterate the whole grid, 0 to
// VoxelCount()" — callers must treat nil as that sentinel, not as an
// empty set. The sparse tier instead expands every allocated brick into
// its constituent voxel indices, so kernels only ever touch bricks a
// command has actually written into, per §4.3/§4.5's sparse short-circuit
// rule.
func (f *Fabric) ActiveVoxelIndices() []int {
	if f.Bricks == nil {
		return nil
	}
	n := f.GridSize
	indices := make([]int, 0, f.Bricks.Len()*BrickSize*BrickSize*BrickSize)
	for coord := range f.Bricks.All() {
		bx, by, bz := int(coord.X)*BrickSize, int(coord.Y)*BrickSize, int(coord.Z)*BrickSize
		for dz := 0; dz < BrickSize; dz++ {
			for dy := 0; dy < BrickSize; dy++ {
				for dx := 0; dx < BrickSize; dx++ {
					x, y, z := bx+dx, by+dy, bz+dz
					if x < 0 || x >= n || y < 0 || y >= n || z < 0 || z >= n {
						continue
					}
					indices = append(indices, f.Index3D(x, y, z))
				}
			}
		}
	}
	return indices
}
