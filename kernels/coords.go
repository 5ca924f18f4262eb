package kernels

import (
	"github.com/pthm-cable/protosoup/buffers"
	"github.com/pthm-cable/protosoup/layout"
)

// faceDirections are the six face-adjacent neighbor directions every
// kernel scans; SelfDir is never a scan target.
var faceDirections = [6]layout.Direction{
	layout.PosX, layout.NegX,
	layout.PosY, layout.NegY,
	layout.PosZ, layout.NegZ,
}

// neighborIndex returns the flat index of the voxel one step from
// (x, y, z) in direction dir, and false if that step leaves the grid.
func neighborIndex(fab *buffers.Fabric, x, y, z int, dir layout.Direction) (int, bool) {
	dx, dy, dz := dir.Offset()
	nx, ny, nz := x+dx, y+dy, z+dz
	if !fab.InBounds(nx, ny, nz) {
		return 0, false
	}
	return fab.Index3D(nx, ny, nz), true
}

// brushIndices returns every in-bounds voxel index within Chebyshev
// radius of (cx, cy, cz) — a cube of side 2*radius+1 clipped to the
// grid, matching §4.5.1's "cubic brush" command semantics. A cube scan
// is exactly the Chebyshev ball; no separate distance check is needed.
func brushIndices(fab *buffers.Fabric, cx, cy, cz, radius int) []int {
	var out []int
	for dz := -radius; dz <= radius; dz++ {
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				x, y, z := cx+dx, cy+dy, cz+dz
				if !fab.InBounds(x, y, z) {
					continue
				}
				out = append(out, fab.Index3D(x, y, z))
			}
		}
	}
	return out
}

// readVoxel/writeVoxel adapt the Data-Layout Authority's pack/unpack
// pair to the flat word buffers the Buffer Fabric holds, indirecting
// every access through fab's brick table in sparse mode (§4.3: "every
// kernel indirects through this table"). A read of a never-allocated
// sparse brick returns the zero Voxel (Empty), matching what that
// coordinate would hold had it been stored explicitly. A write always
// allocates its brick; a write that can't allocate because the
// resident pool is full is silently dropped, the same outcome as if
// the coordinate could never be anything but Empty.
func readVoxel(fab *buffers.Fabric, buf []uint32, idx int) layout.Voxel {
	slot, ok := fab.ReadSlot(idx)
	if !ok {
		return layout.Voxel{}
	}
	return layout.UnpackVoxel(buffers.VoxelWords(buf, slot))
}

func writeVoxel(fab *buffers.Fabric, buf []uint32, idx int, v layout.Voxel) {
	slot, ok := fab.WriteSlot(idx)
	if !ok {
		return
	}
	buffers.SetVoxelWords(buf, slot, layout.PackVoxel(v))
}

// readTemp/writeTemp are readVoxel/writeVoxel's counterparts for the
// scalar temperature buffers. An unallocated sparse brick reads as 0,
// a documented simplification: the pool has no slot to hold a
// per-voxel ambient baseline for ground it has never touched.
func readTemp(fab *buffers.Fabric, buf []float32, idx int) float32 {
	slot, ok := fab.ReadSlot(idx)
	if !ok {
		return 0
	}
	return buf[slot]
}

func writeTemp(fab *buffers.Fabric, buf []float32, idx int, v float32) {
	slot, ok := fab.WriteSlot(idx)
	if !ok {
		return
	}
	buf[slot] = v
}

// readIntent/writeIntent are readVoxel/writeVoxel's counterparts for
// the single-buffered intent scratch array.
func readIntent(fab *buffers.Fabric, intents []uint32, idx int) uint32 {
	slot, ok := fab.ReadSlot(idx)
	if !ok {
		return layout.EncodeIntent(layout.NoAction, layout.SelfDir, 0)
	}
	return intents[slot]
}

func writeIntent(fab *buffers.Fabric, intents []uint32, idx int, w uint32) {
	slot, ok := fab.WriteSlot(idx)
	if !ok {
		return
	}
	intents[slot] = w
}

// probabilityRoll turns a raw PRNG draw into a uniform float in [0, 1),
// the form every "roll PRNG; with probability p do X" case in §4.5
// needs.
func probabilityRoll(raw uint32) float32 {
	const scale = 1 << 24
	return float32(raw%scale) / float32(scale)
}
