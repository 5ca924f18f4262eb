package kernels

import (
	"github.com/pthm-cable/protosoup/buffers"
	"github.com/pthm-cable/protosoup/layout"
	"github.com/pthm-cable/protosoup/stats"
)

// DispatchStatsReduction scans the post-resolve voxel buffer for
// protocells, accumulates per-chunk histograms, and merges them into
// reducer (§4.4 step 8 / §4.5.5). Per §4.4's dispatch table this
// dispatch "reads voxel_write" — it runs after resolve-and-execute but
// before the end-of-tick parity flip, so the buffer it must scan is
// still the write half, not CurrentReadVoxels.
func DispatchStatsReduction(fab *buffers.Fabric, reducer *stats.Reducer, run Runner) {
	readV := fab.CurrentWriteVoxels()
	reducer.BeginTick()

	n := fab.VoxelCount()
	indices := fab.ActiveVoxelIndices()
	if indices != nil {
		n = len(indices)
	}

	run(n, func(start, end int) {
		var acc stats.WorkgroupAccumulator
		for i := start; i < end; i++ {
			idx := i
			if indices != nil {
				idx = indices[i]
			}
			v := readVoxel(fab, readV, idx)
			if v.Type != layout.Protocell {
				continue
			}
			acc.Add(v.SpeciesID, v.Energy)
		}
		reducer.MergeChunk(&acc)
	})
}
