package kernels

import (
	"github.com/pthm-cable/protosoup/buffers"
	"github.com/pthm-cable/protosoup/layout"
)

// DispatchTemperatureDiffusion reads T_read and the current voxel types,
// writes T_write (§4.4 step 5 / §4.5.2). One pass per tick; the result
// is always clamped to [0, 1] to guard against any f32 drift.
func DispatchTemperatureDiffusion(fab *buffers.Fabric, diffusionRate float32, run Runner) {
	readT := fab.CurrentReadTemperatures()
	writeT := fab.CurrentWriteTemperatures()
	readV := fab.CurrentReadVoxels()

	process := func(idx int) {
		v := readVoxel(fab, readV, idx)
		switch v.Type {
		case layout.Wall:
			// Insulators: preserve their own temperature.
			writeTemp(fab, writeT, idx, readTemp(fab, readT, idx))
			return
		case layout.HeatSource:
			writeTemp(fab, writeT, idx, 1.0)
			return
		case layout.ColdSource:
			writeTemp(fab, writeT, idx, 0.0)
			return
		}

		x, y, z := fab.Coords3D(idx)
		selfT := readTemp(fab, readT, idx)
		var sum float32
		count := 0
		for _, dir := range faceDirections {
			nidx, ok := neighborIndex(fab, x, y, z, dir)
			if !ok {
				continue
			}
			if readVoxel(fab, readV, nidx).Type == layout.Wall {
				continue // Walls excluded from the neighbor sum.
			}
			sum += readTemp(fab, readT, nidx)
			count++
		}

		newT := selfT
		if count > 0 {
			mean := sum / float32(count)
			newT = selfT + diffusionRate*(mean-selfT)
		}
		writeTemp(fab, writeT, idx, clamp01(newT))
	}

	forEachActive(fab, run, process)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
