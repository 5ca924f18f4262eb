// Package kernels implements the five per-tick dispatches (§4.4/§4.5):
// command application, temperature diffusion, intent declaration,
// resolve-and-execute, and stats reduction. Each is a pure, total
// function of its inputs — there is no persistent kernel state between
// ticks, matching §9's "no shared-state globals" guidance. Every case in
// §4.5's mandatory enumeration is implemented exactly as written there,
// including the fixed 5-advance and 16-advance PRNG budgets.
//
// There is no real GPU workgroup underneath this port: a dispatch's
// "workgroup" is a contiguous chunk of flat voxel indices handed to one
// worker-pool goroutine. Chunk boundaries don't need to respect any
// logical 4x4x4 shape, since §5 explicitly disclaims any ordering
// assumption within a dispatch.
package kernels

import "github.com/pthm-cable/protosoup/buffers"

// Runner executes chunkFn over the index range [0, n), covering every
// index exactly once, in whatever splitting scheme the caller prefers.
// scheduler.Pool.Run satisfies this signature; SequentialRunner is the
// single-goroutine fallback used by tests and by small grids.
type Runner func(n int, chunkFn func(start, end int))

// SequentialRunner runs the whole range on the calling goroutine.
func SequentialRunner(n int, chunkFn func(start, end int)) {
	if n > 0 {
		chunkFn(0, n)
	}
}

// forEachActive dispatches process over every voxel index a dense tier
// holds, or, in sparse mode, over every voxel inside an allocated brick
// (§4.3's "iteration is over allocated bricks only... unallocated-brick
// coordinates short-circuit early").
func forEachActive(fab *buffers.Fabric, run Runner, process func(idx int)) {
	indices := fab.ActiveVoxelIndices()
	if indices == nil {
		run(fab.VoxelCount(), func(start, end int) {
			for i := start; i < end; i++ {
				process(i)
			}
		})
		return
	}
	run(len(indices), func(start, end int) {
		for k := start; k < end; k++ {
			process(indices[k])
		}
	})
}
