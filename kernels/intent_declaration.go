package kernels

import (
	"github.com/pthm-cable/protosoup/buffers"
	"github.com/pthm-cable/protosoup/layout"
	"github.com/pthm-cable/protosoup/rng"
)

// DispatchIntentDeclaration writes one intent word per voxel, reading
// voxel_read (already mutated in place by apply_commands) (§4.4 step 6
// / §4.5.3). It takes no temperature input: none of the intent cases
// gate on local temperature, only resolve_and_execute's temp_modifier
// does (§4.5.3). Every protocell consumes exactly 5 PRNG
// advances regardless of which branch wins, so the same voxel's stream
// is the same length every tick (§8's determinism law).
func DispatchIntentDeclaration(fab *buffers.Fabric, params layout.SimParams, tick uint64, run Runner) {
	readV := fab.CurrentReadVoxels()
	intents := fab.Intents
	gridSize := uint32(fab.GridSize)

	process := func(idx int) {
		v := readVoxel(fab, readV, idx)
		if v.Type != layout.Protocell {
			writeIntent(fab, intents, idx, layout.EncodeIntent(layout.NoAction, layout.SelfDir, 0))
			return
		}

		x, y, z := fab.Coords3D(idx)
		stream := rng.NewStream(rng.Seed(uint32(idx), uint32(tick), gridSize, rng.SaltIntent))

		// Exactly 5 advances, unconditionally, before any branching.
		replicateSelectDraw := stream.Next()
		replicateBidDraw := stream.Next()
		moveDecisionDraw := stream.Next()
		moveDirectionDraw := stream.Next()
		predateBidDraw := stream.Next()

		if v.Energy == 0 {
			writeIntent(fab, intents, idx, layout.EncodeIntent(layout.Die, layout.SelfDir, 0))
			return
		}

		if dir, ok := declarePredate(fab, readV, x, y, z, v, params, predateBidDraw); ok {
			writeIntent(fab, intents, idx, layout.EncodeIntent(layout.Predate, dir, predateBidDraw%(uint32(v.Energy)+1)))
			return
		}

		if dir, ok := declareReplicate(fab, readV, x, y, z, v, params, replicateSelectDraw); ok {
			writeIntent(fab, intents, idx, layout.EncodeIntent(layout.Replicate, dir, replicateBidDraw%(uint32(v.Energy)+1)))
			return
		}

		if dir, ok := declareMove(fab, readV, x, y, z, v, moveDecisionDraw, moveDirectionDraw); ok {
			writeIntent(fab, intents, idx, layout.EncodeIntent(layout.Move, dir, moveDirectionDraw%(uint32(v.Energy)+1)))
			return
		}

		writeIntent(fab, intents, idx, layout.EncodeIntent(layout.Idle, layout.SelfDir, 0))
	}

	forEachActive(fab, run, process)
}

// declarePredate implements §4.5.3 case 4: any adjacent protocell below
// the aggression threshold makes the lowest-energy one prey. The
// aggression threshold is the genome's predation_aggression byte scaled
// into energy units, since the spec names the comparison but not the
// scale — DESIGN.md records this choice.
func declarePredate(fab *buffers.Fabric, readV []uint32, x, y, z int, v layout.Voxel, params layout.SimParams, _ uint32) (layout.Direction, bool) {
	if v.Genome.PredationCapability() == 0 {
		return layout.SelfDir, false
	}
	threshold := float32(v.Genome.PredationAggression()) / 255.0 * params.MaxEnergy

	found := false
	var bestDir layout.Direction
	var bestEnergy uint16
	for _, dir := range faceDirections {
		nidx, ok := neighborIndex(fab, x, y, z, dir)
		if !ok {
			continue
		}
		nv := readVoxel(fab, readV, nidx)
		if nv.Type != layout.Protocell {
			continue
		}
		if float32(nv.Energy) >= threshold {
			continue
		}
		if !found || nv.Energy < bestEnergy {
			found, bestDir, bestEnergy = true, dir, nv.Energy
		}
	}
	return bestDir, found
}

// declareReplicate implements §4.5.3 case 2.
func declareReplicate(fab *buffers.Fabric, readV []uint32, x, y, z int, v layout.Voxel, params layout.SimParams, selectDraw uint32) (layout.Direction, bool) {
	threshold := params.ReplicationEnergyMin * float32(v.Genome.ReplicationThreshold()) / 255.0
	if float32(v.Energy) <= threshold {
		return layout.SelfDir, false
	}
	candidates := emptyNeighborDirs(fab, readV, x, y, z)
	if len(candidates) == 0 {
		return layout.SelfDir, false
	}
	return candidates[selectDraw%uint32(len(candidates))], true
}

// declareMove implements §4.5.3 case 3: a movement-bias gate, then a
// chemotaxis-biased direction choice among empty neighbors.
func declareMove(fab *buffers.Fabric, readV []uint32, x, y, z int, v layout.Voxel, decisionDraw, directionDraw uint32) (layout.Direction, bool) {
	if decisionDraw%256 >= uint32(v.Genome.MovementBias()) {
		return layout.SelfDir, false
	}
	empty := emptyNeighborDirs(fab, readV, x, y, z)
	if len(empty) == 0 {
		return layout.SelfDir, false
	}
	foodAligned := foodAlignedDirs(fab, readV, x, y, z, empty)
	candidates := empty
	if len(foodAligned) > 0 && directionDraw%255 < uint32(v.Genome.ChemotaxisStrength()) {
		candidates = foodAligned
	}
	return candidates[directionDraw%uint32(len(candidates))], true
}

func emptyNeighborDirs(fab *buffers.Fabric, readV []uint32, x, y, z int) []layout.Direction {
	var out []layout.Direction
	for _, dir := range faceDirections {
		nidx, ok := neighborIndex(fab, x, y, z, dir)
		if !ok {
			continue
		}
		if readVoxel(fab, readV, nidx).Type == layout.Empty {
			out = append(out, dir)
		}
	}
	return out
}

// foodAlignedDirs marks each empty-neighbor direction as food-aligned
// when continuing one more step past it reaches a Nutrient or
// EnergySource voxel.
func foodAlignedDirs(fab *buffers.Fabric, readV []uint32, x, y, z int, empty []layout.Direction) []layout.Direction {
	var out []layout.Direction
	for _, dir := range empty {
		dx, dy, dz := dir.Offset()
		nx, ny, nz := x+dx, y+dy, z+dz
		for _, dir2 := range faceDirections {
			idx2, ok := neighborIndex(fab, nx, ny, nz, dir2)
			if !ok {
				continue
			}
			t := readVoxel(fab, readV, idx2).Type
			if t == layout.Nutrient || t == layout.EnergySource {
				out = append(out, dir)
				break
			}
		}
	}
	return out
}
