package kernels

import (
	"github.com/pthm-cable/protosoup/buffers"
	"github.com/pthm-cable/protosoup/layout"
	"github.com/pthm-cable/protosoup/rng"
)

// DispatchResolveExecute is the central kernel (§4.4 step 7 / §4.5.4):
// every thread writes exactly one output voxel, with every contention
// resolved by the redundant deterministic bid comparison in contests.go
// so no two threads ever need to coordinate.
func DispatchResolveExecute(fab *buffers.Fabric, params layout.SimParams, tick uint64, run Runner) {
	readV := fab.CurrentReadVoxels()
	writeV := fab.CurrentWriteVoxels()
	tempW := fab.CurrentWriteTemperatures()
	intents := fab.Intents
	gridSize := uint32(fab.GridSize)

	process := func(idx int) {
		v := readVoxel(fab, readV, idx)
		tempMod := 1.0 + params.TempSensitivity*(readTemp(fab, tempW, idx)-0.5)

		switch v.Type {
		case layout.Empty:
			resolveEmpty(fab, readV, writeV, intents, idx, params, tick, gridSize)
		case layout.Protocell:
			resolveProtocell(fab, readV, writeV, intents, idx, v, params, tick, gridSize, tempMod)
		case layout.Nutrient:
			resolveNutrient(fab, readV, writeV, idx, v)
		case layout.Waste:
			resolveWaste(fab, writeV, idx, v, params, tick, gridSize)
		default:
			// Wall, EnergySource, HeatSource, ColdSource: copy unchanged.
			writeVoxel(fab, writeV, idx, v)
		}
	}

	forEachActive(fab, run, process)
}

// resolveEmpty implements §4.5.4's P.type==Empty case.
func resolveEmpty(fab *buffers.Fabric, readV, writeV []uint32, intents []uint32, idx int, params layout.SimParams, tick uint64, gridSize uint32) {
	winner := replicateMoveWinnerAt(fab, readV, intents, idx)
	if !winner.Found {
		stream := rng.NewStream(rng.Seed(uint32(idx), uint32(tick), gridSize, rng.SaltResolve))
		if probabilityRoll(stream.Next()) < params.NutrientSpawnRate {
			writeVoxel(fab, writeV, idx, layout.Voxel{Type: layout.Nutrient, Extra: [2]uint32{255, 0}})
		} else {
			writeVoxel(fab, writeV, idx, layout.Voxel{})
		}
		return
	}

	mover := readVoxel(fab, readV, winner.Idx)

	if winner.Action == layout.Move {
		if predateWinnerAt(fab, readV, intents, winner.Idx).Found {
			// The mover is being eaten at its origin; don't materialize it here.
			writeVoxel(fab, writeV, idx, layout.Voxel{})
			return
		}
		tempMod := 1.0 + params.TempSensitivity*(readTemp(fab, fab.CurrentWriteTemperatures(), idx)-0.5)
		gain := metabolismGain(fab, readV, params, idx, mover.Genome)
		cost := metabolicCost(params, mover.Genome, tempMod) + params.MovementEnergyCost
		newEnergy := saturatingEnergy(float32(mover.Energy)+gain-cost, params.MaxEnergy)
		if newEnergy == 0 {
			writeVoxel(fab, writeV, idx, layout.Voxel{Type: layout.Waste, SpeciesID: mover.SpeciesID})
			return
		}
		writeVoxel(fab, writeV, idx, layout.Voxel{
			Type:      layout.Protocell,
			Energy:    newEnergy,
			Age:       layout.SaturatingAddU16Age(mover.Age),
			SpeciesID: mover.SpeciesID,
			Genome:    mover.Genome,
		})
		return
	}

	// Replicate winner: produce offspring from the parent's (mutated) genome.
	stream := rng.NewStream(rng.Seed(uint32(idx), uint32(tick), gridSize, rng.SaltResolve))
	var draws [16]uint32
	for i := range draws {
		draws[i] = stream.Next()
	}
	tempModAtParent := 1.0 + params.TempSensitivity*(readTemp(fab, fab.CurrentWriteTemperatures(), winner.Idx)-0.5)
	effectiveMutationRate := uint8(minFloat(float32(mover.Genome.MutationRate())*tempModAtParent, 255))
	mutated := mover.Genome.Mutate(draws, effectiveMutationRate)
	speciesID := mutated.SpeciesID()
	offspringEnergy := uint16(uint32(mover.Energy) * uint32(255-mover.Genome.EnergySplitRatio()) / 255)
	writeVoxel(fab, writeV, idx, layout.Voxel{
		Type:      layout.Protocell,
		Energy:    offspringEnergy,
		Age:       0,
		SpeciesID: speciesID,
		Genome:    mutated,
	})
}

// resolveProtocell implements §4.5.4's P.type==Protocell case. It always
// burns the 16-advance mutation budget regardless of branch, to keep
// its PRNG stream length independent of which action executes.
func resolveProtocell(fab *buffers.Fabric, readV, writeV []uint32, intents []uint32, idx int, v layout.Voxel, params layout.SimParams, tick uint64, gridSize uint32, tempMod float32) {
	stream := rng.NewStream(rng.Seed(uint32(idx), uint32(tick), gridSize, rng.SaltResolve))
	for i := 0; i < 16; i++ {
		stream.Next()
	}

	if predateWinnerAt(fab, readV, intents, idx).Found {
		writeVoxel(fab, writeV, idx, layout.Voxel{Type: layout.Waste, SpeciesID: v.SpeciesID})
		return
	}

	action, dir, _ := layout.DecodeIntent(readIntent(fab, intents, idx))
	x, y, z := fab.Coords3D(idx)

	var workEnergy uint16
	switch action {
	case layout.Die:
		writeVoxel(fab, writeV, idx, layout.Voxel{Type: layout.Waste, SpeciesID: v.SpeciesID})
		return

	case layout.Predate:
		workEnergy = v.Energy
		if targetIdx, ok := neighborIndex(fab, x, y, z, dir); ok {
			if w := predateWinnerAt(fab, readV, intents, targetIdx); w.Found && w.Idx == idx {
				prey := readVoxel(fab, readV, targetIdx)
				gain := uint32(params.PredationEnergyFraction * float32(prey.Energy))
				workEnergy = layout.SaturatingAddU16(uint32(v.Energy)+gain, 0, uint16(params.MaxEnergy))
			}
		}

	case layout.Replicate:
		workEnergy = v.Energy
		if targetIdx, ok := neighborIndex(fab, x, y, z, dir); ok {
			if w := replicateMoveWinnerAt(fab, readV, intents, targetIdx); w.Found && w.Idx == idx && w.Action == layout.Replicate {
				workEnergy = uint16(uint32(v.Energy) * uint32(v.Genome.EnergySplitRatio()) / 255)
			}
		}

	case layout.Move:
		workEnergy = v.Energy
		if targetIdx, ok := neighborIndex(fab, x, y, z, dir); ok {
			if w := replicateMoveWinnerAt(fab, readV, intents, targetIdx); w.Found && w.Idx == idx && w.Action == layout.Move {
				writeVoxel(fab, writeV, idx, layout.Voxel{})
				return
			}
		}

	default: // Idle, NoAction
		workEnergy = v.Energy
	}

	gain := metabolismGain(fab, readV, params, idx, v.Genome)
	cost := metabolicCost(params, v.Genome, tempMod)
	newEnergy := saturatingEnergy(float32(workEnergy)+gain-cost, params.MaxEnergy)
	age := layout.SaturatingAddU16Age(v.Age)

	if newEnergy == 0 {
		writeVoxel(fab, writeV, idx, layout.Voxel{Type: layout.Waste, SpeciesID: v.SpeciesID})
		return
	}
	writeVoxel(fab, writeV, idx, layout.Voxel{
		Type:      layout.Protocell,
		Energy:    newEnergy,
		Age:       age,
		SpeciesID: v.SpeciesID,
		Genome:    v.Genome,
	})
}

// resolveNutrient implements §4.5.4's P.type==Nutrient case: depletion
// by adjacent protocell count, saturating at 0.
func resolveNutrient(fab *buffers.Fabric, readV, writeV []uint32, idx int, v layout.Voxel) {
	x, y, z := fab.Coords3D(idx)
	var adjacent uint32
	for _, dir := range faceDirections {
		nidx, ok := neighborIndex(fab, x, y, z, dir)
		if !ok {
			continue
		}
		if readVoxel(fab, readV, nidx).Type == layout.Protocell {
			adjacent++
		}
	}
	concentration := v.Extra[0]
	if concentration <= adjacent {
		writeVoxel(fab, writeV, idx, layout.Voxel{})
		return
	}
	writeVoxel(fab, writeV, idx, layout.Voxel{
		Type:  layout.Nutrient,
		Age:   layout.SaturatingAddU16Age(v.Age),
		Extra: [2]uint32{concentration - adjacent, v.Extra[1]},
	})
}

// resolveWaste implements §4.5.4's P.type==Waste case: decay into
// either Nutrient or Empty once age reaches waste_decay_ticks.
func resolveWaste(fab *buffers.Fabric, writeV []uint32, idx int, v layout.Voxel, params layout.SimParams, tick uint64, gridSize uint32) {
	age := layout.SaturatingAddU16Age(v.Age)
	if uint32(age) < uint32(params.WasteDecayTicks) {
		writeVoxel(fab, writeV, idx, layout.Voxel{Type: layout.Waste, Age: age, SpeciesID: v.SpeciesID, Extra: v.Extra})
		return
	}
	stream := rng.NewStream(rng.Seed(uint32(idx), uint32(tick), gridSize, rng.SaltResolve))
	if probabilityRoll(stream.Next()) < params.NutrientRecycleRate {
		writeVoxel(fab, writeV, idx, layout.Voxel{Type: layout.Nutrient, Extra: [2]uint32{255, 0}})
	} else {
		writeVoxel(fab, writeV, idx, layout.Voxel{})
	}
}

// metabolismGain scans EnergySource/Nutrient neighbors for the
// metabolism pass shared by the move-winner and stay-put paths (§4.5.4).
func metabolismGain(fab *buffers.Fabric, readV []uint32, params layout.SimParams, idx int, genome layout.Genome) float32 {
	x, y, z := fab.Coords3D(idx)
	var energySources, nutrients int
	for _, dir := range faceDirections {
		nidx, ok := neighborIndex(fab, x, y, z, dir)
		if !ok {
			continue
		}
		switch readVoxel(fab, readV, nidx).Type {
		case layout.EnergySource:
			energySources++
		case layout.Nutrient:
			nutrients++
		}
	}
	gain := float32(energySources) * float32(genome.PhotosyntheticRate()) * params.EnergyFromSource / 255.0
	gain += float32(nutrients) * float32(genome.MetabolicEfficiency()) * params.EnergyFromNutrient / 255.0
	return gain
}

func metabolicCost(params layout.SimParams, genome layout.Genome, tempMod float32) float32 {
	return params.MetabolicCostBase * (255.0 + float32(genome.MetabolicRate())) / 255.0 * tempMod
}

func saturatingEnergy(v float32, maxEnergy float32) uint16 {
	if v < 0 {
		return 0
	}
	if v > maxEnergy {
		return uint16(maxEnergy)
	}
	return uint16(v)
}

func minFloat(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
