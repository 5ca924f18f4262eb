package kernels

import (
	"github.com/pthm-cable/protosoup/buffers"
	"github.com/pthm-cable/protosoup/layout"
	"github.com/pthm-cable/protosoup/rng"
)

// DispatchApplyCommands processes up to layout.MaxCommandsPerTick
// commands sequentially against the READ voxel buffer, in place
// (§4.4/§4.5.1). Commands are applied to the read buffer rather than
// the write buffer because no kernel in the tick has read it yet — see
// §4.4's rationale note.
func DispatchApplyCommands(fab *buffers.Fabric, tick uint64, commands []layout.Command) {
	if len(commands) > layout.MaxCommandsPerTick {
		commands = commands[:layout.MaxCommandsPerTick]
	}
	buf := fab.CurrentReadVoxels()
	gridSize := uint32(fab.GridSize)

	for _, cmd := range commands {
		cx, cy, cz := int(cmd.X), int(cmd.Y), int(cmd.Z)
		radius := int(cmd.Radius)

		switch cmd.Type {
		case layout.CommandPlaceVoxel:
			t := layout.VoxelType(cmd.Param0)
			for _, idx := range brushIndices(fab, cx, cy, cz, radius) {
				writeVoxel(fab, buf, idx, defaultVoxelForType(t))
			}

		case layout.CommandRemoveVoxel:
			for _, idx := range brushIndices(fab, cx, cy, cz, radius) {
				writeVoxel(fab, buf, idx, layout.Voxel{})
			}

		case layout.CommandSeedProtocells:
			energy := uint16(cmd.Param0)
			for _, idx := range brushIndices(fab, cx, cy, cz, radius) {
				if readVoxel(fab, buf, idx).Type != layout.Empty {
					continue
				}
				genome := randomGenome(uint32(idx), uint32(tick), gridSize)
				writeVoxel(fab, buf, idx, layout.Voxel{
					Type:      layout.Protocell,
					Energy:    energy,
					SpeciesID: genome.SpeciesID(),
					Genome:    genome,
				})
			}

		case layout.CommandApplyToxin:
			threshold := uint8(cmd.Param0)
			for _, idx := range brushIndices(fab, cx, cy, cz, radius) {
				v := readVoxel(fab, buf, idx)
				if v.Type != layout.Protocell {
					continue
				}
				if v.Genome.ToxinResistance() < threshold {
					writeVoxel(fab, buf, idx, layout.Voxel{Type: layout.Waste, SpeciesID: v.SpeciesID})
				}
			}

		default:
			// Unknown command types are no-ops (§4.5.1).
		}
	}
}

// defaultVoxelForType builds the type-appropriate initial voxel state
// for PlaceVoxel. Nutrient voxels start at full concentration in
// Extra[0]; every other type, sources included, starts with zero extra
// state.
func defaultVoxelForType(t layout.VoxelType) layout.Voxel {
	switch t {
	case layout.Nutrient:
		return layout.Voxel{Type: t, Extra: [2]uint32{255, 0}}
	default:
		return layout.Voxel{Type: t}
	}
}

// randomGenome draws 16 bytes from a PRNG stream seeded for this voxel
// under the commands dispatch salt, per §4.5.1's SeedProtocells effect.
func randomGenome(voxelIndex, tickCount, gridSize uint32) layout.Genome {
	stream := rng.NewStream(rng.Seed(voxelIndex, tickCount, gridSize, rng.SaltCommands))
	var g layout.Genome
	for i := range g.Bytes {
		g.Bytes[i] = uint8(stream.Next() & 0xFF)
	}
	return g
}
