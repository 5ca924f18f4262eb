// Package presets builds the three canned command bursts named in §6
// (PetriDish, Gradient, Arena). Each returns a []layout.Command meant to
// be handed to engine.Tick/Scheduler.Step like any other player command
// batch — a preset is "loaded via a single command-burst" (§6), not a
// separate engine code path, in the same founder-entity seeding style
// used for initial population placement.
package presets

import "github.com/pthm-cable/protosoup/layout"

// PetriDish seeds a central protocell cluster surrounded by a ring of
// nutrient voxels, per §6. gridSize is the fabric's logical grid
// dimension (cubed); energy is the initial energy each seeded
// protocell starts with.
func PetriDish(gridSize int, energy uint32) []layout.Command {
	c := gridSize / 2
	commands := []layout.Command{
		{
			Type:   layout.CommandSeedProtocells,
			X:      uint32(c), Y: uint32(c), Z: uint32(c),
			Radius: 2,
			Param0: energy,
		},
	}
	ringRadius := gridSize / 4
	if ringRadius < 4 {
		ringRadius = 4
	}
	for _, offset := range ringOffsets() {
		x, y, z := c+offset.dx*ringRadius, c+offset.dy*ringRadius, c+offset.dz*ringRadius
		commands = append(commands, layout.Command{
			Type:   layout.CommandPlaceVoxel,
			X:      uint32(clampCoord(x, gridSize)),
			Y:      uint32(clampCoord(y, gridSize)),
			Z:      uint32(clampCoord(z, gridSize)),
			Radius: 1,
			Param0: uint32(layout.Nutrient),
		})
	}
	return commands
}

// Gradient places a heat source at one corner and a cold source at the
// diagonally opposite corner, establishing the two thermal poles named
// in §6.
func Gradient(gridSize int) []layout.Command {
	far := gridSize - 1
	return []layout.Command{
		{
			Type:   layout.CommandPlaceVoxel,
			X:      0, Y: 0, Z: 0,
			Radius: 2,
			Param0: uint32(layout.HeatSource),
		},
		{
			Type:   layout.CommandPlaceVoxel,
			X:      uint32(far), Y: uint32(far), Z: uint32(far),
			Radius: 2,
			Param0: uint32(layout.ColdSource),
		},
	}
}

// Arena builds a walled enclosure with corner energy sources (§6). The
// command wire format (§3) brushes a cube from a single center point —
// there is no thin-slab primitive — so a literal solid six-face
// enclosure would need one command per boundary voxel, far more than
// the layout.MaxCommandsPerTick budget for any grid larger than a
// handful of voxels. Arena instead samples the cube's surface down to
// the command budget and brushes each sampled point with a small Wall
// cube, trading a perfectly sealed boundary for one that reads as
// walled at a glance while staying inside the wire-stable command
// format's per-tick limit.
func Arena(gridSize int) []layout.Command {
	const wallBudget = layout.MaxCommandsPerTick - 4 // reserve 4 for corner sources
	surface := surfacePoints(gridSize)
	stride := len(surface) / wallBudget
	if stride < 1 {
		stride = 1
	}

	commands := make([]layout.Command, 0, wallBudget+4)
	for i := 0; i < len(surface) && len(commands) < wallBudget; i += stride {
		p := surface[i]
		commands = append(commands, layout.Command{
			Type:   layout.CommandPlaceVoxel,
			X:      uint32(p.x), Y: uint32(p.y), Z: uint32(p.z),
			Radius: 1,
			Param0: uint32(layout.Wall),
		})
	}

	far := gridSize - 1
	for _, corner := range [][3]int{{1, 1, 1}, {far - 1, 1, 1}, {1, far - 1, 1}, {far - 1, far - 1, 1}} {
		commands = append(commands, layout.Command{
			Type:   layout.CommandPlaceVoxel,
			X:      uint32(corner[0]), Y: uint32(corner[1]), Z: uint32(corner[2]),
			Radius: 0,
			Param0: uint32(layout.EnergySource),
		})
	}
	return commands
}

type axisOffset struct{ dx, dy, dz int }

// ringOffsets are the six face directions used to place PetriDish's
// surrounding nutrient ring.
func ringOffsets() []axisOffset {
	return []axisOffset{
		{1, 0, 0}, {-1, 0, 0},
		{0, 1, 0}, {0, -1, 0},
		{0, 0, 1}, {0, 0, -1},
	}
}

func clampCoord(v, gridSize int) int {
	if v < 0 {
		return 0
	}
	if v >= gridSize {
		return gridSize - 1
	}
	return v
}

type point struct{ x, y, z int }

// surfacePoints enumerates every voxel coordinate on the boundary of a
// gridSize^3 cube (any axis at 0 or gridSize-1).
func surfacePoints(gridSize int) []point {
	var out []point
	last := gridSize - 1
	for z := 0; z < gridSize; z++ {
		for y := 0; y < gridSize; y++ {
			for x := 0; x < gridSize; x++ {
				if x == 0 || x == last || y == 0 || y == last || z == 0 || z == last {
					out = append(out, point{x, y, z})
				}
			}
		}
	}
	return out
}
