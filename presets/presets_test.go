package presets

import (
	"testing"

	"github.com/pthm-cable/protosoup/layout"
)

func TestPetriDishWithinCommandBudget(t *testing.T) {
	cmds := PetriDish(32, 500)
	if len(cmds) == 0 {
		t.Fatal("expected at least one command")
	}
	if len(cmds) > layout.MaxCommandsPerTick {
		t.Fatalf("PetriDish produced %d commands, exceeds budget %d", len(cmds), layout.MaxCommandsPerTick)
	}
	if cmds[0].Type != layout.CommandSeedProtocells {
		t.Fatalf("expected first command to seed protocells, got %v", cmds[0].Type)
	}
}

func TestGradientPlacesOpposingPoles(t *testing.T) {
	cmds := Gradient(16)
	if len(cmds) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(cmds))
	}
	if layout.VoxelType(cmds[0].Param0) != layout.HeatSource {
		t.Fatalf("expected heat source first, got %v", cmds[0].Param0)
	}
	if layout.VoxelType(cmds[1].Param0) != layout.ColdSource {
		t.Fatalf("expected cold source second, got %v", cmds[1].Param0)
	}
	if cmds[0].X == cmds[1].X && cmds[0].Y == cmds[1].Y && cmds[0].Z == cmds[1].Z {
		t.Fatal("expected opposing corners, got the same coordinate")
	}
}

func TestArenaWithinCommandBudget(t *testing.T) {
	for _, gridSize := range []int{8, 32, 64, 128} {
		cmds := Arena(gridSize)
		if len(cmds) > layout.MaxCommandsPerTick {
			t.Fatalf("grid %d: Arena produced %d commands, exceeds budget %d", gridSize, len(cmds), layout.MaxCommandsPerTick)
		}
		if len(cmds) == 0 {
			t.Fatalf("grid %d: expected at least one command", gridSize)
		}
		sourceCount := 0
		for _, c := range cmds {
			if layout.VoxelType(c.Param0) == layout.EnergySource {
				sourceCount++
			}
		}
		if sourceCount != 4 {
			t.Fatalf("grid %d: expected 4 corner energy sources, got %d", gridSize, sourceCount)
		}
	}
}
