package engine

import (
	"testing"

	"github.com/pthm-cable/protosoup/buffers"
	"github.com/pthm-cable/protosoup/layout"
	"github.com/pthm-cable/protosoup/presets"
)

func lowTierLimits() buffers.DeviceLimits {
	return buffers.DeviceLimits{Discrete: false}
}

func TestNewSelectsDenseLowAndTicks(t *testing.T) {
	params := layout.DefaultParams(0) // GridSize overwritten by New from the selected tier
	e, err := New(lowTierLimits(), params, 30, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	if e.Fab.Tier != buffers.TierDenseLow {
		t.Fatalf("expected dense-low tier, got %v", e.Fab.Tier)
	}

	cmds := presets.PetriDish(e.Fab.GridSize, 500)
	e.Tick(cmds)
	if e.TickCount() != 1 {
		t.Fatalf("expected tick count 1, got %d", e.TickCount())
	}

	for i := 0; i < 20; i++ {
		e.Tick(nil)
	}
	if e.TickCount() != 21 {
		t.Fatalf("expected tick count 21, got %d", e.TickCount())
	}

	if _, ok := e.TryTakeStats(); !ok {
		t.Fatal("expected a stats snapshot to be ready after several ticks")
	}
}

func TestSetParamClampsDiffusionRate(t *testing.T) {
	e, err := New(lowTierLimits(), layout.DefaultParams(0), 10, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	e.SetParam("diffusion_rate", 5.0)
	if got := e.Scheduler.Params.DiffusionRate; got != 0.25 {
		t.Fatalf("expected diffusion_rate clamped to 0.25, got %f", got)
	}

	e.SetParam("not_a_real_param", 1.0)
}

func TestRequestPickWithoutRequesterIsNoop(t *testing.T) {
	e, err := New(lowTierLimits(), layout.DefaultParams(0), 10, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	e.RequestPick(10, 10, 100, 100)
	if _, ok := e.TakePickResult(); ok {
		t.Fatal("expected no pick result without an installed PickRequester")
	}
}

type fixedPicker struct{ x, y, z int }

func (f fixedPicker) ScreenToVoxel(_, _, _, _ int) (int, int, int, bool) {
	return f.x, f.y, f.z, true
}

func TestRequestPickReturnsSnapshot(t *testing.T) {
	e, err := New(lowTierLimits(), layout.DefaultParams(0), 10, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	e.SetPickRequester(fixedPicker{x: 1, y: 1, z: 1})
	e.RequestPick(0, 0, 100, 100)

	snap, ok := e.TakePickResult()
	if !ok {
		t.Fatal("expected a pick result")
	}
	if snap.X != 1 || snap.Y != 1 || snap.Z != 1 {
		t.Fatalf("unexpected snapshot coordinate: %+v", snap)
	}

	if _, ok := e.TakePickResult(); ok {
		t.Fatal("expected TakePickResult to clear after being read")
	}
}
