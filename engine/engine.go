// Package engine wires layout, rng, buffers, scheduler, kernels, and
// stats into the value type §9 describes: "no shared-state globals...
// the engine is a value carrying all buffers, pipelines, and the parity
// flag." It implements §6's host-facing API (New, Tick,
// current_read_voxels/current_read_temperatures, try_take_stats,
// set_param, request_pick/take_pick_result) and is the one type a host
// shell instantiates and threads through its frame loop.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/protosoup/buffers"
	"github.com/pthm-cable/protosoup/layout"
	"github.com/pthm-cable/protosoup/render"
	"github.com/pthm-cable/protosoup/scheduler"
	"github.com/pthm-cable/protosoup/stats"
)

// Engine is one simulation instance: a Buffer Fabric, the tick
// scheduler driving it, and the stats reducer it feeds. One struct
// owning world state, a constructor that allocates it, and an
// Update/simulationStep split, generalized here from an ECS world to
// the packed-voxel value model.
type Engine struct {
	Fab       *buffers.Fabric
	Scheduler *scheduler.Scheduler
	Reducer   *stats.Reducer

	sink   render.Sink
	picker render.PickRequester

	pickResult VoxelSnapshot
	pickReady  bool

	log *slog.Logger
}

// VoxelSnapshot is the result of a resolved pick request (§6's
// take_pick_result -> Option<VoxelSnapshot>): the world coordinate the
// renderer's camera ray resolved to, and the voxel currently there.
type VoxelSnapshot struct {
	X, Y, Z int
	Voxel   layout.Voxel
}

// New allocates a Fabric at the best capability tier limits supports,
// stepping down the tier ladder on allocation failure (§7b), and
// builds the stats reducer and tick scheduler over it. Allocation or
// pipeline-compile failure here is the only user-visible error path
// this engine ever produces (§7a/§7c) — every other error kind named in
// §7 either doesn't apply to a GPU-less host or is handled by silent
// clamping, never a returned error.
func New(limits buffers.DeviceLimits, params layout.SimParams, tickRate float64, log *slog.Logger) (*Engine, error) {
	if log == nil {
		log = slog.Default()
	}
	fab, err := buffers.StartTiered(limits)
	if err != nil {
		return nil, fmt.Errorf("engine: unsupported platform: %w", err)
	}
	if selected := buffers.SelectTier(limits); fab.Tier != selected {
		log.Warn("engine: fell back to a lower capability tier", "selected", selected.String(), "tier", fab.Tier.String())
	}
	params.GridSize = float32(fab.GridSize)
	params.Clamp()

	reducer := stats.NewReducer()
	sched := scheduler.New(fab, params, reducer, tickRate, log)

	log.Info("engine initialized", "tier", fab.Tier.String(), "grid_size", fab.GridSize)
	return &Engine{
		Fab:       fab,
		Scheduler: sched,
		Reducer:   reducer,
		sink:      render.NullSink{},
		log:       log,
	}, nil
}

// SetRenderSink installs the external renderer's buffer consumer (§1),
// replacing the default no-op sink. Passing nil reverts to NullSink.
func (e *Engine) SetRenderSink(s render.Sink) {
	if s == nil {
		s = render.NullSink{}
	}
	e.sink = s
}

// SetPickRequester installs the external renderer's screen-to-voxel
// resolver, used by RequestPick (§1/§6).
func (e *Engine) SetPickRequester(p render.PickRequester) {
	e.picker = p
}

// Tick runs exactly one tick (§4.4's five dispatches, parity flip, and
// async stats kick-off via the scheduler), applying up to
// layout.MaxCommandsPerTick player commands, then republishes the new
// read-side buffers to the render sink.
func (e *Engine) Tick(commands []layout.Command) {
	e.Scheduler.Step(commands)
	e.publish()
}

// Advance runs as many whole ticks as dt seconds earns at the
// scheduler's target rate, capped per §4.4's accumulator, then
// republishes to the render sink. This is the call a host frame loop
// makes once per frame at its one suspension point (§5).
func (e *Engine) Advance(dt float64, commands []layout.Command) {
	e.Scheduler.Advance(dt, commands)
	e.publish()
}

func (e *Engine) publish() {
	e.sink.Publish(e.Fab.CurrentReadVoxels(), e.Fab.CurrentReadTemperatures(), e.Fab.GridSize)
}

// CurrentReadVoxels returns the voxel buffer the renderer should bind
// this frame (§4.3/§6).
func (e *Engine) CurrentReadVoxels() []uint32 { return e.Fab.CurrentReadVoxels() }

// CurrentReadTemperatures returns the temperature buffer the renderer
// should bind this frame (§4.3/§6).
func (e *Engine) CurrentReadTemperatures() []float32 { return e.Fab.CurrentReadTemperatures() }

// TryTakeStats returns a published stats snapshot that has not been
// taken yet, without blocking, and false if none is ready (§6's
// try_take_stats). See stats.Reducer.TryTake for which snapshot that is.
func (e *Engine) TryTakeStats() (stats.GlobalStats, bool) {
	return e.Reducer.TryTake()
}

// RequestPick asks the installed PickRequester to resolve a screen
// coordinate into a world voxel coordinate, then snapshots the voxel
// there for a later TakePickResult (§6). A no-op, clearing any pending
// result, if no PickRequester is installed or the resolved coordinate
// falls outside the grid.
func (e *Engine) RequestPick(screenX, screenY, screenW, screenH int) {
	e.pickReady = false
	if e.picker == nil {
		return
	}
	x, y, z, ok := e.picker.ScreenToVoxel(screenX, screenY, screenW, screenH)
	if !ok || !e.Fab.InBounds(x, y, z) {
		return
	}
	idx := e.Fab.Index3D(x, y, z)
	var v layout.Voxel
	if slot, ok := e.Fab.ReadSlot(idx); ok {
		v = layout.UnpackVoxel(buffers.VoxelWords(e.Fab.CurrentReadVoxels(), slot))
	}
	e.pickResult = VoxelSnapshot{X: x, Y: y, Z: z, Voxel: v}
	e.pickReady = true
}

// TakePickResult returns the most recently resolved pick and clears it,
// or false if none is pending (§6).
func (e *Engine) TakePickResult() (VoxelSnapshot, bool) {
	if !e.pickReady {
		return VoxelSnapshot{}, false
	}
	e.pickReady = false
	return e.pickResult, true
}

// SetParam updates one named SimParams field, re-clamping to its
// authoring-time bounds afterward (§6: "every field of SimParams is a
// live tunable"; §7: "parameter updates out of range are clamped
// silently"). An unknown name is a no-op and logged, rather than an
// error — per §7d nothing at runtime returns an error in this engine.
func (e *Engine) SetParam(name string, value float32) {
	p := &e.Scheduler.Params
	setter, ok := paramSetters[name]
	if !ok {
		e.log.Warn("engine: unknown param name, ignored", "name", name)
		return
	}
	setter(p, value)
	p.Clamp()
}

var paramSetters = map[string]func(*layout.SimParams, float32){
	"dt":                        func(p *layout.SimParams, v float32) { p.DT = v },
	"nutrient_spawn_rate":       func(p *layout.SimParams, v float32) { p.NutrientSpawnRate = v },
	"waste_decay_ticks":         func(p *layout.SimParams, v float32) { p.WasteDecayTicks = v },
	"nutrient_recycle_rate":     func(p *layout.SimParams, v float32) { p.NutrientRecycleRate = v },
	"movement_energy_cost":      func(p *layout.SimParams, v float32) { p.MovementEnergyCost = v },
	"base_ambient_temp":         func(p *layout.SimParams, v float32) { p.BaseAmbientTemp = v },
	"metabolic_cost_base":       func(p *layout.SimParams, v float32) { p.MetabolicCostBase = v },
	"replication_energy_min":    func(p *layout.SimParams, v float32) { p.ReplicationEnergyMin = v },
	"energy_from_nutrient":      func(p *layout.SimParams, v float32) { p.EnergyFromNutrient = v },
	"energy_from_source":        func(p *layout.SimParams, v float32) { p.EnergyFromSource = v },
	"diffusion_rate":            func(p *layout.SimParams, v float32) { p.DiffusionRate = v },
	"temp_sensitivity":          func(p *layout.SimParams, v float32) { p.TempSensitivity = v },
	"predation_energy_fraction": func(p *layout.SimParams, v float32) { p.PredationEnergyFraction = v },
	"max_energy":                func(p *layout.SimParams, v float32) { p.MaxEnergy = v },
	"overlay_mode":              func(p *layout.SimParams, v float32) { p.OverlayMode = v },
}

// TickCount returns the number of ticks run so far.
func (e *Engine) TickCount() uint64 { return e.Scheduler.TickCount() }

// Close releases the scheduler's worker pool. Call once the engine is
// no longer in use.
func (e *Engine) Close() {
	e.Scheduler.Close()
}
