package scheduler

import (
	"log/slog"

	"github.com/pthm-cable/protosoup/buffers"
	"github.com/pthm-cable/protosoup/kernels"
	"github.com/pthm-cable/protosoup/layout"
	"github.com/pthm-cable/protosoup/stats"
)

// maxTicksPerFrame bounds the time accumulator's catch-up so a slow
// frame can never spiral into an ever-growing backlog of ticks (§4.4).
const maxTicksPerFrame = 3

// Scheduler drives the Fabric through Tick's ten steps (§4.4): upload,
// clear, five dispatches in strict order, parity flip, and an async
// stats kick-off. It owns the one worker pool every dispatch shares.
type Scheduler struct {
	Fab     *buffers.Fabric
	Params  layout.SimParams
	Reducer *stats.Reducer
	Pool    *Pool

	tickCount uint64
	accum     float64
	rate      float64 // ticks per second
	paused    bool

	log *slog.Logger
}

// New builds a scheduler over an already-allocated fabric, at the given
// target tick rate (clamped to [1, 60] per §6).
func New(fab *buffers.Fabric, params layout.SimParams, reducer *stats.Reducer, rate float64, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		Fab:     fab,
		Params:  params,
		Reducer: reducer,
		Pool:    NewPool(),
		rate:    clampRate(rate),
		log:     log,
	}
}

func clampRate(rate float64) float64 {
	if rate < 1 {
		return 1
	}
	if rate > 60 {
		return 60
	}
	return rate
}

// SetRate updates the target tick rate, clamped to [1, 60].
func (s *Scheduler) SetRate(rate float64) {
	s.rate = clampRate(rate)
}

// Pause stops Advance from running any ticks until Resume is called.
func (s *Scheduler) Pause() { s.paused = true }

// Resume un-pauses the scheduler.
func (s *Scheduler) Resume() { s.paused = false }

// Paused reports whether the scheduler is currently paused.
func (s *Scheduler) Paused() bool { return s.paused }

// Step runs exactly one tick regardless of pause state, for frame-by-
// frame debugging from a paused host shell.
func (s *Scheduler) Step(commands []layout.Command) {
	s.tick(commands)
}

// Advance accumulates dt seconds of simulation time and runs as many
// whole ticks as the target rate earned, capped at maxTicksPerFrame
// (§4.4's "time accumulator capped at 3 ticks per frame"). Commands are
// applied on the first tick run this call; later catch-up ticks in the
// same call run with no new commands.
func (s *Scheduler) Advance(dt float64, commands []layout.Command) {
	if s.paused {
		return
	}
	s.accum += dt * s.rate

	ran := 0
	for s.accum >= 1.0 && ran < maxTicksPerFrame {
		var tickCommands []layout.Command
		if ran == 0 {
			tickCommands = commands
		}
		s.tick(tickCommands)
		s.accum -= 1.0
		ran++
	}
	if ran == maxTicksPerFrame && s.accum >= 1.0 {
		s.log.Warn("scheduler dropped catch-up ticks past the per-frame cap", "dropped_accum", s.accum)
		s.accum = 0
	}
}

// tick runs the ten steps of §4.4 exactly once.
func (s *Scheduler) tick(commands []layout.Command) {
	fab := s.Fab
	params := s.Params
	params.TickCount = float32(s.tickCount)

	fab.Commands = append(fab.Commands[:0], layout.EncodeCommandBuffer(commands)...)
	fab.Params = append(fab.Params[:0], params.Serialize()...)

	for i := range fab.Intents {
		fab.Intents[i] = 0
	}

	kernels.DispatchApplyCommands(fab, s.tickCount, commands)
	kernels.DispatchTemperatureDiffusion(fab, params.DiffusionRate, s.Pool.Run)
	kernels.DispatchIntentDeclaration(fab, params, s.tickCount, s.Pool.Run)
	kernels.DispatchResolveExecute(fab, params, s.tickCount, s.Pool.Run)

	if s.Reducer != nil {
		kernels.DispatchStatsReduction(fab, s.Reducer, s.Pool.Run)
		if err := s.Reducer.FinishTick(s.tickCount); err != nil {
			s.log.Error("stats readback publish failed", "tick", s.tickCount, "error", err)
		}
	}

	fab.Flip()
	s.tickCount++
}

// TickCount returns the number of ticks run so far.
func (s *Scheduler) TickCount() uint64 { return s.tickCount }

// Close stops the worker pool. Call once the scheduler is no longer in use.
func (s *Scheduler) Close() {
	s.Pool.Stop()
}
