package stats

import (
	"sync"

	"github.com/pthm-cable/protosoup/buffers"
)

// Reducer drives one simulation's stats-reduction and async-readback
// cycle. Chunks produced by the worker pool during stats_reduction call
// MergeChunk concurrently; FinishTick publishes the merged result into
// the readback ring (§4.6) for a later, non-blocking TryTake.
type Reducer struct {
	mu  sync.Mutex
	acc GlobalHistogram
	pop uint32
	tot uint64
	max uint32

	slots   *buffers.StatsSlots
	results [2]GlobalStats

	csv *CSVWriter
}

// NewReducer builds a reducer with its own two-slot readback ring.
func NewReducer() *Reducer {
	return &Reducer{slots: buffers.NewStatsSlots(1)}
}

// WithCSV attaches an optional CSV sink; every FinishTick after this
// call also appends a row. Passing nil disables the sink again.
func (r *Reducer) WithCSV(w *CSVWriter) *Reducer {
	r.csv = w
	return r
}

// BeginTick resets the in-flight accumulator before a new
// stats_reduction dispatch.
func (r *Reducer) BeginTick() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.acc.Reset()
	r.pop, r.tot, r.max = 0, 0, 0
}

// MergeChunk folds one worker-pool chunk's local accumulator into the
// tick's running global histogram. Safe to call concurrently from
// multiple chunk workers.
func (r *Reducer) MergeChunk(w *WorkgroupAccumulator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.acc.Merge(w)
	r.pop += w.Population
	r.tot += w.TotalEnergy
	if w.MaxEnergy > r.max {
		r.max = w.MaxEnergy
	}
}

// FinishTick publishes the tick's merged stats into the readback ring
// and, if a CSV sink is attached, appends a row (§2.6: CSV export is
// ambient telemetry, not persisted simulation state).
func (r *Reducer) FinishTick(tick uint64) error {
	r.mu.Lock()
	result := GlobalStats{
		Tick:        tick,
		Population:  r.pop,
		TotalEnergy: r.tot,
		MaxEnergy:   r.max,
	}
	copy(result.TopSpecies[:], r.acc.Top())
	slot := r.slots.WriteSlot()
	r.results[slot] = result
	r.mu.Unlock()

	r.slots.PublishAndSwap()

	if r.csv != nil {
		return r.csv.WriteRow(result)
	}
	return nil
}

// TryTake returns a published stats snapshot that has not been taken
// yet, without blocking, and false if none is ready (§6's
// try_take_stats / §9's Idle->Requested->Mapped->Read state machine).
// When both ring slots hold untaken snapshots it returns slot 0's,
// which can be one tick older than slot 1's.
func (r *Reducer) TryTake() (GlobalStats, bool) {
	slot := r.slots.TryMap()
	if slot < 0 {
		return GlobalStats{}, false
	}
	r.mu.Lock()
	result := r.results[slot]
	r.mu.Unlock()
	r.slots.Release(slot)
	return result, true
}
