// Package stats implements the stats-reduction and async-readback
// surface (§4.5.5/§4.6): a workgroup-local accumulator with a 16-slot
// open-addressed species histogram, merged into a 12-slot global
// histogram tolerant of hash collisions, surfaced to the host through a
// non-blocking Idle->Requested->Mapped->Read readback cycle, and
// optionally streamed to CSV the way the teacher's telemetry package
// streams WindowStats.
package stats

import "log/slog"

// SpeciesCount is one histogram entry: a species id and its observed
// population count.
type SpeciesCount struct {
	SpeciesID uint16
	Count     uint32
}

const localSlots = 16
const globalSlots = 12

// WorkgroupAccumulator is the local reduction unit: one instance per
// worker-pool chunk, standing in for a GPU workgroup's shared-memory
// accumulator (§4.5.5). Hash collisions within the 16-slot table are
// tolerated, same as the global histogram — the reduction reports
// approximate top species by count, which the UI doesn't need to be
// exact for.
type WorkgroupAccumulator struct {
	Population  uint32
	TotalEnergy uint64
	MaxEnergy   uint32
	slots       [localSlots]SpeciesCount
}

// Add folds one protocell's (species, energy) into the accumulator.
func (w *WorkgroupAccumulator) Add(speciesID uint16, energy uint16) {
	w.Population++
	w.TotalEnergy += uint64(energy)
	if uint32(energy) > w.MaxEnergy {
		w.MaxEnergy = uint32(energy)
	}
	w.addSpecies(speciesID)
}

func (w *WorkgroupAccumulator) addSpecies(id uint16) {
	h := int(id) % localSlots
	for i := 0; i < localSlots; i++ {
		slot := &w.slots[(h+i)%localSlots]
		if slot.Count == 0 || slot.SpeciesID == id {
			slot.SpeciesID = id
			slot.Count++
			return
		}
	}
	// Table full for this id's probe sequence; the collision is
	// tolerated per §4.5.5 and the observation is dropped.
}

// GlobalHistogram is the 12-slot merge target for every workgroup's
// local histogram (§4.5.5's "merges workgroup histograms into a
// 12-slot global histogram").
type GlobalHistogram struct {
	slots [globalSlots]SpeciesCount
}

// Merge folds a workgroup accumulator's local histogram into g.
func (g *GlobalHistogram) Merge(w *WorkgroupAccumulator) {
	for _, s := range w.slots {
		if s.Count == 0 {
			continue
		}
		g.addSpecies(s.SpeciesID, s.Count)
	}
}

func (g *GlobalHistogram) addSpecies(id uint16, count uint32) {
	h := int(id) % globalSlots
	for i := 0; i < globalSlots; i++ {
		idx := (h + i) % globalSlots
		if g.slots[idx].Count == 0 {
			g.slots[idx] = SpeciesCount{SpeciesID: id, Count: count}
			return
		}
		if g.slots[idx].SpeciesID == id {
			g.slots[idx].Count += count
			return
		}
	}
	// Full table: keep the top species by count approximately, evicting
	// the current minimum if the newcomer outranks it.
	minIdx := 0
	for i := 1; i < globalSlots; i++ {
		if g.slots[i].Count < g.slots[minIdx].Count {
			minIdx = i
		}
	}
	if count > g.slots[minIdx].Count {
		g.slots[minIdx] = SpeciesCount{SpeciesID: id, Count: count}
	}
}

// Top returns the non-empty histogram slots, in no particular order.
func (g *GlobalHistogram) Top() []SpeciesCount {
	out := make([]SpeciesCount, 0, globalSlots)
	for _, s := range g.slots {
		if s.Count > 0 {
			out = append(out, s)
		}
	}
	return out
}

// Reset clears the histogram for the next tick's reduction.
func (g *GlobalHistogram) Reset() {
	*g = GlobalHistogram{}
}

// GlobalStats is the snapshot surfaced to the host by TryTake (§6's
// try_take_stats), one tick's worth of population/energy/species
// aggregate.
type GlobalStats struct {
	Tick        uint64
	Population  uint32
	TotalEnergy uint64
	MaxEnergy   uint32
	TopSpecies  [globalSlots]SpeciesCount
}

// LogValue implements slog.LogValuer, following the teacher's
// WindowStats.LogValue structured-logging convention.
func (s GlobalStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("tick", s.Tick),
		slog.Uint64("population", uint64(s.Population)),
		slog.Uint64("total_energy", s.TotalEnergy),
		slog.Uint64("max_energy", uint64(s.MaxEnergy)),
		slog.Int("species_observed", len(nonZero(s.TopSpecies[:]))),
	)
}

func nonZero(sc []SpeciesCount) []SpeciesCount {
	out := make([]SpeciesCount, 0, len(sc))
	for _, s := range sc {
		if s.Count > 0 {
			out = append(out, s)
		}
	}
	return out
}
