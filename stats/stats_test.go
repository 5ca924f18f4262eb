package stats

import "testing"

func TestWorkgroupAccumulatorBasics(t *testing.T) {
	var w WorkgroupAccumulator
	w.Add(5, 100)
	w.Add(5, 50)
	w.Add(7, 200)
	if w.Population != 3 {
		t.Errorf("population = %d, want 3", w.Population)
	}
	if w.TotalEnergy != 350 {
		t.Errorf("total energy = %d, want 350", w.TotalEnergy)
	}
	if w.MaxEnergy != 200 {
		t.Errorf("max energy = %d, want 200", w.MaxEnergy)
	}
}

func TestGlobalHistogramMergesSpeciesCounts(t *testing.T) {
	var w1, w2 WorkgroupAccumulator
	w1.Add(5, 10)
	w1.Add(5, 10)
	w2.Add(5, 10)
	w2.Add(9, 10)

	var g GlobalHistogram
	g.Merge(&w1)
	g.Merge(&w2)

	counts := map[uint16]uint32{}
	for _, sc := range g.Top() {
		counts[sc.SpeciesID] = sc.Count
	}
	if counts[5] != 3 {
		t.Errorf("species 5 count = %d, want 3", counts[5])
	}
	if counts[9] != 1 {
		t.Errorf("species 9 count = %d, want 1", counts[9])
	}
}

func TestGlobalHistogramEvictsLowestOnOverflow(t *testing.T) {
	var g GlobalHistogram
	for id := uint16(1); id <= globalSlots; id++ {
		g.addSpecies(id, 1)
	}
	// All 12 slots full at count 1; a high-count newcomer should evict one.
	g.addSpecies(9999, 100)
	found := false
	for _, sc := range g.Top() {
		if sc.SpeciesID == 9999 && sc.Count == 100 {
			found = true
		}
	}
	if !found {
		t.Fatal("expected high-count newcomer to evict a low-count slot")
	}
}

func TestReducerTickLifecycle(t *testing.T) {
	r := NewReducer()
	r.BeginTick()

	var w WorkgroupAccumulator
	w.Add(5, 100)
	w.Add(6, 50)
	r.MergeChunk(&w)

	if err := r.FinishTick(42); err != nil {
		t.Fatalf("FinishTick: %v", err)
	}

	got, ok := r.TryTake()
	if !ok {
		t.Fatal("expected a ready snapshot")
	}
	if got.Tick != 42 || got.Population != 2 || got.TotalEnergy != 150 {
		t.Fatalf("got %+v", got)
	}

	if _, ok := r.TryTake(); ok {
		t.Fatal("second TryTake before next FinishTick should return false")
	}
}

func TestEnergyPercentilesOrdered(t *testing.T) {
	p10, p50, p90 := EnergyPercentiles([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	if !(p10 <= p50 && p50 <= p90) {
		t.Fatalf("percentiles not ordered: p10=%v p50=%v p90=%v", p10, p50, p90)
	}
}

func TestTemperatureVarianceOfConstantFieldIsZero(t *testing.T) {
	field := make([]float32, 64)
	for i := range field {
		field[i] = 0.5
	}
	if v := TemperatureVariance(field); v != 0 {
		t.Errorf("variance of constant field = %v, want 0", v)
	}
}
