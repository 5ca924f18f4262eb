package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// TemperatureVariance returns the sample (n-1) variance of a temperature
// field snapshot: the per-tick global variance a diffusion-stability
// check compares from tick to tick (§8 scenario 6). gonum's
// stat package is the corpus's numerics dependency for exactly this
// kind of aggregate statistic, sparing a hand-rolled Welford pass.
func TemperatureVariance(field []float32) float64 {
	if len(field) == 0 {
		return 0
	}
	values := make([]float64, len(field))
	for i, v := range field {
		values[i] = float64(v)
	}
	return stat.Variance(values, nil)
}

// EnergyPercentiles reports the p10/p50/p90 percentiles of a protocell
// population's energy values, mirroring the teacher's
// telemetry.ComputeEnergyStats but backed by gonum/stat.Quantile instead
// of a hand-rolled linear-interpolation helper.
func EnergyPercentiles(energies []float64) (p10, p50, p90 float64) {
	if len(energies) == 0 {
		return 0, 0, 0
	}
	sorted := append([]float64(nil), energies...)
	sort.Float64s(sorted)
	return stat.Quantile(0.10, stat.Empirical, sorted, nil),
		stat.Quantile(0.50, stat.Empirical, sorted, nil),
		stat.Quantile(0.90, stat.Empirical, sorted, nil)
}
