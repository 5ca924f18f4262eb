package layout

import (
	"encoding/binary"
	"math"
)

// SimParams is the flat tunable record delivered to every kernel
// dispatch as an aligned uniform block (§3). Every field is a live
// tunable: changes take effect at the next tick (§6).
type SimParams struct {
	GridSize                float32
	TickCount               float32
	DT                      float32
	NutrientSpawnRate       float32
	WasteDecayTicks         float32
	NutrientRecycleRate     float32
	MovementEnergyCost      float32
	BaseAmbientTemp         float32
	MetabolicCostBase       float32
	ReplicationEnergyMin    float32
	EnergyFromNutrient      float32
	EnergyFromSource        float32
	DiffusionRate           float32
	TempSensitivity         float32
	PredationEnergyFraction float32
	MaxEnergy               float32
	OverlayMode             float32
	SparseMode              float32
	BrickGridDim            float32
	MaxBricks               float32
}

// NumParamFields is the number of f32 fields serialized by Serialize.
const NumParamFields = 20

// DefaultParams returns a SimParams populated with stable defaults,
// matching the constraints this package enforces at authoring time
// (diffusion rate clamped to [0, 0.25], rates clamped to [0, 1]).
func DefaultParams(gridSize int) SimParams {
	return SimParams{
		GridSize:                float32(gridSize),
		TickCount:               0,
		DT:                      1.0,
		NutrientSpawnRate:       0.01,
		WasteDecayTicks:         60,
		NutrientRecycleRate:     0.5,
		MovementEnergyCost:      1,
		BaseAmbientTemp:         0.5,
		MetabolicCostBase:       1,
		ReplicationEnergyMin:    50,
		EnergyFromNutrient:      20,
		EnergyFromSource:        10,
		DiffusionRate:           0.15,
		TempSensitivity:         0.5,
		PredationEnergyFraction: 0.5,
		MaxEnergy:               65535,
		OverlayMode:             0,
		SparseMode:              0,
		BrickGridDim:            0,
		MaxBricks:               0,
	}
}

// Clamp enforces the authoring-time bounds named in §3/§4.5.2/§7: the
// diffusion rate stays within [0, 0.25] to remain stable on a 6-neighbor
// stencil, and the [0,1]-ranged rates are clamped silently — clamping is
// a correctness mechanism here, not an error.
func (p *SimParams) Clamp() {
	p.DiffusionRate = clamp01Range(p.DiffusionRate, 0, 0.25)
	p.NutrientSpawnRate = clamp01Range(p.NutrientSpawnRate, 0, 1)
	p.NutrientRecycleRate = clamp01Range(p.NutrientRecycleRate, 0, 1)
	p.PredationEnergyFraction = clamp01Range(p.PredationEnergyFraction, 0, 1)
	if p.TempSensitivity < 0 {
		p.TempSensitivity = 0
	}
}

func clamp01Range(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Serialize produces the byte encoding of p for upload to the params
// uniform buffer. It is pure: repeated calls on the same value produce
// identical bytes (§8's serialization law).
func (p SimParams) Serialize() []byte {
	fields := p.fields()
	buf := make([]byte, len(fields)*4)
	for i, f := range fields {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(f))
	}
	return buf
}

// DeserializeParams parses the byte encoding produced by Serialize.
func DeserializeParams(buf []byte) SimParams {
	var p SimParams
	fields := make([]float32, NumParamFields)
	n := len(buf) / 4
	if n > NumParamFields {
		n = NumParamFields
	}
	for i := 0; i < n; i++ {
		fields[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4 : i*4+4]))
	}
	p.setFields(fields)
	return p
}

func (p SimParams) fields() []float32 {
	return []float32{
		p.GridSize, p.TickCount, p.DT, p.NutrientSpawnRate,
		p.WasteDecayTicks, p.NutrientRecycleRate, p.MovementEnergyCost, p.BaseAmbientTemp,
		p.MetabolicCostBase, p.ReplicationEnergyMin, p.EnergyFromNutrient, p.EnergyFromSource,
		p.DiffusionRate, p.TempSensitivity, p.PredationEnergyFraction, p.MaxEnergy,
		p.OverlayMode, p.SparseMode, p.BrickGridDim, p.MaxBricks,
	}
}

func (p *SimParams) setFields(f []float32) {
	get := func(i int) float32 {
		if i < len(f) {
			return f[i]
		}
		return 0
	}
	p.GridSize = get(0)
	p.TickCount = get(1)
	p.DT = get(2)
	p.NutrientSpawnRate = get(3)
	p.WasteDecayTicks = get(4)
	p.NutrientRecycleRate = get(5)
	p.MovementEnergyCost = get(6)
	p.BaseAmbientTemp = get(7)
	p.MetabolicCostBase = get(8)
	p.ReplicationEnergyMin = get(9)
	p.EnergyFromNutrient = get(10)
	p.EnergyFromSource = get(11)
	p.DiffusionRate = get(12)
	p.TempSensitivity = get(13)
	p.PredationEnergyFraction = get(14)
	p.MaxEnergy = get(15)
	p.OverlayMode = get(16)
	p.SparseMode = get(17)
	p.BrickGridDim = get(18)
	p.MaxBricks = get(19)
}
