// Package config provides configuration loading and access for the
// simulation engine: an embedded defaults.yaml merged with an optional
// user override file, a Load/Init/MustInit/Cfg() global-singleton
// shape generalized from per-archetype ECS tunables to a flat SimParams
// record plus the engine-level settings (capability hints, tick rate,
// telemetry sinks) that sit alongside it.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/protosoup/buffers"
	"github.com/pthm-cable/protosoup/layout"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Engine       EngineConfig       `yaml:"engine"`
	Capabilities CapabilitiesConfig `yaml:"capabilities"`
	Sim          SimConfig          `yaml:"sim"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
	Presets      PresetsConfig      `yaml:"presets"`

	// Derived values computed after loading.
	Derived DerivedConfig `yaml:"-"`
}

// EngineConfig holds host-shell-level settings that aren't part of the
// SimParams uniform block itself: tick pacing and an RNG seed field.
type EngineConfig struct {
	TickRate float64 `yaml:"tick_rate"` // target ticks/sec, clamped to [1,60] by scheduler.New
	Seed     int64   `yaml:"seed"`      // not read by the engine or the CLI harness
}

// CapabilitiesConfig mirrors the DeviceLimits value the host shell
// would normally query from the real GPU device (§4.3); this config
// layer is the stand-in source for it since the engine has no device of
// its own to query (§1).
type CapabilitiesConfig struct {
	Discrete    bool   `yaml:"discrete"`
	BudgetBytes uint64 `yaml:"budget_bytes"`
}

// Limits converts the configured capability hint into a
// buffers.DeviceLimits value.
func (c CapabilitiesConfig) Limits() buffers.DeviceLimits {
	return buffers.DeviceLimits{Discrete: c.Discrete, BudgetBytes: c.BudgetBytes}
}

// SimConfig mirrors the fields of layout.SimParams (§3) as a
// YAML-friendly record. GridSize/TickCount are excluded because both
// are set by the engine itself (from the selected tier and the running
// tick counter, respectively), never from config. The sparse-mode
// fields (SparseMode, BrickGridDim, MaxBricks) are not carried either
// and stay zero in Params().
type SimConfig struct {
	DT                      float32 `yaml:"dt"`
	NutrientSpawnRate       float32 `yaml:"nutrient_spawn_rate"`
	WasteDecayTicks         float32 `yaml:"waste_decay_ticks"`
	NutrientRecycleRate     float32 `yaml:"nutrient_recycle_rate"`
	MovementEnergyCost      float32 `yaml:"movement_energy_cost"`
	BaseAmbientTemp         float32 `yaml:"base_ambient_temp"`
	MetabolicCostBase       float32 `yaml:"metabolic_cost_base"`
	ReplicationEnergyMin    float32 `yaml:"replication_energy_min"`
	EnergyFromNutrient      float32 `yaml:"energy_from_nutrient"`
	EnergyFromSource        float32 `yaml:"energy_from_source"`
	DiffusionRate           float32 `yaml:"diffusion_rate"`
	TempSensitivity         float32 `yaml:"temp_sensitivity"`
	PredationEnergyFraction float32 `yaml:"predation_energy_fraction"`
	MaxEnergy               float32 `yaml:"max_energy"`
	OverlayMode             float32 `yaml:"overlay_mode"`
}

// Params builds the layout.SimParams uniform block this config
// describes. GridSize and TickCount are left zero; callers (engine.New,
// the scheduler) fill them in from runtime state.
func (s SimConfig) Params() layout.SimParams {
	p := layout.SimParams{
		DT:                      s.DT,
		NutrientSpawnRate:       s.NutrientSpawnRate,
		WasteDecayTicks:         s.WasteDecayTicks,
		NutrientRecycleRate:     s.NutrientRecycleRate,
		MovementEnergyCost:      s.MovementEnergyCost,
		BaseAmbientTemp:         s.BaseAmbientTemp,
		MetabolicCostBase:       s.MetabolicCostBase,
		ReplicationEnergyMin:    s.ReplicationEnergyMin,
		EnergyFromNutrient:      s.EnergyFromNutrient,
		EnergyFromSource:        s.EnergyFromSource,
		DiffusionRate:           s.DiffusionRate,
		TempSensitivity:         s.TempSensitivity,
		PredationEnergyFraction: s.PredationEnergyFraction,
		MaxEnergy:               s.MaxEnergy,
		OverlayMode:             s.OverlayMode,
	}
	p.Clamp()
	return p
}

// TelemetryConfig holds the ambient stats-export settings: an optional
// CSV sink and structured-log toggle.
type TelemetryConfig struct {
	CSVPath  string `yaml:"csv_path"`  // empty = no CSV sink
	LogStats bool   `yaml:"log_stats"` // not read by the engine or the CLI harness
}

// PresetsConfig names which preset command-burst (if any) the CLI
// harness loads at startup.
type PresetsConfig struct {
	Name       string `yaml:"name"` // "", "petri_dish", "gradient", or "arena"
	SeedEnergy uint32 `yaml:"seed_energy"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	SimParams layout.SimParams
	Limits    buffers.DeviceLimits
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded
// defaults if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	return cfg, nil
}

// computeDerived calculates values derived from the loaded config.
func (c *Config) computeDerived() {
	c.Derived.SimParams = c.Sim.Params()
	c.Derived.Limits = c.Capabilities.Limits()
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
