package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.TickRate != 30 {
		t.Fatalf("expected default tick_rate 30, got %f", cfg.Engine.TickRate)
	}
	if cfg.Derived.SimParams.DiffusionRate != cfg.Sim.DiffusionRate {
		t.Fatalf("expected derived SimParams to carry sim.diffusion_rate through")
	}
}

func TestLoadOverrideFileMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	overrideYAML := []byte("sim:\n  diffusion_rate: 0.2\n")
	if err := os.WriteFile(path, overrideYAML, 0644); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sim.DiffusionRate != 0.2 {
		t.Fatalf("expected overridden diffusion_rate 0.2, got %f", cfg.Sim.DiffusionRate)
	}
	// Fields not present in the override file keep the embedded default.
	if cfg.Sim.MaxEnergy != 65535 {
		t.Fatalf("expected untouched max_energy default 65535, got %f", cfg.Sim.MaxEnergy)
	}
}

func TestSimParamsClampsDiffusionRateOutOfRange(t *testing.T) {
	s := SimConfig{DiffusionRate: 0.9}
	p := s.Params()
	if p.DiffusionRate != 0.25 {
		t.Fatalf("expected clamped diffusion_rate 0.25, got %f", p.DiffusionRate)
	}
}
