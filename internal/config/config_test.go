package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/physanim/internal/dynamo"
	"github.com/san-kum/physanim/internal/experiment"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Kind != "pendulum" {
		t.Errorf("expected kind pendulum, got %s", cfg.Kind)
	}
	if cfg.FrameMs <= 0 {
		t.Error("frame should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := DefaultConfig()
	cfg.Kind = "gaslaws"
	cfg.Seed = 99
	cfg.Params["temperature"] = 450

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != "gaslaws" || got.Seed != 99 || got.Params["temperature"] != 450 {
		t.Errorf("unexpected round trip: %+v", got)
	}
}

func TestLoadKeepsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("kind: waves\nparams:\n  frequency: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != "waves" || got.Params["frequency"] != 2 {
		t.Errorf("unexpected config %+v", got)
	}
	if got.FrameMs != DefaultFrameMs || got.Duration != DefaultDuration {
		t.Errorf("absent fields should keep defaults: %+v", got)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExperimentConversion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Kind = "Fluid"
	ec, err := cfg.Experiment()
	if err != nil {
		t.Fatal(err)
	}
	if ec.Kind != dynamo.KindFluid || !ec.ValidateState {
		t.Errorf("unexpected experiment config %+v", ec)
	}

	cfg.Kind = "lorenz"
	if _, err := cfg.Experiment(); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestApplyAndClone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Apply(map[string]float64{"damping": 0.1})
	clone := cfg.Clone()
	clone.Apply(map[string]float64{"damping": 0.5})

	if cfg.Params["damping"] != 0.1 {
		t.Errorf("clone shares params with the original: %f", cfg.Params["damping"])
	}
	if clone.Params["damping"] != 0.5 {
		t.Errorf("later params should win, got %f", clone.Params["damping"])
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("pendulum", "small")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Params["amplitude"] != 10 {
		t.Errorf("expected amplitude 10, got %f", cfg.Params["amplitude"])
	}
	if cfg.FrameMs != DefaultFrameMs || cfg.Kind != "pendulum" {
		t.Errorf("preset should fill defaults: %+v", cfg)
	}

	cfg.Params["amplitude"] = 45
	if again := GetPreset("pendulum", "small"); again.Params["amplitude"] != 10 {
		t.Error("mutating a resolved preset changed the table")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	cfg := GetPreset("pendulum", "nonexistent")
	if cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}

	cfg = GetPreset("nonexistent", "small")
	if cfg != nil {
		t.Error("expected nil for nonexistent kind")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("gaslaws")
	want := []string{"boyle", "charles", "gay-lussac"}
	if len(presets) != len(want) {
		t.Fatalf("expected %v, got %v", want, presets)
	}
	for i := range want {
		if presets[i] != want[i] {
			t.Errorf("expected sorted %v, got %v", want, presets)
		}
	}

	presets = ListPresets("nonexistent")
	if presets != nil {
		t.Error("expected nil for nonexistent kind")
	}
}

func TestPresetsApplyToTheirScenes(t *testing.T) {
	for kind := range Presets {
		if _, err := dynamo.ParseKind(kind); err != nil {
			t.Errorf("preset table names unknown kind %q", kind)
			continue
		}
		for _, name := range ListPresets(kind) {
			ec, err := GetPreset(kind, name).Experiment()
			if err != nil {
				t.Fatalf("%s/%s: %v", kind, name, err)
			}
			if err := experiment.New(ec, nil).Setup(nil); err != nil {
				t.Errorf("%s/%s: %v", kind, name, err)
			}
		}
	}
}
