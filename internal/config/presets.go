package config

import (
	"sort"

	"github.com/san-kum/physanim/internal/collision"
	"github.com/san-kum/physanim/internal/physics"
)

// Presets holds named parameter sets per kind. Fields left zero fall back
// to DefaultConfig when the preset is resolved.
var Presets = map[string]map[string]*Config{
	"pendulum": {
		"small": {
			Duration: 20,
			Params:   map[string]float64{"mode": physics.PendulumSimple, "amplitude": 10, "damping": 0},
		},
		"large": {
			Duration: 20,
			Params:   map[string]float64{"mode": physics.PendulumSimple, "amplitude": 150, "damping": 0},
		},
		"chaos": {
			Duration: 60,
			Params:   map[string]float64{"mode": physics.PendulumDouble, "amplitude": 170},
		},
	},
	"orbits": {
		"solar": {
			Duration: 60,
			Params:   map[string]float64{"planets": 4, "velocity_factor": 1},
		},
		"eccentric": {
			Duration: 60,
			Params:   map[string]float64{"planets": 2, "velocity_factor": 0.7},
		},
	},
	"collisions": {
		"billiards": {
			Params: map[string]float64{"count": 16, "mode": float64(collision.Elastic)},
		},
		"clay": {
			Params: map[string]float64{"count": 30, "mode": float64(collision.Inelastic), "gravity": 200},
		},
		"mixed": {
			Params: map[string]float64{"count": 40, "mode": float64(collision.Mixed)},
		},
	},
	"friction": {
		"ice": {
			Params: map[string]float64{"angle": 15, "mu_static": 0.1, "mu_kinetic": 0.03},
		},
		"rubber": {
			Params: map[string]float64{"angle": 40, "mu_static": 1, "mu_kinetic": 0.8},
		},
	},
	"electric": {
		"dense": {
			Params: map[string]float64{"tracers": 200, "field_lines": 1},
		},
	},
	"magnetic": {
		"strong": {
			Params: map[string]float64{"field": 3, "particles": 10},
		},
	},
	"fluid": {
		"laminar": {
			Params: map[string]float64{"velocity": 0.02, "viscosity": 0.005},
		},
		"turbulent": {
			Params: map[string]float64{"velocity": 1.5, "viscosity": 0.001},
		},
	},
	"brownian": {
		"hot": {
			Duration: 30,
			Params:   map[string]float64{"molecules": 100, "temperature": 4},
		},
	},
	"diffusion": {
		"separated": {
			Params: map[string]float64{"partition": 1},
		},
		"fast": {
			Params: map[string]float64{"partition": 0, "coefficient": 1200},
		},
	},
	"gaslaws": {
		"boyle": {
			Params: map[string]float64{"law": float64(physics.Boyle)},
		},
		"charles": {
			Params: map[string]float64{"law": float64(physics.Charles), "temperature": 600},
		},
		"gay-lussac": {
			Params: map[string]float64{"law": float64(physics.GayLussac), "temperature": 600},
		},
	},
	"waves": {
		"sound": {
			Params: map[string]float64{"mode": float64(physics.WaveSound), "frequency": 2},
		},
		"packet": {
			Params: map[string]float64{"mode": float64(physics.WavePacket)},
		},
		"plucked": {
			Params: map[string]float64{"mode": float64(physics.WaveString), "damping": 0.02},
		},
		"driven": {
			Params: map[string]float64{"mode": float64(physics.WaveString), "driven": 1, "frequency": 1.5},
		},
	},
}

// GetPreset returns a full config for kind with the preset layered over the
// defaults, or nil when either name is unknown.
func GetPreset(kind, preset string) *Config {
	kindPresets, ok := Presets[kind]
	if !ok {
		return nil
	}
	p, ok := kindPresets[preset]
	if !ok {
		return nil
	}

	cfg := DefaultConfig()
	cfg.Kind = kind
	if p.FrameMs > 0 {
		cfg.FrameMs = p.FrameMs
	}
	if p.Duration > 0 {
		cfg.Duration = p.Duration
	}
	if p.Speed > 0 {
		cfg.Speed = p.Speed
	}
	cfg.Apply(p.Params)
	return cfg
}

func ListPresets(kind string) []string {
	kindPresets, ok := Presets[kind]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(kindPresets))
	for name := range kindPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
