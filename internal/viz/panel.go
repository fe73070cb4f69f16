package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/harmonica"

	"github.com/san-kum/physanim/internal/dynamo"
	"github.com/san-kum/physanim/internal/physics"
)

const (
	missingValue = "--"
	gaugeWidth   = 12
)

// Element binds one stats key to a labelled display line. Enum, when set,
// names discrete values instead of formatting them.
type Element struct {
	Key    string
	Label  string
	Format string
	Enum   func(float64) string
}

func (e Element) format(stats dynamo.Stats) string {
	v, ok := stats[e.Key]
	if !ok || math.IsNaN(v) {
		return missingValue
	}
	if e.Enum != nil {
		return e.Enum(v)
	}
	f := e.Format
	if f == "" {
		f = "%.3g"
	}
	return fmt.Sprintf(f, v)
}

var regimeNames = map[int]string{
	physics.RegimeLaminar:      "laminar",
	physics.RegimeTransitional: "transitional",
	physics.RegimeTurbulent:    "turbulent",
}

func regimeName(v float64) string { return regimeNames[int(v)] }
func gasLawName(v float64) string { return physics.GasLaw(v).String() }
func waveName(v float64) string   { return physics.WaveMode(v).String() }

func yesNo(v float64) string {
	if v >= 0.5 {
		return "yes"
	}
	return "no"
}

// DefaultElements lists what the live view shows for each kind.
func DefaultElements(k dynamo.Kind) []Element {
	switch k {
	case dynamo.KindPendulum:
		return []Element{
			{Key: "angle", Label: "Angle", Format: "%.1f°"},
			{Key: "angular_velocity", Label: "ω", Format: "%.2f rad/s"},
			{Key: "period", Label: "Period", Format: "%.2f s"},
			{Key: "kinetic_energy", Label: "Kinetic", Format: "%.3f J"},
			{Key: "potential_energy", Label: "Potential", Format: "%.3f J"},
			{Key: "total_energy", Label: "Total", Format: "%.3f J"},
		}
	case dynamo.KindOrbits:
		return []Element{
			{Key: "planets", Label: "Planets", Format: "%.0f"},
			{Key: "distance", Label: "Distance", Format: "%.1f px"},
			{Key: "speed", Label: "Speed", Format: "%.1f px/s"},
			{Key: "period", Label: "Period", Format: "%.2f s"},
			{Key: "total_energy", Label: "Energy", Format: "%.4g"},
		}
	case dynamo.KindCollisions:
		return []Element{
			{Key: "bodies", Label: "Bodies", Format: "%.0f"},
			{Key: "momentum_x", Label: "px", Format: "%.1f"},
			{Key: "momentum_y", Label: "py", Format: "%.1f"},
			{Key: "kinetic_energy", Label: "Kinetic", Format: "%.4g"},
			{Key: "collisions", Label: "Collisions", Format: "%.0f"},
		}
	case dynamo.KindFriction:
		return []Element{
			{Key: "normal_force", Label: "Normal", Format: "%.2f N"},
			{Key: "friction_force", Label: "Friction", Format: "%.2f N"},
			{Key: "acceleration", Label: "Accel", Format: "%.2f m/s²"},
			{Key: "velocity", Label: "Velocity", Format: "%.2f m/s"},
			{Key: "sliding", Label: "Sliding", Enum: yesNo},
			{Key: "critical_angle", Label: "Critical", Format: "%.1f°"},
		}
	case dynamo.KindElectric:
		return []Element{
			{Key: "charges", Label: "Charges", Format: "%.0f"},
			{Key: "net_charge", Label: "Net", Format: "%+.1f"},
			{Key: "field_center", Label: "|E| centre", Format: "%.4g"},
			{Key: "potential_center", Label: "V centre", Format: "%.4g"},
		}
	case dynamo.KindMagnetic:
		return []Element{
			{Key: "field", Label: "Bz", Format: "%.2f"},
			{Key: "cyclotron_radius", Label: "Radius", Format: "%.1f px"},
			{Key: "cyclotron_period", Label: "Period", Format: "%.2f s"},
			{Key: "kinetic_energy", Label: "Kinetic", Format: "%.4g"},
		}
	case dynamo.KindFluid:
		return []Element{
			{Key: "reynolds", Label: "Re", Format: "%.0f"},
			{Key: "regime", Label: "Regime", Enum: regimeName},
			{Key: "mean_velocity", Label: "Mean v", Format: "%.3f m/s"},
			{Key: "max_velocity", Label: "Max v", Format: "%.3f m/s"},
			{Key: "flow_rate", Label: "Flow", Format: "%.3f L/s"},
		}
	case dynamo.KindBrownian:
		return []Element{
			{Key: "displacement", Label: "Displ.", Format: "%.1f px"},
			{Key: "msd", Label: "MSD", Format: "%.4g px²"},
			{Key: "temperature", Label: "Temp", Format: "%.2f"},
			{Key: "collisions", Label: "Hits", Format: "%.0f"},
		}
	case dynamo.KindDiffusion:
		return []Element{
			{Key: "left_fraction_a", Label: "A left", Enum: percent},
			{Key: "left_fraction_b", Label: "B left", Enum: percent},
			{Key: "mixing", Label: "Mixing", Format: "%.3f"},
			{Key: "concentration_variance", Label: "Variance", Format: "%.3f"},
			{Key: "partition", Label: "Partition", Enum: yesNo},
		}
	case dynamo.KindGasLaws:
		return []Element{
			{Key: "law", Label: "Law", Enum: gasLawName},
			{Key: "pressure", Label: "Pressure", Format: "%.4g"},
			{Key: "volume", Label: "Volume", Format: "%.1f"},
			{Key: "temperature", Label: "Temp", Format: "%.0f K"},
			{Key: "pv_over_t", Label: "PV/T", Format: "%.4g"},
			{Key: "mean_speed", Label: "Mean v", Format: "%.1f px/s"},
		}
	case dynamo.KindWaves:
		return []Element{
			{Key: "mode", Label: "Mode", Enum: waveName},
			{Key: "frequency", Label: "f", Format: "%.2f Hz"},
			{Key: "wavelength", Label: "λ", Format: "%.1f px"},
			{Key: "period", Label: "T", Format: "%.3f s"},
			{Key: "wave_speed", Label: "v", Format: "%.0f px/s"},
			{Key: "energy", Label: "Energy", Format: "%.4g"},
		}
	}
	return nil
}

func percent(v float64) string { return fmt.Sprintf("%.0f%%", 100*v) }

// StatsPanel renders a fixed set of elements. Each numeric element gets a
// gauge whose fill follows |value| / running peak through a critically
// damped spring, so jittery stats read smoothly.
type StatsPanel struct {
	elements []Element
	spring   harmonica.Spring
	pos      []float64
	vel      []float64
	peak     []float64
}

func NewStatsPanel(elements []Element, fps int) *StatsPanel {
	n := len(elements)
	return &StatsPanel{
		elements: elements,
		spring:   harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
		pos:      make([]float64, n),
		vel:      make([]float64, n),
		peak:     make([]float64, n),
	}
}

func (p *StatsPanel) Elements() []Element { return p.elements }

// Values formats every element; missing keys give "--".
func (p *StatsPanel) Values(stats dynamo.Stats) []string {
	out := make([]string, len(p.elements))
	for i, e := range p.elements {
		out[i] = e.format(stats)
	}
	return out
}

// Step advances the gauges one frame toward the current stats and returns
// their fill fractions in [0, 1].
func (p *StatsPanel) Step(stats dynamo.Stats) []float64 {
	fills := make([]float64, len(p.elements))
	for i, e := range p.elements {
		target := 0.0
		if v, ok := stats[e.Key]; ok && !math.IsNaN(v) && !math.IsInf(v, 0) && e.Enum == nil {
			a := math.Abs(v)
			p.peak[i] = math.Max(p.peak[i], a)
			if p.peak[i] > 0 {
				target = a / p.peak[i]
			}
		}
		p.pos[i], p.vel[i] = p.spring.Update(p.pos[i], p.vel[i], target)
		fills[i] = dynamo.Clamp(p.pos[i], 0, 1)
	}
	return fills
}

// Reset forgets peaks and gauge positions, e.g. after the scene resets.
func (p *StatsPanel) Reset() {
	for i := range p.pos {
		p.pos[i], p.vel[i], p.peak[i] = 0, 0, 0
	}
}

// Render draws one line per element with label, value and gauge.
func (p *StatsPanel) Render(stats dynamo.Stats) string {
	values := p.Values(stats)
	fills := p.Step(stats)

	var b strings.Builder
	for i, e := range p.elements {
		line := labelStyle.Render(e.Label) + valueStyle.Render(fmt.Sprintf("%-14s", values[i]))
		if e.Enum == nil && values[i] != missingValue {
			line += " " + gauge(fills[i], gaugeWidth)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func gauge(fill float64, width int) string {
	n := int(math.Round(fill * float64(width)))
	return gaugeFull.Render(strings.Repeat("█", n)) + gaugeEmpty.Render(strings.Repeat("░", width-n))
}
