package viz

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/physanim/internal/dynamo"
)

const (
	defaultCols     = 60
	defaultRows     = 22
	panelWidth      = 46
	historyCapacity = 300
	speedFactor     = 1.25
	sceneWidth      = 800.0
)

// discreteParams step by one instead of a fraction of their value.
var discreteParams = map[string]bool{
	"mode": true, "law": true, "driven": true, "partition": true, "field_lines": true,
	"planets": true, "count": true, "particles": true, "molecules": true, "tracers": true,
	"filings": true, "points": true,
}

// TickMsg advances the Live model whose id matches.
type TickMsg struct {
	Time time.Time
	ID   int
}

// Live is the bubbletea model that drives one scene in real time.
type Live struct {
	scene    dynamo.Scene
	vp       *dynamo.Viewport
	renderer *Renderer
	panel    *StatsPanel
	frame    time.Duration
	frameMs  float64
	id       int

	running   bool
	showHelp  bool
	paramKeys []string
	selected  int
	status    string

	historyKey string
	history    []float64
}

func NewLive(scene dynamo.Scene, vp *dynamo.Viewport, fps int) Live {
	if fps <= 0 {
		fps = 60
	}
	elements := DefaultElements(scene.Kind())
	m := Live{
		scene:    scene,
		vp:       vp,
		renderer: NewRenderer(defaultCols, defaultRows),
		panel:    NewStatsPanel(elements, fps),
		frame:    time.Second / time.Duration(fps),
		frameMs:  1000 / float64(fps),
		running:  true,
		history:  make([]float64, 0, historyCapacity),
	}
	for _, e := range elements {
		if e.Enum == nil {
			m.historyKey = e.Key
			break
		}
	}
	m.loadParams()
	m.fitViewport()
	return m
}

func (m *Live) loadParams() {
	params := m.scene.GetParams()
	m.paramKeys = m.paramKeys[:0]
	for k := range params {
		if k != "speed" {
			m.paramKeys = append(m.paramKeys, k)
		}
	}
	sort.Strings(m.paramKeys)
	if m.selected >= len(m.paramKeys) {
		m.selected = 0
	}
}

func (m Live) tick() tea.Cmd {
	id := m.id
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return TickMsg{Time: t, ID: id} })
}

func (m Live) Init() tea.Cmd { return m.tick() }

func (m Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case ".":
			if !m.running {
				m.step()
			}
		case "r":
			m.reset()
		case "+", "=":
			m.scaleSpeed(speedFactor)
		case "-", "_":
			m.scaleSpeed(1 / speedFactor)
		case "tab":
			m.cycleParam(1)
		case "shift+tab":
			m.cycleParam(-1)
		case "up", "k", "right", "l":
			m.adjustParam(1)
		case "down", "j", "left", "h":
			m.adjustParam(-1)
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.Resize(msg.Width, msg.Height)
	case TickMsg:
		if msg.ID != m.id {
			return m, nil
		}
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

// Resize fits the canvas into a terminal of w x h cells and reshapes the
// scene viewport to the canvas aspect ratio.
func (m *Live) Resize(w, h int) {
	cols := w - panelWidth - 4
	rows := h - 2
	if cols < 10 {
		cols = 10
	}
	if rows < 5 {
		rows = 5
	}
	m.renderer.Resize(cols, rows)
	m.fitViewport()
}

func (m *Live) fitViewport() {
	if m.vp == nil {
		return
	}
	c := m.renderer.Canvas()
	m.vp.SetSize(sceneWidth, sceneWidth*float64(c.DotHeight())/float64(c.DotWidth()))
}

func (m *Live) step() {
	m.scene.Update(m.frameMs)
	if m.historyKey == "" {
		return
	}
	if v, ok := m.scene.Stats()[m.historyKey]; ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
		m.history = append(m.history, v)
		if len(m.history) > historyCapacity {
			m.history = m.history[1:]
		}
	}
}

func (m *Live) reset() {
	m.scene.Reset()
	m.renderer.ClearTrails()
	m.panel.Reset()
	m.history = m.history[:0]
	m.status = ""
}

func (m *Live) Speed() float64 { return m.scene.GetParams()["speed"] }

func (m *Live) scaleSpeed(f float64) {
	if err := m.scene.SetParam("speed", m.Speed()*f); err != nil {
		m.status = err.Error()
	}
}

func (m *Live) cycleParam(dir int) {
	n := len(m.paramKeys)
	if n == 0 {
		return
	}
	m.selected = ((m.selected+dir)%n + n) % n
}

func paramStep(key string, v float64) float64 {
	if discreteParams[key] {
		return 1
	}
	return math.Max(math.Abs(v)*0.05, 0.01)
}

// adjustParam nudges the selected parameter. Scenes clamp or reject the
// value themselves; a rejection shows in the status line.
func (m *Live) adjustParam(dir float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	v := m.scene.GetParams()[key]
	if err := m.scene.SetParam(key, v+dir*paramStep(key, v)); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
}

func (m Live) View() string {
	snap := m.scene.Snapshot()
	stats := m.scene.Stats()

	canvasView := canvasStyle.Render(m.renderer.Render(snap))

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(snap.Kind.String())) + "\n")
	if m.running {
		s.WriteString(statusRunning.Render("RUNNING"))
	} else {
		s.WriteString(statusPaused.Render("PAUSED"))
	}
	s.WriteString(fmt.Sprintf("  t=%.2fs  x%.2f\n\n", snap.Time, m.Speed()))

	s.WriteString(m.panel.Render(stats))

	if Plottable(m.history) {
		chart := asciigraph.Plot(m.history, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption(m.historyKey))
		s.WriteString("\n" + graphStyle.Render(chart) + "\n")
	}

	s.WriteString("\nPARAMETERS\n")
	if len(m.paramKeys) == 0 {
		s.WriteString(labelStyle.Render("  (none)") + "\n")
	}
	params := m.scene.GetParams()
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-18s %.4g", k, params[k])
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + valueStyle.Render(line) + "\n")
		}
	}
	if m.status != "" {
		s.WriteString(errorStyle.Render(m.status) + "\n")
	}

	if m.showHelp {
		s.WriteString(helpStyle.Render(helpText))
	} else {
		s.WriteString(helpStyle.Render("SP:Pause R:Reset +/-:Speed ?:Help Q:Quit"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panelStyle.Render(s.String()))
}

// Plottable reports whether asciigraph can draw vs: at least two points
// with some spread.
func Plottable(vs []float64) bool {
	return len(vs) > 1 && floats.Max(vs) > floats.Min(vs)
}

const helpText = `Space    pause / resume
.        step one frame while paused
R        reset the scene
+ / -    speed up / slow down
Tab      next parameter
Up/Down  adjust parameter
T        cycle themes
Q        quit`

// RunLive runs the viewer until the user quits or ctx is cancelled.
func RunLive(ctx context.Context, scene dynamo.Scene, vp *dynamo.Viewport, fps int) error {
	p := tea.NewProgram(NewLive(scene, vp, fps), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
