package viz

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/physanim/internal/dynamo"
)

var kindInfo = map[dynamo.Kind]string{
	dynamo.KindPendulum:   "simple and double pendulum",
	dynamo.KindOrbits:     "planets around a star",
	dynamo.KindCollisions: "elastic and inelastic disks",
	dynamo.KindFriction:   "block on an incline",
	dynamo.KindElectric:   "point charges and field lines",
	dynamo.KindMagnetic:   "Lorentz force in a uniform field",
	dynamo.KindFluid:      "pipe flow and Reynolds number",
	dynamo.KindBrownian:   "heavy particle among molecules",
	dynamo.KindDiffusion:  "two species mixing",
	dynamo.KindGasLaws:    "Boyle, Charles, Gay-Lussac",
	dynamo.KindWaves:      "sound, packets, strings",
}

// SceneFactory builds a scene for the menu choice.
type SceneFactory func(k dynamo.Kind, vp *dynamo.Viewport) (dynamo.Scene, error)

const (
	stateMenu = iota
	stateSim
)

// App is the menu-driven viewer: pick a kind, watch it live, Esc returns
// to the menu.
type App struct {
	state   int
	cursor  int
	kinds   []dynamo.Kind
	factory SceneFactory
	fps     int
	err     error
	runs    int

	width, height int
	live          Live
}

func NewApp(kinds []dynamo.Kind, factory SceneFactory, fps int) App {
	return App{kinds: kinds, factory: factory, fps: fps, width: 80 + panelWidth, height: 26}
}

func (a App) Init() tea.Cmd { return nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		if a.state == stateSim {
			a.live.Resize(msg.Width, msg.Height)
		}
		return a, nil
	case tea.KeyMsg:
		if a.state == stateMenu {
			return a.menuKey(msg)
		}
		if msg.String() == "esc" {
			a.state = stateMenu
			return a, nil
		}
	}

	if a.state == stateSim {
		next, cmd := a.live.Update(msg)
		a.live = next.(Live)
		return a, cmd
	}
	return a, nil
}

func (a App) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.kinds)-1 {
			a.cursor++
		}
	case "enter", " ":
		return a.start()
	}
	return a, nil
}

func (a App) start() (tea.Model, tea.Cmd) {
	if len(a.kinds) == 0 {
		return a, nil
	}
	vp := dynamo.NewViewport(sceneWidth, sceneWidth*0.75)
	scene, err := a.factory(a.kinds[a.cursor], vp)
	if err != nil {
		a.err = err
		return a, nil
	}
	a.err = nil
	a.runs++
	a.live = NewLive(scene, vp, a.fps)
	a.live.id = a.runs
	a.live.Resize(a.width, a.height)
	a.state = stateSim
	return a, a.live.Init()
}

// Selected is the kind under the menu cursor.
func (a App) Selected() dynamo.Kind { return a.kinds[a.cursor] }

func (a App) View() string {
	if a.state == stateSim {
		return a.live.View()
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render("PHYSANIM") + "\n")
	for i, k := range a.kinds {
		line := fmt.Sprintf("%-12s %s", k, kindInfo[k])
		if i == a.cursor {
			s.WriteString(menuSelected.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + menuItem.Render(line) + "\n")
		}
	}
	if a.err != nil {
		s.WriteString("\n" + errorStyle.Render(a.err.Error()) + "\n")
	}
	s.WriteString(helpStyle.Render("↑↓:Select Enter:Start Esc:Back Q:Quit"))
	return s.String()
}

func RunApp(ctx context.Context, app App) error {
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
