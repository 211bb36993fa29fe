package cli

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/formation/pkg/core/editor"
	"github.com/matzehuels/formation/pkg/core/formation"
	"github.com/matzehuels/formation/pkg/core/transition"
	"github.com/matzehuels/formation/pkg/render"
)

// Terminal geometry of the stage: every grid cell is drawn as a block of
// cellChars columns by cellLines lines, below headerLines lines of header.
const (
	cellChars   = 4
	cellLines   = 2
	headerLines = 2
)

// tickInterval paces transition frames in the terminal.
const tickInterval = time.Second / 60

var (
	editorEmptyStyle    = lipgloss.NewStyle().Foreground(colorDim)
	editorLabelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	editorSelectedStyle = editorLabelStyle.Underline(true).Reverse(true)
	editorSceneStyle    = lipgloss.NewStyle().Foreground(colorGray).Padding(0, 1)
	editorCurrentStyle  = lipgloss.NewStyle().Foreground(colorWhite).Background(colorCyan).Bold(true).Padding(0, 1)
	editorTargetStyle   = lipgloss.NewStyle().Foreground(colorWhite).Background(colorBlue).Padding(0, 1)
	editorHelpStyle     = lipgloss.NewStyle().Foreground(colorDim)
	editorErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// =============================================================================
// EditorModel - Interactive formation editor
// =============================================================================

// EditorModel is the bubbletea model for the terminal editor. It translates
// mouse and key input into editor events and draws the session's view.
type EditorModel struct {
	Session *editor.Session
	Path    string
	Save    func(*editor.Session) error

	renaming bool
	input    []rune
	status   string
	failed   bool
	dirty    bool
}

// NewEditorModel creates an editor model for s. path names the project file
// in the header; save may be nil when there is nothing to save to.
func NewEditorModel(s *editor.Session, path string, save func(*editor.Session) error) EditorModel {
	return EditorModel{Session: s, Path: path, Save: save}
}

// Dirty reports whether there are unsaved changes.
func (m EditorModel) Dirty() bool { return m.dirty }

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		return m.mouse(msg)
	case tea.KeyMsg:
		if m.renaming {
			return m.renameKey(msg)
		}
		return m.key(msg)
	case tickMsg:
		m.apply(editor.Tick{Now: time.Time(msg)})
		if m.Session.Animating() {
			return m, tick()
		}
	}
	return m, nil
}

func (m EditorModel) mouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action == tea.MouseActionPress && msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	x, y, inside := m.toPixel(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if inside {
			m.apply(editor.PointerDown{X: x, Y: y})
		}
	case tea.MouseActionMotion:
		if !inside {
			m.apply(editor.PointerLeave{})
			break
		}
		m.apply(editor.PointerMove{X: x, Y: y})
	case tea.MouseActionRelease:
		m.apply(editor.PointerUp{})
	}
	return m, nil
}

// toPixel maps a terminal cell to the canvas pixel at the center of the area
// it covers.
func (m EditorModel) toPixel(x, y int) (px, py float64, inside bool) {
	cfg := m.Session.Stage()
	cw, ch := cfg.CellSize()
	gy := y - headerLines
	px = (float64(x) + 0.5) * cw / cellChars
	py = (float64(gy) + 0.5) * ch / cellLines
	inside = x >= 0 && gy >= 0 && x < cfg.Cols*cellChars && gy < cfg.Rows*cellLines
	return px, py, inside
}

func (m EditorModel) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch k := msg.String(); k {
	case "q", "ctrl+c", "esc":
		m.apply(editor.Teardown{})
		return m, tea.Quit
	case "m":
		m.apply(editor.ToggleMode{})
	case "n":
		m.apply(editor.AddFormation{})
	case "tab":
		next := formation.Palette(m.Session.Palette()).Next(m.Session.Color())
		m.apply(editor.SetColor{Color: next})
	case "delete":
		m.apply(editor.KeyDown{Key: editor.KeyDelete})
	case "backspace":
		m.apply(editor.KeyDown{Key: editor.KeyBackspace})
	case "r":
		if m.Session.Selected() != "" && !m.Session.Animating() {
			m.renaming = true
			m.input = nil
		}
	case "s":
		m.save()
	default:
		if len(k) == 1 && k[0] >= '1' && k[0] <= '9' {
			if m.apply(editor.Activate{Index: int(k[0] - '1')}) {
				cmd = tick()
			}
		}
	}
	return m, cmd
}

func (m EditorModel) renameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.renaming = false
		m.apply(editor.Rename{Label: string(m.input)})
	case tea.KeyEsc:
		m.renaming = false
	case tea.KeyBackspace, tea.KeyDelete:
		// The editor ignores deletes typed into a text field.
		m.apply(editor.KeyDown{Key: editor.KeyBackspace, FromTextInput: true})
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyRunes, tea.KeySpace:
		m.input = append(m.input, msg.Runes...)
	}
	return m, nil
}

// apply sends ev to the session and records its outcome. It reports whether
// a transition started.
func (m *EditorModel) apply(ev editor.Event) bool {
	started := false
	for _, eff := range m.Session.Handle(ev) {
		switch e := eff.(type) {
		case editor.Invalid:
			m.status, m.failed = e.Err.Error(), true
		case editor.TransitionStarted:
			started = true
		case editor.Placed, editor.Moved, editor.Removed, editor.Renamed,
			editor.FormationAdded, editor.StageChanged:
			m.dirty = true
			m.status, m.failed = "", false
		}
	}
	return started
}

func (m *EditorModel) save() {
	if m.Save == nil {
		m.status, m.failed = "no project file to save to", true
		return
	}
	if err := m.Save(m.Session); err != nil {
		m.status, m.failed = "save failed: "+err.Error(), true
		return
	}
	m.dirty = false
	m.status, m.failed = "saved "+filepath.Base(m.Path), false
}

func (m EditorModel) View() string {
	v := m.Session.View()
	var b strings.Builder

	b.WriteString(m.header(v))
	b.WriteString("\n\n")
	b.WriteString(m.grid(v))
	b.WriteString("\n")
	b.WriteString(m.scenes(v))
	b.WriteString("\n")
	b.WriteString(m.footer(v))
	return b.String()
}

func (m EditorModel) header(v editor.View) string {
	name := "untitled"
	if m.Path != "" {
		name = filepath.Base(m.Path)
	}
	if m.dirty {
		name += "*"
	}
	swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(v.Color)).Render("●")
	return StyleTitle.Render(name) + StyleDim.Render(fmt.Sprintf("  %s mode  ", v.Mode)) + swatch
}

func (m EditorModel) grid(v editor.View) string {
	cells := make(map[[2]int]transition.Placement, len(v.Dancers))
	for _, d := range v.Dancers {
		cells[[2]int{int(math.Round(d.Row)), int(math.Round(d.Col))}] = d
	}

	var b strings.Builder
	for r := 0; r < v.Stage.Rows; r++ {
		var top, bottom strings.Builder
		for c := 0; c < v.Stage.Cols; c++ {
			d, ok := cells[[2]int{r, c}]
			if !ok {
				top.WriteString(editorEmptyStyle.Render(" ·  "))
				bottom.WriteString(strings.Repeat(" ", cellChars))
				continue
			}
			style := editorLabelStyle
			if d.ID == v.Selected {
				style = editorSelectedStyle
			}
			bg := lipgloss.Color(d.Color)
			top.WriteString(style.Background(bg).Width(cellChars).Align(lipgloss.Center).Render(render.Initials(d.Label)))
			bottom.WriteString(lipgloss.NewStyle().Background(bg).Render(strings.Repeat(" ", cellChars)))
		}
		b.WriteString(top.String())
		b.WriteString("\n")
		b.WriteString(bottom.String())
		b.WriteString("\n")
	}
	return b.String()
}

func (m EditorModel) scenes(v editor.View) string {
	parts := make([]string, len(v.Scenes))
	for i, sc := range v.Scenes {
		label := fmt.Sprintf("%d %s", i+1, sc.Name)
		switch {
		case v.Animating && i == v.Target:
			parts[i] = editorTargetStyle.Render(label)
		case i == v.Current:
			parts[i] = editorCurrentStyle.Render(label)
		default:
			parts[i] = editorSceneStyle.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m EditorModel) footer(v editor.View) string {
	switch {
	case m.renaming:
		return StyleHighlight.Render("name: ") + string(m.input) + "█" + editorHelpStyle.Render("  ⏎ apply  esc cancel")
	case v.Animating:
		return StyleDim.Render(fmt.Sprintf("transition %3.0f%%", v.Progress*100))
	case m.status != "" && m.failed:
		return editorErrorStyle.Render(m.status)
	case m.status != "":
		return StyleSuccess.Render(m.status)
	}
	return editorHelpStyle.Render("click place/drag  m mode  tab color  n new scene  1-9 scene  r rename  del delete  s save  q quit")
}
