// Package gui runs the formation editor in a desktop window.
//
// The window shows the stage canvas with a scene bar and palette below it.
// Input is translated into editor events once per update; the editor decides
// what they do.
//
// Keys:
//
//	M          toggle place/move mode
//	N          add a scene (copy of the current one)
//	1-9        switch to scene n
//	Tab        next palette color
//	R          rename the selected dancer (Enter commits, Esc cancels)
//	Delete     remove the selected dancer
//	S          save
//	Esc, Q     quit
package gui

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/matzehuels/formation/pkg/core/editor"
	"github.com/matzehuels/formation/pkg/core/formation"
	"github.com/matzehuels/formation/pkg/render"
)

const (
	margin    = 16
	barHeight = 56
	sceneW    = 72
	sceneH    = 22
	swatch    = 18
)

var (
	colorBackground = color.RGBA{0x1e, 0x1e, 0x24, 0xff}
	colorStage      = color.RGBA{0xf8, 0xf8, 0xf8, 0xff}
	colorGrid       = color.RGBA{0xdd, 0xdd, 0xdd, 0xff}
	colorOutline    = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorScene      = color.RGBA{0x3a, 0x3a, 0x44, 0xff}
	colorCurrent    = color.RGBA{0x19, 0x82, 0xc4, 0xff}
	colorTarget     = color.RGBA{0x6a, 0x4c, 0x93, 0xff}
)

// SaveFunc persists the session, for example to its project file.
type SaveFunc func(s *editor.Session) error

// Option configures a Game.
type Option func(*Game)

// WithSave sets the function called when S is pressed.
func WithSave(fn SaveFunc) Option { return func(g *Game) { g.save = fn } }

// WithLogger sets the logger for save and quit messages.
func WithLogger(l *log.Logger) Option { return func(g *Game) { g.logger = l } }

// WithClock replaces time.Now as the source of tick timestamps.
func WithClock(now func() time.Time) Option { return func(g *Game) { g.now = now } }

// Game adapts an editor session to ebiten.Game.
type Game struct {
	session *editor.Session
	save    SaveFunc
	logger  *log.Logger
	now     func() time.Time

	inside   bool
	renaming bool
	input    []rune
	status   string
}

// New creates a game driving s.
func New(s *editor.Session, opts ...Option) *Game {
	g := &Game{session: s, now: time.Now, logger: log.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run opens the window and blocks until it is closed.
func Run(g *Game, title string) error {
	w, h := g.size()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowClosingHandled(true)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

// frame is the input gathered during one update.
type frame struct {
	x, y     float64
	pressed  bool
	released bool
	keys     []ebiten.Key
	chars    []rune
	closing  bool
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	x, y := ebiten.CursorPosition()
	return g.step(frame{
		x:        float64(x),
		y:        float64(y),
		pressed:  inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		released: inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft),
		keys:     inpututil.AppendJustPressedKeys(nil),
		chars:    ebiten.AppendInputChars(nil),
		closing:  ebiten.IsWindowBeingClosed(),
	})
}

func (g *Game) step(in frame) error {
	if in.closing {
		g.quit()
	}
	if g.session.Closed() {
		return ebiten.Termination
	}

	g.pointer(in)
	typing := g.renaming
	for _, k := range in.keys {
		g.key(k)
		if g.session.Closed() {
			return ebiten.Termination
		}
	}
	if typing && g.renaming {
		g.input = append(g.input, in.chars...)
	}
	g.handle(editor.Tick{Now: g.now()})
	return nil
}

func (g *Game) pointer(in frame) {
	cw, ch := g.session.Stage().CanvasSize()
	px, py := in.x-margin, in.y-margin
	inside := px >= 0 && py >= 0 && px < cw && py < ch

	if g.inside && !inside {
		g.handle(editor.PointerLeave{})
	}
	g.inside = inside

	if in.pressed && inside {
		g.handle(editor.PointerDown{X: px, Y: py})
	}
	g.handle(editor.PointerMove{X: px, Y: py})
	if in.released {
		g.handle(editor.PointerUp{})
	}
}

func (g *Game) key(k ebiten.Key) {
	if g.renaming {
		g.renameKey(k)
		return
	}
	switch k {
	case ebiten.KeyM:
		g.handle(editor.ToggleMode{})
	case ebiten.KeyN:
		g.handle(editor.AddFormation{})
	case ebiten.KeyTab:
		g.handle(editor.SetColor{Color: formation.Palette(g.session.Palette()).Next(g.session.Color())})
	case ebiten.KeyDelete:
		g.handle(editor.KeyDown{Key: editor.KeyDelete})
	case ebiten.KeyBackspace:
		g.handle(editor.KeyDown{Key: editor.KeyBackspace})
	case ebiten.KeyR:
		if g.session.Selected() != "" && !g.session.Animating() {
			g.renaming = true
			g.input = g.input[:0]
		}
	case ebiten.KeyS:
		g.saveSession()
	case ebiten.KeyEscape, ebiten.KeyQ:
		g.quit()
	default:
		if k >= ebiten.KeyDigit1 && k <= ebiten.KeyDigit9 {
			g.handle(editor.Activate{Index: int(k - ebiten.KeyDigit1)})
		}
	}
}

func (g *Game) renameKey(k ebiten.Key) {
	switch k {
	case ebiten.KeyEnter, ebiten.KeyNumpadEnter:
		g.renaming = false
		g.handle(editor.Rename{Label: string(g.input)})
	case ebiten.KeyEscape:
		g.renaming = false
	case ebiten.KeyBackspace, ebiten.KeyDelete:
		g.handle(editor.KeyDown{Key: editor.KeyBackspace, FromTextInput: true})
		if len(g.input) > 0 {
			g.input = g.input[:len(g.input)-1]
		}
	}
}

func (g *Game) handle(ev editor.Event) {
	for _, eff := range g.session.Handle(ev) {
		if inv, ok := eff.(editor.Invalid); ok {
			g.status = inv.Err.Error()
		}
	}
}

func (g *Game) saveSession() {
	if g.save == nil {
		g.status = "no file to save to"
		return
	}
	if err := g.save(g.session); err != nil {
		g.status = "save failed: " + err.Error()
		g.logger.Error("Save failed", "err", err)
		return
	}
	g.status = "saved"
	g.logger.Info("Saved project")
}

func (g *Game) quit() {
	g.session.Handle(editor.Teardown{})
}

func (g *Game) size() (int, int) {
	w, h := g.session.Stage().CanvasSize()
	return int(w) + 2*margin, int(h) + 2*margin + barHeight
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.size()
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	v := g.session.View()
	screen.Fill(colorBackground)
	g.drawStage(screen, v)
	g.drawBar(screen, v)
}

func (g *Game) drawStage(screen *ebiten.Image, v editor.View) {
	w, h := v.Stage.CanvasSize()
	cw, ch := v.Stage.CellSize()
	ox, oy := float32(margin), float32(margin)

	vector.DrawFilledRect(screen, ox, oy, float32(w), float32(h), colorStage, false)
	for c := 0; c <= v.Stage.Cols; c++ {
		x := ox + float32(float64(c)*cw)
		vector.StrokeLine(screen, x, oy, x, oy+float32(h), 1, colorGrid, false)
	}
	for r := 0; r <= v.Stage.Rows; r++ {
		y := oy + float32(float64(r)*ch)
		vector.StrokeLine(screen, ox, y, ox+float32(w), y, 1, colorGrid, false)
	}

	radius := float32(min(cw, ch) * 0.35)
	for _, d := range v.Dancers {
		cx := ox + float32(d.Col*cw+cw/2)
		cy := oy + float32(d.Row*ch+ch/2)
		vector.DrawFilledCircle(screen, cx, cy, radius, parseHex(d.Color), true)
		if d.ID == v.Selected {
			vector.StrokeCircle(screen, cx, cy, radius, 3, colorOutline, true)
		}
		label := render.Initials(d.Label)
		ebitenutil.DebugPrintAt(screen, label, int(cx)-3*len([]rune(label)), int(cy)-8)
	}
}

func (g *Game) drawBar(screen *ebiten.Image, v editor.View) {
	_, h := v.Stage.CanvasSize()
	y := float32(margin) + float32(h) + 8

	for i, sc := range v.Scenes {
		x := float32(margin + i*(sceneW+4))
		fill := colorScene
		switch {
		case v.Animating && i == v.Target:
			fill = colorTarget
		case i == v.Current:
			fill = colorCurrent
		}
		vector.DrawFilledRect(screen, x, y, sceneW, sceneH, fill, false)
		ebitenutil.DebugPrintAt(screen, truncate(fmt.Sprintf("%d %s", i+1, sc.Name), 11), int(x)+4, int(y)+3)
	}

	sy := y + sceneH + 6
	for i, c := range v.Palette {
		x := float32(margin + i*(swatch+4))
		vector.DrawFilledRect(screen, x, sy, swatch, swatch, parseHex(c), false)
		if c == v.Color {
			vector.StrokeRect(screen, x, sy, swatch, swatch, 2, colorStage, false)
		}
	}

	status := v.Mode.String()
	switch {
	case g.renaming:
		status = "name: " + string(g.input) + "_"
	case v.Animating:
		status = fmt.Sprintf("transition %3.0f%%", v.Progress*100)
	case g.status != "":
		status += "  " + g.status
	}
	ebitenutil.DebugPrintAt(screen, status, margin+len(v.Palette)*(swatch+4)+8, int(sy)+2)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// parseHex converts "#RRGGBB" to a color; malformed input yields gray.
func parseHex(s string) color.RGBA {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 16, 32)
	if err != nil || len(s) != 7 {
		return color.RGBA{0x88, 0x88, 0x88, 0xff}
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}
}
