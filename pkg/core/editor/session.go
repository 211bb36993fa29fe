// Package editor implements the interactive formation editor as an explicit
// event-driven state machine.
//
// Surfaces (terminal, desktop window, tests) translate their input into
// [Event] values and pass them to [Session.Handle], which applies them and
// returns the resulting [Effect] list. Rendering reads a [View] snapshot.
// Attempts the editor does not allow (placing on an occupied cell, dragging
// onto another dancer or off the grid, editing during a scene change) are
// dropped silently and produce no effects.
//
// Scene changes are animated: [Activate] starts a transition, [Tick] events
// carrying timestamps advance it, and the requested scene becomes active only
// once the transition completes. While a transition runs every other editing
// event is ignored.
//
// A Session is not safe for concurrent use. Surfaces deliver events from a
// single goroutine.
package editor

import (
	"context"
	"time"

	"github.com/matzehuels/formation/pkg/core/formation"
	"github.com/matzehuels/formation/pkg/core/stage"
	"github.com/matzehuels/formation/pkg/core/transition"
	ferrors "github.com/matzehuels/formation/pkg/errors"
	"github.com/matzehuels/formation/pkg/observability"
)

// Mode selects what a pointer press does.
type Mode int

const (
	// Place puts a new dancer on an empty cell.
	Place Mode = iota
	// Move selects and drags existing dancers.
	Move
)

func (m Mode) String() string {
	if m == Move {
		return "move"
	}
	return "place"
}

// Option configures a Session.
type Option func(*Session)

// WithStage sets the initial stage configuration.
func WithStage(cfg stage.Config) Option {
	return func(s *Session) { s.stage = cfg }
}

// WithTimeline starts the session from an existing timeline, for example one
// loaded from a project file. The session takes ownership of it. An empty
// timeline is ignored and an out-of-range current index resets to 0.
func WithTimeline(t *formation.Timeline) Option {
	return func(s *Session) {
		if t != nil && t.Len() > 0 {
			s.timeline = t
		}
	}
}

// WithPalette sets the selectable colors. The first color becomes current.
func WithPalette(colors []string) Option {
	return func(s *Session) {
		if len(colors) > 0 {
			s.palette = formation.Palette(colors)
		}
	}
}

// WithColor sets the initial placement color if it is in the palette.
func WithColor(c string) Option {
	return func(s *Session) { s.initialColor = c }
}

// WithDuration sets the length of scene transitions.
func WithDuration(d time.Duration) Option {
	return func(s *Session) { s.duration = d }
}

// WithContext sets the context passed to observability hooks.
func WithContext(ctx context.Context) Option {
	return func(s *Session) { s.ctx = ctx }
}

// Session is one editing session over a timeline of formations.
type Session struct {
	ctx          context.Context
	stage        stage.Config
	timeline     *formation.Timeline
	palette      formation.Palette
	duration     time.Duration
	initialColor string

	mode     Mode
	color    string
	selected string
	dragging string

	anim     *transition.Session
	from     int
	target   int
	frame    []transition.Placement
	progress float64

	closed bool
}

// New creates a session. Without options it edits a fresh timeline on the
// default stage.
func New(opts ...Option) *Session {
	s := &Session{
		ctx:      context.Background(),
		stage:    stage.Default(),
		palette:  formation.Palette(formation.DefaultPalette),
		duration: transition.DefaultDuration,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.timeline == nil {
		s.timeline = formation.NewTimeline()
	}
	if s.timeline.Current < 0 || s.timeline.Current >= s.timeline.Len() {
		s.timeline.Current = 0
	}
	if s.timeline.NextID < s.timeline.MinNextID() {
		s.timeline.NextID = s.timeline.MinNextID()
	}
	s.color = s.palette[0]
	if s.palette.Contains(s.initialColor) {
		s.color = s.initialColor
	}
	return s
}

// locked reports whether editing events must be ignored.
func (s *Session) locked() bool {
	return s.anim != nil || s.closed
}

// Handle applies ev and returns the effects it produced.
func (s *Session) Handle(ev Event) []Effect {
	if s.closed {
		return nil
	}

	var out []Effect
	switch e := ev.(type) {
	case Tick:
		out = s.tick(e.Now)
	case Teardown:
		s.teardown()
		return nil
	default:
		if s.locked() {
			return nil
		}
		out = s.edit(ev)
	}

	for _, eff := range out {
		if _, frame := eff.(TransitionFrame); !frame {
			observability.Editor().OnEffect(s.ctx, eff.Kind(), eff.String())
		}
	}
	return out
}

func (s *Session) edit(ev Event) []Effect {
	switch e := ev.(type) {
	case PointerDown:
		return s.pointerDown(e.X, e.Y)
	case PointerMove:
		return s.pointerMove(e.X, e.Y)
	case PointerUp, PointerLeave:
		return s.endDrag()
	case KeyDown:
		return s.keyDown(e)
	case ToggleMode:
		if s.mode == Place {
			s.mode = Move
		} else {
			s.mode = Place
		}
		return []Effect{ModeChanged{Mode: s.mode}}
	case SetColor:
		if s.mode != Place || !s.palette.Contains(e.Color) || e.Color == s.color {
			return nil
		}
		s.color = e.Color
		return []Effect{ColorChanged{Color: s.color}}
	case AddFormation:
		out := s.clearSelection()
		i := s.timeline.AddFromActive()
		return append(out, FormationAdded{Index: i, Name: s.timeline.Active().Name})
	case Activate:
		return s.activate(e.Index)
	case Rename:
		return s.rename(e.Label)
	case Reconfigure:
		if err := e.Stage.Validate(); err != nil {
			return []Effect{Invalid{Err: err}}
		}
		s.stage = e.Stage
		return []Effect{StageChanged{Stage: s.stage}}
	}
	return nil
}

func (s *Session) pointerDown(x, y float64) []Effect {
	row, col := s.stage.PixelToCell(x, y)
	active := s.timeline.Active()

	if s.mode == Place {
		if !s.stage.Contains(row, col) || active.Occupied(row, col) {
			return nil
		}
		id := s.timeline.NewDancerID()
		d := formation.Dancer{ID: id, Label: id, Color: s.color, Row: row, Col: col}
		active.Add(d)
		return []Effect{Placed{Dancer: d}}
	}

	if !s.stage.Contains(row, col) {
		return nil
	}
	d, ok := active.At(row, col)
	if !ok {
		return s.clearSelection()
	}
	s.dragging = d.ID
	if s.selected == d.ID {
		return nil
	}
	s.selected = d.ID
	return []Effect{Selected{ID: d.ID}}
}

func (s *Session) pointerMove(x, y float64) []Effect {
	if s.dragging == "" {
		return nil
	}
	row, col := s.stage.PixelToCell(x, y)
	if !s.stage.Contains(row, col) {
		return nil
	}
	active := s.timeline.Active()
	if d, ok := active.Get(s.dragging); !ok || (d.Row == row && d.Col == col) {
		return nil
	}
	if !active.Move(s.dragging, row, col) {
		return nil
	}
	return []Effect{Moved{ID: s.dragging, Row: row, Col: col}}
}

func (s *Session) endDrag() []Effect {
	if s.dragging == "" {
		return nil
	}
	id := s.dragging
	s.dragging = ""
	return []Effect{DragEnded{ID: id}}
}

func (s *Session) keyDown(e KeyDown) []Effect {
	if e.Key != KeyDelete && e.Key != KeyBackspace {
		return nil
	}
	if e.FromTextInput || s.selected == "" {
		return nil
	}
	id := s.selected
	if !s.timeline.Active().Remove(id) {
		return s.clearSelection()
	}
	s.selected = ""
	if s.dragging == id {
		s.dragging = ""
	}
	return []Effect{Removed{ID: id}, Selected{}}
}

func (s *Session) rename(label string) []Effect {
	if s.selected == "" {
		return nil
	}
	clean, err := ferrors.ValidateLabel(label)
	if err != nil {
		return []Effect{Invalid{Err: err}}
	}
	if !s.timeline.Active().Rename(s.selected, clean) {
		return nil
	}
	return []Effect{Renamed{ID: s.selected, Label: clean}}
}

func (s *Session) clearSelection() []Effect {
	s.dragging = ""
	if s.selected == "" {
		return nil
	}
	s.selected = ""
	return []Effect{Selected{}}
}

func (s *Session) activate(i int) []Effect {
	target, ok := s.timeline.At(i)
	if !ok || i == s.timeline.Current {
		return nil
	}
	out := s.clearSelection()

	src := s.timeline.Active().Dancers
	s.anim = transition.New(src, target.Dancers, s.duration)
	s.from, s.target = s.timeline.Current, i
	s.frame = transition.Still(src)
	s.progress = 0

	observability.Editor().OnTransitionStart(s.ctx, s.from, s.target, len(s.anim.Tracks()))
	return append(out, TransitionStarted{From: s.from, To: s.target})
}

func (s *Session) tick(now time.Time) []Effect {
	if s.anim == nil {
		return nil
	}
	s.frame = s.anim.Sample(now)
	s.progress = s.anim.Progress(now)
	if !s.anim.IsComplete(now) {
		return []Effect{TransitionFrame{Progress: s.progress}}
	}

	observability.Editor().OnTransitionComplete(s.ctx, s.target, s.anim.Frames(), s.anim.Elapsed(now), false)
	s.timeline.SetCurrent(s.target)
	s.anim = nil
	s.frame = nil
	s.progress = 0
	return []Effect{TransitionFinished{Index: s.target}}
}

func (s *Session) teardown() {
	if s.anim != nil {
		observability.Editor().OnTransitionComplete(s.ctx, s.target, s.anim.Frames(), 0, true)
	}
	s.anim = nil
	s.frame = nil
	s.dragging = ""
	s.closed = true
}

// Mode returns the current interaction mode.
func (s *Session) Mode() Mode { return s.mode }

// Selected returns the selected dancer ID, or "".
func (s *Session) Selected() string { return s.selected }

// Dragging returns the ID of the dancer being dragged, or "".
func (s *Session) Dragging() string { return s.dragging }

// Animating reports whether a scene transition is running.
func (s *Session) Animating() bool { return s.anim != nil }

// Closed reports whether the session has been torn down.
func (s *Session) Closed() bool { return s.closed }

// Stage returns the current stage configuration.
func (s *Session) Stage() stage.Config { return s.stage }

// Color returns the placement color.
func (s *Session) Color() string { return s.color }

// Palette returns the selectable colors.
func (s *Session) Palette() []string { return s.palette }

// Current returns the index of the active scene.
func (s *Session) Current() int { return s.timeline.Current }

// Active returns a copy of the active formation.
func (s *Session) Active() formation.Formation {
	f := s.timeline.Active()
	return f.Clone(f.ID, f.Name)
}

// Timeline returns a deep copy of the edited timeline.
func (s *Session) Timeline() *formation.Timeline {
	return s.timeline.Clone()
}
