package editor

import (
	"fmt"

	"github.com/matzehuels/formation/pkg/core/formation"
	"github.com/matzehuels/formation/pkg/core/stage"
)

// Effect describes one state change made by [Session.Handle]. An event that
// changes nothing yields no effects.
type Effect interface {
	Kind() string
	String() string
}

// Placed reports a new dancer on the active formation.
type Placed struct{ Dancer formation.Dancer }

// Moved reports a dragged dancer landing on a new cell.
type Moved struct {
	ID       string
	Row, Col int
}

// Selected reports a selection change. An empty ID means cleared.
type Selected struct{ ID string }

// DragEnded reports the end of a drag gesture.
type DragEnded struct{ ID string }

// Removed reports a deleted dancer.
type Removed struct{ ID string }

// Renamed reports a label change.
type Renamed struct{ ID, Label string }

// ModeChanged reports a mode toggle.
type ModeChanged struct{ Mode Mode }

// ColorChanged reports a new placement color.
type ColorChanged struct{ Color string }

// FormationAdded reports a cloned scene, which is now active.
type FormationAdded struct {
	Index int
	Name  string
}

// TransitionStarted reports the start of a scene change.
type TransitionStarted struct{ From, To int }

// TransitionFrame reports an interpolated frame.
type TransitionFrame struct{ Progress float64 }

// TransitionFinished reports that scene Index is now active.
type TransitionFinished struct{ Index int }

// StageChanged reports a new stage configuration.
type StageChanged struct{ Stage stage.Config }

// Invalid reports input rejected by validation. State is unchanged.
type Invalid struct{ Err error }

func (Placed) Kind() string             { return "placed" }
func (Moved) Kind() string              { return "moved" }
func (Selected) Kind() string           { return "selected" }
func (DragEnded) Kind() string          { return "drag-ended" }
func (Removed) Kind() string            { return "removed" }
func (Renamed) Kind() string            { return "renamed" }
func (ModeChanged) Kind() string        { return "mode" }
func (ColorChanged) Kind() string       { return "color" }
func (FormationAdded) Kind() string     { return "formation-added" }
func (TransitionStarted) Kind() string  { return "transition-started" }
func (TransitionFrame) Kind() string    { return "transition-frame" }
func (TransitionFinished) Kind() string { return "transition-finished" }
func (StageChanged) Kind() string       { return "stage" }
func (Invalid) Kind() string            { return "invalid" }

func (e Placed) String() string {
	return fmt.Sprintf("%s at (%d, %d)", e.Dancer.ID, e.Dancer.Row, e.Dancer.Col)
}
func (e Moved) String() string { return fmt.Sprintf("%s to (%d, %d)", e.ID, e.Row, e.Col) }
func (e Selected) String() string {
	if e.ID == "" {
		return "none"
	}
	return e.ID
}
func (e DragEnded) String() string         { return e.ID }
func (e Removed) String() string           { return e.ID }
func (e Renamed) String() string           { return fmt.Sprintf("%s as %q", e.ID, e.Label) }
func (e ModeChanged) String() string       { return e.Mode.String() }
func (e ColorChanged) String() string      { return e.Color }
func (e FormationAdded) String() string    { return fmt.Sprintf("%s (#%d)", e.Name, e.Index) }
func (e TransitionStarted) String() string { return fmt.Sprintf("%d -> %d", e.From, e.To) }
func (e TransitionFrame) String() string   { return fmt.Sprintf("%.2f", e.Progress) }
func (e TransitionFinished) String() string {
	return fmt.Sprintf("scene %d", e.Index)
}
func (e StageChanged) String() string {
	return fmt.Sprintf("%dx%d ratio %g", e.Stage.Rows, e.Stage.Cols, e.Stage.CellRatio)
}
func (e Invalid) String() string { return e.Err.Error() }
