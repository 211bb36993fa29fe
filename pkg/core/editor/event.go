package editor

import (
	"time"

	"github.com/matzehuels/formation/pkg/core/stage"
)

// Event is an input delivered to [Session.Handle].
type Event interface {
	event()
}

// PointerDown is a primary-button press at canvas-relative pixel (X, Y).
type PointerDown struct{ X, Y float64 }

// PointerMove is a pointer motion at canvas-relative pixel (X, Y).
type PointerMove struct{ X, Y float64 }

// PointerUp is a primary-button release.
type PointerUp struct{}

// PointerLeave is sent when the pointer leaves the canvas.
type PointerLeave struct{}

// Key names a keyboard key the editor reacts to.
type Key string

const (
	KeyDelete    Key = "Delete"
	KeyBackspace Key = "Backspace"
)

// KeyDown is a key press. FromTextInput is set when focus is in a text
// field, in which case editing keys are left to the field.
type KeyDown struct {
	Key           Key
	FromTextInput bool
}

// ToggleMode switches between Place and Move.
type ToggleMode struct{}

// SetColor selects the color given to newly placed dancers.
type SetColor struct{ Color string }

// AddFormation clones the active formation into a new scene.
type AddFormation struct{}

// Activate requests a change to scene Index.
type Activate struct{ Index int }

// Tick advances a running transition to Now.
type Tick struct{ Now time.Time }

// Rename sets the label of the selected dancer.
type Rename struct{ Label string }

// Reconfigure replaces the stage configuration.
type Reconfigure struct{ Stage stage.Config }

// Teardown ends the session. A running transition is dropped without
// further frames and without switching scenes.
type Teardown struct{}

func (PointerDown) event()  {}
func (PointerMove) event()  {}
func (PointerUp) event()    {}
func (PointerLeave) event() {}
func (KeyDown) event()      {}
func (ToggleMode) event()   {}
func (SetColor) event()     {}
func (AddFormation) event() {}
func (Activate) event()     {}
func (Tick) event()         {}
func (Rename) event()       {}
func (Reconfigure) event()  {}
func (Teardown) event()     {}
