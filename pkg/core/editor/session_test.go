package editor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/formation/pkg/core/formation"
	"github.com/matzehuels/formation/pkg/core/stage"
	ferrors "github.com/matzehuels/formation/pkg/errors"
	"github.com/matzehuels/formation/pkg/observability"
)

var t0 = time.Unix(1_700_000_000, 0)

func at(ms int) Tick { return Tick{Now: t0.Add(time.Duration(ms) * time.Millisecond)} }

// press returns a pointer-down at the center of (row, col) on a square grid.
func press(row, col int) PointerDown {
	return PointerDown{X: float64(col)*stage.CellWidth + 20, Y: float64(row)*stage.CellWidth + 20}
}

func drag(row, col int) PointerMove {
	return PointerMove{X: float64(col)*stage.CellWidth + 20, Y: float64(row)*stage.CellWidth + 20}
}

func position(t *testing.T, s *Session, id string) (float64, float64) {
	t.Helper()
	p, ok := s.View().Placement(id)
	require.True(t, ok, "dancer %s not in view", id)
	return p.Row, p.Col
}

// finish runs the pending transition to completion.
func finish(t *testing.T, s *Session, start int) {
	t.Helper()
	s.Handle(at(start))
	s.Handle(at(start + 200))
	require.False(t, s.Animating())
}

func TestPlace(t *testing.T) {
	s := New()

	effs := s.Handle(PointerDown{X: 12, Y: 12})
	require.Len(t, effs, 1)
	placed := effs[0].(Placed)
	assert.Equal(t, formation.Dancer{ID: "D1", Label: "D1", Color: "#FF595E", Row: 0, Col: 0}, placed.Dancer)

	assert.Empty(t, s.Selected(), "placing does not select")
	assert.Empty(t, s.Dragging(), "placing does not drag")
}

func TestPlaceEveryEmptyCellCreatesFreshID(t *testing.T) {
	s := New(WithStage(stage.Config{Rows: 3, Cols: 4, CellRatio: 1}))

	seen := map[string]bool{}
	for row := 0; row < 3; row++ {
		for col := 0; col < 4; col++ {
			before := len(s.Active().Dancers)
			effs := s.Handle(press(row, col))
			require.Len(t, effs, 1)
			d := effs[0].(Placed).Dancer
			assert.Equal(t, before+1, len(s.Active().Dancers))
			assert.False(t, seen[d.ID], "id %s reused", d.ID)
			seen[d.ID] = true
			assert.Equal(t, row, d.Row)
			assert.Equal(t, col, d.Col)
		}
	}
}

func TestPlaceOccupiedOrOutside(t *testing.T) {
	s := New()
	s.Handle(press(1, 1))

	assert.Empty(t, s.Handle(press(1, 1)))
	assert.Empty(t, s.Handle(PointerDown{X: -5, Y: 10}))
	assert.Empty(t, s.Handle(PointerDown{X: 600, Y: 10}), "column 15 is off a 15-column stage")
	assert.Len(t, s.Active().Dancers, 1)
}

func TestSetColor(t *testing.T) {
	s := New()

	effs := s.Handle(SetColor{Color: "#8AC926"})
	require.Len(t, effs, 1)
	assert.Equal(t, "#8AC926", s.Color())

	assert.Empty(t, s.Handle(SetColor{Color: "#123456"}), "not in palette")

	s.Handle(ToggleMode{})
	assert.Empty(t, s.Handle(SetColor{Color: "#FF595E"}), "move mode")
	assert.Equal(t, "#8AC926", s.Color())

	s.Handle(ToggleMode{})
	effs = s.Handle(press(2, 2))
	assert.Equal(t, "#8AC926", effs[0].(Placed).Dancer.Color)
}

func TestSelectAndDrag(t *testing.T) {
	s := New()
	s.Handle(press(0, 0))
	s.Handle(press(0, 2))
	s.Handle(ToggleMode{})

	effs := s.Handle(press(0, 0))
	assert.Equal(t, []Effect{Selected{ID: "D1"}}, effs)
	assert.Equal(t, "D1", s.Dragging())

	assert.Equal(t, []Effect{Moved{ID: "D1", Row: 1, Col: 0}}, s.Handle(drag(1, 0)))
	assert.Equal(t, []Effect{Moved{ID: "D1", Row: 1, Col: 1}}, s.Handle(drag(1, 1)))
	assert.Empty(t, s.Handle(drag(1, 1)), "same cell")

	// Occupied and off-grid steps are dropped.
	assert.Empty(t, s.Handle(drag(0, 2)))
	assert.Empty(t, s.Handle(PointerMove{X: -1, Y: 45}))
	assert.Empty(t, s.Handle(PointerMove{X: 45, Y: 9999}))
	row, col := position(t, s, "D1")
	assert.Equal(t, 1.0, row)
	assert.Equal(t, 1.0, col)

	assert.Equal(t, []Effect{Moved{ID: "D1", Row: 3, Col: 4}}, s.Handle(drag(3, 4)))
	assert.Equal(t, []Effect{DragEnded{ID: "D1"}}, s.Handle(PointerUp{}))
	assert.Empty(t, s.Handle(drag(5, 5)), "no drag after release")

	row, col = position(t, s, "D1")
	assert.Equal(t, 3.0, row)
	assert.Equal(t, 4.0, col)
	assert.Equal(t, "D1", s.Selected(), "selection survives release")
}

func TestPointerLeaveEndsDrag(t *testing.T) {
	s := New()
	s.Handle(press(0, 0))
	s.Handle(ToggleMode{})
	s.Handle(press(0, 0))

	s.Handle(PointerLeave{})
	assert.Empty(t, s.Dragging())
	assert.Empty(t, s.Handle(drag(4, 4)))
}

func TestMoveModeEmptyCellClearsSelection(t *testing.T) {
	s := New()
	s.Handle(press(0, 0))
	s.Handle(ToggleMode{})
	s.Handle(press(0, 0))
	s.Handle(PointerUp{})

	assert.Equal(t, []Effect{Selected{}}, s.Handle(press(4, 4)))
	assert.Empty(t, s.Selected())
	assert.Empty(t, s.Handle(press(4, 4)), "nothing to clear")
}

func TestMoveModePressOutsideStage(t *testing.T) {
	s := New()
	s.Handle(press(9, 14))
	s.Handle(press(0, 0))
	s.Handle(ToggleMode{})
	s.Handle(press(0, 0))
	s.Handle(PointerUp{})
	require.Equal(t, "D2", s.Selected())

	assert.Empty(t, s.Handle(PointerDown{X: -5, Y: 20}), "press left of the canvas")
	assert.Equal(t, "D2", s.Selected())

	// D1 sits outside the shrunk stage and cannot be grabbed there.
	s.Handle(Reconfigure{Stage: stage.Config{Rows: 5, Cols: 5, CellRatio: 1}})
	assert.Empty(t, s.Handle(press(9, 14)))
	assert.Equal(t, "D2", s.Selected())
	assert.Empty(t, s.Dragging())
}

func TestToggleModeKeepsSelection(t *testing.T) {
	s := New()
	s.Handle(press(0, 0))
	s.Handle(ToggleMode{})
	s.Handle(press(0, 0))

	assert.Equal(t, []Effect{ModeChanged{Mode: Place}}, s.Handle(ToggleMode{}))
	assert.Equal(t, "D1", s.Selected())
	assert.Equal(t, "D1", s.Dragging())
}

func TestDelete(t *testing.T) {
	s := New()
	s.Handle(press(0, 0))
	s.Handle(press(1, 1))

	assert.Empty(t, s.Handle(KeyDown{Key: KeyDelete}), "no selection")

	s.Handle(ToggleMode{})
	s.Handle(press(1, 1))
	s.Handle(PointerUp{})

	assert.Empty(t, s.Handle(KeyDown{Key: KeyBackspace, FromTextInput: true}), "text input keeps the key")
	assert.Empty(t, s.Handle(KeyDown{Key: "x"}))

	effs := s.Handle(KeyDown{Key: KeyBackspace})
	assert.Equal(t, []Effect{Removed{ID: "D2"}, Selected{}}, effs)
	assert.Empty(t, s.Selected())
	assert.Len(t, s.Active().Dancers, 1)

	s.Handle(ToggleMode{})
	effs = s.Handle(press(2, 2))
	assert.Equal(t, "D3", effs[0].(Placed).Dancer.ID, "deleted ids are not reused")
}

func TestRename(t *testing.T) {
	s := New()
	s.Handle(press(0, 0))

	assert.Empty(t, s.Handle(Rename{Label: "Ann"}), "no selection")

	s.Handle(ToggleMode{})
	s.Handle(press(0, 0))

	effs := s.Handle(Rename{Label: "  Ann  "})
	assert.Equal(t, []Effect{Renamed{ID: "D1", Label: "Ann"}}, effs)

	effs = s.Handle(Rename{Label: "TooLongName"})
	require.Len(t, effs, 1)
	inv := effs[0].(Invalid)
	assert.True(t, ferrors.Is(inv.Err, ferrors.ErrCodeInvalidLabel))

	p, _ := s.View().Placement("D1")
	assert.Equal(t, "Ann", p.Label)
}

func TestReconfigure(t *testing.T) {
	s := New()
	s.Handle(press(9, 14))

	small := stage.Config{Rows: 5, Cols: 5, CellRatio: 2}
	assert.Equal(t, []Effect{StageChanged{Stage: small}}, s.Handle(Reconfigure{Stage: small}))
	assert.Equal(t, small, s.Stage())

	// Shrinking does not clamp existing dancers.
	row, col := position(t, s, "D1")
	assert.Equal(t, 9.0, row)
	assert.Equal(t, 14.0, col)

	effs := s.Handle(Reconfigure{Stage: stage.Config{Rows: 0, Cols: 5, CellRatio: 1}})
	require.Len(t, effs, 1)
	assert.True(t, ferrors.Is(effs[0].(Invalid).Err, ferrors.ErrCodeInvalidStage))
	assert.Equal(t, small, s.Stage())
}

func TestAddFormation(t *testing.T) {
	s := New()
	s.Handle(press(0, 0))
	s.Handle(SetColor{Color: "#6A4C93"})
	s.Handle(press(2, 3))
	s.Handle(ToggleMode{})
	s.Handle(press(2, 3))

	before := s.Active()
	effs := s.Handle(AddFormation{})
	assert.Equal(t, []Effect{Selected{}, FormationAdded{Index: 1, Name: "Scene 2"}}, effs)
	assert.Equal(t, 1, s.Current())
	assert.Empty(t, s.Selected())
	assert.Equal(t, before.Dancers, s.Active().Dancers)

	// Later edits stay in their own formation.
	s.Handle(press(0, 0))
	s.Handle(drag(7, 7))
	s.Handle(PointerUp{})
	tl := s.Timeline()
	d, _ := tl.Formations[0].Get("D1")
	assert.Equal(t, 0, d.Row)
	d, _ = tl.Formations[1].Get("D1")
	assert.Equal(t, 7, d.Row)
}

func TestActivateNoops(t *testing.T) {
	s := New()
	s.Handle(AddFormation{})

	assert.Empty(t, s.Handle(Activate{Index: 1}), "already current")
	assert.Empty(t, s.Handle(Activate{Index: 2}), "out of range")
	assert.Empty(t, s.Handle(Activate{Index: -1}), "out of range")
	assert.False(t, s.Animating())
}

func TestActivateSwitchesOnlyOnCompletion(t *testing.T) {
	s := New()
	s.Handle(AddFormation{})

	assert.Equal(t, []Effect{TransitionStarted{From: 1, To: 0}}, s.Handle(Activate{Index: 0}))
	assert.True(t, s.Animating())
	assert.Equal(t, 1, s.Current())

	assert.Equal(t, []Effect{TransitionFrame{Progress: 0}}, s.Handle(at(0)))
	assert.Equal(t, 1, s.Current())

	effs := s.Handle(at(100))
	assert.Equal(t, []Effect{TransitionFinished{Index: 0}}, effs)
	assert.Equal(t, 0, s.Current())
	assert.False(t, s.Animating())
}

func TestLockedDuringTransition(t *testing.T) {
	s := New()
	s.Handle(press(0, 0))
	s.Handle(AddFormation{})
	s.Handle(Activate{Index: 0})
	s.Handle(at(0))

	blocked := []Event{
		press(3, 3),
		drag(3, 3),
		PointerUp{},
		ToggleMode{},
		SetColor{Color: "#1982C4"},
		AddFormation{},
		Activate{Index: 1},
		KeyDown{Key: KeyDelete},
		Rename{Label: "x"},
		Reconfigure{Stage: stage.Config{Rows: 3, Cols: 3, CellRatio: 1}},
	}
	for _, ev := range blocked {
		assert.Empty(t, s.Handle(ev), "%T", ev)
	}
	assert.Equal(t, Place, s.Mode())
	assert.Equal(t, stage.Default(), s.Stage())
	assert.Len(t, s.View().Scenes, 2)
	assert.Len(t, s.Timeline().Formations[1].Dancers, 1)

	s.Handle(at(100))
	assert.False(t, s.Animating())
	assert.NotEmpty(t, s.Handle(ToggleMode{}), "unlocked after completion")
}

func TestSelectionClearedOnSceneChange(t *testing.T) {
	s := New()
	s.Handle(press(0, 0))
	s.Handle(AddFormation{})
	s.Handle(ToggleMode{})
	s.Handle(press(0, 0))
	require.Equal(t, "D1", s.Selected())

	effs := s.Handle(Activate{Index: 0})
	assert.Equal(t, []Effect{Selected{}, TransitionStarted{From: 1, To: 0}}, effs)
	assert.Empty(t, s.Selected())
	assert.Empty(t, s.Dragging())
}

func TestTeardownMidTransition(t *testing.T) {
	s := New()
	s.Handle(AddFormation{})
	s.Handle(Activate{Index: 0})
	s.Handle(at(0))

	assert.Empty(t, s.Handle(Teardown{}))
	assert.True(t, s.Closed())
	assert.False(t, s.Animating())
	assert.Empty(t, s.Handle(at(50)), "no frames after teardown")
	assert.Empty(t, s.Handle(at(500)))
	assert.Equal(t, 1, s.Current(), "scene change not finalized")
	assert.Empty(t, s.Handle(press(0, 0)))
}

func TestConcreteScenario(t *testing.T) {
	s := New(WithStage(stage.Config{Rows: 10, Cols: 15, CellRatio: 1}))

	effs := s.Handle(PointerDown{X: 12, Y: 12})
	require.Len(t, effs, 1)
	id := effs[0].(Placed).Dancer.ID
	row, col := position(t, s, id)
	assert.Equal(t, 0.0, row)
	assert.Equal(t, 0.0, col)

	// Clone to Scene 2 and move the dancer there.
	s.Handle(AddFormation{})
	s.Handle(ToggleMode{})
	s.Handle(PointerDown{X: 12, Y: 12})
	s.Handle(drag(5, 5))
	s.Handle(PointerUp{})
	row, col = position(t, s, id)
	require.Equal(t, 5.0, row)
	require.Equal(t, 5.0, col)

	// Back to Scene 1: untouched.
	s.Handle(Activate{Index: 0})
	finish(t, s, 1000)
	assert.Equal(t, 0, s.Current())
	row, col = position(t, s, id)
	assert.Equal(t, 0.0, row)
	assert.Equal(t, 0.0, col)

	// To Scene 2, sampling every 10ms.
	s.Handle(Activate{Index: 1})
	prevRow, prevCol := 0.0, 0.0
	for ms := 2000; s.Animating(); ms += 10 {
		s.Handle(at(ms))
		if !s.Animating() {
			break
		}
		row, col := position(t, s, id)
		assert.GreaterOrEqual(t, row, prevRow)
		assert.GreaterOrEqual(t, col, prevCol)
		assert.True(t, row >= 0 && row <= 5, "row %v out of range", row)
		assert.True(t, col >= 0 && col <= 5, "col %v out of range", col)
		prevRow, prevCol = row, col
	}
	assert.Equal(t, 1, s.Current())
	row, col = position(t, s, id)
	assert.Equal(t, 5.0, row)
	assert.Equal(t, 5.0, col)
}

func TestViewDuringTransition(t *testing.T) {
	s := New()
	s.Handle(press(0, 0))
	s.Handle(AddFormation{})
	s.Handle(press(4, 4))
	s.Handle(ToggleMode{})
	s.Handle(press(0, 0))
	s.Handle(drag(0, 8))
	s.Handle(PointerUp{})

	s.Handle(Activate{Index: 0})
	v := s.View()
	assert.True(t, v.Animating)
	assert.Equal(t, 1, v.Current)
	assert.Equal(t, 0, v.Target)
	require.Len(t, v.Dancers, 2, "frame before first tick shows the source")

	s.Handle(at(0))
	s.Handle(at(50))
	v = s.View()
	assert.InDelta(t, 0.5, v.Progress, 1e-9)
	p, _ := v.Placement("D1")
	assert.InDelta(t, 4.0, p.Col, 1e-9)
	p, _ = v.Placement("D2")
	assert.Equal(t, 4.0, p.Row, "dancer missing from the destination holds still")
}

func TestWithTimeline(t *testing.T) {
	tl := &formation.Timeline{
		Formations: []formation.Formation{
			{ID: "a", Name: "Scene 1", Dancers: []formation.Dancer{{ID: "D7", Label: "D7", Row: 1, Col: 1}}},
		},
	}
	s := New(WithTimeline(tl), WithColor("#FFCA3A"))

	assert.Equal(t, "#FFCA3A", s.Color())
	effs := s.Handle(press(2, 2))
	assert.Equal(t, "D8", effs[0].(Placed).Dancer.ID, "counter continues past loaded ids")
}

func TestWithTimelineCurrentOutOfRange(t *testing.T) {
	for _, current := range []int{-1, 2, 99} {
		tl := &formation.Timeline{
			Formations: []formation.Formation{
				{ID: "a", Name: "Scene 1"},
				{ID: "b", Name: "Scene 2", Dancers: []formation.Dancer{{ID: "D1", Label: "D1", Row: 3, Col: 3}}},
			},
			Current: current,
		}
		s := New(WithTimeline(tl))

		assert.Equal(t, 0, s.Current(), "current %d", current)
		assert.Equal(t, "Scene 1", s.Active().Name)
		assert.NotPanics(t, func() { s.View() })
	}
}

type recordingHooks struct {
	observability.NoopEditorHooks
	kinds    []string
	started  int
	canceled bool
}

func (r *recordingHooks) OnEffect(_ context.Context, kind, _ string) { r.kinds = append(r.kinds, kind) }
func (r *recordingHooks) OnTransitionStart(context.Context, int, int, int) {
	r.started++
}
func (r *recordingHooks) OnTransitionComplete(_ context.Context, _, _ int, _ time.Duration, canceled bool) {
	r.canceled = canceled
}

func TestHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetEditorHooks(hooks)
	defer observability.Reset()

	s := New()
	s.Handle(press(0, 0))
	s.Handle(AddFormation{})
	s.Handle(Activate{Index: 0})
	s.Handle(at(0))
	s.Handle(at(40))
	s.Handle(Teardown{})

	assert.Equal(t, []string{"placed", "formation-added", "transition-started"}, hooks.kinds)
	assert.Equal(t, 1, hooks.started)
	assert.True(t, hooks.canceled)
}
