package editor

import (
	"github.com/matzehuels/formation/pkg/core/formation"
	"github.com/matzehuels/formation/pkg/core/stage"
	"github.com/matzehuels/formation/pkg/core/transition"
)

// View is everything a surface needs to draw one frame.
type View struct {
	Stage     stage.Config
	Dancers   []transition.Placement
	Mode      Mode
	Selected  string
	Animating bool
	Progress  float64
	Scenes    []formation.SceneRef
	Current   int
	Target    int
	Color     string
	Palette   []string
}

// View returns the current render snapshot. While a transition runs the
// dancers are the most recently sampled frame; otherwise they are the active
// formation at rest.
func (s *Session) View() View {
	v := View{
		Stage:     s.stage,
		Mode:      s.mode,
		Selected:  s.selected,
		Animating: s.anim != nil,
		Scenes:    s.timeline.Scenes(),
		Current:   s.timeline.Current,
		Target:    s.timeline.Current,
		Color:     s.color,
		Palette:   append([]string(nil), s.palette...),
	}
	if s.anim != nil {
		v.Dancers = append([]transition.Placement(nil), s.frame...)
		v.Progress = s.progress
		v.Target = s.target
	} else {
		v.Dancers = transition.Still(s.timeline.Active().Dancers)
	}
	return v
}

// Placement returns the placement of dancer id in v.
func (v View) Placement(id string) (transition.Placement, bool) {
	for _, p := range v.Dancers {
		if p.ID == id {
			return p, true
		}
	}
	return transition.Placement{}, false
}
