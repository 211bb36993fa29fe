package formation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Timeline is the ordered list of formations in a project plus the index of
// the active one. It always holds at least one formation and Current is
// always a valid index.
type Timeline struct {
	Formations []Formation
	Current    int

	// NextID is the numeric suffix of the next dancer ID. It is shared by
	// all formations and only ever grows, so IDs are never reused.
	NextID int
}

// SceneRef identifies a formation in listings.
type SceneRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewTimeline returns a timeline holding one empty formation named "Scene 1".
func NewTimeline() *Timeline {
	return &Timeline{
		Formations: []Formation{{ID: newFormationID(), Name: SceneName(1)}},
		NextID:     1,
	}
}

// SceneName returns the display name of the n-th scene (1-based).
func SceneName(n int) string {
	return fmt.Sprintf("Scene %d", n)
}

func newFormationID() string {
	return uuid.NewString()
}

// Len returns the number of formations.
func (t *Timeline) Len() int { return len(t.Formations) }

// Active returns the formation being edited.
func (t *Timeline) Active() *Formation {
	return &t.Formations[t.Current]
}

// At returns the formation at index i.
func (t *Timeline) At(i int) (*Formation, bool) {
	if i < 0 || i >= len(t.Formations) {
		return nil, false
	}
	return &t.Formations[i], true
}

// AddFromActive appends a deep copy of the active formation, named after its
// position, makes it active and returns its index.
func (t *Timeline) AddFromActive() int {
	f := t.Active().Clone(newFormationID(), SceneName(len(t.Formations)+1))
	t.Formations = append(t.Formations, f)
	t.Current = len(t.Formations) - 1
	return t.Current
}

// SetCurrent makes formation i active. It reports false for out-of-range
// indices.
func (t *Timeline) SetCurrent(i int) bool {
	if i < 0 || i >= len(t.Formations) {
		return false
	}
	t.Current = i
	return true
}

// NewDancerID issues the next dancer ID ("D1", "D2", ...).
func (t *Timeline) NewDancerID() string {
	if t.NextID < 1 {
		t.NextID = 1
	}
	id := "D" + strconv.Itoa(t.NextID)
	t.NextID++
	return id
}

// Scenes lists the formations in order.
func (t *Timeline) Scenes() []SceneRef {
	refs := make([]SceneRef, len(t.Formations))
	for i, f := range t.Formations {
		refs[i] = SceneRef{ID: f.ID, Name: f.Name}
	}
	return refs
}

// Clone returns a deep copy of the timeline.
func (t *Timeline) Clone() *Timeline {
	c := &Timeline{Current: t.Current, NextID: t.NextID}
	c.Formations = make([]Formation, len(t.Formations))
	for i := range t.Formations {
		c.Formations[i] = t.Formations[i].Clone(t.Formations[i].ID, t.Formations[i].Name)
	}
	return c
}

// MinNextID returns the smallest counter value that cannot collide with any
// "D<n>" dancer ID present in the timeline.
func (t *Timeline) MinNextID() int {
	next := 1
	for _, f := range t.Formations {
		for _, d := range f.Dancers {
			n, ok := strings.CutPrefix(d.ID, "D")
			if !ok {
				continue
			}
			if v, err := strconv.Atoi(n); err == nil && v >= next {
				next = v + 1
			}
		}
	}
	return next
}
