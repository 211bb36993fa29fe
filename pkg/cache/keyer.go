package cache

import "time"

// RenderKeyOpts are the render options that change the produced bytes.
type RenderKeyOpts struct {
	Format    string        `json:"format,omitempty"`
	CellWidth float64       `json:"cell_width"`
	ShowGrid  bool          `json:"show_grid"`
	Title     string        `json:"title,omitempty"`
	FPS       int           `json:"fps,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// Keyer builds cache keys for rendered artifacts.
type Keyer interface {
	// SceneKey identifies the SVG of one scene.
	SceneKey(projectHash string, scene int, opts RenderKeyOpts) string

	// FrameKey identifies one frame of the transition between two scenes.
	FrameKey(projectHash string, from, to, frame int, opts RenderKeyOpts) string
}

// DefaultKeyer derives keys by hashing all components.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SceneKey returns "scene:<hash>".
func (DefaultKeyer) SceneKey(projectHash string, scene int, opts RenderKeyOpts) string {
	return hashKey("scene", projectHash, scene, opts)
}

// FrameKey returns "frame:<hash>".
func (DefaultKeyer) FrameKey(projectHash string, from, to, frame int, opts RenderKeyOpts) string {
	return hashKey("frame", projectHash, from, to, frame, opts)
}
