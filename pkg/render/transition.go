package render

import (
	"math"
	"time"

	"github.com/matzehuels/formation/pkg/core/formation"
	"github.com/matzehuels/formation/pkg/core/stage"
	"github.com/matzehuels/formation/pkg/core/transition"
)

// DefaultFPS is the frame rate of rendered transitions.
const DefaultFPS = 60

// epoch is the synthetic clock origin for offline rendering.
var epoch = time.Unix(0, 0)

// FrameTimes returns the offsets at which a transition of the given duration
// is sampled: evenly spaced at roughly 1/fps, starting at zero and ending at
// exactly duration.
func FrameTimes(duration time.Duration, fps int) []time.Duration {
	if duration <= 0 {
		duration = transition.DefaultDuration
	}
	if fps <= 0 {
		fps = DefaultFPS
	}
	steps := int(math.Round(duration.Seconds() * float64(fps)))
	if steps < 1 {
		steps = 1
	}
	out := make([]time.Duration, steps+1)
	for i := range out {
		out[i] = duration * time.Duration(i) / time.Duration(steps)
	}
	return out
}

// Snapshots samples the transition from src to dst at every frame time.
func Snapshots(src, dst []formation.Dancer, duration time.Duration, fps int) [][]transition.Placement {
	s := transition.New(src, dst, duration)
	times := FrameTimes(s.Duration(), fps)
	out := make([][]transition.Placement, len(times))
	for i, t := range times {
		out[i] = s.Sample(epoch.Add(t))
	}
	return out
}

// RenderTransition renders every frame of the scene change from src to dst.
func RenderTransition(cfg stage.Config, src, dst []formation.Dancer, duration time.Duration, fps int, opts ...SVGOption) [][]byte {
	snaps := Snapshots(src, dst, duration, fps)
	frames := make([][]byte, len(snaps))
	for i, snap := range snaps {
		frames[i] = RenderSVG(cfg, snap, opts...)
	}
	return frames
}
