// Package transition interpolates dancer positions between two formations.
//
// A transition is planned once from a source and a destination formation and
// then sampled at arbitrary timestamps. The first sample fixes the start time;
// progress is the elapsed time divided by the duration, clamped to [0, 1], and
// every position moves linearly with it.
//
// Dancers present in both formations travel from their source cell to their
// destination cell. Dancers only in the source stay where they are for the
// whole transition. Dancers only in the destination appear at their
// destination cell from the first frame on.
//
// Sessions hold no clock of their own; callers pass timestamps in, so tests
// drive them with synthetic time.
package transition

import (
	"time"

	"github.com/matzehuels/formation/pkg/core/formation"
)

// DefaultDuration is the length of a scene change.
const DefaultDuration = 100 * time.Millisecond

// Point is a real-valued grid position.
type Point struct {
	Row float64 `json:"row"`
	Col float64 `json:"col"`
}

// Lerp returns the point a fraction p of the way from a to b.
func Lerp(a, b Point, p float64) Point {
	return Point{
		Row: a.Row + (b.Row-a.Row)*p,
		Col: a.Col + (b.Col-a.Col)*p,
	}
}

// Track is the planned path of one dancer.
type Track struct {
	ID    string
	Label string
	Color string
	From  Point
	To    Point
}

// Placement is a dancer drawn at a possibly fractional grid position.
type Placement struct {
	ID    string  `json:"id"`
	Label string  `json:"name"`
	Color string  `json:"color"`
	Row   float64 `json:"row"`
	Col   float64 `json:"col"`
}

// Plan pairs source and destination dancers by ID. Tracks are ordered by
// source order, followed by destination-only dancers in destination order.
// Label and color come from the source when the dancer exists there.
func Plan(src, dst []formation.Dancer) []Track {
	byID := make(map[string]formation.Dancer, len(dst))
	for _, d := range dst {
		byID[d.ID] = d
	}

	tracks := make([]Track, 0, len(src)+len(dst))
	seen := make(map[string]struct{}, len(src))
	for _, s := range src {
		seen[s.ID] = struct{}{}
		from := cell(s)
		to := from
		if d, ok := byID[s.ID]; ok {
			to = cell(d)
		}
		tracks = append(tracks, Track{ID: s.ID, Label: s.Label, Color: s.Color, From: from, To: to})
	}
	for _, d := range dst {
		if _, ok := seen[d.ID]; ok {
			continue
		}
		at := cell(d)
		tracks = append(tracks, Track{ID: d.ID, Label: d.Label, Color: d.Color, From: at, To: at})
	}
	return tracks
}

func cell(d formation.Dancer) Point {
	return Point{Row: float64(d.Row), Col: float64(d.Col)}
}

// Session is one running transition.
//
// A Session is not safe for concurrent use.
type Session struct {
	tracks   []Track
	duration time.Duration
	start    time.Time
	started  bool
	frames   int
}

// New plans a transition from src to dst. A non-positive duration selects
// DefaultDuration.
func New(src, dst []formation.Dancer, duration time.Duration) *Session {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Session{tracks: Plan(src, dst), duration: duration}
}

// Tracks returns the planned tracks.
func (s *Session) Tracks() []Track { return s.tracks }

// Duration returns the configured duration.
func (s *Session) Duration() time.Duration { return s.duration }

// Started reports whether a frame has been sampled yet.
func (s *Session) Started() bool { return s.started }

// Frames returns the number of frames sampled so far.
func (s *Session) Frames() int { return s.frames }

// Elapsed returns the time between the first sample and now.
func (s *Session) Elapsed(now time.Time) time.Duration {
	if !s.started {
		return 0
	}
	return now.Sub(s.start)
}

// Progress returns the clamped progress at now. It is 0 before the first
// sample and for timestamps earlier than the start.
func (s *Session) Progress(now time.Time) float64 {
	if !s.started {
		return 0
	}
	p := float64(now.Sub(s.start)) / float64(s.duration)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}

// IsComplete reports whether progress has reached 1 at now.
func (s *Session) IsComplete(now time.Time) bool {
	return s.Progress(now) >= 1
}

// Sample returns the interpolated snapshot at now. The first call defines the
// start of the transition.
func (s *Session) Sample(now time.Time) []Placement {
	if !s.started {
		s.start = now
		s.started = true
	}
	s.frames++
	return s.At(s.Progress(now))
}

// At returns the snapshot at progress p without touching the session clock.
func (s *Session) At(p float64) []Placement {
	out := make([]Placement, len(s.tracks))
	for i, t := range s.tracks {
		pt := Lerp(t.From, t.To, p)
		out[i] = Placement{ID: t.ID, Label: t.Label, Color: t.Color, Row: pt.Row, Col: pt.Col}
	}
	return out
}

// Still returns the placements of a formation at rest.
func Still(dancers []formation.Dancer) []Placement {
	out := make([]Placement, len(dancers))
	for i, d := range dancers {
		out[i] = Placement{ID: d.ID, Label: d.Label, Color: d.Color, Row: float64(d.Row), Col: float64(d.Col)}
	}
	return out
}
