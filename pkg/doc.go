// Package pkg provides the core libraries for Formation, a stage formation
// editor for choreographers.
//
// # Overview
//
// A project is a rectangular stage grid plus an ordered list of scenes
// (formations). Each scene places dancers on distinct cells; switching
// scenes animates every dancer from its old cell to its new one. The pkg
// directory is organized into these areas:
//
//  1. [core] - Domain logic (stage, formations, transitions, editor session)
//  2. [io] - Project files in JSON and YAML
//  3. [render] - SVG and PNG snapshots and transition frames
//  4. [cache] - Rendered artifact caching (file, Redis, null)
//  5. [config] and [prefs] - User configuration and editor preferences
//
// # Architecture
//
// The typical data flow through Formation:
//
//	Pointer / key events (terminal, window, CLI)
//	         ↓
//	    [core/editor] Session.Handle → effects
//	         ↓
//	    [core/formation] Timeline (scenes, dancers, IDs)
//	         ↓
//	    [core/transition] interpolated placements
//	         ↓
//	    [render] SVG / PNG, or a live surface
//
// # Quick Start
//
// Drive an editor session and render the result:
//
//	import (
//	    "github.com/matzehuels/formation/pkg/core/editor"
//	    "github.com/matzehuels/formation/pkg/core/transition"
//	    "github.com/matzehuels/formation/pkg/render"
//	)
//
//	s := editor.New()
//	s.Handle(editor.PointerDown{X: 130, Y: 90}) // places D1 on row 2, col 3
//	s.Handle(editor.PointerUp{})
//
//	f := s.Active()
//	svg := render.RenderSVG(s.Stage(), transition.Still(f.Dancers))
//
// # Main Packages
//
// [core/stage] - Grid dimensions, cell geometry and pixel-to-cell mapping.
//
// [core/formation] - Formations, dancers, the scene timeline and the color
// palette.
//
// [core/transition] - Time-based linear interpolation between two
// formations.
//
// [core/editor] - The interaction state machine shared by every front end.
//
// [errors] - Error codes, user messages and HTTP status mapping.
//
// [observability] - Hooks for render, cache and HTTP events.
//
// [buildinfo] - Version stamped into saved projects.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/core/...               # Domain logic only
//
// [core]: https://pkg.go.dev/github.com/matzehuels/formation/pkg/core
// [core/stage]: https://pkg.go.dev/github.com/matzehuels/formation/pkg/core/stage
// [core/formation]: https://pkg.go.dev/github.com/matzehuels/formation/pkg/core/formation
// [core/transition]: https://pkg.go.dev/github.com/matzehuels/formation/pkg/core/transition
// [core/editor]: https://pkg.go.dev/github.com/matzehuels/formation/pkg/core/editor
// [io]: https://pkg.go.dev/github.com/matzehuels/formation/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/formation/pkg/render
// [cache]: https://pkg.go.dev/github.com/matzehuels/formation/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/formation/pkg/config
// [prefs]: https://pkg.go.dev/github.com/matzehuels/formation/pkg/prefs
// [errors]: https://pkg.go.dev/github.com/matzehuels/formation/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/formation/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/formation/pkg/buildinfo
package pkg
