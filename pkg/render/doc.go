// Package render draws formations as SVG.
//
// # Overview
//
// [RenderSVG] draws one snapshot: the stage background, grid lines, and one
// circle per dancer at its (possibly fractional) cell center, labelled with
// the first two characters of the dancer's label. The selected dancer gets a
// thick outline.
//
//	svg := render.RenderSVG(cfg, transition.Still(f.Dancers), render.WithTitle(f.Name))
//
// [RenderTransition] samples a scene change at a fixed frame rate using
// synthetic timestamps and returns one SVG per frame, ending exactly at the
// destination formation.
//
// # Caching
//
// [Runner] wraps both with the artifact cache and picks SVG or PNG output. Keys are derived from a hash
// of the project plus the render options, so a cached artifact is reused
// only while neither changes.
//
// # Format Conversion
//
// [RenderPNG] rasterizes the same picture natively, with antialiased discs
// and Go Regular labels. [ToPDF] converts an SVG to PDF using the external
// rsvg-convert tool (from librsvg).
package render
