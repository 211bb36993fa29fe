package render

import (
	"bytes"
	"fmt"
	"html"
	"math"

	"github.com/matzehuels/formation/pkg/core/stage"
	"github.com/matzehuels/formation/pkg/core/transition"
)

// Colors used by the SVG renderer.
const (
	backgroundColor = "#FFFFFF"
	gridColor       = "#D0D0D0"
	outlineColor    = "#222222"
	labelColor      = "#FFFFFF"
	fallbackColor   = "#888888"
)

// radiusFactor sizes dancer circles relative to the smaller cell side.
const radiusFactor = 0.35

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	cellWidth float64
	showGrid  bool
	title     string
	selected  string
}

// WithCellWidth sets the pixel width of one cell (default 40).
func WithCellWidth(w float64) SVGOption {
	return func(r *svgRenderer) {
		if w > 0 {
			r.cellWidth = w
		}
	}
}

// WithoutGrid omits the grid lines.
func WithoutGrid() SVGOption { return func(r *svgRenderer) { r.showGrid = false } }

// WithGrid sets whether grid lines are drawn.
func WithGrid(show bool) SVGOption { return func(r *svgRenderer) { r.showGrid = show } }

// WithTitle adds a <title> element.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// WithSelected outlines the dancer with the given ID.
func WithSelected(id string) SVGOption { return func(r *svgRenderer) { r.selected = id } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{cellWidth: stage.CellWidth, showGrid: true}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG draws dancers on the stage described by cfg.
func RenderSVG(cfg stage.Config, dancers []transition.Placement, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	cw := r.cellWidth
	ch := cw / cfg.CellRatio
	width := float64(cfg.Cols) * cw
	height := float64(cfg.Rows) * ch

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", html.EscapeString(r.title))
	}
	fmt.Fprintf(&buf, `  <rect class="stage" x="0" y="0" width="%.1f" height="%.1f" fill="%s"/>`+"\n", width, height, backgroundColor)

	if r.showGrid {
		renderGrid(&buf, cfg, cw, ch)
	}

	radius := math.Min(cw, ch) * radiusFactor
	for _, d := range dancers {
		renderDancer(&buf, d, cw, ch, radius, d.ID == r.selected && r.selected != "")
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderGrid(buf *bytes.Buffer, cfg stage.Config, cw, ch float64) {
	width := float64(cfg.Cols) * cw
	height := float64(cfg.Rows) * ch

	fmt.Fprintf(buf, `  <g class="grid" stroke="%s" stroke-width="1">`+"\n", gridColor)
	for c := 0; c <= cfg.Cols; c++ {
		x := float64(c) * cw
		fmt.Fprintf(buf, `    <line x1="%.1f" y1="0" x2="%.1f" y2="%.1f"/>`+"\n", x, x, height)
	}
	for row := 0; row <= cfg.Rows; row++ {
		y := float64(row) * ch
		fmt.Fprintf(buf, `    <line x1="0" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", y, width, y)
	}
	buf.WriteString("  </g>\n")
}

func renderDancer(buf *bytes.Buffer, d transition.Placement, cw, ch, radius float64, selected bool) {
	cx := d.Col*cw + cw/2
	cy := d.Row*ch + ch/2
	fill := d.Color
	if fill == "" {
		fill = fallbackColor
	}

	fmt.Fprintf(buf, `  <g class="dancer" id="dancer-%s">`+"\n", html.EscapeString(d.ID))
	if selected {
		fmt.Fprintf(buf, `    <circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" stroke="%s" stroke-width="3"/>`+"\n",
			cx, cy, radius, fill, outlineColor)
	} else {
		fmt.Fprintf(buf, `    <circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`+"\n", cx, cy, radius, fill)
	}
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="central" font-family="sans-serif" font-size="%.1f" fill="%s">%s</text>`+"\n",
		cx, cy, radius*0.9, labelColor, html.EscapeString(Initials(d.Label)))
	buf.WriteString("  </g>\n")
}

// Initials returns the first two characters of a label, as drawn inside a
// dancer's circle.
func Initials(label string) string {
	r := []rune(label)
	if len(r) > 2 {
		r = r[:2]
	}
	return string(r)
}
