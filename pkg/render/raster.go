package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strconv"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/matzehuels/formation/pkg/core/stage"
	"github.com/matzehuels/formation/pkg/core/transition"
)

// kappa places cubic control points so four curves approximate a circle.
const kappa = 0.5522847498

// outlineWidth is the selection ring thickness in pixels.
const outlineWidth = 3

var regularFont = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// RenderPNG rasterizes the same picture as RenderSVG without any external
// tool. Title options are ignored.
func RenderPNG(cfg stage.Config, dancers []transition.Placement, opts ...SVGOption) ([]byte, error) {
	img, err := Rasterize(cfg, dancers, opts...)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Rasterize draws dancers on the stage into a new RGBA image.
func Rasterize(cfg stage.Config, dancers []transition.Placement, opts ...SVGOption) (*image.RGBA, error) {
	r := newSVGRenderer(opts...)

	cw := r.cellWidth
	ch := cw / cfg.CellRatio
	width := int(math.Round(float64(cfg.Cols) * cw))
	height := int(math.Round(float64(cfg.Rows) * ch))

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(mustHex(backgroundColor)), image.Point{}, draw.Src)

	if r.showGrid {
		grid := image.NewUniform(mustHex(gridColor))
		for c := 0; c <= cfg.Cols; c++ {
			x := int(math.Round(float64(c) * cw))
			draw.Draw(img, image.Rect(x, 0, x+1, height), grid, image.Point{}, draw.Src)
		}
		for row := 0; row <= cfg.Rows; row++ {
			y := int(math.Round(float64(row) * ch))
			draw.Draw(img, image.Rect(0, y, width, y+1), grid, image.Point{}, draw.Src)
		}
	}

	radius := math.Min(cw, ch) * radiusFactor
	f, err := regularFont()
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    radius * 0.9,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("load font face: %w", err)
	}
	defer face.Close()

	for _, d := range dancers {
		cx := d.Col*cw + cw/2
		cy := d.Row*ch + ch/2
		fill, ok := parseHex(d.Color)
		if !ok {
			fill = mustHex(fallbackColor)
		}
		if r.selected != "" && d.ID == r.selected {
			fillCircle(img, cx, cy, radius+outlineWidth/2.0, mustHex(outlineColor))
			fillCircle(img, cx, cy, radius-outlineWidth/2.0, fill)
		} else {
			fillCircle(img, cx, cy, radius, fill)
		}
		drawLabel(img, face, Initials(d.Label), cx, cy)
	}
	return img, nil
}

// fillCircle paints an antialiased disc. The disc is rasterized into a mask
// covering only its bounding box, so discs past the image edge are clipped.
func fillCircle(dst *image.RGBA, cx, cy, radius float64, c color.Color) {
	if radius <= 0 {
		return
	}
	box := image.Rect(
		int(math.Floor(cx-radius)), int(math.Floor(cy-radius)),
		int(math.Ceil(cx+radius)), int(math.Ceil(cy+radius)),
	)
	if !box.Overlaps(dst.Bounds()) {
		return
	}
	w, h := box.Dx(), box.Dy()
	ox := float32(cx) - float32(box.Min.X)
	oy := float32(cy) - float32(box.Min.Y)
	r := float32(radius)
	k := float32(kappa) * r

	z := vector.NewRasterizer(w, h)
	z.MoveTo(ox+r, oy)
	z.CubeTo(ox+r, oy+k, ox+k, oy+r, ox, oy+r)
	z.CubeTo(ox-k, oy+r, ox-r, oy+k, ox-r, oy)
	z.CubeTo(ox-r, oy-k, ox-k, oy-r, ox, oy-r)
	z.CubeTo(ox+k, oy-r, ox+r, oy-k, ox+r, oy)
	z.ClosePath()

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	draw.DrawMask(dst, box, image.NewUniform(c), image.Point{}, mask, image.Point{}, draw.Over)
}

func drawLabel(dst *image.RGBA, face font.Face, text string, cx, cy float64) {
	if text == "" {
		return
	}
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(mustHex(labelColor)),
		Face: face,
	}
	m := face.Metrics()
	adv := float64(d.MeasureString(text)) / 64
	baseline := cy + (float64(m.Ascent)-float64(m.Descent))/64/2
	d.Dot = fixed.Point26_6{
		X: fixed.Int26_6(math.Round((cx - adv/2) * 64)),
		Y: fixed.Int26_6(math.Round(baseline * 64)),
	}
	d.DrawString(text)
}

// parseHex reads a #RRGGBB color.
func parseHex(s string) (color.RGBA, bool) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}

func mustHex(s string) color.RGBA {
	c, ok := parseHex(s)
	if !ok {
		panic("render: bad color constant " + s)
	}
	return c
}
