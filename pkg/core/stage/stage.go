// Package stage models the rectangular grid dancers are placed on and maps
// canvas pixel coordinates to grid cells and back.
//
// A stage is described by its row and column count and a cell ratio. Every
// cell is [CellWidth] pixels wide; its height is CellWidth / CellRatio, so a
// ratio above 1 produces flat cells and a ratio below 1 produces tall ones.
//
// All functions in this package are pure.
package stage

import (
	"math"

	ferrors "github.com/matzehuels/formation/pkg/errors"
)

// CellWidth is the fixed width of one grid cell in canvas pixels.
const CellWidth = 40.0

// Bounds enforced on a stage configuration.
const (
	MaxRows  = 50
	MaxCols  = 50
	MaxRatio = 5.0
)

// Config is the grid configuration of a project.
type Config struct {
	Rows      int     `json:"rows" yaml:"rows" toml:"rows"`
	Cols      int     `json:"cols" yaml:"cols" toml:"cols"`
	CellRatio float64 `json:"cellRatio" yaml:"cellRatio" toml:"cell_ratio"`
}

// Default returns the stage a new project starts with: 10 rows, 15 columns,
// square cells.
func Default() Config {
	return Config{Rows: 10, Cols: 15, CellRatio: 1}
}

// Validate checks the configuration against the bounds the editor accepts:
// rows and cols in [1, 50], ratio in (0, 5].
func (c Config) Validate() error {
	return ferrors.ValidateStage(c.Rows, c.Cols, c.CellRatio)
}

// CellSize returns the width and height of a single cell in pixels.
func (c Config) CellSize() (w, h float64) {
	return CellWidth, CellWidth / c.CellRatio
}

// CanvasSize returns the pixel dimensions of the whole grid.
func (c Config) CanvasSize() (w, h float64) {
	cw, ch := c.CellSize()
	return float64(c.Cols) * cw, float64(c.Rows) * ch
}

// PixelToCell converts a canvas-relative pixel position into a cell index by
// floor division. The result is not clamped: positions left of or above the
// canvas yield negative indices and positions past its far edges yield
// indices >= Rows/Cols. Callers check [Config.Contains] before using it.
func (c Config) PixelToCell(x, y float64) (row, col int) {
	w, h := c.CellSize()
	return int(math.Floor(y / h)), int(math.Floor(x / w))
}

// Contains reports whether (row, col) lies inside the grid.
func (c Config) Contains(row, col int) bool {
	return row >= 0 && row < c.Rows && col >= 0 && col < c.Cols
}

// CellCenter returns the pixel center of a cell. Row and col are real-valued
// so interpolated positions can be drawn between cells.
func (c Config) CellCenter(row, col float64) (x, y float64) {
	w, h := c.CellSize()
	return col*w + w/2, row*h + h/2
}

// CellSize is the free-function form of [Config.CellSize].
func CellSize(c Config) (w, h float64) { return c.CellSize() }

// PixelToCell is the free-function form of [Config.PixelToCell].
func PixelToCell(x, y float64, c Config) (row, col int) { return c.PixelToCell(x, y) }
