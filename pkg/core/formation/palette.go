package formation

// DefaultPalette is the set of colors new dancers can be given.
var DefaultPalette = []string{
	"#FF595E",
	"#1982C4",
	"#6A4C93",
	"#8AC926",
	"#FFCA3A",
}

// Palette is an ordered list of "#RRGGBB" colors.
type Palette []string

// Contains reports whether c is one of the palette's colors.
func (p Palette) Contains(c string) bool {
	for _, pc := range p {
		if pc == c {
			return true
		}
	}
	return false
}

// Next returns the color after c, wrapping around. Unknown colors map to the
// first entry.
func (p Palette) Next(c string) string {
	if len(p) == 0 {
		return c
	}
	for i, pc := range p {
		if pc == c {
			return p[(i+1)%len(p)]
		}
	}
	return p[0]
}
