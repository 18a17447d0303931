package analysis

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// NamedColor is a reference color used for naming cluster centers.
type NamedColor struct {
	Name    string
	R, G, B uint8
}

// Palette is the fixed table of reference colors, in lookup order. Ties on
// distance resolve to the earlier entry.
var Palette = []NamedColor{
	{"black", 0, 0, 0},
	{"white", 255, 255, 255},
	{"red", 255, 0, 0},
	{"lime", 0, 255, 0},
	{"blue", 0, 0, 255},
	{"yellow", 255, 255, 0},
	{"cyan", 0, 255, 255},
	{"magenta", 255, 0, 255},
	{"silver", 192, 192, 192},
	{"gray", 128, 128, 128},
	{"maroon", 128, 0, 0},
	{"olive", 128, 128, 0},
	{"green", 0, 128, 0},
	{"purple", 128, 0, 128},
	{"teal", 0, 128, 128},
	{"navy", 0, 0, 128},
	{"orange", 255, 165, 0},
	{"pink", 255, 192, 203},
	{"brown", 165, 42, 42},
	{"beige", 245, 245, 220},
	{"tan", 210, 180, 140},
	{"gold", 255, 215, 0},
	{"indigo", 75, 0, 130},
	{"violet", 238, 130, 238},
}

// ColorDistance is the Euclidean distance between two RGB triples.
func ColorDistance(r1, g1, b1, r2, g2, b2 uint8) float64 {
	dr := float64(r1) - float64(r2)
	dg := float64(g1) - float64(g2)
	db := float64(b1) - float64(b2)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// HexString formats an RGB triple as lowercase "#rrggbb".
func HexString(r, g, b uint8) string {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}.Hex()
}

// NearestColorName returns the Palette name closest to (r, g, b).
func NearestColorName(r, g, b uint8) string {
	name := "gray"
	best := math.Inf(1)
	for _, c := range Palette {
		d := ColorDistance(r, g, b, c.R, c.G, c.B)
		if d < best {
			best = d
			name = c.Name
		}
	}
	return name
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
