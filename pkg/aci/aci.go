// Package aci maps AutoCAD Color Index values and 24-bit true colors to RGB.
package aci

import (
	"fmt"
	"math"
)

// Sentinel indices.
const (
	ByBlock = 0
	ByLayer = 256
)

// DefaultHex is the neutral gray used when a ByLayer/ByBlock color has no
// fallback or an index is outside the palette.
const DefaultHex = "#B3B3B3"

// Color is a resolved entity color. Index keeps the value the entity asked
// for (0 and 256 included); R, G, B and Hex are the resolved display color.
type Color struct {
	Index int     `json:"Index"`
	Hex   string  `json:"Hex"`
	R     uint8   `json:"R"`
	G     uint8   `json:"G"`
	B     uint8   `json:"B"`
	A     float64 `json:"A"`
}

// rgb is one palette entry.
type rgb struct{ r, g, b uint8 }

var palette = buildPalette()

// wheel value levels, one per pair of indices in each block of ten.
var wheelValues = [5]float64{255, 204, 153, 127, 76}

var grays = [6]uint8{0x33, 0x50, 0x69, 0x82, 0xBE, 0xFF}

func buildPalette() [256]rgb {
	var p [256]rgb
	p[1] = rgb{255, 0, 0}
	p[2] = rgb{255, 255, 0}
	p[3] = rgb{0, 255, 0}
	p[4] = rgb{0, 255, 255}
	p[5] = rgb{0, 0, 255}
	p[6] = rgb{255, 0, 255}
	p[7] = rgb{255, 255, 255}
	p[8] = rgb{128, 128, 128}
	p[9] = rgb{192, 192, 192}
	for i := 10; i < 250; i++ {
		off := i - 10
		hue := float64(off/10) * 15
		v := wheelValues[(off%10)/2]
		r, g, b := hsv(hue, v)
		if off%2 == 1 {
			// Odd entries are the half-saturated tint of their even neighbour.
			r = (r + v) / 2
			g = (g + v) / 2
			b = (b + v) / 2
		}
		p[i] = rgb{uint8(r), uint8(g), uint8(b)}
	}
	for i, g := range grays {
		p[250+i] = rgb{g, g, g}
	}
	return p
}

// hsv converts a fully saturated hue (degrees) at value v into truncated
// channel values.
func hsv(hue, v float64) (r, g, b float64) {
	sector := int(hue / 60)
	f := hue/60 - float64(sector)
	q := math.Trunc(v * (1 - f))
	t := math.Trunc(v * f)
	switch sector {
	case 0:
		return v, t, 0
	case 1:
		return q, v, 0
	case 2:
		return 0, v, t
	case 3:
		return 0, q, v
	case 4:
		return t, 0, v
	default:
		return v, 0, q
	}
}

// Alpha converts an entity transparency (0 opaque .. 255 clear) to alpha.
func Alpha(transparency int) float64 {
	return math.Max(0, math.Min(1, 1-float64(transparency)/255))
}

// Hex formats r, g, b as #RRGGBB.
func Hex(r, g, b uint8) string {
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// InPalette reports whether index names a concrete palette color.
func InPalette(index int) bool {
	return index >= 1 && index <= 255
}

// Lookup returns the palette color for index 1..255.
func Lookup(index int) (Color, bool) {
	if !InPalette(index) {
		return Color{}, false
	}
	e := palette[index]
	return Color{Index: index, Hex: Hex(e.r, e.g, e.b), R: e.r, G: e.g, B: e.b, A: 1}, true
}

// Default returns the neutral gray for index.
func Default(index int) Color {
	return Color{Index: index, Hex: DefaultHex, R: 0xB3, G: 0xB3, B: 0xB3, A: 1}
}

// Resolve maps an entity color index to RGB. ByBlock and ByLayer take the
// fallback color when one is given, gray otherwise. Indices outside 0..256
// resolve to gray. The returned A is derived from transparency.
func Resolve(index int, fallback *Color, transparency int) Color {
	var c Color
	switch {
	case index == ByBlock || index == ByLayer:
		if fallback != nil {
			c = *fallback
			c.Index = index
		} else {
			c = Default(index)
		}
	case InPalette(index):
		c, _ = Lookup(index)
	default:
		c = Default(index)
	}
	c.A = Alpha(transparency)
	return c
}

// FromTrueColor builds a color from a 0xRRGGBB value. Index is the nearest
// palette entry.
func FromTrueColor(value uint32, transparency int) Color {
	r := uint8(value >> 16)
	g := uint8(value >> 8)
	b := uint8(value)
	return Color{
		Index: Nearest(r, g, b),
		Hex:   Hex(r, g, b),
		R:     r,
		G:     g,
		B:     b,
		A:     Alpha(transparency),
	}
}

// Nearest returns the palette index (1..255) closest to r, g, b in RGB space.
// Ties go to the lower index.
func Nearest(r, g, b uint8) int {
	best, bestDist := 1, math.MaxInt
	for i := 1; i < 256; i++ {
		e := palette[i]
		dr := int(e.r) - int(r)
		dg := int(e.g) - int(g)
		db := int(e.b) - int(b)
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
