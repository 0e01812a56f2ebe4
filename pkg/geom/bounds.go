package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Bounds is an axis-aligned box. Min == Max is a valid zero-extent box.
type Bounds struct {
	Min Vec3 `json:"Min"`
	Max Vec3 `json:"Max"`
}

// BoundsOf returns the box around points. The second result is false when
// points is empty.
func BoundsOf(points []Vec3) (Bounds, bool) {
	if len(points) == 0 {
		return Bounds{}, false
	}
	b := Bounds{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b = b.Include(p)
	}
	return b, true
}

// FlatBounds is BoundsOf over a flat x,y,z buffer.
func FlatBounds(flat []float64) (Bounds, bool) {
	return BoundsOf(Unflatten(flat))
}

// Include grows b to contain p.
func (b Bounds) Include(p Vec3) Bounds {
	for i := 0; i < 3; i++ {
		b.Min[i] = math.Min(b.Min[i], p[i])
		b.Max[i] = math.Max(b.Max[i], p[i])
	}
	return b
}

// Union returns the box containing both a and b.
func (b Bounds) Union(o Bounds) Bounds {
	return b.Include(o.Min).Include(o.Max)
}

// Center returns the box midpoint.
func (b Bounds) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the box extents.
func (b Bounds) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Contains reports whether p lies inside b, allowing tol slack on each side.
func (b Bounds) Contains(p Vec3, tol float64) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i]-tol || p[i] > b.Max[i]+tol {
			return false
		}
	}
	return true
}

// Intersects reports whether the two boxes overlap (touching counts).
func (b Bounds) Intersects(o Bounds) bool {
	for i := 0; i < 3; i++ {
		if b.Max[i] < o.Min[i] || o.Max[i] < b.Min[i] {
			return false
		}
	}
	return true
}

// Transform returns the box around the eight transformed corners of b.
func (b Bounds) Transform(m mgl64.Mat4) Bounds {
	var out Bounds
	for i := 0; i < 8; i++ {
		c := Vec3{b.Min[0], b.Min[1], b.Min[2]}
		if i&1 != 0 {
			c[0] = b.Max[0]
		}
		if i&2 != 0 {
			c[1] = b.Max[1]
		}
		if i&4 != 0 {
			c[2] = b.Max[2]
		}
		p := mgl64.TransformCoordinate(c, m)
		if i == 0 {
			out = Bounds{Min: p, Max: p}
			continue
		}
		out = out.Include(p)
	}
	return out
}
