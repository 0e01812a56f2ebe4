// Package geom holds the vector, bounds, area and transform math shared by
// the tessellator, the mesh builder and every entity renderer.
//
// Drawing space is right-handed and Z-up. Nothing in this package flips axes;
// callers that target a Y-up scene graph do that themselves.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a point or direction in drawing units.
type Vec3 = mgl64.Vec3

// Vec2 is a point in a planar (image or page) coordinate system.
type Vec2 = mgl64.Vec2

// Tolerances used across the pipeline.
const (
	Epsilon            = 1e-9  // lengths and areas treated as zero
	ZeroAngleTolerance = 1e-6  // radians; angles below this are parallel
	AxisTolerance      = 1e-10 // |n.z| above 1-AxisTolerance counts as world Z
)

var (
	XAxis = Vec3{1, 0, 0}
	YAxis = Vec3{0, 1, 0}
	ZAxis = Vec3{0, 0, 1}
)

// Normalize returns the unit vector along v and false when v has no length.
func Normalize(v Vec3) (Vec3, bool) {
	l := v.Len()
	if l < Epsilon || math.IsNaN(l) {
		return Vec3{}, false
	}
	return v.Mul(1 / l), true
}

// NormalOrZ returns the unit normal, or world Z for a missing or zero normal.
func NormalOrZ(n Vec3) Vec3 {
	if u, ok := Normalize(n); ok {
		return u
	}
	return ZAxis
}

// Distance returns |a-b|.
func Distance(a, b Vec3) float64 {
	return a.Sub(b).Len()
}

// Lerp interpolates between a and b.
func Lerp(a, b Vec3, t float64) Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// AngleBetween returns the unsigned angle between two directions in radians.
// Zero-length inputs yield 0.
func AngleBetween(a, b Vec3) float64 {
	ua, ok1 := Normalize(a)
	ub, ok2 := Normalize(b)
	if !ok1 || !ok2 {
		return 0
	}
	return math.Atan2(ua.Cross(ub).Len(), ua.Dot(ub))
}

// RotateAbout rotates v about a unit axis by angle radians (Rodrigues).
func RotateAbout(v, axis Vec3, angle float64) Vec3 {
	c, s := math.Cos(angle), math.Sin(angle)
	return v.Mul(c).
		Add(axis.Cross(v).Mul(s)).
		Add(axis.Mul(axis.Dot(v) * (1 - c)))
}

// Flatten writes points into a flat x,y,z buffer.
func Flatten(points []Vec3) []float64 {
	out := make([]float64, 0, len(points)*3)
	for _, p := range points {
		out = append(out, p[0], p[1], p[2])
	}
	return out
}

// Unflatten reads a flat x,y,z buffer back into points. A trailing partial
// triple is ignored.
func Unflatten(flat []float64) []Vec3 {
	out := make([]Vec3, 0, len(flat)/3)
	for i := 0; i+2 < len(flat); i += 3 {
		out = append(out, Vec3{flat[i], flat[i+1], flat[i+2]})
	}
	return out
}

// Clamp01 clamps x into [0,1].
func Clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
