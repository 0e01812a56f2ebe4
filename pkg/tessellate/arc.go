package tessellate

import (
	"math"

	"github.com/chazu/cadmesh/pkg/geom"
)

// Arc samples segments+1 points uniformly from start to end (radians, signed
// sweep end-start) on the circle of radius around center, in the plane whose
// normal is given. A full turn closes exactly: the last point equals the
// first. A non-positive radius yields the center alone.
func Arc(center geom.Vec3, radius, start, end float64, normal geom.Vec3, segments int) []geom.Vec3 {
	if radius <= 0 || math.IsNaN(radius) {
		return []geom.Vec3{center}
	}
	segments = segmentsOrDefault(segments)
	x, y, _ := geom.Basis(normal)
	sweep := end - start

	points := make([]geom.Vec3, segments+1)
	for i := 0; i <= segments; i++ {
		a := start + sweep*float64(i)/float64(segments)
		points[i] = onPlane(center, x, y, radius*math.Cos(a), radius*math.Sin(a))
	}
	if IsFullTurn(sweep) {
		points[segments] = points[0]
	}
	return points
}

// Circle samples a full circle starting at angle 0.
func Circle(center geom.Vec3, radius float64, normal geom.Vec3, segments int) []geom.Vec3 {
	return Arc(center, radius, 0, 2*math.Pi, normal, segments)
}

// IsFullTurn reports whether sweep covers a whole circle.
func IsFullTurn(sweep float64) bool {
	return math.Abs(math.Abs(sweep)-2*math.Pi) < geom.ZeroAngleTolerance
}

// NormalizeSweep returns the counter-clockwise sweep of a CAD arc running
// from start to end. CAD arcs always turn CCW, so an end angle below the
// start wraps around, and equal angles mean a full circle.
func NormalizeSweep(start, end float64) float64 {
	sweep := math.Mod(end-start, 2*math.Pi)
	if sweep < 0 {
		sweep += 2 * math.Pi
	}
	if sweep < geom.ZeroAngleTolerance {
		sweep = 2 * math.Pi
	}
	return sweep
}

// ArcMetrics are the closed-form measures of a circular arc.
type ArcMetrics struct {
	Sweep      float64 `json:"Sweep"`
	IsCCW      bool    `json:"IsCCW"`
	Chord      float64 `json:"Chord"`
	Length     float64 `json:"Length"`
	Sagitta    float64 `json:"Sagitta"`
	SectorArea float64 `json:"SectorArea"`
}

// Metrics computes chord, arc length, sagitta and sector area for an arc of
// the given radius and signed sweep.
func Metrics(radius, sweep float64) ArcMetrics {
	if radius < 0 {
		radius = 0
	}
	s := math.Abs(sweep)
	return ArcMetrics{
		Sweep:      sweep,
		IsCCW:      sweep > 0,
		Chord:      2 * radius * math.Sin(s/2),
		Length:     radius * s,
		Sagitta:    radius * (1 - math.Cos(s/2)),
		SectorArea: 0.5 * radius * radius * s,
	}
}

// EllipseArc samples an elliptical arc. majorAxis is the vector from center
// to the end of the major axis, ratio the minor/major length ratio, and the
// parameters are eccentric angles in radians. The minor axis lies along
// normal x majorAxis. The sweep is normalized counter-clockwise the way
// CAD ellipses are stored.
func EllipseArc(center, majorAxis geom.Vec3, ratio, startParam, endParam float64, normal geom.Vec3, segments int) []geom.Vec3 {
	major := majorAxis.Len()
	if major < geom.Epsilon || math.IsNaN(major) {
		return []geom.Vec3{center}
	}
	n := geom.NormalOrZ(normal)
	x := majorAxis.Mul(1 / major)
	y, ok := geom.Normalize(n.Cross(x))
	if !ok {
		_, y, _ = geom.Basis(x)
	}
	minor := major * ratio

	sweep := NormalizeSweep(startParam, endParam)
	if IsFullTurn(sweep) {
		segments = segmentsOrDefault(segments)
	} else {
		segments = SegmentsForSweep(sweep, segments)
	}
	points := make([]geom.Vec3, segments+1)
	for i := 0; i <= segments; i++ {
		t := startParam + sweep*float64(i)/float64(segments)
		points[i] = onPlane(center, x, y, major*math.Cos(t), minor*math.Sin(t))
	}
	if IsFullTurn(sweep) {
		points[segments] = points[0]
	}
	return points
}
