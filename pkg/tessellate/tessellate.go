// Package tessellate turns analytic CAD curves into point sequences: circular
// arcs, polyline bulge arcs, elliptical arcs, NURBS and Catmull-Rom splines.
//
// Every function is pure. Degenerate input (zero radius, coincident points,
// empty point lists) yields a minimal result, never a panic.
package tessellate

import (
	"math"

	"github.com/chazu/cadmesh/pkg/geom"
)

// DefaultSegments is the number of segments used for a full circle.
const DefaultSegments = 64

// segmentsOrDefault guards against non-positive segment counts.
func segmentsOrDefault(n int) int {
	if n < 1 {
		return DefaultSegments
	}
	return n
}

// SegmentsForSweep scales a full-circle segment count down to a partial
// sweep, never going below two segments.
func SegmentsForSweep(sweep float64, full int) int {
	full = segmentsOrDefault(full)
	// Round away floating noise so a half turn gives exactly full/2.
	n := int(math.Ceil(float64(full)*math.Abs(sweep)/(2*math.Pi) - 1e-9))
	if n < 2 {
		return 2
	}
	return n
}

// onPlane places the local point (u, v) of the plane spanned by x, y at origin.
func onPlane(origin, x, y geom.Vec3, u, v float64) geom.Vec3 {
	return origin.Add(x.Mul(u)).Add(y.Mul(v))
}

// planeAngle returns the angle of p-center measured in the plane basis x, y.
func planeAngle(p, center, x, y geom.Vec3) float64 {
	d := p.Sub(center)
	return math.Atan2(d.Dot(y), d.Dot(x))
}
