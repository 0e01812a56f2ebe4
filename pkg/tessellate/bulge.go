package tessellate

import (
	"math"

	"github.com/chazu/cadmesh/pkg/geom"
)

// BulgeArc is the circular arc encoded by a polyline vertex bulge.
type BulgeArc struct {
	Center     geom.Vec3 `json:"Center"`
	Radius     float64   `json:"Radius"`
	StartAngle float64   `json:"StartAngle"`
	Sweep      float64   `json:"Sweep"` // signed; positive is CCW about the normal
	Length     float64   `json:"Length"`
}

// BulgeGeometry resolves the arc between p0 and p1 for bulge b. It reports
// false when the segment is straight: a zero bulge or coincident endpoints.
func BulgeGeometry(p0, p1 geom.Vec3, b float64, normal geom.Vec3) (BulgeArc, bool) {
	chord := geom.Distance(p0, p1)
	if b == 0 || chord < geom.Epsilon || math.IsNaN(b) {
		return BulgeArc{}, false
	}
	theta := 4 * math.Atan(b)
	radius := chord / (2 * math.Sin(math.Abs(theta)/2))

	x, y, n := geom.Basis(normal)
	u := p1.Sub(p0).Mul(1 / chord)
	left := n.Cross(u)
	// Signed distance from the chord midpoint to the center, along left.
	h := (chord / 2) / math.Tan(theta/2)
	center := geom.Lerp(p0, p1, 0.5).Add(left.Mul(h))

	return BulgeArc{
		Center:     center,
		Radius:     radius,
		StartAngle: planeAngle(p0, center, x, y),
		Sweep:      theta,
		Length:     radius * math.Abs(theta),
	}, true
}

// Bulge returns the points of the segment from p0 to p1, endpoints included.
// A zero bulge is a straight two-point segment. Curved segments use
// max(2, ceil(segments*|theta|/2pi)) arc segments.
func Bulge(p0, p1 geom.Vec3, b float64, normal geom.Vec3, segments int) []geom.Vec3 {
	arc, ok := BulgeGeometry(p0, p1, b, normal)
	if !ok {
		return []geom.Vec3{p0, p1}
	}
	n := SegmentsForSweep(arc.Sweep, segments)
	points := Arc(arc.Center, arc.Radius, arc.StartAngle, arc.StartAngle+arc.Sweep, normal, n)
	// Pin the endpoints so consecutive segments share exact vertices.
	points[0] = p0
	points[len(points)-1] = p1
	return points
}

// BulgeLength is the length of the segment from p0 to p1 with bulge b.
func BulgeLength(p0, p1 geom.Vec3, b float64) float64 {
	if arc, ok := BulgeGeometry(p0, p1, b, geom.ZAxis); ok {
		return arc.Length
	}
	return geom.Distance(p0, p1)
}
