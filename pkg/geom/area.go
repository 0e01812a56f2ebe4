package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// CentroidOf returns the arithmetic mean of points, the centroid used for
// line-like shapes. Empty input yields the origin.
func CentroidOf(points []Vec3) Vec3 {
	if len(points) == 0 {
		return Vec3{}
	}
	var sum Vec3
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Mul(1 / float64(len(points)))
}

// PolygonNormal returns the unnormalized Newell normal of a closed polygon.
// Its length is twice the polygon area.
func PolygonNormal(points []Vec3) Vec3 {
	var n Vec3
	for i := range points {
		a := points[i]
		b := points[(i+1)%len(points)]
		n[0] += (a[1] - b[1]) * (a[2] + b[2])
		n[1] += (a[2] - b[2]) * (a[0] + b[0])
		n[2] += (a[0] - b[0]) * (a[1] + b[1])
	}
	return n
}

// dominantAxis returns the axis the polygon is projected along: the largest
// component of its normal.
func dominantAxis(n Vec3) int {
	ax, ay, az := math.Abs(n[0]), math.Abs(n[1]), math.Abs(n[2])
	switch {
	case az >= ax && az >= ay:
		return 2
	case ay >= ax:
		return 1
	default:
		return 0
	}
}

// projectRing drops the dominant axis and closes the ring for orb.
func projectRing(points []Vec3, drop int) orb.Ring {
	u, v := (drop+1)%3, (drop+2)%3
	ring := make(orb.Ring, 0, len(points)+1)
	for _, p := range points {
		ring = append(ring, orb.Point{p[u], p[v]})
	}
	ring = append(ring, ring[0])
	return ring
}

// AreaOf returns the area of a planar polygon given by at least three points,
// computed with the shoelace formula on the plane the polygon is most nearly
// aligned with and corrected back to the true plane.
func AreaOf(points []Vec3) float64 {
	if len(points) < 3 {
		return 0
	}
	n := PolygonNormal(points)
	nl := n.Len()
	if nl < Epsilon {
		return 0
	}
	drop := dominantAxis(n)
	projected := math.Abs(planar.Area(projectRing(points, drop)))
	// The projection shrinks the area by |n_drop|/|n|.
	return projected * nl / math.Abs(n[drop])
}

// PolygonCentroid returns the area-weighted centroid of a planar polygon.
// Degenerate polygons fall back to the vertex mean.
func PolygonCentroid(points []Vec3) Vec3 {
	if len(points) < 3 {
		return CentroidOf(points)
	}
	n := PolygonNormal(points)
	if n.Len() < Epsilon {
		return CentroidOf(points)
	}
	drop := dominantAxis(n)
	c2, area := planar.CentroidArea(projectRing(points, drop))
	if math.Abs(area) < Epsilon {
		return CentroidOf(points)
	}
	u, v := (drop+1)%3, (drop+2)%3
	var c Vec3
	c[u], c[v] = c2[0], c2[1]
	// Lift the projected centroid back onto the plane n.p = n.p0.
	d := n.Dot(points[0])
	c[drop] = (d - n[u]*c[u] - n[v]*c[v]) / n[drop]
	return c
}
