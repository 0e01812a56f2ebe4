package mesh

import (
	"github.com/chazu/cadmesh/pkg/geom"
)

// PlanarUVs projects points onto the plane with the given normal and scales
// the projection into [0,1] on both axes. An axis with no extent maps to 0.
func PlanarUVs(points []geom.Vec3, normal geom.Vec3) []float64 {
	if len(points) == 0 {
		return nil
	}
	x, y, _ := geom.Basis(normal)
	us := make([]float64, len(points))
	vs := make([]float64, len(points))
	for i, p := range points {
		us[i], vs[i] = p.Dot(x), p.Dot(y)
	}
	return interleaveUnit(us, vs)
}

// CornerUVs maps the four corners of an image quad to the unit square in
// image order: bottom-left, bottom-right, top-right, top-left.
func CornerUVs() []float64 {
	return []float64{0, 0, 1, 0, 1, 1, 0, 1}
}

func interleaveUnit(us, vs []float64) []float64 {
	uMin, uMax := minMax(us)
	vMin, vMax := minMax(vs)
	out := make([]float64, 0, 2*len(us))
	for i := range us {
		out = append(out, unit(us[i], uMin, uMax), unit(vs[i], vMin, vMax))
	}
	return out
}

func minMax(xs []float64) (lo, hi float64) {
	lo, hi = xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = min(lo, x)
		hi = max(hi, x)
	}
	return lo, hi
}

func unit(x, lo, hi float64) float64 {
	if hi-lo < geom.Epsilon {
		return 0
	}
	return geom.Clamp01((x - lo) / (hi - lo))
}
