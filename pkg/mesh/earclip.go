package mesh

import (
	"github.com/chazu/cadmesh/pkg/geom"
)

// project maps planar 3D points into 2D coordinates of the plane frame whose
// normal is the polygon's Newell normal, so the polygon winds CCW.
func project(points []geom.Vec3) ([]geom.Vec2, bool) {
	n, ok := geom.Normalize(geom.PolygonNormal(points))
	if !ok {
		return nil, false
	}
	x, y, _ := geom.Basis(n)
	out := make([]geom.Vec2, len(points))
	for i, p := range points {
		out[i] = geom.Vec2{p.Dot(x), p.Dot(y)}
	}
	return out, true
}

func cross2(o, a, b geom.Vec2) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

func inTriangle(p, a, b, c geom.Vec2) bool {
	return cross2(a, b, p) >= 0 && cross2(b, c, p) >= 0 && cross2(c, a, p) >= 0
}

// EarClip triangulates a simple planar polygon (convex or concave) given as
// an open ring of points. Indices refer to the input order. Degenerate
// polygons fall back to a fan so every input still yields len-2 triangles.
func EarClip(points []geom.Vec3) []uint32 {
	n := len(points)
	if n < 3 {
		return nil
	}
	fan := TriangulateFace(Face{Indices: seq(n)})
	if n == 3 {
		return fan
	}
	p2, ok := project(points)
	if !ok {
		return fan
	}

	remaining := seq(n)
	out := make([]uint32, 0, 3*(n-2))
	for guard := 0; len(remaining) > 3 && guard < n*n; guard++ {
		m := len(remaining)
		clipped := false
		for i := 0; i < m; i++ {
			ia, ib, ic := remaining[(i+m-1)%m], remaining[i], remaining[(i+1)%m]
			a, b, c := p2[ia], p2[ib], p2[ic]
			if cross2(a, b, c) <= geom.Epsilon {
				continue // reflex or collinear
			}
			if containsOther(p2, remaining, ia, ib, ic) {
				continue
			}
			out = append(out, uint32(ia), uint32(ib), uint32(ic))
			remaining = append(remaining[:i], remaining[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			// Self-intersecting or numerically degenerate: fan the rest.
			return append(out, TriangulateFace(Face{Indices: remaining})...)
		}
	}
	if len(remaining) == 3 {
		out = append(out, uint32(remaining[0]), uint32(remaining[1]), uint32(remaining[2]))
	}
	return out
}

func containsOther(p2 []geom.Vec2, remaining []int, ia, ib, ic int) bool {
	for _, j := range remaining {
		if j == ia || j == ib || j == ic {
			continue
		}
		if inTriangle(p2[j], p2[ia], p2[ib], p2[ic]) {
			return true
		}
	}
	return false
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
