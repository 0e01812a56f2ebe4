package render

import (
	"github.com/samber/lo"

	"github.com/chazu/cadmesh/pkg/entity"
	"github.com/chazu/cadmesh/pkg/geom"
	"github.com/chazu/cadmesh/pkg/tessellate"
)

// arrowHalfWidth is the arrowhead half width as a fraction of its length.
const arrowHalfWidth = 1.0 / 6.0

// renderLeader draws the leader path, an optional arrowhead at the first
// vertex and a hookline when the last segment runs along the horizontal
// direction. A leader with fewer than two vertices has no bounds.
func renderLeader(e entity.Entity, c *Context) *Geometry {
	l, ok := as[entity.Leader](e)
	if !ok {
		return c.empty(e.Kind().String())
	}
	g := c.newGeometry(e)
	horizontal, okh := geom.Normalize(l.HorizontalDirection)
	if !okh {
		horizontal = geom.XAxis
	}
	size := l.ArrowSize
	if size <= 0 {
		size = DefaultArrowSize
	}
	section := &LeaderSection{
		VertexCount:         len(l.Vertices),
		Segments:            []tessellate.Segment{},
		ArrowSize:           size,
		HorizontalDirection: horizontal,
		IsSpline:            l.PathSpline,
	}
	g.Leader = section

	if len(l.Vertices) < 2 {
		g.setEmpty(geom.Vec3{})
		g.Bounds = nil
		if len(l.Vertices) == 1 {
			g.Centroid = l.Vertices[0]
		}
		return g
	}

	path := l.Vertices
	if l.PathSpline {
		path = tessellate.Spline(tessellate.SplineInput{
			Degree:     3,
			FitPoints:  l.Vertices,
			MinSamples: c.Options.SplineMinSamples,
		}).Points
	}
	section.Segments = tessellate.Segments(l.Vertices, false)
	section.TotalLength = tessellate.PathLength(path, false)

	points := append([]geom.Vec3(nil), path...)
	indices := tessellate.LineListIndices(len(path), false)
	n := l.UnitNormal()

	if l.ArrowheadEnabled {
		if dir, ok := geom.Normalize(l.Vertices[1].Sub(l.Vertices[0])); ok {
			tip := l.Vertices[0]
			base := tip.Add(dir.Mul(size))
			side, oks := geom.Normalize(n.Cross(dir))
			if !oks {
				_, side, _ = geom.Basis(dir)
			}
			half := side.Mul(size * arrowHalfWidth)
			head := []geom.Vec3{tip, base.Add(half), base.Sub(half)}
			section.HasArrowhead = true
			section.Arrowhead = head
			indices = append(indices, triangleOutline(uint32(len(points)))...)
			points = append(points, head...)
		}
	}

	last := section.Segments[len(section.Segments)-1]
	if last.Length > geom.Epsilon && geom.AngleBetween(last.Direction, horizontal) < geom.ZeroAngleTolerance {
		hook := l.HooklineLength
		if hook <= 0 {
			hook = size
		}
		end := last.End.Add(horizontal.Mul(hook))
		section.HasHookline = true
		section.Hookline = []geom.Vec3{last.End, end}
		at := uint32(len(points))
		points = append(points, last.End, end)
		indices = append(indices, at, at+1)
	}

	g.Centroid = geom.CentroidOf(l.Vertices)
	g.setBuffers(PrimitiveLines, points, indices)
	return g
}

// triangleOutline returns line pairs around the triangle starting at first.
func triangleOutline(first uint32) []uint32 {
	return lo.FlatMap([]uint32{0, 1, 2}, func(i uint32, _ int) []uint32 {
		return []uint32{first + i, first + (i+1)%3}
	})
}
