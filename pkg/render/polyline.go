package render

import (
	"github.com/samber/lo"

	"github.com/chazu/cadmesh/pkg/entity"
	"github.com/chazu/cadmesh/pkg/geom"
	"github.com/chazu/cadmesh/pkg/tessellate"
)

// renderPolyline2D expands bulge segments into arc samples. The expanded
// sequence never repeats a shared vertex; a closed polyline wraps back to
// index 0 through the closing index pair.
func renderPolyline2D(e entity.Entity, c *Context) *Geometry {
	pl, ok := as[entity.Polyline2D](e)
	if !ok {
		return c.empty(e.Kind().String())
	}
	g := c.newGeometry(e)
	n := pl.UnitNormal()
	g.Transform = geom.NewTransform(geom.Vec3{}, geom.BasisMatrix(n), geom.Vec3{1, 1, 1})

	verts := pl.Vertices
	section := &PolylineSection{
		IsClosed:    pl.Closed,
		VertexCount: len(verts),
		Elevation:   pl.Elevation,
		HasBulges:   lo.SomeBy(verts, func(v entity.Vertex2D) bool { return v.Bulge != 0 }),
		HasWidth: lo.SomeBy(verts, func(v entity.Vertex2D) bool {
			return v.StartWidth != 0 || v.EndWidth != 0
		}),
	}
	g.Polyline = section

	locations := lo.Map(verts, func(v entity.Vertex2D, _ int) geom.Vec3 { return v.Location })
	switch len(verts) {
	case 0:
		g.setEmpty(geom.Vec3{})
		return g
	case 1:
		g.setEmpty(locations[0])
		return g
	}

	segCount := len(verts) - 1
	if pl.Closed {
		segCount = len(verts)
	}
	section.SegmentCount = segCount

	points := []geom.Vec3{locations[0]}
	for i := 0; i < segCount; i++ {
		p0, p1 := locations[i], locations[(i+1)%len(verts)]
		b := verts[i].Bulge
		section.TotalLength += tessellate.BulgeLength(p0, p1, b)
		if arc, ok := tessellate.BulgeGeometry(p0, p1, b, n); ok {
			section.BulgeArcs = append(section.BulgeArcs, arc)
		}
		seg := tessellate.Bulge(p0, p1, b, n, c.Options.ArcSegments)
		last := pl.Closed && i == segCount-1
		if last {
			// The wrap segment ends on vertex 0, which is already stored.
			seg = seg[:len(seg)-1]
		}
		points = append(points, seg[1:]...)
	}

	section.RenderedSegmentCount = len(points) - 1
	if pl.Closed {
		section.RenderedSegmentCount = len(points)
		section.Area = geom.AreaOf(points)
		g.Centroid = geom.PolygonCentroid(points)
	} else {
		g.Centroid = geom.CentroidOf(locations)
	}

	if g.extrude(points, pl.Closed, n, pl.Thickness) {
		return g
	}
	g.setBuffers(PrimitiveLines, points, tessellate.LineListIndices(len(points), pl.Closed))
	return g
}

func renderPolyline3D(e entity.Entity, c *Context) *Geometry {
	pl, ok := as[entity.Polyline3D](e)
	if !ok {
		return c.empty(e.Kind().String())
	}
	g := c.newGeometry(e)
	segments := tessellate.Segments(pl.Vertices, pl.Closed)
	g.Polyline = &PolylineSection{
		Is3D:                 true,
		IsClosed:             pl.Closed,
		VertexCount:          len(pl.Vertices),
		SegmentCount:         len(segments),
		RenderedSegmentCount: len(segments),
		TotalLength:          lo.SumBy(segments, func(s tessellate.Segment) float64 { return s.Length }),
		Segments:             segments,
	}
	switch len(pl.Vertices) {
	case 0:
		g.setEmpty(geom.Vec3{})
		return g
	case 1:
		g.setEmpty(pl.Vertices[0])
		return g
	}
	g.Centroid = geom.CentroidOf(pl.Vertices)
	g.setBuffers(PrimitiveLines, pl.Vertices, tessellate.LineListIndices(len(pl.Vertices), pl.Closed))
	return g
}
