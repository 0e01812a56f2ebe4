package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/cadmesh/pkg/entity"
	"github.com/chazu/cadmesh/pkg/geom"
	"github.com/chazu/cadmesh/pkg/tessellate"
)

// ---------------------------------------------------------------------------
// Arc and circle
// ---------------------------------------------------------------------------

func renderArc(e entity.Entity, c *Context) *Geometry {
	a, ok := as[entity.Arc](e)
	if !ok {
		return c.empty(e.Kind().String())
	}
	sweep := tessellate.NormalizeSweep(a.StartAngle, a.EndAngle)
	g := c.newGeometry(e)
	g.Arc = arcSection(a.Center, a.Radius, a.UnitNormal(), a.StartAngle, a.StartAngle+sweep, c.Options.ArcSegments)
	g.Arc.EndAngle = a.EndAngle
	return finishArc(g, a.Common, a.Center, g.Arc, c.Options.ArcSegments, false)
}

func renderCircle(e entity.Entity, c *Context) *Geometry {
	ci, ok := as[entity.Circle](e)
	if !ok {
		return c.empty(e.Kind().String())
	}
	g := c.newGeometry(e)
	s := arcSection(ci.Center, ci.Radius, ci.UnitNormal(), 0, 2*math.Pi, c.Options.ArcSegments)
	r := math.Max(ci.Radius, 0)
	s.Circumference = 2 * math.Pi * r
	s.Area = math.Pi * r * r
	s.Diameter = 2 * r
	g.Arc = s
	return finishArc(g, ci.Common, ci.Center, s, c.Options.ArcSegments, true)
}

func arcSection(center geom.Vec3, radius float64, normal geom.Vec3, start, end float64, segments int) *ArcSection {
	m := tessellate.Metrics(radius, end-start)
	return &ArcSection{
		Center:       center,
		Radius:       radius,
		Normal:       normal,
		StartAngle:   start,
		EndAngle:     end,
		Sweep:        m.Sweep,
		IsCCW:        m.IsCCW,
		IsFullCircle: tessellate.IsFullTurn(m.Sweep),
		Chord:        m.Chord,
		ArcLength:    m.Length,
		Sagitta:      m.Sagitta,
		SectorArea:   m.SectorArea,
		Segments:     segmentsOr(segments),
	}
}

// finishArc samples the arc described by s into g. Circles take their
// centroid at the center, arcs at the mean of their samples.
func finishArc(g *Geometry, p entity.Common, center geom.Vec3, s *ArcSection, segments int, full bool) *Geometry {
	g.Transform = geom.NewTransform(center, geom.BasisMatrix(s.Normal), geom.Vec3{1, 1, 1})
	points := tessellate.Arc(center, s.Radius, s.StartAngle, s.StartAngle+s.Sweep, s.Normal, segmentsOr(segments))
	if len(points) == 1 {
		g.Centroid = center
		g.setBuffers(PrimitivePoints, points, []uint32{0})
		return g
	}
	if full {
		g.Centroid = center
	} else {
		g.Centroid = geom.CentroidOf(points)
	}
	if g.extrude(points, s.IsFullCircle, s.Normal, p.Thickness) {
		return g
	}
	g.setBuffers(PrimitiveLines, points, tessellate.LineListIndices(len(points), false))
	return g
}

func segmentsOr(n int) int {
	if n < 3 {
		return DefaultArcSegments
	}
	return n
}

// ---------------------------------------------------------------------------
// Ellipse
// ---------------------------------------------------------------------------

func renderEllipse(e entity.Entity, c *Context) *Geometry {
	el, ok := as[entity.Ellipse](e)
	if !ok {
		return c.empty(e.Kind().String())
	}
	g := c.newGeometry(e)
	n := el.UnitNormal()
	major := el.MajorAxis.Len()
	x, okx := geom.Normalize(el.MajorAxis)
	if !okx {
		x, _, _ = geom.Basis(n)
	}
	y, oky := geom.Normalize(n.Cross(x))
	if !oky {
		_, y, _ = geom.Basis(x)
	}
	sweep := tessellate.NormalizeSweep(el.StartParam, el.EndParam)
	g.Ellipse = &EllipseSection{
		Center:      el.Center,
		MajorAxis:   el.MajorAxis,
		MinorAxis:   y.Mul(major * el.Ratio),
		MajorRadius: major,
		MinorRadius: major * el.Ratio,
		Ratio:       el.Ratio,
		StartParam:  el.StartParam,
		EndParam:    el.EndParam,
		Sweep:       sweep,
		IsFull:      tessellate.IsFullTurn(sweep),
	}
	rot := mgl64.Mat4FromCols(x.Vec4(0), y.Vec4(0), x.Cross(y).Vec4(0), mgl64.Vec4{0, 0, 0, 1})
	g.Transform = geom.NewTransform(el.Center, rot, geom.Vec3{1, 1, 1})

	points := tessellate.EllipseArc(el.Center, el.MajorAxis, el.Ratio, el.StartParam, el.EndParam, n, c.Options.ArcSegments)
	if len(points) == 1 {
		g.Centroid = el.Center
		g.setBuffers(PrimitivePoints, points, []uint32{0})
		return g
	}
	g.Ellipse.Length = tessellate.PathLength(points, false)
	if g.Ellipse.IsFull {
		g.Centroid = el.Center
	} else {
		g.Centroid = geom.CentroidOf(points)
	}
	g.setBuffers(PrimitiveLines, points, tessellate.LineListIndices(len(points), false))
	return g
}

// ---------------------------------------------------------------------------
// Line
// ---------------------------------------------------------------------------

func renderLine(e entity.Entity, c *Context) *Geometry {
	l, ok := as[entity.Line](e)
	if !ok {
		return c.empty(e.Kind().String())
	}
	g := c.newGeometry(e)
	delta := l.End.Sub(l.Start)
	dir, _ := geom.Normalize(delta)
	g.Line = &LineSection{
		Start:     l.Start,
		End:       l.End,
		Delta:     delta,
		Length:    delta.Len(),
		Direction: dir,
		Angle:     math.Atan2(delta[1], delta[0]),
	}
	g.Transform = geom.NewTransform(l.Start, mgl64.Ident4(), geom.Vec3{1, 1, 1})
	g.Centroid = geom.Lerp(l.Start, l.End, 0.5)

	points := []geom.Vec3{l.Start, l.End}
	if g.extrude(points, false, l.UnitNormal(), l.Thickness) {
		return g
	}
	g.setBuffers(PrimitiveLines, points, []uint32{0, 1})
	return g
}
