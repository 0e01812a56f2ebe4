package render

import (
	"github.com/chazu/cadmesh/pkg/entity"
	"github.com/chazu/cadmesh/pkg/geom"
	"github.com/chazu/cadmesh/pkg/tessellate"
)

func renderSpline(e entity.Entity, c *Context) *Geometry {
	s, ok := as[entity.Spline](e)
	if !ok {
		return c.empty(e.Kind().String())
	}
	g := c.newGeometry(e)
	res := tessellate.Spline(tessellate.SplineInput{
		Degree:        s.Degree,
		Closed:        s.Closed,
		ControlPoints: s.ControlPoints,
		FitPoints:     s.FitPoints,
		Knots:         s.Knots,
		Weights:       s.Weights,
		MinSamples:    c.Options.SplineMinSamples,
	})

	section := &SplineSection{
		SplineType:    res.Type,
		Degree:        res.Degree,
		IsClosed:      s.Closed,
		IsRational:    tessellate.IsRational(s.Weights),
		ControlPoints: nonNilPoints(s.ControlPoints),
		FitPoints:     nonNilPoints(s.FitPoints),
		Knots:         s.Knots,
		Weights:       s.Weights,
		SampleCount:   len(res.Points),
		Length:        res.Length,
		ArcLength:     res.Length,
	}
	if res.Type == tessellate.SplineNURBS {
		section.Knots = res.Knots
	} else {
		section.Tension = tessellate.CatmullRomTension
	}
	g.Spline = section

	if len(res.Points) == 0 {
		g.setEmpty(geom.Vec3{})
		return g
	}
	g.Centroid = geom.CentroidOf(res.Points)
	g.setBuffers(PrimitiveLines, res.Points, tessellate.LineListIndices(len(res.Points), s.Closed))
	return g
}

func nonNilPoints(p []geom.Vec3) []geom.Vec3 {
	if p == nil {
		return []geom.Vec3{}
	}
	return p
}
