package render

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/cadmesh/pkg/entity"
	"github.com/chazu/cadmesh/pkg/geom"
)

func renderPoint(e entity.Entity, c *Context) *Geometry {
	p, ok := as[entity.Point](e)
	if !ok {
		return c.empty(e.Kind().String())
	}
	g := c.newGeometry(e)
	g.Point = &PointSection{Location: p.Location, Angle: p.Angle}
	g.Transform = geom.NewTransform(p.Location, mgl64.Ident4(), geom.Vec3{1, 1, 1})
	g.Centroid = p.Location
	g.setBuffers(PrimitivePoints, []geom.Vec3{p.Location}, []uint32{0})
	return g
}
