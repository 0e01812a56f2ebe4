package render

import (
	"github.com/chazu/cadmesh/pkg/entity"
	"github.com/chazu/cadmesh/pkg/geom"
	"github.com/chazu/cadmesh/pkg/mesh"
)

var (
	triangleIndices = []uint32{0, 1, 2}
	quadIndices     = []uint32{0, 1, 2, 0, 2, 3}
)

func renderFace3D(e entity.Entity, c *Context) *Geometry {
	f, ok := as[entity.Face3D](e)
	if !ok {
		return c.empty(e.Kind().String())
	}
	g := c.newGeometry(e)
	outline := f.Outline()
	g.Face = faceSection(outline, f.IsQuad())
	g.Face.HasFourthCorner = f.HasFourthCorner()
	g.Face.CornerCountFromFlag = f.CornerCountFromFlag()
	g.Face.InvisibleEdges = f.InvisibleEdges[:len(outline)]
	return finishFace(g, outline)
}

// renderSolid renders a 2D solid. Its corners are reordered from the
// stored 1-2-4-3 order into a boundary before anything is measured.
func renderSolid(e entity.Entity, c *Context) *Geometry {
	s, ok := as[entity.Solid](e)
	if !ok {
		return c.empty(e.Kind().String())
	}
	g := c.newGeometry(e)
	outline := s.Outline()
	g.Face = faceSection(outline, s.IsQuad())
	g.Face.HasFourthCorner = s.HasFourthCorner()
	g.Face.CornerCountFromFlag = s.CornerCount == 3 || s.CornerCount == 4
	g.Face.IsSolid = true
	if s.Thickness != 0 {
		// A thick solid becomes a prism: cap faces plus walls.
		return finishSolidPrism(g, outline, s.UnitNormal().Mul(s.Thickness))
	}
	return finishFace(g, outline)
}

func faceSection(outline []geom.Vec3, quad bool) *FaceSection {
	return &FaceSection{
		Corners: outline,
		IsQuad:  quad,
		Area:    geom.AreaOf(outline),
		Center:  geom.PolygonCentroid(outline),
		Normal:  geom.NormalOrZ(geom.PolygonNormal(outline)),
	}
}

func finishFace(g *Geometry, outline []geom.Vec3) *Geometry {
	indices := triangleIndices
	if len(outline) == 4 {
		indices = quadIndices
	}
	indices = append([]uint32(nil), indices...)
	g.Centroid = g.Face.Center
	g.setBuffers(PrimitiveTriangles, outline, indices)
	g.Normals = geom.Flatten(repeat(g.Face.Normal, len(outline)))
	if len(outline) == 4 {
		g.UVs = mesh.CornerUVs()
	} else {
		g.UVs = mesh.PlanarUVs(outline, g.Face.Normal)
	}
	return g
}

func finishSolidPrism(g *Geometry, outline []geom.Vec3, offset geom.Vec3) *Geometry {
	walls := mesh.ExtrudeWalls(outline, true, offset)
	n := uint32(walls.VertexCount())
	points := walls.Points()
	indices := append([]uint32(nil), walls.Indices...)
	top := make([]geom.Vec3, len(outline))
	for i, p := range outline {
		top[i] = p.Add(offset)
	}
	points = append(points, outline...)
	points = append(points, top...)
	lid := mesh.EarClip(outline)
	for _, idx := range lid {
		indices = append(indices, n+idx)
	}
	for _, idx := range lid {
		indices = append(indices, n+uint32(len(outline))+idx)
	}
	g.Centroid = g.Face.Center.Add(offset.Mul(0.5))
	g.setBuffers(PrimitiveTriangles, points, indices)
	g.Normals = geom.Flatten(mesh.VertexNormals(points, indices))
	return g
}

func repeat(v geom.Vec3, n int) []geom.Vec3 {
	out := make([]geom.Vec3, n)
	for i := range out {
		out[i] = v
	}
	return out
}
