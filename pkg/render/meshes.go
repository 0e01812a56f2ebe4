package render

import (
	"github.com/samber/lo"

	"github.com/chazu/cadmesh/pkg/aci"
	"github.com/chazu/cadmesh/pkg/entity"
	"github.com/chazu/cadmesh/pkg/geom"
	"github.com/chazu/cadmesh/pkg/mesh"
)

// Mesh section types.
const (
	MeshTypeSubdivision = "Mesh"
	MeshTypePolyface    = "PolyfaceMesh"
	MeshTypePolygon     = "PolygonMesh"
)

func renderMesh(e entity.Entity, c *Context) *Geometry {
	m, ok := as[entity.Mesh](e)
	if !ok {
		return c.empty(e.Kind().String())
	}
	g := c.newGeometry(e)
	faces := mesh.NormalizeFaces(m.Faces, len(m.Vertices), false)
	edges := lo.FilterMap(m.Edges, func(ed entity.MeshEdge, _ int) (mesh.Edge, bool) {
		ok := ed.V1 >= 0 && ed.V1 < len(m.Vertices) && ed.V2 >= 0 && ed.V2 < len(m.Vertices)
		return mesh.Edge{VertexIndex1: ed.V1, VertexIndex2: ed.V2, Crease: ed.Crease}, ok
	})
	s := buildMesh(g, MeshTypeSubdivision, m.Vertices, faces, edges, nil)
	s.FaceCount = len(m.Faces)
	s.EdgeCount = len(m.Edges)
	s.SubdivisionLevels = m.SubdivisionLevels
	return g
}

func renderPolyfaceMesh(e entity.Entity, c *Context) *Geometry {
	m, ok := as[entity.PolyfaceMesh](e)
	if !ok {
		return c.empty(e.Kind().String())
	}
	g := c.newGeometry(e)
	faces := mesh.NormalizeFaces(m.Faces, len(m.Vertices), true)

	var faceColors []int
	if len(m.Colors) > 0 {
		faceColors = survivingFaceColors(m.Faces, m.Colors, len(m.Vertices))
	}
	s := buildMesh(g, MeshTypePolyface, m.Vertices, faces, mesh.FaceEdges(faces), faceColors)
	s.FaceCount = len(m.Faces)
	return g
}

// survivingFaceColors lines face colors up with the faces that survive
// normalization.
func survivingFaceColors(raw [][]int, colors []int, vertexCount int) []int {
	var out []int
	for i, f := range raw {
		if len(mesh.NormalizeFaces([][]int{f}, vertexCount, true)) == 0 {
			continue
		}
		col := entity.ColorByLayer
		if i < len(colors) {
			col = colors[i]
		}
		out = append(out, col)
	}
	return out
}

func renderPolygonMesh(e entity.Entity, c *Context) *Geometry {
	m, ok := as[entity.PolygonMesh](e)
	if !ok {
		return c.empty(e.Kind().String())
	}
	g := c.newGeometry(e)
	grid := lo.Map(mesh.Grid(m.MCount, m.NCount, m.ClosedM, m.ClosedN), func(f mesh.Face, _ int) []int {
		return f.Indices
	})
	faces := mesh.NormalizeFaces(grid, len(m.Vertices), false)
	s := buildMesh(g, MeshTypePolygon, m.Vertices, faces, mesh.FaceEdges(faces), nil)
	s.MCount = m.MCount
	s.NCount = m.NCount
	s.ClosedM = m.ClosedM
	s.ClosedN = m.ClosedN
	return g
}

// buildMesh triangulates faces over vertices and fills both g's buffers and
// the mesh section. faceColors, when given, holds one ACI index per face
// and switches the material to vertex colors.
func buildMesh(g *Geometry, typ string, vertices []geom.Vec3, faces []mesh.Face, edges []mesh.Edge, faceColors []int) *MeshSection {
	if faces == nil {
		faces = []mesh.Face{}
	}
	if edges == nil {
		edges = []mesh.Edge{}
	}
	indices := mesh.Triangulate(faces)
	normals := mesh.VertexNormals(vertices, indices)
	overall := geom.NormalOrZ(lo.Reduce(normals, func(acc geom.Vec3, n geom.Vec3, _ int) geom.Vec3 {
		return acc.Add(n)
	}, geom.Vec3{}))
	uvs := mesh.PlanarUVs(vertices, overall)
	colors := vertexColors(g.Color, vertices, faces, faceColors)

	s := &MeshSection{
		MeshType:     typ,
		VertexCount:  len(vertices),
		FaceCount:    len(faces),
		EdgeCount:    len(edges),
		Vertices:     nonNilPoints(vertices),
		Faces:        faces,
		Edges:        edges,
		Vertices3D:   geom.Flatten(vertices),
		NormalsArray: geom.Flatten(normals),
		ColorsArray:  colors,
		UVsArray:     nonNilFloats(uvs),
		SurfaceArea:  mesh.SurfaceArea(vertices, indices),
	}
	g.Mesh = s

	if len(vertices) == 0 {
		g.setEmpty(geom.Vec3{})
		return s
	}
	g.Centroid = geom.CentroidOf(vertices)
	g.setBuffers(PrimitiveTriangles, vertices, nonNilIndices(indices))
	g.Normals = s.NormalsArray
	g.UVs = uvs
	g.Material.VertexColors = faceColors != nil
	return s
}

// vertexColors returns r,g,b in [0,1] per vertex. Every vertex takes the
// entity color unless a face color overrides it; later faces win.
func vertexColors(base aci.Color, vertices []geom.Vec3, faces []mesh.Face, faceColors []int) []float64 {
	rgb := func(c aci.Color) [3]float64 {
		return [3]float64{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255}
	}
	per := make([][3]float64, len(vertices))
	for i := range per {
		per[i] = rgb(base)
	}
	for fi, f := range faces {
		if fi >= len(faceColors) {
			break
		}
		col := faceColors[fi]
		if !aci.InPalette(col) {
			continue
		}
		fc, _ := aci.Lookup(col)
		for _, vi := range f.Indices {
			per[vi] = rgb(fc)
		}
	}
	out := make([]float64, 0, 3*len(per))
	for _, c := range per {
		out = append(out, c[0], c[1], c[2])
	}
	return out
}

func nonNilFloats(f []float64) []float64 {
	if f == nil {
		return []float64{}
	}
	return f
}

func nonNilIndices(i []uint32) []uint32 {
	if i == nil {
		return []uint32{}
	}
	return i
}
