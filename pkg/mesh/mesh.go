// Package mesh builds indexed triangle meshes from CAD face lists: face index
// normalization, triangulation, per-vertex normals, planar UVs, thickness
// extrusion and M x N polygon-mesh grids.
package mesh

import (
	"github.com/chazu/cadmesh/pkg/geom"
)

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, uvs has 2, indices has 3 per triangle.
type Mesh struct {
	Vertices []float64 `json:"Vertices"`
	Normals  []float64 `json:"Normals,omitempty"`
	UVs      []float64 `json:"UVs,omitempty"`
	Indices  []uint32  `json:"Indices"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Points returns the vertices as vectors.
func (m *Mesh) Points() []geom.Vec3 {
	return geom.Unflatten(m.Vertices)
}

// Build assembles a mesh from points and triangle indices, deriving
// area-weighted vertex normals.
func Build(points []geom.Vec3, indices []uint32) *Mesh {
	return &Mesh{
		Vertices: geom.Flatten(points),
		Normals:  geom.Flatten(VertexNormals(points, indices)),
		Indices:  indices,
	}
}
