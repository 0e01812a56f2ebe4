package mesh

import (
	"github.com/chazu/cadmesh/pkg/geom"
)

// ExtrudeWalls sweeps a path along offset and returns the wall as a triangle
// mesh. Vertex 2i is path point i and 2i+1 is the same point moved by
// offset. A closed path gets a wall back to its first point unless it
// already ends there. Paths with fewer than two points or a zero offset
// give an empty mesh.
func ExtrudeWalls(path []geom.Vec3, closed bool, offset geom.Vec3) *Mesh {
	if len(path) < 2 || offset.Len() < geom.Epsilon {
		return &Mesh{Vertices: []float64{}, Indices: []uint32{}}
	}
	points := make([]geom.Vec3, 0, 2*len(path))
	for _, p := range path {
		points = append(points, p, p.Add(offset))
	}

	n := len(path)
	walls := n - 1
	if closed && path[0] != path[n-1] {
		walls = n
	}
	indices := make([]uint32, 0, 6*walls)
	for i := 0; i < walls; i++ {
		j := (i + 1) % n
		b0, t0 := uint32(2*i), uint32(2*i+1)
		b1, t1 := uint32(2*j), uint32(2*j+1)
		indices = append(indices, b0, b1, t1, b0, t1, t0)
	}

	m := Build(points, indices)
	m.UVs = wallUVs(path)
	return m
}

// wallUVs runs u along the path length and v from bottom (0) to top (1).
func wallUVs(path []geom.Vec3) []float64 {
	total := 0.0
	dist := make([]float64, len(path))
	for i := 1; i < len(path); i++ {
		total += geom.Distance(path[i-1], path[i])
		dist[i] = total
	}
	out := make([]float64, 0, 4*len(path))
	for i := range path {
		u := 0.0
		if total > geom.Epsilon {
			u = dist[i] / total
		}
		out = append(out, u, 0, u, 1)
	}
	return out
}
