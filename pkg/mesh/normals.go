package mesh

import (
	"github.com/chazu/cadmesh/pkg/geom"
)

// FaceNormal returns the unit normal of triangle a, b, c by the right-hand
// rule and its area. Degenerate triangles report ok == false.
func FaceNormal(a, b, c geom.Vec3) (n geom.Vec3, area float64, ok bool) {
	cross := b.Sub(a).Cross(c.Sub(a))
	n, ok = geom.Normalize(cross)
	return n, cross.Len() / 2, ok
}

// VertexNormals accumulates the area-weighted face normal of every triangle
// into its three vertices and normalizes. Degenerate triangles contribute
// nothing; vertices with no contribution get +Z. Out-of-range indices are
// skipped.
func VertexNormals(points []geom.Vec3, indices []uint32) []geom.Vec3 {
	acc := make([]geom.Vec3, len(points))
	n := uint32(len(points))
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		if i0 >= n || i1 >= n || i2 >= n {
			continue
		}
		// The unnormalized cross product is already weighted by area.
		w := points[i1].Sub(points[i0]).Cross(points[i2].Sub(points[i0]))
		acc[i0] = acc[i0].Add(w)
		acc[i1] = acc[i1].Add(w)
		acc[i2] = acc[i2].Add(w)
	}
	for i := range acc {
		acc[i] = geom.NormalOrZ(acc[i])
	}
	return acc
}

// SurfaceArea sums the triangle areas of an indexed mesh.
func SurfaceArea(points []geom.Vec3, indices []uint32) float64 {
	var total float64
	n := uint32(len(points))
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		if i0 >= n || i1 >= n || i2 >= n {
			continue
		}
		_, a, _ := FaceNormal(points[i0], points[i1], points[i2])
		total += a
	}
	return total
}
