package mesh

import (
	"github.com/samber/lo"
)

// Face is a polygon of 0-based vertex indices. Hidden[i] marks the edge from
// Indices[i] to the next index as invisible.
type Face struct {
	Indices []int  `json:"Indices"`
	Hidden  []bool `json:"Hidden,omitempty"`
}

// Edge is an explicit mesh edge, independent of face adjacency.
type Edge struct {
	VertexIndex1 int     `json:"VertexIndex1"`
	VertexIndex2 int     `json:"VertexIndex2"`
	Crease       float64 `json:"Crease"`
}

// NormalizeFaces converts raw face index lists into 0-based faces.
//
// With oneBased set the lists follow polyface conventions: indices start at
// 1, a negative index marks the edge leaving that vertex as invisible, and 0
// is an unused slot. References outside [0, vertexCount) are dropped, as are
// repeated consecutive indices; faces left with fewer than three vertices
// are dropped.
func NormalizeFaces(raw [][]int, vertexCount int, oneBased bool) []Face {
	faces := make([]Face, 0, len(raw))
	for _, r := range raw {
		var f Face
		for _, idx := range r {
			hidden := false
			if oneBased {
				if idx == 0 {
					continue
				}
				if idx < 0 {
					hidden = true
					idx = -idx
				}
				idx--
			}
			if idx < 0 || idx >= vertexCount {
				continue
			}
			if n := len(f.Indices); n > 0 && f.Indices[n-1] == idx {
				continue
			}
			f.Indices = append(f.Indices, idx)
			f.Hidden = append(f.Hidden, hidden)
		}
		// A closing index equal to the first adds nothing.
		if n := len(f.Indices); n > 1 && f.Indices[n-1] == f.Indices[0] {
			f.Indices = f.Indices[:n-1]
			f.Hidden = f.Hidden[:n-1]
		}
		if len(f.Indices) < 3 {
			continue
		}
		if !lo.Contains(f.Hidden, true) {
			f.Hidden = nil
		}
		faces = append(faces, f)
	}
	return faces
}

// TriangulateFace splits one face: a triangle stays [0,1,2], a quad becomes
// (0,1,2),(0,2,3), larger polygons are fanned from the first vertex.
// Winding order is preserved.
func TriangulateFace(f Face) []uint32 {
	n := len(f.Indices)
	if n < 3 {
		return nil
	}
	out := make([]uint32, 0, 3*(n-2))
	for i := 1; i+1 < n; i++ {
		out = append(out, uint32(f.Indices[0]), uint32(f.Indices[i]), uint32(f.Indices[i+1]))
	}
	return out
}

// Triangulate triangulates every face into one index buffer.
func Triangulate(faces []Face) []uint32 {
	return lo.FlatMap(faces, func(f Face, _ int) []uint32 {
		return TriangulateFace(f)
	})
}

// FaceEdges returns the visible boundary edges of the faces, each undirected
// edge once, in first-seen order.
func FaceEdges(faces []Face) []Edge {
	type key struct{ a, b int }
	seen := make(map[key]bool)
	var edges []Edge
	for _, f := range faces {
		n := len(f.Indices)
		for i := 0; i < n; i++ {
			if f.Hidden != nil && f.Hidden[i] {
				continue
			}
			a, b := f.Indices[i], f.Indices[(i+1)%n]
			k := key{min(a, b), max(a, b)}
			if seen[k] {
				continue
			}
			seen[k] = true
			edges = append(edges, Edge{VertexIndex1: a, VertexIndex2: b})
		}
	}
	return edges
}

// Grid returns the quad faces of an M x N polygon mesh whose vertices are
// stored row-major (index i*n + j). Closed directions wrap around.
func Grid(m, n int, closedM, closedN bool) []Face {
	if m < 2 || n < 2 {
		return nil
	}
	rows, cols := m-1, n-1
	if closedM {
		rows = m
	}
	if closedN {
		cols = n
	}
	faces := make([]Face, 0, rows*cols)
	for i := 0; i < rows; i++ {
		i1 := (i + 1) % m
		for j := 0; j < cols; j++ {
			j1 := (j + 1) % n
			faces = append(faces, Face{Indices: []int{i*n + j, i*n + j1, i1*n + j1, i1*n + j}})
		}
	}
	return faces
}
