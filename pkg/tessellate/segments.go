package tessellate

import (
	"github.com/samber/lo"

	"github.com/chazu/cadmesh/pkg/geom"
)

// Segment is one straight piece of a 3D polyline.
type Segment struct {
	Start     geom.Vec3 `json:"Start"`
	End       geom.Vec3 `json:"End"`
	Length    float64   `json:"Length"`
	Direction geom.Vec3 `json:"Direction"` // unit; zero for coincident endpoints
}

// Segments splits points into straight segments: N-1 for an open polyline,
// N for a closed one (the last wraps to the first). Fewer than two points
// produce no segments.
func Segments(points []geom.Vec3, closed bool) []Segment {
	n := len(points)
	if n < 2 {
		return nil
	}
	count := n - 1
	if closed {
		count = n
	}
	return lo.Times(count, func(i int) Segment {
		a, b := points[i], points[(i+1)%n]
		dir, _ := geom.Normalize(b.Sub(a))
		return Segment{Start: a, End: b, Length: geom.Distance(a, b), Direction: dir}
	})
}

// PathLength sums the distances between consecutive points, plus the
// closing distance when closed.
func PathLength(points []geom.Vec3, closed bool) float64 {
	return lo.SumBy(Segments(points, closed), func(s Segment) float64 { return s.Length })
}

// LineListIndices returns [i, i+1] index pairs for count consecutive
// points, plus the closing pair [count-1, 0] when closed. A closed pair of
// points yields both directions so the pair count always matches
// Segments.
func LineListIndices(count int, closed bool) []uint32 {
	if count < 2 {
		return []uint32{}
	}
	out := make([]uint32, 0, 2*count)
	for i := 0; i+1 < count; i++ {
		out = append(out, uint32(i), uint32(i+1))
	}
	if closed {
		out = append(out, uint32(count-1), 0)
	}
	return out
}
