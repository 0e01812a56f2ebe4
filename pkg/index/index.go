// Package index is a spatial lookup over rendered geometry, backed by an
// R-tree on geometry bounds. It answers pick, box-select and nearest
// queries for viewers that hold a rendered document.
package index

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/samber/lo"

	"github.com/chazu/cadmesh/pkg/geom"
	"github.com/chazu/cadmesh/pkg/render"
)

const (
	minChildren = 25
	maxChildren = 50

	// pad keeps degenerate boxes (points, axis-aligned lines) storable.
	pad = 1e-9
)

// Entry is one indexed geometry.
type Entry struct {
	Geometry *render.Geometry
	// Index is the position of the top-level geometry the entry came from.
	Index int

	rect rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *Entry) Bounds() rtreego.Rect {
	return e.rect
}

// Index is an immutable spatial index. Safe for concurrent reads.
type Index struct {
	tree    *rtreego.Rtree
	entries []*Entry
	bounds  geom.Bounds
}

type config struct {
	leaves bool
}

// Option configures New.
type Option func(*config)

// WithLeaves indexes the placed contents of inserts instead of the insert
// geometry itself.
func WithLeaves() Option {
	return func(c *config) { c.leaves = true }
}

// New builds an index over geoms. Nil and empty geometries are skipped.
// Without WithLeaves an insert is stored once under the box of everything
// it places; inserts that place nothing are skipped.
func New(geoms []*render.Geometry, opts ...Option) *Index {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}

	idx := &Index{}
	for i, g := range geoms {
		candidates := []*render.Geometry{g}
		if cfg.leaves {
			candidates = render.Leaves(g)
		}
		for _, c := range candidates {
			if !indexable(c) {
				continue
			}
			r, err := toRect(*c.Bounds)
			if err != nil {
				render.Logger().Debug("index: skipping geometry", "handle", c.Handle, "error", err)
				continue
			}
			if len(idx.entries) == 0 {
				idx.bounds = *c.Bounds
			} else {
				idx.bounds = idx.bounds.Union(*c.Bounds)
			}
			idx.entries = append(idx.entries, &Entry{Geometry: c, Index: i, rect: r})
		}
	}
	spatials := lo.Map(idx.entries, func(e *Entry, _ int) rtreego.Spatial { return e })
	idx.tree = rtreego.NewTree(3, minChildren, maxChildren, spatials...)
	return idx
}

// Len returns the number of indexed entries.
func (x *Index) Len() int {
	return len(x.entries)
}

// Bounds returns the box around every entry. ok is false for an empty index.
func (x *Index) Bounds() (b geom.Bounds, ok bool) {
	return x.bounds, len(x.entries) > 0
}

// Search returns the entries whose bounds intersect b, in input order.
func (x *Index) Search(b geom.Bounds) []*Entry {
	if len(x.entries) == 0 {
		return nil
	}
	r, err := toRect(b)
	if err != nil {
		return nil
	}
	return sorted(x.tree.SearchIntersect(r))
}

// At returns the entries whose bounds lie within tol of p.
func (x *Index) At(p geom.Vec3, tol float64) []*Entry {
	t := geom.Vec3{tol, tol, tol}
	return x.Search(geom.Bounds{Min: p.Sub(t), Max: p.Add(t)})
}

// Nearest returns up to k entries ordered by distance from p to their
// bounds.
func (x *Index) Nearest(p geom.Vec3, k int) []*Entry {
	if k <= 0 || len(x.entries) == 0 {
		return nil
	}
	found := x.tree.NearestNeighbors(k, rtreego.Point{p[0], p[1], p[2]})
	return lo.FilterMap(found, func(s rtreego.Spatial, _ int) (*Entry, bool) {
		e, ok := s.(*Entry)
		return e, ok && e != nil
	})
}

func indexable(g *render.Geometry) bool {
	if g == nil || g.Bounds == nil {
		return false
	}
	if g.Insert != nil {
		return len(render.Leaves(g)) > 0
	}
	return !g.IsEmpty()
}

func toRect(b geom.Bounds) (rtreego.Rect, error) {
	lengths := make([]float64, 3)
	corner := make(rtreego.Point, 3)
	for i := 0; i < 3; i++ {
		low, high := min(b.Min[i], b.Max[i]), max(b.Min[i], b.Max[i])
		corner[i] = low - pad
		lengths[i] = high - low + 2*pad
	}
	return rtreego.NewRect(corner, lengths)
}

func sorted(found []rtreego.Spatial) []*Entry {
	out := make([]*Entry, 0, len(found))
	for _, s := range found {
		if e, ok := s.(*Entry); ok {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
