package render

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"

	"github.com/chazu/cadmesh/pkg/entity"
	"github.com/chazu/cadmesh/pkg/geom"
)

// blockStack records the blocks being expanded, outermost first, with the
// placement each level applies. It is copied on push so contexts sharing a
// prefix never see each other's entries.
type blockStack struct {
	names    []string
	matrices []mgl64.Mat4
}

func newBlockStack() blockStack {
	return blockStack{}
}

func (s blockStack) push(name string, m mgl64.Mat4) blockStack {
	return blockStack{
		names:    append(append([]string(nil), s.names...), name),
		matrices: append(append([]mgl64.Mat4(nil), s.matrices...), m),
	}
}

func (s blockStack) depth() int {
	return len(s.names)
}

// contains reports whether name is already being expanded.
func (s blockStack) contains(name string) bool {
	return lo.ContainsBy(s.names, func(n string) bool { return strings.EqualFold(n, name) })
}

// world returns the accumulated block-to-world placement.
func (s blockStack) world() mgl64.Mat4 {
	m := mgl64.Ident4()
	for _, step := range s.matrices {
		m = m.Mul4(step)
	}
	return m
}

// path returns the block ancestry joined for logging.
func (s blockStack) path() string {
	return strings.Join(s.names, " > ")
}

// InsertMatrix maps block coordinates into the insert's parent frame:
// T(insert) * R * T(dx, dy) * S(scale) * T(-base). The array offset is
// applied in the rotated frame before scaling.
func InsertMatrix(insert geom.Vec3, rotation mgl64.Mat4, scale, base geom.Vec3, dx, dy float64) mgl64.Mat4 {
	return mgl64.Translate3D(insert[0], insert[1], insert[2]).
		Mul4(rotation).
		Mul4(mgl64.Translate3D(dx, dy, 0)).
		Mul4(mgl64.Scale3D(scale[0], scale[1], scale[2])).
		Mul4(mgl64.Translate3D(-base[0], -base[1], -base[2]))
}

// insertScale treats a zero scale factor as unset.
func insertScale(ins entity.Insert) geom.Vec3 {
	s := geom.Vec3{ins.XScale, ins.YScale, ins.ZScale}
	for i := range s {
		if s[i] == 0 {
			s[i] = 1
		}
	}
	return s
}

// renderInsert expands a block reference. The block's entities are rendered
// once in block coordinates and every array replica gets its own transformed
// copy. Attributes are rendered as they are stored, outside the block.
func renderInsert(e entity.Entity, c *Context) *Geometry {
	ins, ok := as[entity.Insert](e)
	if !ok {
		return c.empty(e.Kind().String())
	}
	g := c.newGeometry(e)
	scale := insertScale(ins)
	rows, cols := max(ins.RowCount, 1), max(ins.ColumnCount, 1)
	rot := geom.PlaneRotation(ins.UnitNormal(), ins.Rotation)

	s := &InsertSection{
		BlockName:     ins.BlockName,
		InsertPoint:   ins.InsertPoint,
		Scale:         scale,
		Rotation:      ins.Rotation,
		RowCount:      rows,
		ColumnCount:   cols,
		RowSpacing:    ins.RowSpacing,
		ColumnSpacing: ins.ColumnSpacing,
		IsMultiple:    rows*cols > 1,
		Depth:         c.Depth(),
		Replicas:      []Replica{},
		Attributes:    []*Geometry{},
	}
	g.Insert = s
	g.Transform = geom.NewTransform(ins.InsertPoint, rot, scale)

	inh := &inherited{layer: g.Layer, color: g.Color, lineType: g.LineType, lineWeight: g.LineWeight}
	attrCtx := &Context{Options: c.Options, stack: c.stack, parent: inh}
	for _, a := range ins.Attributes {
		s.Attributes = append(s.Attributes, attrCtx.Render(a))
	}

	var (
		block *entity.Block
		found bool
	)
	if c.Options.Blocks != nil {
		block, found = c.Options.Blocks.Block(ins.BlockName)
	}
	log := Logger()
	switch {
	case !found || block == nil:
		s.MissingBlock = true
		log.Debug("render: insert references missing block",
			"handle", ins.Handle, "block", ins.BlockName)
	case c.stack.contains(block.Name):
		s.Cyclic = true
		log.Debug("render: block cycle cut",
			"handle", ins.Handle, "block", block.Name, "path", c.stack.path())
	case c.stack.depth() >= c.Options.MaxInsertDepth:
		s.DepthLimited = true
		at := geom.Apply(c.stack.world(), ins.InsertPoint)
		log.Debug("render: insert depth limit reached",
			"handle", ins.Handle, "block", block.Name, "depth", c.stack.depth(), "at", at)
	default:
		s.BasePoint = block.BasePoint
		first := InsertMatrix(ins.InsertPoint, rot, scale, block.BasePoint, 0, 0)
		child := &Context{Options: c.Options, stack: c.stack.push(block.Name, first), parent: inh}
		local := lo.Map(block.Entities, func(be entity.Entity, _ int) *Geometry {
			return child.Render(be)
		})
		for r := 0; r < rows; r++ {
			for col := 0; col < cols; col++ {
				m := InsertMatrix(ins.InsertPoint, rot, scale, block.BasePoint,
					float64(col)*ins.ColumnSpacing, float64(r)*ins.RowSpacing)
				s.Replicas = append(s.Replicas, Replica{
					Row:    r,
					Column: col,
					Matrix: [16]float64(m),
					Children: lo.Map(local, func(lg *Geometry, _ int) *Geometry {
						return lg.Apply(m)
					}),
				})
			}
		}
	}

	g.Bounds = insertBounds(s, ins.InsertPoint)
	g.Centroid = g.Bounds.Center()
	return g
}
