package dxfload

import (
	"fmt"
	"math"
	"strings"

	"github.com/rpaloschi/dxf-go/core"
	"github.com/rpaloschi/dxf-go/entities"
	"github.com/samber/lo"

	"github.com/chazu/cadmesh/pkg/entity"
	"github.com/chazu/cadmesh/pkg/geom"
)

const closeTolerance = 1e-6

// DXF transparency: 0x02000000 marks an explicit alpha in the low byte,
// where 255 is opaque.
const transparencyAlpha = 0x02000000

// converter maps parsed DXF entities onto the entity model, registering
// every layer it meets.
type converter struct {
	dec     *decoder
	out     *entity.Document
	skipped map[string]int
}

func (c *converter) convert(e entities.Entity) (entity.Entity, bool) {
	switch v := e.(type) {
	case *entities.Line:
		return entity.Line{
			Common: c.common(v.BaseEntity, v.ExtrusionDirection, v.Thickness),
			Start:  vec(v.Start),
			End:    vec(v.End),
		}, true
	case *entities.Point:
		return entity.Point{
			Common:   c.common(v.BaseEntity, v.ExtrusionDirection, v.Thickness),
			Location: vec(v.Location),
			Angle:    radians(v.XAxisAngle),
		}, true
	case *entities.Circle:
		return entity.Circle{
			Common: c.common(v.BaseEntity, v.ExtrusionDirection, v.Thickness),
			Center: vec(v.Center),
			Radius: v.Radius,
		}, true
	case *entities.Arc:
		return entity.Arc{
			Common:     c.common(v.BaseEntity, v.ExtrusionDirection, v.Thickness),
			Center:     vec(v.Center),
			Radius:     v.Radius,
			StartAngle: radians(v.StartAngle),
			EndAngle:   radians(v.EndAngle),
		}, true
	case *entities.Ellipse:
		return entity.Ellipse{
			Common:     c.common(v.BaseEntity, v.ExtrusionDirection, 0),
			Center:     vec(v.Center),
			MajorAxis:  vec(v.MajorAxisEnd),
			Ratio:      v.MinorToMajorAxisRatio,
			StartParam: v.StartParameter,
			EndParam:   math.Min(v.EndParameter, 2*math.Pi), // the parser defaults a missing end to 360
		}, true
	case *entities.Spline:
		return entity.Spline{
			Common:        c.common(v.BaseEntity, v.NormalVector, 0),
			Degree:        v.Degree,
			Closed:        v.Closed || v.Periodic,
			ControlPoints: vecs(v.ControlPoints),
			FitPoints:     vecs(v.FitPoints),
			Knots:         v.KnotValues,
			Weights:       v.Weights,
		}, true
	case *entities.Text:
		return c.text(v), true
	case *entities.Insert:
		return entity.Insert{
			Common:        c.common(v.BaseEntity, v.ExtrusionDirection, 0),
			BlockName:     c.dec.decode(v.BlockName),
			InsertPoint:   vec(v.InsertionPoint),
			XScale:        v.ScaleFactorX,
			YScale:        v.ScaleFactorY,
			ZScale:        v.ScaleFactorZ,
			Rotation:      radians(v.RotationAngle),
			RowCount:      v.RowCount,
			ColumnCount:   v.ColumnCount,
			RowSpacing:    v.RowSpacing,
			ColumnSpacing: v.ColumnSpacing,
		}, true
	case *entities.LWPolyline:
		return c.lwpolyline(v), true
	case *entities.Polyline:
		return c.polyline(v)
	}
	c.skip(e)
	return nil, false
}

func (c *converter) skip(e entities.Entity) {
	c.skipped[strings.TrimPrefix(fmt.Sprintf("%T", e), "*entities.")]++
}

func (c *converter) text(t *entities.Text) entity.Text {
	out := entity.Text{
		Common:      c.common(t.BaseEntity, t.ExtrusionDirection, t.Thickness),
		Value:       c.dec.decode(t.Value),
		InsertPoint: vec(t.FirstAlignmentPoint),
		Height:      t.Height,
		Rotation:    radians(t.Rotation),
		WidthFactor: t.RelativeXScale,
		Oblique:     radians(t.ObliqueAngle),
		Style:       t.StyleName,
		HAlign:      entity.HAlign(t.HorizontalJustification),
		VAlign:      entity.VAlign(t.VerticalJustification),
	}
	// The second point only counts once the text is justified.
	if out.HAlign != entity.HAlignLeft || out.VAlign != entity.VAlignBaseline {
		p := vec(t.SecondAlignmentPoint)
		out.AlignmentPoint = &p
	}
	return out
}

func (c *converter) lwpolyline(p *entities.LWPolyline) entity.Polyline2D {
	verts := make([]entity.Vertex2D, 0, len(p.Points))
	for _, v := range p.Points {
		start, end := v.StartingWidth, v.EndWidth
		if start == 0 && end == 0 {
			start, end = p.ConstantWidth, p.ConstantWidth
		}
		verts = append(verts, entity.Vertex2D{
			Location:   geom.Vec3{v.Point.X, v.Point.Y, p.Elevation},
			Bulge:      v.Bulge,
			StartWidth: start,
			EndWidth:   end,
		})
	}
	verts, closed := foldClosing(verts, vertexLocation, p.Closed)
	return entity.Polyline2D{
		Common:    c.common(p.BaseEntity, p.ExtrusionDirection, p.Thickness),
		Vertices:  verts,
		Closed:    closed,
		Elevation: p.Elevation,
	}
}

// polyline picks the entity kind from the POLYLINE flags. Polyface meshes
// are skipped: the parser drops the face records that index their vertices.
func (c *converter) polyline(p *entities.Polyline) (entity.Entity, bool) {
	verts := lo.Filter(p.Vertices, func(v *entities.Vertex, _ int) bool {
		return v != nil && !v.SplineFrameCtrlPoint
	})
	common := c.common(p.BaseEntity, p.ExtrusionDirection, p.Thickness)
	locations := lo.Map(verts, func(v *entities.Vertex, _ int) geom.Vec3 { return vec(v.Location) })

	switch {
	case p.IsPolyfaceMesh:
		c.skipped["Polyline (polyface)"]++
		return nil, false
	case p.Is3dPolygonMesh:
		return entity.PolygonMesh{
			Common:   common,
			MCount:   p.VertexCountM,
			NCount:   p.VertexCountN,
			ClosedM:  p.Closed,
			ClosedN:  p.PolygonMeshClosedNDir,
			Vertices: locations,
		}, true
	case p.Is3dPolyline:
		pts, closed := foldClosing(locations, func(v geom.Vec3) geom.Vec3 { return v }, p.Closed)
		return entity.Polyline3D{Common: common, Vertices: pts, Closed: closed}, true
	}

	flat := make([]entity.Vertex2D, len(verts))
	for i, v := range verts {
		start, end := v.StartingWidth, v.EndWidth
		if start == 0 && end == 0 {
			start, end = p.DefaultStartWidth, p.DefaultEndWidth
		}
		flat[i] = entity.Vertex2D{
			Location:   geom.Vec3{v.Location.X, v.Location.Y, p.Elevation},
			Bulge:      v.Bulge,
			StartWidth: start,
			EndWidth:   end,
		}
	}
	flat, closed := foldClosing(flat, vertexLocation, p.Closed)
	return entity.Polyline2D{Common: common, Vertices: flat, Closed: closed, Elevation: p.Elevation}, true
}

// common copies the shared properties. The parser cannot tell a missing
// color from an explicit ByBlock 0, so 0 reads as ByLayer, the DXF default.
func (c *converter) common(b entities.BaseEntity, normal core.Point, thickness float64) entity.Common {
	out := entity.Common{
		Handle:        b.Handle,
		Layer:         c.layer(b.LayerName),
		Color:         b.Color,
		LineType:      b.LineTypeName,
		LineWeight:    b.LineWeight,
		LineTypeScale: b.LineTypeScale,
		Invisible:     !b.Visible,
		Normal:        vec(normal),
		Thickness:     thickness,
	}
	if out.Color <= 0 || out.Color > entity.ColorByLayer {
		out.Color = entity.ColorByLayer
	}
	if b.TrueColor != 0 {
		rgb := uint32(b.TrueColor) & 0xFFFFFF
		out.TrueColor = &rgb
	}
	if b.Transparency&transparencyAlpha != 0 {
		out.Transparency = 255 - b.Transparency&0xFF
	}
	if out.LineType == "" {
		out.LineType = entity.LineTypeByLayer
	}
	if out.LineWeight == 0 {
		out.LineWeight = entity.LineWeightByLayer
	}
	if out.LineTypeScale == 0 {
		out.LineTypeScale = 1
	}
	return out
}

// layer decodes a layer name and registers the layer on first use.
func (c *converter) layer(raw string) string {
	name := c.dec.decode(raw)
	if name == "" {
		name = entity.DefaultLayer
	}
	if _, ok := c.out.Layer(name); !ok {
		c.out.AddLayer(&entity.Layer{
			Name:       name,
			Color:      7,
			LineType:   entity.LineTypeContinuous,
			LineWeight: entity.LineWeightDefault,
		})
	}
	return name
}

// foldClosing turns a repeated closing vertex into the closed flag.
func foldClosing[T any](vs []T, at func(T) geom.Vec3, closed bool) ([]T, bool) {
	if n := len(vs); n > 2 && samePoint(at(vs[0]), at(vs[n-1])) {
		return vs[:n-1], true
	}
	return vs, closed
}

func vertexLocation(v entity.Vertex2D) geom.Vec3 { return v.Location }

func samePoint(a, b geom.Vec3) bool {
	return math.Abs(a[0]-b[0]) < closeTolerance &&
		math.Abs(a[1]-b[1]) < closeTolerance &&
		math.Abs(a[2]-b[2]) < closeTolerance
}

func baseOf(e entities.Entity) (entities.BaseEntity, bool) {
	switch v := e.(type) {
	case *entities.Line:
		return v.BaseEntity, true
	case *entities.Point:
		return v.BaseEntity, true
	case *entities.Circle:
		return v.BaseEntity, true
	case *entities.Arc:
		return v.BaseEntity, true
	case *entities.Ellipse:
		return v.BaseEntity, true
	case *entities.Spline:
		return v.BaseEntity, true
	case *entities.Text:
		return v.BaseEntity, true
	case *entities.Insert:
		return v.BaseEntity, true
	case *entities.LWPolyline:
		return v.BaseEntity, true
	case *entities.Polyline:
		return v.BaseEntity, true
	}
	return entities.BaseEntity{}, false
}

func vec(p core.Point) geom.Vec3 { return geom.Vec3{p.X, p.Y, p.Z} }

func vecs(ps core.PointSlice) []geom.Vec3 {
	if len(ps) == 0 {
		return nil
	}
	return lo.Map(ps, func(p core.Point, _ int) geom.Vec3 { return vec(p) })
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
