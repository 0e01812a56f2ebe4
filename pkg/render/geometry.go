package render

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/cadmesh/pkg/aci"
	"github.com/chazu/cadmesh/pkg/geom"
	"github.com/chazu/cadmesh/pkg/mesh"
	"github.com/chazu/cadmesh/pkg/tessellate"
)

// Primitive types.
const (
	PrimitiveLines     = "Lines"
	PrimitiveTriangles = "Triangles"
	PrimitivePoints    = "Points"
)

// CoordinateSystem is the frame every geometry is expressed in.
const CoordinateSystem = "AutoCAD"

// Geometry is the renderer-agnostic description of one entity.
//
// Vertices are world coordinates; Transform describes the entity's local
// frame and must not be applied to them again. Exactly one kind section is
// set. Kind sections describe the source entity in its own units.
type Geometry struct {
	Id            string `json:"Id"`
	Type          string `json:"Type"`
	Handle        string `json:"Handle,omitempty"`
	Layer         string `json:"Layer"`
	PrimitiveType string `json:"PrimitiveType"`

	Vertices    []float64    `json:"Vertices"`
	Indices     []uint32     `json:"Indices"`
	Normals     []float64    `json:"Normals,omitempty"`
	UVs         []float64    `json:"UVs,omitempty"`
	VertexCount int          `json:"VertexCount"`
	Bounds      *geom.Bounds `json:"Bounds"`
	Centroid    geom.Vec3    `json:"Centroid"`

	Transform geom.Transform `json:"Transform"`
	Color     aci.Color      `json:"Color"`
	Material  Material       `json:"Material"`

	Visible           bool    `json:"Visible"`
	LineType          string  `json:"LineType"`
	LineWeight        int     `json:"LineWeight"`
	LineTypeScale     float64 `json:"LineTypeScale"`
	Thickness         float64 `json:"Thickness,omitempty"`
	CoordinateSystem  string  `json:"CoordinateSystem"`
	RequiresYAxisFlip bool    `json:"RequiresYAxisFlip"`

	Arc      *ArcSection      `json:"Arc,omitempty"`
	Ellipse  *EllipseSection  `json:"Ellipse,omitempty"`
	Line     *LineSection     `json:"Line,omitempty"`
	Polyline *PolylineSection `json:"Polyline,omitempty"`
	Spline   *SplineSection   `json:"Spline,omitempty"`
	Face     *FaceSection     `json:"Face,omitempty"`
	Mesh     *MeshSection     `json:"Mesh,omitempty"`
	Text     *TextSection     `json:"Text,omitempty"`
	Point    *PointSection    `json:"Point,omitempty"`
	Insert   *InsertSection   `json:"Insert,omitempty"`
	Leader   *LeaderSection   `json:"Leader,omitempty"`
	Image    *ImageSection    `json:"Image,omitempty"`
}

// ---------------------------------------------------------------------------
// Kind sections
// ---------------------------------------------------------------------------

// ArcSection describes arcs and circles.
type ArcSection struct {
	Center        geom.Vec3 `json:"Center"`
	Radius        float64   `json:"Radius"`
	Normal        geom.Vec3 `json:"Normal"`
	StartAngle    float64   `json:"StartAngle"`
	EndAngle      float64   `json:"EndAngle"`
	Sweep         float64   `json:"Sweep"`
	IsCCW         bool      `json:"IsCCW"`
	IsFullCircle  bool      `json:"IsFullCircle"`
	Chord         float64   `json:"Chord"`
	ArcLength     float64   `json:"ArcLength"`
	Sagitta       float64   `json:"Sagitta"`
	SectorArea    float64   `json:"SectorArea"`
	Circumference float64   `json:"Circumference,omitempty"`
	Area          float64   `json:"Area,omitempty"`
	Diameter      float64   `json:"Diameter,omitempty"`
	Segments      int       `json:"Segments"`
}

// EllipseSection describes ellipses and elliptical arcs.
type EllipseSection struct {
	Center      geom.Vec3 `json:"Center"`
	MajorAxis   geom.Vec3 `json:"MajorAxis"`
	MinorAxis   geom.Vec3 `json:"MinorAxis"`
	MajorRadius float64   `json:"MajorRadius"`
	MinorRadius float64   `json:"MinorRadius"`
	Ratio       float64   `json:"Ratio"`
	StartParam  float64   `json:"StartParam"`
	EndParam    float64   `json:"EndParam"`
	Sweep       float64   `json:"Sweep"`
	IsFull      bool      `json:"IsFull"`
	Length      float64   `json:"Length"`
}

// LineSection describes a straight line.
type LineSection struct {
	Start     geom.Vec3 `json:"Start"`
	End       geom.Vec3 `json:"End"`
	Delta     geom.Vec3 `json:"Delta"`
	Length    float64   `json:"Length"`
	Direction geom.Vec3 `json:"Direction"`
	Angle     float64   `json:"Angle"` // radians in the XY plane
}

// PolylineSection describes 2D and 3D polylines. SegmentCount counts
// source segments; RenderedSegmentCount counts the line pairs in the
// buffers once bulge arcs are sampled.
type PolylineSection struct {
	Is3D                 bool                  `json:"Is3D"`
	IsClosed             bool                  `json:"IsClosed"`
	VertexCount          int                   `json:"VertexCount"`
	SegmentCount         int                   `json:"SegmentCount"`
	RenderedSegmentCount int                   `json:"RenderedSegmentCount"`
	TotalLength          float64               `json:"TotalLength"`
	Area                 float64               `json:"Area,omitempty"`
	Elevation            float64               `json:"Elevation,omitempty"`
	HasBulges            bool                  `json:"HasBulges"`
	HasWidth             bool                  `json:"HasWidth"`
	BulgeArcs            []tessellate.BulgeArc `json:"BulgeArcs,omitempty"`
	Segments             []tessellate.Segment  `json:"Segments,omitempty"`
}

// SplineSection describes a spline and its sampled approximation.
type SplineSection struct {
	SplineType    string      `json:"SplineType"`
	Degree        int         `json:"Degree"`
	IsClosed      bool        `json:"IsClosed"`
	IsRational    bool        `json:"IsRational"`
	ControlPoints []geom.Vec3 `json:"ControlPoints"`
	FitPoints     []geom.Vec3 `json:"FitPoints"`
	Knots         []float64   `json:"Knots,omitempty"`
	Weights       []float64   `json:"Weights,omitempty"`
	Tension       float64     `json:"Tension"`
	SampleCount   int         `json:"SampleCount"`
	Length        float64     `json:"Length"`
	ArcLength     float64     `json:"ArcLength"`
}

// FaceSection describes 3D faces and 2D solids.
type FaceSection struct {
	Corners             []geom.Vec3 `json:"Corners"`
	IsQuad              bool        `json:"IsQuad"`
	HasFourthCorner     bool        `json:"HasFourthCorner"`
	CornerCountFromFlag bool        `json:"CornerCountFromFlag"`
	IsSolid             bool        `json:"IsSolid"`
	InvisibleEdges      []bool      `json:"InvisibleEdges,omitempty"`
	Area                float64     `json:"Area"`
	Center              geom.Vec3   `json:"Center"`
	Normal              geom.Vec3   `json:"Normal"`
}

// MeshSection describes subdivision, polyface and polygon meshes. The
// structured lists sit alongside flat arrays ready for buffer upload.
type MeshSection struct {
	MeshType          string      `json:"MeshType"`
	VertexCount       int         `json:"VertexCount"`
	FaceCount         int         `json:"FaceCount"`
	EdgeCount         int         `json:"EdgeCount"`
	Vertices          []geom.Vec3 `json:"Vertices"`
	Faces             []mesh.Face `json:"Faces"`
	Edges             []mesh.Edge `json:"Edges"`
	Vertices3D        []float64   `json:"Vertices3D"`
	NormalsArray      []float64   `json:"NormalsArray"`
	ColorsArray       []float64   `json:"ColorsArray"`
	UVsArray          []float64   `json:"UVsArray"`
	SurfaceArea       float64     `json:"SurfaceArea"`
	SubdivisionLevels int         `json:"SubdivisionLevels,omitempty"`
	MCount            int         `json:"MCount,omitempty"`
	NCount            int         `json:"NCount,omitempty"`
	ClosedM           bool        `json:"ClosedM,omitempty"`
	ClosedN           bool        `json:"ClosedN,omitempty"`
}

// TextSection describes text, mtext, shapes and attributes.
type TextSection struct {
	Value               string     `json:"Value"`
	PlainText           string     `json:"PlainText"`
	Lines               []string   `json:"Lines"`
	Tag                 string     `json:"Tag,omitempty"`
	ShapeName           string     `json:"ShapeName,omitempty"`
	Style               string     `json:"Style,omitempty"`
	InsertPoint         geom.Vec3  `json:"InsertPoint"`
	AlignmentPoint      *geom.Vec3 `json:"AlignmentPoint,omitempty"`
	Height              float64    `json:"Height"`
	WidthFactor         float64    `json:"WidthFactor"`
	Rotation            float64    `json:"Rotation"`
	HorizontalAlignment string     `json:"HorizontalAlignment"`
	VerticalAlignment   string     `json:"VerticalAlignment"`
	AttachmentPoint     int        `json:"AttachmentPoint,omitempty"`
	EstimatedWidth      float64    `json:"EstimatedWidth"`
	EstimatedHeight     float64    `json:"EstimatedHeight"`
	CharCount           int        `json:"CharCount"`
}

// PointSection describes a point.
type PointSection struct {
	Location geom.Vec3 `json:"Location"`
	Angle    float64   `json:"Angle"`
}

// Replica is one placed copy of a block in an insert array.
type Replica struct {
	Row      int         `json:"Row"`
	Column   int         `json:"Column"`
	Matrix   [16]float64 `json:"Matrix"`
	Children []*Geometry `json:"Children"`
}

// InsertSection describes a block insert and its expanded contents.
type InsertSection struct {
	BlockName     string      `json:"BlockName"`
	InsertPoint   geom.Vec3   `json:"InsertPoint"`
	BasePoint     geom.Vec3   `json:"BasePoint"`
	Scale         geom.Vec3   `json:"Scale"`
	Rotation      float64     `json:"Rotation"`
	RowCount      int         `json:"RowCount"`
	ColumnCount   int         `json:"ColumnCount"`
	RowSpacing    float64     `json:"RowSpacing"`
	ColumnSpacing float64     `json:"ColumnSpacing"`
	IsMultiple    bool        `json:"IsMultiple"`
	Depth         int         `json:"Depth"`
	MissingBlock  bool        `json:"MissingBlock"`
	DepthLimited  bool        `json:"DepthLimited"`
	Cyclic        bool        `json:"Cyclic"`
	Replicas      []Replica   `json:"Replicas"`
	Attributes    []*Geometry `json:"Attributes"`
}

// LeaderSection describes a leader.
type LeaderSection struct {
	VertexCount         int                  `json:"VertexCount"`
	Segments            []tessellate.Segment `json:"Segments"`
	TotalLength         float64              `json:"TotalLength"`
	HasArrowhead        bool                 `json:"HasArrowhead"`
	ArrowSize           float64              `json:"ArrowSize"`
	Arrowhead           []geom.Vec3          `json:"Arrowhead,omitempty"`
	HasHookline         bool                 `json:"HasHookline"`
	Hookline            []geom.Vec3          `json:"Hookline,omitempty"`
	HorizontalDirection geom.Vec3            `json:"HorizontalDirection"`
	IsSpline            bool                 `json:"IsSpline"`
}

// Clip modes reported for images.
const (
	ClipNone      = "None"
	ClipRectangle = "Rectangle"
	ClipPolygon   = "Polygon"
)

// ImageSection describes raster images, PDF underlays and wipeouts.
type ImageSection struct {
	ImageType    string      `json:"ImageType"`
	FileName     string      `json:"FileName,omitempty"`
	Page         string      `json:"Page,omitempty"`
	InsertPoint  geom.Vec3   `json:"InsertPoint"`
	UVector      geom.Vec3   `json:"UVector"`
	VVector      geom.Vec3   `json:"VVector"`
	Size         geom.Vec2   `json:"Size"`
	Corners      []geom.Vec3 `json:"Corners"`
	Width        float64     `json:"Width"`
	Height       float64     `json:"Height"`
	ClipMode     string      `json:"ClipMode"`
	ClipBoundary []geom.Vec3 `json:"ClipBoundary,omitempty"`
	Fade         int         `json:"Fade"`
	Brightness   int         `json:"Brightness,omitempty"`
	Contrast     int         `json:"Contrast,omitempty"`
	Monochrome   bool        `json:"Monochrome,omitempty"`
}

// ---------------------------------------------------------------------------
// Derived data and copies
// ---------------------------------------------------------------------------

// IsEmpty reports whether the geometry carries no vertices of its own.
func (g *Geometry) IsEmpty() bool {
	return g == nil || len(g.Vertices) == 0
}

// Points returns the vertex buffer as vectors.
func (g *Geometry) Points() []geom.Vec3 {
	return geom.Unflatten(g.Vertices)
}

// Clone returns a copy whose buffers and nested geometries can be changed
// without touching g. Other kind sections are shared; they are never
// modified after rendering.
func (g *Geometry) Clone() *Geometry {
	if g == nil {
		return nil
	}
	c := *g
	c.Vertices = append([]float64(nil), g.Vertices...)
	c.Indices = append([]uint32(nil), g.Indices...)
	if g.Normals != nil {
		c.Normals = append([]float64(nil), g.Normals...)
	}
	if g.UVs != nil {
		c.UVs = append([]float64(nil), g.UVs...)
	}
	if g.Bounds != nil {
		b := *g.Bounds
		c.Bounds = &b
	}
	if g.Insert != nil {
		ins := *g.Insert
		ins.Replicas = make([]Replica, len(g.Insert.Replicas))
		for i, r := range g.Insert.Replicas {
			ins.Replicas[i] = Replica{Row: r.Row, Column: r.Column, Matrix: r.Matrix, Children: cloneAll(r.Children)}
		}
		ins.Attributes = cloneAll(g.Insert.Attributes)
		c.Insert = &ins
	}
	return &c
}

func cloneAll(gs []*Geometry) []*Geometry {
	out := make([]*Geometry, len(gs))
	for i, g := range gs {
		out[i] = g.Clone()
	}
	return out
}

// Apply returns a copy of g carried into a parent frame by m: vertices,
// normals, bounds, centroid, transform and nested insert contents.
func (g *Geometry) Apply(m mgl64.Mat4) *Geometry {
	c := g.Clone()
	if c != nil {
		c.transform(m)
	}
	return c
}

func (g *Geometry) transform(m mgl64.Mat4) {
	for i := 0; i+2 < len(g.Vertices); i += 3 {
		p := geom.Apply(m, geom.Vec3{g.Vertices[i], g.Vertices[i+1], g.Vertices[i+2]})
		g.Vertices[i], g.Vertices[i+1], g.Vertices[i+2] = p[0], p[1], p[2]
	}
	for i := 0; i+2 < len(g.Normals); i += 3 {
		n := geom.ApplyNormal(m, geom.Vec3{g.Normals[i], g.Normals[i+1], g.Normals[i+2]})
		g.Normals[i], g.Normals[i+1], g.Normals[i+2] = n[0], n[1], n[2]
	}
	g.Centroid = geom.Apply(m, g.Centroid)
	g.Transform = geom.Decompose(m.Mul4(g.Transform.Mat4()))

	if g.Insert != nil {
		for i := range g.Insert.Replicas {
			r := &g.Insert.Replicas[i]
			r.Matrix = [16]float64(m.Mul4(mgl64.Mat4(r.Matrix)))
			for _, child := range r.Children {
				child.transform(m)
			}
		}
		for _, a := range g.Insert.Attributes {
			a.transform(m)
		}
	}

	switch {
	case len(g.Vertices) > 0:
		if b, ok := geom.FlatBounds(g.Vertices); ok {
			g.Bounds = &b
		}
	case g.Insert != nil:
		g.Bounds = insertBounds(g.Insert, g.Centroid)
	case g.Bounds != nil:
		b := g.Bounds.Transform(m)
		g.Bounds = &b
	}
}

// Leaves returns g and every geometry nested in it that carries its own
// vertices, depth first in render order. Inserts contribute their replica
// children and attributes, not themselves.
func Leaves(g *Geometry) []*Geometry {
	if g == nil {
		return nil
	}
	if g.Insert == nil {
		if g.IsEmpty() {
			return nil
		}
		return []*Geometry{g}
	}
	var out []*Geometry
	for _, r := range g.Insert.Replicas {
		for _, child := range r.Children {
			out = append(out, Leaves(child)...)
		}
	}
	for _, a := range g.Insert.Attributes {
		out = append(out, Leaves(a)...)
	}
	return out
}

// insertBounds unions the bounds of everything an insert placed. An insert
// that placed nothing gets degenerate bounds at anchor.
func insertBounds(s *InsertSection, anchor geom.Vec3) *geom.Bounds {
	var (
		b     geom.Bounds
		found bool
	)
	add := func(child *Geometry) {
		if child == nil || child.Bounds == nil {
			return
		}
		if !found {
			b, found = *child.Bounds, true
			return
		}
		b = b.Union(*child.Bounds)
	}
	for _, r := range s.Replicas {
		for _, child := range r.Children {
			add(child)
		}
	}
	for _, a := range s.Attributes {
		add(a)
	}
	if !found {
		b = geom.Bounds{Min: anchor, Max: anchor}
	}
	return &b
}
