package entity

import (
	"github.com/chazu/cadmesh/pkg/geom"
)

// ---------------------------------------------------------------------------
// Curves
// ---------------------------------------------------------------------------

// Arc is a circular arc. Angles are radians, measured counter-clockwise
// about Normal.
type Arc struct {
	Common
	Center     geom.Vec3 `json:"center"`
	Radius     float64   `json:"radius"`
	StartAngle float64   `json:"start_angle"`
	EndAngle   float64   `json:"end_angle"`
}

func (Arc) Kind() Kind { return KindArc }

// Circle is a full circle.
type Circle struct {
	Common
	Center geom.Vec3 `json:"center"`
	Radius float64   `json:"radius"`
}

func (Circle) Kind() Kind { return KindCircle }

// Ellipse is a full or partial ellipse. MajorAxis is relative to Center;
// the parameters are eccentric angles in radians.
type Ellipse struct {
	Common
	Center     geom.Vec3 `json:"center"`
	MajorAxis  geom.Vec3 `json:"major_axis"`
	Ratio      float64   `json:"ratio"`
	StartParam float64   `json:"start_param"`
	EndParam   float64   `json:"end_param"`
}

func (Ellipse) Kind() Kind { return KindEllipse }

// Line is a straight segment.
type Line struct {
	Common
	Start geom.Vec3 `json:"start"`
	End   geom.Vec3 `json:"end"`
}

func (Line) Kind() Kind { return KindLine }

// Vertex2D is a 2D polyline vertex. Bulge encodes an arc to the next
// vertex: tan(included angle / 4), positive counter-clockwise.
type Vertex2D struct {
	Location   geom.Vec3 `json:"location"`
	Bulge      float64   `json:"bulge,omitempty"`
	StartWidth float64   `json:"start_width,omitempty"`
	EndWidth   float64   `json:"end_width,omitempty"`
}

// Polyline2D is a planar polyline whose segments may be bulge arcs.
type Polyline2D struct {
	Common
	Vertices  []Vertex2D `json:"vertices"`
	Closed    bool       `json:"closed"`
	Elevation float64    `json:"elevation,omitempty"`
}

func (Polyline2D) Kind() Kind { return KindPolyline2D }

// Polyline3D is a polyline of straight 3D segments.
type Polyline3D struct {
	Common
	Vertices []geom.Vec3 `json:"vertices"`
	Closed   bool        `json:"closed"`
}

func (Polyline3D) Kind() Kind { return KindPolyline3D }

// Spline is a B-spline given by control points (with optional knots and
// weights) or by fit points.
type Spline struct {
	Common
	Degree        int         `json:"degree"`
	Closed        bool        `json:"closed"`
	ControlPoints []geom.Vec3 `json:"control_points,omitempty"`
	FitPoints     []geom.Vec3 `json:"fit_points,omitempty"`
	Knots         []float64   `json:"knots,omitempty"`
	Weights       []float64   `json:"weights,omitempty"`
}

func (Spline) Kind() Kind { return KindSpline }

// ---------------------------------------------------------------------------
// Faces and meshes
// ---------------------------------------------------------------------------

// Face3D is a triangle or quad. CornerCount is the corner count the source
// reported (3 or 4), 0 when the source does not say.
type Face3D struct {
	Common
	Corners        [4]geom.Vec3 `json:"corners"`
	CornerCount    int          `json:"corner_count,omitempty"`
	InvisibleEdges [4]bool      `json:"invisible_edges"`
}

func (Face3D) Kind() Kind { return KindFace3D }

// Solid is a filled 2D triangle or quad. Corners are stored in DXF order:
// the third and fourth corners are swapped relative to the outline.
type Solid struct {
	Common
	Corners     [4]geom.Vec3 `json:"corners"`
	CornerCount int          `json:"corner_count,omitempty"`
}

func (Solid) Kind() Kind { return KindSolid }

// MeshEdge is an explicit mesh edge with its subdivision crease.
type MeshEdge struct {
	V1     int     `json:"v1"`
	V2     int     `json:"v2"`
	Crease float64 `json:"crease,omitempty"`
}

// Mesh is a subdivision mesh with 0-based face indices.
type Mesh struct {
	Common
	Vertices          []geom.Vec3 `json:"vertices"`
	Faces             [][]int     `json:"faces"`
	Edges             []MeshEdge  `json:"edges,omitempty"`
	SubdivisionLevels int         `json:"subdivision_levels,omitempty"`
}

func (Mesh) Kind() Kind { return KindMesh }

// PolyfaceMesh is a POLYLINE polyface. Face indices are 1-based, a
// negative index hides the edge leaving that vertex and 0 is unused.
type PolyfaceMesh struct {
	Common
	Vertices []geom.Vec3 `json:"vertices"`
	Faces    [][]int     `json:"faces"`
	Colors   []int       `json:"colors,omitempty"` // per-face ACI, optional
}

func (PolyfaceMesh) Kind() Kind { return KindPolyfaceMesh }

// PolygonMesh is an M x N grid of vertices stored row-major.
type PolygonMesh struct {
	Common
	MCount   int         `json:"m_count"`
	NCount   int         `json:"n_count"`
	ClosedM  bool        `json:"closed_m"`
	ClosedN  bool        `json:"closed_n"`
	Vertices []geom.Vec3 `json:"vertices"`
}

func (PolygonMesh) Kind() Kind { return KindPolygonMesh }

// ---------------------------------------------------------------------------
// Text
// ---------------------------------------------------------------------------

// Horizontal text alignment.
type HAlign int

const (
	HAlignLeft HAlign = iota
	HAlignCenter
	HAlignRight
	HAlignAligned
	HAlignMiddle
	HAlignFit
)

// Vertical text alignment.
type VAlign int

const (
	VAlignBaseline VAlign = iota
	VAlignBottom
	VAlignMiddle
	VAlignTop
)

// Text is single-line text. AlignmentPoint, when set, defines the text
// direction together with InsertPoint.
type Text struct {
	Common
	Value          string     `json:"value"`
	InsertPoint    geom.Vec3  `json:"insert_point"`
	AlignmentPoint *geom.Vec3 `json:"alignment_point,omitempty"`
	Height         float64    `json:"height"`
	Rotation       float64    `json:"rotation"` // radians
	WidthFactor    float64    `json:"width_factor"`
	Oblique        float64    `json:"oblique,omitempty"`
	Style          string     `json:"style,omitempty"`
	HAlign         HAlign     `json:"h_align"`
	VAlign         VAlign     `json:"v_align"`
}

func (Text) Kind() Kind { return KindText }

// Attribute is a tagged text attached to an insert.
type Attribute struct {
	Text
	Tag string `json:"tag"`
}

func (Attribute) Kind() Kind { return KindAttribute }

// MText attachment points, 1..9 reading left to right, top to bottom.
const (
	AttachTopLeft = iota + 1
	AttachTopCenter
	AttachTopRight
	AttachMiddleLeft
	AttachMiddleCenter
	AttachMiddleRight
	AttachBottomLeft
	AttachBottomCenter
	AttachBottomRight
)

// MText is multi-line formatted text.
type MText struct {
	Common
	Value             string    `json:"value"`
	InsertPoint       geom.Vec3 `json:"insert_point"`
	Height            float64   `json:"height"`
	RectangleWidth    float64   `json:"rectangle_width,omitempty"`
	Rotation          float64   `json:"rotation"` // radians
	Direction         geom.Vec3 `json:"direction,omitempty"`
	AttachmentPoint   int       `json:"attachment_point"`
	LineSpacingFactor float64   `json:"line_spacing_factor,omitempty"`
	Style             string    `json:"style,omitempty"`
}

func (MText) Kind() Kind { return KindMText }

// Shape is a reference to a shape-file glyph.
type Shape struct {
	Common
	Name        string    `json:"name"`
	InsertPoint geom.Vec3 `json:"insert_point"`
	Size        float64   `json:"size"`
	Rotation    float64   `json:"rotation"`
	WidthFactor float64   `json:"width_factor"`
	Oblique     float64   `json:"oblique,omitempty"`
}

func (Shape) Kind() Kind { return KindShape }

// ---------------------------------------------------------------------------
// Points, inserts, leaders
// ---------------------------------------------------------------------------

// Point is a single drawing point.
type Point struct {
	Common
	Location geom.Vec3 `json:"location"`
	Angle    float64   `json:"angle,omitempty"`
}

func (Point) Kind() Kind { return KindPoint }

// Insert places a block. Row/column counts above one make it an array.
type Insert struct {
	Common
	BlockName     string      `json:"block_name"`
	InsertPoint   geom.Vec3   `json:"insert_point"`
	XScale        float64     `json:"x_scale"`
	YScale        float64     `json:"y_scale"`
	ZScale        float64     `json:"z_scale"`
	Rotation      float64     `json:"rotation"` // radians about Normal
	RowCount      int         `json:"row_count"`
	ColumnCount   int         `json:"column_count"`
	RowSpacing    float64     `json:"row_spacing"`
	ColumnSpacing float64     `json:"column_spacing"`
	Attributes    []Attribute `json:"attributes,omitempty"`
}

func (Insert) Kind() Kind { return KindInsert }

// Leader is an annotation leader line.
type Leader struct {
	Common
	Vertices            []geom.Vec3 `json:"vertices"`
	ArrowheadEnabled    bool        `json:"arrowhead_enabled"`
	ArrowSize           float64     `json:"arrow_size,omitempty"`
	HorizontalDirection geom.Vec3   `json:"horizontal_direction"`
	HooklineLength      float64     `json:"hookline_length,omitempty"`
	PathSpline          bool        `json:"path_spline,omitempty"`
}

func (Leader) Kind() Kind { return KindLeader }

// ---------------------------------------------------------------------------
// Images and underlays
// ---------------------------------------------------------------------------

// Clip boundary types as stored in the source.
const (
	ClipRectangular = 1
	ClipPolygonal   = 2
)

// RasterImage is a placed raster image. U and V are the world vectors of
// one pixel along the image width and height.
type RasterImage struct {
	Common
	FileName     string      `json:"file_name,omitempty"`
	InsertPoint  geom.Vec3   `json:"insert_point"`
	UVector      geom.Vec3   `json:"u_vector"`
	VVector      geom.Vec3   `json:"v_vector"`
	Size         geom.Vec2   `json:"size"` // pixels
	ClipBoundary []geom.Vec2 `json:"clip_boundary,omitempty"`
	ClipType     int         `json:"clip_type,omitempty"`
	Clipping     bool        `json:"clipping,omitempty"`
	Brightness   int         `json:"brightness"`
	Contrast     int         `json:"contrast"`
	Fade         int         `json:"fade"` // 0..100
}

func (RasterImage) Kind() Kind { return KindRasterImage }

// PdfUnderlay is a placed PDF page.
type PdfUnderlay struct {
	Common
	FileName     string      `json:"file_name,omitempty"`
	Page         string      `json:"page,omitempty"`
	InsertPoint  geom.Vec3   `json:"insert_point"`
	XScale       float64     `json:"x_scale"`
	YScale       float64     `json:"y_scale"`
	Rotation     float64     `json:"rotation"`
	PageSize     geom.Vec2   `json:"page_size"` // drawing units at scale 1
	ClipBoundary []geom.Vec2 `json:"clip_boundary,omitempty"`
	Fade         int         `json:"fade"`
	Contrast     int         `json:"contrast"`
	Monochrome   bool        `json:"monochrome,omitempty"`
}

func (PdfUnderlay) Kind() Kind { return KindPdfUnderlay }

// Wipeout is a masking polygon placed like an image.
type Wipeout struct {
	Common
	InsertPoint  geom.Vec3   `json:"insert_point"`
	UVector      geom.Vec3   `json:"u_vector"`
	VVector      geom.Vec3   `json:"v_vector"`
	Size         geom.Vec2   `json:"size"`
	ClipBoundary []geom.Vec2 `json:"clip_boundary,omitempty"`
	ClipType     int         `json:"clip_type,omitempty"`
}

func (Wipeout) Kind() Kind { return KindWipeout }
