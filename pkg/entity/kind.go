package entity

import "strings"

// Kind enumerates the drawing entity types the pipeline renders.
type Kind int

const (
	KindUnknown Kind = iota
	KindArc
	KindCircle
	KindEllipse
	KindLine
	KindPolyline2D // LWPOLYLINE and 2D POLYLINE, vertices may carry bulges
	KindPolyline3D
	KindSpline
	KindFace3D
	KindSolid // 2D SOLID / TRACE
	KindMesh
	KindPolyfaceMesh
	KindPolygonMesh
	KindText
	KindMText
	KindShape
	KindPoint
	KindInsert
	KindAttribute
	KindLeader
	KindRasterImage
	KindPdfUnderlay
	KindWipeout
)

var kindNames = map[Kind]string{
	KindArc:          "Arc",
	KindCircle:       "Circle",
	KindEllipse:      "Ellipse",
	KindLine:         "Line",
	KindPolyline2D:   "Polyline2D",
	KindPolyline3D:   "Polyline3D",
	KindSpline:       "Spline",
	KindFace3D:       "Face3D",
	KindSolid:        "Solid",
	KindMesh:         "Mesh",
	KindPolyfaceMesh: "PolyfaceMesh",
	KindPolygonMesh:  "PolygonMesh",
	KindText:         "Text",
	KindMText:        "MText",
	KindShape:        "Shape",
	KindPoint:        "Point",
	KindInsert:       "Insert",
	KindAttribute:    "Attribute",
	KindLeader:       "Leader",
	KindRasterImage:  "RasterImage",
	KindPdfUnderlay:  "PdfUnderlay",
	KindWipeout:      "Wipeout",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// ParseKind maps a kind name back to its Kind. Matching ignores case.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if strings.EqualFold(n, name) {
			return k, true
		}
	}
	return KindUnknown, false
}

// Kinds returns every renderable kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindNames))
	for k := KindArc; k <= KindWipeout; k++ {
		out = append(out, k)
	}
	return out
}
