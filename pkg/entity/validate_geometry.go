package entity

import (
	"fmt"

	"github.com/chazu/cadmesh/pkg/geom"
)

// ---------------------------------------------------------------------------
// Geometric validation (warnings only)
// ---------------------------------------------------------------------------

// validateGeometry flags entities that will render as degenerate output.
// Renderers cope with all of these; the findings are advisory.
func validateGeometry(d *Document) []ValidationError {
	var warnings []ValidationError
	warnings = append(warnings, checkEntities("", d.Entities)...)
	for _, name := range sortedBlockNames(d) {
		warnings = append(warnings, checkEntities(name, d.Blocks[name].Entities)...)
	}
	return warnings
}

func checkEntities(block string, entities []Entity) []ValidationError {
	var out []ValidationError
	for _, e := range entities {
		if e == nil {
			continue
		}
		if msg := degenerate(e); msg != "" {
			out = append(out, ValidationError{
				Handle:   e.Props().Handle,
				Block:    block,
				Message:  fmt.Sprintf("%s: %s", e.Kind(), msg),
				Severity: SeverityWarning,
			})
		}
	}
	return out
}

// degenerate returns a description of what is wrong with e, or "".
func degenerate(e Entity) string {
	switch v := Deref(e).(type) {
	case Arc:
		if v.Radius <= 0 {
			return fmt.Sprintf("radius is %.4f, must be positive", v.Radius)
		}
	case Circle:
		if v.Radius <= 0 {
			return fmt.Sprintf("radius is %.4f, must be positive", v.Radius)
		}
	case Ellipse:
		if v.MajorAxis.Len() < geom.Epsilon {
			return "major axis has zero length"
		}
	case Line:
		if geom.Distance(v.Start, v.End) < geom.Epsilon {
			return "start and end coincide"
		}
	case Polyline2D:
		if len(v.Vertices) < 2 {
			return fmt.Sprintf("has %d vertices, needs at least 2", len(v.Vertices))
		}
	case Polyline3D:
		if len(v.Vertices) < 2 {
			return fmt.Sprintf("has %d vertices, needs at least 2", len(v.Vertices))
		}
	case Spline:
		if len(v.ControlPoints) < 2 && len(v.FitPoints) < 2 {
			return "needs at least 2 control or fit points"
		}
	case Face3D:
		if geom.AreaOf(v.Outline()) < geom.Epsilon {
			return "face has zero area"
		}
	case Mesh:
		if bad := outOfRange(v.Faces, len(v.Vertices), false); bad > 0 {
			return fmt.Sprintf("%d face indices out of range", bad)
		}
	case PolyfaceMesh:
		if bad := outOfRange(v.Faces, len(v.Vertices), true); bad > 0 {
			return fmt.Sprintf("%d face indices out of range", bad)
		}
	case PolygonMesh:
		if v.MCount*v.NCount != len(v.Vertices) {
			return fmt.Sprintf("%dx%d grid but %d vertices", v.MCount, v.NCount, len(v.Vertices))
		}
	case Text:
		if v.Height <= 0 {
			return "text height must be positive"
		}
	case MText:
		if v.Height <= 0 {
			return "text height must be positive"
		}
	case Insert:
		if v.XScale == 0 || v.YScale == 0 || v.ZScale == 0 {
			return "insert has a zero scale factor"
		}
	case Leader:
		if len(v.Vertices) < 2 {
			return fmt.Sprintf("has %d vertices, needs at least 2", len(v.Vertices))
		}
	}
	return ""
}

func outOfRange(faces [][]int, n int, oneBased bool) int {
	bad := 0
	for _, f := range faces {
		for _, idx := range f {
			if oneBased {
				if idx == 0 {
					continue
				}
				if idx < 0 {
					idx = -idx
				}
				idx--
			}
			if idx < 0 || idx >= n {
				bad++
			}
		}
	}
	return bad
}

// Deref turns a pointer entity into its value so one type switch covers
// both forms.
func Deref(e Entity) Entity {
	switch v := e.(type) {
	case *Arc:
		return *v
	case *Circle:
		return *v
	case *Ellipse:
		return *v
	case *Line:
		return *v
	case *Polyline2D:
		return *v
	case *Polyline3D:
		return *v
	case *Spline:
		return *v
	case *Face3D:
		return *v
	case *Solid:
		return *v
	case *Mesh:
		return *v
	case *PolyfaceMesh:
		return *v
	case *PolygonMesh:
		return *v
	case *Text:
		return *v
	case *Attribute:
		return *v
	case *MText:
		return *v
	case *Shape:
		return *v
	case *Point:
		return *v
	case *Insert:
		return *v
	case *Leader:
		return *v
	case *RasterImage:
		return *v
	case *PdfUnderlay:
		return *v
	case *Wipeout:
		return *v
	}
	return e
}
