// Package export writes rendered geometry to files.
//
// Exporters share one interface so the CLI can pick a backend by file
// extension without knowing the format:
//
//	json  the Geometry records as produced by render
//	stl   triangle geometry as a binary STL solid
//	svg   a plan view (XY) preview
//	dxf   an exploded drawing of lines and triangle outlines
package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chazu/cadmesh/pkg/geom"
	"github.com/chazu/cadmesh/pkg/render"
)

// ErrNothingToWrite is returned when the input has no geometry the format
// can carry.
var ErrNothingToWrite = errors.New("export: nothing to write")

// Exporter writes geometries to a file.
type Exporter interface {
	// Format returns the lower-case format name, which is also the file
	// extension.
	Format() string
	// Export writes geoms to path, replacing any existing file.
	Export(path string, geoms []*render.Geometry) error
}

// Compile-time interface checks.
var (
	_ Exporter = (*JSON)(nil)
	_ Exporter = (*STL)(nil)
	_ Exporter = (*SVG)(nil)
	_ Exporter = (*DXF)(nil)
)

// ForPath returns the default exporter for the extension of path.
func ForPath(path string) (Exporter, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "json":
		return &JSON{Indent: true}, nil
	case "stl":
		return &STL{}, nil
	case "svg":
		return &SVG{}, nil
	case "dxf":
		return &DXF{}, nil
	default:
		return nil, fmt.Errorf("export: unsupported format %q", ext)
	}
}

// Export writes geoms to path with the exporter matching its extension.
func Export(path string, geoms []*render.Geometry) error {
	x, err := ForPath(path)
	if err != nil {
		return err
	}
	return x.Export(path, geoms)
}

// leaves flattens inserts so every returned geometry carries its own
// buffers.
func leaves(geoms []*render.Geometry) []*render.Geometry {
	var out []*render.Geometry
	for _, g := range geoms {
		out = append(out, render.Leaves(g)...)
	}
	return out
}

// triangles returns the corners of every triangle in g.
func triangles(g *render.Geometry) [][3]geom.Vec3 {
	if g.PrimitiveType != render.PrimitiveTriangles {
		return nil
	}
	pts := g.Points()
	out := make([][3]geom.Vec3, 0, len(g.Indices)/3)
	for i := 0; i+2 < len(g.Indices); i += 3 {
		out = append(out, [3]geom.Vec3{pts[g.Indices[i]], pts[g.Indices[i+1]], pts[g.Indices[i+2]]})
	}
	return out
}

// segments returns the endpoints of every line segment in g.
func segments(g *render.Geometry) [][2]geom.Vec3 {
	if g.PrimitiveType != render.PrimitiveLines {
		return nil
	}
	pts := g.Points()
	out := make([][2]geom.Vec3, 0, len(g.Indices)/2)
	for i := 0; i+1 < len(g.Indices); i += 2 {
		out = append(out, [2]geom.Vec3{pts[g.Indices[i]], pts[g.Indices[i+1]]})
	}
	return out
}
