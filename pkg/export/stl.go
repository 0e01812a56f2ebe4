package export

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/cadmesh/pkg/geom"
	cadrender "github.com/chazu/cadmesh/pkg/render"
)

// STL writes every triangle of the input, inserts expanded, as a binary
// STL solid. Line and point geometry is skipped.
type STL struct{}

func (*STL) Format() string { return "stl" }

func (*STL) Export(path string, geoms []*cadrender.Geometry) error {
	mesh := toTriangle3(leaves(geoms))
	if len(mesh) == 0 {
		return fmt.Errorf("export: stl: %w", ErrNothingToWrite)
	}
	if err := render.SaveSTL(path, mesh); err != nil {
		return fmt.Errorf("export: stl: %w", err)
	}
	return nil
}

func toTriangle3(geoms []*cadrender.Geometry) []*sdf.Triangle3 {
	var out []*sdf.Triangle3
	for _, g := range geoms {
		for _, t := range triangles(g) {
			out = append(out, &sdf.Triangle3{vec(t[0]), vec(t[1]), vec(t[2])})
		}
	}
	return out
}

func vec(p geom.Vec3) v3.Vec {
	return v3.Vec{X: p[0], Y: p[1], Z: p[2]}
}
